// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tollgate Contributors

// Package auth provides the credential and token primitives for Tollgate.
//
// # Domain Types
//
// User values should be created through NewUser, which assigns the ID and
// validates the username. Direct struct initialization bypasses validation
// and may create invalid state. Repository implementations receive
// pre-validated values from this constructor.
//
// # Services
//
// Service types coordinate domain operations:
//   - CredentialService - registration and password verification
//   - SessionService - token pair issuance and access-token refresh
//   - Resolver - per-request identity resolution from a bearer token
//
// Services are created with New*Service constructors that validate
// dependencies.
package auth
