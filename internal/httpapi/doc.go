// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tollgate Contributors

// Package httpapi exposes the authentication service over HTTP.
//
// The package is a thin boundary: it shapes request/response envelopes, maps
// the auth error taxonomy onto status codes, and transports credentials as
// two independent HttpOnly cookies (with an Authorization Bearer fallback for
// the access credential). No authentication logic lives here.
package httpapi
