// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tollgate Contributors

package httpapi

import (
	"net/http"
	"strings"
)

// Cookie names for the two independent bearer credentials. They are never
// combined into one value: the access credential gates identity resolution,
// the refresh credential only mints new access tokens.
const (
	accessCookieName  = "access_token"
	refreshCookieName = "refresh_token"
)

// accessCredential extracts the access token from the request: the
// access_token cookie first, then an Authorization: Bearer header.
// Returns "" when neither is present.
func accessCredential(r *http.Request) string {
	if c, err := r.Cookie(accessCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	h := r.Header.Get("Authorization")
	if token, found := strings.CutPrefix(h, "Bearer "); found {
		return token
	}
	return ""
}

// refreshCredential extracts the refresh token from the request cookies.
// Returns "" when absent.
func refreshCredential(r *http.Request) string {
	if c, err := r.Cookie(refreshCookieName); err == nil {
		return c.Value
	}
	return ""
}

// setCredentialCookie writes one credential as an HttpOnly cookie scoped to
// the auth endpoints' origin.
func setCredentialCookie(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}
