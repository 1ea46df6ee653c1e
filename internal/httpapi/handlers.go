// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tollgate Contributors

package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tollgate/tollgate/internal/auth"
)

// Registrar creates new user accounts.
type Registrar interface {
	Register(ctx context.Context, fullname, username, password string, email *string) (*auth.User, error)
}

// SessionIssuer mints and rotates token pairs.
type SessionIssuer interface {
	Login(ctx context.Context, identifier, password string) (*auth.User, auth.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
}

// IdentityResolver resolves the current caller from an access token.
type IdentityResolver interface {
	Resolve(ctx context.Context, tokenString string) (*auth.User, error)
}

// envelope is the uniform JSON response shape.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// userData is the public profile representation; the password hash never
// leaves the service.
type userData struct {
	ID       string  `json:"id"`
	Fullname string  `json:"fullname"`
	Username string  `json:"username"`
	Email    *string `json:"email,omitempty"`
}

func newUserData(u *auth.User) userData {
	return userData{
		ID:       u.ID,
		Fullname: u.Fullname,
		Username: u.Username,
		Email:    u.Email,
	}
}

type registerRequest struct {
	Fullname string  `json:"fullname"`
	Username string  `json:"username"`
	Email    *string `json:"email,omitempty"`
	Password string  `json:"password"`
}

type loginRequest struct {
	UsernameOrEmail string `json:"username_or_email"`
	Password        string `json:"password"`
}

// handleRegister handles POST /auth/register.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.recordRegistration("malformed")
		s.writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.Username == "" || req.Password == "" {
		s.recordRegistration("invalid")
		s.writeError(w, http.StatusBadRequest, "Username and password are required.")
		return
	}

	_, err := s.registrar.Register(r.Context(), req.Fullname, req.Username, req.Password, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUsernameTaken):
			s.recordRegistration("username_taken")
			s.writeError(w, http.StatusBadRequest, "Username already taken!")
		case errors.Is(err, auth.ErrEmailTaken):
			s.recordRegistration("email_taken")
			s.writeError(w, http.StatusBadRequest, "Email already taken!")
		default:
			s.serverError(w, r, "registration failed", err)
			s.recordRegistration("error")
		}
		return
	}

	s.recordRegistration("ok")
	s.writeJSON(w, http.StatusCreated, envelope{
		Success: true,
		Message: "Registration successful!",
	})
}

// handleLogin handles POST /auth/login. On success the token pair is
// delivered as two HttpOnly cookies; the tokens never appear in the body.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	user, pair, err := s.sessions.Login(r.Context(), req.UsernameOrEmail, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.recordLogin("invalid_credentials")
			s.writeError(w, http.StatusUnauthorized, "Invalid Credentials!")
			return
		}
		s.recordLogin("error")
		s.serverError(w, r, "login failed", err)
		return
	}

	setCredentialCookie(w, accessCookieName, pair.AccessToken)
	setCredentialCookie(w, refreshCookieName, pair.RefreshToken)

	s.recordLogin("ok")
	s.recordTokenIssued(auth.TokenKindAccess)
	s.recordTokenIssued(auth.TokenKindRefresh)

	s.writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Message: "Login successful!",
		Data:    newUserData(user),
	})
}

// handleMe handles GET /auth/me, the per-request identity gate.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.resolver.Resolve(r.Context(), accessCredential(r))
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingToken):
			s.recordRejection("missing_token")
			s.writeError(w, http.StatusUnauthorized, "Authentication token is missing.")
		case errors.Is(err, auth.ErrInvalidToken):
			s.recordRejection("invalid_token")
			s.writeError(w, http.StatusUnauthorized, "Could not validate credentials.")
		case errors.Is(err, auth.ErrUserNotFound):
			s.recordRejection("user_not_found")
			s.writeError(w, http.StatusNotFound, "User not found.")
		default:
			s.serverError(w, r, "identity resolution failed", err)
		}
		return
	}

	s.writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Message: "User retrieved successfully!",
		Data:    newUserData(user),
	})
}

// handleRefresh handles GET /auth/refresh-access-token. It accepts only the
// refresh credential; presenting an access token here fails.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	access, err := s.sessions.Refresh(r.Context(), refreshCredential(r))
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingToken):
			s.recordRejection("missing_token")
			s.writeError(w, http.StatusUnauthorized, "Refresh token is missing!")
		case errors.Is(err, auth.ErrInvalidToken):
			s.recordRejection("invalid_token")
			s.writeError(w, http.StatusUnauthorized, "Invalid refresh token.")
		default:
			s.serverError(w, r, "token refresh failed", err)
		}
		return
	}

	setCredentialCookie(w, accessCookieName, access)
	s.recordTokenIssued(auth.TokenKindAccess)

	s.writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Message: "Access token refreshed successfully!",
	})
}

// writeJSON writes a response envelope.
func (s *Server) writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn("response write failed", "error", err)
	}
}

// writeError writes a failure envelope. Messages stay generic; internals are
// logged, never returned.
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, envelope{Success: false, Message: message})
}

// serverError logs an unexpected failure and returns an opaque 500.
func (s *Server) serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	s.logger.ErrorContext(r.Context(), msg, slog.Any("error", err))
	s.writeError(w, http.StatusInternalServerError, "Internal server error.")
}
