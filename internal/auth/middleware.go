// Lectern - Congregation Meeting Scheduling and Administration
// Copyright 2026 Lectern Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-app/lectern

package auth

import (
	"net/http"
	"strings"

	"github.com/lectern-app/lectern/internal/logging"
)

// Middleware attaches the authenticated principal to the request context.
type Middleware struct {
	tokens *TokenManager
}

// NewMiddleware creates the authentication middleware.
func NewMiddleware(tokens *TokenManager) *Middleware {
	return &Middleware{tokens: tokens}
}

// Authenticate verifies the bearer token, if any, and stores the principal
// in the request context. Requests without a valid token continue with no
// principal: the authorization guard fails those closed, identically to a
// principal lacking the capability, so route probing cannot distinguish
// "not logged in" from "not allowed".
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		principal, err := m.tokens.Verify(token)
		if err != nil {
			logging.Ctx(r.Context()).Debug().Err(err).Msg("session token rejected")
			next.ServeHTTP(w, r)
			return
		}

		ctx := ContextWithPrincipal(r.Context(), principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken extracts the token from the Authorization header, falling
// back to the session cookie used by the browser app.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := r.Cookie("lectern_session"); err == nil {
		return cookie.Value
	}
	return ""
}
