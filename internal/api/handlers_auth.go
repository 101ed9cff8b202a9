// Lectern - Congregation Meeting Scheduling and Administration
// Copyright 2026 Lectern Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-app/lectern

package api

import (
	"net"
	"net/http"

	"github.com/lectern-app/lectern/internal/auth"
	"github.com/lectern-app/lectern/internal/authz"
	"github.com/lectern-app/lectern/internal/logging"
)

// sessionCookieName is the cookie carrying the session token for the
// browser app. API clients use the Authorization header instead.
const sessionCookieName = "lectern_session"

type loginRequest struct {
	Username string `json:"username" validate:"required,max=200"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string    `json:"token"`
	User  loginUser `json:"user"`
}

type loginUser struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	CongregationID string `json:"congregation_id"`
}

// Login verifies credentials and establishes a session. Attempts are
// rate-limited per client address before any credential work happens.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.loginLimiter.Allow(clientKey(r)) {
		respondError(w, http.StatusTooManyRequests, KeyTooManyLoginAttempts)
		return
	}

	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.credentials.Verify(r.Context(), req.Username, req.Password)
	if err != nil {
		logging.Ctx(r.Context()).Info().
			Str("username", req.Username).
			Msg("login rejected")
		respondError(w, http.StatusUnauthorized, KeyInvalidCredentials)
		return
	}

	token, principal, err := h.tokens.Issue(user.ID, user.Username, user.CongregationID)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("session token issue failed")
		respondError(w, http.StatusInternalServerError, KeyInternal)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.config.Security.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.config.Security.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	logging.Ctx(r.Context()).Info().
		Str("principal", principal.ID).
		Str("congregation", principal.CongregationID).
		Msg("session established")

	writeJSON(w, http.StatusOK, loginResponse{
		Token: token,
		User: loginUser{
			ID:             user.ID,
			Username:       user.Username,
			CongregationID: user.CongregationID,
		},
	})
}

// Logout ends the session: the cached permission set is dropped and the
// session cookie cleared. Safe to call without a session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if principal := auth.PrincipalFromContext(r.Context()); principal != nil {
		h.resolver.Invalidate(principal.SessionID)
		logging.Ctx(r.Context()).Info().
			Str("principal", principal.ID).
			Msg("session ended")
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.Security.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

type permissionsResponse struct {
	Permissions []authz.Capability `json:"permissions"`
}

// Permissions returns the session's resolved capability set so the
// browser app can mirror server-side checks. An unauthenticated request
// receives the empty set, not an error.
func (h *Handler) Permissions(w http.ResponseWriter, r *http.Request) {
	set := h.guard.Permissions(r.Context())
	writeJSON(w, http.StatusOK, permissionsResponse{Permissions: set.Capabilities()})
}

type invalidateRequest struct {
	SessionID string `json:"session_id" validate:"required"`
}

// InvalidatePermissions drops the cached permission set for a session,
// forcing a grant re-fetch on its next request. Used after role changes.
func (h *Handler) InvalidatePermissions(w http.ResponseWriter, r *http.Request) {
	var req invalidateRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.resolver.Invalidate(req.SessionID)
	w.WriteHeader(http.StatusNoContent)
}

// clientKey derives the rate-limit key from the client address.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
