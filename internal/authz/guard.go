// Lectern - Congregation Meeting Scheduling and Administration
// Copyright 2026 Lectern Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-app/lectern

package authz

import (
	"context"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/lectern-app/lectern/internal/auth"
	"github.com/lectern-app/lectern/internal/logging"
)

// Guard evaluates requirements against the session's resolved permission
// set. It is the single precondition gate for every protected operation:
// it runs to completion before any domain effect and has no side effects
// on failure.
type Guard struct {
	resolver *Resolver
}

// NewGuard creates a guard backed by the resolver.
func NewGuard(resolver *Resolver) *Guard {
	return &Guard{resolver: resolver}
}

// Check resolves the permission set for the request's principal and
// evaluates the requirement. It returns nil on pass and a *DeniedError on
// failure. A missing principal fails exactly like a missing capability.
//
// Check is idempotent: re-invoking it with the same requirement and an
// unchanged permission set always yields the same outcome.
func (g *Guard) Check(ctx context.Context, req Requirement) error {
	principal := auth.PrincipalFromContext(ctx)
	set := g.resolver.Resolve(ctx, principal)

	if req.Satisfied(set) {
		guardDecisions.WithLabelValues(decisionAllowed).Inc()
		return nil
	}

	guardDecisions.WithLabelValues(decisionDenied).Inc()
	if principal == nil {
		return &DeniedError{Authenticated: false, MessageKey: MessageKeyLoginRequired}
	}
	logging.Ctx(ctx).Warn().
		Str("principal", principal.ID).
		Str("congregation", principal.CongregationID).
		Msg("authorization denied")
	return &DeniedError{Authenticated: true, MessageKey: MessageKeyInsufficientPermissions}
}

// RequirePermission returns middleware enforcing the requirement for API
// routes. Denied requests receive a structured JSON error carrying only
// the localizable message key: 401 without a principal, 403 with one.
func (g *Guard) RequirePermission(req Requirement) func(http.Handler) http.Handler {
	MustRequire(req)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := g.Check(r.Context(), req); err != nil {
				writeDenied(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSection returns the entry-guard variant used for whole navigable
// sections: instead of a structured error, a denied request is redirected
// to the fallback location. Resolution and evaluation are identical to
// RequirePermission; only the failure action differs.
func (g *Guard) RequireSection(req Requirement, fallback string) func(http.Handler) http.Handler {
	MustRequire(req)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := g.Check(r.Context(), req); err != nil {
				http.Redirect(w, r, fallback, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Permissions returns the resolved capability set for the request's
// principal, for the permissions endpoint that keeps browser-side checks
// in agreement with server-side ones.
func (g *Guard) Permissions(ctx context.Context) PermissionSet {
	return g.resolver.Resolve(ctx, auth.PrincipalFromContext(ctx))
}

// deniedResponse is the guard's wire-level error envelope. It matches the
// shape written by the api package so clients see one error format.
type deniedResponse struct {
	Error deniedBody `json:"error"`
}

type deniedBody struct {
	Key     string `json:"key"`
	Message string `json:"message"`
}

func writeDenied(w http.ResponseWriter, err error) {
	status := http.StatusUnauthorized
	key := MessageKeyLoginRequired
	if denied, ok := err.(*DeniedError); ok {
		key = denied.MessageKey
		if denied.Authenticated {
			status = http.StatusForbidden
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // nothing left to do if the response writer fails
	json.NewEncoder(w).Encode(deniedResponse{Error: deniedBody{
		Key:     key,
		Message: "access denied",
	}})
}
