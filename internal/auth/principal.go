// Lectern - Congregation Meeting Scheduling and Administration
// Copyright 2026 Lectern Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-app/lectern

// Package auth provides session authentication for Lectern: principals,
// JWT session tokens, credential verification, and the middleware that
// attaches the authenticated principal to the request context.
//
// Authentication and authorization are deliberately separate: this package
// only establishes who is making the request. Whether that principal may
// perform an operation is decided by internal/authz against the grants
// resolved for the session.
package auth

import (
	"context"
	"errors"
)

// Standard authentication errors.
var (
	// ErrNoCredentials indicates no credentials were provided.
	ErrNoCredentials = errors.New("no credentials provided")

	// ErrInvalidCredentials indicates credentials were invalid.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrExpiredCredentials indicates credentials have expired.
	ErrExpiredCredentials = errors.New("credentials expired")
)

// Principal is the authenticated actor making a request. It is created at
// session establishment, attached to every request for that session, and
// discarded when the session ends.
type Principal struct {
	// ID is the unique identifier of the user.
	ID string `json:"id"`

	// Username is the human-readable name, used in audit actor records.
	Username string `json:"username"`

	// CongregationID scopes every grant lookup and domain operation to
	// the principal's own congregation.
	CongregationID string `json:"congregation_id"`

	// SessionID identifies the session; it is the cache key for the
	// resolved permission set.
	SessionID string `json:"session_id"`
}

type contextKey string

const principalKey contextKey = "principal"

// ContextWithPrincipal returns a context carrying the principal.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext returns the request's principal, or nil when the
// request is unauthenticated. Callers must treat nil as "no access".
func PrincipalFromContext(ctx context.Context) *Principal {
	if p, ok := ctx.Value(principalKey).(*Principal); ok {
		return p
	}
	return nil
}
