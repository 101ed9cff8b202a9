// Lectern - Congregation Meeting Scheduling and Administration
// Copyright 2026 Lectern Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-app/lectern

package authz

import "errors"

// Message keys surfaced to clients on guard failure. Clients localize
// these; internal capability names never appear in user-facing messages.
const (
	MessageKeyLoginRequired           = "errors.loginRequired"
	MessageKeyInsufficientPermissions = "errors.insufficientPermissions"
)

// ErrDenied is the sentinel matched by errors.Is for any guard denial.
var ErrDenied = errors.New("access denied")

// DeniedError is returned when a guard rejects a request. It distinguishes
// the missing-principal case only for HTTP status mapping (401 vs 403);
// evaluation itself treats both identically.
type DeniedError struct {
	// Authenticated is true when a principal was present but lacked the
	// required capability.
	Authenticated bool

	// MessageKey is the stable, localizable key for the client.
	MessageKey string
}

func (e *DeniedError) Error() string {
	if e.Authenticated {
		return "access denied: insufficient permissions"
	}
	return "access denied: authentication required"
}

// Unwrap lets errors.Is(err, ErrDenied) match all guard denials.
func (e *DeniedError) Unwrap() error {
	return ErrDenied
}
