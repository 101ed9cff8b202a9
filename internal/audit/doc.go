// Lectern - Congregation Meeting Scheduling and Administration
// Copyright 2026 Lectern Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-app/lectern

// Package audit records administrative mutations as append-only events.
//
// Every event carries a kind from a closed enumeration and a details
// payload whose concrete type is determined by that kind. Events are
// validated when constructed, so a malformed event can never reach a
// store. Recording happens after the mutation succeeded and is best
// effort: a failed append is logged and counted but never rolls back
// or fails the mutation it describes.
package audit
