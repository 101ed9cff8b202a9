// Lectern - Congregation Meeting Scheduling and Administration
// Copyright 2026 Lectern Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-app/lectern

// Package authz implements capability-based authorization for Lectern.
//
// Every protected operation is gated on a (resource, action) capability
// pair drawn from a closed table declared at startup. The package has
// three cooperating pieces:
//
//   - The capability model: Capability, PermissionSet, and the declared
//     table. Pure functions, no I/O; unknown pairs evaluate to false.
//
//   - The resolver: produces the full PermissionSet for a session by
//     fetching grants from a GrantStore exactly once per session,
//     collapsing concurrent first resolutions into a single fetch. A
//     failed fetch yields an empty set (fail closed), never a stale or
//     permissive one.
//
//   - The guard: evaluates a Requirement (AND across resources, OR within
//     a resource's action set) against the resolved set. It is used both
//     as chi middleware for whole sections (redirect on failure) and as
//     an in-handler precondition (structured error on failure); both
//     shapes share the same resolution and evaluation path.
//
// Grants are always evaluated inside the principal's own congregation:
// the GrantStore receives the congregation ID with every fetch, and the
// casbin-backed implementation uses it as the policy domain, so a grant
// in one congregation can never satisfy a check in another.
package authz
