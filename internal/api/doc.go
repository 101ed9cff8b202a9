// Lectern - Congregation Meeting Scheduling and Administration
// Copyright 2026 Lectern Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-app/lectern

// Package api implements the HTTP surface: the chi router, the session
// endpoints, and the guarded CRUD handlers for publishers, speakers, and
// weekend meeting exceptions.
//
// Every mutation follows the same pipeline: validate the request shape,
// check the authorization requirement, perform the store operation, then
// record an audit event. The order is fixed; a failure at any stage stops
// the pipeline with no later-stage effects.
package api
