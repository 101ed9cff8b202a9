// Lectern - Congregation Meeting Scheduling and Administration
// Copyright 2026 Lectern Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-app/lectern

// Package supervisor provides Suture-based process supervision for
// Lectern. The tree isolates the storage layer (audit retention and
// badger maintenance) from the API layer, so a crashing background job
// never takes the HTTP server down with it.
package supervisor
