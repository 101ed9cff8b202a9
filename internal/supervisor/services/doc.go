// Lectern - Congregation Meeting Scheduling and Administration
// Copyright 2026 Lectern Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-app/lectern

// Package services contains suture.Service wrappers for Lectern's
// long-running components: the HTTP server, audit retention pruning,
// and badger value log maintenance.
package services
