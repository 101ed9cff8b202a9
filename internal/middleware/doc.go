// Lectern - Congregation Meeting Scheduling and Administration
// Copyright 2026 Lectern Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-app/lectern

// Package middleware provides HTTP middleware shared by all routes:
// request ID propagation, structured access logging, and Prometheus
// instrumentation. Authentication and authorization middleware live in
// internal/auth and internal/authz.
package middleware
