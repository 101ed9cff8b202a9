// Lectern - Congregation Meeting Scheduling and Administration
// Copyright 2026 Lectern Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-app/lectern

package authz

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	decisionAllowed = "allowed"
	decisionDenied  = "denied"
)

var (
	// guardDecisions counts guard evaluations by outcome, for alerting on
	// denial spikes.
	guardDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lectern_guard_decisions_total",
			Help: "Total number of route guard decisions",
		},
		[]string{"decision"},
	)

	// grantFetches counts underlying grant-store fetches. Under the
	// single-flight rule this stays at one per session between
	// invalidations.
	grantFetches = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lectern_grant_fetches_total",
			Help: "Total number of grant store fetches",
		},
	)

	// grantFetchFailures counts fetches that failed and resolved closed.
	grantFetchFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lectern_grant_fetch_failures_total",
			Help: "Total number of failed grant store fetches (resolved as empty set)",
		},
	)

	// grantCacheHits counts resolutions served from a ready cache entry.
	grantCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lectern_grant_cache_hits_total",
			Help: "Total number of permission resolutions served from the session cache",
		},
	)

	// grantResolutionsCollapsed counts callers that waited on another
	// caller's in-flight fetch instead of issuing their own.
	grantResolutionsCollapsed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lectern_grant_resolutions_collapsed_total",
			Help: "Total number of permission resolutions collapsed into an in-flight fetch",
		},
	)

	// grantCacheInvalidations counts explicit session cache invalidations.
	grantCacheInvalidations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lectern_grant_cache_invalidations_total",
			Help: "Total number of explicit permission cache invalidations",
		},
	)
)
