// Lectern - Congregation Meeting Scheduling and Administration
// Copyright 2026 Lectern Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-app/lectern

package authz

import (
	"context"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/lectern-app/lectern/internal/auth"
	"github.com/lectern-app/lectern/internal/logging"
)

// GrantStore fetches the capability grants held by a principal inside one
// congregation. Implementations may be slow or unavailable; the resolver
// treats any failure as an empty grant set.
type GrantStore interface {
	FetchGrants(ctx context.Context, principalID, congregationID string) ([]Capability, error)
}

// ResolverConfig holds configuration for the permission resolver.
type ResolverConfig struct {
	// FetchTimeout bounds a single grant-store fetch.
	// Default: 5s
	FetchTimeout time.Duration

	// BreakerEnabled wraps grant fetches in a circuit breaker so a dead
	// grant store sheds load quickly instead of timing out every request.
	BreakerEnabled bool

	// BreakerFailures is the consecutive-failure count that opens the
	// breaker. Default: 5
	BreakerFailures uint32

	// BreakerTimeout is how long the breaker stays open before probing.
	// Default: 30s
	BreakerTimeout time.Duration
}

// DefaultResolverConfig returns default configuration.
func DefaultResolverConfig() *ResolverConfig {
	return &ResolverConfig{
		FetchTimeout:    5 * time.Second,
		BreakerEnabled:  true,
		BreakerFailures: 5,
		BreakerTimeout:  30 * time.Second,
	}
}

// entryState tags a session cache entry.
type entryState int

const (
	// stateResolving: a fetch is in flight; waiters block on done.
	stateResolving entryState = iota + 1

	// stateReady: the set is resolved; reads are lock-free after lookup.
	stateReady
)

// sessionEntry is the cache slot for one session's permission set.
// An absent map entry is the implicit Empty state.
type sessionEntry struct {
	state entryState

	// done is closed when the in-flight resolution completes. All waiters
	// then observe the same set.
	done chan struct{}

	set PermissionSet
}

// Resolver produces the permission set for a session, fetching grants at
// most once per session and collapsing concurrent first resolutions into a
// single underlying fetch.
//
// Failed fetches are delivered to all waiters as the empty set and are not
// cached, so a later request may retry once the grant store recovers.
type Resolver struct {
	store   GrantStore
	config  *ResolverConfig
	breaker *gobreaker.CircuitBreaker[[]Capability]

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

// NewResolver creates a permission resolver backed by the grant store.
func NewResolver(store GrantStore, config *ResolverConfig) *Resolver {
	if config == nil {
		config = DefaultResolverConfig()
	}
	if config.FetchTimeout <= 0 {
		config.FetchTimeout = 5 * time.Second
	}

	r := &Resolver{
		store:    store,
		config:   config,
		sessions: make(map[string]*sessionEntry),
	}

	if config.BreakerEnabled {
		failures := config.BreakerFailures
		if failures == 0 {
			failures = 5
		}
		timeout := config.BreakerTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		r.breaker = gobreaker.NewCircuitBreaker[[]Capability](gobreaker.Settings{
			Name:    "grant-store",
			Timeout: timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= failures
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logging.Warn().
					Str("breaker", name).
					Str("from", from.String()).
					Str("to", to.String()).
					Msg("grant store breaker state changed")
			},
		})
	}

	return r
}

// Resolve returns the permission set for the request's principal. A nil
// principal, an unreachable grant store, or an open breaker all yield the
// empty set: resolution fails closed, never open.
func (r *Resolver) Resolve(ctx context.Context, principal *auth.Principal) PermissionSet {
	if principal == nil || principal.SessionID == "" {
		return EmptyPermissionSet()
	}

	r.mu.Lock()
	if e, ok := r.sessions[principal.SessionID]; ok {
		switch e.state {
		case stateReady:
			r.mu.Unlock()
			grantCacheHits.Inc()
			return e.set
		case stateResolving:
			r.mu.Unlock()
			grantResolutionsCollapsed.Inc()
			select {
			case <-e.done:
				return e.set
			case <-ctx.Done():
				// The caller gave up before the shared fetch finished.
				return EmptyPermissionSet()
			}
		}
	}

	e := &sessionEntry{state: stateResolving, done: make(chan struct{})}
	r.sessions[principal.SessionID] = e
	r.mu.Unlock()

	set, ok := r.fetch(ctx, principal)
	e.set = set

	r.mu.Lock()
	if current, present := r.sessions[principal.SessionID]; present && current == e {
		if ok {
			e.state = stateReady
		} else {
			// Do not cache a failed resolution; the next request retries.
			delete(r.sessions, principal.SessionID)
		}
	}
	r.mu.Unlock()

	close(e.done)
	return e.set
}

// fetch performs the single underlying grant-store fetch for a session.
func (r *Resolver) fetch(ctx context.Context, principal *auth.Principal) (PermissionSet, bool) {
	fetchCtx, cancel := context.WithTimeout(ctx, r.config.FetchTimeout)
	defer cancel()

	grantFetches.Inc()

	var caps []Capability
	var err error
	if r.breaker != nil {
		caps, err = r.breaker.Execute(func() ([]Capability, error) {
			return r.store.FetchGrants(fetchCtx, principal.ID, principal.CongregationID)
		})
	} else {
		caps, err = r.store.FetchGrants(fetchCtx, principal.ID, principal.CongregationID)
	}
	if err != nil {
		grantFetchFailures.Inc()
		logging.Ctx(ctx).Error().
			Err(err).
			Str("principal", principal.ID).
			Msg("grant fetch failed; resolving to empty permission set")
		return EmptyPermissionSet(), false
	}

	return NewPermissionSet(caps), true
}

// Invalidate drops the cached permission set for a session. The next
// request for that session re-fetches grants. An in-flight resolution
// still delivers its result to existing waiters, but the result is not
// retained.
func (r *Resolver) Invalidate(sessionID string) {
	if sessionID == "" {
		return
	}
	r.mu.Lock()
	_, present := r.sessions[sessionID]
	delete(r.sessions, sessionID)
	r.mu.Unlock()

	if present {
		grantCacheInvalidations.Inc()
	}
}

// CachedSessions returns the number of sessions with a live cache entry.
func (r *Resolver) CachedSessions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
