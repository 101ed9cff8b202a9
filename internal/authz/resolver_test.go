// Lectern - Congregation Meeting Scheduling and Administration
// Copyright 2026 Lectern Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-app/lectern

package authz

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lectern-app/lectern/internal/auth"
)

// fakeGrantStore counts fetches and can fail or stall on demand.
type fakeGrantStore struct {
	mu      sync.Mutex
	grants  []Capability
	err     error
	delay   time.Duration
	fetches atomic.Int64
}

func (f *fakeGrantStore) FetchGrants(ctx context.Context, principalID, congregationID string) ([]Capability, error) {
	f.fetches.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]Capability, len(f.grants))
	copy(out, f.grants)
	return out, nil
}

func (f *fakeGrantStore) setGrants(grants []Capability) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.grants = grants
	f.err = nil
}

func (f *fakeGrantStore) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func testPrincipal(session string) *auth.Principal {
	return &auth.Principal{
		ID:             "user-1",
		Username:       "alice",
		CongregationID: "cong-1",
		SessionID:      session,
	}
}

// noBreakerConfig keeps breaker state out of unit tests so failure counts
// from one test cannot trip another.
func noBreakerConfig() *ResolverConfig {
	return &ResolverConfig{FetchTimeout: time.Second, BreakerEnabled: false}
}

func TestResolver_FetchesOncePerSession(t *testing.T) {
	store := &fakeGrantStore{grants: []Capability{{ResourcePublishers, ActionCreate}}}
	r := NewResolver(store, noBreakerConfig())
	ctx := context.Background()
	p := testPrincipal("sess-1")

	for i := 0; i < 5; i++ {
		set := r.Resolve(ctx, p)
		if !set.Has(ResourcePublishers, ActionCreate) {
			t.Fatalf("resolution %d missing granted capability", i)
		}
	}

	if n := store.fetches.Load(); n != 1 {
		t.Errorf("fetches = %d, want 1 (at most one fetch per session)", n)
	}
}

func TestResolver_ConcurrentFirstCallsCollapse(t *testing.T) {
	store := &fakeGrantStore{
		grants: []Capability{{ResourceSpeakers, ActionUpdate}},
		delay:  50 * time.Millisecond,
	}
	r := NewResolver(store, noBreakerConfig())
	p := testPrincipal("sess-concurrent")

	const callers = 32
	var wg sync.WaitGroup
	results := make([]PermissionSet, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx] = r.Resolve(context.Background(), p)
		}(i)
	}
	wg.Wait()

	if n := store.fetches.Load(); n != 1 {
		t.Errorf("fetches = %d, want exactly 1 for %d concurrent callers", n, callers)
	}
	for i, set := range results {
		if !set.Has(ResourceSpeakers, ActionUpdate) {
			t.Errorf("caller %d observed a different set than the resolved one", i)
		}
	}
}

func TestResolver_NilPrincipalResolvesEmpty(t *testing.T) {
	store := &fakeGrantStore{grants: []Capability{{ResourcePublishers, ActionRead}}}
	r := NewResolver(store, noBreakerConfig())

	set := r.Resolve(context.Background(), nil)
	if set.Len() != 0 {
		t.Errorf("nil principal resolved %d capabilities, want 0", set.Len())
	}
	if n := store.fetches.Load(); n != 0 {
		t.Errorf("fetches = %d, want 0 for nil principal", n)
	}
}

func TestResolver_StoreFailureFailsClosed(t *testing.T) {
	store := &fakeGrantStore{}
	store.setErr(errors.New("grant store down"))
	r := NewResolver(store, noBreakerConfig())
	p := testPrincipal("sess-fail")

	set := r.Resolve(context.Background(), p)
	if set.Len() != 0 {
		t.Fatalf("failed fetch resolved %d capabilities, want 0 (fail closed)", set.Len())
	}

	// The failure is not cached: recovery is visible on the next request.
	store.setGrants([]Capability{{ResourcePublishers, ActionRead}})
	set = r.Resolve(context.Background(), p)
	if !set.Has(ResourcePublishers, ActionRead) {
		t.Error("resolver cached the failed resolution instead of retrying")
	}
	if n := store.fetches.Load(); n != 2 {
		t.Errorf("fetches = %d, want 2 (failed fetch then retry)", n)
	}
}

func TestResolver_InvalidateForcesRefetch(t *testing.T) {
	store := &fakeGrantStore{grants: []Capability{{ResourcePublishers, ActionRead}}}
	r := NewResolver(store, noBreakerConfig())
	p := testPrincipal("sess-inv")

	r.Resolve(context.Background(), p)
	store.setGrants([]Capability{
		{ResourcePublishers, ActionRead},
		{ResourcePublishers, ActionCreate},
	})

	// Without invalidation the cached set stays authoritative.
	set := r.Resolve(context.Background(), p)
	if set.Has(ResourcePublishers, ActionCreate) {
		t.Fatal("grant change became visible without explicit invalidation")
	}

	r.Invalidate(p.SessionID)
	set = r.Resolve(context.Background(), p)
	if !set.Has(ResourcePublishers, ActionCreate) {
		t.Error("invalidation did not trigger a re-fetch")
	}
	if n := store.fetches.Load(); n != 2 {
		t.Errorf("fetches = %d, want 2", n)
	}
}

func TestResolver_SessionsAreIsolated(t *testing.T) {
	store := &fakeGrantStore{grants: []Capability{{ResourcePublishers, ActionRead}}}
	r := NewResolver(store, noBreakerConfig())

	r.Resolve(context.Background(), testPrincipal("sess-a"))
	r.Resolve(context.Background(), testPrincipal("sess-b"))

	if n := store.fetches.Load(); n != 2 {
		t.Errorf("fetches = %d, want 2 (one per session)", n)
	}
	if n := r.CachedSessions(); n != 2 {
		t.Errorf("CachedSessions() = %d, want 2", n)
	}
}

func TestResolver_BreakerOpensAfterFailures(t *testing.T) {
	store := &fakeGrantStore{}
	store.setErr(errors.New("grant store down"))
	r := NewResolver(store, &ResolverConfig{
		FetchTimeout:    time.Second,
		BreakerEnabled:  true,
		BreakerFailures: 2,
		BreakerTimeout:  time.Minute,
	})

	// Distinct sessions so every call reaches the store until the breaker opens.
	for i := 0; i < 5; i++ {
		p := testPrincipal("sess-breaker-" + string(rune('a'+i)))
		set := r.Resolve(context.Background(), p)
		if set.Len() != 0 {
			t.Fatalf("call %d resolved non-empty set while store is down", i)
		}
	}

	// Two failures trip the breaker; later calls fail fast without a fetch.
	if n := store.fetches.Load(); n != 2 {
		t.Errorf("fetches = %d, want 2 (breaker should shed the rest)", n)
	}
}

func TestResolver_CancelledWaiterFailsClosed(t *testing.T) {
	store := &fakeGrantStore{
		grants: []Capability{{ResourcePublishers, ActionRead}},
		delay:  200 * time.Millisecond,
	}
	r := NewResolver(store, noBreakerConfig())
	p := testPrincipal("sess-cancel")

	go r.Resolve(context.Background(), p)
	time.Sleep(20 * time.Millisecond) // let the first call take the flight

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	set := r.Resolve(ctx, p)
	if set.Len() != 0 {
		t.Error("cancelled waiter must observe the empty set, not a partial result")
	}
}
