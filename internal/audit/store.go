// Lectern - Congregation Meeting Scheduling and Administration
// Copyright 2026 Lectern Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-app/lectern

package audit

import (
	"context"
	"sync"
	"time"
)

// Store defines append-only audit event persistence. There is no update
// or single-event delete; Prune exists only for retention.
type Store interface {
	// Append persists an event.
	Append(ctx context.Context, event *Event) error

	// List retrieves events matching the filter, most recent first.
	List(ctx context.Context, filter Filter) ([]Event, error)

	// Count returns the number of events matching the filter.
	Count(ctx context.Context, filter Filter) (int64, error)

	// Prune removes events older than the retention cutoff and returns
	// how many were removed.
	Prune(ctx context.Context, olderThan time.Time) (int64, error)
}

// Filter defines the query options for reading the audit log.
type Filter struct {
	// Kinds filters by event kind.
	Kinds []Kind `json:"kinds,omitempty"`

	// ActorID filters by the acting user.
	ActorID string `json:"actor_id,omitempty"`

	// CongregationID scopes the read to one congregation.
	CongregationID string `json:"congregation_id,omitempty"`

	// StartTime is the beginning of the time range.
	StartTime *time.Time `json:"start_time,omitempty"`

	// EndTime is the end of the time range.
	EndTime *time.Time `json:"end_time,omitempty"`

	// Limit is the maximum number of results.
	Limit int `json:"limit,omitempty"`
}

// DefaultFilter returns the filter used when a query specifies nothing.
func DefaultFilter() Filter {
	return Filter{Limit: 100}
}

func (f *Filter) matches(event *Event) bool {
	if len(f.Kinds) > 0 {
		found := false
		for _, k := range f.Kinds {
			if event.Kind == k {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if f.ActorID != "" && event.Actor.ID != f.ActorID {
		return false
	}
	if f.CongregationID != "" && event.Actor.CongregationID != f.CongregationID {
		return false
	}

	if f.StartTime != nil && event.Timestamp.Before(*f.StartTime) {
		return false
	}
	if f.EndTime != nil && event.Timestamp.After(*f.EndTime) {
		return false
	}

	return true
}

// MemoryStore implements Store in memory. Suitable for development and
// testing. Data is lost on restart.
type MemoryStore struct {
	events []Event
	mu     sync.RWMutex
	maxLen int
}

// NewMemoryStore creates an in-memory audit store bounded to maxLen
// events.
func NewMemoryStore(maxLen int) *MemoryStore {
	if maxLen <= 0 {
		maxLen = 10000
	}
	return &MemoryStore{
		events: make([]Event, 0, maxLen),
		maxLen: maxLen,
	}
}

// Append persists an event.
func (s *MemoryStore) Append(ctx context.Context, event *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Enforce max length by dropping the oldest tenth.
	if len(s.events) >= s.maxLen {
		removeCount := s.maxLen / 10
		if removeCount < 1 {
			removeCount = 1
		}
		s.events = s.events[removeCount:]
	}

	s.events = append(s.events, *event)
	return nil
}

// List retrieves events matching the filter, most recent first.
func (s *MemoryStore) List(ctx context.Context, filter Filter) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []Event
	for i := len(s.events) - 1; i >= 0; i-- {
		event := s.events[i]
		if !filter.matches(&event) {
			continue
		}
		results = append(results, event)
		if filter.Limit > 0 && len(results) >= filter.Limit {
			break
		}
	}
	return results, nil
}

// Count returns the number of events matching the filter.
func (s *MemoryStore) Count(ctx context.Context, filter Filter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for i := range s.events {
		if filter.matches(&s.events[i]) {
			count++
		}
	}
	return count, nil
}

// Prune removes events older than the cutoff.
func (s *MemoryStore) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var kept []Event
	var pruned int64
	for i := range s.events {
		if s.events[i].Timestamp.Before(olderThan) {
			pruned++
		} else {
			kept = append(kept, s.events[i])
		}
	}
	s.events = kept
	return pruned, nil
}

// Len returns the number of stored events.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}
