// Lectern - Congregation Meeting Scheduling and Administration
// Copyright 2026 Lectern Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-app/lectern

package audit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// eventKeyPrefix namespaces audit keys inside the shared badger database.
const eventKeyPrefix = "audit:"

// BadgerStore implements Store on BadgerDB for durable, append-only
// storage. Keys are ordered by timestamp so iteration yields events in
// time order without an index.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore creates a BadgerDB-backed audit store.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// eventKey builds a lexicographically time-ordered key. The zero-padded
// nanosecond timestamp sorts correctly as bytes; the event ID breaks
// ties between events in the same nanosecond.
func eventKey(timestamp time.Time, id string) []byte {
	return []byte(eventKeyPrefix + fmt.Sprintf("%020d", timestamp.UnixNano()) + ":" + id)
}

// keyTimestamp extracts the nanosecond timestamp back out of a key.
func keyTimestamp(key []byte) (int64, error) {
	raw := string(key)
	if len(raw) < len(eventKeyPrefix)+20 {
		return 0, fmt.Errorf("malformed audit key %q", raw)
	}
	return strconv.ParseInt(raw[len(eventKeyPrefix):len(eventKeyPrefix)+20], 10, 64)
}

// Append persists an event. Existing keys are never overwritten or
// removed outside of retention pruning.
func (s *BadgerStore) Append(ctx context.Context, event *Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(eventKey(event.Timestamp, event.ID), data)
	})
}

// List retrieves events matching the filter, most recent first.
func (s *BadgerStore) List(ctx context.Context, filter Filter) ([]Event, error) {
	var results []Event

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		// With Reverse set, seeking to the prefix plus 0xFF lands on the
		// newest audit key.
		seek := append([]byte(eventKeyPrefix), 0xFF)
		prefix := []byte(eventKeyPrefix)
		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var event Event
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &event)
			})
			if err != nil {
				return fmt.Errorf("decode audit event: %w", err)
			}

			if !filter.matches(&event) {
				continue
			}
			results = append(results, event)
			if filter.Limit > 0 && len(results) >= filter.Limit {
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Count returns the number of events matching the filter.
func (s *BadgerStore) Count(ctx context.Context, filter Filter) (int64, error) {
	var count int64

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(eventKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var event Event
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &event)
			})
			if err != nil {
				return fmt.Errorf("decode audit event: %w", err)
			}

			if filter.matches(&event) {
				count++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Prune removes events older than the cutoff. Key order means the scan
// can stop at the first key at or past the cutoff.
func (s *BadgerStore) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	cutoff := olderThan.UnixNano()

	var stale [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(eventKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().KeyCopy(nil)
			ts, err := keyTimestamp(key)
			if err != nil {
				return err
			}
			if ts >= cutoff {
				break
			}
			stale = append(stale, key)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	var pruned int64
	for _, key := range stale {
		if err := ctx.Err(); err != nil {
			return pruned, err
		}
		err := s.db.Update(func(txn *badger.Txn) error {
			return txn.Delete(key)
		})
		if err != nil {
			return pruned, fmt.Errorf("prune audit event: %w", err)
		}
		pruned++
	}
	return pruned, nil
}

// RunValueLogGC triggers one badger value log garbage collection cycle.
// badger.ErrNoRewrite means there was nothing to reclaim.
func (s *BadgerStore) RunValueLogGC(discardRatio float64) error {
	return s.db.RunValueLogGC(discardRatio)
}
