// Lectern - Congregation Meeting Scheduling and Administration
// Copyright 2026 Lectern Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-app/lectern

package services

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/lectern-app/lectern/internal/logging"
)

// ValueLogGC is the slice of the badger-backed audit store this service
// needs.
type ValueLogGC interface {
	RunValueLogGC(discardRatio float64) error
}

// BadgerGCService periodically runs badger value log garbage collection.
// Badger never reclaims value log space on its own; something has to
// call RunValueLogGC.
type BadgerGCService struct {
	store        ValueLogGC
	interval     time.Duration
	discardRatio float64
}

// NewBadgerGCService creates the GC runner.
func NewBadgerGCService(store ValueLogGC, interval time.Duration) *BadgerGCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &BadgerGCService{
		store:        store,
		interval:     interval,
		discardRatio: 0.5,
	}
}

// Serve implements suture.Service.
func (s *BadgerGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			// One GC cycle can free at most one value log file, so keep
			// going until badger reports nothing left to rewrite.
			for {
				err := s.store.RunValueLogGC(s.discardRatio)
				if errors.Is(err, badger.ErrNoRewrite) {
					break
				}
				if err != nil {
					logging.Warn().Err(err).Msg("Badger value log GC error")
					break
				}
			}
		}
	}
}

// String identifies the service in suture's logs.
func (s *BadgerGCService) String() string {
	return "badger-gc"
}
