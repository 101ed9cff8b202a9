// Lectern - Congregation Meeting Scheduling and Administration
// Copyright 2026 Lectern Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-app/lectern

package services

import (
	"context"
	"time"

	"github.com/lectern-app/lectern/internal/audit"
	"github.com/lectern-app/lectern/internal/logging"
)

// AuditRetentionService prunes audit events past the retention window on
// a fixed interval. Pruning errors are logged and retried on the next
// tick rather than crashing the service.
type AuditRetentionService struct {
	store         audit.Store
	retentionDays int
	interval      time.Duration
}

// NewAuditRetentionService creates the retention pruner.
func NewAuditRetentionService(store audit.Store, retentionDays int, interval time.Duration) *AuditRetentionService {
	if retentionDays <= 0 {
		retentionDays = 365
	}
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &AuditRetentionService{
		store:         store,
		retentionDays: retentionDays,
		interval:      interval,
	}
}

// Serve implements suture.Service.
func (s *AuditRetentionService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.prune(ctx)
		}
	}
}

func (s *AuditRetentionService) prune(ctx context.Context) {
	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)
	count, err := s.store.Prune(ctx, cutoff)
	if err != nil {
		logging.Error().Err(err).Msg("Audit retention pruning error")
		return
	}
	if count > 0 {
		logging.Info().
			Int64("count", count).
			Time("cutoff", cutoff).
			Msg("Pruned expired audit events")
	}
}

// String identifies the service in suture's logs.
func (s *AuditRetentionService) String() string {
	return "audit-retention"
}
