// Lectern - Congregation Meeting Scheduling and Administration
// Copyright 2026 Lectern Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-app/lectern

package audit

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/lectern-app/lectern/internal/logging"
)

var (
	// eventsRecorded counts appended audit events by kind.
	eventsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lectern_audit_events_total",
			Help: "Total number of audit events appended",
		},
		[]string{"kind"},
	)

	// appendFailures counts events whose append failed. The mutation the
	// event describes already succeeded, so these are the events the log
	// is missing.
	appendFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lectern_audit_append_failures_total",
			Help: "Total number of audit events that could not be appended",
		},
	)
)

// RecorderConfig holds configuration for the audit recorder.
type RecorderConfig struct {
	// Enabled controls whether events are recorded at all.
	Enabled bool `json:"enabled"`

	// RetentionDays is how long events are kept.
	RetentionDays int `json:"retention_days"`

	// CleanupInterval is how often retention pruning runs.
	CleanupInterval time.Duration `json:"cleanup_interval"`
}

// DefaultRecorderConfig returns sensible defaults.
func DefaultRecorderConfig() *RecorderConfig {
	return &RecorderConfig{
		Enabled:         true,
		RetentionDays:   365,
		CleanupInterval: 24 * time.Hour,
	}
}

// Recorder appends events to a store. Recording is synchronous and runs
// after the mutation it describes succeeded; an append failure is
// logged and counted but never propagated, so the caller's response is
// unaffected.
type Recorder struct {
	config  *RecorderConfig
	store   Store
	enabled atomic.Bool
}

// NewRecorder creates a recorder over the given store.
func NewRecorder(store Store, config *RecorderConfig) *Recorder {
	if config == nil {
		config = DefaultRecorderConfig()
	}
	r := &Recorder{config: config, store: store}
	r.enabled.Store(config.Enabled)
	return r
}

// Record appends the event. A nil event is ignored; callers construct
// events through NewEvent, so nil only occurs when construction failed
// and was already reported.
func (r *Recorder) Record(ctx context.Context, event *Event) {
	if event == nil || !r.enabled.Load() {
		return
	}

	// Do not let a cancelled request context abort the append; the
	// mutation already happened.
	appendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := r.store.Append(appendCtx, event); err != nil {
		appendFailures.Inc()
		logging.Error().
			Err(err).
			Str("kind", string(event.Kind)).
			Str("event_id", event.ID).
			Msg("Failed to append audit event")
		return
	}

	eventsRecorded.WithLabelValues(string(event.Kind)).Inc()
	logging.Ctx(ctx).Debug().
		Str("kind", string(event.Kind)).
		Str("event_id", event.ID).
		Msg("Audit event recorded")
}

// List retrieves events matching the filter.
func (r *Recorder) List(ctx context.Context, filter Filter) ([]Event, error) {
	return r.store.List(ctx, filter)
}

// Count returns the number of events matching the filter.
func (r *Recorder) Count(ctx context.Context, filter Filter) (int64, error) {
	return r.store.Count(ctx, filter)
}

// SetEnabled enables or disables recording.
func (r *Recorder) SetEnabled(enabled bool) {
	r.enabled.Store(enabled)
}

// Enabled reports whether recording is active.
func (r *Recorder) Enabled() bool {
	return r.enabled.Load()
}

// StartRetention runs periodic retention pruning until the context is
// cancelled.
func (r *Recorder) StartRetention(ctx context.Context) {
	interval := r.config.CleanupInterval
	retention := r.config.RetentionDays
	if interval <= 0 || retention <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cutoff := time.Now().AddDate(0, 0, -retention)
				count, err := r.store.Prune(ctx, cutoff)
				if err != nil {
					logging.Error().Err(err).Msg("Audit retention pruning error")
				} else if count > 0 {
					logging.Info().Int64("count", count).Msg("Pruned expired audit events")
				}
			}
		}
	}()
}
