// Lectern - Congregation Meeting Scheduling and Administration
// Copyright 2026 Lectern Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-app/lectern

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/lectern-app/lectern/internal/audit"
	"github.com/lectern-app/lectern/internal/auth"
	"github.com/lectern-app/lectern/internal/authz"
	"github.com/lectern-app/lectern/internal/config"
	"github.com/lectern-app/lectern/internal/logging"
	"github.com/lectern-app/lectern/internal/middleware"
	"github.com/lectern-app/lectern/internal/store"
)

// Dependencies collects everything the handlers need. All fields are
// required unless noted.
type Dependencies struct {
	Config       *config.Config
	Guard        *authz.Guard
	Resolver     *authz.Resolver
	Tokens       *auth.TokenManager
	Credentials  *auth.CredentialStore
	LoginLimiter *auth.LoginLimiter

	Publishers store.PublisherStore
	Speakers   store.SpeakerStore
	Exceptions store.MeetingExceptionStore

	Recorder *audit.Recorder
}

// Handler holds the HTTP handlers and their collaborators.
type Handler struct {
	config       *config.Config
	guard        *authz.Guard
	resolver     *authz.Resolver
	tokens       *auth.TokenManager
	credentials  *auth.CredentialStore
	loginLimiter *auth.LoginLimiter

	publishers store.PublisherStore
	speakers   store.SpeakerStore
	exceptions store.MeetingExceptionStore

	recorder *audit.Recorder
	validate *validator.Validate

	startTime time.Time
}

// NewHandler creates the handler set.
func NewHandler(deps Dependencies) *Handler {
	return &Handler{
		config:       deps.Config,
		guard:        deps.Guard,
		resolver:     deps.Resolver,
		tokens:       deps.Tokens,
		credentials:  deps.Credentials,
		loginLimiter: deps.LoginLimiter,
		publishers:   deps.Publishers,
		speakers:     deps.Speakers,
		exceptions:   deps.Exceptions,
		recorder:     deps.Recorder,
		validate:     validator.New(),
		startTime:    time.Now(),
	}
}

// decode reads and validates the JSON request body into dst. On failure it
// writes the error response and returns false.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, KeyInvalidPayload)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("request validation failed")
		respondError(w, http.StatusBadRequest, KeyValidationFailed)
		return false
	}
	return true
}

// recordEvent constructs and records an audit event for a mutation that
// already succeeded. Construction failures are logged, never surfaced:
// the caller's response must not depend on the audit trail.
func (h *Handler) recordEvent(ctx context.Context, kind audit.Kind, details audit.Details) {
	principal := auth.PrincipalFromContext(ctx)
	if principal == nil {
		// Mutations are guarded, so a missing principal here is a bug.
		logging.Ctx(ctx).Error().
			Str("kind", string(kind)).
			Msg("audit event for a mutation with no principal")
		return
	}

	event, err := audit.NewEvent(kind, audit.Actor{
		ID:             principal.ID,
		Username:       principal.Username,
		CongregationID: principal.CongregationID,
		SessionID:      principal.SessionID,
	}, details)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).
			Str("kind", string(kind)).
			Msg("audit event construction rejected")
		return
	}

	h.recorder.Record(ctx, event.WithRequestID(middleware.GetRequestID(ctx)))
}
