// Lectern - Congregation Meeting Scheduling and Administration
// Copyright 2026 Lectern Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-app/lectern

// Package store defines the domain persistence interfaces consumed by the
// mutation pipeline, plus in-memory implementations.
//
// The relational layer behind these interfaces is an external collaborator:
// the authorization and audit core only needs opaque, possibly-failing
// create/update/delete operations that return the mutated resource's
// identifying fields. Every operation is scoped to a congregation; an ID
// that exists in another congregation is indistinguishable from a missing
// one.
package store

import (
	"context"
	"errors"

	"github.com/lectern-app/lectern/internal/models"
)

// ErrNotFound is returned when the referenced resource does not exist in
// the caller's congregation.
var ErrNotFound = errors.New("resource not found")

// PublisherStore persists publishers.
type PublisherStore interface {
	Get(ctx context.Context, congregationID, id string) (*models.Publisher, error)
	List(ctx context.Context, congregationID string) ([]models.Publisher, error)
	Create(ctx context.Context, p *models.Publisher) error
	Update(ctx context.Context, p *models.Publisher) error
	Delete(ctx context.Context, congregationID, id string) (*models.Publisher, error)
}

// SpeakerStore persists speakers.
type SpeakerStore interface {
	Get(ctx context.Context, congregationID, id string) (*models.Speaker, error)
	List(ctx context.Context, congregationID string) ([]models.Speaker, error)
	Create(ctx context.Context, s *models.Speaker) error
	Update(ctx context.Context, s *models.Speaker) error
	Delete(ctx context.Context, congregationID, id string) (*models.Speaker, error)
}

// MeetingExceptionStore persists weekend meeting exceptions.
type MeetingExceptionStore interface {
	Get(ctx context.Context, congregationID, id string) (*models.MeetingException, error)
	List(ctx context.Context, congregationID string) ([]models.MeetingException, error)
	Create(ctx context.Context, e *models.MeetingException) error
	Update(ctx context.Context, e *models.MeetingException) error
	Delete(ctx context.Context, congregationID, id string) (*models.MeetingException, error)
}
