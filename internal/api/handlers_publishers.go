// Lectern - Congregation Meeting Scheduling and Administration
// Copyright 2026 Lectern Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-app/lectern

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lectern-app/lectern/internal/audit"
	"github.com/lectern-app/lectern/internal/auth"
	"github.com/lectern-app/lectern/internal/logging"
	"github.com/lectern-app/lectern/internal/models"
	"github.com/lectern-app/lectern/internal/store"
)

type publisherRequest struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Group     string `json:"group" validate:"max=100"`
	Email     string `json:"email" validate:"omitempty,email"`
	Active    bool   `json:"active"`
}

// ListPublishers returns the congregation's publishers.
func (h *Handler) ListPublishers(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	publishers, err := h.publishers.List(r.Context(), principal.CongregationID)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("publisher list failed")
		respondError(w, http.StatusInternalServerError, KeyInternal)
		return
	}
	if publishers == nil {
		publishers = []models.Publisher{}
	}
	writeJSON(w, http.StatusOK, publishers)
}

// GetPublisher returns one publisher by ID.
func (h *Handler) GetPublisher(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, KeyPublisherIDRequired)
		return
	}

	principal := auth.PrincipalFromContext(r.Context())
	publisher, err := h.publishers.Get(r.Context(), principal.CongregationID, id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, KeyPublisherNotFound)
		return
	}
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("publisher get failed")
		respondError(w, http.StatusInternalServerError, KeyInternal)
		return
	}
	writeJSON(w, http.StatusOK, publisher)
}

// CreatePublisher adds a publisher and records the creation.
func (h *Handler) CreatePublisher(w http.ResponseWriter, r *http.Request) {
	var req publisherRequest
	if !h.decode(w, r, &req) {
		return
	}

	principal := auth.PrincipalFromContext(r.Context())
	publisher := &models.Publisher{
		CongregationID: principal.CongregationID,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Group:          req.Group,
		Email:          req.Email,
		Active:         req.Active,
	}
	if err := h.publishers.Create(r.Context(), publisher); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("publisher create failed")
		respondError(w, http.StatusInternalServerError, KeyInternal)
		return
	}

	h.recordEvent(r.Context(), audit.KindPublisherCreated,
		audit.NewPublisherCreatedDetails(publisher.ID, publisher.FullName()))
	writeJSON(w, http.StatusCreated, publisher)
}

// UpdatePublisher replaces a publisher's editable fields and records
// which of them changed. A no-op update mutates nothing and leaves no
// audit record.
func (h *Handler) UpdatePublisher(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, KeyPublisherIDRequired)
		return
	}

	var req publisherRequest
	if !h.decode(w, r, &req) {
		return
	}

	principal := auth.PrincipalFromContext(r.Context())
	existing, err := h.publishers.Get(r.Context(), principal.CongregationID, id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, KeyPublisherNotFound)
		return
	}
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("publisher get failed")
		respondError(w, http.StatusInternalServerError, KeyInternal)
		return
	}

	changed := publisherChanges(existing, &req)
	if len(changed) == 0 {
		writeJSON(w, http.StatusOK, existing)
		return
	}

	updated := &models.Publisher{
		ID:             existing.ID,
		CongregationID: existing.CongregationID,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Group:          req.Group,
		Email:          req.Email,
		Active:         req.Active,
	}
	if err := h.publishers.Update(r.Context(), updated); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("publisher update failed")
		respondError(w, http.StatusInternalServerError, KeyInternal)
		return
	}

	h.recordEvent(r.Context(), audit.KindPublisherUpdated, &audit.PublisherUpdatedDetails{
		PublisherID:   updated.ID,
		FullName:      updated.FullName(),
		ChangedFields: changed,
	})
	writeJSON(w, http.StatusOK, updated)
}

// DeletePublisher removes a publisher and records the deletion.
func (h *Handler) DeletePublisher(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, KeyPublisherIDRequired)
		return
	}

	principal := auth.PrincipalFromContext(r.Context())
	deleted, err := h.publishers.Delete(r.Context(), principal.CongregationID, id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, KeyPublisherNotFound)
		return
	}
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("publisher delete failed")
		respondError(w, http.StatusInternalServerError, KeyInternal)
		return
	}

	h.recordEvent(r.Context(), audit.KindPublisherDeleted,
		audit.NewPublisherDeletedDetails(deleted.ID, deleted.FullName()))
	writeJSON(w, http.StatusOK, deleted)
}

// publisherChanges lists the editable fields the request would change.
func publisherChanges(existing *models.Publisher, req *publisherRequest) []string {
	var changed []string
	if existing.FirstName != req.FirstName {
		changed = append(changed, "first_name")
	}
	if existing.LastName != req.LastName {
		changed = append(changed, "last_name")
	}
	if existing.Group != req.Group {
		changed = append(changed, "group")
	}
	if existing.Email != req.Email {
		changed = append(changed, "email")
	}
	if existing.Active != req.Active {
		changed = append(changed, "active")
	}
	return changed
}
