// Lectern - Congregation Meeting Scheduling and Administration
// Copyright 2026 Lectern Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-app/lectern

package api

import (
	"errors"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/lectern-app/lectern/internal/audit"
	"github.com/lectern-app/lectern/internal/auth"
	"github.com/lectern-app/lectern/internal/logging"
	"github.com/lectern-app/lectern/internal/models"
	"github.com/lectern-app/lectern/internal/store"
)

type speakerRequest struct {
	Name             string `json:"name" validate:"required,max=200"`
	HomeCongregation string `json:"home_congregation" validate:"max=200"`
	Phone            string `json:"phone" validate:"max=50"`
	TalkNumbers      []int  `json:"talk_numbers" validate:"dive,gt=0"`
}

// ListSpeakers returns the congregation's speakers.
func (h *Handler) ListSpeakers(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	speakers, err := h.speakers.List(r.Context(), principal.CongregationID)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("speaker list failed")
		respondError(w, http.StatusInternalServerError, KeyInternal)
		return
	}
	if speakers == nil {
		speakers = []models.Speaker{}
	}
	writeJSON(w, http.StatusOK, speakers)
}

// GetSpeaker returns one speaker by ID.
func (h *Handler) GetSpeaker(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, KeySpeakerIDRequired)
		return
	}

	principal := auth.PrincipalFromContext(r.Context())
	speaker, err := h.speakers.Get(r.Context(), principal.CongregationID, id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, KeySpeakerNotFound)
		return
	}
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("speaker get failed")
		respondError(w, http.StatusInternalServerError, KeyInternal)
		return
	}
	writeJSON(w, http.StatusOK, speaker)
}

// CreateSpeaker adds a speaker and records the creation.
func (h *Handler) CreateSpeaker(w http.ResponseWriter, r *http.Request) {
	var req speakerRequest
	if !h.decode(w, r, &req) {
		return
	}

	principal := auth.PrincipalFromContext(r.Context())
	speaker := &models.Speaker{
		CongregationID:   principal.CongregationID,
		Name:             req.Name,
		HomeCongregation: req.HomeCongregation,
		Phone:            req.Phone,
		TalkNumbers:      req.TalkNumbers,
	}
	if err := h.speakers.Create(r.Context(), speaker); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("speaker create failed")
		respondError(w, http.StatusInternalServerError, KeyInternal)
		return
	}

	h.recordEvent(r.Context(), audit.KindSpeakerCreated,
		audit.NewSpeakerCreatedDetails(speaker.ID, speaker.Name, speaker.HomeCongregation))
	writeJSON(w, http.StatusCreated, speaker)
}

// UpdateSpeaker replaces a speaker's editable fields and records which of
// them changed. A no-op update mutates nothing and leaves no audit record.
func (h *Handler) UpdateSpeaker(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, KeySpeakerIDRequired)
		return
	}

	var req speakerRequest
	if !h.decode(w, r, &req) {
		return
	}

	principal := auth.PrincipalFromContext(r.Context())
	existing, err := h.speakers.Get(r.Context(), principal.CongregationID, id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, KeySpeakerNotFound)
		return
	}
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("speaker get failed")
		respondError(w, http.StatusInternalServerError, KeyInternal)
		return
	}

	changed := speakerChanges(existing, &req)
	if len(changed) == 0 {
		writeJSON(w, http.StatusOK, existing)
		return
	}

	updated := &models.Speaker{
		ID:               existing.ID,
		CongregationID:   existing.CongregationID,
		Name:             req.Name,
		HomeCongregation: req.HomeCongregation,
		Phone:            req.Phone,
		TalkNumbers:      req.TalkNumbers,
	}
	if err := h.speakers.Update(r.Context(), updated); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("speaker update failed")
		respondError(w, http.StatusInternalServerError, KeyInternal)
		return
	}

	h.recordEvent(r.Context(), audit.KindSpeakerUpdated, &audit.SpeakerUpdatedDetails{
		SpeakerID:     updated.ID,
		Name:          updated.Name,
		ChangedFields: changed,
	})
	writeJSON(w, http.StatusOK, updated)
}

// DeleteSpeaker removes a speaker and records the deletion.
func (h *Handler) DeleteSpeaker(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, KeySpeakerIDRequired)
		return
	}

	principal := auth.PrincipalFromContext(r.Context())
	deleted, err := h.speakers.Delete(r.Context(), principal.CongregationID, id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, KeySpeakerNotFound)
		return
	}
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("speaker delete failed")
		respondError(w, http.StatusInternalServerError, KeyInternal)
		return
	}

	h.recordEvent(r.Context(), audit.KindSpeakerDeleted,
		audit.NewSpeakerDeletedDetails(deleted.ID, deleted.Name))
	writeJSON(w, http.StatusOK, deleted)
}

// speakerChanges lists the editable fields the request would change.
func speakerChanges(existing *models.Speaker, req *speakerRequest) []string {
	var changed []string
	if existing.Name != req.Name {
		changed = append(changed, "name")
	}
	if existing.HomeCongregation != req.HomeCongregation {
		changed = append(changed, "home_congregation")
	}
	if existing.Phone != req.Phone {
		changed = append(changed, "phone")
	}
	if !slices.Equal(existing.TalkNumbers, req.TalkNumbers) {
		changed = append(changed, "talk_numbers")
	}
	return changed
}
