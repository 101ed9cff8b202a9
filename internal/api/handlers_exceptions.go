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

type meetingExceptionRequest struct {
	Date          string               `json:"date" validate:"required,datetime=2006-01-02"`
	ExceptionType models.ExceptionType `json:"exception_type" validate:"required"`
	Comment       string               `json:"comment" validate:"max=500"`
}

// ListMeetingExceptions returns the congregation's meeting exceptions.
func (h *Handler) ListMeetingExceptions(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	exceptions, err := h.exceptions.List(r.Context(), principal.CongregationID)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("meeting exception list failed")
		respondError(w, http.StatusInternalServerError, KeyInternal)
		return
	}
	if exceptions == nil {
		exceptions = []models.MeetingException{}
	}
	writeJSON(w, http.StatusOK, exceptions)
}

// GetMeetingException returns one meeting exception by ID.
func (h *Handler) GetMeetingException(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, KeyExceptionIDRequired)
		return
	}

	principal := auth.PrincipalFromContext(r.Context())
	exception, err := h.exceptions.Get(r.Context(), principal.CongregationID, id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, KeyExceptionNotFound)
		return
	}
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("meeting exception get failed")
		respondError(w, http.StatusInternalServerError, KeyInternal)
		return
	}
	writeJSON(w, http.StatusOK, exception)
}

// CreateMeetingException adds a meeting exception and records the
// creation.
func (h *Handler) CreateMeetingException(w http.ResponseWriter, r *http.Request) {
	var req meetingExceptionRequest
	if !h.decode(w, r, &req) {
		return
	}
	if !req.ExceptionType.Valid() {
		respondError(w, http.StatusBadRequest, KeyValidationFailed)
		return
	}

	principal := auth.PrincipalFromContext(r.Context())
	exception := &models.MeetingException{
		CongregationID: principal.CongregationID,
		Date:           req.Date,
		ExceptionType:  req.ExceptionType,
		Comment:        req.Comment,
	}
	if err := h.exceptions.Create(r.Context(), exception); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("meeting exception create failed")
		respondError(w, http.StatusInternalServerError, KeyInternal)
		return
	}

	h.recordEvent(r.Context(), audit.KindMeetingExceptionCreated,
		audit.NewMeetingExceptionCreatedDetails(exception.ID, exception.Date, exception.ExceptionType))
	writeJSON(w, http.StatusCreated, exception)
}

// UpdateMeetingException replaces a meeting exception and records the
// update.
func (h *Handler) UpdateMeetingException(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, KeyExceptionIDRequired)
		return
	}

	var req meetingExceptionRequest
	if !h.decode(w, r, &req) {
		return
	}
	if !req.ExceptionType.Valid() {
		respondError(w, http.StatusBadRequest, KeyValidationFailed)
		return
	}

	principal := auth.PrincipalFromContext(r.Context())
	updated := &models.MeetingException{
		ID:             id,
		CongregationID: principal.CongregationID,
		Date:           req.Date,
		ExceptionType:  req.ExceptionType,
		Comment:        req.Comment,
	}
	if err := h.exceptions.Update(r.Context(), updated); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, KeyExceptionNotFound)
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("meeting exception update failed")
		respondError(w, http.StatusInternalServerError, KeyInternal)
		return
	}

	h.recordEvent(r.Context(), audit.KindMeetingExceptionUpdated,
		audit.NewMeetingExceptionUpdatedDetails(updated.ID, updated.Date, updated.ExceptionType))
	writeJSON(w, http.StatusOK, updated)
}

// DeleteMeetingException removes a meeting exception. The stages run in
// a fixed order: the route must name an ID before the authorization
// requirement is evaluated, and the requirement must pass before the
// store is touched. The audit record is written only after the deletion
// succeeded and carries the deleted record's date and type, since the
// record itself no longer exists to be consulted.
func (h *Handler) DeleteMeetingException(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, KeyExceptionIDRequired)
		return
	}

	if err := h.guard.Check(r.Context(), requireManageExceptions); err != nil {
		respondDenied(w, err)
		return
	}

	principal := auth.PrincipalFromContext(r.Context())
	deleted, err := h.exceptions.Delete(r.Context(), principal.CongregationID, id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, KeyExceptionNotFound)
		return
	}
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("meeting exception delete failed")
		respondError(w, http.StatusInternalServerError, KeyInternal)
		return
	}

	h.recordEvent(r.Context(), audit.KindMeetingExceptionDeleted,
		audit.NewMeetingExceptionDeletedDetails(deleted.ID, deleted.Date, deleted.ExceptionType))
	writeJSON(w, http.StatusOK, deleted)
}
