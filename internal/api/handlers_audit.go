// Lectern - Congregation Meeting Scheduling and Administration
// Copyright 2026 Lectern Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-app/lectern

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/lectern-app/lectern/internal/audit"
	"github.com/lectern-app/lectern/internal/auth"
	"github.com/lectern-app/lectern/internal/logging"
)

// maxAuditPageSize caps one audit query regardless of the requested limit.
const maxAuditPageSize = 1000

type auditListResponse struct {
	Events []audit.Event `json:"events"`
	Total  int64         `json:"total"`
	Limit  int           `json:"limit"`
}

// ListAuditEvents returns audit events, most recent first. Reads are
// always scoped to the caller's own congregation; the query cannot widen
// that.
//
// Query parameters:
//   - kind: event kind, repeatable
//   - actor_id: filter by acting user
//   - start_time, end_time: RFC 3339 bounds
//   - limit: page size, default 100
func (h *Handler) ListAuditEvents(w http.ResponseWriter, r *http.Request) {
	filter, ok := auditFilterFromQuery(w, r)
	if !ok {
		return
	}

	events, err := h.recorder.List(r.Context(), filter)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("audit list failed")
		respondError(w, http.StatusInternalServerError, KeyInternal)
		return
	}
	total, err := h.recorder.Count(r.Context(), filter)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("audit count failed")
		respondError(w, http.StatusInternalServerError, KeyInternal)
		return
	}

	if events == nil {
		events = []audit.Event{}
	}
	writeJSON(w, http.StatusOK, auditListResponse{
		Events: events,
		Total:  total,
		Limit:  filter.Limit,
	})
}

// auditFilterFromQuery builds the store filter from the request. On a
// malformed parameter it writes the error response and returns false.
func auditFilterFromQuery(w http.ResponseWriter, r *http.Request) (audit.Filter, bool) {
	filter := audit.DefaultFilter()

	principal := auth.PrincipalFromContext(r.Context())
	filter.CongregationID = principal.CongregationID

	query := r.URL.Query()
	for _, raw := range query["kind"] {
		kind := audit.Kind(raw)
		if !kind.Valid() {
			respondError(w, http.StatusBadRequest, KeyValidationFailed)
			return audit.Filter{}, false
		}
		filter.Kinds = append(filter.Kinds, kind)
	}

	filter.ActorID = query.Get("actor_id")

	if raw := query.Get("start_time"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, KeyValidationFailed)
			return audit.Filter{}, false
		}
		filter.StartTime = &t
	}
	if raw := query.Get("end_time"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, KeyValidationFailed)
			return audit.Filter{}, false
		}
		filter.EndTime = &t
	}

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			respondError(w, http.StatusBadRequest, KeyValidationFailed)
			return audit.Filter{}, false
		}
		if limit > maxAuditPageSize {
			limit = maxAuditPageSize
		}
		filter.Limit = limit
	}

	return filter, true
}
