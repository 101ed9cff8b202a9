// Lectern - Congregation Meeting Scheduling and Administration
// Copyright 2026 Lectern Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-app/lectern

package api

import (
	"net/http"
	"testing"

	"github.com/goccy/go-json"

	"github.com/lectern-app/lectern/internal/audit"
	"github.com/lectern-app/lectern/internal/authz"
)

var auditReaderCaps = []authz.Capability{
	{Resource: authz.ResourceAuditLog, Action: authz.ActionRead},
	{Resource: authz.ResourceWeekendMeetings, Action: authz.ActionManageExceptions},
}

func TestListAuditEvents_ReturnsRecordedEvents(t *testing.T) {
	env := newTestEnv(t, auditReaderCaps)
	token := env.token(t)

	// Perform a mutation so there is something to read back.
	rec := env.do(t, http.MethodPost, "/api/v1/meeting-exceptions", token, map[string]string{
		"date":           "2026-05-15",
		"exception_type": "convention",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/audit", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("audit status = %d, want 200 (body %q)", rec.Code, rec.Body.String())
	}

	var resp auditListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode audit response: %v", err)
	}
	if resp.Total != 1 || len(resp.Events) != 1 {
		t.Fatalf("audit response = total %d, %d events, want 1 each", resp.Total, len(resp.Events))
	}
	if resp.Events[0].Kind != audit.KindMeetingExceptionCreated {
		t.Errorf("event kind = %q, want %q", resp.Events[0].Kind, audit.KindMeetingExceptionCreated)
	}
}

func TestListAuditEvents_FilterByKind(t *testing.T) {
	env := newTestEnv(t, auditReaderCaps)
	token := env.token(t)

	env.do(t, http.MethodPost, "/api/v1/meeting-exceptions", token, map[string]string{
		"date":           "2026-05-15",
		"exception_type": "convention",
	})

	rec := env.do(t, http.MethodGet, "/api/v1/audit?kind=meeting_exception.deleted", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("audit status = %d, want 200", rec.Code)
	}

	var resp auditListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode audit response: %v", err)
	}
	if len(resp.Events) != 0 {
		t.Errorf("len(events) = %d, want 0 for a kind with no events", len(resp.Events))
	}
}

func TestListAuditEvents_RejectsUndeclaredKind(t *testing.T) {
	env := newTestEnv(t, auditReaderCaps)

	rec := env.do(t, http.MethodGet, "/api/v1/audit?kind=rocketry.launched", env.token(t), nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("audit status = %d, want 400", rec.Code)
	}
}

func TestListAuditEvents_RejectsMalformedTimeBound(t *testing.T) {
	env := newTestEnv(t, auditReaderCaps)

	rec := env.do(t, http.MethodGet, "/api/v1/audit?start_time=yesterday", env.token(t), nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("audit status = %d, want 400", rec.Code)
	}
}

func TestListAuditEvents_RequiresAuditReadCapability(t *testing.T) {
	env := newTestEnv(t, manageExceptionsCaps)

	rec := env.do(t, http.MethodGet, "/api/v1/audit", env.token(t), nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("audit status = %d, want 403", rec.Code)
	}
	if key := errorKey(t, rec); key != authz.MessageKeyInsufficientPermissions {
		t.Errorf("error key = %q, want %q", key, authz.MessageKeyInsufficientPermissions)
	}
}
