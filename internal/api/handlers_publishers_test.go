// Lectern - Congregation Meeting Scheduling and Administration
// Copyright 2026 Lectern Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-app/lectern

package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/goccy/go-json"

	"github.com/lectern-app/lectern/internal/audit"
	"github.com/lectern-app/lectern/internal/authz"
	"github.com/lectern-app/lectern/internal/models"
)

var publisherManageCaps = []authz.Capability{
	{Resource: authz.ResourcePublishers, Action: authz.ActionRead},
	{Resource: authz.ResourcePublishers, Action: authz.ActionCreate},
	{Resource: authz.ResourcePublishers, Action: authz.ActionUpdate},
	{Resource: authz.ResourcePublishers, Action: authz.ActionDelete},
}

func seedPublisher(t *testing.T, env *testEnv) *models.Publisher {
	t.Helper()
	publisher := &models.Publisher{
		ID:             "pub-1",
		CongregationID: "cong-1",
		FirstName:      "Thomas",
		LastName:       "Reed",
		Active:         true,
	}
	if err := env.publishers.Create(context.Background(), publisher); err != nil {
		t.Fatalf("seed publisher: %v", err)
	}
	return publisher
}

func TestCreatePublisher_RecordsAudit(t *testing.T) {
	env := newTestEnv(t, publisherManageCaps)

	rec := env.do(t, http.MethodPost, "/api/v1/publishers", env.token(t), map[string]any{
		"first_name": "Anna",
		"last_name":  "Larsen",
		"active":     true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201 (body %q)", rec.Code, rec.Body.String())
	}

	events, err := env.auditStore.List(context.Background(), audit.DefaultFilter())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(events) != 1 || events[0].Kind != audit.KindPublisherCreated {
		t.Fatalf("events = %d, want 1 creation event", len(events))
	}
	details := events[0].Details.(*audit.PublisherDetails)
	if details.FullName != "Anna Larsen" {
		t.Errorf("details full name = %q, want Anna Larsen", details.FullName)
	}
}

func TestCreatePublisher_RejectsInvalidPayload(t *testing.T) {
	env := newTestEnv(t, publisherManageCaps)

	// Missing last_name fails validation before any store work.
	rec := env.do(t, http.MethodPost, "/api/v1/publishers", env.token(t), map[string]any{
		"first_name": "Anna",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("create status = %d, want 400", rec.Code)
	}
	if key := errorKey(t, rec); key != KeyValidationFailed {
		t.Errorf("error key = %q, want %q", key, KeyValidationFailed)
	}
	if n := env.auditStore.Len(); n != 0 {
		t.Errorf("audit store len = %d, want 0", n)
	}
}

func TestUpdatePublisher_RecordsChangedFields(t *testing.T) {
	env := newTestEnv(t, publisherManageCaps)
	seedPublisher(t, env)

	rec := env.do(t, http.MethodPut, "/api/v1/publishers/pub-1", env.token(t), map[string]any{
		"first_name": "Thomas",
		"last_name":  "Reed",
		"group":      "Group 2",
		"active":     true,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, want 200 (body %q)", rec.Code, rec.Body.String())
	}

	events, err := env.auditStore.List(context.Background(), audit.DefaultFilter())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(events) != 1 || events[0].Kind != audit.KindPublisherUpdated {
		t.Fatalf("events = %d, want 1 update event", len(events))
	}
	details := events[0].Details.(*audit.PublisherUpdatedDetails)
	if len(details.ChangedFields) != 1 || details.ChangedFields[0] != "group" {
		t.Errorf("changed fields = %v, want [group]", details.ChangedFields)
	}
}

func TestUpdatePublisher_NoOpLeavesNoAudit(t *testing.T) {
	env := newTestEnv(t, publisherManageCaps)
	seedPublisher(t, env)

	rec := env.do(t, http.MethodPut, "/api/v1/publishers/pub-1", env.token(t), map[string]any{
		"first_name": "Thomas",
		"last_name":  "Reed",
		"active":     true,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, want 200", rec.Code)
	}
	if n := env.auditStore.Len(); n != 0 {
		t.Errorf("audit store len = %d, want 0 for a no-op update", n)
	}
}

func TestDeletePublisher_RecordsAudit(t *testing.T) {
	env := newTestEnv(t, publisherManageCaps)
	seedPublisher(t, env)

	rec := env.do(t, http.MethodDelete, "/api/v1/publishers/pub-1", env.token(t), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d, want 200", rec.Code)
	}

	events, err := env.auditStore.List(context.Background(), audit.DefaultFilter())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(events) != 1 || events[0].Kind != audit.KindPublisherDeleted {
		t.Fatalf("events = %d, want 1 deletion event", len(events))
	}
	if events[0].ResourceID != "pub-1" {
		t.Errorf("event resource ID = %q, want pub-1", events[0].ResourceID)
	}
}

func TestDeletePublisher_NotFound(t *testing.T) {
	env := newTestEnv(t, publisherManageCaps)

	rec := env.do(t, http.MethodDelete, "/api/v1/publishers/no-such-id", env.token(t), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("delete status = %d, want 404", rec.Code)
	}
	if key := errorKey(t, rec); key != KeyPublisherNotFound {
		t.Errorf("error key = %q, want %q", key, KeyPublisherNotFound)
	}
}

func TestListPublishers_ScopedToCongregation(t *testing.T) {
	env := newTestEnv(t, publisherManageCaps)
	seedPublisher(t, env)

	other := &models.Publisher{
		ID:             "pub-2",
		CongregationID: "cong-2",
		FirstName:      "Maria",
		LastName:       "Silva",
	}
	if err := env.publishers.Create(context.Background(), other); err != nil {
		t.Fatalf("seed publisher: %v", err)
	}

	rec := env.do(t, http.MethodGet, "/api/v1/publishers", env.token(t), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", rec.Code)
	}

	var publishers []models.Publisher
	if err := json.Unmarshal(rec.Body.Bytes(), &publishers); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if len(publishers) != 1 || publishers[0].ID != "pub-1" {
		t.Errorf("list = %+v, want only pub-1 from the caller's congregation", publishers)
	}
}
