// Lectern - Congregation Meeting Scheduling and Administration
// Copyright 2026 Lectern Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-app/lectern

package audit

import (
	"testing"

	"github.com/goccy/go-json"

	"github.com/lectern-app/lectern/internal/models"
)

func testActor() Actor {
	return Actor{
		ID:             "user-1",
		Username:       "alice",
		CongregationID: "cong-1",
		SessionID:      "sess-1",
	}
}

func TestNewEvent_Valid(t *testing.T) {
	details := NewMeetingExceptionDeletedDetails("exc-1", "2026-04-02", models.ExceptionTypeMemorial)
	event, err := NewEvent(KindMeetingExceptionDeleted, testActor(), details)
	if err != nil {
		t.Fatalf("NewEvent() error = %v", err)
	}

	if event.ID == "" {
		t.Error("event has no ID")
	}
	if event.Timestamp.IsZero() {
		t.Error("event has no timestamp")
	}
	if event.Kind != KindMeetingExceptionDeleted {
		t.Errorf("Kind = %q, want %q", event.Kind, KindMeetingExceptionDeleted)
	}
	if event.Actor.CongregationID != "cong-1" {
		t.Errorf("Actor.CongregationID = %q, want cong-1", event.Actor.CongregationID)
	}
}

func TestNewEvent_Rejections(t *testing.T) {
	actor := testActor()
	exception := NewMeetingExceptionDeletedDetails("exc-1", "2026-04-02", models.ExceptionTypeMemorial)

	tests := []struct {
		name    string
		kind    Kind
		actor   Actor
		details Details
	}{
		{"undeclared kind", Kind("meeting_exception.archived"), actor, exception},
		{"nil details", KindMeetingExceptionDeleted, actor, nil},
		{"kind and details disagree", KindPublisherDeleted, actor, exception},
		{
			"details fail validation",
			KindMeetingExceptionDeleted, actor,
			NewMeetingExceptionDeletedDetails("exc-1", "not-a-date", models.ExceptionTypeMemorial),
		},
		{
			"undeclared exception type",
			KindMeetingExceptionDeleted, actor,
			NewMeetingExceptionDeletedDetails("exc-1", "2026-04-02", models.ExceptionType("sabbatical")),
		},
		{
			"missing actor",
			KindMeetingExceptionDeleted, Actor{}, exception,
		},
		{
			"publisher details without id",
			KindPublisherCreated, actor,
			NewPublisherCreatedDetails("", "John Doe"),
		},
		{
			"update details without changed fields",
			KindSpeakerUpdated, actor,
			&SpeakerUpdatedDetails{SpeakerID: "spk-1", Name: "Sam Ward"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewEvent(tt.kind, tt.actor, tt.details); err == nil {
				t.Error("NewEvent() accepted an invalid event")
			}
		})
	}
}

func TestKind_Valid(t *testing.T) {
	for _, k := range []Kind{
		KindPublisherCreated, KindPublisherUpdated, KindPublisherDeleted,
		KindSpeakerCreated, KindSpeakerUpdated, KindSpeakerDeleted,
		KindMeetingExceptionCreated, KindMeetingExceptionUpdated,
		KindMeetingExceptionDeleted,
	} {
		if !k.Valid() {
			t.Errorf("Valid(%q) = false, want true", k)
		}
	}
	if Kind("publisher.archived").Valid() {
		t.Error("undeclared kind reported valid")
	}
}

func TestEvent_JSONRoundTrip(t *testing.T) {
	original, err := NewEvent(
		KindMeetingExceptionDeleted,
		testActor(),
		NewMeetingExceptionDeletedDetails("exc-1", "2026-04-02", models.ExceptionTypeAssembly),
	)
	if err != nil {
		t.Fatalf("NewEvent() error = %v", err)
	}
	original.WithRequestID("req-1")

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded Event
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if decoded.Kind != KindMeetingExceptionDeleted {
		t.Errorf("Kind = %q, want %q", decoded.Kind, KindMeetingExceptionDeleted)
	}
	if decoded.RequestID != "req-1" {
		t.Errorf("RequestID = %q, want req-1", decoded.RequestID)
	}

	details, ok := decoded.Details.(*MeetingExceptionDetails)
	if !ok {
		t.Fatalf("Details decoded as %T, want *MeetingExceptionDetails", decoded.Details)
	}
	if details.Kind() != KindMeetingExceptionDeleted {
		t.Errorf("details Kind() = %q, want %q", details.Kind(), KindMeetingExceptionDeleted)
	}
	if details.Date != "2026-04-02" || details.ExceptionType != models.ExceptionTypeAssembly {
		t.Errorf("details = %+v, want date and exception type preserved", details)
	}
	if err := details.Validate(); err != nil {
		t.Errorf("decoded details Validate() error = %v", err)
	}
}

func TestEvent_UnmarshalRejectsUndeclaredKind(t *testing.T) {
	raw := []byte(`{"id":"e1","kind":"publisher.archived","actor":{"id":"u1","congregation_id":"c1"},"details":{}}`)
	var event Event
	if err := json.Unmarshal(raw, &event); err == nil {
		t.Error("Unmarshal() accepted an undeclared kind")
	}
}
