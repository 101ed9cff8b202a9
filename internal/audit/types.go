// Lectern - Congregation Meeting Scheduling and Administration
// Copyright 2026 Lectern Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-app/lectern

package audit

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/lectern-app/lectern/internal/models"
)

// Kind categorizes audit events. The enumeration is closed: events with
// a kind outside this table cannot be constructed.
type Kind string

const (
	KindPublisherCreated Kind = "publisher.created"
	KindPublisherUpdated Kind = "publisher.updated"
	KindPublisherDeleted Kind = "publisher.deleted"

	KindSpeakerCreated Kind = "speaker.created"
	KindSpeakerUpdated Kind = "speaker.updated"
	KindSpeakerDeleted Kind = "speaker.deleted"

	KindMeetingExceptionCreated Kind = "meeting_exception.created"
	KindMeetingExceptionUpdated Kind = "meeting_exception.updated"
	KindMeetingExceptionDeleted Kind = "meeting_exception.deleted"
)

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindPublisherCreated, KindPublisherUpdated, KindPublisherDeleted,
		KindSpeakerCreated, KindSpeakerUpdated, KindSpeakerDeleted,
		KindMeetingExceptionCreated, KindMeetingExceptionUpdated,
		KindMeetingExceptionDeleted:
		return true
	}
	return false
}

// Details is the kind-specific payload of an event. Each kind has
// exactly one concrete details type; NewEvent rejects any mismatch. The
// unexported resource method keeps the union closed to this package.
type Details interface {
	Kind() Kind
	Validate() error

	// resource identifies the mutated resource for the event envelope.
	resource() (resourceType, resourceID string)
}

// PublisherDetails describes a publisher create or delete.
type PublisherDetails struct {
	kind        Kind
	PublisherID string `json:"publisher_id"`
	FullName    string `json:"full_name"`
}

// NewPublisherCreatedDetails builds details for a publisher creation.
func NewPublisherCreatedDetails(id, fullName string) *PublisherDetails {
	return &PublisherDetails{kind: KindPublisherCreated, PublisherID: id, FullName: fullName}
}

// NewPublisherDeletedDetails builds details for a publisher deletion.
func NewPublisherDeletedDetails(id, fullName string) *PublisherDetails {
	return &PublisherDetails{kind: KindPublisherDeleted, PublisherID: id, FullName: fullName}
}

func (d *PublisherDetails) Kind() Kind { return d.kind }

func (d *PublisherDetails) resource() (string, string) { return "publisher", d.PublisherID }

func (d *PublisherDetails) Validate() error {
	if d.kind != KindPublisherCreated && d.kind != KindPublisherDeleted {
		return fmt.Errorf("publisher details carry kind %q", d.kind)
	}
	if d.PublisherID == "" {
		return errors.New("publisher details missing publisher_id")
	}
	if d.FullName == "" {
		return errors.New("publisher details missing full_name")
	}
	return nil
}

// PublisherUpdatedDetails describes a publisher update, including which
// fields changed.
type PublisherUpdatedDetails struct {
	PublisherID   string   `json:"publisher_id"`
	FullName      string   `json:"full_name"`
	ChangedFields []string `json:"changed_fields"`
}

func (d *PublisherUpdatedDetails) Kind() Kind { return KindPublisherUpdated }

func (d *PublisherUpdatedDetails) resource() (string, string) { return "publisher", d.PublisherID }

func (d *PublisherUpdatedDetails) Validate() error {
	if d.PublisherID == "" {
		return errors.New("publisher update details missing publisher_id")
	}
	if len(d.ChangedFields) == 0 {
		return errors.New("publisher update details missing changed_fields")
	}
	return nil
}

// SpeakerDetails describes a speaker create or delete.
type SpeakerDetails struct {
	kind             Kind
	SpeakerID        string `json:"speaker_id"`
	Name             string `json:"name"`
	HomeCongregation string `json:"home_congregation,omitempty"`
}

// NewSpeakerCreatedDetails builds details for a speaker creation.
func NewSpeakerCreatedDetails(id, name, homeCongregation string) *SpeakerDetails {
	return &SpeakerDetails{kind: KindSpeakerCreated, SpeakerID: id, Name: name, HomeCongregation: homeCongregation}
}

// NewSpeakerDeletedDetails builds details for a speaker deletion.
func NewSpeakerDeletedDetails(id, name string) *SpeakerDetails {
	return &SpeakerDetails{kind: KindSpeakerDeleted, SpeakerID: id, Name: name}
}

func (d *SpeakerDetails) Kind() Kind { return d.kind }

func (d *SpeakerDetails) resource() (string, string) { return "speaker", d.SpeakerID }

func (d *SpeakerDetails) Validate() error {
	if d.kind != KindSpeakerCreated && d.kind != KindSpeakerDeleted {
		return fmt.Errorf("speaker details carry kind %q", d.kind)
	}
	if d.SpeakerID == "" {
		return errors.New("speaker details missing speaker_id")
	}
	if d.Name == "" {
		return errors.New("speaker details missing name")
	}
	return nil
}

// SpeakerUpdatedDetails describes a speaker update.
type SpeakerUpdatedDetails struct {
	SpeakerID     string   `json:"speaker_id"`
	Name          string   `json:"name"`
	ChangedFields []string `json:"changed_fields"`
}

func (d *SpeakerUpdatedDetails) Kind() Kind { return KindSpeakerUpdated }

func (d *SpeakerUpdatedDetails) resource() (string, string) { return "speaker", d.SpeakerID }

func (d *SpeakerUpdatedDetails) Validate() error {
	if d.SpeakerID == "" {
		return errors.New("speaker update details missing speaker_id")
	}
	if len(d.ChangedFields) == 0 {
		return errors.New("speaker update details missing changed_fields")
	}
	return nil
}

// MeetingExceptionDetails describes a meeting exception mutation. The
// date and exception type always travel with the event so the audit log
// stays meaningful after the exception itself is gone.
type MeetingExceptionDetails struct {
	kind          Kind
	ExceptionID   string               `json:"exception_id"`
	Date          string               `json:"date"`
	ExceptionType models.ExceptionType `json:"exception_type"`
}

// NewMeetingExceptionCreatedDetails builds details for an exception creation.
func NewMeetingExceptionCreatedDetails(id, date string, exceptionType models.ExceptionType) *MeetingExceptionDetails {
	return &MeetingExceptionDetails{kind: KindMeetingExceptionCreated, ExceptionID: id, Date: date, ExceptionType: exceptionType}
}

// NewMeetingExceptionUpdatedDetails builds details for an exception update.
func NewMeetingExceptionUpdatedDetails(id, date string, exceptionType models.ExceptionType) *MeetingExceptionDetails {
	return &MeetingExceptionDetails{kind: KindMeetingExceptionUpdated, ExceptionID: id, Date: date, ExceptionType: exceptionType}
}

// NewMeetingExceptionDeletedDetails builds details for an exception deletion.
func NewMeetingExceptionDeletedDetails(id, date string, exceptionType models.ExceptionType) *MeetingExceptionDetails {
	return &MeetingExceptionDetails{kind: KindMeetingExceptionDeleted, ExceptionID: id, Date: date, ExceptionType: exceptionType}
}

func (d *MeetingExceptionDetails) Kind() Kind { return d.kind }

func (d *MeetingExceptionDetails) resource() (string, string) {
	return "meeting_exception", d.ExceptionID
}

func (d *MeetingExceptionDetails) Validate() error {
	switch d.kind {
	case KindMeetingExceptionCreated, KindMeetingExceptionUpdated, KindMeetingExceptionDeleted:
	default:
		return fmt.Errorf("meeting exception details carry kind %q", d.kind)
	}
	if d.ExceptionID == "" {
		return errors.New("meeting exception details missing exception_id")
	}
	if _, err := time.Parse("2006-01-02", d.Date); err != nil {
		return fmt.Errorf("meeting exception details date %q: %w", d.Date, err)
	}
	if !d.ExceptionType.Valid() {
		return fmt.Errorf("meeting exception details exception_type %q is not declared", d.ExceptionType)
	}
	return nil
}

// Actor identifies who performed the audited action.
type Actor struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	CongregationID string `json:"congregation_id"`
	SessionID      string `json:"session_id,omitempty"`
}

// Event is one append-only audit record. ResourceType and ResourceID
// are derived from the details so the envelope can never disagree with
// the payload.
type Event struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Kind         Kind      `json:"kind"`
	Actor        Actor     `json:"actor"`
	ResourceType string    `json:"resource_type"`
	ResourceID   string    `json:"resource_id"`
	RequestID    string    `json:"request_id,omitempty"`
	Details      Details   `json:"details"`
}

// NewEvent constructs a validated event. The kind must be declared, the
// details type must belong to that kind, and the details themselves must
// validate. A nil error means the event is safe to append.
func NewEvent(kind Kind, actor Actor, details Details) (*Event, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("audit kind %q is not declared", kind)
	}
	if details == nil {
		return nil, fmt.Errorf("audit event %s has no details", kind)
	}
	if details.Kind() != kind {
		return nil, fmt.Errorf("audit event %s given details for %s", kind, details.Kind())
	}
	if err := details.Validate(); err != nil {
		return nil, fmt.Errorf("audit event %s: %w", kind, err)
	}
	if actor.ID == "" || actor.CongregationID == "" {
		return nil, fmt.Errorf("audit event %s missing actor identity", kind)
	}

	resourceType, resourceID := details.resource()
	return &Event{
		ID:           uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		Kind:         kind,
		Actor:        actor,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      details,
	}, nil
}

// WithRequestID attaches the originating request ID.
func (e *Event) WithRequestID(requestID string) *Event {
	e.RequestID = requestID
	return e
}

// eventJSON is the wire form of Event with details kept raw so the
// concrete type can be chosen by kind on the way in.
type eventJSON struct {
	ID           string          `json:"id"`
	Timestamp    time.Time       `json:"timestamp"`
	Kind         Kind            `json:"kind"`
	Actor        Actor           `json:"actor"`
	ResourceType string          `json:"resource_type"`
	ResourceID   string          `json:"resource_id"`
	RequestID    string          `json:"request_id,omitempty"`
	Details      json.RawMessage `json:"details"`
}

// UnmarshalJSON decodes an event, picking the details type from the kind.
func (e *Event) UnmarshalJSON(data []byte) error {
	var raw eventJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	details, err := detailsForKind(raw.Kind)
	if err != nil {
		return err
	}
	if len(raw.Details) > 0 {
		if err := json.Unmarshal(raw.Details, details); err != nil {
			return fmt.Errorf("decode %s details: %w", raw.Kind, err)
		}
	}

	e.ID = raw.ID
	e.Timestamp = raw.Timestamp
	e.Kind = raw.Kind
	e.Actor = raw.Actor
	e.ResourceType = raw.ResourceType
	e.ResourceID = raw.ResourceID
	e.RequestID = raw.RequestID
	e.Details = details
	return nil
}

// detailsForKind returns an empty details value of the type that belongs
// to the kind, with the internal discriminator already set.
func detailsForKind(kind Kind) (Details, error) {
	switch kind {
	case KindPublisherCreated, KindPublisherDeleted:
		return &PublisherDetails{kind: kind}, nil
	case KindPublisherUpdated:
		return &PublisherUpdatedDetails{}, nil
	case KindSpeakerCreated, KindSpeakerDeleted:
		return &SpeakerDetails{kind: kind}, nil
	case KindSpeakerUpdated:
		return &SpeakerUpdatedDetails{}, nil
	case KindMeetingExceptionCreated, KindMeetingExceptionUpdated, KindMeetingExceptionDeleted:
		return &MeetingExceptionDetails{kind: kind}, nil
	default:
		return nil, fmt.Errorf("audit kind %q is not declared", kind)
	}
}
