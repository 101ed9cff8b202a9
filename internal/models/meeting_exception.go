// Lectern - Congregation Meeting Scheduling and Administration
// Copyright 2026 Lectern Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-app/lectern

package models

import "time"

// ExceptionType identifies why a regular meeting does not take place.
type ExceptionType string

const (
	ExceptionTypeMemorial   ExceptionType = "memorial"
	ExceptionTypeAssembly   ExceptionType = "assembly"
	ExceptionTypeConvention ExceptionType = "convention"
	ExceptionTypeVisit      ExceptionType = "visit"
	ExceptionTypeOther      ExceptionType = "other"
)

// Valid reports whether t is one of the declared exception types.
func (t ExceptionType) Valid() bool {
	switch t {
	case ExceptionTypeMemorial, ExceptionTypeAssembly, ExceptionTypeConvention,
		ExceptionTypeVisit, ExceptionTypeOther:
		return true
	}
	return false
}

// MeetingException marks a date on which the regular weekend meeting is
// replaced or cancelled (memorial, assembly, circuit overseer visit, ...).
type MeetingException struct {
	ID             string        `json:"id"`
	CongregationID string        `json:"congregation_id"`
	Date           string        `json:"date" validate:"required,datetime=2006-01-02"`
	ExceptionType  ExceptionType `json:"exception_type" validate:"required"`
	Comment        string        `json:"comment,omitempty" validate:"max=500"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}
