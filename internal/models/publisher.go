// Lectern - Congregation Meeting Scheduling and Administration
// Copyright 2026 Lectern Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-app/lectern

// Package models defines the scheduling domain types shared across the
// store, API, and audit layers.
package models

import "time"

// Publisher is a congregation member who can be assigned meeting parts.
type Publisher struct {
	ID             string    `json:"id"`
	CongregationID string    `json:"congregation_id"`
	FirstName      string    `json:"first_name" validate:"required,max=100"`
	LastName       string    `json:"last_name" validate:"required,max=100"`
	Group          string    `json:"group,omitempty" validate:"max=100"`
	Email          string    `json:"email,omitempty" validate:"omitempty,email"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// FullName returns the publisher's display name.
func (p *Publisher) FullName() string {
	if p.FirstName == "" {
		return p.LastName
	}
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}
