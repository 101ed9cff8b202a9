// Lectern - Congregation Meeting Scheduling and Administration
// Copyright 2026 Lectern Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-app/lectern

package models

import "time"

// Speaker is a visiting or local speaker available for weekend meetings.
type Speaker struct {
	ID               string    `json:"id"`
	CongregationID   string    `json:"congregation_id"`
	Name             string    `json:"name" validate:"required,max=200"`
	HomeCongregation string    `json:"home_congregation,omitempty" validate:"max=200"`
	Phone            string    `json:"phone,omitempty" validate:"max=50"`
	TalkNumbers      []int     `json:"talk_numbers,omitempty" validate:"dive,gt=0"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
