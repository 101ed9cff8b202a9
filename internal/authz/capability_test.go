// Lectern - Congregation Meeting Scheduling and Administration
// Copyright 2026 Lectern Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-app/lectern

package authz

import "testing"

func TestPermissionSet_Has(t *testing.T) {
	set := NewPermissionSet([]Capability{
		{ResourcePublishers, ActionCreate},
		{ResourceWeekendMeetings, ActionManageExceptions},
	})

	tests := []struct {
		name     string
		resource Resource
		action   Action
		want     bool
	}{
		{"held capability", ResourcePublishers, ActionCreate, true},
		{"held exception capability", ResourceWeekendMeetings, ActionManageExceptions, true},
		{"declared but not held", ResourcePublishers, ActionDelete, false},
		{"unknown resource", Resource("bogus"), ActionCreate, false},
		{"unknown action", ResourcePublishers, Action("bogus"), false},
		{"both unknown", Resource("x"), Action("y"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := set.Has(tt.resource, tt.action); got != tt.want {
				t.Errorf("Has(%s, %s) = %v, want %v", tt.resource, tt.action, got, tt.want)
			}
		})
	}
}

func TestPermissionSet_HasAny(t *testing.T) {
	set := NewPermissionSet([]Capability{{ResourcePublishers, ActionCreate}})

	if !set.HasAny(ResourcePublishers, ActionCreate, ActionUpdate) {
		t.Error("HasAny should pass when one of the actions is held")
	}
	if set.HasAny(ResourcePublishers, ActionUpdate, ActionDelete) {
		t.Error("HasAny should fail when none of the actions is held")
	}
	if set.HasAny(ResourcePublishers) {
		t.Error("HasAny with no actions should fail")
	}
}

func TestNewPermissionSet_DropsUndeclared(t *testing.T) {
	set := NewPermissionSet([]Capability{
		{ResourcePublishers, ActionCreate},
		{Resource("rogue"), Action("anything")},
	})

	if set.Len() != 1 {
		t.Errorf("Len() = %d, want 1 (undeclared capability must be dropped)", set.Len())
	}
	if set.Has(Resource("rogue"), Action("anything")) {
		t.Error("undeclared capability must never become a live permission")
	}
}

func TestEmptyPermissionSet(t *testing.T) {
	set := EmptyPermissionSet()
	if set.Len() != 0 {
		t.Errorf("Len() = %d, want 0", set.Len())
	}
	if set.Has(ResourcePublishers, ActionRead) {
		t.Error("empty set must hold nothing")
	}
}

func TestDeclaredCapabilities_StableAndClosed(t *testing.T) {
	first := DeclaredCapabilities()
	second := DeclaredCapabilities()

	if len(first) == 0 {
		t.Fatal("declared capability table is empty")
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("DeclaredCapabilities() order unstable at %d: %v vs %v", i, first[i], second[i])
		}
	}

	// No duplicate semantic meaning under different spellings.
	seen := make(map[string]bool)
	for _, c := range first {
		if seen[c.String()] {
			t.Errorf("duplicate capability %s", c)
		}
		seen[c.String()] = true
	}
}

func TestParseCapability(t *testing.T) {
	tests := []struct {
		input   string
		want    Capability
		wantErr bool
	}{
		{"publishers:create", Capability{ResourcePublishers, ActionCreate}, false},
		{"weekend_meetings:manage_exceptions", Capability{ResourceWeekendMeetings, ActionManageExceptions}, false},
		{"publishers:bogus", Capability{}, true},
		{"nocolon", Capability{}, true},
		{"", Capability{}, true},
	}

	for _, tt := range tests {
		got, err := ParseCapability(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseCapability(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseCapability(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestRequirement_Satisfied(t *testing.T) {
	tests := []struct {
		name string
		req  Requirement
		caps []Capability
		want bool
	}{
		{
			name: "OR within resource",
			req:  Requirement{ResourcePublishers: {ActionCreate, ActionUpdate}},
			caps: []Capability{{ResourcePublishers, ActionCreate}},
			want: true,
		},
		{
			name: "AND across resources, both held",
			req: Requirement{
				ResourcePublishers: {ActionRead},
				ResourceSpeakers:   {ActionRead},
			},
			caps: []Capability{
				{ResourcePublishers, ActionRead},
				{ResourceSpeakers, ActionRead},
			},
			want: true,
		},
		{
			name: "AND across resources, one missing",
			req: Requirement{
				ResourcePublishers: {ActionRead},
				ResourceSpeakers:   {ActionRead},
			},
			caps: []Capability{{ResourcePublishers, ActionRead}},
			want: false,
		},
		{
			name: "empty set fails any non-empty requirement",
			req:  Requirement{ResourceWeekendMeetings: {ActionManageExceptions}},
			caps: nil,
			want: false,
		},
		{
			name: "empty requirement always passes",
			req:  Requirement{},
			caps: nil,
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := NewPermissionSet(tt.caps)
			if got := tt.req.Satisfied(set); got != tt.want {
				t.Errorf("Satisfied() = %v, want %v", got, tt.want)
			}
			// Determinism: evaluating again yields the same outcome.
			if got := tt.req.Satisfied(set); got != tt.want {
				t.Errorf("Satisfied() second call = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRequirement_Validate(t *testing.T) {
	if err := (Requirement{ResourcePublishers: {ActionCreate}}).Validate(); err != nil {
		t.Errorf("Validate() on declared requirement error = %v", err)
	}
	if err := (Requirement{ResourcePublishers: {Action("fly")}}).Validate(); err == nil {
		t.Error("Validate() should reject undeclared action")
	}
	if err := (Requirement{ResourcePublishers: {}}).Validate(); err == nil {
		t.Error("Validate() should reject empty action list")
	}
}

func TestMustRequire_PanicsOnUndeclared(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustRequire should panic on undeclared capability")
		}
	}()
	MustRequire(Requirement{Resource("ghosts"): {ActionRead}})
}
