// Lectern - Congregation Meeting Scheduling and Administration
// Copyright 2026 Lectern Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-app/lectern

package authz

import (
	"fmt"
	"sort"
)

// Resource identifies a protected resource class.
type Resource string

// Action identifies an operation on a resource.
type Action string

// Declared resources.
const (
	ResourcePublishers      Resource = "publishers"
	ResourceSpeakers        Resource = "speakers"
	ResourceMidweekMeetings Resource = "midweek_meetings"
	ResourceWeekendMeetings Resource = "weekend_meetings"
	ResourceAuditLog        Resource = "audit_log"
	ResourceSettings        Resource = "settings"
)

// Declared actions.
const (
	ActionRead             Action = "read"
	ActionCreate           Action = "create"
	ActionUpdate           Action = "update"
	ActionDelete           Action = "delete"
	ActionManage           Action = "manage"
	ActionManageExceptions Action = "manage_exceptions"
)

// Capability is an immutable (resource, action) pair.
type Capability struct {
	Resource Resource `json:"resource"`
	Action   Action   `json:"action"`
}

// String returns the canonical "resource:action" spelling.
func (c Capability) String() string {
	return string(c.Resource) + ":" + string(c.Action)
}

// declaredCapabilities is the closed capability table. Capabilities are
// declared here and nowhere else; requirements and grants referencing a
// pair outside this table are rejected at startup or resolve to false.
var declaredCapabilities = map[Capability]struct{}{
	{ResourcePublishers, ActionRead}:               {},
	{ResourcePublishers, ActionCreate}:             {},
	{ResourcePublishers, ActionUpdate}:             {},
	{ResourcePublishers, ActionDelete}:             {},
	{ResourceSpeakers, ActionRead}:                 {},
	{ResourceSpeakers, ActionCreate}:               {},
	{ResourceSpeakers, ActionUpdate}:               {},
	{ResourceSpeakers, ActionDelete}:               {},
	{ResourceMidweekMeetings, ActionRead}:          {},
	{ResourceMidweekMeetings, ActionManage}:        {},
	{ResourceWeekendMeetings, ActionRead}:          {},
	{ResourceWeekendMeetings, ActionManage}:        {},
	{ResourceWeekendMeetings, ActionManageExceptions}: {},
	{ResourceAuditLog, ActionRead}:                 {},
	{ResourceSettings, ActionRead}:                 {},
	{ResourceSettings, ActionUpdate}:               {},
}

// Declared reports whether the capability is part of the declared table.
func Declared(c Capability) bool {
	_, ok := declaredCapabilities[c]
	return ok
}

// DeclaredCapabilities returns the full capability table in a stable order.
func DeclaredCapabilities() []Capability {
	out := make([]Capability, 0, len(declaredCapabilities))
	for c := range declaredCapabilities {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Resource != out[j].Resource {
			return out[i].Resource < out[j].Resource
		}
		return out[i].Action < out[j].Action
	})
	return out
}

// PermissionSet is the resolved, flattened set of capabilities held by one
// session. The zero value is usable and holds nothing.
type PermissionSet struct {
	caps map[Capability]struct{}
}

// NewPermissionSet builds a set from the given capabilities. Capabilities
// outside the declared table are dropped: an undeclared grant can never
// become a live permission.
func NewPermissionSet(caps []Capability) PermissionSet {
	set := make(map[Capability]struct{}, len(caps))
	for _, c := range caps {
		if Declared(c) {
			set[c] = struct{}{}
		}
	}
	return PermissionSet{caps: set}
}

// EmptyPermissionSet returns a set holding no capabilities.
func EmptyPermissionSet() PermissionSet {
	return PermissionSet{}
}

// Has reports whether the set holds the (resource, action) capability.
// Total over all inputs: unknown pairs are false, never an error.
func (s PermissionSet) Has(resource Resource, action Action) bool {
	_, ok := s.caps[Capability{resource, action}]
	return ok
}

// HasAny reports whether the set holds any of the given actions on the
// resource.
func (s PermissionSet) HasAny(resource Resource, actions ...Action) bool {
	for _, a := range actions {
		if s.Has(resource, a) {
			return true
		}
	}
	return false
}

// Len returns the number of capabilities in the set.
func (s PermissionSet) Len() int {
	return len(s.caps)
}

// Capabilities returns the set's contents in a stable order, for the
// permissions endpoint and for logging.
func (s PermissionSet) Capabilities() []Capability {
	out := make([]Capability, 0, len(s.caps))
	for c := range s.caps {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Resource != out[j].Resource {
			return out[i].Resource < out[j].Resource
		}
		return out[i].Action < out[j].Action
	})
	return out
}

// ParseCapability parses a "resource:action" string into a declared
// capability. Used when loading grants from external stores.
func ParseCapability(s string) (Capability, error) {
	for i := 0; i < len(s); i++ {
		if s[i] == ':' {
			c := Capability{Resource(s[:i]), Action(s[i+1:])}
			if !Declared(c) {
				return Capability{}, fmt.Errorf("undeclared capability %q", s)
			}
			return c, nil
		}
	}
	return Capability{}, fmt.Errorf("malformed capability %q", s)
}
