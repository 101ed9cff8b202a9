// Lectern - Congregation Meeting Scheduling and Administration
// Copyright 2026 Lectern Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-app/lectern

package authz

import "fmt"

// Requirement maps each required resource to the set of acceptable actions.
// Any one action satisfies its resource; all resource keys must be
// satisfied. An empty requirement is satisfied by any set, including the
// empty one.
type Requirement map[Resource][]Action

// Validate checks every (resource, action) pair against the declared
// capability table. A requirement naming an undeclared pair is a
// programming error caught at startup, not a runtime denial.
func (r Requirement) Validate() error {
	for resource, actions := range r {
		if len(actions) == 0 {
			return fmt.Errorf("requirement for %q lists no actions", resource)
		}
		for _, action := range actions {
			if !Declared(Capability{resource, action}) {
				return fmt.Errorf("requirement references undeclared capability %q",
					Capability{resource, action})
			}
		}
	}
	return nil
}

// MustRequire validates the requirement and panics on an undeclared pair.
// Route tables use this so misdeclared guards fail at startup.
func MustRequire(r Requirement) Requirement {
	if err := r.Validate(); err != nil {
		panic(err)
	}
	return r
}

// Satisfied evaluates the requirement against a permission set.
// Deterministic and pure: identical inputs always produce the same result.
func (r Requirement) Satisfied(set PermissionSet) bool {
	for resource, actions := range r {
		if !set.HasAny(resource, actions...) {
			return false
		}
	}
	return true
}
