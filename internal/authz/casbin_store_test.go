// Lectern - Congregation Meeting Scheduling and Administration
// Copyright 2026 Lectern Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-app/lectern

package authz

import (
	"context"
	"testing"
)

func newPopulatedGrantStore(t *testing.T) *CasbinGrantStore {
	t.Helper()
	store, err := NewCasbinGrantStore(nil)
	if err != nil {
		t.Fatalf("NewCasbinGrantStore() error = %v", err)
	}
	return store
}

func grantSet(t *testing.T, store *CasbinGrantStore, user, congregation string) PermissionSet {
	t.Helper()
	caps, err := store.FetchGrants(context.Background(), user, congregation)
	if err != nil {
		t.Fatalf("FetchGrants(%s, %s) error = %v", user, congregation, err)
	}
	return NewPermissionSet(caps)
}

func TestCasbinGrantStore_RoleFlattening(t *testing.T) {
	store := newPopulatedGrantStore(t)
	if err := store.AssignRole("user-1", "coordinator", "cong-1"); err != nil {
		t.Fatalf("AssignRole() error = %v", err)
	}

	set := grantSet(t, store, "user-1", "cong-1")

	for _, c := range []Capability{
		{ResourcePublishers, ActionCreate},
		{ResourceSpeakers, ActionDelete},
		{ResourceWeekendMeetings, ActionManageExceptions},
	} {
		if !set.Has(c.Resource, c.Action) {
			t.Errorf("coordinator missing %s", c)
		}
	}
	// Coordinator never sees the audit log or settings.
	if set.Has(ResourceAuditLog, ActionRead) {
		t.Error("coordinator must not hold audit_log:read")
	}
	if set.Has(ResourceSettings, ActionUpdate) {
		t.Error("coordinator must not hold settings:update")
	}
}

func TestCasbinGrantStore_AdminHoldsAuditLog(t *testing.T) {
	store := newPopulatedGrantStore(t)
	if err := store.AssignRole("user-admin", "admin", "cong-1"); err != nil {
		t.Fatalf("AssignRole() error = %v", err)
	}

	set := grantSet(t, store, "user-admin", "cong-1")
	if !set.Has(ResourceAuditLog, ActionRead) {
		t.Error("admin missing audit_log:read")
	}
	if !set.Has(ResourceSettings, ActionUpdate) {
		t.Error("admin missing settings:update")
	}
}

func TestCasbinGrantStore_CongregationIsolation(t *testing.T) {
	store := newPopulatedGrantStore(t)
	if err := store.AssignRole("user-1", "admin", "cong-1"); err != nil {
		t.Fatalf("AssignRole() error = %v", err)
	}

	// Admin in cong-1 resolves to nothing inside cong-2.
	if set := grantSet(t, store, "user-1", "cong-2"); set.Len() != 0 {
		t.Errorf("role in cong-1 leaked %d capabilities into cong-2", set.Len())
	}

	// A second assignment makes the grants visible there too.
	if err := store.AssignRole("user-1", "viewer", "cong-2"); err != nil {
		t.Fatalf("AssignRole() error = %v", err)
	}
	set := grantSet(t, store, "user-1", "cong-2")
	if !set.Has(ResourcePublishers, ActionRead) {
		t.Error("viewer in cong-2 missing publishers:read")
	}
	if set.Has(ResourcePublishers, ActionDelete) {
		t.Error("admin grants from cong-1 leaked into the cong-2 viewer set")
	}
}

func TestCasbinGrantStore_RevokeRole(t *testing.T) {
	store := newPopulatedGrantStore(t)
	if err := store.AssignRole("user-1", "viewer", "cong-1"); err != nil {
		t.Fatalf("AssignRole() error = %v", err)
	}
	if err := store.RevokeRole("user-1", "viewer", "cong-1"); err != nil {
		t.Fatalf("RevokeRole() error = %v", err)
	}

	if set := grantSet(t, store, "user-1", "cong-1"); set.Len() != 0 {
		t.Errorf("revoked role still yields %d capabilities", set.Len())
	}
	if roles := store.RolesFor("user-1", "cong-1"); len(roles) != 0 {
		t.Errorf("RolesFor() = %v, want none after revoke", roles)
	}
}

func TestCasbinGrantStore_UndeclaredRowsDropped(t *testing.T) {
	store := newPopulatedGrantStore(t)
	// A rogue policy row outside the declared capability table must never
	// surface as a live grant.
	if _, err := store.enforcer.AddPolicy("viewer", wildcardDomain, "rocketry", "launch"); err != nil {
		t.Fatalf("AddPolicy() error = %v", err)
	}
	if err := store.AssignRole("user-1", "viewer", "cong-1"); err != nil {
		t.Fatalf("AssignRole() error = %v", err)
	}

	set := grantSet(t, store, "user-1", "cong-1")
	if set.Has(Resource("rocketry"), Action("launch")) {
		t.Error("undeclared policy row surfaced as a capability")
	}
	if !set.Has(ResourcePublishers, ActionRead) {
		t.Error("declared viewer grant lost while filtering")
	}
}

func TestCasbinGrantStore_EmptyInputs(t *testing.T) {
	store := newPopulatedGrantStore(t)

	caps, err := store.FetchGrants(context.Background(), "", "cong-1")
	if err != nil || len(caps) != 0 {
		t.Errorf("FetchGrants with empty principal = (%v, %v), want (nil, nil)", caps, err)
	}
	caps, err = store.FetchGrants(context.Background(), "user-1", "")
	if err != nil || len(caps) != 0 {
		t.Errorf("FetchGrants with empty congregation = (%v, %v), want (nil, nil)", caps, err)
	}
}
