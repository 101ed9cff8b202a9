// Lectern - Congregation Meeting Scheduling and Administration
// Copyright 2026 Lectern Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-app/lectern

package authz

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// wildcardDomain marks role grants that apply inside any congregation the
// role was assigned in.
const wildcardDomain = "*"

// CasbinConfig holds configuration for the casbin-backed grant store.
type CasbinConfig struct {
	// ModelPath overrides the embedded casbin model.
	ModelPath string

	// PolicyPath overrides the embedded role policy.
	PolicyPath string
}

// CasbinGrantStore implements GrantStore on a casbin RBAC-with-domains
// model. The casbin domain is the congregation ID, so a role assignment
// in one congregation can never produce a grant in another.
type CasbinGrantStore struct {
	enforcer *casbin.SyncedEnforcer
}

// NewCasbinGrantStore creates a grant store from the embedded (or
// configured) model and policy.
func NewCasbinGrantStore(config *CasbinConfig) (*CasbinGrantStore, error) {
	if config == nil {
		config = &CasbinConfig{}
	}

	var m model.Model
	var err error
	if config.ModelPath != "" && fileExists(config.ModelPath) {
		m, err = model.NewModelFromFile(config.ModelPath)
	} else {
		m, err = model.NewModelFromString(embeddedModel)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	var enforcer *casbin.SyncedEnforcer
	if config.PolicyPath != "" && fileExists(config.PolicyPath) {
		enforcer, err = casbin.NewSyncedEnforcer(m, fileadapter.NewAdapter(config.PolicyPath))
	} else {
		enforcer, err = casbin.NewSyncedEnforcer(m)
		if err == nil {
			err = loadEmbeddedPolicy(enforcer, embeddedPolicy)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	return &CasbinGrantStore{enforcer: enforcer}, nil
}

// loadEmbeddedPolicy parses and loads the embedded policy CSV.
func loadEmbeddedPolicy(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		switch parts[0] {
		case "p":
			if len(parts) >= 5 {
				if _, err := enforcer.AddPolicy(parts[1], parts[2], parts[3], parts[4]); err != nil {
					return fmt.Errorf("failed to add policy %v: %w", parts[1:], err)
				}
			}
		case "g":
			if len(parts) >= 4 {
				if _, err := enforcer.AddGroupingPolicy(parts[1], parts[2], parts[3]); err != nil {
					return fmt.Errorf("failed to add role assignment %v: %w", parts[1:], err)
				}
			}
		}
	}
	return nil
}

// FetchGrants returns the flattened capability set for the principal
// inside the given congregation. Only the principal's roles in that
// congregation contribute; undeclared capability rows are dropped.
func (s *CasbinGrantStore) FetchGrants(ctx context.Context, principalID, congregationID string) ([]Capability, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if principalID == "" || congregationID == "" {
		return nil, nil
	}

	subjects := []string{principalID}
	subjects = append(subjects, s.enforcer.GetRolesForUserInDomain(principalID, congregationID)...)

	seen := make(map[Capability]struct{})
	var caps []Capability
	for _, subject := range subjects {
		for _, domain := range []string{congregationID, wildcardDomain} {
			for _, row := range s.enforcer.GetPermissionsForUserInDomain(subject, domain) {
				if len(row) < 4 {
					continue
				}
				c := Capability{Resource(row[2]), Action(row[3])}
				if !Declared(c) {
					continue
				}
				if _, dup := seen[c]; dup {
					continue
				}
				seen[c] = struct{}{}
				caps = append(caps, c)
			}
		}
	}
	return caps, nil
}

// AssignRole grants a role to a user within one congregation.
func (s *CasbinGrantStore) AssignRole(userID, role, congregationID string) error {
	_, err := s.enforcer.AddGroupingPolicy(userID, role, congregationID)
	if err != nil {
		return fmt.Errorf("failed to assign role: %w", err)
	}
	return nil
}

// RevokeRole removes a role from a user within one congregation.
func (s *CasbinGrantStore) RevokeRole(userID, role, congregationID string) error {
	_, err := s.enforcer.RemoveGroupingPolicy(userID, role, congregationID)
	if err != nil {
		return fmt.Errorf("failed to revoke role: %w", err)
	}
	return nil
}

// RolesFor returns the user's roles within one congregation.
func (s *CasbinGrantStore) RolesFor(userID, congregationID string) []string {
	return s.enforcer.GetRolesForUserInDomain(userID, congregationID)
}

// fileExists checks if a file exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
