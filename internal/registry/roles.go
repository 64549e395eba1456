// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"context"
	"sync"

	"github.com/apex/log"

	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/suitecrm"
)

// Level is a SuiteCRM ACL access level. The values must match the server.
type Level int

const (
	LevelAdminDev Level = 100
	LevelAdmin    Level = 99
	LevelDev      Level = 95
	LevelAll      Level = 90
	LevelEnabled  Level = 89
	LevelOwner    Level = 75
	LevelNormal   Level = 1
	LevelDefault  Level = 0
	LevelDisabled Level = -98
	LevelNone     Level = -99
)

// PermAccess is the action that gates whether a module is usable at all.
const PermAccess = "access"

// Permissions maps module -> action -> level.
type Permissions map[string]map[string]Level

// Granted reports whether level allows the action: it must be non-zero and
// at least LevelDefault. A zero level counts as unset.
func Granted(level Level) bool {
	return level != 0 && level >= LevelDefault
}

// RoleFetcher fetches the current user's roles.
type RoleFetcher interface {
	UserRoles(ctx context.Context) ([]suitecrm.Role, error)
}

// Options tune the role registry.
type Options struct {
	// DenyOnRoleLoadFailure denies everything when roles cannot be fetched.
	// The default grants full access instead.
	DenyOnRoleLoadFailure bool
}

// Roles holds the current user's permission map for one session.
type Roles struct {
	fetcher RoleFetcher
	opts    Options

	mu          sync.Mutex
	loaded      bool
	initialized bool
	fullAccess  bool
	roles       []suitecrm.Role
	perms       Permissions
}

// NewRoles returns an empty, unloaded registry.
func NewRoles(fetcher RoleFetcher, opts Options) *Roles {
	return &Roles{fetcher: fetcher, opts: opts}
}

// Load fetches the user's roles once until Reset. No roles means full
// access. A failed fetch grants full access unless DenyOnRoleLoadFailure is
// set, and leaves the registry unloaded so the next Load retries.
func (r *Roles) Load(ctx context.Context) {
	r.mu.Lock()
	if r.loaded {
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()

	roles, err := r.fetcher.UserRoles(ctx)
	if err != nil {
		full := !r.opts.DenyOnRoleLoadFailure
		log.WithError(err).Warnf("failed to load user roles, full access=%t", full)
		r.mu.Lock()
		r.initialized, r.fullAccess, r.roles, r.perms = true, full, nil, Permissions{}
		r.mu.Unlock()
		return
	}

	full := len(roles) == 0
	perms := derive(roles)

	r.mu.Lock()
	r.loaded, r.initialized, r.fullAccess, r.roles, r.perms = true, true, full, roles, perms
	r.mu.Unlock()

	log.Debugf("loaded %d roles, full access=%t", len(roles), full)
}

// FullAccess reports whether permission checks are skipped.
func (r *Roles) FullAccess() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fullAccess
}

// Loaded reports whether a fetch has succeeded since the last Reset.
func (r *Roles) Loaded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loaded
}

// Roles returns the roles from the last successful load.
func (r *Roles) Roles() []suitecrm.Role {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.roles
}

// Permissions returns the derived permission map, nil under full access.
func (r *Roles) Permissions() Permissions {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fullAccess {
		return nil
	}
	return r.perms
}

// HasModuleAccess reports whether the module's access action is granted.
func (r *Roles) HasModuleAccess(module string) bool {
	return r.HasModulePermission(module, PermAccess)
}

// HasModulePermission reports whether perm is granted on module.
func (r *Roles) HasModulePermission(module, perm string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.initialized {
		log.Warnf("permission check for %s.%s before roles were loaded", module, perm)
		return false
	}
	if r.fullAccess {
		return true
	}
	level, ok := r.perms[module][perm]
	return ok && Granted(level)
}

// AccessibleModules filters all down to the modules the user can access.
func (r *Roles) AccessibleModules(all map[string]Module) map[string]Module {
	out := make(map[string]Module, len(all))
	for name, m := range all {
		if r.HasModuleAccess(name) {
			out[name] = m
		}
	}
	return out
}

// Reset clears all state. Call it on logout.
func (r *Roles) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaded, r.initialized, r.fullAccess = false, false, false
	r.roles, r.perms = nil, nil
}

// derive folds role actions into a permission map. When several roles set
// the same action the most restrictive level wins.
func derive(roles []suitecrm.Role) Permissions {
	perms := Permissions{}
	for _, role := range roles {
		for _, a := range role.Actions {
			if a.Category == "" || a.Name == "" {
				continue
			}
			actions, ok := perms[a.Category]
			if !ok {
				actions = map[string]Level{}
				perms[a.Category] = actions
			}
			level := Level(a.Level)
			if prev, seen := actions[a.Name]; seen && prev < level {
				continue
			}
			actions[a.Name] = level
		}
	}
	return perms
}
