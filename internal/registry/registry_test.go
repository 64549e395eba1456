// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/suitecrm"
)

type fakeModules struct {
	calls int
	err   error
	data  map[string]map[string]any
}

func (f *fakeModules) Modules(context.Context) (map[string]map[string]any, error) {
	f.calls++
	return f.data, f.err
}

type fakeRoles struct {
	calls int
	err   error
	roles []suitecrm.Role
}

func (f *fakeRoles) UserRoles(context.Context) ([]suitecrm.Role, error) {
	f.calls++
	return f.roles, f.err
}

func TestScreenName(t *testing.T) {
	tests := map[string]string{
		"Accounts": "AccountListScreen",
		"Meetings": "MeetingListScreen",
		"Notes":    "NoteListScreen",
		"Calendar": "CalendarScreen",
		"Project":  "ProjectListScreen",
	}
	for in, want := range tests {
		assert.Equal(t, want, ScreenName(in), in)
	}
}

func TestModules_LoadOnce(t *testing.T) {
	ctx := context.Background()
	f := &fakeModules{data: map[string]map[string]any{
		"Accounts": {"label": "Accounts"},
		"Calendar": {"label": "Calendar"},
	}}
	m := NewModules(f)

	assert.Empty(t, m.Filtered())

	m.Load(ctx)
	got := m.Load(ctx)
	assert.Equal(t, 1, f.calls)
	assert.Len(t, got, 2)
	assert.True(t, m.Loaded())
	assert.Equal(t, "AccountListScreen", m.Filtered()["Accounts"].ScreenName)
	assert.Equal(t, "CalendarScreen", m.Filtered()["Calendar"].ScreenName)
	assert.Equal(t, []string{"Accounts", "Calendar"}, m.Names())

	m.Reset()
	assert.False(t, m.Loaded())
	assert.Empty(t, m.Filtered())

	m.Load(ctx)
	assert.Equal(t, 2, f.calls)
}

func TestModules_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewModules(&fakeModules{data: map[string]map[string]any{"Accounts": {}}})

	all := m.Load(ctx)
	delete(all, "Accounts")
	assert.Contains(t, m.Load(ctx), "Accounts")

	f := m.Filtered()
	f["Leads"] = Module{Name: "Leads"}
	delete(f, "Accounts")
	assert.Equal(t, []string{"Accounts"}, m.Names())
}

func TestModules_FallbackOnFailure(t *testing.T) {
	ctx := context.Background()
	f := &fakeModules{err: errors.New("offline")}
	m := NewModules(f)

	got := m.Load(ctx)
	assert.Len(t, got, len(FallbackModules))
	assert.Contains(t, got, "Accounts")
	assert.Equal(t, "TaskListScreen", m.Filtered()["Tasks"].ScreenName)
	assert.False(t, m.Loaded())

	// Still unloaded, so the next call goes back to the network.
	f.err = nil
	f.data = map[string]map[string]any{"Leads": {}}
	got = m.Load(ctx)
	assert.Equal(t, 2, f.calls)
	assert.Len(t, got, 1)
	assert.True(t, m.Loaded())
}

func TestGranted(t *testing.T) {
	tests := []struct {
		level Level
		want  bool
	}{
		{LevelAdminDev, true},
		{LevelAdmin, true},
		{LevelDev, true},
		{LevelAll, true},
		{LevelEnabled, true},
		{LevelOwner, true},
		{LevelNormal, true},
		{LevelDefault, false},
		{LevelDisabled, false},
		{LevelNone, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Granted(tt.level), "level %d", tt.level)
	}
}

func TestRoles_EmptyRolesIsFullAccess(t *testing.T) {
	f := &fakeRoles{roles: []suitecrm.Role{}}
	r := NewRoles(f, Options{})
	r.Load(context.Background())

	assert.True(t, r.FullAccess())
	assert.Nil(t, r.Permissions())
	for _, m := range []string{"Accounts", "Meetings", "Anything"} {
		assert.True(t, r.HasModuleAccess(m))
		assert.True(t, r.HasModulePermission(m, "delete"))
	}
}

func TestRoles_Permissions(t *testing.T) {
	f := &fakeRoles{roles: []suitecrm.Role{
		{Name: "Sales", Actions: []suitecrm.Action{
			{Category: "Accounts", Name: "access", Level: 89},
			{Category: "Accounts", Name: "delete", Level: -99},
			{Category: "Notes", Name: "access", Level: -98},
			{Category: "Tasks", Name: "access", Level: 0},
			{Category: "Meetings", Name: "access", Level: 89},
		}},
		{Name: "Restricted", Actions: []suitecrm.Action{
			{Category: "Meetings", Name: "access", Level: -98},
			{Category: "Accounts", Name: "view", Level: 75},
		}},
	}}
	r := NewRoles(f, Options{})
	ctx := context.Background()
	r.Load(ctx)
	r.Load(ctx)

	assert.Equal(t, 1, f.calls)
	assert.False(t, r.FullAccess())
	assert.True(t, r.HasModuleAccess("Accounts"))
	assert.True(t, r.HasModulePermission("Accounts", "view"))
	assert.False(t, r.HasModulePermission("Accounts", "delete"))
	assert.False(t, r.HasModuleAccess("Notes"))
	assert.False(t, r.HasModuleAccess("Tasks"))
	assert.False(t, r.HasModuleAccess("Meetings"), "most restrictive level wins")
	assert.False(t, r.HasModuleAccess("Unknown"))

	all := map[string]Module{
		"Accounts": {Name: "Accounts"},
		"Notes":    {Name: "Notes"},
		"Meetings": {Name: "Meetings"},
	}
	assert.Equal(t, map[string]Module{"Accounts": {Name: "Accounts"}}, r.AccessibleModules(all))
}

func TestRoles_LoadFailure(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want bool
	}{
		{name: "fail open by default", opts: Options{}, want: true},
		{name: "deny when configured", opts: Options{DenyOnRoleLoadFailure: true}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeRoles{err: errors.New("boom")}
			r := NewRoles(f, tt.opts)
			r.Load(context.Background())

			assert.Equal(t, tt.want, r.FullAccess())
			assert.Equal(t, tt.want, r.HasModuleAccess("Accounts"))
			assert.False(t, r.Loaded())

			r.Load(context.Background())
			assert.Equal(t, 2, f.calls)
		})
	}
}

func TestRoles_BeforeLoadAndReset(t *testing.T) {
	f := &fakeRoles{roles: []suitecrm.Role{}}
	r := NewRoles(f, Options{})

	assert.False(t, r.HasModuleAccess("Accounts"))

	r.Load(context.Background())
	assert.True(t, r.HasModuleAccess("Accounts"))

	r.Reset()
	assert.False(t, r.Loaded())
	assert.False(t, r.FullAccess())
	assert.False(t, r.HasModuleAccess("Accounts"))

	r.Load(context.Background())
	assert.Equal(t, 2, f.calls)
}
