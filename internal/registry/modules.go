// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"context"
	"maps"
	"sort"
	"strings"
	"sync"

	"github.com/apex/log"
)

// FallbackModules is served when the module list cannot be fetched.
var FallbackModules = []string{"Accounts", "Meetings", "Tasks", "Notes", "Calendar"}

// ModuleFetcher fetches module metadata keyed by module name.
type ModuleFetcher interface {
	Modules(ctx context.Context) (map[string]map[string]any, error)
}

// Module is a module entry annotated with the screen that lists it.
type Module struct {
	Name       string
	Attributes map[string]any
	ScreenName string
}

// Modules holds the module list for one session. It fetches at most once
// until Reset.
type Modules struct {
	fetcher ModuleFetcher

	mu       sync.Mutex
	loaded   bool
	all      map[string]map[string]any
	filtered map[string]Module
}

// NewModules returns an empty, unloaded registry.
func NewModules(fetcher ModuleFetcher) *Modules {
	return &Modules{fetcher: fetcher}
}

// Load returns the module map, fetching it on first use. A failed fetch is
// logged and answered with FallbackModules; the registry stays unloaded so a
// later Load tries the network again.
func (m *Modules) Load(ctx context.Context) map[string]map[string]any {
	m.mu.Lock()
	if m.loaded {
		all := maps.Clone(m.all)
		m.mu.Unlock()
		return all
	}
	m.mu.Unlock()

	all, err := m.fetcher.Modules(ctx)
	if err != nil {
		log.WithError(err).Warn("failed to load modules, using fallback list")
		all = fallback()
		m.mu.Lock()
		m.all, m.filtered = all, annotate(all)
		m.mu.Unlock()
		return maps.Clone(all)
	}

	filtered := annotate(all)

	m.mu.Lock()
	m.all, m.filtered, m.loaded = all, filtered, true
	m.mu.Unlock()

	log.Debugf("loaded %d modules", len(all))
	return maps.Clone(all)
}

// Filtered returns a copy of the modules annotated with screen names. It
// warns and returns an empty map when called before Load.
func (m *Modules) Filtered() map[string]Module {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.filtered == nil {
		log.Warn("modules requested before load")
		return map[string]Module{}
	}
	return maps.Clone(m.filtered)
}

// Names returns the filtered module names sorted.
func (m *Modules) Names() []string {
	f := m.Filtered()
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Loaded reports whether a fetch has succeeded since the last Reset.
func (m *Modules) Loaded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loaded
}

// Reset clears all state. Call it on logout.
func (m *Modules) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loaded = false
	m.all = nil
	m.filtered = nil
}

// ScreenName derives the list screen for a module: a trailing "s" is dropped
// and "ListScreen" appended. Calendar has its own screen.
func ScreenName(module string) string {
	if module == "Calendar" {
		return "CalendarScreen"
	}
	return strings.TrimSuffix(module, "s") + "ListScreen"
}

func annotate(all map[string]map[string]any) map[string]Module {
	filtered := make(map[string]Module, len(all))
	for name, attrs := range all {
		if name == "" {
			continue
		}
		filtered[name] = Module{
			Name:       name,
			Attributes: attrs,
			ScreenName: ScreenName(name),
		}
	}
	return filtered
}

func fallback() map[string]map[string]any {
	all := make(map[string]map[string]any, len(FallbackModules))
	for _, name := range FallbackModules {
		all[name] = map[string]any{"label": name}
	}
	return all
}
