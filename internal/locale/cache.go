// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package locale

import (
	"fmt"
	"sync"

	"github.com/apex/log"

	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/settings"
)

// Snapshot is the locale state at one point in time. Generation increases
// with every Initialize or Update, so holders can tell a stale copy.
type Snapshot struct {
	DateFormat string
	Language   string
	Timezone   string
	Generation uint64
}

// ParsedTimezone parses the cached triple. The zero Timezone (offset 0) is
// returned when it is unset or malformed.
func (s Snapshot) ParsedTimezone() Timezone {
	if s.Timezone == "" {
		return Timezone{}
	}
	tz, err := ParseTimezone(s.Timezone)
	if err != nil {
		log.WithError(err).Warn("ignoring cached timezone")
		return Timezone{}
	}
	return tz
}

// EffectiveFormat picks the display format: the user's override when it is
// supported, else the popular format of the cached timezone, else the one
// implied by the language.
func (s Snapshot) EffectiveFormat() string {
	if s.DateFormat != "" {
		if Supported(s.DateFormat) {
			return s.DateFormat
		}
		log.Warnf("unsupported date format override %q", s.DateFormat)
	}
	if tz := s.ParsedTimezone(); tz.CountryCode != "" {
		if z, ok := LookupZone(tz); ok {
			return z.PopularFormat
		}
	}
	return LanguageFormat(s.Language)
}

// Cache holds the locale preferences for a session: date format override,
// selected language and timezone triple. It starts uninitialized; formatting
// before Initialize warns and falls back to DefaultFormat with no offset.
type Cache struct {
	store *settings.Store

	mu          sync.RWMutex
	initialized bool
	snap        Snapshot
}

// NewCache returns an uninitialized Cache backed by store.
func NewCache(store *settings.Store) *Cache {
	return &Cache{store: store}
}

// Initialize reads the persisted preferences into memory.
func (c *Cache) Initialize() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.snap = Snapshot{
		DateFormat: c.store.GetString(settings.KeyDateFormat, ""),
		Language:   c.store.GetString(settings.KeySelectedLanguage, ""),
		Timezone:   c.store.GetString(settings.KeyTimezone, ""),
		Generation: c.snap.Generation + 1,
	}
	c.initialized = true
	log.Debugf("locale initialized: format=%q language=%q timezone=%q",
		c.snap.DateFormat, c.snap.Language, c.snap.Timezone)
	return c.snap
}

// Update replaces all three preferences, persists them and returns the new
// snapshot. Memory is updated even when persisting fails, so formatters see
// the change immediately; the error reports the persistence failure.
func (c *Cache) Update(format, language, timezone string) (Snapshot, error) {
	if timezone != "" {
		if _, err := ParseTimezone(timezone); err != nil {
			return c.Snapshot(), err
		}
	}

	c.mu.Lock()
	c.snap = Snapshot{
		DateFormat: format,
		Language:   language,
		Timezone:   timezone,
		Generation: c.snap.Generation + 1,
	}
	c.initialized = true
	snap := c.snap
	c.mu.Unlock()

	if err := c.store.SetMany(map[string]string{
		settings.KeyDateFormat:       format,
		settings.KeySelectedLanguage: language,
		settings.KeyTimezone:         timezone,
	}); err != nil {
		return snap, fmt.Errorf("failed to persist locale: %w", err)
	}
	return snap, nil
}

// Initialized reports whether Initialize or Update has run.
func (c *Cache) Initialized() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.initialized
}

// Snapshot returns the in-memory state.
func (c *Cache) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// current returns the snapshot to format with, or a default one after
// warning when the cache has not been initialized.
func (c *Cache) current() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.initialized {
		log.Warn("locale cache not initialized, using default date format")
		return Snapshot{DateFormat: DefaultFormat}
	}
	return c.snap
}

// DateFormat returns the effective display format.
func (c *Cache) DateFormat() string {
	return c.current().EffectiveFormat()
}

// OffsetMinutes returns the cached timezone's UTC offset in minutes.
func (c *Cache) OffsetMinutes() int {
	return c.current().ParsedTimezone().OffsetMinutes
}

// FormatDate renders the date part of iso in the effective format, shifted
// by the cached timezone offset.
func (c *Cache) FormatDate(iso string) (string, error) {
	return format(c.current(), iso, false)
}

// FormatDateTime is FormatDate with an HH:mm:ss suffix.
func (c *Cache) FormatDateTime(iso string) (string, error) {
	return format(c.current(), iso, true)
}

// LoadFormatDate re-reads persisted preferences, then formats like
// FormatDate.
func (c *Cache) LoadFormatDate(iso string) (string, error) {
	return format(c.Initialize(), iso, false)
}

// LoadFormatDateTime re-reads persisted preferences, then formats like
// FormatDateTime.
func (c *Cache) LoadFormatDateTime(iso string) (string, error) {
	return format(c.Initialize(), iso, true)
}

func format(s Snapshot, iso string, withTime bool) (string, error) {
	return Format(iso, s.EffectiveFormat(), s.ParsedTimezone().OffsetMinutes, withTime)
}
