// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cacheutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/tidwall/gjson"
)

// DirName is the cache directory created beneath the app storage root.
const DirName = "cache"

// Entry represents a cached artifact on disk. Key is the slash-joined
// segment list, e.g. "Accounts/language/en_us".
type Entry struct {
	Key     string
	Path    string
	Size    int64
	ModTime time.Time
}

// Store is a directory-keyed JSON file cache. Entries live at
// <root>/cache/<seg>/.../<last>.json. All I/O failures are logged and
// reported as a miss so callers can fall back to the network.
type Store struct {
	base string
}

// NewStore returns a Store rooted at storageRoot/cache. Nothing is created
// on disk until the first Write.
func NewStore(storageRoot string) *Store {
	return &Store{base: filepath.Join(storageRoot, DirName)}
}

// Dir returns the cache base directory.
func (s *Store) Dir() string {
	return s.base
}

// Enabled returns true unless SUITECRM_CACHE explicitly disables it
// ("0"/"false").
func Enabled() bool {
	enabled, _ := os.LookupEnv("SUITECRM_CACHE")
	return enabled == "" || (enabled != "0" && enabled != "false")
}

// EntryPath returns the absolute path where an entry keyed by segments would
// live. The last segment gets a .json suffix.
func (s *Store) EntryPath(segments ...string) (string, error) {
	if len(segments) == 0 {
		return "", errors.New("empty cache key")
	}
	for _, seg := range segments {
		if seg == "" || seg == "." || seg == ".." || strings.ContainsAny(seg, `/\`) {
			return "", fmt.Errorf("invalid cache key segment %q", seg)
		}
	}
	parts := append([]string{s.base}, segments...)
	parts[len(parts)-1] += ".json"
	return filepath.Join(parts...), nil
}

// Exists reports whether an entry is present for segments.
func (s *Store) Exists(segments ...string) bool {
	if !Enabled() {
		return false
	}
	p, err := s.EntryPath(segments...)
	if err != nil {
		log.WithError(err).Warn("cache exists check failed")
		return false
	}
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

// Read returns the raw JSON stored for segments, or nil on a miss, an I/O
// error or content that is not valid JSON.
func (s *Store) Read(segments ...string) json.RawMessage {
	if !Enabled() {
		return nil
	}
	p, err := s.EntryPath(segments...)
	if err != nil {
		log.WithError(err).Warn("cache read failed")
		return nil
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.WithError(err).Warnf("failed to read cache entry %s", p)
		}
		return nil
	}
	b = bytes.TrimSpace(b)
	if !gjson.ValidBytes(b) {
		log.Warnf("discarding corrupt cache entry %s", p)
		return nil
	}
	log.Debugf("cache hit: %s", p)
	return json.RawMessage(b)
}

// Write stores data for segments, creating directories as needed. It returns
// false if the data is not valid JSON or the write failed.
func (s *Store) Write(data []byte, segments ...string) bool {
	if !Enabled() {
		return false
	}
	if !gjson.ValidBytes(data) {
		log.Warnf("refusing to cache invalid JSON for %s", strings.Join(segments, "/"))
		return false
	}
	p, err := s.EntryPath(segments...)
	if err != nil {
		log.WithError(err).Warn("cache write failed")
		return false
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil { //nolint:mnd
		log.WithError(err).Warnf("failed to create cache directory for %s", p)
		return false
	}
	if err := os.WriteFile(p, data, os.FileMode(0o600)); err != nil { //nolint:mnd
		log.WithError(err).Warnf("failed to write cache entry %s", p)
		return false
	}
	log.Debugf("cache write: %s", p)
	return true
}

// WriteJSON marshals v and stores it under segments.
func (s *Store) WriteJSON(v any, segments ...string) bool {
	b, err := json.Marshal(v)
	if err != nil {
		log.WithError(err).Warnf("failed to encode cache entry %s", strings.Join(segments, "/"))
		return false
	}
	return s.Write(b, segments...)
}

// Remove deletes a single entry. A missing entry is not an error.
func (s *Store) Remove(segments ...string) bool {
	p, err := s.EntryPath(segments...)
	if err != nil {
		return false
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.WithError(err).Warnf("failed to remove cache entry %s", p)
		return false
	}
	return true
}

// ClearAll removes every cached entry.
func (s *Store) ClearAll() {
	if err := os.RemoveAll(s.base); err != nil {
		log.WithError(err).Warnf("failed to clear cache %s", s.base)
		return
	}
	log.Debugf("cache cleared: %s", s.base)
}

// Entries lists every cached entry sorted by key.
func (s *Store) Entries() ([]Entry, error) {
	var entries []Entry
	err := filepath.WalkDir(s.base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == s.base {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(s.base, path)
		if err != nil {
			return err
		}
		entries = append(entries, Entry{
			Key:     strings.TrimSuffix(filepath.ToSlash(rel), ".json"),
			Path:    path,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list cache: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

// Purge removes entries older than the provided number of hours and returns
// how many were removed. If hours <= 0 it is a no-op. Entries never expire on
// their own; this only runs when asked.
func (s *Store) Purge(hours int) (int, error) {
	if hours <= 0 {
		log.Debug("cache purge disabled")
		return 0, nil
	}
	entries, err := s.Entries()
	if err != nil {
		return 0, err
	}
	maxAge := time.Duration(hours) * time.Hour
	removed := 0
	for _, e := range entries {
		if time.Since(e.ModTime) <= maxAge {
			continue
		}
		if err := os.Remove(e.Path); err == nil {
			log.Debugf("removed cache file %s", e.Path)
			removed++
		} else {
			log.WithError(err).Warnf("failed to remove cache file %s", e.Path)
		}
	}
	return removed, nil
}
