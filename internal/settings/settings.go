// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/apex/log"
	"gopkg.in/yaml.v3"
)

// Well-known preference keys.
const (
	KeyToken            = "token"
	KeySelectedLanguage = "selectedLanguage"
	KeyDateFormat       = "dateFormat"
	KeyTimezone         = "timezone"
	KeySelectedCurrency = "selectedCurrency"
	KeyUsername         = "username"
)

// FileName is the settings file kept under the storage root.
const FileName = "settings.yaml"

// Store is a string-keyed preference store persisted as a single yaml file.
// Every mutation rewrites the file. A Store is safe for concurrent use.
type Store struct {
	path string

	mu     sync.Mutex
	values map[string]string
}

// New returns a Store persisted at root/settings.yaml. The file is read
// lazily on first access.
func New(root string) *Store {
	return &Store{path: filepath.Join(root, FileName)}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// load must be called with s.mu held.
func (s *Store) load() {
	if s.values != nil {
		return
	}
	s.values = map[string]string{}

	b, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.WithError(err).Warnf("failed to read settings %s", s.path)
		}
		return
	}
	if err := yaml.Unmarshal(b, &s.values); err != nil {
		log.WithError(err).Warnf("ignoring malformed settings %s", s.path)
		s.values = map[string]string{}
	}
	if s.values == nil {
		s.values = map[string]string{}
	}
}

// Get returns the value for key and whether it was present and non-empty.
func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.load()
	v, ok := s.values[key]
	return v, ok && v != ""
}

// GetString returns the value for key or def when it is unset.
func (s *Store) GetString(key, def string) string {
	if v, ok := s.Get(key); ok {
		return v
	}
	return def
}

// Set stores value under key and persists the file.
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.load()
	s.values[key] = value
	return s.save()
}

// SetMany stores several values with a single write.
func (s *Store) SetMany(kv map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.load()
	for k, v := range kv {
		s.values[k] = v
	}
	return s.save()
}

// Remove deletes key and persists the file.
func (s *Store) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.load()
	if _, ok := s.values[key]; !ok {
		return nil
	}
	delete(s.values, key)
	return s.save()
}

// Keys returns the stored keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.load()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *Store) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil { //nolint:mnd
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	b, err := yaml.Marshal(s.values)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := os.WriteFile(s.path, b, 0o600); err != nil { //nolint:mnd
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}
