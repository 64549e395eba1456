// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/apex/log"

	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/cacheutil"
	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/cacheview"
	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/locale"
	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/metadata"
	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/registry"
	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/settings"
	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/translate"
)

// ErrNoToken is returned by Login when no token is supplied.
var ErrNoToken = errors.New("no token")

// Backend is everything the session needs from the SuiteCRM API.
type Backend interface {
	registry.ModuleFetcher
	registry.RoleFetcher
	translate.BundleFetcher
	metadata.Fetcher
}

// Options configure a Session.
type Options struct {
	StorageRoot string
	Roles       registry.Options
	// SetToken, when set, is called on Login and Logout so the backend
	// client picks up the new token.
	SetToken func(string)
}

// Session owns one instance of each cache service for a signed-in user.
type Session struct {
	Settings   *settings.Store
	Store      *cacheutil.Store
	Modules    *registry.Modules
	Roles      *registry.Roles
	Translator *translate.Translator
	Locale     *locale.Cache
	Metadata   *metadata.Service

	setToken func(string)
}

// New wires the services over backend and the storage root, and initializes
// the locale cache and translator language from persisted settings.
func New(backend Backend, opts Options) *Session {
	store := cacheutil.NewStore(opts.StorageRoot)
	reader := cacheview.NewReadCacheView(store)
	writer := cacheview.NewWriteCacheView(store)
	prefs := settings.New(opts.StorageRoot)

	s := &Session{
		Settings:   prefs,
		Store:      store,
		Modules:    registry.NewModules(backend),
		Roles:      registry.NewRoles(backend, opts.Roles),
		Translator: translate.NewTranslator(backend, reader, writer),
		Locale:     locale.NewCache(prefs),
		Metadata:   metadata.NewService(backend, reader, writer),
		setToken:   opts.SetToken,
	}

	snap := s.Locale.Initialize()
	s.Translator.SetLanguage(snap.Language)
	return s
}

// Token returns the persisted token, if any.
func (s *Session) Token() (string, bool) {
	return s.Settings.Get(settings.KeyToken)
}

// Login persists token and loads the module list and the user's roles.
func (s *Session) Login(ctx context.Context, token string) error {
	if token == "" {
		return ErrNoToken
	}
	if err := s.Settings.Set(settings.KeyToken, token); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	if s.setToken != nil {
		s.setToken(token)
	}

	s.Modules.Reset()
	s.Roles.Reset()
	s.Modules.Load(ctx)
	s.Roles.Load(ctx)
	log.Debugf("logged in: %d modules, full access=%t", len(s.Modules.Filtered()), s.Roles.FullAccess())
	return nil
}

// Resume loads registries for an already persisted token.
func (s *Session) Resume(ctx context.Context) error {
	token, ok := s.Token()
	if !ok {
		return ErrNoToken
	}
	if s.setToken != nil {
		s.setToken(token)
	}
	s.Modules.Load(ctx)
	s.Roles.Load(ctx)
	return nil
}

// Logout clears every piece of per-user state: registries, in-memory
// bundles, the on-disk cache and the stored token.
func (s *Session) Logout() error {
	s.Modules.Reset()
	s.Roles.Reset()
	s.Translator.SetLanguage(s.Locale.Snapshot().Language)
	s.Store.ClearAll()
	if s.setToken != nil {
		s.setToken("")
	}
	if err := s.Settings.Remove(settings.KeyToken); err != nil {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	return nil
}

// ApplySettings updates the locale preferences and drops translation
// bundles that were loaded for the previous language.
func (s *Session) ApplySettings(format, language, timezone string) (locale.Snapshot, error) {
	snap, err := s.Locale.Update(format, language, timezone)
	if errors.Is(err, locale.ErrInvalidTimezone) {
		return snap, err
	}
	s.Translator.SetLanguage(snap.Language)
	return snap, err
}

// AccessibleModules returns the loaded modules the user may access.
func (s *Session) AccessibleModules(ctx context.Context) map[string]registry.Module {
	s.Modules.Load(ctx)
	s.Roles.Load(ctx)
	return s.Roles.AccessibleModules(s.Modules.Filtered())
}
