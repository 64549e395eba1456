// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package translate

import (
	"context"
	"sync"

	"github.com/apex/log"

	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/cacheview"
)

// SystemScope names the global string scope. Any other scope is a module.
const SystemScope = "system"

// DefaultLanguage is used until SetLanguage is called.
const DefaultLanguage = "en_us"

// BundleFetcher fetches raw bundle documents from the backend.
type BundleFetcher interface {
	ModuleLanguage(ctx context.Context, module, language string) ([]byte, error)
	SystemLanguage(ctx context.Context, language string) ([]byte, error)
}

type bundleKey struct {
	scope    string
	language string
}

// Translator resolves labels for the system scope and for modules. Bundles
// come from the cache when present, otherwise from the backend and are then
// written to the cache. Loaded bundles are kept in memory per
// (scope, language) until Reset.
type Translator struct {
	fetcher BundleFetcher
	reader  *cacheview.ReadCacheView
	writer  *cacheview.WriteCacheView

	mu       sync.Mutex
	language string
	bundles  map[bundleKey]Bundle
}

// NewTranslator returns a Translator for DefaultLanguage.
func NewTranslator(fetcher BundleFetcher, reader *cacheview.ReadCacheView, writer *cacheview.WriteCacheView) *Translator {
	return &Translator{
		fetcher:  fetcher,
		reader:   reader,
		writer:   writer,
		language: DefaultLanguage,
		bundles:  map[bundleKey]Bundle{},
	}
}

// Language returns the active language.
func (t *Translator) Language() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.language
}

// SetLanguage switches the active language and drops in-memory bundles.
// Bundles persisted for other languages stay on disk.
func (t *Translator) SetLanguage(language string) {
	if language == "" {
		language = DefaultLanguage
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.language = language
	t.bundles = map[bundleKey]Bundle{}
}

// Reset drops in-memory bundles and restores DefaultLanguage.
func (t *Translator) Reset() {
	t.SetLanguage(DefaultLanguage)
}

// Translate resolves key in scope (SystemScope or a module name).
func (t *Translator) Translate(ctx context.Context, key, scope string, defaultValue ...string) string {
	return NewResolver(t.Bundle(ctx, scope)).Translate(key, defaultValue...)
}

// TranslateKeys resolves several keys in scope with a single bundle load.
func (t *Translator) TranslateKeys(ctx context.Context, keys []string, scope string) map[string]string {
	return NewResolver(t.Bundle(ctx, scope)).TranslateKeys(keys)
}

// Bundle returns the bundle for scope in the active language. It never
// fails: anything that goes wrong yields an empty bundle.
func (t *Translator) Bundle(ctx context.Context, scope string) Bundle {
	if scope == "" {
		scope = SystemScope
	}
	lang := t.Language()
	k := bundleKey{scope: scope, language: lang}

	t.mu.Lock()
	b, ok := t.bundles[k]
	t.mu.Unlock()
	if ok {
		return b
	}

	b, keep := t.load(ctx, scope, lang)
	if keep {
		t.mu.Lock()
		t.bundles[k] = b
		t.mu.Unlock()
	}
	return b
}

// load reads the bundle from cache or network. keep is false when the
// bundle came from a failed fetch, so a later call tries again.
func (t *Translator) load(ctx context.Context, scope, lang string) (Bundle, bool) {
	system := scope == SystemScope

	var exists bool
	if system {
		exists = t.writer.SystemLanguageExists(lang)
	} else {
		exists = t.writer.ModuleLanguageExists(scope, lang)
	}

	if exists {
		var raw []byte
		if system {
			raw = t.reader.SystemLanguage(lang)
		} else {
			raw = t.reader.ModuleLanguage(scope, lang)
		}
		if raw != nil {
			b, err := parse(system, raw)
			if err != nil {
				log.WithError(err).Warnf("using empty %s bundle for %s", scope, lang)
				return EmptyBundle(), true
			}
			return b, true
		}
		// Unreadable entry: treat as a miss.
	}

	var raw []byte
	var err error
	if system {
		raw, err = t.fetcher.SystemLanguage(ctx, lang)
	} else {
		raw, err = t.fetcher.ModuleLanguage(ctx, scope, lang)
	}
	if err != nil {
		log.WithError(err).Warnf("failed to fetch %s bundle for %s", scope, lang)
		return EmptyBundle(), false
	}

	b, err := parse(system, raw)
	if err != nil {
		log.WithError(err).Warnf("using empty %s bundle for %s", scope, lang)
		return EmptyBundle(), false
	}

	if system {
		t.writer.SaveSystemLanguage(lang, raw)
	} else {
		t.writer.SaveModuleLanguage(scope, lang, raw)
	}
	return b, true
}

func parse(system bool, raw []byte) (Bundle, error) {
	if system {
		return ParseSystemBundle(raw)
	}
	return ParseModuleBundle(raw)
}
