// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/apex/log"
	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"

	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/cacheview"
)

// Kind selects a field metadata document.
type Kind string

const (
	KindRequired Kind = "required"
	KindList     Kind = "list"
	KindEdit     Kind = "edit"
)

// ErrUnknownKind is returned for a Kind outside the constants above.
var ErrUnknownKind = errors.New("unknown metadata kind")

// ParseKind validates s as a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindRequired, KindList, KindEdit:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Fetcher fetches raw field metadata documents from the backend.
type Fetcher interface {
	RequiredFields(ctx context.Context, module string) ([]byte, error)
	ListViewFields(ctx context.Context, module string) ([]byte, error)
	EditViewFields(ctx context.Context, module, language string) ([]byte, error)
}

// Service serves field metadata from the cache, fetching and caching it on
// a miss.
type Service struct {
	fetcher Fetcher
	reader  *cacheview.ReadCacheView
	writer  *cacheview.WriteCacheView
}

// NewService returns a Service.
func NewService(fetcher Fetcher, reader *cacheview.ReadCacheView, writer *cacheview.WriteCacheView) *Service {
	return &Service{fetcher: fetcher, reader: reader, writer: writer}
}

// RequiredFields returns the module's required field definitions.
func (s *Service) RequiredFields(ctx context.Context, module string) map[string]any {
	return s.Fields(ctx, KindRequired, module, "")
}

// ListViewFields returns the module's list view default fields.
func (s *Service) ListViewFields(ctx context.Context, module string) map[string]any {
	return s.Fields(ctx, KindList, module, "")
}

// EditViewFields returns the module's edit view field labels in language.
func (s *Service) EditViewFields(ctx context.Context, module, language string) map[string]any {
	return s.Fields(ctx, KindEdit, module, language)
}

// Fields checks the cache for the document, fetches and writes it on a
// miss, then serves it from the cache. An unreadable entry counts as a miss.
// Fetch failures yield an empty map.
func (s *Service) Fields(ctx context.Context, kind Kind, module, language string) map[string]any {
	language = languageFor(kind, language)
	if s.raw(kind, module, language) != nil {
		return s.read(kind, module, language)
	}
	if s.exists(kind, module, language) {
		log.Debugf("refetching unreadable %s fields for %s", kind, module)
	}

	raw, err := s.fetch(ctx, kind, module, language)
	if err != nil {
		log.WithError(err).Warnf("failed to fetch %s fields for %s", kind, module)
		return map[string]any{}
	}
	if !s.save(kind, module, language, raw) {
		// Cache unavailable: answer from the fetched copy.
		return decode(kind, raw)
	}
	return s.read(kind, module, language)
}

// DefaultLanguage is used for edit view labels when no language is given.
const DefaultLanguage = "en_us"

func languageFor(kind Kind, language string) string {
	if kind == KindEdit && language == "" {
		return DefaultLanguage
	}
	return language
}

func decode(kind Kind, raw []byte) map[string]any {
	switch kind {
	case KindRequired:
		return cacheview.ObjectAt(raw, cacheview.PathRequired)
	case KindList:
		return cacheview.ObjectAt(raw, cacheview.PathListView)
	}
	return cacheview.ObjectAt(raw, "")
}

// RefreshResult describes what a Refresh changed.
type RefreshResult struct {
	Previous bool
	Changed  bool
	Diff     string
}

// Refresh refetches the document regardless of the cache, stores it, and
// reports how it differs from the previously cached copy.
func (s *Service) Refresh(ctx context.Context, kind Kind, module, language string) (RefreshResult, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return RefreshResult{}, err
	}
	language = languageFor(kind, language)

	fresh, err := s.fetch(ctx, kind, module, language)
	if err != nil {
		return RefreshResult{}, fmt.Errorf("failed to refresh %s fields for %s: %w", kind, module, err)
	}

	var res RefreshResult
	if old := s.raw(kind, module, language); old != nil {
		res.Previous = true
		res.Changed, res.Diff, err = Diff(old, fresh)
		if err != nil {
			log.WithError(err).Warn("failed to diff metadata")
			res.Changed = true
		}
	} else {
		res.Changed = true
	}

	if !s.save(kind, module, language, fresh) {
		return res, fmt.Errorf("failed to cache %s fields for %s", kind, module)
	}
	return res, nil
}

// Diff compares two JSON object documents and renders the changes as text.
func Diff(old, fresh []byte) (bool, string, error) {
	d, err := gojsondiff.New().Compare(old, fresh)
	if err != nil {
		return false, "", fmt.Errorf("failed to compare: %w", err)
	}
	if !d.Modified() {
		return false, "", nil
	}

	var left map[string]interface{}
	if err := json.Unmarshal(old, &left); err != nil {
		return true, "", fmt.Errorf("failed to decode previous document: %w", err)
	}
	f := formatter.NewAsciiFormatter(left, formatter.AsciiFormatterConfig{
		ShowArrayIndex: true,
		Coloring:       false,
	})
	out, err := f.Format(d)
	if err != nil {
		return true, "", fmt.Errorf("failed to format diff: %w", err)
	}
	return true, out, nil
}

func (s *Service) exists(kind Kind, module, language string) bool {
	switch kind {
	case KindRequired:
		return s.writer.RequiredFieldsExist(module)
	case KindList:
		return s.writer.ListViewFieldsExist(module)
	case KindEdit:
		return s.writer.EditViewFieldsExist(module, language)
	}
	return false
}

func (s *Service) fetch(ctx context.Context, kind Kind, module, language string) ([]byte, error) {
	switch kind {
	case KindRequired:
		return s.fetcher.RequiredFields(ctx, module)
	case KindList:
		return s.fetcher.ListViewFields(ctx, module)
	case KindEdit:
		return s.fetcher.EditViewFields(ctx, module, language)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

func (s *Service) save(kind Kind, module, language string, raw []byte) bool {
	switch kind {
	case KindRequired:
		return s.writer.SaveRequiredFields(module, raw)
	case KindList:
		return s.writer.SaveListViewFields(module, raw)
	case KindEdit:
		return s.writer.SaveEditViewFields(module, language, raw)
	}
	return false
}

func (s *Service) read(kind Kind, module, language string) map[string]any {
	switch kind {
	case KindRequired:
		return s.reader.RequiredFields(module)
	case KindList:
		return s.reader.ListViewFields(module)
	case KindEdit:
		return s.reader.EditViewFields(module, language)
	}
	return map[string]any{}
}

func (s *Service) raw(kind Kind, module, language string) json.RawMessage {
	switch kind {
	case KindRequired:
		return s.reader.Raw(module, cacheview.CategoryFields, cacheview.NameRequired)
	case KindList:
		return s.reader.Raw(module, cacheview.CategoryFields, cacheview.NameListView)
	case KindEdit:
		return s.reader.Raw(module, cacheview.CategoryEditView, language)
	}
	return nil
}
