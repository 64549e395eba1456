// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cacheview

import (
	"encoding/json"

	"github.com/apex/log"
	"github.com/tidwall/gjson"

	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/cacheutil"
)

// Categories and names used to lay out the cache tree.
const (
	CategoryFields   = "fields"
	CategoryEditView = "editview"
	CategoryLanguage = "language"

	NameRequired = "required"
	NameListView = "listview"

	// Envelope paths of the field documents.
	PathRequired = "data.attributes"
	PathListView = "default_fields"

	// SystemScope is the pseudo-module holding system translation bundles at
	// Include/{lang}.json.
	SystemScope = "Include"
)

// Keys for each kind of cached document.
func requiredKey(module string) []string { return []string{module, CategoryFields, NameRequired} }
func listViewKey(module string) []string { return []string{module, CategoryFields, NameListView} }
func editViewKey(module, lang string) []string {
	return []string{module, CategoryEditView, lang}
}
func moduleLanguageKey(module, lang string) []string {
	return []string{module, CategoryLanguage, lang}
}
func systemLanguageKey(lang string) []string { return []string{SystemScope, lang} }

// WriteCacheView answers existence checks and persists fetched documents.
type WriteCacheView struct {
	store *cacheutil.Store
}

// NewWriteCacheView returns a WriteCacheView over store.
func NewWriteCacheView(store *cacheutil.Store) *WriteCacheView {
	return &WriteCacheView{store: store}
}

func (w *WriteCacheView) Exists(module, category, name string) bool {
	return w.store.Exists(module, category, name)
}

func (w *WriteCacheView) RequiredFieldsExist(module string) bool {
	return w.store.Exists(requiredKey(module)...)
}

func (w *WriteCacheView) ListViewFieldsExist(module string) bool {
	return w.store.Exists(listViewKey(module)...)
}

func (w *WriteCacheView) EditViewFieldsExist(module, lang string) bool {
	return w.store.Exists(editViewKey(module, lang)...)
}

func (w *WriteCacheView) ModuleLanguageExists(module, lang string) bool {
	return w.store.Exists(moduleLanguageKey(module, lang)...)
}

func (w *WriteCacheView) SystemLanguageExists(lang string) bool {
	return w.store.Exists(systemLanguageKey(lang)...)
}

func (w *WriteCacheView) SaveRequiredFields(module string, raw []byte) bool {
	return w.store.Write(raw, requiredKey(module)...)
}

func (w *WriteCacheView) SaveListViewFields(module string, raw []byte) bool {
	return w.store.Write(raw, listViewKey(module)...)
}

func (w *WriteCacheView) SaveEditViewFields(module, lang string, raw []byte) bool {
	return w.store.Write(raw, editViewKey(module, lang)...)
}

func (w *WriteCacheView) SaveModuleLanguage(module, lang string, raw []byte) bool {
	return w.store.Write(raw, moduleLanguageKey(module, lang)...)
}

func (w *WriteCacheView) SaveSystemLanguage(lang string, raw []byte) bool {
	return w.store.Write(raw, systemLanguageKey(lang)...)
}

// ReadCacheView serves cached documents. Field readers unwrap the backend
// envelope and return an empty map on a miss.
type ReadCacheView struct {
	store *cacheutil.Store
}

// NewReadCacheView returns a ReadCacheView over store.
func NewReadCacheView(store *cacheutil.Store) *ReadCacheView {
	return &ReadCacheView{store: store}
}

// RequiredFields returns data.attributes of the required-fields document.
func (r *ReadCacheView) RequiredFields(module string) map[string]any {
	return ObjectAt(r.store.Read(requiredKey(module)...), PathRequired)
}

// ListViewFields returns default_fields of the list-view document.
func (r *ReadCacheView) ListViewFields(module string) map[string]any {
	return ObjectAt(r.store.Read(listViewKey(module)...), PathListView)
}

// EditViewFields returns the flat field->label map of the edit-view document.
func (r *ReadCacheView) EditViewFields(module, lang string) map[string]any {
	return ObjectAt(r.store.Read(editViewKey(module, lang)...), "")
}

// Raw returns the cached document for a (module, category, name) key.
func (r *ReadCacheView) Raw(module, category, name string) json.RawMessage {
	return r.store.Read(module, category, name)
}

// ModuleLanguage returns the raw module bundle document or nil.
func (r *ReadCacheView) ModuleLanguage(module, lang string) json.RawMessage {
	return r.store.Read(moduleLanguageKey(module, lang)...)
}

// SystemLanguage returns the raw system bundle document or nil.
func (r *ReadCacheView) SystemLanguage(lang string) json.RawMessage {
	return r.store.Read(systemLanguageKey(lang)...)
}

// ObjectAt decodes the object at path (or the root when path is empty). It
// returns an empty map when raw is nil or holds no object there.
func ObjectAt(raw json.RawMessage, path string) map[string]any {
	if raw == nil {
		return map[string]any{}
	}
	res := gjson.ParseBytes(raw)
	if path != "" {
		res = res.Get(path)
	}
	m, ok := res.Value().(map[string]any)
	if !ok {
		if res.Exists() {
			log.Warnf("cached document has no object at %q", path)
		}
		return map[string]any{}
	}
	return m
}
