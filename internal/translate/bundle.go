// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package translate

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// ErrMalformedBundle is returned when a bundle document has no usable tables.
var ErrMalformedBundle = errors.New("malformed language bundle")

// Bundle is the set of translated strings for one scope in one language.
// Strings is mod_strings for a module or app_strings for the system scope;
// ListStrings is app_list_strings and is only populated for the system scope.
type Bundle struct {
	Strings     map[string]any
	ListStrings map[string]any
}

// EmptyBundle returns a bundle with empty tables. Every lookup misses.
func EmptyBundle() Bundle {
	return Bundle{Strings: map[string]any{}, ListStrings: map[string]any{}}
}

// Empty reports whether both tables are empty.
func (b Bundle) Empty() bool {
	return len(b.Strings) == 0 && len(b.ListStrings) == 0
}

// ParseSystemBundle decodes {data: {app_strings, app_list_strings}}.
func ParseSystemBundle(raw []byte) (Bundle, error) {
	if !gjson.ValidBytes(raw) {
		return EmptyBundle(), fmt.Errorf("system bundle: %w: invalid JSON", ErrMalformedBundle)
	}
	data := gjson.GetBytes(raw, "data")
	strs, okS := objectOf(data.Get("app_strings"))
	lists, okL := objectOf(data.Get("app_list_strings"))
	if !okS && !okL {
		return EmptyBundle(), fmt.Errorf("system bundle: %w: no app_strings or app_list_strings", ErrMalformedBundle)
	}
	return Bundle{Strings: strs, ListStrings: lists}, nil
}

// ParseModuleBundle decodes {data: {mod_strings}}.
func ParseModuleBundle(raw []byte) (Bundle, error) {
	if !gjson.ValidBytes(raw) {
		return EmptyBundle(), fmt.Errorf("module bundle: %w: invalid JSON", ErrMalformedBundle)
	}
	strs, ok := objectOf(gjson.GetBytes(raw, "data.mod_strings"))
	if !ok {
		return EmptyBundle(), fmt.Errorf("module bundle: %w: no mod_strings", ErrMalformedBundle)
	}
	return Bundle{Strings: strs, ListStrings: map[string]any{}}, nil
}

func objectOf(r gjson.Result) (map[string]any, bool) {
	m, ok := r.Value().(map[string]any)
	if !ok {
		return map[string]any{}, false
	}
	return m, true
}
