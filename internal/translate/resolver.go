// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package translate

import (
	"sort"
	"strconv"
	"strings"
)

const (
	labelPrefix     = "LBL_"
	listLabelPrefix = "LBL_LIST_"
)

// Strategy looks key up in a bundle. It reports false when it found nothing
// usable.
type Strategy func(b Bundle, key string) (string, bool)

// DefaultStrategies is the resolution order: primary table, list table,
// nested list search, then the LBL_ prefix variants.
var DefaultStrategies = []Strategy{
	Primary,
	List,
	NestedList,
	LabelVariants,
}

// Primary looks key up in the scope's primary string table.
func Primary(b Bundle, key string) (string, bool) {
	return scalar(b.Strings[key])
}

// List looks key up directly in the list-string table. Only scalar entries
// count; a whole dropdown is not a label.
func List(b Bundle, key string) (string, bool) {
	return scalar(b.ListStrings[key])
}

// NestedList searches the nested objects of the list-string table for a
// leaf whose key matches. Keys are visited in sorted order so the result is
// stable.
func NestedList(b Bundle, key string) (string, bool) {
	for _, k := range sortedKeys(b.ListStrings) {
		if nested, ok := b.ListStrings[k].(map[string]any); ok {
			if v, ok := findLeaf(nested, key); ok {
				return v, true
			}
		}
	}
	return "", false
}

// LabelVariants retries Primary and List for an LBL_ key, first with the
// prefix stripped and then with LBL_ replaced by LBL_LIST_.
func LabelVariants(b Bundle, key string) (string, bool) {
	if !strings.HasPrefix(key, labelPrefix) {
		return "", false
	}
	stripped := strings.TrimPrefix(key, labelPrefix)
	for _, candidate := range []string{stripped, listLabelPrefix + stripped} {
		if v, ok := Primary(b, candidate); ok {
			return v, true
		}
		if v, ok := List(b, candidate); ok {
			return v, true
		}
	}
	return "", false
}

// Resolver evaluates strategies in order against one bundle.
type Resolver struct {
	Bundle     Bundle
	Strategies []Strategy
}

// NewResolver returns a Resolver over b using DefaultStrategies.
func NewResolver(b Bundle) *Resolver {
	return &Resolver{Bundle: b, Strategies: DefaultStrategies}
}

// Translate returns the first strategy hit for key, else the default when
// one is given and non-empty, else key itself.
func (r *Resolver) Translate(key string, defaultValue ...string) string {
	for _, s := range r.Strategies {
		if v, ok := s(r.Bundle, key); ok {
			return v
		}
	}
	if len(defaultValue) > 0 && defaultValue[0] != "" {
		return defaultValue[0]
	}
	return key
}

// TranslateKeys translates each key.
func (r *Resolver) TranslateKeys(keys []string) map[string]string {
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		out[k] = r.Translate(k)
	}
	return out
}

func findLeaf(m map[string]any, key string) (string, bool) {
	if v, ok := m[key]; ok {
		if _, isObj := v.(map[string]any); !isObj {
			if s, ok := scalar(v); ok {
				return s, true
			}
		}
	}
	for _, k := range sortedKeys(m) {
		if nested, ok := m[k].(map[string]any); ok {
			if v, ok := findLeaf(nested, key); ok {
				return v, true
			}
		}
	}
	return "", false
}

// scalar converts a decoded JSON leaf into a label. Empty strings, zero,
// false, null and containers are not labels.
func scalar(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, t != ""
	case float64:
		if t == 0 {
			return "", false
		}
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return "true", t
	default:
		return "", false
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
