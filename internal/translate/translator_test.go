// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package translate

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/cacheutil"
	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/cacheview"
)

type fakeFetcher struct {
	systemCalls int
	moduleCalls int
	system      map[string]string
	module      map[string]string
	err         error
}

func (f *fakeFetcher) SystemLanguage(_ context.Context, lang string) ([]byte, error) {
	f.systemCalls++
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.system[lang]), nil
}

func (f *fakeFetcher) ModuleLanguage(_ context.Context, module, lang string) ([]byte, error) {
	f.moduleCalls++
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.module[module+"/"+lang]), nil
}

func newTranslator(t *testing.T, f *fakeFetcher) (*Translator, *cacheutil.Store) {
	t.Helper()
	store := cacheutil.NewStore(t.TempDir())
	return NewTranslator(f, cacheview.NewReadCacheView(store), cacheview.NewWriteCacheView(store)), store
}

func TestTranslator_FetchThenCache(t *testing.T) {
	f := &fakeFetcher{
		system: map[string]string{"en_us": `{"data":{"app_strings":{"LBL_SAVE":"Save"},"app_list_strings":{}}}`},
		module: map[string]string{"Accounts/en_us": `{"data":{"mod_strings":{"LBL_NAME":"Name"}}}`},
	}
	tr, store := newTranslator(t, f)
	ctx := context.Background()

	assert.Equal(t, "Save", tr.Translate(ctx, "LBL_SAVE", SystemScope))
	assert.Equal(t, "Save", tr.Translate(ctx, "LBL_SAVE", ""))
	assert.Equal(t, 1, f.systemCalls)
	assert.True(t, store.Exists(cacheview.SystemScope, "en_us"))

	assert.Equal(t, "Name", tr.Translate(ctx, "LBL_NAME", "Accounts"))
	assert.Equal(t, "LBL_SAVE", tr.Translate(ctx, "LBL_SAVE", "Accounts"), "module scope does not see app_strings")
	assert.Equal(t, 1, f.moduleCalls)
	assert.True(t, store.Exists("Accounts", cacheview.CategoryLanguage, "en_us"))

	// A new translator over the same store is served from disk.
	tr2 := NewTranslator(f, cacheview.NewReadCacheView(store), cacheview.NewWriteCacheView(store))
	assert.Equal(t, map[string]string{"LBL_NAME": "Name", "LBL_X": "LBL_X"},
		tr2.TranslateKeys(ctx, []string{"LBL_NAME", "LBL_X"}, "Accounts"))
	assert.Equal(t, 1, f.moduleCalls)
}

func TestTranslator_LanguageSwitch(t *testing.T) {
	f := &fakeFetcher{
		system: map[string]string{
			"en_us": `{"data":{"app_strings":{"LBL_SAVE":"Save"}}}`,
			"vi_vn": `{"data":{"app_strings":{"LBL_SAVE":"Lưu"}}}`,
		},
	}
	tr, store := newTranslator(t, f)
	ctx := context.Background()

	assert.Equal(t, "Save", tr.Translate(ctx, "LBL_SAVE", SystemScope))

	tr.SetLanguage("vi_vn")
	assert.Equal(t, "vi_vn", tr.Language())
	assert.Equal(t, "Lưu", tr.Translate(ctx, "LBL_SAVE", SystemScope))
	assert.True(t, store.Exists(cacheview.SystemScope, "en_us"), "other languages stay on disk")

	tr.Reset()
	assert.Equal(t, DefaultLanguage, tr.Language())
	assert.Equal(t, "Save", tr.Translate(ctx, "LBL_SAVE", SystemScope))
	assert.Equal(t, 2, f.systemCalls)
}

func TestTranslator_FetchFailure(t *testing.T) {
	f := &fakeFetcher{err: errors.New("offline")}
	tr, store := newTranslator(t, f)
	ctx := context.Background()

	assert.Equal(t, "LBL_SAVE", tr.Translate(ctx, "LBL_SAVE", SystemScope))
	assert.Equal(t, "Save", tr.Translate(ctx, "LBL_SAVE", SystemScope, "Save"))
	assert.Equal(t, 2, f.systemCalls, "failures are not memoized")
	assert.False(t, store.Exists(cacheview.SystemScope, "en_us"))
}

func TestTranslator_MalformedCacheFile(t *testing.T) {
	f := &fakeFetcher{}
	tr, store := newTranslator(t, f)
	ctx := context.Background()

	// Valid JSON, wrong shape.
	require.True(t, store.Write([]byte(`{"data":[]}`), "Notes", cacheview.CategoryLanguage, "en_us"))
	assert.Equal(t, "LBL_SUBJECT", tr.Translate(ctx, "LBL_SUBJECT", "Notes"))
	assert.Equal(t, 0, f.moduleCalls)

	// Not JSON at all reads as a miss and goes to the network.
	p, err := store.EntryPath(cacheview.SystemScope, "en_us")
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(store.Dir()+"/"+cacheview.SystemScope, 0o755))
	require.NoError(t, os.WriteFile(p, []byte("{oops"), 0o600))
	f.system = map[string]string{"en_us": `{"data":{"app_strings":{"LBL_SAVE":"Save"}}}`}
	assert.Equal(t, "Save", tr.Translate(ctx, "LBL_SAVE", SystemScope))
	assert.Equal(t, 1, f.systemCalls)
}

func TestTranslator_MalformedFetch(t *testing.T) {
	f := &fakeFetcher{module: map[string]string{"Tasks/en_us": `{"data":{}}`}}
	tr, store := newTranslator(t, f)

	assert.Equal(t, "LBL_X", tr.Translate(context.Background(), "LBL_X", "Tasks"))
	assert.False(t, store.Exists("Tasks", cacheview.CategoryLanguage, "en_us"))
}
