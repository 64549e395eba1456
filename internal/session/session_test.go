// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/cacheview"
	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/locale"
	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/registry"
	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/settings"
	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/suitecrm"
	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/translate"
)

type fakeBackend struct {
	moduleCalls int
	roleCalls   int
	token       string
	roles       []suitecrm.Role
}

func (f *fakeBackend) Modules(context.Context) (map[string]map[string]any, error) {
	f.moduleCalls++
	return map[string]map[string]any{"Accounts": {}, "Notes": {}, "Calendar": {}}, nil
}

func (f *fakeBackend) UserRoles(context.Context) ([]suitecrm.Role, error) {
	f.roleCalls++
	return f.roles, nil
}

func (f *fakeBackend) ModuleLanguage(_ context.Context, module, lang string) ([]byte, error) {
	return []byte(`{"data":{"mod_strings":{"LBL_MODULE_NAME":"` + module + `@` + lang + `"}}}`), nil
}

func (f *fakeBackend) SystemLanguage(_ context.Context, lang string) ([]byte, error) {
	return []byte(`{"data":{"app_strings":{"LBL_LANG":"` + lang + `"}}}`), nil
}

func (f *fakeBackend) RequiredFields(context.Context, string) ([]byte, error) {
	return []byte(`{"data":{"attributes":{"name":{}}}}`), nil
}

func (f *fakeBackend) ListViewFields(context.Context, string) ([]byte, error) {
	return []byte(`{"default_fields":{"name":{}}}`), nil
}

func (f *fakeBackend) EditViewFields(context.Context, string, string) ([]byte, error) {
	return []byte(`{"name":"Name"}`), nil
}

func newSession(t *testing.T, b *fakeBackend) (*Session, string) {
	t.Helper()
	root := t.TempDir()
	return New(b, Options{
		StorageRoot: root,
		SetToken:    func(tok string) { b.token = tok },
	}), root
}

func TestSession_LoginLogout(t *testing.T) {
	b := &fakeBackend{roles: []suitecrm.Role{{Actions: []suitecrm.Action{
		{Category: "Accounts", Name: registry.PermAccess, Level: int(registry.LevelEnabled)},
		{Category: "Notes", Name: registry.PermAccess, Level: int(registry.LevelDisabled)},
	}}}}
	s, root := newSession(t, b)
	ctx := context.Background()

	assert.ErrorIs(t, s.Login(ctx, ""), ErrNoToken)
	require.NoError(t, s.Login(ctx, "tok-1"))
	assert.Equal(t, "tok-1", b.token)
	tok, ok := s.Token()
	assert.True(t, ok)
	assert.Equal(t, "tok-1", tok)

	got := s.AccessibleModules(ctx)
	assert.Len(t, got, 1)
	assert.Equal(t, "AccountListScreen", got["Accounts"].ScreenName)
	assert.Equal(t, 1, b.moduleCalls)
	assert.Equal(t, 1, b.roleCalls)

	assert.NotEmpty(t, s.Metadata.ListViewFields(ctx, "Accounts"))
	assert.Equal(t, "en_us", s.Translator.Translate(ctx, "LBL_LANG", translate.SystemScope))
	assert.True(t, s.Store.Exists("Accounts", cacheview.CategoryFields, cacheview.NameListView))

	require.NoError(t, s.Logout())
	assert.Equal(t, "", b.token)
	assert.False(t, s.Modules.Loaded())
	assert.False(t, s.Roles.Loaded())
	assert.False(t, s.Store.Exists("Accounts", cacheview.CategoryFields, cacheview.NameListView))
	_, ok = settings.New(root).Get(settings.KeyToken)
	assert.False(t, ok)

	// The next user starts clean and refetches.
	require.NoError(t, s.Login(ctx, "tok-2"))
	assert.Equal(t, 2, b.moduleCalls)
	assert.Equal(t, 2, b.roleCalls)
}

func TestSession_Resume(t *testing.T) {
	b := &fakeBackend{}
	s, root := newSession(t, b)
	assert.ErrorIs(t, s.Resume(context.Background()), ErrNoToken)

	require.NoError(t, settings.New(root).Set(settings.KeyToken, "saved"))
	s2 := New(b, Options{StorageRoot: root, SetToken: func(tok string) { b.token = tok }})
	require.NoError(t, s2.Resume(context.Background()))
	assert.Equal(t, "saved", b.token)
	assert.True(t, s2.Roles.FullAccess())
}

func TestSession_ApplySettings(t *testing.T) {
	b := &fakeBackend{}
	s, root := newSession(t, b)
	ctx := context.Background()

	assert.Equal(t, "Accounts@en_us", s.Translator.Translate(ctx, "LBL_MODULE_NAME", "Accounts"))

	snap, err := s.ApplySettings("", "vi_vn", "VN*Asia/Ho_Chi_Minh*+07:00")
	require.NoError(t, err)
	assert.Equal(t, "vi_vn", snap.Language)
	assert.Equal(t, "Accounts@vi_vn", s.Translator.Translate(ctx, "LBL_MODULE_NAME", "Accounts"))

	out, err := s.Locale.FormatDateTime("2025-07-20T09:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, "20/07/2025 16:00:00", out)

	_, err = s.ApplySettings("", "ja_jp", "nope")
	assert.ErrorIs(t, err, locale.ErrInvalidTimezone)
	assert.Equal(t, "vi_vn", s.Translator.Language())

	// A new session picks the language up from settings.
	s2 := New(b, Options{StorageRoot: root})
	assert.Equal(t, "vi_vn", s2.Translator.Language())
	assert.True(t, s2.Locale.Initialized())
}

func TestSession_SettingsSharedAcrossGoroutines(t *testing.T) {
	s, _ := newSession(t, &fakeBackend{})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := s.Locale.LoadFormatDate("2025-03-04T05:06:07Z")
			assert.NoError(t, err)
		}()
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, s.Settings.Set(settings.KeyToken, "tok-"+strconv.Itoa(i)))
		}(i)
	}
	wg.Wait()

	_, ok := s.Token()
	assert.True(t, ok)
}
