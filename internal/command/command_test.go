// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package command

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/config"
	"github.com/ThanhNhiet/MobileSuiteCRM-sub001/internal/locale"
)

// fakeCRM serves canned V8 responses and counts hits per path.
type fakeCRM struct {
	mu     sync.Mutex
	bodies map[string]string
	hits   map[string]int
	token  string
}

func newFakeCRM(t *testing.T) (*fakeCRM, *httptest.Server) {
	t.Helper()
	f := &fakeCRM{
		token: "tok",
		hits:  map[string]int{},
		bodies: map[string]string{
			"/Api/V8/meta/modules": `{"data":{"attributes":{"Accounts":{},"Notes":{},"Calendar":{}}}}`,
			"/Api/V8/custom/user/roles": `{"roles":[{"id":"r1","name":"Sales","actions":[
				{"category":"Accounts","name":"access","access_override":89},
				{"category":"Notes","name":"access","access_override":-98}
			]}]}`,
			"/Api/V8/meta/fields/Accounts":                 `{"data":{"attributes":{"name":"Name"}}}`,
			"/Api/V8/custom/system/language/lang=en_us":    `{"data":{"app_strings":{"LBL_SAVE":"Save"},"app_list_strings":{"moduleList":{"Accounts":"Accounts"}}}}`,
			"/Api/V8/custom/Accounts/language/lang=en_us":  `{"data":{"mod_strings":{"LBL_NAME":"Name"}}}`,
			"/Api/V8/custom/Accounts/default-fields":       `{"default_fields":{"name":{"label":"LBL_NAME"}}}`,
			"/Api/V8/custom/Accounts/edit-fields":          `{"name":"Name"}`,
		},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.hits[r.URL.Path]++
		if r.Header.Get("Authorization") != "Bearer "+f.token {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		body, ok := f.bodies[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeCRM) set(path, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bodies[path] = body
}

func (f *fakeCRM) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[path]
}

// run executes crmcache with args and returns what it wrote to stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	old := stdout
	stdout = &buf
	defer func() { stdout = old }()

	full := append([]string{"crmcache"}, args...)
	ctx := context.Background()
	app, err := InitApp(ctx, full, config.Env{Timeout: 5 * time.Second})
	require.NoError(t, err)
	err = app.Run(ctx, full)
	return buf.String(), err
}

func decode[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

func isolate(t *testing.T) {
	t.Helper()
	for _, k := range []string{"SUITECRM_URL", "SUITECRM_TOKEN", "SUITECRM_STORAGE", "SUITECRM_DENY_ON_ROLE_FAILURE", "SUITECRM_CACHE", "NO_COLOR"} {
		// Setenv registers the restore; the variable is then removed outright.
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoginModulesAccessLogout(t *testing.T) {
	isolate(t)
	_, srv := newFakeCRM(t)
	root := t.TempDir()

	out, err := run(t, "login", "--url", srv.URL, "--storage", root, "--token", "tok", "-o", "json")
	require.NoError(t, err)
	login := decode[loginResult](t, out)
	assert.Equal(t, 3, login.Modules)
	assert.Equal(t, 1, login.Roles)
	assert.False(t, login.FullAccess)

	out, err = run(t, "modules", "--url", srv.URL, "--storage", root, "-o", "json")
	require.NoError(t, err)
	mods := decode[[]moduleRow](t, out)
	assert.Equal(t, []moduleRow{{Name: "Accounts", Screen: "AccountListScreen", Access: true}}, mods)

	out, err = run(t, "modules", "--all", "--url", srv.URL, "--storage", root, "-o", "json")
	require.NoError(t, err)
	mods = decode[[]moduleRow](t, out)
	assert.Equal(t, []moduleRow{
		{Name: "Accounts", Screen: "AccountListScreen", Access: true},
		{Name: "Calendar", Screen: "CalendarScreen", Access: false},
		{Name: "Notes", Screen: "NoteListScreen", Access: false},
	}, mods)

	tests := []struct {
		name    string
		args    []string
		granted bool
		level   *int
	}{
		{name: "enabled module", args: []string{"Accounts"}, granted: true, level: ptr(89)},
		{name: "disabled module", args: []string{"Notes"}, granted: false, level: ptr(-98)},
		{name: "unknown permission", args: []string{"Accounts", "delete"}, granted: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"access", "--url", srv.URL, "--storage", root, "-o", "json"}, tt.args...)
			out, err := run(t, args...)
			require.NoError(t, err)
			res := decode[accessResult](t, out)
			assert.Equal(t, tt.granted, res.Granted)
			assert.Equal(t, tt.level, res.Level)
		})
	}

	_, err = run(t, "logout", "--storage", root, "-o", "json")
	require.NoError(t, err)

	_, err = run(t, "modules", "--url", srv.URL, "--storage", root)
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestLoginRequiresURL(t *testing.T) {
	isolate(t)
	_, err := run(t, "login", "--storage", t.TempDir(), "--token", "tok")
	assert.Error(t, err)
}

func TestTranslateUsesCache(t *testing.T) {
	isolate(t)
	crm, srv := newFakeCRM(t)
	root := t.TempDir()
	_, err := run(t, "login", "--url", srv.URL, "--storage", root, "--token", "tok")
	require.NoError(t, err)

	out, err := run(t, "translate", "--url", srv.URL, "--storage", root, "-o", "json", "LBL_SAVE", "Accounts", "LBL_NOPE")
	require.NoError(t, err)
	assert.Equal(t, []translation{
		{Key: "LBL_SAVE", Label: "Save"},
		{Key: "Accounts", Label: "Accounts"},
		{Key: "LBL_NOPE", Label: "LBL_NOPE"},
	}, decode[[]translation](t, out))

	out, err = run(t, "translate", "--url", srv.URL, "--storage", root, "-o", "json",
		"--module", "Accounts", "--default", "n/a", "LBL_NAME", "LBL_MISSING")
	require.NoError(t, err)
	assert.Equal(t, []translation{
		{Key: "LBL_NAME", Label: "Name"},
		{Key: "LBL_MISSING", Label: "n/a"},
	}, decode[[]translation](t, out))

	// Served from disk the second time.
	_, err = run(t, "translate", "--url", srv.URL, "--storage", root, "LBL_SAVE")
	require.NoError(t, err)
	assert.Equal(t, 1, crm.count("/Api/V8/custom/system/language/lang=en_us"))
}

func TestFieldsAndRefresh(t *testing.T) {
	isolate(t)
	crm, srv := newFakeCRM(t)
	root := t.TempDir()
	_, err := run(t, "login", "--url", srv.URL, "--storage", root, "--token", "tok")
	require.NoError(t, err)

	out, err := run(t, "fields", "--url", srv.URL, "--storage", root, "-o", "json", "Accounts")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Name"}, decode[map[string]any](t, out))

	out, err = run(t, "fields", "--kind", "list", "--url", srv.URL, "--storage", root, "-o", "json", "Accounts")
	require.NoError(t, err)
	assert.Contains(t, decode[map[string]any](t, out), "name")

	crm.set("/Api/V8/meta/fields/Accounts", `{"data":{"attributes":{"name":"Account Name"}}}`)
	out, err = run(t, "fields", "--refresh", "--url", srv.URL, "--storage", root, "Accounts")
	require.NoError(t, err)
	assert.Contains(t, out, "Account Name")

	out, err = run(t, "fields", "--url", srv.URL, "--storage", root, "-o", "json", "Accounts")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Account Name"}, decode[map[string]any](t, out))
	assert.Equal(t, 2, crm.count("/Api/V8/meta/fields/Accounts"))

	_, err = run(t, "fields", "--kind", "bogus", "--storage", root, "Accounts")
	assert.Error(t, err)
}

func TestSettingsAndDate(t *testing.T) {
	isolate(t)
	root := t.TempDir()

	_, err := run(t, "settings", "set", "--storage", root,
		"--format", locale.FormatISO, "--timezone", "VN*Asia/Ho_Chi_Minh*+07:00")
	require.NoError(t, err)

	out, err := run(t, "date", "--storage", root, "-o", "json", "2025-03-01T20:00:00+00:00")
	require.NoError(t, err)
	assert.Equal(t, []formattedDate{{Input: "2025-03-01T20:00:00+00:00", Output: "2025-03-02"}},
		decode[[]formattedDate](t, out))

	out, err = run(t, "date", "--time", "--storage", root, "-o", "json", "2025-03-01T20:00:00")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-02 03:00:00", decode[[]formattedDate](t, out)[0].Output)

	_, err = run(t, "date", "--storage", root, "yesterday")
	assert.ErrorIs(t, err, locale.ErrInvalidTimestamp)

	_, err = run(t, "settings", "set", "--storage", root, "--timezone", "nope")
	assert.Error(t, err)

	out, err = run(t, "settings", "show", "--storage", root, "-o", "json")
	require.NoError(t, err)
	shown := decode[map[string]any](t, out)
	assert.Equal(t, locale.FormatISO, shown["effectiveDateFormat"])
	assert.Equal(t, "+07:00", shown["utcOffset"])
}

func TestSettingsShowMasksToken(t *testing.T) {
	isolate(t)
	_, srv := newFakeCRM(t)
	root := t.TempDir()
	_, err := run(t, "login", "--url", srv.URL, "--storage", root, "--token", "tok")
	require.NoError(t, err)

	out, err := run(t, "settings", "show", "--storage", root, "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, masked, decode[map[string]any](t, out)["token"])
}

func TestSettingsZones(t *testing.T) {
	isolate(t)
	out, err := run(t, "settings", "zones", "--storage", t.TempDir(), "--country", "vn", "-o", "json")
	require.NoError(t, err)
	zones := decode[[]locale.Zone](t, out)
	require.NotEmpty(t, zones)
	for _, z := range zones {
		assert.Equal(t, "VN", z.CountryCode)
	}
}

func TestCacheCommands(t *testing.T) {
	isolate(t)
	_, srv := newFakeCRM(t)
	root := t.TempDir()
	_, err := run(t, "login", "--url", srv.URL, "--storage", root, "--token", "tok")
	require.NoError(t, err)
	_, err = run(t, "fields", "--url", srv.URL, "--storage", root, "Accounts")
	require.NoError(t, err)

	out, err := run(t, "cache", "ls", "--storage", root, "-o", "json")
	require.NoError(t, err)
	entries := decode[[]cacheEntry](t, out)
	require.Len(t, entries, 1)
	assert.Equal(t, "Accounts/fields/required", entries[0].Key)

	out, err = run(t, "cache", "purge", "--hours", "1", "--storage", root, "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"removed": 0}, decode[map[string]int](t, out))

	_, err = run(t, "cache", "clear", "--storage", root)
	require.NoError(t, err)

	out, err = run(t, "cache", "ls", "--storage", root, "-o", "json")
	require.NoError(t, err)
	assert.Empty(t, decode[[]cacheEntry](t, out))
}

func TestCompletion(t *testing.T) {
	out, err := run(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "complete -F _crmcache crmcache")

	out, err = run(t, "completion", "zsh")
	require.NoError(t, err)
	assert.Contains(t, out, "#compdef crmcache")
}

func TestValidators(t *testing.T) {
	tests := []struct {
		name      string
		validator FlagValidatorType
		value     any
		wantErr   bool
	}{
		{name: "output text", validator: OutputValidator, value: "text"},
		{name: "output yaml", validator: OutputValidator, value: "yaml"},
		{name: "output raw", validator: OutputValidator, value: "raw", wantErr: true},
		{name: "jammed flag", validator: JammedFlagValidator, value: "--output", wantErr: true},
		{name: "plain value", validator: JammedFlagValidator, value: "Accounts"},
		{name: "kind edit", validator: KindValidator, value: "edit"},
		{name: "kind bogus", validator: KindValidator, value: "detail", wantErr: true},
		{name: "format automatic", validator: DateFormatValidator, value: ""},
		{name: "format supported", validator: DateFormatValidator, value: "MM/dd/yy"},
		{name: "format unsupported", validator: DateFormatValidator, value: "yy.MM.dd", wantErr: true},
		{name: "timezone triple", validator: TimezoneValidator, value: "JP*Asia/Tokyo*+09:00"},
		{name: "timezone garbage", validator: TimezoneValidator, value: "Asia/Tokyo", wantErr: true},
		{name: "positive", validator: PositiveValidator, value: 3},
		{name: "zero", validator: PositiveValidator, value: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FlagValidators(tt.value, tt.validator)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGetMeta(t *testing.T) {
	assert.Empty(t, GetMeta(nil).Args)

	app, err := InitApp(context.Background(), []string{"crmcache", "modules"}, config.Env{})
	require.NoError(t, err)
	assert.Equal(t, []string{"crmcache", "modules"}, GetMeta(app).Args)
	for _, c := range app.Commands {
		if c.Name == "modules" {
			assert.Equal(t, "modules", GetMeta(c).Subcommand())
		}
	}
}

func ptr(i int) *int { return &i }

func TestFilterFlag(t *testing.T) {
	isolate(t)
	_, srv := newFakeCRM(t)
	root := t.TempDir()
	_, err := run(t, "login", "--url", srv.URL, "--storage", root, "--token", "tok")
	require.NoError(t, err)

	out, err := run(t, "modules", "--all", "--filter", "access=false,module!^N", "--url", srv.URL, "--storage", root, "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, []moduleRow{{Name: "Calendar", Screen: "CalendarScreen", Access: false}}, decode[[]moduleRow](t, out))

	out, err = run(t, "fields", "--filter", "field=name", "--url", srv.URL, "--storage", root, "-o", "json", "Accounts")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Name"}, decode[map[string]any](t, out))
}
