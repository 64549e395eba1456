// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package suitecrm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/tidwall/gjson"
)

// V8 endpoint paths, relative to the instance base URL.
const (
	pathModules        = "Api/V8/meta/modules"
	pathRoles          = "Api/V8/custom/user/roles"
	pathRequiredFields = "Api/V8/meta/fields/%s"
	pathListFields     = "Api/V8/custom/%s/default-fields"
	pathEditFields     = "Api/V8/custom/%s/edit-fields"
	pathModuleLanguage = "Api/V8/custom/%s/language/lang=%s"
	pathSystemLanguage = "Api/V8/custom/system/language/lang=%s"
)

// Sentinel errors so callers can tell failure kinds apart with errors.Is.
var (
	ErrNoBaseURL    = errors.New("base URL is not set")
	ErrUnauthorized = errors.New("unauthorized")
	ErrStatus       = errors.New("unexpected response status")
	ErrMalformed    = errors.New("malformed response")
)

// Client talks to a SuiteCRM instance's V8 API with a bearer token. Every
// call is a single attempt; there are no retries.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

// NewClient returns a Client for baseURL with the given request timeout.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// get issues an authenticated GET and returns the body when it is valid JSON.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if c.BaseURL == "" {
		return nil, ErrNoBaseURL
	}

	u := c.BaseURL + "/" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.api+json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}

	log.Debugf("GET %s", u)
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	var doc bytes.Buffer
	if _, err := doc.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("GET %s: %w", path, ErrUnauthorized)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("GET %s: %w: %d", path, ErrStatus, resp.StatusCode)
	}

	if !gjson.ValidBytes(doc.Bytes()) {
		return nil, fmt.Errorf("GET %s: %w: body is not JSON", path, ErrMalformed)
	}
	return doc.Bytes(), nil
}

// Modules returns the module metadata map keyed by module name, taken from
// data.attributes.
func (c *Client) Modules(ctx context.Context) (map[string]map[string]any, error) {
	b, err := c.get(ctx, pathModules, nil)
	if err != nil {
		return nil, err
	}

	attrs := gjson.GetBytes(b, "data.attributes")
	if !attrs.IsObject() {
		return nil, fmt.Errorf("modules: %w: missing data.attributes", ErrMalformed)
	}

	modules := map[string]map[string]any{}
	attrs.ForEach(func(k, v gjson.Result) bool {
		m, ok := v.Value().(map[string]any)
		if !ok {
			m = map[string]any{}
		}
		modules[k.String()] = m
		return true
	})
	return modules, nil
}

// Action is a single ACL action granted by a role.
type Action struct {
	Category string
	Name     string
	Level    int
}

// Role is a role assigned to the current user.
type Role struct {
	ID      string
	Name    string
	Actions []Action
}

// UserRoles returns the roles of the token's user. An empty slice means the
// user has no roles assigned. Actions without an access_override are skipped.
func (c *Client) UserRoles(ctx context.Context) ([]Role, error) {
	b, err := c.get(ctx, pathRoles, nil)
	if err != nil {
		return nil, err
	}

	rolesJSON := gjson.GetBytes(b, "roles")
	if !rolesJSON.IsArray() {
		return nil, fmt.Errorf("roles: %w: missing roles array", ErrMalformed)
	}

	roles := []Role{}
	for _, r := range rolesJSON.Array() {
		role := Role{
			ID:   r.Get("id").String(),
			Name: r.Get("name").String(),
		}
		for _, a := range r.Get("actions").Array() {
			override := a.Get("access_override")
			if !override.Exists() || override.Type == gjson.Null || override.String() == "" {
				continue
			}
			role.Actions = append(role.Actions, Action{
				Category: a.Get("category").String(),
				Name:     a.Get("name").String(),
				Level:    int(override.Int()),
			})
		}
		roles = append(roles, role)
	}
	return roles, nil
}

// RequiredFields returns the raw required-fields document for module.
func (c *Client) RequiredFields(ctx context.Context, module string) ([]byte, error) {
	return c.get(ctx, fmt.Sprintf(pathRequiredFields, url.PathEscape(module)), nil)
}

// ListViewFields returns the raw list-view document ({default_fields}).
func (c *Client) ListViewFields(ctx context.Context, module string) ([]byte, error) {
	return c.get(ctx, fmt.Sprintf(pathListFields, url.PathEscape(module)), nil)
}

// EditViewFields returns the raw edit-view document, a flat field->label map
// in the requested language.
func (c *Client) EditViewFields(ctx context.Context, module, language string) ([]byte, error) {
	q := url.Values{}
	if language != "" {
		q.Set("language", language)
	}
	return c.get(ctx, fmt.Sprintf(pathEditFields, url.PathEscape(module)), q)
}

// ModuleLanguage returns the raw {data: {mod_strings}} bundle.
func (c *Client) ModuleLanguage(ctx context.Context, module, language string) ([]byte, error) {
	return c.get(ctx, fmt.Sprintf(pathModuleLanguage, url.PathEscape(module), url.PathEscape(language)), nil)
}

// SystemLanguage returns the raw {data: {app_strings, app_list_strings}}
// bundle.
func (c *Client) SystemLanguage(ctx context.Context, language string) ([]byte, error) {
	return c.get(ctx, fmt.Sprintf(pathSystemLanguage, url.PathEscape(language)), nil)
}
