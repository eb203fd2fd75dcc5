// Package zapp maps registry operations onto transport calls.
package zapp

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/stelitsyn-sc/zappifest/internal/log"
	"github.com/stelitsyn-sc/zappifest/internal/manifest"
	"github.com/stelitsyn-sc/zappifest/internal/params"
	"github.com/stelitsyn-sc/zappifest/internal/transport"
)

// Default registry endpoints.
const (
	DefaultAdminURL    = "https://zapp.applicaster.com/api/v1/admin"
	DefaultAccountsURL = "https://accounts.applicaster.com/api/v1"
)

// Caller executes one classified request. *transport.Client implements it.
type Caller interface {
	Do(ctx context.Context, method, rawURL string, p params.Params) (transport.Outcome, error)
}

// Plugin is one registry record as returned by the API.
type Plugin map[string]any

// ID returns the record id formatted as a string.
func (p Plugin) ID() string {
	return p.str("id")
}

// Name returns the plugin name.
func (p Plugin) Name() string {
	return p.str("name")
}

// ExternalIdentifier returns the identifier the plugin was published with.
func (p Plugin) ExternalIdentifier() string {
	return p.str("external_identifier")
}

// Field returns the raw value stored under key.
func (p Plugin) Field(key string) (any, bool) {
	v, ok := p[key]
	return v, ok
}

func (p Plugin) str(key string) string {
	s, _ := manifest.Scalar(p[key])
	return s
}

// Client talks to the admin and accounts APIs.
type Client struct {
	caller      Caller
	adminURL    string
	accountsURL string
}

// NewClient creates a Client. Empty URLs fall back to the defaults.
func NewClient(caller Caller, adminURL, accountsURL string) *Client {
	if adminURL == "" {
		adminURL = DefaultAdminURL
	}
	if accountsURL == "" {
		accountsURL = DefaultAccountsURL
	}
	return &Client{
		caller:      caller,
		adminURL:    strings.TrimRight(adminURL, "/"),
		accountsURL: strings.TrimRight(accountsURL, "/"),
	}
}

// PluginsURL is the collection endpoint used for create.
func (c *Client) PluginsURL() string {
	return c.adminURL + "/plugins"
}

// PluginURL is the member endpoint used for update.
func (c *Client) PluginURL(id string) string {
	return c.PluginsURL() + "/" + url.PathEscape(id)
}

// CurrentUser looks up the token owner. It is used to validate the token.
func (c *Client) CurrentUser(ctx context.Context, accessToken string) (map[string]any, error) {
	p := params.New(params.Field{Key: params.KeyAccessToken, Value: params.Text(accessToken)})
	out, err := c.caller.Do(ctx, http.MethodGet, c.accountsURL+"/users/current.json", p)
	if err != nil {
		return nil, err
	}
	if err := out.Err(); err != nil {
		return nil, err
	}
	user, _ := out.Body.(map[string]any)
	return user, nil
}

// ListPlugins returns every plugin visible to the token. Entries that are not
// JSON objects are skipped.
func (c *Client) ListPlugins(ctx context.Context, p params.Params) ([]Plugin, error) {
	out, err := c.caller.Do(ctx, http.MethodGet, c.PluginsURL()+".json", p)
	if err != nil {
		return nil, err
	}
	if err := out.Err(); err != nil {
		return nil, fmt.Errorf("listing plugins: %w", err)
	}

	items, ok := out.Body.([]any)
	if !ok {
		return nil, fmt.Errorf("listing plugins: expected a JSON array, got %T", out.Body)
	}
	plugins := make([]Plugin, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			log.Warn(log.CatResolve, "Skipping malformed plugin entry", "index", i, "type", fmt.Sprintf("%T", item))
			continue
		}
		plugins = append(plugins, Plugin(m))
	}
	return plugins, nil
}

// CreatePlugin posts a new plugin.
func (c *Client) CreatePlugin(ctx context.Context, p params.Params) (Plugin, error) {
	return c.write(ctx, http.MethodPost, c.PluginsURL(), p)
}

// UpdatePlugin overwrites plugin id.
func (c *Client) UpdatePlugin(ctx context.Context, id string, p params.Params) (Plugin, error) {
	return c.write(ctx, http.MethodPut, c.PluginURL(id), p)
}

func (c *Client) write(ctx context.Context, method, target string, p params.Params) (Plugin, error) {
	out, err := c.caller.Do(ctx, method, target, p)
	if err != nil {
		return nil, err
	}
	if err := out.Err(); err != nil {
		return nil, err
	}
	m, ok := out.Body.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected a JSON object, got %T", out.Body)
	}
	return Plugin(m), nil
}
