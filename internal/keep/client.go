// Package keep reads notes and checklists from Google Keep through the
// private notes API used by the Android app.
//
// Authentication follows the Google Play Services flow: the account
// password is exchanged once for a master token, which is then traded for
// short-lived OAuth access tokens. Callers are expected to persist the
// master token and use Resume on later runs.
package keep

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/mrlokans/gkeep2notion/internal/entities"
)

const (
	DefaultAPIURL = "https://www.googleapis.com/notes/v1/"

	defaultTimeout  = 30 * time.Second
	maxSyncPages    = 1000
	timestampLayout = "2006-01-02T15:04:05.000000Z"
)

// Client is a read-only Keep client. It keeps the synced node tree in
// memory; All and Find operate on the last sync.
type Client struct {
	httpClient *http.Client
	apiURL     string
	auth       *gpsoauth
	logger     *slog.Logger
	now        func() time.Time

	email       string
	masterToken string
	api         *http.Client

	tree      *tree
	version   string
	sessionID string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying transport for both auth and API calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithAPIURL points the client at a different notes API root.
func WithAPIURL(u string) Option {
	return func(c *Client) {
		if !strings.HasSuffix(u, "/") {
			u += "/"
		}
		c.apiURL = u
	}
}

// WithAuthURL points the client at a different login endpoint.
func WithAuthURL(u string) Option {
	return func(c *Client) { c.auth.url = u }
}

// WithPublicKey replaces the key used to encrypt passwords on login.
// The blob is a length-prefixed modulus followed by the exponent.
func WithPublicKey(blob []byte) Option {
	return func(c *Client) { c.auth.keyBlob = blob }
}

// WithAndroidID fixes the device ID reported on login.
func WithAndroidID(id string) Option {
	return func(c *Client) { c.auth.androidID = id }
}

// WithLogger sets the logger for sync tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		apiURL: DefaultAPIURL,
		auth:   newGPSOAuth(nil, DefaultAuthURL, nil),
		logger: slog.Default(),
		now:    time.Now,
		tree:   newTree(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: defaultTimeout}
	}
	c.auth.httpClient = c.httpClient
	if c.auth.keyBlob == nil {
		c.auth.keyBlob = defaultKeyBlob()
	}
	c.sessionID = fmt.Sprintf("s--%d--%d", c.now().UnixMilli(), 1000000000+rand.Int64N(9000000000))
	return c
}

// Login authenticates with an account password, then syncs.
// The resulting master token is available from MasterToken.
func (c *Client) Login(ctx context.Context, email, password string) error {
	masterToken, err := c.auth.masterLogin(ctx, email, password)
	if err != nil {
		return err
	}
	return c.Resume(ctx, email, masterToken)
}

// Resume authenticates with a previously obtained master token, then syncs.
func (c *Client) Resume(ctx context.Context, email, masterToken string) error {
	source := oauth2.ReuseTokenSource(nil, &masterTokenSource{
		ctx:         ctx,
		auth:        c.auth,
		email:       email,
		masterToken: masterToken,
	})
	if _, err := source.Token(); err != nil {
		return fmt.Errorf("failed to obtain access token: %w", err)
	}

	c.email = email
	c.masterToken = masterToken
	c.api = oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, c.httpClient), source)
	c.api.Timeout = defaultTimeout
	c.tree = newTree()
	c.version = ""

	return c.Sync(ctx)
}

// MasterToken returns the long-lived token of the current session.
func (c *Client) MasterToken() string {
	return c.masterToken
}

// Email returns the account of the current session.
func (c *Client) Email() string {
	return c.email
}

// Sync pulls all changes since the last sync, following truncated pages.
func (c *Client) Sync(ctx context.Context) error {
	if c.api == nil {
		return ErrNotLoggedIn
	}

	for page := 1; page <= maxSyncPages; page++ {
		resp, err := c.changes(ctx)
		if err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}
		if resp.ForceFullResync {
			return ErrResyncRequired
		}
		if resp.UserInfo != nil {
			c.tree.applyLabels(resp.UserInfo.Labels)
		}
		c.tree.applyNodes(resp.Nodes)
		c.version = resp.ToVersion

		c.logger.Debug("keep changes received", "page", page, "nodes", len(resp.Nodes),
			"version", resp.ToVersion, "truncated", resp.Truncated)
		if !resp.Truncated {
			return nil
		}
	}
	return fmt.Errorf("sync failed: more than %d change pages", maxSyncPages)
}

func (c *Client) changes(ctx context.Context) (*changesResponse, error) {
	body := changesRequest{
		Nodes:           []node{},
		ClientTimestamp: c.now().UTC().Format(timestampLayout),
		RequestHeader: requestHeader{
			ClientSessionID: c.sessionID,
			ClientPlatform:  "ANDROID",
			ClientVersion:   clientVersion{Major: "9", Minor: "9", Build: "9", Revision: "9"},
			Capabilities:    capabilities,
		},
		TargetVersion: c.version,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"changes", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.api.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case resp.StatusCode >= 500:
		return nil, &ServerError{StatusCode: resp.StatusCode}
	case resp.StatusCode >= 400:
		var wrapper struct {
			Error *APIError `json:"error"`
		}
		if err := json.Unmarshal(respBody, &wrapper); err != nil || wrapper.Error == nil {
			return nil, &APIError{Code: resp.StatusCode, Message: string(respBody)}
		}
		return nil, wrapper.Error
	}

	var out changesResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &out, nil
}

// All returns every top-level note and list, trashed ones included.
func (c *Client) All() []entities.Item {
	return c.tree.items()
}

// Labels returns the account's labels.
func (c *Client) Labels() []entities.Label {
	return c.tree.labelList()
}

// FindLabel looks up a label by name, ignoring case.
func (c *Client) FindLabel(name string) (entities.Label, bool) {
	name = strings.ToLower(name)
	for _, l := range c.tree.labelList() {
		if strings.ToLower(l.Name) == name {
			return l, true
		}
	}
	return entities.Label{}, false
}

// Find returns the non-trashed items whose title or text contains query
// and that carry at least one of labels. An empty query or a nil label
// slice does not constrain the result.
func (c *Client) Find(query string, labels []entities.Label) []entities.Item {
	var out []entities.Item
	for _, item := range c.tree.items() {
		if item.Trashed {
			continue
		}
		if query != "" && !strings.Contains(item.Title, query) && !strings.Contains(searchText(item), query) {
			continue
		}
		if labels != nil && !hasAnyLabel(item, labels) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func searchText(item entities.Item) string {
	if !item.IsList() {
		return item.Text
	}
	lines := make([]string, len(item.Items))
	for i, li := range item.Items {
		lines[i] = li.Text
	}
	return strings.Join(lines, "\n")
}

func hasAnyLabel(item entities.Item, labels []entities.Label) bool {
	for _, l := range labels {
		if item.HasLabel(l.Name) {
			return true
		}
	}
	return false
}
