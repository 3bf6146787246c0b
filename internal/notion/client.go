// Package notion is a small client for the parts of the Notion API needed to
// build a page tree: creating pages and appending block children.
//
// Block lists longer than the API's per-request cap are sent in batches of
// 100, and every request waits on an optional throttle first.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/oauth2"
)

const (
	DefaultBaseURL = "https://api.notion.com/v1"
	APIVersion     = "2022-06-28"

	// MaxChildrenPerRequest is the number of children Notion accepts in a
	// single create or append call.
	MaxChildrenPerRequest = 100

	defaultTimeout     = 30 * time.Second
	maxRetries         = 3
	initialRetryDelay  = 1 * time.Second
	maxRetryDelay      = 30 * time.Second
	retryBackoffFactor = 2
)

// Throttle blocks until the next request may be sent.
type Throttle interface {
	Wait(ctx context.Context) error
}

// Client talks to the Notion REST API with a static integration token.
type Client struct {
	httpClient *http.Client
	baseURL    string
	throttle   Throttle
	logger     *slog.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API root.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient sets the transport used underneath the bearer auth.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithThrottle makes every request wait on t before it is sent.
func WithThrottle(t Throttle) Option {
	return func(c *Client) { c.throttle = t }
}

// WithLogger sets the logger for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client authenticating with the given integration token.
// The token is used as-is; there is no refresh.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		logger:  slog.Default(),
		sleep:   sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}

	base := c.httpClient
	if base == nil {
		base = &http.Client{}
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	c.httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	c.httpClient.Timeout = defaultTimeout
	return c
}

// CreatePage creates page under its parent and stores the assigned ID on it.
// The first 100 children go with the create call, the rest are appended.
func (c *Client) CreatePage(ctx context.Context, page *Page) error {
	if page.Persisted() {
		return fmt.Errorf("page %q already created with id %s", page.Title, page.ID)
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/pages", page.createRequest(MaxChildrenPerRequest), &resp); err != nil {
		return fmt.Errorf("failed to create page %q: %w", page.Title, err)
	}
	if resp.ID == "" {
		return fmt.Errorf("failed to create page %q: response carried no id", page.Title)
	}
	page.ID = resp.ID
	c.logger.Debug("notion page created", "title", page.Title, "id", page.ID, "blocks", len(page.Children))

	if len(page.Children) > MaxChildrenPerRequest {
		if err := c.AppendChildren(ctx, page.ID, page.Children[MaxChildrenPerRequest:]); err != nil {
			return fmt.Errorf("failed to append children to page %q: %w", page.Title, err)
		}
	}
	return nil
}

// AppendChildren appends blocks to blockID in batches of 100.
func (c *Client) AppendChildren(ctx context.Context, blockID string, blocks []Block) error {
	totalBatches := (len(blocks) + MaxChildrenPerRequest - 1) / MaxChildrenPerRequest

	for i := 0; i < len(blocks); i += MaxChildrenPerRequest {
		end := i + MaxChildrenPerRequest
		if end > len(blocks) {
			end = len(blocks)
		}
		batchNum := i/MaxChildrenPerRequest + 1

		c.logger.Debug("appending block batch", "block", blockID, "batch", batchNum, "of", totalBatches, "size", end-i)
		body := map[string]any{"children": blocks[i:end]}
		if err := c.do(ctx, http.MethodPatch, "/blocks/"+blockID+"/children", body, nil); err != nil {
			return fmt.Errorf("failed to append batch %d/%d: %w", batchNum, totalBatches, err)
		}
	}
	return nil
}

// do sends one API call, retrying rate limits and server errors.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal body: %w", err)
	}
	url := c.baseURL + path

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			delay := calculateRetryDelay(attempt)
			var rl *rateLimitError
			if errors.As(lastErr, &rl) && rl.retryAfter > 0 {
				delay = rl.retryAfter
			}
			c.logger.Debug("retrying notion request", "method", method, "path", path, "attempt", attempt+1, "delay", delay)
			if err := c.sleep(ctx, delay); err != nil {
				return err
			}
		}

		if c.throttle != nil {
			if err := c.throttle.Wait(ctx); err != nil {
				return err
			}
		}

		lastErr = c.doRequest(ctx, method, url, payload, out)
		if lastErr == nil {
			return nil
		}
		if !isRetryableError(lastErr) {
			return lastErr
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *Client) doRequest(ctx context.Context, method, url string, payload []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Notion-Version", APIVersion)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	c.logger.Debug("notion request", "method", method, "url", url, "status", resp.StatusCode,
		"bytes", len(respBody), "elapsed", time.Since(start))

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		return &rateLimitError{retryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	case resp.StatusCode >= 500:
		return &ServerError{StatusCode: resp.StatusCode}
	case resp.StatusCode >= 400:
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.Unmarshal(respBody, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = string(respBody)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

type rateLimitError struct {
	retryAfter time.Duration
}

func (e *rateLimitError) Error() string { return ErrRateLimited.Error() }

func (e *rateLimitError) Is(target error) bool { return target == ErrRateLimited }

func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	d := time.Duration(secs) * time.Second
	if d > maxRetryDelay {
		d = maxRetryDelay
	}
	return d
}

func calculateRetryDelay(attempt int) time.Duration {
	delay := initialRetryDelay
	for i := 1; i < attempt; i++ {
		delay *= time.Duration(retryBackoffFactor)
	}
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}

func isRetryableError(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var se *ServerError
	return errors.As(err, &se)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
