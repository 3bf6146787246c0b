package notion

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method   string
	Path     string
	Children int
	Body     map[string]any
}

type fakeNotion struct {
	mu       sync.Mutex
	requests []recordedRequest
	nextID   int
}

func (f *fakeNotion) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		assert.Equal(t, APIVersion, r.Header.Get("Notion-Version"))

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("failed to decode request body: %v", err)
			return
		}
		children, _ := body["children"].([]any)

		f.mu.Lock()
		f.requests = append(f.requests, recordedRequest{
			Method:   r.Method,
			Path:     r.URL.Path,
			Children: len(children),
			Body:     body,
		})
		f.nextID++
		id := f.nextID
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"object":"page","id":"page-%d"}`, id)
	}
}

type countingThrottle struct {
	calls int
}

func (c *countingThrottle) Wait(context.Context) error {
	c.calls++
	return nil
}

func newTestClient(t *testing.T, server *httptest.Server, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithBaseURL(server.URL), WithHTTPClient(server.Client())}, opts...)
	c := NewClient("secret-token", opts...)
	c.sleep = func(context.Context, time.Duration) error { return nil }
	return c
}

func paragraphs(n int) []Block {
	blocks := make([]Block, n)
	for i := range blocks {
		blocks[i] = NewBlock(BlockTypeParagraph, []RichText{Text(fmt.Sprintf("line %d", i))})
	}
	return blocks
}

func TestClient_CreatePage(t *testing.T) {
	fake := &fakeNotion{}
	server := httptest.NewServer(fake.handler(t))
	defer server.Close()

	client := newTestClient(t, server)
	page := NewPage("Groceries", "root-id")
	page.Append(NewToDo([]RichText{Text("milk")}, true))

	require.NoError(t, client.CreatePage(context.Background(), page))
	assert.Equal(t, "page-1", page.ID)

	require.Len(t, fake.requests, 1)
	req := fake.requests[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/pages", req.Path)
	assert.Equal(t, 1, req.Children)

	parent := req.Body["parent"].(map[string]any)
	assert.Equal(t, "page_id", parent["type"])
	assert.Equal(t, "root-id", parent["page_id"])

	title := req.Body["properties"].(map[string]any)["title"].([]any)
	require.Len(t, title, 1)
	assert.Equal(t, "Groceries", title[0].(map[string]any)["text"].(map[string]any)["content"])

	todo := req.Body["children"].([]any)[0].(map[string]any)
	assert.Equal(t, "to_do", todo["type"])
	assert.Equal(t, true, todo["to_do"].(map[string]any)["checked"])
}

func TestClient_CreatePage_BatchesLargeBodies(t *testing.T) {
	fake := &fakeNotion{}
	server := httptest.NewServer(fake.handler(t))
	defer server.Close()

	throttle := &countingThrottle{}
	client := newTestClient(t, server, WithThrottle(throttle))
	page := NewPage("Long note", "root-id")
	page.Append(paragraphs(250)...)

	require.NoError(t, client.CreatePage(context.Background(), page))

	require.Len(t, fake.requests, 3)
	assert.Equal(t, http.MethodPost, fake.requests[0].Method)
	assert.Equal(t, 100, fake.requests[0].Children)
	assert.Equal(t, http.MethodPatch, fake.requests[1].Method)
	assert.Equal(t, "/blocks/page-1/children", fake.requests[1].Path)
	assert.Equal(t, 100, fake.requests[1].Children)
	assert.Equal(t, 50, fake.requests[2].Children)
	assert.Equal(t, 3, throttle.calls)
}

func TestClient_CreatePage_AlreadyPersisted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))
	defer server.Close()

	client := newTestClient(t, server)
	page := &Page{ID: "existing", Title: "Notes"}
	assert.Error(t, client.CreatePage(context.Background(), page))
	assert.Equal(t, "existing", page.ID)
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		check   func(t *testing.T, err error)
		retries int
	}{
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			body:   `{"object":"error","status":401,"code":"unauthorized","message":"API token is invalid."}`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrUnauthorized)
			},
			retries: 1,
		},
		{
			name:   "validation error",
			status: http.StatusBadRequest,
			body:   `{"object":"error","status":400,"code":"validation_error","message":"body.parent.page_id should be a valid uuid"}`,
			check: func(t *testing.T, err error) {
				var apiErr *APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, "validation_error", apiErr.Code)
				assert.Contains(t, apiErr.Message, "valid uuid")
			},
			retries: 1,
		},
		{
			name:   "server error exhausts retries",
			status: http.StatusBadGateway,
			check: func(t *testing.T, err error) {
				var se *ServerError
				require.ErrorAs(t, err, &se)
				assert.Equal(t, http.StatusBadGateway, se.StatusCode)
			},
			retries: maxRetries,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			client := newTestClient(t, server)
			err := client.CreatePage(context.Background(), NewPage("x", ""))
			require.Error(t, err)
			tt.check(t, err)
			assert.Equal(t, tt.retries, calls)
		})
	}
}

func TestClient_RetriesRateLimit(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "2")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"id":"page-ok"}`)
	}))
	defer server.Close()

	client := newTestClient(t, server)
	var slept []time.Duration
	client.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}

	page := NewPage("Notes", "root")
	require.NoError(t, client.CreatePage(context.Background(), page))
	assert.Equal(t, "page-ok", page.ID)
	assert.Equal(t, []time.Duration{2 * time.Second}, slept)
}

func TestCalculateRetryDelay(t *testing.T) {
	assert.Equal(t, 1*time.Second, calculateRetryDelay(1))
	assert.Equal(t, 2*time.Second, calculateRetryDelay(2))
	assert.Equal(t, 4*time.Second, calculateRetryDelay(3))
	assert.Equal(t, maxRetryDelay, calculateRetryDelay(10))
}

func TestIsRetryableError(t *testing.T) {
	assert.True(t, isRetryableError(&rateLimitError{}))
	assert.True(t, isRetryableError(&ServerError{StatusCode: 503}))
	assert.False(t, isRetryableError(ErrUnauthorized))
	assert.False(t, isRetryableError(&APIError{Status: 400}))
}
