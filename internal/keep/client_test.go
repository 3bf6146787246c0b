package keep

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/gkeep2notion/internal/entities"
)

const epoch = "1970-01-01T00:00:00.000Z"

type fakeKeep struct {
	t        *testing.T
	key      *rsa.PrivateKey
	password string

	mu        sync.Mutex
	exchanges int
	pages     [][]byte
	requests  []changesRequest
}

func (f *fakeKeep) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth", f.handleAuth)
	mux.HandleFunc("/notes/v1/changes", f.handleChanges)
	return mux
}

func (f *fakeKeep) handleAuth(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		f.t.Errorf("bad form: %v", err)
		return
	}
	switch r.PostForm.Get("service") {
	case "ac2dm":
		raw, err := base64.URLEncoding.DecodeString(r.PostForm.Get("EncryptedPasswd"))
		if err != nil || len(raw) < 5 {
			f.t.Errorf("bad EncryptedPasswd: %v", err)
			return
		}
		plain, err := rsa.DecryptOAEP(sha1.New(), nil, f.key, raw[5:], nil)
		if err != nil {
			f.t.Errorf("decrypt: %v", err)
			return
		}
		if string(plain) != r.PostForm.Get("Email")+"\x00"+f.password {
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, "Error=BadAuthentication\n")
			return
		}
		fmt.Fprint(w, "SID=x\nLSID=y\nToken=master-123\nservices=mail\n")
	case keepService:
		if r.PostForm.Get("EncryptedPasswd") != "master-123" {
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, "Error=BadAuthentication\n")
			return
		}
		assert.Equal(f.t, keepApp, r.PostForm.Get("app"))
		f.mu.Lock()
		f.exchanges++
		f.mu.Unlock()
		fmt.Fprint(w, "Auth=ya29.access\nExpiry=4102444800\nissueAdvice=auto\n")
	default:
		f.t.Errorf("unexpected service %q", r.PostForm.Get("service"))
	}
}

func (f *fakeKeep) handleChanges(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer ya29.access" {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"code":401,"message":"Invalid Credentials"}}`)
		return
	}
	var req changesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		f.t.Errorf("decode: %v", err)
		return
	}

	f.mu.Lock()
	idx := len(f.requests)
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if idx >= len(f.pages) {
		fmt.Fprint(w, `{"toVersion":"final","truncated":false}`)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(f.pages[idx])
}

func newFakeKeep(t *testing.T, pages ...string) (*fakeKeep, *httptest.Server) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	f := &fakeKeep{t: t, key: key, password: "hunter2"}
	for _, p := range pages {
		f.pages = append(f.pages, []byte(p))
	}
	server := httptest.NewServer(f.handler())
	t.Cleanup(server.Close)
	return f, server
}

func newTestClient(f *fakeKeep, server *httptest.Server) *Client {
	return NewClient(
		WithHTTPClient(server.Client()),
		WithAuthURL(server.URL+"/auth"),
		WithAPIURL(server.URL+"/notes/v1"),
		WithPublicKey(encodePublicKey(&f.key.PublicKey)),
		WithAndroidID("0123456789abcdef"),
	)
}

const firstPage = `{
	"toVersion": "v1",
	"truncated": true,
	"userInfo": {"labels": [
		{"mainId": "tag.work", "name": "Work", "timestamps": {"deleted": "` + epoch + `"}},
		{"mainId": "tag.home", "name": "Home"}
	]},
	"nodes": [
		{"id": "n1", "parentId": "root", "type": "NOTE", "title": "Plan",
		 "timestamps": {"trashed": "` + epoch + `", "deleted": "` + epoch + `"},
		 "labelIds": [{"labelId": "tag.work"}, {"labelId": "tag.home", "deleted": "2021-01-01T00:00:00.000Z"}]},
		{"id": "n1.text", "parentId": "n1", "type": "LIST_ITEM", "text": "1. ship it\nsee https://example.com", "sortValue": "10"},
		{"id": "n1.img", "parentId": "n1", "type": "BLOB", "blob": {"type": "IMAGE", "mediaId": "m1"}},
		{"id": "l1", "parentId": "root", "type": "LIST", "title": "Groceries",
		 "labelIds": [{"labelId": "tag.home"}]}
	]
}`

const secondPage = `{
	"toVersion": "v2",
	"truncated": false,
	"nodes": [
		{"id": "l1.a", "parentId": "l1", "type": "LIST_ITEM", "text": "milk", "checked": true, "sortValue": 300},
		{"id": "l1.b", "parentId": "l1", "type": "LIST_ITEM", "text": "bread", "sortValue": "200"},
		{"id": "t1", "parentId": "root", "type": "NOTE", "title": "Old plan",
		 "timestamps": {"trashed": "2022-05-01T10:00:00.000Z"}},
		{"id": "t1.text", "parentId": "t1", "type": "LIST_ITEM", "text": "ship it later"},
		{"id": "gone", "parentId": "root", "type": "NOTE", "title": "Deleted",
		 "timestamps": {"deleted": "2022-05-01T10:00:00.000Z"}}
	]
}`

func TestClient_LoginAndSync(t *testing.T) {
	fake, server := newFakeKeep(t, firstPage, secondPage)
	client := newTestClient(fake, server)

	require.NoError(t, client.Login(context.Background(), "me@example.com", "hunter2"))
	assert.Equal(t, "master-123", client.MasterToken())
	assert.Equal(t, "me@example.com", client.Email())
	assert.Equal(t, 1, fake.exchanges)

	require.Len(t, fake.requests, 2)
	assert.Empty(t, fake.requests[0].TargetVersion)
	assert.Equal(t, "v1", fake.requests[1].TargetVersion)
	assert.Equal(t, "ANDROID", fake.requests[0].RequestHeader.ClientPlatform)
	assert.True(t, strings.HasPrefix(fake.requests[0].RequestHeader.ClientSessionID, "s--"))

	items := client.All()
	require.Len(t, items, 3)

	note := items[0]
	assert.Equal(t, entities.ItemKindNote, note.Kind)
	assert.Equal(t, "Plan", note.Title)
	assert.Equal(t, "1. ship it\nsee https://example.com", note.Text)
	assert.Equal(t, []string{"Work"}, note.Labels)
	assert.Equal(t, []entities.Media{{ID: "n1.img", Kind: entities.MediaKindImage}}, note.Media)
	assert.False(t, note.Trashed)

	list := items[1]
	assert.Equal(t, entities.ItemKindList, list.Kind)
	assert.Equal(t, []entities.ListItem{{Text: "milk", Checked: true}, {Text: "bread"}}, list.Items)
	assert.Equal(t, []string{"Home"}, list.Labels)

	assert.True(t, items[2].Trashed)
}

func TestClient_Find(t *testing.T) {
	fake, server := newFakeKeep(t, firstPage, secondPage)
	client := newTestClient(fake, server)
	require.NoError(t, client.Login(context.Background(), "me@example.com", "hunter2"))

	titles := func(items []entities.Item) []string {
		var out []string
		for _, i := range items {
			out = append(out, i.Title)
		}
		return out
	}

	assert.Equal(t, []string{"Plan", "Groceries"}, titles(client.Find("", nil)))
	assert.Equal(t, []string{"Plan"}, titles(client.Find("ship", nil)))
	assert.Equal(t, []string{"Groceries"}, titles(client.Find("bread", nil)))

	home, ok := client.FindLabel("HOME")
	require.True(t, ok)
	assert.Equal(t, "tag.home", home.ID)
	work, _ := client.FindLabel("work")
	assert.Equal(t, []string{"Plan", "Groceries"}, titles(client.Find("", []entities.Label{work, home})))
	assert.Equal(t, []string{"Groceries"}, titles(client.Find("", []entities.Label{home})))

	_, ok = client.FindLabel("nope")
	assert.False(t, ok)
}

func TestClient_Login_BadPassword(t *testing.T) {
	fake, server := newFakeKeep(t)
	client := newTestClient(fake, server)

	err := client.Login(context.Background(), "me@example.com", "wrong")
	assert.ErrorIs(t, err, ErrBadAuthentication)
	assert.Empty(t, client.MasterToken())
}

func TestClient_Resume(t *testing.T) {
	fake, server := newFakeKeep(t, firstPage)
	client := newTestClient(fake, server)

	require.NoError(t, client.Resume(context.Background(), "me@example.com", "master-123"))
	assert.Len(t, client.All(), 2)
	assert.Len(t, fake.requests, 2)

	err := newTestClient(fake, server).Resume(context.Background(), "me@example.com", "stale")
	assert.ErrorIs(t, err, ErrBadAuthentication)
}

func TestClient_SyncErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			check:  func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrUnauthorized) },
		},
		{
			name:   "api error",
			status: http.StatusBadRequest,
			body:   `{"error":{"code":400,"message":"Invalid value"}}`,
			check: func(t *testing.T, err error) {
				var apiErr *APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, 400, apiErr.Code)
				assert.Equal(t, "Invalid value", apiErr.Message)
			},
		},
		{
			name:   "server error",
			status: http.StatusServiceUnavailable,
			check: func(t *testing.T, err error) {
				var se *ServerError
				require.ErrorAs(t, err, &se)
				assert.Equal(t, http.StatusServiceUnavailable, se.StatusCode)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake, _ := newFakeKeep(t)
			mux := http.NewServeMux()
			mux.HandleFunc("/auth", fake.handleAuth)
			mux.HandleFunc("/notes/v1/changes", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})
			server := httptest.NewServer(mux)
			defer server.Close()

			err := newTestClient(fake, server).Resume(context.Background(), "me@example.com", "master-123")
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestClient_SyncBeforeLogin(t *testing.T) {
	assert.ErrorIs(t, NewClient().Sync(context.Background()), ErrNotLoggedIn)
}

func TestEncryptPassword(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	blob := encodePublicKey(&key.PublicKey)

	out, err := encryptPassword(blob, "me@example.com", "secret")
	require.NoError(t, err)

	raw, err := base64.URLEncoding.DecodeString(out)
	require.NoError(t, err)
	digest := sha1.Sum(blob)
	assert.Equal(t, append([]byte{0}, digest[:4]...), raw[:5])

	plain, err := rsa.DecryptOAEP(sha1.New(), nil, key, raw[5:], nil)
	require.NoError(t, err)
	assert.Equal(t, "me@example.com\x00secret", string(plain))
}

func TestParsePublicKey(t *testing.T) {
	pub, err := parsePublicKey(defaultKeyBlob())
	require.NoError(t, err)
	assert.Equal(t, 65537, pub.E)
	assert.Equal(t, 1024, pub.N.BitLen())

	_, err = parsePublicKey([]byte{0, 0, 0, 9, 1})
	assert.Error(t, err)
}

func TestParseAuthResponse(t *testing.T) {
	out, err := parseAuthResponse(strings.NewReader("Token=abc=def\n\nError=\nExpiry=1"))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Token": "abc=def", "Error": "", "Expiry": "1"}, out)
}

func TestIsSet(t *testing.T) {
	assert.False(t, isSet(""))
	assert.False(t, isSet(epoch))
	assert.False(t, isSet("garbage"))
	assert.True(t, isSet("2021-03-04T05:06:07.123456Z"))
}

func TestDeviceID(t *testing.T) {
	assert.Len(t, deviceID("me@example.com"), 16)
	assert.Equal(t, deviceID("Me@Example.com"), deviceID("me@example.com"))
}
