package bridge

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrenko/passlock/internal/logging"
	"github.com/dmitrenko/passlock/internal/session"
	"github.com/dmitrenko/passlock/internal/vault"
)

const testToken = "test-pairing-token"

func newBridgeWithVault(t *testing.T, entries []*vault.Entry) (*Server, *session.Handle) {
	t.Helper()

	store, err := vault.NewStore(t.TempDir())
	require.NoError(t, err)

	password := []byte("pw")
	v, err := store.Initialize("demo")
	require.NoError(t, err)
	for _, e := range entries {
		require.NoError(t, v.AddEntry(e))
	}
	require.NoError(t, store.Close(v, password))

	sess := session.New(store, "demo", time.Minute)
	require.NoError(t, sess.StartSession(password))

	h := session.NewHandle()
	h.Swap(sess)

	return NewServer("127.0.0.1:0", testToken, h, logging.NewDefault(io.Discard)), h
}

func postJSON(t *testing.T, ts *httptest.Server, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := ts.Client().Post(ts.URL+"/", "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestBridge_RejectsNonPost(t *testing.T) {
	srv, _ := newBridgeWithVault(t, nil)
	ts := httptest.NewServer(srv.router())
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestBridge_InvalidToken(t *testing.T) {
	srv, _ := newBridgeWithVault(t, nil)
	ts := httptest.NewServer(srv.router())
	defer ts.Close()

	resp, body := postJSON(t, ts, `{"token":"bad","action":"fill","url":"https://example.com"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid token", body["error"])
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestBridge_InvalidTokenRegardlessOfSessionState(t *testing.T) {
	srv, h := newBridgeWithVault(t, nil)
	h.Swap(nil)
	ts := httptest.NewServer(srv.router())
	defer ts.Close()

	resp, body := postJSON(t, ts, `{"token":"bad","action":"fill","url":"https://example.com"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid token", body["error"])
}

func TestBridge_NoSessionOpen(t *testing.T) {
	srv, h := newBridgeWithVault(t, nil)
	h.Swap(nil)
	ts := httptest.NewServer(srv.router())
	defer ts.Close()

	resp, body := postJSON(t, ts, `{"token":"`+testToken+`","action":"fill","url":"https://example.com"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "No session open", body["message"])
}

func TestBridge_SingleMatch(t *testing.T) {
	srv, _ := newBridgeWithVault(t, []*vault.Entry{
		{Name: "Email", Username: "a@b.com", Password: "x", URL: "https://mail.example.com"},
		{Name: "Other", Username: "c@d.com", Password: "y", URL: "https://other.example.org"},
	})
	ts := httptest.NewServer(srv.router())
	defer ts.Close()

	_, body := postJSON(t, ts, `{"token":"`+testToken+`","action":"fill","url":"https://mail.example.com/inbox"}`)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "single", body["mode"])
	assert.Equal(t, "a@b.com", body["username"])
	assert.Equal(t, "x", body["password"])
}

func TestBridge_MatchIgnoresSchemeWwwPortAndPath(t *testing.T) {
	srv, _ := newBridgeWithVault(t, []*vault.Entry{
		{Name: "Site", Username: "u", Password: "p", URL: "http://www.example.com:8080/login"},
	})
	ts := httptest.NewServer(srv.router())
	defer ts.Close()

	_, body := postJSON(t, ts, `{"token":"`+testToken+`","action":"fill","url":"https://example.com/some/path"}`)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "single", body["mode"])
}

func TestBridge_MultipleMatches(t *testing.T) {
	srv, _ := newBridgeWithVault(t, []*vault.Entry{
		{Name: "Personal", Username: "u1", Password: "p1", URL: "https://example.com"},
		{Name: "Work", Username: "u2", Password: "p2", URL: "https://example.com/login"},
	})
	ts := httptest.NewServer(srv.router())
	defer ts.Close()

	_, body := postJSON(t, ts, `{"token":"`+testToken+`","action":"fill","url":"https://example.com"}`)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "multiple", body["mode"])

	entries, ok := body["entries"].([]any)
	require.True(t, ok, "expected entries array")
	assert.Len(t, entries, 2)
}

func TestBridge_NotFound(t *testing.T) {
	srv, _ := newBridgeWithVault(t, []*vault.Entry{
		{Name: "Email", Username: "a@b.com", Password: "x", URL: "https://mail.example.com"},
	})
	ts := httptest.NewServer(srv.router())
	defer ts.Close()

	_, body := postJSON(t, ts, `{"token":"`+testToken+`","action":"fill","url":"https://unrelated.net"}`)
	assert.Equal(t, "not_found", body["status"])
}

func TestBridge_InvalidRequests(t *testing.T) {
	srv, _ := newBridgeWithVault(t, nil)
	ts := httptest.NewServer(srv.router())
	defer ts.Close()

	for _, body := range []string{
		`{"token":"` + testToken + `","action":"steal","url":"https://example.com"}`,
		`{"token":"` + testToken + `","action":"fill"}`,
		`{"token":"` + testToken + `"`,
		`not json at all`,
	} {
		_, decoded := postJSON(t, ts, body)
		assert.Equal(t, "Invalid request", decoded["error"], "body: %s", body)
	}
}
