package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"marketplace/internal/config"
	"marketplace/internal/events"
	"marketplace/internal/http/handlers"
	applog "marketplace/internal/log"
	"marketplace/internal/repos"
	"marketplace/internal/storage"
)

type memStore struct {
	mu      sync.Mutex
	put     map[string]string
	deleted []string
}

func (m *memStore) Put(_ context.Context, kind storage.Kind, key string, body io.Reader, contentType string) (string, error) {
	b, _ := io.ReadAll(body)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.put == nil {
		m.put = map[string]string{}
	}
	m.put[key] = contentType + ":" + string(b)
	return "https://cdn.example.test/" + key, nil
}

func (m *memStore) Delete(_ context.Context, url string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, url)
	return true, nil
}

type testApp struct {
	app   *fiber.App
	deps  *handlers.Deps
	store *memStore
}

func testConfig() config.Config {
	return config.Config{
		DBDSN:          ":memory:",
		JWTSecret:      "test-secret",
		JWTTTL:         time.Hour,
		ReaperInterval: time.Hour,
		BodyLimit:      1 << 20,
	}
}

func newTestApp(t *testing.T, store storage.ObjectStore) *testApp {
	t.Helper()
	cfg := testConfig()
	db, err := repos.OpenDB(cfg.DBDSN, true)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ms, _ := store.(*memStore)
	deps, err := handlers.NewDeps(db, cfg, store, events.LogPublisher{})
	require.NoError(t, err)
	return &testApp{app: handlers.NewApp(cfg, deps), deps: deps, store: ms}
}

type call struct {
	method, path string
	body         any
	token        string
	sid          string
}

func (a *testApp) do(t *testing.T, c call) (*http.Response, map[string]any) {
	t.Helper()
	var rd io.Reader
	if c.body != nil {
		b, err := json.Marshal(c.body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(c.method, c.path, rd)
	if c.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: c.sid})
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp, out
}

func (a *testApp) login(t *testing.T, email string) string {
	t.Helper()
	resp, body := a.do(t, call{method: "POST", path: "/api/auth/login", body: map[string]string{
		"email": email, "password": "Passw0rd!",
	}})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	tok, _ := body["token"].(string)
	require.NotEmpty(t, tok)
	return tok
}

func sidCookie(resp *http.Response) string {
	for _, c := range resp.Cookies() {
		if c.Name == "sid" && c.Value != "" {
			return c.Value
		}
	}
	return ""
}

type logEntry struct {
	Level  string         `json:"level"`
	Action string         `json:"action"`
	UserID string         `json:"user_id"`
	Fields map[string]any `json:"fields"`
	Err    string         `json:"err"`
}

type lockedWriter struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (w *lockedWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}

func (w *lockedWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.String()
}

// captureLogs runs fn with the process logger redirected and returns the
// structured entries it wrote.
func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	w := &lockedWriter{}
	applog.SetOutput(w)
	defer applog.SetOutput(os.Stdout)

	fn()

	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(w.String()), "\n") {
		var e logEntry
		if err := json.Unmarshal([]byte(strings.TrimSpace(line)), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

func findAction(entries []logEntry, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}
