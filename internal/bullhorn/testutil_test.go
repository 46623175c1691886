package bullhorn

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// testStart is the fixed reference instant used by the test clock
var testStart = time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)

// testClock is a manually advanced clock for exercising expiry windows
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: testStart}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// mockBullhorn simulates the Bullhorn OAuth, login and REST endpoints on a
// single test server. Individual handlers can be swapped out per test; the
// defaults run a successful end-to-end credential lifecycle.
type mockBullhorn struct {
	*httptest.Server
	t *testing.T

	mu             sync.Mutex
	authorizeCount int
	tokenGrants    []string
	loginCount     int
	dataRequests   []*http.Request

	// Overridable behaviors
	authorizeHandler http.HandlerFunc
	tokenHandler     http.HandlerFunc
	loginHandler     http.HandlerFunc
	dataHandler      http.HandlerFunc
}

// newMockBullhorn creates a mock Bullhorn backend with default handlers
func newMockBullhorn(t *testing.T) *mockBullhorn {
	t.Helper()

	m := &mockBullhorn{t: t}

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/authorize", func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.authorizeCount++
		m.mu.Unlock()
		m.authorizeHandler(w, r)
	})
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.tokenGrants = append(m.tokenGrants, r.URL.Query().Get("grant_type"))
		m.mu.Unlock()
		m.tokenHandler(w, r)
	})
	mux.HandleFunc("/rest-services/login", func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.loginCount++
		m.mu.Unlock()
		m.loginHandler(w, r)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.dataRequests = append(m.dataRequests, r.Clone(r.Context()))
		m.mu.Unlock()
		m.dataHandler(w, r)
	})

	m.Server = httptest.NewServer(mux)
	t.Cleanup(m.Server.Close)

	// Default behaviors: a clean, successful lifecycle.
	m.authorizeHandler = func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "https://app.example.com/callback?code=test-code", http.StatusFound)
	}
	m.tokenHandler = func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"access_token":  "access-1",
			"refresh_token": "refresh-1",
			"expires_in":    600,
		})
	}
	m.loginHandler = func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"BhRestToken": "bh-token-1",
			"restUrl":     m.URL,
		})
	}
	m.dataHandler = func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"data": []any{}})
	}

	return m
}

// Config returns a configuration pointing every endpoint at the mock
func (m *mockBullhorn) Config() *Config {
	return &Config{
		ClientID:     "test-client",
		ClientSecret: "test-secret",
		Username:     "test-user",
		Password:     "test-pass",
		AuthURL:      m.URL,
		LoginURL:     m.URL,
	}
}

// AuthorizeCount returns how many authorize requests were received
func (m *mockBullhorn) AuthorizeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.authorizeCount
}

// TokenGrants returns the grant_type of every token request received
func (m *mockBullhorn) TokenGrants() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.tokenGrants...)
}

// LoginCount returns how many login requests were received
func (m *mockBullhorn) LoginCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loginCount
}

// DataRequests returns every data-plane request received
func (m *mockBullhorn) DataRequests() []*http.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*http.Request(nil), m.dataRequests...)
}

// LastDataQuery returns the query parameters of the most recent data request
func (m *mockBullhorn) LastDataQuery() url.Values {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.dataRequests) == 0 {
		m.t.Fatal("no data requests received")
	}
	return m.dataRequests[len(m.dataRequests)-1].URL.Query()
}

// newTestManager creates a session manager against the mock with a test clock
func newTestManager(t *testing.T, m *mockBullhorn) (*SessionManager, *testClock) {
	t.Helper()

	clock := newTestClock()
	mgr := NewSessionManager(m.Config(), nil, zerolog.Nop())
	mgr.now = clock.Now
	return mgr, clock
}

// newTestClient creates a client and its session manager against the mock
func newTestClient(t *testing.T, m *mockBullhorn) (*Client, *testClock) {
	t.Helper()

	mgr, clock := newTestManager(t, m)
	return NewClient(mgr, nil, zerolog.Nop()), clock
}

// writeJSON writes v as a JSON response body
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// testContext returns a context bounded to the test lifetime
func testContext(t *testing.T) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}
