package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/steading/internal/config"
	"github.com/talgya/steading/internal/engine"
	"github.com/talgya/steading/internal/persistence"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Seed = 11
	cfg.AutosaveEvery = 0
	return &Server{Eng: engine.New(cfg), AdminKey: "hunter2"}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestStatusEndpoint(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.handleStatus(rec, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decodeBody(t, rec)
	assert.Equal(t, float64(0), body["day"])
	assert.Equal(t, float64(8), body["population"])
}

func TestAdminEndpointsRequireBearerToken(t *testing.T) {
	s := newTestServer(t)
	h := s.adminOnly(s.handleDay)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/day", nil)
	rec := httptest.NewRecorder()
	h(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	h(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	s.AdminKey = ""
	rec = httptest.NewRecorder()
	h(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDayEndpointRunsAFullDay(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/day", nil)
	req.Header.Set("Authorization", "Bearer hunter2")
	rec := httptest.NewRecorder()
	s.adminOnly(s.handleDay)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	report, ok := body["report"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1), report["day"])
	assert.Equal(t, 1, s.Eng.Day)
}

func TestDayEndpointAutosaves(t *testing.T) {
	cfg := config.Default()
	cfg.Seed = 11
	cfg.AutosaveEvery = 1

	db, err := persistence.Open(filepath.Join(t.TempDir(), "steading.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := &Server{Eng: engine.New(cfg), DB: db, AdminKey: "hunter2"}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/day", nil)
	req.Header.Set("Authorization", "Bearer hunter2")
	rec := httptest.NewRecorder()
	s.handleDay(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["saved"])

	ok, err := db.HasSnapshot()
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDayEndpointRejectsGet(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.handleDay(rec, httptest.NewRequest(http.MethodGet, "/api/v1/day", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSaveEndpointWithoutStore(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.handleSave(rec, httptest.NewRequest(http.MethodPost, "/api/v1/save", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestEventsEndpointHonorsLimit(t *testing.T) {
	s := newTestServer(t)
	for i := 0; i < 30; i++ {
		s.Eng.OpenDay()
		s.Eng.CloseDay()
	}

	rec := httptest.NewRecorder()
	s.handleEvents(rec, httptest.NewRequest(http.MethodGet, "/api/v1/events?limit=5", nil))
	body := decodeBody(t, rec)
	events, ok := body["events"].([]any)
	require.True(t, ok)
	assert.LessOrEqual(t, len(events), 5)
}

func TestProgressionEndpointListsEveryNode(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.handleProgression(rec, httptest.NewRequest(http.MethodGet, "/api/v1/progression", nil))

	body := decodeBody(t, rec)
	techs, ok := body["technologies"].([]any)
	require.True(t, ok)
	assert.Len(t, techs, 4)
	secrets, ok := body["secrets"].([]any)
	require.True(t, ok)
	assert.Len(t, secrets, 3)

	first, ok := techs[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "basic_agriculture", first["id"])
	assert.Equal(t, "locked", first["state"])
}

func TestRateLimiterBucketsPerIP(t *testing.T) {
	rl := NewRateLimiter(0, 2)

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))

	// A different caller gets its own bucket.
	assert.True(t, rl.Allow("10.0.0.2"))
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:4444"
	assert.Equal(t, "192.0.2.1", clientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", clientIP(req))
}
