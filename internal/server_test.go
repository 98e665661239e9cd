package internal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/v0gen/v0gen/testutil"
)

var errTestOverloaded = errors.New("529: overloaded_error")

func newTestServer(t *testing.T, backend Backend) (*Server, *SessionStore) {
	t.Helper()
	cfg := LoadConfig()
	store := NewSessionStore(testutil.CreateInMemoryDB(t))
	runner := NewRunner(store, backend, time.Minute)
	return NewServer(cfg, store, runner), store
}

func decodeSSE(t *testing.T, body string) []Event {
	t.Helper()
	var events []Event
	for _, line := range strings.Split(body, "\n") {
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev Event
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
			t.Fatalf("bad wire line %q: %v", line, err)
		}
		events = append(events, ev)
	}
	return events
}

func TestGenerateEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, &fakeBackend{events: counterAppEvents()})

	body := strings.NewReader(`{"prompt": "Build a counter app"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/generate", body)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", ct)
	}
	if cc := rec.Header().Get("Cache-Control"); cc != "no-cache" {
		t.Errorf("Cache-Control = %q, want no-cache", cc)
	}

	events := decodeSSE(t, rec.Body.String())
	if len(events) < 3 {
		t.Fatalf("decoded %d events, want a full run", len(events))
	}
	if events[0].Type != EventSessionCreated {
		t.Errorf("first event = %v, want session_created", events[0].Type)
	}
	last := events[len(events)-1]
	if last.Type != EventComplete {
		t.Errorf("last event = %v, want complete", last.Type)
	}
	if last.Metadata == nil || last.Metadata.TotalFiles != 2 {
		t.Errorf("complete metadata = %+v, want 2 files", last.Metadata)
	}
}

func TestGenerateEndpointValidation(t *testing.T) {
	srv, _ := newTestServer(t, &fakeBackend{})

	tests := []struct {
		name   string
		method string
		body   string
		want   int
	}{
		{"empty prompt", http.MethodPost, `{"prompt": ""}`, http.StatusBadRequest},
		{"malformed body", http.MethodPost, `{not json`, http.StatusBadRequest},
		{"wrong method", http.MethodGet, "", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/generate", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestGenerateEndpointBackendFailure(t *testing.T) {
	backend := &fakeBackend{err: &PipelineError{Stage: StagePlanning, Err: errTestOverloaded}}
	srv, _ := newTestServer(t, backend)

	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(`{"prompt": "x"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	events := decodeSSE(t, rec.Body.String())
	if len(events) == 0 {
		t.Fatal("no events decoded")
	}
	last := events[len(events)-1]
	if last.Type != EventError {
		t.Fatalf("last event = %v, want error", last.Type)
	}
	if !strings.Contains(last.Message, "overloaded") {
		t.Errorf("error message = %q, want overload classification", last.Message)
	}
}

func TestListSessionsEndpoint(t *testing.T) {
	srv, store := newTestServer(t, &fakeBackend{})
	seedStoreSessions(t, store, 3)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions?page=1&page_size=2", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Sessions []json.RawMessage `json:"sessions"`
		Total    int               `json:"total"`
		Page     int               `json:"page"`
		PageSize int               `json:"page_size"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.Total != 3 {
		t.Errorf("total = %d, want 3", resp.Total)
	}
	if len(resp.Sessions) != 2 {
		t.Errorf("sessions = %d, want page of 2", len(resp.Sessions))
	}
	if resp.Page != 1 || resp.PageSize != 2 {
		t.Errorf("page = %d size = %d", resp.Page, resp.PageSize)
	}
}

func TestClearSessionEndpoint(t *testing.T) {
	srv, store := newTestServer(t, &fakeBackend{})
	ids := seedStoreSessions(t, store, 1)

	body := strings.NewReader(`{"session_id": "` + ids[0] + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/sessions/clear", body)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("status field = %q, want ok", resp["status"])
	}
}

func TestClearSessionEndpointErrors(t *testing.T) {
	srv, _ := newTestServer(t, &fakeBackend{})

	tests := []struct {
		name string
		body string
		want int
	}{
		{"unknown session", `{"session_id": "nope"}`, http.StatusNotFound},
		{"missing id", `{}`, http.StatusBadRequest},
		{"malformed body", `{`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/sessions/clear", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, &fakeBackend{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp["status"] != "healthy" {
		t.Errorf("status field = %q, want healthy", resp["status"])
	}
}

func TestCORSHeaders(t *testing.T) {
	srv, _ := newTestServer(t, &fakeBackend{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if origin := rec.Header().Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Errorf("Allow-Origin = %q, want *", origin)
	}

	preflight := httptest.NewRequest(http.MethodOptions, "/api/generate", nil)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, preflight)
	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", rec.Code)
	}
}

// seedStoreSessions creates n sessions through the store and returns their ids.
func seedStoreSessions(t *testing.T, store *SessionStore, n int) []string {
	t.Helper()
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		sess, err := store.GetOrCreate(context.Background(), DefaultUserID, "")
		if err != nil {
			t.Fatalf("failed to seed session: %v", err)
		}
		ids = append(ids, sess.ID)
	}
	return ids
}
