// Driftwood - Personalized Content Discovery
// Copyright 2026 Driftwood Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftwood-io/driftwood

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/driftwood-io/driftwood/internal/config"
	"github.com/driftwood-io/driftwood/internal/discovery"
)

type fakeEngine struct {
	selection *discovery.Selection
	err       error
	diag      discovery.SessionDiagnostics
	diagOK    bool
	lastReq   discovery.Request
}

func (f *fakeEngine) Next(ctx context.Context, req discovery.Request) (*discovery.Selection, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.selection, nil
}

func (f *fakeEngine) SessionDiagnostics(userID, sessionID string) (discovery.SessionDiagnostics, bool) {
	return f.diag, f.diagOK
}

func (f *fakeEngine) Stats() discovery.EngineStats {
	return discovery.EngineStats{Requests: 7, ActiveSessions: 2}
}

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(ctx context.Context) error {
	return f.err
}

func newTestServer(engine *fakeEngine, db Pinger) http.Handler {
	router := NewRouter(NewHandler(engine, db), &config.APIConfig{
		RateLimitReqs:     1000,
		RateLimitWindow:   time.Minute,
		RateLimitDisabled: true,
		CORSOrigins:       []string{"*"},
	})
	return router.Setup()
}

func TestDiscoverNextOK(t *testing.T) {
	engine := &fakeEngine{selection: &discovery.Selection{
		CandidateID: "c1",
		Domain:      "a.com",
		Score:       0.87,
		Wildness:    40,
		PoolSize:    12,
	}}
	srv := newTestServer(engine, &fakePinger{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/api/v1/discover/next?user_id=u1&session_id=s1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}

	var sel discovery.Selection
	if err := json.Unmarshal(rec.Body.Bytes(), &sel); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if sel.CandidateID != "c1" || sel.PoolSize != 12 {
		t.Errorf("selection = %+v, want the engine's pick", sel)
	}

	if engine.lastReq.UserID != "u1" || engine.lastReq.SessionID != "s1" {
		t.Errorf("engine got request %+v", engine.lastReq)
	}
	if engine.lastReq.RequestID == "" {
		t.Error("request id not propagated to the engine")
	}
}

func TestDiscoverNextMissingParams(t *testing.T) {
	srv := newTestServer(&fakeEngine{}, &fakePinger{})

	tests := []string{
		"/api/v1/discover/next",
		"/api/v1/discover/next?user_id=u1",
		"/api/v1/discover/next?session_id=s1",
	}
	for _, target := range tests {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rec.Code)
		}
	}
}

func TestDiscoverNextNoContent(t *testing.T) {
	engine := &fakeEngine{err: discovery.ErrNoContentAvailable}
	srv := newTestServer(engine, &fakePinger{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/api/v1/discover/next?user_id=u1&session_id=s1", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal error body: %v", err)
	}
	if resp.Error != "no_content" {
		t.Errorf("error code = %q, want no_content", resp.Error)
	}
}

func TestDiscoverNextInternalError(t *testing.T) {
	engine := &fakeEngine{err: errors.New("boom")}
	srv := newTestServer(engine, &fakePinger{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/api/v1/discover/next?user_id=u1&session_id=s1", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestSessionDiagnosticsFound(t *testing.T) {
	engine := &fakeEngine{
		diag: discovery.SessionDiagnostics{
			ShownCount:   3,
			DomainWindow: []string{"a.com", "b.com"},
		},
		diagOK: true,
	}
	srv := newTestServer(engine, &fakePinger{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/api/v1/discover/session/s1?user_id=u1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var diag discovery.SessionDiagnostics
	if err := json.Unmarshal(rec.Body.Bytes(), &diag); err != nil {
		t.Fatalf("unmarshal diagnostics: %v", err)
	}
	if diag.ShownCount != 3 || len(diag.DomainWindow) != 2 {
		t.Errorf("diagnostics = %+v", diag)
	}
}

func TestSessionDiagnosticsNotFound(t *testing.T) {
	srv := newTestServer(&fakeEngine{diagOK: false}, &fakePinger{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/api/v1/discover/session/missing?user_id=u1", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestStats(t *testing.T) {
	srv := newTestServer(&fakeEngine{}, &fakePinger{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var stats discovery.EngineStats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("unmarshal stats: %v", err)
	}
	if stats.Requests != 7 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(&fakeEngine{}, &fakePinger{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("live status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("ready status = %d, want 200", rec.Code)
	}
}

func TestHealthReadyStorageDown(t *testing.T) {
	srv := newTestServer(&fakeEngine{}, &fakePinger{err: errors.New("connection refused")})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("ready status = %d, want 503", rec.Code)
	}
}

func TestRequestIDHeaderSet(t *testing.T) {
	engine := &fakeEngine{selection: &discovery.Selection{CandidateID: "c1"}}
	srv := newTestServer(engine, &fakePinger{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/api/v1/discover/next?user_id=u1&session_id=s1", nil))

	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}
}
