package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/services/health"
	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/shared/config"
)

func TestHealthReportsDegradedCheck(t *testing.T) {
	svc := health.NewService()
	svc.Register("redis", func(context.Context) error { return errors.New("connection refused") })
	r := NewRouter(RouterDeps{Config: config.Config{Env: "test"}, Health: svc})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "degraded" || body.Checks["redis"] == "ok" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestHealthWithoutChecks(t *testing.T) {
	r := NewRouter(RouterDeps{Config: config.Config{Env: "test"}})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := w.Header().Get("X-Request-Id"); got == "" {
		t.Fatalf("expected request id header")
	}
}

func TestUnknownRouteUsesErrorEnvelope(t *testing.T) {
	r := NewRouter(RouterDeps{Config: config.Config{Env: "test"}})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/missing", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Error.Code != "not_found" {
		t.Fatalf("unexpected code %q", env.Error.Code)
	}
}

func TestAddr(t *testing.T) {
	if got := Addr(""); got != ":8080" {
		t.Fatalf("unexpected default addr %q", got)
	}
	if got := Addr("9000"); got != ":9000" {
		t.Fatalf("unexpected addr %q", got)
	}
}
