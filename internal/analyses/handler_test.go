package analyses

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func setupAnalysisRouter(t *testing.T, p Pipeline) (*gin.Engine, *Service, *fakeClock) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc, _ := setupService(t, p)
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	h := &Handler{Svc: svc, PollLimiter: newPollLimiter(time.Second, clock.now)}
	r := gin.New()
	h.RegisterRoutes(r.Group("/api"))
	return r, svc, clock
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return env.Error.Code
}

func TestStartAnalysisLifecycle(t *testing.T) {
	p := newGatedPipeline(`{"skills_breakdown":[]}`)
	r, svc, clock := setupAnalysisRouter(t, p)

	w := doRequest(r, http.MethodGet, "/api/analysis-result", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before any run, got %d", w.Code)
	}

	w = doRequest(r, http.MethodPost, "/api/start-analysis", `{"skills":["Project Manager"]}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", w.Code, w.Body.String())
	}
	var started struct {
		Status  string `json:"status"`
		ID      string `json:"id"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &started); err != nil {
		t.Fatalf("decode start: %v", err)
	}
	if started.Status != "started" || started.ID == "" || started.Message != "Analysis started for: Project Manager" {
		t.Fatalf("unexpected start response %+v", started)
	}

	w = doRequest(r, http.MethodPost, "/api/start-analysis", "")
	if w.Code != http.StatusConflict || errorCode(t, w) != ErrorCodeRunning {
		t.Fatalf("expected 409 analysis_running, got %d %s", w.Code, w.Body.String())
	}

	<-p.reported
	w = doRequest(r, http.MethodGet, "/api/analysis-status", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var status struct {
		Status   string `json:"status"`
		Progress int    `json:"progress"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &status)
	if status.Status != StatusRunning || status.Progress != 40 {
		t.Fatalf("unexpected status %+v", status)
	}

	w = doRequest(r, http.MethodGet, "/api/analysis-result", "")
	if w.Code != http.StatusConflict || errorCode(t, w) != ErrorCodePending {
		t.Fatalf("expected 409 analysis_pending, got %d %s", w.Code, w.Body.String())
	}

	close(p.release)
	svc.Wait()

	clock.t = clock.t.Add(2 * time.Second)
	w = doRequest(r, http.MethodGet, "/api/analysis-status", "")
	_ = json.Unmarshal(w.Body.Bytes(), &status)
	if status.Status != StatusCompleted || status.Progress != 100 {
		t.Fatalf("expected completed status, got %+v", status)
	}

	w = doRequest(r, http.MethodGet, "/api/analysis-result", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var result struct {
		Status   string          `json:"status"`
		Data     json.RawMessage `json:"data"`
		FilePath string          `json:"file_path"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.Status != StatusCompleted || !strings.Contains(string(result.Data), "skills_breakdown") || result.FilePath == "" {
		t.Fatalf("unexpected result %+v", result)
	}

	w = doRequest(r, http.MethodGet, "/api/download-result", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected download 200, got %d", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, started.ID) {
		t.Fatalf("expected filename with run id, got %q", cd)
	}
	if !strings.Contains(w.Body.String(), "skills_breakdown") {
		t.Fatalf("unexpected artifact body %q", w.Body.String())
	}
}

func TestStartAnalysisRejectsMalformedBody(t *testing.T) {
	r, _, _ := setupAnalysisRouter(t, newGatedPipeline(`{}`))
	w := doRequest(r, http.MethodPost, "/api/start-analysis", `{"skills":`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestStatusPollingIsRateLimited(t *testing.T) {
	r, _, clock := setupAnalysisRouter(t, newGatedPipeline(`{}`))

	w := doRequest(r, http.MethodGet, "/api/analysis-status", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var status map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &status)
	if status["status"] != StatusIdle {
		t.Fatalf("expected idle, got %v", status)
	}

	w = doRequest(r, http.MethodGet, "/api/analysis-status", "")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") != "1" {
		t.Fatalf("expected Retry-After 1, got %q", w.Header().Get("Retry-After"))
	}

	clock.t = clock.t.Add(time.Second)
	w = doRequest(r, http.MethodGet, "/api/analysis-status", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 after window, got %d", w.Code)
	}
}
