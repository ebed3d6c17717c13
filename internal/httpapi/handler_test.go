package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ppiankov/wellwatch/internal/guard"
	"github.com/ppiankov/wellwatch/internal/metrics"
	"github.com/ppiankov/wellwatch/internal/scorer"
)

func newTestHandler(t *testing.T) (*Handler, *guard.Guard) {
	t.Helper()
	m := metrics.New("test")
	g := guard.New(scorer.NewDefault(), guard.Options{Metrics: m, LexiconHash: "sha256:test"})
	return New(g, m, nil), g
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestAnalyze(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := do(t, h, http.MethodPost, "/api/analyze", `{"text":"I am anxious, sad and stressed","session_id":"s-1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var v guard.Verdict
	decodeBody(t, rec, &v)
	if v.Assessment.Score != 30 || v.Assessment.Tier != scorer.TierClouded {
		t.Errorf("expected 30/clouded, got %d/%s", v.Assessment.Score, v.Assessment.Tier)
	}
	if v.Action != guard.ActionForward {
		t.Errorf("expected forward, got %s", v.Action)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("expected CORS header")
	}
}

func TestAnalyzeRejectsNonString(t *testing.T) {
	h, _ := newTestHandler(t)

	for _, body := range []string{`{"text":12}`, `{"text":null}`, `{"text":["a"]}`, `{}`} {
		rec := do(t, h, http.MethodPost, "/api/analyze", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", body, rec.Code)
			continue
		}
		var e errorBody
		decodeBody(t, rec, &e)
		if e.Kind != "InvalidInputKind" || e.Field != "text" {
			t.Errorf("%s: unexpected error body %+v", body, e)
		}
	}
}

func TestAnalyzeInvalidJSON(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := do(t, h, http.MethodPost, "/api/analyze", `{"text":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	rec = do(t, h, http.MethodPost, "/api/analyze", `"just a string"`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-object body, got %d", rec.Code)
	}
}

func TestOversizedBody(t *testing.T) {
	h, _ := newTestHandler(t)

	big := `{"text":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	rec := do(t, h, http.MethodPost, "/api/analyze", big)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d: %.200s", rec.Code, rec.Body)
	}
	var body errorBody
	decodeBody(t, rec, &body)
	if !strings.Contains(body.Error, "exceeds") {
		t.Errorf("expected size error, got %q", body.Error)
	}

	rec = do(t, h, http.MethodPost, "/api/analyze", `{"text":"cut off`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for truncated JSON, got %d", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := do(t, h, http.MethodGet, "/api/analyze", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestPreflight(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := do(t, h, http.MethodOptions, "/api/analyze", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("Access-Control-Allow-Methods"), "POST") {
		t.Errorf("unexpected allow methods %q", rec.Header().Get("Access-Control-Allow-Methods"))
	}
}

func TestConversation(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := do(t, h, http.MethodPost, "/api/conversation",
		`{"messages":["I feel so alone","nobody cares about me","I feel hopeless","I feel hopeless again","I give up"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var s guard.Summary
	decodeBody(t, rec, &s)
	if s.Assessment.RiskLevel != scorer.RiskHigh || !s.Assessment.InterventionRequired {
		t.Errorf("expected high, got %+v", s.Assessment)
	}
	if len(s.Resources) == 0 {
		t.Error("expected crisis resources for high risk")
	}
}

func TestConversationRejectsMixedList(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := do(t, h, http.MethodPost, "/api/conversation", `{"messages":["ok", false]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var e errorBody
	decodeBody(t, rec, &e)
	if e.Field != "messages[1]" {
		t.Errorf("expected field messages[1], got %q", e.Field)
	}
}

func TestSessionSummaryAndEnd(t *testing.T) {
	h, g := newTestHandler(t)

	do(t, h, http.MethodPost, "/api/analyze", `{"text":"I want to kill myself","session_id":"s-http"}`)

	rec := do(t, h, http.MethodGet, "/api/sessions/s-http/summary", "")
	var s guard.Summary
	decodeBody(t, rec, &s)
	if s.Assessment.RiskLevel != scorer.RiskCritical || s.Ended {
		t.Fatalf("unexpected summary %+v", s)
	}
	if g.Tracker().Len() != 1 {
		t.Fatal("summary must keep the session")
	}

	rec = do(t, h, http.MethodPost, "/api/sessions/s-http/end", `{"locale":"en-AU"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	decodeBody(t, rec, &s)
	if !s.Ended || s.Assessment.RiskLevel != scorer.RiskCritical {
		t.Fatalf("unexpected end summary %+v", s)
	}
	if len(s.Resources) == 0 || s.Resources[0].Locale != "en-AU" {
		t.Errorf("expected en-AU resources, got %+v", s.Resources)
	}
	if g.Tracker().Len() != 0 {
		t.Error("expected session removed")
	}
}

func TestEndSessionWithoutBody(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := do(t, h, http.MethodPost, "/api/sessions/s-none/end?locale=en-GB", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := do(t, h, http.MethodGet, "/healthz", "")
	var health map[string]any
	decodeBody(t, rec, &health)
	if health["status"] != "ok" || health["lexicon_hash"] != "sha256:test" {
		t.Errorf("unexpected health %v", health)
	}

	do(t, h, http.MethodPost, "/api/analyze", `{"text":"hello"}`)
	rec = do(t, h, http.MethodGet, "/metrics", "")
	if !strings.Contains(rec.Body.String(), `test_assessments_total{tier="clear"} 1`) {
		t.Errorf("expected assessment metric, got:\n%s", rec.Body)
	}
}
