package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func testServer() *Server {
	return &Server{log: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// withURLParam injects a chi route parameter so handlers can be exercised
// without the full router.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// TestHandleProcessWeekBadJSON verifies malformed request bodies are
// rejected before any history is loaded.
func TestHandleProcessWeekBadJSON(t *testing.T) {
	s := testServer()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/weeks/process", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	s.handleProcessWeek(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if body["error"] == "" {
		t.Error("expected error message in response body")
	}
}

// TestHandleGetWeekInvalidParam verifies non-numeric and out-of-range week
// parameters are rejected with 400.
func TestHandleGetWeekInvalidParam(t *testing.T) {
	s := testServer()
	for _, param := range []string{"abc", "0", "-2"} {
		req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/weeks/"+param, nil), "week", param)
		rec := httptest.NewRecorder()

		s.handleGetWeek(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("param %q: status = %d, want 400", param, rec.Code)
		}
	}
}

// TestHandleCreateSessionValidation verifies invalid session payloads are
// rejected before touching storage.
func TestHandleCreateSessionValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"bad json", "{"},
		{"day out of range", `{"week_number":1,"day_number":9,"type":"training"}`},
		{"bad type", `{"week_number":1,"day_number":2,"type":"cardio"}`},
		{"bad feedback", `{"week_number":1,"day_number":2,"type":"training","feedback":"meh"}`},
		{"bad week", `{"week_number":0,"day_number":2,"type":"training"}`},
	}
	s := testServer()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()

			s.handleCreateSession(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

// TestHandleSessionResultInvalidID verifies a malformed UUID is rejected.
func TestHandleSessionResultInvalidID(t *testing.T) {
	s := testServer()
	req := withURLParam(httptest.NewRequest(http.MethodPost, "/api/v1/sessions/nope/result", strings.NewReader("{}")), "id", "nope")
	rec := httptest.NewRecorder()

	s.handleSessionResult(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// TestHandleSessionResultBadFeedback verifies unknown feedback values are
// rejected with 400 rather than stored.
func TestHandleSessionResultBadFeedback(t *testing.T) {
	s := testServer()
	body := `{"actual_reps":20,"feedback":"brutal"}`
	req := withURLParam(
		httptest.NewRequest(http.MethodPost, "/api/v1/sessions/6f1c6f60-6a7b-4a5e-9c39-1f9b9a1f0001/result", strings.NewReader(body)),
		"id", "6f1c6f60-6a7b-4a5e-9c39-1f9b9a1f0001")
	rec := httptest.NewRecorder()

	s.handleSessionResult(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
