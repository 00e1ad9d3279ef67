package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/claude/repwise/internal/models"
	"github.com/claude/repwise/internal/storage"
)

// newTestServer creates an httptest server that routes requests to handler
// functions keyed by path.
func newTestServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			t.Errorf("unexpected request path: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
}

func writeTestJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatal(err)
	}
}

// TestQueryWeeks verifies the client parses the weeks listing.
func TestQueryWeeks(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/weeks": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, []models.WeekRecord{
				{WeekNumber: 1, SelectedAlgorithm: models.AlgorithmLinear, Status: models.StatusCompleted},
				{WeekNumber: 2, SelectedAlgorithm: models.AlgorithmRIR, Status: models.StatusActive},
			})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL, "")
	weeks, err := client.QueryWeeks(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(weeks) != 2 {
		t.Fatalf("got %d weeks, want 2", len(weeks))
	}
	if weeks[1].SelectedAlgorithm != models.AlgorithmRIR {
		t.Errorf("algorithm = %q, want rir", weeks[1].SelectedAlgorithm)
	}
}

// TestGetWeekNotFound verifies a 404 maps to storage.ErrWeekNotFound so MCP
// handlers treat local and remote sources identically.
func TestGetWeekNotFound(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/weeks/9": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"week not found"}`))
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL, "")
	_, err := client.GetWeek(context.Background(), 1, 9)
	if !errors.Is(err, storage.ErrWeekNotFound) {
		t.Errorf("err = %v, want ErrWeekNotFound", err)
	}
}

// TestCurrentWeekFromListing verifies CurrentWeek takes the last entry of
// the ascending listing, and errors on an empty history.
func TestCurrentWeekFromListing(t *testing.T) {
	empty := false
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/weeks": func(w http.ResponseWriter, r *http.Request) {
			if empty {
				writeTestJSON(t, w, []models.WeekRecord{})
				return
			}
			writeTestJSON(t, w, []models.WeekRecord{
				{WeekNumber: 1}, {WeekNumber: 2}, {WeekNumber: 3},
			})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL, "")
	week, err := client.CurrentWeek(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if week.WeekNumber != 3 {
		t.Errorf("week = %d, want 3", week.WeekNumber)
	}

	empty = true
	if _, err := client.CurrentWeek(context.Background(), 1); !errors.Is(err, storage.ErrWeekNotFound) {
		t.Errorf("err = %v, want ErrWeekNotFound on empty history", err)
	}
}

// TestProcessWeekSendsAPIKey verifies the mutating call carries the API key
// and decodes the returned decision.
func TestProcessWeekSendsAPIKey(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/weeks/process": func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("method = %s, want POST", r.Method)
			}
			if got := r.Header.Get("X-API-Key"); got != "secret" {
				t.Errorf("X-API-Key = %q, want secret", got)
			}
			var req struct {
				WeekNumber int     `json:"week_number"`
				TestMax    float64 `json:"test_max"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatal(err)
			}
			if req.TestMax != 14 {
				t.Errorf("test_max = %v, want 14", req.TestMax)
			}
			writeTestJSON(t, w, map[string]any{
				"week_number": 5,
				"algorithm":   models.AlgorithmLinear,
				"reason":      "first week",
			})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL, "secret")
	decision, err := client.ProcessWeek(context.Background(), 1, 0, 14)
	if err != nil {
		t.Fatal(err)
	}
	if decision.WeekNumber != 5 || decision.Algorithm != models.AlgorithmLinear {
		t.Errorf("decision = (%d, %q), want (5, linear)", decision.WeekNumber, decision.Algorithm)
	}
}

// TestHTTPClientServerError verifies non-200 responses surface as errors
// carrying the response body.
func TestHTTPClientServerError(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/scoring": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"database down"}`))
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL, "")
	if _, err := client.QueryScoringEntries(context.Background(), 1); err == nil {
		t.Fatal("expected error for 500 response")
	}
}
