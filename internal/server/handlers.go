package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/claude/repwise/internal/advisor"
	"github.com/claude/repwise/internal/models"
	"github.com/claude/repwise/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// defaultUserID scopes all data in single-user deployments.
const defaultUserID = 1

// processWeekRequest is the body of POST /api/v1/weeks/process. WeekNumber
// 0 means "the week after the latest recorded one" (1 for an empty history).
type processWeekRequest struct {
	WeekNumber int     `json:"week_number"`
	TestMax    float64 `json:"test_max"`
}

func (s *Server) handleProcessWeek(w http.ResponseWriter, r *http.Request) {
	var req processWeekRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	decision, err := s.advisor.ProcessAndStore(r.Context(), s.db, defaultUserID, req.WeekNumber, req.TestMax)
	if err != nil {
		if errors.Is(err, advisor.ErrInvalidInput) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		s.log.Error("processing week", "week", req.WeekNumber, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	s.log.Info("week processed",
		"week", decision.WeekNumber,
		"algorithm", decision.Algorithm,
		"reliability", decision.Reliability,
		"beginner", decision.IsBeginnerMode,
	)
	writeJSON(w, http.StatusOK, decision)
}

func (s *Server) handleListWeeks(w http.ResponseWriter, r *http.Request) {
	weeks, err := s.db.QueryWeeks(r.Context(), defaultUserID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, weeks)
}

func (s *Server) handleGetWeek(w http.ResponseWriter, r *http.Request) {
	weekNumber, err := strconv.Atoi(chi.URLParam(r, "week"))
	if err != nil || weekNumber < 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid week number"})
		return
	}

	week, err := s.db.GetWeek(r.Context(), defaultUserID, weekNumber)
	if err != nil {
		if errors.Is(err, storage.ErrWeekNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "week not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, week)
}

func (s *Server) handleCurrentPlan(w http.ResponseWriter, r *http.Request) {
	week, err := s.db.CurrentWeek(r.Context(), defaultUserID)
	if err != nil {
		if errors.Is(err, storage.ErrWeekNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no weeks recorded yet"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"week_number": week.WeekNumber,
		"algorithm":   week.SelectedAlgorithm,
		"plan":        week.Plan,
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var session models.SessionRecord
	if err := json.NewDecoder(r.Body).Decode(&session); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if err := session.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	if session.Status == "" {
		session.Status = models.StatusPlanned
	}

	inserted, err := s.db.InsertSession(r.Context(), defaultUserID, session)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": session.ID, "inserted": inserted})
}

// sessionResultRequest is the body of POST /api/v1/sessions/{id}/result.
type sessionResultRequest struct {
	ActualReps      int      `json:"actual_reps"`
	Feedback        *string  `json:"feedback"`
	ReserveEstimate *float64 `json:"reserve_estimate"`
}

func (s *Server) handleSessionResult(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session ID"})
		return
	}

	var req sessionResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if fb := req.Feedback; fb != nil {
		switch *fb {
		case models.FeedbackEasy, models.FeedbackPerfect, models.FeedbackImpossible:
		default:
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown feedback value"})
			return
		}
	}

	if err := s.db.UpdateSessionResult(r.Context(), defaultUserID, id, req.ActualReps, req.Feedback, req.ReserveEstimate); err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

func (s *Server) handleScoringHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.db.QueryScoringEntries(r.Context(), defaultUserID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleProgressStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.GetProgressStats(r.Context(), defaultUserID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
