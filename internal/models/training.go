package models

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

// Feedback values a user can attach to a completed session.
const (
	FeedbackEasy       = "easy"
	FeedbackPerfect    = "perfect"
	FeedbackImpossible = "impossible"
)

// Session types. Day 1 of each week is the capacity test; days 2-7 are
// training sessions executed against the weekly plan.
const (
	SessionTypeTest     = "test"
	SessionTypeTraining = "training"
)

// Week / session lifecycle states.
const (
	StatusPlanned   = "planned"
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusSkipped   = "skipped"
)

// Algorithm names, in declared order. The order matters: composite-score
// ties resolve to the earliest declared eligible algorithm.
const (
	AlgorithmLinear     = "linear"
	AlgorithmBanister   = "banister"
	AlgorithmDUP        = "dup"
	AlgorithmRIR        = "rir"
	AlgorithmRegression = "regression"
)

// AlgorithmOrder is the canonical declaration order used for eligibility
// filtering and tie-breaking.
var AlgorithmOrder = []string{
	AlgorithmLinear,
	AlgorithmBanister,
	AlgorithmDUP,
	AlgorithmRIR,
	AlgorithmRegression,
}

// DailyPlan prescribes one training day: how many sets of how many reps,
// how long to rest between sets, and the kind of work being done.
type DailyPlan struct {
	Sets         int    `json:"sets"`
	Reps         int    `json:"reps"`
	RestSeconds  int    `json:"rest_seconds"`
	TrainingType string `json:"training_type"`
}

// PlanDays is the number of training days in a weekly plan (days 2-7;
// day 1 is the capacity test).
const PlanDays = 6

// WeekPlan is a full week of prescribed training days.
type WeekPlan [PlanDays]DailyPlan

// TotalVolume returns the planned rep volume (sets × reps summed) of the week.
func (p WeekPlan) TotalVolume() int {
	total := 0
	for _, d := range p {
		total += d.Sets * d.Reps
	}
	return total
}

// FeedbackSummary aggregates one week's session feedback.
type FeedbackSummary struct {
	Easy         int     `json:"easy"`
	Perfect      int     `json:"perfect"`
	Impossible   int     `json:"impossible"`
	AvgReserve   float64 `json:"avg_reserve"`
	VolumeTarget int     `json:"volume_target"`
	VolumeActual int     `json:"volume_actual"`
}

// Sessions returns the number of sessions with any feedback recorded.
func (f FeedbackSummary) Sessions() int {
	return f.Easy + f.Perfect + f.Impossible
}

// WeekRecord is one week of the training history. TestMax is nil until the
// capacity test has been performed. Past weeks are immutable; exactly one
// week is current at any time.
type WeekRecord struct {
	WeekNumber        int                 `json:"week_number"`
	TestMax           *float64            `json:"test_max,omitempty"`
	SelectedAlgorithm string              `json:"selected_algorithm"`
	AlgorithmScores   map[string]Score    `json:"algorithm_scores,omitempty"`
	Predictions       map[string]*float64 `json:"predictions,omitempty"`
	Plan              *WeekPlan           `json:"plan,omitempty"`
	Feedback          *FeedbackSummary    `json:"feedback_summary,omitempty"`
	Sessions          []SessionRecord     `json:"sessions,omitempty"`
	Status            string              `json:"status"`
}

// SessionRecord is one executed (or planned) session within a week.
type SessionRecord struct {
	ID              uuid.UUID `json:"id"`
	WeekNumber      int       `json:"week_number"`
	DayNumber       int       `json:"day_number"`
	Type            string    `json:"type"`
	PlannedSets     int       `json:"planned_sets"`
	PlannedReps     int       `json:"planned_reps"`
	ActualReps      int       `json:"actual_reps"`
	Feedback        *string   `json:"feedback,omitempty"`
	ReserveEstimate *float64  `json:"reserve_estimate,omitempty"`
	Status          string    `json:"status"`
}

// Validate checks the structural invariants of a session record.
func (s SessionRecord) Validate() error {
	if s.WeekNumber < 1 {
		return fmt.Errorf("week_number %d: must be >= 1", s.WeekNumber)
	}
	if s.DayNumber < 1 || s.DayNumber > 7 {
		return fmt.Errorf("day_number %d: must be in [1,7]", s.DayNumber)
	}
	if s.Type != SessionTypeTest && s.Type != SessionTypeTraining {
		return fmt.Errorf("type %q: must be %q or %q", s.Type, SessionTypeTest, SessionTypeTraining)
	}
	if fb := s.Feedback; fb != nil {
		switch *fb {
		case FeedbackEasy, FeedbackPerfect, FeedbackImpossible:
		default:
			return fmt.Errorf("feedback %q: unknown value", *fb)
		}
	}
	return nil
}

// PredictionOutcome pairs one algorithm's prediction for a week with the
// capacity actually measured at the next test.
type PredictionOutcome struct {
	Prediction *float64 `json:"prediction"`
	Actual     *float64 `json:"actual_outcome"`
}

// ScoringEntry is one append-only row of the model-selection audit trail.
type ScoringEntry struct {
	WeekNumber        int                          `json:"week_number"`
	PerAlgorithm      map[string]PredictionOutcome `json:"per_algorithm"`
	SelectedAlgorithm string                       `json:"selected_algorithm"`
	Reasoning         string                       `json:"reasoning"`
}

// Score is one algorithm's weekly scorecard. All components are in [0,100].
type Score struct {
	Prediction     *float64 `json:"prediction,omitempty"`
	PrecisionScore float64  `json:"precision_score"`
	FeedbackScore  float64  `json:"feedback_score"`
	TrendScore     float64  `json:"trend_score"`
	CompositeScore float64  `json:"composite_score"`
}

// Plan safety bounds. Every plan returned by the advisor satisfies these.
const (
	MinSets        = 2
	MaxSets        = 10
	MinReps        = 3
	MinRestSeconds = 20
	MaxRestSeconds = 180
)

// MaxReps returns the per-day rep ceiling for a given capacity test result:
// ceil(testMax × 1.2), floored at MinReps so the interval never inverts for
// very low capacities.
func MaxReps(testMax float64) int {
	hi := int(math.Ceil(testMax * 1.2))
	if hi < MinReps {
		return MinReps
	}
	return hi
}

// BeginnerThreshold is the capacity below which all modeling is bypassed in
// favor of the fixed beginner plan.
const BeginnerThreshold = 5.0

// TrainingTypeTechnique is the day label used by the fixed beginner plan.
const TrainingTypeTechnique = "technique"

// BeginnerPlan returns the fixed plan prescribed whenever the capacity test
// lands below BeginnerThreshold: six identical low-volume technique days.
func BeginnerPlan() WeekPlan {
	var plan WeekPlan
	for i := range plan {
		plan[i] = DailyPlan{Sets: 5, Reps: 3, RestSeconds: 90, TrainingType: TrainingTypeTechnique}
	}
	return plan
}

// LastTestMax returns the most recent recorded capacity test in history,
// or 0 and false when none exists. History is ordered by ascending week.
func LastTestMax(history []WeekRecord) (float64, bool) {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].TestMax != nil {
			return *history[i].TestMax, true
		}
	}
	return 0, false
}

// CapacityPoints extracts (weekNumber, testMax) pairs from history, ascending
// by week, skipping weeks without a recorded test.
func CapacityPoints(history []WeekRecord) (weeks []float64, maxes []float64) {
	for _, w := range history {
		if w.TestMax != nil {
			weeks = append(weeks, float64(w.WeekNumber))
			maxes = append(maxes, *w.TestMax)
		}
	}
	return weeks, maxes
}
