package advisor

import (
	"reflect"
	"testing"

	"github.com/claude/repwise/internal/models"
)

func fptr(v float64) *float64 { return &v }
func sptr(s string) *string   { return &s }

func historyWeeks(n int, start, perWeek float64) []models.WeekRecord {
	var history []models.WeekRecord
	for i := 1; i <= n; i++ {
		w := models.WeekRecord{
			WeekNumber:        i,
			TestMax:           fptr(start + float64(i-1)*perWeek),
			SelectedAlgorithm: models.AlgorithmLinear,
			Status:            models.StatusCompleted,
			Feedback:          &models.FeedbackSummary{Perfect: 6},
		}
		for d := 2; d <= 7; d++ {
			w.Sessions = append(w.Sessions, models.SessionRecord{
				WeekNumber: i, DayNumber: d,
				Type:        models.SessionTypeTraining,
				PlannedSets: 4, PlannedReps: 8, ActualReps: 30,
				Feedback: sptr(models.FeedbackPerfect),
				Status:   models.StatusCompleted,
			})
		}
		history = append(history, w)
	}
	return history
}

// TestColdStartEndToEnd verifies the cold-start path:
// processNewWeek(1, 12, [], [], false) returns linear, no scores, a six-day
// plan, and no beginner mode.
func TestColdStartEndToEnd(t *testing.T) {
	d, err := New().ProcessNewWeek(1, 12, nil, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	if d.Algorithm != models.AlgorithmLinear {
		t.Errorf("algorithm = %q, want linear", d.Algorithm)
	}
	if d.Scores != nil {
		t.Errorf("scores = %v, want nil on cold start", d.Scores)
	}
	if d.IsBeginnerMode {
		t.Error("beginner mode set for testMax 12")
	}
	if d.Reason != "first week" {
		t.Errorf("reason = %q, want %q", d.Reason, "first week")
	}
	if len(d.Plan) != models.PlanDays {
		t.Errorf("plan has %d days, want %d", len(d.Plan), models.PlanDays)
	}
}

// TestInvalidInputsFailFast verifies malformed inputs error out instead of
// producing a degraded decision.
func TestInvalidInputsFailFast(t *testing.T) {
	a := New()
	if _, err := a.ProcessNewWeek(0, 12, nil, nil, false); err == nil {
		t.Error("expected error for week 0")
	}
	if _, err := a.ProcessNewWeek(-3, 12, nil, nil, false); err == nil {
		t.Error("expected error for negative week")
	}
	if _, err := a.ProcessNewWeek(2, 0, nil, nil, false); err == nil {
		t.Error("expected error for testMax 0")
	}
}

// TestBeginnerOverride verifies the global override for testMax 1..4:
// algorithm pinned to linear, beginner mode flagged, and every day fixed at
// 5×3 with 90s rest, bypassing scoring entirely.
func TestBeginnerOverride(t *testing.T) {
	history := historyWeeks(5, 10, 1)
	for testMax := 1.0; testMax < 5; testMax++ {
		d, err := New().ProcessNewWeek(6, testMax, history, nil, false)
		if err != nil {
			t.Fatalf("testMax %v: %v", testMax, err)
		}
		if d.Algorithm != models.AlgorithmLinear {
			t.Errorf("testMax %v: algorithm = %q, want linear", testMax, d.Algorithm)
		}
		if !d.IsBeginnerMode {
			t.Errorf("testMax %v: beginner mode not set", testMax)
		}
		if d.Scores != nil {
			t.Errorf("testMax %v: scoring ran despite beginner override", testMax)
		}
		for day, p := range d.Plan {
			if p.Sets != 5 || p.Reps != 3 || p.RestSeconds != 90 {
				t.Errorf("testMax %v day %d = %d×%d rest %d, want 5×3 rest 90",
					testMax, day+2, p.Sets, p.Reps, p.RestSeconds)
			}
		}
	}
}

// TestImpossibleRule verifies the correction: 4×10 rest 60 becomes 8×5 rest
// 45, and the subsequent safety clamp leaves it alone.
func TestImpossibleRule(t *testing.T) {
	plan := models.WeekPlan{}
	for i := range plan {
		plan[i] = models.DailyPlan{Sets: 4, Reps: 10, RestSeconds: 60, TrainingType: "volume"}
	}
	applyImpossibleRule(&plan)
	clampPlan(&plan, 12)

	for i, d := range plan {
		if d.Sets != 8 || d.Reps != 5 || d.RestSeconds != 45 {
			t.Errorf("day %d = %d×%d rest %d, want 8×5 rest 45", i+2, d.Sets, d.Reps, d.RestSeconds)
		}
	}
}

// TestImpossibleRuleRestFloor verifies rest never corrects below 30s.
func TestImpossibleRuleRestFloor(t *testing.T) {
	plan := models.WeekPlan{}
	for i := range plan {
		plan[i] = models.DailyPlan{Sets: 3, Reps: 9, RestSeconds: 35}
	}
	applyImpossibleRule(&plan)
	for i, d := range plan {
		if d.RestSeconds != 30 {
			t.Errorf("day %d rest = %d, want floored at 30", i+2, d.RestSeconds)
		}
		if d.Reps != 5 {
			t.Errorf("day %d reps = %d, want ceil(9/2) = 5", i+2, d.Reps)
		}
	}
}

// TestImpossibleRuleAppliedEndToEnd verifies the correction reaches the
// returned plan when the previous week had a failed session.
func TestImpossibleRuleAppliedEndToEnd(t *testing.T) {
	history := historyWeeks(4, 10, 1)
	a := New()

	normal, err := a.ProcessNewWeek(5, 14, history, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	corrected, err := a.ProcessNewWeek(5, 14, history, nil, true)
	if err != nil {
		t.Fatal(err)
	}

	for i := range corrected.Plan {
		if corrected.Plan[i].Reps > normal.Plan[i].Reps {
			t.Errorf("day %d: corrected reps %d exceed normal %d", i+2,
				corrected.Plan[i].Reps, normal.Plan[i].Reps)
		}
	}
	if normal.Plan == corrected.Plan {
		t.Error("impossible flag had no effect on the plan")
	}
}

// TestSafetyClampClosure verifies that whatever path produces the plan, the
// returned days always satisfy the safety bounds.
func TestSafetyClampClosure(t *testing.T) {
	histories := [][]models.WeekRecord{
		nil,
		historyWeeks(1, 6, 0),
		historyWeeks(3, 8, 2),
		historyWeeks(8, 10, 3),
	}
	weeks := []int{1, 2, 4, 9}
	maxes := []float64{5, 7, 12, 31}

	a := New()
	for hi, history := range histories {
		for _, impossible := range []bool{false, true} {
			d, err := a.ProcessNewWeek(weeks[hi], maxes[hi], history, nil, impossible)
			if err != nil {
				t.Fatalf("history %d impossible=%v: %v", hi, impossible, err)
			}
			maxReps := models.MaxReps(maxes[hi])
			for day, p := range d.Plan {
				if p.Sets < models.MinSets || p.Sets > models.MaxSets {
					t.Errorf("history %d day %d: sets %d out of bounds", hi, day+2, p.Sets)
				}
				if p.Reps < models.MinReps || p.Reps > maxReps {
					t.Errorf("history %d day %d: reps %d out of [%d,%d]", hi, day+2, p.Reps, models.MinReps, maxReps)
				}
				if p.RestSeconds < models.MinRestSeconds || p.RestSeconds > models.MaxRestSeconds {
					t.Errorf("history %d day %d: rest %d out of bounds", hi, day+2, p.RestSeconds)
				}
			}
		}
	}
}

// TestDeterminism verifies identical inputs yield identical decisions.
func TestDeterminism(t *testing.T) {
	history := historyWeeks(6, 10, 1)
	scoringHistory := []models.ScoringEntry{
		{WeekNumber: 5, PerAlgorithm: map[string]models.PredictionOutcome{
			"linear": {Prediction: fptr(14.5), Actual: fptr(15)},
			"rir":    {Prediction: fptr(15.2), Actual: fptr(15)},
		}},
	}

	a := New()
	first, err := a.ProcessNewWeek(7, 16, history, scoringHistory, false)
	if err != nil {
		t.Fatal(err)
	}
	second, err := a.ProcessNewWeek(7, 16, history, scoringHistory, false)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("decisions differ:\n%+v\n%+v", first, second)
	}
}

// TestFullFieldScoring verifies that past week 3 all five strategies compete
// and the decision carries a prediction entry for each of them.
func TestFullFieldScoring(t *testing.T) {
	history := historyWeeks(5, 10, 1)
	d, err := New().ProcessNewWeek(6, 15, history, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Predictions) != 5 {
		t.Errorf("predictions for %d strategies, want 5", len(d.Predictions))
	}
	if len(d.Scores) != 5 {
		t.Errorf("scores for %d strategies, want 5", len(d.Scores))
	}
	if d.Reason == "" {
		t.Error("empty reason")
	}
	for name, s := range d.Scores {
		for field, v := range map[string]float64{
			"precision": s.PrecisionScore,
			"feedback":  s.FeedbackScore,
			"trend":     s.TrendScore,
			"composite": s.CompositeScore,
		} {
			if v < 0 || v > 100 {
				t.Errorf("%s %s score = %v, outside [0,100]", name, field, v)
			}
		}
	}
}
