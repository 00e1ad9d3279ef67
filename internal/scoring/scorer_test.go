package scoring

import (
	"math"
	"strings"
	"testing"

	"github.com/claude/repwise/internal/models"
)

func fptr(v float64) *float64 { return &v }

func week(number int, testMax float64, selected string, fs *models.FeedbackSummary) models.WeekRecord {
	return models.WeekRecord{
		WeekNumber:        number,
		TestMax:           fptr(testMax),
		SelectedAlgorithm: selected,
		Feedback:          fs,
		Status:            models.StatusCompleted,
	}
}

func entry(weekNum int, perAlgo map[string]models.PredictionOutcome) models.ScoringEntry {
	return models.ScoringEntry{WeekNumber: weekNum, PerAlgorithm: perAlgo}
}

// TestPrecisionScoreNeutralWithoutData verifies the no-data neutral 50.
func TestPrecisionScoreNeutralWithoutData(t *testing.T) {
	if got := PrecisionScore("linear", 5, 12, nil, nil); got != 50 {
		t.Errorf("precision = %v, want neutral 50", got)
	}
}

// TestPrecisionScorePerfectAndMiss verifies the per-week formula
// clamp(100 − relErr×200, 0, 100): an exact prediction scores 100, a 25%
// miss scores 50, a 50% miss scores 0.
func TestPrecisionScorePerfectAndMiss(t *testing.T) {
	cases := []struct {
		name      string
		predicted float64
		actual    float64
		want      float64
	}{
		{"exact", 12, 12, 100},
		{"quarter off", 15, 12, 50},
		{"half off", 18, 12, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hist := []models.ScoringEntry{entry(4, map[string]models.PredictionOutcome{
				"linear": {Prediction: fptr(tc.predicted), Actual: fptr(tc.actual)},
			})}
			got := PrecisionScore("linear", 4, 0, hist, nil)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("precision = %v, want %v", got, tc.want)
			}
		})
	}
}

// TestPrecisionScoreTemporalDecay verifies that a recent accurate week
// outweighs an equally-sized old inaccurate one thanks to the 0.9^weeksAgo
// weighting.
func TestPrecisionScoreTemporalDecay(t *testing.T) {
	hist := []models.ScoringEntry{
		entry(1, map[string]models.PredictionOutcome{
			"linear": {Prediction: fptr(18), Actual: fptr(12)}, // scores 0
		}),
		entry(6, map[string]models.PredictionOutcome{
			"linear": {Prediction: fptr(12), Actual: fptr(12)}, // scores 100
		}),
	}
	got := PrecisionScore("linear", 6, 0, hist, nil)
	if got <= 50 {
		t.Errorf("precision = %v, want > 50 (recent accuracy must dominate)", got)
	}
}

// TestPrecisionScoreIncludesLivePrediction verifies the current week's
// prediction is blended at full weight against the fresh capacity test.
func TestPrecisionScoreIncludesLivePrediction(t *testing.T) {
	withLive := PrecisionScore("linear", 3, 12, nil, fptr(12))
	if withLive != 100 {
		t.Errorf("precision with exact live prediction = %v, want 100", withLive)
	}
}

// TestFeedbackScoreNeutrality verifies the neutrality property: a strategy
// never selected in history scores exactly 50.
func TestFeedbackScoreNeutrality(t *testing.T) {
	history := []models.WeekRecord{
		week(1, 12, "linear", &models.FeedbackSummary{Perfect: 6}),
	}
	if got := FeedbackScore("banister", history); got != 50 {
		t.Errorf("feedback for never-selected strategy = %v, want 50", got)
	}
}

// TestFeedbackScoreFormula verifies clamp(perfectRatio×100 −
// impossibleRatio×150, 0, 100) over selected weeks.
func TestFeedbackScoreFormula(t *testing.T) {
	cases := []struct {
		name string
		fs   models.FeedbackSummary
		want float64
	}{
		{"all perfect", models.FeedbackSummary{Perfect: 6}, 100},
		{"half perfect half easy", models.FeedbackSummary{Perfect: 3, Easy: 3}, 50},
		{"impossible drags below zero", models.FeedbackSummary{Perfect: 1, Impossible: 5}, 0},
		{"mixed", models.FeedbackSummary{Perfect: 4, Impossible: 2}, 400.0/6 - 300.0/6},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			history := []models.WeekRecord{week(1, 12, "dup", &tc.fs)}
			got := FeedbackScore("dup", history)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("feedback = %v, want %v", got, tc.want)
			}
		})
	}
}

// TestTrendScoreClassification verifies the four trend classes and their
// score bands.
func TestTrendScoreClassification(t *testing.T) {
	cases := []struct {
		name  string
		maxes []float64
		check func(float64) bool
		desc  string
	}{
		{"increasing", []float64{10, 12, 14}, func(s float64) bool { return s >= 80 && s <= 100 }, "in [80,100]"},
		{"decreasing", []float64{14, 12, 10}, func(s float64) bool { return s >= 0 && s <= 20 }, "in [0,20]"},
		{"stagnant", []float64{12, 12.1, 12}, func(s float64) bool { return s == 40 }, "exactly 40"},
		{"mixed rising endpoints", []float64{10, 9, 14}, func(s float64) bool { return s >= 80 }, ">= 80"},
		{"mixed falling endpoints", []float64{14, 15, 10}, func(s float64) bool { return s <= 20 }, "<= 20"},
		{"single point", []float64{12}, func(s float64) bool { return s == 50 }, "neutral 50"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var history []models.WeekRecord
			for i, m := range tc.maxes {
				history = append(history, week(i+1, m, "linear", nil))
			}
			got := TrendScore(history)
			if !tc.check(got) {
				t.Errorf("trend = %v, want %s", got, tc.desc)
			}
		})
	}
}

// TestTrendScoreCaps verifies the 100 cap and 0 floor on extreme swings.
func TestTrendScoreCaps(t *testing.T) {
	up := []models.WeekRecord{week(1, 10, "", nil), week(2, 20, "", nil), week(3, 40, "", nil)}
	if got := TrendScore(up); got != 100 {
		t.Errorf("explosive growth trend = %v, want capped at 100", got)
	}
	down := []models.WeekRecord{week(1, 40, "", nil), week(2, 20, "", nil), week(3, 10, "", nil)}
	if got := TrendScore(down); got != 0 {
		t.Errorf("collapse trend = %v, want floored at 0", got)
	}
}

// TestRankTieBreaksToDeclarationOrder verifies the strict > comparison:
// with identical inputs every candidate scores the same and the first
// declared candidate wins.
func TestRankTieBreaksToDeclarationOrder(t *testing.T) {
	candidates := []string{"linear", "banister", "dup", "rir", "regression"}
	sel, err := Rank(candidates, 5, 12, nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if sel.Algorithm != "linear" {
		t.Errorf("tie resolved to %q, want first-declared %q", sel.Algorithm, "linear")
	}
}

// TestRankPrefersAccuratePredictor verifies that a strategy with a strong
// precision record beats neutral competitors.
func TestRankPrefersAccuratePredictor(t *testing.T) {
	scoringHistory := []models.ScoringEntry{
		entry(2, map[string]models.PredictionOutcome{
			"rir":    {Prediction: fptr(12), Actual: fptr(12)},
			"linear": {Prediction: fptr(18), Actual: fptr(12)},
		}),
		entry(3, map[string]models.PredictionOutcome{
			"rir":    {Prediction: fptr(13), Actual: fptr(13)},
			"linear": {Prediction: fptr(19), Actual: fptr(13)},
		}),
	}
	sel, err := Rank([]string{"linear", "rir"}, 4, 13, nil, scoringHistory, nil)
	if err != nil {
		t.Fatal(err)
	}
	if sel.Algorithm != "rir" {
		t.Errorf("selected %q, want %q (perfect precision record)", sel.Algorithm, "rir")
	}
	if !strings.Contains(sel.Reason, "rir") {
		t.Errorf("reason %q does not mention the winner", sel.Reason)
	}
}

// TestRankEmptyCandidates verifies the fail-fast on an empty field.
func TestRankEmptyCandidates(t *testing.T) {
	if _, err := Rank(nil, 5, 12, nil, nil, nil); err == nil {
		t.Error("expected error for empty candidate list")
	}
}

// TestReliabilityLadder verifies the evidence thresholds.
func TestReliabilityLadder(t *testing.T) {
	cases := []struct {
		weeks    int
		eligible int
		want     string
	}{
		{0, 5, ReliabilityUnreliable},
		{1, 5, ReliabilityUnreliable},
		{4, 2, ReliabilityUnreliable},
		{2, 3, ReliabilityImproving},
		{3, 5, ReliabilityImproving},
		{4, 3, ReliabilityReliable},
		{10, 5, ReliabilityReliable},
	}
	for _, tc := range cases {
		if got := Reliability(tc.weeks, tc.eligible); got != tc.want {
			t.Errorf("Reliability(%d, %d) = %q, want %q", tc.weeks, tc.eligible, got, tc.want)
		}
	}
}

// TestReasonMarginBuckets verifies the clear/slight/tight margin wording.
func TestReasonMarginBuckets(t *testing.T) {
	mk := func(composite float64) models.Score { return models.Score{CompositeScore: composite} }
	cases := []struct {
		name   string
		scores map[string]models.Score
		want   string
	}{
		{"clear", map[string]models.Score{"linear": mk(80), "dup": mk(60)}, "clear margin"},
		{"slight", map[string]models.Score{"linear": mk(80), "dup": mk(75)}, "slight margin"},
		{"tight", map[string]models.Score{"linear": mk(80), "dup": mk(79)}, "tight margin"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := reason("linear", tc.scores, []string{"linear", "dup"})
			if !strings.Contains(got, tc.want) {
				t.Errorf("reason %q, want it to contain %q", got, tc.want)
			}
		})
	}
}
