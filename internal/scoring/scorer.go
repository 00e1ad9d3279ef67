// Package scoring ranks the progression strategies against an individual's
// history. Each eligible strategy gets three 0-100 sub-scores (prediction
// precision, feedback quality, capacity trend) blended into a weighted
// composite; the highest composite wins, with ties resolved by declaration
// order.
package scoring

import (
	"fmt"
	"math"

	"github.com/claude/repwise/internal/models"
	"github.com/claude/repwise/internal/numeric"
)

// Composite weights. Precision dominates: a model that predicts this athlete
// well is worth more than one that merely felt good.
const (
	weightPrecision = 0.50
	weightFeedback  = 0.30
	weightTrend     = 0.20
)

// temporalDecay discounts older prediction errors: a week-old miss counts
// 90% of a fresh one.
const temporalDecay = 0.9

// neutralScore is used whenever a dimension has no data to judge.
const neutralScore = 50.0

// Reliability levels of a selection, from least to most trustworthy.
const (
	ReliabilityUnreliable = "unreliable"
	ReliabilityImproving  = "improving"
	ReliabilityReliable   = "reliable"
)

// Selection is the scorer's verdict for one week.
type Selection struct {
	Algorithm   string
	Scores      map[string]models.Score
	Reason      string
	Reliability string
}

// Rank scores every candidate and selects the winner. Candidates must be in
// declaration order; the strict > comparison makes exact ties resolve to the
// earliest candidate. livePredictions carries each candidate's prediction
// for the current week (nil for a failed strategy) and feeds both the
// precision score and the reported scorecard.
func Rank(
	candidates []string,
	currentWeek int,
	testMax float64,
	history []models.WeekRecord,
	scoringHistory []models.ScoringEntry,
	livePredictions map[string]*float64,
) (Selection, error) {
	if len(candidates) == 0 {
		return Selection{}, fmt.Errorf("scoring: no candidate strategies")
	}

	trend := TrendScore(history)

	scores := make(map[string]models.Score, len(candidates))
	winner := ""
	var best float64
	for _, name := range candidates {
		s := models.Score{
			Prediction:     livePredictions[name],
			PrecisionScore: PrecisionScore(name, currentWeek, testMax, scoringHistory, livePredictions[name]),
			FeedbackScore:  FeedbackScore(name, history),
			TrendScore:     trend,
		}
		composite := weightPrecision*s.PrecisionScore + weightFeedback*s.FeedbackScore + weightTrend*s.TrendScore
		s.CompositeScore = numeric.Clamp(float64(numeric.Round(composite)), 0, 100)
		scores[name] = s

		if winner == "" || s.CompositeScore > best {
			winner = name
			best = s.CompositeScore
		}
	}

	return Selection{
		Algorithm:   winner,
		Scores:      scores,
		Reason:      reason(winner, scores, candidates),
		Reliability: Reliability(len(scoringHistory), len(candidates)),
	}, nil
}

// PrecisionScore measures how well a strategy's past predictions matched the
// capacity actually measured. Each historical week scores
// clamp(100 − |predicted−actual|/actual × 200, 0, 100) and weeks are blended
// with exponential temporal decay. The current week's live prediction, when
// present and testable against the fresh capacity test, joins at full
// weight. No usable data scores a neutral 50.
func PrecisionScore(name string, currentWeek int, testMax float64, scoringHistory []models.ScoringEntry, livePrediction *float64) float64 {
	var weightedSum, weightTotal float64

	for _, entry := range scoringHistory {
		po, ok := entry.PerAlgorithm[name]
		if !ok || po.Prediction == nil || po.Actual == nil || *po.Actual <= 0 {
			continue
		}
		weeksAgo := currentWeek - entry.WeekNumber
		if weeksAgo < 0 {
			continue
		}
		w := math.Pow(temporalDecay, float64(weeksAgo))
		weightedSum += w * weekPrecision(*po.Prediction, *po.Actual)
		weightTotal += w
	}

	if livePrediction != nil && testMax > 0 {
		weightedSum += weekPrecision(*livePrediction, testMax)
		weightTotal++
	}

	if weightTotal == 0 {
		return neutralScore
	}
	return weightedSum / weightTotal
}

func weekPrecision(predicted, actual float64) float64 {
	relErr := math.Abs(predicted-actual) / actual
	return numeric.Clamp(100-relErr*200, 0, 100)
}

// FeedbackScore measures how the athlete's sessions felt during the weeks a
// strategy was actually driving the plan:
// clamp(perfectRatio×100 − impossibleRatio×150, 0, 100), averaged over those
// weeks. A strategy never yet selected scores a neutral 50.
func FeedbackScore(name string, history []models.WeekRecord) float64 {
	var sum float64
	weeks := 0

	for i := range history {
		w := &history[i]
		if w.SelectedAlgorithm != name {
			continue
		}
		easy, perfect, impossible := weekFeedback(w)
		total := easy + perfect + impossible
		if total == 0 {
			continue
		}
		perfectRatio := float64(perfect) / float64(total)
		impossibleRatio := float64(impossible) / float64(total)
		sum += numeric.Clamp(perfectRatio*100-impossibleRatio*150, 0, 100)
		weeks++
	}

	if weeks == 0 {
		return neutralScore
	}
	return sum / float64(weeks)
}

func weekFeedback(w *models.WeekRecord) (easy, perfect, impossible int) {
	if fs := w.Feedback; fs != nil && fs.Sessions() > 0 {
		return fs.Easy, fs.Perfect, fs.Impossible
	}
	for _, s := range w.Sessions {
		if s.Feedback == nil {
			continue
		}
		switch *s.Feedback {
		case models.FeedbackEasy:
			easy++
		case models.FeedbackPerfect:
			perfect++
		case models.FeedbackImpossible:
			impossible++
		}
	}
	return easy, perfect, impossible
}

// stagnantVariation is the relative spread below which the last three
// capacity tests count as stagnant.
const stagnantVariation = 0.05

// TrendScore classifies the last three capacity results and is shared by
// every strategy for the week: monotonic growth scores 80 plus scaled
// growth (capped at 100), monotonic decline 20 minus scaled decline
// (floored at 0), stagnation a fixed 40, and anything mixed falls back to
// the direction of the endpoints. Fewer than two results score neutral.
func TrendScore(history []models.WeekRecord) float64 {
	_, maxes := models.CapacityPoints(history)
	if len(maxes) < 2 {
		return neutralScore
	}
	if len(maxes) > 3 {
		maxes = maxes[len(maxes)-3:]
	}

	lo, hi := maxes[0], maxes[0]
	for _, m := range maxes {
		lo = math.Min(lo, m)
		hi = math.Max(hi, m)
	}
	if lo > 0 && (hi-lo)/lo < stagnantVariation {
		return 40
	}

	first, last := maxes[0], maxes[len(maxes)-1]
	increasing, decreasing := true, true
	for i := 1; i < len(maxes); i++ {
		if maxes[i] <= maxes[i-1] {
			increasing = false
		}
		if maxes[i] >= maxes[i-1] {
			decreasing = false
		}
	}

	growth := numeric.GrowthRate(first, last)
	switch {
	case increasing:
		return math.Min(100, 80+growth*100)
	case decreasing:
		return math.Max(0, 20+growth*100) // growth is negative here
	case last > first:
		return math.Min(100, 80+growth*100)
	case last < first:
		return math.Max(0, 20+growth*100)
	default:
		return 40
	}
}

// Reliability grades the selection by how much evidence backs it: with zero
// or one scored weeks, or fewer than three competing strategies, the pick is
// unreliable; two to three weeks is improving; four or more weeks with a
// full field is reliable.
func Reliability(scoredWeeks, eligibleCount int) string {
	if scoredWeeks <= 1 || eligibleCount < 3 {
		return ReliabilityUnreliable
	}
	if scoredWeeks <= 3 {
		return ReliabilityImproving
	}
	return ReliabilityReliable
}

// reason builds the human-readable selection explanation: composite, the
// leading score dimension, the margin bucket over the runner-up, and the raw
// prediction when one exists.
func reason(winner string, scores map[string]models.Score, candidates []string) string {
	ws := scores[winner]

	lead := "precision"
	leadVal := ws.PrecisionScore
	if ws.FeedbackScore > leadVal {
		lead, leadVal = "feedback", ws.FeedbackScore
	}
	if ws.TrendScore > leadVal {
		lead = "trend"
	}

	margin := math.Inf(1)
	runnerUp := ""
	for _, name := range candidates {
		if name == winner {
			continue
		}
		if d := ws.CompositeScore - scores[name].CompositeScore; d < margin {
			margin = d
			runnerUp = name
		}
	}

	var marginDesc string
	switch {
	case runnerUp == "":
		marginDesc = "unopposed"
	case margin > 10:
		marginDesc = fmt.Sprintf("clear margin over %s", runnerUp)
	case margin > 3:
		marginDesc = fmt.Sprintf("slight margin over %s", runnerUp)
	default:
		marginDesc = fmt.Sprintf("tight margin over %s", runnerUp)
	}

	s := fmt.Sprintf("%s scored %.0f (%s-led), %s", winner, ws.CompositeScore, lead, marginDesc)
	if ws.Prediction != nil {
		s += fmt.Sprintf("; predicted %.1f", *ws.Prediction)
	}
	return s
}
