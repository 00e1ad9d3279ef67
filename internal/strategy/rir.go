package strategy

import (
	"fmt"

	"github.com/claude/repwise/internal/models"
	"github.com/claude/repwise/internal/numeric"
)

// RIR autoregulates volume from estimated reps-in-reserve. Two different
// signals act at two different speeds on purpose: the week-average RIR picks
// the volume multiplier (slow reaction), while the single most recent
// session's feedback rescales every day's reps (fast reaction). Do not
// unify them.
type RIR struct{}

// Feedback → reps-in-reserve mapping.
const (
	rirEasy       = 4.0
	rirPerfect    = 2.0
	rirImpossible = 0.0
)

// Volume multipliers by prior-week average RIR, checked in order. Below the
// last threshold the week is a deload.
const (
	rirVolumeHigh   = 4.0 // avg RIR > 3.5: plenty in the tank
	rirVolumeNormal = 3.5 // avg RIR ≥ 2.0
	rirVolumeLow    = 3.0 // avg RIR ≥ 1.0
	rirVolumeDeload = 2.0 // grinding near failure
)

// Last-session rep multipliers: one easy or perfect session bumps the whole
// week's reps immediately.
const (
	rirRepsBoostEasy    = 1.10
	rirRepsBoostPerfect = 1.05
)

const rirRest = 75

func (RIR) Name() string  { return models.AlgorithmRIR }
func (RIR) Label() string { return "RIR autoregulation" }

// Predict grows the last capacity by 1.25% per point of average RIR: four
// reps in reserve all week suggests roughly a 5% gain is available.
func (r RIR) Predict(weekNumber int, history []models.WeekRecord) (float64, error) {
	if weekNumber < 1 {
		return 0, fmt.Errorf("rir predict: invalid week %d", weekNumber)
	}
	last, ok := models.LastTestMax(history)
	if !ok {
		return 0, fmt.Errorf("rir predict: no capacity history")
	}
	avg := r.averageRIR(weekNumber, history)
	return last * (1 + 0.0125*avg), nil
}

// Plan picks the day volume from the prior week's average RIR, derives a
// heavy-but-repeatable rep target from testMax and that RIR, solves sets
// from volume÷reps, then rescales reps by the most recent single session's
// feedback.
func (r RIR) Plan(weekNumber int, testMax float64, history []models.WeekRecord) (models.WeekPlan, error) {
	var plan models.WeekPlan
	if weekNumber < 1 || testMax < 1 {
		return plan, fmt.Errorf("rir plan: invalid inputs week=%d testMax=%v", weekNumber, testMax)
	}
	if isBeginner(testMax) {
		return models.BeginnerPlan(), nil
	}

	avg := r.averageRIR(weekNumber, history)
	dayVolume := testMax * rirVolumeMultiplier(avg)

	maxReps := models.MaxReps(testMax)
	reps := numeric.ClampInt(numeric.Round(testMax*(0.6+avg*0.05)), models.MinReps, maxReps)
	sets := numeric.ClampInt(numeric.Round(dayVolume/float64(reps)), models.MinSets, models.MaxSets)

	// Fast path: the most recent session's feedback adjusts reps right away,
	// a week before the average RIR catches up.
	boost := 1.0
	if fb, ok := lastSessionFeedback(history); ok {
		switch fb {
		case models.FeedbackEasy:
			boost = rirRepsBoostEasy
		case models.FeedbackPerfect:
			boost = rirRepsBoostPerfect
		}
	}

	for i := range plan {
		dayReps := numeric.ClampInt(numeric.Round(float64(reps)*boost), models.MinReps, maxReps)
		plan[i] = models.DailyPlan{
			Sets:         sets,
			Reps:         dayReps,
			RestSeconds:  rirRest,
			TrainingType: "autoregulated",
		}
	}
	return plan, nil
}

// rirVolumeMultiplier maps average RIR to the day-volume multiplier through
// the ordered threshold table.
func rirVolumeMultiplier(avg float64) float64 {
	switch {
	case avg > 3.5:
		return rirVolumeHigh
	case avg >= 2.0:
		return rirVolumeNormal
	case avg >= 1.0:
		return rirVolumeLow
	default:
		return rirVolumeDeload
	}
}

// averageRIR averages the prior week's per-session RIR. Explicit reserve
// estimates win over the feedback mapping; with no usable sessions the
// neutral "perfect" value 2.0 is assumed.
func (RIR) averageRIR(weekNumber int, history []models.WeekRecord) float64 {
	prev := previousWeek(history, weekNumber)
	if prev == nil {
		return rirPerfect
	}

	var values []float64
	for _, s := range prev.Sessions {
		if s.ReserveEstimate != nil {
			values = append(values, *s.ReserveEstimate)
			continue
		}
		if s.Feedback == nil {
			continue
		}
		switch *s.Feedback {
		case models.FeedbackEasy:
			values = append(values, rirEasy)
		case models.FeedbackPerfect:
			values = append(values, rirPerfect)
		case models.FeedbackImpossible:
			values = append(values, rirImpossible)
		}
	}

	if len(values) == 0 {
		if prev.Feedback != nil && prev.Feedback.Sessions() > 0 {
			fs := prev.Feedback
			total := float64(fs.Sessions())
			return (float64(fs.Easy)*rirEasy + float64(fs.Perfect)*rirPerfect) / total
		}
		return rirPerfect
	}
	return numeric.Mean(values)
}
