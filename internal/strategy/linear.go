package strategy

import (
	"fmt"

	"github.com/claude/repwise/internal/models"
	"github.com/claude/repwise/internal/numeric"
)

// Linear is the default progression model: weekly volume compounds at 10%
// per week and is spread across six fixed intensity zones. It is the only
// strategy eligible from week 1 and the fallback plan generator for every
// other strategy.
type Linear struct{}

const (
	linearWeeklyGrowth = 0.10
	linearBaseFactor   = 3.0 // week-1 volume = testMax × 3

	// Undershoot threshold for the one-shot repair: if the zone's set floor
	// cannot reach 80% of the day target, reps are raised instead.
	linearRepairThreshold = 0.80
)

// linearZone is one of the six preset intensity zones a training week cycles
// through. RepRatio scales testMax into a per-set rep count; sets are then
// solved to hit the day's volume share within [MinSets, MaxSets].
type linearZone struct {
	Label       string
	VolumeShare float64
	RepRatio    float64
	MinSets     int
	MaxSets     int
	Rest        int
}

// linearZones maps plan days 2-7 in order. Shares are deliberately
// non-uniform: the heaviest day sits mid-week with recovery on either side.
var linearZones = [models.PlanDays]linearZone{
	{Label: "volume", VolumeShare: 0.20, RepRatio: 0.60, MinSets: 2, MaxSets: 6, Rest: 90},
	{Label: "technique", VolumeShare: 0.15, RepRatio: 0.40, MinSets: 2, MaxSets: 5, Rest: 60},
	{Label: "intensity", VolumeShare: 0.22, RepRatio: 0.80, MinSets: 2, MaxSets: 6, Rest: 120},
	{Label: "recovery", VolumeShare: 0.10, RepRatio: 0.30, MinSets: 2, MaxSets: 4, Rest: 45},
	{Label: "endurance", VolumeShare: 0.18, RepRatio: 0.50, MinSets: 2, MaxSets: 6, Rest: 75},
	{Label: "peak", VolumeShare: 0.15, RepRatio: 0.70, MinSets: 2, MaxSets: 5, Rest: 150},
}

func (Linear) Name() string  { return models.AlgorithmLinear }
func (Linear) Label() string { return "Linear progression" }

// Predict fits an OLS line through the recorded capacity tests and evaluates
// it at the target week. With fewer than two usable points it assumes a flat
// 5% gain on the last known capacity.
func (Linear) Predict(weekNumber int, history []models.WeekRecord) (float64, error) {
	if weekNumber < 1 {
		return 0, fmt.Errorf("linear predict: invalid week %d", weekNumber)
	}

	weeks, maxes := models.CapacityPoints(history)
	if len(weeks) < 2 {
		last, ok := models.LastTestMax(history)
		if !ok {
			return 0, fmt.Errorf("linear predict: no capacity history")
		}
		return last * 1.05, nil
	}

	points := make([]numeric.Point, len(weeks))
	for i := range weeks {
		points[i] = numeric.Point{X: weeks[i], Y: maxes[i]}
	}
	predicted := numeric.FitLinear(points).Eval(float64(weekNumber))
	if predicted < 1 {
		predicted = 1
	}
	return predicted, nil
}

// Plan compounds the last known weekly volume by 10% per elapsed week and
// distributes it across the six zones. Reps come from the zone's rep ratio;
// sets are solved to hit the day share within the zone's set bounds, with a
// one-shot repair raising reps when the set floor undershoots 80% of target.
func (Linear) Plan(weekNumber int, testMax float64, history []models.WeekRecord) (models.WeekPlan, error) {
	var plan models.WeekPlan
	if weekNumber < 1 || testMax < 1 {
		return plan, fmt.Errorf("linear plan: invalid inputs week=%d testMax=%v", weekNumber, testMax)
	}
	if isBeginner(testMax) {
		return models.BeginnerPlan(), nil
	}

	base, baseWeek := linearBaseVolume(weekNumber, testMax, history)
	deltaWeeks := weekNumber - baseWeek
	if deltaWeeks < 0 {
		deltaWeeks = 0
	}
	weekVolume := base
	for i := 0; i < deltaWeeks; i++ {
		weekVolume *= 1 + linearWeeklyGrowth
	}

	shares := make([]float64, models.PlanDays)
	for i, z := range linearZones {
		shares[i] = z.VolumeShare
	}
	dayVolumes := numeric.DistributeVolume(weekVolume, shares)

	maxReps := models.MaxReps(testMax)
	for i, z := range linearZones {
		target := dayVolumes[i]
		reps := numeric.ClampInt(numeric.Round(testMax*z.RepRatio), models.MinReps, maxReps)
		sets := numeric.ClampInt(numeric.Round(float64(target)/float64(reps)), z.MinSets, z.MaxSets)

		// One-shot repair: with sets pinned at the zone floor the day may
		// fall well short of its share; raise reps to close the gap.
		if float64(sets*reps) < linearRepairThreshold*float64(target) {
			reps = numeric.ClampInt(numeric.Ceil(float64(target)/float64(sets)), models.MinReps, maxReps)
		}

		plan[i] = models.DailyPlan{
			Sets:         sets,
			Reps:         reps,
			RestSeconds:  z.Rest,
			TrainingType: z.Label,
		}
	}
	return plan, nil
}

// linearBaseVolume finds the anchor volume for compounding: the most recent
// week with a known volume target, else the week-1 baseline testMax×3.
func linearBaseVolume(weekNumber int, testMax float64, history []models.WeekRecord) (volume float64, week int) {
	for i := len(history) - 1; i >= 0; i-- {
		w := history[i]
		if w.WeekNumber >= weekNumber {
			continue
		}
		if w.Feedback != nil && w.Feedback.VolumeTarget > 0 {
			return float64(w.Feedback.VolumeTarget), w.WeekNumber
		}
		if w.Plan != nil {
			if v := w.Plan.TotalVolume(); v > 0 {
				return float64(v), w.WeekNumber
			}
		}
	}
	return testMax * linearBaseFactor, 1
}
