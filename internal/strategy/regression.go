package strategy

import (
	"fmt"
	"math"

	"github.com/claude/repwise/internal/models"
	"github.com/claude/repwise/internal/numeric"
)

// Regression fits a quadratic through the capacity history and plans from
// the model's own extrapolation, corrected by how far the athlete's actual
// growth has diverged from the model and by their historical failure rate.
// Unlike the other strategies it prescribes one uniform day repeated six
// times: the model speaks for the week, not for individual days.
type Regression struct{}

const (
	// Raw extrapolation bounds relative to the last measured capacity.
	regressionFloorRatio = 0.5
	regressionCeilGrowth = 1.30 // per elapsed week

	// Adjustment factor (actual growth ÷ modeled growth) bounds.
	regressionAdjustMin = 0.5
	regressionAdjustMax = 2.0

	// Failure-rate tiers over the full session history.
	regressionFailHigh      = 0.30
	regressionFailModerate  = 0.15
	regressionScaleHighFail = 0.70
	regressionScaleModerate = 0.85

	regressionRest = 90
)

func (Regression) Name() string  { return models.AlgorithmRegression }
func (Regression) Label() string { return "Adaptive regression" }

// Predict evaluates the quadratic fit (linear under 3 points) at the target
// week and clamps the extrapolation to [0.5×lastMax, lastMax×1.30^Δweeks] so
// a wild polynomial tail can never prescribe the impossible.
func (Regression) Predict(weekNumber int, history []models.WeekRecord) (float64, error) {
	if weekNumber < 1 {
		return 0, fmt.Errorf("regression predict: invalid week %d", weekNumber)
	}

	weeks, maxes := models.CapacityPoints(history)
	if len(weeks) == 0 {
		return 0, fmt.Errorf("regression predict: no capacity history")
	}

	points := make([]numeric.Point, len(weeks))
	for i := range weeks {
		points[i] = numeric.Point{X: weeks[i], Y: maxes[i]}
	}
	raw := numeric.FitPolynomial(points).Eval(float64(weekNumber))

	lastWeek := weeks[len(weeks)-1]
	lastMax := maxes[len(maxes)-1]
	deltaWeeks := float64(weekNumber) - lastWeek
	if deltaWeeks < 1 {
		deltaWeeks = 1
	}
	ceil := lastMax * math.Pow(regressionCeilGrowth, deltaWeeks)
	return numeric.Clamp(raw, regressionFloorRatio*lastMax, ceil), nil
}

// Plan scales the baseline volume (predictedNext×3) by the model-error
// adjustment factor and the failure-rate tier, then prescribes the same
// sets×reps on all six days.
func (r Regression) Plan(weekNumber int, testMax float64, history []models.WeekRecord) (models.WeekPlan, error) {
	var plan models.WeekPlan
	if weekNumber < 1 || testMax < 1 {
		return plan, fmt.Errorf("regression plan: invalid inputs week=%d testMax=%v", weekNumber, testMax)
	}
	if isBeginner(testMax) {
		return models.BeginnerPlan(), nil
	}

	predicted, err := r.Predict(weekNumber, history)
	if err != nil {
		// No history at all: plan from the measured capacity alone.
		predicted = testMax
	}

	weekVolume := predicted * linearBaseFactor
	weekVolume *= r.adjustmentFactor(history)
	weekVolume *= failureRateScale(history)

	maxReps := models.MaxReps(testMax)
	dayVolume := weekVolume / models.PlanDays
	sets, reps := numeric.VolumeToSetsReps(dayVolume, models.MinSets, models.MaxSets, models.MinReps, maxReps)

	for i := range plan {
		plan[i] = models.DailyPlan{
			Sets:         sets,
			Reps:         reps,
			RestSeconds:  regressionRest,
			TrainingType: "uniform",
		}
	}
	return plan, nil
}

// adjustmentFactor compares the athlete's actual recent growth rate against
// the model's predicted growth over the same span. Athletes beating the
// model earn more volume, athletes lagging it get less, within [0.5, 2.0].
func (Regression) adjustmentFactor(history []models.WeekRecord) float64 {
	weeks, maxes := models.CapacityPoints(history)
	n := len(weeks)
	if n < 2 {
		return 1.0
	}

	actual := numeric.GrowthRate(maxes[n-2], maxes[n-1])

	points := make([]numeric.Point, n)
	for i := range weeks {
		points[i] = numeric.Point{X: weeks[i], Y: maxes[i]}
	}
	model := numeric.FitPolynomial(points)
	modeled := numeric.GrowthRate(model.Eval(weeks[n-2]), model.Eval(weeks[n-1]))
	if modeled <= 0 {
		return 1.0
	}

	return numeric.Clamp(actual/modeled, regressionAdjustMin, regressionAdjustMax)
}

// failureRateScale reduces volume by the share of impossible sessions across
// the full history: above 30% the athlete is chronically overreached.
func failureRateScale(history []models.WeekRecord) float64 {
	total, impossible := 0, 0
	for _, w := range history {
		e, p, i := feedbackCounts(&w)
		total += e + p + i
		impossible += i
	}
	if total == 0 {
		return 1.0
	}

	rate := float64(impossible) / float64(total)
	switch {
	case rate > regressionFailHigh:
		return regressionScaleHighFail
	case rate > regressionFailModerate:
		return regressionScaleModerate
	default:
		return 1.0
	}
}
