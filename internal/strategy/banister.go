package strategy

import (
	"fmt"

	"github.com/claude/repwise/internal/models"
	"github.com/claude/repwise/internal/numeric"
)

// Banister models the athlete as a fitness-fatigue system: every past
// session leaves a slowly-decaying positive trace and a quickly-decaying
// negative one. Prediction evaluates the system at the next test day; the
// plan doses each training day by its marginal net effect on that test.
type Banister struct {
	Params numeric.BanisterParams
}

func defaultBanisterParams() numeric.BanisterParams {
	return numeric.DefaultBanisterParams
}

// Charge ratios: how much of the day's nominal volume to prescribe depending
// on whether training that day still nets positive by test time.
const (
	banisterChargePositive = 0.80
	banisterChargeNegative = 0.60
)

// banisterDayType shapes one of the six plan days. The multiplier scales the
// day's charge; rest follows the day's intent.
type banisterDayType struct {
	Label      string
	Multiplier float64
	Rest       int
}

// banisterWeek is the fixed day-type rotation for days 2-7: build early,
// recover mid-week, peak, then taper toward the next test.
var banisterWeek = [models.PlanDays]banisterDayType{
	{Label: "moderate", Multiplier: 1.0, Rest: 90},
	{Label: "intense", Multiplier: 1.3, Rest: 120},
	{Label: "recovery", Multiplier: 0.5, Rest: 45},
	{Label: "intense", Multiplier: 1.3, Rest: 120},
	{Label: "moderate", Multiplier: 1.0, Rest: 90},
	{Label: "light", Multiplier: 0.7, Rest: 60},
}

func (Banister) Name() string  { return models.AlgorithmBanister }
func (Banister) Label() string { return "Fitness-fatigue" }

// Predict sums the residual fitness and fatigue of every recorded session at
// the upcoming test day (day 1 of weekNumber). The earliest recorded
// capacity test anchors the baseline.
func (b Banister) Predict(weekNumber int, history []models.WeekRecord) (float64, error) {
	if weekNumber < 1 {
		return 0, fmt.Errorf("banister predict: invalid week %d", weekNumber)
	}

	base, impulses, err := banisterInputs(history)
	if err != nil {
		return 0, fmt.Errorf("banister predict: %w", err)
	}

	testDay := absoluteDay(weekNumber, 1)
	return numeric.BanisterPerformance(base, impulses, testDay, b.Params), nil
}

// Plan doses each of the six days by the sign of its net training effect on
// the *next* test (day 1 of weekNumber+1): days whose fitness still
// outweighs their fatigue by test time get the full 0.80 charge ratio,
// others are reduced to 0.60, then the day-type multiplier shapes the week.
func (b Banister) Plan(weekNumber int, testMax float64, history []models.WeekRecord) (models.WeekPlan, error) {
	var plan models.WeekPlan
	if weekNumber < 1 || testMax < 1 {
		return plan, fmt.Errorf("banister plan: invalid inputs week=%d testMax=%v", weekNumber, testMax)
	}
	if isBeginner(testMax) {
		return models.BeginnerPlan(), nil
	}

	nextTestDay := absoluteDay(weekNumber+1, 1)
	maxReps := models.MaxReps(testMax)

	for i, dt := range banisterWeek {
		day := i + 2 // plan entry 0 is day 2
		trainingDay := absoluteDay(weekNumber, day)

		ratio := banisterChargeNegative
		if numeric.NetTrainingEffect(trainingDay, nextTestDay, b.Params) > 0 {
			ratio = banisterChargePositive
		}

		target := testMax * linearBaseFactor * ratio * dt.Multiplier / 2
		sets, reps := numeric.VolumeToSetsReps(target, models.MinSets, models.MaxSets, models.MinReps, maxReps)

		plan[i] = models.DailyPlan{
			Sets:         sets,
			Reps:         reps,
			RestSeconds:  dt.Rest,
			TrainingType: dt.Label,
		}
	}
	return plan, nil
}

// banisterInputs extracts the baseline capacity and the training impulses
// from history. Sessions are mapped to absolute days; the charge is the reps
// actually performed (planned volume when unrecorded).
func banisterInputs(history []models.WeekRecord) (base float64, impulses []numeric.TrainingImpulse, err error) {
	base = 0
	for _, w := range history {
		if w.TestMax != nil {
			base = *w.TestMax
			break
		}
	}
	if base == 0 {
		return 0, nil, fmt.Errorf("no capacity baseline in history")
	}

	for _, w := range history {
		for _, s := range w.Sessions {
			if s.Type != models.SessionTypeTraining {
				continue
			}
			impulses = append(impulses, numeric.TrainingImpulse{
				Day:    absoluteDay(s.WeekNumber, s.DayNumber),
				Charge: sessionCharge(s),
			})
		}
	}
	return base, impulses, nil
}
