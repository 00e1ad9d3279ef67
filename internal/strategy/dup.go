package strategy

import (
	"fmt"

	"github.com/claude/repwise/internal/models"
	"github.com/claude/repwise/internal/numeric"
)

// DUP implements daily undulating periodization: a fixed rotation of
// endurance, hypertrophy, and force days whose rep targets grow with the
// program week. The weekly growth rate starts at 5% and is steered by last
// week's feedback counts and the 3-week capacity trend.
type DUP struct{}

const (
	dupBaseGrowth     = 0.05
	dupFeedbackNudge  = 0.02 // ≥4 easy sessions up, any impossible down
	dupTrendNudge     = 0.01 // 3-week capacity trend
	dupMaxGrowth      = 0.15
	dupWeeklyRepScale = 0.05 // reps scale by 1 + (week−1)·5%
)

// dupProfile is one of the three undulating day profiles. Rest is an affine
// function of the prescribed reps: heavier profiles pay more per rep.
type dupProfile struct {
	Label       string
	Sets        int
	RepRatio    float64
	RestBase    int
	RestPerRep  int
}

var (
	dupEndurance   = dupProfile{Label: "endurance", Sets: 3, RepRatio: 0.80, RestBase: 30, RestPerRep: 2}
	dupHypertrophy = dupProfile{Label: "hypertrophy", Sets: 4, RepRatio: 0.60, RestBase: 60, RestPerRep: 3}
	dupForce       = dupProfile{Label: "force", Sets: 5, RepRatio: 0.40, RestBase: 100, RestPerRep: 5}
)

// dupRotation is the fixed 6-day sequence: two passes through the three
// profiles, heavy work never on consecutive days.
var dupRotation = [models.PlanDays]dupProfile{
	dupEndurance,
	dupHypertrophy,
	dupForce,
	dupEndurance,
	dupHypertrophy,
	dupForce,
}

func (DUP) Name() string  { return models.AlgorithmDUP }
func (DUP) Label() string { return "Daily undulating" }

// Predict applies the steered weekly growth rate to the last known capacity.
func (d DUP) Predict(weekNumber int, history []models.WeekRecord) (float64, error) {
	if weekNumber < 1 {
		return 0, fmt.Errorf("dup predict: invalid week %d", weekNumber)
	}
	last, ok := models.LastTestMax(history)
	if !ok {
		return 0, fmt.Errorf("dup predict: no capacity history")
	}
	return last * (1 + d.growthRate(weekNumber, history)), nil
}

// growthRate starts at 5%, adds 2% when last week felt easy at least four
// times, subtracts 2% on any impossible session, and nudges ±1% with the
// 3-week capacity trend. The result is clamped to [0%, 15%].
func (DUP) growthRate(weekNumber int, history []models.WeekRecord) float64 {
	rate := dupBaseGrowth

	easy, _, impossible := feedbackCounts(previousWeek(history, weekNumber))
	if easy >= 4 {
		rate += dupFeedbackNudge
	}
	if impossible > 0 {
		rate -= dupFeedbackNudge
	}

	_, maxes := models.CapacityPoints(history)
	if n := len(maxes); n >= 3 {
		recent := maxes[n-3:]
		if recent[2] > recent[1] && recent[1] > recent[0] {
			rate += dupTrendNudge
		} else if recent[2] < recent[1] && recent[1] < recent[0] {
			rate -= dupTrendNudge
		}
	}

	return numeric.Clamp(rate, 0, dupMaxGrowth)
}

// Plan rotates the three profiles across the six days. Each day's reps are
// the profile ratio of testMax, scaled by the program-week multiplier
// 1 + (week−1)·5%, clamped to the safety band.
func (DUP) Plan(weekNumber int, testMax float64, history []models.WeekRecord) (models.WeekPlan, error) {
	var plan models.WeekPlan
	if weekNumber < 1 || testMax < 1 {
		return plan, fmt.Errorf("dup plan: invalid inputs week=%d testMax=%v", weekNumber, testMax)
	}
	if isBeginner(testMax) {
		return models.BeginnerPlan(), nil
	}

	weekScale := 1 + float64(weekNumber-1)*dupWeeklyRepScale
	maxReps := models.MaxReps(testMax)

	for i, p := range dupRotation {
		reps := numeric.ClampInt(numeric.Round(testMax*p.RepRatio*weekScale), models.MinReps, maxReps)
		rest := numeric.ClampInt(p.RestBase+p.RestPerRep*reps, models.MinRestSeconds, models.MaxRestSeconds)
		plan[i] = models.DailyPlan{
			Sets:         p.Sets,
			Reps:         reps,
			RestSeconds:  rest,
			TrainingType: p.Label,
		}
	}
	return plan, nil
}
