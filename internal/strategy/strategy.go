// Package strategy holds the five interchangeable progression models. Each
// one predicts the next capacity-test result and synthesizes a weekly plan
// from the same history; they share only the numeric toolkit and a handful
// of history helpers.
package strategy

import (
	"github.com/claude/repwise/internal/models"
)

// Strategy is the common contract every progression model implements.
// Predict estimates the next capacity-test result; Plan synthesizes the six
// training days of the coming week. Both are pure functions of their inputs.
type Strategy interface {
	// Name is the stable identifier used for scoring and persistence.
	Name() string
	// Label is the human-readable name shown in plans and reasoning.
	Label() string
	Predict(weekNumber int, history []models.WeekRecord) (float64, error)
	Plan(weekNumber int, testMax float64, history []models.WeekRecord) (models.WeekPlan, error)
}

// Registry returns the five strategies in declared order. The order is part
// of the selection contract: composite-score ties resolve to the earliest
// declared eligible strategy.
func Registry() []Strategy {
	return []Strategy{
		Linear{},
		Banister{Params: defaultBanisterParams()},
		DUP{},
		RIR{},
		Regression{},
	}
}

// Eligible returns the strategies allowed to compete in the given week, in
// declared order. Early weeks have too little history for the data-hungry
// models: week 1 is linear only, rir joins at week 2, dup at week 3, and
// banister and regression need a full three weeks of history.
func Eligible(weekNumber int) []Strategy {
	all := Registry()
	if weekNumber > 3 {
		return all
	}

	allowed := map[string]bool{models.AlgorithmLinear: true}
	if weekNumber >= 2 {
		allowed[models.AlgorithmRIR] = true
	}
	if weekNumber >= 3 {
		allowed[models.AlgorithmDUP] = true
	}

	var out []Strategy
	for _, s := range all {
		if allowed[s.Name()] {
			out = append(out, s)
		}
	}
	return out
}

// EligibleNames returns the names of Eligible(weekNumber), in order.
func EligibleNames(weekNumber int) []string {
	strategies := Eligible(weekNumber)
	names := make([]string, len(strategies))
	for i, s := range strategies {
		names[i] = s.Name()
	}
	return names
}

// isBeginner reports whether the capacity test is below the modeling
// threshold. Every strategy applies this guard itself, and the advisor
// applies a second overriding one; the duplication is deliberate so a
// strategy invoked directly still behaves safely.
func isBeginner(testMax float64) bool {
	return testMax < models.BeginnerThreshold
}

// previousWeek returns the most recent history record strictly before
// weekNumber, or nil.
func previousWeek(history []models.WeekRecord, weekNumber int) *models.WeekRecord {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].WeekNumber < weekNumber {
			return &history[i]
		}
	}
	return nil
}

// feedbackCounts tallies a week's session feedback, preferring the stored
// summary and falling back to counting raw sessions.
func feedbackCounts(week *models.WeekRecord) (easy, perfect, impossible int) {
	if week == nil {
		return 0, 0, 0
	}
	if fs := week.Feedback; fs != nil && fs.Sessions() > 0 {
		return fs.Easy, fs.Perfect, fs.Impossible
	}
	for _, s := range week.Sessions {
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

// lastSessionFeedback returns the feedback of the single most recent session
// carrying any, scanning weeks and days in descending order.
func lastSessionFeedback(history []models.WeekRecord) (string, bool) {
	for i := len(history) - 1; i >= 0; i-- {
		sessions := history[i].Sessions
		best := -1
		for j, s := range sessions {
			if s.Feedback == nil {
				continue
			}
			if best == -1 || s.DayNumber >= sessions[best].DayNumber {
				best = j
			}
		}
		if best >= 0 {
			return *sessions[best].Feedback, true
		}
	}
	return "", false
}

// absoluteDay maps a week-local day to a day count from the start of the
// program: (week−1)·7 + day.
func absoluteDay(weekNumber, dayNumber int) int {
	return (weekNumber-1)*7 + dayNumber
}

// sessionCharge returns the training load of a session: reps actually
// performed when recorded, otherwise the planned volume.
func sessionCharge(s models.SessionRecord) float64 {
	if s.ActualReps > 0 {
		return float64(s.ActualReps)
	}
	return float64(s.PlannedSets * s.PlannedReps)
}

// lastPlannedVolume returns the most recent week's planned volume target, or
// 0 and false when no week carries one.
func lastPlannedVolume(history []models.WeekRecord) (float64, bool) {
	for i := len(history) - 1; i >= 0; i-- {
		w := history[i]
		if w.Feedback != nil && w.Feedback.VolumeTarget > 0 {
			return float64(w.Feedback.VolumeTarget), true
		}
		if w.Plan != nil {
			if v := w.Plan.TotalVolume(); v > 0 {
				return float64(v), true
			}
		}
	}
	return 0, false
}
