// Package advisor orchestrates the weekly progression decision: it gates the
// eligible strategies, collects their predictions, ranks them, generates the
// winner's plan, and applies the correction rules and safety clamps. The
// advisor holds no mutable state; every call is a pure function of its
// arguments.
package advisor

import (
	"errors"
	"fmt"

	"github.com/claude/repwise/internal/models"
	"github.com/claude/repwise/internal/numeric"
	"github.com/claude/repwise/internal/scoring"
	"github.com/claude/repwise/internal/strategy"
)

// ErrInvalidInput marks validation failures on caller-supplied values, as
// opposed to infrastructure errors from the storage layer.
var ErrInvalidInput = errors.New("advisor: invalid input")

// Decision is the advisor's complete output for one week. WeekNumber is
// populated by ProcessAndStore once the target week has been resolved.
type Decision struct {
	WeekNumber     int                     `json:"week_number,omitempty"`
	Algorithm      string                  `json:"algorithm"`
	Label          string                  `json:"label"`
	Scores         map[string]models.Score `json:"scores,omitempty"`
	Predictions    map[string]*float64     `json:"predictions,omitempty"`
	Plan           models.WeekPlan         `json:"plan"`
	Reason         string                  `json:"reason"`
	Reliability    string                  `json:"reliability"`
	IsBeginnerMode bool                    `json:"is_beginner_mode"`
}

// Advisor selects and applies a progression strategy each week. It is safe
// to construct once and share: it holds only the stateless strategy registry.
type Advisor struct {
	strategies []strategy.Strategy
}

// New returns an Advisor over the standard strategy registry.
func New() *Advisor {
	return &Advisor{strategies: strategy.Registry()}
}

// ProcessNewWeek runs the full weekly pipeline. history is the ascending
// week sequence, scoringHistory the append-only model-selection audit trail,
// and impossibleLastWeek reports whether the previous week had at least one
// impossible session. The pipeline order is fixed: eligibility, cold-start
// short-circuit, beginner override, scoring, plan generation with linear
// fallback, the impossible-rule correction, and the final safety clamp.
func (a *Advisor) ProcessNewWeek(
	weekNumber int,
	testMax float64,
	history []models.WeekRecord,
	scoringHistory []models.ScoringEntry,
	impossibleLastWeek bool,
) (*Decision, error) {
	if weekNumber < 1 {
		return nil, fmt.Errorf("%w: week number %d", ErrInvalidInput, weekNumber)
	}
	if testMax < 1 {
		return nil, fmt.Errorf("%w: test max %v (must be >= 1)", ErrInvalidInput, testMax)
	}

	eligible := a.eligible(weekNumber)

	// Beginner override: below the threshold no model is consulted at all,
	// even when scoring would otherwise have picked a different strategy.
	if testMax < models.BeginnerThreshold {
		d := &Decision{
			Algorithm:      models.AlgorithmLinear,
			Label:          "Beginner foundation",
			Plan:           models.BeginnerPlan(),
			Reason:         "capacity below beginner threshold; fixed foundation plan",
			Reliability:    scoring.ReliabilityUnreliable,
			IsBeginnerMode: true,
		}
		a.finalize(d, testMax, impossibleLastWeek)
		return d, nil
	}

	// Cold start: nothing to score against in week 1 or with no history.
	if weekNumber <= 1 || len(history) == 0 {
		d := &Decision{
			Algorithm:   models.AlgorithmLinear,
			Label:       a.label(models.AlgorithmLinear),
			Reason:      "first week",
			Reliability: scoring.ReliabilityUnreliable,
		}
		d.Plan = a.planWithFallback(d.Algorithm, weekNumber, testMax, history)
		a.finalize(d, testMax, impossibleLastWeek)
		return d, nil
	}

	// Collect predictions from every eligible strategy. A failing strategy
	// degrades to a nil prediction; it still competes on its record.
	predictions := make(map[string]*float64, len(eligible))
	names := make([]string, len(eligible))
	for i, s := range eligible {
		names[i] = s.Name()
		if p, err := s.Predict(weekNumber, history); err == nil {
			v := p
			predictions[s.Name()] = &v
		} else {
			predictions[s.Name()] = nil
		}
	}

	sel, err := scoring.Rank(names, weekNumber, testMax, history, scoringHistory, predictions)
	if err != nil {
		return nil, fmt.Errorf("advisor: %w", err)
	}

	d := &Decision{
		Algorithm:   sel.Algorithm,
		Label:       a.label(sel.Algorithm),
		Scores:      sel.Scores,
		Predictions: predictions,
		Reason:      sel.Reason,
		Reliability: sel.Reliability,
	}
	d.Plan = a.planWithFallback(d.Algorithm, weekNumber, testMax, history)
	a.finalize(d, testMax, impossibleLastWeek)
	return d, nil
}

// eligible filters the registry through the week gate, preserving order.
func (a *Advisor) eligible(weekNumber int) []strategy.Strategy {
	allowed := make(map[string]bool)
	for _, name := range strategy.EligibleNames(weekNumber) {
		allowed[name] = true
	}
	var out []strategy.Strategy
	for _, s := range a.strategies {
		if allowed[s.Name()] {
			out = append(out, s)
		}
	}
	return out
}

// planWithFallback generates the named strategy's plan, falling back to
// Linear on failure. Linear itself cannot fail on inputs the advisor has
// already validated, but a degenerate guard keeps the beginner plan as the
// last resort.
func (a *Advisor) planWithFallback(name string, weekNumber int, testMax float64, history []models.WeekRecord) models.WeekPlan {
	for _, s := range a.strategies {
		if s.Name() != name {
			continue
		}
		if plan, err := s.Plan(weekNumber, testMax, history); err == nil {
			return plan
		}
		break
	}
	if plan, err := (strategy.Linear{}).Plan(weekNumber, testMax, history); err == nil {
		return plan
	}
	return models.BeginnerPlan()
}

// finalize applies the post-generation correction rules in order: the
// impossible-rule first, then the unconditional safety clamp.
func (a *Advisor) finalize(d *Decision, testMax float64, impossibleLastWeek bool) {
	if impossibleLastWeek {
		applyImpossibleRule(&d.Plan)
	}
	clampPlan(&d.Plan, testMax)
}

// applyImpossibleRule halves per-set difficulty while preserving volume
// after a failed week: twice the sets at half the reps, with slightly
// shorter rests so the session does not balloon.
func applyImpossibleRule(plan *models.WeekPlan) {
	for i := range plan {
		d := &plan[i]
		d.Sets *= 2
		d.Reps = numeric.Ceil(float64(d.Reps) / 2)
		d.RestSeconds -= 15
		if d.RestSeconds < 30 {
			d.RestSeconds = 30
		}
	}
}

// clampPlan enforces the safety bounds on every day regardless of which
// path produced the plan.
func clampPlan(plan *models.WeekPlan, testMax float64) {
	maxReps := models.MaxReps(testMax)
	for i := range plan {
		d := &plan[i]
		d.Sets = numeric.ClampInt(d.Sets, models.MinSets, models.MaxSets)
		d.Reps = numeric.ClampInt(d.Reps, models.MinReps, maxReps)
		d.RestSeconds = numeric.ClampInt(d.RestSeconds, models.MinRestSeconds, models.MaxRestSeconds)
	}
}

// label resolves a strategy name to its display label.
func (a *Advisor) label(name string) string {
	for _, s := range a.strategies {
		if s.Name() == name {
			return s.Label()
		}
	}
	return name
}
