package advisor

import (
	"context"
	"fmt"

	"github.com/claude/repwise/internal/models"
)

// Store is the slice of the storage layer the weekly pipeline reads and
// writes. *storage.DB satisfies it.
type Store interface {
	QueryWeeks(ctx context.Context, userID int) ([]models.WeekRecord, error)
	QueryScoringEntries(ctx context.Context, userID int) ([]models.ScoringEntry, error)
	ImpossibleLastWeek(ctx context.Context, userID, weekNumber int) (bool, error)
	UpsertWeek(ctx context.Context, userID int, w models.WeekRecord) error
	InsertScoringEntry(ctx context.Context, userID int, e models.ScoringEntry) error
}

// ProcessAndStore loads the user's history, runs ProcessNewWeek against it,
// and persists the resulting week record plus its scoring-trail entry.
// weekNumber 0 means "the week after the latest recorded one" (1 for an
// empty history). The resolved week number is recorded on the decision.
func (a *Advisor) ProcessAndStore(ctx context.Context, store Store, userID, weekNumber int, testMax float64) (*Decision, error) {
	history, err := store.QueryWeeks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("advisor: loading history: %w", err)
	}

	if weekNumber == 0 {
		weekNumber = 1
		if len(history) > 0 {
			weekNumber = history[len(history)-1].WeekNumber + 1
		}
	}

	// Only weeks strictly before the one being planned feed the models.
	prior := history[:0:0]
	for _, wk := range history {
		if wk.WeekNumber < weekNumber {
			prior = append(prior, wk)
		}
	}

	scoringHistory, err := store.QueryScoringEntries(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("advisor: loading scoring trail: %w", err)
	}

	impossible, err := store.ImpossibleLastWeek(ctx, userID, weekNumber)
	if err != nil {
		return nil, fmt.Errorf("advisor: checking last week: %w", err)
	}

	d, err := a.ProcessNewWeek(weekNumber, testMax, prior, scoringHistory, impossible)
	if err != nil {
		return nil, err
	}
	d.WeekNumber = weekNumber

	plan := d.Plan
	week := models.WeekRecord{
		WeekNumber:        weekNumber,
		TestMax:           &testMax,
		SelectedAlgorithm: d.Algorithm,
		AlgorithmScores:   d.Scores,
		Predictions:       d.Predictions,
		Plan:              &plan,
		Status:            models.StatusActive,
	}
	if err := store.UpsertWeek(ctx, userID, week); err != nil {
		return nil, fmt.Errorf("advisor: storing week: %w", err)
	}

	// Cold-start and beginner weeks leave no scoring trail: there was no
	// competition to audit.
	if d.Scores == nil {
		return d, nil
	}

	perAlgo := make(map[string]models.PredictionOutcome, len(d.Predictions))
	actual := testMax
	for name, pred := range d.Predictions {
		perAlgo[name] = models.PredictionOutcome{Prediction: pred, Actual: &actual}
	}
	entry := models.ScoringEntry{
		WeekNumber:        weekNumber,
		PerAlgorithm:      perAlgo,
		SelectedAlgorithm: d.Algorithm,
		Reasoning:         d.Reason,
	}
	if err := store.InsertScoringEntry(ctx, userID, entry); err != nil {
		return nil, fmt.Errorf("advisor: storing scoring entry: %w", err)
	}
	return d, nil
}
