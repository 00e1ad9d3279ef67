package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/claude/repwise/internal/models"
	"github.com/jackc/pgx/v5"
)

// ErrWeekNotFound is returned when a requested week does not exist.
var ErrWeekNotFound = errors.New("week not found")

// UpsertWeek inserts or replaces a week record. The advisor re-processes the
// current week when new data arrives, so replacement is the normal path;
// past weeks are never touched by callers.
func (db *DB) UpsertWeek(ctx context.Context, userID int, w models.WeekRecord) error {
	scores, err := marshalNullable(w.AlgorithmScores)
	if err != nil {
		return fmt.Errorf("encoding scores: %w", err)
	}
	predictions, err := marshalNullable(w.Predictions)
	if err != nil {
		return fmt.Errorf("encoding predictions: %w", err)
	}
	plan, err := marshalNullable(w.Plan)
	if err != nil {
		return fmt.Errorf("encoding plan: %w", err)
	}
	feedback, err := marshalNullable(w.Feedback)
	if err != nil {
		return fmt.Errorf("encoding feedback summary: %w", err)
	}

	_, err = db.Pool.Exec(ctx,
		`INSERT INTO weeks (user_id, week_number, test_max, selected_algorithm,
		 algorithm_scores, predictions, plan, feedback_summary, status)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		 ON CONFLICT (user_id, week_number) DO UPDATE SET
		   test_max = EXCLUDED.test_max,
		   selected_algorithm = EXCLUDED.selected_algorithm,
		   algorithm_scores = EXCLUDED.algorithm_scores,
		   predictions = EXCLUDED.predictions,
		   plan = EXCLUDED.plan,
		   feedback_summary = EXCLUDED.feedback_summary,
		   status = EXCLUDED.status`,
		userID, w.WeekNumber, w.TestMax, w.SelectedAlgorithm,
		scores, predictions, plan, feedback, w.Status)
	if err != nil {
		return fmt.Errorf("upserting week: %w", err)
	}
	return nil
}

// GetWeek retrieves a single week with its sessions.
func (db *DB) GetWeek(ctx context.Context, userID, weekNumber int) (*models.WeekRecord, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT week_number, test_max, selected_algorithm,
		 algorithm_scores, predictions, plan, feedback_summary, status
		 FROM weeks WHERE user_id = $1 AND week_number = $2`,
		userID, weekNumber)

	w, err := scanWeek(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWeekNotFound
		}
		return nil, fmt.Errorf("querying week: %w", err)
	}

	sessions, err := db.QuerySessions(ctx, userID, weekNumber)
	if err != nil {
		return nil, err
	}
	w.Sessions = sessions
	return w, nil
}

// QueryWeeks retrieves the full week history in ascending week order, each
// week populated with its sessions. This is the fully-materialized history
// the advisor consumes.
func (db *DB) QueryWeeks(ctx context.Context, userID int) ([]models.WeekRecord, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT week_number, test_max, selected_algorithm,
		 algorithm_scores, predictions, plan, feedback_summary, status
		 FROM weeks WHERE user_id = $1 ORDER BY week_number ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying weeks: %w", err)
	}
	defer rows.Close()

	var weeks []models.WeekRecord
	for rows.Next() {
		w, err := scanWeek(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning week: %w", err)
		}
		weeks = append(weeks, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sessions, err := db.QueryAllSessions(ctx, userID)
	if err != nil {
		return nil, err
	}
	byWeek := make(map[int][]models.SessionRecord)
	for _, s := range sessions {
		byWeek[s.WeekNumber] = append(byWeek[s.WeekNumber], s)
	}
	for i := range weeks {
		weeks[i].Sessions = byWeek[weeks[i].WeekNumber]
	}
	return weeks, nil
}

// CurrentWeek returns the highest-numbered week, or ErrWeekNotFound when the
// history is empty.
func (db *DB) CurrentWeek(ctx context.Context, userID int) (*models.WeekRecord, error) {
	var weekNumber int
	err := db.Pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(week_number), 0) FROM weeks WHERE user_id = $1`,
		userID).Scan(&weekNumber)
	if err != nil {
		return nil, fmt.Errorf("querying current week: %w", err)
	}
	if weekNumber == 0 {
		return nil, ErrWeekNotFound
	}
	return db.GetWeek(ctx, userID, weekNumber)
}

// ImpossibleLastWeek reports whether the week before weekNumber recorded at
// least one impossible session.
func (db *DB) ImpossibleLastWeek(ctx context.Context, userID, weekNumber int) (bool, error) {
	var count int
	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM sessions
		 WHERE user_id = $1 AND week_number = $2 AND feedback = $3`,
		userID, weekNumber-1, models.FeedbackImpossible).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("querying impossible sessions: %w", err)
	}
	return count > 0, nil
}

// scanWeek decodes one week row, including its JSONB columns.
func scanWeek(row pgx.Row) (*models.WeekRecord, error) {
	var w models.WeekRecord
	var scores, predictions, plan, feedback []byte
	err := row.Scan(&w.WeekNumber, &w.TestMax, &w.SelectedAlgorithm,
		&scores, &predictions, &plan, &feedback, &w.Status)
	if err != nil {
		return nil, err
	}
	if err := unmarshalNullable(scores, &w.AlgorithmScores); err != nil {
		return nil, fmt.Errorf("decoding scores: %w", err)
	}
	if err := unmarshalNullable(predictions, &w.Predictions); err != nil {
		return nil, fmt.Errorf("decoding predictions: %w", err)
	}
	if err := unmarshalNullable(plan, &w.Plan); err != nil {
		return nil, fmt.Errorf("decoding plan: %w", err)
	}
	if err := unmarshalNullable(feedback, &w.Feedback); err != nil {
		return nil, fmt.Errorf("decoding feedback summary: %w", err)
	}
	return &w, nil
}

// marshalNullable encodes v as JSON, mapping nil pointers and nil maps to
// SQL NULL instead of the JSON literal "null".
func marshalNullable(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(data) == "null" {
		return nil, nil
	}
	return data, nil
}

func unmarshalNullable(data []byte, dst any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dst)
}
