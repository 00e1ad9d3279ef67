package storage

import (
	"context"
	"fmt"

	"github.com/claude/repwise/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// InsertSession inserts a session row. Returns true if inserted, false if a
// session with the same ID already exists.
func (db *DB) InsertSession(ctx context.Context, userID int, s models.SessionRecord) (bool, error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	tag, err := db.Pool.Exec(ctx,
		`INSERT INTO sessions (id, user_id, week_number, day_number, type,
		 planned_sets, planned_reps, actual_reps, feedback, reserve_estimate, status)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		 ON CONFLICT DO NOTHING`,
		s.ID, userID, s.WeekNumber, s.DayNumber, s.Type,
		s.PlannedSets, s.PlannedReps, s.ActualReps, s.Feedback, s.ReserveEstimate, s.Status)
	if err != nil {
		return false, fmt.Errorf("inserting session: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// UpdateSessionResult records the outcome of a performed session.
func (db *DB) UpdateSessionResult(ctx context.Context, userID int, id uuid.UUID, actualReps int, feedback *string, reserve *float64) error {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE sessions
		 SET actual_reps = $1, feedback = $2, reserve_estimate = $3, status = $4
		 WHERE id = $5 AND user_id = $6`,
		actualReps, feedback, reserve, models.StatusCompleted, id, userID)
	if err != nil {
		return fmt.Errorf("updating session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("session %s: not found", id)
	}
	return nil
}

// QuerySessions retrieves one week's sessions ordered by day.
func (db *DB) QuerySessions(ctx context.Context, userID, weekNumber int) ([]models.SessionRecord, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, week_number, day_number, type, planned_sets, planned_reps,
		 actual_reps, feedback, reserve_estimate, status
		 FROM sessions WHERE user_id = $1 AND week_number = $2
		 ORDER BY day_number ASC`,
		userID, weekNumber)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()
	return scanSessionRows(rows)
}

// QueryAllSessions retrieves every session ordered by week then day.
func (db *DB) QueryAllSessions(ctx context.Context, userID int) ([]models.SessionRecord, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, week_number, day_number, type, planned_sets, planned_reps,
		 actual_reps, feedback, reserve_estimate, status
		 FROM sessions WHERE user_id = $1
		 ORDER BY week_number ASC, day_number ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()
	return scanSessionRows(rows)
}

func scanSessionRows(rows pgx.Rows) ([]models.SessionRecord, error) {
	var result []models.SessionRecord
	for rows.Next() {
		var s models.SessionRecord
		if err := rows.Scan(&s.ID, &s.WeekNumber, &s.DayNumber, &s.Type,
			&s.PlannedSets, &s.PlannedReps, &s.ActualReps,
			&s.Feedback, &s.ReserveEstimate, &s.Status); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}
