package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/claude/repwise/internal/models"
)

// InsertScoringEntry appends one row to the model-selection audit trail.
// The trail is append-only: re-processing a week overwrites its entry rather
// than duplicating it, but entries are never deleted.
func (db *DB) InsertScoringEntry(ctx context.Context, userID int, e models.ScoringEntry) error {
	perAlgo, err := json.Marshal(e.PerAlgorithm)
	if err != nil {
		return fmt.Errorf("encoding per-algorithm outcomes: %w", err)
	}

	_, err = db.Pool.Exec(ctx,
		`INSERT INTO scoring_entries (user_id, week_number, per_algorithm, selected_algorithm, reasoning)
		 VALUES ($1,$2,$3,$4,$5)
		 ON CONFLICT (user_id, week_number) DO UPDATE SET
		   per_algorithm = EXCLUDED.per_algorithm,
		   selected_algorithm = EXCLUDED.selected_algorithm,
		   reasoning = EXCLUDED.reasoning`,
		userID, e.WeekNumber, perAlgo, e.SelectedAlgorithm, e.Reasoning)
	if err != nil {
		return fmt.Errorf("inserting scoring entry: %w", err)
	}
	return nil
}

// QueryScoringEntries retrieves the audit trail in ascending week order.
func (db *DB) QueryScoringEntries(ctx context.Context, userID int) ([]models.ScoringEntry, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT week_number, per_algorithm, selected_algorithm, reasoning
		 FROM scoring_entries WHERE user_id = $1 ORDER BY week_number ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying scoring entries: %w", err)
	}
	defer rows.Close()

	var entries []models.ScoringEntry
	for rows.Next() {
		var e models.ScoringEntry
		var perAlgo []byte
		if err := rows.Scan(&e.WeekNumber, &perAlgo, &e.SelectedAlgorithm, &e.Reasoning); err != nil {
			return nil, fmt.Errorf("scanning scoring entry: %w", err)
		}
		if len(perAlgo) > 0 {
			if err := json.Unmarshal(perAlgo, &e.PerAlgorithm); err != nil {
				return nil, fmt.Errorf("decoding per-algorithm outcomes: %w", err)
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
