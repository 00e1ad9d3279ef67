package storage

import (
	"context"
	"fmt"
)

// ProgressPoint is one week of the capacity progression.
type ProgressPoint struct {
	WeekNumber   int      `json:"week_number"`
	TestMax      *float64 `json:"test_max"`
	Algorithm    string   `json:"algorithm"`
	VolumeTarget int      `json:"volume_target"`
	VolumeActual int      `json:"volume_actual"`
	Perfect      int      `json:"perfect"`
	Easy         int      `json:"easy"`
	Impossible   int      `json:"impossible"`
}

// ProgressStats summarizes the whole program.
type ProgressStats struct {
	Weeks          int             `json:"weeks"`
	FirstTestMax   *float64        `json:"first_test_max"`
	LatestTestMax  *float64        `json:"latest_test_max"`
	TotalSessions  int             `json:"total_sessions"`
	ImpossibleRate float64         `json:"impossible_rate"`
	Points         []ProgressPoint `json:"points"`
}

// GetProgressStats aggregates the capacity trend and per-week feedback from
// the weeks and sessions tables.
func (db *DB) GetProgressStats(ctx context.Context, userID int) (*ProgressStats, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT w.week_number, w.test_max, w.selected_algorithm,
		   COALESCE((w.feedback_summary->>'volume_target')::int, 0),
		   COALESCE((w.feedback_summary->>'volume_actual')::int, 0),
		   COUNT(s.id) FILTER (WHERE s.feedback = 'perfect'),
		   COUNT(s.id) FILTER (WHERE s.feedback = 'easy'),
		   COUNT(s.id) FILTER (WHERE s.feedback = 'impossible')
		 FROM weeks w
		 LEFT JOIN sessions s ON s.user_id = w.user_id AND s.week_number = w.week_number
		 WHERE w.user_id = $1
		 GROUP BY w.week_number, w.test_max, w.selected_algorithm, w.feedback_summary
		 ORDER BY w.week_number ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying progress: %w", err)
	}
	defer rows.Close()

	stats := &ProgressStats{}
	totalFeedback, impossible := 0, 0
	for rows.Next() {
		var p ProgressPoint
		if err := rows.Scan(&p.WeekNumber, &p.TestMax, &p.Algorithm,
			&p.VolumeTarget, &p.VolumeActual,
			&p.Perfect, &p.Easy, &p.Impossible); err != nil {
			return nil, fmt.Errorf("scanning progress point: %w", err)
		}
		if p.TestMax != nil {
			if stats.FirstTestMax == nil {
				stats.FirstTestMax = p.TestMax
			}
			stats.LatestTestMax = p.TestMax
		}
		totalFeedback += p.Perfect + p.Easy + p.Impossible
		impossible += p.Impossible
		stats.Points = append(stats.Points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stats.Weeks = len(stats.Points)
	if totalFeedback > 0 {
		stats.ImpossibleRate = float64(impossible) / float64(totalFeedback)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM sessions WHERE user_id = $1`, userID).Scan(&stats.TotalSessions)
	if err != nil {
		return nil, fmt.Errorf("counting sessions: %w", err)
	}
	return stats, nil
}
