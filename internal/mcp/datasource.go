package mcp

import (
	"context"

	"github.com/claude/repwise/internal/advisor"
	"github.com/claude/repwise/internal/models"
	"github.com/claude/repwise/internal/storage"
)

// DataSource abstracts the read side of the data layer for MCP tools. Both
// *storage.DB (local) and HTTPClient (remote via REST API) satisfy this
// interface.
type DataSource interface {
	QueryWeeks(ctx context.Context, userID int) ([]models.WeekRecord, error)
	GetWeek(ctx context.Context, userID, weekNumber int) (*models.WeekRecord, error)
	CurrentWeek(ctx context.Context, userID int) (*models.WeekRecord, error)
	QueryScoringEntries(ctx context.Context, userID int) ([]models.ScoringEntry, error)
	GetProgressStats(ctx context.Context, userID int) (*storage.ProgressStats, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)

// WeekProcessor runs the weekly pipeline for the process_week tool. In local
// mode the advisor runs against the database directly; in remote mode the
// REST API does the processing server-side.
type WeekProcessor interface {
	ProcessWeek(ctx context.Context, userID, weekNumber int, testMax float64) (*advisor.Decision, error)
}

// LocalProcessor satisfies WeekProcessor against a local database.
type LocalProcessor struct {
	DB      *storage.DB
	Advisor *advisor.Advisor
}

func (p LocalProcessor) ProcessWeek(ctx context.Context, userID, weekNumber int, testMax float64) (*advisor.Decision, error) {
	return p.Advisor.ProcessAndStore(ctx, p.DB, userID, weekNumber, testMax)
}

var _ WeekProcessor = LocalProcessor{}
