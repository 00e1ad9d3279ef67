// Package importer loads training-log exports into the database. An export
// is a directory of JSON files, each holding one or more completed weeks
// with their sessions. A SQLite state database remembers which files were
// already imported (by path, size, and hash) so re-runs only pick up new or
// changed files.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/claude/repwise/internal/models"
	"github.com/claude/repwise/internal/storage"
	"github.com/google/uuid"
)

// defaultUserID scopes imported data in single-user deployments.
const defaultUserID = 1

// Stats tracks import progress.
type Stats struct {
	FilesProcessed int
	FilesSkipped   int
	FilesErrored   int

	WeeksImported      int
	SessionsInserted   int
	SessionsDuplicated int

	RejectedSessions []string
}

// exportFile is the JSON schema of one training-log export file.
type exportFile struct {
	Weeks []exportWeek `json:"weeks"`
}

type exportWeek struct {
	WeekNumber int             `json:"week_number"`
	TestMax    *float64        `json:"test_max"`
	Algorithm  string          `json:"algorithm,omitempty"`
	Sessions   []exportSession `json:"sessions"`
}

type exportSession struct {
	Day             int      `json:"day"`
	Type            string   `json:"type"`
	PlannedSets     int      `json:"planned_sets"`
	PlannedReps     int      `json:"planned_reps"`
	ActualReps      int      `json:"actual_reps"`
	Feedback        *string  `json:"feedback,omitempty"`
	ReserveEstimate *float64 `json:"reserve_estimate,omitempty"`
}

// Importer reads export files from a directory and inserts weeks and
// sessions into the DB.
type Importer struct {
	db     *storage.DB
	state  *StateDB
	log    *slog.Logger
	dryRun bool
	stats  Stats
}

// New creates a new Importer. state may be nil, in which case every file is
// processed on every run.
func New(db *storage.DB, state *StateDB, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{db: db, state: state, log: log, dryRun: dryRun}
}

// Import processes all .json files under the given export directory.
func (imp *Importer) Import(ctx context.Context, exportDir string) (*Stats, error) {
	files, err := filepath.Glob(filepath.Join(exportDir, "*.json"))
	if err != nil {
		return &imp.stats, err
	}
	sort.Strings(files)

	for _, f := range files {
		skip, size, hash, err := imp.alreadyImported(f)
		if err != nil {
			return &imp.stats, err
		}
		if skip {
			imp.stats.FilesSkipped++
			continue
		}

		if err := imp.importFile(ctx, f); err != nil {
			imp.log.Warn("import failed", "file", f, "error", err)
			imp.stats.FilesErrored++
			continue
		}
		imp.stats.FilesProcessed++

		if imp.state != nil && !imp.dryRun {
			if err := imp.state.MarkImported(filepath.Base(f), size, hash); err != nil {
				return &imp.stats, fmt.Errorf("marking %s imported: %w", f, err)
			}
		}
	}

	return &imp.stats, nil
}

func (imp *Importer) alreadyImported(path string) (skip bool, size int64, hash string, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, 0, "", fmt.Errorf("stat %s: %w", path, err)
	}
	hash, err = HashFile(path)
	if err != nil {
		return false, 0, "", fmt.Errorf("hashing %s: %w", path, err)
	}
	if imp.state == nil {
		return false, info.Size(), hash, nil
	}
	skip, err = imp.state.IsImported(filepath.Base(path), info.Size(), hash)
	if err != nil {
		return false, 0, "", fmt.Errorf("checking state for %s: %w", path, err)
	}
	return skip, info.Size(), hash, nil
}

// importFile parses one export file and inserts its weeks and sessions.
func (imp *Importer) importFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var export exportFile
	if err := json.Unmarshal(data, &export); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	weeks := export.Weeks
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].WeekNumber < weeks[j].WeekNumber })

	for _, wk := range weeks {
		if wk.WeekNumber < 1 {
			imp.reject(path, wk.WeekNumber, 0, fmt.Errorf("week_number must be >= 1"))
			continue
		}

		sessions, summary := imp.convertSessions(path, wk)

		record := models.WeekRecord{
			WeekNumber:        wk.WeekNumber,
			TestMax:           wk.TestMax,
			SelectedAlgorithm: wk.Algorithm,
			Feedback:          summary,
			Status:            models.StatusCompleted,
		}

		if !imp.dryRun {
			if err := imp.db.UpsertWeek(ctx, defaultUserID, record); err != nil {
				return fmt.Errorf("week %d: %w", wk.WeekNumber, err)
			}
			for _, s := range sessions {
				inserted, err := imp.db.InsertSession(ctx, defaultUserID, s)
				if err != nil {
					return fmt.Errorf("week %d day %d: %w", s.WeekNumber, s.DayNumber, err)
				}
				if inserted {
					imp.stats.SessionsInserted++
				} else {
					imp.stats.SessionsDuplicated++
				}
			}
		} else {
			imp.stats.SessionsInserted += len(sessions)
		}
		imp.stats.WeeksImported++
	}

	return nil
}

// convertSessions validates and converts a week's sessions, accumulating the
// feedback summary as it goes. Invalid sessions are rejected individually so
// one bad row does not sink the file.
func (imp *Importer) convertSessions(path string, wk exportWeek) ([]models.SessionRecord, *models.FeedbackSummary) {
	var (
		sessions     []models.SessionRecord
		summary      models.FeedbackSummary
		reserveSum   float64
		reserveCount int
	)
	for _, es := range wk.Sessions {
		s := models.SessionRecord{
			ID:              sessionID(defaultUserID, wk.WeekNumber, es.Day),
			WeekNumber:      wk.WeekNumber,
			DayNumber:       es.Day,
			Type:            es.Type,
			PlannedSets:     es.PlannedSets,
			PlannedReps:     es.PlannedReps,
			ActualReps:      es.ActualReps,
			Feedback:        es.Feedback,
			ReserveEstimate: es.ReserveEstimate,
			Status:          models.StatusCompleted,
		}
		if err := s.Validate(); err != nil {
			imp.reject(path, wk.WeekNumber, es.Day, err)
			continue
		}
		if fb := es.Feedback; fb != nil {
			switch *fb {
			case models.FeedbackEasy:
				summary.Easy++
			case models.FeedbackPerfect:
				summary.Perfect++
			case models.FeedbackImpossible:
				summary.Impossible++
			}
		}
		if es.ReserveEstimate != nil {
			reserveSum += *es.ReserveEstimate
			reserveCount++
		}
		if es.Type == models.SessionTypeTraining {
			summary.VolumeTarget += es.PlannedSets * es.PlannedReps
			summary.VolumeActual += es.ActualReps
		}
		sessions = append(sessions, s)
	}
	if reserveCount > 0 {
		summary.AvgReserve = reserveSum / float64(reserveCount)
	}
	return sessions, &summary
}

func (imp *Importer) reject(path string, week, day int, err error) {
	msg := fmt.Sprintf("%s: week %d day %d: %v", filepath.Base(path), week, day, err)
	imp.stats.RejectedSessions = append(imp.stats.RejectedSessions, msg)
	imp.log.Warn("rejected session", "file", filepath.Base(path), "week", week, "day", day, "error", err)
}

// sessionID derives a stable UUID from the session's natural key, so
// re-importing the same export deduplicates on the primary key.
func sessionID(userID, weekNumber, dayNumber int) uuid.UUID {
	key := fmt.Sprintf("repwise:%d:%d:%d", userID, weekNumber, dayNumber)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key))
}
