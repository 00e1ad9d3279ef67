package mcp

import (
	"context"
	"errors"

	"github.com/claude/repwise/internal/storage"
	"github.com/mark3labs/mcp-go/mcp"
)

// --- Tool definitions ---

var toolGetCurrentPlan = mcp.NewTool("get_current_plan",
	mcp.WithDescription("Get the latest week's training plan: six days of sets, reps, rest, and session type, plus the algorithm that produced it."),
)

var toolGetWeekHistory = mcp.NewTool("get_week_history",
	mcp.WithDescription("Retrieve recorded training weeks with test maxes, plans, predictions, and session results."),
	mcp.WithNumber("week", mcp.Description("A specific week number. Omit for the full history.")),
)

var toolGetAlgorithmScores = mcp.NewTool("get_algorithm_scores",
	mcp.WithDescription("Get the algorithm-selection audit trail: per-week predictions and outcomes for every competing algorithm, plus which one was selected and why."),
)

var toolGetProgressStats = mcp.NewTool("get_progress_stats",
	mcp.WithDescription("Get aggregate progress statistics: test max trajectory, weekly volume, and feedback counts per week."),
)

var toolProcessWeek = mcp.NewTool("process_week",
	mcp.WithDescription("Process a new training week from a capacity test. Scores the competing progression algorithms, selects one, and returns (and stores) the generated six-day plan."),
	mcp.WithNumber("test_max", mcp.Required(), mcp.Description("Max reps achieved in the week's capacity test (day 1)")),
	mcp.WithNumber("week_number", mcp.Description("Week to process. Omit for the week after the latest recorded one.")),
)

// --- Tool handlers ---

func (h *handlers) getCurrentPlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)

	week, err := h.ds.CurrentWeek(ctx, uid)
	if err != nil {
		if errors.Is(err, storage.ErrWeekNotFound) {
			return mcp.NewToolResultError("no weeks recorded yet"), nil
		}
		h.log.Error("mcp get_current_plan", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"week_number": week.WeekNumber,
		"algorithm":   week.SelectedAlgorithm,
		"plan":        week.Plan,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWeekHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)

	if week := req.GetInt("week", 0); week > 0 {
		record, err := h.ds.GetWeek(ctx, uid, week)
		if err != nil {
			if errors.Is(err, storage.ErrWeekNotFound) {
				return mcp.NewToolResultError("week not found"), nil
			}
			h.log.Error("mcp get_week_history", "week", week, "error", err)
			return mcp.NewToolResultError("query failed: " + err.Error()), nil
		}
		result, err := mcp.NewToolResultJSON(record)
		if err != nil {
			return mcp.NewToolResultError("serialization failed"), nil
		}
		return result, nil
	}

	weeks, err := h.ds.QueryWeeks(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_week_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(weeks)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getAlgorithmScores(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)

	entries, err := h.ds.QueryScoringEntries(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_algorithm_scores", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(entries)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getProgressStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)

	stats, err := h.ds.GetProgressStats(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_progress_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(stats)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) processWeek(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	testMax, err := req.RequireFloat("test_max")
	if err != nil {
		return mcp.NewToolResultError("test_max parameter is required"), nil
	}
	weekNumber := req.GetInt("week_number", 0)
	uid := UserIDFromContext(ctx)

	decision, err := h.proc.ProcessWeek(ctx, uid, weekNumber, testMax)
	if err != nil {
		h.log.Error("mcp process_week", "week", weekNumber, "error", err)
		return mcp.NewToolResultError("processing failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(decision)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
