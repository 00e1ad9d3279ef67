package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, proc WeekProcessor, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("RepWise", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("RepWise bodyweight training advisor. Query weekly plans, week history, algorithm scoring, and progress stats, or process a new training week from a capacity test. All data is scoped to the authenticated user."),
	)

	h := &handlers{ds: ds, proc: proc, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetCurrentPlan, Handler: h.getCurrentPlan},
		server.ServerTool{Tool: toolGetWeekHistory, Handler: h.getWeekHistory},
		server.ServerTool{Tool: toolGetAlgorithmScores, Handler: h.getAlgorithmScores},
		server.ServerTool{Tool: toolGetProgressStats, Handler: h.getProgressStats},
		server.ServerTool{Tool: toolProcessWeek, Handler: h.processWeek},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resCurrentPlan, Handler: h.currentPlan},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds   DataSource
	proc WeekProcessor
	log  *slog.Logger
}

// --- Resource definitions ---

var resCurrentPlan = mcp.NewResource(
	"repwise://current_plan",
	"Current Plan",
	mcp.WithResourceDescription("The latest week's six-day training plan with the algorithm that produced it"),
	mcp.WithMIMEType("application/json"),
)
