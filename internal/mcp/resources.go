package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) currentPlan(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uid := UserIDFromContext(ctx)

	week, err := h.ds.CurrentWeek(ctx, uid)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(map[string]any{
		"week_number": week.WeekNumber,
		"test_max":    week.TestMax,
		"algorithm":   week.SelectedAlgorithm,
		"plan":        week.Plan,
	})
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
