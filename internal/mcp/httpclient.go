package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/claude/repwise/internal/advisor"
	"github.com/claude/repwise/internal/models"
	"github.com/claude/repwise/internal/storage"
)

// HTTPClient implements DataSource and WeekProcessor by calling the RepWise
// REST API. Used for remote MCP mode where the binary runs locally (stdio)
// but data lives on the remote server (accessed over Tailscale). The API is
// single-user, so the userID arguments are ignored.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Compile-time checks.
var (
	_ DataSource    = (*HTTPClient)(nil)
	_ WeekProcessor = (*HTTPClient)(nil)
)

// NewHTTPClient creates an HTTPClient targeting the given base URL. The API
// key is only needed for ProcessWeek; pass "" for read-only use.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("httpclient: encode payload: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("httpclient: create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("httpclient: read body: %w", err)
	}
	return resp.StatusCode, body, nil
}

func (c *HTTPClient) get(ctx context.Context, path string) ([]byte, error) {
	status, body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, status, body)
	}
	return body, nil
}

func (c *HTTPClient) QueryWeeks(ctx context.Context, _ int) ([]models.WeekRecord, error) {
	body, err := c.get(ctx, "/api/v1/weeks")
	if err != nil {
		return nil, err
	}

	var weeks []models.WeekRecord
	if err := json.Unmarshal(body, &weeks); err != nil {
		return nil, fmt.Errorf("httpclient: decode weeks: %w", err)
	}
	return weeks, nil
}

func (c *HTTPClient) GetWeek(ctx context.Context, _ int, weekNumber int) (*models.WeekRecord, error) {
	status, body, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/weeks/%d", weekNumber), nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, storage.ErrWeekNotFound
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("httpclient: week %d returned %d: %s", weekNumber, status, body)
	}

	var week models.WeekRecord
	if err := json.Unmarshal(body, &week); err != nil {
		return nil, fmt.Errorf("httpclient: decode week: %w", err)
	}
	return &week, nil
}

// CurrentWeek returns the latest week from the full listing; the plan
// endpoint only exposes a summary projection.
func (c *HTTPClient) CurrentWeek(ctx context.Context, userID int) (*models.WeekRecord, error) {
	weeks, err := c.QueryWeeks(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(weeks) == 0 {
		return nil, storage.ErrWeekNotFound
	}
	return &weeks[len(weeks)-1], nil
}

func (c *HTTPClient) QueryScoringEntries(ctx context.Context, _ int) ([]models.ScoringEntry, error) {
	body, err := c.get(ctx, "/api/v1/scoring")
	if err != nil {
		return nil, err
	}

	var entries []models.ScoringEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("httpclient: decode scoring entries: %w", err)
	}
	return entries, nil
}

func (c *HTTPClient) GetProgressStats(ctx context.Context, _ int) (*storage.ProgressStats, error) {
	body, err := c.get(ctx, "/api/v1/stats/progress")
	if err != nil {
		return nil, err
	}

	var stats storage.ProgressStats
	if err := json.Unmarshal(body, &stats); err != nil {
		return nil, fmt.Errorf("httpclient: decode progress stats: %w", err)
	}
	return &stats, nil
}

func (c *HTTPClient) ProcessWeek(ctx context.Context, _ int, weekNumber int, testMax float64) (*advisor.Decision, error) {
	payload := map[string]any{
		"week_number": weekNumber,
		"test_max":    testMax,
	}
	status, body, err := c.do(ctx, http.MethodPost, "/api/v1/weeks/process", payload)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("httpclient: process week returned %d: %s", status, body)
	}

	var decision advisor.Decision
	if err := json.Unmarshal(body, &decision); err != nil {
		return nil, fmt.Errorf("httpclient: decode decision: %w", err)
	}
	return &decision, nil
}
