// Package toggl implements the Toggl Track API v9 client used to fetch
// time entries for a date range.
package toggl

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"github.com/tildaslashalef/togglsync/internal/config"
	"github.com/tildaslashalef/togglsync/internal/loggy"
)

// APIError represents an error response from the Toggl API
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("toggl API error %d: %s", e.StatusCode, e.Message)
}

// Client handles HTTP communication with the Toggl Track API
type Client struct {
	baseURL     string
	apiToken    string
	workspaceID int64
	projectID   int64
	maxRetries  int
	httpClient  *http.Client
	limiter     *rate.Limiter
	logger      *loggy.Logger
}

// NewClient creates a new Toggl API client from config
func NewClient(cfg config.TogglConfig, logger *loggy.Logger) *Client {
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Client{
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		apiToken:    cfg.APIToken,
		workspaceID: cfg.WorkspaceID,
		projectID:   cfg.ProjectID,
		maxRetries:  cfg.MaxRetries,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		limiter: newLimiter(cfg.RequestsPerMinute, cfg.BurstLimit),
		logger:  logger,
	}
}

// newLimiter creates a rate limiter from RPM and burst settings
func newLimiter(rpm, burst int) *rate.Limiter {
	if rpm <= 0 {
		return rate.NewLimiter(rate.Inf, burst)
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(float64(rpm)/60.0), burst)
}

// GetTimeEntries fetches the raw time entries between start and end,
// filtered by the configured workspace and project scope. An empty result
// is a valid, non-error outcome; only transport and API failures return an
// error.
func (c *Client) GetTimeEntries(ctx context.Context, start, end time.Time) ([]TimeEntry, error) {
	params := url.Values{}
	params.Set("start_date", start.UTC().Format(time.RFC3339))
	params.Set("end_date", end.UTC().Format(time.RFC3339))

	reqURL := fmt.Sprintf("%s/me/time_entries?%s", c.baseURL, params.Encode())

	var entries []TimeEntry
	if err := c.getJSON(ctx, reqURL, &entries); err != nil {
		return nil, err
	}

	// Workspace/project scoping is applied client-side; the endpoint has
	// no project filter.
	filtered := entries[:0]
	for _, e := range entries {
		if c.workspaceID != 0 && e.WorkspaceID != c.workspaceID {
			continue
		}
		if c.projectID != 0 && e.ProjectID != c.projectID {
			continue
		}
		filtered = append(filtered, e)
	}

	c.logger.Debug("fetched time entries",
		"total", len(entries),
		"after_scope_filter", len(filtered),
		"start", start,
		"end", end,
	)

	return filtered, nil
}

// GetProject fetches project details for display. Failures degrade to a
// nil project with a warning, matching the non-critical role of the data.
func (c *Client) GetProject(ctx context.Context, projectID int64) (*Project, error) {
	if projectID == 0 || c.workspaceID == 0 {
		return nil, nil
	}

	reqURL := fmt.Sprintf("%s/workspaces/%d/projects/%d", c.baseURL, c.workspaceID, projectID)

	var project Project
	if err := c.getJSON(ctx, reqURL, &project); err != nil {
		c.logger.Warn("failed to fetch project details", "project_id", projectID, "error", err)
		return nil, err
	}

	return &project, nil
}

// getJSON performs an authenticated GET with rate limiting and retry, and
// decodes the response body into out.
func (c *Client) getJSON(ctx context.Context, reqURL string, out interface{}) error {
	operation := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}

		// Toggl basic auth: the token is the username, the password is
		// the literal string "api_token".
		req.SetBasicAuth(c.apiToken, "api_token")
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("executing request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			apiErr := &APIError{StatusCode: resp.StatusCode, Message: resp.Status}

			var body struct {
				Message string `json:"message"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Message != "" {
				apiErr.Message = body.Message
			}

			// Client errors won't improve on retry
			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return backoff.Permanent(apiErr)
			}
			return apiErr
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return backoff.Permanent(fmt.Errorf("decoding response: %w", err))
		}

		return nil
	}

	return backoff.Retry(operation, backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(c.maxRetries)), ctx))
}
