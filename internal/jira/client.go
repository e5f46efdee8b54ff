// Package jira implements the Jira Cloud REST v3 client used to create
// work logs and validate issue keys.
package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"github.com/tildaslashalef/togglsync/internal/config"
	"github.com/tildaslashalef/togglsync/internal/loggy"
)

// fallbackComment is used when a work log comment would otherwise be empty
const fallbackComment = "Logged from Toggl Track"

// startedFormat is the timestamp layout Jira expects for the work log start
const startedFormat = "2006-01-02T15:04:05.000+0000"

// APIError represents an error response from the Jira API
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("jira API error %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether the error is a Jira 404
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsAuth reports whether the error is a Jira auth failure
func IsAuth(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) &&
		(apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden)
}

// Client handles HTTP communication with the Jira Cloud API
type Client struct {
	baseURL    string
	email      string
	apiToken   string
	maxRetries int
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *loggy.Logger
}

// NewClient creates a new Jira API client from config
func NewClient(cfg config.JiraConfig, logger *loggy.Logger) *Client {
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		email:      cfg.Email,
		apiToken:   cfg.APIToken,
		maxRetries: cfg.MaxRetries,
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

// CreateWorkLog posts a work log to the issue and returns the remote work
// log id. The comment is rendered as an ADF document with one paragraph per
// non-blank line.
func (c *Client) CreateWorkLog(ctx context.Context, issueKey string, timeSpentSeconds int64, startedAt time.Time, comment string) (string, error) {
	body := workLogRequest{
		TimeSpentSeconds: timeSpentSeconds,
		Started:          startedAt.UTC().Format(startedFormat),
		Comment:          buildComment(comment),
	}

	reqURL := fmt.Sprintf("%s/issue/%s/worklog", c.baseURL, issueKey)

	var resp workLogResponse
	if err := c.doJSON(ctx, http.MethodPost, reqURL, body, &resp); err != nil {
		return "", fmt.Errorf("creating work log for %s: %w", issueKey, err)
	}

	c.logger.Debug("created work log",
		"issue_key", issueKey,
		"work_log_id", resp.ID,
		"seconds", timeSpentSeconds,
	)

	return resp.ID, nil
}

// ValidateIssueKey checks whether the issue exists. "Not found" is a normal
// boolean outcome; any other failure (auth, network) is an error.
func (c *Client) ValidateIssueKey(ctx context.Context, issueKey string) (bool, error) {
	reqURL := fmt.Sprintf("%s/issue/%s?fields=key", c.baseURL, issueKey)

	err := c.doJSON(ctx, http.MethodGet, reqURL, nil, nil)
	if err == nil {
		return true, nil
	}
	if IsNotFound(err) {
		return false, nil
	}

	return false, fmt.Errorf("validating issue %s: %w", issueKey, err)
}

// buildComment converts a plain-text comment into an ADF document, one
// paragraph per non-blank line.
func buildComment(comment string) ADFDocument {
	var blocks []ADFBlock
	for _, line := range strings.Split(comment, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		blocks = append(blocks, ADFBlock{
			Type:    "paragraph",
			Content: []ADFText{{Type: "text", Text: line}},
		})
	}

	if len(blocks) == 0 {
		blocks = []ADFBlock{{
			Type:    "paragraph",
			Content: []ADFText{{Type: "text", Text: fallbackComment}},
		}}
	}

	return ADFDocument{Type: "doc", Version: 1, Content: blocks}
}

// doJSON performs an authenticated request with rate limiting and retry.
// out may be nil when the response body is irrelevant.
func (c *Client) doJSON(ctx context.Context, method, reqURL string, body, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
	}

	operation := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		var reader *bytes.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		} else {
			reader = bytes.NewReader(nil)
		}

		req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}

		req.SetBasicAuth(c.email, c.apiToken)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("executing request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			apiErr := &APIError{StatusCode: resp.StatusCode, Message: resp.Status}

			var errBody errorResponse
			if err := json.NewDecoder(resp.Body).Decode(&errBody); err == nil && len(errBody.ErrorMessages) > 0 {
				apiErr.Message = strings.Join(errBody.ErrorMessages, ", ")
			}

			// Client errors won't improve on retry
			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return backoff.Permanent(apiErr)
			}
			return apiErr
		}

		if out != nil {
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return backoff.Permanent(fmt.Errorf("decoding response: %w", err))
			}
		}

		return nil
	}

	return backoff.Retry(operation, backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(c.maxRetries)), ctx))
}
