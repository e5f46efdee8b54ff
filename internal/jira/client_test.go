package jira

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tildaslashalef/togglsync/internal/config"
	"github.com/tildaslashalef/togglsync/internal/loggy"
)

func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	return NewClient(config.JiraConfig{
		Email:      "dev@example.com",
		APIToken:   "test-token",
		BaseURL:    serverURL,
		Timeout:    5 * time.Second,
		MaxRetries: 0,
	}, loggy.NewNoopLogger())
}

func TestCreateWorkLog(t *testing.T) {
	ctx := context.Background()
	started := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

	t.Run("posts the work log and returns its id", func(t *testing.T) {
		var received workLogRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/issue/ABC-123/worklog", r.URL.Path)

			username, password, ok := r.BasicAuth()
			require.True(t, ok)
			assert.Equal(t, "dev@example.com", username)
			assert.Equal(t, "test-token", password)

			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(workLogResponse{ID: "10042", IssueID: "99"})
		}))
		defer server.Close()

		client := newTestClient(t, server.URL)
		id, err := client.CreateWorkLog(ctx, "ABC-123", 4500, started, "09:00-09:30 (30m): fix login\nTotal: 30m")
		require.NoError(t, err)
		assert.Equal(t, "10042", id)

		assert.Equal(t, int64(4500), received.TimeSpentSeconds)
		assert.Equal(t, "2024-03-15T09:00:00.000+0000", received.Started)

		require.Len(t, received.Comment.Content, 2)
		assert.Equal(t, "doc", received.Comment.Type)
		assert.Equal(t, 1, received.Comment.Version)
		assert.Equal(t, "09:00-09:30 (30m): fix login", received.Comment.Content[0].Content[0].Text)
		assert.Equal(t, "Total: 30m", received.Comment.Content[1].Content[0].Text)
	})

	t.Run("non-UTC start times are converted", func(t *testing.T) {
		var received workLogRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			json.NewEncoder(w).Encode(workLogResponse{ID: "1"})
		}))
		defer server.Close()

		loc := time.FixedZone("UTC+2", 2*3600)
		client := newTestClient(t, server.URL)
		_, err := client.CreateWorkLog(ctx, "ABC-123", 600, time.Date(2024, 3, 15, 11, 0, 0, 0, loc), "x")
		require.NoError(t, err)
		assert.Equal(t, "2024-03-15T09:00:00.000+0000", received.Started)
	})

	t.Run("API failure surfaces the error messages", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(errorResponse{ErrorMessages: []string{"worklog time cannot be zero"}})
		}))
		defer server.Close()

		client := newTestClient(t, server.URL)
		_, err := client.CreateWorkLog(ctx, "ABC-123", 0, started, "x")
		require.Error(t, err)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
		assert.Contains(t, apiErr.Message, "worklog time cannot be zero")
	})
}

func TestValidateIssueKey(t *testing.T) {
	ctx := context.Background()

	t.Run("existing issue validates", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/issue/ABC-123", r.URL.Path)
			assert.Equal(t, "key", r.URL.Query().Get("fields"))
			json.NewEncoder(w).Encode(map[string]string{"key": "ABC-123"})
		}))
		defer server.Close()

		client := newTestClient(t, server.URL)
		valid, err := client.ValidateIssueKey(ctx, "ABC-123")
		require.NoError(t, err)
		assert.True(t, valid)
	})

	t.Run("404 is false without error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(errorResponse{ErrorMessages: []string{"Issue does not exist"}})
		}))
		defer server.Close()

		client := newTestClient(t, server.URL)
		valid, err := client.ValidateIssueKey(ctx, "GONE-1")
		require.NoError(t, err)
		assert.False(t, valid)
	})

	t.Run("auth failure is an error, not a negative validation", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		client := newTestClient(t, server.URL)
		_, err := client.ValidateIssueKey(ctx, "ABC-123")
		require.Error(t, err)
		assert.True(t, IsAuth(err))
	})
}

func TestBuildComment(t *testing.T) {
	t.Run("one paragraph per non-blank line", func(t *testing.T) {
		doc := buildComment("line one\n\nline two")

		require.Len(t, doc.Content, 2)
		assert.Equal(t, "line one", doc.Content[0].Content[0].Text)
		assert.Equal(t, "line two", doc.Content[1].Content[0].Text)
	})

	t.Run("empty comment falls back to the default text", func(t *testing.T) {
		doc := buildComment("")

		require.Len(t, doc.Content, 1)
		assert.Equal(t, fallbackComment, doc.Content[0].Content[0].Text)
	})

	t.Run("whitespace-only comment falls back too", func(t *testing.T) {
		doc := buildComment("   \n\t\n")

		require.Len(t, doc.Content, 1)
		assert.Equal(t, fallbackComment, doc.Content[0].Content[0].Text)
	})
}
