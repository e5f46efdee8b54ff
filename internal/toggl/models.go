package toggl

import "time"

// TimeEntry represents a raw time entry as returned by the Toggl Track API.
// Duration follows the API convention: a negative value means the entry is
// still running.
type TimeEntry struct {
	ID          int64      `json:"id"`
	Description string     `json:"description"`
	Duration    int64      `json:"duration"`
	Start       time.Time  `json:"start"`
	Stop        *time.Time `json:"stop,omitempty"`
	ProjectID   int64      `json:"project_id"`
	WorkspaceID int64      `json:"workspace_id"`
	TaskID      int64      `json:"task_id,omitempty"`
	Billable    bool       `json:"billable"`
	Tags        []string   `json:"tags,omitempty"`
}

// Project represents a Toggl project, fetched for display purposes only.
type Project struct {
	ID          int64  `json:"id"`
	WorkspaceID int64  `json:"workspace_id"`
	Name        string `json:"name"`
	Active      bool   `json:"active"`
	Color       string `json:"color,omitempty"`
}
