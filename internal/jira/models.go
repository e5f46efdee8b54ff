package jira

// ADF (Atlassian Document Format) types for the work log comment body.
// Only the doc/paragraph/text subset the API requires is modeled.

// ADFDocument is the top-level comment document
type ADFDocument struct {
	Type    string     `json:"type"`
	Version int        `json:"version"`
	Content []ADFBlock `json:"content"`
}

// ADFBlock is one paragraph of the comment
type ADFBlock struct {
	Type    string    `json:"type"`
	Content []ADFText `json:"content"`
}

// ADFText is one text node inside a paragraph
type ADFText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// workLogRequest is the POST body for creating a work log
type workLogRequest struct {
	TimeSpentSeconds int64       `json:"timeSpentSeconds"`
	Started          string      `json:"started"`
	Comment          ADFDocument `json:"comment"`
}

// workLogResponse is the relevant part of the create-work-log response
type workLogResponse struct {
	ID        string `json:"id"`
	IssueID   string `json:"issueId"`
	Self      string `json:"self,omitempty"`
	Started   string `json:"started,omitempty"`
	TimeSpent string `json:"timeSpent,omitempty"`
}

// errorResponse is the Jira error body shape
type errorResponse struct {
	ErrorMessages []string          `json:"errorMessages,omitempty"`
	Errors        map[string]string `json:"errors,omitempty"`
}
