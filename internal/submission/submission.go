package submission

import (
	"time"

	"github.com/gyaneshwarpardhi/pageflow/internal/condition"
)

// Submission is the canonical input for one navigation step: the answers
// given on a page.
type Submission struct {
	SessionID   string            `json:"session_id,omitempty"`
	PageID      string            `json:"page_id"` // empty = start of survey
	Answers     condition.Answers `json:"answers"`
	SubmittedAt time.Time         `json:"-"`
}

// Outcome is the navigator's answer to a Submission.
type Outcome struct {
	SessionID  string `json:"session_id,omitempty"`
	PageID     string `json:"page_id"`
	NextPageID string `json:"next_page_id,omitempty"`
	Complete   bool   `json:"complete"`
	Via        string `json:"via"` // "route", "default", "none" or "start"
	DurationMs int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}
