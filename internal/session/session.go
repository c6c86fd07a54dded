package session

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/gyaneshwarpardhi/pageflow/internal/condition"
)

var (
	ErrNotFound     = errors.New("session not found")
	ErrCompleted    = errors.New("session already completed")
	ErrLoopDetected = errors.New("next page was already visited")
)

// State is one respondent's progress through a survey.
type State struct {
	ID          string            `json:"id"`
	CurrentPage string            `json:"current_page,omitempty"`
	History     []string          `json:"history"` // pages already submitted, oldest first
	Answers     condition.Answers `json:"answers"`
	Completed   bool              `json:"completed"`
	StartedAt   time.Time         `json:"started_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Clone returns a deep copy of s.
func (s *State) Clone() *State {
	c := *s
	c.History = slices.Clone(s.History)
	c.Answers = make(condition.Answers, len(s.Answers))
	for i, a := range s.Answers {
		c.Answers[i] = condition.Answer{Key: a.Key, Values: slices.Clone(a.Values)}
	}
	return &c
}

// Visited reports whether page was already shown in this session.
func (s *State) Visited(page string) bool {
	return page == s.CurrentPage || slices.Contains(s.History, page)
}

// Progress returns how far along s is, given the survey's worst-case
// step count. It never exceeds 1 and is 1 once completed.
func Progress(s *State, maxDepth int) float64 {
	if s.Completed {
		return 1
	}
	if maxDepth <= 0 {
		return 0
	}
	p := float64(len(s.History)) / float64(maxDepth)
	if p > 1 {
		return 1
	}
	return p
}

// Store persists session state.
type Store interface {
	// Save persists the state under state.ID.
	Save(ctx context.Context, state *State) error
	// Load returns ErrNotFound if the session does not exist.
	Load(ctx context.Context, id string) (*State, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]string, error)
}
