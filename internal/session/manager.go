package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gyaneshwarpardhi/pageflow/internal/condition"
	"github.com/gyaneshwarpardhi/pageflow/internal/metrics"
	"github.com/gyaneshwarpardhi/pageflow/internal/submission"
)

// Navigator resolves the next page for a submission.
// *engine.Engine satisfies it.
type Navigator interface {
	FirstPage() (string, bool)
	Resolve(ctx context.Context, sub submission.Submission) (*submission.Outcome, error)
}

// Manager walks respondent sessions through the survey graph.
// Submissions for one session are serialised within the process; replicas
// sharing a Redis store still race on the same session.
type Manager struct {
	store Store
	nav   Navigator
	now   func() time.Time
	locks *keyedMutex
}

// NewManager creates a Manager persisting to store.
func NewManager(store Store, nav Navigator) *Manager {
	return &Manager{store: store, nav: nav, now: time.Now, locks: newKeyedMutex()}
}

// Start opens a new session at the first page. An empty survey yields a
// session that is already completed.
func (m *Manager) Start(ctx context.Context) (*State, error) {
	now := m.now()
	state := &State{
		ID:        uuid.NewString(),
		History:   []string{},
		Answers:   condition.Answers{},
		StartedAt: now,
		UpdatedAt: now,
	}
	if first, ok := m.nav.FirstPage(); ok {
		state.CurrentPage = first
	} else {
		state.Completed = true
	}

	if err := m.store.Save(ctx, state); err != nil {
		return nil, err
	}
	metrics.SessionsStarted.Inc()
	if state.Completed {
		metrics.SessionsCompleted.Inc()
	}
	slog.Debug("session started", "id", state.ID, "page", state.CurrentPage)
	return state, nil
}

// Submit records answers for the current page and moves the session to
// the next one. Answers accumulate across pages; a key submitted again
// replaces its earlier values.
//
// If the graph leads back to a page already in the history, the session
// is left unchanged and ErrLoopDetected is returned.
func (m *Manager) Submit(ctx context.Context, id string, answers condition.Answers) (*State, error) {
	unlock := m.locks.Lock(id)
	defer unlock()

	state, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if state.Completed {
		return nil, fmt.Errorf("session %s: %w", id, ErrCompleted)
	}

	merged := state.Answers.Merge(answers)
	out, err := m.nav.Resolve(ctx, submission.Submission{
		SessionID:   id,
		PageID:      state.CurrentPage,
		Answers:     merged,
		SubmittedAt: m.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", id, err)
	}

	if !out.Complete && state.Visited(out.NextPageID) {
		metrics.LoopsDetected.Inc()
		slog.Warn("session loop detected", "id", id, "from", state.CurrentPage, "to", out.NextPageID)
		return nil, fmt.Errorf("session %s: page %q: %w", id, out.NextPageID, ErrLoopDetected)
	}

	state.History = append(state.History, state.CurrentPage)
	state.Answers = merged
	state.UpdatedAt = m.now()
	if out.Complete {
		state.CurrentPage = ""
		state.Completed = true
	} else {
		state.CurrentPage = out.NextPageID
	}

	if err := m.store.Save(ctx, state); err != nil {
		return nil, err
	}
	if state.Completed {
		metrics.SessionsCompleted.Inc()
	}
	slog.Debug("session advanced", "id", id, "via", out.Via, "page", state.CurrentPage, "completed", state.Completed)
	return state, nil
}

func (m *Manager) Get(ctx context.Context, id string) (*State, error) {
	return m.store.Load(ctx, id)
}

// Delete removes a session. Deleting an unknown id returns ErrNotFound.
func (m *Manager) Delete(ctx context.Context, id string) error {
	unlock := m.locks.Lock(id)
	defer unlock()

	if _, err := m.store.Load(ctx, id); err != nil {
		return err
	}
	return m.store.Delete(ctx, id)
}

func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}
