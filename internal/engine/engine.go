package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gyaneshwarpardhi/pageflow/internal/config"
	"github.com/gyaneshwarpardhi/pageflow/internal/graph"
	"github.com/gyaneshwarpardhi/pageflow/internal/metrics"
	"github.com/gyaneshwarpardhi/pageflow/internal/submission"
)

var (
	ErrQueueFull   = errors.New("navigation queue full")
	ErrTimeout     = errors.New("navigation timeout")
	ErrUnknownPage = errors.New("unknown page")
)

// Progress summarises the size of the active survey graph.
type Progress struct {
	Pages          int    `json:"pages"`
	FirstPage      string `json:"first_page,omitempty"`
	MaxDepth       int    `json:"max_depth"`
	MaxTransitions int    `json:"max_transitions"`
}

// Engine resolves page submissions against the active survey graph.
type Engine struct {
	graph    atomic.Pointer[graph.Graph]
	progress atomic.Pointer[Progress]
	pool     *workerPool[*navWork]
	conf     config.EngineConf
}

type navWork struct {
	sub     submission.Submission
	resultC chan navResult
}

type navResult struct {
	out *submission.Outcome
	err error
}

// New creates an Engine using conf and starts the worker pool.
func New(ctx context.Context, g *graph.Graph, conf config.EngineConf) *Engine {
	if conf.Workers <= 0 {
		conf.Workers = config.DefaultWorkers
	}
	if conf.QueueDepth <= 0 {
		conf.QueueDepth = config.DefaultQueueDepth
	}
	if conf.TimeoutMs <= 0 {
		conf.TimeoutMs = config.DefaultTimeoutMs
	}
	e := &Engine{conf: conf}
	e.SwapGraph(g)

	e.pool = newWorkerPool(ctx, conf.Workers, conf.QueueDepth, func(ctx context.Context, w *navWork) {
		out, err := e.resolve(w.sub)
		// resultC is buffered; the waiter may already have timed out.
		w.resultC <- navResult{out: out, err: err}
	})
	return e
}

// SwapGraph atomically replaces the survey graph (used on hot-reload).
func (e *Engine) SwapGraph(g *graph.Graph) {
	p := &Progress{
		Pages:          g.Len(),
		MaxDepth:       g.FindMaxDepth(),
		MaxTransitions: g.MaxTransitions(),
	}
	if first := g.FirstPage(); first != nil {
		p.FirstPage = first.ID()
	}
	e.graph.Store(g)
	e.progress.Store(p)
	metrics.GraphPages.Set(float64(p.Pages))
	metrics.GraphMaxDepth.Set(float64(p.MaxDepth))
}

// Follow rebuilds and swaps the graph whenever l reloads a config. Reload
// has already validated it, so a build failure here only logs.
func (e *Engine) Follow(l *config.Loader) {
	l.OnChange(func(cfg *config.SurveyConfig) {
		g, err := graph.Build(cfg)
		if err != nil {
			slog.Warn("survey reload skipped: graph build failed", "err", err)
			return
		}
		e.SwapGraph(g)
		slog.Info("survey reloaded", "pages", g.Len(), "max_depth", e.Progress().MaxDepth)
	})
}

// Graph returns the active graph.
func (e *Engine) Graph() *graph.Graph {
	return e.graph.Load()
}

// Progress returns the size summary of the active graph.
func (e *Engine) Progress() Progress {
	return *e.progress.Load()
}

// FirstPage returns the id of the first page, false for an empty survey.
func (e *Engine) FirstPage() (string, bool) {
	first := e.graph.Load().FirstPage()
	if first == nil {
		return "", false
	}
	return first.ID(), true
}

// Resolve queues a submission and waits for the next page.
func (e *Engine) Resolve(ctx context.Context, sub submission.Submission) (*submission.Outcome, error) {
	w := &navWork{sub: sub, resultC: make(chan navResult, 1)}
	if !e.pool.Submit(w) {
		metrics.NavigationsDropped.Inc()
		return nil, fmt.Errorf("%w (capacity %d)", ErrQueueFull, e.conf.QueueDepth)
	}
	metrics.NavigationsEnqueued.Inc()

	timeout := time.Duration(e.conf.TimeoutMs) * time.Millisecond
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-w.resultC:
		return res.out, res.err
	case <-timer.C:
		return nil, fmt.Errorf("%w after %v", ErrTimeout, timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ResolveBatch resolves every submission concurrently. Failures are
// reported per item in Outcome.Error; the result order matches subs.
func (e *Engine) ResolveBatch(ctx context.Context, subs []submission.Submission) []*submission.Outcome {
	out := make([]*submission.Outcome, len(subs))
	var wg sync.WaitGroup
	for i, sub := range subs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := e.Resolve(ctx, sub)
			if err != nil {
				res = &submission.Outcome{
					SessionID: sub.SessionID,
					PageID:    sub.PageID,
					Via:       string(graph.ViaNone),
					Error:     err.Error(),
				}
			}
			out[i] = res
		}()
	}
	wg.Wait()
	return out
}

// QueueUtilization returns queue used / capacity (0–1).
func (e *Engine) QueueUtilization() float64 {
	if e.pool.QueueCap() == 0 {
		return 0
	}
	return float64(e.pool.QueueLen()) / float64(e.pool.QueueCap())
}

// resolve runs one navigation step against the graph loaded at call time.
// An empty PageID asks for the first page.
func (e *Engine) resolve(sub submission.Submission) (*submission.Outcome, error) {
	start := time.Now()
	g := e.graph.Load()
	out := &submission.Outcome{SessionID: sub.SessionID, PageID: sub.PageID}

	if sub.PageID == "" {
		if first := g.FirstPage(); first != nil {
			out.NextPageID = first.ID()
			out.Via = "start"
		} else {
			out.Complete = true
			out.Via = string(graph.ViaNone)
		}
	} else {
		current := g.Node(sub.PageID)
		if current == nil {
			return nil, fmt.Errorf("%w %q", ErrUnknownPage, sub.PageID)
		}
		res := g.Resolve(current, sub.Answers)
		out.Via = string(res.Via)
		if res.Next != nil {
			out.NextPageID = res.Next.ID()
		} else {
			out.Complete = true
		}
	}

	elapsed := time.Since(start)
	out.DurationMs = elapsed.Milliseconds()
	metrics.NavigationsResolved.WithLabelValues(out.Via).Inc()
	metrics.NavigationDuration.Observe(float64(elapsed.Microseconds()) / 1000)
	return out, nil
}

// Shutdown drains the pool gracefully.
func (e *Engine) Shutdown() {
	e.pool.Drain()
}
