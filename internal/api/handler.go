package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gyaneshwarpardhi/pageflow/internal/condition"
	"github.com/gyaneshwarpardhi/pageflow/internal/config"
	"github.com/gyaneshwarpardhi/pageflow/internal/engine"
	"github.com/gyaneshwarpardhi/pageflow/internal/graph"
	"github.com/gyaneshwarpardhi/pageflow/internal/metrics"
	"github.com/gyaneshwarpardhi/pageflow/internal/session"
	"github.com/gyaneshwarpardhi/pageflow/internal/submission"
)

const maxBatchSize = 100

// Handler holds all HTTP handler dependencies.
type Handler struct {
	eng      *engine.Engine
	loader   *config.Loader
	sessions *session.Manager
}

// New creates an HTTP handler and registers all routes.
func New(eng *engine.Engine, loader *config.Loader, sessions *session.Manager) http.Handler {
	h := &Handler{eng: eng, loader: loader, sessions: sessions}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(loggingMiddleware)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/survey", h.getSurvey)
		r.Get("/survey/pages/{pageID}", h.getPage)
		r.Get("/survey/graph", h.getGraph)
		r.Post("/survey/reload", h.reloadSurvey)

		r.Post("/navigate", h.navigate)
		r.Post("/navigate/batch", h.navigateBatch)

		r.Post("/sessions", h.startSession)
		r.Get("/sessions", h.listSessions)
		r.Get("/sessions/{id}", h.getSession)
		r.Post("/sessions/{id}/answers", h.submitAnswers)
		r.Delete("/sessions/{id}", h.deleteSession)
	})

	r.Get("/healthz", h.healthz)
	r.Get("/readyz", h.readyz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

type pageSummary struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
}

// GET /v1/survey: loaded survey and its graph summary.
func (h *Handler) getSurvey(w http.ResponseWriter, r *http.Request) {
	cfg := h.loader.Config()
	g := h.eng.Graph()

	pages := make([]pageSummary, 0, g.Len())
	for _, n := range g.Nodes() {
		pages = append(pages, pageSummary{ID: n.ID(), Position: n.Position()})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"version":  cfg.Version,
		"id":       cfg.Survey.ID,
		"title":    cfg.Survey.Title,
		"progress": h.eng.Progress(),
		"pages":    pages,
		"dangling": g.Dangling(),
	})
}

type routeView struct {
	Kind        string `json:"kind"`
	Condition   string `json:"condition"`
	Destination string `json:"destination"`
}

type pageView struct {
	ID        string           `json:"id"`
	Position  int              `json:"position"`
	Questions []graph.Question `json:"questions"`
	Routes    []routeView      `json:"routes"`
	Default   string           `json:"default,omitempty"`
	Depth     int              `json:"depth"`
}

// GET /v1/survey/pages/{pageID}: one page with its routes in evaluation order.
func (h *Handler) getPage(w http.ResponseWriter, r *http.Request) {
	g := h.eng.Graph()
	n := g.Node(chi.URLParam(r, "pageID"))
	if n == nil {
		writeError(w, http.StatusNotFound, "page not found")
		return
	}

	edges := graph.OrderedEdges(n)
	view := pageView{
		ID:        n.ID(),
		Position:  n.Position(),
		Questions: n.Questions(),
		Routes:    make([]routeView, 0, len(edges)),
		Depth:     g.FindDepth(n.ID()),
	}
	for _, e := range edges {
		kind := condition.KindLogical
		if e.IsDirect() {
			kind = condition.KindDirect
		}
		view.Routes = append(view.Routes, routeView{
			Kind:        string(kind),
			Condition:   e.String(),
			Destination: e.Destination,
		})
	}
	if next := g.DefaultNext(n); next != nil {
		view.Default = next.ID()
	}
	writeJSON(w, http.StatusOK, view)
}

// GET /v1/survey/graph: Mermaid diagram, optionally overlaid with a session.
func (h *Handler) getGraph(w http.ResponseWriter, r *http.Request) {
	var overlay *graph.Overlay
	if id := r.URL.Query().Get("session"); id != "" {
		st, err := h.sessions.Get(r.Context(), id)
		if err != nil {
			writeSessionError(w, err)
			return
		}
		overlay = &graph.Overlay{Visited: st.History, Current: st.CurrentPage}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(graph.GenerateMermaid(h.eng.Graph(), overlay)))
}

// POST /v1/survey/reload: hot-reload the survey from disk. The engine picks
// up the new graph through its Follow callback.
func (h *Handler) reloadSurvey(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.loader.Reload()
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, config.ErrInvalid) {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reloaded": true,
		"pages":    h.eng.Graph().Len(),
		"warnings": config.Lint(cfg),
	})
}

// POST /v1/navigate: resolve the page after one submission.
func (h *Handler) navigate(w http.ResponseWriter, r *http.Request) {
	var sub submission.Submission
	if err := decodeJSON(w, r, &sub); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sub.SubmittedAt = time.Now()

	out, err := h.eng.Resolve(r.Context(), sub)
	if err != nil {
		writeNavigationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// POST /v1/navigate/batch: resolve up to maxBatchSize submissions.
func (h *Handler) navigateBatch(w http.ResponseWriter, r *http.Request) {
	var subs []submission.Submission
	if err := decodeJSON(w, r, &subs); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(subs) == 0 {
		writeError(w, http.StatusBadRequest, "batch must contain at least one submission")
		return
	}
	if len(subs) > maxBatchSize {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("batch size %d exceeds max %d", len(subs), maxBatchSize))
		return
	}

	now := time.Now()
	for i := range subs {
		subs[i].SubmittedAt = now
	}
	outs := h.eng.ResolveBatch(r.Context(), subs)
	failed := 0
	for _, o := range outs {
		if o.Error != "" {
			failed++
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"batch_id": uuid.New().String(),
		"total":    len(subs),
		"failed":   failed,
		"outcomes": outs,
	})
}

type sessionView struct {
	*session.State
	Progress float64 `json:"progress"`
}

func (h *Handler) view(st *session.State) sessionView {
	return sessionView{State: st, Progress: session.Progress(st, h.eng.Progress().MaxDepth)}
}

// POST /v1/sessions: start a respondent session at the first page.
func (h *Handler) startSession(w http.ResponseWriter, r *http.Request) {
	st, err := h.sessions.Start(r.Context())
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.view(st))
}

func (h *Handler) listSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := h.sessions.List(r.Context())
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"sessions": ids})
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	st, err := h.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.view(st))
}

type answersRequest struct {
	Answers condition.Answers `json:"answers"`
}

// POST /v1/sessions/{id}/answers: submit the current page and advance.
func (h *Handler) submitAnswers(w http.ResponseWriter, r *http.Request) {
	var req answersRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	st, err := h.sessions.Submit(r.Context(), chi.URLParam(r, "id"), req.Answers)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.view(st))
}

func (h *Handler) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /healthz: always 200 while the process is up.
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /readyz: 503 if the navigation queue is >80% full.
func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	util := h.eng.QueueUtilization()
	metrics.QueueUtilization.Set(util)
	if util > 0.8 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":            "overloaded",
			"queue_utilization": util,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":            "ready",
		"queue_utilization": util,
	})
}

func writeNavigationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrUnknownPage):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, engine.ErrQueueFull):
		writeError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, engine.ErrTimeout):
		writeError(w, http.StatusGatewayTimeout, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, session.ErrCompleted), errors.Is(err, session.ErrLoopDetected):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeNavigationError(w, err)
	}
}
