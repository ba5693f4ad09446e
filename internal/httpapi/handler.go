// Package httpapi exposes the user cache over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/usercache/internal/common"
	"github.com/dmitrijs2005/usercache/internal/logging"
	"github.com/dmitrijs2005/usercache/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Querier is the read side used by the handlers.
type Querier interface {
	CachedUsers(ctx context.Context) ([]models.User, error)
	LiveUsers(ctx context.Context) ([]models.User, error)
	LastSyncDescription(ctx context.Context) (string, error)
	SubscribeAllUsers(ctx context.Context) (<-chan []models.User, error)
}

// Syncer is the write side used by the handlers.
type Syncer interface {
	Sync(ctx context.Context) error
	ClearCache(ctx context.Context) error
	InProgress() bool
}

type Handler struct {
	query   Querier
	sync    Syncer
	logger  logging.Logger
	metrics http.Handler
}

// NewHandler builds the handler. metrics serves GET /metrics when non-nil.
func NewHandler(q Querier, s Syncer, logger logging.Logger, metrics http.Handler) *Handler {
	return &Handler{query: q, sync: s, logger: logger, metrics: metrics}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.Health)
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/users/cached", h.CachedUsers)
		r.Get("/users/live", h.LiveUsers)
		r.Get("/users/stream", h.StreamUsers)
		r.Get("/sync/status", h.SyncStatus)
		r.Post("/sync", h.TriggerSync)
		r.Delete("/cache", h.ClearCache)
	})

	return r
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) CachedUsers(w http.ResponseWriter, r *http.Request) {
	us, err := h.query.CachedUsers(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, us)
}

func (h *Handler) LiveUsers(w http.ResponseWriter, r *http.Request) {
	us, err := h.query.LiveUsers(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, us)
}

type syncStatus struct {
	LastSync   string `json:"last_sync"`
	InProgress bool   `json:"in_progress"`
}

func (h *Handler) SyncStatus(w http.ResponseWriter, r *http.Request) {
	desc, err := h.query.LastSyncDescription(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, syncStatus{LastSync: desc, InProgress: h.sync.InProgress()})
}

func (h *Handler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	if err := h.sync.Sync(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "synced"})
}

func (h *Handler) ClearCache(w http.ResponseWriter, r *http.Request) {
	if err := h.sync.ClearCache(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// StreamUsers sends every user table snapshot as a Server-Sent Event until
// the client goes away.
func (h *Handler) StreamUsers(w http.ResponseWriter, r *http.Request) {
	ch, err := h.query.SubscribeAllUsers(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	rc := http.NewResponseController(w)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	_ = rc.Flush()

	for snap := range ch {
		b, err := json.Marshal(snap)
		if err != nil {
			h.logger.Error(r.Context(), "failed to encode snapshot", "error", err)
			return
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", b); err != nil {
			return
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, common.ErrRemote) {
		status = http.StatusBadGateway
	}

	h.logger.Warn(r.Context(), "request failed",
		"path", r.URL.Path, "status", status, "error", err)
	writeJSON(w, status, errorBody{Error: common.UserMessage(err), Kind: common.KindName(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		h.logger.Debug(r.Context(), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"took", time.Since(start).String(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
