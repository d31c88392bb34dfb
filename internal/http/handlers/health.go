package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/hongminglow/messagely/internal/http/respond"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler returns uptime and storage status.
type HealthHandler struct {
	startedAt time.Time
	store     Pinger
}

// NewHealthHandler creates a health endpoint handler. store may be nil.
func NewHealthHandler(startedAt time.Time, store Pinger) *HealthHandler {
	return &HealthHandler{startedAt: startedAt, store: store}
}

// Register wires the handler into a ServeMux.
func (h *HealthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.handle)
}

func (h *HealthHandler) handle(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	if h.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.store.Ping(ctx); err != nil {
			status, code = "degraded", http.StatusServiceUnavailable
		}
	}
	respond.JSON(w, r, code, map[string]string{
		"status": status,
		"uptime": time.Since(h.startedAt).Truncate(time.Second).String(),
	})
}

// NotFound answers every unmatched route with the error envelope.
func NotFound(w http.ResponseWriter, r *http.Request) {
	respond.Error(w, r, http.StatusNotFound, "Not Found")
}
