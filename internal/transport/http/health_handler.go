package http

import (
	"net/http"
	"time"

	"github.com/go-chi/render"
)

// ClientCounter reports connected websocket clients
type ClientCounter interface {
	ClientCount() int
}

// HealthHandler handles GET /healthz
type HealthHandler struct {
	version string
	started time.Time
	clients ClientCounter
}

// NewHealthHandler creates a new health handler. clients may be nil.
func NewHealthHandler(version string, clients ClientCounter) *HealthHandler {
	return &HealthHandler{version: version, started: time.Now(), clients: clients}
}

// HealthCheck reports liveness and a few runtime facts
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{
		"status":  "ok",
		"version": h.version,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
	}
	if h.clients != nil {
		body["websocket_clients"] = h.clients.ClientCount()
	}
	render.JSON(w, r, body)
}
