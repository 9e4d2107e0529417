package api

import (
	"context"
	"net/http"
	"time"

	"shopnest-bff/internal/keepalive"
)

type readiness struct {
	Status  string            `json:"status"`
	Redis   string            `json:"redis"`
	Backend *keepalive.Status `json:"backend,omitempty"`
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz fails when redis is unreachable or the backend has missed enough
// keep-alive pings to be considered down.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := readiness{Status: "ready", Redis: "ok"}
	status := http.StatusOK

	if err := h.cache.Ping(ctx); err != nil {
		resp.Redis = err.Error()
		resp.Status, status = "unavailable", http.StatusServiceUnavailable
	}
	if h.keepalive != nil {
		st := h.keepalive.Status()
		resp.Backend = &st
		if st.ConsecutiveFailures >= h.cfg.KeepAlive.MaxFailures {
			resp.Status, status = "unavailable", http.StatusServiceUnavailable
		}
	}
	writeJSON(w, status, resp)
}
