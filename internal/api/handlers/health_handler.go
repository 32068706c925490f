package handlers

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const readinessTimeout = 3 * time.Second

// HealthCheck reports whether a dependency can serve traffic
type HealthCheck func(ctx context.Context) error

// HealthHandler serves liveness and readiness probes
type HealthHandler struct {
	names  []string
	checks map[string]HealthCheck
}

// NewHealthHandler creates a health handler without dependency checks
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{checks: make(map[string]HealthCheck)}
}

// AddCheck registers a named dependency check. It must be called before serving.
func (h *HealthHandler) AddCheck(name string, check HealthCheck) *HealthHandler {
	if _, exists := h.checks[name]; !exists {
		h.names = append(h.names, name)
		sort.Strings(h.names)
	}
	h.checks[name] = check
	return h
}

// Live handles GET /health
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

type readinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Ready handles GET /ready by running every check concurrently
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	var (
		mu      sync.Mutex
		results = make(map[string]string, len(h.names))
		healthy = true
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range h.names {
		check := h.checks[name]
		g.Go(func() error {
			status := "ok"
			if err := check(gctx); err != nil {
				status = err.Error()
			}

			mu.Lock()
			defer mu.Unlock()
			results[name] = status
			if status != "ok" {
				healthy = false
			}
			// failures are reported per check, not through the group
			return nil
		})
	}
	_ = g.Wait()

	if !healthy {
		respondWithJSON(w, http.StatusServiceUnavailable, readinessResponse{Status: "unavailable", Checks: results})
		return
	}
	respondWithJSON(w, http.StatusOK, readinessResponse{Status: "ready", Checks: results})
}
