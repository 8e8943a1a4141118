package api

import (
	"context"
	"net/http"
	"time"
)

// HealthCheck pings one dependency. A failing critical check makes the
// service unready; a failing optional one only degrades it.
type HealthCheck struct {
	Name     string
	Critical bool
	Ping     func(ctx context.Context) error
}

type HealthHandler struct {
	checks  []HealthCheck
	env     string
	version string
}

func NewHealthHandler(checks []HealthCheck, env, version string) *HealthHandler {
	return &HealthHandler{
		checks:  checks,
		env:     env,
		version: version,
	}
}

type LivenessResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Env     string `json:"env,omitempty"`
}

type ReadinessResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version,omitempty"`
	Env          string            `json:"env,omitempty"`
	Dependencies map[string]string `json:"dependencies"`
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, LivenessResponse{
		Status:  "ok",
		Version: h.version,
		Env:     h.env,
	})
}

func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	deps := make(map[string]string, len(h.checks))
	status := "ok"

	for _, c := range h.checks {
		pingCtx, pingCancel := context.WithTimeout(ctx, time.Second)
		err := c.Ping(pingCtx)
		pingCancel()

		if err == nil {
			deps[c.Name] = "ok"
			continue
		}

		deps[c.Name] = "down"
		switch {
		case c.Critical:
			status = "error"
		case status == "ok":
			status = "degraded"
		}
	}

	httpStatus := http.StatusOK
	if status == "error" {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, ReadinessResponse{
		Status:       status,
		Version:      h.version,
		Env:          h.env,
		Dependencies: deps,
	})
}
