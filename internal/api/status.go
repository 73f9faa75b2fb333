package api

import (
	"context"
	"net/http"
	"time"
)

// healthCheckTimeout bounds each dependency probe.
const healthCheckTimeout = 2 * time.Second

// handleHealth reports liveness plus the state of every registered check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	body := map[string]any{
		"status":    "ok",
		"version":   s.version,
		"observers": s.hub.ActiveCount(),
	}

	if len(s.healthChecks) > 0 {
		checks := make(map[string]string, len(s.healthChecks))
		for name, hc := range s.healthChecks {
			ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
			err := hc.HealthCheck(ctx)
			cancel()
			if err != nil {
				s.logger.Warn("health check failed", "component", name, "error", err)
				checks[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			checks[name] = "ok"
		}
		body["checks"] = checks
	}

	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	writeJSON(w, status, body)
}

// handleStatus reports the generator cadence and observer count.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	cfg := s.gen.Config()
	writeJSON(w, http.StatusOK, map[string]any{
		"auto_mode": s.gen.Running(),
		"interval":  cfg.Interval.String(),
		"observers": s.hub.ActiveCount(),
	})
}
