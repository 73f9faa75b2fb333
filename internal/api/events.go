package api

import (
	"net/http"

	"github.com/nerrad567/entrance-cockpit-mock/internal/monitoring"
)

// injectEventRequest is the body of POST /api/mock/events.
type injectEventRequest struct {
	Type     string         `json:"type"`
	DeviceID string         `json:"device_id"`
	Data     map[string]any `json:"data"`
}

// handleInjectEvent publishes a caller-described event to every observer.
func (s *Server) handleInjectEvent(w http.ResponseWriter, r *http.Request) {
	var req injectEventRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid JSON: "+err.Error())
		return
	}

	ev := monitoring.NewEvent(req.Type, req.DeviceID, req.Data)
	if err := s.gen.Publish(r.Context(), ev); err != nil {
		s.logger.Error("publishing injected event", "event_type", ev.Type, "error", err)
		writeInternalError(w, "failed to publish event")
		return
	}

	s.logger.Debug("event injected", "event_id", ev.ID, "event_type", ev.Type, "device_id", ev.DeviceID)
	writeJSON(w, http.StatusAccepted, ev)
}

// handleRandomEvent publishes one random badge event outside the auto cadence.
func (s *Server) handleRandomEvent(w http.ResponseWriter, r *http.Request) {
	ev, err := s.gen.PublishRandom(r.Context())
	if err != nil {
		s.logger.Error("publishing random event", "error", err)
		writeInternalError(w, "failed to publish event")
		return
	}
	writeJSON(w, http.StatusAccepted, ev)
}
