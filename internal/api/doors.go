package api

import (
	"net/http"
	"slices"
	"strings"

	"github.com/nerrad567/entrance-cockpit-mock/internal/device"
	"github.com/nerrad567/entrance-cockpit-mock/internal/monitoring"
)

// manualAccessRequest accepts the door as "doorId" or "doorID".
type manualAccessRequest struct {
	DoorIDLower string `json:"doorId"`
	DoorID      string `json:"doorID"`
}

// doorIDs lists registered door devices, falling back to the directory
// doors once every door device has been deleted.
func (s *Server) doorIDs() []string {
	recs := s.devices.ListByType(device.TypeDoor)
	if len(recs) == 0 {
		return s.dir.DoorIDs()
	}
	ids := make([]string, 0, len(recs))
	for _, rec := range recs {
		ids = append(ids, rec.ID)
	}
	return ids
}

func (s *Server) handleListDoors(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.doorIDs())
}

// handleManualAccess opens a door from the cockpit and announces it to
// observers as a manual_override.
func (s *Server) handleManualAccess(w http.ResponseWriter, r *http.Request) {
	var req manualAccessRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid JSON: "+err.Error())
		return
	}

	doorID := strings.TrimSpace(req.DoorIDLower)
	if doorID == "" {
		doorID = strings.TrimSpace(req.DoorID)
	}
	if doorID == "" {
		writeBadRequest(w, "Door ID is required")
		return
	}
	if !slices.Contains(s.doorIDs(), doorID) {
		writeBadRequest(w, "Unknown door ID")
		return
	}

	ev := monitoring.NewManualOverride(doorID)
	if err := s.gen.Publish(r.Context(), ev); err != nil {
		s.logger.Error("publishing manual override", "door_id", doorID, "error", err)
		writeInternalError(w, "failed to publish event")
		return
	}

	s.logger.Info("manual access triggered", "door_id", doorID, "event_id", ev.ID)
	writeJSON(w, http.StatusAccepted, map[string]string{
		"status":  "accepted",
		"doorId":  doorID,
		"doorID":  doorID,
		"message": "Door opening triggered manually",
	})
}
