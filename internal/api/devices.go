package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/entrance-cockpit-mock/internal/device"
)

// createDeviceRequest accepts either "deviceId" or "id".
type createDeviceRequest struct {
	DeviceID string `json:"deviceId"`
	ID       string `json:"id"`
	Type     string `json:"type"`
}

// handleListDevices returns every registered device, oldest first.
func (s *Server) handleListDevices(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.devices.List())
}

// handleGetDevice returns one device.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	rec, err := s.devices.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeNotFound(w, "Device not found")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleCreateDevice registers a device, generating an id when none is given.
func (s *Server) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	var req createDeviceRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid JSON: "+err.Error())
		return
	}

	id := req.DeviceID
	if id == "" {
		id = req.ID
	}

	rec, err := s.devices.Register(device.RegisterRequest{ID: id, Type: req.Type})
	switch {
	case errors.Is(err, device.ErrTypeRequired):
		writeBadRequest(w, "Device type is required")
		return
	case errors.Is(err, device.ErrDeviceExists):
		writeConflict(w, "Device ID already exists")
		return
	case err != nil:
		s.logger.Error("registering device", "error", err)
		writeInternalError(w, "failed to register device")
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// handleDeleteDevice removes a device.
func (s *Server) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	if err := s.devices.Delete(chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			writeNotFound(w, "Device not found")
			return
		}
		s.logger.Error("deleting device", "error", err)
		writeInternalError(w, "failed to delete device")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
