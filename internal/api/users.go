package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/entrance-cockpit-mock/internal/user"
)

// createUserRequest accepts the badge as "badgeId" or "badgeID".
type createUserRequest struct {
	BadgeIDLower string `json:"badgeId"`
	BadgeID      string `json:"badgeID"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
}

func (s *Server) handleListUsers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.users.List())
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid JSON: "+err.Error())
		return
	}

	badge := req.BadgeIDLower
	if badge == "" {
		badge = req.BadgeID
	}

	profile, err := s.users.Create(user.CreateRequest{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		BadgeID:   badge,
	})
	switch {
	case errors.Is(err, user.ErrInvalidUser):
		writeBadRequest(w, "badgeId, firstName and lastName are required")
		return
	case errors.Is(err, user.ErrBadgeRegistered):
		writeConflict(w, "badge already registered")
		return
	case err != nil:
		s.logger.Error("creating user", "error", err)
		writeInternalError(w, "failed to create user")
		return
	}

	s.logger.Info("user created", "user_id", profile.ID, "badge_id", profile.BadgeID)
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.users.Delete(id); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			writeNotFound(w, "User not found")
			return
		}
		s.logger.Error("deleting user", "error", err)
		writeInternalError(w, "failed to delete user")
		return
	}

	s.logger.Info("user deleted", "user_id", id)
	w.WriteHeader(http.StatusNoContent)
}
