package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/entrance-cockpit-mock/internal/journal"
	"github.com/nerrad567/entrance-cockpit-mock/internal/monitoring"
	"github.com/nerrad567/entrance-cockpit-mock/internal/user"
)

// logUserSample is how many users a log detail carries.
const logUserSample = 2

// logDetail is the body of GET /api/mock/logs/{id}.
type logDetail struct {
	ID    string            `json:"id"`
	Users []user.Profile    `json:"users"`
	Event *monitoring.Event `json:"event,omitempty"`
}

// handleListLogs returns one page of journaled events, newest first.
func (s *Server) handleListLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := journal.Filter{
		Type:     q.Get("type"),
		DeviceID: q.Get("device_id"),
		DoorID:   q.Get("door_id"),
	}

	var err error
	if filter.Limit, err = queryInt(q.Get("limit")); err != nil {
		writeBadRequest(w, "invalid limit")
		return
	}
	if filter.Offset, err = queryInt(q.Get("offset")); err != nil {
		writeBadRequest(w, "invalid offset")
		return
	}

	if s.journal == nil {
		writeJSON(w, http.StatusOK, journal.ListResult{
			Entries: []journal.Entry{},
			Limit:   filter.Limit,
			Offset:  filter.Offset,
		})
		return
	}

	page, err := s.journal.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("listing journal", "error", err)
		writeInternalError(w, "failed to list logs")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// handleGetLog returns a log detail. Any id is accepted; the event is
// attached only when the journal knows it.
func (s *Server) handleGetLog(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	detail := logDetail{
		ID:    id,
		Users: s.users.Sample(logUserSample),
	}

	if s.journal != nil {
		entry, err := s.journal.Get(r.Context(), id)
		switch {
		case err == nil:
			ev := entry.Event()
			detail.Event = &ev
		case errors.Is(err, journal.ErrEntryNotFound):
		default:
			s.logger.Warn("looking up journal entry", "id", id, "error", err)
		}
	}

	writeJSON(w, http.StatusOK, detail)
}

// queryInt parses an optional non-negative integer query parameter.
func queryInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, strconv.ErrRange
	}
	return n, nil
}
