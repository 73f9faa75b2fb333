// Package journal keeps an append-only record of every event published to
// monitoring observers, backing the logs endpoints.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nerrad567/entrance-cockpit-mock/internal/monitoring"
)

// ErrEntryNotFound is returned when no journaled event has the given id.
var ErrEntryNotFound = errors.New("journal: entry not found")

const (
	defaultLimit = 50
	maxLimit     = 200
)

// storedLayout has a fixed width so timestamps sort as text.
const storedLayout = "2006-01-02T15:04:05.000000000Z"

// Entry is a journaled event.
type Entry struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Timestamp  time.Time      `json:"ts"`
	DeviceID   string         `json:"device_id"`
	DoorID     string         `json:"door_id,omitempty"`
	BadgeID    string         `json:"badge_id,omitempty"`
	Success    *bool          `json:"success,omitempty"`
	Data       map[string]any `json:"data"`
	RecordedAt time.Time      `json:"recorded_at"`
}

// Event converts the entry back to its monitoring form.
func (e Entry) Event() monitoring.Event {
	return monitoring.Event{
		ID:        e.ID,
		Type:      e.Type,
		Timestamp: e.Timestamp,
		DeviceID:  e.DeviceID,
		Data:      e.Data,
	}
}

// Filter controls which entries List returns.
type Filter struct {
	Type     string // optional: exact event type
	DeviceID string // optional: exact device id
	DoorID   string // optional: exact door id from the event data
	Limit    int    // default 50, max 200
	Offset   int    // pagination offset
}

// ListResult is one page of entries.
type ListResult struct {
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
	Limit   int     `json:"limit"`
	Offset  int     `json:"offset"`
}

// Repository defines the journal operations.
type Repository interface {
	RecordEvent(ctx context.Context, ev monitoring.Event) error
	Get(ctx context.Context, id string) (*Entry, error)
	List(ctx context.Context, filter Filter) (*ListResult, error)
}

// SQLiteRepository stores entries in the access_events table.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteRepository creates a journal over an already migrated database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// RecordEvent inserts ev. Recording the same event id twice is an error.
func (r *SQLiteRepository) RecordEvent(ctx context.Context, ev monitoring.Event) error {
	data := ev.Data
	if data == nil {
		data = map[string]any{}
	}
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshalling event data: %w", err)
	}

	var success any
	if v, ok := ev.BoolField(monitoring.KeySuccess); ok {
		success = v
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO access_events (id, type, ts, device_id, door_id, badge_id, success, data, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.Type,
		ev.Timestamp.UTC().Format(storedLayout),
		ev.DeviceID,
		nullableString(ev.StringField(monitoring.KeyDoorID)),
		nullableString(ev.StringField(monitoring.KeyBadgeID)),
		success,
		string(dataJSON),
		r.now().UTC().Format(storedLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting event %s: %w", ev.ID, err)
	}
	return nil
}

// nullableString returns nil for empty strings so the column stays NULL.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

const selectColumns = "SELECT id, type, ts, device_id, door_id, badge_id, success, data, recorded_at FROM access_events"

// Get returns the entry with the given event id.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (*Entry, error) {
	row := r.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// List returns entries matching the filter, newest first.
func (r *SQLiteRepository) List(ctx context.Context, filter Filter) (*ListResult, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultLimit
	}
	if filter.Limit > maxLimit {
		filter.Limit = maxLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	var conditions []string
	var args []any

	if filter.Type != "" {
		conditions = append(conditions, "type = ?")
		args = append(args, filter.Type)
	}
	if filter.DeviceID != "" {
		conditions = append(conditions, "device_id = ?")
		args = append(args, filter.DeviceID)
	}
	if filter.DoorID != "" {
		conditions = append(conditions, "door_id = ?")
		args = append(args, filter.DoorID)
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM access_events"+where, args...).Scan(&total); err != nil { //nolint:gosec // WHERE built from parameterised conditions
		return nil, fmt.Errorf("counting events: %w", err)
	}

	query := selectColumns + where + " ORDER BY ts DESC, recorded_at DESC LIMIT ? OFFSET ?"
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating events: %w", err)
	}

	return &ListResult{
		Entries: entries,
		Total:   total,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	}, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*Entry, error) {
	var (
		e               Entry
		doorID, badgeID sql.NullString
		success         sql.NullBool
		dataJSON        string
		ts, recordedAt  string
	)
	if err := s.Scan(&e.ID, &e.Type, &ts, &e.DeviceID, &doorID, &badgeID, &success, &dataJSON, &recordedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning event: %w", err)
	}

	e.DoorID = doorID.String
	e.BadgeID = badgeID.String
	if success.Valid {
		v := success.Bool
		e.Success = &v
	}

	e.Data = map[string]any{}
	if dataJSON != "" {
		if err := json.Unmarshal([]byte(dataJSON), &e.Data); err != nil {
			return nil, fmt.Errorf("decoding data of event %s: %w", e.ID, err)
		}
	}

	var err error
	if e.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
		return nil, fmt.Errorf("parsing ts %q: %w", ts, err)
	}
	if e.RecordedAt, err = time.Parse(time.RFC3339Nano, recordedAt); err != nil {
		return nil, fmt.Errorf("parsing recorded_at %q: %w", recordedAt, err)
	}
	return &e, nil
}
