package monitoring

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Event types with a documented data layout.
const (
	TypeBadgeEvent     = "badge_event"
	TypeManualOverride = "manual_override"
	TypeCustomEvent    = "custom_event"
)

// Well-known device ids.
const (
	// ManualAccessDeviceID is the device_id of every manual override.
	ManualAccessDeviceID = "manual-access-panel"

	// ManualTriggerDeviceID is used for injected events that name no device.
	ManualTriggerDeviceID = "manual-trigger"
)

// Data keys used by badge and manual override events.
const (
	KeyBadgeID = "badgeID"
	KeyDoorID  = "doorID"
	KeySuccess = "success"
)

// Snapshot event values handed to every newly registered observer.
const (
	SnapshotBadgeID  = "BADGE-PREVIEW"
	SnapshotDoorID   = "door-snapshot"
	SnapshotDeviceID = "badge-reader-snapshot"
)

// timestampLayout renders UTC instants with millisecond precision.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// Event is a single monitoring event as pushed to observers.
type Event struct {
	ID        string
	Type      string
	Timestamp time.Time
	DeviceID  string
	Data      map[string]any
}

// wireEvent is the JSON form of Event. The field names are stable.
type wireEvent struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	TS       string         `json:"ts"`
	DeviceID string         `json:"device_id"`
	Data     map[string]any `json:"data"`
}

// NewEvent creates an event with a fresh id and the current time.
// Empty eventType and deviceID fall back to custom_event and manual-trigger.
func NewEvent(eventType, deviceID string, data map[string]any) Event {
	if eventType == "" {
		eventType = TypeCustomEvent
	}
	if deviceID == "" {
		deviceID = ManualTriggerDeviceID
	}
	if data == nil {
		data = map[string]any{}
	}
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: now(),
		DeviceID:  deviceID,
		Data:      data,
	}
}

// NewBadgeEvent creates a badge_event for a reader.
func NewBadgeEvent(deviceID, badgeID, doorID string, success bool) Event {
	return NewEvent(TypeBadgeEvent, deviceID, map[string]any{
		KeyBadgeID: badgeID,
		KeyDoorID:  doorID,
		KeySuccess: success,
	})
}

// NewManualOverride creates the manual_override event for doorID.
func NewManualOverride(doorID string) Event {
	return NewEvent(TypeManualOverride, ManualAccessDeviceID, map[string]any{
		KeyDoorID:  doorID,
		KeySuccess: true,
	})
}

// NewSnapshotEvent creates the canned event sent to a session on registration.
func NewSnapshotEvent() Event {
	return NewBadgeEvent(SnapshotDeviceID, SnapshotBadgeID, SnapshotDoorID, true)
}

var (
	wallClock = time.Now

	// lastStamp is the newest timestamp issued, in Unix milliseconds.
	lastStamp atomic.Int64
)

// now returns the current UTC time at wire precision. Timestamps never go
// backwards within the process, even if the wall clock is stepped back.
func now() time.Time {
	ms := wallClock().UnixMilli()
	for {
		last := lastStamp.Load()
		next := max(ms, last)
		if next == last || lastStamp.CompareAndSwap(last, next) {
			return time.UnixMilli(next).UTC()
		}
	}
}

// StringField returns Data[key] when it holds a string.
func (e Event) StringField(key string) string {
	s, _ := e.Data[key].(string)
	return s
}

// BoolField returns Data[key] and whether it held a bool.
func (e Event) BoolField(key string) (value, ok bool) {
	value, ok = e.Data[key].(bool)
	return value, ok
}

// MarshalJSON encodes the event in its wire form.
func (e Event) MarshalJSON() ([]byte, error) {
	data := e.Data
	if data == nil {
		data = map[string]any{}
	}
	return json.Marshal(wireEvent{
		ID:       e.ID,
		Type:     e.Type,
		TS:       e.Timestamp.UTC().Format(timestampLayout),
		DeviceID: e.DeviceID,
		Data:     data,
	})
}

// UnmarshalJSON decodes the wire form. Any RFC 3339 timestamp is accepted.
func (e *Event) UnmarshalJSON(b []byte) error {
	var w wireEvent
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}

	var ts time.Time
	if w.TS != "" {
		parsed, err := time.Parse(time.RFC3339Nano, w.TS)
		if err != nil {
			return fmt.Errorf("parsing ts: %w", err)
		}
		ts = parsed.UTC()
	}

	*e = Event{
		ID:        w.ID,
		Type:      w.Type,
		Timestamp: ts,
		DeviceID:  w.DeviceID,
		Data:      w.Data,
	}
	return nil
}

// Marshal encodes ev for the wire, wrapping failures in ErrSerialization.
func Marshal(ev Event) ([]byte, error) {
	b, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("%w: event %s: %w", ErrSerialization, ev.ID, err)
	}
	return b, nil
}
