package telemetry

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/entrance-cockpit-mock/internal/directory"
	"github.com/nerrad567/entrance-cockpit-mock/internal/infrastructure/influxdb"
	"github.com/nerrad567/entrance-cockpit-mock/internal/monitoring"
)

type eventCount struct {
	eventType string
	deviceID  string
	ts        time.Time
}

type fakeWriter struct {
	mu       sync.Mutex
	attempts []influxdb.AccessAttempt
	events   []eventCount
}

func (f *fakeWriter) WriteAccessAttempt(a influxdb.AccessAttempt) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts = append(f.attempts, a)
}

func (f *fakeWriter) WriteMonitoringEvent(eventType, deviceID string, ts time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, eventCount{eventType, deviceID, ts})
}

func TestRecordEvent_BadgeEvent(t *testing.T) {
	w := &fakeWriter{}
	rec := NewRecorder(w, directory.New())

	ev := monitoring.NewBadgeEvent("badge-reader-02", "BADGE-003", "door-002", false)
	if err := rec.RecordEvent(context.Background(), ev); err != nil {
		t.Fatalf("RecordEvent() error = %v", err)
	}

	if len(w.events) != 1 || w.events[0].eventType != monitoring.TypeBadgeEvent {
		t.Fatalf("events = %+v, want one badge_event counter", w.events)
	}
	if len(w.attempts) != 1 {
		t.Fatalf("len(attempts) = %d, want 1", len(w.attempts))
	}

	got := w.attempts[0]
	want := influxdb.AccessAttempt{
		DeviceID:   "badge-reader-02",
		DoorID:     "door-002",
		BadgeID:    "BADGE-003",
		BadgeKnown: true,
		Success:    false,
		Timestamp:  ev.Timestamp,
	}
	if got != want {
		t.Errorf("attempt = %+v, want %+v", got, want)
	}
}

func TestRecordEvent_UnknownBadge(t *testing.T) {
	w := &fakeWriter{}
	rec := NewRecorder(w, directory.New())

	ev := monitoring.NewBadgeEvent("badge-reader-01", "UNKNOWN-4242", "door-001", false)
	if err := rec.RecordEvent(context.Background(), ev); err != nil {
		t.Fatalf("RecordEvent() error = %v", err)
	}

	if len(w.attempts) != 1 || w.attempts[0].BadgeKnown {
		t.Errorf("attempts = %+v, want one attempt with BadgeKnown=false", w.attempts)
	}
}

func TestRecordEvent_NilChecker(t *testing.T) {
	w := &fakeWriter{}
	rec := NewRecorder(w, nil)

	ev := monitoring.NewBadgeEvent("badge-reader-01", "BADGE-001", "door-001", true)
	if err := rec.RecordEvent(context.Background(), ev); err != nil {
		t.Fatalf("RecordEvent() error = %v", err)
	}
	if w.attempts[0].BadgeKnown {
		t.Error("BadgeKnown = true without a checker")
	}
}

func TestRecordEvent_OtherTypesOnlyCount(t *testing.T) {
	w := &fakeWriter{}
	rec := NewRecorder(w, directory.New())

	for _, ev := range []monitoring.Event{
		monitoring.NewManualOverride("door-003"),
		monitoring.NewEvent("", "", nil),
	} {
		if err := rec.RecordEvent(context.Background(), ev); err != nil {
			t.Fatalf("RecordEvent() error = %v", err)
		}
	}

	if len(w.attempts) != 0 {
		t.Errorf("len(attempts) = %d, want 0", len(w.attempts))
	}
	if len(w.events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(w.events))
	}
	if w.events[0].deviceID != monitoring.ManualAccessDeviceID {
		t.Errorf("events[0].deviceID = %q, want %q", w.events[0].deviceID, monitoring.ManualAccessDeviceID)
	}
	if w.events[1].eventType != monitoring.TypeCustomEvent {
		t.Errorf("events[1].eventType = %q, want %q", w.events[1].eventType, monitoring.TypeCustomEvent)
	}
}
