// Package telemetry turns published monitoring events into time-series
// points for dashboards.
package telemetry

import (
	"context"
	"time"

	"github.com/nerrad567/entrance-cockpit-mock/internal/infrastructure/influxdb"
	"github.com/nerrad567/entrance-cockpit-mock/internal/monitoring"
)

// AccessWriter is the subset of *influxdb.Client the recorder writes through.
type AccessWriter interface {
	WriteAccessAttempt(a influxdb.AccessAttempt)
	WriteMonitoringEvent(eventType, deviceID string, ts time.Time)
}

// BadgeChecker reports whether a badge id is on file.
type BadgeChecker interface {
	IsKnownBadge(badgeID string) bool
}

// Recorder writes every event it sees as telemetry.
type Recorder struct {
	writer AccessWriter
	badges BadgeChecker
}

// NewRecorder creates a recorder. badges may be nil, in which case every
// badge counts as unknown.
func NewRecorder(writer AccessWriter, badges BadgeChecker) *Recorder {
	return &Recorder{writer: writer, badges: badges}
}

// RecordEvent writes ev. Badge events become access attempts as well as
// event counters. Writes are asynchronous so this never fails.
func (r *Recorder) RecordEvent(_ context.Context, ev monitoring.Event) error {
	r.writer.WriteMonitoringEvent(ev.Type, ev.DeviceID, ev.Timestamp)

	if ev.Type != monitoring.TypeBadgeEvent {
		return nil
	}

	badgeID := ev.StringField(monitoring.KeyBadgeID)
	success, _ := ev.BoolField(monitoring.KeySuccess)

	r.writer.WriteAccessAttempt(influxdb.AccessAttempt{
		DeviceID:   ev.DeviceID,
		DoorID:     ev.StringField(monitoring.KeyDoorID),
		BadgeID:    badgeID,
		BadgeKnown: r.badges != nil && r.badges.IsKnownBadge(badgeID),
		Success:    success,
		Timestamp:  ev.Timestamp,
	})
	return nil
}
