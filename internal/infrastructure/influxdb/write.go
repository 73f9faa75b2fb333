package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names written by this package.
const (
	MeasurementAccessAttempts   = "access_attempts"
	MeasurementMonitoringEvents = "monitoring_events"
)

// AccessAttempt is one badge presentation at a reader.
type AccessAttempt struct {
	DeviceID   string
	DoorID     string
	BadgeID    string
	BadgeKnown bool
	Success    bool
	Timestamp  time.Time
}

// WriteAccessAttempt records a badge presentation.
//
// door_id, device_id and badge_known are tags; the badge id stays a field
// so unknown badges do not explode series cardinality.
func (c *Client) WriteAccessAttempt(a AccessAttempt) {
	ts := a.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	granted := 0
	if a.Success {
		granted = 1
	}

	point := write.NewPoint(
		MeasurementAccessAttempts,
		map[string]string{
			"door_id":     a.DoorID,
			"device_id":   a.DeviceID,
			"badge_known": boolTag(a.BadgeKnown),
		},
		map[string]any{
			"success":  a.Success,
			"granted":  granted,
			"badge_id": a.BadgeID,
		},
		ts,
	)

	c.writePoint(point)
}

// WriteMonitoringEvent counts one published event of the given type.
func (c *Client) WriteMonitoringEvent(eventType, deviceID string, ts time.Time) {
	if ts.IsZero() {
		ts = time.Now()
	}

	point := write.NewPoint(
		MeasurementMonitoringEvents,
		map[string]string{
			"type":      eventType,
			"device_id": deviceID,
		},
		map[string]any{
			"count": 1,
		},
		ts,
	)

	c.writePoint(point)
}

func boolTag(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
