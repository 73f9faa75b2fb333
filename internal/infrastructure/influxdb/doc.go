// Package influxdb writes entrance access telemetry to InfluxDB v2.
//
// It wraps the official influxdb-client-go v2 library with connection
// management, batched non-blocking writes and a health check.
//
// # Measurements
//
//   - access_attempts: one point per badge presentation, tagged by door,
//     reader and whether the badge is known
//   - monitoring_events: a counter per published event type
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteAccessAttempt(influxdb.AccessAttempt{
//	    DeviceID: "badge-reader-01",
//	    DoorID:   "door-001",
//	    BadgeID:  "BADGE-001",
//	    Success:  true,
//	})
//
// Write failures are delivered asynchronously through SetOnError.
package influxdb
