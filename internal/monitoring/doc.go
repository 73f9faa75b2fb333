// Package monitoring implements the monitoring hub: the fan-out point that
// delivers every published monitoring event to each connected observer.
//
// # Observers
//
// An observer is anything satisfying Session (in production a WebSocket
// connection owned by internal/api). The hub never inspects a session
// beyond IsOpen, SendText and ID.
//
// # Delivery
//
// Broadcast serialises the event once and attempts one send per registered
// session. A session that is nil, closed, or whose send fails is evicted
// before Broadcast returns. Broken observers are logged, never reported to
// the publisher. A serialisation failure aborts the broadcast before any
// send and is returned as ErrSerialization.
//
// Register adds a session and hands it a snapshot event under the same
// lock, so the snapshot always precedes the first broadcast it sees.
//
// # Wire Format
//
//	{"id":"<uuid>","type":"badge_event","ts":"2026-10-18T09:30:00.125Z",
//	 "device_id":"badge-reader-01","data":{"badgeID":"BADGE-001","doorID":"door-001","success":true}}
//
// # Thread Safety
//
// All Hub methods are safe for concurrent use.
package monitoring
