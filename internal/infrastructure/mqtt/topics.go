package mqtt

import (
	"fmt"
	"strings"

	"github.com/nerrad567/entrance-cockpit-mock/internal/infrastructure/config"
)

// Default topic roots, matching what the field devices use.
const (
	DefaultBadgeReaderRoot = "iot/badgeuse"
	DefaultDoorRoot        = "iot/porte"
	DefaultMonitoringRoot  = "cockpit/monitoring/events"
)

// Topics builds the topic names exchanged with badge readers and doors.
//
//	topics := mqtt.NewTopics(cfg.MQTT.Topics)
//	topics.BadgeEvents("badge-reader-01") // iot/badgeuse/badge-reader-01/events
//	topics.DoorCommand("door-001")        // iot/porte/door-001/commands
type Topics struct {
	BadgeReaderRoot string
	DoorRoot        string
	MonitoringRoot  string
}

// NewTopics creates topic builders from config, filling empty roots with defaults.
func NewTopics(cfg config.MQTTTopicsConfig) Topics {
	t := Topics{
		BadgeReaderRoot: strings.TrimSuffix(cfg.BadgeReaders, "/"),
		DoorRoot:        strings.TrimSuffix(cfg.Doors, "/"),
		MonitoringRoot:  strings.TrimSuffix(cfg.Monitoring, "/"),
	}
	if t.BadgeReaderRoot == "" {
		t.BadgeReaderRoot = DefaultBadgeReaderRoot
	}
	if t.DoorRoot == "" {
		t.DoorRoot = DefaultDoorRoot
	}
	if t.MonitoringRoot == "" {
		t.MonitoringRoot = DefaultMonitoringRoot
	}
	return t
}

// BadgeEvents returns the topic a badge reader publishes presentations on.
//
// Example: iot/badgeuse/badge-reader-01/events
func (t Topics) BadgeEvents(readerID string) string {
	return fmt.Sprintf("%s/%s/events", t.BadgeReaderRoot, readerID)
}

// AllBadgeEvents matches the events topic of every badge reader.
func (t Topics) AllBadgeEvents() string {
	return t.BadgeEvents("+")
}

// DoorCommand returns the topic a door listens on for open/close/toggle.
//
// Example: iot/porte/door-001/commands
func (t Topics) DoorCommand(doorID string) string {
	return fmt.Sprintf("%s/%s/commands", t.DoorRoot, doorID)
}

// MonitoringEvent returns the topic monitoring events of eventType are mirrored to.
//
// Example: cockpit/monitoring/events/badge_event
func (t Topics) MonitoringEvent(eventType string) string {
	return fmt.Sprintf("%s/%s", t.MonitoringRoot, eventType)
}

// Status returns the retained topic carrying this service's online state.
func (t Topics) Status() string {
	return t.MonitoringRoot + "/status"
}

// ReaderIDFromTopic extracts the reader id from a badge events topic.
// It returns "" for topics outside the badge reader root.
func (t Topics) ReaderIDFromTopic(topic string) string {
	rest, ok := strings.CutPrefix(topic, t.BadgeReaderRoot+"/")
	if !ok {
		return ""
	}
	id, ok := strings.CutSuffix(rest, "/events")
	if !ok || id == "" || strings.Contains(id, "/") {
		return ""
	}
	return id
}
