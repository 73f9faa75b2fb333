package iot

import (
	"encoding/json"
	"fmt"
	"time"
)

// Door command actions understood by door controllers.
const (
	ActionOpen   = "open"
	ActionClose  = "close"
	ActionToggle = "toggle"
)

// commandSourceManual marks door commands issued by a manual override.
const commandSourceManual = "manual-access"

// BadgeMessage is what a reader publishes when a badge is presented.
type BadgeMessage struct {
	DeviceID string    `json:"device_id"`
	Type     string    `json:"type"`
	TS       string    `json:"ts,omitempty"`
	Data     BadgeData `json:"data"`
}

// BadgeData carries the presentation itself. Readers send tag_id; badgeID
// is accepted as well.
type BadgeData struct {
	TagID   string `json:"tag_id,omitempty"`
	BadgeID string `json:"badgeID,omitempty"`
	DoorID  string `json:"doorID,omitempty"`
	Success *bool  `json:"success,omitempty"`
}

// Badge returns the badge id, preferring tag_id.
func (d BadgeData) Badge() string {
	if d.TagID != "" {
		return d.TagID
	}
	return d.BadgeID
}

// Granted reports whether the reader accepted the badge. Absent means no.
func (d BadgeData) Granted() bool {
	return d.Success != nil && *d.Success
}

// parseBadgeMessage decodes and validates a reader payload.
func parseBadgeMessage(payload []byte) (BadgeMessage, error) {
	var msg BadgeMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return BadgeMessage{}, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	if msg.Data.Badge() == "" {
		return BadgeMessage{}, ErrMissingBadge
	}
	return msg, nil
}

// DoorCommand is sent to a door controller.
type DoorCommand struct {
	Action string `json:"action"`
	DoorID string `json:"doorID"`
	Source string `json:"source,omitempty"`
	TS     string `json:"ts"`
}

func newOpenCommand(doorID string, at time.Time) DoorCommand {
	return DoorCommand{
		Action: ActionOpen,
		DoorID: doorID,
		Source: commandSourceManual,
		TS:     at.UTC().Format(time.RFC3339Nano),
	}
}
