package device

import "time"

// TypeDoor is the device type of doors. It is kept verbatim on the wire.
const TypeDoor = "porte"

// Record is a registered mock device.
type Record struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
	Builtin   bool      `json:"builtin"`
}

// RegisterRequest describes a device to add. ID is optional.
type RegisterRequest struct {
	ID   string
	Type string
}
