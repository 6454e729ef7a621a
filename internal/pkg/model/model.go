package model

import (
	"fmt"
	"time"
)

// Subscriber is one addressable conversation (user or group chat) on a platform.
type Subscriber struct {
	Platform    Platform `json:"platform"`
	ChatID      string   `json:"chat_id"`
	DisplayName string   `json:"username,omitempty"`
}

// Key identifies a subscriber independently of its display name, which may
// change between messages.
func (s Subscriber) Key() string {
	return fmt.Sprintf("%s/%s", s.Platform, s.ChatID)
}

// Device is one entry of the configured device catalog. Devices are
// configuration supplied and never created at runtime.
type Device struct {
	ID           string       `json:"device_id"`
	Manufacturer Manufacturer `json:"manufacturer"`
	Type         DeviceType   `json:"device_type"`
}

// Catalog is the fixed set of known devices, keyed by device id.
type Catalog map[string]Device

func (c Catalog) Has(deviceID string) bool {
	_, ok := c[deviceID]
	return ok
}

func (c Catalog) Get(deviceID string) (Device, bool) {
	d, ok := c[deviceID]
	return d, ok
}

// StatusEvent is produced once per completed device action and carried over
// the durable queue back to the broker.
type StatusEvent struct {
	DeviceID   string      `json:"device_id"`
	State      DeviceState `json:"device_status"`
	ChatID     string      `json:"chat_id"`
	Platform   Platform    `json:"platform"`
	Username   string      `json:"username,omitempty"`
	OccurredAt time.Time   `json:"occurred_at,omitempty"`
}

// Originator reconstructs the subscriber that triggered the device action.
func (e StatusEvent) Originator() Subscriber {
	return Subscriber{
		Platform:    e.Platform,
		ChatID:      e.ChatID,
		DisplayName: e.Username,
	}
}
