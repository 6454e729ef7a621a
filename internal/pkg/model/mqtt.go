package model

// CommandMessage is the JSON payload published on a device command topic.
type CommandMessage struct {
	Command  string   `json:"command"`
	DeviceID string   `json:"device_id"`
	ChatID   string   `json:"chat_id"`
	Platform Platform `json:"platform"`
	Username string   `json:"username,omitempty"`
}

// StatusMessage is the retained JSON payload published on a device status
// topic after every executed command.
type StatusMessage struct {
	Status DeviceState `json:"status"`
}
