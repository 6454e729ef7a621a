package model

// Command is the parsed form of one chat message. DeviceID and State are only
// meaningful for the actions that carry them; an empty DeviceID means the
// dispatcher substitutes the configured default device.
type Command struct {
	Action   Action
	DeviceID string
	State    DeviceState
}

// MQTTVerb maps the command onto the verb published to the device transport.
// Bind, Help and Unknown never reach the transport.
func (c Command) MQTTVerb() (string, bool) {
	switch c.Action {
	case ActionEnable:
		return string(StateOn), true
	case ActionDisable:
		return string(StateOff), true
	case ActionSetStatus:
		return c.State.String(), true
	case ActionGetStatus:
		return "get_status", true
	}
	return "", false
}
