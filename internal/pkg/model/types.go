package model

type Platform string

func (p Platform) String() string {
	return string(p)
}

const (
	PlatformTelegram Platform = "telegram"
	PlatformLine     Platform = "line"
)

var Platforms = []Platform{
	PlatformTelegram,
	PlatformLine,
}

func (p Platform) Valid() bool {
	for _, known := range Platforms {
		if p == known {
			return true
		}
	}
	return false
}

type DeviceState string

func (s DeviceState) String() string {
	return string(s)
}

const (
	StateOn  DeviceState = "on"
	StateOff DeviceState = "off"
)

func (s DeviceState) Valid() bool {
	return s == StateOn || s == StateOff
}

type Manufacturer string

func (m Manufacturer) String() string {
	return string(m)
}

const (
	ManufacturerEsp32       Manufacturer = "esp32"
	ManufacturerRaspberryPi Manufacturer = "raspberrypi"
)

type DeviceType string

func (d DeviceType) String() string {
	return string(d)
}

const (
	DeviceTypeLight DeviceType = "light"
	DeviceTypeFan   DeviceType = "fan"
)

type Action string

func (a Action) String() string {
	return string(a)
}

const (
	ActionEnable    Action = "enable"
	ActionDisable   Action = "disable"
	ActionSetStatus Action = "set_status"
	ActionGetStatus Action = "get_status"
	ActionBind      Action = "bind"
	ActionHelp      Action = "help"
	ActionUnknown   Action = "unknown"
)
