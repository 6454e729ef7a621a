package mqtt

import (
	"fmt"
	"strings"

	"github.com/gosimple/slug"

	"github.com/anicoll/chatbridge/internal/pkg/model"
)

// segment normalizes a topic segment so catalog values with spaces or mixed
// case cannot produce a second topic for the same device.
func segment(v string) string {
	return strings.Replace(slug.Make(v), "-", "_", -1)
}

// CommandTopic is the topic a device receives commands on.
func CommandTopic(d model.Device) string {
	return fmt.Sprintf("%s/%s/%s/command", segment(d.Manufacturer.String()), segment(d.Type.String()), segment(d.ID))
}

// StatusTopic carries the retained last-known state of a device.
func StatusTopic(d model.Device) string {
	return fmt.Sprintf("%s/%s/%s/status", segment(d.Manufacturer.String()), segment(d.Type.String()), segment(d.ID))
}

// FamilyWildcard is the subscription a device family uses; every device of
// the family sees all of the family's traffic and filters by device id.
func FamilyWildcard(manufacturer model.Manufacturer, deviceType model.DeviceType) string {
	return fmt.Sprintf("%s/%s/#", segment(manufacturer.String()), segment(deviceType.String()))
}
