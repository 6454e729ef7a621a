package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anicoll/chatbridge/internal/pkg/model"
)

func TestLoadCatalogDefaults(t *testing.T) {
	catalog, defaultDevice, err := LoadCatalog()

	require.NoError(t, err)
	assert.Equal(t, "esp32_light_001", defaultDevice)
	assert.Len(t, catalog, 4)

	device, ok := catalog.Get("raspberrypi_fan_002")
	require.True(t, ok)
	assert.Equal(t, model.ManufacturerRaspberryPi, device.Manufacturer)
	assert.Equal(t, model.DeviceTypeFan, device.Type)
}

func TestLoadCatalogFromEnv(t *testing.T) {
	t.Setenv("SUPPORTED_DEVICES", "esp32:light:kitchen, esp32:fan:attic")
	t.Setenv("DEFAULT_DEVICE_ID", "attic")

	catalog, defaultDevice, err := LoadCatalog()

	require.NoError(t, err)
	assert.Equal(t, "attic", defaultDevice)
	assert.Len(t, catalog, 2)
	assert.True(t, catalog.Has("kitchen"))
}

func TestLoadCatalogMalformedEntry(t *testing.T) {
	t.Setenv("SUPPORTED_DEVICES", "esp32:light")

	_, _, err := LoadCatalog()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed device entry")
}

func TestLoadCatalogDefaultNotListed(t *testing.T) {
	t.Setenv("SUPPORTED_DEVICES", "esp32:light:kitchen")
	t.Setenv("DEFAULT_DEVICE_ID", "basement")

	_, _, err := LoadCatalog()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not in catalog")
}
