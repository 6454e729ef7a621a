package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/anicoll/chatbridge/internal/pkg/model"
)

type Config struct {
	MqttCfg  *MqttConfig
	QueueCfg *QueueConfig
	ChatCfg  *ChatConfig

	DatabaseURL      string
	MigrationsFolder string
	LogLevel         string
}

type MqttConfig struct {
	Host     string
	Username string
	Password string
}

type QueueConfig struct {
	URL string
}

type ChatConfig struct {
	TelegramToken   string
	LineAPIURL      string
	LineAccessToken string
}

// CatalogConfig is the environment-only part of the surface: the fixed device
// catalog and the default device used when a command omits one. Entries are
// manufacturer:type:device_id triplets.
type CatalogConfig struct {
	DefaultDeviceID string   `env:"DEFAULT_DEVICE_ID" envDefault:"esp32_light_001"`
	Devices         []string `env:"SUPPORTED_DEVICES" envSeparator:"," envDefault:"esp32:light:esp32_light_001,esp32:fan:esp32_fan_002,raspberrypi:light:raspberrypi_light_001,raspberrypi:fan:raspberrypi_fan_002"`
}

// LoadCatalog parses the device catalog from the environment.
func LoadCatalog() (model.Catalog, string, error) {
	cfg := CatalogConfig{}
	if err := env.Parse(&cfg); err != nil {
		return nil, "", err
	}

	catalog := make(model.Catalog, len(cfg.Devices))
	for _, entry := range cfg.Devices {
		parts := strings.Split(strings.TrimSpace(entry), ":")
		if len(parts) != 3 {
			return nil, "", fmt.Errorf("malformed device entry %q, want manufacturer:type:device_id", entry)
		}
		device := model.Device{
			Manufacturer: model.Manufacturer(parts[0]),
			Type:         model.DeviceType(parts[1]),
			ID:           parts[2],
		}
		catalog[device.ID] = device
	}

	if !catalog.Has(cfg.DefaultDeviceID) {
		return nil, "", fmt.Errorf("default device %q not in catalog", cfg.DefaultDeviceID)
	}
	return catalog, cfg.DefaultDeviceID, nil
}
