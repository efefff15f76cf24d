package otel

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds OTLP exporter configuration.
type Config struct {
	Endpoint string `envconfig:"CAMLOG_OTEL_ENDPOINT"`
	Enabled  bool   `envconfig:"CAMLOG_OTEL_ENABLED"`
	Insecure bool   `envconfig:"CAMLOG_OTEL_INSECURE"`
}

// LoadConfig reads exporter configuration from the CAMLOG_OTEL_*
// environment variables.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to read otel config: %w", err)
	}
	return cfg, nil
}
