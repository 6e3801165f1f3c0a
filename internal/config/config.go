// Package config reads patuh's environment. Flags set on the command line
// take precedence over everything here.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the process-wide settings that can come from the environment.
type Config struct {
	LogFormat string `env:"PATUH_LOG_FORMAT" envDefault:"pretty"`
	LogLevel  string `env:"PATUH_LOG_LEVEL"  envDefault:"info"`
	LogOutput string `env:"PATUH_LOG_OUTPUT" envDefault:"stderr"`

	// Catalog is a YAML catalog path; empty selects the embedded catalog.
	Catalog string `env:"PATUH_CATALOG"`

	Receipt     string `env:"PATUH_RECEIPT"`
	ReceiptMode string `env:"PATUH_RECEIPT_MODE" envDefault:"overwrite"`

	MetricsTextfile string `env:"PATUH_METRICS_TEXTFILE"`

	Otel OtelConfig `envPrefix:"PATUH_OTEL_"`
}

// OtelConfig mirrors the --otel* flags.
type OtelConfig struct {
	Enabled     bool    `env:"ENABLED"`
	Endpoint    string  `env:"ENDPOINT"`
	Protocol    string  `env:"PROTOCOL"     envDefault:"otlphttp"`
	Insecure    bool    `env:"INSECURE"`
	SampleRatio float64 `env:"SAMPLE_RATIO" envDefault:"1"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load returns the environment configuration.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
