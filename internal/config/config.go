// Package config loads odin-tdcore's runtime configuration, following
// go-server-3's viper-backed Load() convention.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration for the demo binary.
type Config struct {
	Dispatch DispatchConfig `mapstructure:"dispatch"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	EventBus EventBusConfig `mapstructure:"event_bus"`
}

// DispatchConfig controls the Client Dispatch Layer's ambient sizing.
type DispatchConfig struct {
	OutputQueueSize int           `mapstructure:"output_queue_size"`
	ReceiveTimeout  time.Duration `mapstructure:"receive_timeout"`
}

// MetricsConfig controls the Prometheus/debug HTTP surface.
type MetricsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	ListenAddr string `mapstructure:"listen_addr"`
	Endpoint   string `mapstructure:"endpoint"`
}

// LoggingConfig controls zap logger level/encoding.
type LoggingConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// EventBusConfig controls the optional NATS lifecycle publisher.
type EventBusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
	Subject string `mapstructure:"subject"`
}

// Load reads configuration from environment variables (ODIN_ prefix) and
// an optional odin.yaml config file, mirroring
// go-server-3/internal/config/config.go.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("dispatch.output_queue_size", 4096)
	v.SetDefault("dispatch.receive_timeout", 2*time.Second)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.listen_addr", ":9096")
	v.SetDefault("metrics.endpoint", "/metrics")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.development", false)

	v.SetDefault("event_bus.enabled", false)
	v.SetDefault("event_bus.url", "nats://127.0.0.1:4222")
	v.SetDefault("event_bus.subject", "odin.tdcore.clients")

	v.SetConfigName("odin")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvPrefix("ODIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.ReadInConfig()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config unmarshal: %w", err)
	}

	if cfg.Dispatch.OutputQueueSize <= 0 {
		cfg.Dispatch.OutputQueueSize = 4096
	}
	if cfg.Dispatch.ReceiveTimeout <= 0 {
		cfg.Dispatch.ReceiveTimeout = 2 * time.Second
	}

	return cfg, nil
}
