package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is the environment variable prefix every setting is bound
// under, e.g. KONF_SERVER_PORT for Server.Port.
const EnvPrefix = "KONF"

// Load reads process configuration from environment variables (prefixed
// KONF_) and, if present, a config file named konf.yaml on the current
// path, then validates the result. Environment variables take precedence
// over file values.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("source.mode", "filesystem")
	v.SetDefault("cache.capacity", 32)

	v.SetConfigName("konf")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// OTEL_EXPORTER_OTLP_ENDPOINT is an OpenTelemetry-standard variable
	// name, not KONF_-prefixed, so it is bound explicitly.
	if err := v.BindEnv("telemetry.otlp_endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT"); err != nil {
		return nil, fmt.Errorf("bind otlp endpoint env var: %w", err)
	}
	for _, key := range []string{
		"server.port", "server.log_level",
		"source.mode", "source.root", "source.branch",
		"cache.capacity",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env var for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &cfg, nil
}
