package config

// Config holds all process configuration, read once at startup.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Source    SourceConfig    `mapstructure:"source" validate:"required"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error fatal"`
}

// SourceConfig selects and locates the configuration source of truth.
type SourceConfig struct {
	// Mode is "filesystem" or "git".
	Mode string `mapstructure:"mode" validate:"required,oneof=filesystem git"`
	// Root is the filesystem directory in filesystem mode, or the path of
	// a local git repository in git mode (remote URLs are not opened).
	Root string `mapstructure:"root" validate:"required"`
	// Branch is loaded and validated with the rest of the configuration,
	// but neither server mode reads it.
	Branch string `mapstructure:"branch"`
}

// CacheConfig tunes the snapshot cache (git mode only).
type CacheConfig struct {
	Capacity int `mapstructure:"capacity" validate:"gte=0"`
}

// TelemetryConfig holds the OTLP collector endpoint read from
// OTEL_EXPORTER_OTLP_ENDPOINT. No component exports traces to it.
type TelemetryConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}
