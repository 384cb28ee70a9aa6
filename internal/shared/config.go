package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
//
// Every field can be overridden by a MEDIATRACK_* environment variable, see [ApplyEnv].
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	Log      LogConfig      `toml:"log"`
	Seed     SeedConfig     `toml:"seed"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path          string `toml:"path" env:"MEDIATRACK_DB_PATH"`
	MaxOpenConns  int    `toml:"max_open_conns" env:"MEDIATRACK_DB_MAX_OPEN_CONNS"`
	MaxIdleConns  int    `toml:"max_idle_conns" env:"MEDIATRACK_DB_MAX_IDLE_CONNS"`
	BusyTimeoutMS int    `toml:"busy_timeout_ms" env:"MEDIATRACK_DB_BUSY_TIMEOUT_MS"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host                string   `toml:"host" env:"MEDIATRACK_HOST"`
	Port                int      `toml:"port" env:"MEDIATRACK_PORT"`
	ReadTimeoutSecs     int      `toml:"read_timeout_secs" env:"MEDIATRACK_READ_TIMEOUT_SECS"`
	WriteTimeoutSecs    int      `toml:"write_timeout_secs" env:"MEDIATRACK_WRITE_TIMEOUT_SECS"`
	ShutdownTimeoutSecs int      `toml:"shutdown_timeout_secs" env:"MEDIATRACK_SHUTDOWN_TIMEOUT_SECS"`
	CORSOrigins         []string `toml:"cors_origins" env:"MEDIATRACK_CORS_ORIGINS" envSeparator:","`
	RateLimit           float64  `toml:"rate_limit" env:"MEDIATRACK_RATE_LIMIT"`
	RateBurst           int      `toml:"rate_burst" env:"MEDIATRACK_RATE_BURST"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level" env:"MEDIATRACK_LOG_LEVEL"`
}

// SeedConfig controls first-run sample data.
type SeedConfig struct {
	Enabled bool `toml:"enabled" env:"MEDIATRACK_SEED"`
}

// Addr returns the host:port pair the HTTP server binds to.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// ReadTimeout returns the configured read timeout.
func (s ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutSecs) * time.Second
}

// WriteTimeout returns the configured write timeout.
func (s ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutSecs) * time.Second
}

// ShutdownTimeout returns how long graceful shutdown waits for in-flight requests.
func (s ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(s.ShutdownTimeoutSecs) * time.Second
}

// Validate reports the first setting that would prevent the service from starting.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("%w: database.path is required", ErrInvalidConfig)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d out of range", ErrInvalidConfig, c.Server.Port)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("%w: server.rate_limit must not be negative", ErrInvalidConfig)
	}
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values from [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// ApplyEnv loads dotenvPath (when it exists) into the process environment and then
// overlays MEDIATRACK_* variables onto config. Unset variables leave fields untouched.
func ApplyEnv(config *Config, dotenvPath string) error {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", dotenvPath, err)
		}
	}

	if err := env.Parse(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// ResolveConfig layers the embedded defaults, the TOML file at path (if present),
// the .env file and the environment, then validates the result.
func ResolveConfig(path, dotenvPath string) (*Config, error) {
	config := DefaultConfig()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if config, err = LoadConfig(path); err != nil {
				return nil, err
			}
		}
	}

	if err := ApplyEnv(config, dotenvPath); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
