package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Session  SessionConfig  `toml:"session"`
	Remote   RemoteConfig   `toml:"remote"`
	Cache    CacheConfig    `toml:"cache"`
	Database DatabaseConfig `toml:"database"`
	Redis    RedisConfig    `toml:"redis"`
	Server   ServerConfig   `toml:"server"`
	Player   PlayerConfig   `toml:"player"`
}

// SessionConfig identifies the user. An empty UserID means an anonymous session.
type SessionConfig struct {
	UserID string `toml:"user_id"`
	Token  string `toml:"token"`
}

// Anonymous reports whether no identity is configured.
func (s SessionConfig) Anonymous() bool {
	return s.UserID == ""
}

// RemoteConfig contains settings for the remote data service client.
type RemoteConfig struct {
	BaseURL        string        `toml:"base_url"`
	TimeoutSeconds int           `toml:"timeout_seconds"`
	RateLimit      float64       `toml:"rate_limit"` // Requests per second, 0 disables limiting
	Burst          int           `toml:"burst"`
	Breaker        BreakerConfig `toml:"breaker"`
}

// Timeout returns the per-request timeout.
func (r RemoteConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// BreakerConfig configures the circuit breaker guarding remote calls.
type BreakerConfig struct {
	MaxRequests      uint32 `toml:"max_requests"`
	IntervalSeconds  int    `toml:"interval_seconds"`
	TimeoutSeconds   int    `toml:"timeout_seconds"`
	FailureThreshold uint32 `toml:"failure_threshold"`
}

// CacheConfig selects the local cache backend: "sqlite", "redis" or "memory".
type CacheConfig struct {
	Backend string `toml:"backend"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// RedisConfig contains Redis connection settings for the redis cache backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

// ServerConfig contains settings for the reference remote service.
type ServerConfig struct {
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	CatalogPath string `toml:"catalog_path"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// PlayerConfig contains playback engine settings.
type PlayerConfig struct {
	Engine   string `toml:"engine"` // "browser" or "log"
	MediaURL string `toml:"media_url"`
	LogFile  string `toml:"log_file"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
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

// LoadEnv loads variables from the given .env files into the process environment.
//
// Missing files are ignored so a bare checkout works without one.
func LoadEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides config values with GROOVE_* environment variables.
func ApplyEnv(c *Config) error {
	if v, ok := os.LookupEnv("GROOVE_USER_ID"); ok {
		c.Session.UserID = v
	}
	if v, ok := os.LookupEnv("GROOVE_TOKEN"); ok {
		c.Session.Token = v
	}
	if v, ok := os.LookupEnv("GROOVE_REMOTE_URL"); ok {
		c.Remote.BaseURL = v
	}
	if v, ok := os.LookupEnv("GROOVE_CACHE_BACKEND"); ok {
		c.Cache.Backend = v
	}
	if v, ok := os.LookupEnv("GROOVE_DATABASE_PATH"); ok {
		c.Database.Path = v
	}
	if v, ok := os.LookupEnv("GROOVE_REDIS_ADDR"); ok {
		c.Redis.Addr = v
	}
	if v, ok := os.LookupEnv("GROOVE_SERVER_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: GROOVE_SERVER_PORT=%q", ErrInvalidConfig, v)
		}
		c.Server.Port = port
	}
	return nil
}
