// Package config loads and validates FoodChain's YAML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all FoodChain client configuration.
type Config struct {
	// Backend is the FoodChain API server.
	Backend BackendConfig `yaml:"backend"`

	// Router is the road-routing service.
	Router RouterConfig `yaml:"router"`

	// Location is the caller's default position, used until a live
	// geolocation read arrives.
	Location LocationConfig `yaml:"location"`

	// Speech configures voice capture and playback.
	Speech SpeechConfig `yaml:"speech"`

	// Alerts configures the notification ladder.
	Alerts AlertsConfig `yaml:"alerts"`

	// Logging configures the per-category log files.
	Logging LoggingConfig `yaml:"logging"`
}

// BackendConfig configures the API server connection.
type BackendConfig struct {
	URL     string `yaml:"url"`
	Timeout string `yaml:"timeout"`
}

// RouterConfig configures the OSRM-compatible routing service.
type RouterConfig struct {
	URL     string `yaml:"url"`
	Timeout string `yaml:"timeout"`
}

// LocationConfig is a fixed fallback position.
type LocationConfig struct {
	Lat float64 `yaml:"lat"`
	Lng float64 `yaml:"lng"`
}

// SpeechConfig configures the voice pipeline.
type SpeechConfig struct {
	// Language is a BCP 47 tag used for both recognition and synthesis.
	Language string `yaml:"language"`
	Enabled  bool   `yaml:"enabled"`
}

// AlertsConfig configures alert dispatch.
type AlertsConfig struct {
	// Numbers are the phone numbers contacted on SMS and call escalation.
	Numbers []string `yaml:"numbers"`
}

// LoggingConfig configures file logging.
type LoggingConfig struct {
	// StateDir is where logs and other local state live.
	StateDir string `yaml:"state_dir"`
	Level    string `yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns the built-in defaults: a local backend, the public
// OSRM instance, and a Bengaluru fallback position.
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			URL:     "http://localhost:8000",
			Timeout: "15s",
		},
		Router: RouterConfig{
			URL:     "https://router.project-osrm.org",
			Timeout: "8s",
		},
		Location: LocationConfig{
			Lat: 12.9716,
			Lng: 77.5946,
		},
		Speech: SpeechConfig{
			Language: "hi-IN",
			Enabled:  true,
		},
		Logging: LoggingConfig{
			StateDir: ".foodchain",
			Level:    "info",
		},
	}
}

// Load reads configuration from path, falling back to defaults when the
// file does not exist, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes configuration to a YAML file, creating parent directories.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if url := os.Getenv("FOODCHAIN_BACKEND_URL"); url != "" {
		c.Backend.URL = url
	}
	if url := os.Getenv("FOODCHAIN_ROUTER_URL"); url != "" {
		c.Router.URL = url
	}
	if dir := os.Getenv("FOODCHAIN_STATE_DIR"); dir != "" {
		c.Logging.StateDir = dir
	}
	if lat := os.Getenv("FOODCHAIN_LAT"); lat != "" {
		if v, err := strconv.ParseFloat(lat, 64); err == nil {
			c.Location.Lat = v
		}
	}
	if lng := os.Getenv("FOODCHAIN_LNG"); lng != "" {
		if v, err := strconv.ParseFloat(lng, 64); err == nil {
			c.Location.Lng = v
		}
	}
}

// Validate checks the configuration for values that would fail at runtime.
func (c *Config) Validate() error {
	if c.Backend.URL == "" {
		return fmt.Errorf("backend URL not configured")
	}
	if _, err := c.BackendTimeout(); err != nil {
		return fmt.Errorf("invalid backend timeout: %w", err)
	}
	if _, err := c.RouterTimeout(); err != nil {
		return fmt.Errorf("invalid router timeout: %w", err)
	}
	if c.Location.Lat < -90 || c.Location.Lat > 90 {
		return fmt.Errorf("latitude out of range: %v", c.Location.Lat)
	}
	if c.Location.Lng < -180 || c.Location.Lng > 180 {
		return fmt.Errorf("longitude out of range: %v", c.Location.Lng)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	return nil
}

// BackendTimeout parses the backend request timeout.
func (c *Config) BackendTimeout() (time.Duration, error) {
	return parseTimeout(c.Backend.Timeout, 15*time.Second)
}

// RouterTimeout parses the routing request timeout.
func (c *Config) RouterTimeout() (time.Duration, error) {
	return parseTimeout(c.Router.Timeout, 8*time.Second)
}

func parseTimeout(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	return time.ParseDuration(s)
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ".foodchain/config.yaml"
	}
	return filepath.Join(cwd, ".foodchain", "config.yaml")
}
