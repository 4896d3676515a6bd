// ABOUTME: Configuration loading and parsing for the crucible server
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cyberdreadx/the-crucible/internal/game"
)

// Config represents the complete crucible configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Database  DatabaseConfig  `yaml:"database"`
	Arena     ArenaConfig     `yaml:"arena"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds server address configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// TailscaleConfig holds Tailscale tsnet configuration
type TailscaleConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Hostname  string `yaml:"hostname"`
	AuthKey   string `yaml:"auth_key"`
	StateDir  string `yaml:"state_dir"`
	Ephemeral bool   `yaml:"ephemeral"`
}

// DatabaseConfig holds the match archive location. An empty path keeps
// the archive in memory.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ArenaConfig holds matchmaking timing configuration and the enabled
// game variants. An empty variant list enables everything.
type ArenaConfig struct {
	HeartbeatInterval time.Duration `yaml:"-"`
	HeartbeatTimeout  time.Duration `yaml:"-"`
	WatchdogInterval  time.Duration `yaml:"-"`
	CleanupDelay      time.Duration `yaml:"-"`

	Variants []string `yaml:"variants"`

	// Raw string values for YAML unmarshaling
	HeartbeatIntervalRaw string `yaml:"heartbeat_interval"`
	HeartbeatTimeoutRaw  string `yaml:"heartbeat_timeout"`
	WatchdogIntervalRaw  string `yaml:"watchdog_interval"`
	CleanupDelayRaw      string `yaml:"cleanup_delay"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{HTTPAddr: ":8787"},
		Arena: ArenaConfig{
			HeartbeatInterval: 30 * time.Second,
			HeartbeatTimeout:  90 * time.Second,
			WatchdogInterval:  10 * time.Second,
			CleanupDelay:      30 * time.Second,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expandedData), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Parse duration fields
	if err := parseDurations(cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	// Match ${VAR_NAME} pattern
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	// The HTTP address is required unless Tailscale is enabled
	if !c.Tailscale.Enabled && c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required (or enable tailscale)")
	}

	// Tailscale requires a hostname
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}

	if c.Arena.HeartbeatTimeout <= c.Arena.HeartbeatInterval {
		return fmt.Errorf("arena.heartbeat_timeout must exceed arena.heartbeat_interval")
	}

	for _, v := range c.Arena.Variants {
		if !game.Valid(game.Variant(v)) {
			return fmt.Errorf("arena.variants contains unknown game %q", v)
		}
	}

	return nil
}

// GameVariants converts the configured variant names into engine tags.
// Empty means all variants are enabled.
func (c *Config) GameVariants() []game.Variant {
	out := make([]game.Variant, 0, len(c.Arena.Variants))
	for _, v := range c.Arena.Variants {
		out = append(out, game.Variant(v))
	}
	return out
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	fields := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"heartbeat_interval", cfg.Arena.HeartbeatIntervalRaw, &cfg.Arena.HeartbeatInterval},
		{"heartbeat_timeout", cfg.Arena.HeartbeatTimeoutRaw, &cfg.Arena.HeartbeatTimeout},
		{"watchdog_interval", cfg.Arena.WatchdogIntervalRaw, &cfg.Arena.WatchdogInterval},
		{"cleanup_delay", cfg.Arena.CleanupDelayRaw, &cfg.Arena.CleanupDelay},
	}

	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		d, err := time.ParseDuration(f.raw)
		if err != nil {
			return fmt.Errorf("parsing %s %q: %w", f.name, f.raw, err)
		}
		*f.dst = d
	}

	return nil
}
