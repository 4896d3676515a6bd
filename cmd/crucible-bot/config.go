// ABOUTME: Configuration loading for the crucible bot
// ABOUTME: Loads TOML config from XDG path with environment variable expansion

package main

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server  ServerConfig  `toml:"server"`
	Bot     BotConfig     `toml:"bot"`
	Logging LoggingConfig `toml:"logging"`
}

type ServerConfig struct {
	URL string `toml:"url"`
}

type BotConfig struct {
	Name              string `toml:"name"`
	Matches           int    `toml:"matches"`
	HeartbeatInterval string `toml:"heartbeat_interval"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
}

// Default returns a config that targets a local arena.
func Default() *Config {
	return &Config{
		Server:  ServerConfig{URL: "ws://localhost:8787/ws/play"},
		Bot:     BotConfig{Name: "", Matches: 0, HeartbeatInterval: "30s"},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads config from the given path, expanding environment variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables (${VAR} syntax)
	expanded := expandEnvVars(string(data))

	cfg := Default()
	if _, err := toml.Decode(expanded, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// expandEnvVars replaces ${VAR} with environment variable values.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		return os.Getenv(varName)
	})
}

// Validate checks that required config fields are present and valid.
func (c *Config) Validate() error {
	if c.Server.URL == "" {
		return fmt.Errorf("server.url is required")
	}
	u, err := url.Parse(c.Server.URL)
	if err != nil {
		return fmt.Errorf("server.url is not a valid URL: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("server.url must use ws or wss scheme")
	}
	if c.Bot.Matches < 0 {
		return fmt.Errorf("bot.matches cannot be negative")
	}
	if _, err := c.heartbeatInterval(); err != nil {
		return fmt.Errorf("bot.heartbeat_interval: %w", err)
	}
	return nil
}

func (c *Config) heartbeatInterval() (time.Duration, error) {
	if c.Bot.HeartbeatInterval == "" {
		return 30 * time.Second, nil
	}
	return time.ParseDuration(c.Bot.HeartbeatInterval)
}
