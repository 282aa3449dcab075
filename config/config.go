// Package config provides YAML configuration parsing for statusgram.
//
// This package enables running statusgram as a standalone binary with
// a configuration file, as an alternative to the programmatic SDK
// approach.
//
// Example configuration:
//
//	backend:
//	  url: https://uptime.example.net
//	  status_page: default
//	  api_key: ${KUMA_API_KEY:-}
//
//	telegram_token: ${TELEGRAM_TOKEN}
//	refresh_interval: 60s
//	health_port: 3000
//	state_file: /var/lib/statusgram/state.json
//
//	surfaces:
//	  - name: team
//	    chat_id: "-1001234567890"
//	    groups: [Team, Players]
//	    author_name: Team Status
//	    color: "#ff7a00"
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// minRefreshInterval prevents accidental DoS of the backend with
// overly aggressive polling.
const minRefreshInterval = 5 * time.Second

// Config is the root configuration structure for statusgram. It maps
// directly to the YAML file; use [Load] or [Parse] to create one.
type Config struct {
	// Backend describes the monitoring backend to poll.
	Backend BackendConfig `yaml:"backend"`

	// TelegramToken is the bot token for the built-in Telegram sink.
	// Supports environment variable substitution: ${VAR} or
	// ${VAR:-default}.
	TelegramToken string `yaml:"telegram_token"`

	// RefreshInterval is the time between reconcile cycles. Accepts
	// duration strings like "60s", "5m". Defaults to 60s.
	RefreshInterval Duration `yaml:"refresh_interval"`

	// HealthPort is the liveness endpoint port. Defaults to 3000;
	// 0 disables the listener.
	HealthPort *int `yaml:"health_port"`

	// StateFile persists per-surface message ids across restarts.
	// Empty means in-memory only.
	StateFile string `yaml:"state_file"`

	// Surfaces defines the chat destinations to keep updated.
	Surfaces []SurfaceConfig `yaml:"surfaces"`
}

// BackendConfig describes one monitoring backend.
type BackendConfig struct {
	// URL is the backend base address. Supports environment variable
	// substitution.
	URL string `yaml:"url"`

	// StatusPage is the status-page slug. Defaults to "default".
	StatusPage string `yaml:"status_page"`

	// APIKey is the backend credential. Empty means unauthenticated
	// requests against a public status page. Supports environment
	// variable substitution.
	APIKey string `yaml:"api_key"`
}

// SurfaceConfig defines one chat destination.
type SurfaceConfig struct {
	// Name identifies the surface in logs and the state file. Must be
	// unique.
	Name string `yaml:"name"`

	// ChatID is the destination chat id (for Telegram, a decimal
	// string; channel ids are negative). Supports environment
	// variable substitution.
	ChatID string `yaml:"chat_id"`

	// Groups is the case-insensitive group allow-list. Empty means
	// the surface displays all monitors.
	Groups []string `yaml:"groups"`

	// AuthorName is the heading above the status body.
	AuthorName string `yaml:"author_name"`

	// AuthorIcon is an icon URL for sinks that display one.
	AuthorIcon string `yaml:"author_icon"`

	// Color is the accent color as a hex string like "#ff7a00".
	Color string `yaml:"color"`

	// Link overrides the outbound status-page link.
	Link string `yaml:"link"`

	// Glyphs overrides the status symbols, keyed by "up", "down",
	// "pending", "unknown".
	Glyphs map[string]string `yaml:"glyphs"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with
// environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Environment variables in the file are expanded before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in the backend URL, API key,
// telegram token, and chat ids. Defaults are applied for StatusPage
// ("default"), RefreshInterval (60s), and HealthPort (3000).
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.Backend.StatusPage == "" {
		cfg.Backend.StatusPage = "default"
	}
	if cfg.RefreshInterval == 0 {
		cfg.RefreshInterval = Duration(60 * time.Second)
	}
	if cfg.HealthPort == nil {
		port := 3000
		cfg.HealthPort = &port
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

var colorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// expandAndValidate expands environment variables and validates the
// config.
func (c *Config) expandAndValidate() error {
	if c.RefreshInterval.Duration() < minRefreshInterval {
		return fmt.Errorf("refresh_interval must be at least %s, got %s",
			minRefreshInterval, c.RefreshInterval.Duration())
	}

	if c.Backend.URL == "" {
		return errors.New("backend.url is required")
	}
	expanded, err := expandEnvVars(c.Backend.URL)
	if err != nil {
		return fmt.Errorf("backend.url: %w", err)
	}
	c.Backend.URL = strings.TrimRight(expanded, "/")

	parsedURL, err := url.Parse(c.Backend.URL)
	if err != nil {
		return fmt.Errorf("backend.url: invalid url: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("backend.url scheme must be http or https, got %q", parsedURL.Scheme)
	}

	if c.Backend.APIKey, err = expandEnvVars(c.Backend.APIKey); err != nil {
		return fmt.Errorf("backend.api_key: %w", err)
	}
	if c.TelegramToken, err = expandEnvVars(c.TelegramToken); err != nil {
		return fmt.Errorf("telegram_token: %w", err)
	}
	if c.TelegramToken == "" {
		return errors.New("telegram_token is required")
	}

	if *c.HealthPort < 0 || *c.HealthPort > 65535 {
		return fmt.Errorf("health_port must be between 0 and 65535, got %d", *c.HealthPort)
	}

	if len(c.Surfaces) == 0 {
		return errors.New("at least one surface must be defined")
	}

	seen := make(map[string]struct{}, len(c.Surfaces))
	for i := range c.Surfaces {
		s := &c.Surfaces[i]

		if s.Name == "" {
			return fmt.Errorf("surfaces[%d]: name is required", i)
		}
		if _, dup := seen[s.Name]; dup {
			return fmt.Errorf("surfaces[%d]: duplicate name %q", i, s.Name)
		}
		seen[s.Name] = struct{}{}

		if s.ChatID == "" {
			return fmt.Errorf("surfaces[%d] (%s): chat_id is required", i, s.Name)
		}
		if s.ChatID, err = expandEnvVars(s.ChatID); err != nil {
			return fmt.Errorf("surfaces[%d] (%s): chat_id: %w", i, s.Name, err)
		}
		if _, err := strconv.ParseInt(s.ChatID, 10, 64); err != nil {
			return fmt.Errorf("surfaces[%d] (%s): chat_id must be a decimal chat id, got %q", i, s.Name, s.ChatID)
		}

		if s.Color != "" && !colorPattern.MatchString(s.Color) {
			return fmt.Errorf("surfaces[%d] (%s): color must be a hex string like #ff7a00, got %q", i, s.Name, s.Color)
		}

		if s.Link != "" {
			parsed, err := url.Parse(s.Link)
			if err != nil || parsed.Scheme == "" {
				return fmt.Errorf("surfaces[%d] (%s): link must be an absolute URL", i, s.Name)
			}
		}

		for key := range s.Glyphs {
			switch key {
			case "up", "down", "pending", "unknown":
			default:
				return fmt.Errorf("surfaces[%d] (%s): unknown glyph key %q (expected up, down, pending, or unknown)", i, s.Name, key)
			}
		}
	}

	return nil
}
