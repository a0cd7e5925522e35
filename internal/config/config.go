package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap/zapcore"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/saudedigital/saude/internal/notifications"
)

// EnvPrefix prefixes every environment override. A double underscore
// separates nested keys: SAUDE_SERVER__PORT sets server.port.
const EnvPrefix = "SAUDE_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (SAUDE_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// envKey maps SAUDE_TRIAGE__DELAY_MIN to triage.delay_min.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log.level %q: %w", c.Log.Level, err)
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxAgeDays < 0 || c.Log.MaxBackups < 0 {
		return fmt.Errorf("log rotation settings must be non-negative")
	}

	if c.Triage.DelayMin < 0 {
		return fmt.Errorf("triage.delay_min must be non-negative")
	}
	if c.Triage.DelayMax < c.Triage.DelayMin {
		return fmt.Errorf("triage.delay_max (%s) is below delay_min (%s)", c.Triage.DelayMax, c.Triage.DelayMin)
	}
	if strings.TrimSpace(c.Triage.EmergencyNumber) == "" {
		return fmt.Errorf("triage.emergency_number is required")
	}
	if strings.TrimSpace(c.Triage.CareLineNumber) == "" {
		return fmt.Errorf("triage.care_line_number is required")
	}

	// Sessions only end by eviction, so both must be set.
	if c.Chat.IdleTimeout <= 0 {
		return fmt.Errorf("chat.idle_timeout must be positive")
	}
	if c.Chat.SweepInterval <= 0 {
		return fmt.Errorf("chat.sweep_interval must be positive")
	}

	for i, wh := range c.Notifications.Webhooks {
		u, err := url.Parse(wh.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("notifications.webhooks[%d]: invalid url %q", i, wh.URL)
		}
		if wh.Severity != "" && !notifications.Severity(wh.Severity).Valid() {
			return fmt.Errorf("notifications.webhooks[%d]: invalid severity %q", i, wh.Severity)
		}
	}

	return nil
}
