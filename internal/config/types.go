package config

import "time"

// Config is the top-level saude configuration, corresponding to .saude.yml.
type Config struct {
	Server        ServerConfig        `yaml:"server" koanf:"server"`
	Database      DatabaseConfig      `yaml:"database" koanf:"database"`
	Log           LogConfig           `yaml:"log" koanf:"log"`
	Triage        TriageConfig        `yaml:"triage" koanf:"triage"`
	Chat          ChatConfig          `yaml:"chat" koanf:"chat"`
	Notifications NotificationsConfig `yaml:"notifications" koanf:"notifications"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           int      `yaml:"port" koanf:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" koanf:"allowed_origins"`
}

// DatabaseConfig locates the SQLite file backing the notification store.
type DatabaseConfig struct {
	Path string `yaml:"path" koanf:"path"`
}

// LogConfig controls the zap logger and optional file rotation.
type LogConfig struct {
	Level      string `yaml:"level" koanf:"level"`
	File       string `yaml:"file,omitempty" koanf:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" koanf:"max_size_mb"`
	MaxAgeDays int    `yaml:"max_age_days" koanf:"max_age_days"`
	MaxBackups int    `yaml:"max_backups" koanf:"max_backups"`
	Compress   bool   `yaml:"compress" koanf:"compress"`
}

// TriageConfig tunes classification and replies.
type TriageConfig struct {
	// DelayMin and DelayMax bound the artificial reply delay.
	DelayMin time.Duration `yaml:"delay_min" koanf:"delay_min"`
	DelayMax time.Duration `yaml:"delay_max" koanf:"delay_max"`
	// PackFile replaces the built-in lexicon and replies when set.
	PackFile        string `yaml:"pack_file,omitempty" koanf:"pack_file"`
	FoldAccents     bool   `yaml:"fold_accents" koanf:"fold_accents"`
	EmergencyNumber string `yaml:"emergency_number" koanf:"emergency_number"`
	CareLineNumber  string `yaml:"care_line_number" koanf:"care_line_number"`
}

// ChatConfig controls the in-memory session registry.
type ChatConfig struct {
	IdleTimeout   time.Duration `yaml:"idle_timeout" koanf:"idle_timeout"`
	SweepInterval time.Duration `yaml:"sweep_interval" koanf:"sweep_interval"`
}

// NotificationsConfig lists webhooks that receive every matching alert in
// addition to those registered through the API.
type NotificationsConfig struct {
	Webhooks []WebhookConfig `yaml:"webhooks,omitempty" koanf:"webhooks"`
}

// WebhookConfig is a statically configured webhook.
type WebhookConfig struct {
	URL      string `yaml:"url" koanf:"url"`
	Severity string `yaml:"severity,omitempty" koanf:"severity"`
}
