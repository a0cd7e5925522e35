package config

import "time"

// DefaultPath is where the config file is looked up and saved by default.
const DefaultPath = ".saude.yml"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8080,
		},
		Database: DatabaseConfig{
			Path: ".saude/saude.db",
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  100,
			MaxAgeDays: 28,
			MaxBackups: 3,
		},
		Triage: TriageConfig{
			DelayMin:        time.Second,
			DelayMax:        2 * time.Second,
			EmergencyNumber: "192",
			CareLineNumber:  "38322483730",
		},
		Chat: ChatConfig{
			IdleTimeout:   30 * time.Minute,
			SweepInterval: time.Minute,
		},
	}
}
