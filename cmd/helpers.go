package cmd

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/saudedigital/saude/internal/chat"
	"github.com/saudedigital/saude/internal/config"
	"github.com/saudedigital/saude/internal/logging"
	"github.com/saudedigital/saude/internal/notifications"
	"github.com/saudedigital/saude/internal/triage"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `saude init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// newLogger builds the process logger. --verbose forces debug level.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	opts := logging.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		MaxBackups: cfg.Log.MaxBackups,
		Compress:   cfg.Log.Compress,
	}
	if verbose {
		opts.Level = "debug"
	}
	return logging.New(opts)
}

// buildEngine creates the triage engine from the configured pack file, or
// from the built-in pack with the configured phone numbers.
func buildEngine(cfg *config.Config) (*triage.Engine, error) {
	pack := triage.DefaultPack(triage.Numbers{
		Emergency: cfg.Triage.EmergencyNumber,
		CareLine:  cfg.Triage.CareLineNumber,
	})
	if cfg.Triage.PackFile != "" {
		loaded, err := triage.LoadPack(cfg.Triage.PackFile)
		if err != nil {
			return nil, err
		}
		pack = loaded
	}

	engine, err := triage.NewEngine(pack, triage.Folder{StripAccents: cfg.Triage.FoldAccents})
	if err != nil {
		return nil, fmt.Errorf("building triage engine: %w", err)
	}
	return engine, nil
}

// replyDelay returns the configured artificial reply delay.
func replyDelay(cfg *config.Config) chat.DelayFunc {
	return chat.RandomDelay(cfg.Triage.DelayMin, cfg.Triage.DelayMax)
}

// staticWebhooks converts configured webhooks for the dispatcher.
func staticWebhooks(cfg *config.Config) []notifications.Webhook {
	hooks := make([]notifications.Webhook, 0, len(cfg.Notifications.Webhooks))
	for _, wh := range cfg.Notifications.Webhooks {
		hooks = append(hooks, notifications.Webhook{
			URL:            wh.URL,
			SeverityFilter: notifications.Severity(wh.Severity),
		})
	}
	return hooks
}
