package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
)

// delayPresets are the reply pacing choices offered by the wizard.
var delayPresets = []struct {
	Label    string
	Min, Max time.Duration
}{
	{Label: "natural  - 1 to 2 seconds, like a person typing", Min: time.Second, Max: 2 * time.Second},
	{Label: "fast     - a quarter second", Min: 250 * time.Millisecond, Max: 250 * time.Millisecond},
	{Label: "instant  - no delay", Min: 0, Max: 0},
}

var logLevels = []string{"info", "debug", "warn", "error"}

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to saude! Let's configure the triage service.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. HTTP port.
	portPrompt := promptui.Prompt{
		Label:    "HTTP port",
		Default:  strconv.Itoa(cfg.Server.Port),
		Validate: validatePort,
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Server.Port, _ = strconv.Atoi(strings.TrimSpace(portStr))

	// 2. Phone numbers offered in urgent replies.
	emergencyPrompt := promptui.Prompt{
		Label:    "Emergency number (SAMU)",
		Default:  cfg.Triage.EmergencyNumber,
		Validate: validatePhone,
	}
	if cfg.Triage.EmergencyNumber, err = emergencyPrompt.Run(); err != nil {
		return nil, fmt.Errorf("emergency number: %w", err)
	}

	careLinePrompt := promptui.Prompt{
		Label:    "Hospital care line",
		Default:  cfg.Triage.CareLineNumber,
		Validate: validatePhone,
	}
	if cfg.Triage.CareLineNumber, err = careLinePrompt.Run(); err != nil {
		return nil, fmt.Errorf("care line: %w", err)
	}

	// 3. Reply pacing.
	labels := make([]string, len(delayPresets))
	for i, p := range delayPresets {
		labels[i] = p.Label
	}
	delayPrompt := promptui.Select{
		Label: "Reply pacing",
		Items: labels,
	}
	idx, _, err := delayPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("reply pacing: %w", err)
	}
	cfg.Triage.DelayMin = delayPresets[idx].Min
	cfg.Triage.DelayMax = delayPresets[idx].Max

	// 4. Accent-insensitive matching.
	foldPrompt := promptui.Select{
		Label: "Match keywords typed without accents (\"nao respira\")?",
		Items: []string{"no", "yes"},
	}
	foldIdx, _, err := foldPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("accent folding: %w", err)
	}
	cfg.Triage.FoldAccents = foldIdx == 1

	// 5. Log level.
	levelPrompt := promptui.Select{
		Label: "Log level",
		Items: logLevels,
	}
	if _, cfg.Log.Level, err = levelPrompt.Run(); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	// 6. Optional alert webhooks.
	hookPrompt := promptui.Prompt{
		Label:   "Webhook URLs for urgent alerts (comma-separated, blank for none)",
		Default: "",
	}
	hooks, err := hookPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("webhooks: %w", err)
	}
	for _, u := range splitAndTrim(hooks) {
		cfg.Notifications.Webhooks = append(cfg.Notifications.Webhooks, WebhookConfig{URL: u, Severity: "error"})
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

func validatePort(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("enter a port between 1 and 65535")
	}
	return nil
}

func validatePhone(s string) error {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return nil
		}
	}
	return fmt.Errorf("enter a phone number")
}

// splitAndTrim splits a comma-separated string and drops blank entries.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
