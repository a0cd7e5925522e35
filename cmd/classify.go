package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/saudedigital/saude/internal/facilities"
	"github.com/saudedigital/saude/internal/triage"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [message]",
	Short: "Classify a message and print the triage reply",
	Long:  `Runs the keyword triage over a single message and prints the urgency tier, the phrase that decided it and the reply a patient would receive.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runClassify,
}

func init() {
	classifyCmd.Flags().Bool("json", false, "output the result as JSON")
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	engine, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	result := engine.Evaluate(strings.Join(args, " "))

	out := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	printResult(out, result)
	return nil
}

func printResult(w io.Writer, res triage.Result) {
	fmt.Fprintf(w, "tier:    %s\n", res.Match.Tier)
	if res.Match.Trigger != "" {
		fmt.Fprintf(w, "trigger: %s\n", res.Match.Trigger)
	} else {
		fmt.Fprintln(w, "trigger: (none)")
	}
	if res.Response.Alert != "" {
		fmt.Fprintf(w, "alert:   %s\n", res.Response.Alert)
	}
	fmt.Fprintf(w, "\n%s\n", res.Response.Message)
	printActions(w, res.Response.Actions)
}

func printActions(w io.Writer, actions []triage.Action) {
	if len(actions) == 0 {
		return
	}
	fmt.Fprintln(w)
	for _, a := range actions {
		switch a.Effect {
		case triage.EffectDial:
			fmt.Fprintf(w, "  [%s] %s\n", a.Label, facilities.TelURL(a.Target))
		default:
			fmt.Fprintf(w, "  [%s] saude serve: GET /api/facilities/nearest\n", a.Label)
		}
	}
}
