package cmd

import (
	"github.com/spf13/cobra"

	"github.com/saudedigital/saude/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize saude configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure the triage service and writes the config file (default .saude.yml).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
