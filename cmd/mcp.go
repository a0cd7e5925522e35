package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/saudedigital/saude/internal/facilities"
	mcpserver "github.com/saudedigital/saude/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing message triage, emergency contacts and facility search to AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		engine, err := buildEngine(cfg)
		if err != nil {
			return err
		}
		directory := facilities.Default()

		// Set version from the cmd package variable.
		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "saude MCP server started on stdio (triggers=%d, facilities=%d)\n",
			engine.Lexicon().Len(), directory.Len())

		srv := mcpserver.NewServer(engine, directory)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
