package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/graphscope/cmd/graphscope/commands"
	"github.com/teranos/graphscope/logger"
)

var rootCmd = &cobra.Command{
	Use:   "graphscope",
	Short: "graphscope - Interactive network dashboard for tabular graph data",
	Long: `graphscope - Interactive network dashboard for tabular graph data.

graphscope loads an edge table and an optional node table, derives the
renderable graph once, and serves a browser dashboard where every session
searches, filters, colors and sizes its own view of the network.

Available commands:
  am       - Manage graphscope configuration ("I am")
  inspect  - Summarize a dataset without starting the server
  server   - Start the dashboard server
  version  - Show version information

Examples:
  graphscope server --edges edges.csv --nodes nodes.csv
  graphscope inspect --edges edges.csv
  graphscope am where                # Show where configuration is loaded from
  graphscope am init                 # Write a default user config`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonLogs, _ := cmd.Flags().GetBool("json-logs")
		if err := logger.Initialize(jsonLogs, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Emit structured JSON logs instead of console output")

	rootCmd.AddCommand(commands.AmCmd)
	rootCmd.AddCommand(commands.InspectCmd)
	rootCmd.AddCommand(commands.ServerCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Cleanup()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
