// Package cli implements the quakefeed command tree.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "quakefeed",
	Short: "Query the USGS earthquake feed and return display-ready records",
	Long: `quakefeed queries the USGS FDSN event service, decodes the GeoJSON
response, and enriches each earthquake with a rounded magnitude, a color
category, a split location, and a formatted date and time.

Settings come from environment variables (FEED_BASE_URL, MIN_MAGNITUDE,
ORDER_BY, FEED_LIMIT, ...). Flags on individual commands override them.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "quakefeed "+version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}
