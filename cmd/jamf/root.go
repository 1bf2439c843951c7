package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/jamf/pkg/cli"
)

var (
	// Global flags
	cfgFile      string
	verbose      bool
	outputFormat string
	metricsFile  string
)

var rootCmd = &cobra.Command{
	Use:   "jamf",
	Short: "Jamf - device-management policy client",
	Long: `Jamf is a client for the classic device-management XML API.

It provides:
  - Category and policy listing
  - Policy package editing with rollback on failed writes
  - XML to YAML conversion and XPath queries
  - Scheduled package baseline enforcement
  - A queryable history of package changes

Configuration is read from --config and JAMF_* environment variables;
the environment wins.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	ctx := cli.SetupSignalHandler()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: environment only)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "output format: text, json, yaml, xml")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")
}

// render writes data to the command's output in the selected format.
func render(cmd *cobra.Command, data any) error {
	format, err := cli.ParseOutputFormat(outputFormat)
	if err != nil {
		return err
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), data)
}
