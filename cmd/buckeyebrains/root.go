// Package main provides the entry point for the BuckeyeBrains CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for BuckeyeBrains.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "buckeyebrains",
		Short: "Faculty directory scraper and question answering tool",
		Long: `BuckeyeBrains scrapes university faculty directory pages into a local
store and answers questions about the collected profiles.

The crawl command walks a paginated directory, scrapes each person's
profile page, and persists the records to a database when one is
reachable, or to a local JSON file otherwise. The ask command builds a
retrieval index over the stored profiles and answers questions
interactively. The export command renders the store as JSON or Markdown.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewAskCmd())
	cmd.AddCommand(NewExportCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
