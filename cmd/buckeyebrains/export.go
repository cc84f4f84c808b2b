package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nimaibhat/BuckeyeBrains/internal/config"
	"github.com/nimaibhat/BuckeyeBrains/internal/log"
	"github.com/nimaibhat/BuckeyeBrains/internal/model"
	"github.com/nimaibhat/BuckeyeBrains/internal/report"
	"github.com/nimaibhat/BuckeyeBrains/internal/storage"
	"github.com/spf13/cobra"
)

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the stored profiles as JSON or Markdown",
		Long: `Export renders every stored profile as a report.

The default format is pretty-printed JSON. With --markdown the report is
a GitHub Flavored Markdown document with summary counts and a profile
table.

Examples:
  # JSON to stdout
  buckeyebrains export

  # Markdown to a file
  buckeyebrains export --markdown --output profiles.md`,
		Args: cobra.NoArgs,
		RunE: runExportCmd,
	}

	cmd.Flags().BoolP("json", "j", false,
		"Output JSON (the default; mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write the report to specified file path (creates directories if needed)")
	cmd.Flags().String("db", "",
		"Database connection string (overrides DATABASE_URL)")
	cmd.Flags().StringP("store", "s", config.DefaultFileStorePath,
		"Path of the JSON fallback store")

	cmd.MarkFlagsMutuallyExclusive("json", "markdown")

	return cmd
}

// runExportCmd executes the export command.
func runExportCmd(cmd *cobra.Command, _ []string) error {
	logger := log.NewLogger(os.Stderr, getVerboseFlag(cmd))
	slog.SetDefault(logger)

	if _, err := config.LoadEnvFiles(); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	dsn := os.Getenv(config.EnvDatabaseURL)
	if db, err := cmd.Flags().GetString("db"); err != nil {
		return err
	} else if db != "" {
		dsn = db
	}

	filePath, err := cmd.Flags().GetString("store")
	if err != nil {
		return err
	}

	markdown, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}

	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	store, mode, err := storage.Resolve(ctx, dsn, filePath, logger)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close storage", "error", err)
		}
	}()

	records, err := store.All(ctx)
	if err != nil {
		return fmt.Errorf("failed to load profiles: %w", err)
	}

	source := filePath
	if mode == model.StorageModeDatabase {
		source = "database"
	}
	export := report.NewExport(source, records)

	output, closeOutput, err := openOutput(outputPath, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer closeOutput()

	var writer report.Writer
	if markdown {
		writer = report.NewMarkdownWriter(output)
	} else {
		writer = report.NewJSONWriter(output, report.WithPrettyPrint())
	}

	if _, err := writer.Write(export); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// openOutput returns the report destination: the given file path, or
// fallback (stdout) when no path is set.
func openOutput(path string, fallback io.Writer) (io.Writer, func(), error) {
	if path == "" {
		return fallback, func() {}, nil
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
