package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/nimaibhat/BuckeyeBrains/internal/config"
	"github.com/nimaibhat/BuckeyeBrains/internal/log"
	"github.com/nimaibhat/BuckeyeBrains/internal/qa"
	"github.com/nimaibhat/BuckeyeBrains/internal/storage"
	"github.com/spf13/cobra"
)

// answerPreviewLen bounds how much biography text an answer prints.
const answerPreviewLen = 400

// NewAskCmd creates the ask command.
func NewAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer questions about the stored faculty profiles",
		Long: `Ask builds a retrieval index over the stored profiles and answers
questions by surfacing the most relevant people.

With a question argument it answers once and exits. Without arguments it
starts an interactive session; type "exit" or "quit" to leave.

Examples:
  # One-shot question
  buckeyebrains ask "who studies phonology?"

  # Interactive session
  buckeyebrains ask`,
		Args: cobra.ArbitraryArgs,
		RunE: runAskCmd,
	}

	cmd.Flags().IntP("top", "k", config.DefaultRetrievalK,
		"Number of matching profiles to show per question")
	cmd.Flags().String("db", "",
		"Database connection string (overrides DATABASE_URL)")
	cmd.Flags().StringP("store", "s", config.DefaultFileStorePath,
		"Path of the JSON fallback store")

	return cmd
}

// runAskCmd executes the ask command.
func runAskCmd(cmd *cobra.Command, args []string) error {
	logger := log.NewLogger(os.Stderr, getVerboseFlag(cmd))
	slog.SetDefault(logger)

	topK, err := cmd.Flags().GetInt("top")
	if err != nil {
		return err
	}
	if topK <= 0 {
		topK = config.DefaultRetrievalK
	}

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

	ctx := cmd.Context()

	index, err := buildIndex(ctx, dsn, filePath, logger)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(args) > 0 {
		answer(out, index, strings.Join(args, " "), topK)
		return nil
	}

	return interactiveAsk(ctx, cmd.InOrStdin(), out, index, topK)
}

// buildIndex loads the stored profiles and builds the retrieval index,
// showing a spinner while it works.
func buildIndex(ctx context.Context, dsn, filePath string, logger *slog.Logger) (*qa.Index, error) {
	store, _, err := storage.Resolve(ctx, dsn, filePath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close storage", "error", err)
		}
	}()

	s := spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " loading profiles..."
	s.Start()
	defer s.Stop()

	records, err := store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no profiles stored yet; run \"buckeyebrains crawl\" first")
	}

	s.Suffix = fmt.Sprintf(" indexing %d profiles...", len(records))

	index, err := qa.Build(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("failed to build index: %w", err)
	}
	return index, nil
}

// interactiveAsk runs the question loop until EOF or an exit command.
func interactiveAsk(ctx context.Context, in io.Reader, out io.Writer, index *qa.Index, topK int) error {
	fmt.Fprintf(out, "Ask about %d faculty profiles. Type \"exit\" to leave.\n", index.Len())

	scanner := bufio.NewScanner(in)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		fmt.Fprint(out, "\n? ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if q := strings.ToLower(question); q == "exit" || q == "quit" {
			fmt.Fprintln(out, "Goodbye!")
			return nil
		}

		answer(out, index, question, topK)
	}
}

// answer prints the profiles most relevant to the question.
func answer(out io.Writer, index *qa.Index, question string, topK int) {
	results := index.Search(question, topK)
	if len(results) == 0 {
		fmt.Fprintln(out, "No matching profiles found. Try different words.")
		return
	}

	for i, res := range results {
		fmt.Fprintf(out, "%d. %s (score %.2f)\n", i+1, res.Record.DisplayName(), res.Score)
		if res.Record.ProfileURL != "" {
			fmt.Fprintf(out, "   %s\n", res.Record.ProfileURL)
		}
		if res.Record.HasAbout() {
			fmt.Fprintf(out, "   %s\n", truncate(res.Record.AboutMe, answerPreviewLen))
		} else {
			fmt.Fprintln(out, "   (no about me section)")
		}
	}
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
