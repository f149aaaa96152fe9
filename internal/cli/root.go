// Package cli implements the paperdigest command-line interface.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/paperdigest/internal/config"
	"github.com/dgallion1/paperdigest/internal/summarize"
)

// app carries what every subcommand needs once the root has run.
type app struct {
	cfg     config.Config
	log     *slog.Logger
	verbose bool
}

// NewRootCmd builds the command tree. Each call returns an independent tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "paperdigest",
		Short: "Search papers and summarize documents extractively",
		Long: `paperdigest picks the most representative sentences of a text by word
frequency and returns them in their original order. It can summarize local
files, arXiv search results and documents fetched by URL.

Example usage:
  paperdigest summarize notes.md -n 3          # Summarize a file
  paperdigest summarize --glob "docs/**/*.md"   # Summarize many files
  paperdigest search -q "graph neural networks" --summarize 2
  paperdigest fetch https://arxiv.org/pdf/1706.03762 --pages 4`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			a.cfg = cfg

			level := cfg.SlogLevel()
			if a.verbose {
				level = slog.LevelDebug
			}
			a.log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		newSummarizeCmd(a),
		newSearchCmd(a),
		newFetchCmd(a),
	)
	return root
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func (a *app) summarizer() (*summarize.Summarizer, error) {
	res, err := summarize.LoadEnglish()
	if err != nil {
		return nil, fmt.Errorf("failed to load language resources: %w", err)
	}
	return summarize.New(res), nil
}

// intFlag returns the flag value when the user set it, else fallback.
func intFlag(cmd *cobra.Command, name string, value, fallback int) int {
	if cmd.Flags().Changed(name) {
		return value
	}
	return fallback
}

func printExplain(w io.Writer, a summarize.Analysis) {
	selected := make(map[int]bool, len(a.Selected))
	for _, idx := range a.Selected {
		selected[idx] = true
	}
	for i, s := range a.Sentences {
		mark := " "
		if selected[s.Index] {
			mark = "*"
		}
		fmt.Fprintf(w, "%s [%d] %.3f  %s\n", mark, s.Index, a.Scores[i].Score, s.Text)
	}
}
