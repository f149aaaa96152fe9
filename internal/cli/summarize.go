package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/paperdigest/internal/parser"
	"github.com/dgallion1/paperdigest/internal/summarize"
)

type summarizeOptions struct {
	globs    []string
	n        int
	explain  bool
	parallel int
}

func newSummarizeCmd(a *app) *cobra.Command {
	opts := &summarizeOptions{}
	cmd := &cobra.Command{
		Use:   "summarize [files...]",
		Short: "Summarize local files or stdin",
		Long: `Summarize text, Markdown, HTML, PDF or DOCX files. With no files and no
--glob, the text is read from stdin. Summaries are printed in input order.

Examples:
  paperdigest summarize paper.pdf -n 5
  paperdigest summarize --glob "notes/**/*.md" --parallel 8
  cat article.txt | paperdigest summarize --explain`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSummarize(cmd, args, opts)
		},
	}
	cmd.Flags().StringArrayVar(&opts.globs, "glob", nil, "doublestar pattern selecting files (repeatable)")
	cmd.Flags().IntVarP(&opts.n, "sentences", "n", 0, "number of sentences (default from config)")
	cmd.Flags().BoolVar(&opts.explain, "explain", false, "print every sentence with its score")
	cmd.Flags().IntVar(&opts.parallel, "parallel", 4, "files summarized concurrently")
	return cmd
}

type fileSummary struct {
	path     string
	analysis summarize.Analysis
}

func (a *app) runSummarize(cmd *cobra.Command, args []string, opts *summarizeOptions) error {
	n := intFlag(cmd, "sentences", opts.n, a.cfg.DefaultSummarySentences)
	s, err := a.summarizer()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	paths, err := expandInputs(args, opts.globs)
	if err != nil {
		return err
	}

	if len(paths) == 0 {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		analysis := s.Analyze(string(data), n)
		if opts.explain {
			printExplain(out, analysis)
			return nil
		}
		fmt.Fprintln(out, analysis.Summary)
		return nil
	}

	start := time.Now()
	results, err := summarizeFiles(cmd.Context(), s, paths, n, opts.parallel)
	if err != nil {
		return err
	}
	a.log.Debug("summarized files", "count", len(results), "duration", time.Since(start))

	for i, r := range results {
		if len(results) > 1 {
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "== %s ==\n", r.path)
		}
		if opts.explain {
			printExplain(out, r.analysis)
			continue
		}
		fmt.Fprintln(out, r.analysis.Summary)
	}
	return nil
}

// expandInputs returns the explicit paths followed by every glob match,
// without duplicates.
func expandInputs(args, globs []string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	for _, arg := range args {
		add(arg)
	}
	for _, pattern := range globs {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid glob %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", pattern)
		}
		sort.Strings(matches)
		for _, m := range matches {
			add(m)
		}
	}
	return paths, nil
}

// summarizeFiles runs at most parallel files at once and keeps input order.
func summarizeFiles(ctx context.Context, s *summarize.Summarizer, paths []string, n, parallel int) ([]fileSummary, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	results := make([]fileSummary, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, parallel))
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			text, err := readDocument(path)
			if err != nil {
				return err
			}
			results[i] = fileSummary{path: path, analysis: s.Analyze(text, n)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// readDocument extracts the text of a local file. Files without an
// extension are read as plain text.
func readDocument(path string) (string, error) {
	p, err := parser.ForFile(path, parser.Options{})
	if err != nil {
		if !errors.Is(err, parser.ErrUnsupportedFormat) || filepath.Ext(path) != "" {
			return "", fmt.Errorf("%s: %w", path, err)
		}
		p = &parser.TextParser{}
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	tree, err := p.Parse(f, filepath.Base(path))
	if err != nil {
		return "", fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return strings.TrimSpace(tree.Text()), nil
}
