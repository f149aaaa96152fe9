package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/paperdigest/internal/arxiv"
)

type searchOptions struct {
	query     string
	topK      int
	json      bool
	summarize int
}

type searchHit struct {
	arxiv.Paper
	AbstractSummary string `json:"abstract_summary,omitempty"`
}

func newSearchCmd(a *app) *cobra.Command {
	opts := &searchOptions{}
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search arXiv",
		Long: `Search arXiv and print matching papers, newest first. Plain queries match
titles; queries using field prefixes (ti:, au:, abs:, ...) or boolean
operators are passed through unchanged.

Examples:
  paperdigest search -q "attention is all you need"
  paperdigest search -q "au:hinton AND ti:capsule" -k 5 --json
  paperdigest search -q "diffusion models" --summarize 2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSearch(cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.query, "query", "q", "", "search query (required)")
	cmd.Flags().IntVarP(&opts.topK, "top-k", "k", 0, "number of results (default from config)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "output as JSON")
	cmd.Flags().IntVar(&opts.summarize, "summarize", 0, "summarize each abstract to N sentences")
	cmd.MarkFlagRequired("query")
	return cmd
}

func (a *app) runSearch(cmd *cobra.Command, opts *searchOptions) error {
	query := strings.TrimSpace(opts.query)
	if query == "" {
		return fmt.Errorf("query must not be empty")
	}
	topK := intFlag(cmd, "top-k", opts.topK, a.cfg.DefaultSearchResults)

	client := arxiv.NewClient(arxiv.Config{
		BaseURL:    a.cfg.ArxivAPIURL,
		UserAgent:  a.cfg.UserAgent,
		Timeout:    a.cfg.ArxivTimeout,
		MaxResults: a.cfg.SearchMaxResults,
		Logger:     a.log,
	})
	papers, err := client.Search(cmd.Context(), query, topK)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	hits := make([]searchHit, len(papers))
	if opts.summarize > 0 && len(papers) > 0 {
		s, err := a.summarizer()
		if err != nil {
			return err
		}
		for i, p := range papers {
			hits[i] = searchHit{Paper: p, AbstractSummary: s.Summarize(p.Summary, opts.summarize)}
		}
	} else {
		for i, p := range papers {
			hits[i] = searchHit{Paper: p}
		}
	}

	out := cmd.OutOrStdout()
	if opts.json {
		data, err := json.MarshalIndent(hits, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	if len(hits) == 0 {
		fmt.Fprintln(out, "No results found.")
		return nil
	}
	fmt.Fprintf(out, "Found %d results for: %s\n\n", len(hits), query)
	for i, h := range hits {
		fmt.Fprintf(out, "%d. %s\n", i+1, h.Title)
		if len(h.Authors) > 0 {
			fmt.Fprintf(out, "   %s\n", strings.Join(h.Authors, ", "))
		}
		fmt.Fprintf(out, "   %s  %s\n", h.Published, h.Link)
		if h.PDFURL != "" {
			fmt.Fprintf(out, "   PDF: %s\n", h.PDFURL)
		}
		if h.AbstractSummary != "" {
			fmt.Fprintf(out, "   %s\n", h.AbstractSummary)
		}
		fmt.Fprintln(out)
	}
	return nil
}
