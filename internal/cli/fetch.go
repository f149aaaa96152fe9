package cli

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/dgallion1/paperdigest/internal/docfetch"
	"github.com/dgallion1/paperdigest/internal/textcache"
)

type fetchOptions struct {
	pages      int
	n          int
	text       bool
	noProgress bool
}

func newFetchCmd(a *app) *cobra.Command {
	opts := &fetchOptions{}
	cmd := &cobra.Command{
		Use:   "fetch URL",
		Short: "Download a document and summarize it",
		Long: `Download a PDF, HTML, Markdown, DOCX or text document, extract the text of
its first pages and print a summary.

Examples:
  paperdigest fetch https://arxiv.org/pdf/1706.03762
  paperdigest fetch https://example.org/report.pdf --pages 0 -n 10
  paperdigest fetch https://example.org/post.html --text`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runFetch(cmd, args[0], opts)
		},
	}
	cmd.Flags().IntVar(&opts.pages, "pages", 0, "pages to read, 0 for all (default from config)")
	cmd.Flags().IntVarP(&opts.n, "sentences", "n", 0, "number of sentences (default from config)")
	cmd.Flags().BoolVar(&opts.text, "text", false, "print the extracted text instead of a summary")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "hide the download progress bar")
	return cmd
}

func (a *app) runFetch(cmd *cobra.Command, rawURL string, opts *fetchOptions) error {
	pages := intFlag(cmd, "pages", opts.pages, a.cfg.DefaultMaxPages)
	n := intFlag(cmd, "sentences", opts.n, a.cfg.DefaultURLSentences)

	fetchOpts := docfetch.Options{
		HTTPClient:        &http.Client{Timeout: a.cfg.FetchTimeout},
		UserAgent:         a.cfg.UserAgent,
		MaxDocumentBytes:  a.cfg.MaxDocumentBytes,
		FallbackPdftotext: a.cfg.PDFFallbackPdftotext,
		RespectRobots:     a.cfg.RespectRobots,
		Logger:            a.log,
	}
	if !opts.noProgress {
		fetchOpts.Progress = downloadBar(cmd.ErrOrStderr())
	}
	if a.cfg.CachePath != "" {
		cache, err := textcache.Open(a.cfg.CachePath, a.cfg.CacheTTL)
		if err != nil {
			return fmt.Errorf("failed to open cache: %w", err)
		}
		defer cache.Close()
		fetchOpts.Cache = cache
	}

	res, err := docfetch.New(fetchOpts).Extract(cmd.Context(), rawURL, pages)
	if err != nil {
		return err
	}
	if len(res.SkippedPages) > 0 {
		a.log.Warn("skipped unreadable pages", "pages", res.SkippedPages)
	}

	out := cmd.OutOrStdout()
	if opts.text {
		fmt.Fprintln(out, res.Text)
		return nil
	}
	if strings.TrimSpace(res.Text) == "" {
		return fmt.Errorf("could not extract text from %s", rawURL)
	}

	s, err := a.summarizer()
	if err != nil {
		return err
	}
	fmt.Fprintln(out, s.Summarize(res.Text, n))
	if res.PageCount > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "read %d of %d pages\n", res.PagesRead, res.PageCount)
	}
	return nil
}

// downloadBar renders download progress on w.
func downloadBar(w io.Writer) func(int64) io.Writer {
	return func(contentLength int64) io.Writer {
		return progressbar.NewOptions64(contentLength,
			progressbar.OptionSetWriter(w),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetDescription("[cyan]Downloading[reset]"),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprintln(w)
			}),
		)
	}
}
