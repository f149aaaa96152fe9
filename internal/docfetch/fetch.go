// Package docfetch downloads a document by URL and extracts its plain text.
package docfetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dgallion1/paperdigest/internal/parser"
	"github.com/dgallion1/paperdigest/internal/retry"
	"github.com/dgallion1/paperdigest/internal/stats"
	"github.com/dgallion1/paperdigest/internal/textcache"
)

var (
	ErrInvalidURL        = errors.New("invalid document url")
	ErrUnsupportedScheme = errors.New("only http and https urls are supported")
	ErrTooLarge          = errors.New("document exceeds size limit")
	ErrDisallowed        = errors.New("fetch disallowed by robots.txt")
)

const (
	DefaultUserAgent        = "paperdigest/1.0 (+https://github.com/dgallion1/paperdigest)"
	DefaultMaxDocumentBytes = 50 << 20
	sniffLen                = 512
)

// HTTPError is a non-retryable upstream status.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
}

// Cache stores extracted text between calls.
type Cache interface {
	Get(url string, maxPages int) (textcache.Entry, bool, error)
	Put(url string, maxPages int, entry textcache.Entry) error
}

// Result is the extracted text of one document.
type Result struct {
	Text         string `json:"text"`
	ContentType  string `json:"content_type"`
	PageCount    int    `json:"page_count"`
	PagesRead    int    `json:"pages_read"`
	SkippedPages []int  `json:"skipped_pages"`
	Cached       bool   `json:"cached"`
}

type Options struct {
	HTTPClient        *http.Client
	UserAgent         string
	MaxDocumentBytes  int64
	PagePolicy        parser.PageFailurePolicy
	FallbackPdftotext bool
	RespectRobots     bool
	Cache             Cache
	Stats             *stats.Latency
	Logger            *slog.Logger

	// Progress, when set, is called once per download with the advertised
	// content length (-1 if unknown). The body is copied through the
	// returned writer.
	Progress func(contentLength int64) io.Writer

	// RetryWait overrides the backoff between attempts.
	RetryWait func(attempt int) time.Duration
}

type Extractor struct {
	opts   Options
	client *http.Client
	robots *robotsCache
	log    *slog.Logger
}

func New(opts Options) *Extractor {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.MaxDocumentBytes <= 0 {
		opts.MaxDocumentBytes = DefaultMaxDocumentBytes
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	e := &Extractor{
		opts:   opts,
		client: opts.HTTPClient,
		log:    opts.Logger.With("component", "docfetch"),
	}
	if opts.RespectRobots {
		e.robots = newRobotsCache(opts.HTTPClient, opts.UserAgent)
	}
	return e
}

// Extract downloads rawURL and returns the text of at most maxPages pages.
// maxPages <= 0 reads every page.
func (e *Extractor) Extract(ctx context.Context, rawURL string, maxPages int) (res *Result, err error) {
	rawURL = strings.TrimSpace(rawURL)
	u, err := validateURL(rawURL)
	if err != nil {
		return nil, err
	}
	if maxPages < 0 {
		maxPages = 0
	}

	if e.opts.Cache != nil {
		entry, ok, cerr := e.opts.Cache.Get(rawURL, maxPages)
		if cerr != nil {
			e.log.Warn("cache read failed", "url", rawURL, "error", cerr)
		} else if ok {
			e.log.Debug("cache hit", "url", rawURL, "max_pages", maxPages)
			return &Result{
				Text:         entry.Text,
				ContentType:  entry.ContentType,
				PageCount:    entry.PageCount,
				PagesRead:    entry.PagesRead,
				SkippedPages: entry.SkippedPages,
				Cached:       true,
			}, nil
		}
	}

	if e.robots != nil {
		allowed, rerr := e.robots.Allowed(ctx, u)
		if rerr != nil {
			return nil, fmt.Errorf("check robots.txt: %w", rerr)
		}
		if !allowed {
			return nil, fmt.Errorf("%w: %s", ErrDisallowed, rawURL)
		}
	}

	if e.opts.Stats != nil {
		start := time.Now()
		defer func() { e.opts.Stats.Observe(start, err) }()
	}

	body, contentType, err := e.download(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	p, err := parser.Detect(contentType, rawURL, body[:min(len(body), sniffLen)], parser.Options{
		MaxPages:          maxPages,
		PagePolicy:        e.opts.PagePolicy,
		FallbackPdftotext: e.opts.FallbackPdftotext,
	})
	if err != nil {
		return nil, err
	}
	tree, err := p.Parse(bytes.NewReader(body), rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", rawURL, err)
	}

	res = &Result{
		Text:         tree.Text(),
		ContentType:  contentType,
		PageCount:    tree.PageCount,
		PagesRead:    tree.PagesRead,
		SkippedPages: tree.SkippedPages,
	}
	if len(res.SkippedPages) > 0 {
		e.log.Warn("skipped undecodable pages", "url", rawURL, "pages", res.SkippedPages)
	}
	e.log.Info("document extracted",
		"url", rawURL,
		"bytes", len(body),
		"content_type", contentType,
		"page_count", res.PageCount,
		"pages_read", res.PagesRead,
		"chars", len(res.Text),
	)

	// Blank extractions are not cached; a later fetch may do better.
	if e.opts.Cache != nil && strings.TrimSpace(res.Text) != "" {
		err := e.opts.Cache.Put(rawURL, maxPages, textcache.Entry{
			Text:         res.Text,
			ContentType:  res.ContentType,
			PageCount:    res.PageCount,
			PagesRead:    res.PagesRead,
			SkippedPages: res.SkippedPages,
		})
		if err != nil {
			e.log.Warn("cache write failed", "url", rawURL, "error", err)
		}
	}
	return res, nil
}

func (e *Extractor) download(ctx context.Context, rawURL string) (body []byte, contentType string, err error) {
	err = retry.Do(ctx, e.opts.RetryWait, func(ctx context.Context) error {
		b, ct, err := e.get(ctx, rawURL)
		if err != nil {
			if retry.IsRetryable(err) {
				e.log.Warn("download failed, retrying", "url", rawURL, "error", err)
			}
			return err
		}
		body, contentType = b, ct
		return nil
	})
	return body, contentType, err
}

func (e *Extractor) get(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", e.opts.UserAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		return nil, "", &retry.RetryableError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		if retry.IsRetryableStatus(resp.StatusCode) {
			return nil, "", &retry.RetryableError{StatusCode: resp.StatusCode, Message: string(msg)}
		}
		return nil, "", &HTTPError{StatusCode: resp.StatusCode, URL: rawURL}
	}

	limit := e.opts.MaxDocumentBytes
	if resp.ContentLength > limit {
		return nil, "", fmt.Errorf("%w: %d bytes advertised, limit %d", ErrTooLarge, resp.ContentLength, limit)
	}

	var src io.Reader = io.LimitReader(resp.Body, limit+1)
	if e.opts.Progress != nil {
		if w := e.opts.Progress(resp.ContentLength); w != nil {
			src = io.TeeReader(src, w)
		}
	}
	body, err := io.ReadAll(src)
	if err != nil {
		return nil, "", fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, "", fmt.Errorf("%w: limit %d bytes", ErrTooLarge, limit)
	}
	return body, resp.Header.Get("Content-Type"), nil
}

func validateURL(rawURL string) (*url.URL, error) {
	if rawURL == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidURL)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return u, nil
}
