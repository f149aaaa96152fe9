// Package arxiv searches the arXiv Atom API for papers.
package arxiv

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed/atom"

	"github.com/dgallion1/paperdigest/internal/retry"
	"github.com/dgallion1/paperdigest/internal/stats"
)

const (
	DefaultBaseURL    = "https://export.arxiv.org/api/query"
	DefaultTimeout    = 20 * time.Second
	DefaultMaxResults = 50

	publishedLayout = "2006-01-02T15:04:05Z"
	isoLayout       = "2006-01-02T15:04:05"
)

// Paper is one search hit.
type Paper struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Summary   string   `json:"summary"`
	Authors   []string `json:"authors"`
	Published string   `json:"published"`
	Link      string   `json:"link"`
	PDFURL    string   `json:"pdf_url"`
}

type Config struct {
	BaseURL    string
	UserAgent  string
	Timeout    time.Duration
	MaxResults int // upper clamp for a single search

	HTTPClient *http.Client
	Stats      *stats.Latency
	Logger     *slog.Logger
	RetryWait  func(attempt int) time.Duration
}

type Client struct {
	cfg    Config
	client *http.Client
	log    *slog.Logger
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		cfg:    cfg,
		client: cfg.HTTPClient,
		log:    cfg.Logger.With("component", "arxiv"),
	}
}

// Search returns up to maxResults papers, newest first. maxResults is
// clamped to [1, Config.MaxResults]. Plain queries are additionally
// filtered to titles that contain the query text.
func (c *Client) Search(ctx context.Context, query string, maxResults int) (papers []Paper, err error) {
	maxResults = max(1, min(maxResults, c.cfg.MaxResults))
	searchQuery := BuildSearchQuery(query)

	params := url.Values{}
	params.Set("search_query", searchQuery)
	params.Set("start", "0")
	params.Set("max_results", strconv.Itoa(maxResults))
	params.Set("sortBy", "submittedDate")
	params.Set("sortOrder", "descending")
	reqURL := c.cfg.BaseURL + "?" + params.Encode()

	if c.cfg.Stats != nil {
		start := time.Now()
		defer func() { c.cfg.Stats.Observe(start, err) }()
	}

	c.log.Debug("querying arxiv", "url", reqURL)

	var body []byte
	err = retry.Do(ctx, c.cfg.RetryWait, func(ctx context.Context) error {
		b, err := c.fetch(ctx, reqURL)
		if err != nil {
			if retry.IsRetryable(err) {
				c.log.Warn("arxiv request failed, retrying", "error", err)
			}
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("arxiv search: %w", err)
	}

	fp := atom.Parser{}
	feed, err := fp.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse arxiv feed: %w", err)
	}

	papers = make([]Paper, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		papers = append(papers, paperFromEntry(entry))
	}

	if strings.TrimSpace(query) != "" && !IsAdvanced(query) {
		papers = filterByTitle(papers, query)
	}

	c.log.Info("arxiv search complete",
		"query", searchQuery,
		"entries", len(feed.Entries),
		"results", len(papers),
	)
	return papers, nil
}

func (c *Client) fetch(ctx context.Context, reqURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if retry.IsRetryableStatus(resp.StatusCode) {
			return nil, &retry.RetryableError{StatusCode: resp.StatusCode, Message: string(body)}
		}
		return nil, fmt.Errorf("arxiv returned status %d", resp.StatusCode)
	}
	return body, nil
}

func paperFromEntry(e *atom.Entry) Paper {
	p := Paper{
		ID:        e.ID,
		Title:     strings.ReplaceAll(strings.TrimSpace(e.Title), "\n", " "),
		Summary:   strings.TrimSpace(e.Summary),
		Authors:   make([]string, 0, len(e.Authors)),
		Published: e.Published,
	}
	for _, a := range e.Authors {
		if a != nil && a.Name != "" {
			p.Authors = append(p.Authors, a.Name)
		}
	}
	for _, l := range e.Links {
		if l == nil {
			continue
		}
		if l.Rel == "alternate" {
			p.Link = l.Href
		}
		if l.Type == "application/pdf" {
			p.PDFURL = l.Href
		}
	}
	if p.Link == "" {
		p.Link = e.ID
	}
	if t, err := time.Parse(publishedLayout, e.Published); err == nil {
		p.Published = t.Format(isoLayout)
	}
	return p
}

func filterByTitle(papers []Paper, query string) []Paper {
	needle := normalize(query)
	kept := papers[:0]
	for _, p := range papers {
		if strings.Contains(normalize(p.Title), needle) {
			kept = append(kept, p)
		}
	}
	return kept
}
