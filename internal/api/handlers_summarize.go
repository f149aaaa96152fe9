package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dgallion1/paperdigest/internal/docfetch"
	"github.com/dgallion1/paperdigest/internal/jobs"
	"github.com/dgallion1/paperdigest/internal/parser"
	"github.com/dgallion1/paperdigest/internal/summarize"
)

type summarizeRequest struct {
	Text      string  `json:"text"`
	Sentences flexInt `json:"sentences"`
	Explain   bool    `json:"explain"`
}

type summarizeResponse struct {
	Summary   string                     `json:"summary"`
	Sentences []summarize.Sentence       `json:"sentences,omitempty"`
	Scores    []summarize.ScoredSentence `json:"scores,omitempty"`
	Selected  []int                      `json:"selected,omitempty"`
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		jsonError(w, "no text provided", http.StatusBadRequest)
		return
	}
	n := req.Sentences.Or(s.cfg.DefaultSummarySentences)

	start := time.Now()
	analysis := s.summarizer.Analyze(req.Text, n)
	s.stats.For("summarize").Observe(start, nil)

	resp := summarizeResponse{Summary: analysis.Summary}
	if req.Explain {
		resp.Sentences = analysis.Sentences
		resp.Scores = analysis.Scores
		resp.Selected = analysis.Selected
	}
	writeJSON(w, http.StatusOK, resp)
}

type summarizeURLRequest struct {
	URL       string  `json:"pdf_url"`
	Sentences flexInt `json:"sentences"`
	MaxPages  flexInt `json:"max_pages"`
}

// toJobRequest validates the body and applies defaults.
func (s *Server) toJobRequest(req summarizeURLRequest) (jobs.Request, bool) {
	u := strings.TrimSpace(req.URL)
	if u == "" {
		return jobs.Request{}, false
	}
	return jobs.Request{
		URL:       u,
		Sentences: req.Sentences.Or(s.cfg.DefaultURLSentences),
		MaxPages:  req.MaxPages.Or(s.cfg.DefaultMaxPages),
	}, true
}

func (s *Server) handleSummarizeURL(w http.ResponseWriter, r *http.Request) {
	var body summarizeURLRequest
	if err := decodeJSON(r, &body); err != nil {
		writeDecodeError(w, err)
		return
	}
	req, ok := s.toJobRequest(body)
	if !ok {
		jsonError(w, "no pdf_url provided", http.StatusBadRequest)
		return
	}
	if s.extractor == nil {
		jsonError(w, "document fetching unavailable", http.StatusServiceUnavailable)
		return
	}

	doc, err := s.extractor.Extract(r.Context(), req.URL, req.MaxPages)
	if err != nil {
		s.log.Error("extract failed", "url", req.URL, "error", err)
		jsonError(w, err.Error(), extractStatus(err))
		return
	}
	if strings.TrimSpace(doc.Text) == "" {
		jsonError(w, "could not extract text from document", http.StatusUnprocessableEntity)
		return
	}

	start := time.Now()
	summary := s.summarizer.Summarize(doc.Text, req.Sentences)
	s.stats.For("summarize").Observe(start, nil)

	skipped := doc.SkippedPages
	if skipped == nil {
		skipped = []int{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"summary":       summary,
		"page_count":    doc.PageCount,
		"pages_read":    doc.PagesRead,
		"skipped_pages": skipped,
		"cached":        doc.Cached,
	})
}

// extractStatus maps a document fetch error to an HTTP status.
func extractStatus(err error) int {
	switch {
	case errors.Is(err, docfetch.ErrInvalidURL), errors.Is(err, docfetch.ErrUnsupportedScheme):
		return http.StatusBadRequest
	case errors.Is(err, docfetch.ErrDisallowed):
		return http.StatusForbidden
	case errors.Is(err, docfetch.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, parser.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}
