package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/dgallion1/paperdigest/internal/arxiv"
)

type searchResult struct {
	arxiv.Paper
	AbstractSummary string `json:"abstract_summary,omitempty"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		jsonError(w, "missing ?query= parameter", http.StatusBadRequest)
		return
	}
	maxResults, err := queryInt(r, "max_results", s.cfg.DefaultSearchResults)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	summarizeN, err := queryInt(r, "summarize", 0)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if s.search == nil {
		jsonError(w, "search unavailable", http.StatusServiceUnavailable)
		return
	}

	papers, err := s.search.Search(r.Context(), query, maxResults)
	if err != nil {
		s.log.Error("search failed", "query", query, "error", err)
		jsonError(w, err.Error(), http.StatusBadGateway)
		return
	}

	results := make([]searchResult, len(papers))
	for i, p := range papers {
		results[i] = searchResult{Paper: p}
		if summarizeN > 0 {
			start := time.Now()
			results[i].AbstractSummary = s.summarizer.Summarize(p.Summary, summarizeN)
			s.stats.For("summarize").Observe(start, nil)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"query":   query,
		"count":   len(results),
		"results": results,
	})
}
