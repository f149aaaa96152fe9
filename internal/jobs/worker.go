package jobs

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/dgallion1/paperdigest/internal/stats"
)

// ErrNoText means the document yielded no extractable text.
var ErrNoText = errors.New("no extractable text found")

type worker struct {
	extractor  TextExtractor
	summarizer Summarizer
	latency    *stats.Latency
	log        *slog.Logger
	timeout    time.Duration
}

// process fetches the document, then summarizes it.
func (w *worker) process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "url", job.Request.URL)
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	job.SetStatus(StatusFetching, "fetching")
	doc, err := w.extractor.Extract(ctx, job.Request.URL, job.Request.MaxPages)
	if err != nil {
		log.Error("extract failed", "error", err)
		job.Fail("fetching", err)
		return
	}
	if strings.TrimSpace(doc.Text) == "" {
		log.Warn("document has no text", "pages_read", doc.PagesRead)
		job.Fail("fetching", ErrNoText)
		return
	}

	job.SetStatus(StatusSummarizing, "summarizing")
	start := time.Now()
	summary := w.summarizer.Summarize(doc.Text, job.Request.Sentences)
	if w.latency != nil {
		w.latency.Observe(start, nil)
	}

	job.Complete(Result{
		Summary:      summary,
		PageCount:    doc.PageCount,
		PagesRead:    doc.PagesRead,
		SkippedPages: doc.SkippedPages,
		Cached:       doc.Cached,
	})
	log.Info("job completed", "pages_read", doc.PagesRead, "cached", doc.Cached, "chars", len(doc.Text))
}
