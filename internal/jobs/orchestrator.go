package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/paperdigest/internal/docfetch"
	"github.com/dgallion1/paperdigest/internal/stats"
)

var (
	ErrQueueFull = errors.New("job queue is full")
	ErrStopped   = errors.New("job orchestrator stopped")
)

// TextExtractor downloads a document and returns its text.
type TextExtractor interface {
	Extract(ctx context.Context, url string, maxPages int) (*docfetch.Result, error)
}

// Summarizer condenses text to at most maxSentences sentences.
type Summarizer interface {
	Summarize(text string, maxSentences int) string
}

type Config struct {
	WorkerCount     int
	MaxQueueSize    int
	JobTTL          time.Duration
	CleanupInterval time.Duration
	JobTimeout      time.Duration
}

// Orchestrator runs summarization jobs on a fixed worker pool fed by a
// bounded queue.
type Orchestrator struct {
	jobs       *JobStore
	queue      chan *Job
	extractor  TextExtractor
	summarizer Summarizer
	latency    *stats.Latency
	log        *slog.Logger
	cfg        Config

	mu      sync.RWMutex
	stopped bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Call Start to launch workers.
func NewOrchestrator(cfg Config, extractor TextExtractor, summarizer Summarizer, latency *stats.Latency, log *slog.Logger) *Orchestrator {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 1
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 1
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = time.Hour
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}
	return &Orchestrator{
		jobs:       NewJobStore(cfg.JobTTL),
		queue:      make(chan *Job, cfg.MaxQueueSize),
		extractor:  extractor,
		summarizer: summarizer,
		latency:    latency,
		log:        log.With("component", "jobs"),
		cfg:        cfg,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for i := 0; i < o.cfg.WorkerCount; i++ {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := &worker{
				extractor:  o.extractor,
				summarizer: o.summarizer,
				latency:    o.latency,
				log:        o.log,
				timeout:    o.cfg.JobTimeout,
			}
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(o.cfg.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				if n := o.jobs.Cleanup(); n > 0 {
					o.log.Debug("expired jobs removed", "count", n)
				}
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline. Jobs still queued are dropped.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.stopped = true
	close(o.queue)
	o.mu.Unlock()

	if o.cancel != nil {
		o.cancel()
	}
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(req Request) (*Job, error) {
	job := NewJob(req)

	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.stopped {
		return nil, ErrStopped
	}

	// Stored before it is queued so a worker never sees an unregistered job.
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		o.log.Info("job queued", "job_id", job.ID, "url", req.URL, "queue_depth", len(o.queue))
		return job, nil
	default:
		o.jobs.Delete(job.ID)
		return nil, fmt.Errorf("%w (%d)", ErrQueueFull, o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID, or nil.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}
