package jobs

import (
	"sync"
	"time"
)

// JobStatus represents the state of a summarization job.
type JobStatus string

const (
	StatusQueued      JobStatus = "queued"
	StatusFetching    JobStatus = "fetching"
	StatusSummarizing JobStatus = "summarizing"
	StatusCompleted   JobStatus = "completed"
	StatusFailed      JobStatus = "failed"
)

// Request describes one document to summarize.
type Request struct {
	URL       string `json:"pdf_url"`
	Sentences int    `json:"sentences"`
	MaxPages  int    `json:"max_pages"`
}

// Result is the output of a completed job.
type Result struct {
	Summary      string `json:"summary"`
	PageCount    int    `json:"page_count"`
	PagesRead    int    `json:"pages_read"`
	SkippedPages []int  `json:"skipped_pages"`
	Cached       bool   `json:"cached"`
}

// Job tracks the state of a single document summarization.
type Job struct {
	mu sync.Mutex

	ID      string
	Request Request

	Status JobStatus
	Phase  string
	Error  string
	Result *Result

	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewJob(req Request) *Job {
	now := time.Now()
	return &Job{
		ID:        NewID(),
		Request:   req,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// Fail marks the job failed during phase.
func (j *Job) Fail(phase string, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = StatusFailed
	j.Phase = phase
	j.Error = err.Error()
	j.UpdatedAt = time.Now()
}

func (j *Job) Complete(res Result) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = StatusCompleted
	j.Phase = "done"
	j.Result = &res
	j.UpdatedAt = time.Now()
}

// Done reports whether the job reached a terminal state.
func (j *Job) Done() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.Status == StatusCompleted || j.Status == StatusFailed
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string    `json:"job_id"`
	Status    JobStatus `json:"status"`
	Phase     string    `json:"phase"`
	Request   Request   `json:"request"`
	Error     string    `json:"error,omitempty"`
	Result    *Result   `json:"result,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	var res *Result
	if j.Result != nil {
		r := *j.Result
		if r.SkippedPages == nil {
			r.SkippedPages = []int{}
		}
		res = &r
	}
	return JobSnapshot{
		ID:        j.ID,
		Status:    j.Status,
		Phase:     j.Phase,
		Request:   j.Request,
		Error:     j.Error,
		Result:    res,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}

func (j *Job) updatedAt() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.UpdatedAt
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, id)
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes jobs not updated within the TTL and returns how many
// were dropped.
func (s *JobStore) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	removed := 0
	for id, job := range s.jobs {
		if now.Sub(job.updatedAt()) > s.ttl {
			delete(s.jobs, id)
			removed++
		}
	}
	return removed
}
