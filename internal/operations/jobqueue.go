package operations

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mpgamer75/code-altice/internal/config"
	apperrors "github.com/mpgamer75/code-altice/internal/errors"
	"github.com/mpgamer75/code-altice/internal/events"
	"github.com/mpgamer75/code-altice/internal/infrastructure"
)

// ErrQueueFull is returned by Enqueue when no more jobs can be queued
var ErrQueueFull = stderrors.New("job queue is full")

// JobStatus represents the status of a job
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// Terminal reports whether a job in this status will not change again
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed || s == JobStatusCancelled
}

// JobKind selects which batch entry point a job runs
type JobKind string

const (
	JobKindExtract  JobKind = "extract"
	JobKindFinalize JobKind = "finalize"
	JobKindRun      JobKind = "run"
)

// ParseJobKind validates a job kind
func ParseJobKind(s string) (JobKind, error) {
	switch k := JobKind(s); k {
	case JobKindExtract, JobKindFinalize, JobKindRun:
		return k, nil
	}
	return "", apperrors.NewValidationError(fmt.Sprintf("unknown phase: %q", s))
}

// Job is one queued batch phase
type Job struct {
	ID          string       `json:"id"`
	Kind        JobKind      `json:"kind"`
	Status      JobStatus    `json:"status"`
	Message     string       `json:"message,omitempty"`
	Error       string       `json:"error,omitempty"`
	TraceID     string       `json:"trace_id,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	StartedAt   *time.Time   `json:"started_at,omitempty"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
	Result      *BatchResult `json:"result,omitempty"`
}

func (j *Job) clone() *Job {
	c := *j
	if j.Result != nil {
		r := *j.Result
		c.Result = &r
	}
	return &c
}

// JobStore persists jobs
type JobStore interface {
	CreateJob(job *Job) error
	GetJob(id string) (*Job, error)
	UpdateJob(job *Job) error
	ListJobs(filter JobFilter) ([]*Job, error)
}

// JobFilter for querying jobs
type JobFilter struct {
	Status JobStatus
	Kind   JobKind
	Since  time.Time
	Limit  int
}

// JobQueue runs batch phases on a single background worker, so at most one
// batch touches the directories at a time.
type JobQueue struct {
	mu       sync.Mutex
	queue    chan string
	store    JobStore
	orch     *Orchestrator
	paths    *config.Paths
	emitter  events.Emitter
	logger   *slog.Logger
	cancels  map[string]context.CancelFunc
	shutdown chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewJobQueue creates a job queue holding up to capacity pending jobs
func NewJobQueue(orch *Orchestrator, paths *config.Paths, store JobStore, emitter events.Emitter, logger *slog.Logger, capacity int) *JobQueue {
	if capacity <= 0 {
		capacity = 16
	}
	if store == nil {
		store = NewMemoryJobStore()
	}
	if emitter == nil {
		emitter = events.Nop
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &JobQueue{
		queue:    make(chan string, capacity),
		store:    store,
		orch:     orch,
		paths:    paths,
		emitter:  emitter,
		logger:   logger.With(slog.String("component", "jobqueue")),
		cancels:  make(map[string]context.CancelFunc),
		shutdown: make(chan struct{}),
	}
}

// Start begins processing jobs on one worker goroutine
func (q *JobQueue) Start(ctx context.Context) {
	q.logger.Info("starting job queue")
	q.wg.Add(1)
	go q.worker(ctx)
}

// Run processes jobs until ctx is done, then waits for the running job
// to observe cancellation. It suits errgroup.Go.
func (q *JobQueue) Run(ctx context.Context) error {
	q.Start(ctx)
	<-ctx.Done()
	q.stop()
	q.wg.Wait()
	return nil
}

// Stop gracefully shuts down the job queue
func (q *JobQueue) Stop(timeout time.Duration) error {
	q.logger.Info("stopping job queue")
	q.stop()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.logger.Info("job queue stopped gracefully")
		return nil
	case <-time.After(timeout):
		q.logger.Warn("job queue stop timeout exceeded")
		return fmt.Errorf("timeout waiting for worker to finish")
	}
}

func (q *JobQueue) stop() {
	q.stopOnce.Do(func() {
		close(q.shutdown)
		q.mu.Lock()
		for _, cancel := range q.cancels {
			cancel()
		}
		q.mu.Unlock()
	})
}

// Enqueue creates a pending job of the given kind. The trace ID of ctx, if
// any, follows the job into its logs.
func (q *JobQueue) Enqueue(ctx context.Context, kind JobKind) (*Job, error) {
	job := &Job{
		ID:        uuid.New().String(),
		Kind:      kind,
		Status:    JobStatusPending,
		TraceID:   infrastructure.GetTraceID(ctx),
		CreatedAt: time.Now(),
	}
	if err := q.store.CreateJob(job); err != nil {
		return nil, fmt.Errorf("failed to save job: %w", err)
	}

	select {
	case q.queue <- job.ID:
		q.logger.Info("job enqueued", slog.String("job_id", job.ID), slog.String("kind", string(kind)))
		q.emit(ctx, job, events.LevelInfo, "job queued", nil)
		return job.clone(), nil
	default:
		job.Status = JobStatusFailed
		job.Error = ErrQueueFull.Error()
		now := time.Now()
		job.CompletedAt = &now
		_ = q.store.UpdateJob(job)
		return nil, ErrQueueFull
	}
}

// GetJob retrieves a job by ID
func (q *JobQueue) GetJob(id string) (*Job, error) {
	return q.store.GetJob(id)
}

// ListJobs returns jobs matching the filter
func (q *JobQueue) ListJobs(filter JobFilter) ([]*Job, error) {
	return q.store.ListJobs(filter)
}

// Cancel cancels a pending job, or asks a running one to stop before its
// next file.
func (q *JobQueue) Cancel(id string) (*Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	job, err := q.store.GetJob(id)
	if err != nil {
		return nil, err
	}

	switch job.Status {
	case JobStatusPending:
		job.Status = JobStatusCancelled
		now := time.Now()
		job.CompletedAt = &now
		job.Message = "cancelled before start"
		if err := q.store.UpdateJob(job); err != nil {
			return nil, err
		}
	case JobStatusRunning:
		if cancel, ok := q.cancels[id]; ok {
			cancel()
		}
		job.Message = "cancellation requested"
		if err := q.store.UpdateJob(job); err != nil {
			return nil, err
		}
	default:
		return nil, apperrors.NewValidationError(fmt.Sprintf("job %s cannot be cancelled (status: %s)", id, job.Status))
	}

	return job, nil
}

func (q *JobQueue) worker(ctx context.Context) {
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-q.shutdown:
			return
		case id := <-q.queue:
			q.processJob(ctx, id)
		}
	}
}

// begin moves a pending job to running and registers its cancel func
func (q *JobQueue) begin(ctx context.Context, id string) (*Job, context.Context, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	job, err := q.store.GetJob(id)
	if err != nil || job.Status != JobStatusPending {
		return nil, nil, false
	}

	if job.TraceID != "" {
		ctx = infrastructure.WithTraceID(ctx, job.TraceID)
	}
	jobCtx, cancel := context.WithCancel(ctx)
	q.cancels[id] = cancel

	now := time.Now()
	job.Status = JobStatusRunning
	job.StartedAt = &now
	job.Message = "job started"
	if err := q.store.UpdateJob(job); err != nil {
		q.logger.Error("failed to update job status", slog.String("error", err.Error()))
	}
	return job, jobCtx, true
}

func (q *JobQueue) processJob(ctx context.Context, id string) {
	job, jobCtx, ok := q.begin(ctx, id)
	if !ok {
		return
	}

	logger := q.logger.With(slog.String("job_id", job.ID), slog.String("kind", string(job.Kind)))
	logger.InfoContext(jobCtx, "processing job started")
	q.emit(jobCtx, job, events.LevelInfo, "job started", nil)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("job processing panicked", slog.Any("panic", r))
			q.finish(jobCtx, job, nil, fmt.Errorf("job processing panicked: %v", r))
		}
		q.mu.Lock()
		if cancel, ok := q.cancels[job.ID]; ok {
			cancel()
			delete(q.cancels, job.ID)
		}
		q.mu.Unlock()
	}()

	result, err := q.execute(jobCtx, job.Kind)
	q.finish(jobCtx, job, result, err)
	logger.InfoContext(jobCtx, "processing job finished")
}

func (q *JobQueue) finish(ctx context.Context, job *Job, result *BatchResult, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := time.Now()
	job.CompletedAt = &now
	job.Result = result

	switch {
	case err != nil:
		job.Status = JobStatusFailed
		job.Error = err.Error()
		job.Message = "job failed"
	case result != nil && result.Cancelled:
		job.Status = JobStatusCancelled
		job.Message = "job cancelled between files"
	default:
		job.Status = JobStatusCompleted
		job.Message = fmt.Sprintf("%d processed, %d failed", len(result.Processed), len(result.Failed))
	}

	if uerr := q.store.UpdateJob(job); uerr != nil {
		q.logger.Error("failed to update job completion", slog.String("error", uerr.Error()))
	}

	level := events.LevelInfo
	if job.Status != JobStatusCompleted {
		level = events.LevelWarning
	}
	q.emit(ctx, job, level, "job "+string(job.Status), err)
}

func (q *JobQueue) execute(ctx context.Context, kind JobKind) (*BatchResult, error) {
	if q.orch == nil || q.paths == nil {
		return nil, fmt.Errorf("job queue has no orchestrator")
	}

	start := time.Now()
	switch kind {
	case JobKindExtract:
		r := q.orch.ExtractPhase(ctx, q.paths.InputDir)
		return &BatchResult{Processed: r.Processed, Failed: r.Failed, Duration: time.Since(start), Cancelled: r.Cancelled}, nil
	case JobKindFinalize:
		r := q.orch.FinalizePhase(ctx, q.paths.TempDir, q.paths.OutputDir)
		return &BatchResult{Processed: r.Processed, Failed: r.Failed, Duration: time.Since(start), Cancelled: r.Cancelled}, nil
	case JobKindRun:
		r := q.orch.Run(ctx, q.paths.InputDir, q.paths.TempDir, q.paths.OutputDir)
		return &r, nil
	default:
		return nil, fmt.Errorf("unknown job kind: %s", kind)
	}
}

func (q *JobQueue) emit(ctx context.Context, job *Job, level events.Level, msg string, err error) {
	ev := events.Event{
		Level:   level,
		Phase:   string(job.Kind),
		Message: msg,
		JobID:   job.ID,
		Time:    time.Now(),
	}
	if err != nil {
		ev.Error = err.Error()
	}
	q.emitter.Emit(ctx, ev)
}
