package worker

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jonesrussell/north-cloud/price-tracker/internal/domain"
	"github.com/jonesrussell/north-cloud/price-tracker/internal/logger"
)

// WorkerState represents the current state of a worker.
type WorkerState int32

const (
	// WorkerStateIdle means the worker is waiting for work.
	WorkerStateIdle WorkerState = iota

	// WorkerStateBusy means the worker is processing a job.
	WorkerStateBusy

	// WorkerStateStopping means the worker is shutting down.
	WorkerStateStopping

	// WorkerStateStopped means the worker has stopped.
	WorkerStateStopped

	// stuckThresholdMultiplier is used to calculate stuck threshold from job timeout.
	stuckThresholdMultiplier = 2

	// percentageMultiplier converts ratio to percentage.
	percentageMultiplier = 100
)

// String returns the string representation of a worker state.
func (s WorkerState) String() string {
	switch s {
	case WorkerStateIdle:
		return "idle"
	case WorkerStateBusy:
		return "busy"
	case WorkerStateStopping:
		return "stopping"
	case WorkerStateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// JobHandler is a function that processes a scrape job.
type JobHandler func(ctx context.Context, job *domain.Job) error

// Worker represents an individual worker in the pool.
type Worker struct {
	id         int
	state      atomic.Int32
	handler    JobHandler
	jobTimeout time.Duration
	logger     logger.Interface

	// Stats
	jobsProcessed atomic.Int64
	jobsSucceeded atomic.Int64
	jobsFailed    atomic.Int64
	lastJobAt     atomic.Int64
	lastError     atomic.Value

	// Current job tracking
	currentJob   atomic.Value
	jobStartedAt atomic.Int64
}

// NewWorker creates a new worker.
func NewWorker(id int, handler JobHandler, jobTimeout time.Duration, log logger.Interface) *Worker {
	w := &Worker{
		id:         id,
		handler:    handler,
		jobTimeout: jobTimeout,
		logger:     log,
	}
	w.state.Store(int32(WorkerStateIdle))
	return w
}

// ID returns the worker ID.
func (w *Worker) ID() int {
	return w.id
}

// State returns the current worker state.
func (w *Worker) State() WorkerState {
	return WorkerState(w.state.Load())
}

// IsIdle returns true if the worker is idle.
func (w *Worker) IsIdle() bool {
	return w.State() == WorkerStateIdle
}

// IsBusy returns true if the worker is busy.
func (w *Worker) IsBusy() bool {
	return w.State() == WorkerStateBusy
}

// reserve atomically claims the worker, flipping it idle -> busy. The
// caller owns the worker on success and must follow up with run, which
// releases it.
func (w *Worker) reserve() bool {
	return w.state.CompareAndSwap(int32(WorkerStateIdle), int32(WorkerStateBusy))
}

// Process executes a single scrape job on an unreserved worker.
func (w *Worker) Process(ctx context.Context, job *domain.Job) error {
	if job == nil {
		return fmt.Errorf("worker %d: job cannot be nil", w.id)
	}

	if !w.reserve() {
		return fmt.Errorf("worker %d: not idle, current state: %s", w.id, w.State())
	}

	return w.run(ctx, job)
}

// run executes a job on a worker already reserved via reserve. It releases
// the worker back to idle when done.
func (w *Worker) run(ctx context.Context, job *domain.Job) error {
	// Track current job
	w.currentJob.Store(job)
	w.jobStartedAt.Store(time.Now().UnixNano())

	defer func() {
		w.currentJob.Store((*domain.Job)(nil))
		w.jobStartedAt.Store(0)
		w.state.Store(int32(WorkerStateIdle))
	}()

	// Create timeout context
	jobCtx, cancel := context.WithTimeout(ctx, w.jobTimeout)
	defer cancel()

	w.logger.Info("worker processing job",
		"worker_id", w.id,
		"job_id", job.ID,
		"platform", job.PlatformName,
	)

	startTime := time.Now()
	err := w.handler(jobCtx, job)
	duration := time.Since(startTime)

	// Update stats
	w.jobsProcessed.Add(1)
	w.lastJobAt.Store(time.Now().UnixNano())

	if err != nil {
		w.jobsFailed.Add(1)
		w.lastError.Store(err)
		w.logger.Error("worker job failed",
			"worker_id", w.id,
			"job_id", job.ID,
			"duration", duration.String(),
			"error", err.Error(),
		)
		return fmt.Errorf("worker %d: job %s failed: %w", w.id, job.ID, err)
	}

	w.jobsSucceeded.Add(1)
	w.logger.Info("worker job completed",
		"worker_id", w.id,
		"job_id", job.ID,
		"duration", duration.String(),
	)

	return nil
}

// Stop signals the worker to stop.
func (w *Worker) Stop() {
	w.state.Store(int32(WorkerStateStopping))
}

// Stats returns the worker's statistics.
func (w *Worker) Stats() WorkerStats {
	var lastErr error
	if v := w.lastError.Load(); v != nil {
		lastErr, _ = v.(error)
	}

	var currentJobID string
	if v := w.currentJob.Load(); v != nil {
		if job, ok := v.(*domain.Job); ok && job != nil {
			currentJobID = job.ID
		}
	}

	var lastJobTime time.Time
	if ts := w.lastJobAt.Load(); ts > 0 {
		lastJobTime = time.Unix(0, ts)
	}

	var jobStartTime time.Time
	if ts := w.jobStartedAt.Load(); ts > 0 {
		jobStartTime = time.Unix(0, ts)
	}

	return WorkerStats{
		ID:            w.id,
		State:         w.State(),
		JobsProcessed: w.jobsProcessed.Load(),
		JobsSucceeded: w.jobsSucceeded.Load(),
		JobsFailed:    w.jobsFailed.Load(),
		LastJobAt:     lastJobTime,
		LastError:     lastErr,
		CurrentJobID:  currentJobID,
		JobStartedAt:  jobStartTime,
		JobTimeout:    w.jobTimeout,
	}
}

// WorkerStats holds statistics for a worker.
type WorkerStats struct {
	ID            int
	State         WorkerState
	JobsProcessed int64
	JobsSucceeded int64
	JobsFailed    int64
	LastJobAt     time.Time
	LastError     error
	CurrentJobID  string
	JobStartedAt  time.Time
	JobTimeout    time.Duration
}

// SuccessRate returns the success rate as a percentage.
func (s WorkerStats) SuccessRate() float64 {
	if s.JobsProcessed == 0 {
		return 0
	}
	return float64(s.JobsSucceeded) / float64(s.JobsProcessed) * percentageMultiplier
}

// IsHealthy returns true if the worker is considered healthy.
func (s WorkerStats) IsHealthy() bool {
	if s.State == WorkerStateStopped {
		return false
	}
	// A worker busy for much longer than the job timeout is stuck.
	if s.State == WorkerStateBusy && !s.JobStartedAt.IsZero() && s.JobTimeout > 0 {
		stuckThreshold := stuckThresholdMultiplier * s.JobTimeout
		if time.Since(s.JobStartedAt) > stuckThreshold {
			return false
		}
	}
	return true
}
