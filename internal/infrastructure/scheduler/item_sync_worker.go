package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storesync/backend/internal/application/reconcile"
)

// ---------------------------------------------------------------------------
// Item Sync Job Types
// ---------------------------------------------------------------------------

// ItemSyncJobStatus represents the status of an item sync job
type ItemSyncJobStatus string

const (
	ItemSyncJobStatusPending ItemSyncJobStatus = "PENDING"
	ItemSyncJobStatusRunning ItemSyncJobStatus = "RUNNING"
	ItemSyncJobStatusSuccess ItemSyncJobStatus = "SUCCESS"
	ItemSyncJobStatusPartial ItemSyncJobStatus = "PARTIAL"
	ItemSyncJobStatusFailed  ItemSyncJobStatus = "FAILED"
)

// ItemSyncJob represents a deferred batch of items to reconcile
type ItemSyncJob struct {
	ID          uuid.UUID
	ItemCodes   []string
	Force       bool
	Status      ItemSyncJobStatus
	Error       string
	SubmittedAt time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time

	// Sync results
	SuccessCount int
	FailedCount  int
	FailedItems  []string
}

// NewItemSyncJob creates a new item sync job
func NewItemSyncJob(itemCodes []string, force bool) *ItemSyncJob {
	return &ItemSyncJob{
		ID:          uuid.New(),
		ItemCodes:   itemCodes,
		Force:       force,
		Status:      ItemSyncJobStatusPending,
		SubmittedAt: time.Now(),
	}
}

// Start marks the job as running
func (j *ItemSyncJob) Start() {
	now := time.Now()
	j.Status = ItemSyncJobStatusRunning
	j.StartedAt = &now
	j.Error = ""
}

// Complete records the batch result and derives the final status
func (j *ItemSyncJob) Complete(result *reconcile.BatchResult) {
	now := time.Now()
	j.CompletedAt = &now
	j.SuccessCount = len(result.Succeeded)
	j.FailedCount = len(result.Failed)
	j.FailedItems = j.FailedItems[:0]
	for _, f := range result.Failed {
		j.FailedItems = append(j.FailedItems, f.ItemCode)
	}

	if j.FailedCount == 0 {
		j.Status = ItemSyncJobStatusSuccess
	} else if j.SuccessCount > 0 {
		j.Status = ItemSyncJobStatusPartial
	} else {
		j.Status = ItemSyncJobStatusFailed
	}
}

// Fail marks the job as failed before any item was attempted
func (j *ItemSyncJob) Fail(err string) {
	now := time.Now()
	j.Status = ItemSyncJobStatusFailed
	j.CompletedAt = &now
	j.Error = err
}

// ---------------------------------------------------------------------------
// ItemSyncWorkerConfig
// ---------------------------------------------------------------------------

// ItemSyncWorkerConfig holds configuration for the background sync worker
type ItemSyncWorkerConfig struct {
	// Workers is the number of concurrent job processors
	Workers int
	// QueueSize caps the number of queued jobs
	QueueSize int
	// JobTimeout is the maximum time one job can run
	JobTimeout time.Duration
	// PollInterval is the pause between incremental catalog scans.
	// Zero disables polling; only submitted jobs are processed.
	PollInterval time.Duration
	// PollBatchLimit caps the items picked up per incremental scan
	PollBatchLimit int
}

// DefaultItemSyncWorkerConfig returns default configuration
func DefaultItemSyncWorkerConfig() ItemSyncWorkerConfig {
	return ItemSyncWorkerConfig{
		Workers:        2,
		QueueSize:      100,
		JobTimeout:     15 * time.Minute,
		PollInterval:   5 * time.Minute,
		PollBatchLimit: 100,
	}
}

// Validate validates the configuration
func (c *ItemSyncWorkerConfig) Validate() error {
	if c.Workers <= 0 {
		return ErrInvalidConfig
	}
	if c.QueueSize <= 0 {
		return ErrInvalidConfig
	}
	if c.JobTimeout <= 0 {
		return ErrInvalidConfig
	}
	if c.PollInterval < 0 {
		return ErrInvalidConfig
	}
	return nil
}

// ---------------------------------------------------------------------------
// ItemSyncWorker
// ---------------------------------------------------------------------------

// BatchRunner is the slice of the batch service the worker drives
type BatchRunner interface {
	Run(ctx context.Context, itemCodes []string) *reconcile.BatchResult
	ForceResync(ctx context.Context, itemCode string) error
	SyncModifiedSince(ctx context.Context, since time.Time, limit int) (*reconcile.BatchResult, time.Time, error)
}

// ItemSyncWorker runs deferred sync jobs and the incremental modified-items
// scan in the background. Large HTTP-triggered batches are submitted here
// instead of running inline.
type ItemSyncWorker struct {
	config ItemSyncWorkerConfig
	batch  BatchRunner
	logger *zap.Logger

	jobs      chan *ItemSyncJob
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	// Watermark for the incremental scan, advanced after each pass
	watermarkMu sync.Mutex
	watermark   time.Time

	// Job history for monitoring (in-memory, limited size)
	historyMu  sync.RWMutex
	history    []*ItemSyncJob
	maxHistory int
}

// NewItemSyncWorker creates a new background sync worker
func NewItemSyncWorker(config ItemSyncWorkerConfig, batch BatchRunner, logger *zap.Logger) (*ItemSyncWorker, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ItemSyncWorker{
		config:     config,
		batch:      batch,
		logger:     logger,
		jobs:       make(chan *ItemSyncJob, config.QueueSize),
		history:    make([]*ItemSyncJob, 0, 100),
		maxHistory: 100,
	}, nil
}

// Start starts the worker pool and, when polling is configured, the
// incremental scan loop.
func (w *ItemSyncWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.isRunning {
		w.mu.Unlock()
		return nil
	}
	w.isRunning = true
	w.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	for i := 0; i < w.config.Workers; i++ {
		w.wg.Add(1)
		go w.worker(ctx, i)
	}

	if w.config.PollInterval > 0 {
		w.wg.Add(1)
		go w.pollLoop(ctx)
	}

	w.logger.Info("Item sync worker started",
		zap.Int("workers", w.config.Workers),
		zap.Duration("poll_interval", w.config.PollInterval),
	)
	return nil
}

// Stop gracefully stops the worker
func (w *ItemSyncWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return nil
	}
	w.isRunning = false
	w.mu.Unlock()

	if w.cancel != nil {
		w.cancel()
	}
	close(w.jobs)

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("Item sync worker stopped gracefully")
		return nil
	case <-ctx.Done():
		w.logger.Warn("Item sync worker stop timed out")
		return ctx.Err()
	}
}

// SubmitJob queues a job for execution
func (w *ItemSyncWorker) SubmitJob(job *ItemSyncJob) error {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	w.mu.Unlock()

	select {
	case w.jobs <- job:
		w.logger.Debug("Item sync job submitted",
			zap.String("job_id", job.ID.String()),
			zap.Int("item_count", len(job.ItemCodes)),
			zap.Bool("force", job.Force),
		)
		return nil
	default:
		return ErrJobQueueFull
	}
}

// History returns a snapshot of completed jobs, newest last
func (w *ItemSyncWorker) History() []*ItemSyncJob {
	w.historyMu.RLock()
	defer w.historyMu.RUnlock()

	snapshot := make([]*ItemSyncJob, len(w.history))
	copy(snapshot, w.history)
	return snapshot
}

// worker processes jobs from the queue
func (w *ItemSyncWorker) worker(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("Item sync worker stopping", zap.Int("worker_id", workerID))
			return
		case job, ok := <-w.jobs:
			if !ok {
				return
			}
			w.processJob(ctx, job, workerID)
		}
	}
}

// processJob executes a single job
func (w *ItemSyncWorker) processJob(ctx context.Context, job *ItemSyncJob, workerID int) {
	job.Start()
	w.logger.Info("Processing item sync job",
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.Int("item_count", len(job.ItemCodes)),
		zap.Bool("force", job.Force),
	)

	jobCtx, cancel := context.WithTimeout(ctx, w.config.JobTimeout)
	defer cancel()

	result := w.runJob(jobCtx, job)
	job.Complete(result)

	w.logger.Info("Item sync job completed",
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("status", string(job.Status)),
		zap.Int("success_count", job.SuccessCount),
		zap.Int("failed_count", job.FailedCount),
	)
	w.addToHistory(job)
}

// runJob reconciles the job's items; forced jobs clear markers first
func (w *ItemSyncWorker) runJob(ctx context.Context, job *ItemSyncJob) *reconcile.BatchResult {
	if !job.Force {
		return w.batch.Run(ctx, job.ItemCodes)
	}

	result := &reconcile.BatchResult{}
	for _, code := range job.ItemCodes {
		if err := w.batch.ForceResync(ctx, code); err != nil {
			result.Failed = append(result.Failed, reconcile.BatchFailure{
				ItemCode: code,
				Error:    err.Error(),
			})
			continue
		}
		result.Succeeded = append(result.Succeeded, code)
	}
	return result
}

// pollLoop runs the incremental modified-items scan
func (w *ItemSyncWorker) pollLoop(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.runIncrementalPass(ctx)
		}
	}
}

// runIncrementalPass reconciles items modified since the watermark
func (w *ItemSyncWorker) runIncrementalPass(ctx context.Context) {
	w.watermarkMu.Lock()
	since := w.watermark
	w.watermarkMu.Unlock()

	passCtx, cancel := context.WithTimeout(ctx, w.config.JobTimeout)
	defer cancel()

	result, next, err := w.batch.SyncModifiedSince(passCtx, since, w.config.PollBatchLimit)
	if err != nil {
		w.logger.Error("Incremental sync pass failed", zap.Error(err))
		return
	}

	w.watermarkMu.Lock()
	w.watermark = next
	w.watermarkMu.Unlock()

	if len(result.Succeeded) > 0 || len(result.Failed) > 0 {
		w.logger.Info("Incremental sync pass finished",
			zap.Time("watermark", next),
			zap.Int("succeeded", len(result.Succeeded)),
			zap.Int("failed", len(result.Failed)),
		)
	}
}

// addToHistory adds a completed job to history
func (w *ItemSyncWorker) addToHistory(job *ItemSyncJob) {
	w.historyMu.Lock()
	defer w.historyMu.Unlock()

	w.history = append(w.history, job)
	if len(w.history) > w.maxHistory {
		w.history = w.history[len(w.history)-w.maxHistory:]
	}
}
