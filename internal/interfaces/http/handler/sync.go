package handler

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/storesync/backend/internal/application/reconcile"
	"github.com/storesync/backend/internal/domain/catalog"
	syncdomain "github.com/storesync/backend/internal/domain/sync"
	"github.com/storesync/backend/internal/infrastructure/scheduler"
	"github.com/storesync/backend/internal/interfaces/http/dto"
)

// ReconcileService is the single-pair reconciliation entry point
type ReconcileService interface {
	Reconcile(ctx context.Context, req reconcile.Request) (*reconcile.Result, error)
}

// BatchSyncService runs multi-item reconciliation
type BatchSyncService interface {
	Run(ctx context.Context, itemCodes []string) *reconcile.BatchResult
	RunItem(ctx context.Context, itemCode string) error
	ForceResync(ctx context.Context, itemCode string) error
}

// JobQueue defers large batches to the background worker
type JobQueue interface {
	SubmitJob(job *scheduler.ItemSyncJob) error
	History() []*scheduler.ItemSyncJob
}

// SyncHandler handles reconciliation HTTP requests
type SyncHandler struct {
	BaseHandler
	reconciler ReconcileService
	batch      BatchSyncService
	servers    syncdomain.ServerRepository
	queue      JobQueue
	// deferThreshold is the batch size above which requests are queued
	// for the worker instead of running inline. Zero disables deferral.
	deferThreshold int
}

// NewSyncHandler creates a new sync handler. queue may be nil when no
// background worker is running; every batch then executes inline.
func NewSyncHandler(
	reconciler ReconcileService,
	batch BatchSyncService,
	servers syncdomain.ServerRepository,
	queue JobQueue,
	deferThreshold int,
) *SyncHandler {
	return &SyncHandler{
		reconciler:     reconciler,
		batch:          batch,
		servers:        servers,
		queue:          queue,
		deferThreshold: deferThreshold,
	}
}

// RegisterRoutes registers sync routes
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/sync")
	{
		group.POST("/reconcile", h.Reconcile)
		group.POST("/items", h.RunBatch)
		group.POST("/items/:code", h.RunItem)
		group.POST("/items/:code/resync", h.ForceResync)
		group.GET("/jobs", h.ListJobs)
	}
}

// ReconcileRequest starts one reconciliation from either side. Exactly one
// of item_code and record_id must be set; server_scope selects the target
// server for item-started runs.
type ReconcileRequest struct {
	ItemCode    string `json:"item_code"`
	RecordID    string `json:"record_id"`
	ServerScope string `json:"server_scope"`
}

// ReconcileResponse is the outcome of one reconciliation
type ReconcileResponse struct {
	ItemCode      string `json:"item_code"`
	RecordID      string `json:"record_id"`
	Outcome       string `json:"outcome"`
	Dirty         bool   `json:"dirty"`
	SkippedGroups int    `json:"skipped_groups"`
	Marker        string `json:"marker,omitempty"`
}

// Reconcile runs a single item/record reconciliation synchronously
func (h *SyncHandler) Reconcile(c *gin.Context) {
	var req ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidJSON, err.Error())
		return
	}

	engineReq := reconcile.Request{
		ItemCode:       req.ItemCode,
		RemoteRecordID: req.RecordID,
	}
	if req.ItemCode != "" {
		if req.ServerScope == "" {
			h.Error(c, 400, dto.ErrCodeValidationRequired,
				"server_scope is required when starting from an item code")
			return
		}
		server, err := h.servers.GetByScope(c.Request.Context(), req.ServerScope)
		if err != nil {
			h.syncError(c, err)
			return
		}
		engineReq.ServerID = server.ID
	}

	result, err := h.reconciler.Reconcile(c.Request.Context(), engineReq)
	if err != nil {
		h.syncError(c, err)
		return
	}

	h.Success(c, ReconcileResponse{
		ItemCode:      result.ItemCode,
		RecordID:      result.RecordID,
		Outcome:       string(result.Outcome),
		Dirty:         result.Dirty,
		SkippedGroups: result.SkippedGroups,
		Marker:        result.Marker,
	})
}

// BatchSyncRequest names the items to reconcile
type BatchSyncRequest struct {
	ItemCodes []string `json:"item_codes" binding:"required,min=1"`
	Force     bool     `json:"force"`
}

// DeferredJobResponse acknowledges a queued batch
type DeferredJobResponse struct {
	JobID    string `json:"job_id"`
	Deferred bool   `json:"deferred"`
	Items    int    `json:"items"`
}

// RunBatch reconciles a set of items. Batches above the defer threshold are
// queued for the background worker and acknowledged with 202.
func (h *SyncHandler) RunBatch(c *gin.Context) {
	var req BatchSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidJSON, err.Error())
		return
	}

	if h.queue != nil && h.deferThreshold > 0 && len(req.ItemCodes) > h.deferThreshold {
		job := scheduler.NewItemSyncJob(req.ItemCodes, req.Force)
		if err := h.queue.SubmitJob(job); err != nil {
			h.syncError(c, err)
			return
		}
		h.Accepted(c, DeferredJobResponse{
			JobID:    job.ID.String(),
			Deferred: true,
			Items:    len(req.ItemCodes),
		})
		return
	}

	if req.Force {
		result := &reconcile.BatchResult{}
		for _, code := range req.ItemCodes {
			if err := h.batch.ForceResync(c.Request.Context(), code); err != nil {
				result.Failed = append(result.Failed, reconcile.BatchFailure{
					ItemCode: code,
					Error:    err.Error(),
				})
				continue
			}
			result.Succeeded = append(result.Succeeded, code)
		}
		h.Success(c, result)
		return
	}

	h.Success(c, h.batch.Run(c.Request.Context(), req.ItemCodes))
}

// RunItem reconciles one item against all its target servers
func (h *SyncHandler) RunItem(c *gin.Context) {
	code := c.Param("code")
	if err := h.batch.RunItem(c.Request.Context(), code); err != nil {
		h.syncError(c, err)
		return
	}
	h.Success(c, gin.H{"item_code": code})
}

// ForceResync clears an item's sync markers and re-pushes it in full
func (h *SyncHandler) ForceResync(c *gin.Context) {
	code := c.Param("code")
	if err := h.batch.ForceResync(c.Request.Context(), code); err != nil {
		h.syncError(c, err)
		return
	}
	h.Success(c, gin.H{"item_code": code})
}

// JobResponse summarizes one background job
type JobResponse struct {
	JobID        string     `json:"job_id"`
	Status       string     `json:"status"`
	Force        bool       `json:"force"`
	ItemCount    int        `json:"item_count"`
	SuccessCount int        `json:"success_count"`
	FailedCount  int        `json:"failed_count"`
	FailedItems  []string   `json:"failed_items,omitempty"`
	SubmittedAt  time.Time  `json:"submitted_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// ListJobs returns the background worker's recent job history
func (h *SyncHandler) ListJobs(c *gin.Context) {
	if h.queue == nil {
		h.Success(c, []JobResponse{})
		return
	}

	history := h.queue.History()
	jobs := make([]JobResponse, 0, len(history))
	for _, job := range history {
		jobs = append(jobs, JobResponse{
			JobID:        job.ID.String(),
			Status:       string(job.Status),
			Force:        job.Force,
			ItemCount:    len(job.ItemCodes),
			SuccessCount: job.SuccessCount,
			FailedCount:  job.FailedCount,
			FailedItems:  job.FailedItems,
			SubmittedAt:  job.SubmittedAt,
			CompletedAt:  job.CompletedAt,
		})
	}
	h.Success(c, jobs)
}

// syncError maps domain errors to API error responses
func (h *SyncHandler) syncError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, catalog.ErrItemNotFound),
		errors.Is(err, syncdomain.ErrServerNotFound),
		errors.Is(err, syncdomain.ErrLinkNotFound):
		h.ErrorWithCode(c, dto.ErrCodeNotFound, err.Error())
	case errors.Is(err, syncdomain.ErrInvalidInput),
		errors.Is(err, syncdomain.ErrInvalidRecordID),
		errors.Is(err, catalog.ErrItemInvalidCode):
		h.ErrorWithCode(c, dto.ErrCodeInvalidInput, err.Error())
	case errors.Is(err, syncdomain.ErrSyncDisabled):
		h.ErrorWithCode(c, dto.ErrCodeSyncDisabled, err.Error())
	case errors.Is(err, reconcile.ErrSyncInProgress):
		h.ErrorWithCode(c, dto.ErrCodeSyncInProgress, err.Error())
	case errors.Is(err, scheduler.ErrJobQueueFull),
		errors.Is(err, scheduler.ErrSchedulerNotRunning):
		h.ErrorWithCode(c, dto.ErrCodeSyncQueueFull, err.Error())
	case errors.Is(err, syncdomain.ErrRemoteUnavailable):
		h.ErrorWithCode(c, dto.ErrCodeRemoteUnavailable, err.Error())
	case errors.Is(err, syncdomain.ErrRemoteRequestFailed),
		errors.Is(err, syncdomain.ErrRemoteInvalidResponse):
		h.ErrorWithCode(c, dto.ErrCodeRemoteRequestFailed, err.Error())
	default:
		h.InternalError(c, err.Error())
	}
}
