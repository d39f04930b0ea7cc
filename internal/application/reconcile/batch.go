package reconcile

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storesync/backend/internal/domain/catalog"
	"github.com/storesync/backend/internal/domain/sync"
)

// BatchFailure records one item that failed within a batch
type BatchFailure struct {
	ItemCode string `json:"item_code"`
	Error    string `json:"error"`
}

// BatchResult summarizes a batch run
type BatchResult struct {
	Succeeded []string       `json:"succeeded"`
	Failed    []BatchFailure `json:"failed"`
}

// BatchService reconciles sets of items sequentially. A single item's
// failure is recorded in the result and never aborts the batch.
type BatchService struct {
	reconciler *Reconciler
	items      catalog.ItemRepository
	servers    sync.ServerRepository
	links      sync.LinkRepository
	gate       Gate
	gateTTL    time.Duration
	logger     *zap.Logger
}

// NewBatchService creates a BatchService
func NewBatchService(
	reconciler *Reconciler,
	items catalog.ItemRepository,
	servers sync.ServerRepository,
	links sync.LinkRepository,
	logger *zap.Logger,
) *BatchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchService{
		reconciler: reconciler,
		items:      items,
		servers:    servers,
		links:      links,
		logger:     logger,
	}
}

// WithGate installs a per-item gate. Without one, concurrent runs of the
// same item are only prevented within a single batch.
func (s *BatchService) WithGate(gate Gate, ttl time.Duration) *BatchService {
	s.gate = gate
	s.gateTTL = ttl
	return s
}

// Run reconciles the given item codes in order against their target servers
func (s *BatchService) Run(ctx context.Context, itemCodes []string) *BatchResult {
	result := &BatchResult{}
	for _, code := range itemCodes {
		if err := s.RunItem(ctx, code); err != nil {
			s.logger.Warn("item reconciliation failed",
				zap.String("item_code", code), zap.Error(err))
			result.Failed = append(result.Failed, BatchFailure{
				ItemCode: code,
				Error:    err.Error(),
			})
			continue
		}
		result.Succeeded = append(result.Succeeded, code)
	}
	return result
}

// RunItem reconciles one item against each of its target servers. The first
// per-server error is returned after every server has been attempted.
func (s *BatchService) RunItem(ctx context.Context, itemCode string) error {
	if s.gate != nil {
		acquired, err := s.gate.Acquire(ctx, "item:"+itemCode, s.gateTTL)
		if err != nil {
			return err
		}
		if !acquired {
			return ErrSyncInProgress
		}
		defer func() {
			if err := s.gate.Release(ctx, "item:"+itemCode); err != nil {
				s.logger.Warn("gate release failed",
					zap.String("item_code", itemCode), zap.Error(err))
			}
		}()
	}

	targets, err := s.targetServers(ctx, itemCode)
	if err != nil {
		return err
	}
	var firstErr error
	for _, serverID := range targets {
		_, err := s.reconciler.Reconcile(ctx, Request{ItemCode: itemCode, ServerID: serverID})
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// targetServers returns the servers an item syncs to: the servers of its
// enabled links when any exist, otherwise every sync-enabled server.
func (s *BatchService) targetServers(ctx context.Context, itemCode string) ([]uuid.UUID, error) {
	links, err := s.links.ListByItem(ctx, itemCode)
	if err != nil {
		return nil, err
	}
	var targets []uuid.UUID
	for _, link := range links {
		if link.Enabled {
			targets = append(targets, link.ServerID)
		}
	}
	if len(targets) > 0 {
		return targets, nil
	}

	servers, err := s.servers.List(ctx, true)
	if err != nil {
		return nil, err
	}
	for _, server := range servers {
		targets = append(targets, server.ID)
	}
	return targets, nil
}

// SyncModifiedSince reconciles every item modified after the watermark and
// returns the batch result together with the new watermark for the next
// polling cycle.
func (s *BatchService) SyncModifiedSince(ctx context.Context, since time.Time, limit int) (*BatchResult, time.Time, error) {
	modified, err := s.items.List(ctx, catalog.ItemFilter{ModifiedSince: &since, Limit: limit})
	if err != nil {
		return nil, since, err
	}

	next := since
	codes := make([]string, 0, len(modified))
	for _, item := range modified {
		codes = append(codes, item.Code)
		if item.Modified.After(next) {
			next = item.Modified
		}
	}
	return s.Run(ctx, codes), next, nil
}

// ForceResync clears the sync markers of an item's links and reconciles it
// again, forcing a full re-push regardless of timestamps.
func (s *BatchService) ForceResync(ctx context.Context, itemCode string) error {
	links, err := s.links.ListByItem(ctx, itemCode)
	if err != nil {
		return err
	}
	for _, link := range links {
		if err := s.links.ClearMarker(ctx, link.ID); err != nil {
			return err
		}
	}
	return s.RunItem(ctx, itemCode)
}
