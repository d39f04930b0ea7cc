package reconcile

import (
	"context"
	"strings"

	"github.com/storesync/backend/internal/domain/sync"
)

// CategoryResolver resolves category names to storefront category IDs with
// get-or-create semantics. Results are memoized for the lifetime of one
// reconciliation pass so a name shared between main and sub category is
// created at most once.
type CategoryResolver struct {
	gateway sync.StorefrontGateway
	server  *sync.Server
	memo    map[string]int64
}

// NewCategoryResolver creates a resolver scoped to one pass on one server
func NewCategoryResolver(gateway sync.StorefrontGateway, server *sync.Server) *CategoryResolver {
	return &CategoryResolver{
		gateway: gateway,
		server:  server,
		memo:    make(map[string]int64),
	}
}

// Resolve returns the storefront ID for a category name, matching existing
// categories case-insensitively and creating the category under parentID
// when no match exists.
func (r *CategoryResolver) Resolve(ctx context.Context, name string, parentID int64) (int64, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if id, ok := r.memo[key]; ok {
		return id, nil
	}

	existing, err := r.gateway.ListCategories(ctx, r.server, name)
	if err != nil {
		return 0, err
	}
	for _, cat := range existing {
		if strings.EqualFold(cat.Name, name) {
			r.memo[key] = cat.ID
			return cat.ID, nil
		}
	}

	created, err := r.gateway.CreateCategory(ctx, r.server, name, parentID)
	if err != nil {
		return 0, err
	}
	r.memo[key] = created.ID
	return created.ID, nil
}

// dedupeIDs removes duplicate IDs preserving first-seen order
func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
