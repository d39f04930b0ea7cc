package sync

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Server Entity
// ---------------------------------------------------------------------------

// Server is one configured storefront a local catalog synchronizes to.
type Server struct {
	// ID is the unique identifier of this server
	ID uuid.UUID
	// Scope is the short identity prefix used in combined record IDs.
	// It must not contain the record ID delimiter.
	Scope string
	// BaseURL is the storefront base URL without a trailing slash
	BaseURL string
	// ConsumerKey and ConsumerSecret authenticate API calls
	ConsumerKey    string
	ConsumerSecret string
	// EnableSync globally gates synchronization for this server
	EnableSync bool
	// EnableImageSync gates pushing of item images
	EnableImageSync bool
	// EnablePriceListSync gates pushing of price-list rates
	EnablePriceListSync bool
	// PriceList is the local price list consulted when price sync is on
	PriceList string
	// FieldMap is the ordered list of configured field projections
	FieldMap []FieldMapping
	// CreatedAt is when this server was configured
	CreatedAt time.Time
	// UpdatedAt is when this server was last updated
	UpdatedAt time.Time
}

// FieldMapping is one configured correspondence between a local item field
// and a path expression into the remote product tree.
type FieldMapping struct {
	// LocalField names the local item field to read
	LocalField string
	// RemotePath is the path expression addressing the remote value
	RemotePath string
}

// Validate checks the server configuration for structural problems
func (s *Server) Validate() error {
	if !ValidScope(s.Scope) {
		return ErrInvalidRecordID
	}
	if s.BaseURL == "" {
		return ErrServerNotFound
	}
	return nil
}

// ---------------------------------------------------------------------------
// ServerRepository
// ---------------------------------------------------------------------------

// ServerRepository persists storefront server configurations
type ServerRepository interface {
	// Get returns the server with the given ID, or ErrServerNotFound
	Get(ctx context.Context, id uuid.UUID) (*Server, error)

	// GetByScope returns the server with the given scope, or ErrServerNotFound
	GetByScope(ctx context.Context, scope string) (*Server, error)

	// List returns all servers; when enabledOnly is true, only those with
	// EnableSync set
	List(ctx context.Context, enabledOnly bool) ([]Server, error)

	// Save creates or updates a server
	Save(ctx context.Context, server *Server) error
}
