package sync

import "context"

// StorefrontGateway is the port interface to the remote catalog API.
// Implementations live in the infrastructure layer; the reconciliation
// engine depends only on this interface.
//
// Expected absence is signalled through the boolean return, never through
// an error: a missing product triggers creation, it is not a failure.
type StorefrontGateway interface {
	// GetProduct fetches a product by its remote ID. found is false when
	// the storefront has no such product.
	GetProduct(ctx context.Context, server *Server, remoteID string) (product *RemoteProduct, found bool, err error)

	// CreateProduct creates a product from a sparse payload and returns
	// the created record.
	CreateProduct(ctx context.Context, server *Server, payload map[string]any) (*RemoteProduct, error)

	// UpdateProduct applies a sparse partial update, merged server-side.
	// Any subset of product fields and metadata may be present.
	UpdateProduct(ctx context.Context, server *Server, remoteID string, fields map[string]any) (*RemoteProduct, error)

	// ListCategories returns storefront categories matching the search term
	ListCategories(ctx context.Context, server *Server, search string) ([]RemoteCategory, error)

	// CreateCategory creates a category, optionally nested under parentID,
	// and returns the created record.
	CreateCategory(ctx context.Context, server *Server, name string, parentID int64) (*RemoteCategory, error)

	// ListOfferCategories returns promotional taxonomy terms matching the
	// search term. Offer categories are resolved only, never created.
	ListOfferCategories(ctx context.Context, server *Server, search string) ([]RemoteCategory, error)
}
