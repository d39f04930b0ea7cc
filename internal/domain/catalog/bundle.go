package catalog

import (
	"context"
	"errors"
)

// ErrBundleNotFound indicates no bundle definition exists for an item code
var ErrBundleNotFound = errors.New("catalog: bundle definition not found")

// BundleDefinition describes which child items a composite item is made of.
// It is keyed by the parent item's code; child order is significant because
// derived attribute indices follow it.
type BundleDefinition struct {
	// ParentCode is the code of the bundle item itself
	ParentCode string
	// Description overrides the parent item name on the storefront when set
	Description string
	// Children lists the member items in definition order
	Children []BundleChild
}

// BundleChild is one member row of a bundle definition
type BundleChild struct {
	ItemCode    string
	Qty         int
	Description string
}

// BundleRepository provides access to bundle definitions
type BundleRepository interface {
	// GetByParent returns the first bundle definition whose parent is the
	// given item code, or ErrBundleNotFound
	GetByParent(ctx context.Context, parentCode string) (*BundleDefinition, error)

	// ExistsByParent reports whether a bundle definition exists for the code
	ExistsByParent(ctx context.Context, parentCode string) (bool, error)
}
