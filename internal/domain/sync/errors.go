package sync

import "errors"

var (
	// ErrInvalidInput indicates a reconciliation was requested with an
	// ambiguous or missing starting identity.
	ErrInvalidInput = errors.New("sync: exactly one of item code or remote record required")

	// ErrSyncDisabled indicates the owning server has synchronization
	// turned off. Fatal to that reconciliation, never retried.
	ErrSyncDisabled = errors.New("sync: server has synchronization disabled")

	// ErrLinkNotFound indicates the requested sync link does not exist
	ErrLinkNotFound = errors.New("sync: link not found")

	// ErrServerNotFound indicates the requested server does not exist
	ErrServerNotFound = errors.New("sync: server not found")

	// ErrRemoteIDRebind indicates an attempt to point an existing link at a
	// different remote product. A remote identity, once set, is never
	// reassigned.
	ErrRemoteIDRebind = errors.New("sync: link already bound to a different remote product")

	// ErrMappingFieldNotFound indicates a configured field-map path matched
	// nothing on an established remote record. Strict: mapping against an
	// existing remote schema must not silently drop data.
	ErrMappingFieldNotFound = errors.New("sync: mapped field not found in remote product")

	// Remote API errors, wrapped by the storefront adapter
	ErrRemoteUnavailable     = errors.New("sync: storefront temporarily unavailable")
	ErrRemoteRequestFailed   = errors.New("sync: storefront request failed")
	ErrRemoteInvalidResponse = errors.New("sync: invalid storefront response")
)
