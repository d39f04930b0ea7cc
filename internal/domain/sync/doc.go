// Package sync contains the domain model for catalog reconciliation between
// the local item catalog and external storefront servers: sync links,
// server configuration, the ephemeral remote product representation, and
// the storefront gateway port.
//
// Application-layer orchestration lives in internal/application/reconcile;
// concrete gateway and repository implementations live under
// internal/infrastructure.
package sync
