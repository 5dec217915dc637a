// Copyright 2026 The Filebeam Authors
// SPDX-License-Identifier: Apache-2.0

package upstream

import "context"

// Session is one authenticated connection to the remote object store.
// Sessions are long-lived and safe for concurrent use; the gateway
// creates a fixed set at startup and load-balances requests across
// them through a [Pool].
type Session interface {
	// ID returns the session's stable index within its pool. Used as
	// the key for per-session caches and in log output.
	ID() int

	// FetchProperties fetches the current metadata for an object.
	// Returns a *NotFoundError when the store has no such object.
	FetchProperties(ctx context.Context, objectID int64) (*ObjectProperties, error)

	// FetchChunk fetches up to limit bytes of object data starting at
	// offset. Offset must be aligned to the store's chunk size; limit
	// must not exceed it. The final chunk of an object may be shorter
	// than limit. Returns a *NotFoundError when the object is gone, or
	// a *FetchError for transport failures.
	FetchChunk(ctx context.Context, objectID int64, offset, limit int64) ([]byte, error)

	// Close releases the session's resources. Idempotent.
	Close() error
}
