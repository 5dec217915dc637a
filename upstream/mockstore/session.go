// Copyright 2026 The Filebeam Authors
// SPDX-License-Identifier: Apache-2.0

package mockstore

import (
	"context"

	"github.com/filebeam-project/filebeam/upstream"
)

// Session is one read handle onto a Store. Multiple sessions over the
// same store are independent for workload accounting but share the
// underlying files; the store's immutable-object layout makes that
// safe without coordination.
type Session struct {
	id    int
	store *Store
}

var _ upstream.Session = (*Session)(nil)

// NewSession opens a session with the given pool-unique ID.
func NewSession(store *Store, id int) *Session {
	return &Session{id: id, store: store}
}

// ID returns the session's pool-unique identifier.
func (s *Session) ID() int {
	return s.id
}

// FetchProperties returns the object's metadata.
func (s *Session) FetchProperties(ctx context.Context, objectID int64) (*upstream.ObjectProperties, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.Properties(objectID)
}

// FetchChunk returns up to limit bytes starting at offset. The offset
// does not have to align with the store's own chunk boundaries; reads
// that straddle stored chunks are reassembled transparently.
func (s *Session) FetchChunk(ctx context.Context, objectID, offset, limit int64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ReadRange(objectID, offset, limit)
}

// Close releases the session. Store sessions hold no resources beyond
// the shared store reference, so this never fails.
func (s *Session) Close() error {
	return nil
}
