// Copyright 2026 The Filebeam Authors
// SPDX-License-Identifier: Apache-2.0

package stream

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Reader streams the planned byte range from the upstream store. It
// implements io.ReadCloser with strictly pull-based fetching: the next
// chunk is requested only when the previous chunk's bytes have been
// consumed, so transport backpressure propagates straight to the
// upstream and a slow or stalled client costs nothing but an idle
// connection.
//
// A Reader is single-use and not safe for concurrent use. Any fetch
// failure is sticky: once Read returns a non-EOF error, all further
// reads return the same error.
type Reader struct {
	ctx          context.Context
	fetch        FetchFunc
	objectID     int64
	plan         Plan
	fetchTimeout time.Duration

	part   int64  // next part index, 0-based
	buffer []byte // unread remainder of the current chunk
	err    error  // sticky terminal state (io.EOF or a fetch error)
}

// FetchFunc fetches up to limit bytes of an object starting at the
// chunk-aligned offset. It matches the signature of
// upstream.Session.FetchChunk with the object bound by the caller.
type FetchFunc func(ctx context.Context, objectID int64, offset, limit int64) ([]byte, error)

// NewReader creates a Reader that emits exactly the bytes selected by
// plan, fetching through fetch. The context governs every upstream
// fetch; cancelling it (client disconnect) aborts the sequence at the
// next chunk boundary. fetchTimeout bounds each individual chunk
// fetch; zero disables the per-chunk bound.
func NewReader(ctx context.Context, fetch FetchFunc, objectID int64, plan Plan, fetchTimeout time.Duration) *Reader {
	return &Reader{
		ctx:          ctx,
		fetch:        fetch,
		objectID:     objectID,
		plan:         plan,
		fetchTimeout: fetchTimeout,
	}
}

// Read implements io.Reader. It serves bytes from the current chunk
// and fetches the next chunk only when the buffer runs dry.
func (r *Reader) Read(p []byte) (int, error) {
	if r.err != nil {
		return 0, r.err
	}

	for len(r.buffer) == 0 {
		if r.part >= r.plan.PartCount {
			r.err = io.EOF
			return 0, r.err
		}
		if err := r.fetchNext(); err != nil {
			r.err = err
			return 0, r.err
		}
	}

	n := copy(p, r.buffer)
	r.buffer = r.buffer[n:]
	return n, nil
}

// fetchNext fetches chunk r.part, trims it to the plan's boundaries,
// and advances the cursor.
func (r *Reader) fetchNext() error {
	if err := r.ctx.Err(); err != nil {
		return err
	}

	ctx := r.ctx
	if r.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.fetchTimeout)
		defer cancel()
	}

	offset := r.plan.AlignedOffset + r.part*r.plan.ChunkSize
	chunk, err := r.fetch(ctx, r.objectID, offset, r.plan.ChunkSize)
	if err != nil {
		return err
	}

	start := int64(0)
	if r.part == 0 {
		start = r.plan.FirstCut
	}
	end := int64(len(chunk))
	if r.part == r.plan.PartCount-1 && r.plan.LastCut < end {
		end = r.plan.LastCut
	}
	if start > end {
		// The store returned fewer bytes than the plan needs. The
		// range was validated against the object size, so this means
		// the object shrank mid-stream.
		return fmt.Errorf("stream: object %d: chunk at offset %d is %d bytes, need at least %d",
			r.objectID, offset, len(chunk), start)
	}

	r.buffer = chunk[start:end]
	r.part++
	return nil
}

// Close terminates the sequence. Chunks not yet fetched are never
// requested. Close never fails; it exists to satisfy io.ReadCloser so
// the HTTP layer can treat the body uniformly.
func (r *Reader) Close() error {
	if r.err == nil {
		r.err = io.EOF
	}
	r.buffer = nil
	return nil
}
