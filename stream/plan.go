// Copyright 2026 The Filebeam Authors
// SPDX-License-Identifier: Apache-2.0

package stream

// DefaultChunkSize is the upstream fetch unit: 1 MiB. The store
// serves chunks of exactly this size (except the final chunk of an
// object), and fetch offsets must be multiples of it.
const DefaultChunkSize = 1 << 20

// Plan describes how to satisfy one byte range with aligned chunk
// fetches. All fields are derived; a Plan is request-scoped and never
// stored.
type Plan struct {
	// ChunkSize is the fetch unit the plan was computed for.
	ChunkSize int64

	// AlignedOffset is the chunk-aligned offset of the first fetch.
	// It is the requested start rounded down to a chunk boundary.
	AlignedOffset int64

	// FirstCut is the number of bytes to discard from the front of
	// the first fetched chunk (the distance from AlignedOffset to the
	// requested start).
	FirstCut int64

	// LastCut is the number of bytes to keep from the final fetched
	// chunk. Always in (0, ChunkSize].
	LastCut int64

	// PartCount is the number of chunk fetches the plan needs.
	PartCount int64
}

// PlanChunks computes the fetch plan for the inclusive byte range
// [from, until] with the given chunk size. The caller is responsible
// for range validation; from ≤ until and chunkSize > 0 are assumed.
func PlanChunks(from, until, chunkSize int64) Plan {
	alignedOffset := from - (from % chunkSize)

	// (until+1) mod chunkSize is how far the range end reaches into
	// its chunk; an exact boundary means the whole chunk is kept.
	lastCut := (until + 1) % chunkSize
	if lastCut == 0 {
		lastCut = chunkSize
	}

	return Plan{
		ChunkSize:     chunkSize,
		AlignedOffset: alignedOffset,
		FirstCut:      from - alignedOffset,
		LastCut:       lastCut,
		PartCount:     until/chunkSize - alignedOffset/chunkSize + 1,
	}
}

// Length returns the number of payload bytes the plan emits.
func (p Plan) Length() int64 {
	if p.PartCount == 1 {
		return p.LastCut - p.FirstCut
	}
	return (p.ChunkSize - p.FirstCut) + (p.PartCount-2)*p.ChunkSize + p.LastCut
}
