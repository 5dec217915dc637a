// Copyright 2026 The Filebeam Authors
// SPDX-License-Identifier: Apache-2.0

package stream

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/filebeam-project/filebeam/upstream"
)

// Streamer adapts one upstream session for range streaming. It owns
// no state beyond the session binding; its value is the stable pairing
// of session and chunk-fetch configuration so request handling can
// treat "a way to stream object bytes" as a single object.
type Streamer struct {
	session      upstream.Session
	chunkSize    int64
	fetchTimeout time.Duration
	logger       *slog.Logger
}

// StreamerConfig configures a Streamer.
type StreamerConfig struct {
	// Session is the upstream session the streamer fetches through.
	Session upstream.Session

	// ChunkSize is the upstream fetch unit. Defaults to
	// DefaultChunkSize when zero.
	ChunkSize int64

	// FetchTimeout bounds each individual chunk fetch. Zero disables
	// the bound.
	FetchTimeout time.Duration

	// Logger receives debug-level fetch traces. If nil, the default
	// logger is used.
	Logger *slog.Logger
}

// NewStreamer creates a streamer over the given session.
func NewStreamer(config StreamerConfig) *Streamer {
	chunkSize := config.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Streamer{
		session:      config.Session,
		chunkSize:    chunkSize,
		fetchTimeout: config.FetchTimeout,
		logger:       logger,
	}
}

// Properties fetches the object's current metadata through the bound
// session. Nothing is cached: the store may mutate or expire objects
// between requests.
func (s *Streamer) Properties(ctx context.Context, objectID int64) (*upstream.ObjectProperties, error) {
	return s.session.FetchProperties(ctx, objectID)
}

// OpenRange returns a reader over the inclusive byte range
// [from, until] of the object. The range must already be validated
// against the object size.
func (s *Streamer) OpenRange(ctx context.Context, objectID, from, until int64) *Reader {
	plan := PlanChunks(from, until, s.chunkSize)
	s.logger.Debug("opening range",
		"object_id", objectID,
		"from", from,
		"until", until,
		"aligned_offset", plan.AlignedOffset,
		"parts", plan.PartCount,
		"session", s.session.ID(),
	)
	return NewReader(ctx, s.session.FetchChunk, objectID, plan, s.fetchTimeout)
}

// ChunkSize returns the upstream fetch unit the streamer uses.
func (s *Streamer) ChunkSize() int64 {
	return s.chunkSize
}

// Cache hands out one Streamer per session for the life of the
// process. Creation is lazy and guarded, so concurrent first access
// for the same session still yields a single adapter. There is no
// eviction: the population is bounded by the fixed session set.
type Cache struct {
	chunkSize    int64
	fetchTimeout time.Duration
	logger       *slog.Logger

	mu        sync.Mutex
	streamers map[int]*Streamer // keyed by session ID
}

// CacheConfig configures a Cache. ChunkSize and FetchTimeout apply to
// every streamer the cache creates.
type CacheConfig struct {
	ChunkSize    int64
	FetchTimeout time.Duration
	Logger       *slog.Logger
}

// NewCache creates an empty streamer cache.
func NewCache(config CacheConfig) *Cache {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		chunkSize:    config.ChunkSize,
		fetchTimeout: config.FetchTimeout,
		logger:       logger,
		streamers:    make(map[int]*Streamer),
	}
}

// Get returns the streamer for the session, creating it on first use.
// Repeated calls for the same session return the same instance.
func (c *Cache) Get(session upstream.Session) *Streamer {
	c.mu.Lock()
	defer c.mu.Unlock()

	if streamer, ok := c.streamers[session.ID()]; ok {
		return streamer
	}

	c.logger.Debug("creating streamer", "session", session.ID())
	streamer := NewStreamer(StreamerConfig{
		Session:      session,
		ChunkSize:    c.chunkSize,
		FetchTimeout: c.fetchTimeout,
		Logger:       c.logger,
	})
	c.streamers[session.ID()] = streamer
	return streamer
}
