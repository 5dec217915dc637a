// Copyright 2026 The Filebeam Authors
// SPDX-License-Identifier: Apache-2.0

package stream

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/filebeam-project/filebeam/upstream"
)

// memorySession serves a byte slice as an upstream session, recording
// every fetch for ordering assertions.
type memorySession struct {
	id   int
	data []byte

	mu      sync.Mutex
	fetches []int64 // offsets, in call order
	failAt  int64   // fetch at this offset fails; -1 disables
}

func newMemorySession(data []byte) *memorySession {
	return &memorySession{data: data, failAt: -1}
}

func (s *memorySession) ID() int { return s.id }

func (s *memorySession) FetchProperties(ctx context.Context, objectID int64) (*upstream.ObjectProperties, error) {
	return &upstream.ObjectProperties{
		ID:          objectID,
		ContentHash: "deadbeefcafe",
		Size:        int64(len(s.data)),
	}, nil
}

func (s *memorySession) FetchChunk(ctx context.Context, objectID int64, offset, limit int64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.fetches = append(s.fetches, offset)
	fail := s.failAt == offset
	s.mu.Unlock()

	if fail {
		return nil, &upstream.FetchError{ObjectID: objectID, Offset: offset, Err: errors.New("connection reset")}
	}
	if offset >= int64(len(s.data)) {
		return nil, nil
	}
	end := offset + limit
	if end > int64(len(s.data)) {
		end = int64(len(s.data))
	}
	return s.data[offset:end], nil
}

func (s *memorySession) Close() error { return nil }

func testObject(size int) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i * 31)
	}
	return data
}

func readRange(t *testing.T, data []byte, from, until, chunkSize int64) []byte {
	t.Helper()
	session := newMemorySession(data)
	plan := PlanChunks(from, until, chunkSize)
	reader := NewReader(context.Background(), session.FetchChunk, 1, plan, 0)
	defer reader.Close()

	got, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("reading range [%d, %d]: %v", from, until, err)
	}
	return got
}

func TestReaderEmitsExactRange(t *testing.T) {
	data := testObject(5000)

	tests := []struct {
		name        string
		from, until int64
	}{
		{"spec worked example", 1500, 3100},
		{"full object", 0, 4999},
		{"first byte", 0, 0},
		{"last byte", 4999, 4999},
		{"chunk-aligned range", 1024, 2047},
		{"tail from boundary", 4096, 4999},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := readRange(t, data, tt.from, tt.until, 1024)
			want := data[tt.from : tt.until+1]
			if !bytes.Equal(got, want) {
				t.Errorf("range [%d, %d]: got %d bytes, want %d; content mismatch",
					tt.from, tt.until, len(got), len(want))
			}
		})
	}
}

func TestReaderWorkedExampleByteCount(t *testing.T) {
	data := testObject(5000)
	got := readRange(t, data, 1500, 3100, 1024)
	if len(got) != 1601 {
		t.Fatalf("emitted %d bytes, want 1601", len(got))
	}
}

func TestReaderSplitRangesConcatenate(t *testing.T) {
	data := testObject(3000)
	for _, k := range []int64{1, 999, 1024, 1025, 2999} {
		first := readRange(t, data, 0, k-1, 1024)
		second := readRange(t, data, k, int64(len(data))-1, 1024)
		if !bytes.Equal(append(first, second...), data) {
			t.Fatalf("split at %d does not reassemble the object", k)
		}
	}
}

func TestReaderFetchesInOrderAndLazily(t *testing.T) {
	data := testObject(4096)
	session := newMemorySession(data)
	plan := PlanChunks(100, 4000, 1024)
	reader := NewReader(context.Background(), session.FetchChunk, 1, plan, 0)

	// Nothing is fetched until the first pull.
	if len(session.fetches) != 0 {
		t.Fatalf("fetches before first read: %v", session.fetches)
	}

	// A one-byte read needs exactly one chunk.
	buffer := make([]byte, 1)
	if _, err := reader.Read(buffer); err != nil {
		t.Fatalf("first read: %v", err)
	}
	if len(session.fetches) != 1 {
		t.Fatalf("fetches after one-byte read: %v, want one", session.fetches)
	}

	if _, err := io.ReadAll(reader); err != nil {
		t.Fatalf("draining: %v", err)
	}
	wantOffsets := []int64{0, 1024, 2048, 3072}
	if len(session.fetches) != len(wantOffsets) {
		t.Fatalf("fetch offsets %v, want %v", session.fetches, wantOffsets)
	}
	for i, offset := range wantOffsets {
		if session.fetches[i] != offset {
			t.Fatalf("fetch %d at offset %d, want %d", i, session.fetches[i], offset)
		}
	}
}

func TestReaderStopsAfterClose(t *testing.T) {
	data := testObject(4096)
	session := newMemorySession(data)
	plan := PlanChunks(0, 4095, 1024)
	reader := NewReader(context.Background(), session.FetchChunk, 1, plan, 0)

	buffer := make([]byte, 1)
	if _, err := reader.Read(buffer); err != nil {
		t.Fatalf("read: %v", err)
	}
	reader.Close()

	if _, err := reader.Read(buffer); err != io.EOF {
		t.Fatalf("read after close returned %v, want io.EOF", err)
	}
	if len(session.fetches) != 1 {
		t.Fatalf("fetches after close: %v, want only the initial one", session.fetches)
	}
}

func TestReaderPropagatesFetchFailure(t *testing.T) {
	data := testObject(4096)
	session := newMemorySession(data)
	session.failAt = 2048

	plan := PlanChunks(0, 4095, 1024)
	reader := NewReader(context.Background(), session.FetchChunk, 1, plan, 0)

	_, err := io.ReadAll(reader)
	var fetchErr *upstream.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("error %v, want *upstream.FetchError", err)
	}

	// The failure is sticky.
	if _, readErr := reader.Read(make([]byte, 1)); !errors.As(readErr, &fetchErr) {
		t.Fatalf("read after failure returned %v, want the fetch error", readErr)
	}
}

func TestReaderHonoursCancellation(t *testing.T) {
	data := testObject(4096)
	session := newMemorySession(data)
	ctx, cancel := context.WithCancel(context.Background())

	plan := PlanChunks(0, 4095, 1024)
	reader := NewReader(ctx, session.FetchChunk, 1, plan, 0)

	buffer := make([]byte, 2048)
	if _, err := reader.Read(buffer); err != nil {
		t.Fatalf("read: %v", err)
	}

	cancel()
	if _, err := io.ReadAll(reader); !errors.Is(err, context.Canceled) {
		t.Fatalf("read after cancel returned %v, want context.Canceled", err)
	}
}

func TestCacheReturnsSameStreamer(t *testing.T) {
	cache := NewCache(CacheConfig{ChunkSize: 1024})
	sessionA := newMemorySession(nil)
	sessionB := newMemorySession(nil)
	sessionB.id = 1

	first := cache.Get(sessionA)
	if second := cache.Get(sessionA); second != first {
		t.Fatal("repeated Get for the same session returned a different streamer")
	}
	if other := cache.Get(sessionB); other == first {
		t.Fatal("distinct sessions share a streamer")
	}
}

func TestCacheConcurrentFirstAccess(t *testing.T) {
	cache := NewCache(CacheConfig{})
	session := newMemorySession(nil)

	const workers = 32
	streamers := make([]*Streamer, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			streamers[slot] = cache.Get(session)
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		if streamers[i] != streamers[0] {
			t.Fatal("concurrent first access created more than one streamer")
		}
	}
}
