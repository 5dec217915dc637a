// Copyright 2026 The Filebeam Authors
// SPDX-License-Identifier: Apache-2.0

// Package mockstore is a filesystem-backed object store that stands in
// for a remote chat-platform file service. Objects are ingested whole,
// split into fixed-size chunks, compressed per chunk, and indexed with
// a CBOR sidecar. Sessions opened against the store satisfy the
// upstream.Session contract, so the gateway streams from a local store
// exactly the way it would from a remote one.
package mockstore

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/zeebo/blake3"

	"github.com/filebeam-project/filebeam/lib/codec"
	"github.com/filebeam-project/filebeam/upstream"
)

// DefaultChunkSize is the stored chunk size when none is configured.
const DefaultChunkSize = 1 << 20

// chunkEntry records one stored chunk in the object index.
type chunkEntry struct {
	// Compression is the CompressionTag the chunk was stored with.
	Compression uint8 `cbor:"compression"`

	// Size is the uncompressed chunk length.
	Size int64 `cbor:"size"`

	// CompressedSize is the on-disk chunk file length.
	CompressedSize int64 `cbor:"compressed_size"`
}

// objectIndex is the CBOR sidecar describing one stored object.
type objectIndex struct {
	ContentHash string       `cbor:"content_hash"`
	Size        int64        `cbor:"size"`
	MimeType    string       `cbor:"mime_type"`
	FileName    string       `cbor:"file_name"`
	ChunkSize   int64        `cbor:"chunk_size"`
	Chunks      []chunkEntry `cbor:"chunks"`
}

// Store is the on-disk object store. Objects are immutable once
// ingested; concurrent reads need no locking, only ID allocation
// during ingest is serialized.
type Store struct {
	root      string
	chunkSize int64
	preferred CompressionTag
	logger    *slog.Logger

	mu     sync.Mutex
	nextID int64
}

// Config holds the parameters for opening a store.
type Config struct {
	// Root is the directory holding stored objects. Created if it
	// does not exist. Required.
	Root string

	// ChunkSize is the stored chunk size in bytes. Defaults to
	// DefaultChunkSize when zero.
	ChunkSize int64

	// Compression is the preferred at-rest compression. Chunks that
	// do not compress under the preferred algorithm are stored raw.
	// CompressionNone disables compression entirely.
	Compression CompressionTag

	// Logger receives operational messages. If nil, the default
	// logger is used.
	Logger *slog.Logger
}

// Open creates or reopens a store rooted at cfg.Root. Existing objects
// from a previous run are discovered so that new ingests never reuse
// their IDs.
func Open(cfg Config) (*Store, error) {
	if cfg.Root == "" {
		return nil, fmt.Errorf("mockstore: Root is required")
	}

	chunkSize := cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	objectsDir := filepath.Join(cfg.Root, "objects")
	if err := os.MkdirAll(objectsDir, 0755); err != nil {
		return nil, fmt.Errorf("mockstore: creating %s: %w", objectsDir, err)
	}

	store := &Store{
		root:      cfg.Root,
		chunkSize: chunkSize,
		preferred: cfg.Compression,
		logger:    logger,
		nextID:    1,
	}

	if err := store.discoverObjects(); err != nil {
		return nil, err
	}
	return store, nil
}

// discoverObjects scans the objects directory and advances the ID
// counter past every object from a previous run.
func (s *Store) discoverObjects() error {
	entries, err := os.ReadDir(filepath.Join(s.root, "objects"))
	if err != nil {
		return fmt.Errorf("mockstore: scanning objects: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		id, err := strconv.ParseInt(entry.Name(), 10, 64)
		if err != nil {
			continue
		}
		if id >= s.nextID {
			s.nextID = id + 1
		}
	}
	return nil
}

// objectDir returns the directory holding one object's chunks and index.
func (s *Store) objectDir(objectID int64) string {
	return filepath.Join(s.root, "objects", strconv.FormatInt(objectID, 10))
}

// Put ingests an object and returns its assigned ID. The content hash
// is the BLAKE3 digest of the full data; the media type is detected
// from content when not supplied.
func (s *Store) Put(data []byte, fileName, mimeType string) (int64, error) {
	if mimeType == "" {
		mimeType = mimetype.Detect(data).String()
	}
	return s.put(data, fileName, mimeType, s.preferred)
}

// PutAuto ingests an object letting the store pick the compression by
// probing the first chunk instead of using the configured preference.
func (s *Store) PutAuto(data []byte, fileName string) (int64, error) {
	mimeType := mimetype.Detect(data).String()
	tag := SelectCompression(data[:min(int64(len(data)), s.chunkSize)], mimeType)
	return s.put(data, fileName, mimeType, tag)
}

func (s *Store) put(data []byte, fileName, mimeType string, tag CompressionTag) (int64, error) {
	s.mu.Lock()
	objectID := s.nextID
	s.nextID++
	s.mu.Unlock()

	digest := blake3.Sum256(data)
	contentHash := hex.EncodeToString(digest[:])

	dir := s.objectDir(objectID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("mockstore: creating %s: %w", dir, err)
	}

	index := objectIndex{
		ContentHash: contentHash,
		Size:        int64(len(data)),
		MimeType:    mimeType,
		FileName:    fileName,
		ChunkSize:   s.chunkSize,
	}

	for offset := int64(0); offset < int64(len(data)); offset += s.chunkSize {
		end := min(offset+s.chunkSize, int64(len(data)))

		entry, err := s.writeChunk(dir, len(index.Chunks), data[offset:end], tag)
		if err != nil {
			return 0, err
		}
		index.Chunks = append(index.Chunks, entry)
	}

	indexData, err := codec.Marshal(index)
	if err != nil {
		return 0, fmt.Errorf("mockstore: encoding index for object %d: %w", objectID, err)
	}
	if err := os.WriteFile(filepath.Join(dir, "index.cbor"), indexData, 0644); err != nil {
		return 0, fmt.Errorf("mockstore: writing index for object %d: %w", objectID, err)
	}

	s.logger.Info("object ingested",
		"object_id", objectID,
		"size", index.Size,
		"chunks", len(index.Chunks),
		"mime_type", mimeType,
	)
	return objectID, nil
}

// writeChunk compresses and stores one chunk, returning its index
// entry. Chunks that do not shrink under the requested algorithm are
// stored raw.
func (s *Store) writeChunk(dir string, part int, chunk []byte, requested CompressionTag) (chunkEntry, error) {
	stored := chunk
	tag := CompressionNone

	if requested != CompressionNone {
		compressed, err := CompressChunk(chunk, requested)
		switch {
		case err == nil:
			stored, tag = compressed, requested
		case IsIncompressible(err):
			// Raw chunk; nothing gained.
		default:
			return chunkEntry{}, fmt.Errorf("mockstore: compressing chunk %d: %w", part, err)
		}
	}

	path := filepath.Join(dir, fmt.Sprintf("%06d.chunk", part))
	if err := os.WriteFile(path, stored, 0644); err != nil {
		return chunkEntry{}, fmt.Errorf("mockstore: writing chunk %d: %w", part, err)
	}

	return chunkEntry{
		Compression:    uint8(tag),
		Size:           int64(len(chunk)),
		CompressedSize: int64(len(stored)),
	}, nil
}

// IngestFile reads a file from disk and ingests it under its base
// name.
func (s *Store) IngestFile(path string) (int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("mockstore: reading %s: %w", path, err)
	}
	return s.Put(data, filepath.Base(path), "")
}

// Properties returns the stored object's metadata.
func (s *Store) Properties(objectID int64) (*upstream.ObjectProperties, error) {
	index, err := s.readIndex(objectID)
	if err != nil {
		return nil, err
	}
	return &upstream.ObjectProperties{
		ID:          objectID,
		ContentHash: index.ContentHash,
		Size:        index.Size,
		MimeType:    index.MimeType,
		FileName:    index.FileName,
	}, nil
}

// readIndex loads and decodes the object's CBOR index.
func (s *Store) readIndex(objectID int64) (*objectIndex, error) {
	data, err := os.ReadFile(filepath.Join(s.objectDir(objectID), "index.cbor"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &upstream.NotFoundError{ObjectID: objectID}
		}
		return nil, fmt.Errorf("mockstore: reading index for object %d: %w", objectID, err)
	}

	var index objectIndex
	if err := codec.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("mockstore: decoding index for object %d: %w", objectID, err)
	}
	return &index, nil
}

// readChunk loads and decompresses one stored chunk.
func (s *Store) readChunk(objectID int64, index *objectIndex, part int) ([]byte, error) {
	if part < 0 || part >= len(index.Chunks) {
		return nil, fmt.Errorf("mockstore: object %d has no chunk %d", objectID, part)
	}

	path := filepath.Join(s.objectDir(objectID), fmt.Sprintf("%06d.chunk", part))
	stored, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("mockstore: reading chunk %d of object %d: %w", part, objectID, err)
	}

	entry := index.Chunks[part]
	chunk, err := DecompressChunk(stored, CompressionTag(entry.Compression), int(entry.Size))
	if err != nil {
		return nil, fmt.Errorf("mockstore: chunk %d of object %d: %w", part, objectID, err)
	}
	return chunk, nil
}

// ReadRange returns up to limit bytes of the object starting at
// offset, crossing stored chunk boundaries as needed. Reads past the
// end of the object are truncated; a read entirely past the end
// returns an empty slice.
func (s *Store) ReadRange(objectID, offset, limit int64) ([]byte, error) {
	index, err := s.readIndex(objectID)
	if err != nil {
		return nil, err
	}

	if offset < 0 || limit < 0 {
		return nil, fmt.Errorf("mockstore: negative range for object %d", objectID)
	}
	if offset >= index.Size {
		return []byte{}, nil
	}
	end := min(offset+limit, index.Size)

	result := make([]byte, 0, end-offset)
	for position := offset; position < end; {
		part := int(position / index.ChunkSize)
		chunk, err := s.readChunk(objectID, index, part)
		if err != nil {
			return nil, err
		}

		within := position - int64(part)*index.ChunkSize
		take := min(int64(len(chunk))-within, end-position)
		if take <= 0 {
			return nil, fmt.Errorf("mockstore: chunk %d of object %d shorter than indexed", part, objectID)
		}

		result = append(result, chunk[within:within+take]...)
		position += take
	}
	return result, nil
}
