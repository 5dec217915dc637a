// Copyright 2026 The Filebeam Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/filebeam-project/filebeam/upstream"
)

func TestResolveContentMeta(t *testing.T) {
	t.Run("store metadata passes through", func(t *testing.T) {
		meta := resolveContentMeta(&upstream.ObjectProperties{
			MimeType: "video/mp4",
			FileName: "clip.mp4",
		})
		if meta.mimeType != "video/mp4" || meta.fileName != "clip.mp4" {
			t.Errorf("got %+v", meta)
		}
	})

	t.Run("missing name gets placeholder with subtype extension", func(t *testing.T) {
		meta := resolveContentMeta(&upstream.ObjectProperties{MimeType: "video/mp4"})
		if meta.mimeType != "video/mp4" {
			t.Errorf("mimeType = %q", meta.mimeType)
		}
		if !strings.HasSuffix(meta.fileName, ".mp4") {
			t.Errorf("fileName = %q, want .mp4 suffix", meta.fileName)
		}
		if len(meta.fileName) != len("abcd.mp4") {
			t.Errorf("fileName = %q, want 4 hex chars plus extension", meta.fileName)
		}
	})

	t.Run("missing type is guessed from extension", func(t *testing.T) {
		meta := resolveContentMeta(&upstream.ObjectProperties{FileName: "photo.png"})
		if meta.mimeType != "image/png" {
			t.Errorf("mimeType = %q, want image/png", meta.mimeType)
		}
		if meta.fileName != "photo.png" {
			t.Errorf("fileName = %q", meta.fileName)
		}
	})

	t.Run("unknown extension falls back to octet-stream", func(t *testing.T) {
		meta := resolveContentMeta(&upstream.ObjectProperties{FileName: "blob.qqqq"})
		if meta.mimeType != fallbackMimeType {
			t.Errorf("mimeType = %q, want %q", meta.mimeType, fallbackMimeType)
		}
	})

	t.Run("nothing known yields generic pair", func(t *testing.T) {
		meta := resolveContentMeta(&upstream.ObjectProperties{})
		if meta.mimeType != fallbackMimeType {
			t.Errorf("mimeType = %q, want %q", meta.mimeType, fallbackMimeType)
		}
		if !strings.HasSuffix(meta.fileName, ".unknown") {
			t.Errorf("fileName = %q, want .unknown suffix", meta.fileName)
		}
	})
}

func TestExtensionFor(t *testing.T) {
	tests := []struct {
		mimeType string
		want     string
	}{
		{"video/mp4", "mp4"},
		{"audio/mpeg", "mpeg"},
		{"video/", "unknown"},
		{"garbage", "unknown"},
		{"", "unknown"},
	}
	for _, tt := range tests {
		if got := extensionFor(tt.mimeType); got != tt.want {
			t.Errorf("extensionFor(%q) = %q, want %q", tt.mimeType, got, tt.want)
		}
	}
}

func TestWriteStreamHeadersFull(t *testing.T) {
	recorder := httptest.NewRecorder()
	meta := contentMeta{mimeType: "video/mp4", fileName: "clip.mp4"}

	writeStreamHeaders(recorder, meta, ByteRange{From: 0, Until: 999}, 1000)

	header := recorder.Header()
	if got := header.Get("Content-Type"); got != "video/mp4" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := header.Get("Content-Length"); got != "1000" {
		t.Errorf("Content-Length = %q, want 1000", got)
	}
	if got := header.Get("Content-Disposition"); got != `attachment; filename="clip.mp4"` {
		t.Errorf("Content-Disposition = %q", got)
	}
	if got := header.Get("Accept-Ranges"); got != "bytes" {
		t.Errorf("Accept-Ranges = %q", got)
	}
	if got := header.Get("Cache-Control"); got != "no-cache, no-store, must-revalidate" {
		t.Errorf("Cache-Control = %q", got)
	}
	if got := header.Get("Content-Range"); got != "" {
		t.Errorf("full response must not carry Content-Range, got %q", got)
	}
}

func TestWriteStreamHeadersPartial(t *testing.T) {
	recorder := httptest.NewRecorder()
	meta := contentMeta{mimeType: "video/mp4", fileName: "clip.mp4"}

	writeStreamHeaders(recorder, meta, ByteRange{From: 100, Until: 199, Partial: true}, 1000)

	header := recorder.Header()
	if got := header.Get("Content-Range"); got != "bytes 100-199/1000" {
		t.Errorf("Content-Range = %q, want bytes 100-199/1000", got)
	}
	if got := header.Get("Content-Length"); got != "100" {
		t.Errorf("Content-Length = %q, want 100", got)
	}
}

func TestStreamStatus(t *testing.T) {
	if got := streamStatus(ByteRange{Partial: true}); got != 206 {
		t.Errorf("partial status = %d, want 206", got)
	}
	if got := streamStatus(ByteRange{}); got != 200 {
		t.Errorf("full status = %d, want 200", got)
	}
}
