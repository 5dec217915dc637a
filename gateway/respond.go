// Copyright 2026 The Filebeam Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/filebeam-project/filebeam/upstream"
)

// fallbackMimeType is served when neither the store nor the file name
// yields a media type.
const fallbackMimeType = "application/octet-stream"

// contentMeta is the name/type pair a response is served under.
type contentMeta struct {
	mimeType string
	fileName string
}

// resolveContentMeta derives the served media type and file name from
// store metadata. Preference order: store-provided values, then a
// guess from the file name extension, then a generic type with a
// random placeholder name (clients need some name for the
// Content-Disposition attachment).
func resolveContentMeta(properties *upstream.ObjectProperties) contentMeta {
	meta := contentMeta{
		mimeType: properties.MimeType,
		fileName: properties.FileName,
	}

	switch {
	case meta.mimeType != "" && meta.fileName == "":
		meta.fileName = placeholderName(extensionFor(meta.mimeType))
	case meta.mimeType == "" && meta.fileName != "":
		meta.mimeType = typeByFileName(meta.fileName)
	case meta.mimeType == "" && meta.fileName == "":
		meta.mimeType = fallbackMimeType
		meta.fileName = placeholderName("unknown")
	}
	return meta
}

// typeByFileName guesses a media type from a file name extension.
func typeByFileName(name string) string {
	if mimeType := mime.TypeByExtension(filepath.Ext(name)); mimeType != "" {
		return mimeType
	}
	return fallbackMimeType
}

// extensionFor returns the subtype part of a media type as a file
// extension ("video/mp4" -> "mp4"), or "unknown" for degenerate types.
func extensionFor(mimeType string) string {
	_, subtype, found := strings.Cut(mimeType, "/")
	if !found || subtype == "" {
		return "unknown"
	}
	return subtype
}

// placeholderName generates a short random file name with the given
// extension. Two random bytes is plenty: the name only has to be
// plausible for a Save As dialog, not unique.
func placeholderName(extension string) string {
	buffer := make([]byte, 2)
	rand.Read(buffer)
	return hex.EncodeToString(buffer) + "." + extension
}

// writeStreamHeaders sets every header of a 200/206 streaming
// response. Caching is disabled outright: capability-hashed URLs must
// not linger in shared caches, and partial responses cached by
// confused intermediaries corrupt resumed downloads.
func writeStreamHeaders(w http.ResponseWriter, meta contentMeta, byteRange ByteRange, size int64) {
	header := w.Header()
	header.Set("Content-Type", meta.mimeType)
	header.Set("Content-Length", strconv.FormatInt(byteRange.Length(), 10))
	header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", meta.fileName))
	header.Set("Accept-Ranges", "bytes")
	header.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	header.Set("Pragma", "no-cache")
	header.Set("Expires", "0")
	if byteRange.Partial {
		header.Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", byteRange.From, byteRange.Until, size))
	}
}

// streamStatus returns the status code for a resolved range.
func streamStatus(byteRange ByteRange) int {
	if byteRange.Partial {
		return http.StatusPartialContent
	}
	return http.StatusOK
}
