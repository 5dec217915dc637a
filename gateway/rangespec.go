// Copyright 2026 The Filebeam Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"fmt"
	"strconv"
	"strings"
)

// ByteRange is the resolved byte window of one request: an inclusive
// [From, Until] span plus whether it came from a Range header (206)
// or covers the whole object (200).
type ByteRange struct {
	From    int64
	Until   int64
	Partial bool
}

// Length returns the number of bytes the range selects.
func (r ByteRange) Length() int64 {
	return r.Until - r.From + 1
}

// ResolveRange turns a Range header value into a ByteRange for an
// object of the given size.
//
// An absent header selects the whole object. A header that parses but
// selects bytes outside the object fails with ErrUnsatisfiableRange.
// A header that does not parse at all (non-numeric, wrong shape) also
// selects the whole object: download managers and TVs send enough
// garbage Range headers that degrading to a full response serves the
// user better than a 400. Only "bytes=<start>-[<end>]" is understood;
// multipart ranges fall under the same leniency.
func ResolveRange(header string, size int64) (ByteRange, error) {
	full := ByteRange{From: 0, Until: size - 1}
	if header == "" {
		return full, nil
	}

	from, until, ok := parseRangeHeader(header, size)
	if !ok {
		return full, nil
	}

	if from < 0 || from >= size || until < 0 || until >= size || from > until {
		return ByteRange{}, fmt.Errorf("bytes %d-%d of %d: %w", from, until, size, ErrUnsatisfiableRange)
	}
	return ByteRange{From: from, Until: until, Partial: true}, nil
}

// parseRangeHeader extracts the start and end of a single-span Range
// header. ok is false when the header is malformed.
func parseRangeHeader(header string, size int64) (from, until int64, ok bool) {
	value := strings.TrimPrefix(header, "bytes=")
	start, end, found := strings.Cut(value, "-")
	if !found {
		return 0, 0, false
	}

	from, err := strconv.ParseInt(start, 10, 64)
	if err != nil {
		return 0, 0, false
	}

	if end == "" {
		// Open-ended "bytes=N-": everything to the last byte.
		return from, size - 1, true
	}
	until, err = strconv.ParseInt(end, 10, 64)
	if err != nil {
		return 0, 0, false
	}
	return from, until, true
}
