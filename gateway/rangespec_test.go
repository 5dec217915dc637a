// Copyright 2026 The Filebeam Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"errors"
	"testing"
)

func TestResolveRange(t *testing.T) {
	const size = 1000

	tests := []struct {
		name   string
		header string
		want   ByteRange
	}{
		{
			name:   "no header selects whole object",
			header: "",
			want:   ByteRange{From: 0, Until: 999},
		},
		{
			name:   "bounded range",
			header: "bytes=100-200",
			want:   ByteRange{From: 100, Until: 200, Partial: true},
		},
		{
			name:   "open-ended range",
			header: "bytes=100-",
			want:   ByteRange{From: 100, Until: 999, Partial: true},
		},
		{
			name:   "whole object as explicit range",
			header: "bytes=0-999",
			want:   ByteRange{From: 0, Until: 999, Partial: true},
		},
		{
			name:   "single byte",
			header: "bytes=0-0",
			want:   ByteRange{From: 0, Until: 0, Partial: true},
		},
		{
			name:   "non-numeric degrades to full object",
			header: "bytes=abc",
			want:   ByteRange{From: 0, Until: 999},
		},
		{
			name:   "suffix form degrades to full object",
			header: "bytes=-500",
			want:   ByteRange{From: 0, Until: 999},
		},
		{
			name:   "multipart range degrades to full object",
			header: "bytes=0-99,200-299",
			want:   ByteRange{From: 0, Until: 999},
		},
		{
			name:   "garbage degrades to full object",
			header: "lines=1-2",
			want:   ByteRange{From: 0, Until: 999},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveRange(tt.header, size)
			if err != nil {
				t.Fatalf("ResolveRange(%q, %d): %v", tt.header, size, err)
			}
			if got != tt.want {
				t.Errorf("ResolveRange(%q, %d) = %+v, want %+v", tt.header, size, got, tt.want)
			}
		})
	}
}

func TestResolveRangeUnsatisfiable(t *testing.T) {
	const size = 1000

	for _, header := range []string{
		"bytes=1000-1000", // starts at size
		"bytes=5000-",     // starts past the end
		"bytes=200-100",   // inverted
		"bytes=0-1000",    // end at size
	} {
		_, err := ResolveRange(header, size)
		if !errors.Is(err, ErrUnsatisfiableRange) {
			t.Errorf("ResolveRange(%q, %d) error = %v, want ErrUnsatisfiableRange", header, size, err)
		}
	}
}

func TestByteRangeLength(t *testing.T) {
	if got := (ByteRange{From: 100, Until: 200}).Length(); got != 101 {
		t.Errorf("Length() = %d, want 101", got)
	}
	if got := (ByteRange{From: 0, Until: 0}).Length(); got != 1 {
		t.Errorf("Length() = %d, want 1", got)
	}
}
