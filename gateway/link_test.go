// Copyright 2026 The Filebeam Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"errors"
	"testing"

	"github.com/filebeam-project/filebeam/upstream"
)

func TestParseLink(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		queryHash string
		want      Link
		wantErr   error
	}{
		{
			name: "packed hash and id",
			path: "aB3dE91234",
			want: Link{ObjectID: 1234, Hash: "aB3dE9", PathHash: "aB3dE9"},
		},
		{
			name:      "id with query hash",
			path:      "1234",
			queryHash: "aB3dE9",
			want:      Link{ObjectID: 1234, Hash: "aB3dE9"},
		},
		{
			name:      "id with trailing file name",
			path:      "1234/My%20Video.mp4",
			queryHash: "aB3dE9",
			want:      Link{ObjectID: 1234, Hash: "aB3dE9"},
		},
		{
			name:      "query hash overrides packed hash",
			path:      "aB3dE91234",
			queryHash: "ZZZZZZ",
			want:      Link{ObjectID: 1234, Hash: "ZZZZZZ", PathHash: "aB3dE9"},
		},
		{
			name:    "id without any hash",
			path:    "1234",
			wantErr: ErrMalformedRequest,
		},
		{
			name:    "no id at all",
			path:    "not-a-link",
			wantErr: ErrMalformedRequest,
		},
		{
			name:    "empty path",
			path:    "",
			wantErr: ErrMalformedRequest,
		},
		{
			name:      "five character hash is not packed form",
			path:      "abcde1234",
			queryHash: "",
			// "abcde1" is six word characters but the trailing part
			// "234" is digits: packed parse reads hash "abcde1",
			// id 234.
			want: Link{ObjectID: 234, Hash: "abcde1", PathHash: "abcde1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLink(tt.path, tt.queryHash)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseLink(%q, %q) error = %v, want %v", tt.path, tt.queryHash, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLink(%q, %q): %v", tt.path, tt.queryHash, err)
			}
			if got != tt.want {
				t.Errorf("ParseLink(%q, %q) = %+v, want %+v", tt.path, tt.queryHash, got, tt.want)
			}
		})
	}
}

func TestLinkHashConflict(t *testing.T) {
	conflicted := Link{ObjectID: 1, Hash: "queryq", PathHash: "pathpa"}
	if !conflicted.HashConflict() {
		t.Error("expected conflict when query and path hashes differ")
	}

	agreed := Link{ObjectID: 1, Hash: "sameha", PathHash: "sameha"}
	if agreed.HashConflict() {
		t.Error("unexpected conflict when hashes agree")
	}

	queryOnly := Link{ObjectID: 1, Hash: "queryq"}
	if queryOnly.HashConflict() {
		t.Error("unexpected conflict when no path hash exists")
	}
}

func TestValidateCapability(t *testing.T) {
	properties := &upstream.ObjectProperties{
		ID:          7,
		ContentHash: "abcdef0123456789",
	}

	if err := ValidateCapability(Link{ObjectID: 7, Hash: "abcdef"}, properties); err != nil {
		t.Errorf("valid hash rejected: %v", err)
	}

	for _, hash := range []string{"abcdeF", "abcdee", "abcde", "abcdef0", "", "ABCDEF"} {
		err := ValidateCapability(Link{ObjectID: 7, Hash: hash}, properties)
		if !errors.Is(err, ErrInvalidCapability) {
			t.Errorf("hash %q: error = %v, want ErrInvalidCapability", hash, err)
		}
	}
}
