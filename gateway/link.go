// Copyright 2026 The Filebeam Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/filebeam-project/filebeam/upstream"
)

// Link is the decoded form of a share URL: which object, and the
// capability hash the caller presented for it.
type Link struct {
	// ObjectID is the upstream object identifier.
	ObjectID int64

	// Hash is the capability hash to validate against the object.
	Hash string

	// PathHash is the hash embedded in the packed path form, if the
	// link used one. When both a path hash and a query hash are
	// present and disagree, the query hash wins (Hash carries it) but
	// the caller should log the mismatch — a disagreeing link is
	// either stale or tampered with.
	PathHash string
}

// HashConflict reports whether the link carried two different hashes.
func (l Link) HashConflict() bool {
	return l.PathHash != "" && l.Hash != l.PathHash
}

// Share links come in two shapes:
//
//	/{hash}{id}            packed: 6 hash characters then the ID digits
//	/{id}[/anything]?hash= ID first, hash in the query string
var (
	packedLinkPattern = regexp.MustCompile(`^([A-Za-z0-9_-]{6})(\d+)$`)
	plainLinkPattern  = regexp.MustCompile(`^(\d+)(?:/.*)?$`)
)

// ParseLink extracts the object ID and capability hash from a request
// path (with the leading slash already stripped) and the optional
// "hash" query parameter. A query hash takes precedence over a
// path-embedded one; see [Link.PathHash]. Returns ErrMalformedRequest
// when no object ID can be extracted or no hash is available at all.
func ParseLink(path, queryHash string) (Link, error) {
	if match := packedLinkPattern.FindStringSubmatch(path); match != nil {
		objectID, err := strconv.ParseInt(match[2], 10, 64)
		if err != nil {
			// Digits too long for int64. No such object can exist.
			return Link{}, fmt.Errorf("parsing object id %q: %w", match[2], ErrMalformedRequest)
		}
		link := Link{ObjectID: objectID, Hash: match[1], PathHash: match[1]}
		if queryHash != "" {
			link.Hash = queryHash
		}
		return link, nil
	}

	match := plainLinkPattern.FindStringSubmatch(path)
	if match == nil {
		return Link{}, fmt.Errorf("path %q: %w", path, ErrMalformedRequest)
	}
	if queryHash == "" {
		return Link{}, fmt.Errorf("path %q carries no hash: %w", path, ErrMalformedRequest)
	}
	objectID, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return Link{}, fmt.Errorf("parsing object id %q: %w", match[1], ErrMalformedRequest)
	}
	return Link{ObjectID: objectID, Hash: queryHash}, nil
}

// ValidateCapability compares the link's hash against the object's
// true capability hash. The comparison is case-sensitive and
// fixed-length; any difference fails with ErrInvalidCapability. This
// must happen before a single payload byte is written.
func ValidateCapability(link Link, properties *upstream.ObjectProperties) error {
	if link.Hash != properties.CapabilityHash() {
		return fmt.Errorf("object %d: %w", link.ObjectID, ErrInvalidCapability)
	}
	return nil
}
