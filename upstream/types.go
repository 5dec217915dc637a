// Copyright 2026 The Filebeam Authors
// SPDX-License-Identifier: Apache-2.0

package upstream

// CapabilityHashLength is the number of leading content-hash
// characters that form an object's capability hash. The capability
// hash is the sole access-control token for an object: a URL that
// carries the right hash can fetch the bytes, one that doesn't
// cannot. Six characters of the content hash are enough to make
// guessing impractical for the threat model (links shared in chats)
// while keeping URLs short.
const CapabilityHashLength = 6

// ObjectProperties describes a stored object. Properties are fetched
// fresh from the store for every request — the store may mutate or
// expire objects at any time, so nothing here is cached beyond the
// request that fetched it.
type ObjectProperties struct {
	// ID is the store-assigned numeric identifier of the object.
	ID int64

	// ContentHash is the content-derived identifier assigned by the
	// store. Its leading characters form the capability hash.
	ContentHash string

	// Size is the object length in bytes.
	Size int64

	// MimeType is the store-recorded media type. May be empty, in
	// which case the gateway guesses from the file name.
	MimeType string

	// FileName is the original upload name. May be empty.
	FileName string
}

// CapabilityHash returns the capability hash for this object: the
// first [CapabilityHashLength] characters of the content hash. If the
// content hash is shorter than that (a malformed store record), the
// whole hash is returned and validation will simply never match.
func (p *ObjectProperties) CapabilityHash() string {
	if len(p.ContentHash) < CapabilityHashLength {
		return p.ContentHash
	}
	return p.ContentHash[:CapabilityHashLength]
}
