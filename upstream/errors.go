// Copyright 2026 The Filebeam Authors
// SPDX-License-Identifier: Apache-2.0

package upstream

import (
	"errors"
	"fmt"
)

// NotFoundError reports that the store has no object with the given
// ID. Callers can use errors.As to extract the ID, or [IsNotFound]
// when only the classification matters.
type NotFoundError struct {
	// ObjectID is the identifier that failed to resolve.
	ObjectID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("upstream: object %d not found", e.ObjectID)
}

// IsNotFound reports whether err indicates a missing object.
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}

// FetchError wraps a transport-level failure while fetching object
// data. It carries enough position information to log a useful
// security/debugging trail without the caller re-deriving it.
type FetchError struct {
	// ObjectID is the object being fetched.
	ObjectID int64

	// Offset is the byte offset of the failed chunk fetch.
	Offset int64

	// Err is the underlying transport error.
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("upstream: fetching object %d at offset %d: %v", e.ObjectID, e.Offset, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
