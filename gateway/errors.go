// Copyright 2026 The Filebeam Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"errors"
	"net/http"

	"github.com/filebeam-project/filebeam/upstream"
)

// Request-level failure classes. These are the only errors the
// response boundary translates specially; everything else maps to a
// 500 with full server-side logging and a generic client message.
var (
	// ErrMalformedRequest means no object ID could be extracted from
	// the request, or a capability hash was required but absent.
	ErrMalformedRequest = errors.New("invalid link format or missing hash")

	// ErrInvalidCapability means the supplied capability hash does
	// not match the object's content-derived hash. This is the access
	// control failure: nothing about the object is revealed beyond
	// its existence.
	ErrInvalidCapability = errors.New("invalid hash: access denied")

	// ErrUnsatisfiableRange means a syntactically valid Range header
	// selected bytes outside the object. An expected boundary case,
	// not a fault.
	ErrUnsatisfiableRange = errors.New("range not satisfiable")
)

// statusFor maps an error to the HTTP status code the client sees.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrMalformedRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidCapability):
		return http.StatusForbidden
	case upstream.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, ErrUnsatisfiableRange):
		return http.StatusRequestedRangeNotSatisfiable
	default:
		return http.StatusInternalServerError
	}
}

// clientMessage returns the response body text for an error. Internal
// faults get a fixed message — details stay in the server log.
func clientMessage(err error) string {
	switch statusFor(err) {
	case http.StatusInternalServerError:
		return "internal server error"
	case http.StatusNotFound:
		return "file not found"
	case http.StatusRequestedRangeNotSatisfiable:
		return "416: Range Not Satisfiable"
	default:
		return err.Error()
	}
}
