// Copyright 2026 The Filebeam Authors
// SPDX-License-Identifier: Apache-2.0

// Package gateway is the HTTP surface of filebeam. It parses share
// links, enforces the capability-hash gate, resolves Range headers,
// and streams object bytes fetched through the upstream session pool.
//
// Every component returns plain errors; translation to HTTP status
// codes happens in exactly one place, the response boundary in
// handler.go. Nothing below that boundary knows about status codes.
package gateway
