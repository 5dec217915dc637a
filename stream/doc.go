// Copyright 2026 The Filebeam Authors
// SPDX-License-Identifier: Apache-2.0

// Package stream turns byte-range requests into sequences of aligned
// upstream chunk fetches.
//
// The remote object store only serves fixed-size chunks starting on
// chunk boundaries, while HTTP clients ask for arbitrary byte ranges.
// [PlanChunks] computes the aligned fetch window and the trim amounts
// for the first and last chunk; [Reader] executes the plan lazily, one
// chunk per pull, so a client that stops reading stops the upstream
// fetches with it.
package stream
