// Copyright 2026 The Filebeam Authors
// SPDX-License-Identifier: Apache-2.0

package upstream

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
)

// Pool is a fixed set of store sessions with per-session workload
// tracking. Acquire hands out the session with the fewest in-flight
// requests; the returned release function must be called exactly once
// when the request finishes (success or failure) so the counter stays
// honest.
//
// Workload is a placement hint, not a semaphore: the pool never blocks
// and never caps the number of concurrent requests on one session.
//
// Pool is safe for concurrent use.
type Pool struct {
	sessions []Session
	workload []atomic.Int64
	logger   *slog.Logger
}

// ReleaseFunc returns a session acquired from a Pool. Call it exactly
// once, typically via defer.
type ReleaseFunc func()

// NewPool creates a pool over the given sessions. The slice order is
// significant: workload ties are broken by the first session
// encountered, so deterministic placement requires a deterministic
// slice. At least one session is required.
func NewPool(sessions []Session, logger *slog.Logger) (*Pool, error) {
	if len(sessions) == 0 {
		return nil, fmt.Errorf("upstream: pool needs at least one session")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{
		sessions: sessions,
		workload: make([]atomic.Int64, len(sessions)),
		logger:   logger,
	}, nil
}

// Acquire returns the least-loaded session and increments its
// workload counter. Ties go to the lowest-indexed session. The
// returned ReleaseFunc decrements the counter.
func (p *Pool) Acquire() (Session, ReleaseFunc) {
	best := 0
	bestLoad := p.workload[0].Load()
	for i := 1; i < len(p.workload); i++ {
		if load := p.workload[i].Load(); load < bestLoad {
			best, bestLoad = i, load
		}
	}

	p.workload[best].Add(1)
	released := atomic.Bool{}
	release := func() {
		// Double release would skew the counter permanently; guard it.
		if released.CompareAndSwap(false, true) {
			p.workload[best].Add(-1)
		}
	}
	return p.sessions[best], release
}

// Workload returns the current in-flight count for the session at the
// given pool index.
func (p *Pool) Workload(index int) int64 {
	return p.workload[index].Load()
}

// Len returns the number of sessions in the pool.
func (p *Pool) Len() int {
	return len(p.sessions)
}

// Close closes every session in the pool. All errors are collected;
// closing continues past failures so no session leaks.
func (p *Pool) Close() error {
	var errs []error
	for _, session := range p.sessions {
		if err := session.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("upstream: closing pool: %w", errors.Join(errs...))
	}
	return nil
}
