// Copyright 2026 The Filebeam Authors
// SPDX-License-Identifier: Apache-2.0

// Package upstream defines the contract between the gateway and the
// remote object store that holds the actual file bytes.
//
// The store is reached through a fixed set of authenticated sessions.
// Opening a session is expensive (handshake, authentication) so
// sessions are created once at startup and shared across requests. A
// [Pool] tracks the in-flight workload of each session and hands out
// the least-loaded one per request.
//
// The [Session] interface deliberately exposes only two data
// operations: metadata lookup and aligned chunk fetch. Connection
// handshake, authentication, and protocol framing are implementation
// details of the concrete session type and never leak into the
// gateway.
package upstream
