// Copyright 2026 The Filebeam Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides binary entrypoint helpers for Filebeam
// binaries. It centralizes the raw stderr output that happens before or
// after the structured logger exists: fatal error reporting in main()
// for errors from run(). All other output in the gateway goes through
// log/slog.
package process
