// Copyright 2026 The Filebeam Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/filebeam-project/filebeam/stream"
	"github.com/filebeam-project/filebeam/upstream"
)

// Handler routes and serves all gateway requests. It owns no upstream
// state itself — the session pool and streamer cache are injected so
// their lifecycle stays with the process, not with any request.
type Handler struct {
	pool      *upstream.Pool
	streamers *stream.Cache
	logger    *slog.Logger
	version   string
	startTime time.Time
	mux       *http.ServeMux
}

// HandlerConfig holds the collaborators for a Handler.
type HandlerConfig struct {
	// Pool is the upstream session pool. Required.
	Pool *upstream.Pool

	// Streamers is the per-session streamer cache. Required.
	Streamers *stream.Cache

	// Logger receives request logging. If nil, slog.Default() is used.
	Logger *slog.Logger

	// Version is reported on the status banner.
	Version string
}

// NewHandler creates the gateway handler and its routes.
func NewHandler(config HandlerConfig) (*Handler, error) {
	if config.Pool == nil {
		return nil, fmt.Errorf("gateway: Pool is required")
	}
	if config.Streamers == nil {
		return nil, fmt.Errorf("gateway: Streamers is required")
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	handler := &Handler{
		pool:      config.Pool,
		streamers: config.Streamers,
		logger:    logger,
		version:   config.Version,
		startTime: time.Now(),
		mux:       http.NewServeMux(),
	}

	// GET patterns also match HEAD; the stream path answers HEAD with
	// headers only. The wildcard pattern would swallow "/" too, so
	// the banner registers the exact-root pattern.
	handler.mux.HandleFunc("GET /{$}", handler.handleStatus)
	handler.mux.HandleFunc("GET /watch/{path...}", handler.handleWatch)
	handler.mux.HandleFunc("GET /{path...}", handler.handleStream)

	return handler, nil
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// handleStatus serves the plain-text liveness banner.
func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "Filebeam gateway is running!\n\nVersion: %s\nUptime: %s\n",
		h.version, readableDuration(time.Since(h.startTime)))
}

// handleWatch serves the HTML viewer page. It validates the same
// id/hash pair as the streaming path — the page must not render for a
// link that could not stream.
func (h *Handler) handleWatch(w http.ResponseWriter, r *http.Request) {
	logger := h.requestLogger(r)

	link, properties, _, release, err := h.resolveObject(r, logger)
	if err != nil {
		h.writeError(w, logger, err)
		return
	}
	defer release()

	meta := resolveContentMeta(properties)
	streamURL := fmt.Sprintf("/%s%d", link.Hash, link.ObjectID)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	if r.Method == http.MethodHead {
		return
	}
	if err := renderWatchPage(w, meta, streamURL); err != nil {
		logger.Error("rendering watch page", "object_id", link.ObjectID, "error", err)
	}
}

// handleStream serves object bytes, honouring Range requests.
func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	logger := h.requestLogger(r)

	link, properties, streamer, release, err := h.resolveObject(r, logger)
	if err != nil {
		h.writeError(w, logger, err)
		return
	}
	defer release()

	byteRange, err := ResolveRange(r.Header.Get("Range"), properties.Size)
	if err != nil {
		// 416 must advertise the satisfiable bounds.
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", properties.Size))
		h.writeError(w, logger, err)
		return
	}

	meta := resolveContentMeta(properties)
	writeStreamHeaders(w, meta, byteRange, properties.Size)
	w.WriteHeader(streamStatus(byteRange))
	if r.Method == http.MethodHead {
		return
	}

	reader := streamer.OpenRange(r.Context(), link.ObjectID, byteRange.From, byteRange.Until)
	defer reader.Close()

	written, err := io.Copy(w, reader)
	if err != nil {
		// A cancelled request context means the client went away —
		// normal termination, not a fault. Anything else is an
		// upstream failure mid-stream; the headers are long gone, so
		// the only honest move is to stop writing and let the server
		// close the connection short.
		if r.Context().Err() != nil || errors.Is(err, context.Canceled) {
			logger.Info("client disconnected",
				"object_id", link.ObjectID,
				"bytes_sent", written,
			)
			return
		}
		logger.Error("stream aborted",
			"object_id", link.ObjectID,
			"bytes_sent", written,
			"error", err,
		)
		return
	}

	logger.Debug("stream complete",
		"object_id", link.ObjectID,
		"bytes_sent", written,
		"partial", byteRange.Partial,
	)
}

// resolveObject runs the shared front half of both object routes:
// parse the link, pick the least-loaded session, fetch metadata, and
// enforce the capability gate. On success the caller owns the release
// function (which returns the session's workload slot); on error
// everything is already released.
func (h *Handler) resolveObject(r *http.Request, logger *slog.Logger) (Link, *upstream.ObjectProperties, *stream.Streamer, upstream.ReleaseFunc, error) {
	link, err := ParseLink(r.PathValue("path"), r.URL.Query().Get("hash"))
	if err != nil {
		return Link{}, nil, nil, nil, err
	}
	if link.HashConflict() {
		// Query wins over a disagreeing path hash; the mismatch is
		// worth an audit trail because such links are either stale or
		// hand-edited.
		logger.Warn("hash mismatch between path and query",
			"object_id", link.ObjectID,
			"path_hash", link.PathHash,
			"query_hash", link.Hash,
		)
	}

	session, release := h.pool.Acquire()
	streamer := h.streamers.Get(session)

	properties, err := streamer.Properties(r.Context(), link.ObjectID)
	if err != nil {
		release()
		return Link{}, nil, nil, nil, err
	}

	if err := ValidateCapability(link, properties); err != nil {
		release()
		logger.Warn("invalid capability hash",
			"object_id", link.ObjectID,
			"supplied_hash", link.Hash,
			"remote", r.RemoteAddr,
		)
		return Link{}, nil, nil, nil, err
	}

	return link, properties, streamer, release, nil
}

// requestLogger returns the handler logger annotated with a request
// ID so multi-line request traces correlate.
func (h *Handler) requestLogger(r *http.Request) *slog.Logger {
	return h.logger.With(
		"request_id", uuid.NewString(),
		"method", r.Method,
		"path", r.URL.Path,
	)
}

// writeError is the response boundary: the only place an error
// becomes a status code. Internal faults are logged with full context
// and surface as a generic 500; expected failures are logged lightly
// at the call site and pass their own message through.
func (h *Handler) writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
	}
	http.Error(w, clientMessage(err), status)
}
