// Copyright 2026 The Filebeam Authors
// SPDX-License-Identifier: Apache-2.0

// Package botlink composes the user-facing links and reply text for
// objects served by the gateway. A chat bot that receives a file hands
// the stored object's properties to a Builder and gets back the watch
// and download URLs, optionally shortened, plus a ready-to-send
// message.
package botlink

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/filebeam-project/filebeam/lib/shortlink"
	"github.com/filebeam-project/filebeam/upstream"
)

// Links holds the two URLs minted for one object.
type Links struct {
	// Watch opens the in-browser viewer page.
	Watch string

	// Download streams the raw bytes.
	Download string
}

// Builder mints links under a fixed public base URL.
type Builder struct {
	baseURL   string
	shortener *shortlink.Client
	logger    *slog.Logger
}

// BuilderConfig configures a Builder.
type BuilderConfig struct {
	// BaseURL is the gateway's externally visible base URL, scheme
	// and host with no trailing slash. Required.
	BaseURL string

	// Shortener, when set, is used to shorten minted links. Nil
	// leaves links long.
	Shortener *shortlink.Client

	// Logger receives shortening failures. If nil, the default
	// logger is used.
	Logger *slog.Logger
}

// NewBuilder creates a link builder.
func NewBuilder(config BuilderConfig) (*Builder, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("botlink: BaseURL is required")
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		baseURL:   strings.TrimSuffix(config.BaseURL, "/"),
		shortener: config.Shortener,
		logger:    logger,
	}, nil
}

// Links builds the watch and download URLs for an object. Both carry
// the capability hash as a query parameter and embed the file name in
// the path so saved files keep their names.
func (b *Builder) Links(properties *upstream.ObjectProperties) Links {
	hash := properties.CapabilityHash()
	name := url.PathEscape(properties.FileName)
	if name == "" {
		name = "file"
	}

	return Links{
		Watch:    fmt.Sprintf("%s/watch/%d/%s?hash=%s", b.baseURL, properties.ID, name, hash),
		Download: fmt.Sprintf("%s/%d/%s?hash=%s", b.baseURL, properties.ID, name, hash),
	}
}

// Shorten runs both links through the configured shortener. Each link
// falls back to its long form when shortening fails; minting links
// must never break because a third-party service is down.
func (b *Builder) Shorten(ctx context.Context, links Links) Links {
	if b.shortener == nil {
		return links
	}
	return Links{
		Watch:    b.shortenOne(ctx, links.Watch),
		Download: b.shortenOne(ctx, links.Download),
	}
}

func (b *Builder) shortenOne(ctx context.Context, link string) string {
	short, err := b.shortener.Shorten(ctx, link)
	if err != nil {
		b.logger.Warn("link shortening failed, using long link", "error", err)
		return link
	}
	return short
}

// Message renders the reply text sent back to the user who shared the
// file.
func (b *Builder) Message(properties *upstream.ObjectProperties, links Links) string {
	name := properties.FileName
	if name == "" {
		name = "your file"
	}

	return fmt.Sprintf("%s (%s)\n\nWatch: %s\nDownload: %s",
		name,
		humanize.Bytes(uint64(properties.Size)),
		links.Watch,
		links.Download,
	)
}
