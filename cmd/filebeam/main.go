// Copyright 2026 The Filebeam Authors
// SPDX-License-Identifier: Apache-2.0

// filebeam serves stored files over HTTP as capability-hashed
// streaming links. It runs the range-aware gateway against a local
// chunked object store, and doubles as the operator CLI for ingesting
// files and managing the user registry.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/filebeam-project/filebeam/botlink"
	"github.com/filebeam-project/filebeam/gateway"
	"github.com/filebeam-project/filebeam/lib/config"
	"github.com/filebeam-project/filebeam/lib/process"
	"github.com/filebeam-project/filebeam/lib/registry"
	"github.com/filebeam-project/filebeam/lib/shortlink"
	"github.com/filebeam-project/filebeam/lib/version"
	"github.com/filebeam-project/filebeam/stream"
	"github.com/filebeam-project/filebeam/upstream"
	"github.com/filebeam-project/filebeam/upstream/mockstore"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	var (
		configPath  string
		showVersion bool
		ingestPaths []string
		ingestUser  int64
		listUsers   bool
	)

	flagSet := pflag.NewFlagSet("filebeam", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to filebeam.yaml (overrides FILEBEAM_CONFIG)")
	flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")
	flagSet.StringSliceVar(&ingestPaths, "ingest", nil, "ingest the given files, print their links, and exit")
	flagSet.Int64Var(&ingestUser, "ingest-user", 0, "user ID to record as the owner of ingested files")
	flagSet.BoolVar(&listUsers, "list-users", false, "print the user registry and exit")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		return err
	}

	if showVersion {
		fmt.Printf("filebeam %s\n", version.Info())
		return nil
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := cfg.EnsurePaths(); err != nil {
		return err
	}

	compression, err := mockstore.ParseCompressionTag(cfg.Store.Compression)
	if err != nil {
		return err
	}
	store, err := mockstore.Open(mockstore.Config{
		Root:        cfg.Store.Root,
		ChunkSize:   cfg.Stream.ChunkSize,
		Compression: compression,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	users, err := registry.Open(registry.Config{
		Path:   cfg.Registry.Path,
		Logger: logger,
	})
	if err != nil {
		return err
	}
	defer users.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch {
	case listUsers:
		return printUsers(ctx, users)
	case len(ingestPaths) > 0:
		return ingest(ctx, cfg, store, users, logger, ingestPaths, ingestUser)
	default:
		return serve(ctx, cfg, store, logger)
	}
}

// loadConfig resolves the configuration from the --config flag or the
// FILEBEAM_CONFIG environment variable and validates it.
func loadConfig(configPath string) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// serve runs the streaming gateway until the context is cancelled.
func serve(ctx context.Context, cfg *config.Config, store *mockstore.Store, logger *slog.Logger) error {
	sessions := make([]upstream.Session, cfg.Store.Sessions)
	for i := range sessions {
		sessions[i] = mockstore.NewSession(store, i)
	}

	pool, err := upstream.NewPool(sessions, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	handler, err := gateway.NewHandler(gateway.HandlerConfig{
		Pool: pool,
		Streamers: stream.NewCache(stream.CacheConfig{
			ChunkSize:    cfg.Stream.ChunkSize,
			FetchTimeout: cfg.FetchTimeout(),
			Logger:       logger,
		}),
		Logger:  logger,
		Version: version.Short(),
	})
	if err != nil {
		return err
	}

	server := gateway.NewServer(gateway.ServerConfig{
		Address:         cfg.Gateway.ListenAddress,
		Handler:         handler,
		ShutdownTimeout: cfg.ShutdownTimeout(),
		Logger:          logger,
	})

	logger.Info("filebeam starting",
		"version", version.Info(),
		"address", cfg.Gateway.ListenAddress,
		"sessions", cfg.Store.Sessions,
		"chunk_size", cfg.Stream.ChunkSize,
	)
	return server.Serve(ctx)
}

// ingest stores the given files and prints a ready-to-share message
// for each. When a user ID is supplied, the user is registered on
// first use and banned users are refused.
func ingest(ctx context.Context, cfg *config.Config, store *mockstore.Store, users *registry.Registry, logger *slog.Logger, paths []string, userID int64) error {
	if userID != 0 {
		banned, err := users.IsBanned(ctx, userID)
		if err != nil {
			return err
		}
		if banned {
			return fmt.Errorf("user %d is banned", userID)
		}
		if err := users.Add(ctx, userID, "", time.Now().Unix()); err != nil {
			return err
		}
	}

	builder, err := newLinkBuilder(cfg, logger)
	if err != nil {
		return err
	}

	for _, path := range paths {
		objectID, err := store.IngestFile(path)
		if err != nil {
			return err
		}
		properties, err := store.Properties(objectID)
		if err != nil {
			return err
		}

		links := builder.Shorten(ctx, builder.Links(properties))
		fmt.Printf("%s\n\n", builder.Message(properties, links))
	}
	return nil
}

// newLinkBuilder assembles the link builder, attaching the shortener
// client when one is configured.
func newLinkBuilder(cfg *config.Config, logger *slog.Logger) (*botlink.Builder, error) {
	var shortener *shortlink.Client
	if cfg.Shortener.Enabled {
		var err error
		shortener, err = shortlink.NewClient(shortlink.ClientConfig{
			Host:   cfg.Shortener.Host,
			APIKey: cfg.Shortener.APIKey,
		})
		if err != nil {
			return nil, err
		}
	}

	return botlink.NewBuilder(botlink.BuilderConfig{
		BaseURL:   cfg.Gateway.PublicURL,
		Shortener: shortener,
		Logger:    logger,
	})
}

// printUsers dumps the registry as a plain table.
func printUsers(ctx context.Context, users *registry.Registry) error {
	all, err := users.All(ctx)
	if err != nil {
		return err
	}

	for _, user := range all {
		state := "active"
		if user.Banned {
			state = "banned"
		}
		fmt.Printf("%d\t%s\t%s\t%s\n",
			user.ID,
			user.Name,
			state,
			time.Unix(user.CreatedAt, 0).UTC().Format(time.RFC3339),
		)
	}
	return nil
}
