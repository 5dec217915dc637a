// Copyright 2026 The Filebeam Authors
// SPDX-License-Identifier: Apache-2.0

// Package registry tracks the users allowed to mint links through the
// gateway's companion bot. It is a thin SQLite-backed table: user IDs
// come from the chat platform, and a banned flag lets operators cut off
// abusive users without deleting their history.
package registry

import (
	"context"
	"fmt"
	"log/slog"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/filebeam-project/filebeam/lib/sqlitepool"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id         INTEGER PRIMARY KEY,
	name       TEXT NOT NULL DEFAULT '',
	banned     INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL
);
`

// User is one registered user.
type User struct {
	// ID is the chat-platform user identifier.
	ID int64

	// Name is a display name, informational only.
	Name string

	// Banned marks the user as blocked from minting links.
	Banned bool

	// CreatedAt is the Unix timestamp of first registration.
	CreatedAt int64
}

// Registry is the user registry backed by a SQLite database.
//
// Registry is safe for concurrent use; the underlying pool serializes
// writes and allows concurrent reads.
type Registry struct {
	pool   *sqlitepool.Pool
	logger *slog.Logger
}

// Config holds the parameters for opening a registry.
type Config struct {
	// Path is the filesystem path to the SQLite database file. The
	// parent directory must exist. Required.
	Path string

	// PoolSize is the number of connections in the pool. Defaults to
	// 4 if zero or negative.
	PoolSize int

	// Logger receives operational messages. Required.
	Logger *slog.Logger
}

// Open creates a registry backed by SQLite. The database file and the
// users table are created if they do not exist.
func Open(cfg Config) (*Registry, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("registry: Logger is required")
	}

	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = 4
	}

	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:     cfg.Path,
		PoolSize: poolSize,
		Logger:   cfg.Logger,
		OnConnect: func(conn *sqlite.Conn) error {
			return sqlitex.ExecuteScript(conn, schema, nil)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}

	return &Registry{pool: pool, logger: cfg.Logger}, nil
}

// Close closes the underlying connection pool.
func (r *Registry) Close() error {
	return r.pool.Close()
}

// Add registers a user. Re-adding an existing user updates the name
// and leaves the banned flag and creation time untouched.
func (r *Registry) Add(ctx context.Context, id int64, name string, createdAt int64) error {
	conn, err := r.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("registry: add: %w", err)
	}
	defer r.pool.Put(conn)

	err = sqlitex.Execute(conn, `
		INSERT INTO users (id, name, created_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name`,
		&sqlitex.ExecOptions{Args: []any{id, name, createdAt}})
	if err != nil {
		return fmt.Errorf("registry: add user %d: %w", id, err)
	}
	return nil
}

// Exists reports whether the user is registered.
func (r *Registry) Exists(ctx context.Context, id int64) (bool, error) {
	conn, err := r.pool.Take(ctx)
	if err != nil {
		return false, fmt.Errorf("registry: exists: %w", err)
	}
	defer r.pool.Put(conn)

	var found bool
	err = sqlitex.Execute(conn, "SELECT 1 FROM users WHERE id = ?", &sqlitex.ExecOptions{
		Args: []any{id},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			found = true
			return nil
		},
	})
	if err != nil {
		return false, fmt.Errorf("registry: exists %d: %w", id, err)
	}
	return found, nil
}

// IsBanned reports whether the user is registered and banned. An
// unknown user is not banned.
func (r *Registry) IsBanned(ctx context.Context, id int64) (bool, error) {
	conn, err := r.pool.Take(ctx)
	if err != nil {
		return false, fmt.Errorf("registry: is banned: %w", err)
	}
	defer r.pool.Put(conn)

	var banned bool
	err = sqlitex.Execute(conn, "SELECT banned FROM users WHERE id = ?", &sqlitex.ExecOptions{
		Args: []any{id},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			banned = stmt.ColumnInt(0) != 0
			return nil
		},
	})
	if err != nil {
		return false, fmt.Errorf("registry: is banned %d: %w", id, err)
	}
	return banned, nil
}

// SetBanned sets or clears the banned flag. No-op for unknown users.
func (r *Registry) SetBanned(ctx context.Context, id int64, banned bool) error {
	conn, err := r.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("registry: set banned: %w", err)
	}
	defer r.pool.Put(conn)

	err = sqlitex.Execute(conn, "UPDATE users SET banned = ? WHERE id = ?", &sqlitex.ExecOptions{
		Args: []any{banned, id},
	})
	if err != nil {
		return fmt.Errorf("registry: set banned %d: %w", id, err)
	}
	r.logger.Info("user ban flag updated", "user_id", id, "banned", banned)
	return nil
}

// Remove deletes the user. No-op for unknown users.
func (r *Registry) Remove(ctx context.Context, id int64) error {
	conn, err := r.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("registry: remove: %w", err)
	}
	defer r.pool.Put(conn)

	err = sqlitex.Execute(conn, "DELETE FROM users WHERE id = ?", &sqlitex.ExecOptions{
		Args: []any{id},
	})
	if err != nil {
		return fmt.Errorf("registry: remove %d: %w", id, err)
	}
	return nil
}

// Count returns the number of registered users.
func (r *Registry) Count(ctx context.Context) (int64, error) {
	conn, err := r.pool.Take(ctx)
	if err != nil {
		return 0, fmt.Errorf("registry: count: %w", err)
	}
	defer r.pool.Put(conn)

	var count int64
	err = sqlitex.Execute(conn, "SELECT COUNT(*) FROM users", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			count = stmt.ColumnInt64(0)
			return nil
		},
	})
	if err != nil {
		return 0, fmt.Errorf("registry: count: %w", err)
	}
	return count, nil
}

// All returns every registered user ordered by creation time.
func (r *Registry) All(ctx context.Context) ([]User, error) {
	conn, err := r.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("registry: all: %w", err)
	}
	defer r.pool.Put(conn)

	var users []User
	err = sqlitex.Execute(conn, `
		SELECT id, name, banned, created_at FROM users
		ORDER BY created_at, id`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				users = append(users, User{
					ID:        stmt.ColumnInt64(0),
					Name:      stmt.ColumnText(1),
					Banned:    stmt.ColumnInt(2) != 0,
					CreatedAt: stmt.ColumnInt64(3),
				})
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("registry: all: %w", err)
	}
	return users, nil
}
