/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	applog "vecdraft/internal/log"
	"vecdraft/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	CatalogFileName = "recents.sqlite"

	// catalogSchemaVersion tracks the local SQLite schema. Bump on
	// breaking changes and add a migration step below.
	catalogSchemaVersion = 1
)

// Catalog is the recently-opened-drawings database.
type Catalog struct {
	db *sql.DB
}

// RecentEntry is one catalog row, newest first in listings.
type RecentEntry struct {
	Path     string
	Items    int
	OpenedAt time.Time
}

// DefaultCatalogDir returns the per-user location of the catalog.
func DefaultCatalogDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, "vecdraft"), nil
}

// OpenCatalog ensures the catalog database exists under dir, opens it,
// enables WAL mode, and ensures the meta/version tables exist.
func OpenCatalog(dir string) (*Catalog, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "catalog_open").With(
		slog.String("dir", dir),
	)
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("catalog dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		l.Error("create catalog dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create catalog dir: %w", err)
	}

	path := filepath.Join(dir, CatalogFileName)
	uriPath := filepath.ToSlash(path)
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", uriPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := ensureCatalogSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure catalog schema failed", slog.Any("err", err))
		return nil, err
	}
	l.Info("catalog ready", slog.String("path", path))
	return &Catalog{db: db}, nil
}

// Close releases the underlying database.
func (c *Catalog) Close() error { return c.db.Close() }

// Touch records that path was opened now with the given item count,
// inserting or refreshing its row.
func (c *Catalog) Touch(ctx context.Context, path string, items int) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO recents (path, items, opened_at) VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET items=excluded.items, opened_at=excluded.opened_at;`,
		abs, items, now)
	if err != nil {
		return fmt.Errorf("touch recent: %w", err)
	}
	return nil
}

// Recent lists up to limit entries, most recently opened first.
func (c *Catalog) Recent(ctx context.Context, limit int) ([]RecentEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := c.db.QueryContext(ctx, `
		SELECT path, items, opened_at FROM recents
		ORDER BY opened_at DESC LIMIT ?;`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recents: %w", err)
	}
	defer rows.Close()
	var out []RecentEntry
	for rows.Next() {
		var e RecentEntry
		var ts string
		if err := rows.Scan(&e.Path, &e.Items, &ts); err != nil {
			return nil, fmt.Errorf("scan recent: %w", err)
		}
		if t, terr := time.Parse(time.RFC3339, ts); terr == nil {
			e.OpenedAt = t
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recents: %w", err)
	}
	return out, nil
}

// Forget drops path from the catalog; unknown paths are a no-op.
func (c *Catalog) Forget(ctx context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if _, err := c.db.ExecContext(ctx, `DELETE FROM recents WHERE path=?;`, abs); err != nil {
		return fmt.Errorf("forget recent: %w", err)
	}
	return nil
}

func ensureCatalogSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS recents (
			path      TEXT PRIMARY KEY,
			items     INTEGER NOT NULL,
			opened_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_recents_opened ON recents(opened_at);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure catalog schema: %w", err)
		}
	}

	// Seed or update single-row version info
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var curSchema int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&curSchema)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, catalogSchemaVersion, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}
