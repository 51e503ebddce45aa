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

	"labeldesigner/internal/domain"
	applog "labeldesigner/internal/log"
	"labeldesigner/internal/payload"
	"labeldesigner/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	CatalogFileName = "catalog.sqlite"

	// schemaVersion tracks the catalog schema. Bump it together with a
	// migration step in runMigrations.
	schemaVersion = 2
)

// Entry is one catalogued template.
type Entry struct {
	ID        string
	Name      string
	Size      string
	Root      string
	Elements  int
	UpdatedAt string
	Default   bool
}

// Catalog indexes template projects stored anywhere on disk. It is derived
// data: every row can be rebuilt from the template.json files it points at.
type Catalog struct {
	db   *sql.DB
	path string
}

// CatalogPath returns the catalog file inside dir.
func CatalogPath(dir string) string { return filepath.Join(dir, CatalogFileName) }

// OpenCatalog opens or creates the catalog at path with WAL enabled and the
// schema migrated to the current version.
func OpenCatalog(path string) (*Catalog, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "catalog_open").With(
		slog.String("path", path),
	)
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("catalog path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		l.Error("create catalog dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create catalog dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
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
	if err := ensureMetaAndVersion(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure meta/version failed", slog.Any("err", err))
		return nil, err
	}
	if err := ensureCatalogSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure catalog schema failed", slog.Any("err", err))
		return nil, err
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}
	l.Debug("catalog ready")
	return &Catalog{db: db, path: path}, nil
}

// Close releases the database.
func (c *Catalog) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Path is the catalog file.
func (c *Catalog) Path() string { return c.path }

func ensureMetaAndVersion(ctx context.Context, db *sql.DB) error {
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
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var cur int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, schemaVersion, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		// keep the stored schema so runMigrations can step it forward
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

func ensureCatalogSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS templates (
			id         TEXT    PRIMARY KEY,
			name       TEXT    NOT NULL,
			size       TEXT    NOT NULL,
			root       TEXT    NOT NULL,
			elements   INTEGER NOT NULL DEFAULT 0,
			updated_at TEXT    NOT NULL,
			is_default INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE INDEX IF NOT EXISTS idx_templates_root ON templates(root);`,
		`CREATE INDEX IF NOT EXISTS idx_templates_updated ON templates(updated_at);`,
		`CREATE VIRTUAL TABLE IF NOT EXISTS fts_templates USING fts5(
			id UNINDEXED,
			name,
			body,
			tokenize = 'unicode61'
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure catalog schema: %w", err)
		}
	}
	return nil
}

// runMigrations applies incremental schema steps up to schemaVersion.
func runMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if cur >= schemaVersion {
		return nil
	}
	for cur < schemaVersion {
		next := cur + 1
		var stmts []string
		switch next {
		case 2:
			// default template flag and recency ordering
			stmts = []string{
				`ALTER TABLE templates ADD COLUMN is_default INTEGER NOT NULL DEFAULT 0;`,
				`CREATE INDEX IF NOT EXISTS idx_templates_updated ON templates(updated_at);`,
			}
		}
		if err := applyMigration(ctx, db, next, stmts); err != nil {
			return err
		}
		cur = next
	}
	return nil
}

func applyMigration(ctx context.Context, db *sql.DB, next int, stmts []string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %d: %w", next, err)
	}
	for _, q := range stmts {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d stmt failed: %w", next, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("migration %d update version: %w", next, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migration %d commit: %w", next, err)
	}
	return nil
}

// searchBody is the text indexed for a template: every static content string.
func searchBody(p payload.SavePayload) string {
	var parts []string
	for _, e := range p.Elements {
		if e.Type == domain.TypeText || e.Type == domain.TypeField {
			if c := strings.TrimSpace(e.Content()); c != "" {
				parts = append(parts, c)
			}
		}
	}
	return strings.Join(parts, "\n")
}

// language=SQL
// dialect=SQLite
const upsertTemplateSQL = `INSERT INTO templates(id, name, size, root, elements, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET name=excluded.name, size=excluded.size, root=excluded.root,
	elements=excluded.elements, updated_at=excluded.updated_at`

// Upsert records p as stored under root.
func (c *Catalog) Upsert(ctx context.Context, root string, p payload.SavePayload) error {
	if p.ID == "" {
		return errors.New("template id is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, upsertTemplateSQL, p.ID, p.Name, p.Size, abs, len(p.Elements), p.UpdatedAt); err != nil {
		return fmt.Errorf("upsert template: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM fts_templates WHERE id = ?`, p.ID); err != nil {
		return fmt.Errorf("clear search row: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO fts_templates(id, name, body) VALUES (?, ?, ?)`, p.ID, p.Name, searchBody(p)); err != nil {
		return fmt.Errorf("insert search row: %w", err)
	}
	return tx.Commit()
}

// Remove drops id from the catalog. Unknown ids are not an error.
func (c *Catalog) Remove(ctx context.Context, id string) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin remove: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, `DELETE FROM templates WHERE id = ?`, id); err != nil {
		return fmt.Errorf("remove template: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM fts_templates WHERE id = ?`, id); err != nil {
		return fmt.Errorf("remove search row: %w", err)
	}
	return tx.Commit()
}

const entryColumns = `id, name, size, root, elements, updated_at, is_default`

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	defer func() { _ = rows.Close() }()
	var out []Entry
	for rows.Next() {
		var e Entry
		var def int
		if err := rows.Scan(&e.ID, &e.Name, &e.Size, &e.Root, &e.Elements, &e.UpdatedAt, &def); err != nil {
			return nil, err
		}
		e.Default = def != 0
		out = append(out, e)
	}
	return out, rows.Err()
}

// List returns every entry, most recently updated first.
func (c *Catalog) List(ctx context.Context) ([]Entry, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT `+entryColumns+` FROM templates ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return scanEntries(rows)
}

// Get returns the entry for id or ErrNoTemplate.
func (c *Catalog) Get(ctx context.Context, id string) (Entry, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT `+entryColumns+` FROM templates WHERE id = ?`, id)
	if err != nil {
		return Entry{}, fmt.Errorf("get template: %w", err)
	}
	es, err := scanEntries(rows)
	if err != nil {
		return Entry{}, err
	}
	if len(es) == 0 {
		return Entry{}, fmt.Errorf("%w: %s", ErrNoTemplate, id)
	}
	return es[0], nil
}

// SetDefault marks id as the one default template.
func (c *Catalog) SetDefault(ctx context.Context, id string) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin set default: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	var n int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM templates WHERE id = ?`, id).Scan(&n); err != nil {
		return fmt.Errorf("check default: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNoTemplate, id)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE templates SET is_default = CASE WHEN id = ? THEN 1 ELSE 0 END`, id); err != nil {
		return fmt.Errorf("set default: %w", err)
	}
	return tx.Commit()
}

// Default returns the default template or ErrNoTemplate.
func (c *Catalog) Default(ctx context.Context) (Entry, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT `+entryColumns+` FROM templates WHERE is_default = 1 LIMIT 1`)
	if err != nil {
		return Entry{}, fmt.Errorf("default template: %w", err)
	}
	es, err := scanEntries(rows)
	if err != nil {
		return Entry{}, err
	}
	if len(es) == 0 {
		return Entry{}, ErrNoTemplate
	}
	return es[0], nil
}

// Search matches text (FTS5 syntax) against names and static contents.
// An empty query lists everything.
func (c *Catalog) Search(ctx context.Context, text string, limit int) ([]Entry, error) {
	if strings.TrimSpace(text) == "" {
		return c.List(ctx)
	}
	if limit <= 0 {
		limit = 50
	}
	q := `SELECT t.id, t.name, t.size, t.root, t.elements, t.updated_at, t.is_default
FROM fts_templates f JOIN templates t ON t.id = f.id
WHERE fts_templates MATCH ?
ORDER BY rank LIMIT ?`
	rows, err := c.db.QueryContext(ctx, q, text, limit)
	if err != nil {
		return nil, fmt.Errorf("search templates: %w", err)
	}
	return scanEntries(rows)
}

// Rebuild clears the catalog and re-indexes the template projects at roots.
// Roots that do not open are skipped and reported in the returned count.
func (c *Catalog) Rebuild(ctx context.Context, roots []string) (skipped int, err error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "catalog_rebuild")
	if _, err := c.db.ExecContext(ctx, `DELETE FROM templates`); err != nil {
		return 0, fmt.Errorf("clear templates: %w", err)
	}
	if _, err := c.db.ExecContext(ctx, `DELETE FROM fts_templates`); err != nil {
		return 0, fmt.Errorf("clear search rows: %w", err)
	}
	for _, r := range roots {
		th, err := Open(r)
		if err != nil {
			l.Warn("skip template", slog.String("root", r), slog.Any("err", err))
			skipped++
			continue
		}
		if err := c.Upsert(ctx, th.Root, th.Payload); err != nil {
			return skipped, err
		}
	}
	return skipped, nil
}
