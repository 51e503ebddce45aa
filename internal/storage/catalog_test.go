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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"labeldesigner/internal/payload"
)

func openTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := OpenCatalog(CatalogPath(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCatalogUsesWAL(t *testing.T) {
	c := openTestCatalog(t)
	var mode string
	require.NoError(t, c.db.QueryRow("PRAGMA journal_mode;").Scan(&mode))
	assert.Contains(t, []string{"wal", "WAL"}, mode)

	var schema int
	require.NoError(t, c.db.QueryRow("SELECT schema FROM version WHERE id=1").Scan(&schema))
	assert.Equal(t, schemaVersion, schema)
}

func TestCatalogUpsertListGet(t *testing.T) {
	ctx := context.Background()
	c := openTestCatalog(t)

	a := samplePayload("Alpha")
	a.ID = "template-1"
	a.UpdatedAt = "2025-03-01T10:00:00.000Z"
	b := samplePayload("Beta")
	b.ID = "template-2"
	b.UpdatedAt = "2025-03-02T10:00:00.000Z"

	require.NoError(t, c.Upsert(ctx, "/tmp/alpha", a))
	require.NoError(t, c.Upsert(ctx, "/tmp/beta", b))

	es, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, es, 2)
	assert.Equal(t, "template-2", es[0].ID)
	assert.Equal(t, len(b.Elements), es[0].Elements)

	a.Name = "Alpha 2"
	require.NoError(t, c.Upsert(ctx, "/tmp/alpha", a))
	got, err := c.Get(ctx, "template-1")
	require.NoError(t, err)
	assert.Equal(t, "Alpha 2", got.Name)
	assert.Equal(t, "A4", got.Size)

	_, err = c.Get(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNoTemplate))

	noID := samplePayload("no id")
	noID.ID = ""
	err = c.Upsert(ctx, "/tmp/x", noID)
	require.Error(t, err)
	es, err = c.List(ctx)
	require.NoError(t, err)
	assert.Len(t, es, 2)
}

func TestCatalogDefault(t *testing.T) {
	ctx := context.Background()
	c := openTestCatalog(t)
	for i := 1; i <= 2; i++ {
		p := samplePayload(fmt.Sprintf("T%d", i))
		p.ID = fmt.Sprintf("template-%d", i)
		require.NoError(t, c.Upsert(ctx, "/tmp", p))
	}

	_, err := c.Default(ctx)
	assert.True(t, errors.Is(err, ErrNoTemplate))

	require.NoError(t, c.SetDefault(ctx, "template-1"))
	require.NoError(t, c.SetDefault(ctx, "template-2"))
	d, err := c.Default(ctx)
	require.NoError(t, err)
	assert.Equal(t, "template-2", d.ID)
	assert.True(t, d.Default)

	err = c.SetDefault(ctx, "nope")
	assert.True(t, errors.Is(err, ErrNoTemplate))
	d, err = c.Default(ctx)
	require.NoError(t, err)
	assert.Equal(t, "template-2", d.ID)
}

func TestCatalogSearchAndRemove(t *testing.T) {
	ctx := context.Background()
	c := openTestCatalog(t)
	p := samplePayload("Waybill")
	p.ID = "template-9"
	require.NoError(t, c.Upsert(ctx, "/tmp", p))

	es, err := c.Search(ctx, "sender", 10)
	require.NoError(t, err)
	require.Len(t, es, 1)
	assert.Equal(t, "template-9", es[0].ID)

	es, err = c.Search(ctx, "waybill", 10)
	require.NoError(t, err)
	assert.Len(t, es, 1)

	es, err = c.Search(ctx, "zebra", 10)
	require.NoError(t, err)
	assert.Empty(t, es)

	require.NoError(t, c.Remove(ctx, "template-9"))
	require.NoError(t, c.Remove(ctx, "template-9"))
	es, err = c.Search(ctx, "waybill", 10)
	require.NoError(t, err)
	assert.Empty(t, es)
}

func TestCatalogRebuildFromProjects(t *testing.T) {
	ctx := context.Background()
	c := openTestCatalog(t)
	dir := t.TempDir()
	good := filepath.Join(dir, "good")
	th, err := InitTemplate(good, samplePayload("Good"))
	require.NoError(t, err)
	require.NoError(t, c.Upsert(ctx, "/stale", samplePayloadWithID("template-stale")))

	skipped, err := c.Rebuild(ctx, []string{good, filepath.Join(dir, "missing")})
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	es, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, es, 1)
	assert.Equal(t, th.Payload.ID, es[0].ID)
}

func samplePayloadWithID(id string) payload.SavePayload {
	p := samplePayload(id)
	p.ID = id
	return p
}

// TestCatalogMigratesV1 opens a catalog created before the default flag existed.
func TestCatalogMigratesV1(t *testing.T) {
	path := CatalogPath(t.TempDir())
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)", filepath.ToSlash(path)))
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	stmts := []string{
		`CREATE TABLE meta (key TEXT PRIMARY KEY, value TEXT NOT NULL);`,
		`CREATE TABLE version (id INTEGER PRIMARY KEY CHECK(id=1), schema INTEGER NOT NULL, app TEXT, created_at TEXT NOT NULL, updated_at TEXT NOT NULL);`,
		`INSERT INTO version VALUES(1, 1, 'test', '2024-01-01T00:00:00Z', '2024-01-01T00:00:00Z');`,
		`CREATE TABLE templates (id TEXT PRIMARY KEY, name TEXT NOT NULL, size TEXT NOT NULL, root TEXT NOT NULL, elements INTEGER NOT NULL DEFAULT 0, updated_at TEXT NOT NULL);`,
		`INSERT INTO templates VALUES('template-old', 'Old', 'A5', '/old', 3, '2024-01-01T00:00:00.000Z');`,
	}
	for _, q := range stmts {
		_, err := db.ExecContext(ctx, q)
		require.NoError(t, err, q)
	}
	require.NoError(t, db.Close())

	c, err := OpenCatalog(path)
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.SetDefault(ctx, "template-old"))
	d, err := c.Default(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Old", d.Name)
}
