/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package backend

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openPGForTest(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("LD_PG_DSN")
	if dsn == "" {
		t.Skip("LD_PG_DSN not set")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("cannot open postgres: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		t.Skipf("postgres not available: %v", err)
	}
	if err := applyMigrations(ctx, db); err != nil {
		_ = db.Close()
		t.Fatalf("apply migrations: %v", err)
	}
	return db
}

func TestPGRepositoryRoundTrip(t *testing.T) {
	db := openPGForTest(t)
	defer func() { _ = db.Close() }()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	repo := PGRepository{DB: db}
	p := testPayload(t, "PG Waybill")
	p.ID = "template-pg-" + time.Now().Format("150405.000000")
	t.Cleanup(func() { _, _ = db.Exec(`DELETE FROM templates WHERE id = $1`, p.ID) })

	require.NoError(t, repo.Create(ctx, p, false))
	assert.True(t, errors.Is(repo.Create(ctx, p, false), ErrConflict))

	p.Name = "PG Waybill renamed"
	require.NoError(t, repo.Update(ctx, p, false))
	got, err := repo.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Name, got.Name)

	list, err := repo.List(ctx, "renamed")
	require.NoError(t, err)
	var found bool
	for _, s := range list {
		if s.ID == p.ID {
			found = true
			assert.Equal(t, int64(2), s.Revision)
		}
	}
	assert.True(t, found)

	// migrations are idempotent
	require.NoError(t, applyMigrations(ctx, db))
}
