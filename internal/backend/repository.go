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
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"labeldesigner/internal/payload"
)

var (
	ErrNotFound = errors.New("template not found")
	ErrConflict = errors.New("template already exists")
)

// Summary is the list projection of a stored template.
type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Size      string    `json:"size"`
	Revision  int64     `json:"revision"`
	Default   bool      `json:"isDefault"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Repository stores save payloads by template id.
type Repository interface {
	Create(ctx context.Context, p payload.SavePayload, asDefault bool) error
	Update(ctx context.Context, p payload.SavePayload, asDefault bool) error
	Get(ctx context.Context, id string) (payload.SavePayload, error)
	List(ctx context.Context, query string) ([]Summary, error)
	Ping(ctx context.Context) error
}

// PGRepository keeps templates in the Postgres templates table.
type PGRepository struct {
	DB *sql.DB
}

func (r PGRepository) Ping(ctx context.Context) error { return r.DB.PingContext(ctx) }

func stamps(p payload.SavePayload) (created, updated time.Time) {
	created = p.Created()
	if created.IsZero() {
		created = time.Now().UTC()
	}
	updated, err := time.Parse(payload.TimeLayout, p.UpdatedAt)
	if err != nil {
		updated = time.Now().UTC()
	}
	return created, updated
}

func clearDefault(ctx context.Context, tx *sql.Tx, keep string) error {
	// dialect=PostgreSQL
	_, err := tx.ExecContext(ctx, `UPDATE templates SET is_default = FALSE WHERE is_default AND id <> $1`, keep)
	return err
}

func (r PGRepository) Create(ctx context.Context, p payload.SavePayload, asDefault bool) error {
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	created, updated := stamps(p)
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if asDefault {
		if err := clearDefault(ctx, tx, p.ID); err != nil {
			return fmt.Errorf("clear default: %w", err)
		}
	}
	// dialect=PostgreSQL
	res, err := tx.ExecContext(ctx, `INSERT INTO templates(id, name, size, payload, is_default, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) ON CONFLICT (id) DO NOTHING`,
		p.ID, p.Name, p.Size, string(b), asDefault, created, updated)
	if err != nil {
		return fmt.Errorf("insert template: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrConflict
	}
	return tx.Commit()
}

func (r PGRepository) Update(ctx context.Context, p payload.SavePayload, asDefault bool) error {
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	_, updated := stamps(p)
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if asDefault {
		if err := clearDefault(ctx, tx, p.ID); err != nil {
			return fmt.Errorf("clear default: %w", err)
		}
	}
	// dialect=PostgreSQL
	res, err := tx.ExecContext(ctx, `UPDATE templates
		SET name = $2, size = $3, payload = $4, revision = revision + 1,
			is_default = (is_default OR $5), updated_at = $6
		WHERE id = $1`,
		p.ID, p.Name, p.Size, string(b), asDefault, updated)
	if err != nil {
		return fmt.Errorf("update template: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

func (r PGRepository) Get(ctx context.Context, id string) (payload.SavePayload, error) {
	var raw []byte
	// dialect=PostgreSQL
	err := r.DB.QueryRowContext(ctx, `SELECT payload FROM templates WHERE id = $1`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return payload.SavePayload{}, ErrNotFound
	}
	if err != nil {
		return payload.SavePayload{}, fmt.Errorf("select template: %w", err)
	}
	var p payload.SavePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return payload.SavePayload{}, fmt.Errorf("decode stored payload: %w", err)
	}
	return p, nil
}

// List returns summaries, newest first. A non-empty query matches names via
// the search_vector column.
func (r PGRepository) List(ctx context.Context, query string) ([]Summary, error) {
	q := `SELECT id, name, size, revision, is_default, updated_at FROM templates`
	var args []any
	if s := strings.TrimSpace(query); s != "" {
		q += ` WHERE search_vector @@ plainto_tsquery('simple', $1)`
		args = append(args, s)
	}
	q += ` ORDER BY updated_at DESC, id`
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer func() { _ = rows.Close() }()
	out := []Summary{}
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.Name, &s.Size, &s.Revision, &s.Default, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
