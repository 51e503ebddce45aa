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
	"sort"
	"strings"
	"sync"
	"time"

	"labeldesigner/internal/payload"
)

type memEntry struct {
	p        payload.SavePayload
	revision int64
	updated  time.Time
}

// MemRepository is an in-process Repository for local serving and tests.
type MemRepository struct {
	mu       sync.RWMutex
	byID     map[string]memEntry
	defaultT string
}

func NewMemRepository() *MemRepository {
	return &MemRepository{byID: map[string]memEntry{}}
}

func (m *MemRepository) Ping(context.Context) error { return nil }

func (m *MemRepository) Create(_ context.Context, p payload.SavePayload, asDefault bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[p.ID]; ok {
		return ErrConflict
	}
	_, updated := stamps(p)
	m.byID[p.ID] = memEntry{p: p, revision: 1, updated: updated}
	if asDefault {
		m.defaultT = p.ID
	}
	return nil
}

func (m *MemRepository) Update(_ context.Context, p payload.SavePayload, asDefault bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.byID[p.ID]
	if !ok {
		return ErrNotFound
	}
	_, updated := stamps(p)
	m.byID[p.ID] = memEntry{p: p, revision: cur.revision + 1, updated: updated}
	if asDefault {
		m.defaultT = p.ID
	}
	return nil
}

func (m *MemRepository) Get(_ context.Context, id string) (payload.SavePayload, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.byID[id]
	if !ok {
		return payload.SavePayload{}, ErrNotFound
	}
	return e.p, nil
}

// List matches query case-insensitively against names.
func (m *MemRepository) List(_ context.Context, query string) ([]Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q := strings.ToLower(strings.TrimSpace(query))
	out := []Summary{}
	for id, e := range m.byID {
		if q != "" && !strings.Contains(strings.ToLower(e.p.Name), q) {
			continue
		}
		out = append(out, Summary{
			ID: id, Name: e.p.Name, Size: e.p.Size,
			Revision: e.revision, Default: id == m.defaultT, UpdatedAt: e.updated,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
