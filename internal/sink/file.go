/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package sink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	applog "labeldesigner/internal/log"
	"labeldesigner/internal/payload"
	"labeldesigner/internal/storage"
)

// FileSink stores payloads as a template project at Root and records them in
// the optional catalog.
type FileSink struct {
	Root    string
	Catalog *storage.Catalog
	// AsDefault marks saved templates as the catalog default.
	AsDefault bool
}

// Create scaffolds Root. An existing template there is overwritten with a backup.
func (s FileSink) Create(ctx context.Context, p payload.SavePayload) (payload.SavePayload, error) {
	th, err := storage.Open(s.Root)
	switch {
	case errors.Is(err, storage.ErrNoTemplate):
		if th, err = storage.InitTemplate(s.Root, p); err != nil {
			return payload.SavePayload{}, err
		}
	case err != nil:
		return payload.SavePayload{}, err
	default:
		th.Payload = p
		if err := storage.Save(th); err != nil {
			return payload.SavePayload{}, err
		}
	}
	return s.record(ctx, th)
}

// Update requires a template with the same id at Root.
func (s FileSink) Update(ctx context.Context, p payload.SavePayload) (payload.SavePayload, error) {
	th, err := storage.Open(s.Root)
	if err != nil {
		return payload.SavePayload{}, err
	}
	if th.Payload.ID != p.ID {
		return payload.SavePayload{}, fmt.Errorf("template at %s is %q, not %q", s.Root, th.Payload.ID, p.ID)
	}
	th.Payload = p
	if err := storage.Save(th); err != nil {
		return payload.SavePayload{}, err
	}
	return s.record(ctx, th)
}

func (s FileSink) record(ctx context.Context, th *storage.TemplateHandle) (payload.SavePayload, error) {
	if s.Catalog == nil {
		return th.Payload, nil
	}
	if err := s.Catalog.Upsert(ctx, th.Root, th.Payload); err != nil {
		// the manifest is already written; the catalog can be rebuilt
		applog.WithComponent("sink").Warn("catalog upsert failed", slog.Any("err", err), slog.String("root", th.Root))
		return th.Payload, nil
	}
	if s.AsDefault {
		if err := s.Catalog.SetDefault(ctx, th.Payload.ID); err != nil {
			return th.Payload, err
		}
	}
	return th.Payload, nil
}
