/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package sink delivers save payloads to where templates are kept: the
// template server, a template project on disk, or just the log.
package sink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	applog "labeldesigner/internal/log"
	"labeldesigner/internal/payload"
)

// ErrTransport wraps every failure to hand a payload to a sink.
var ErrTransport = errors.New("template sink failed")

// Sink accepts payloads. Implementations return the payload as stored.
type Sink interface {
	Create(ctx context.Context, p payload.SavePayload) (payload.SavePayload, error)
	Update(ctx context.Context, p payload.SavePayload) (payload.SavePayload, error)
}

// Save hands p to s. On failure nothing of the caller's state is touched and
// the error wraps ErrTransport.
func Save(ctx context.Context, s Sink, p payload.SavePayload, isUpdate bool) (payload.SavePayload, error) {
	l := applog.WithOperation(applog.WithComponent("sink"), "save").With(
		slog.String("template_id", p.ID),
		slog.Bool("update", isUpdate),
	)
	if s == nil {
		return payload.SavePayload{}, fmt.Errorf("%w: no sink configured", ErrTransport)
	}
	var (
		out payload.SavePayload
		err error
	)
	if isUpdate {
		out, err = s.Update(ctx, p)
	} else {
		out, err = s.Create(ctx, p)
	}
	if err != nil {
		l.Error("save failed", slog.Any("err", err))
		if errors.Is(err, ErrTransport) {
			return payload.SavePayload{}, err
		}
		return payload.SavePayload{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	l.Info("template saved", slog.String("name", out.Name), slog.Int("elements", len(out.Elements)))
	return out, nil
}

// LogSink writes the payload summary to the log and echoes it back.
type LogSink struct {
	Logger *slog.Logger
	// Action labels the log record; empty means "SAVE".
	Action string
}

func (s LogSink) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return applog.WithComponent("sink")
}

func (s LogSink) action() string {
	if s.Action == "" {
		return "SAVE"
	}
	return s.Action
}

func (s LogSink) Create(_ context.Context, p payload.SavePayload) (payload.SavePayload, error) {
	payload.Log(s.logger(), p, s.action())
	return p, nil
}

func (s LogSink) Update(ctx context.Context, p payload.SavePayload) (payload.SavePayload, error) {
	return s.Create(ctx, p)
}
