/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"labeldesigner/internal/config"
	"labeldesigner/internal/crash"
	applog "labeldesigner/internal/log"
	"labeldesigner/internal/storage"
	"labeldesigner/internal/telemetry"
)

func main() {
	os.Exit(realMain())
}

func realMain() int {
	cfg, token, cfgErr := config.Load()
	// Load already folded LD_LOG_* into cfg.Logging.
	lo := applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
	}
	applog.Init(lo)
	l := applog.WithComponent("cli")
	if cfgErr != nil {
		l.Warn("config ignored", slog.Any("err", cfgErr))
	}

	tc := telemetry.FromEnv()
	tc.OptIn = cfg.General.TelemetryOptIn
	telemetry.NewDefault(tc)
	defer telemetry.Default().Close()
	telemetry.Default().Event(telemetry.EventAppStarted, nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &cli{out: os.Stdout, cfg: cfg, token: token}
	defer c.close()
	defer crash.RecoverLatest(func() *storage.TemplateHandle { return c.th })
	err := c.run(ctx, os.Args[1:])
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		return 2
	default:
		l.Error("command failed", slog.Any("err", err))
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
}
