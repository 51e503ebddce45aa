/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic at the CLI or UI edge into a report file and
// an autosave of the open template.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	applog "labeldesigner/internal/log"
	"labeldesigner/internal/storage"
	"labeldesigner/internal/telemetry"
	"labeldesigner/internal/version"
)

// exitFn is swapped in tests.
var exitFn = os.Exit

// Recover logs a recovered panic with its stack, writes a report, autosaves
// th (if given) and exits with status 2.
//
// Usage: defer crash.Recover(th)
func Recover(th *storage.TemplateHandle) {
	if r := recover(); r != nil {
		handle(r, th)
	}
}

// RecoverLatest is Recover for callers whose open template changes after the
// defer statement: current is asked for the handle only on panic.
//
// Usage: defer crash.RecoverLatest(func() *storage.TemplateHandle { return th })
func RecoverLatest(current func() *storage.TemplateHandle) {
	if r := recover(); r != nil {
		var th *storage.TemplateHandle
		if current != nil {
			th = current()
		}
		handle(r, th)
	}
}

func handle(r any, th *storage.TemplateHandle) {
	l := applog.WithComponent("crash")
	stack := debug.Stack()
	l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

	reportPath, err := writeReport(th, r, stack)
	if err != nil {
		l.Error("write crash report failed", slog.Any("err", err))
	}
	if th != nil {
		if path, err := storage.AutosaveCrashSnapshot(th); err != nil {
			l.Error("autosave crash snapshot failed", slog.Any("err", err))
		} else {
			l.Info("autosave crash snapshot written", slog.String("path", path))
		}
	}

	if _, err := fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath); err != nil {
		l.Error("failed to write crash message to stderr", slog.Any("err", err))
	}
	if _, err := fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH); err != nil {
		l.Error("failed to write version info to stderr", slog.Any("err", err))
	}
	exitFn(2)
}

func writeReport(th *storage.TemplateHandle, panicVal any, stack []byte) (string, error) {
	dir := os.TempDir()
	if th != nil && th.Root != "" {
		dir = filepath.Join(th.Root, storage.BackupsDirName)
		_ = os.MkdirAll(dir, 0o755)
	}
	path := filepath.Join(dir, fmt.Sprintf("crash-%s.log", time.Now().Format("20060102-150405")))

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "Label Designer Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if th != nil {
		_, _ = fmt.Fprintf(&buf, "TemplateRoot: %s\n", th.Root)
		_, _ = fmt.Fprintf(&buf, "TemplateID: %s\n", th.Payload.ID)
		_, _ = fmt.Fprintf(&buf, "Elements: %d\n", len(th.Payload.Elements))
	}
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return path, err
	}
	// no template content goes into the report, so it is safe to upload
	telemetry.UploadCrash(buf.Bytes())
	return path, nil
}
