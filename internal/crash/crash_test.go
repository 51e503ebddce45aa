/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package crash

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labeldesigner/internal/domain"
	"labeldesigner/internal/payload"
	"labeldesigner/internal/storage"
)

func TestWriteReportInTempDir(t *testing.T) {
	path, err := writeReport(nil, "boom", []byte("stacktrace"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Remove(path) })
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "Label Designer Crash Report")
	assert.Contains(t, string(b), "Panic: boom")
}

func TestWriteReportInTemplateBackups(t *testing.T) {
	root := t.TempDir()
	th := &storage.TemplateHandle{Root: root, ManifestPath: filepath.Join(root, storage.ManifestFileName)}
	th.Payload.ID = "template-7"

	path, err := writeReport(th, "kaboom", []byte("stack"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, filepath.Join(root, storage.BackupsDirName)))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "TemplateID: template-7")
}

func TestRecoverWritesReportAndSnapshot(t *testing.T) {
	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w
	defer func() {
		_ = w.Close()
		os.Stderr = oldStderr
		_, _ = io.Copy(io.Discard, r)
	}()

	code := 0
	oldExit := exitFn
	exitFn = func(c int) { code = c }
	defer func() { exitFn = oldExit }()

	root := t.TempDir()
	th, err := storage.InitTemplate(root, payload.Serialize(payload.Input{
		Name: "Crashy", Size: "A4", Elements: domain.SampleElements(), Data: domain.SampleData(),
	}))
	require.NoError(t, err)

	func() {
		defer Recover(th)
		panic("boom")
	}()

	assert.Equal(t, 2, code)
	ents, err := os.ReadDir(filepath.Join(root, storage.BackupsDirName))
	require.NoError(t, err)
	var report, snapshot bool
	for _, e := range ents {
		switch {
		case strings.HasPrefix(e.Name(), "crash-") && strings.HasSuffix(e.Name(), ".log"):
			report = true
		case strings.Contains(e.Name(), ".crash-"):
			snapshot = true
		}
	}
	assert.True(t, report, "crash report")
	assert.True(t, snapshot, "autosave snapshot")
}

func TestRecoverWithoutPanicIsNoop(t *testing.T) {
	called := false
	oldExit := exitFn
	exitFn = func(int) { called = true }
	defer func() { exitFn = oldExit }()

	func() {
		defer Recover(nil)
	}()
	assert.False(t, called)
}

func TestRecoverLatestReadsHandleOnPanic(t *testing.T) {
	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w
	defer func() {
		_ = w.Close()
		os.Stderr = oldStderr
		_, _ = io.Copy(io.Discard, r)
	}()

	code := 0
	oldExit := exitFn
	exitFn = func(c int) { code = c }
	defer func() { exitFn = oldExit }()

	root := t.TempDir()
	var th *storage.TemplateHandle
	func() {
		defer RecoverLatest(func() *storage.TemplateHandle { return th })
		var err error
		th, err = storage.InitTemplate(root, payload.Serialize(payload.Input{Name: "Late", Size: "A5"}))
		require.NoError(t, err)
		panic("late")
	}()

	assert.Equal(t, 2, code)
	ents, err := os.ReadDir(filepath.Join(root, storage.BackupsDirName))
	require.NoError(t, err)
	found := false
	for _, e := range ents {
		if strings.Contains(e.Name(), ".crash-") {
			found = true
		}
	}
	assert.True(t, found, "snapshot of the handle opened after defer")
}
