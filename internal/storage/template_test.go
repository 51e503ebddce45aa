/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labeldesigner/internal/domain"
	"labeldesigner/internal/payload"
)

func samplePayload(name string) payload.SavePayload {
	ser := payload.Serializer{Now: func() time.Time { return time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC) }}
	return ser.Serialize(payload.Input{
		Name:     name,
		Size:     "A4",
		Elements: domain.SampleElements(),
		Data:     domain.SampleData(),
	})
}

func TestInitTemplateScaffoldsAndWritesManifest(t *testing.T) {
	root := filepath.Join(t.TempDir(), "shipping")
	th, err := InitTemplate(root, samplePayload("Shipping"))
	require.NoError(t, err)

	for _, d := range []string{AssetsDirName, ExportsDirName, BackupsDirName} {
		st, err := os.Stat(filepath.Join(root, d))
		require.NoError(t, err, d)
		assert.True(t, st.IsDir(), d)
	}
	b, err := os.ReadFile(th.ManifestPath)
	require.NoError(t, err)
	require.NoError(t, payload.Validate(b))

	opened, err := Open(root)
	require.NoError(t, err)
	assert.Equal(t, th.Payload.ID, opened.Payload.ID)
	assert.Equal(t, "Shipping", opened.Payload.Name)
	assert.Len(t, opened.Payload.Elements, len(th.Payload.Elements))
}

func TestInitTemplateRequiresRoot(t *testing.T) {
	_, err := InitTemplate("  ", samplePayload("x"))
	assert.Error(t, err)
}

func TestSaveKeepsBackupOfPreviousManifest(t *testing.T) {
	root := t.TempDir()
	th, err := InitTemplate(root, samplePayload("First"))
	require.NoError(t, err)

	th.Payload.Name = "Second"
	require.NoError(t, Save(th))

	baks, err := Backups(root)
	require.NoError(t, err)
	require.Len(t, baks, 1)
	b, err := os.ReadFile(baks[0])
	require.NoError(t, err)
	prev, err := payload.Decode(b)
	require.NoError(t, err)
	assert.Equal(t, "First", prev.Name)

	cur, err := Open(root)
	require.NoError(t, err)
	assert.Equal(t, "Second", cur.Payload.Name)
}

func TestOpenFallsBackToLatestBackup(t *testing.T) {
	root := t.TempDir()
	th, err := InitTemplate(root, samplePayload("Good"))
	require.NoError(t, err)
	th.Payload.Name = "Better"
	require.NoError(t, Save(th))

	require.NoError(t, os.WriteFile(th.ManifestPath, []byte("{not json"), 0o644))

	opened, err := Open(root)
	require.NoError(t, err)
	assert.Equal(t, "Good", opened.Payload.Name)
}

func TestOpenEmptyDirIsNoTemplate(t *testing.T) {
	_, err := Open(t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoTemplate), err)
}

func TestSaveAsMovesHandle(t *testing.T) {
	root := t.TempDir()
	th, err := InitTemplate(root, samplePayload("Orig"))
	require.NoError(t, err)

	newRoot := filepath.Join(root, "copy")
	th.Payload.Name = "Renamed"
	require.NoError(t, SaveAs(th, newRoot))
	assert.Equal(t, newRoot, th.Root)
	assert.Equal(t, filepath.Join(newRoot, ManifestFileName), th.ManifestPath)

	opened, err := Open(newRoot)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", opened.Payload.Name)

	orig, err := Open(root)
	require.NoError(t, err)
	assert.Equal(t, "Orig", orig.Payload.Name)
}

func TestAutosaveCrashSnapshotLeavesManifest(t *testing.T) {
	root := t.TempDir()
	th, err := InitTemplate(root, samplePayload("Saved"))
	require.NoError(t, err)
	th.Payload.Name = "Unsaved"

	path, err := AutosaveCrashSnapshot(th)
	require.NoError(t, err)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	snap, err := payload.Decode(b)
	require.NoError(t, err)
	assert.Equal(t, "Unsaved", snap.Name)

	opened, err := Open(root)
	require.NoError(t, err)
	assert.Equal(t, "Saved", opened.Payload.Name)

	_, err = AutosaveCrashSnapshot(nil)
	assert.Error(t, err)
}
