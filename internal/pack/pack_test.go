/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package pack

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"labeldesigner/internal/domain"
	"labeldesigner/internal/payload"
	"labeldesigner/internal/storage"
)

func newTemplate(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "tpl")
	ser := payload.Serializer{Now: func() time.Time { return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC) }}
	p := ser.Serialize(payload.Input{Name: "Waybill", Size: "A4", Elements: domain.SampleElements(), Data: domain.SampleData()})
	if _, err := storage.InitTemplate(root, p); err != nil {
		t.Fatalf("init template: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, storage.AssetsDirName, "logo.png"), []byte("png"), 0o644); err != nil {
		t.Fatalf("write asset: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, storage.ExportsDirName, "old.pdf"), []byte("pdf"), 0o644); err != nil {
		t.Fatalf("write export: %v", err)
	}
	return root
}

func TestExportAndInstall(t *testing.T) {
	root := newTemplate(t)
	zipPath := filepath.Join(t.TempDir(), "waybill.zip")
	if err := Export(root, zipPath); err != nil {
		t.Fatalf("export: %v", err)
	}

	r, err := zip.OpenReader(zipPath)
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	names := map[string]bool{}
	for _, f := range r.File {
		names[f.Name] = true
	}
	_ = r.Close()
	for _, want := range []string{ManifestName, storage.ManifestFileName, "assets/logo.png"} {
		if !names[want] {
			t.Fatalf("zip missing %s: %v", want, names)
		}
	}
	if names["exports/old.pdf"] {
		t.Fatalf("exports should not be packed")
	}

	dest := filepath.Join(t.TempDir(), "copy")
	th, err := Install(zipPath, dest)
	if err != nil {
		t.Fatalf("install: %v", err)
	}
	if th.Payload.Name != "Waybill" || len(th.Payload.Elements) != len(domain.SampleElements()) {
		t.Fatalf("unexpected payload: %s with %d elements", th.Payload.Name, len(th.Payload.Elements))
	}
	if b, err := os.ReadFile(filepath.Join(dest, "assets", "logo.png")); err != nil || string(b) != "png" {
		t.Fatalf("asset not installed: %v", err)
	}

	if _, err := Install(zipPath, dest); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected already exists error, got %v", err)
	}
}

func TestExportArgs(t *testing.T) {
	if err := Export("", ""); err == nil {
		t.Fatalf("expected error on empty args")
	}
	if err := Export(t.TempDir(), filepath.Join(t.TempDir(), "x.zip")); err == nil {
		t.Fatalf("expected error for a folder without a template")
	}
}

func writeZip(t *testing.T, entries map[string]string) string {
	t.Helper()
	zpath := filepath.Join(t.TempDir(), "pack.zip")
	f, err := os.Create(zpath)
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	zw := zip.NewWriter(f)
	for name, body := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create entry: %v", err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("write entry: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	_ = f.Close()
	return zpath
}

func TestInstallRejectsBadPacks(t *testing.T) {
	noManifest := writeZip(t, map[string]string{"assets/a.png": "x"})
	if _, err := Install(noManifest, filepath.Join(t.TempDir(), "a")); err == nil {
		t.Fatalf("expected missing manifest error")
	}

	invalid := writeZip(t, map[string]string{storage.ManifestFileName: `{"id":"x","elements":[{"id":"e","type":"circle"}]}`})
	dest := filepath.Join(t.TempDir(), "b")
	if _, err := Install(invalid, dest); err == nil {
		t.Fatalf("expected schema error")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Fatalf("nothing should be written for an invalid pack")
	}
}

func TestInstallZipSlip(t *testing.T) {
	root := newTemplate(t)
	manifest, err := os.ReadFile(filepath.Join(root, storage.ManifestFileName))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	zpath := writeZip(t, map[string]string{
		storage.ManifestFileName: string(manifest),
		"assets/../../evil.txt":  "evil",
		"../evil.txt":            "evil",
		"assets/ok.txt":          "ok",
	})
	base := t.TempDir()
	dest := filepath.Join(base, "tpl")
	if _, err := Install(zpath, dest); err != nil {
		t.Fatalf("install: %v", err)
	}
	if _, err := os.Stat(filepath.Join(base, "evil.txt")); err == nil {
		t.Fatalf("zip slip entry was extracted")
	}
	if _, err := os.Stat(filepath.Join(dest, "assets", "ok.txt")); err != nil {
		t.Fatalf("ok asset missing: %v", err)
	}
}
