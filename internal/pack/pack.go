/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package pack shares template projects as zip archives: the manifest plus
// its assets folder. Exports and backups stay behind.
package pack

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	applog "labeldesigner/internal/log"
	"labeldesigner/internal/payload"
	"labeldesigner/internal/storage"
	"labeldesigner/internal/version"
)

// ManifestName is the human readable note at the archive root.
const ManifestName = "pack.manifest.txt"

// maxEntrySize bounds a single extracted file.
const maxEntrySize = 64 << 20

// Export zips the template at root into destZip.
func Export(root, destZip string) error {
	l := applog.WithOperation(applog.WithComponent("pack"), "export").With(slog.String("template", root))
	if strings.TrimSpace(root) == "" {
		return errors.New("template root is required")
	}
	if strings.TrimSpace(destZip) == "" {
		return errors.New("destination zip is required")
	}
	th, err := storage.Open(root)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(destZip), 0o755); err != nil {
		return fmt.Errorf("ensure zip dir: %w", err)
	}
	// Windows cannot create over an open handle of the old file.
	_ = os.Remove(destZip)

	zf, err := os.Create(destZip)
	if err != nil {
		return fmt.Errorf("create zip: %w", err)
	}
	defer func() { _ = zf.Close() }()
	zw := zip.NewWriter(zf)

	note := fmt.Sprintf("Label Designer template pack\nTemplate: %s (%s)\nSize: %s\nCreated: %s\nBy: labeldesigner %s\n",
		th.Payload.Name, th.Payload.ID, th.Payload.Size, time.Now().UTC().Format(time.RFC3339), version.String())
	if err := addBytes(zw, ManifestName, []byte(note)); err != nil {
		return err
	}
	data, err := payload.Encode(th.Payload)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := addBytes(zw, storage.ManifestFileName, data); err != nil {
		return err
	}

	added := 1
	assets := filepath.Join(root, storage.AssetsDirName)
	err = filepath.WalkDir(assets, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, os.ErrNotExist) && p == assets {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		if err := addFile(zw, filepath.ToSlash(rel), p); err != nil {
			return err
		}
		added++
		return nil
	})
	if err != nil {
		l.Error("zip build failed", slog.Any("err", err))
		return fmt.Errorf("build zip: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finish zip: %w", err)
	}
	l.Info("template pack exported", slog.Int("files", added), slog.String("zip", destZip))
	return nil
}

func addBytes(zw *zip.Writer, name string, b []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("add %s: %w", name, err)
	}
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func addFile(zw *zip.Writer, name, src string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, f)
	return err
}

// Install extracts packZip into root, which must not already hold a
// template. The packed manifest is schema-checked before anything is written.
func Install(packZip, root string) (*storage.TemplateHandle, error) {
	l := applog.WithOperation(applog.WithComponent("pack"), "install").With(slog.String("template", root))
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("template root is required")
	}
	if _, err := storage.Open(root); err == nil {
		return nil, fmt.Errorf("template already exists at %s", root)
	} else if !errors.Is(err, storage.ErrNoTemplate) {
		return nil, err
	}

	r, err := zip.OpenReader(packZip)
	// Insecure entry names are skipped below.
	if err != nil && (r == nil || !errors.Is(err, zip.ErrInsecurePath)) {
		return nil, fmt.Errorf("open pack: %w", err)
	}
	defer func() { _ = r.Close() }()

	var manifest *zip.File
	for _, f := range r.File {
		if f.Name == storage.ManifestFileName {
			manifest = f
		}
	}
	if manifest == nil {
		return nil, fmt.Errorf("pack has no %s", storage.ManifestFileName)
	}
	data, err := readEntry(manifest)
	if err != nil {
		return nil, err
	}
	if err := payload.Validate(data); err != nil {
		return nil, err
	}
	p, err := payload.Decode(data)
	if err != nil {
		return nil, err
	}
	th, err := storage.InitTemplate(root, p)
	if err != nil {
		return nil, err
	}

	installed := 0
	for _, f := range r.File {
		name := path.Clean(f.Name)
		if !strings.HasPrefix(name, storage.AssetsDirName+"/") || f.FileInfo().IsDir() {
			continue
		}
		target := filepath.Join(root, filepath.FromSlash(name))
		if !strings.HasPrefix(target, filepath.Clean(root)+string(os.PathSeparator)) {
			l.Warn("skip entry outside template", slog.String("entry", f.Name))
			continue
		}
		b, err := readEntry(f)
		if err != nil {
			return th, err
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return th, err
		}
		if err := os.WriteFile(target, b, 0o644); err != nil {
			return th, err
		}
		installed++
	}
	l.Info("template pack installed", slog.String("id", p.ID), slog.Int("assets", installed))
	return th, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	if f.UncompressedSize64 > maxEntrySize {
		return nil, fmt.Errorf("%s: entry too large", f.Name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer func() { _ = rc.Close() }()
	b, err := io.ReadAll(io.LimitReader(rc, maxEntrySize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	if len(b) > maxEntrySize {
		return nil, fmt.Errorf("%s: entry too large", f.Name)
	}
	return b, nil
}
