/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"labeldesigner/internal/payload"
)

const (
	ManifestFileName = "template.json"
	BackupsDirName   = "backups"
	AssetsDirName    = "assets"
	ExportsDirName   = "exports"

	backupStamp = "20060102-150405.000"
)

// ErrNoTemplate is returned by Open when neither a manifest nor a backup exists.
var ErrNoTemplate = errors.New("no template at path")

var standardSubDirs = []string{
	AssetsDirName,
	ExportsDirName,
	BackupsDirName,
}

// TemplateHandle is one template project on disk. Root holds template.json
// and the standard subfolders; Payload is the last saved or opened snapshot.
type TemplateHandle struct {
	Root         string
	ManifestPath string
	Payload      payload.SavePayload
}

// InitTemplate scaffolds root and writes p as its manifest.
func InitTemplate(root string, p payload.SavePayload) (*TemplateHandle, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("root path is required")
	}
	if err := scaffold(root); err != nil {
		return nil, err
	}
	th := &TemplateHandle{
		Root:         root,
		ManifestPath: filepath.Join(root, ManifestFileName),
		Payload:      p,
	}
	if err := Save(th); err != nil {
		return nil, err
	}
	return th, nil
}

func scaffold(root string) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("create template root: %w", err)
	}
	for _, d := range standardSubDirs {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			return fmt.Errorf("create subdir %s: %w", d, err)
		}
	}
	return nil
}

// Open loads the template at root. An unreadable or invalid manifest falls
// back to the newest backup.
func Open(root string) (*TemplateHandle, error) {
	mpath := filepath.Join(root, ManifestFileName)
	b, err := os.ReadFile(mpath)
	if err != nil {
		p, berr := openFromLatestBackup(root)
		if berr != nil {
			if errors.Is(err, fs.ErrNotExist) && errors.Is(berr, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrNoTemplate, root)
			}
			return nil, fmt.Errorf("open manifest: %w; backup attempt: %v", err, berr)
		}
		return &TemplateHandle{Root: root, ManifestPath: mpath, Payload: p}, nil
	}
	p, derr := payload.Decode(b)
	if derr != nil {
		bp, berr := openFromLatestBackup(root)
		if berr != nil {
			return nil, fmt.Errorf("parse manifest: %w; backup attempt: %v", derr, berr)
		}
		return &TemplateHandle{Root: root, ManifestPath: mpath, Payload: bp}, nil
	}
	return &TemplateHandle{Root: root, ManifestPath: mpath, Payload: p}, nil
}

// Save writes th.Payload transactionally, keeping a timestamped backup of
// the previous manifest.
func Save(th *TemplateHandle) error {
	if th == nil {
		return errors.New("nil TemplateHandle")
	}
	if th.Root == "" || th.ManifestPath == "" {
		return errors.New("invalid TemplateHandle: missing paths")
	}
	data, err := payload.Encode(th.Payload)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	data = append(data, '\n')

	bdir := filepath.Join(th.Root, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return fmt.Errorf("ensure backups dir: %w", err)
	}
	if _, statErr := os.Stat(th.ManifestPath); statErr == nil {
		bname := fmt.Sprintf("%s.%s.bak", ManifestFileName, time.Now().Format(backupStamp))
		if cerr := copyFile(th.ManifestPath, filepath.Join(bdir, bname)); cerr != nil {
			return fmt.Errorf("backup current manifest: %w", cerr)
		}
	}
	return replaceFile(th.ManifestPath, data)
}

// SaveAs moves the handle to newRoot and saves there.
func SaveAs(th *TemplateHandle, newRoot string) error {
	if th == nil {
		return errors.New("nil TemplateHandle")
	}
	if newRoot == "" {
		return errors.New("new root is empty")
	}
	if err := scaffold(newRoot); err != nil {
		return err
	}
	th.Root = newRoot
	th.ManifestPath = filepath.Join(newRoot, ManifestFileName)
	return Save(th)
}

// Backups lists backup files of the manifest, oldest first.
func Backups(root string) ([]string, error) {
	bdir := filepath.Join(root, BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	var out []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, ManifestFileName+".") && strings.HasSuffix(name, ".bak") {
			out = append(out, filepath.Join(bdir, name))
		}
	}
	sort.Strings(out)
	return out, nil
}

// AutosaveCrashSnapshot writes the in-memory payload next to the backups
// without touching the manifest.
func AutosaveCrashSnapshot(th *TemplateHandle) (string, error) {
	if th == nil || th.Root == "" {
		return "", errors.New("invalid TemplateHandle")
	}
	bdir := filepath.Join(th.Root, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return "", fmt.Errorf("ensure backups dir: %w", err)
	}
	data, err := json.MarshalIndent(th.Payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	path := filepath.Join(bdir, fmt.Sprintf("%s.crash-%s.json", ManifestFileName, time.Now().Format(backupStamp)))
	if err := writeFileSync(path, data); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// replaceFile writes data to a temp file in the target directory and renames it over path.
func replaceFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(path), os.Getpid(), rand.Int()))
	if err := writeFileSync(temp, data); err != nil {
		return fmt.Errorf("write temp manifest: %w", err)
	}
	// Windows cannot rename over an existing file.
	if _, err := os.Stat(path); err == nil {
		_ = os.Remove(path)
	}
	if err := os.Rename(temp, path); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace manifest: %w", err)
	}
	return nil
}

func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}

func openFromLatestBackup(root string) (payload.SavePayload, error) {
	candidates, err := Backups(root)
	if err != nil {
		return payload.SavePayload{}, err
	}
	if len(candidates) == 0 {
		return payload.SavePayload{}, fmt.Errorf("no backups found: %w", fs.ErrNotExist)
	}
	latest := candidates[len(candidates)-1]
	b, err := os.ReadFile(latest)
	if err != nil {
		return payload.SavePayload{}, fmt.Errorf("read latest backup: %w", err)
	}
	p, err := payload.Decode(b)
	if err != nil {
		return payload.SavePayload{}, fmt.Errorf("parse latest backup: %w", err)
	}
	return p, nil
}
