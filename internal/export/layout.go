/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export writes a template's preview rendition to PDF, PNG and SVG.
// All formats draw the boxes produced by render.Preview at scale 1, so what
// is exported matches the on-screen preview.
package export

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"labeldesigner/internal/domain"
	"labeldesigner/internal/payload"
	"labeldesigner/internal/render"
	"labeldesigner/internal/selection"
	"labeldesigner/internal/storage"
	"labeldesigner/internal/store"
	"labeldesigner/internal/textlayout"
)

// CSS pixels are 1/96 inch.
const pxPerInch = 96.0

// Options controls all exporters.
type Options struct {
	// DPI sets raster resolution and the SVG width/height attributes; zero means 96.
	DPI int
	// Data overrides the record stored in the payload.
	Data *domain.TemplateData
	// Fonts measures and draws text; nil uses the built-in bitmap face.
	Fonts textlayout.Provider
	// AssetRoot resolves relative image sources, usually the template root.
	AssetRoot string
}

func (o Options) scale() float64 {
	if o.DPI <= 0 {
		return 1
	}
	return float64(o.DPI) / pxPerInch
}

// Page is a laid out template ready to draw.
type Page struct {
	Name  string
	Size  domain.PageSize
	Boxes []render.Box
}

// Layout projects every element of p at scale 1 with resolved content.
func Layout(p payload.SavePayload, opt Options) Page {
	data := p.TemplateData
	if opt.Data != nil {
		data = *opt.Data
	}
	fonts := opt.Fonts
	if fonts == nil {
		fonts = textlayout.BasicProvider{}
	}
	pv := render.Preview{Projector: render.NewProjector(fonts), Scale: 1, Data: data.Record()}
	snap := store.Snapshot{Elements: p.Elements, Rotations: p.Rotations}
	return Page{Name: p.Name, Size: domain.LookupPageSize(p.Size), Boxes: pv.Boxes(snap, selection.State{})}
}

// OutputPath places relative paths under the template's exports folder.
func OutputPath(th *storage.TemplateHandle, out string) string {
	if filepath.IsAbs(out) || th == nil {
		return out
	}
	return filepath.Join(th.Root, storage.ExportsDirName, out)
}

func ensureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	return nil
}

// assetPath returns a readable local file for an image source, or "" for
// remote and missing sources.
func assetPath(root, src string) string {
	src = strings.TrimSpace(src)
	if src == "" || strings.Contains(src, "://") || strings.HasPrefix(src, "data:") {
		return ""
	}
	if !filepath.IsAbs(src) {
		if root == "" {
			return ""
		}
		src = filepath.Join(root, src)
	}
	if st, err := os.Stat(src); err != nil || st.IsDir() {
		return ""
	}
	return src
}

var (
	black = color.RGBA{A: 255}
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	grey  = color.RGBA{R: 0x99, G: 0x99, B: 0x99, A: 255}
	paper = color.RGBA{R: 0xf3, G: 0xf4, B: 0xf6, A: 255}
)

func hexColor(s string) (color.RGBA, bool) {
	r, g, b, ok := domain.ParseHexColor(s)
	return color.RGBA{R: r, G: g, B: b, A: 255}, ok
}

func textColor(s domain.Styles) color.RGBA {
	if c, ok := hexColor(s.Color); ok {
		return c
	}
	return black
}

// border parses shorthands like "1px solid #000". ok is false for "none" or
// when no width or colour is given.
func border(s domain.Styles) (width float64, c color.RGBA, ok bool) {
	c = black
	for _, part := range strings.Fields(s.Border) {
		switch {
		case part == "none" || part == "0":
			return 0, c, false
		case strings.HasSuffix(part, "px"):
			if v, err := strconv.ParseFloat(strings.TrimSuffix(part, "px"), 64); err == nil {
				width = v
			}
		case strings.HasPrefix(part, "#"):
			if hc, hok := hexColor(part); hok {
				c = hc
			}
		}
	}
	return width, c, width > 0
}
