/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
)

// FontLibrary stores parsed OpenType fonts keyed by family and style.
type FontLibrary struct {
	fonts map[fontKey]*opentype.Font
}

type fontKey struct {
	family string
	bold   bool
	italic bool
}

func NewFontLibrary() *FontLibrary { return &FontLibrary{fonts: make(map[fontKey]*opentype.Font)} }

// Load parses a font file and registers it for family.
func (fl *FontLibrary) Load(family string, bold, italic bool, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read font %s: %w", path, err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font %s: %w", path, err)
	}
	if fl.fonts == nil {
		fl.fonts = make(map[fontKey]*opentype.Font)
	}
	fl.fonts[fontKey{family: strings.ToLower(family), bold: bold, italic: italic}] = f
	return nil
}

// LoadDir registers every .ttf/.otf file in dir. The family is the file name
// up to the first '-'; "Bold" and "Italic" in the rest select the style, so
// Arial-BoldItalic.ttf registers bold italic Arial. It returns the number of
// fonts loaded.
func (fl *FontLibrary) LoadDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".ttf" && ext != ".otf") {
			continue
		}
		base := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		family, style, _ := strings.Cut(base, "-")
		style = strings.ToLower(style)
		if err := fl.Load(family, strings.Contains(style, "bold"), strings.Contains(style, "italic"), filepath.Join(dir, e.Name())); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Len returns the number of registered fonts.
func (fl *FontLibrary) Len() int {
	if fl == nil {
		return 0
	}
	return len(fl.fonts)
}

func (fl *FontLibrary) find(spec FontSpec) *opentype.Font {
	if fl == nil || fl.fonts == nil {
		return nil
	}
	fam := strings.ToLower(spec.Family)
	if f, ok := fl.fonts[fontKey{family: fam, bold: spec.Bold, italic: spec.Italic}]; ok {
		return f
	}
	if f, ok := fl.fonts[fontKey{family: fam}]; ok {
		return f
	}
	for k, f := range fl.fonts {
		if k.family == fam {
			return f
		}
	}
	return nil
}

// OTProvider resolves FontSpec using a FontLibrary and falls back to another Provider.
type OTProvider struct {
	Lib      *FontLibrary
	Fallback Provider
}

func (p OTProvider) Resolve(spec FontSpec) (font.Face, Metrics) {
	if spec.SizePx <= 0 {
		spec.SizePx = DefaultSizePx
	}
	if f := p.Lib.find(spec); f != nil {
		// 72 DPI makes one point one layout pixel.
		face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: float64(spec.SizePx), DPI: 72, Hinting: font.HintingFull})
		if err == nil {
			m := face.Metrics()
			return face, Metrics{
				Ascent:  float32(m.Ascent.Round()),
				Descent: float32(m.Descent.Round()),
				LineGap: float32(m.Height.Round() - m.Ascent.Round() - m.Descent.Round()),
			}
		}
	}
	fb := p.Fallback
	if fb == nil {
		fb = BasicProvider{}
	}
	return fb.Resolve(spec)
}
