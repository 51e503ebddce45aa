/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

// Text measurement and line breaking for element content. All measuring goes
// through a Provider so the editor, preview and exporters wrap identically.

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"labeldesigner/internal/domain"
)

// DefaultSizePx is the font size used when an element sets none.
const DefaultSizePx = 14

// defaultLineHeight matches the browser's "normal" line height.
const defaultLineHeight = 1.2

// FontSpec describes a requested font in layout pixels.
type FontSpec struct {
	Family string
	SizePx float32
	Bold   bool
	Italic bool
	// LineHeight is a multiple of SizePx; zero means normal.
	LineHeight float32
	// Tracking is extra px after every glyph.
	Tracking float32
}

// SpecFromStyles derives the font of an element from its styles.
func SpecFromStyles(s domain.Styles) FontSpec {
	spec := FontSpec{
		Family: strings.Trim(strings.TrimSpace(s.FontFamily), `"'`),
		SizePx: float32(s.FontSizePx(DefaultSizePx)),
		Bold:   s.Bold(),
		Italic: s.Italic(),
	}
	if lh := strings.TrimSpace(s.LineHeight); lh != "" {
		if strings.HasSuffix(lh, "px") {
			if px := parseFloat(strings.TrimSuffix(lh, "px")); px > 0 && spec.SizePx > 0 {
				spec.LineHeight = px / spec.SizePx
			}
		} else if f := parseFloat(lh); f > 0 {
			spec.LineHeight = f
		}
	}
	if ls := strings.TrimSuffix(strings.TrimSpace(s.LetterSpacing), "px"); ls != "" {
		spec.Tracking = parseFloat(ls)
	}
	return spec
}

// Metrics provides font metrics in pixels for the resolved face.
type Metrics struct {
	Ascent, Descent, LineGap float32
}

// Provider maps a FontSpec to a concrete font.Face.
type Provider interface {
	Resolve(FontSpec) (font.Face, Metrics)
}

// BasicProvider uses x/image/basicfont Face7x13 for deterministic layout.
// The bitmap face has one size; measurements are scaled to SizePx.
type BasicProvider struct{}

const basicPx = 13

func (BasicProvider) Resolve(FontSpec) (font.Face, Metrics) {
	f := basicfont.Face7x13
	m := f.Metrics()
	return f, Metrics{
		Ascent:  float32(m.Ascent.Round()),
		Descent: float32(m.Descent.Round()),
		LineGap: float32(m.Height.Round() - m.Ascent.Round() - m.Descent.Round()),
	}
}

// Line is one laid out line.
type Line struct {
	Text  string
	Width float32
}

// Block is text broken into lines for a given width.
type Block struct {
	Lines      []Line
	Width      float32
	Height     float32
	LineHeight float32
	Metrics    Metrics
}

// Fit returns the leading lines that fit into maxHeight, at least one.
func (b Block) Fit(maxHeight float32) Block {
	if b.LineHeight <= 0 || b.Height <= maxHeight || len(b.Lines) <= 1 {
		return b
	}
	n := int(maxHeight / b.LineHeight)
	if n < 1 {
		n = 1
	}
	if n >= len(b.Lines) {
		return b
	}
	out := b
	out.Lines = b.Lines[:n]
	out.Height = float32(n) * b.LineHeight
	out.Width = 0
	for _, l := range out.Lines {
		out.Width = max(out.Width, l.Width)
	}
	return out
}

// WordWrapLayouter breaks on spaces and explicit newlines. A single word
// wider than the line stays on its own line and is left to the caller to clip.
type WordWrapLayouter struct{ Provider Provider }

func NewWordWrap(provider Provider) *WordWrapLayouter { return &WordWrapLayouter{Provider: provider} }

type measurer struct {
	d        *font.Drawer
	k        float32
	tracking float32
}

func (m measurer) width(s string) float32 {
	if s == "" {
		return 0
	}
	return float32(m.d.MeasureString(s)>>6)*m.k + m.tracking*float32(utf8.RuneCountInString(s))
}

func (l *WordWrapLayouter) measurer(spec FontSpec) (measurer, Metrics) {
	if l.Provider == nil {
		l.Provider = BasicProvider{}
	}
	if spec.SizePx <= 0 {
		spec.SizePx = DefaultSizePx
	}
	face, met := l.Provider.Resolve(spec)
	k := float32(1)
	if face == basicfont.Face7x13 {
		k = spec.SizePx / basicPx
		met = Metrics{Ascent: met.Ascent * k, Descent: met.Descent * k, LineGap: met.LineGap * k}
	}
	return measurer{d: &font.Drawer{Face: face}, k: k, tracking: spec.Tracking}, met
}

func lineHeight(spec FontSpec) float32 {
	size := spec.SizePx
	if size <= 0 {
		size = DefaultSizePx
	}
	if spec.LineHeight > 0 {
		return size * spec.LineHeight
	}
	return size * defaultLineHeight
}

// Wrap lays out text into lines no wider than maxWidth. maxWidth <= 0
// disables wrapping.
func (l *WordWrapLayouter) Wrap(text string, spec FontSpec, maxWidth float32) Block {
	m, met := l.measurer(spec)
	box := Block{LineHeight: lineHeight(spec), Metrics: met}
	add := func(s string) {
		w := m.width(s)
		box.Lines = append(box.Lines, Line{Text: s, Width: w})
		box.Width = max(box.Width, w)
		box.Height += box.LineHeight
	}
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			add("")
			continue
		}
		cur := words[0]
		for _, w := range words[1:] {
			next := cur + " " + w
			if maxWidth > 0 && m.width(next) > maxWidth {
				add(cur)
				cur = w
				continue
			}
			cur = next
		}
		add(cur)
	}
	return box
}

// Measure returns the single-line width and natural height of text.
func Measure(provider Provider, spec FontSpec, text string) (w, h float32) {
	l := NewWordWrap(provider)
	m, _ := l.measurer(spec)
	return m.width(text), lineHeight(spec)
}

func parseFloat(s string) float32 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
	if err != nil || f < 0 {
		return 0
	}
	return float32(f)
}
