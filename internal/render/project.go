/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package render projects stored elements onto a scaled canvas. Both the
// editing canvas and the read-only preview go through Project; stored
// geometry is never changed here.
package render

import (
	"math"

	"labeldesigner/internal/domain"
	"labeldesigner/internal/selection"
	"labeldesigner/internal/textlayout"
	"labeldesigner/internal/vector"
)

// RuleThickness is the stroke of horizontal and vertical rules in layout px.
const RuleThickness = 2

// Rect is a rectangle in float64 pixels.
type Rect struct{ X, Y, W, H float64 }

func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && y >= r.Y && x <= r.X+r.W && y <= r.Y+r.H
}

// ContentKind selects how a box body is drawn.
type ContentKind int

const (
	ContentText ContentKind = iota
	ContentImage
	// ContentPlaceholder is an image element without a source.
	ContentPlaceholder
	ContentRule
)

// TextLine is a laid out line in element-local layout px. Y is the line top.
type TextLine struct {
	Text  string
	X, Y  float64
	Width float64
}

// Content is the drawable body of a box in element-local layout px. Multiply
// by Box.Scale for screen px.
type Content struct {
	Kind       ContentKind
	Text       string
	Lines      []TextLine
	FontSize   float64
	LineHeight float64
	Source     string
	Rule       Rect
}

// Box is one projected element in screen px.
type Box struct {
	ID     string
	Type   domain.ElementType
	Locked bool

	Left, Top, Width, Height float64
	Scale                    float64
	// ContentScale counter-scales content drawn at stored size.
	ContentScale float64
	// Rotation in degrees and the matching transform about the box centre.
	Rotation  float64
	Transform vector.Affine2D

	Selected bool
	Editing  bool

	Styles  domain.Styles
	Content Content
}

// Rect returns the unrotated screen rectangle.
func (b Box) Rect() Rect { return Rect{X: b.Left, Y: b.Top, W: b.Width, H: b.Height} }

// Local maps a screen point into the unrotated frame of the box.
func (b Box) Local(x, y float64) (float64, float64) {
	inv, ok := b.Transform.Invert()
	if !ok {
		return x, y
	}
	p := inv.Apply(vector.Pt{X: float32(x), Y: float32(y)})
	return float64(p.X), float64(p.Y)
}

// Contains hit-tests a screen point against the rotated box.
func (b Box) Contains(x, y float64) bool {
	lx, ly := b.Local(x, y)
	return b.Rect().Contains(lx, ly)
}

// Projector lays out content with one text provider.
type Projector struct {
	Layouter *textlayout.WordWrapLayouter
}

// NewProjector returns a projector measuring text with p.
func NewProjector(p textlayout.Provider) Projector {
	return Projector{Layouter: textlayout.NewWordWrap(p)}
}

var defaultProjector = NewProjector(textlayout.BasicProvider{})

// Project maps el at scale with the default text provider.
func Project(el domain.Element, content string, scale, rotation float64, st selection.State) Box {
	return defaultProjector.Project(el, content, scale, rotation, st)
}

// Project maps el with its display content to a screen box. Invalid scales
// are treated as 1.
func (p Projector) Project(el domain.Element, content string, scale, rotation float64, st selection.State) Box {
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		scale = 1
	}
	b := Box{
		ID:           el.ID,
		Type:         el.Type,
		Locked:       el.Locked,
		Left:         el.Position.X * scale,
		Top:          el.Position.Y * scale,
		Width:        el.Size.Width * scale,
		Height:       el.Size.Height * scale,
		Scale:        scale,
		ContentScale: 1 / scale,
		Rotation:     rotation,
		Selected:     st.IsSelected(el.ID),
		Editing:      st.IsEditing(el.ID),
		Styles:       el.Styles.Clone(),
	}
	c := vector.RF(b.Left, b.Top, b.Width, b.Height).Center()
	b.Transform = vector.RotateAbout(c, rotation)
	b.Content = p.content(el, content)
	return b
}

func (p Projector) content(el domain.Element, content string) Content {
	w, h := el.Size.Width, el.Size.Height
	switch {
	case el.Type == domain.TypeImage:
		if content == "" {
			return Content{Kind: ContentPlaceholder, Text: "Image"}
		}
		return Content{Kind: ContentImage, Source: content}
	case el.Type == domain.TypeHorizontalRule:
		return Content{Kind: ContentRule, Rule: Rect{X: 0, Y: (h - RuleThickness) / 2, W: w, H: RuleThickness}}
	case el.Type == domain.TypeVerticalRule:
		return Content{Kind: ContentRule, Rule: Rect{X: (w - RuleThickness) / 2, Y: 0, W: RuleThickness, H: h}}
	}
	return p.text(el.Styles, content, w, h)
}

// text wraps content inside the padded box, centres it vertically and
// aligns each line per textAlign. Lines that do not fit are dropped.
func (p Projector) text(s domain.Styles, content string, w, h float64) Content {
	spec := textlayout.SpecFromStyles(s)
	pv, ph := s.PaddingBox()
	innerW, innerH := math.Max(w-2*ph, 0), math.Max(h-2*pv, 0)
	layouter := p.Layouter
	if layouter == nil {
		layouter = textlayout.NewWordWrap(nil)
	}
	block := layouter.Wrap(content, spec, float32(innerW)).Fit(float32(innerH))
	lh := float64(block.LineHeight)
	top := pv + (innerH-float64(block.Height))/2
	align := s.Align()
	out := Content{Kind: ContentText, Text: content, FontSize: float64(spec.SizePx), LineHeight: lh}
	for i, ln := range block.Lines {
		lw := float64(ln.Width)
		x := ph
		switch align {
		case "center":
			x = ph + (innerW-lw)/2
		case "right":
			x = ph + innerW - lw
		}
		out.Lines = append(out.Lines, TextLine{Text: ln.Text, X: x, Y: top + float64(i)*lh, Width: lw})
	}
	return out
}
