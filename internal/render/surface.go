/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"fmt"
	"math"
	"strings"

	"labeldesigner/internal/binding"
	"labeldesigner/internal/domain"
	"labeldesigner/internal/selection"
	"labeldesigner/internal/store"
)

// RotationStep is the angle applied by the rotate buttons.
const RotationStep = 15.0

// Chrome sizes in screen px.
const (
	HandleSize = 8
	ButtonSize = 24
)

// Surface turns a store snapshot into boxes in stacking order.
type Surface interface {
	Boxes(snap store.Snapshot, st selection.State) []Box
}

// Preview is the read-only rendition: resolved content, no selection.
type Preview struct {
	Projector
	Scale float64
	Data  map[string]any
}

func (p Preview) Boxes(snap store.Snapshot, _ selection.State) []Box {
	out := make([]Box, 0, len(snap.Elements))
	for _, el := range snap.Elements {
		content := el.Content()
		if el.Type.Textual() || el.Type == domain.TypeImage {
			content = binding.Resolve(content, p.Data)
		}
		out = append(out, p.Project(el, content, p.Scale, snap.Rotations.Of(el.ID), selection.State{}))
	}
	return out
}

// Editor is the editable rendition. Bound content shows as [field] labels
// unless ShowValues is set; the element being edited shows its draft.
type Editor struct {
	Projector
	Scale      float64
	Data       map[string]any
	ShowValues bool
	Page       domain.PageSize
}

// DisplayContent returns what the editor shows for el.
func (e Editor) DisplayContent(el domain.Element, st selection.State) string {
	if st.IsEditing(el.ID) {
		return st.Draft
	}
	c := el.Content()
	if !el.Type.Textual() {
		return c
	}
	if e.ShowValues {
		return binding.Resolve(c, e.Data)
	}
	if el.DataBinding() != "" && strings.Contains(c, "{{") {
		return binding.Label(c)
	}
	return c
}

func (e Editor) Boxes(snap store.Snapshot, st selection.State) []Box {
	out := make([]Box, 0, len(snap.Elements))
	for _, el := range snap.Elements {
		out = append(out, e.Project(el, e.DisplayContent(el, st), e.Scale, snap.Rotations.Of(el.ID), st))
	}
	return out
}

// Caption is the heading shown above a canvas, e.g. "A4 - Editor (794 x 1123px)".
func Caption(page domain.PageSize, surface string, scale float64) string {
	if scale <= 0 {
		scale = 1
	}
	return fmt.Sprintf("%s - %s (%d x %dpx)", page.Name, surface,
		int(math.Round(page.Width*scale)), int(math.Round(page.Height*scale)))
}

// Part is the region of a box under the pointer.
type Part int

const (
	PartNone Part = iota
	PartBody
	PartResizeNW
	PartResizeNE
	PartResizeSW
	PartResizeSE
	PartDelete
	PartRotateCCW
	PartRotateCW
)

func (p Part) Resize() bool { return p >= PartResizeNW && p <= PartResizeSE }

// Chrome is the selection decoration of a box in its unrotated screen frame.
type Chrome struct {
	Border    Rect
	Handles   [4]Rect // NW, NE, SW, SE
	Delete    Rect
	RotateCCW Rect
	RotateCW  Rect
}

// ChromeFor returns the decoration of a selected box. Pinned boxes have none.
func ChromeFor(b Box) (Chrome, bool) {
	if !b.Selected || b.Locked {
		return Chrome{}, false
	}
	r := b.Rect()
	hs := float64(HandleSize)
	corner := func(x, y float64) Rect { return Rect{X: x - hs/2, Y: y - hs/2, W: hs, H: hs} }
	cx := r.X + r.W/2
	return Chrome{
		Border: r,
		Handles: [4]Rect{
			corner(r.X, r.Y), corner(r.X+r.W, r.Y),
			corner(r.X, r.Y+r.H), corner(r.X+r.W, r.Y+r.H),
		},
		Delete:    Rect{X: r.X + r.W - ButtonSize + 8, Y: r.Y - 32, W: ButtonSize, H: ButtonSize},
		RotateCCW: Rect{X: cx - ButtonSize - 20, Y: r.Y + r.H + 8, W: ButtonSize, H: ButtonSize},
		RotateCW:  Rect{X: cx + 20, Y: r.Y + r.H + 8, W: ButtonSize, H: ButtonSize},
	}, true
}

// Hit identifies what lies under a screen point.
type Hit struct {
	ID   string
	Part Part
}

// HitTest checks selection chrome first, then box bodies from the top of the
// stack down. Rotated boxes are tested in their own frame.
func HitTest(boxes []Box, x, y float64) Hit {
	for _, b := range boxes {
		ch, ok := ChromeFor(b)
		if !ok {
			continue
		}
		lx, ly := b.Local(x, y)
		switch {
		case ch.Delete.Contains(lx, ly):
			return Hit{ID: b.ID, Part: PartDelete}
		case ch.RotateCCW.Contains(lx, ly):
			return Hit{ID: b.ID, Part: PartRotateCCW}
		case ch.RotateCW.Contains(lx, ly):
			return Hit{ID: b.ID, Part: PartRotateCW}
		}
		for i, h := range ch.Handles {
			if h.Contains(lx, ly) {
				return Hit{ID: b.ID, Part: PartResizeNW + Part(i)}
			}
		}
	}
	for i := len(boxes) - 1; i >= 0; i-- {
		if boxes[i].Contains(x, y) {
			return Hit{ID: boxes[i].ID, Part: PartBody}
		}
	}
	return Hit{}
}

// DragStop converts the final screen position of a drag back into stored
// geometry, kept inside the page.
func (e Editor) DragStop(el domain.Element, left, top float64) store.Patch {
	if el.Locked {
		return store.Patch{}
	}
	s := e.scale()
	pos := domain.Point{X: left / s, Y: top / s}
	if e.Page.Width > 0 && e.Page.Height > 0 {
		pos.X = clamp(pos.X, 0, e.Page.Width-el.Size.Width)
		pos.Y = clamp(pos.Y, 0, e.Page.Height-el.Size.Height)
	}
	pos, _ = domain.ClampGeometry(pos, domain.Size{})
	return store.Patch{Position: &pos}
}

// ResizeStop converts the final screen rectangle of a resize back into
// stored position and size.
func (e Editor) ResizeStop(el domain.Element, left, top, width, height float64) store.Patch {
	if el.Locked {
		return store.Patch{}
	}
	s := e.scale()
	pos, size := domain.ClampGeometry(
		domain.Point{X: left / s, Y: top / s},
		domain.Size{Width: math.Round(width) / s, Height: math.Round(height) / s},
	)
	return store.Patch{Position: &pos, Size: &size}
}

// MinResize is the smallest box a resize gesture produces, in screen px.
const MinResize = 10

// ResizeRect applies a corner drag of (dx, dy) screen px to the box rectangle,
// keeping the opposite corner fixed.
func ResizeRect(r Rect, part Part, dx, dy float64) Rect {
	x0, y0, x1, y1 := r.X, r.Y, r.X+r.W, r.Y+r.H
	switch part {
	case PartResizeNW:
		x0, y0 = math.Min(x0+dx, x1-MinResize), math.Min(y0+dy, y1-MinResize)
	case PartResizeNE:
		x1, y0 = math.Max(x1+dx, x0+MinResize), math.Min(y0+dy, y1-MinResize)
	case PartResizeSW:
		x0, y1 = math.Min(x0+dx, x1-MinResize), math.Max(y1+dy, y0+MinResize)
	case PartResizeSE:
		x1, y1 = math.Max(x1+dx, x0+MinResize), math.Max(y1+dy, y0+MinResize)
	default:
		return r
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

func (e Editor) scale() float64 {
	if e.Scale <= 0 || math.IsNaN(e.Scale) || math.IsInf(e.Scale, 0) {
		return 1
	}
	return e.Scale
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	return math.Max(lo, math.Min(v, hi))
}
