/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"math"

	"labeldesigner/internal/editor"
	"labeldesigner/internal/render"
	"labeldesigner/internal/selection"
	"labeldesigner/internal/vector"
)

// Zoom limits of the editing canvas.
const (
	MinZoom = 0.25
	MaxZoom = 3.0
)

// SnapThreshold is the snapping distance in canvas px.
const SnapThreshold = 6

// Controller turns pointer and key input on the editing canvas into session
// calls. Coordinates are canvas px relative to the page origin. It holds no
// toolkit types so it runs headless.
type Controller struct {
	Session    *editor.Session
	Projector  render.Projector
	Zoom       float64
	ShowValues bool
	// Snap aligns moved boxes to the page and to other elements.
	Snap bool

	drag *dragState
}

type dragState struct {
	id     string
	part   render.Part
	start  render.Rect
	dx, dy float64
	// anchors are the page and the other boxes, captured at drag start.
	anchors []vector.Rect
}

// NewController binds a session at the given zoom.
func NewController(s *editor.Session, p render.Projector, zoom float64) *Controller {
	c := &Controller{Session: s, Projector: p}
	c.SetZoom(zoom)
	return c
}

// SetZoom clamps z into the supported range.
func (c *Controller) SetZoom(z float64) {
	if z <= 0 || math.IsNaN(z) {
		z = 1
	}
	c.Zoom = math.Max(MinZoom, math.Min(MaxZoom, z))
}

// Editor is the editing rendition at the current zoom.
func (c *Controller) Editor() render.Editor {
	return c.Session.Surface(c.Projector, c.Zoom, c.ShowValues)
}

// Boxes returns what the canvas draws, with an in-flight gesture applied to
// the dragged box.
func (c *Controller) Boxes() []render.Box {
	boxes := c.Editor().Boxes(c.Session.Snapshot(), c.Session.State())
	if r, ok := c.Ghost(); ok {
		for i := range boxes {
			if boxes[i].ID == c.drag.id {
				boxes[i].Left, boxes[i].Top, boxes[i].Width, boxes[i].Height = r.X, r.Y, r.W, r.H
			}
		}
	}
	return boxes
}

// Tap handles a click. Chrome buttons act on their element, a body click
// selects and enters editing for text, empty canvas clears the selection.
func (c *Controller) Tap(x, y float64) {
	hit := render.HitTest(c.Editor().Boxes(c.Session.Snapshot(), c.Session.State()), x, y)
	switch hit.Part {
	case render.PartNone:
		c.Session.Dispatch(selection.ClickOutside{})
	case render.PartDelete:
		c.Session.Delete(hit.ID)
	case render.PartRotateCCW:
		c.Session.Rotate(hit.ID, -render.RotationStep)
	case render.PartRotateCW:
		c.Session.Rotate(hit.ID, render.RotationStep)
	default:
		if c.Session.State().IsEditing(hit.ID) {
			return
		}
		c.Session.Dispatch(selection.Select{ID: hit.ID, Direct: true})
	}
}

// DragBegin starts a move or resize when (x, y) is on a box or handle.
// It reports false for empty canvas so the caller can pan instead.
func (c *Controller) DragBegin(x, y float64) bool {
	boxes := c.Editor().Boxes(c.Session.Snapshot(), c.Session.State())
	hit := render.HitTest(boxes, x, y)
	if hit.Part != render.PartBody && !hit.Part.Resize() {
		c.drag = nil
		return false
	}
	for _, b := range boxes {
		if b.ID != hit.ID {
			continue
		}
		if b.Locked {
			c.Session.Dispatch(selection.Select{ID: b.ID})
			c.drag = nil
			return true
		}
		c.Session.Dispatch(selection.GestureStart{ID: b.ID})
		c.drag = &dragState{id: b.ID, part: hit.Part, start: b.Rect(), anchors: c.anchors(boxes, b.ID)}
		return true
	}
	return false
}

// DragBy accumulates pointer movement of the active gesture.
func (c *Controller) DragBy(dx, dy float64) {
	if c.drag == nil {
		return
	}
	c.drag.dx += dx
	c.drag.dy += dy
}

// Ghost is the screen rectangle of the box under an active gesture.
func (c *Controller) Ghost() (render.Rect, bool) {
	d := c.drag
	if d == nil {
		return render.Rect{}, false
	}
	if d.part.Resize() {
		return render.ResizeRect(d.start, d.part, d.dx, d.dy), true
	}
	r, _ := c.snapped()
	return r, true
}

// Guides are the alignment lines of the current snapped move, in canvas px.
func (c *Controller) Guides() []vector.GuideLine {
	if c.drag == nil || c.drag.part.Resize() {
		return nil
	}
	_, g := c.snapped()
	return g
}

func (c *Controller) snapped() (render.Rect, []vector.GuideLine) {
	d := c.drag
	r := render.Rect{X: d.start.X + d.dx, Y: d.start.Y + d.dy, W: d.start.W, H: d.start.H}
	if !c.Snap || len(d.anchors) == 0 {
		return r, nil
	}
	s, guides := vector.Snap(vector.RF(r.X, r.Y, r.W, r.H), d.anchors,
		vector.SnapOptions{Threshold: SnapThreshold, Edges: true, Centers: true})
	r.X, r.Y = float64(s.X), float64(s.Y)
	return r, guides
}

func (c *Controller) anchors(boxes []render.Box, skip string) []vector.Rect {
	page := c.Session.Page()
	out := []vector.Rect{vector.RF(0, 0, page.Width*c.Zoom, page.Height*c.Zoom)}
	for _, b := range boxes {
		if b.ID == skip {
			continue
		}
		out = append(out, vector.RF(b.Left, b.Top, b.Width, b.Height))
	}
	return out
}

// DragEnd commits the gesture to the store.
func (c *Controller) DragEnd() {
	r, ok := c.Ghost()
	if !ok {
		return
	}
	d := c.drag
	c.drag = nil
	ed := c.Editor()
	if d.part.Resize() {
		c.Session.Resize(ed, d.id, r.X, r.Y, r.W, r.H)
		return
	}
	c.Session.Drag(ed, d.id, r.X, r.Y)
}

// Key names understood by Key, matching fyne key names.
const (
	KeyDelete    = "Delete"
	KeyBackspace = "BackSpace"
	KeyEscape    = "Escape"
	KeyReturn    = "Return"
	KeyEnter     = "Enter"
)

// Key handles a named key press.
func (c *Controller) Key(name string) {
	st := c.Session.State()
	switch name {
	case KeyEscape:
		c.Session.Dispatch(selection.Escape{})
	case KeyReturn, KeyEnter:
		c.Session.Dispatch(selection.Commit{})
	case KeyDelete:
		c.Session.Dispatch(selection.DeleteKey{})
	case KeyBackspace:
		if st.Mode != selection.Editing {
			c.Session.Dispatch(selection.DeleteKey{})
			return
		}
		r := []rune(st.Draft)
		if len(r) > 0 {
			c.Session.Dispatch(selection.Input{Text: string(r[:len(r)-1])})
		}
	}
}

// Rune appends typed text to the draft while editing.
func (c *Controller) Rune(r rune) {
	st := c.Session.State()
	if st.Mode != selection.Editing {
		return
	}
	c.Session.Dispatch(selection.Input{Text: st.Draft + string(r)})
}

// Blur commits a pending edit when the canvas loses focus.
func (c *Controller) Blur() {
	if c.Session.State().Mode == selection.Editing {
		c.Session.Dispatch(selection.Commit{})
	}
}
