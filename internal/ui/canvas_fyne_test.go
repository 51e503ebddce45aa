//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// These tests validate the fyne canvas widget. They are gated behind the
// "fyne" build tag so headless CI does not need fyne or a display:
//
//	go test -tags fyne ./internal/ui
package ui

import (
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"

	"labeldesigner/internal/selection"
)

func almostEqual(a, b, eps float32) bool {
	if a > b {
		return a-b <= eps
	}
	return b-a <= eps
}

func TestTemplateCanvas_MinSizeFollowsZoom(t *testing.T) {
	test.NewTempApp(t)
	c := newController(t)
	tc := NewTemplateCanvas(c, "")
	sz := tc.MinSize()
	// A4 at zoom 0.5 plus padding on both sides.
	if !almostEqual(sz.Width, 794*0.5+2*pagePad, 0.5) || !almostEqual(sz.Height, 1123*0.5+2*pagePad, 0.5) {
		t.Fatalf("unexpected MinSize: %v", sz)
	}
}

func TestTemplateCanvas_TapSelectsAndDrawsChrome(t *testing.T) {
	test.NewTempApp(t)
	c := newController(t)
	tc := NewTemplateCanvas(c, "")
	r := test.TempWidgetRenderer(t, tc).(*canvasRenderer)
	tc.Resize(fyne.NewSize(800, 700))
	before := len(r.Objects())

	// Element "a" is drawn at (50,50) on the page, which starts at pagePad.
	tc.Tapped(&fyne.PointEvent{Position: fyne.NewPos(pagePad+60, pagePad+55)})
	if st := c.Session.State(); st.Mode != selection.Editing || st.ID != "a" {
		t.Fatalf("expected editing a, got %+v", st)
	}
	r.Refresh()
	if after := len(r.Objects()); after <= before {
		t.Fatalf("expected selection chrome objects, before %d after %d", before, after)
	}
}

func TestTemplateCanvas_DragPansOnEmptyCanvas(t *testing.T) {
	test.NewTempApp(t)
	c := newController(t)
	tc := NewTemplateCanvas(c, "")
	tc.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(10, 10)}, Dragged: fyne.NewDelta(5, 7)})
	tc.DragEnd()
	if tc.offsetX != 5 || tc.offsetY != 7 {
		t.Fatalf("expected pan offset (5,7), got (%v,%v)", tc.offsetX, tc.offsetY)
	}
}
