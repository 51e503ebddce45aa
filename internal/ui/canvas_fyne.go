//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"labeldesigner/internal/domain"
	"labeldesigner/internal/render"
)

// pagePad is the gap between the widget edge and the page at zero offset.
const pagePad = 24

var (
	colBackdrop  = color.RGBA{R: 0xe5, G: 0xe7, B: 0xeb, A: 255}
	colOutline   = color.RGBA{R: 0xd1, G: 0xd5, B: 0xdb, A: 255}
	colSelection = color.RGBA{R: 0x3b, G: 0x82, B: 0xf6, A: 255}
	colEditing   = color.RGBA{R: 0x10, G: 0xb9, B: 0x81, A: 255}
	colDelete    = color.RGBA{R: 0xef, G: 0x44, B: 0x44, A: 255}
	colPaper     = color.RGBA{R: 0xf3, G: 0xf4, B: 0xf6, A: 255}
	colMuted     = color.RGBA{R: 0x6b, G: 0x72, B: 0x80, A: 255}
	colClear     = color.RGBA{}
	colGuide     = color.RGBA{R: 0xec, G: 0x48, B: 0x99, A: 255}
)

// TemplateCanvas is the editing surface. It draws Controller boxes and
// forwards pointer and key input to it. Fyne objects are axis-aligned, so
// rotated elements are drawn unrotated here; the preview pane shows rotation.
type TemplateCanvas struct {
	widget.BaseWidget

	ctl       *Controller
	assetRoot string

	offsetX, offsetY float32
	panning          bool
	dragging         bool
}

// NewTemplateCanvas wraps ctl. Relative image sources resolve against assetRoot.
func NewTemplateCanvas(ctl *Controller, assetRoot string) *TemplateCanvas {
	tc := &TemplateCanvas{ctl: ctl, assetRoot: assetRoot}
	tc.ExtendBaseWidget(tc)
	return tc
}

// SetAssetRoot changes where relative image sources are looked up.
func (tc *TemplateCanvas) SetAssetRoot(dir string) {
	tc.assetRoot = dir
	tc.Refresh()
}

func (tc *TemplateCanvas) origin() (float32, float32) {
	return pagePad + tc.offsetX, pagePad + tc.offsetY
}

func (tc *TemplateCanvas) toPage(pos fyne.Position) (float64, float64) {
	ox, oy := tc.origin()
	return float64(pos.X - ox), float64(pos.Y - oy)
}

func (tc *TemplateCanvas) focus() {
	if c := fyne.CurrentApp().Driver().CanvasForObject(tc); c != nil {
		c.Focus(tc)
	}
}

// Tapped selects, edits or triggers a chrome button.
func (tc *TemplateCanvas) Tapped(e *fyne.PointEvent) {
	tc.focus()
	x, y := tc.toPage(e.Position)
	tc.ctl.Tap(x, y)
	tc.Refresh()
}

// Dragged moves or resizes the element under the pointer, or pans.
func (tc *TemplateCanvas) Dragged(e *fyne.DragEvent) {
	if !tc.dragging && !tc.panning {
		start := e.Position.Subtract(e.Dragged)
		x, y := tc.toPage(start)
		if tc.ctl.DragBegin(x, y) {
			tc.dragging = true
		} else {
			tc.panning = true
		}
	}
	if tc.panning {
		tc.offsetX += e.Dragged.DX
		tc.offsetY += e.Dragged.DY
	} else {
		tc.ctl.DragBy(float64(e.Dragged.DX), float64(e.Dragged.DY))
	}
	tc.Refresh()
}

func (tc *TemplateCanvas) DragEnd() {
	if tc.dragging {
		tc.ctl.DragEnd()
	}
	tc.dragging, tc.panning = false, false
	tc.Refresh()
}

// Scrolled zooms the canvas.
func (tc *TemplateCanvas) Scrolled(e *fyne.ScrollEvent) {
	tc.ctl.SetZoom(tc.ctl.Zoom + float64(e.Scrolled.DY)*0.005)
	tc.Refresh()
}

func (tc *TemplateCanvas) FocusGained() {}

func (tc *TemplateCanvas) FocusLost() {
	tc.ctl.Blur()
	tc.Refresh()
}

func (tc *TemplateCanvas) TypedRune(r rune) {
	tc.ctl.Rune(r)
	tc.Refresh()
}

func (tc *TemplateCanvas) TypedKey(e *fyne.KeyEvent) {
	name := string(e.Name)
	if e.Name == fyne.KeyEnter {
		name = KeyReturn
	}
	tc.ctl.Key(name)
	tc.Refresh()
}

func (tc *TemplateCanvas) MinSize() fyne.Size {
	pg := tc.ctl.Session.Page()
	z := float32(tc.ctl.Zoom)
	return fyne.NewSize(float32(pg.Width)*z+2*pagePad, float32(pg.Height)*z+2*pagePad)
}

func (tc *TemplateCanvas) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(colBackdrop)
	page := canvas.NewRectangle(color.White)
	page.StrokeColor = colOutline
	page.StrokeWidth = 1
	caption := canvas.NewText("", colMuted)
	caption.TextSize = 11
	r := &canvasRenderer{tc: tc, bg: bg, page: page, caption: caption, images: map[string]*canvas.Image{}}
	r.rebuild(tc.Size())
	return r
}

type canvasRenderer struct {
	tc      *TemplateCanvas
	bg      *canvas.Rectangle
	page    *canvas.Rectangle
	caption *canvas.Text
	objects []fyne.CanvasObject
	images  map[string]*canvas.Image
}

func (r *canvasRenderer) Destroy()                     {}
func (r *canvasRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *canvasRenderer) MinSize() fyne.Size           { return r.tc.MinSize() }
func (r *canvasRenderer) Layout(size fyne.Size)        { r.rebuild(size) }
func (r *canvasRenderer) Refresh()                     { r.rebuild(r.tc.Size()); canvas.Refresh(r.tc) }

// rebuild recreates the drawable objects from the current boxes.
func (r *canvasRenderer) rebuild(size fyne.Size) {
	tc := r.tc
	ox, oy := tc.origin()
	pg := tc.ctl.Session.Page()
	z := float32(tc.ctl.Zoom)

	r.bg.Resize(size)
	r.bg.Move(fyne.NewPos(0, 0))
	r.page.Resize(fyne.NewSize(float32(pg.Width)*z, float32(pg.Height)*z))
	r.page.Move(fyne.NewPos(ox, oy))
	r.caption.Text = render.Caption(pg, "Editor", tc.ctl.Zoom)
	r.caption.Move(fyne.NewPos(ox, oy-16))

	objs := []fyne.CanvasObject{r.bg, r.page, r.caption}
	var chrome []fyne.CanvasObject
	for _, b := range tc.ctl.Boxes() {
		objs = append(objs, r.box(b, ox, oy)...)
		if ch, ok := render.ChromeFor(b); ok {
			chrome = append(chrome, r.chrome(ch, b.Editing, ox, oy)...)
		}
	}
	for _, g := range tc.ctl.Guides() {
		ln := canvas.NewLine(colGuide)
		ln.StrokeWidth = 1
		ln.Position1 = fyne.NewPos(ox+g.From.X, oy+g.From.Y)
		ln.Position2 = fyne.NewPos(ox+g.To.X, oy+g.To.Y)
		chrome = append(chrome, ln)
	}
	r.objects = append(objs, chrome...)
}

func rect(c color.Color, x, y, w, h float64, ox, oy float32) *canvas.Rectangle {
	rc := canvas.NewRectangle(c)
	rc.Resize(fyne.NewSize(float32(w), float32(h)))
	rc.Move(fyne.NewPos(ox+float32(x), oy+float32(y)))
	return rc
}

func styleColor(s string, def color.Color) color.Color {
	if r, g, b, ok := domain.ParseHexColor(s); ok {
		return color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return def
}

func (r *canvasRenderer) box(b render.Box, ox, oy float32) []fyne.CanvasObject {
	var out []fyne.CanvasObject
	frame := rect(styleColor(b.Styles.BackgroundColor, colClear), b.Left, b.Top, b.Width, b.Height, ox, oy)
	if !b.Selected {
		frame.StrokeColor = colOutline
		frame.StrokeWidth = 1
	}
	out = append(out, frame)

	c := b.Content
	s := b.Scale
	switch c.Kind {
	case render.ContentRule:
		out = append(out, rect(styleColor(b.Styles.Color, color.Black),
			b.Left+c.Rule.X*s, b.Top+c.Rule.Y*s, c.Rule.W*s, c.Rule.H*s, ox, oy))
	case render.ContentImage:
		if img := r.image(c.Source); img != nil {
			img.Resize(fyne.NewSize(float32(b.Width), float32(b.Height)))
			img.Move(fyne.NewPos(ox+float32(b.Left), oy+float32(b.Top)))
			out = append(out, img)
			break
		}
		out = append(out, placeholder(b, c.Source, ox, oy)...)
	case render.ContentPlaceholder:
		out = append(out, placeholder(b, c.Text, ox, oy)...)
	case render.ContentText:
		col := styleColor(b.Styles.Color, color.Black)
		style := fyne.TextStyle{Bold: b.Styles.Bold(), Italic: b.Styles.Italic()}
		for _, ln := range c.Lines {
			t := canvas.NewText(ln.Text, col)
			t.TextSize = float32(c.FontSize * s)
			t.TextStyle = style
			t.Move(fyne.NewPos(ox+float32(b.Left+ln.X*s), oy+float32(b.Top+ln.Y*s)))
			out = append(out, t)
		}
	}
	return out
}

func placeholder(b render.Box, label string, ox, oy float32) []fyne.CanvasObject {
	bg := rect(colPaper, b.Left, b.Top, b.Width, b.Height, ox, oy)
	bg.StrokeColor = colMuted
	bg.StrokeWidth = 1
	if label == "" {
		label = "Image"
	}
	t := canvas.NewText(label, colMuted)
	t.TextSize = 11
	t.Alignment = fyne.TextAlignCenter
	t.Resize(fyne.NewSize(float32(b.Width), float32(b.Height)))
	t.Move(fyne.NewPos(ox+float32(b.Left), oy+float32(b.Top+b.Height/2-8)))
	return []fyne.CanvasObject{bg, t}
}

// image loads local sources once. Remote sources show a placeholder.
func (r *canvasRenderer) image(src string) *canvas.Image {
	src = strings.TrimSpace(src)
	if src == "" || strings.Contains(src, "://") {
		return nil
	}
	if !filepath.IsAbs(src) {
		src = filepath.Join(r.tc.assetRoot, src)
	}
	if img, ok := r.images[src]; ok {
		return img
	}
	if _, err := os.Stat(src); err != nil {
		r.images[src] = nil
		return nil
	}
	img := canvas.NewImageFromFile(src)
	img.FillMode = canvas.ImageFillStretch
	r.images[src] = img
	return img
}

func (r *canvasRenderer) chrome(ch render.Chrome, editing bool, ox, oy float32) []fyne.CanvasObject {
	border := rect(colClear, ch.Border.X, ch.Border.Y, ch.Border.W, ch.Border.H, ox, oy)
	border.StrokeColor = colSelection
	if editing {
		border.StrokeColor = colEditing
	}
	border.StrokeWidth = 2
	out := []fyne.CanvasObject{border}
	for _, h := range ch.Handles {
		out = append(out, rect(colSelection, h.X, h.Y, h.W, h.H, ox, oy))
	}
	button := func(rc render.Rect, fill color.Color, label string) {
		bg := rect(fill, rc.X, rc.Y, rc.W, rc.H, ox, oy)
		bg.CornerRadius = float32(rc.W / 2)
		t := canvas.NewText(label, color.White)
		t.Alignment = fyne.TextAlignCenter
		t.TextStyle = fyne.TextStyle{Bold: true}
		t.Resize(fyne.NewSize(float32(rc.W), float32(rc.H)))
		t.Move(fyne.NewPos(ox+float32(rc.X), oy+float32(rc.Y)))
		out = append(out, bg, t)
	}
	button(ch.Delete, colDelete, "×")
	button(ch.RotateCCW, colSelection, "↺")
	button(ch.RotateCW, colSelection, "↻")
	return out
}
