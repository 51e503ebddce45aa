/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	"image/png"
	"math"
	"os"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
	_ "golang.org/x/image/webp"
	"labeldesigner/internal/payload"
	"labeldesigner/internal/render"
	"labeldesigner/internal/textlayout"
)

// ExportPNG rasterizes p at opt.DPI onto a white page.
func ExportPNG(p payload.SavePayload, outPath string, opt Options) error {
	img := Rasterize(p, opt)
	if err := ensureDir(outPath); err != nil {
		return err
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close png: %w", err)
	}
	return nil
}

// Rasterize draws p into a new image.
func Rasterize(p payload.SavePayload, opt Options) *image.RGBA {
	page := Layout(p, opt)
	s := opt.scale()
	img := image.NewRGBA(image.Rect(0, 0, px(page.Size.Width, s), px(page.Size.Height, s)))
	draw.Draw(img, img.Bounds(), image.NewUniform(white), image.Point{}, draw.Src)
	fonts := opt.Fonts
	if fonts == nil {
		fonts = textlayout.BasicProvider{}
	}
	for _, b := range page.Boxes {
		local := rasterBox(b, s, fonts, opt.AssetRoot)
		if local == nil {
			continue
		}
		if b.Rotation == 0 {
			at := image.Pt(px(b.Left, s), px(b.Top, s))
			draw.Draw(img, local.Bounds().Add(at), local, image.Point{}, draw.Over)
			continue
		}
		xdraw.BiLinear.Transform(img, rotation(b, s, local.Bounds().Size()), local, local.Bounds(), xdraw.Over, nil)
	}
	return img
}

func px(v, s float64) int { return int(math.Round(v * s)) }

// rotation maps box-local pixels onto the page, turning clockwise about the
// box centre.
func rotation(b render.Box, s float64, size image.Point) f64.Aff3 {
	rad := b.Rotation * math.Pi / 180
	sin, cos := math.Sincos(rad)
	cx, cy := (b.Left+b.Width/2)*s, (b.Top+b.Height/2)*s
	hw, hh := float64(size.X)/2, float64(size.Y)/2
	return f64.Aff3{
		cos, -sin, cx - cos*hw + sin*hh,
		sin, cos, cy - sin*hw - cos*hh,
	}
}

// rasterBox draws one unrotated box into its own transparent image.
func rasterBox(b render.Box, s float64, fonts textlayout.Provider, root string) *image.RGBA {
	w, h := px(b.Width, s), px(b.Height, s)
	if w <= 0 || h <= 0 {
		return nil
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	if bg, ok := hexColor(b.Styles.BackgroundColor); ok {
		fillRect(img, 0, 0, w-1, h-1, bg)
	}
	c := b.Content
	switch c.Kind {
	case render.ContentRule:
		r := c.Rule
		fillRect(img, px(r.X, s), px(r.Y, s), px(r.X+r.W, s)-1, px(r.Y+r.H, s)-1, textColor(b.Styles))
	case render.ContentImage:
		if src := loadImage(assetPath(root, c.Source)); src != nil {
			xdraw.CatmullRom.Scale(img, img.Bounds(), src, src.Bounds(), xdraw.Over, nil)
			break
		}
		rasterPlaceholder(img)
	case render.ContentPlaceholder:
		rasterPlaceholder(img)
	case render.ContentText:
		spec := textlayout.SpecFromStyles(b.Styles)
		spec.SizePx = float32(c.FontSize * s)
		face, _ := fonts.Resolve(spec)
		m := face.Metrics()
		asc := float64(m.Ascent.Ceil())
		fh := float64(m.Height.Ceil())
		d := font.Drawer{Dst: img, Src: image.NewUniform(textColor(b.Styles)), Face: face}
		for _, ln := range c.Lines {
			top := (ln.Y + c.LineHeight/2) * s
			d.Dot = fixed.P(px(ln.X, s), int(math.Round(top-fh/2+asc)))
			d.DrawString(ln.Text)
		}
	}
	if bw, bc, ok := border(b.Styles); ok {
		for i := 0; i < int(math.Max(1, math.Round(bw*s))); i++ {
			strokeRect(img, i, i, w-1-i, h-1-i, bc)
		}
	}
	return img
}

func loadImage(path string) image.Image {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer func() { _ = f.Close() }()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil
	}
	return img
}

func rasterPlaceholder(img *image.RGBA) {
	r := img.Bounds()
	fillRect(img, 0, 0, r.Dx()-1, r.Dy()-1, paper)
	strokeRect(img, 0, 0, r.Dx()-1, r.Dy()-1, grey)
}

// strokeRect draws a 1px axis-aligned rectangle border inclusive of endpoints.
func strokeRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	for x := x0; x <= x1; x++ {
		img.SetRGBA(x, y0, col)
		img.SetRGBA(x, y1, col)
	}
	for y := y0; y <= y1; y++ {
		img.SetRGBA(x0, y, col)
		img.SetRGBA(x1, y, col)
	}
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	draw.Draw(img, image.Rect(x0, y0, x1+1, y1+1), image.NewUniform(col), image.Point{}, draw.Over)
}
