/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"os"
	"strings"

	"labeldesigner/internal/payload"
	"labeldesigner/internal/render"
)

// ExportSVG writes p as an SVG document whose viewBox is the page in layout px.
func ExportSVG(p payload.SavePayload, outPath string, opt Options) error {
	data, err := RenderSVG(p, opt)
	if err != nil {
		return err
	}
	if err := ensureDir(outPath); err != nil {
		return err
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

// RenderSVG returns the SVG document for p.
func RenderSVG(p payload.SavePayload, opt Options) ([]byte, error) {
	page := Layout(p, opt)
	s := opt.scale()
	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}
	pw, ph := page.Size.Width, page.Size.Height
	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%dpx\" height=\"%dpx\" viewBox=\"0 0 %g %g\">\n",
		int(math.Round(pw*s)), int(math.Round(ph*s)), pw, ph)
	wf("  <title>%s</title>\n", escText(page.Name))
	wf("  <rect x=\"0\" y=\"0\" width=\"%g\" height=\"%g\" fill=\"#ffffff\"/>\n", pw, ph)
	for _, b := range page.Boxes {
		wf("  <g id=\"%s\" transform=\"translate(%g %g)", escAttr(b.ID), b.Left, b.Top)
		if b.Rotation != 0 {
			wf(" rotate(%g %g %g)", b.Rotation, b.Width/2, b.Height/2)
		}
		wf("\">\n")
		if bg, ok := hexColor(b.Styles.BackgroundColor); ok {
			wf("    <rect width=\"%g\" height=\"%g\" fill=\"%s\"/>\n", b.Width, b.Height, svgColor(bg))
		}
		c := b.Content
		switch c.Kind {
		case render.ContentRule:
			wf("    <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" fill=\"%s\"/>\n", c.Rule.X, c.Rule.Y, c.Rule.W, c.Rule.H, svgColor(textColor(b.Styles)))
		case render.ContentImage:
			wf("    <image width=\"%g\" height=\"%g\" preserveAspectRatio=\"none\" href=\"%s\"/>\n", b.Width, b.Height, escAttr(c.Source))
		case render.ContentPlaceholder:
			wf("    <rect width=\"%g\" height=\"%g\" fill=\"%s\" stroke=\"%s\" stroke-dasharray=\"4 3\"/>\n", b.Width, b.Height, svgColor(paper), svgColor(grey))
			wf("    <text x=\"%g\" y=\"%g\" text-anchor=\"middle\" dominant-baseline=\"middle\" font-family=\"sans-serif\" font-size=\"12\" fill=\"%s\">%s</text>\n",
				b.Width/2, b.Height/2, svgColor(grey), escText(c.Text))
		case render.ContentText:
			attrs := svgFontAttrs(b)
			for _, ln := range c.Lines {
				wf("    <text x=\"%g\" y=\"%g\" dominant-baseline=\"middle\"%s>%s</text>\n", ln.X, ln.Y+c.LineHeight/2, attrs, escText(ln.Text))
			}
		}
		if bw, bc, ok := border(b.Styles); ok {
			wf("    <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" fill=\"none\" stroke=\"%s\" stroke-width=\"%g\"/>\n",
				bw/2, bw/2, b.Width-bw, b.Height-bw, svgColor(bc), bw)
		}
		wf("  </g>\n")
	}
	wf("</svg>\n")
	if werr != nil {
		return nil, fmt.Errorf("build svg: %w", werr)
	}
	return buf.Bytes(), nil
}

func svgFontAttrs(b render.Box) string {
	st := b.Styles
	family := strings.TrimSpace(st.FontFamily)
	if family == "" {
		family = "Helvetica, Arial, sans-serif"
	}
	out := fmt.Sprintf(" font-family=\"%s\" font-size=\"%g\" fill=\"%s\"", escAttr(family), b.Content.FontSize, svgColor(textColor(st)))
	if st.Bold() {
		out += " font-weight=\"bold\""
	}
	if st.Italic() {
		out += " font-style=\"italic\""
	}
	if d := strings.TrimSpace(st.TextDecoration); d != "" && d != "none" {
		out += fmt.Sprintf(" text-decoration=\"%s\"", escAttr(d))
	}
	if ls := strings.TrimSpace(st.LetterSpacing); ls != "" {
		out += fmt.Sprintf(" letter-spacing=\"%s\"", escAttr(ls))
	}
	return out
}

func svgColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

var (
	attrEscaper = strings.NewReplacer(`&`, "&amp;", `"`, "&quot;", `<`, "&lt;", "\n", " ", "\r", "")
	textEscaper = strings.NewReplacer(`&`, "&amp;", `<`, "&lt;", `>`, "&gt;")
)

func escAttr(s string) string { return attrEscaper.Replace(s) }

func escText(s string) string { return textEscaper.Replace(s) }
