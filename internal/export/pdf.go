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
	"image/color"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"labeldesigner/internal/domain"
	"labeldesigner/internal/payload"
	"labeldesigner/internal/render"
	"labeldesigner/internal/version"
)

// ptPerPx converts layout px to PDF points.
const ptPerPx = 72.0 / pxPerInch

// ExportPDF writes p as a single page PDF. Text uses the core PDF fonts, so
// no font files are embedded.
func ExportPDF(p payload.SavePayload, outPath string, opt Options) error {
	page := Layout(p, opt)
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: page.Size.Width * ptPerPx, Ht: page.Size.Height * ptPerPx},
	})
	pdf.SetTitle(page.Name, true)
	pdf.SetCreator("labeldesigner "+version.String(), true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	for _, b := range page.Boxes {
		drawPDFBox(pdf, tr, b, opt.AssetRoot)
	}
	if pdf.Err() {
		return fmt.Errorf("build pdf: %w", pdf.Error())
	}
	if err := ensureDir(outPath); err != nil {
		return err
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func drawPDFBox(pdf *gofpdf.Fpdf, tr func(string) string, b render.Box, root string) {
	x, y := b.Left*ptPerPx, b.Top*ptPerPx
	w, h := b.Width*ptPerPx, b.Height*ptPerPx
	if b.Rotation != 0 {
		pdf.TransformBegin()
		// gofpdf rotates counter-clockwise.
		pdf.TransformRotate(-b.Rotation, x+w/2, y+h/2)
		defer pdf.TransformEnd()
	}
	if bg, ok := hexColor(b.Styles.BackgroundColor); ok {
		setFillColor(pdf, bg)
		pdf.Rect(x, y, w, h, "F")
	}
	c := b.Content
	switch c.Kind {
	case render.ContentRule:
		setFillColor(pdf, textColor(b.Styles))
		pdf.Rect(x+c.Rule.X*ptPerPx, y+c.Rule.Y*ptPerPx, c.Rule.W*ptPerPx, c.Rule.H*ptPerPx, "F")
	case render.ContentImage:
		if path := assetPath(root, c.Source); path != "" {
			pdf.ImageOptions(path, x, y, w, h, false, gofpdf.ImageOptions{ReadDpi: false}, 0, "")
			if !pdf.Err() {
				break
			}
			pdf.ClearError()
		}
		pdfPlaceholder(pdf, x, y, w, h, "Image")
	case render.ContentPlaceholder:
		pdfPlaceholder(pdf, x, y, w, h, c.Text)
	case render.ContentText:
		family, style := pdfFont(b.Styles)
		size := c.FontSize * ptPerPx
		pdf.SetFont(family, style, size)
		setTextColor(pdf, textColor(b.Styles))
		for _, ln := range c.Lines {
			// Baseline sits roughly 0.8em below the top of a centred line box.
			base := ln.Y + (c.LineHeight-c.FontSize)/2 + c.FontSize*0.8
			pdf.Text(x+ln.X*ptPerPx, y+base*ptPerPx, tr(ln.Text))
		}
	}
	if bw, bc, ok := border(b.Styles); ok {
		setDrawColor(pdf, bc)
		pdf.SetLineWidth(bw * ptPerPx)
		pdf.Rect(x, y, w, h, "D")
	}
}

func pdfPlaceholder(pdf *gofpdf.Fpdf, x, y, w, h float64, label string) {
	setFillColor(pdf, paper)
	setDrawColor(pdf, grey)
	pdf.SetLineWidth(0.75)
	pdf.SetDashPattern([]float64{3, 2}, 0)
	pdf.Rect(x, y, w, h, "FD")
	pdf.SetDashPattern([]float64{}, 0)
	pdf.SetFont("Helvetica", "", 9)
	setTextColor(pdf, grey)
	tw := pdf.GetStringWidth(label)
	pdf.Text(x+(w-tw)/2, y+h/2+3, label)
}

// pdfFont maps CSS font styles onto the core PDF fonts.
func pdfFont(s domain.Styles) (family, style string) {
	fam := strings.ToLower(s.FontFamily)
	switch {
	case strings.Contains(fam, "courier") || strings.Contains(fam, "mono"):
		family = "Courier"
	case strings.Contains(fam, "times") || (strings.Contains(fam, "serif") && !strings.Contains(fam, "sans")):
		family = "Times"
	default:
		family = "Helvetica"
	}
	if s.Bold() {
		style += "B"
	}
	if s.Italic() {
		style += "I"
	}
	if strings.Contains(strings.ToLower(s.TextDecoration), "underline") {
		style += "U"
	}
	return family, style
}

func setDrawColor(pdf *gofpdf.Fpdf, c color.RGBA) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

func setFillColor(pdf *gofpdf.Fpdf, c color.RGBA) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}

func setTextColor(pdf *gofpdf.Fpdf, c color.RGBA) {
	pdf.SetTextColor(int(c.R), int(c.G), int(c.B))
}
