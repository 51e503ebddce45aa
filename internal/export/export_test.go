/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"labeldesigner/internal/domain"
	"labeldesigner/internal/payload"
	"labeldesigner/internal/render"
	"labeldesigner/internal/storage"
)

func samplePayload() payload.SavePayload {
	ser := payload.Serializer{Now: func() time.Time { return time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC) }}
	order := domain.NewElement("el-order", domain.TypeField, "Order {{orderDetails.orderNumber}}", "orderDetails.orderNumber")
	order.Position = domain.Point{X: 40, Y: 40}
	order.Size = domain.Size{Width: 300, Height: 30}
	order.Styles = order.Styles.Set("backgroundColor", "#ff0000").Set("border", "2px solid #0000ff")
	rule := domain.NewElement("el-rule", domain.TypeHorizontalRule, "", "")
	rule.Position = domain.Point{X: 40, Y: 100}
	rule.Size = domain.Size{Width: 400, Height: 10}
	img := domain.NewElement("el-logo", domain.TypeImage, "", "")
	img.Position = domain.Point{X: 400, Y: 40}
	img.Size = domain.Size{Width: 150, Height: 100}
	return ser.Serialize(payload.Input{
		Name:      "Waybill <A5>",
		Size:      "A5",
		Elements:  []domain.Element{order, rule, img},
		Data:      domain.SampleData(),
		Rotations: domain.Rotations{"el-rule": 90},
	})
}

func TestLayoutResolvesBindingsAtScaleOne(t *testing.T) {
	p := samplePayload()
	page := Layout(p, Options{})
	assert.Equal(t, "A5", page.Size.Name)
	require.Len(t, page.Boxes, 3)

	order := page.Boxes[0]
	assert.Equal(t, 40.0, order.Left)
	assert.Equal(t, 1.0, order.Scale)
	assert.Equal(t, "Order "+p.TemplateData.OrderDetails.OrderNumber, order.Content.Text)
	assert.Equal(t, 90.0, page.Boxes[1].Rotation)
	assert.Equal(t, render.ContentPlaceholder, page.Boxes[2].Content.Kind)
}

func TestLayoutDataOverride(t *testing.T) {
	data := domain.SampleData()
	require.NoError(t, data.Set("orderDetails", "orderNumber", "ORD-42"))
	page := Layout(samplePayload(), Options{Data: &data})
	assert.Equal(t, "Order ORD-42", page.Boxes[0].Content.Text)
}

func TestBorderParsing(t *testing.T) {
	w, c, ok := border(domain.Styles{Border: "1px solid #00ff00"})
	assert.True(t, ok)
	assert.Equal(t, 1.0, w)
	assert.Equal(t, color.RGBA{G: 255, A: 255}, c)

	_, _, ok = border(domain.Styles{Border: "none"})
	assert.False(t, ok)
	_, _, ok = border(domain.Styles{})
	assert.False(t, ok)
}

func TestExportPDFCreatesFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "label.pdf")
	require.NoError(t, ExportPDF(samplePayload(), out, Options{}))
	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "%PDF-"), "missing PDF header")
}

func TestRasterizeDrawsBoxes(t *testing.T) {
	img := Rasterize(samplePayload(), Options{})
	assert.Equal(t, image.Rect(0, 0, 559, 794), img.Bounds())
	// Background of the order field is red, the page stays white.
	assert.Equal(t, color.RGBA{R: 255, A: 255}, img.RGBAAt(335, 45))
	assert.Equal(t, white, img.RGBAAt(5, 5))
	// The 2px blue border sits on the box edge.
	assert.Equal(t, color.RGBA{B: 255, A: 255}, img.RGBAAt(40, 40))
}

func TestRasterizeHonoursDPI(t *testing.T) {
	img := Rasterize(samplePayload(), Options{DPI: 192})
	assert.Equal(t, 1118, img.Bounds().Dx())
	assert.Equal(t, 1588, img.Bounds().Dy())
}

func TestExportPNGDecodes(t *testing.T) {
	out := filepath.Join(t.TempDir(), "label.png")
	require.NoError(t, ExportPNG(samplePayload(), out, Options{}))
	f, err := os.Open(out)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 559, img.Bounds().Dx())
}

func TestRenderSVG(t *testing.T) {
	b, err := RenderSVG(samplePayload(), Options{DPI: 192})
	require.NoError(t, err)
	svg := string(b)
	assert.Contains(t, svg, `width="1118px"`)
	assert.Contains(t, svg, `viewBox="0 0 559 794"`)
	assert.Contains(t, svg, "<title>Waybill &lt;A5&gt;</title>")
	assert.Contains(t, svg, `rotate(90 200 5)`)
	assert.Contains(t, svg, `fill="#ff0000"`)
	assert.Contains(t, svg, `stroke-dasharray`)
	assert.NotContains(t, svg, "{{")
}

func TestBatchExportPresets(t *testing.T) {
	root := t.TempDir()
	th, err := storage.InitTemplate(root, samplePayload())
	require.NoError(t, err)

	written, err := BatchExport(th, BatchOptions{Preset: PresetScreen})
	require.NoError(t, err)
	id := th.Payload.ID
	assert.Equal(t, []string{
		filepath.Join(root, "exports", "screen", id+".png"),
		filepath.Join(root, "exports", "screen", id+".svg"),
	}, written)

	written, err = BatchExport(th, BatchOptions{Preset: PresetPrint, DPIOverride: 48})
	require.NoError(t, err)
	require.Len(t, written, 2)
	for _, p := range written {
		st, err := os.Stat(p)
		require.NoError(t, err)
		assert.Positive(t, st.Size())
	}

	_, err = BatchExport(th, BatchOptions{Formats: []string{"tiff"}})
	assert.ErrorContains(t, err, "unknown format")
	_, err = BatchExport(nil, BatchOptions{})
	assert.Error(t, err)
}

func TestOutputPath(t *testing.T) {
	th := &storage.TemplateHandle{Root: "/tmp/tpl"}
	assert.Equal(t, filepath.Join("/tmp/tpl", "exports", "a.pdf"), OutputPath(th, "a.pdf"))
	assert.Equal(t, "/abs/a.pdf", OutputPath(th, "/abs/a.pdf"))
}
