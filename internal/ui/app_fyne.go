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
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"labeldesigner/internal/binding"
	"labeldesigner/internal/crash"
	"labeldesigner/internal/domain"
	"labeldesigner/internal/editor"
	"labeldesigner/internal/export"
	applog "labeldesigner/internal/log"
	"labeldesigner/internal/render"
	"labeldesigner/internal/selection"
	"labeldesigner/internal/sink"
	"labeldesigner/internal/storage"
	"labeldesigner/internal/store"
	"labeldesigner/internal/textlayout"
	"labeldesigner/internal/version"
)

// Run starts the fyne designer window and blocks until it closes.
func Run(opts Options) error {
	l := applog.WithComponent("ui")
	cfg := opts.Config

	sess, th, err := editor.OpenOrNew(opts.Dir, editor.Options{
		Store:  cfg.Editor.StoreOptions(),
		Page:   cfg.General.DefaultPageSize,
		Footer: cfg.Editor.PinFooter,
	})
	if err != nil {
		return fmt.Errorf("open template: %w", err)
	}
	defer crash.RecoverLatest(func() *storage.TemplateHandle { return th })
	dir := opts.Dir

	var fonts textlayout.Provider = textlayout.BasicProvider{}
	if fd := strings.TrimSpace(cfg.Editor.FontsDir); fd != "" {
		lib := textlayout.NewFontLibrary()
		if n, err := lib.LoadDir(fd); err != nil {
			l.Warn("load fonts", slog.String("dir", fd), slog.Any("err", err))
		} else {
			l.Info("fonts loaded", slog.Int("count", n))
			fonts = textlayout.OTProvider{Lib: lib}
		}
	}

	a := app.NewWithID("labeldesigner")
	w := a.NewWindow("Label Designer " + version.String())
	prefs := a.Preferences()
	w.Resize(fyne.NewSize(
		float32(max(prefs.IntWithFallback("window.width", 1400), 1000)),
		float32(max(prefs.IntWithFallback("window.height", 900), 700)),
	))

	status := widget.NewLabel("Ready")
	ctl := NewController(sess, render.NewProjector(fonts), cfg.Editor.Zoom)
	ctl.ShowValues = cfg.Editor.ShowValues
	ctl.Snap = true
	tc := NewTemplateCanvas(ctl, dir)

	previewImg := canvas.NewImageFromImage(nil)
	previewImg.FillMode = canvas.ImageFillOriginal
	previewCaption := widget.NewLabel("")
	exportOpts := func() export.Options { return export.Options{Fonts: fonts, AssetRoot: dir} }
	refreshPreview := func() {
		p := sess.Payload()
		o := exportOpts()
		o.DPI = int(96 * cfg.Editor.PreviewScale)
		previewImg.Image = export.Rasterize(p, o)
		previewImg.Refresh()
		previewCaption.SetText(render.Caption(sess.Page(), "Preview", cfg.Editor.PreviewScale))
	}

	// Style inspector for the selected element.
	inspectorTitle := widget.NewLabel("No element selected")
	sizeSel := widget.NewSelect(domain.FontSizes, nil)
	familySel := widget.NewSelect(domain.FontFamilies, nil)
	colorSel := widget.NewSelect(domain.Colors, nil)
	bgSel := widget.NewSelect(append([]string{"transparent"}, domain.Colors...), nil)
	alignRadio := widget.NewRadioGroup([]string{"left", "center", "right"}, nil)
	alignRadio.Horizontal = true
	boldCheck := widget.NewCheck("Bold", nil)
	italicCheck := widget.NewCheck("Italic", nil)
	underlineCheck := widget.NewCheck("Underline", nil)
	bindingEntry := widget.NewEntry()
	bindingEntry.SetPlaceHolder("section.field")
	syncing := false

	selectedID := func() string {
		if st := sess.State(); st.Mode != selection.Idle {
			return st.ID
		}
		return ""
	}
	setStyle := func(key, value string) {
		id := selectedID()
		if syncing || id == "" {
			return
		}
		el, ok := sess.Element(id)
		if !ok {
			return
		}
		st := el.Styles.Set(key, value)
		sess.Update(id, store.Patch{Styles: &st})
	}
	sizeSel.OnChanged = func(v string) { setStyle("fontSize", v) }
	familySel.OnChanged = func(v string) { setStyle("fontFamily", v) }
	colorSel.OnChanged = func(v string) { setStyle("color", v) }
	bgSel.OnChanged = func(v string) { setStyle("backgroundColor", v) }
	alignRadio.OnChanged = func(v string) { setStyle("textAlign", v) }
	boldCheck.OnChanged = func(v bool) { setStyle("fontWeight", map[bool]string{true: "bold", false: "normal"}[v]) }
	italicCheck.OnChanged = func(v bool) { setStyle("fontStyle", map[bool]string{true: "italic", false: "normal"}[v]) }
	underlineCheck.OnChanged = func(v bool) {
		setStyle("textDecoration", map[bool]string{true: "underline", false: "none"}[v])
	}
	bindingEntry.OnSubmitted = func(v string) {
		id := selectedID()
		if id == "" {
			return
		}
		v = strings.TrimSpace(v)
		sess.Update(id, store.Patch{DataBinding: &v})
	}
	syncInspector := func() {
		syncing = true
		defer func() { syncing = false }()
		el, ok := sess.Element(selectedID())
		if !ok {
			inspectorTitle.SetText("No element selected")
			return
		}
		title := fmt.Sprintf("%s (%s)", el.ID, el.Type)
		if el.Locked {
			title += " [locked]"
		}
		inspectorTitle.SetText(title)
		sizeSel.SetSelected(el.Styles.FontSize)
		familySel.SetSelected(el.Styles.FontFamily)
		colorSel.SetSelected(el.Styles.Color)
		bgSel.SetSelected(el.Styles.BackgroundColor)
		alignRadio.SetSelected(el.Styles.Align())
		boldCheck.SetChecked(el.Styles.Bold())
		italicCheck.SetChecked(el.Styles.Italic())
		underlineCheck.SetChecked(strings.Contains(el.Styles.TextDecoration, "underline"))
		bindingEntry.SetText(el.DataBinding())
	}
	inspector := container.NewVBox(
		inspectorTitle,
		widget.NewForm(
			widget.NewFormItem("Size", sizeSel),
			widget.NewFormItem("Font", familySel),
			widget.NewFormItem("Color", colorSel),
			widget.NewFormItem("Background", bgSel),
			widget.NewFormItem("Align", alignRadio),
			widget.NewFormItem("Binding", bindingEntry),
		),
		container.NewHBox(boldCheck, italicCheck, underlineCheck),
	)

	// Field palette, grouped by data section.
	var paletteItems []*widget.AccordionItem
	var dataItems []*widget.AccordionItem
	bySection := map[string][]domain.Field{}
	for _, f := range domain.Palette() {
		bySection[f.Section] = append(bySection[f.Section], f)
	}
	for _, sec := range domain.Sections() {
		var buttons []fyne.CanvasObject
		var form []*widget.FormItem
		for _, f := range bySection[sec] {
			buttons = append(buttons, widget.NewButton(f.Label, func() {
				if _, err := sess.AddField(f); err != nil {
					status.SetText("Add failed: " + err.Error())
				}
			}))
			if f.Type == domain.TypeImage {
				continue
			}
			entry := widget.NewEntry()
			v, _ := binding.Lookup(sess.Data().Record(), f.Path())
			entry.SetText(v)
			entry.OnChanged = func(v string) {
				if err := sess.SetData(f.Section, f.Key, v); err != nil {
					l.Warn("set data", slog.String("path", f.Path()), slog.Any("err", err))
				}
			}
			form = append(form, widget.NewFormItem(f.Label, entry))
		}
		title := domain.SectionTitle[sec]
		paletteItems = append(paletteItems, widget.NewAccordionItem(title, container.NewVBox(buttons...)))
		dataItems = append(dataItems, widget.NewAccordionItem(title, widget.NewForm(form...)))
	}
	palette := widget.NewAccordion(paletteItems...)
	palette.Open(0)

	// Template settings.
	nameEntry := widget.NewEntry()
	nameEntry.SetText(sess.Name())
	nameEntry.OnChanged = func(v string) { sess.SetName(v) }
	pageSel := widget.NewSelect(domain.PageSizeNames(), func(v string) {
		if v != sess.Page().Name {
			sess.SetPage(v)
		}
	})
	pageSel.SetSelected(sess.Page().Name)
	zoomSlider := widget.NewSlider(MinZoom, MaxZoom)
	zoomSlider.Step = 0.05
	zoomSlider.SetValue(ctl.Zoom)
	zoomSlider.OnChanged = func(v float64) {
		ctl.SetZoom(v)
		tc.Refresh()
	}
	valuesCheck := widget.NewCheck("Show values", func(v bool) {
		ctl.ShowValues = v
		tc.Refresh()
	})
	valuesCheck.SetChecked(ctl.ShowValues)
	snapCheck := widget.NewCheck("Snap", func(v bool) { ctl.Snap = v })
	snapCheck.SetChecked(ctl.Snap)

	sk := opts.Sink
	save := func(target string) {
		s := sk
		if s == nil {
			s = sink.FileSink{Root: target, Catalog: opts.Catalog}
		}
		status.SetText("Saving…")
		go func() {
			saved, err := sess.Save(context.Background(), s)
			fyne.Do(func() {
				if err != nil {
					l.Error("save failed", slog.Any("err", err))
					dialog.ShowError(err, w)
					status.SetText("Save failed")
					return
				}
				if target != "" {
					dir = target
					tc.SetAssetRoot(dir)
					th = &storage.TemplateHandle{Root: dir, ManifestPath: filepath.Join(dir, storage.ManifestFileName), Payload: saved}
					addRecentTemplate(prefs, dir)
				}
				status.SetText("Saved " + saved.ID)
			})
		}()
	}
	saveBtn := widget.NewButton("Save", func() {
		if sk != nil || dir != "" {
			save(dir)
			return
		}
		dialog.ShowFolderOpen(func(u fyne.ListableURI, err error) {
			if err != nil || u == nil {
				return
			}
			save(u.Path())
		}, w)
	})
	exportBtn := widget.NewButton("Export…", func() {
		dialog.ShowFileSave(func(wc fyne.URIWriteCloser, err error) {
			if err != nil || wc == nil {
				return
			}
			path := wc.URI().Path()
			_ = wc.Close()
			if err := exportTo(path, sess, exportOpts()); err != nil {
				dialog.ShowError(err, w)
				return
			}
			status.SetText("Exported " + filepath.Base(path))
		}, w)
	})
	addBtn := func(label string, typ domain.ElementType) *widget.Button {
		return widget.NewButton(label, func() {
			if _, err := sess.Add(typ, "", ""); err != nil {
				status.SetText("Add failed: " + err.Error())
			}
		})
	}
	toolbar := container.NewHBox(
		addBtn("Text", domain.TypeText),
		addBtn("Image", domain.TypeImage),
		addBtn("Horizontal Rule", domain.TypeHorizontalRule),
		addBtn("Vertical Rule", domain.TypeVerticalRule),
		widget.NewSeparator(),
		widget.NewButton("Delete", func() {
			if id := selectedID(); id != "" {
				sess.Delete(id)
			}
		}),
		widget.NewButton("Clear", func() {
			dialog.ShowConfirm("Clear template", "Remove every element?", func(ok bool) {
				if ok {
					sess.Clear()
				}
			}, w)
		}),
		widget.NewSeparator(),
		saveBtn, exportBtn,
	)
	settings := container.NewHBox(
		widget.NewLabel("Name"), container.NewGridWrap(fyne.NewSize(220, 36), nameEntry),
		widget.NewLabel("Page"), pageSel,
		widget.NewLabel("Zoom"), container.NewGridWrap(fyne.NewSize(160, 36), zoomSlider),
		valuesCheck,
		snapCheck,
	)

	sess.OnChange(func() {
		if th != nil {
			th.Payload = sess.Payload()
		}
		fyne.Do(func() {
			tc.Refresh()
			syncInspector()
			refreshPreview()
		})
	})

	left := container.NewAppTabs(
		container.NewTabItem("Fields", container.NewVScroll(palette)),
		container.NewTabItem("Data", container.NewVScroll(widget.NewAccordion(dataItems...))),
		container.NewTabItem("Style", inspector),
	)
	preview := container.NewBorder(previewCaption, nil, nil, nil, container.NewScroll(previewImg))
	center := container.NewHSplit(container.NewScroll(tc), preview)
	center.Offset = 0.6
	body := container.NewHSplit(left, center)
	body.Offset = 0.22

	w.SetContent(container.NewBorder(container.NewVBox(toolbar, settings), status, nil, nil, body))
	w.SetOnClosed(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
	})
	if dir != "" {
		addRecentTemplate(prefs, dir)
	}
	refreshPreview()
	l.Info("starting UI", slog.String("dir", dir), slog.Int("elements", len(sess.Snapshot().Elements)))
	w.ShowAndRun()
	return nil
}

// exportTo picks the exporter from the file extension; PDF is the default.
func exportTo(path string, sess *editor.Session, o export.Options) error {
	p := sess.Payload()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return export.ExportPNG(p, path, o)
	case ".svg":
		return export.ExportSVG(p, path, o)
	case ".pdf":
		return export.ExportPDF(p, path, o)
	default:
		return export.ExportPDF(p, path+".pdf", o)
	}
}

// Recent template persistence helpers.
const recentPrefsKey = "recent.templates"
const recentMax = 10

func loadRecentTemplates(p fyne.Preferences) []string {
	var items []string
	if raw := p.StringWithFallback(recentPrefsKey, ""); strings.TrimSpace(raw) != "" {
		_ = json.Unmarshal([]byte(raw), &items)
	}
	out := make([]string, 0, len(items))
	for _, s := range items {
		if _, err := os.Stat(s); err == nil {
			out = append(out, s)
		}
	}
	return out
}

func addRecentTemplate(p fyne.Preferences, path string) {
	abs, _ := filepath.Abs(path)
	out := []string{abs}
	for _, s := range loadRecentTemplates(p) {
		if !strings.EqualFold(s, abs) {
			out = append(out, s)
		}
	}
	if len(out) > recentMax {
		out = out[:recentMax]
	}
	b, _ := json.Marshal(out)
	p.SetString(recentPrefsKey, string(b))
}
