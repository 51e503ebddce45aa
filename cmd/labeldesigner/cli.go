/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"labeldesigner/internal/backend"
	"labeldesigner/internal/binding"
	"labeldesigner/internal/config"
	"labeldesigner/internal/domain"
	"labeldesigner/internal/editor"
	"labeldesigner/internal/export"
	applog "labeldesigner/internal/log"
	"labeldesigner/internal/pack"
	"labeldesigner/internal/payload"
	"labeldesigner/internal/render"
	"labeldesigner/internal/sink"
	"labeldesigner/internal/storage"
	"labeldesigner/internal/textlayout"
	"labeldesigner/internal/ui"
	"labeldesigner/internal/version"
)

var errUsage = errors.New("usage")

type cli struct {
	out   io.Writer
	cfg   config.AppConfig
	token string

	th  *storage.TemplateHandle
	cat *storage.Catalog
}

func (c *cli) usage() {
	fmt.Fprintln(c.out, "Label Designer")
	fmt.Fprintf(c.out, "Version: %s\n", version.String())
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, "Usage:")
	fmt.Fprintln(c.out, "  labeldesigner version                               Show version")
	fmt.Fprintln(c.out, "  labeldesigner init [-name N] [-size A4] [-blank] <dir>   Create a template project")
	fmt.Fprintln(c.out, "  labeldesigner open <dir>                            Print a template summary")
	fmt.Fprintln(c.out, "  labeldesigner preview [-editor] [-scale S] <dir>    List the projected boxes")
	fmt.Fprintln(c.out, "  labeldesigner data <dir> section.field=value ...    Edit the sample record")
	fmt.Fprintln(c.out, "  labeldesigner save [-sink file|http|log] [-default] <dir>  Save through a sink")
	fmt.Fprintln(c.out, "  labeldesigner export [-o out] [-dpi N] pdf|png|svg <dir>  Export one format")
	fmt.Fprintln(c.out, "  labeldesigner export [-preset screen|print] all <dir>      Export a preset batch")
	fmt.Fprintln(c.out, "  labeldesigner pack <dir> <zip>                      Share a template with its assets")
	fmt.Fprintln(c.out, "  labeldesigner unpack <zip> <dir>                    Install a shared template")
	fmt.Fprintln(c.out, "  labeldesigner validate <file>                       Check a payload file against the schema")
	fmt.Fprintln(c.out, "  labeldesigner fields                                List the field palette")
	fmt.Fprintln(c.out, "  labeldesigner list | search <text> | default <id>   Query the template catalog")
	fmt.Fprintln(c.out, "  labeldesigner reindex <dir>...                      Rebuild the catalog")
	fmt.Fprintln(c.out, "  labeldesigner serve [-memory] [-addr :8080]         Run the template server")
	fmt.Fprintln(c.out, "  labeldesigner login [-subject S] [<token>]          Store a backend token")
	fmt.Fprintln(c.out, "  labeldesigner logout                                Remove the stored backend token")
	fmt.Fprintln(c.out, "  labeldesigner ui [<dir>]                            Launch desktop UI (build with -tags fyne)")
}

func (c *cli) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		c.usage()
		return nil
	}
	cmd, rest := args[0], args[1:]
	applog.WithComponent("cli").Debug("command", slog.String("cmd", cmd), slog.Int("args", len(rest)))
	switch cmd {
	case "version", "--version", "-v":
		fmt.Fprintln(c.out, version.String())
		return nil
	case "init":
		return c.cmdInit(ctx, rest)
	case "open":
		return c.cmdOpen(rest)
	case "preview":
		return c.cmdPreview(rest)
	case "data":
		return c.cmdData(ctx, rest)
	case "save":
		return c.cmdSave(ctx, rest)
	case "export":
		return c.cmdExport(rest)
	case "pack":
		return c.cmdPack(rest)
	case "unpack":
		return c.cmdUnpack(ctx, rest)
	case "validate":
		return c.cmdValidate(rest)
	case "fields":
		return c.cmdFields()
	case "list":
		return c.cmdList(ctx)
	case "search":
		return c.cmdSearch(ctx, rest)
	case "default":
		return c.cmdDefault(ctx, rest)
	case "reindex":
		return c.cmdReindex(ctx, rest)
	case "serve":
		return c.cmdServe(ctx, rest)
	case "login":
		return c.cmdLogin(ctx, rest)
	case "logout":
		return c.cmdLogout()
	case "ui":
		return c.cmdUI(rest)
	case "help", "-h", "--help":
		c.usage()
		return nil
	}
	fmt.Fprintf(c.out, "unknown command %q\n", cmd)
	c.usage()
	return errUsage
}

func (c *cli) close() {
	if c.cat != nil {
		_ = c.cat.Close()
		c.cat = nil
	}
}

func (c *cli) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.out)
	return fs
}

// parse returns the positional arguments, requiring at least n.
func (c *cli) parse(fs *flag.FlagSet, args []string, n int, what string) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		return nil, errUsage
	}
	if fs.NArg() < n {
		fmt.Fprintf(c.out, "%s requires %s\n", fs.Name(), what)
		c.usage()
		return nil, errUsage
	}
	return fs.Args(), nil
}

func (c *cli) sessionOptions() editor.Options {
	return editor.Options{
		Store:  c.cfg.Editor.StoreOptions(),
		Page:   c.cfg.General.DefaultPageSize,
		Footer: c.cfg.Editor.PinFooter,
	}
}

func (c *cli) open(dir string) (*editor.Session, error) {
	abs, _ := filepath.Abs(dir)
	s, th, err := editor.OpenDir(abs, c.sessionOptions())
	if err != nil {
		return nil, err
	}
	c.th = th
	return s, nil
}

// catalog opens the per-user catalog on first use.
func (c *cli) catalog() (*storage.Catalog, error) {
	if c.cat != nil {
		return c.cat, nil
	}
	dir, err := config.CatalogDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("catalog dir: %w", err)
	}
	cat, err := storage.OpenCatalog(storage.CatalogPath(dir))
	if err != nil {
		return nil, err
	}
	c.cat = cat
	return cat, nil
}

// fileSink saves into dir and records the template in the catalog when it
// can be opened.
func (c *cli) fileSink(dir string, asDefault bool) sink.FileSink {
	fs := sink.FileSink{Root: dir, AsDefault: asDefault}
	if cat, err := c.catalog(); err == nil {
		fs.Catalog = cat
	} else {
		applog.WithComponent("cli").Warn("catalog unavailable", slog.Any("err", err))
	}
	return fs
}

func (c *cli) cmdInit(ctx context.Context, args []string) error {
	fs := c.flags("init")
	name := fs.String("name", "", "template name")
	size := fs.String("size", c.cfg.General.DefaultPageSize, "page size (A3, A4, A5)")
	blank := fs.Bool("blank", false, "start without the sample layout")
	asDefault := fs.Bool("default", false, "mark as the default template")
	pos, err := c.parse(fs, args, 1, "<dir>")
	if err != nil {
		return err
	}
	abs, _ := filepath.Abs(pos[0])
	if _, err := storage.Open(abs); err == nil {
		return fmt.Errorf("template already exists at %s", abs)
	} else if !errors.Is(err, storage.ErrNoTemplate) {
		return err
	}
	opts := c.sessionOptions()
	opts.Name = strings.TrimSpace(*name)
	if opts.Name == "" {
		opts.Name = filepath.Base(abs)
	}
	opts.Page = *size
	var initial []domain.Element
	if !*blank {
		initial = domain.SampleElements()
	}
	s, err := editor.New(opts, initial...)
	if err != nil {
		return err
	}
	saved, err := s.Save(ctx, c.fileSink(abs, *asDefault))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Created template %s (%s) at %s\n", saved.Name, saved.ID, abs)
	return nil
}

func (c *cli) cmdOpen(args []string) error {
	pos, err := c.parse(c.flags("open"), args, 1, "<dir>")
	if err != nil {
		return err
	}
	s, err := c.open(pos[0])
	if err != nil {
		return err
	}
	p := s.Payload()
	fmt.Fprintf(c.out, "Template: %s\n", p.Name)
	fmt.Fprintf(c.out, "ID: %s\n", p.ID)
	fmt.Fprintf(c.out, "Size: %s\n", p.Metadata.CanvasSize)
	fmt.Fprintf(c.out, "Elements: %d (text %d, field %d, image %d)\n",
		p.Metadata.TotalElements, p.Metadata.TextElements, p.Metadata.FieldElements, p.Metadata.ImageElements)
	fmt.Fprintf(c.out, "Created: %s\n", p.CreatedAt)
	fmt.Fprintln(c.out, "Root:", c.th.Root)
	if b := bindings(p.Elements); len(b) > 0 {
		fmt.Fprintln(c.out, "Bindings:", strings.Join(b, ", "))
	}
	return nil
}

// bindings lists the distinct data paths used by elements, sorted.
func bindings(els []domain.Element) []string {
	seen := map[string]bool{}
	for _, e := range els {
		if b := e.DataBinding(); b != "" {
			seen[b] = true
		}
		for _, t := range binding.Tokens(e.Content()) {
			seen[t] = true
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (c *cli) cmdPreview(args []string) error {
	fs := c.flags("preview")
	asEditor := fs.Bool("editor", false, "show the editor rendition with binding labels")
	scale := fs.Float64("scale", 1, "canvas scale")
	pos, err := c.parse(fs, args, 1, "<dir>")
	if err != nil {
		return err
	}
	s, err := c.open(pos[0])
	if err != nil {
		return err
	}
	proj := render.NewProjector(textlayout.BasicProvider{})
	var surface render.Surface = s.Preview(proj, *scale)
	label := "Preview"
	if *asEditor {
		surface = s.Surface(proj, *scale, c.cfg.Editor.ShowValues)
		label = "Editor"
	}
	fmt.Fprintln(c.out, render.Caption(s.Page(), label, *scale))
	for _, b := range surface.Boxes(s.Snapshot(), s.State()) {
		fmt.Fprintf(c.out, "%-44s %-14s %7.1f,%-7.1f %6.1fx%-6.1f", b.ID, b.Type, b.Left, b.Top, b.Width, b.Height)
		if b.Rotation != 0 {
			fmt.Fprintf(c.out, " rot=%g", b.Rotation)
		}
		if b.Locked {
			fmt.Fprint(c.out, " locked")
		}
		switch b.Content.Kind {
		case render.ContentText:
			fmt.Fprintf(c.out, " %q", b.Content.Text)
		case render.ContentImage:
			fmt.Fprintf(c.out, " image=%s", b.Content.Source)
		case render.ContentPlaceholder:
			fmt.Fprint(c.out, " [image]")
		}
		fmt.Fprintln(c.out)
	}
	return nil
}

func (c *cli) cmdData(ctx context.Context, args []string) error {
	pos, err := c.parse(c.flags("data"), args, 1, "<dir> [section.field=value ...]")
	if err != nil {
		return err
	}
	s, err := c.open(pos[0])
	if err != nil {
		return err
	}
	if len(pos) == 1 {
		for _, f := range domain.Palette() {
			if v, ok := binding.Lookup(s.Data().Record(), f.Path()); ok {
				fmt.Fprintf(c.out, "%s=%s\n", f.Path(), v)
			}
		}
		return nil
	}
	for _, kv := range pos[1:] {
		path, value, ok := strings.Cut(kv, "=")
		section, field, ok2 := strings.Cut(path, ".")
		if !ok || !ok2 {
			return fmt.Errorf("expected section.field=value, got %q", kv)
		}
		if err := s.SetData(section, field, value); err != nil {
			return err
		}
	}
	saved, err := s.Save(ctx, c.fileSink(c.th.Root, false))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Updated %d value(s) in %s\n", len(pos)-1, saved.ID)
	return nil
}

func (c *cli) cmdSave(ctx context.Context, args []string) error {
	fs := c.flags("save")
	kind := fs.String("sink", "file", "file, http or log")
	asDefault := fs.Bool("default", false, "save as the default template")
	name := fs.String("name", "", "rename before saving")
	size := fs.String("size", "", "change the page size before saving")
	pos, err := c.parse(fs, args, 1, "<dir>")
	if err != nil {
		return err
	}
	s, err := c.open(pos[0])
	if err != nil {
		return err
	}
	if *name != "" {
		s.SetName(*name)
	}
	if *size != "" {
		s.SetPage(*size)
	}
	var sk sink.Sink
	switch *kind {
	case "file":
		sk = c.fileSink(c.th.Root, *asDefault)
	case "http":
		hs := sink.NewHTTPSink(c.cfg.Backend.BaseURL, c.token)
		hs.Client.WithTransport(c.cfg.Backend.Timeout(), c.cfg.Backend.TLSInsecure)
		hs.AsDefault = *asDefault
		sk = hs
	case "log":
		action := "SAVE"
		if *asDefault {
			action = "SAVE AS DEFAULT"
		}
		sk = sink.LogSink{Logger: applog.WithComponent("sink"), Action: action}
	default:
		return fmt.Errorf("unknown sink %q", *kind)
	}
	saved, err := s.Save(ctx, sk)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Saved %s (%s) via %s sink\n", saved.Name, saved.ID, *kind)
	return nil
}

func (c *cli) exportOptions() export.Options {
	o := export.Options{AssetRoot: c.th.Root}
	if fd := strings.TrimSpace(c.cfg.Editor.FontsDir); fd != "" {
		lib := textlayout.NewFontLibrary()
		if _, err := lib.LoadDir(fd); err == nil {
			o.Fonts = textlayout.OTProvider{Lib: lib}
		}
	}
	return o
}

func (c *cli) cmdExport(args []string) error {
	fs := c.flags("export")
	out := fs.String("o", "", "output file; relative paths go under <dir>/exports")
	dpi := fs.Int("dpi", 0, "raster resolution")
	preset := fs.String("preset", string(export.PresetScreen), "preset for 'all'")
	pos, err := c.parse(fs, args, 2, "<format> <dir>")
	if err != nil {
		return err
	}
	format := strings.ToLower(pos[0])
	if _, err := c.open(pos[1]); err != nil {
		return err
	}
	o := c.exportOptions()
	if format == "all" {
		written, err := export.BatchExport(c.th, export.BatchOptions{Preset: export.PresetName(*preset), DPIOverride: *dpi, Base: o})
		for _, w := range written {
			fmt.Fprintln(c.out, "Exported", w)
		}
		return err
	}
	o.DPI = *dpi
	target := *out
	if target == "" {
		target = c.th.Payload.ID + "." + format
	}
	target = export.OutputPath(c.th, target)
	switch format {
	case "pdf":
		err = export.ExportPDF(c.th.Payload, target, o)
	case "png":
		err = export.ExportPNG(c.th.Payload, target, o)
	case "svg":
		err = export.ExportSVG(c.th.Payload, target, o)
	default:
		return fmt.Errorf("unknown format %q (want one of %s or all)", format, strings.Join(export.Formats(), ", "))
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Exported", target)
	return nil
}

func (c *cli) cmdPack(args []string) error {
	pos, err := c.parse(c.flags("pack"), args, 2, "<dir> <zip>")
	if err != nil {
		return err
	}
	if err := pack.Export(pos[0], pos[1]); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Packed", pos[1])
	return nil
}

func (c *cli) cmdUnpack(ctx context.Context, args []string) error {
	pos, err := c.parse(c.flags("unpack"), args, 2, "<zip> <dir>")
	if err != nil {
		return err
	}
	abs, _ := filepath.Abs(pos[1])
	th, err := pack.Install(pos[0], abs)
	if err != nil {
		return err
	}
	c.th = th
	if cat, err := c.catalog(); err == nil {
		if err := cat.Upsert(ctx, th.Root, th.Payload); err != nil {
			applog.WithComponent("cli").Warn("catalog update failed", slog.Any("err", err))
		}
	}
	fmt.Fprintf(c.out, "Installed %s (%s) at %s\n", th.Payload.Name, th.Payload.ID, abs)
	return nil
}

func (c *cli) cmdValidate(args []string) error {
	pos, err := c.parse(c.flags("validate"), args, 1, "<file>")
	if err != nil {
		return err
	}
	data, err := os.ReadFile(pos[0])
	if err != nil {
		return err
	}
	if err := payload.Validate(data); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "OK")
	return nil
}

func (c *cli) cmdFields() error {
	section := ""
	for _, f := range domain.Palette() {
		if f.Section != section {
			section = f.Section
			fmt.Fprintf(c.out, "%s\n", domain.SectionTitle[section])
		}
		fmt.Fprintf(c.out, "  %-40s %-6s %s\n", f.Path(), f.Type, f.Label)
	}
	return nil
}

func (c *cli) printEntries(entries []storage.Entry) {
	for _, e := range entries {
		mark := " "
		if e.Default {
			mark = "*"
		}
		fmt.Fprintf(c.out, "%s %-28s %-24s %-3s %3d  %s\n", mark, e.ID, e.Name, e.Size, e.Elements, e.Root)
	}
}

func (c *cli) cmdList(ctx context.Context) error {
	cat, err := c.catalog()
	if err != nil {
		return err
	}
	entries, err := cat.List(ctx)
	if err != nil {
		return err
	}
	c.printEntries(entries)
	return nil
}

func (c *cli) cmdSearch(ctx context.Context, args []string) error {
	fs := c.flags("search")
	limit := fs.Int("limit", 20, "maximum results")
	pos, err := c.parse(fs, args, 1, "<text>")
	if err != nil {
		return err
	}
	cat, err := c.catalog()
	if err != nil {
		return err
	}
	entries, err := cat.Search(ctx, strings.Join(pos, " "), *limit)
	if err != nil {
		return err
	}
	c.printEntries(entries)
	return nil
}

func (c *cli) cmdDefault(ctx context.Context, args []string) error {
	cat, err := c.catalog()
	if err != nil {
		return err
	}
	if len(args) == 0 {
		e, err := cat.Default(ctx)
		if err != nil {
			return err
		}
		c.printEntries([]storage.Entry{e})
		return nil
	}
	if err := cat.SetDefault(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Default template:", args[0])
	return nil
}

func (c *cli) cmdReindex(ctx context.Context, args []string) error {
	pos, err := c.parse(c.flags("reindex"), args, 1, "<dir>...")
	if err != nil {
		return err
	}
	cat, err := c.catalog()
	if err != nil {
		return err
	}
	skipped, err := cat.Rebuild(ctx, pos)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Indexed %d template(s), skipped %d\n", len(pos)-skipped, skipped)
	return nil
}

func (c *cli) cmdServe(ctx context.Context, args []string) error {
	fs := c.flags("serve")
	bc := backend.ConfigFromEnv()
	if c.cfg.Backend.DSN != "" {
		bc.DBURL = c.cfg.Backend.DSN
	}
	if c.cfg.Backend.Listen != "" && os.Getenv("PORT") == "" && os.Getenv("ADDR") == "" {
		bc.Addr = c.cfg.Backend.Listen
	}
	fs.StringVar(&bc.Addr, "addr", bc.Addr, "listen address")
	fs.StringVar(&bc.DBURL, "dsn", bc.DBURL, "PostgreSQL connection string")
	fs.BoolVar(&bc.Memory, "memory", false, "keep templates in memory")
	if _, err := c.parse(fs, args, 0, ""); err != nil {
		return err
	}
	if bc.DBURL == "" && !bc.Memory {
		return errors.New("serve needs -dsn, LD_PG_DSN or -memory")
	}
	return backend.Start(ctx, bc)
}

// cmdLogin stores a token in the keyring. Without one it asks the
// configured server for a token for subject.
func (c *cli) cmdLogin(ctx context.Context, args []string) error {
	fs := c.flags("login")
	subject := fs.String("subject", "labeldesigner", "token subject")
	ttl := fs.Duration("ttl", 24*time.Hour, "requested token lifetime")
	pos, err := c.parse(fs, args, 0, "")
	if err != nil {
		return err
	}
	token := ""
	if len(pos) > 0 {
		token = strings.TrimSpace(pos[0])
	}
	if token == "" {
		cl := backend.NewClient(c.cfg.Backend.BaseURL, "").WithTransport(c.cfg.Backend.Timeout(), c.cfg.Backend.TLSInsecure)
		if token, err = cl.RequestToken(ctx, *subject, *ttl); err != nil {
			return err
		}
	}
	if err := config.Save(c.cfg, token); err != nil {
		return err
	}
	c.token = token
	fmt.Fprintln(c.out, "Token stored for", c.cfg.Backend.BaseURL)
	return nil
}

func (c *cli) cmdLogout() error {
	if err := config.ClearToken(); err != nil {
		return err
	}
	c.token = ""
	fmt.Fprintln(c.out, "Token removed")
	return nil
}

func (c *cli) cmdUI(args []string) error {
	var dir string
	if len(args) > 0 {
		dir, _ = filepath.Abs(args[0])
	}
	opts := ui.Options{Dir: dir, Config: c.cfg}
	if cat, err := c.catalog(); err == nil {
		opts.Catalog = cat
	}
	return ui.Run(opts)
}
