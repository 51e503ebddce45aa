/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"labeldesigner/internal/domain"
	"labeldesigner/internal/storage"
)

// PresetName represents a named export preset.
type PresetName string

const (
	PresetScreen PresetName = "screen"
	PresetPrint  PresetName = "print"
)

// Formats lists the supported output formats.
func Formats() []string { return []string{"pdf", "png", "svg"} }

// BatchOptions controls exporting one template to several formats.
//
// Relative OutDir values are created under <template>/exports/. With an empty
// OutDir the preset name is used. Files are named <template id>.<format>.
type BatchOptions struct {
	Preset      PresetName
	Formats     []string // empty means preset defaults
	DPIOverride int      // when > 0 replaces the preset DPI
	Data        *domain.TemplateData
	Base        Options // fonts and asset root
	OutDir      string
}

// BatchExport writes the template in every requested format and returns the
// written paths.
func BatchExport(th *storage.TemplateHandle, opt BatchOptions) ([]string, error) {
	if th == nil {
		return nil, errors.New("template handle is nil")
	}
	formats := opt.Formats
	if len(formats) == 0 {
		formats = presetDefaultFormats(opt.Preset)
	}
	baseOut := opt.OutDir
	if baseOut == "" {
		baseOut = string(opt.Preset)
	}
	baseOut = OutputPath(th, baseOut)

	eo := opt.Base
	eo.DPI = presetDPI(opt.Preset)
	if opt.DPIOverride > 0 {
		eo.DPI = opt.DPIOverride
	}
	if opt.Data != nil {
		eo.Data = opt.Data
	}
	if eo.AssetRoot == "" {
		eo.AssetRoot = th.Root
	}

	name := th.Payload.ID
	if name == "" {
		name = "template"
	}
	var written []string
	for _, f := range formats {
		f = strings.ToLower(strings.TrimSpace(f))
		out := filepath.Join(baseOut, name+"."+f)
		var err error
		switch f {
		case "pdf":
			err = ExportPDF(th.Payload, out, eo)
		case "png":
			err = ExportPNG(th.Payload, out, eo)
		case "svg":
			err = ExportSVG(th.Payload, out, eo)
		default:
			return written, fmt.Errorf("unknown format: %s", f)
		}
		if err != nil {
			return written, fmt.Errorf("%s: %w", f, err)
		}
		written = append(written, out)
	}
	return written, nil
}

func presetDefaultFormats(p PresetName) []string {
	switch p {
	case PresetScreen:
		return []string{"png", "svg"}
	case PresetPrint:
		return []string{"pdf", "png"}
	default:
		return []string{"pdf"}
	}
}

func presetDPI(p PresetName) int {
	switch p {
	case PresetPrint:
		return 300
	default:
		return 96
	}
}
