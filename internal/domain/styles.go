/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Recognized style keys. They use the CSS-like names of the persisted payload.
const (
	StyleFontSize        = "fontSize"
	StyleFontWeight      = "fontWeight"
	StyleFontStyle       = "fontStyle"
	StyleFontFamily      = "fontFamily"
	StyleTextDecoration  = "textDecoration"
	StyleColor           = "color"
	StyleBackgroundColor = "backgroundColor"
	StyleTextAlign       = "textAlign"
	StyleLineHeight      = "lineHeight"
	StyleLetterSpacing   = "letterSpacing"
	StylePadding         = "padding"
	StyleBorder          = "border"
)

// Styles is the presentation of an element. Empty fields are unset and fall
// back to renderer defaults. Unrecognized keys survive a load/save round trip
// through Extra.
type Styles struct {
	FontSize        string
	FontWeight      string
	FontStyle       string
	FontFamily      string
	TextDecoration  string
	Color           string
	BackgroundColor string
	TextAlign       string
	LineHeight      string
	LetterSpacing   string
	Padding         string
	Border          string

	Extra map[string]string
}

func (s *Styles) field(key string) *string {
	switch key {
	case StyleFontSize:
		return &s.FontSize
	case StyleFontWeight:
		return &s.FontWeight
	case StyleFontStyle:
		return &s.FontStyle
	case StyleFontFamily:
		return &s.FontFamily
	case StyleTextDecoration:
		return &s.TextDecoration
	case StyleColor:
		return &s.Color
	case StyleBackgroundColor:
		return &s.BackgroundColor
	case StyleTextAlign:
		return &s.TextAlign
	case StyleLineHeight:
		return &s.LineHeight
	case StyleLetterSpacing:
		return &s.LetterSpacing
	case StylePadding:
		return &s.Padding
	case StyleBorder:
		return &s.Border
	}
	return nil
}

// Get returns the value for key, looking in Extra for unrecognized keys.
func (s Styles) Get(key string) (string, bool) {
	if f := s.field(key); f != nil {
		return *f, *f != ""
	}
	v, ok := s.Extra[key]
	return v, ok
}

// Set returns a copy with key set to value. An empty value unsets the key.
func (s Styles) Set(key, value string) Styles {
	out := s.Clone()
	if f := out.field(key); f != nil {
		*f = value
		return out
	}
	if value == "" {
		delete(out.Extra, key)
		return out
	}
	if out.Extra == nil {
		out.Extra = map[string]string{}
	}
	out.Extra[key] = value
	return out
}

// Toggle flips key between on and off (off is used when unset).
func (s Styles) Toggle(key, on, off string) Styles {
	cur, ok := s.Get(key)
	if !ok {
		cur = off
	}
	if cur == on {
		return s.Set(key, off)
	}
	return s.Set(key, on)
}

// Merge overlays every set key of o on a copy of s.
func (s Styles) Merge(o Styles) Styles {
	out := s.Clone()
	for k, v := range o.Map() {
		out = out.Set(k, v)
	}
	return out
}

// Clone returns a deep copy.
func (s Styles) Clone() Styles {
	if s.Extra != nil {
		m := make(map[string]string, len(s.Extra))
		for k, v := range s.Extra {
			m[k] = v
		}
		s.Extra = m
	}
	return s
}

// Map flattens the styles into key/value pairs of set keys only.
func (s Styles) Map() map[string]string {
	out := map[string]string{}
	for _, k := range recognizedKeys {
		if v, ok := s.Get(k); ok {
			out[k] = v
		}
	}
	for k, v := range s.Extra {
		out[k] = v
	}
	return out
}

// Keys returns the set keys in sorted order.
func (s Styles) Keys() []string {
	m := s.Map()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var recognizedKeys = []string{
	StyleFontSize, StyleFontWeight, StyleFontStyle, StyleFontFamily, StyleTextDecoration,
	StyleColor, StyleBackgroundColor, StyleTextAlign, StyleLineHeight, StyleLetterSpacing,
	StylePadding, StyleBorder,
}

// Align returns left, center or right.
func (s Styles) Align() string {
	switch strings.ToLower(strings.TrimSpace(s.TextAlign)) {
	case "center":
		return "center"
	case "right":
		return "right"
	}
	return "left"
}

// Bold reports a bold font weight ("bold" or >= 600).
func (s Styles) Bold() bool {
	w := strings.ToLower(strings.TrimSpace(s.FontWeight))
	if w == "bold" || w == "bolder" {
		return true
	}
	n, err := strconv.Atoi(w)
	return err == nil && n >= 600
}

// Italic reports an italic font style.
func (s Styles) Italic() bool { return strings.EqualFold(strings.TrimSpace(s.FontStyle), "italic") }

// FontSizePx parses FontSize ("14px", "14") and returns def when unset or invalid.
func (s Styles) FontSizePx(def float64) float64 { return parsePx(s.FontSize, def) }

// PaddingBox returns the vertical and horizontal padding in px. The renderer
// default is "0 8px".
func (s Styles) PaddingBox() (v, h float64) {
	p := strings.Fields(s.Padding)
	switch len(p) {
	case 0:
		return 0, 8
	case 1:
		x := parsePx(p[0], 0)
		return x, x
	default:
		return parsePx(p[0], 0), parsePx(p[1], 0)
	}
}

func parsePx(v string, def float64) float64 {
	v = strings.TrimSuffix(strings.TrimSpace(v), "px")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return def
	}
	return f
}

// MarshalJSON encodes the styles as one flat object.
func (s Styles) MarshalJSON() ([]byte, error) { return json.Marshal(s.Map()) }

// UnmarshalJSON accepts any flat object; non-string values are stringified.
func (s *Styles) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := Styles{}
	for k, v := range raw {
		switch t := v.(type) {
		case nil:
			continue
		case string:
			out = out.Set(k, t)
		case float64:
			out = out.Set(k, strconv.FormatFloat(t, 'f', -1, 64))
		default:
			out = out.Set(k, fmt.Sprint(t))
		}
	}
	*s = out
	return nil
}

// Format presets offered by the text format toolbar.
var (
	FontSizes    = []string{"8px", "9px", "10px", "11px", "12px", "14px", "16px", "18px", "20px", "24px", "28px", "32px", "36px", "48px", "60px", "72px"}
	FontFamilies = []string{"Arial", "Helvetica", "Times New Roman", "Georgia", "Verdana", "Tahoma", "Trebuchet MS", "Impact", "Comic Sans MS", "Courier New"}
	Colors       = []string{
		"#000000", "#333333", "#666666", "#999999", "#CCCCCC", "#FFFFFF",
		"#FF0000", "#00FF00", "#0000FF", "#FFFF00", "#FF00FF", "#00FFFF",
		"#800000", "#008000", "#000080", "#808000", "#800080", "#008080",
		"#FFA500", "#FFC0CB", "#A52A2A", "#808080",
	}
)

// ParseHexColor parses "#rgb" or "#rrggbb". ok is false for anything else,
// including named colors and "transparent".
func ParseHexColor(s string) (r, g, b uint8, ok bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), true
}
