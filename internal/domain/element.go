/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the template element model. Elements are positioned boxes
// on a fixed-size canvas; geometry is stored in unscaled layout pixels and is
// never modified by rendering.

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ElementType is the immutable kind of a template element.
type ElementType string

const (
	TypeText           ElementType = "text"
	TypeImage          ElementType = "image"
	TypeField          ElementType = "field"
	TypeHorizontalRule ElementType = "horizontalRule"
	TypeVerticalRule   ElementType = "verticalRule"
)

// ElementTypes lists all known types in palette order.
func ElementTypes() []ElementType {
	return []ElementType{TypeText, TypeImage, TypeField, TypeHorizontalRule, TypeVerticalRule}
}

// Valid reports whether t is a known element type.
func (t ElementType) Valid() bool {
	switch t {
	case TypeText, TypeImage, TypeField, TypeHorizontalRule, TypeVerticalRule:
		return true
	}
	return false
}

// Textual reports whether the element renders resolved text.
func (t ElementType) Textual() bool { return t == TypeText || t == TypeField }

// Rule reports whether t is one of the line types.
func (t ElementType) Rule() bool { return t == TypeHorizontalRule || t == TypeVerticalRule }

// Point is a position in unscaled layout pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a width/height pair in unscaled layout pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Payload is the per-type part of an element. Exactly one of TextPayload,
// ImagePayload or RulePayload.
type Payload interface{ payloadKind() ElementType }

// TextPayload backs text and field elements. Content may contain {{path}} tokens.
type TextPayload struct {
	Content     string
	DataBinding string
}

// ImagePayload backs image elements. Source is a URL, path or blob reference.
type ImagePayload struct {
	Source      string
	DataBinding string
}

// RulePayload backs horizontal and vertical rules.
type RulePayload struct {
	Vertical bool
}

func (TextPayload) payloadKind() ElementType  { return TypeText }
func (ImagePayload) payloadKind() ElementType { return TypeImage }
func (p RulePayload) payloadKind() ElementType {
	if p.Vertical {
		return TypeVerticalRule
	}
	return TypeHorizontalRule
}

// Element is one placed item on the canvas.
type Element struct {
	ID       string
	Type     ElementType
	Position Point
	Size     Size
	Styles   Styles
	// Locked elements are pinned by the application and ignore gestures.
	Locked  bool
	Payload Payload
}

// NewElement builds an element with the payload matching typ.
func NewElement(id string, typ ElementType, content, binding string) Element {
	e := Element{ID: id, Type: typ}
	switch typ {
	case TypeImage:
		e.Payload = ImagePayload{Source: content, DataBinding: binding}
	case TypeHorizontalRule:
		e.Payload = RulePayload{}
	case TypeVerticalRule:
		e.Payload = RulePayload{Vertical: true}
	default:
		e.Payload = TextPayload{Content: content, DataBinding: binding}
	}
	return e
}

// Content returns the raw content string: template text for text/field,
// the image reference for images, empty for rules.
func (e Element) Content() string {
	switch p := e.Payload.(type) {
	case TextPayload:
		return p.Content
	case ImagePayload:
		return p.Source
	}
	return ""
}

// DataBinding returns the bound dotted path, empty for static content.
func (e Element) DataBinding() string {
	switch p := e.Payload.(type) {
	case TextPayload:
		return p.DataBinding
	case ImagePayload:
		return p.DataBinding
	}
	return ""
}

// WithContent returns a copy with the content replaced. Rules are returned unchanged.
func (e Element) WithContent(s string) Element {
	switch p := e.Payload.(type) {
	case TextPayload:
		p.Content = s
		e.Payload = p
	case ImagePayload:
		p.Source = s
		e.Payload = p
	}
	return e
}

// WithDataBinding returns a copy bound to path. Rules are returned unchanged.
func (e Element) WithDataBinding(path string) Element {
	switch p := e.Payload.(type) {
	case TextPayload:
		p.DataBinding = path
		e.Payload = p
	case ImagePayload:
		p.DataBinding = path
		e.Payload = p
	}
	return e
}

// Clone returns a deep copy.
func (e Element) Clone() Element {
	e.Styles = e.Styles.Clone()
	return e
}

// Bounds returns the stored rectangle.
func (e Element) Bounds() (x, y, w, h float64) {
	return e.Position.X, e.Position.Y, e.Size.Width, e.Size.Height
}

var (
	ErrInvalidType     = errors.New("invalid element type")
	ErrInvalidGeometry = errors.New("invalid element geometry")
	ErrPayloadMismatch = errors.New("payload does not match element type")
)

// Validate checks the element invariants.
func (e Element) Validate() error {
	if e.ID == "" {
		return errors.New("element id is required")
	}
	if !e.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, e.Type)
	}
	for _, v := range []float64{e.Position.X, e.Position.Y, e.Size.Width, e.Size.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: element %s", ErrInvalidGeometry, e.ID)
		}
	}
	if e.Payload == nil {
		return fmt.Errorf("%w: element %s has no payload", ErrPayloadMismatch, e.ID)
	}
	want := e.Type
	if want == TypeField {
		want = TypeText
	}
	if e.Payload.payloadKind() != want {
		return fmt.Errorf("%w: %s is %s", ErrPayloadMismatch, e.ID, e.Type)
	}
	return nil
}

// ClampGeometry replaces negative or non-finite coordinates with zero.
func ClampGeometry(p Point, s Size) (Point, Size) {
	fix := func(v float64) float64 {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return 0
		}
		return v
	}
	return Point{X: fix(p.X), Y: fix(p.Y)}, Size{Width: fix(s.Width), Height: fix(s.Height)}
}

// wireElement is the persisted JSON shape shared with the web payload.
type wireElement struct {
	ID          string      `json:"id"`
	Type        ElementType `json:"type"`
	Content     string      `json:"content"`
	Position    Point       `json:"position"`
	Size        Size        `json:"size"`
	DataBinding string      `json:"dataBinding"`
	Styles      Styles      `json:"styles"`
	Locked      bool        `json:"locked,omitempty"`
}

// MarshalJSON encodes the element in the flat wire shape.
func (e Element) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireElement{
		ID:          e.ID,
		Type:        e.Type,
		Content:     e.Content(),
		Position:    e.Position,
		Size:        e.Size,
		DataBinding: e.DataBinding(),
		Styles:      e.Styles,
		Locked:      e.Locked,
	})
}

// UnmarshalJSON decodes the flat wire shape and rebuilds the typed payload.
func (e *Element) UnmarshalJSON(b []byte) error {
	var w wireElement
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	if !w.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, w.Type)
	}
	*e = NewElement(w.ID, w.Type, w.Content, w.DataBinding)
	e.Position = w.Position
	e.Size = w.Size
	e.Styles = w.Styles
	e.Locked = w.Locked
	return nil
}
