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
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewElementPayloadByType(t *testing.T) {
	cases := []struct {
		typ  ElementType
		want Payload
	}{
		{TypeText, TextPayload{Content: "a", DataBinding: "b"}},
		{TypeField, TextPayload{Content: "a", DataBinding: "b"}},
		{TypeImage, ImagePayload{Source: "a", DataBinding: "b"}},
		{TypeHorizontalRule, RulePayload{}},
		{TypeVerticalRule, RulePayload{Vertical: true}},
	}
	for _, c := range cases {
		e := NewElement("e1", c.typ, "a", "b")
		if e.Payload != c.want {
			t.Errorf("%s: payload = %#v, want %#v", c.typ, e.Payload, c.want)
		}
		if err := e.Validate(); err != nil {
			t.Errorf("%s: validate: %v", c.typ, err)
		}
	}
}

func TestValidateRejects(t *testing.T) {
	good := NewElement("e1", TypeText, "x", "")
	good.Size = Size{Width: 10, Height: 10}

	bad := good
	bad.Size.Width = math.NaN()
	if err := bad.Validate(); !errors.Is(err, ErrInvalidGeometry) {
		t.Fatalf("NaN width: got %v", err)
	}
	bad = good
	bad.Position.X = -1
	if err := bad.Validate(); !errors.Is(err, ErrInvalidGeometry) {
		t.Fatalf("negative x: got %v", err)
	}
	bad = good
	bad.Type = "circle"
	if err := bad.Validate(); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("bad type: got %v", err)
	}
	bad = good
	bad.Type = TypeImage
	if err := bad.Validate(); !errors.Is(err, ErrPayloadMismatch) {
		t.Fatalf("mismatch: got %v", err)
	}
}

func TestClampGeometry(t *testing.T) {
	p, s := ClampGeometry(Point{X: -3, Y: math.Inf(1)}, Size{Width: 5, Height: math.NaN()})
	assert.Equal(t, Point{X: 0, Y: 0}, p)
	assert.Equal(t, Size{Width: 5, Height: 0}, s)
}

func TestElementWireShape(t *testing.T) {
	e := NewElement("img", TypeImage, "/logo.png", "businessDetails.logo")
	e.Position = Point{X: 1, Y: 2}
	e.Size = Size{Width: 3, Height: 4}
	b, err := json.Marshal(e)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, "/logo.png", m["content"])
	assert.Equal(t, "businessDetails.logo", m["dataBinding"])
	assert.Equal(t, map[string]any{}, m["styles"])
	_, hasLocked := m["locked"]
	assert.False(t, hasLocked)

	var back Element
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, e, back)
}

func TestUnmarshalUnknownType(t *testing.T) {
	var e Element
	err := json.Unmarshal([]byte(`{"id":"x","type":"barcode"}`), &e)
	if !errors.Is(err, ErrInvalidType) {
		t.Fatalf("got %v", err)
	}
}

func TestWithContentKeepsRule(t *testing.T) {
	r := NewElement("r", TypeHorizontalRule, "", "")
	if got := r.WithContent("x").Content(); got != "" {
		t.Fatalf("rule content = %q", got)
	}
	txt := NewElement("t", TypeText, "a", "")
	if got := txt.WithContent("b").Content(); got != "b" {
		t.Fatalf("text content = %q", got)
	}
	if txt.Content() != "a" {
		t.Fatal("WithContent mutated receiver")
	}
}

func TestCloneDetachesExtraStyles(t *testing.T) {
	e := NewElement("t", TypeText, "a", "")
	e.Styles = e.Styles.Set("zIndex", "3")
	c := e.Clone()
	c.Styles.Extra["zIndex"] = "9"
	if v, _ := e.Styles.Get("zIndex"); v != "3" {
		t.Fatalf("original changed: %q", v)
	}
}
