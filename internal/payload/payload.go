/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package payload snapshots a template into the versioned save payload handed
// to persistence sinks, and validates payloads read back.
package payload

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	"labeldesigner/internal/domain"
)

// Version is the payload format version.
const Version = "1.0.0"

// TimeLayout is ISO-8601 in UTC with milliseconds.
const TimeLayout = "2006-01-02T15:04:05.000Z"

//go:embed template.schema.json
var schemaJSON []byte

// Schema returns the JSON Schema of SavePayload.
func Schema() []byte { return append([]byte(nil), schemaJSON...) }

type ElementPosition struct {
	ID     string             `json:"id"`
	Type   domain.ElementType `json:"type"`
	X      float64            `json:"x"`
	Y      float64            `json:"y"`
	Width  float64            `json:"width"`
	Height float64            `json:"height"`
}

type Metadata struct {
	TotalElements    int               `json:"totalElements"`
	TextElements     int               `json:"textElements"`
	ImageElements    int               `json:"imageElements"`
	FieldElements    int               `json:"fieldElements"`
	CanvasSize       string            `json:"canvasSize"`
	LastModified     string            `json:"lastModified"`
	ElementPositions []ElementPosition `json:"elementPositions"`
}

// SavePayload is one immutable template snapshot.
type SavePayload struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Size         string              `json:"size"`
	Elements     []domain.Element    `json:"elements"`
	TemplateData domain.TemplateData `json:"templateData"`
	CreatedAt    string              `json:"createdAt"`
	UpdatedAt    string              `json:"updatedAt"`
	Version      string              `json:"version"`
	Rotations    domain.Rotations    `json:"rotations,omitempty"`
	Metadata     Metadata            `json:"metadata"`
}

// Input is what Serialize reads. It is never modified.
type Input struct {
	Name      string
	Size      string
	Elements  []domain.Element
	Data      domain.TemplateData
	Rotations domain.Rotations
	// ExistingID keeps the id of a template being updated.
	ExistingID string
	// CreatedAt keeps the original creation time on updates; zero means now.
	CreatedAt time.Time
}

// Serializer builds payloads with an injectable clock.
type Serializer struct {
	Now func() time.Time
}

// Serialize uses the wall clock.
func Serialize(in Input) SavePayload { return Serializer{}.Serialize(in) }

// NewID returns a fresh template id for t.
func NewID(t time.Time) string { return fmt.Sprintf("template-%d", t.UnixMilli()) }

func (s Serializer) Serialize(in Input) SavePayload {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	t := now().UTC()
	stamp := t.Format(TimeLayout)
	created := stamp
	if !in.CreatedAt.IsZero() {
		created = in.CreatedAt.UTC().Format(TimeLayout)
	}
	id := in.ExistingID
	if id == "" {
		id = NewID(t)
	}
	els := make([]domain.Element, len(in.Elements))
	md := Metadata{
		TotalElements:    len(in.Elements),
		CanvasSize:       in.Size,
		LastModified:     stamp,
		ElementPositions: make([]ElementPosition, 0, len(in.Elements)),
	}
	for i, e := range in.Elements {
		els[i] = e.Clone()
		switch e.Type {
		case domain.TypeText:
			md.TextElements++
		case domain.TypeImage:
			md.ImageElements++
		case domain.TypeField:
			md.FieldElements++
		}
		md.ElementPositions = append(md.ElementPositions, ElementPosition{
			ID: e.ID, Type: e.Type,
			X: e.Position.X, Y: e.Position.Y,
			Width: e.Size.Width, Height: e.Size.Height,
		})
	}
	var rot domain.Rotations
	for k, v := range in.Rotations {
		if v == 0 {
			continue
		}
		if rot == nil {
			rot = domain.Rotations{}
		}
		rot[k] = v
	}
	return SavePayload{
		ID:           id,
		Name:         in.Name,
		Size:         in.Size,
		Elements:     els,
		TemplateData: in.Data,
		CreatedAt:    created,
		UpdatedAt:    stamp,
		Version:      Version,
		Rotations:    rot,
		Metadata:     md,
	}
}

// Created parses CreatedAt; the zero time is returned when it does not parse.
func (p SavePayload) Created() time.Time {
	t, err := time.Parse(time.RFC3339Nano, p.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ValidationError lists schema violations.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid template payload: " + strings.Join(e.Problems, "; ")
}

var schemaLoader = gojsonschema.NewBytesLoader(schemaJSON)

// Validate checks raw JSON against the payload schema.
func Validate(data []byte) error {
	res, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("schema validate: %w", err)
	}
	if res.Valid() {
		return nil
	}
	ve := &ValidationError{}
	for _, e := range res.Errors() {
		ve.Problems = append(ve.Problems, e.String())
	}
	return ve
}

// Decode validates and parses a payload.
func Decode(data []byte) (SavePayload, error) {
	if err := Validate(data); err != nil {
		return SavePayload{}, err
	}
	var p SavePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return SavePayload{}, fmt.Errorf("decode payload: %w", err)
	}
	for _, e := range p.Elements {
		if err := e.Validate(); err != nil {
			return SavePayload{}, fmt.Errorf("decode payload: %w", err)
		}
	}
	return p, nil
}

// Encode marshals p indented, as written to disk and logs.
func Encode(p SavePayload) ([]byte, error) { return json.MarshalIndent(p, "", "  ") }

// IsValidation reports whether err came from schema validation.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Log writes a structured summary of p. Element positions and the full
// payload go out at debug level.
func Log(l *slog.Logger, p SavePayload, action string) {
	if l == nil {
		l = slog.Default()
	}
	if action == "" {
		action = "SAVE"
	}
	l = l.With("action", action, "template_id", p.ID)
	l.Info("template payload",
		"name", p.Name,
		"size", p.Size,
		"total", p.Metadata.TotalElements,
		"text", p.Metadata.TextElements,
		"image", p.Metadata.ImageElements,
		"field", p.Metadata.FieldElements,
		"last_modified", p.Metadata.LastModified,
	)
	if !l.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	for _, pos := range p.Metadata.ElementPositions {
		l.Debug("element position", "type", string(pos.Type), "id", pos.ID,
			"x", pos.X, "y", pos.Y, "w", pos.Width, "h", pos.Height)
	}
	if b, err := json.Marshal(p.TemplateData); err == nil {
		l.Debug("template data", "data", string(b))
	}
}
