/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package editor ties one element store to one selection state so that each
// user event mutates both together, and snapshots the result for saving.
package editor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"labeldesigner/internal/domain"
	applog "labeldesigner/internal/log"
	"labeldesigner/internal/payload"
	"labeldesigner/internal/render"
	"labeldesigner/internal/selection"
	"labeldesigner/internal/sink"
	"labeldesigner/internal/store"
	"labeldesigner/internal/telemetry"
)

// Options configures a Session.
type Options struct {
	Store store.Options
	Name  string
	Page  string
	Data  *domain.TemplateData
	// Footer pins the locked "Powered by" text and logo.
	Footer bool
	Now    func() time.Time
	Events telemetry.Sender
}

// Session is one open template.
type Session struct {
	mu    sync.Mutex
	store *store.Store
	state selection.State
	data  domain.TemplateData
	page  domain.PageSize
	name  string

	templateID string
	createdAt  time.Time

	now       func() time.Time
	events    telemetry.Sender
	listeners []func()
	log       *slog.Logger
}

// New starts a session over initial elements.
func New(opts Options, initial ...domain.Element) (*Session, error) {
	st, err := store.New(opts.Store, initial...)
	if err != nil {
		return nil, err
	}
	s := &Session{
		store:  st,
		data:   domain.SampleData(),
		page:   domain.LookupPageSize(opts.Page),
		name:   opts.Name,
		now:    opts.Now,
		events: opts.Events,
		log:    applog.WithComponent("editor"),
	}
	if opts.Data != nil {
		s.data = *opts.Data
	}
	if s.name == "" {
		s.name = "Untitled Template"
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.events == nil {
		s.events = telemetry.Default()
	}
	if opts.Footer {
		st.PinFooter(s.page)
	}
	return s, nil
}

// Open resumes a saved payload. Later saves update the same template id.
func Open(p payload.SavePayload, opts Options) (*Session, error) {
	opts.Name = p.Name
	opts.Page = p.Size
	data := p.TemplateData
	opts.Data = &data
	s, err := New(opts, p.Elements...)
	if err != nil {
		return nil, err
	}
	for id, deg := range p.Rotations {
		s.store.Rotate(id, deg)
	}
	s.templateID = p.ID
	s.createdAt = p.Created()
	return s, nil
}

// OnChange registers fn to run after every mutation, outside the session lock.
func (s *Session) OnChange(fn func()) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Session) notify() {
	s.mu.Lock()
	ls := append([]func(){}, s.listeners...)
	s.mu.Unlock()
	for _, fn := range ls {
		fn()
	}
}

func (s *Session) lookup(id string) (domain.Element, bool) { return s.store.Get(id) }

// Dispatch applies ev and whatever store command it produces.
func (s *Session) Dispatch(ev selection.Event) selection.State {
	s.mu.Lock()
	before := s.store.Version()
	prev := s.state
	next, cmd := selection.Transition(s.state, ev, s.lookup)
	switch c := cmd.(type) {
	case selection.CommitContent:
		text := c.Text
		s.store.Update(c.ID, store.Patch{Content: &text})
	case selection.DeleteElement:
		s.store.Delete(c.ID)
	}
	s.state = next
	changed := next != prev || s.store.Version() != before
	s.mu.Unlock()
	if changed {
		s.notify()
	}
	return next
}

// State returns the current selection.
func (s *Session) State() selection.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot returns the current elements and rotations.
func (s *Session) Snapshot() store.Snapshot { return s.store.Snapshot() }

// Element returns a copy of one element.
func (s *Session) Element(id string) (domain.Element, bool) { return s.store.Get(id) }

// Add creates an element and selects it.
func (s *Session) Add(typ domain.ElementType, binding, content string) (domain.Element, error) {
	s.mu.Lock()
	e, err := s.store.Add(typ, binding, content)
	if err != nil {
		s.mu.Unlock()
		return domain.Element{}, err
	}
	s.state, _ = selection.Transition(s.state, selection.Select{ID: e.ID}, s.lookup)
	s.mu.Unlock()
	s.events.Event(telemetry.EventElementAdded, map[string]any{"type": string(typ), "bound": binding != ""})
	s.log.Debug("element added", slog.String("id", e.ID), slog.String("type", string(typ)))
	s.notify()
	return e, nil
}

// AddField adds a palette field as a bound text element.
func (s *Session) AddField(f domain.Field) (domain.Element, error) {
	return s.Add(f.Type, f.Path(), f.Content)
}

// Delete removes id; a selection on it is cleared.
func (s *Session) Delete(id string) bool {
	s.mu.Lock()
	ok := s.store.Delete(id)
	if ok {
		s.state, _ = selection.Transition(s.state, selection.Removed{ID: id}, s.lookup)
	}
	s.mu.Unlock()
	if ok {
		s.notify()
	}
	return ok
}

// Clear removes every element and returns to Idle.
func (s *Session) Clear() {
	s.mu.Lock()
	s.store.Clear()
	s.state, _ = selection.Transition(s.state, selection.Cleared{}, s.lookup)
	s.mu.Unlock()
	s.notify()
}

// Update patches id. Unknown ids report false.
func (s *Session) Update(id string, p store.Patch) bool {
	ok := s.store.Update(id, p)
	if ok {
		s.notify()
	}
	return ok
}

// Rotate turns id by deg degrees.
func (s *Session) Rotate(id string, deg float64) bool {
	ok := s.store.Rotate(id, deg)
	if ok {
		s.notify()
	}
	return ok
}

// Surface returns the editor rendition at scale.
func (s *Session) Surface(p render.Projector, scale float64, showValues bool) render.Editor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return render.Editor{Projector: p, Scale: scale, Data: s.data.Record(), ShowValues: showValues, Page: s.page}
}

// Preview returns the read-only rendition at scale.
func (s *Session) Preview(p render.Projector, scale float64) render.Preview {
	s.mu.Lock()
	defer s.mu.Unlock()
	return render.Preview{Projector: p, Scale: scale, Data: s.data.Record()}
}

// Drag ends a drag gesture of id at screen position (left, top).
func (s *Session) Drag(ed render.Editor, id string, left, top float64) bool {
	s.Dispatch(selection.GestureStart{ID: id})
	el, ok := s.store.Get(id)
	if !ok {
		return false
	}
	return s.Update(id, ed.DragStop(el, left, top))
}

// Resize ends a resize gesture of id at the given screen rectangle.
func (s *Session) Resize(ed render.Editor, id string, left, top, width, height float64) bool {
	s.Dispatch(selection.GestureStart{ID: id})
	el, ok := s.store.Get(id)
	if !ok {
		return false
	}
	return s.Update(id, ed.ResizeStop(el, left, top, width, height))
}

// Name is the template name.
func (s *Session) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

func (s *Session) SetName(name string) {
	s.mu.Lock()
	s.name = name
	s.mu.Unlock()
	s.notify()
}

// Page is the canvas size.
func (s *Session) Page() domain.PageSize {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// SetPage changes the canvas size and moves a pinned footer along.
func (s *Session) SetPage(name string) {
	s.mu.Lock()
	s.page = domain.LookupPageSize(name)
	if s.hasFooterLocked() {
		s.store.PinFooter(s.page)
	}
	s.mu.Unlock()
	s.notify()
}

func (s *Session) hasFooterLocked() bool {
	for _, e := range s.store.Elements() {
		if e.Locked {
			return true
		}
	}
	return false
}

// Data returns the bound record.
func (s *Session) Data() domain.TemplateData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

// SetData edits one field of the bound record.
func (s *Session) SetData(section, field, value string) error {
	s.mu.Lock()
	err := s.data.Set(section, field, value)
	s.mu.Unlock()
	if err == nil {
		s.notify()
	}
	return err
}

// TemplateID is empty until the first successful save.
func (s *Session) TemplateID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.templateID
}

// Payload serializes the current template without saving it.
func (s *Session) Payload() payload.SavePayload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.payloadLocked()
}

func (s *Session) payloadLocked() payload.SavePayload {
	snap := s.store.Snapshot()
	ser := payload.Serializer{Now: s.now}
	return ser.Serialize(payload.Input{
		Name:       s.name,
		Size:       s.page.Name,
		Elements:   snap.Elements,
		Data:       s.data,
		Rotations:  snap.Rotations,
		ExistingID: s.templateID,
		CreatedAt:  s.createdAt,
	})
}

// Save hands the current template to sk: a create the first time, an update
// afterwards. On failure the session is unchanged.
func (s *Session) Save(ctx context.Context, sk sink.Sink) (payload.SavePayload, error) {
	s.mu.Lock()
	p := s.payloadLocked()
	update := s.templateID != ""
	s.mu.Unlock()

	out, err := sink.Save(ctx, sk, p, update)
	if err != nil {
		return payload.SavePayload{}, err
	}
	s.mu.Lock()
	s.templateID = out.ID
	if c := out.Created(); !c.IsZero() {
		s.createdAt = c
	}
	s.mu.Unlock()
	s.events.Event(telemetry.EventTemplateSaved, map[string]any{
		"elements": out.Metadata.TotalElements,
		"size":     out.Size,
		"update":   update,
	})
	return out, nil
}
