/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package store holds the ordered collection of template elements and the
// mutations over it. Every mutation bumps Version; readers get deep copies.
package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"labeldesigner/internal/domain"
)

// Default placement and sizing for new elements.
const (
	DefaultContentText  = "New Text"
	DefaultContentField = "{{field}}"
	DefaultFontSize     = "14px"
)

var (
	DefaultBase  = domain.Point{X: 100, Y: 200}
	DefaultDelta = 20.0
)

var ErrDuplicateID = errors.New("duplicate element id")

// Options configures placement of added elements and id generation.
type Options struct {
	// Base is the position of the first added element.
	Base domain.Point
	// Delta is added to both coordinates once per existing element.
	Delta float64
	// NewID overrides the id generator; tests use it for stable ids.
	NewID func() string
}

// DefaultOptions returns base (100,200) and delta 20.
func DefaultOptions() Options {
	return Options{Base: DefaultBase, Delta: DefaultDelta}
}

// NewElementID returns "element-<uuid>".
func NewElementID() string { return "element-" + uuid.NewString() }

// Patch lists the fields an update may change. Nil fields are left alone.
// Id and type are not patchable.
type Patch struct {
	Position    *domain.Point
	Size        *domain.Size
	Content     *string
	DataBinding *string
	Styles      *domain.Styles
}

// Geometry reports whether the patch touches position or size.
func (p Patch) Geometry() bool { return p.Position != nil || p.Size != nil }

// Snapshot is an immutable view of the store at one version.
type Snapshot struct {
	Version   uint64
	Elements  []domain.Element
	Rotations domain.Rotations
}

// Store is safe for concurrent use, though the editor drives it from one goroutine.
type Store struct {
	mu       sync.RWMutex
	opts     Options
	elements []domain.Element
	rot      domain.Rotations
	version  uint64
}

// New creates a store seeded with initial elements. Zero options fall back to defaults.
func New(opts Options, initial ...domain.Element) (*Store, error) {
	if opts.Delta == 0 && opts.Base == (domain.Point{}) {
		d := DefaultOptions()
		opts.Base, opts.Delta = d.Base, d.Delta
	}
	if opts.NewID == nil {
		opts.NewID = NewElementID
	}
	s := &Store{opts: opts, rot: domain.Rotations{}}
	if err := s.Replace(initial); err != nil {
		return nil, err
	}
	s.version = 0
	return s, nil
}

// Replace swaps the whole element list, used when a template is loaded.
// All elements are validated first; on error the store is unchanged.
func (s *Store) Replace(els []domain.Element) error {
	seen := make(map[string]bool, len(els))
	next := make([]domain.Element, 0, len(els))
	for _, e := range els {
		if err := e.Validate(); err != nil {
			return err
		}
		if seen[e.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateID, e.ID)
		}
		seen[e.ID] = true
		next = append(next, e.Clone())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elements = next
	s.rot = domain.Rotations{}
	s.version++
	return nil
}

// Add appends a new element of typ and returns it. An empty content takes the
// per-type default.
func (s *Store) Add(typ domain.ElementType, binding, content string) (domain.Element, error) {
	if !typ.Valid() {
		return domain.Element{}, fmt.Errorf("%w: %q", domain.ErrInvalidType, typ)
	}
	if content == "" {
		content = defaultContent(typ)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e := domain.NewElement(s.uniqueIDLocked(), typ, content, binding)
	n := float64(len(s.elements))
	e.Position = domain.Point{X: s.opts.Base.X + n*s.opts.Delta, Y: s.opts.Base.Y + n*s.opts.Delta}
	e.Position, _ = domain.ClampGeometry(e.Position, domain.Size{})
	e.Size = defaultSize(typ)
	if typ == domain.TypeText {
		e.Styles = domain.Styles{FontSize: DefaultFontSize}
	}
	s.elements = append(s.elements, e)
	s.version++
	return e.Clone(), nil
}

func (s *Store) uniqueIDLocked() string {
	for {
		id := s.opts.NewID()
		if s.indexLocked(id) < 0 {
			return id
		}
	}
}

func defaultContent(typ domain.ElementType) string {
	switch {
	case typ == domain.TypeText:
		return DefaultContentText
	case typ == domain.TypeImage, typ.Rule():
		return ""
	}
	return DefaultContentField
}

func defaultSize(typ domain.ElementType) domain.Size {
	if typ == domain.TypeImage {
		return domain.Size{Width: 150, Height: 100}
	}
	return domain.Size{Width: 200, Height: 30}
}

func (s *Store) indexLocked(id string) int {
	for i := range s.elements {
		if s.elements[i].ID == id {
			return i
		}
	}
	return -1
}

// Update merges p into the element with id. It returns false when id is
// unknown or nothing changed. Locked elements ignore geometry.
func (s *Store) Update(id string, p Patch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return false
	}
	e := s.elements[i]
	changed := false
	if !e.Locked && p.Geometry() {
		pos, size := e.Position, e.Size
		if p.Position != nil {
			pos = *p.Position
		}
		if p.Size != nil {
			size = *p.Size
		}
		e.Position, e.Size = domain.ClampGeometry(pos, size)
		changed = true
	}
	if p.Content != nil {
		e = e.WithContent(*p.Content)
		changed = true
	}
	if p.DataBinding != nil {
		e = e.WithDataBinding(*p.DataBinding)
		changed = true
	}
	if p.Styles != nil {
		e.Styles = p.Styles.Clone()
		changed = true
	}
	if !changed {
		return false
	}
	s.elements[i] = e
	s.version++
	return true
}

// Delete removes the element with id. Unknown ids are a no-op.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return false
	}
	s.elements = append(s.elements[:i:i], s.elements[i+1:]...)
	delete(s.rot, id)
	s.version++
	return true
}

// Clear removes every element and rotation.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elements = nil
	s.rot = domain.Rotations{}
	s.version++
}

// Get returns a copy of the element with id.
func (s *Store) Get(id string) (domain.Element, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexLocked(id)
	if i < 0 {
		return domain.Element{}, false
	}
	return s.elements[i].Clone(), true
}

// Elements returns deep copies in stacking order.
func (s *Store) Elements() []domain.Element {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.elements)
}

func cloneAll(els []domain.Element) []domain.Element {
	out := make([]domain.Element, len(els))
	for i, e := range els {
		out[i] = e.Clone()
	}
	return out
}

// Len returns the element count.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.elements)
}

// Version increases by one on every successful mutation.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Snapshot returns the elements and rotations at the current version.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Version: s.version, Elements: cloneAll(s.elements), Rotations: s.rot.Clone()}
}

// Rotate adds deg to the cumulative rotation of id. Geometry is not touched.
func (s *Store) Rotate(id string, deg float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 || s.elements[i].Locked {
		return false
	}
	s.rot[id] += deg
	s.version++
	return true
}

// Rotation returns the cumulative rotation of id in degrees.
func (s *Store) Rotation(id string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rot.Of(id)
}
