/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package selection is the selection and inline-editing state machine of the
// editor canvas. Transition is pure: it never touches the element store and
// reports required store changes as a Command.
package selection

import (
	"strings"

	"labeldesigner/internal/domain"
)

// Mode is the coarse state.
type Mode int

const (
	Idle Mode = iota
	Selected
	Editing
)

func (m Mode) String() string {
	switch m {
	case Selected:
		return "selected"
	case Editing:
		return "editing"
	}
	return "idle"
}

// State is the current selection. ID is empty in Idle. Draft and Committed are
// only meaningful while Editing: Draft is the live text, Committed the store
// content when editing began.
type State struct {
	Mode      Mode
	ID        string
	Draft     string
	Committed string
}

// IsSelected reports whether id holds the selection.
func (s State) IsSelected(id string) bool { return s.Mode != Idle && s.ID == id }

// IsEditing reports whether id is in inline edit mode.
func (s State) IsEditing(id string) bool { return s.Mode == Editing && s.ID == id }

// Dirty reports an uncommitted draft.
func (s State) Dirty() bool { return s.Mode == Editing && s.Draft != s.Committed }

// Lookup resolves an element id against the current store snapshot.
type Lookup func(id string) (domain.Element, bool)

// Event is one user input.
type Event interface{ event() }

type (
	// Select chooses an element. Direct is a click on the element body in the
	// editor surface, which enters Editing for text elements.
	Select struct {
		ID     string
		Direct bool
	}
	Deselect     struct{}
	Escape       struct{}
	ClickOutside struct{}
	BeginEdit    struct{}
	// Input replaces the draft text.
	Input struct{ Text string }
	// Commit is blur or Enter.
	Commit    struct{}
	DeleteKey struct{}
	// GestureStart is the start of a drag or resize on ID.
	GestureStart struct{ ID string }
	// Removed reports that ID left the store by other means.
	Removed struct{ ID string }
	Cleared struct{}
)

func (Select) event()       {}
func (Deselect) event()     {}
func (Escape) event()       {}
func (ClickOutside) event() {}
func (BeginEdit) event()    {}
func (Input) event()        {}
func (Commit) event()       {}
func (DeleteKey) event()    {}
func (GestureStart) event() {}
func (Removed) event()      {}
func (Cleared) event()      {}

// Command is a store mutation requested by a transition. Nil means none.
type Command interface{ command() }

type (
	CommitContent struct {
		ID   string
		Text string
	}
	DeleteElement struct{ ID string }
)

func (CommitContent) command() {}
func (DeleteElement) command() {}

// Editable reports whether e may enter inline edit mode. Pinned elements never do.
func Editable(e domain.Element) bool { return e.Type == domain.TypeText && !e.Locked }

// Transition applies ev to s. Ids that lookup does not know collapse the
// state to Idle.
func Transition(s State, ev Event, lookup Lookup) (State, Command) {
	if s.Mode != Idle {
		if _, ok := lookup(s.ID); !ok {
			s = State{}
		}
	}
	switch ev := ev.(type) {
	case Select:
		e, ok := lookup(ev.ID)
		if !ok {
			return State{}, nil
		}
		if s.IsEditing(ev.ID) {
			return s, nil
		}
		if ev.Direct && Editable(e) {
			return editing(e), nil
		}
		return State{Mode: Selected, ID: e.ID}, nil

	case Deselect, Escape, ClickOutside:
		return State{}, nil

	case BeginEdit:
		if s.Mode != Selected {
			return s, nil
		}
		e, _ := lookup(s.ID)
		if !Editable(e) {
			return s, nil
		}
		return editing(e), nil

	case Input:
		if s.Mode != Editing {
			return s, nil
		}
		s.Draft = singleLine(ev.Text)
		return s, nil

	case Commit:
		if s.Mode != Editing {
			return s, nil
		}
		next := State{Mode: Selected, ID: s.ID}
		if s.Draft == s.Committed {
			return next, nil
		}
		return next, CommitContent{ID: s.ID, Text: s.Draft}

	case DeleteKey:
		if s.Mode != Selected {
			return s, nil
		}
		return State{}, DeleteElement{ID: s.ID}

	case GestureStart:
		e, ok := lookup(ev.ID)
		if !ok {
			return State{}, nil
		}
		return State{Mode: Selected, ID: e.ID}, nil

	case Removed:
		if s.Mode != Idle && s.ID == ev.ID {
			return State{}, nil
		}
		return s, nil

	case Cleared:
		return State{}, nil
	}
	return s, nil
}

func editing(e domain.Element) State {
	c := e.Content()
	return State{Mode: Editing, ID: e.ID, Draft: c, Committed: c}
}

// singleLine drops line breaks; Enter commits instead of inserting one.
func singleLine(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	return strings.NewReplacer("\r\n", "", "\n", "", "\r", "").Replace(s)
}
