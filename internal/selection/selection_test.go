/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package selection

import (
	"testing"

	"labeldesigner/internal/domain"
)

func lookupOf(els ...domain.Element) Lookup {
	m := map[string]domain.Element{}
	for _, e := range els {
		m[e.ID] = e
	}
	return func(id string) (domain.Element, bool) { e, ok := m[id]; return e, ok }
}

var (
	txt   = domain.NewElement("t1", domain.TypeText, "Hello", "")
	fld   = domain.NewElement("f1", domain.TypeField, "{{field}}", "")
	img   = domain.NewElement("i1", domain.TypeImage, "", "")
	rule  = domain.NewElement("r1", domain.TypeHorizontalRule, "", "")
	items = lookupOf(txt, fld, img, rule)
)

func run(t *testing.T, s State, evs ...Event) (State, []Command) {
	t.Helper()
	var cmds []Command
	for _, ev := range evs {
		var c Command
		s, c = Transition(s, ev, items)
		if c != nil {
			cmds = append(cmds, c)
		}
	}
	return s, cmds
}

func TestSelectModes(t *testing.T) {
	cases := []struct {
		name string
		ev   Select
		want State
	}{
		{"text direct edits", Select{ID: "t1", Direct: true}, State{Mode: Editing, ID: "t1", Draft: "Hello", Committed: "Hello"}},
		{"text indirect selects", Select{ID: "t1"}, State{Mode: Selected, ID: "t1"}},
		{"field direct selects", Select{ID: "f1", Direct: true}, State{Mode: Selected, ID: "f1"}},
		{"image direct selects", Select{ID: "i1", Direct: true}, State{Mode: Selected, ID: "i1"}},
		{"unknown idles", Select{ID: "zz", Direct: true}, State{}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, cmds := run(t, State{}, c.ev)
			if got != c.want || cmds != nil {
				t.Fatalf("got %+v %v want %+v", got, cmds, c.want)
			}
		})
	}
}

func TestBeginEditOnlyForText(t *testing.T) {
	for _, id := range []string{"f1", "i1", "r1"} {
		got, _ := run(t, State{}, Select{ID: id}, BeginEdit{})
		if got.Mode != Selected || got.ID != id {
			t.Fatalf("%s: got %+v", id, got)
		}
	}
	got, _ := run(t, State{}, BeginEdit{})
	if got.Mode != Idle {
		t.Fatalf("idle begin edit: %+v", got)
	}
	got, _ = run(t, State{}, Select{ID: "t1"}, BeginEdit{})
	if got.Mode != Editing {
		t.Fatalf("text begin edit: %+v", got)
	}
}

func TestEscapeDiscardsDraft(t *testing.T) {
	for _, ev := range []Event{Escape{}, Deselect{}, ClickOutside{}} {
		got, cmds := run(t, State{}, Select{ID: "t1", Direct: true}, Input{Text: "changed"}, ev)
		if got != (State{}) || cmds != nil {
			t.Fatalf("%T: got %+v %v", ev, got, cmds)
		}
	}
}

func TestCommitEmitsContent(t *testing.T) {
	got, cmds := run(t, State{}, Select{ID: "t1", Direct: true}, Input{Text: "Line one\nline two\r\n"}, Commit{})
	if got != (State{Mode: Selected, ID: "t1"}) {
		t.Fatalf("state %+v", got)
	}
	if len(cmds) != 1 || cmds[0] != (CommitContent{ID: "t1", Text: "Line oneline two"}) {
		t.Fatalf("cmds %v", cmds)
	}
	_, cmds = run(t, State{}, Select{ID: "t1", Direct: true}, Commit{})
	if cmds != nil {
		t.Fatalf("unchanged draft committed: %v", cmds)
	}
}

func TestDeleteKey(t *testing.T) {
	got, cmds := run(t, State{}, Select{ID: "i1"}, DeleteKey{})
	if got != (State{}) || len(cmds) != 1 || cmds[0] != (DeleteElement{ID: "i1"}) {
		t.Fatalf("got %+v %v", got, cmds)
	}
	got, cmds = run(t, State{}, Select{ID: "t1", Direct: true}, DeleteKey{})
	if got.Mode != Editing || cmds != nil {
		t.Fatalf("delete while editing: %+v %v", got, cmds)
	}
	_, cmds = run(t, State{}, DeleteKey{})
	if cmds != nil {
		t.Fatalf("delete while idle: %v", cmds)
	}
}

func TestGestureBreaksEdit(t *testing.T) {
	got, cmds := run(t, State{}, Select{ID: "t1", Direct: true}, Input{Text: "x"}, GestureStart{ID: "t1"})
	if got != (State{Mode: Selected, ID: "t1"}) || cmds != nil {
		t.Fatalf("got %+v %v", got, cmds)
	}
	got, _ = run(t, State{}, Select{ID: "t1", Direct: true}, GestureStart{ID: "i1"})
	if got != (State{Mode: Selected, ID: "i1"}) {
		t.Fatalf("gesture on other: %+v", got)
	}
}

func TestSelectOtherDropsEdit(t *testing.T) {
	got, cmds := run(t, State{}, Select{ID: "t1", Direct: true}, Input{Text: "x"}, Select{ID: "i1"})
	if got != (State{Mode: Selected, ID: "i1"}) || cmds != nil {
		t.Fatalf("got %+v %v", got, cmds)
	}
}

func TestRemoved(t *testing.T) {
	got, _ := run(t, State{}, Select{ID: "i1"}, Removed{ID: "t1"})
	if got != (State{Mode: Selected, ID: "i1"}) {
		t.Fatalf("removing other changed selection: %+v", got)
	}
	got, _ = run(t, State{}, Select{ID: "i1"}, Removed{ID: "i1"})
	if got != (State{}) {
		t.Fatalf("removing selected: %+v", got)
	}
	got, _ = run(t, State{}, Select{ID: "t1", Direct: true}, Cleared{})
	if got != (State{}) {
		t.Fatalf("cleared: %+v", got)
	}
}

func TestStaleSelectionCollapses(t *testing.T) {
	s := State{Mode: Selected, ID: "gone"}
	got, cmds := Transition(s, DeleteKey{}, items)
	if got != (State{}) || cmds != nil {
		t.Fatalf("got %+v %v", got, cmds)
	}
}

func TestAtMostOneEditing(t *testing.T) {
	two := domain.NewElement("t2", domain.TypeText, "Other", "")
	lk := lookupOf(txt, two)
	s, _ := Transition(State{}, Select{ID: "t1", Direct: true}, lk)
	s, _ = Transition(s, Select{ID: "t2", Direct: true}, lk)
	if !s.IsEditing("t2") || s.IsEditing("t1") || s.Draft != "Other" {
		t.Fatalf("got %+v", s)
	}
}

func TestLockedElements(t *testing.T) {
	footer := domain.NewElement("p1", domain.TypeText, "Powered by", "")
	footer.Locked = true
	lk := lookupOf(txt, footer)
	s, _ := Transition(State{}, Select{ID: "p1", Direct: true}, lk)
	if s != (State{Mode: Selected, ID: "p1"}) {
		t.Fatalf("direct select on pinned text: %+v", s)
	}
	s, _ = Transition(State{}, Select{ID: "t1", Direct: true}, lk)
	s, _ = Transition(s, Input{Text: "hello world"}, lk)
	s, cmd := Transition(s, GestureStart{ID: "p1"}, lk)
	if s != (State{Mode: Selected, ID: "p1"}) || cmd != nil {
		t.Fatalf("gesture on pinned element must end the edit and select it: %+v %v", s, cmd)
	}
}
