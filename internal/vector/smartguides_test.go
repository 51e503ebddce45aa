/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import "testing"

func TestSnapToCanvasEdges(t *testing.T) {
	canvas := Rect{X: 0, Y: 0, W: 200, H: 100}
	moving := Rect{X: 3, Y: 4, W: 80, H: 40}
	snapped, guides := Snap(moving, []Rect{canvas}, SnapOptions{Threshold: 6, Edges: true})
	if snapped.X != 0 || snapped.Y != 0 {
		t.Fatalf("expected snap to origin, got %+v", snapped)
	}
	if len(guides) != 2 || guides[0].Orientation != Vertical || guides[1].Orientation != Horizontal {
		t.Fatalf("guides %+v", guides)
	}
}

func TestSnapToCenters(t *testing.T) {
	canvas := Rect{X: 0, Y: 0, W: 200, H: 100}
	moving := Rect{X: 48, Y: 17, W: 100, H: 60}
	snapped, guides := Snap(moving, []Rect{canvas}, SnapOptions{Threshold: 5, Centers: true})
	if snapped.X != 50 || snapped.Y != 20 {
		t.Fatalf("expected centred, got %+v", snapped)
	}
	for _, g := range guides {
		if !g.Center {
			t.Fatalf("expected centre guides: %+v", g)
		}
	}
}

func TestSnapOutsideThreshold(t *testing.T) {
	moving := Rect{X: 30, Y: 30, W: 10, H: 10}
	snapped, guides := Snap(moving, []Rect{{X: 0, Y: 0, W: 10, H: 10}}, SnapOptions{Threshold: 4, Edges: true, Centers: true})
	if snapped != moving || guides != nil {
		t.Fatalf("unexpected snap %+v %+v", snapped, guides)
	}
}

func TestSnapPrefersClosest(t *testing.T) {
	moving := Rect{X: 98, Y: 500, W: 10, H: 10}
	anchors := []Rect{{X: 95, Y: 0, W: 10, H: 10}, {X: 99, Y: 0, W: 10, H: 10}}
	snapped, _ := Snap(moving, anchors, SnapOptions{Threshold: 6, Edges: true})
	if snapped.X != 99 {
		t.Fatalf("x = %v", snapped.X)
	}
}
