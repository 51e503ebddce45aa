/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Snapping of a dragged element box to the canvas and to other elements.

import "math"

// SnapOptions controls which guide candidates are considered and the threshold.
type SnapOptions struct {
	// Threshold is the maximum distance in layout pixels at which snapping occurs.
	Threshold float32
	Edges     bool
	Centers   bool
}

// Orientation of a guide line.
type Orientation int

const (
	Vertical Orientation = iota
	Horizontal
)

// GuideLine is a visual guide produced by a snap. Position is x for vertical
// guides and y for horizontal ones.
type GuideLine struct {
	Orientation Orientation
	Center      bool
	Position    float32
	From, To    Pt
}

type candidate struct {
	moving, anchor float32
	center         bool
}

func axisCandidates(m0, mw, a0, aw float32, o SnapOptions) []candidate {
	var out []candidate
	if o.Edges {
		out = append(out,
			candidate{m0, a0, false}, candidate{m0 + mw, a0 + aw, false},
			candidate{m0, a0 + aw, false}, candidate{m0 + mw, a0, false})
	}
	if o.Centers {
		out = append(out, candidate{m0 + mw/2, a0 + aw/2, true})
	}
	return out
}

// Snap moves the rectangle so its closest edge or centre within the
// threshold lines up with an anchor. X and Y snap independently.
func Snap(moving Rect, anchors []Rect, o SnapOptions) (Rect, []GuideLine) {
	if o.Threshold <= 0 {
		o.Threshold = 6
	}
	bestX, bestY := float32(math.Inf(1)), float32(math.Inf(1))
	var dx, dy float32
	var gx, gy GuideLine
	for _, a := range anchors {
		for _, c := range axisCandidates(moving.X, moving.W, a.X, a.W, o) {
			d := c.moving - c.anchor
			if ad := float32(math.Abs(float64(d))); ad <= o.Threshold && ad < bestX {
				bestX, dx = ad, d
				x := FloatRound(c.anchor, 3)
				gx = GuideLine{Orientation: Vertical, Center: c.center, Position: x,
					From: Pt{x, min(moving.Y, a.Y)}, To: Pt{x, max(moving.Y+moving.H, a.Y+a.H)}}
			}
		}
		for _, c := range axisCandidates(moving.Y, moving.H, a.Y, a.H, o) {
			d := c.moving - c.anchor
			if ad := float32(math.Abs(float64(d))); ad <= o.Threshold && ad < bestY {
				bestY, dy = ad, d
				y := FloatRound(c.anchor, 3)
				gy = GuideLine{Orientation: Horizontal, Center: c.center, Position: y,
					From: Pt{min(moving.X, a.X), y}, To: Pt{max(moving.X+moving.W, a.X+a.W), y}}
			}
		}
	}
	var guides []GuideLine
	if !math.IsInf(float64(bestX), 1) {
		moving.X = FloatRound(moving.X-dx, 3)
		guides = append(guides, gx)
	}
	if !math.IsInf(float64(bestY), 1) {
		moving.Y = FloatRound(moving.Y-dy, 3)
		guides = append(guides, gy)
	}
	return moving, guides
}
