/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// PageSize is a canvas size in layout pixels.
type PageSize struct {
	Name   string  `json:"name"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DefaultPageSize is used for unknown or custom names.
const DefaultPageSize = "A4"

var pageSizes = map[string]PageSize{
	"A3": {Name: "A3", Width: 1123, Height: 1587},
	"A4": {Name: "A4", Width: 794, Height: 1123},
	"A5": {Name: "A5", Width: 559, Height: 794},
}

// LookupPageSize returns the canvas size for name; unknown names fall back to A4.
func LookupPageSize(name string) PageSize {
	if p, ok := pageSizes[name]; ok {
		return p
	}
	return pageSizes[DefaultPageSize]
}

// KnownPageSize reports whether name is in the size table.
func KnownPageSize(name string) bool { _, ok := pageSizes[name]; return ok }

// PageSizeNames lists the fixed sizes in display order.
func PageSizeNames() []string { return []string{"A3", "A4", "A5"} }

// Rotations maps element ids to cumulative rotation in degrees.
// A missing entry means 0°.
type Rotations map[string]float64

// Of returns the rotation of id.
func (r Rotations) Of(id string) float64 { return r[id] }

// Clone returns a copy safe to mutate.
func (r Rotations) Clone() Rotations {
	out := make(Rotations, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
