/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package store

import (
	"github.com/google/uuid"

	"labeldesigner/internal/domain"
)

// Footer content pinned to the bottom of every page.
const (
	FooterText = "Powered by"
	FooterLogo = "/storemate-logo.png"
)

// FooterPositions returns where the footer text and logo sit on a page.
func FooterPositions(page domain.PageSize) (text, logo domain.Point) {
	text = domain.Point{X: (page.Width - 180) / 2, Y: page.Height - 40}
	logo = domain.Point{X: (page.Width-440)/2 + 210, Y: page.Height - 40}
	text, _ = domain.ClampGeometry(text, domain.Size{})
	logo, _ = domain.ClampGeometry(logo, domain.Size{})
	return text, logo
}

// PinFooter adds the locked footer elements or moves existing ones to match page.
func (s *Store) PinFooter(page domain.PageSize) {
	textPos, logoPos := FooterPositions(page)
	s.mu.Lock()
	defer s.mu.Unlock()
	textAt, logoAt := -1, -1
	for i, e := range s.elements {
		if !e.Locked {
			continue
		}
		switch {
		case e.Type == domain.TypeText && e.Content() == FooterText:
			textAt = i
		case e.Type == domain.TypeImage && e.Content() == FooterLogo:
			logoAt = i
		}
	}
	if textAt >= 0 {
		s.elements[textAt].Position = textPos
	} else {
		e := domain.NewElement("element-powered-by-text-"+uuid.NewString(), domain.TypeText, FooterText, "")
		e.Position = textPos
		e.Size = domain.Size{Width: 200, Height: 30}
		e.Styles = domain.Styles{FontSize: "12px", FontWeight: "normal", TextAlign: "left", Color: "#000000"}
		e.Locked = true
		s.elements = append(s.elements, e)
	}
	if logoAt >= 0 {
		s.elements[logoAt].Position = logoPos
	} else {
		e := domain.NewElement("element-storemate-logo-"+uuid.NewString(), domain.TypeImage, FooterLogo, "")
		e.Position = logoPos
		e.Size = domain.Size{Width: 100, Height: 30}
		e.Locked = true
		s.elements = append(s.elements, e)
	}
	s.version++
}
