/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordKeepsNumbers(t *testing.T) {
	rec := SampleData().Record()
	prod := rec["productDetails"].(map[string]any)
	assert.Equal(t, 2, prod["quantity"])
	order := rec["orderDetails"].(map[string]any)
	assert.Equal(t, "ORD2024001", order["orderNumber"])
	assert.Len(t, rec, len(Sections()))
}

func TestDataSet(t *testing.T) {
	d := SampleData()
	if err := d.Set("receiverDetails", "city", "Boston"); err != nil {
		t.Fatal(err)
	}
	if err := d.Set("productDetails", "quantity", " 7 "); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "Boston", d.ReceiverDetails.City)
	assert.Equal(t, 7, d.ProductDetails.Quantity)

	assert.Error(t, d.Set("productDetails", "quantity", "seven"))
	assert.Error(t, d.Set("orderDetails", "nope", "x"))
	assert.Error(t, d.Set("nope", "city", "x"))
	assert.Equal(t, 7, d.ProductDetails.Quantity)
}

func TestPaletteCoversRecord(t *testing.T) {
	rec := SampleData().Record()
	for _, f := range Palette() {
		sec, ok := rec[f.Section].(map[string]any)
		if !ok {
			t.Fatalf("unknown section %s", f.Section)
		}
		if _, ok := sec[f.Key]; !ok {
			t.Errorf("palette field %s not in record", f.Path())
		}
		if f.Type == TypeText && f.Content == "" {
			t.Errorf("%s has no template content", f.Path())
		}
	}
}

func TestLookupPageSize(t *testing.T) {
	assert.Equal(t, PageSize{Name: "A3", Width: 1123, Height: 1587}, LookupPageSize("A3"))
	assert.Equal(t, PageSize{Name: "A5", Width: 559, Height: 794}, LookupPageSize("A5"))
	assert.Equal(t, "A4", LookupPageSize("Custom").Name)
	assert.Equal(t, 794.0, LookupPageSize("").Width)
	assert.False(t, KnownPageSize("Custom"))
}

func TestSampleElementsValid(t *testing.T) {
	els := SampleElements()
	seen := map[string]bool{}
	for _, e := range els {
		if err := e.Validate(); err != nil {
			t.Errorf("%s: %v", e.ID, err)
		}
		if seen[e.ID] {
			t.Errorf("duplicate id %s", e.ID)
		}
		seen[e.ID] = true
	}
	els[1].Styles.FontSize = "99px"
	if SampleElements()[1].Styles.FontSize == "99px" {
		t.Fatal("SampleElements shares state")
	}
}

func TestRotationsClone(t *testing.T) {
	r := Rotations{"a": 90}
	c := r.Clone()
	c["a"] = 180
	assert.Equal(t, 90.0, r.Of("a"))
	assert.Equal(t, 0.0, r.Of("missing"))
}
