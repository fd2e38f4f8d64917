/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package model

import (
	"testing"

	"vecdraft/internal/geom"
)

func TestCloneIsDeep(t *testing.T) {
	idx := 4
	it := &PolylineItem{
		ID:           "p1",
		Layer:        "walls",
		Type:         "LWPOLYLINE",
		Points:       []geom.Pt{{X: 0, Y: 0}, {X: 1, Y: 1}},
		Visible:      true,
		EntityIndex:  &idx,
		LineOverride: &LineOverride{Color: "ff0000"},
	}
	cp := it.Clone()
	cp.Points[0].X = 99
	*cp.EntityIndex = 7
	cp.LineOverride.Color = "00ff00"
	if it.Points[0].X != 0 || *it.EntityIndex != 4 || it.LineOverride.Color != "ff0000" {
		t.Fatalf("clone mutated original: %+v", it)
	}
}

func TestDefaultLayerStyle(t *testing.T) {
	s := DefaultLayerStyle()
	if s.Line.Type != LineSolid || s.Line.Width <= 0 || len(s.Line.Color) != 6 {
		t.Fatalf("bad line defaults: %+v", s.Line)
	}
	if s.Point.Size <= 0 || s.Text.FontSize < 1 || s.Text.WidthFactor <= 0 {
		t.Fatalf("bad point/text defaults: %+v", s)
	}
	if s.Dim.Scale <= 0 || s.Dim.TextSize < 1 || s.Dim.ArrowSize <= 0 || s.Dim.LineGap < 0 {
		t.Fatalf("bad dim defaults: %+v", s.Dim)
	}
}

func TestLineOverrideEmpty(t *testing.T) {
	if !(LineOverride{}).Empty() {
		t.Fatalf("zero override should be empty")
	}
	if (LineOverride{Width: 0.5}).Empty() {
		t.Fatalf("width-only override is not empty")
	}
}
