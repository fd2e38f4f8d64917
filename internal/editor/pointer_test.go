/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"testing"

	"vecdraft/internal/geom"
)

// dev converts a model point to device coordinates for the session's
// current viewport, so tests can phrase gestures in model space.
func dev(s *Session, m geom.Pt) geom.Pt {
	return s.View().ModelToDevice(m)
}

func TestPointerDragPoint(t *testing.T) {
	s := newTestSession()
	it := addItem(s, geom.Pt{X: 10, Y: 10}, geom.Pt{X: 50, Y: 10}, geom.Pt{X: 50, Y: 50})

	s.PointerDown(dev(s, geom.Pt{X: 10, Y: 10}), Modifiers{})
	if s.state != stateDraggingPoint {
		t.Fatalf("want DraggingPoint, got %v", s.state)
	}
	if sel := s.Selection(); sel.ItemID != it.ID || sel.PointIndex != 0 {
		t.Fatalf("selection wrong: %+v", sel)
	}

	s.PointerMove(dev(s, geom.Pt{X: 20, Y: 20}))
	if !approx(it.Points[0], geom.Pt{X: 20, Y: 20}) {
		t.Fatalf("point not moved: %v", it.Points[0])
	}

	s.PointerUp()
	if s.state != stateIdle {
		t.Fatalf("want Idle after up")
	}
	// moves after release do nothing
	s.PointerMove(dev(s, geom.Pt{X: 90, Y: 90}))
	if !approx(it.Points[0], geom.Pt{X: 20, Y: 20}) {
		t.Fatalf("move after release mutated point: %v", it.Points[0])
	}
}

func TestPointerClickStrokeSelectsItem(t *testing.T) {
	s := newTestSession()
	it := addItem(s, geom.Pt{X: 10, Y: 10}, geom.Pt{X: 50, Y: 10})

	s.PointerDown(dev(s, geom.Pt{X: 30, Y: 10}), Modifiers{})
	if s.state != stateIdle {
		t.Fatalf("plain stroke click must not start a drag")
	}
	if sel := s.Selection(); sel.ItemID != it.ID || sel.PointIndex != -1 {
		t.Fatalf("want whole-item selection, got %+v", sel)
	}
}

func TestPointerDragPolyline(t *testing.T) {
	s := newTestSession()
	it := addItem(s, geom.Pt{X: 10, Y: 10}, geom.Pt{X: 50, Y: 10})

	s.PointerDown(dev(s, geom.Pt{X: 30, Y: 10}), Modifiers{Alt: true})
	if s.state != stateDraggingPolyline {
		t.Fatalf("want DraggingPolyline, got %v", s.state)
	}
	s.PointerMove(dev(s, geom.Pt{X: 40, Y: 15}))
	if !approx(it.Points[0], geom.Pt{X: 20, Y: 15}) || !approx(it.Points[1], geom.Pt{X: 60, Y: 15}) {
		t.Fatalf("drag offset wrong: %+v", it.Points)
	}
	// offset stays anchored to gesture start, not to the previous move
	s.PointerMove(dev(s, geom.Pt{X: 30, Y: 10}))
	if !approx(it.Points[0], geom.Pt{X: 10, Y: 10}) || !approx(it.Points[1], geom.Pt{X: 50, Y: 10}) {
		t.Fatalf("return to start must restore base points: %+v", it.Points)
	}
	s.PointerUp()
}

func TestPointerPan(t *testing.T) {
	s := newTestSession()
	start := s.View().Bounds()

	s.PointerDown(geom.Pt{X: 400, Y: 300}, Modifiers{Middle: true})
	if s.state != statePanning {
		t.Fatalf("want Panning, got %v", s.state)
	}
	// drag right by a quarter of the surface: view shifts left
	s.PointerMove(geom.Pt{X: 600, Y: 300})
	b := s.View().Bounds()
	wantShift := start.Width() / 4
	if !floatEq(b.MinX, start.MinX-wantShift) || !floatEq(b.MaxX, start.MaxX-wantShift) {
		t.Fatalf("pan x wrong: %+v", b)
	}
	if !floatEq(b.MinY, start.MinY) || !floatEq(b.MaxY, start.MaxY) {
		t.Fatalf("pan must not change y here: %+v", b)
	}
	// dragging down moves the view up in model space
	s.PointerMove(geom.Pt{X: 400, Y: 450})
	b = s.View().Bounds()
	if !floatEq(b.MinY, start.MinY+start.Height()/4) {
		t.Fatalf("pan y sign wrong: %+v", b)
	}
	s.PointerUp()
	if s.state != stateIdle {
		t.Fatalf("want Idle after pan")
	}
}

func TestPointerEmptyClickClearsSelection(t *testing.T) {
	s := newTestSession()
	it := addItem(s, geom.Pt{X: 10, Y: 10}, geom.Pt{X: 50, Y: 10})
	s.Select(it.ID, 1)

	s.PointerDown(dev(s, geom.Pt{X: 90, Y: 90}), Modifiers{})
	if !s.Selection().Empty() {
		t.Fatalf("empty-canvas click must clear selection")
	}
	if s.state != stateIdle {
		t.Fatalf("want Idle")
	}
}

func TestPointerHiddenItemsNotHit(t *testing.T) {
	s := newTestSession()
	it := addItem(s, geom.Pt{X: 10, Y: 10}, geom.Pt{X: 50, Y: 10})
	it.Visible = false

	s.PointerDown(dev(s, geom.Pt{X: 10, Y: 10}), Modifiers{})
	if !s.Selection().Empty() || s.state != stateIdle {
		t.Fatalf("hidden item must not be hit")
	}
}

func TestDoubleClickInsertsMidpoint(t *testing.T) {
	s := newTestSession()
	it := addItem(s, geom.Pt{X: 0, Y: 0}, geom.Pt{X: 10, Y: 0})

	s.DoubleClick(dev(s, geom.Pt{X: 5, Y: 0.2}))
	if len(it.Points) != 3 {
		t.Fatalf("want 3 points, got %d", len(it.Points))
	}
	if !approx(it.Points[1], geom.Pt{X: 5, Y: 0}) {
		t.Fatalf("want midpoint at index 1, got %v", it.Points[1])
	}
	if sel := s.Selection(); sel.ItemID != it.ID || sel.PointIndex != 1 {
		t.Fatalf("inserted point must be selected: %+v", sel)
	}

	// off-stroke double click is a no-op
	s.DoubleClick(dev(s, geom.Pt{X: 50, Y: 50}))
	if len(it.Points) != 3 {
		t.Fatalf("off-stroke double click inserted a point")
	}
}

func floatEq(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}
