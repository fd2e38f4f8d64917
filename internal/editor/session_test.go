/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"math"
	"testing"

	"vecdraft/internal/geom"
	"vecdraft/internal/model"
)

func newTestSession() *Session {
	s := NewSession(Hooks{})
	s.View().SetSurfaceSize(800, 600)
	return s
}

func addItem(s *Session, pts ...geom.Pt) *model.PolylineItem {
	it := &model.PolylineItem{Points: pts, Visible: true}
	s.Doc().Append(it)
	return it
}

func approx(a, b geom.Pt) bool {
	return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9
}

func TestLoadBarePointList(t *testing.T) {
	s := newTestSession()
	raw := []any{
		[]any{0.0, 0.0},
		[]any{10.0, 0.0},
		[]any{10.0, 10.0},
	}
	if err := s.Load([]any{raw}); err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Doc().Len() != 1 {
		t.Fatalf("want 1 item, got %d", s.Doc().Len())
	}
	it := s.Doc().Items()[0]
	if len(it.Points) != 3 || it.Layer != "0" || it.Type != "POLYLINE" || !it.Visible {
		t.Fatalf("normalized item wrong: %+v", it)
	}
}

func TestLoadEmptyInput(t *testing.T) {
	s := newTestSession()
	if err := s.Load([]any{}); err != ErrNothingLoaded {
		t.Fatalf("want ErrNothingLoaded, got %v", err)
	}
	if err := s.Load(map[string]any{"entities": []any{}}); err != ErrNothingLoaded {
		t.Fatalf("want ErrNothingLoaded, got %v", err)
	}
}

func TestLoadInvalidatesGesture(t *testing.T) {
	s := newTestSession()
	it := addItem(s, geom.Pt{X: 10, Y: 10}, geom.Pt{X: 50, Y: 10})
	if !s.Select(it.ID, 0) {
		t.Fatalf("select failed")
	}
	s.state = stateDraggingPoint
	if err := s.Load([]any{[]any{[]any{0.0, 0.0}, []any{1.0, 1.0}}}); err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.state != stateIdle || !s.Selection().Empty() {
		t.Fatalf("load must reset gesture state and selection")
	}
	// A move referencing the old document is a safe no-op.
	s.sel = Selection{ItemID: it.ID, PointIndex: 0}
	s.state = stateDraggingPoint
	s.PointerMove(geom.Pt{X: 400, Y: 300})
	if got := s.Doc().Items()[0].Points[0]; !approx(got, geom.Pt{X: 0, Y: 0}) {
		t.Fatalf("stale drag mutated new document: %v", got)
	}
}

func TestLoadReplacesLayerState(t *testing.T) {
	s := newTestSession()
	mk := func(layer string) map[string]any {
		return map[string]any{
			"layer":  layer,
			"points": []any{[]any{0.0, 0.0}, []any{10.0, 0.0}},
		}
	}
	if err := s.Load([]any{mk("walls"), mk("old")}); err != nil {
		t.Fatalf("first load: %v", err)
	}
	s.Doc().SetLayerVisible("walls", false)

	if err := s.Load([]any{mk("walls")}); err != nil {
		t.Fatalf("second load: %v", err)
	}
	if !s.Doc().LayerVisible("walls") {
		t.Fatalf("hidden flag leaked across load")
	}
	if got := len(s.Doc().VisibleItems()); got != 1 {
		t.Fatalf("visible items after fresh load = %d, want 1", got)
	}
	if _, ok := s.Doc().Styles()["old"]; ok {
		t.Fatalf("stale layer style survived the load")
	}
}

func TestLoadDuplicateIDsResolveSeparately(t *testing.T) {
	s := newTestSession()
	if err := s.LoadJSON(`[
		{"id":"pl-1","points":[[0,0],[10,0]]},
		{"id":"pl-1","points":[[0,10],[10,10]]}
	]`); err != nil {
		t.Fatalf("load: %v", err)
	}
	items := s.Doc().Items()
	if len(items) != 2 {
		t.Fatalf("want 2 items, got %d", len(items))
	}
	if items[0].ID == items[1].ID {
		t.Fatalf("duplicate ids survived load: %s", items[0].ID)
	}
	// selecting and dragging the second item must not touch the first
	if !s.Select(items[1].ID, -1) {
		t.Fatalf("second item not selectable")
	}
	before := items[0].Points[0]
	if !s.Nudge(1, 0, false) {
		t.Fatalf("nudge did not move the selection")
	}
	if !approx(items[0].Points[0], before) {
		t.Fatalf("drag of second item mutated the first")
	}
}

func TestDeleteSelectedPoint(t *testing.T) {
	s := newTestSession()
	it := addItem(s, geom.Pt{X: 0, Y: 0}, geom.Pt{X: 5, Y: 0}, geom.Pt{X: 10, Y: 0})
	s.Select(it.ID, 1)
	if !s.DeleteSelected() {
		t.Fatalf("delete failed")
	}
	if len(it.Points) != 2 {
		t.Fatalf("want 2 points, got %d", len(it.Points))
	}
	if s.Selection().PointIndex != 0 {
		t.Fatalf("want reselect at 0, got %d", s.Selection().PointIndex)
	}
	// Two points left: deleting a point removes the whole item.
	if !s.DeleteSelected() {
		t.Fatalf("delete failed")
	}
	if s.Doc().Len() != 0 {
		t.Fatalf("2-point item must be removed entirely")
	}
	if !s.Selection().Empty() {
		t.Fatalf("selection must be cleared with the item")
	}
	if s.DeleteSelected() {
		t.Fatalf("delete with no selection must report false")
	}
}

func TestDeleteFirstPointReselectsZero(t *testing.T) {
	s := newTestSession()
	it := addItem(s, geom.Pt{X: 0, Y: 0}, geom.Pt{X: 5, Y: 0}, geom.Pt{X: 10, Y: 0})
	s.Select(it.ID, 0)
	if !s.DeleteSelected() {
		t.Fatalf("delete failed")
	}
	if s.Selection().PointIndex != 0 {
		t.Fatalf("want index clamped to 0, got %d", s.Selection().PointIndex)
	}
	if !approx(it.Points[0], geom.Pt{X: 5, Y: 0}) {
		t.Fatalf("wrong point removed: %+v", it.Points)
	}
}

func TestNudge(t *testing.T) {
	s := newTestSession()
	it := addItem(s, geom.Pt{X: 0, Y: 0}, geom.Pt{X: 10, Y: 0})
	s.Select(it.ID, 1)
	if !s.Nudge(1, 0, false) {
		t.Fatalf("nudge failed")
	}
	if !approx(it.Points[1], geom.Pt{X: 11, Y: 0}) {
		t.Fatalf("got %v", it.Points[1])
	}
	if !s.Nudge(0, -1, true) {
		t.Fatalf("nudge failed")
	}
	if !approx(it.Points[1], geom.Pt{X: 11, Y: -10}) {
		t.Fatalf("shift multiplier wrong: %v", it.Points[1])
	}
	// whole-item selection moves every point
	s.Select(it.ID, -1)
	s.Nudge(0, 1, false)
	if !approx(it.Points[0], geom.Pt{X: 0, Y: 1}) || !approx(it.Points[1], geom.Pt{X: 11, Y: -9}) {
		t.Fatalf("item nudge wrong: %+v", it.Points)
	}
}

func TestClearResetsEverything(t *testing.T) {
	s := newTestSession()
	it := addItem(s, geom.Pt{X: 0, Y: 0}, geom.Pt{X: 10, Y: 0})
	s.Select(it.ID, 0)
	s.state = stateDraggingPoint
	s.Clear()
	if s.Doc().Len() != 0 || !s.Selection().Empty() || s.state != stateIdle {
		t.Fatalf("clear must reset document, selection and gesture")
	}
	b := s.View().Bounds()
	if !b.Valid() {
		t.Fatalf("viewport invalid after clear: %+v", b)
	}
}

func TestViewBoundsStayValidUnderGestures(t *testing.T) {
	s := newTestSession()
	addItem(s, geom.Pt{X: 0, Y: 0}, geom.Pt{X: 1000, Y: 1000})
	s.FitView()
	for i := 0; i < 50; i++ {
		s.View().ZoomAt(geom.Pt{X: 400, Y: 300}, 5)
		if b := s.View().Bounds(); !b.Valid() {
			t.Fatalf("bounds invalid after zoom %d: %+v", i, b)
		}
	}
	s.PointerDown(geom.Pt{X: 400, Y: 300}, Modifiers{Shift: true})
	s.PointerMove(geom.Pt{X: 0, Y: 0})
	s.PointerUp()
	if b := s.View().Bounds(); !b.Valid() {
		t.Fatalf("bounds invalid after pan: %+v", b)
	}
}

func TestLoadEntitiesAndBBox(t *testing.T) {
	s := newTestSession()
	raw := map[string]any{
		"polylines": []any{
			map[string]any{
				"points":      []any{[]any{0.0, 0.0}, []any{10.0, 0.0}},
				"entityIndex": 0.0,
			},
		},
		"entities": []any{
			map[string]any{"type": "LWPOLYLINE"},
			map[string]any{
				"type":  "DIMENSION",
				"start": map[string]any{"x": 0.0, "y": 0.0},
				"end":   map[string]any{"x": 5.0, "y": 5.0},
			},
		},
		"bbox": []any{0.0, 0.0, 200.0, 100.0},
	}
	if err := s.Load(raw); err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Doc().Len() != 2 {
		t.Fatalf("want projected dimension alongside polyline, got %d items", s.Doc().Len())
	}
	if it := s.Doc().ItemByEntityIndex(1); it == nil || it.Type != "DIMENSION" {
		t.Fatalf("dimension entity not projected")
	}
	// entity 0 is covered by the polyline projection; no duplicate item
	if it := s.Doc().ItemByEntityIndex(0); it == nil || len(it.Points) != 2 {
		t.Fatalf("covered entity mishandled")
	}
	b := s.View().Bounds()
	if !b.Valid() || !b.Contains(geom.Pt{X: 100, Y: 50}) {
		t.Fatalf("bbox not used for the initial view: %+v", b)
	}
}
