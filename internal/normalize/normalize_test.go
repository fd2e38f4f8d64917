/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package normalize

import (
	"testing"

	"vecdraft/internal/geom"
	"vecdraft/internal/model"
)

func TestBareSequence(t *testing.T) {
	items, err := ParseJSON(`[[[0,0],[10,0],[10,10]]]`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected one item, got %d", len(items))
	}
	it := items[0]
	if len(it.Points) != 3 || it.Layer != "0" || it.Type != "POLYLINE" || !it.Visible {
		t.Fatalf("unexpected item: %+v", it)
	}
	if it.Points[2] != (geom.Pt{X: 10, Y: 10}) {
		t.Fatalf("unexpected points: %+v", it.Points)
	}
}

func TestPolylinesObjectAndVertices(t *testing.T) {
	items, err := ParseJSON(`{"polylines":[{"vertices":[{"x":1,"y":2},{"x":3,"y":4}],"layer":"walls","type":"LWPOLYLINE"}]}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(items) != 1 || items[0].Layer != "walls" || items[0].Type != "LWPOLYLINE" {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestNumericStringCoercion(t *testing.T) {
	items, err := ParseJSON(`[[["1.5","2"],["3","-4.25"]]]`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(items) != 1 || items[0].Points[1] != (geom.Pt{X: 3, Y: -4.25}) {
		t.Fatalf("unexpected coercion: %+v", items)
	}
}

func TestUnusableElementsAreSkipped(t *testing.T) {
	items, err := ParseJSON(`[
		[[0,0],[1,1]],
		[[0,0],["x","y"]],
		"garbage",
		{"vertices":[[0,0]]},
		[[0,0],[1,1],["bad"],[2,2]]
	]`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	// first survives; second drops to one point; third/fourth unusable;
	// fifth survives with the bad point dropped
	if len(items) != 2 {
		t.Fatalf("expected 2 usable items, got %d", len(items))
	}
	if len(items[1].Points) != 3 {
		t.Fatalf("bad point should be dropped, got %d points", len(items[1].Points))
	}
}

func TestNothingUsable(t *testing.T) {
	if items := Document(map[string]any{"foo": 1}); items != nil {
		t.Fatalf("expected nil for shapeless input")
	}
	items, err := ParseJSON(`[]`)
	if err != nil || len(items) != 0 {
		t.Fatalf("empty input must yield empty result, not an error")
	}
}

func TestNonFiniteRejected(t *testing.T) {
	it := Item([]any{
		[]any{float64(0), float64(0)},
		map[string]any{"x": "inf", "y": float64(1)},
		[]any{float64(1), float64(1)},
	})
	if it == nil || len(it.Points) != 2 {
		t.Fatalf("non-finite point must be dropped: %+v", it)
	}
}

func TestFullItemShape(t *testing.T) {
	items, err := ParseJSON(`[{
		"id":"pl-3","layer":" walls ","type":"LINE",
		"points":[[0,0],[5,5]],"visible":false,"entityIndex":2,
		"lineOverride":{"type":"DASH","color":"#FF00aa","width":0.01}
	}]`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	it := items[0]
	if it.ID != "pl-3" || it.Layer != "walls" || it.Type != "LINE" || it.Visible {
		t.Fatalf("unexpected item: %+v", it)
	}
	if it.EntityIndex == nil || *it.EntityIndex != 2 {
		t.Fatalf("entityIndex not kept: %+v", it.EntityIndex)
	}
	o := it.LineOverride
	if o == nil || o.Type != model.LineDash || o.Color != "ff00aa" || o.Width != model.MinLineWidth {
		t.Fatalf("unexpected override: %+v", o)
	}
}

func TestEntityIndexValidation(t *testing.T) {
	items, _ := ParseJSON(`[
		{"points":[[0,0],[1,1]],"entityIndex":-1},
		{"points":[[0,0],[1,1]],"entityIndex":1.5}
	]`)
	for _, it := range items {
		if it.EntityIndex != nil {
			t.Fatalf("invalid entityIndex kept: %v", *it.EntityIndex)
		}
	}
}

func TestLineOverrideDroppedWhenAllInvalid(t *testing.T) {
	items, _ := ParseJSON(`[{"points":[[0,0],[1,1]],"lineOverride":{"color":"red","type":"zigzag"}}]`)
	if items[0].LineOverride != nil {
		t.Fatalf("fully invalid override must be dropped: %+v", items[0].LineOverride)
	}
}

func TestPointsFromEntitySolid(t *testing.T) {
	pts := PointsFromEntity(map[string]any{
		"type":    "SOLID",
		"corners": []any{[]any{0.0, 0.0}, []any{10.0, 0.0}, []any{10.0, 10.0}, []any{0.0, 10.0}},
	})
	if len(pts) != 5 || pts[4] != pts[0] {
		t.Fatalf("expected closed 5-point ring, got %+v", pts)
	}
}

func TestPointsFromEntityDimension(t *testing.T) {
	pts := PointsFromEntity(map[string]any{
		"type":  "DIMENSION",
		"start": map[string]any{"x": 1.0, "y": 2.0},
		"end":   map[string]any{"x": 3.0, "y": 4.0},
	})
	if len(pts) != 2 || pts[1] != (geom.Pt{X: 3, Y: 4}) {
		t.Fatalf("unexpected dimension points: %+v", pts)
	}
	if PointsFromEntity(map[string]any{"type": "CIRCLE"}) != nil {
		t.Fatalf("uncovered entity kinds must return nil")
	}
}

func TestLayersReader(t *testing.T) {
	var raw any = map[string]any{
		"layers": map[string]any{
			"walls": map[string]any{
				"line":    map[string]any{"type": "dash", "color": "00ff00", "width": 2.0},
				"visible": false,
			},
			"doors": map[string]any{},
		},
	}
	cfgs := Layers(raw)
	w := cfgs["walls"]
	if w.Visible || w.Style.Line.Type != "dash" || w.Style.Line.Color != "00ff00" {
		t.Fatalf("unexpected walls config: %+v", w)
	}
	d := cfgs["doors"]
	if !d.Visible || d.Style.Line.Type != model.LineSolid {
		t.Fatalf("partial layer should keep defaults: %+v", d)
	}
}

func TestItemsFromEntities(t *testing.T) {
	raw := map[string]any{
		"entities": []any{
			map[string]any{"type": "CIRCLE", "layer": "a"},
			map[string]any{
				"type":  "solid",
				"layer": "fills",
				"corners": []any{
					[]any{0.0, 0.0}, []any{1.0, 0.0},
					[]any{1.0, 1.0}, []any{0.0, 1.0},
				},
			},
			map[string]any{
				"type":  "DIMENSION",
				"start": map[string]any{"x": 0.0, "y": 0.0},
				"end":   map[string]any{"x": 5.0, "y": 0.0},
			},
		},
	}
	items := ItemsFromEntities(raw)
	if len(items) != 2 {
		t.Fatalf("want 2 projected items, got %d", len(items))
	}
	solid := items[0]
	if solid.Type != "SOLID" || solid.Layer != "fills" || len(solid.Points) != 5 {
		t.Fatalf("unexpected solid projection: %+v", solid)
	}
	if solid.EntityIndex == nil || *solid.EntityIndex != 1 {
		t.Fatalf("solid must reference entity position 1")
	}
	dim := items[1]
	if dim.Type != "DIMENSION" || len(dim.Points) != 2 || *dim.EntityIndex != 2 {
		t.Fatalf("unexpected dimension projection: %+v", dim)
	}
}

func TestBBoxReader(t *testing.T) {
	b, ok := BBox(map[string]any{"bbox": []any{0.0, -5.0, 10.0, 5.0}})
	if !ok || b.MinX != 0 || b.MinY != -5 || b.MaxX != 10 || b.MaxY != 5 {
		t.Fatalf("array bbox: ok=%v %+v", ok, b)
	}
	b, ok = BBox(map[string]any{"bbox": map[string]any{
		"minX": 1.0, "minY": 2.0, "maxX": 3.0, "maxY": 4.0,
	}})
	if !ok || b.MinX != 1 || b.MaxY != 4 {
		t.Fatalf("object bbox: ok=%v %+v", ok, b)
	}
	if _, ok := BBox(map[string]any{"bbox": []any{0.0, 0.0, 0.0, 0.0}}); ok {
		t.Fatalf("degenerate bbox must be rejected")
	}
	if _, ok := BBox(map[string]any{}); ok {
		t.Fatalf("missing bbox must be rejected")
	}
}
