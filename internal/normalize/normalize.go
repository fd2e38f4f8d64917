/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package normalize converts loosely-typed external input, the raw output
// of a DXF parser or pasted JSON of unknown shape, into the canonical
// polyline item model. Every coercion is total: unusable elements are
// silently skipped, never raised; an empty result is the only failure
// signal, and the caller treats it as "nothing usable was found".
package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"vecdraft/internal/geom"
	"vecdraft/internal/model"
)

// Document converts raw input into canonical polyline items. Accepted
// shapes, probed structurally:
//   - a bare sequence of polyline-like values
//   - an object exposing a "polylines" field holding such a sequence
//
// Each element may be a bare point sequence, an object with "vertices", or
// a full item-shaped object (id/layer/type/points/visible/entityIndex/
// lineOverride). Items keep incoming ids; missing ids are left empty for
// the owning document's allocator to fill.
func Document(raw any) []*model.PolylineItem {
	seq := polylineSequence(raw)
	if seq == nil {
		return nil
	}
	var out []*model.PolylineItem
	for _, el := range seq {
		if it := Item(el); it != nil {
			out = append(out, it)
		}
	}
	return out
}

// ParseJSON decodes a JSON text and normalizes it. The error covers only
// malformed JSON; structurally unusable content yields an empty list.
func ParseJSON(text string) ([]*model.PolylineItem, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return Document(raw), nil
}

func polylineSequence(raw any) []any {
	switch v := raw.(type) {
	case []any:
		return v
	case map[string]any:
		if seq, ok := v["polylines"].([]any); ok {
			return seq
		}
	}
	return nil
}

// Item normalizes a single polyline-like value; nil when unusable.
func Item(el any) *model.PolylineItem {
	switch v := el.(type) {
	case []any:
		pts := coercePoints(v)
		if len(pts) < 2 {
			return nil
		}
		return &model.PolylineItem{
			Layer:   model.DefaultLayer,
			Type:    model.DefaultType,
			Points:  pts,
			Visible: true,
		}
	case map[string]any:
		return itemFromObject(v)
	}
	return nil
}

func itemFromObject(obj map[string]any) *model.PolylineItem {
	var rawPts []any
	if seq, ok := obj["points"].([]any); ok {
		rawPts = seq
	} else if seq, ok := obj["vertices"].([]any); ok {
		rawPts = seq
	} else {
		return nil
	}
	pts := coercePoints(rawPts)
	if len(pts) < 2 {
		return nil
	}

	it := &model.PolylineItem{
		ID:      stringField(obj, "id", ""),
		Layer:   stringField(obj, "layer", model.DefaultLayer),
		Type:    stringField(obj, "type", model.DefaultType),
		Points:  pts,
		Visible: true,
	}
	if v, ok := obj["visible"].(bool); ok {
		it.Visible = v
	}
	if idx, ok := intField(obj, "entityIndex"); ok && idx >= 0 {
		it.EntityIndex = &idx
	}
	if o := lineOverride(obj["lineOverride"]); o != nil {
		it.LineOverride = o
	}
	return it
}

// coercePoints converts a sequence of point-like values, dropping every
// element that cannot become two finite numbers.
func coercePoints(raw []any) []geom.Pt {
	pts := make([]geom.Pt, 0, len(raw))
	for _, v := range raw {
		if p, ok := Point(v); ok {
			pts = append(pts, p)
		}
	}
	return pts
}

// Point coerces one point-like value: an [x, y] pair (numeric or
// numeric-string entries) or an {x, y} record.
func Point(v any) (geom.Pt, bool) {
	switch pv := v.(type) {
	case []any:
		if len(pv) < 2 {
			return geom.Pt{}, false
		}
		x, okX := toFloat(pv[0])
		y, okY := toFloat(pv[1])
		if !okX || !okY {
			return geom.Pt{}, false
		}
		return geom.Pt{X: x, Y: y}, true
	case map[string]any:
		x, okX := toFloat(pv["x"])
		y, okY := toFloat(pv["y"])
		if !okX || !okY {
			return geom.Pt{}, false
		}
		return geom.Pt{X: x, Y: y}, true
	}
	return geom.Pt{}, false
}

// toFloat accepts numbers, json.Number and numeric strings; non-finite
// values are rejected so they can never reach the model.
func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func stringField(obj map[string]any, key, fallback string) string {
	if s, ok := obj[key].(string); ok {
		if t := strings.TrimSpace(s); t != "" {
			return t
		}
	}
	return fallback
}

func intField(obj map[string]any, key string) (int, bool) {
	f, ok := toFloat(obj[key])
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

func lineOverride(v any) *model.LineOverride {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	var o model.LineOverride
	if t, ok := obj["type"].(string); ok {
		switch strings.ToLower(strings.TrimSpace(t)) {
		case model.LineSolid:
			o.Type = model.LineSolid
		case model.LineDash:
			o.Type = model.LineDash
		case model.LineDot:
			o.Type = model.LineDot
		case model.LineDashDot:
			o.Type = model.LineDashDot
		}
	}
	if c, ok := obj["color"].(string); ok {
		if norm, valid := model.NormalizeHexColor(c); valid {
			o.Color = norm
		}
	}
	if w, ok := toFloat(obj["width"]); ok && w > 0 {
		if w < model.MinLineWidth {
			w = model.MinLineWidth
		}
		o.Width = w
	}
	if o.Empty() {
		return nil
	}
	return &o
}
