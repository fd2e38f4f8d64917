/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package normalize

import (
	"encoding/json"
	"strings"

	"vecdraft/internal/geom"
	"vecdraft/internal/model"
)

// PointsFromEntity derives a point sequence directly from entity shapes that
// the parser's own polyline projection does not cover:
//   - a SOLID (4-corner filled shape) becomes a closed 5-point ring by
//     repeating the first corner
//   - a DIMENSION yields its two measurement endpoints
//
// Nil is returned for every other entity kind or when the fields cannot be
// coerced.
func PointsFromEntity(entity any) []geom.Pt {
	obj, ok := entity.(map[string]any)
	if !ok {
		return nil
	}
	switch strings.ToUpper(stringField(obj, "type", "")) {
	case "SOLID":
		raw, ok := obj["corners"].([]any)
		if !ok {
			raw, _ = obj["points"].([]any)
		}
		pts := coercePoints(raw)
		if len(pts) != 4 {
			return nil
		}
		return append(pts, pts[0])
	case "DIMENSION":
		start, okS := Point(obj["start"])
		end, okE := Point(obj["end"])
		if !okS {
			start, okS = Point(obj["measureStart"])
		}
		if !okE {
			end, okE = Point(obj["measureEnd"])
		}
		if !okS || !okE {
			return nil
		}
		return []geom.Pt{start, end}
	}
	return nil
}

// ItemsFromEntities projects entity records the polyline projection does
// not cover into items of their own. Each item keeps the entity's layer
// and type tag and a back-reference to its position in the entity list.
func ItemsFromEntities(raw any) []*model.PolylineItem {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	entities, ok := obj["entities"].([]any)
	if !ok {
		return nil
	}
	var out []*model.PolylineItem
	for i, ent := range entities {
		pts := PointsFromEntity(ent)
		if len(pts) < 2 {
			continue
		}
		eobj, _ := ent.(map[string]any)
		idx := i
		out = append(out, &model.PolylineItem{
			Layer:       stringField(eobj, "layer", model.DefaultLayer),
			Type:        strings.ToUpper(stringField(eobj, "type", model.DefaultType)),
			Points:      pts,
			Visible:     true,
			EntityIndex: &idx,
			Source:      ent,
		})
	}
	return out
}

// BBox reads an optional "bbox" projection, either [minX minY maxX maxY]
// or an object with those fields, usable as an initial view window.
func BBox(raw any) (geom.Bounds, bool) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return geom.Bounds{}, false
	}
	var b geom.Bounds
	switch v := obj["bbox"].(type) {
	case []any:
		if len(v) != 4 {
			return geom.Bounds{}, false
		}
		vals := make([]float64, 0, 4)
		for _, e := range v {
			f, ok := toFloat(e)
			if !ok {
				return geom.Bounds{}, false
			}
			vals = append(vals, f)
		}
		b = geom.Bounds{MinX: vals[0], MinY: vals[1], MaxX: vals[2], MaxY: vals[3]}
	case map[string]any:
		fields := [4]string{"minX", "minY", "maxX", "maxY"}
		vals := [4]float64{}
		for i, name := range fields {
			f, ok := toFloat(v[name])
			if !ok {
				return geom.Bounds{}, false
			}
			vals[i] = f
		}
		b = geom.Bounds{MinX: vals[0], MinY: vals[1], MaxX: vals[2], MaxY: vals[3]}
	default:
		return geom.Bounds{}, false
	}
	if !b.Valid() {
		return geom.Bounds{}, false
	}
	return b, true
}

// LayerConfig is the per-layer record read back from canonical JSON.
type LayerConfig struct {
	Style   model.LayerStyle
	Visible bool
}

// Layers reads the "layers" object of a canonical document, tolerating
// absent or partial style records (missing fields keep defaults). The
// result is empty, never nil-keyed, when nothing usable is present.
func Layers(raw any) map[string]LayerConfig {
	out := map[string]LayerConfig{}
	obj, ok := raw.(map[string]any)
	if !ok {
		return out
	}
	layers, ok := obj["layers"].(map[string]any)
	if !ok {
		return out
	}
	for name, lv := range layers {
		name = strings.TrimSpace(name)
		if name == "" {
			name = model.DefaultLayer
		}
		cfg := LayerConfig{Style: *model.DefaultLayerStyle(), Visible: true}
		if data, err := json.Marshal(lv); err == nil {
			var rec struct {
				model.LayerStyle
				Visible *bool `json:"visible"`
			}
			rec.LayerStyle = cfg.Style
			if err := json.Unmarshal(data, &rec); err == nil {
				cfg.Style = rec.LayerStyle
				if rec.Visible != nil {
					cfg.Visible = *rec.Visible
				}
			}
		}
		out[name] = cfg
	}
	return out
}
