/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package model defines the canonical data model of the editor: the
// normalized polyline item that every drawable shape is reduced to, and the
// per-layer style records. Structures serialize to the canonical JSON
// interchange format.
package model

import "vecdraft/internal/geom"

// Line type names used by layer styles and per-item overrides.
const (
	LineSolid   = "solid"
	LineDash    = "dash"
	LineDot     = "dot"
	LineDashDot = "dashdot"
)

// DefaultLayer is the layer assigned when input carries none.
const DefaultLayer = "0"

// DefaultType is the entity kind assigned when input carries none.
const DefaultType = "POLYLINE"

// MinLineWidth is the lower clamp for override/style line widths.
const MinLineWidth = 0.1

// PolylineItem is the canonical drawing primitive. Every entity the
// normalizer accepts becomes one of these; editing operates on Points only.
//
// Invariant: len(Points) >= 2 at all times. An item that would drop below
// two points is deleted as a whole instead.
type PolylineItem struct {
	ID      string    `json:"id"`
	Layer   string    `json:"layer"`
	Type    string    `json:"type"`
	Points  []geom.Pt `json:"points"`
	Visible bool      `json:"visible"`

	// EntityIndex links back to a position in the source entity list.
	// Nil for items created purely from JSON.
	EntityIndex *int `json:"entityIndex,omitempty"`

	// LineOverride carries per-item style overrides; nil means the owning
	// layer's line style applies unmodified.
	LineOverride *LineOverride `json:"lineOverride,omitempty"`

	// Source is an opaque reference to the original entity or raw polyline,
	// kept for detail display only. Editing logic never consults it and it
	// is not serialized.
	Source any `json:"-"`
}

// Clone returns a deep copy; the point slice and override are independent.
func (it *PolylineItem) Clone() *PolylineItem {
	cp := *it
	cp.Points = append([]geom.Pt(nil), it.Points...)
	if it.EntityIndex != nil {
		v := *it.EntityIndex
		cp.EntityIndex = &v
	}
	if it.LineOverride != nil {
		v := *it.LineOverride
		cp.LineOverride = &v
	}
	return &cp
}

// Bounds returns the item's axis-aligned bounding box.
func (it *PolylineItem) Bounds() (geom.Bounds, bool) {
	return geom.BoundsOf(it.Points)
}

// LineOverride is a partial per-item line style. Zero values mean "inherit
// from layer": empty Type/Color and Width == 0.
type LineOverride struct {
	Type  string  `json:"type,omitempty"`
	Color string  `json:"color,omitempty"`
	Width float64 `json:"width,omitempty"`
}

// Empty reports whether no field is set.
func (o LineOverride) Empty() bool { return o.Type == "" && o.Color == "" && o.Width == 0 }

// LineStyle is the stroke style of a layer. Color is six lowercase hex
// digits without a leading '#'.
type LineStyle struct {
	Type  string  `json:"type"`
	Color string  `json:"color"`
	Width float64 `json:"width"`
}

// PointStyle controls the rendered size of point markers.
type PointStyle struct {
	Size float64 `json:"size"`
}

// TextStyle carries typography defaults for text entities on a layer.
type TextStyle struct {
	FontFamily  string  `json:"fontFamily"`
	ItalicAngle float64 `json:"italicAngle"`
	Bold        bool    `json:"bold"`
	FontSize    float64 `json:"fontSize"`
	WidthFactor float64 `json:"widthFactor"`
	Color       string  `json:"color"`
}

// DimStyle carries dimension-entity rendering defaults for a layer.
type DimStyle struct {
	Scale     float64 `json:"scale"`
	TextSize  float64 `json:"textSize"`
	ArrowSize float64 `json:"arrowSize"`
	LineGap   float64 `json:"lineGap"`
}

// LayerStyle groups the per-layer rendering defaults. One instance exists
// per referenced layer name; callers mutate it in place.
type LayerStyle struct {
	Line  LineStyle  `json:"line"`
	Point PointStyle `json:"point"`
	Text  TextStyle  `json:"text"`
	Dim   DimStyle   `json:"dim"`
}

// DefaultLayerStyle returns the documented defaults for a fresh layer.
func DefaultLayerStyle() *LayerStyle {
	return &LayerStyle{
		Line:  LineStyle{Type: LineSolid, Color: "ffffff", Width: 1},
		Point: PointStyle{Size: 3},
		Text: TextStyle{
			FontFamily:  "sans-serif",
			ItalicAngle: 0,
			Bold:        false,
			FontSize:    12,
			WidthFactor: 1,
			Color:       "ffffff",
		},
		Dim: DimStyle{Scale: 1, TextSize: 2.5, ArrowSize: 2.5, LineGap: 0.625},
	}
}
