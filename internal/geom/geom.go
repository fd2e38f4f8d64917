/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package geom provides basic 2D geometry for the drawing model.
// Model space uses float64 with y increasing upward; device (screen) space
// uses y increasing downward. All conversions between the two live in the
// viewport package, not here.
package geom

import (
	"encoding/json"
	"fmt"
	"math"
)

// Pt is a 2D point in model space.
type Pt struct{ X, Y float64 }

// Finite reports whether both coordinates are finite numbers.
func (p Pt) Finite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// MarshalJSON encodes the point as a two-element array [x, y], the canonical
// interchange form.
func (p Pt) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.X, p.Y})
}

// UnmarshalJSON accepts the [x, y] array form.
func (p *Pt) UnmarshalJSON(data []byte) error {
	var a [2]float64
	if err := json.Unmarshal(data, &a); err != nil {
		return fmt.Errorf("point: %w", err)
	}
	p.X, p.Y = a[0], a[1]
	return nil
}

// Dist returns the Euclidean distance between two points.
func Dist(a, b Pt) float64 { return math.Hypot(b.X-a.X, b.Y-a.Y) }

// DistSq returns the squared distance, cheaper for comparisons.
func DistSq(a, b Pt) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	return dx*dx + dy*dy
}

// ClosestOnSegment projects p onto the segment a-b and returns the closest
// point together with the clamped parameter t in [0, 1].
func ClosestOnSegment(a, b, p Pt) (Pt, float64) {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return a, 0
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return Pt{X: a.X + t*dx, Y: a.Y + t*dy}, t
}

// RotateAround rotates p counter-clockwise by rad radians about center.
func RotateAround(p, center Pt, rad float64) Pt {
	s, c := math.Sincos(rad)
	dx, dy := p.X-center.X, p.Y-center.Y
	return Pt{
		X: center.X + dx*c - dy*s,
		Y: center.Y + dx*s + dy*c,
	}
}

// ScaleAround scales p about center by sx, sy.
func ScaleAround(p, center Pt, sx, sy float64) Pt {
	return Pt{
		X: center.X + (p.X-center.X)*sx,
		Y: center.Y + (p.Y-center.Y)*sy,
	}
}

// Bounds is an axis-aligned rectangle given by its min and max corners.
type Bounds struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// EmptyBounds returns an inverted rectangle suitable as an accumulator seed.
func EmptyBounds() Bounds {
	return Bounds{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
}

// Extend grows the bounds to include p.
func (b *Bounds) Extend(p Pt) {
	b.MinX = math.Min(b.MinX, p.X)
	b.MinY = math.Min(b.MinY, p.Y)
	b.MaxX = math.Max(b.MaxX, p.X)
	b.MaxY = math.Max(b.MaxY, p.Y)
}

// Valid reports whether the bounds have a finite, strictly positive area.
func (b Bounds) Valid() bool {
	for _, v := range [...]float64{b.MinX, b.MinY, b.MaxX, b.MaxY} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return b.MaxX > b.MinX && b.MaxY > b.MinY
}

// Degenerate reports whether the bounds cannot frame anything: non-finite
// values or zero extent in both axes.
func (b Bounds) Degenerate() bool {
	for _, v := range [...]float64{b.MinX, b.MinY, b.MaxX, b.MaxY} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return true
		}
	}
	return b.MaxX < b.MinX || b.MaxY < b.MinY || (b.MaxX == b.MinX && b.MaxY == b.MinY)
}

func (b Bounds) Width() float64  { return b.MaxX - b.MinX }
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

func (b Bounds) Center() Pt {
	return Pt{X: (b.MinX + b.MaxX) / 2, Y: (b.MinY + b.MaxY) / 2}
}

// Contains reports whether p lies inside or on the edge of b.
func (b Bounds) Contains(p Pt) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

// Union returns the minimal bounds containing both.
func (b Bounds) Union(o Bounds) Bounds {
	return Bounds{
		MinX: math.Min(b.MinX, o.MinX),
		MinY: math.Min(b.MinY, o.MinY),
		MaxX: math.Max(b.MaxX, o.MaxX),
		MaxY: math.Max(b.MaxY, o.MaxY),
	}
}

// BoundsOf accumulates the bounding box of a point sequence.
// The second result is false when no finite point was seen.
func BoundsOf(pts []Pt) (Bounds, bool) {
	b := EmptyBounds()
	any := false
	for _, p := range pts {
		if !p.Finite() {
			continue
		}
		b.Extend(p)
		any = true
	}
	return b, any
}

// PointInPolygon reports whether p lies inside the closed polygon described
// by pts, using the even-odd ray-casting rule. The polygon is treated as
// closed whether or not the last point repeats the first.
func PointInPolygon(pts []Pt, p Pt) bool {
	n := len(pts)
	if n < 3 {
		return false
	}
	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		a, b := pts[i], pts[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
			if p.X < x {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}
