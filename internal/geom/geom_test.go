/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

import (
	"encoding/json"
	"math"
	"testing"
)

func almostEq(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestClosestOnSegmentMidpoint(t *testing.T) {
	got, tt := ClosestOnSegment(Pt{0, 0}, Pt{10, 0}, Pt{5, 7})
	if !almostEq(got.X, 5) || !almostEq(got.Y, 0) || !almostEq(tt, 0.5) {
		t.Fatalf("unexpected projection: %+v t=%v", got, tt)
	}
}

func TestClosestOnSegmentClamped(t *testing.T) {
	got, tt := ClosestOnSegment(Pt{0, 0}, Pt{10, 0}, Pt{-5, 3})
	if got != (Pt{0, 0}) || tt != 0 {
		t.Fatalf("expected clamp to segment start, got %+v t=%v", got, tt)
	}
	got, tt = ClosestOnSegment(Pt{0, 0}, Pt{10, 0}, Pt{99, -1})
	if got != (Pt{10, 0}) || tt != 1 {
		t.Fatalf("expected clamp to segment end, got %+v t=%v", got, tt)
	}
}

func TestClosestOnSegmentDegenerate(t *testing.T) {
	got, tt := ClosestOnSegment(Pt{3, 3}, Pt{3, 3}, Pt{0, 0})
	if got != (Pt{3, 3}) || tt != 0 {
		t.Fatalf("degenerate segment should return its start, got %+v t=%v", got, tt)
	}
}

func TestRotateAround(t *testing.T) {
	// CCW quarter turn of (10,0) about (5,0) lands at (5,5).
	got := RotateAround(Pt{10, 0}, Pt{5, 0}, math.Pi/2)
	if !almostEq(got.X, 5) || !almostEq(got.Y, 5) {
		t.Fatalf("unexpected rotation: %+v", got)
	}
	got = RotateAround(Pt{0, 0}, Pt{5, 0}, math.Pi/2)
	if !almostEq(got.X, 5) || !almostEq(got.Y, -5) {
		t.Fatalf("unexpected rotation: %+v", got)
	}
}

func TestScaleAround(t *testing.T) {
	got := ScaleAround(Pt{0, 0}, Pt{5, 5}, 2, 2)
	if got != (Pt{-5, -5}) {
		t.Fatalf("unexpected scale: %+v", got)
	}
}

func TestBoundsAccumulate(t *testing.T) {
	b, ok := BoundsOf([]Pt{{0, 0}, {10, 0}, {10, 10}, {math.NaN(), 3}})
	if !ok {
		t.Fatalf("expected non-empty bounds")
	}
	if b.MinX != 0 || b.MinY != 0 || b.MaxX != 10 || b.MaxY != 10 {
		t.Fatalf("unexpected bounds: %+v", b)
	}
	if _, ok := BoundsOf(nil); ok {
		t.Fatalf("expected empty result for no points")
	}
}

func TestBoundsValidAndDegenerate(t *testing.T) {
	if (Bounds{0, 0, 0, 10}).Valid() {
		t.Fatalf("zero-width bounds must be invalid")
	}
	if !(Bounds{0, 0, 1, 1}).Valid() {
		t.Fatalf("unit bounds must be valid")
	}
	if !(Bounds{MinX: 5, MinY: 5, MaxX: 5, MaxY: 5}).Degenerate() {
		t.Fatalf("point bounds must be degenerate")
	}
	if (Bounds{0, 0, 0, 10}).Degenerate() {
		t.Fatalf("zero-width-only bounds are framable after padding, not degenerate")
	}
}

func TestPointInPolygon(t *testing.T) {
	square := []Pt{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	if !PointInPolygon(square, Pt{5, 5}) {
		t.Fatalf("center should be inside")
	}
	if PointInPolygon(square, Pt{15, 5}) {
		t.Fatalf("outside point reported inside")
	}
	if PointInPolygon(square[:2], Pt{5, 0}) {
		t.Fatalf("two points cannot enclose anything")
	}
}

func TestPtJSONRoundTrip(t *testing.T) {
	in := Pt{1.5, -2}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != "[1.5,-2]" {
		t.Fatalf("unexpected encoding: %s", data)
	}
	var out Pt
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out != in {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}
