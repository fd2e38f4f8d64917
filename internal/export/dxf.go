/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"math"
	"strconv"
	"strings"

	"vecdraft/internal/geom"
	"vecdraft/internal/model"
)

// closedRingTol is the coincidence tolerance for closed-ring detection.
const closedRingTol = 1e-6

// dxfVersion is the drawing database version written to the header
// (AC1015 = AutoCAD 2000, the earliest with LWPOLYLINE support everywhere).
const dxfVersion = "AC1015"

// DXFText encodes the given items as a minimal drawing-exchange text
// stream: a HEADER section carrying the version tag and an ENTITIES section
// with one LWPOLYLINE record per item. An item whose last point coincides
// with its first (within closedRingTol) is emitted closed, with the
// duplicated closing vertex omitted. Items left with fewer than two
// vertices are skipped. Callers pass the visibility-filtered list.
func DXFText(items []*model.PolylineItem) string {
	var b strings.Builder
	tag := func(code int, value string) {
		b.WriteString(strconv.Itoa(code))
		b.WriteString("\n")
		b.WriteString(value)
		b.WriteString("\n")
	}
	num := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

	tag(0, "SECTION")
	tag(2, "HEADER")
	tag(9, "$ACADVER")
	tag(1, dxfVersion)
	tag(0, "ENDSEC")

	tag(0, "SECTION")
	tag(2, "ENTITIES")
	for _, it := range items {
		pts, closed := dedupClosedRing(it.Points)
		if len(pts) < 2 {
			continue
		}
		layer := strings.TrimSpace(it.Layer)
		if layer == "" {
			layer = model.DefaultLayer
		}
		tag(0, "LWPOLYLINE")
		tag(8, layer)
		tag(90, strconv.Itoa(len(pts)))
		if closed {
			tag(70, "1")
		} else {
			tag(70, "0")
		}
		for _, p := range pts {
			tag(10, num(p.X))
			tag(20, num(p.Y))
		}
	}
	tag(0, "ENDSEC")
	tag(0, "EOF")
	return b.String()
}

// dedupClosedRing detects a polyline whose last point repeats its first and
// returns the vertex list without the duplicate plus the closed flag. The
// detection is idempotent: running it on already-deduplicated points keeps
// the vertex count unchanged.
func dedupClosedRing(pts []geom.Pt) ([]geom.Pt, bool) {
	n := len(pts)
	if n < 3 {
		return pts, false
	}
	first, last := pts[0], pts[n-1]
	if math.Abs(first.X-last.X) <= closedRingTol && math.Abs(first.Y-last.Y) <= closedRingTol {
		return pts[:n-1], true
	}
	return pts, false
}
