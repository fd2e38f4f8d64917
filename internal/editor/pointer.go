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

	"vecdraft/internal/geom"
	"vecdraft/internal/model"
)

// Modifiers describes the button and key state accompanying a pointer
// event. Middle and Shift start a view pan on empty canvas; Alt (or the
// platform's ctrl/cmd equivalent mapped by the UI layer) starts a
// whole-polyline drag on a stroke.
type Modifiers struct {
	Middle bool
	Shift  bool
	Alt    bool
}

// PointerDown dispatches a press at device coordinates. Hit priority is
// point marker, then stroke, then empty canvas.
func (s *Session) PointerDown(dev geom.Pt, mod Modifiers) {
	m := s.view.DeviceToModel(dev)

	if it, idx := s.hitPoint(m); it != nil {
		s.sel = Selection{ItemID: it.ID, PointIndex: idx}
		s.state = stateDraggingPoint
		return
	}

	if it, _, _ := s.hitStroke(m); it != nil {
		if mod.Alt {
			s.sel = Selection{ItemID: it.ID, PointIndex: -1}
			s.state = stateDraggingPolyline
			s.dragStart = m
			s.dragBase = append([]geom.Pt(nil), it.Points...)
			return
		}
		s.sel = Selection{ItemID: it.ID, PointIndex: -1}
		return
	}

	if mod.Middle || mod.Shift {
		s.state = statePanning
		s.panDevStart = dev
		s.panBounds = s.view.Bounds()
		return
	}
	s.ClearSelection()
}

// PointerMove advances the active gesture. Stale selections (the
// document was replaced mid-gesture) fail the lookup and the move is a
// no-op.
func (s *Session) PointerMove(dev geom.Pt) {
	switch s.state {
	case statePanning:
		s.panTo(dev)
	case stateDraggingPoint:
		it := s.doc.ItemByID(s.sel.ItemID)
		if it == nil || s.sel.PointIndex < 0 || s.sel.PointIndex >= len(it.Points) {
			return
		}
		m := s.view.DeviceToModel(dev)
		if !m.Finite() {
			return
		}
		it.Points[s.sel.PointIndex] = m
	case stateDraggingPolyline:
		it := s.doc.ItemByID(s.sel.ItemID)
		if it == nil || len(s.dragBase) != len(it.Points) {
			return
		}
		m := s.view.DeviceToModel(dev)
		if !m.Finite() {
			return
		}
		dx, dy := m.X-s.dragStart.X, m.Y-s.dragStart.Y
		for i, base := range s.dragBase {
			it.Points[i] = geom.Pt{X: base.X + dx, Y: base.Y + dy}
		}
	}
}

// PointerUp ends the active gesture and returns to Idle. The drag
// snapshot taken at gesture start is discarded.
func (s *Session) PointerUp() {
	s.state = stateIdle
	s.dragBase = nil
}

// DoubleClick on a stroke inserts a point on the nearest segment and
// selects it. Off-stroke double clicks do nothing.
func (s *Session) DoubleClick(dev geom.Pt) {
	m := s.view.DeviceToModel(dev)
	it, _, _ := s.hitStroke(m)
	if it == nil {
		return
	}
	s.insertPointOn(it, m)
}

// panTo shifts the snapshot bounds opposite to the pointer travel, the
// grab-and-pull convention. Both the delta and the resulting bounds are
// computed from the gesture-start snapshot so repeated moves do not
// accumulate error.
func (s *Session) panTo(dev geom.Pt) {
	surfW, surfH := s.view.SurfaceSize()
	if surfW <= 0 || surfH <= 0 {
		return
	}
	b := s.panBounds
	dx := (dev.X - s.panDevStart.X) / surfW * b.Width()
	dy := -(dev.Y - s.panDevStart.Y) / surfH * b.Height()
	s.view.SetBounds(geom.Bounds{
		MinX: b.MinX - dx, MinY: b.MinY - dy,
		MaxX: b.MaxX - dx, MaxY: b.MaxY - dy,
	})
}

// hitPoint finds the nearest visible point marker within tolerance of
// the model-space position, preferring later items (drawn on top).
func (s *Session) hitPoint(m geom.Pt) (*model.PolylineItem, int) {
	tol := s.hitTolerance(pointHitPx)
	var hitItem *model.PolylineItem
	hitIdx := -1
	best := tol
	for _, it := range s.doc.VisibleItems() {
		for i, p := range it.Points {
			if d := geom.Dist(p, m); d <= best {
				hitItem, hitIdx, best = it, i, d
			}
		}
	}
	return hitItem, hitIdx
}

// hitStroke finds the visible item whose polyline passes within
// tolerance of the model-space position, together with the segment
// index and the closest point on it.
func (s *Session) hitStroke(m geom.Pt) (*model.PolylineItem, int, geom.Pt) {
	tol := s.hitTolerance(strokeHitPx)
	var hitItem *model.PolylineItem
	hitSeg := -1
	hitPt := geom.Pt{}
	best := tol
	for _, it := range s.doc.VisibleItems() {
		for i := 0; i+1 < len(it.Points); i++ {
			q, _ := geom.ClosestOnSegment(it.Points[i], it.Points[i+1], m)
			if d := geom.Dist(q, m); d <= best {
				hitItem, hitSeg, hitPt, best = it, i, q, d
			}
		}
	}
	return hitItem, hitSeg, hitPt
}

// hitTolerance converts a device-pixel radius into model units at the
// current zoom.
func (s *Session) hitTolerance(px float64) float64 {
	scale := s.view.Scale()
	if scale <= 0 || math.IsInf(scale, 0) || math.IsNaN(scale) {
		return px
	}
	return px / scale
}
