/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package editor owns the interactive editing session: the canonical item
// list, the layer style registry, the viewport and the pointer/keyboard
// state machine that mutates them. All mutation happens synchronously on
// the caller's event loop; the session is not safe for concurrent use.
package editor

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"vecdraft/internal/document"
	"vecdraft/internal/export"
	"vecdraft/internal/geom"
	"vecdraft/internal/log"
	"vecdraft/internal/model"
	"vecdraft/internal/normalize"
	"vecdraft/internal/viewport"
)

// ErrNothingLoaded reports that normalization produced zero usable items.
// It is a condition for the caller to surface, not a structural failure.
var ErrNothingLoaded = errors.New("editor: no usable geometry in input")

// DefaultNudgeStep is the model-space distance one arrow-key press moves
// a selected point. Shift multiplies it by ten.
const DefaultNudgeStep = 1.0

const (
	pointHitPx  = 6.0
	strokeHitPx = 4.0
	fitPadRatio = 0.05
)

type gestureState int

const (
	stateIdle gestureState = iota
	statePanning
	stateDraggingPoint
	stateDraggingPolyline
)

// Selection identifies the current edit target. PointIndex -1 selects the
// item as a whole; a non-negative index selects a single point of it.
type Selection struct {
	ItemID     string
	PointIndex int
}

// Empty reports whether nothing is selected.
func (s Selection) Empty() bool { return s.ItemID == "" }

// Hooks are the session's outward-facing side effects. Any hook may be
// nil; the corresponding command then fails with a reported status
// instead of panicking.
type Hooks struct {
	// CopyText places text on the system clipboard.
	CopyText func(text string) error
	// SaveExport persists an export artifact under a suggested file name.
	SaveExport func(name, text string) error
	// JSONText returns the current content of the JSON editing panel.
	JSONText func() string
	// SetJSONText replaces the content of the JSON editing panel.
	SetJSONText func(text string)
}

// Session is the long-lived interactive editing loop state.
type Session struct {
	doc   *document.Document
	view  *viewport.Viewport
	hooks Hooks
	lg    *slog.Logger

	sel   Selection
	state gestureState

	// pan gesture snapshot
	panDevStart geom.Pt
	panBounds   geom.Bounds

	// polyline drag snapshot; the drag is a fixed offset from the
	// gesture-start model point so rounding never accumulates
	dragStart geom.Pt
	dragBase  []geom.Pt

	nudgeStep float64
}

// NewSession returns an idle session with an empty document and the
// default viewport.
func NewSession(hooks Hooks) *Session {
	return &Session{
		doc:       document.New(),
		view:      viewport.New(),
		hooks:     hooks,
		lg:        log.WithComponent("editor"),
		sel:       Selection{PointIndex: -1},
		nudgeStep: DefaultNudgeStep,
	}
}

// SetHooks replaces the session's surface hooks. UIs that need a
// constructed window before they can wire clipboard or file access use
// this after NewSession.
func (s *Session) SetHooks(hooks Hooks) { s.hooks = hooks }

// Doc exposes the session's document.
func (s *Session) Doc() *document.Document { return s.doc }

// View exposes the session's viewport.
func (s *Session) View() *viewport.Viewport { return s.view }

// Selection returns the current selection.
func (s *Session) Selection() Selection { return s.sel }

// SetNudgeStep overrides the arrow-key step. Non-positive values are
// ignored.
func (s *Session) SetNudgeStep(step float64) {
	if step > 0 && !math.IsInf(step, 0) {
		s.nudgeStep = step
	}
}

// Load replaces the whole session state from decoded input of any
// supported shape. Layer styles carried by canonical documents are
// applied; the viewport is fitted to the new content. An in-flight
// gesture referencing the previous document is invalidated.
func (s *Session) Load(raw any) error {
	items := normalize.Document(raw)

	// Entities the polyline projection did not cover come in as items of
	// their own, keyed by entity-list position.
	covered := make(map[int]bool, len(items))
	for _, it := range items {
		if it.EntityIndex != nil {
			covered[*it.EntityIndex] = true
		}
	}
	for _, it := range normalize.ItemsFromEntities(raw) {
		if it.EntityIndex != nil && covered[*it.EntityIndex] {
			continue
		}
		items = append(items, it)
	}

	if len(items) == 0 {
		return ErrNothingLoaded
	}
	s.doc.Replace(items)
	for name, cfg := range normalize.Layers(raw) {
		s.doc.ApplyLayerConfig(name, cfg.Style, cfg.Visible)
	}
	s.sel = Selection{PointIndex: -1}
	s.state = stateIdle
	s.dragBase = nil
	if b, okb := normalize.BBox(raw); okb {
		s.view.FitContent(b, fitPadRatio)
	} else {
		s.FitView()
	}
	s.lg.Info("document loaded", slog.Int("items", s.doc.Len()), slog.Int("layers", len(s.doc.LayerNames())))
	return nil
}

// LoadJSON parses text as JSON and loads it.
func (s *Session) LoadJSON(text string) error {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("parse json: %w", err)
	}
	return s.Load(raw)
}

// Clear resets the document, selection and gesture state to their
// initial values. The interaction loop itself stays alive.
func (s *Session) Clear() {
	s.doc.Clear()
	s.sel = Selection{PointIndex: -1}
	s.state = stateIdle
	s.dragBase = nil
	s.view.FitContent(geom.EmptyBounds(), fitPadRatio)
}

// FitView frames the visible content with the default padding.
func (s *Session) FitView() {
	b, ok := s.doc.ContentBounds()
	if !ok {
		b = geom.EmptyBounds()
	}
	s.view.FitContent(b, fitPadRatio)
}

// Select sets the selection if the target exists. PointIndex -1 selects
// the whole item. It reports whether the selection was applied.
func (s *Session) Select(id string, pointIndex int) bool {
	it := s.doc.ItemByID(id)
	if it == nil {
		return false
	}
	if pointIndex >= len(it.Points) {
		return false
	}
	if pointIndex < 0 {
		pointIndex = -1
	}
	s.sel = Selection{ItemID: id, PointIndex: pointIndex}
	return true
}

// ClearSelection drops the selection.
func (s *Session) ClearSelection() {
	s.sel = Selection{PointIndex: -1}
}

// SelectedItem resolves the current selection to its item, or nil when
// nothing valid is selected. Stale ids resolve to nil.
func (s *Session) SelectedItem() *model.PolylineItem {
	if s.sel.Empty() {
		return nil
	}
	return s.doc.ItemByID(s.sel.ItemID)
}

// DeleteSelected removes the selected point. An item may never drop
// below two points, so deleting a point of a 2-point item removes the
// whole item and clears the selection. With a whole-item selection the
// item itself is removed. It reports whether anything changed.
func (s *Session) DeleteSelected() bool {
	it := s.SelectedItem()
	if it == nil {
		return false
	}
	if s.sel.PointIndex < 0 || len(it.Points) <= 2 {
		s.doc.Remove(it.ID)
		s.ClearSelection()
		return true
	}
	i := s.sel.PointIndex
	if i >= len(it.Points) {
		return false
	}
	it.Points = append(it.Points[:i], it.Points[i+1:]...)
	s.sel.PointIndex = max(0, i-1)
	return true
}

// Nudge moves the selected point by (dx, dy) steps along the axes. A
// whole-item selection moves every point. big applies the 10x shift
// multiplier. It reports whether anything moved.
func (s *Session) Nudge(dx, dy int, big bool) bool {
	it := s.SelectedItem()
	if it == nil {
		return false
	}
	step := s.nudgeStep
	if big {
		step *= 10
	}
	ox, oy := float64(dx)*step, float64(dy)*step
	if s.sel.PointIndex >= 0 {
		if s.sel.PointIndex >= len(it.Points) {
			return false
		}
		p := &it.Points[s.sel.PointIndex]
		p.X += ox
		p.Y += oy
		return true
	}
	for i := range it.Points {
		it.Points[i].X += ox
		it.Points[i].Y += oy
	}
	return true
}

// insertPointOn splits the segment of it closest to the given model
// point. The new point is the perpendicular projection onto that
// segment, inserted right after the segment's start index, and becomes
// the selection. It reports whether a point was inserted.
func (s *Session) insertPointOn(it *model.PolylineItem, m geom.Pt) bool {
	if it == nil || len(it.Points) < 2 {
		return false
	}
	bestSeg := -1
	bestPt := geom.Pt{}
	bestDist := math.Inf(1)
	for i := 0; i+1 < len(it.Points); i++ {
		q, _ := geom.ClosestOnSegment(it.Points[i], it.Points[i+1], m)
		if d := geom.Dist(q, m); d < bestDist {
			bestDist, bestSeg, bestPt = d, i, q
		}
	}
	if bestSeg < 0 {
		return false
	}
	at := bestSeg + 1
	it.Points = append(it.Points[:at], append([]geom.Pt{bestPt}, it.Points[at:]...)...)
	s.sel = Selection{ItemID: it.ID, PointIndex: at}
	return true
}

// CanonicalJSON serializes the whole session document.
func (s *Session) CanonicalJSON() (string, error) {
	return export.CanonicalJSON(s.doc)
}
