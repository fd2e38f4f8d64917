/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"vecdraft/internal/export"
	"vecdraft/internal/geom"
	"vecdraft/internal/model"
)

// Status is the tri-state outcome of a command or fire-and-forget side
// effect.
type Status string

const (
	StatusIdle Status = "idle"
	StatusOK   Status = "ok"
	StatusFail Status = "fail"
)

// Result carries a command outcome back to the surface that issued it.
type Result struct {
	Status  Status
	Message string
}

func ok(msg string) Result   { return Result{Status: StatusOK, Message: msg} }
func fail(msg string) Result { return Result{Status: StatusFail, Message: msg} }

// Exec runs one line of the textual command surface. The first token is
// matched lowercase; commands that can fail validate all arguments
// before mutating, so a failed command leaves the session untouched.
func (s *Session) Exec(line string) Result {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return fail("empty command")
	}
	verb := strings.ToLower(fields[0])
	args := fields[1:]

	switch verb {
	case "clear":
		s.Clear()
		return ok("document cleared")
	case "delete":
		if !s.DeleteSelected() {
			return fail("nothing selected")
		}
		return ok("deleted")
	case "copy":
		return s.copyCanonical()
	case "export":
		return s.exportDXF()
	case "refresh-json":
		return s.refreshJSON()
	case "apply-json":
		return s.applyJSON()
	case "fit":
		s.FitView()
		return ok("view fitted")
	case "move":
		return s.cmdMove(args)
	case "scale":
		return s.cmdScale(args)
	case "rotate":
		return s.cmdRotate(args)
	default:
		return fail("unknown command: " + verb)
	}
}

func (s *Session) copyCanonical() Result {
	if s.hooks.CopyText == nil {
		return fail("clipboard unavailable")
	}
	text, err := export.CanonicalJSON(s.doc)
	if err != nil {
		return fail("serialize: " + err.Error())
	}
	if err := s.hooks.CopyText(text); err != nil {
		s.lg.Warn("clipboard copy failed", "err", err)
		return fail("copy: " + err.Error())
	}
	return ok("copied")
}

func (s *Session) exportDXF() Result {
	if s.hooks.SaveExport == nil {
		return fail("export target unavailable")
	}
	items := s.doc.VisibleItems()
	if len(items) == 0 {
		return fail("nothing to export")
	}
	if err := s.hooks.SaveExport("drawing.dxf", export.DXFText(items)); err != nil {
		s.lg.Warn("export save failed", "err", err)
		return fail("export: " + err.Error())
	}
	return ok(fmt.Sprintf("exported %d items", len(items)))
}

func (s *Session) refreshJSON() Result {
	if s.hooks.SetJSONText == nil {
		return fail("json panel unavailable")
	}
	text, err := export.CanonicalJSON(s.doc)
	if err != nil {
		return fail("serialize: " + err.Error())
	}
	s.hooks.SetJSONText(text)
	return ok("json refreshed")
}

func (s *Session) applyJSON() Result {
	if s.hooks.JSONText == nil {
		return fail("json panel unavailable")
	}
	if err := s.LoadJSON(s.hooks.JSONText()); err != nil {
		return fail("apply: " + err.Error())
	}
	return ok(fmt.Sprintf("applied %d items", s.doc.Len()))
}

func (s *Session) cmdMove(args []string) Result {
	if len(args) != 2 {
		return fail("usage: move dx dy")
	}
	dx, err1 := parseNum(args[0])
	dy, err2 := parseNum(args[1])
	if err1 != nil || err2 != nil {
		return fail("move: numeric dx dy required")
	}
	it := s.SelectedItem()
	if it == nil {
		return fail("nothing selected")
	}
	for i := range it.Points {
		it.Points[i].X += dx
		it.Points[i].Y += dy
	}
	return ok("moved")
}

func (s *Session) cmdScale(args []string) Result {
	if len(args) < 1 || len(args) > 2 {
		return fail("usage: scale sx [sy]")
	}
	sx, err := parseNum(args[0])
	if err != nil {
		return fail("scale: numeric factor required")
	}
	sy := sx
	if len(args) == 2 {
		if sy, err = parseNum(args[1]); err != nil {
			return fail("scale: numeric factor required")
		}
	}
	if sx == 0 || sy == 0 {
		return fail("scale: factors must be non-zero")
	}
	it := s.SelectedItem()
	if it == nil {
		return fail("nothing selected")
	}
	center, okc := itemCenter(it)
	if !okc {
		return fail("scale: item has no finite bounds")
	}
	for i := range it.Points {
		it.Points[i] = geom.ScaleAround(it.Points[i], center, sx, sy)
	}
	return ok("scaled")
}

func (s *Session) cmdRotate(args []string) Result {
	if len(args) != 1 {
		return fail("usage: rotate degrees")
	}
	deg, err := parseNum(args[0])
	if err != nil {
		return fail("rotate: numeric degrees required")
	}
	it := s.SelectedItem()
	if it == nil {
		return fail("nothing selected")
	}
	center, okc := itemCenter(it)
	if !okc {
		return fail("rotate: item has no finite bounds")
	}
	rad := deg * math.Pi / 180
	for i := range it.Points {
		it.Points[i] = geom.RotateAround(it.Points[i], center, rad)
	}
	return ok("rotated")
}

// itemCenter is the pivot for scale and rotate: the center of the item's
// own axis-aligned bounding box.
func itemCenter(it *model.PolylineItem) (geom.Pt, bool) {
	b, okb := it.Bounds()
	if !okb {
		return geom.Pt{}, false
	}
	return b.Center(), true
}

func parseNum(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, strconv.ErrRange
	}
	return f, nil
}
