/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"math"

	"vecdraft/internal/document"
	"vecdraft/internal/geom"
	"vecdraft/internal/model"
)

// Page geometry for printable output, in points (A4 portrait).
const (
	pageWidthPt  = 595.0
	pageHeightPt = 842.0
	pageMarginPt = 36.0
)

// SVGOptions controls printable SVG generation.
type SVGOptions struct {
	// Dark renders on a dark background with the stored (light) stroke
	// colors; the default is a white page.
	Dark bool
}

// SVG emits a self-contained, page-sized vector document whose view window
// equals the given viewport bounds. Strokes use each item's effective line
// style; dash patterns follow the line type. Only visible items render.
func SVG(doc *document.Document, view geom.Bounds, opt SVGOptions) (string, error) {
	if !view.Valid() {
		return "", fmt.Errorf("view bounds are not drawable: %+v", view)
	}
	proj := newPageProjection(view)

	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}

	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%gpt\" height=\"%gpt\" viewBox=\"0 0 %g %g\">\n",
		pageWidthPt, pageHeightPt, pageWidthPt, pageHeightPt)
	bg := "#ffffff"
	if opt.Dark {
		bg = "#1c1c1c"
	}
	wf("  <rect x=\"0\" y=\"0\" width=\"%g\" height=\"%g\" fill=\"%s\"/>\n", pageWidthPt, pageHeightPt, bg)

	for _, it := range doc.VisibleItems() {
		if len(it.Points) < 2 {
			continue
		}
		ls := doc.EffectiveLineStyle(it)
		dash := svgDash(ls.Type, ls.Width)
		wf("  <polyline points=\"")
		for i, p := range it.Points {
			q := proj.apply(p)
			if i > 0 {
				wf(" ")
			}
			wf("%g,%g", q.X, q.Y)
		}
		wf("\" fill=\"none\" stroke=\"#%s\" stroke-width=\"%g\"%s/>\n", ls.Color, ls.Width, dash)
	}

	wf("</svg>\n")
	if werr != nil {
		return "", fmt.Errorf("build svg: %w", werr)
	}
	return buf.String(), nil
}

func svgDash(lineType string, width float64) string {
	pattern := dashPattern(lineType, width)
	if pattern == nil {
		return ""
	}
	s := " stroke-dasharray=\""
	for i, v := range pattern {
		if i > 0 {
			s += ","
		}
		s += fmt.Sprintf("%g", v)
	}
	return s + "\""
}

// dashPattern returns the on/off lengths for a line type, scaled mildly by
// stroke width so heavy lines keep readable gaps. Nil means solid.
func dashPattern(lineType string, width float64) []float64 {
	u := math.Max(1, width)
	switch lineType {
	case model.LineDash:
		return []float64{6 * u, 3 * u}
	case model.LineDot:
		return []float64{u, 2 * u}
	case model.LineDashDot:
		return []float64{6 * u, 2 * u, u, 2 * u}
	}
	return nil
}

// pageProjection maps the viewport window onto the printable content box,
// preserving aspect (centered letterboxing) and flipping y for page space.
type pageProjection struct {
	view    geom.Bounds
	scale   float64
	offsetX float64
	offsetY float64
}

func newPageProjection(view geom.Bounds) pageProjection {
	contentW := pageWidthPt - 2*pageMarginPt
	contentH := pageHeightPt - 2*pageMarginPt
	scale := math.Min(contentW/view.Width(), contentH/view.Height())
	// center the mapped window inside the content box
	usedW := view.Width() * scale
	usedH := view.Height() * scale
	return pageProjection{
		view:    view,
		scale:   scale,
		offsetX: pageMarginPt + (contentW-usedW)/2,
		offsetY: pageMarginPt + (contentH-usedH)/2,
	}
}

func (pp pageProjection) apply(p geom.Pt) geom.Pt {
	return geom.Pt{
		X: pp.offsetX + (p.X-pp.view.MinX)*pp.scale,
		Y: pp.offsetY + (pp.view.MaxY-p.Y)*pp.scale,
	}
}
