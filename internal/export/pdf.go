/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"vecdraft/internal/document"
	"vecdraft/internal/geom"
)

// PDFOptions controls PDF generation.
// Units are points; the page is A4 portrait with fixed print margins, the
// same layout the SVG exporter uses.
type PDFOptions struct {
	Title string
}

// WritePDF renders the visible items of the document, framed by the given
// viewport bounds, into a single-page vector PDF at outPath.
func WritePDF(doc *document.Document, view geom.Bounds, outPath string, opt PDFOptions) error {
	if !view.Valid() {
		return fmt.Errorf("view bounds are not drawable: %+v", view)
	}
	proj := newPageProjection(view)

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: pageWidthPt, Ht: pageHeightPt},
		OrientationStr: "P",
	})
	title := opt.Title
	if title == "" {
		title = "VecDraft drawing"
	}
	pdf.SetTitle(title, false)
	pdf.SetAuthor("VecDraft", false)
	pdf.AddPage()

	for _, it := range doc.VisibleItems() {
		if len(it.Points) < 2 {
			continue
		}
		ls := doc.EffectiveLineStyle(it)
		r, g, b := rgbFromHex(ls.Color)
		pdf.SetDrawColor(r, g, b)
		pdf.SetLineWidth(ls.Width)
		if pattern := dashPattern(ls.Type, ls.Width); pattern != nil {
			pdf.SetDashPattern(pattern, 0)
		} else {
			pdf.SetDashPattern([]float64{}, 0)
		}
		prev := proj.apply(it.Points[0])
		for _, p := range it.Points[1:] {
			cur := proj.apply(p)
			pdf.Line(prev.X, prev.Y, cur.X, cur.Y)
			prev = cur
		}
	}

	dir := filepath.Dir(outPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// rgbFromHex splits a six-hex-digit color into its components. Invalid
// input falls back to black; validation happened upstream.
func rgbFromHex(hex string) (int, int, int) {
	if len(hex) != 6 {
		return 0, 0, 0
	}
	r, err1 := strconv.ParseUint(hex[0:2], 16, 8)
	g, err2 := strconv.ParseUint(hex[2:4], 16, 8)
	b, err3 := strconv.ParseUint(hex[4:6], 16, 8)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, 0, 0
	}
	return int(r), int(g), int(b)
}
