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
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"vecdraft/internal/document"
	"vecdraft/internal/geom"
)

// PNGOptions controls raster preview export.
type PNGOptions struct {
	Width  int  // output pixels; defaults to 1600
	Height int  // output pixels; defaults to 1200
	Labels bool // draw layer names in the top-left legend
}

// WritePNG rasterizes the visible items framed by the viewport bounds into
// a PNG preview at outPath. This is a quick-look export, not a print
// artifact; strokes are one pixel regardless of style width.
func WritePNG(doc *document.Document, view geom.Bounds, outPath string, opt PNGOptions) error {
	if !view.Valid() {
		return fmt.Errorf("view bounds are not drawable: %+v", view)
	}
	w, h := opt.Width, opt.Height
	if w <= 0 {
		w = 1600
	}
	if h <= 0 {
		h = 1200
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{28, 28, 28, 255}), image.Point{}, draw.Src)

	sx := float64(w) / view.Width()
	sy := float64(h) / view.Height()
	project := func(p geom.Pt) (float64, float64) {
		return (p.X - view.MinX) * sx, (view.MaxY - p.Y) * sy
	}

	for _, it := range doc.VisibleItems() {
		ls := doc.EffectiveLineStyle(it)
		r, g, b := rgbFromHex(ls.Color)
		col := color.RGBA{uint8(r), uint8(g), uint8(b), 255}
		for i := 1; i < len(it.Points); i++ {
			x0, y0 := project(it.Points[i-1])
			x1, y1 := project(it.Points[i])
			plotLine(img, x0, y0, x1, y1, col)
		}
	}

	if opt.Labels {
		drawLegend(img, doc)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// plotLine draws a one-pixel line by stepping along the longer axis.
func plotLine(img *image.RGBA, x0, y0, x1, y1 float64, col color.RGBA) {
	steps := int(math.Max(math.Abs(x1-x0), math.Abs(y1-y0))) + 1
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := int(math.Round(x0 + (x1-x0)*t))
		y := int(math.Round(y0 + (y1-y0)*t))
		if (image.Point{x, y}).In(img.Bounds()) {
			img.SetRGBA(x, y, col)
		}
	}
}

// drawLegend stacks layer names with their line colors in the top-left.
func drawLegend(img *image.RGBA, doc *document.Document) {
	face := basicfont.Face7x13
	y := 16
	for _, stat := range doc.LayerStats() {
		ls := doc.EnsureStyle(stat.Layer).Line
		r, g, b := rgbFromHex(ls.Color)
		d := font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(color.RGBA{uint8(r), uint8(g), uint8(b), 255}),
			Face: face,
			Dot:  fixed.P(8, y),
		}
		d.DrawString(fmt.Sprintf("%s (%d)", stat.Layer, stat.Items))
		y += face.Metrics().Height.Ceil() + 2
	}
}
