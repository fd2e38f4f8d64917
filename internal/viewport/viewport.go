/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package viewport maintains the model-space rectangle currently visible
// and the two-way mapping between model and device coordinates. Model y
// increases upward, device y increases downward; the flip happens here and
// nowhere else.
package viewport

import (
	"math"

	"vecdraft/internal/geom"
)

// Span limits for the visible window; zooming clamps against these.
const (
	MinSpan = 1.0
	MaxSpan = 1e9
)

// defaultBounds is the window shown before any content is loaded and the
// fallback for degenerate fit requests.
func defaultBounds() geom.Bounds { return geom.Bounds{MinX: 0, MinY: 0, MaxX: 100, MaxY: 100} }

// Viewport holds the visible model-space bounds and the rendering surface
// size in device pixels.
//
// Invariant: bounds are only ever replaced atomically and only when all
// four edges are finite with strictly positive width and height. A
// violating update is dropped and the previous bounds stand.
type Viewport struct {
	bounds geom.Bounds
	surfW  float64
	surfH  float64
}

// New returns a viewport showing the default window on an 800x600 surface.
func New() *Viewport {
	return &Viewport{bounds: defaultBounds(), surfW: 800, surfH: 600}
}

// Bounds returns the current visible model-space rectangle.
func (v *Viewport) Bounds() geom.Bounds { return v.bounds }

// SetBounds atomically replaces the bounds; invalid candidates are dropped.
// It reports whether the update was applied.
func (v *Viewport) SetBounds(b geom.Bounds) bool {
	if !b.Valid() {
		return false
	}
	v.bounds = b
	return true
}

// SetSurfaceSize records the on-screen size in device pixels. Non-positive
// dimensions are ignored.
func (v *Viewport) SetSurfaceSize(w, h float64) {
	if w > 0 && h > 0 {
		v.surfW, v.surfH = w, h
	}
}

// SurfaceSize returns the device surface dimensions.
func (v *Viewport) SurfaceSize() (w, h float64) { return v.surfW, v.surfH }

// Scale returns device pixels per model unit along x.
func (v *Viewport) Scale() float64 { return v.surfW / v.bounds.Width() }

// DeviceToModel inverts a device coordinate into model space.
func (v *Viewport) DeviceToModel(dev geom.Pt) geom.Pt {
	b := v.bounds
	return geom.Pt{
		X: b.MinX + dev.X/v.surfW*b.Width(),
		Y: b.MaxY - dev.Y/v.surfH*b.Height(),
	}
}

// ModelToDevice projects a model point to the device surface.
func (v *Viewport) ModelToDevice(p geom.Pt) geom.Pt {
	b := v.bounds
	return geom.Pt{
		X: (p.X - b.MinX) / b.Width() * v.surfW,
		Y: (b.MaxY - p.Y) / b.Height() * v.surfH,
	}
}

// ZoomAt applies an exponential zoom keyed on the wheel delta, keeping the
// model point under the device cursor fixed. The resulting width and height
// are clamped to [MinSpan, MaxSpan]; when a clamp binds, the factor is
// adjusted so the binding axis lands exactly on the limit.
func (v *Viewport) ZoomAt(dev geom.Pt, deltaScale float64) {
	b := v.bounds
	factor := math.Exp(deltaScale)
	if !isFinite(factor) || factor <= 0 {
		return
	}
	newW := clampSpan(b.Width() * factor)
	newH := clampSpan(b.Height() * factor)

	anchor := v.DeviceToModel(dev)
	fx := dev.X / v.surfW
	fy := dev.Y / v.surfH

	nb := geom.Bounds{
		MinX: anchor.X - fx*newW,
		MaxY: anchor.Y + fy*newH,
	}
	nb.MaxX = nb.MinX + newW
	nb.MinY = nb.MaxY - newH
	v.SetBounds(nb)
}

// PanBy rigidly translates the window by a model-space delta.
func (v *Viewport) PanBy(dx, dy float64) {
	b := v.bounds
	v.SetBounds(geom.Bounds{
		MinX: b.MinX + dx, MinY: b.MinY + dy,
		MaxX: b.MaxX + dx, MaxY: b.MaxY + dy,
	})
}

// FitContent frames the given content bounds: pads by padRatio (clamped to
// [0, 0.5]) of the larger dimension, then expands the shorter axis so the
// final aspect matches the surface, letterboxing instead of distorting.
// Degenerate input falls back to the default window.
func (v *Viewport) FitContent(target geom.Bounds, padRatio float64) {
	if target.Degenerate() {
		target = defaultBounds()
	}
	padRatio = math.Max(0, math.Min(0.5, padRatio))
	pad := padRatio * math.Max(target.Width(), target.Height())
	b := geom.Bounds{
		MinX: target.MinX - pad, MinY: target.MinY - pad,
		MaxX: target.MaxX + pad, MaxY: target.MaxY + pad,
	}

	aspect := v.surfW / v.surfH
	w, h := b.Width(), b.Height()
	c := b.Center()
	if w < h*aspect {
		w = h * aspect
	} else {
		h = w / aspect
	}
	v.SetBounds(geom.Bounds{
		MinX: c.X - w/2, MinY: c.Y - h/2,
		MaxX: c.X + w/2, MaxY: c.Y + h/2,
	})
}

func clampSpan(s float64) float64 { return math.Max(MinSpan, math.Min(MaxSpan, s)) }

func isFinite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
