/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package document

import (
	"sort"
	"strings"

	"vecdraft/internal/model"
)

func normalizeLayer(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.DefaultLayer
	}
	return name
}

// EnsureStyle returns the style record for a layer, creating it with
// defaults on first reference. The returned pointer is live: user edits
// through it are visible to every later reader. Styles are never deleted
// while the document is loaded.
func (d *Document) EnsureStyle(layer string) *model.LayerStyle {
	name := normalizeLayer(layer)
	if s, ok := d.styles[name]; ok {
		return s
	}
	s := model.DefaultLayerStyle()
	d.styles[name] = s
	return s
}

// LayerNames returns all registered layer names, sorted.
func (d *Document) LayerNames() []string {
	out := make([]string, 0, len(d.styles))
	for name := range d.styles {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Styles exposes the registry for serialization. The map is the live one;
// callers must not add or delete entries.
func (d *Document) Styles() map[string]*model.LayerStyle { return d.styles }

// SetLayerVisible toggles whether a layer's items render and export.
func (d *Document) SetLayerVisible(layer string, visible bool) {
	name := normalizeLayer(layer)
	d.EnsureStyle(name)
	if visible {
		delete(d.hidden, name)
	} else {
		d.hidden[name] = true
	}
}

// LayerVisible reports layer visibility; unknown layers default to visible.
func (d *Document) LayerVisible(layer string) bool {
	return !d.hidden[normalizeLayer(layer)]
}

// ApplyLayerConfig installs a full style record and visibility for a layer,
// used when reading canonical JSON back in.
func (d *Document) ApplyLayerConfig(layer string, style model.LayerStyle, visible bool) {
	*d.EnsureStyle(layer) = style
	d.SetLayerVisible(layer, visible)
}

// EffectiveLineStyle merges the owning layer's line style with the item's
// override; override fields always win.
func (d *Document) EffectiveLineStyle(it *model.PolylineItem) model.LineStyle {
	ls := d.EnsureStyle(it.Layer).Line
	if o := it.LineOverride; o != nil {
		if o.Type != "" {
			ls.Type = o.Type
		}
		if o.Color != "" {
			ls.Color = o.Color
		}
		if o.Width > 0 {
			ls.Width = o.Width
		}
	}
	if ls.Width < model.MinLineWidth {
		ls.Width = model.MinLineWidth
	}
	return ls
}

// LineTypeFromName infers a canonical line type from a source line-type
// name such as "DASHDOT2" or "ACAD_ISO07W100 dotted". The second result is
// false when the name means "inherit from layer" (blank, BYLAYER, BYBLOCK),
// in which case no override should be recorded.
func LineTypeFromName(name string) (string, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case "", "bylayer", "byblock":
		return "", false
	}
	switch {
	case strings.Contains(n, "dash-dot"), strings.Contains(n, "dashdot"):
		return model.LineDashDot, true
	case strings.Contains(n, "dot"):
		return model.LineDot, true
	case strings.Contains(n, "dash"):
		return model.LineDash, true
	}
	return model.LineSolid, true
}
