/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package document owns the mutable state of a loaded drawing: the canonical
// polyline item list, the per-layer style registry, layer visibility, and
// the monotonic id allocator. Everything a view needs (render list, exports,
// stats) is derived from here.
package document

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"vecdraft/internal/geom"
	"vecdraft/internal/model"
)

// Document is the single source of truth for drawing geometry during an
// editing session. It is not safe for concurrent use; all mutation happens
// on the interaction thread.
type Document struct {
	items  []*model.PolylineItem
	styles map[string]*model.LayerStyle
	hidden map[string]bool

	nextID int
}

// New returns an empty document.
func New() *Document {
	return &Document{
		styles: make(map[string]*model.LayerStyle),
		hidden: make(map[string]bool),
	}
}

// AllocateID returns a fresh item id, monotonic for the document lifetime.
func (d *Document) AllocateID() string {
	d.nextID++
	return fmt.Sprintf("pl-%d", d.nextID)
}

// noteID bumps the allocator past ids of the form pl-<n> coming from input,
// so later allocations stay unique.
func (d *Document) noteID(id string) {
	rest, ok := strings.CutPrefix(id, "pl-")
	if !ok {
		return
	}
	if n, err := strconv.Atoi(rest); err == nil && n > d.nextID {
		d.nextID = n
	}
}

// Items returns the canonical item list. Callers may mutate item points but
// must go through Remove/Append for membership changes.
func (d *Document) Items() []*model.PolylineItem { return d.items }

// Len returns the number of items.
func (d *Document) Len() int { return len(d.items) }

// Replace swaps the item list, layer styles and layer visibility wholesale,
// registering layers and ids of the new items. Items with an empty id are
// assigned one. The id allocator is not reset, so ids from a replaced
// document never recur and stale references cannot resolve.
func (d *Document) Replace(items []*model.PolylineItem) {
	d.items = d.items[:0]
	d.styles = make(map[string]*model.LayerStyle)
	d.hidden = make(map[string]bool)
	for _, it := range items {
		if it == nil || len(it.Points) < 2 {
			continue
		}
		d.Append(it)
	}
}

// Append adds one item, assigning an id if needed and registering its layer.
// An incoming id that is already taken is replaced with a fresh one; ids are
// unique for the document lifetime.
func (d *Document) Append(it *model.PolylineItem) {
	if it.ID == "" || d.ItemByID(it.ID) != nil {
		it.ID = d.AllocateID()
	} else {
		d.noteID(it.ID)
	}
	if it.Layer == "" {
		it.Layer = model.DefaultLayer
	}
	d.EnsureStyle(it.Layer)
	d.items = append(d.items, it)
}

// Remove deletes the item with the given id. It reports whether an item was
// removed; an unknown id is a safe no-op.
func (d *Document) Remove(id string) bool {
	for i, it := range d.items {
		if it.ID == id {
			d.items = append(d.items[:i], d.items[i+1:]...)
			return true
		}
	}
	return false
}

// ItemByID looks an item up by id; nil when absent (stale references from a
// replaced document land here and must no-op).
func (d *Document) ItemByID(id string) *model.PolylineItem {
	for _, it := range d.items {
		if it.ID == id {
			return it
		}
	}
	return nil
}

// ItemByEntityIndex returns the first item whose back-reference matches the
// given source entity index. The lookup is a derived projection; no cyclic
// pointers are stored.
func (d *Document) ItemByEntityIndex(idx int) *model.PolylineItem {
	for _, it := range d.items {
		if it.EntityIndex != nil && *it.EntityIndex == idx {
			return it
		}
	}
	return nil
}

// Clear resets the document to its initial, empty state. Layer styles and
// visibility are dropped along with the items.
func (d *Document) Clear() {
	d.items = nil
	d.styles = make(map[string]*model.LayerStyle)
	d.hidden = make(map[string]bool)
	d.nextID = 0
}

// VisibleItems returns the items that render under current layer and item
// visibility. The result is a fresh slice over shared item pointers.
func (d *Document) VisibleItems() []*model.PolylineItem {
	out := make([]*model.PolylineItem, 0, len(d.items))
	for _, it := range d.items {
		if !it.Visible || d.hidden[normalizeLayer(it.Layer)] {
			continue
		}
		out = append(out, it)
	}
	return out
}

// ContentBounds accumulates the bounding box of all visible geometry.
func (d *Document) ContentBounds() (geom.Bounds, bool) {
	b := geom.EmptyBounds()
	any := false
	for _, it := range d.VisibleItems() {
		ib, ok := it.Bounds()
		if !ok {
			continue
		}
		b = b.Union(ib)
		any = true
	}
	return b, any
}

// LayerStat is a per-layer summary for the UI sidebar.
type LayerStat struct {
	Layer  string
	Items  int
	Points int
}

// LayerStats returns per-layer item and point counts, sorted by layer name.
func (d *Document) LayerStats() []LayerStat {
	acc := map[string]*LayerStat{}
	for _, it := range d.items {
		name := normalizeLayer(it.Layer)
		s := acc[name]
		if s == nil {
			s = &LayerStat{Layer: name}
			acc[name] = s
		}
		s.Items++
		s.Points += len(it.Points)
	}
	out := make([]LayerStat, 0, len(acc))
	for _, s := range acc {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Layer < out[j].Layer })
	return out
}
