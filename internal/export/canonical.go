/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders the canonical document into its interchange and
// presentation formats: canonical JSON (the only format with full
// round-trip fidelity), DXF text, SVG page markup, PDF and PNG.
package export

import (
	"encoding/json"
	"fmt"

	"vecdraft/internal/document"
	"vecdraft/internal/model"
)

// canonicalDoc is the top-level shape of the interchange format.
type canonicalDoc struct {
	Polylines []*model.PolylineItem     `json:"polylines"`
	Layers    map[string]canonicalLayer `json:"layers"`
}

type canonicalLayer struct {
	model.LayerStyle
	Visible bool `json:"visible"`
}

// CanonicalJSON emits the full document as canonical JSON. All items are
// written regardless of layer visibility; visibility travels in the item
// flags and the per-layer visible field, so a re-import reproduces the
// document exactly (minus the opaque source references, which are not
// serialized).
func CanonicalJSON(doc *document.Document) (string, error) {
	cd := canonicalDoc{
		Polylines: doc.Items(),
		Layers:    make(map[string]canonicalLayer, len(doc.Styles())),
	}
	if cd.Polylines == nil {
		cd.Polylines = []*model.PolylineItem{}
	}
	for name, style := range doc.Styles() {
		cd.Layers[name] = canonicalLayer{LayerStyle: *style, Visible: doc.LayerVisible(name)}
	}
	data, err := json.MarshalIndent(cd, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal canonical document: %w", err)
	}
	return string(data) + "\n", nil
}
