/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// canonicalSchema describes the canonical drawing interchange document.
// Foreign shapes (bare point lists, parser output) intentionally fail it;
// they go through the tolerant normalizer instead.
const canonicalSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["polylines"],
  "properties": {
    "polylines": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["points"],
        "properties": {
          "id": {"type": "string"},
          "layer": {"type": "string"},
          "type": {"type": "string"},
          "points": {
            "type": "array",
            "minItems": 2,
            "items": {
              "type": "array",
              "minItems": 2,
              "maxItems": 2,
              "items": {"type": "number"}
            }
          },
          "visible": {"type": "boolean"},
          "entityIndex": {"type": "integer", "minimum": 0},
          "lineOverride": {
            "type": "object",
            "properties": {
              "type": {"enum": ["solid", "dash", "dot", "dashdot"]},
              "color": {"type": "string", "pattern": "^[0-9a-f]{6}$"},
              "width": {"type": "number", "exclusiveMinimum": 0}
            },
            "additionalProperties": false
          }
        }
      }
    },
    "layers": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "properties": {
          "visible": {"type": "boolean"}
        }
      }
    }
  }
}`

// ValidateCanonical checks data against the canonical document schema and
// returns a single error listing every violation, or nil.
func ValidateCanonical(data []byte) error {
	schema := gojsonschema.NewStringLoader(canonicalSchema)
	doc := gojsonschema.NewBytesLoader(data)
	res, err := gojsonschema.Validate(schema, doc)
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("document not canonical: %s", strings.Join(msgs, "; "))
}
