// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package anything2md

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// JSONConverter renders JSON documents as a table (for arrays of objects)
// or as nested bullet lists. Key order follows the input.
type JSONConverter struct{}

// NewJSONConverter creates a new JSONConverter.
func NewJSONConverter() *JSONConverter {
	return &JSONConverter{}
}

func (c *JSONConverter) Convert(raw string) *ConversionResult {
	// encoding/json gives the syntax error message; gjson keeps key order.
	var decoded any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return failed(&MalformedInputError{Format: FormatJSON, Err: err}, "")
	}

	doc, dropped := ParseJSON(raw)
	result := succeeded(Render(doc))
	if result.Markdown == "" {
		result.addDiagnostic("JSON document contains no data")
	}
	if dropped > 0 {
		result.addDiagnostic("%d value(s) with keys missing from the first element were omitted from the table", dropped)
	}
	return result
}

// ParseJSON builds the intermediate document for a valid JSON text. It also
// reports how many values were left out of a table because their key was
// not part of the first element's schema.
func ParseJSON(raw string) (Document, int) {
	root := gjson.Parse(raw)

	if root.IsArray() {
		if table, dropped, ok := jsonTable(root); ok {
			return table, dropped
		}
	}
	if isJSONContainer(root) {
		return jsonList(root), 0
	}
	return PlainText(jsonScalar(root)), 0
}

func isJSONContainer(v gjson.Result) bool {
	return v.IsObject() || v.IsArray()
}

func isEmptyJSONContainer(v gjson.Result) bool {
	empty := true
	v.ForEach(func(_, _ gjson.Result) bool {
		empty = false
		return false
	})
	return empty
}

// jsonTable renders an array as a table when every element is an object.
// The first element's keys define the columns.
func jsonTable(arr gjson.Result) (*Table, int, bool) {
	elems := arr.Array()
	if len(elems) == 0 {
		return nil, 0, false
	}
	for _, e := range elems {
		if !e.IsObject() {
			return nil, 0, false
		}
	}

	var header []string
	index := make(map[string]int)
	elems[0].ForEach(func(k, _ gjson.Result) bool {
		key := k.String()
		if _, ok := index[key]; !ok {
			index[key] = len(header)
			header = append(header, key)
		}
		return true
	})
	if len(header) == 0 {
		return nil, 0, false
	}

	table := &Table{Rows: [][]string{header}}
	dropped := 0
	for _, e := range elems {
		row := make([]string, len(header))
		e.ForEach(func(k, v gjson.Result) bool {
			i, ok := index[k.String()]
			if !ok {
				dropped++
				return true
			}
			row[i] = jsonCell(v)
			return true
		})
		table.Rows = append(table.Rows, row)
	}
	return table, dropped, true
}

func jsonList(v gjson.Result) *List {
	l := &List{}
	if v.IsObject() {
		v.ForEach(func(k, val gjson.Result) bool {
			l.Entries = append(l.Entries, jsonEntry(k.String(), val))
			return true
		})
		return l
	}

	n := 0
	v.ForEach(func(_, val gjson.Result) bool {
		n++
		if isJSONContainer(val) && !isEmptyJSONContainer(val) {
			l.Entries = append(l.Entries, jsonEntry(fmt.Sprintf("Item %d", n), val))
		} else {
			l.Entries = append(l.Entries, ListEntry{Value: jsonScalar(val)})
		}
		return true
	})
	return l
}

func jsonEntry(label string, v gjson.Result) ListEntry {
	if isJSONContainer(v) && !isEmptyJSONContainer(v) {
		return ListEntry{Label: label, Child: jsonList(v)}
	}
	return ListEntry{Label: label, Value: jsonScalar(v)}
}

// jsonScalar formats a leaf value. Numbers keep their source spelling.
func jsonScalar(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return v.String()
	case gjson.Null:
		return "null"
	case gjson.JSON:
		if v.IsArray() {
			return "[]"
		}
		return "{}"
	}
	return v.Raw
}

// jsonCell formats a table cell, compacting nested structures onto one line.
func jsonCell(v gjson.Result) string {
	if !isJSONContainer(v) {
		return jsonScalar(v)
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(v.Raw)); err != nil {
		return strings.TrimSpace(v.Raw)
	}
	return buf.String()
}
