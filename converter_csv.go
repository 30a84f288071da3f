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

import "strings"

// CsvConverter renders comma-separated text as a markdown table.
type CsvConverter struct{}

// NewCsvConverter creates a new CsvConverter.
func NewCsvConverter() *CsvConverter {
	return &CsvConverter{}
}

func (c *CsvConverter) Convert(raw string) *ConversionResult {
	table := ParseCSV(raw)
	if len(table.Rows) == 0 {
		return failed(malformed(FormatCSV, "no data"), "")
	}

	result := succeeded(Render(table))

	width := len(table.Rows[0])
	ragged := 0
	for _, row := range table.Rows[1:] {
		if len(row) != width {
			ragged++
		}
	}
	if ragged > 0 {
		result.addDiagnostic("%d row(s) have a different number of columns than the header (%d)", ragged, width)
	}
	return result
}

// ParseCSV splits raw into rows and fields. Double quotes toggle quoting
// and are dropped; a doubled quote is not an escape for a literal quote.
// Blank lines are skipped.
func ParseCSV(raw string) *Table {
	table := &Table{}
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		table.Rows = append(table.Rows, splitCSVLine(line))
	}
	return table
}

func splitCSVLine(line string) []string {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	return append(fields, strings.TrimSpace(current.String()))
}
