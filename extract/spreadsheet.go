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

package extract

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"github.com/nicholasgasior/anything2md"
)

type sheet struct {
	name string
	rows [][]string
}

func extractXLSX(data []byte) (*anything2md.Extraction, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open XLSX: %w", err)
	}
	defer f.Close()

	var sheets []sheet
	var skipped []string
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			skipped = append(skipped, name)
			continue
		}
		sheets = append(sheets, sheet{name: name, rows: rows})
	}

	ex := renderSheets(sheets)
	if props, err := f.GetDocProps(); err == nil {
		ex.Title = props.Title
	}
	if len(skipped) > 0 {
		ex.Warnings = append(ex.Warnings, "could not read sheet(s): "+strings.Join(skipped, ", "))
	}
	return ex, nil
}

// extractXLS reads a legacy workbook. The xls package only opens files by
// path, so the data goes through a temp file.
func extractXLS(data []byte) (*anything2md.Extraction, error) {
	tmp, err := os.CreateTemp("", "anything2md-*.xls")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	wb, err := xls.Open(tmp.Name(), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open XLS: %w", err)
	}

	var sheets []sheet
	for i := 0; i < wb.NumSheets(); i++ {
		ws := wb.GetSheet(i)
		if ws == nil {
			continue
		}
		name := ws.Name
		if name == "" {
			name = fmt.Sprintf("Sheet%d", i+1)
		}

		var rows [][]string
		for r := 0; r <= int(ws.MaxRow); r++ {
			row := ws.Row(r)
			if row == nil {
				continue
			}
			cells := make([]string, 0, row.LastCol())
			for c := 0; c < row.LastCol(); c++ {
				cells = append(cells, row.Col(c))
			}
			rows = append(rows, cells)
		}
		sheets = append(sheets, sheet{name: name, rows: rows})
	}
	return renderSheets(sheets), nil
}

// renderSheets writes one "## name" section and table per non-empty sheet.
// Rows are padded to the widest row so every table is rectangular.
func renderSheets(sheets []sheet) *anything2md.Extraction {
	ex := &anything2md.Extraction{}
	var b strings.Builder
	empty := 0
	for _, s := range sheets {
		rows := padRows(s.rows)
		if len(rows) == 0 {
			empty++
			continue
		}
		fmt.Fprintf(&b, "## %s\n\n", s.name)
		b.WriteString(anything2md.Render(&anything2md.Table{Rows: rows}))
		b.WriteString("\n\n")
	}
	ex.Text = b.String()
	if empty > 0 {
		ex.Warnings = append(ex.Warnings, fmt.Sprintf("%d empty sheet(s) were skipped", empty))
	}
	return ex
}

func padRows(rows [][]string) [][]string {
	width := 0
	var out [][]string
	for _, r := range rows {
		blank := true
		for _, c := range r {
			if strings.TrimSpace(c) != "" {
				blank = false
				break
			}
		}
		if blank {
			continue
		}
		if len(r) > width {
			width = len(r)
		}
		out = append(out, r)
	}
	for i, r := range out {
		cells := make([]string, width)
		for j, c := range r {
			cells[j] = strings.TrimSpace(c)
		}
		out[i] = cells
	}
	return out
}
