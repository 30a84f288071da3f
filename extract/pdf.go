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
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/nicholasgasior/anything2md"
)

// extractPDF returns the text layer of a PDF, one block per page.
func extractPDF(data []byte) (*anything2md.Extraction, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}

	ex := &anything2md.Extraction{}
	var b strings.Builder
	empty := 0
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text := strings.TrimSpace(pageText(page))
		if text == "" {
			empty++
			continue
		}
		b.WriteString(text)
		b.WriteString("\n\n")
	}

	ex.Text = b.String()
	if info := r.Trailer().Key("Info"); !info.IsNull() {
		ex.Title = strings.TrimSpace(info.Key("Title").Text())
	}
	switch {
	case strings.TrimSpace(ex.Text) == "":
		ex.Warnings = append(ex.Warnings, "no readable text layer found; the PDF may be scanned")
	case empty > 0:
		ex.Warnings = append(ex.Warnings, fmt.Sprintf("%d page(s) had no readable text", empty))
	}
	return ex, nil
}

type pdfGlyph struct {
	x, y, size float64
	text       string
}

type pdfLine struct {
	y      float64
	glyphs []pdfGlyph
}

// pageText reads a page row by row, falling back to grouping positioned
// glyphs into lines when the row API yields nothing.
func pageText(page pdf.Page) string {
	if rows, err := page.GetTextByRow(); err == nil && len(rows) > 0 {
		var out strings.Builder
		for _, row := range rows {
			var line strings.Builder
			gap := false
			for _, w := range row.Content {
				if w.S == "" {
					gap = true
					continue
				}
				if gap && line.Len() > 0 && !strings.HasSuffix(line.String(), " ") {
					line.WriteString(" ")
				}
				line.WriteString(w.S)
				gap = false
			}
			if s := strings.TrimSpace(line.String()); s != "" {
				out.WriteString(s)
				out.WriteString("\n")
			}
		}
		if strings.TrimSpace(out.String()) != "" {
			return out.String()
		}
	}

	var glyphs []pdfGlyph
	for _, t := range page.Content().Text {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		glyphs = append(glyphs, pdfGlyph{x: t.X, y: t.Y, size: t.FontSize, text: t.S})
	}
	if len(glyphs) == 0 {
		return ""
	}

	tolerance := 3.0
	if glyphs[0].size > 0 {
		tolerance = glyphs[0].size * 0.3
	}

	var lines []pdfLine
	for _, g := range glyphs {
		placed := false
		for i := range lines {
			if math.Abs(lines[i].y-g.y) < tolerance {
				lines[i].glyphs = append(lines[i].glyphs, g)
				placed = true
				break
			}
		}
		if !placed {
			lines = append(lines, pdfLine{y: g.y, glyphs: []pdfGlyph{g}})
		}
	}

	// PDF y grows upwards.
	sort.Slice(lines, func(i, j int) bool { return lines[i].y > lines[j].y })

	var out strings.Builder
	for _, ln := range lines {
		sort.Slice(ln.glyphs, func(i, j int) bool { return ln.glyphs[i].x < ln.glyphs[j].x })

		var line strings.Builder
		var end float64
		for i, g := range ln.glyphs {
			if i > 0 && g.x-end > math.Max(g.size*0.2, 1) {
				line.WriteString(" ")
			}
			line.WriteString(g.text)
			end = g.x + float64(len([]rune(g.text)))*g.size*0.55
		}
		if s := line.String(); strings.TrimSpace(s) != "" {
			out.WriteString(s)
			out.WriteString("\n")
		}
	}
	return out.String()
}
