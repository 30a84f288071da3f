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

// indentUnit is the indentation added per nesting level.
const indentUnit = "  "

// Render converts an intermediate document into Markdown.
func Render(doc Document) string {
	var b strings.Builder
	renderAt(&b, doc, 0)
	return strings.TrimRight(b.String(), "\n")
}

func renderAt(b *strings.Builder, doc Document, depth int) {
	switch d := doc.(type) {
	case *Table:
		renderTable(b, d, strings.Repeat(indentUnit, depth))
	case *Tree:
		renderTree(b, d, depth)
	case *List:
		renderList(b, d, depth)
	case PlainText:
		b.WriteString(string(d))
	}
}

// renderTable writes a markdown table. The separator row has one cell per
// header column; body rows keep their own cell counts. Pipes in cells are
// escaped and line breaks become <br>.
func renderTable(b *strings.Builder, t *Table, indent string) {
	if t == nil || len(t.Rows) == 0 {
		return
	}

	header := t.Rows[0]
	writeTableRow(b, indent, header)

	sep := make([]string, len(header))
	for i := range sep {
		sep[i] = "---"
	}
	writeTableRow(b, indent, sep)

	for _, row := range t.Rows[1:] {
		writeTableRow(b, indent, row)
	}
}

// cellEscaper keeps a cell on one row and inside its column.
var cellEscaper = strings.NewReplacer(
	"\r\n", "<br>",
	"\r", "<br>",
	"\n", "<br>",
	"|", `\|`,
)

func writeTableRow(b *strings.Builder, indent string, cells []string) {
	b.WriteString(indent)
	b.WriteString("|")
	for _, c := range cells {
		b.WriteString(" ")
		b.WriteString(cellEscaper.Replace(c))
		b.WriteString(" |")
	}
	b.WriteString("\n")
}

func renderTree(b *strings.Builder, t *Tree, depth int) {
	if t == nil {
		return
	}
	if t.Name == "" {
		for _, c := range t.Children {
			renderTree(b, c, depth)
		}
		return
	}

	b.WriteString(strings.Repeat(indentUnit, depth))
	if len(t.Children) > 0 {
		b.WriteString("- **" + t.Name + "**:\n")
		for _, c := range t.Children {
			renderTree(b, c, depth+1)
		}
		return
	}
	b.WriteString(strings.TrimRight("- **"+t.Name+"**: "+t.Text, " "))
	b.WriteString("\n")
}

func renderList(b *strings.Builder, l *List, depth int) {
	if l == nil {
		return
	}
	indent := strings.Repeat(indentUnit, depth)
	for _, e := range l.Entries {
		b.WriteString(indent)
		switch {
		case e.Child != nil:
			b.WriteString("- **" + e.Label + "**:\n")
			renderAt(b, e.Child, depth+1)
		case e.Label != "":
			b.WriteString("- **" + e.Label + "**: " + e.Value + "\n")
		default:
			b.WriteString("- " + e.Value + "\n")
		}
	}
}
