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
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// NotebookConverter handles Jupyter notebook JSON. Markdown cells are kept
// as they are; code and raw cells become fenced blocks.
type NotebookConverter struct{}

// NewNotebookConverter creates a new NotebookConverter.
func NewNotebookConverter() *NotebookConverter {
	return &NotebookConverter{}
}

const defaultNotebookLanguage = "python"

func (c *NotebookConverter) Convert(raw string) *ConversionResult {
	if strings.TrimSpace(raw) == "" {
		return failed(malformed(FormatNotebook, "no data"), "")
	}
	if !gjson.Valid(raw) {
		return failed(malformed(FormatNotebook, "notebook is not valid JSON"), "")
	}

	nb := gjson.Parse(raw)
	language := nb.Get("metadata.kernelspec.language").String()
	if language == "" {
		language = defaultNotebookLanguage
	}

	var (
		sections []string
		title    string
		skipped  int
	)
	fence := func(lang, body string) {
		sections = append(sections, fmt.Sprintf("```%s\n%s\n```", lang, body))
	}

	cells := nb.Get("cells").Array()
	for _, cell := range cells {
		source := cellText(cell.Get("source"))

		switch cell.Get("cell_type").String() {
		case "markdown":
			sections = append(sections, source)
			if title == "" {
				title = firstHeading(source)
			}
		case "code":
			if strings.TrimSpace(source) != "" {
				fence(language, source)
			}
			for _, out := range cell.Get("outputs").Array() {
				if text := outputText(out); text != "" {
					fence("", text)
				}
			}
		case "raw":
			if strings.TrimSpace(source) != "" {
				fence("", source)
			}
		default:
			skipped++
		}
	}

	result := succeeded(strings.Join(sections, "\n\n"))
	result.Title = title
	if len(cells) == 0 {
		result.addDiagnostic("notebook has no cells")
	}
	if skipped > 0 {
		result.addDiagnostic("%d cell(s) of unknown type were skipped", skipped)
	}
	return result
}

func firstHeading(md string) string {
	for _, line := range strings.Split(md, "\n") {
		if h, ok := strings.CutPrefix(strings.TrimSpace(line), "# "); ok {
			return h
		}
	}
	return ""
}

// cellText reads a multiline notebook string, stored either whole or as a
// list of lines.
func cellText(v gjson.Result) string {
	if !v.IsArray() {
		return v.String()
	}
	var b strings.Builder
	for _, line := range v.Array() {
		b.WriteString(line.String())
	}
	return b.String()
}

// outputText prefers stream text over the text/plain rendering of a result.
func outputText(out gjson.Result) string {
	text := cellText(out.Get("text"))
	if text == "" {
		text = cellText(out.Get("data.text/plain"))
	}
	return strings.TrimRight(text, "\n")
}
