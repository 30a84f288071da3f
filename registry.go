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
	"sort"
	"strings"
)

// Mode tells the engine where a format is converted.
type Mode int

const (
	// ModeLocal formats are converted in process by their Converter.
	ModeLocal Mode = iota
	// ModeRemote formats go through the Extractor first.
	ModeRemote
)

// Output describes what an Extractor returns for a remote format, and so
// which step renders it.
type Output int

const (
	// OutputMarkup is HTML-like markup, rendered by the HTML converter.
	OutputMarkup Output = iota
	// OutputPlainText is flat text, run through the free-text normalizer.
	OutputPlainText
	// OutputMarkdown is already markdown and is passed through.
	OutputMarkdown
)

// Registration binds a format to its converter and display metadata.
type Registration struct {
	Format Format
	Mode   Mode

	// Converter is used for ModeLocal formats.
	Converter Converter
	// Output is used for ModeRemote formats.
	Output Output

	// Accepts lists the input kinds the format takes.
	Accepts []InputKind

	Title       string
	Description string
	Extensions  []string
}

func (r Registration) accepts(k InputKind) bool {
	for _, a := range r.Accepts {
		if a == k {
			return true
		}
	}
	return false
}

// Register adds or replaces the registration for r.Format.
func (e *Engine) Register(r Registration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.formats[r.Format] = r
}

// Lookup returns the registration for f.
func (e *Engine) Lookup(f Format) (Registration, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	r, ok := e.formats[f]
	return r, ok
}

// Formats returns every registration, local formats first, then by name.
func (e *Engine) Formats() []Registration {
	e.mu.RLock()
	out := make([]Registration, 0, len(e.formats))
	for _, r := range e.formats {
		out = append(out, r)
	}
	e.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Mode != out[j].Mode {
			return out[i].Mode < out[j].Mode
		}
		return out[i].Format < out[j].Format
	})
	return out
}

// FormatForExtension finds the format registered for a file extension such
// as ".csv". Local formats win over remote ones.
func (e *Engine) FormatForExtension(ext string) (Format, bool) {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	for _, r := range e.Formats() {
		for _, x := range r.Extensions {
			if x == ext {
				return r.Format, true
			}
		}
	}
	return "", false
}

var (
	textInputs = []InputKind{PastedText, UploadedFile}
	fileInputs = []InputKind{UploadedFile}
	urlInputs  = []InputKind{RemoteURL}
)

// enableBuiltins registers all built-in formats.
func (e *Engine) enableBuiltins() {
	local := func(f Format, c Converter, title, desc string, exts ...string) {
		e.Register(Registration{Format: f, Mode: ModeLocal, Converter: c, Accepts: textInputs,
			Title: title, Description: desc, Extensions: exts})
	}
	remote := func(f Format, out Output, accepts []InputKind, title, desc string, exts ...string) {
		e.Register(Registration{Format: f, Mode: ModeRemote, Output: out, Accepts: accepts,
			Title: title, Description: desc, Extensions: exts})
	}

	local(FormatCSV, NewCsvConverter(), "CSV to Markdown", "Comma-separated rows as a table", ".csv")
	local(FormatHTML, e.markup, "HTML to Markdown", "Headings, emphasis, links, images and lists", ".html", ".htm")
	local(FormatJSON, NewJSONConverter(), "JSON to Markdown", "Arrays of objects as tables, everything else as nested lists", ".json")
	local(FormatXML, NewXMLConverter(), "XML to Markdown", "Element tree as nested lists", ".xml")
	local(FormatText, e.text, "Text to Markdown", "Whitespace-normalized plain text", ".txt", ".text", ".md", ".markdown")
	local(FormatNotebook, NewNotebookConverter(), "Jupyter Notebook to Markdown", "Markdown cells and fenced code cells", ".ipynb")

	remote(FormatWebpage, OutputMarkup, urlInputs, "Webpage to Markdown", "Main article content of a web page")
	remote(FormatNotion, OutputMarkup, urlInputs, "Notion to Markdown", "Public Notion pages")
	remote(FormatGoogleDocs, OutputMarkup, urlInputs, "Google Docs to Markdown", "Shared Google Docs documents")
	remote(FormatDocx, OutputMarkup, fileInputs, "Word to Markdown", "DOCX paragraphs, headings and lists", ".docx")
	remote(FormatPDF, OutputPlainText, []InputKind{UploadedFile, RemoteURL}, "PDF to Markdown", "Text layer of PDF documents", ".pdf")
	remote(FormatRTF, OutputPlainText, fileInputs, "RTF to Markdown", "Rich Text Format documents", ".rtf")
	remote(FormatXLSX, OutputMarkdown, fileInputs, "Excel to Markdown", "One table per worksheet", ".xlsx")
	remote(FormatXLS, OutputMarkdown, fileInputs, "Excel 97 to Markdown", "One table per legacy worksheet", ".xls")
	remote(FormatEPUB, OutputMarkup, fileInputs, "EPUB to Markdown", "Book metadata and chapters in reading order", ".epub")
	remote(FormatRSS, OutputMarkdown, []InputKind{UploadedFile, RemoteURL}, "RSS to Markdown", "RSS and Atom feed items", ".rss", ".atom")
}
