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
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nicholasgasior/anything2md"
	"github.com/nicholasgasior/anything2md/internal/zippkg"
)

const docxMain = "word/document.xml"

// extractDocx turns the body of a Word document into simple markup:
// headings, paragraphs, list items, bold, italic and links. Table rows
// become paragraphs of cells joined by " | ".
func extractDocx(data []byte) (*anything2md.Extraction, error) {
	pkg, err := zippkg.Open(data)
	if err != nil {
		return nil, fmt.Errorf("open DOCX: %w", err)
	}
	body, err := pkg.ReadFile(docxMain)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	rels, err := pkg.Relationships(docxMain)
	if err != nil {
		return nil, err
	}

	w := &docxWriter{
		rels:     rels,
		headings: docxHeadingStyles(pkg),
	}
	if err := w.walk(body); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	ex := &anything2md.Extraction{
		Text:  w.out.String(),
		Title: coreTitle(pkg),
	}
	if w.equations > 0 {
		ex.Warnings = append(ex.Warnings, fmt.Sprintf("%d equation(s) were dropped", w.equations))
	}
	if w.images > 0 {
		ex.Warnings = append(ex.Warnings, fmt.Sprintf("%d embedded image(s) were dropped", w.images))
	}
	return ex, nil
}

type docxWriter struct {
	rels     map[string]zippkg.Relationship
	headings map[string]int

	out  strings.Builder
	para strings.Builder

	style    string
	listItem bool
	bold     bool
	italic   bool
	link     string
	inRun    bool
	textOpen bool
	inMath   int

	// cells of the table row being read, nil outside tables
	row    []string
	inCell bool

	equations int
	images    int
}

func (w *docxWriter) walk(data []byte) error {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			w.start(t)
		case xml.EndElement:
			w.end(t)
		case xml.CharData:
			if w.inMath == 0 && w.textOpen {
				w.run(string(t))
			}
		}
	}
}

func (w *docxWriter) start(t xml.StartElement) {
	switch t.Name.Local {
	case "oMathPara", "oMath":
		if w.inMath == 0 {
			w.equations++
		}
		w.inMath++
	case "p":
		w.para.Reset()
		w.style, w.listItem = "", false
	case "pStyle":
		w.style = attr(t, "val")
	case "numPr":
		w.listItem = true
	case "r":
		w.inRun = true
		w.bold, w.italic = false, false
	case "b":
		w.bold = attr(t, "val") != "0" && attr(t, "val") != "false"
	case "i":
		w.italic = attr(t, "val") != "0" && attr(t, "val") != "false"
	case "t":
		w.textOpen = true
	case "tab":
		if w.inRun {
			w.run("\t")
		}
	case "br", "cr":
		if w.inRun {
			w.para.WriteString("<br>")
		}
	case "hyperlink":
		if rel, ok := w.rels[attr(t, "id")]; ok && rel.External() {
			w.link = rel.Target
			fmt.Fprintf(&w.para, `<a href="%s">`, escapeAttr(rel.Target))
		}
	case "drawing", "pict":
		w.images++
	case "tr":
		w.row = []string{}
	case "tc":
		w.inCell = true
	}
}

func (w *docxWriter) end(t xml.EndElement) {
	switch t.Name.Local {
	case "oMath", "oMathPara":
		w.inMath--
	case "r":
		w.inRun = false
	case "t":
		w.textOpen = false
	case "hyperlink":
		if w.link != "" {
			w.para.WriteString("</a>")
			w.link = ""
		}
	case "p":
		w.flushParagraph()
	case "tc":
		w.inCell = false
	case "tr":
		if len(w.row) > 0 {
			fmt.Fprintf(&w.out, "<p>%s</p>\n", strings.Join(w.row, " | "))
		}
		w.row = nil
	}
}

// run appends a piece of run text with the current formatting.
func (w *docxWriter) run(s string) {
	if s == "" {
		return
	}
	s = escapeText(s)
	if w.bold {
		s = "<b>" + s + "</b>"
	}
	if w.italic {
		s = "<i>" + s + "</i>"
	}
	w.para.WriteString(s)
}

func (w *docxWriter) flushParagraph() {
	text := strings.TrimSpace(w.para.String())
	w.para.Reset()
	if text == "" {
		return
	}
	if w.inCell {
		w.row = append(w.row, text)
		return
	}

	switch level := w.headings[w.style]; {
	case level > 0:
		fmt.Fprintf(&w.out, "<h%d>%s</h%d>\n", level, text, level)
	case w.listItem:
		fmt.Fprintf(&w.out, "<li>%s</li>\n", text)
	default:
		fmt.Fprintf(&w.out, "<p>%s</p>\n", text)
	}
}

// docxHeadingStyles maps style IDs to heading levels 1-4 using the style
// names in styles.xml. Deeper headings are clamped to 4.
func docxHeadingStyles(pkg *zippkg.Package) map[string]int {
	levels := map[string]int{"Title": 1}
	for i := 1; i <= 9; i++ {
		levels["Heading"+strconv.Itoa(i)] = min(i, 4)
	}

	data, err := pkg.ReadFile("word/styles.xml")
	if err != nil {
		return levels
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	var id string
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch se.Name.Local {
		case "style":
			id = attr(se, "styleId")
		case "name":
			name := strings.ToLower(attr(se, "val"))
			if name == "title" {
				levels[id] = 1
			} else if n, ok := strings.CutPrefix(name, "heading "); ok {
				if lvl, err := strconv.Atoi(n); err == nil && lvl > 0 {
					levels[id] = min(lvl, 4)
				}
			}
		}
	}
	return levels
}

// coreTitle reads dc:title from the package core properties.
func coreTitle(pkg *zippkg.Package) string {
	data, err := pkg.ReadFile("docProps/core.xml")
	if err != nil {
		return ""
	}
	var props struct {
		Title string `xml:"title"`
	}
	if err := xml.Unmarshal(data, &props); err != nil {
		return ""
	}
	return strings.TrimSpace(props.Title)
}

func attr(se xml.StartElement, local string) string {
	for _, a := range se.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// escapeText escapes the characters the markup renderer decodes back.
func escapeText(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

func escapeAttr(s string) string {
	return strings.ReplaceAll(escapeText(s), `"`, "&quot;")
}
