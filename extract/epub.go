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
	"encoding/xml"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/nicholasgasior/anything2md"
	"github.com/nicholasgasior/anything2md/internal/zippkg"
)

var reXHTMLBody = regexp.MustCompile(`(?is)<body\b[^>]*>(.*)</body>`)

type epubPackage struct {
	Metadata struct {
		Title       []string `xml:"title"`
		Creators    []string `xml:"creator"`
		Language    string   `xml:"language"`
		Publisher   string   `xml:"publisher"`
		Date        string   `xml:"date"`
		Description string   `xml:"description"`
	} `xml:"metadata"`
	Manifest []struct {
		ID        string `xml:"id,attr"`
		Href      string `xml:"href,attr"`
		MediaType string `xml:"media-type,attr"`
	} `xml:"manifest>item"`
	Spine []struct {
		IDRef string `xml:"idref,attr"`
	} `xml:"spine>itemref"`
}

// extractEPUB emits the book metadata followed by the body of every spine
// document in reading order.
func extractEPUB(data []byte) (*anything2md.Extraction, error) {
	pkg, err := zippkg.Open(data)
	if err != nil {
		return nil, fmt.Errorf("open EPUB: %w", err)
	}

	opfPath, err := epubRootfile(pkg)
	if err != nil {
		return nil, err
	}
	opfData, err := pkg.ReadFile(opfPath)
	if err != nil {
		return nil, fmt.Errorf("read package document: %w", err)
	}
	var opf epubPackage
	if err := xml.Unmarshal(opfData, &opf); err != nil {
		return nil, fmt.Errorf("parse package document: %w", err)
	}

	ex := &anything2md.Extraction{}
	var b strings.Builder

	meta := opf.Metadata
	if len(meta.Title) > 0 {
		ex.Title = strings.TrimSpace(meta.Title[0])
		fmt.Fprintf(&b, "<h1>%s</h1>\n", escapeText(ex.Title))
	}
	field := func(label, value string) {
		if value = strings.TrimSpace(value); value != "" {
			fmt.Fprintf(&b, "<p><b>%s:</b> %s</p>\n", label, escapeText(value))
		}
	}
	field("Authors", strings.Join(meta.Creators, ", "))
	field("Language", meta.Language)
	field("Publisher", meta.Publisher)
	field("Date", meta.Date)
	field("Description", meta.Description)

	hrefs := make(map[string]string, len(opf.Manifest))
	types := make(map[string]string, len(opf.Manifest))
	for _, it := range opf.Manifest {
		hrefs[it.ID] = it.Href
		types[it.ID] = it.MediaType
	}

	missing := 0
	for _, ref := range opf.Spine {
		href, ok := hrefs[ref.IDRef]
		if !ok {
			missing++
			continue
		}
		if !isXHTML(href, types[ref.IDRef]) {
			continue
		}
		doc, err := pkg.ReadFile(zippkg.Resolve(opfPath, href))
		if err != nil {
			missing++
			continue
		}
		body := string(doc)
		if m := reXHTMLBody.FindStringSubmatch(body); m != nil {
			body = m[1]
		}
		b.WriteString("<section>\n")
		b.WriteString(body)
		b.WriteString("\n</section>\n")
	}

	ex.Text = b.String()
	if len(opf.Spine) == 0 {
		ex.Warnings = append(ex.Warnings, "book has no reading order")
	}
	if missing > 0 {
		ex.Warnings = append(ex.Warnings, fmt.Sprintf("%d chapter(s) listed in the reading order could not be read", missing))
	}
	return ex, nil
}

// epubRootfile finds the package document through META-INF/container.xml.
func epubRootfile(pkg *zippkg.Package) (string, error) {
	data, err := pkg.ReadFile("META-INF/container.xml")
	if err != nil {
		return "", fmt.Errorf("read container: %w", err)
	}
	var container struct {
		Rootfiles []struct {
			FullPath string `xml:"full-path,attr"`
		} `xml:"rootfiles>rootfile"`
	}
	if err := xml.Unmarshal(data, &container); err != nil {
		return "", fmt.Errorf("parse container: %w", err)
	}
	for _, rf := range container.Rootfiles {
		if rf.FullPath != "" {
			return rf.FullPath, nil
		}
	}
	return "", fmt.Errorf("container lists no rootfile")
}

func isXHTML(href, mediaType string) bool {
	switch strings.ToLower(path.Ext(href)) {
	case ".html", ".htm", ".xhtml":
		return true
	}
	return strings.Contains(mediaType, "html")
}
