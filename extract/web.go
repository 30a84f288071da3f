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
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html/charset"

	"github.com/nicholasgasior/anything2md"
)

// shortArticle is the text length below which an extracted article is
// reported as suspiciously short.
const shortArticle = 200

var reGoogleDocID = regexp.MustCompile(`^/document/(?:u/\d+/)?d/([A-Za-z0-9_-]+)`)

// extractWebpage fetches a page and keeps its main article content.
func (x *Extractor) extractWebpage(ctx context.Context, rawURL string) (*anything2md.Extraction, error) {
	data, info, err := x.fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	body, err := charset.NewReader(bytes.NewReader(data), contentType(info))
	if err != nil {
		return nil, fmt.Errorf("decode page: %w", err)
	}
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse URL: %w", err)
	}
	article, err := readability.FromReader(body, pageURL)
	if err != nil {
		return nil, fmt.Errorf("extract article: %w", err)
	}

	ex := &anything2md.Extraction{Title: strings.TrimSpace(article.Title)}
	var b strings.Builder
	if by := strings.TrimSpace(article.Byline); by != "" {
		fmt.Fprintf(&b, "<p><i>%s</i></p>\n", escapeText(by))
	}
	b.WriteString(article.Content)
	ex.Text = b.String()

	if n := len(strings.TrimSpace(article.TextContent)); n < shortArticle {
		ex.Warnings = append(ex.Warnings, fmt.Sprintf("extracted article has only %d characters; the page may need JavaScript to render", n))
	}
	return ex, nil
}

// extractNotion handles public Notion pages. They are plain web pages once
// published, so only the host check differs.
func (x *Extractor) extractNotion(ctx context.Context, rawURL string) (*anything2md.Extraction, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse URL: %w", err)
	}
	ex, err := x.extractWebpage(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	host := strings.ToLower(u.Hostname())
	if !strings.HasSuffix(host, "notion.so") && !strings.HasSuffix(host, "notion.site") {
		ex.Warnings = append([]string{fmt.Sprintf("%s is not a Notion host", host)}, ex.Warnings...)
	}
	return ex, nil
}

// extractGoogleDoc downloads the HTML export of a shared document.
func (x *Extractor) extractGoogleDoc(ctx context.Context, rawURL string) (*anything2md.Extraction, error) {
	exportURL, err := googleDocExportURL(rawURL)
	if err != nil {
		return nil, err
	}
	data, info, err := x.fetch(ctx, exportURL)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	body, err := charset.NewReader(bytes.NewReader(data), contentType(info))
	if err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if _, err := b.ReadFrom(body); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &anything2md.Extraction{Text: b.String()}, nil
}

// googleDocExportURL maps a document URL to its HTML export on the same host.
func googleDocExportURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse URL: %w", err)
	}
	m := reGoogleDocID.FindStringSubmatch(u.Path)
	if m == nil {
		return "", fmt.Errorf("%s is not a Google Docs document URL", rawURL)
	}
	export := url.URL{
		Scheme:   u.Scheme,
		Host:     u.Host,
		Path:     "/document/d/" + m[1] + "/export",
		RawQuery: "format=html",
	}
	return export.String(), nil
}

func contentType(info anything2md.StreamInfo) string {
	if info.MIMEType == "" {
		return ""
	}
	if info.Charset == "" {
		return info.MIMEType
	}
	return info.MIMEType + "; charset=" + info.Charset
}
