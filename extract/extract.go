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

// Package extract is the built-in extraction collaborator for the remote
// formats of anything2md. It reads binary office documents, feeds and web
// pages and hands back text or markup for the engine to render.
package extract

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"

	"github.com/nicholasgasior/anything2md"
)

const (
	// DefaultUserAgent is sent with every fetch.
	DefaultUserAgent = "anything2md/1.0"
	// DefaultMaxBytes caps the size of a fetched response.
	DefaultMaxBytes = 32 << 20
)

// Extractor implements anything2md.Extractor.
type Extractor struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
	log       logrus.FieldLogger
}

var _ anything2md.Extractor = (*Extractor)(nil)

// Option configures an Extractor.
type Option func(*Extractor)

// WithHTTPClient sets the client used for URL sources.
func WithHTTPClient(c *http.Client) Option {
	return func(x *Extractor) {
		if c != nil {
			x.client = c
		}
	}
}

// WithUserAgent sets the User-Agent header for fetches.
func WithUserAgent(ua string) Option {
	return func(x *Extractor) {
		if ua != "" {
			x.userAgent = ua
		}
	}
}

// WithMaxBytes caps fetched response bodies.
func WithMaxBytes(n int64) Option {
	return func(x *Extractor) {
		if n > 0 {
			x.maxBytes = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(x *Extractor) {
		if l != nil {
			x.log = l
		}
	}
}

// New creates an Extractor.
func New(opts ...Option) *Extractor {
	l := logrus.New()
	l.SetOutput(io.Discard)

	x := &Extractor{
		client:    &http.Client{Timeout: 60 * time.Second},
		userAgent: DefaultUserAgent,
		maxBytes:  DefaultMaxBytes,
		log:       l,
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Extract reads src and returns its text for the given format.
func (x *Extractor) Extract(ctx context.Context, src anything2md.Source, format anything2md.Format) (*anything2md.Extraction, error) {
	log := x.log.WithField("format", format)

	switch format {
	case anything2md.FormatWebpage:
		return x.extractWebpage(ctx, src.URL)
	case anything2md.FormatNotion:
		return x.extractNotion(ctx, src.URL)
	case anything2md.FormatGoogleDocs:
		return x.extractGoogleDoc(ctx, src.URL)
	}

	data, info, err := x.read(ctx, src)
	if err != nil {
		return nil, err
	}
	log.WithField("bytes", len(data)).Debug("source read")

	var ex *anything2md.Extraction
	switch format {
	case anything2md.FormatPDF:
		ex, err = extractPDF(data)
	case anything2md.FormatDocx:
		ex, err = extractDocx(data)
	case anything2md.FormatRTF:
		ex, err = extractRTF(data)
	case anything2md.FormatXLSX:
		ex, err = extractXLSX(data)
	case anything2md.FormatXLS:
		ex, err = extractXLS(data)
	case anything2md.FormatEPUB:
		ex, err = extractEPUB(data)
	case anything2md.FormatRSS:
		ex, err = extractFeed(data)
	default:
		return nil, fmt.Errorf("no extractor for format %q", format)
	}
	if err != nil {
		return nil, err
	}

	if w := sniffWarning(data, format, info); w != "" {
		ex.Warnings = append([]string{w}, ex.Warnings...)
	}
	return ex, nil
}

// read returns the bytes of an uploaded file or a fetched URL.
func (x *Extractor) read(ctx context.Context, src anything2md.Source) ([]byte, anything2md.StreamInfo, error) {
	switch src.Kind {
	case anything2md.UploadedFile:
		if src.File == nil {
			return nil, src.Info, fmt.Errorf("no file provided")
		}
		if _, err := src.File.Seek(0, io.SeekStart); err != nil {
			return nil, src.Info, fmt.Errorf("seek: %w", err)
		}
		data, err := io.ReadAll(src.File)
		if err != nil {
			return nil, src.Info, fmt.Errorf("read file: %w", err)
		}
		return data, src.Info, nil
	case anything2md.RemoteURL:
		return x.fetch(ctx, src.URL)
	}
	return nil, src.Info, fmt.Errorf("unsupported source kind %s", src.Kind)
}

// fetch downloads rawURL, honoring ctx and the size cap.
func (x *Extractor) fetch(ctx context.Context, rawURL string) ([]byte, anything2md.StreamInfo, error) {
	info := anything2md.StreamInfo{URL: rawURL}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, info, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", x.userAgent)

	resp, err := x.client.Do(req)
	if err != nil {
		return nil, info, fmt.Errorf("fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, info, fmt.Errorf("fetch URL: server returned %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, x.maxBytes+1))
	if err != nil {
		return nil, info, fmt.Errorf("read response: %w", err)
	}
	if int64(len(data)) > x.maxBytes {
		return nil, info, fmt.Errorf("response exceeds %d bytes", x.maxBytes)
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		if mt, params, err := mime.ParseMediaType(ct); err == nil {
			info.MIMEType = mt
			info.Charset = params["charset"]
		}
	}
	urlPath := strings.Split(rawURL, "?")[0]
	info.Extension = strings.ToLower(path.Ext(urlPath))
	if info.Extension != "" {
		info.Filename = path.Base(urlPath)
	}
	return data, info, nil
}

// expectedMIME lists the sniffed types each binary format should have.
var expectedMIME = map[anything2md.Format][]string{
	anything2md.FormatPDF:  {"application/pdf"},
	anything2md.FormatDocx: {"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "application/zip"},
	anything2md.FormatXLSX: {"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "application/zip"},
	anything2md.FormatXLS:  {"application/vnd.ms-excel", "application/x-ole-storage"},
	anything2md.FormatEPUB: {"application/epub+zip", "application/zip"},
	anything2md.FormatRTF:  {"text/rtf", "application/rtf"},
}

// sniffWarning reports when the content does not look like the format the
// caller selected. Conversion still went ahead.
func sniffWarning(data []byte, format anything2md.Format, info anything2md.StreamInfo) string {
	want, ok := expectedMIME[format]
	if !ok {
		return ""
	}
	detected := mimetype.Detect(data)
	for m := detected; m != nil; m = m.Parent() {
		for _, w := range want {
			if m.Is(w) {
				return ""
			}
		}
	}
	name := info.Filename
	if name == "" {
		name = "input"
	}
	return fmt.Sprintf("%s looks like %s rather than %s", name, detected.String(), format)
}
