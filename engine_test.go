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
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineLocalFormats(t *testing.T) {
	e := New()

	tests := []struct {
		format Format
		input  string
		want   string
	}{
		{FormatCSV, "name,age\n\"Smith, John\",40", "| name | age |\n| --- | --- |\n| Smith, John | 40 |"},
		{FormatHTML, "<h1>Title</h1><p>Hello <b>world</b></p>", "# Title\n\nHello **world**"},
		{FormatJSON, `[{"a":1},{"a":2}]`, "| a |\n| --- |\n| 1 |\n| 2 |"},
		{FormatXML, "<root><name>Alice</name></root>", "- **root**:\n  - **name**: Alice"},
		{FormatText, "a\r\n\r\n\r\nb", "a\n\nb"},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			got := e.ConvertText(tt.format, tt.input)
			require.True(t, got.Succeeded, "diagnostics: %v", got.Diagnostics)
			assert.Equal(t, tt.want, got.Markdown)
		})
	}
}

func TestEngineEmptyInputNeverPanics(t *testing.T) {
	e := New()
	for _, reg := range e.Formats() {
		if reg.Mode != ModeLocal {
			continue
		}
		got := e.ConvertText(reg.Format, "")
		require.NotNil(t, got, reg.Format)
		if got.Succeeded {
			assert.Contains(t, got.Diagnostics, "no data", reg.Format)
		} else {
			assert.NotEmpty(t, got.Diagnostics, reg.Format)
		}
	}
}

func TestEngineUnsupportedFormat(t *testing.T) {
	got := New().ConvertText("yaml", "a: 1")
	assert.False(t, got.Succeeded)
	assert.True(t, IsUnsupportedFormat(got.Err))
	assert.Equal(t, []string{`unsupported format "yaml"`}, got.Diagnostics)
}

func TestEngineInputMismatch(t *testing.T) {
	tests := []struct {
		name string
		req  ConversionRequest
		want string
	}{
		{
			name: "URL to paste-only format",
			req:  ConversionRequest{Format: FormatCSV, Kind: RemoteURL, URL: "https://example.com/a.csv"},
			want: `URL input cannot be used with format "csv": expected pasted text or uploaded file`,
		},
		{
			name: "text to file-only format",
			req:  ConversionRequest{Format: FormatDocx, Kind: PastedText, Text: "hello"},
			want: `pasted text input cannot be used with format "docx": expected uploaded file`,
		},
		{
			name: "file to URL-only format",
			req:  ConversionRequest{Format: FormatWebpage, Kind: UploadedFile, File: strings.NewReader("x")},
			want: `uploaded file input cannot be used with format "webpage": expected URL`,
		},
		{
			name: "text request with URL",
			req:  ConversionRequest{Format: FormatText, Kind: PastedText, Text: "x", URL: "https://example.com"},
			want: `pasted text input cannot be used with format "text": pasted text requests must not carry a file or URL`,
		},
		{
			name: "file request without file",
			req:  ConversionRequest{Format: FormatCSV, Kind: UploadedFile},
			want: `uploaded file input cannot be used with format "csv": no file provided`,
		},
		{
			name: "relative URL",
			req:  ConversionRequest{Format: FormatPDF, Kind: RemoteURL, URL: "/files/a.pdf"},
			want: `URL input cannot be used with format "pdf": "/files/a.pdf" is not an absolute http(s) URL`,
		},
		{
			name: "non-http URL",
			req:  ConversionRequest{Format: FormatRSS, Kind: RemoteURL, URL: "ftp://example.com/feed"},
			want: `URL input cannot be used with format "rss": "ftp://example.com/feed" is not an absolute http(s) URL`,
		},
	}

	called := false
	e := New(WithExtractor(ExtractorFunc(func(context.Context, Source, Format) (*Extraction, error) {
		called = true
		return &Extraction{}, nil
	})))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Convert(context.Background(), tt.req)
			assert.False(t, got.Succeeded)
			assert.True(t, IsInputMismatch(got.Err))
			assert.Equal(t, []string{tt.want}, got.Diagnostics)
			assert.Empty(t, got.Markdown)
		})
	}
	assert.False(t, called, "validation failures must not reach the extractor")
}

func TestEngineUploadedText(t *testing.T) {
	e := New()

	got := e.Convert(context.Background(), ConversionRequest{
		Format: FormatCSV,
		Kind:   UploadedFile,
		File:   strings.NewReader("\xEF\xBB\xBFa,b\n1,2"),
		Info:   StreamInfo{Filename: "data.csv", Extension: ".csv"},
	})
	require.True(t, got.Succeeded)
	assert.Equal(t, "| a | b |\n| --- | --- |\n| 1 | 2 |", got.Markdown)

	got = e.Convert(context.Background(), ConversionRequest{
		Format: FormatText,
		Kind:   UploadedFile,
		File:   bytes.NewReader([]byte("caf\xe9 cr\xe8me")),
		Info:   StreamInfo{Charset: "windows-1252"},
	})
	require.True(t, got.Succeeded)
	assert.Equal(t, "café crème", got.Markdown)

	got = e.Convert(context.Background(), ConversionRequest{
		Format: FormatText,
		Kind:   UploadedFile,
		File:   bytes.NewReader([]byte{0x82, 0xa0, 0x82, 0xa2, 0x82, 0xa4}),
		Info:   StreamInfo{Charset: "cp932"},
	})
	require.True(t, got.Succeeded)
	assert.Equal(t, "あいう", got.Markdown)
}

func TestEngineRejectsBinaryUpload(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	got := New().Convert(context.Background(), ConversionRequest{
		Format: FormatJSON,
		Kind:   UploadedFile,
		File:   bytes.NewReader(png),
	})
	assert.False(t, got.Succeeded)
	assert.True(t, IsInputMismatch(got.Err))
	assert.Equal(t, []string{`uploaded file input cannot be used with format "json": file content looks like image/png, not text`}, got.Diagnostics)
}

func TestEngineRemoteOutputs(t *testing.T) {
	tests := []struct {
		name  string
		req   ConversionRequest
		ex    Extraction
		want  string
		title string
		diags []string
	}{
		{
			name:  "markup goes through the html renderer",
			req:   ConversionRequest{Format: FormatDocx, Kind: UploadedFile, File: strings.NewReader("PK")},
			ex:    Extraction{Text: "<h1>Report</h1><p>a &amp; b</p>", Title: "Quarterly", Warnings: []string{"1 equation(s) were dropped"}},
			want:  "# Report\n\na & b",
			title: "Quarterly",
			diags: []string{"1 equation(s) were dropped"},
		},
		{
			name:  "markup title wins over extraction title",
			req:   ConversionRequest{Format: FormatGoogleDocs, Kind: RemoteURL, URL: "https://docs.google.com/document/d/abc/edit"},
			ex:    Extraction{Text: "<html><head><title>Doc Title</title></head><body><p>x</p></body></html>", Title: "other"},
			want:  "x",
			title: "Doc Title",
		},
		{
			name: "plain text goes through the normalizer",
			req:  ConversionRequest{Format: FormatPDF, Kind: RemoteURL, URL: " https://example.com/a.pdf "},
			ex:   Extraction{Text: "a\t\tb\r\n\r\n\r\n\r\nc"},
			want: "a b\n\nc",
		},
		{
			name: "markdown passes through",
			req:  ConversionRequest{Format: FormatXLSX, Kind: UploadedFile, File: strings.NewReader("PK")},
			ex:   Extraction{Text: "## Sheet1\n\n| a |\n| --- |\n| 1 |\n"},
			want: "## Sheet1\n\n| a |\n| --- |\n| 1 |",
		},
		{
			name:  "empty markdown",
			req:   ConversionRequest{Format: FormatRSS, Kind: RemoteURL, URL: "https://example.com/feed.xml"},
			ex:    Extraction{Warnings: []string{"feed has no items"}},
			diags: []string{"feed has no items", "no data"},
		},
		{
			name:  "markup warnings come first",
			req:   ConversionRequest{Format: FormatWebpage, Kind: RemoteURL, URL: "https://example.com"},
			ex:    Extraction{Text: `<img src="x.png">`, Warnings: []string{"short"}},
			want:  "![](x.png)",
			diags: []string{"short", "1 image(s) without alt text were preserved with empty captions"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen Source
			var seenFormat Format
			e := New(WithExtractor(ExtractorFunc(func(_ context.Context, src Source, f Format) (*Extraction, error) {
				seen, seenFormat = src, f
				ex := tt.ex
				return &ex, nil
			})))

			got := e.Convert(context.Background(), tt.req)
			require.True(t, got.Succeeded, "diagnostics: %v", got.Diagnostics)
			assert.Equal(t, tt.want, got.Markdown)
			assert.Equal(t, tt.title, got.Title)
			assert.Equal(t, tt.diags, got.Diagnostics)

			assert.Equal(t, tt.req.Format, seenFormat)
			assert.Equal(t, tt.req.Kind, seen.Kind)
			assert.Equal(t, strings.TrimSpace(tt.req.URL), seen.URL)
		})
	}
}

func TestEngineRemoteFailures(t *testing.T) {
	ctx := context.Background()
	url := ConversionRequest{Format: FormatWebpage, Kind: RemoteURL, URL: "https://example.com/slow"}

	t.Run("no extractor", func(t *testing.T) {
		got := New().Convert(ctx, url)
		assert.False(t, got.Succeeded)
		assert.True(t, IsRemoteExtraction(got.Err))
		assert.Equal(t, []string{"webpage extraction failed: no extractor configured"}, got.Diagnostics)
	})

	t.Run("collaborator error is passed through", func(t *testing.T) {
		e := New(WithExtractor(ExtractorFunc(func(context.Context, Source, Format) (*Extraction, error) {
			return nil, errors.New("fetch URL: server returned 404 Not Found")
		})))
		got := e.Convert(ctx, url)
		assert.False(t, got.Succeeded)
		assert.True(t, IsRemoteExtraction(got.Err))
		assert.Equal(t, []string{"webpage extraction failed: fetch URL: server returned 404 Not Found"}, got.Diagnostics)
	})

	t.Run("timeout with an extractor that ignores ctx", func(t *testing.T) {
		release := make(chan struct{})
		defer close(release)
		e := New(
			WithRemoteTimeout(50*time.Millisecond),
			WithExtractor(ExtractorFunc(func(context.Context, Source, Format) (*Extraction, error) {
				<-release
				return &Extraction{Text: "late"}, nil
			})),
		)

		start := time.Now()
		got := e.Convert(ctx, url)
		assert.Less(t, time.Since(start), 5*time.Second)
		assert.False(t, got.Succeeded)
		assert.Equal(t, []string{"webpage extraction failed: timed out after 50ms"}, got.Diagnostics)
	})

	t.Run("caller cancellation", func(t *testing.T) {
		e := New(WithExtractor(ExtractorFunc(func(ctx context.Context, _ Source, _ Format) (*Extraction, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})))
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		got := e.Convert(cctx, url)
		assert.False(t, got.Succeeded)
		assert.Equal(t, []string{"webpage extraction failed: request cancelled"}, got.Diagnostics)
	})
}

func TestEngineRegisterCustomFormat(t *testing.T) {
	e := New()
	e.Register(Registration{
		Format:  "shout",
		Mode:    ModeLocal,
		Accepts: []InputKind{PastedText},
		Converter: ConverterFunc(func(raw string) *ConversionResult {
			return succeeded(strings.ToUpper(raw) + "   \n\n\n\n!")
		}),
	})

	got := e.ConvertText("shout", "hey")
	require.True(t, got.Succeeded)
	assert.Equal(t, "HEY\n\n!", got.Markdown)
}

func TestEngineConverterFailuresAreContained(t *testing.T) {
	e := New()
	e.Register(Registration{Format: "panics", Mode: ModeLocal, Accepts: textInputs,
		Converter: ConverterFunc(func(string) *ConversionResult { panic("index out of range") })})
	e.Register(Registration{Format: "nil", Mode: ModeLocal, Accepts: textInputs,
		Converter: ConverterFunc(func(string) *ConversionResult { return nil })})

	got := e.ConvertText("panics", "x")
	assert.False(t, got.Succeeded)
	assert.True(t, IsMalformedInput(got.Err))
	assert.Equal(t, []string{"converter panicked: index out of range"}, got.Diagnostics)

	got = e.ConvertText("nil", "x")
	assert.False(t, got.Succeeded)
	assert.Equal(t, []string{"converter returned no result"}, got.Diagnostics)
}

func TestEngineLogging(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	e := New(WithLogger(logger))

	e.ConvertText(FormatJSON, "{oops")
	e.ConvertText(FormatCSV, "a\n1")

	entries := hook.AllEntries()
	require.Len(t, entries, 2)

	assert.Equal(t, logrus.WarnLevel, entries[0].Level)
	assert.Equal(t, "conversion failed", entries[0].Message)
	assert.Equal(t, FormatJSON, entries[0].Data["format"])
	assert.NotEmpty(t, entries[0].Data["request_id"])

	assert.Equal(t, logrus.DebugLevel, entries[1].Level)
	assert.Equal(t, "conversion rendered", entries[1].Message)
	assert.NotEqual(t, entries[0].Data["request_id"], entries[1].Data["request_id"])
}
