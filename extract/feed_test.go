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
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicholasgasior/anything2md"
)

const testRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Engineering Blog</title>
  <description>Notes from the team</description>
  <item>
    <title>Release 2.0</title>
    <link>https://example.com/release-2</link>
    <pubDate>Mon, 02 Jun 2025 10:00:00 GMT</pubDate>
    <description><![CDATA[<p>We shipped <strong>two</strong> things.</p>]]></description>
  </item>
  <item>
    <title>Plain item</title>
    <description>No markup here.</description>
  </item>
</channel>
</rss>`

func TestExtractFeed(t *testing.T) {
	ex, err := extractFeed([]byte(testRSS))
	require.NoError(t, err)

	assert.Equal(t, "Engineering Blog", ex.Title)
	assert.Contains(t, ex.Text, "# Engineering Blog\n\nNotes from the team\n\n")
	assert.Contains(t, ex.Text, "## [Release 2.0](https://example.com/release-2)\n\nPublished: Mon, 02 Jun 2025 10:00:00 GMT\n\n")
	assert.Contains(t, ex.Text, "We shipped **two** things.")
	assert.Contains(t, ex.Text, "## Plain item\n\nNo markup here.")
	assert.NotContains(t, ex.Text, "<p>")
	assert.Empty(t, ex.Warnings)
}

func TestExtractFeedAtom(t *testing.T) {
	atom := `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Atom Feed</title>
  <updated>2025-01-01T00:00:00Z</updated>
  <entry>
    <title>First</title>
    <updated>2025-01-01T00:00:00Z</updated>
    <content type="html">&lt;p&gt;Body&lt;/p&gt;</content>
  </entry>
</feed>`
	ex, err := extractFeed([]byte(atom))
	require.NoError(t, err)
	assert.Equal(t, "Atom Feed", ex.Title)
	assert.Contains(t, ex.Text, "## First")
	assert.Contains(t, ex.Text, "Body")
}

func TestExtractFeedEmpty(t *testing.T) {
	ex, err := extractFeed([]byte(`<rss version="2.0"><channel><title>Quiet</title></channel></rss>`))
	require.NoError(t, err)
	assert.Equal(t, []string{"feed has no items"}, ex.Warnings)

	_, err = extractFeed([]byte("definitely not a feed"))
	assert.Error(t, err)
}

func TestExtractFeedFromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(testRSS))
	}))
	defer srv.Close()

	ex, err := New().Extract(context.Background(), urlSource(srv.URL+"/feed.xml"), anything2md.FormatRSS)
	require.NoError(t, err)
	assert.Equal(t, "Engineering Blog", ex.Title)
}

// The engine passes feed markdown through untouched apart from whitespace
// normalization.
func TestFeedThroughEngine(t *testing.T) {
	e := anything2md.New(anything2md.WithExtractor(New()))
	got := e.Convert(context.Background(), anything2md.ConversionRequest{
		Format: anything2md.FormatRSS,
		Kind:   anything2md.UploadedFile,
		File:   fileSource([]byte(testRSS), "blog.rss").File,
	})
	require.True(t, got.Succeeded, "diagnostics: %v", got.Diagnostics)
	assert.Equal(t, "Engineering Blog", got.Title)
	assert.Contains(t, got.Markdown, "# Engineering Blog")
}
