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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testContainer = `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles><rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/></rootfiles>
</container>`

	testOPF = `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>The Long Road</dc:title>
    <dc:creator>Ann Lee</dc:creator>
    <dc:creator>Bo Park</dc:creator>
    <dc:language>en</dc:language>
  </metadata>
  <manifest>
    <item id="c1" href="ch1.xhtml" media-type="application/xhtml+xml"/>
    <item id="c2" href="text/ch2.xhtml" media-type="application/xhtml+xml"/>
    <item id="css" href="style.css" media-type="text/css"/>
    <item id="gone" href="gone.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine>
    <itemref idref="c1"/>
    <itemref idref="c2"/>
    <itemref idref="css"/>
    <itemref idref="gone"/>
    <itemref idref="nope"/>
  </spine>
</package>`
)

func TestExtractEPUB(t *testing.T) {
	data := buildZip(t,
		[2]string{"mimetype", "application/epub+zip"},
		[2]string{"META-INF/container.xml", testContainer},
		[2]string{"OEBPS/content.opf", testOPF},
		[2]string{"OEBPS/ch1.xhtml", `<html><head><title>Chapter Head</title></head><body><h2>One</h2><p>First.</p></body></html>`},
		[2]string{"OEBPS/text/ch2.xhtml", `<html><body class="c"><h2>Two</h2></body></html>`},
		[2]string{"OEBPS/style.css", "p{}"},
	)

	ex, err := extractEPUB(data)
	require.NoError(t, err)
	assert.Equal(t, "The Long Road", ex.Title)
	assert.Equal(t, "<h1>The Long Road</h1>\n"+
		"<p><b>Authors:</b> Ann Lee, Bo Park</p>\n"+
		"<p><b>Language:</b> en</p>\n"+
		"<section>\n<h2>One</h2><p>First.</p>\n</section>\n"+
		"<section>\n<h2>Two</h2>\n</section>\n", ex.Text)
	assert.Equal(t, []string{"2 chapter(s) listed in the reading order could not be read"}, ex.Warnings)
}

func TestExtractEPUBErrors(t *testing.T) {
	_, err := extractEPUB(buildZip(t, [2]string{"mimetype", "application/epub+zip"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read container")

	_, err = extractEPUB(buildZip(t,
		[2]string{"META-INF/container.xml", `<container><rootfiles/></container>`},
	))
	assert.EqualError(t, err, "container lists no rootfile")
}

func TestIsXHTML(t *testing.T) {
	assert.True(t, isXHTML("a.xhtml", ""))
	assert.True(t, isXHTML("a.HTM", ""))
	assert.True(t, isXHTML("chapter", "application/xhtml+xml"))
	assert.False(t, isXHTML("cover.jpg", "image/jpeg"))
}
