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
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicholasgasior/anything2md"
)

// buildZip packs members in the given order.
func buildZip(t *testing.T, members ...[2]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, m := range members {
		w, err := zw.Create(m[0])
		require.NoError(t, err)
		_, err = w.Write([]byte(m[1]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

const (
	testDocxBody = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"
  xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"
  xmlns:m="http://schemas.openxmlformats.org/officeDocument/2006/math">
<w:body>
<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Intro</w:t></w:r></w:p>
<w:p><w:r><w:t xml:space="preserve">Plain </w:t></w:r><w:r><w:rPr><w:b/></w:rPr><w:t>bold</w:t></w:r><w:r><w:t xml:space="preserve"> and </w:t></w:r><w:hyperlink r:id="rId5"><w:r><w:t>a link</w:t></w:r></w:hyperlink></w:p>
<w:p><w:pPr><w:numPr><w:ilvl w:val="0"/><w:numId w:val="1"/></w:numPr></w:pPr><w:r><w:t>item &amp; more</w:t></w:r></w:p>
<w:p><w:pPr><w:pStyle w:val="Deep"/></w:pPr><w:r><w:rPr><w:i/></w:rPr><w:t>Details</w:t></w:r></w:p>
<w:tbl><w:tr><w:tc><w:p><w:r><w:t>A</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>B</w:t></w:r></w:p></w:tc></w:tr></w:tbl>
<w:p><m:oMathPara><m:oMath><m:r><m:t>x</m:t></m:r></m:oMath></m:oMathPara></w:p>
<w:p><w:r><w:drawing/></w:r></w:p>
</w:body>
</w:document>`

	testDocxRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId5" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink" Target="https://example.com/?a=1&amp;b=2" TargetMode="External"/>
</Relationships>`

	testDocxStyles = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:style w:type="paragraph" w:styleId="Deep"><w:name w:val="heading 6"/></w:style>
</w:styles>`

	testDocxCore = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties"
  xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:title>Quarterly Notes</dc:title></cp:coreProperties>`
)

func testDocx(t *testing.T) []byte {
	return buildZip(t,
		[2]string{"word/document.xml", testDocxBody},
		[2]string{"word/_rels/document.xml.rels", testDocxRels},
		[2]string{"word/styles.xml", testDocxStyles},
		[2]string{"docProps/core.xml", testDocxCore},
	)
}

func TestExtractDocx(t *testing.T) {
	ex, err := extractDocx(testDocx(t))
	require.NoError(t, err)

	assert.Equal(t, "Quarterly Notes", ex.Title)
	assert.Equal(t, "<h1>Intro</h1>\n"+
		`<p>Plain <b>bold</b> and <a href="https://example.com/?a=1&amp;b=2">a link</a></p>`+"\n"+
		"<li>item &amp; more</li>\n"+
		"<h4><i>Details</i></h4>\n"+
		"<p>A | B</p>\n", ex.Text)
	assert.Equal(t, []string{
		"1 equation(s) were dropped",
		"1 embedded image(s) were dropped",
	}, ex.Warnings)
}

func TestDocxThroughEngine(t *testing.T) {
	e := anything2md.New(anything2md.WithExtractor(New()))
	got := e.Convert(context.Background(), anything2md.ConversionRequest{
		Format: anything2md.FormatDocx,
		Kind:   anything2md.UploadedFile,
		File:   bytes.NewReader(testDocx(t)),
	})

	require.True(t, got.Succeeded, "diagnostics: %v", got.Diagnostics)
	assert.Equal(t, "Quarterly Notes", got.Title)
	assert.Equal(t, "# Intro\n\n"+
		"Plain **bold** and [a link](https://example.com/?a=1&b=2)\n\n"+
		"- item & more\n\n"+
		"#### *Details*\n\n"+
		"A | B", got.Markdown)
	assert.Contains(t, got.Diagnostics, "1 equation(s) were dropped")
}

func TestExtractDocxErrors(t *testing.T) {
	_, err := extractDocx([]byte("not a zip"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open DOCX")

	_, err = extractDocx(buildZip(t, [2]string{"other.xml", "<x/>"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read document")
}
