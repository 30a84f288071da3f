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

import "io"

// Format identifies an input format in the registry.
type Format string

// Local formats are converted in process from raw text.
const (
	FormatCSV      Format = "csv"
	FormatHTML     Format = "html"
	FormatJSON     Format = "json"
	FormatXML      Format = "xml"
	FormatText     Format = "text"
	FormatNotebook Format = "ipynb"
)

// Remote formats are handed to an Extractor.
const (
	FormatWebpage    Format = "webpage"
	FormatNotion     Format = "notion"
	FormatGoogleDocs Format = "googledocs"
	FormatDocx       Format = "docx"
	FormatPDF        Format = "pdf"
	FormatRTF        Format = "rtf"
	FormatXLSX       Format = "xlsx"
	FormatXLS        Format = "xls"
	FormatEPUB       Format = "epub"
	FormatRSS        Format = "rss"
)

// InputKind describes the shape of a request payload.
type InputKind int

const (
	PastedText InputKind = iota
	UploadedFile
	RemoteURL
)

func (k InputKind) String() string {
	switch k {
	case PastedText:
		return "pasted text"
	case UploadedFile:
		return "uploaded file"
	case RemoteURL:
		return "URL"
	}
	return "unknown input"
}

// StreamInfo holds metadata about an uploaded file.
type StreamInfo struct {
	MIMEType  string
	Extension string
	Charset   string
	Filename  string
	LocalPath string
	URL       string
}

// ConversionRequest is one unit of work for the Engine. Only the payload
// field matching Kind may be set: Text for PastedText, File (and Info) for
// UploadedFile, URL for RemoteURL.
type ConversionRequest struct {
	Format Format
	Kind   InputKind
	Text   string
	File   io.ReadSeeker
	Info   StreamInfo
	URL    string
}

// Converter is the interface all local format converters implement.
// Convert must never panic on malformed input; failures are reported
// through the returned result.
type Converter interface {
	Convert(raw string) *ConversionResult
}

// ConverterFunc adapts a plain function to the Converter interface.
type ConverterFunc func(raw string) *ConversionResult

func (f ConverterFunc) Convert(raw string) *ConversionResult {
	return f(raw)
}
