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

import "fmt"

// ConversionResult holds the output of a conversion. A result is always
// returned, even when the conversion failed.
type ConversionResult struct {
	Markdown    string
	Title       string
	Diagnostics []string
	Succeeded   bool

	// Err is the typed cause when Succeeded is false.
	Err error
}

func succeeded(md string, diagnostics ...string) *ConversionResult {
	return &ConversionResult{
		Markdown:    md,
		Diagnostics: diagnostics,
		Succeeded:   true,
	}
}

// failed builds a result for err, using its message as the first diagnostic.
func failed(err error, fallback string) *ConversionResult {
	return &ConversionResult{
		Markdown:    fallback,
		Diagnostics: []string{err.Error()},
		Err:         err,
	}
}

// addDiagnostic appends a formatted diagnostic.
func (r *ConversionResult) addDiagnostic(format string, args ...any) {
	r.Diagnostics = append(r.Diagnostics, fmt.Sprintf(format, args...))
}

// prependDiagnostics puts ds ahead of the existing diagnostics.
func (r *ConversionResult) prependDiagnostics(ds []string) {
	if len(ds) == 0 {
		return
	}
	merged := make([]string, 0, len(ds)+len(r.Diagnostics))
	merged = append(merged, ds...)
	r.Diagnostics = append(merged, r.Diagnostics...)
}
