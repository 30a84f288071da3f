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
	"regexp"
	"strings"
)

// TextConverter is the fallback converter for free text. It never fails.
type TextConverter struct{}

// NewTextConverter creates a new TextConverter.
func NewTextConverter() *TextConverter {
	return &TextConverter{}
}

var reRunOfSpaces = regexp.MustCompile(` {3,}`)

func (c *TextConverter) Convert(raw string) *ConversionResult {
	text := NormalizeText(raw)
	if text == "" {
		return succeeded("", "no data")
	}
	return succeeded(text)
}

// NormalizeText unifies line endings, expands tabs to two spaces, collapses
// runs of three or more spaces to one and runs of three or more newlines to
// two, then trims. It is idempotent.
func NormalizeText(s string) string {
	s = reCRLF.ReplaceAllString(s, "\n")
	s = strings.ReplaceAll(s, "\t", "  ")
	s = reRunOfSpaces.ReplaceAllString(s, " ")
	s = reMultipleNewlines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
