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
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/dlclark/regexp2"
)

// XMLConverter renders XML-like markup as nested bullets. Elements are
// paired by name with a lazy backreference match rather than a tag stack,
// so same-name elements nested inside each other can pair incorrectly.
type XMLConverter struct{}

// NewXMLConverter creates a new XMLConverter.
func NewXMLConverter() *XMLConverter {
	return &XMLConverter{}
}

// xmlMatchTimeout bounds a single element match.
const xmlMatchTimeout = 2 * time.Second

var (
	// reXMLElement only matches at the start position it is given.
	reXMLElement = newXMLElementRegexp()

	reXMLHasTag  = regexp.MustCompile(`<[A-Za-z_][\w:.-]*(?:\s[^>]*)?/?>`)
	reXMLComment = regexp.MustCompile(`(?s)<!--.*?-->`)
	reXMLProlog  = regexp.MustCompile(`(?s)<\?.*?\?>`)
	reXMLDoctype = regexp.MustCompile(`(?i)<!DOCTYPE[^>]*>`)
	reXMLCDATA   = regexp.MustCompile(`(?s)<!\[CDATA\[(.*?)\]\]>`)
)

func newXMLElementRegexp() *regexp2.Regexp {
	re := regexp2.MustCompile(`\G<([A-Za-z_][\w:.-]*)(?:\s[^>]*)?(?<!/)>([\s\S]*?)</\1\s*>`, regexp2.None)
	re.MatchTimeout = xmlMatchTimeout
	return re
}

func (c *XMLConverter) Convert(raw string) *ConversionResult {
	if strings.TrimSpace(raw) == "" {
		return failed(malformed(FormatXML, "no data"), "")
	}

	tree, err := ParseXML(raw)
	if err != nil {
		return failed(&MalformedInputError{Format: FormatXML, Err: err}, "")
	}
	if len(tree.Children) == 0 {
		return failed(malformed(FormatXML, "could not parse XML structure: no matching element pairs found"), "")
	}
	return succeeded(Render(tree))
}

// ParseXML strips comments and declarations and returns a grouping node
// holding every top-level element pair found in raw.
func ParseXML(raw string) (*Tree, error) {
	content := reXMLComment.ReplaceAllString(raw, "")
	content = reXMLProlog.ReplaceAllString(content, "")
	content = reXMLDoctype.ReplaceAllString(content, "")

	children, err := matchElements(content)
	if err != nil {
		return nil, err
	}
	return &Tree{Children: children}, nil
}

// matchElements scans content left to right for element pairs. The
// backreference match only runs at an opening tag that ends with '>' and
// has a closing tag of the same name somewhere after it; every other start
// position cannot match, and trying it would rescan the rest of the input.
func matchElements(content string) ([]*Tree, error) {
	rs := []rune(content)
	lastClose := closingTags(rs)

	var nodes []*Tree
	gt := -1 // index of the first '>' at or after the current position
	for i := 0; i < len(rs); i++ {
		if rs[i] != '<' {
			continue
		}
		nameEnd := scanXMLName(rs, i+1)
		if nameEnd == i+1 || nameEnd == len(rs) {
			continue
		}
		if next := rs[nameEnd]; next != '>' && !unicode.IsSpace(next) {
			continue
		}
		if gt < nameEnd {
			gt = indexRune(rs, nameEnd, '>')
			if gt < 0 {
				break
			}
		}
		if rs[gt-1] == '/' {
			continue
		}
		if closeAt, ok := lastClose[string(rs[i+1:nameEnd])]; !ok || closeAt < gt {
			continue
		}

		m, err := reXMLElement.FindRunesMatchStartingAt(rs, i)
		if err != nil {
			return nil, fmt.Errorf("match element at offset %d: %w", i, err)
		}
		if m == nil {
			continue
		}

		node := &Tree{Name: m.GroupByNumber(1).String()}
		inner := m.GroupByNumber(2).String()
		if reXMLHasTag.MatchString(inner) {
			if node.Children, err = matchElements(inner); err != nil {
				return nil, err
			}
		} else {
			node.Text = xmlText(inner)
		}
		nodes = append(nodes, node)
		i = m.Index + m.Length - 1
	}
	return nodes, nil
}

// closingTags returns the start of the last "</name>" for every name.
func closingTags(rs []rune) map[string]int {
	last := make(map[string]int)
	for i := 0; i+1 < len(rs); i++ {
		if rs[i] != '<' || rs[i+1] != '/' {
			continue
		}
		end := scanXMLName(rs, i+2)
		if end == i+2 {
			continue
		}
		j := end
		for j < len(rs) && unicode.IsSpace(rs[j]) {
			j++
		}
		if j < len(rs) && rs[j] == '>' {
			last[string(rs[i+2:end])] = i
		}
	}
	return last
}

// scanXMLName returns the end of the element name starting at i, or i when
// there is none.
func scanXMLName(rs []rune, i int) int {
	if i >= len(rs) || !(rs[i] == '_' || rs[i] < unicode.MaxASCII && unicode.IsLetter(rs[i])) {
		return i
	}
	j := i + 1
	for j < len(rs) {
		r := rs[j]
		if r == ':' || r == '.' || r == '-' || r == '_' ||
			unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) || unicode.Is(unicode.Pc, r) {
			j++
			continue
		}
		break
	}
	return j
}

func indexRune(rs []rune, from int, r rune) int {
	for i := from; i < len(rs); i++ {
		if rs[i] == r {
			return i
		}
	}
	return -1
}

// xmlText unwraps CDATA, decodes entities and collapses whitespace.
func xmlText(s string) string {
	s = reXMLCDATA.ReplaceAllString(s, "${1}")
	s = entityReplacer.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
