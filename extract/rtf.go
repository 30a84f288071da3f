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
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/nicholasgasior/anything2md"
)

// rtfSkipped are destinations whose content is not document text.
var rtfSkipped = map[string]bool{
	"fonttbl": true, "colortbl": true, "stylesheet": true, "listtable": true,
	"listoverridetable": true, "revtbl": true, "rsidtbl": true, "generator": true,
	"pict": true, "object": true, "header": true, "footer": true, "headerl": true,
	"headerr": true, "footerl": true, "footerr": true, "footnote": true,
	"themedata": true, "colorschememapping": true, "latentstyles": true,
	"datastore": true, "xmlnstbl": true, "filetbl": true, "author": true,
	"operator": true, "company": true, "creatim": true, "revtim": true,
	"printim": true, "buptim": true, "subject": true, "keywords": true,
	"doccomm": true, "comment": true,
}

type rtfGroup struct {
	skip    bool
	title   bool
	ucSkip  int
	sawInfo bool
}

// extractRTF strips control words and groups from an RTF document and
// returns its plain text. Code page escapes are decoded as Windows-1252.
func extractRTF(data []byte) (*anything2md.Extraction, error) {
	src := string(data)
	if !strings.HasPrefix(strings.TrimSpace(src), `{\rtf`) {
		return nil, fmt.Errorf("not an RTF document")
	}

	var (
		out     strings.Builder
		title   strings.Builder
		stack   []rtfGroup
		cur     = rtfGroup{ucSkip: 1}
		pending int // characters still to skip after \uN
	)

	emit := func(s string) {
		if pending > 0 {
			pending--
			return
		}
		switch {
		case cur.title:
			title.WriteString(s)
		case !cur.skip:
			out.WriteString(s)
		}
	}

	for i := 0; i < len(src); {
		c := src[i]
		switch c {
		case '{':
			stack = append(stack, cur)
			i++
			if strings.HasPrefix(src[i:], `\*`) {
				cur.skip = true
				i += 2
			}
			continue
		case '}':
			if len(stack) == 0 {
				return nil, fmt.Errorf("unbalanced group at offset %d", i)
			}
			cur = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			i++
			continue
		case '\r', '\n':
			i++
			continue
		case '\\':
		default:
			emit(string(c))
			i++
			continue
		}

		// control sequence
		i++
		if i >= len(src) {
			break
		}
		switch c = src[i]; {
		case c == '\\' || c == '{' || c == '}':
			emit(string(c))
			i++
			continue
		case c == '~':
			emit(" ")
			i++
			continue
		case c == '-' || c == '_':
			i++
			continue
		case c == '\'':
			if i+3 <= len(src) {
				if b, err := strconv.ParseUint(src[i+1:i+3], 16, 8); err == nil {
					emit(string(charmap.Windows1252.DecodeByte(byte(b))))
				}
			}
			i += 3
			continue
		case !isASCIILetter(c):
			i++
			continue
		}

		start := i
		for i < len(src) && isASCIILetter(src[i]) {
			i++
		}
		word := src[start:i]
		numStart := i
		if i < len(src) && src[i] == '-' {
			i++
		}
		for i < len(src) && src[i] >= '0' && src[i] <= '9' {
			i++
		}
		param, hasParam := 0, i > numStart
		if hasParam {
			param, _ = strconv.Atoi(src[numStart:i])
		}
		if i < len(src) && src[i] == ' ' {
			i++
		}

		switch word {
		case "par", "line", "sect", "page", "row":
			emit("\n")
		case "cell":
			emit(" | ")
		case "tab":
			emit("\t")
		case "emdash":
			emit("—")
		case "endash":
			emit("–")
		case "bullet":
			emit("•")
		case "lquote":
			emit("‘")
		case "rquote":
			emit("’")
		case "ldblquote":
			emit("“")
		case "rdblquote":
			emit("”")
		case "uc":
			if hasParam {
				cur.ucSkip = param
			}
		case "u":
			if param < 0 {
				param += 65536
			}
			emit(string(rune(param)))
			pending = cur.ucSkip
		case "info":
			cur.skip = true
			cur.sawInfo = true
		case "title":
			if cur.sawInfo {
				cur.title = true
			}
		case "bin":
			i += param
		default:
			if rtfSkipped[word] {
				cur.skip = true
			}
		}
	}

	ex := &anything2md.Extraction{
		Text:  out.String(),
		Title: strings.TrimSpace(title.String()),
	}
	if len(stack) > 0 {
		ex.Warnings = append(ex.Warnings, fmt.Sprintf("document ended with %d unclosed group(s)", len(stack)))
	}
	return ex, nil
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
