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
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	xunicode "golang.org/x/text/encoding/unicode"
)

// charsetAliases covers names in common use that are not WHATWG labels.
var charsetAliases = map[string]string{
	"cp932":        "shift_jis",
	"sjis":         "shift_jis",
	"cp936":        "gbk",
	"cp949":        "euc-kr",
	"cp950":        "big5",
	"utf8":         "utf-8",
	"utf-8-sig":    "utf-8",
	"utf-16-le":    "utf-16le",
	"utf-16-be":    "utf-16be",
	"iso-8859-8-i": "iso-8859-8",
}

// decodeText converts uploaded bytes to UTF-8. A declared charset wins when
// it is known and decodes cleanly; otherwise the encoding is detected.
func decodeText(data []byte, charset string) string {
	if enc := lookupEncoding(charset); enc != nil {
		if out, err := enc.NewDecoder().Bytes(data); err == nil {
			return strings.TrimPrefix(string(out), "\uFEFF")
		}
	}
	return strings.TrimPrefix(detectAndDecode(data), "\uFEFF")
}

func lookupEncoding(name string) encoding.Encoding {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil
	}
	if alias, ok := charsetAliases[name]; ok {
		name = alias
	}
	switch name {
	case "utf-16le":
		return xunicode.UTF16(xunicode.LittleEndian, xunicode.IgnoreBOM)
	case "utf-16be":
		return xunicode.UTF16(xunicode.BigEndian, xunicode.IgnoreBOM)
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil
	}
	return enc
}

// detectAndDecode tries every charset chardet proposes and keeps the
// decoding that reads best. Valid UTF-8 is returned untouched.
func detectAndDecode(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}

	results, err := chardet.NewTextDetector().DetectAll(data)
	if err != nil {
		return strings.ToValidUTF8(string(data), "\uFFFD")
	}

	best, bestScore := "", 0
	for _, r := range results {
		enc := lookupEncoding(r.Charset)
		if enc == nil {
			continue
		}
		out, err := enc.NewDecoder().Bytes(data)
		if err != nil {
			continue
		}
		text := string(out)
		if s := decodeScore(text, r.Confidence); best == "" || s > bestScore {
			best, bestScore = text, s
		}
	}
	if best == "" {
		return strings.ToValidUTF8(string(data), "\uFFFD")
	}
	return best
}

// decodeScore scores decoded text. Replacement and control characters
// count against a candidate; letters and kana count for it. Ideographs
// score lower than kana since a wrong multi-byte guess tends to produce
// rare ideographs.
func decodeScore(text string, confidence int) int {
	score := confidence
	for _, r := range text {
		switch {
		case r == utf8.RuneError:
			score -= 10
		case r < 0x20 && r != '\n' && r != '\r' && r != '\t':
			score -= 5
		case unicode.In(r, unicode.Hiragana, unicode.Katakana):
			score += 5
		case unicode.Is(unicode.Han, r):
			score += 2
		case unicode.IsLetter(r):
			score++
		}
	}
	return score
}
