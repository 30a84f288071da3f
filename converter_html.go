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

	"golang.org/x/net/html"
)

// HTMLConverter flattens HTML-like markup into markdown with an ordered
// sequence of substitutions. It does not build a parse tree, so nested
// elements of the same name are paired with the nearest closing tag.
type HTMLConverter struct {
	keepDataURIs bool
}

// NewHTMLConverter creates a new HTMLConverter. A nil engine uses defaults.
func NewHTMLConverter(e *Engine) *HTMLConverter {
	c := &HTMLConverter{}
	if e != nil {
		c.keepDataURIs = e.keepDataURIs
	}
	return c
}

type markupState struct {
	imagesWithoutAlt int
}

// markupRule replaces every match of re with repl, or with the result of
// expand when it is set.
type markupRule struct {
	re     *regexp.Regexp
	repl   string
	expand func(st *markupState, match string) string
}

var (
	reImgSrc  = regexp.MustCompile(`(?i)\bsrc\s*=\s*(?:"([^"]*)"|'([^']*)')`)
	reImgAlt  = regexp.MustCompile(`(?i)\balt\s*=\s*(?:"([^"]*)"|'([^']*)')`)
	reDataURI = regexp.MustCompile(`(data:[a-zA-Z0-9/+.-]+;base64,)[A-Za-z0-9+/=]{64,}`)
)

// markupRules run top to bottom and the order is part of the output
// contract. Non-rendering blocks go first, images must be rewritten before
// the generic tag strip, and entities are decoded only after it.
var markupRules = []markupRule{
	{re: regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)},
	{re: regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style>`)},
	{re: regexp.MustCompile(`(?is)<head\b[^>]*>.*?</head>`)},

	{re: regexp.MustCompile(`(?is)<h1\b[^>]*>(.*?)</h1>`), repl: "\n# ${1}\n\n"},
	{re: regexp.MustCompile(`(?is)<h2\b[^>]*>(.*?)</h2>`), repl: "\n## ${1}\n\n"},
	{re: regexp.MustCompile(`(?is)<h3\b[^>]*>(.*?)</h3>`), repl: "\n### ${1}\n\n"},
	{re: regexp.MustCompile(`(?is)<h4\b[^>]*>(.*?)</h4>`), repl: "\n#### ${1}\n\n"},
	{re: regexp.MustCompile(`(?i)</?(?:div|section|article|header|footer|main|nav|ul|ol)\b[^>]*>`), repl: "\n"},

	{re: regexp.MustCompile(`(?is)<(?:strong|b)\b[^>]*>(.*?)</(?:strong|b)>`), repl: "**${1}**"},
	{re: regexp.MustCompile(`(?is)<(?:em|i)\b[^>]*>(.*?)</(?:em|i)>`), repl: "*${1}*"},

	{re: regexp.MustCompile(`(?is)<a\b[^>]*?\bhref\s*=\s*["']([^"']*)["'][^>]*>(.*?)</a>`), repl: "[${2}](${1})"},
	{re: regexp.MustCompile(`(?is)<img\b[^>]*>`), expand: expandImage},

	{re: regexp.MustCompile(`(?is)<li\b[^>]*>(.*?)</li>`), repl: "- ${1}\n"},
	{re: regexp.MustCompile(`(?i)<br\s*/?>`), repl: "\n"},
	{re: regexp.MustCompile(`(?i)<hr\b[^>]*>`), repl: "\n\n---\n\n"},
	{re: regexp.MustCompile(`(?is)<blockquote\b[^>]*>(.*?)</blockquote>`), repl: "\n> ${1}\n\n"},
	{re: regexp.MustCompile(`(?is)<pre\b[^>]*>\s*(?:<code\b[^>]*>)?(.*?)(?:</code>\s*)?</pre>`), repl: "\n```\n${1}\n```\n\n"},
	{re: regexp.MustCompile(`(?is)<code\b[^>]*>(.*?)</code>`), repl: "`${1}`"},

	{re: regexp.MustCompile(`(?is)<p\b[^>]*>(.*?)</p>`), repl: "${1}\n\n"},

	{re: regexp.MustCompile(`(?s)<!--.*?-->|</?[a-zA-Z!][^>]*>`)},
}

var entityReplacer = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
	"&amp;", "&",
)

func expandImage(st *markupState, tag string) string {
	src := attrValue(reImgSrc, tag)
	alt := attrValue(reImgAlt, tag)
	if strings.TrimSpace(alt) == "" {
		st.imagesWithoutAlt++
	}
	return "![" + alt + "](" + src + ")"
}

func (c *HTMLConverter) Convert(raw string) *ConversionResult {
	if strings.TrimSpace(raw) == "" {
		return failed(malformed(FormatHTML, "no data"), "")
	}

	title := extractHTMLTitle(raw)

	var st markupState
	md := raw
	for _, rule := range markupRules {
		if rule.expand != nil {
			expand := rule.expand
			md = rule.re.ReplaceAllStringFunc(md, func(m string) string {
				return expand(&st, m)
			})
			continue
		}
		md = rule.re.ReplaceAllString(md, rule.repl)
	}
	md = entityReplacer.Replace(md)
	md = reMultipleNewlines.ReplaceAllString(md, "\n\n")
	md = strings.TrimSpace(md)

	if !c.keepDataURIs {
		md = truncateDataURIs(md)
	}

	result := succeeded(md)
	result.Title = title
	if st.imagesWithoutAlt > 0 {
		result.addDiagnostic("%d image(s) without alt text were preserved with empty captions", st.imagesWithoutAlt)
	}
	if md == "" {
		result.addDiagnostic("markup contained no renderable text")
	}
	return result
}

// attrValue returns the quoted value captured by re. The value may contain
// the other kind of quote.
func attrValue(re *regexp.Regexp, tag string) string {
	m := re.FindStringSubmatch(tag)
	if m == nil {
		return ""
	}
	return m[1] + m[2]
}

// truncateDataURIs truncates large base64 data URIs to data:mime/type;base64...
func truncateDataURIs(md string) string {
	return reDataURI.ReplaceAllString(md, "${1}...")
}

// extractHTMLTitle extracts the title from an HTML document.
func extractHTMLTitle(htmlStr string) string {
	doc, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return ""
	}

	var title string
	var findTitle func(*html.Node)
	findTitle = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "title" {
			if n.FirstChild != nil {
				title = n.FirstChild.Data
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			findTitle(c)
			if title != "" {
				return
			}
		}
	}
	findTitle(doc)

	return strings.TrimSpace(title)
}
