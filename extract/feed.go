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
	"bytes"
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/mmcdole/gofeed"

	"github.com/nicholasgasior/anything2md"
)

// itemConverter renders HTML item bodies. Feed content is arbitrary
// publisher HTML, so it gets a full converter rather than the engine's
// substitution pass.
var itemConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(
			commonmark.WithHeadingStyle("atx"),
		),
		table.NewTablePlugin(),
	),
)

// extractFeed renders an RSS or Atom feed as markdown.
func extractFeed(data []byte) (*anything2md.Extraction, error) {
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	ex := &anything2md.Extraction{Title: strings.TrimSpace(feed.Title)}
	var b strings.Builder

	if ex.Title != "" {
		fmt.Fprintf(&b, "# %s\n\n", ex.Title)
	}
	if d := strings.TrimSpace(feed.Description); d != "" {
		fmt.Fprintf(&b, "%s\n\n", d)
	}

	failedBodies := 0
	for _, item := range feed.Items {
		if item.Title != "" {
			if item.Link != "" {
				fmt.Fprintf(&b, "## [%s](%s)\n\n", item.Title, item.Link)
			} else {
				fmt.Fprintf(&b, "## %s\n\n", item.Title)
			}
		}

		switch {
		case item.Published != "":
			fmt.Fprintf(&b, "Published: %s\n\n", item.Published)
		case item.Updated != "":
			fmt.Fprintf(&b, "Updated: %s\n\n", item.Updated)
		}

		body := item.Content
		if body == "" {
			body = item.Description
		}
		if strings.Contains(body, "<") && strings.Contains(body, ">") {
			md, err := itemConverter.ConvertString(body)
			if err != nil {
				failedBodies++
			} else {
				body = md
			}
		}
		if body = strings.TrimSpace(body); body != "" {
			b.WriteString(body)
			b.WriteString("\n\n")
		}
	}

	ex.Text = b.String()
	if len(feed.Items) == 0 {
		ex.Warnings = append(ex.Warnings, "feed has no items")
	}
	if failedBodies > 0 {
		ex.Warnings = append(ex.Warnings, fmt.Sprintf("%d item bod(ies) could not be converted and were kept as HTML", failedBodies))
	}
	return ex, nil
}
