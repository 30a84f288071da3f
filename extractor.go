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
	"context"
	"io"
)

// Source is what the engine hands to an Extractor: an uploaded file or a URL.
type Source struct {
	Kind InputKind
	File io.ReadSeeker
	Info StreamInfo
	URL  string
}

// Extraction is the text an Extractor pulled out of a Source.
type Extraction struct {
	Text     string
	Title    string
	Warnings []string
}

// Extractor turns files and URLs the engine cannot read itself into text or
// markup. Implementations must honor ctx cancellation.
type Extractor interface {
	Extract(ctx context.Context, src Source, format Format) (*Extraction, error)
}

// ExtractorFunc adapts a plain function to the Extractor interface.
type ExtractorFunc func(ctx context.Context, src Source, format Format) (*Extraction, error)

func (f ExtractorFunc) Extract(ctx context.Context, src Source, format Format) (*Extraction, error) {
	return f(ctx, src, format)
}
