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

// Package zippkg reads zip-based document containers such as DOCX and EPUB:
// member files, OPC relationship parts and relative target resolution.
package zippkg

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"
)

// Package is an opened container.
type Package struct {
	zr *zip.Reader
}

// Open opens a container held in memory.
func Open(data []byte) (*Package, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	return &Package{zr: zr}, nil
}

// ReadFile returns the content of a member. Leading slashes are ignored.
func (p *Package) ReadFile(name string) ([]byte, error) {
	name = strings.TrimPrefix(name, "/")
	for _, f := range p.zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("%q not found in package", name)
}

// Has reports whether the package contains a member.
func (p *Package) Has(name string) bool {
	name = strings.TrimPrefix(name, "/")
	for _, f := range p.zr.File {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Relationship is one entry of an OPC .rels part.
type Relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"`
}

// External reports whether the target is outside the package, as with
// hyperlinks.
func (r Relationship) External() bool {
	return strings.EqualFold(r.TargetMode, "External")
}

// Relationships returns the relationships of part keyed by ID. A part
// without a .rels file has none.
func (p *Package) Relationships(part string) (map[string]Relationship, error) {
	relsPath := RelsPath(part)
	if !p.Has(relsPath) {
		return map[string]Relationship{}, nil
	}
	data, err := p.ReadFile(relsPath)
	if err != nil {
		return nil, err
	}

	var doc struct {
		Relationships []Relationship `xml:"Relationship"`
	}
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", relsPath, err)
	}
	out := make(map[string]Relationship, len(doc.Relationships))
	for _, r := range doc.Relationships {
		out[r.ID] = r
	}
	return out, nil
}

// RelsPath returns the .rels part that belongs to part.
func RelsPath(part string) string {
	dir, base := path.Split(strings.TrimPrefix(part, "/"))
	return dir + "_rels/" + base + ".rels"
}

// Resolve resolves target relative to the directory of base. Absolute
// targets are taken from the package root.
func Resolve(base, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Join(path.Dir(base), target)
}
