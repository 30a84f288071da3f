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

// Document is the intermediate structure a parser produces before
// rendering. The variants are *Table, *Tree, *List and PlainText.
type Document interface {
	document()
}

// Table is an ordered list of rows. The first row is the header. Rows may
// have differing cell counts.
type Table struct {
	Rows [][]string
}

// Tree is a named node with a flat text value and ordered children. A node
// with an empty Name only groups its children.
type Tree struct {
	Name     string
	Text     string
	Children []*Tree
}

// List is an ordered sequence of entries.
type List struct {
	Entries []ListEntry
}

// ListEntry is either a leaf (Value) or a labeled nested Child, which is a
// *List or a *Table.
type ListEntry struct {
	Label string
	Value string
	Child Document
}

// PlainText is already-normalized flat text.
type PlainText string

func (*Table) document()    {}
func (*Tree) document()     {}
func (*List) document()     {}
func (PlainText) document() {}
