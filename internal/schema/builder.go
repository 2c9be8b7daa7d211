// Copyright 2025 The dynpb Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package schema

import "sort"

// Builder hand-authors a MessageTable. It plays the role the teacher's
// internal/tdp/compiler package plays when compiling a protoreflect
// descriptor into a table, minus the descriptor-parsing front end: the
// caller supplies field numbers, offsets and types directly (typically
// generated ahead of time by a schema compiler outside this module's scope,
// or written by hand for tests).
type Builder struct {
	name   string
	fields []FieldDescriptor
	submsg []*MessageTable
	size   uint32
	hasbit uint32
	oneof  uint32
}

// NewBuilder starts a MessageTable for a message named name (used only for
// diagnostics).
func NewBuilder(name string) *Builder {
	return &Builder{name: name}
}

// Submessage registers a referenced table and returns its index, for use as
// a FieldDescriptor.SubmsgIndex. Passing the builder's own in-progress table
// is not supported; for self-referential schemas, build the table once with
// Build and then patch the Submessages slice in place (Go pointers make this
// safe since MessageTable is otherwise immutable after construction).
func (b *Builder) Submessage(t *MessageTable) uint32 {
	for i, s := range b.submsg {
		if s == t {
			return uint32(i)
		}
	}
	b.submsg = append(b.submsg, t)
	return uint32(len(b.submsg) - 1)
}

// Hasbits reserves n bytes at the start of the data block for presence
// bits. Must be called before any Field call that uses a hasbit presence.
func (b *Builder) Hasbits(n uint32) *Builder {
	b.hasbit = n
	return b
}

// Oneofs declares the number of oneof groups in this message, reserving a
// 4-byte case tag per group immediately after the hasbits region.
func (b *Builder) Oneofs(n uint32) *Builder {
	b.oneof = n
	return b
}

// Field appends a field descriptor.
func (b *Builder) Field(f FieldDescriptor) *Builder {
	if f.Type != Message && f.Type != Group {
		f.SubmsgIndex = NoSubmessage
	}
	b.fields = append(b.fields, f)
	return b
}

// DataStart is the byte offset at which field storage begins: past the
// hasbits region and the oneof case tags.
func (b *Builder) DataStart() uint32 {
	return roundUp8(b.hasbit) + b.oneof*4
}

// Build sorts fields by number, computes DenseBelow, and finalizes Size
// (the caller-declared size, or the end of the last field if larger).
func (b *Builder) Build(size uint32) *MessageTable {
	fields := append([]FieldDescriptor(nil), b.fields...)
	sort.Slice(fields, func(i, j int) bool { return fields[i].Number < fields[j].Number })

	var dense uint32
	for i, f := range fields {
		if f.Number == uint32(i+1) {
			dense = uint32(i + 1)
		} else {
			break
		}
	}

	for _, f := range fields {
		if end := f.Offset + uint32(f.Type.MemSize()); end > size {
			size = end
		}
	}

	return &MessageTable{
		Fields:      fields,
		Submessages: b.submsg,
		Size:        size,
		HasbitBytes: roundUp8(b.hasbit),
		OneofCount:  b.oneof,
		DenseBelow:  dense,
		Name:        b.name,
	}
}

func roundUp8(n uint32) uint32 { return (n + 7) &^ 7 }
