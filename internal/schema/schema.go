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

// Package schema defines the compact, runtime-available field table
// ("MiniTable" in the teacher's vocabulary) that the decoder and encoder are
// directed by. A MessageTable describes exactly the layout and wire
// semantics of one message type; it carries no knowledge of .proto syntax or
// of any particular Go struct — it is built once, by hand or by a code
// generator external to this package, and then reused for every decode and
// encode of that message type.
package schema

import "sort"

// FieldType is the sum of the 18 protobuf scalar/composite field types.
type FieldType uint8

const (
	Double FieldType = iota
	Float
	Int32
	Int64
	UInt32
	UInt64
	SInt32
	SInt64
	Fixed32
	Fixed64
	SFixed32
	SFixed64
	Bool
	String
	Bytes
	Enum
	Message
	Group // Deprecated; parse-rejected wherever it appears on the wire.
)

// WireType values, matching internal/wire.WireType numerically so callers can
// compare a decoded tag's wire type against this directly without an import
// of internal/wire (schema intentionally has no dependency on wire or
// runtime, to keep the schema graph a pure data description).
type WireType int8

const (
	WTVarint          WireType = 0
	WTFixed64         WireType = 1
	WTLengthDelimited WireType = 2
	WTFixed32         WireType = 5
)

// WireType returns the wire type used to encode values of type t.
func (t FieldType) WireType() WireType {
	switch t {
	case Double, Fixed64, SFixed64:
		return WTFixed64
	case Float, Fixed32, SFixed32:
		return WTFixed32
	case String, Bytes, Message, Group:
		return WTLengthDelimited
	default: // Int32, Int64, UInt32, UInt64, SInt32, SInt64, Bool, Enum
		return WTVarint
	}
}

// Packable reports whether t may appear as a packed repeated field; this is
// true for every numeric scalar and false for string/bytes/message/group.
func (t FieldType) Packable() bool {
	switch t {
	case String, Bytes, Message, Group:
		return false
	default:
		return true
	}
}

// FixedSize returns the wire-encoded size of a single element of a
// fixed-width type, or 0 for variable-width types (varint-coded scalars and
// length-delimited types).
func (t FieldType) FixedSize() int {
	switch t {
	case Double, Fixed64, SFixed64:
		return 8
	case Float, Fixed32, SFixed32:
		return 4
	default:
		return 0
	}
}

// MemSize is the number of bytes a single element of this type occupies in a
// Message's data block (for repeated fields, this is the element_size of the
// RepeatedField).
func (t FieldType) MemSize() int {
	switch t {
	case Bool:
		return 1
	case Double, Int64, UInt64, SInt64, Fixed64, SFixed64:
		return 8
	case String, Bytes:
		return stringViewSize
	case Message, Group:
		return 8 // pointer-sized slot (stored as *runtime.Message).
	default: // Float, Int32, UInt32, SInt32, Fixed32, SFixed32, Enum
		return 4
	}
}

// stringViewSize is the number of data-block bytes reserved for a
// string/bytes slot. internal/runtime does not read it: it keeps the
// StringView itself in a side table keyed by the field's offset, so this is
// a layout reservation only.
const stringViewSize = 24 // ptr + len + is_aliased, rounded to 8-byte alignment.

// FieldMode is whether a field is a plain scalar, a repeated field, or a map.
type FieldMode uint8

const (
	Scalar FieldMode = iota
	Repeated
	Map
)

// NoSubmessage is the sentinel value of FieldDescriptor.SubmsgIndex for
// fields that are not message- or group-typed.
const NoSubmessage = ^uint32(0)

// FieldDescriptor is the schema record for one field of a message.
type FieldDescriptor struct {
	Number uint32
	Offset uint32

	// Presence encodes how this field's "is it set" state is tracked:
	//   > 0: hasbit index, 1-based (bit Presence-1 in the hasbits region).
	//   < 0: oneof group index, encoded as -1-idx.
	//   = 0: proto3 implicit presence (derived from the stored value).
	Presence int32

	// SubmsgIndex indexes into the owning table's Submessages slice when
	// Type is Message or Group; otherwise it is NoSubmessage.
	SubmsgIndex uint32

	Type     FieldType
	Mode     FieldMode
	IsPacked bool

	// MapKeyType/MapValueType are meaningful only when Mode == Map.
	MapKeyType   FieldType
	MapValueType FieldType
}

// IsOneof reports whether this field belongs to a oneof group.
func (f *FieldDescriptor) IsOneof() bool { return f.Presence < 0 }

// OneofIndex returns this field's oneof group index. Only valid if IsOneof.
func (f *FieldDescriptor) OneofIndex() int { return int(-1 - f.Presence) }

// HasbitIndex returns this field's hasbit index. Only valid if Presence > 0.
func (f *FieldDescriptor) HasbitIndex() int { return int(f.Presence - 1) }

// MessageTable is the schema for one message type: the set of fields, a
// reference table for message/group-typed fields, and the layout of the
// flat data block a runtime.Message allocates for values of this type.
type MessageTable struct {
	// Fields, sorted ascending by Number. Do not mutate after Build.
	Fields []FieldDescriptor

	// Submessages holds the tables that SubmsgIndex refers into. May contain
	// a self-reference for recursive message types (e.g. a tree node);
	// because Go pointers keep the referent alive and the schema graph never
	// mutates after construction, a cycle here is completely ordinary.
	Submessages []*MessageTable

	// Size is the total byte length of a Message's data block for this type.
	Size uint32

	// HasbitBytes is how many bytes at the start of the data block are
	// reserved for hasbits.
	HasbitBytes uint32

	// OneofCount is the number of distinct oneof groups; each occupies a
	// 4-byte case tag immediately after the hasbits region.
	OneofCount uint32

	// DenseBelow is the largest N such that fields numbered 1..N exist and
	// occupy Fields[0:N] in order, enabling O(1) lookup for low field
	// numbers without falling back to binary search.
	DenseBelow uint32

	// Name is a human-readable label, used only for error messages and
	// debugging; it carries no wire semantics.
	Name string
}

// FieldByNumber looks up the field with the given number, in O(1) when it is
// within the dense prefix and by binary search otherwise. Returns nil if no
// such field exists in this table.
func (t *MessageTable) FieldByNumber(n uint32) *FieldDescriptor {
	if n >= 1 && n <= t.DenseBelow && int(n) <= len(t.Fields) && t.Fields[n-1].Number == n {
		return &t.Fields[n-1]
	}

	fields := t.Fields
	i := sort.Search(len(fields), func(i int) bool { return fields[i].Number >= n })
	if i < len(fields) && fields[i].Number == n {
		return &fields[i]
	}
	return nil
}

// Submessage returns the table referenced by f.SubmsgIndex. Panics if f is
// not message/group-typed; callers are expected to check f.Type first, the
// same way the decoder and encoder do.
func (t *MessageTable) Submessage(f *FieldDescriptor) *MessageTable {
	return t.Submessages[f.SubmsgIndex]
}

// MapEntryTable synthesizes the two-field MessageTable for a map field's
// wire representation: field 1 is the key, field 2 is the value, exactly as
// spec'd for Protobuf's map encoding. The returned table is built fresh each
// call; nothing caches it, and the decoder calls this once per map entry.
func MapEntryTable(f *FieldDescriptor, valueSubmsg *MessageTable) *MessageTable {
	const keyOffset = 0
	valueOffset := roundUp(keyOffset+f.MapKeyType.MemSize(), 8)
	size := roundUp(valueOffset+f.MapValueType.MemSize(), 8)

	key := FieldDescriptor{
		Number:      1,
		Offset:      keyOffset,
		Type:        f.MapKeyType,
		Mode:        Scalar,
		SubmsgIndex: NoSubmessage,
	}
	value := FieldDescriptor{
		Number:      2,
		Offset:      uint32(valueOffset),
		Type:        f.MapValueType,
		Mode:        Scalar,
		SubmsgIndex: NoSubmessage,
	}
	var submsgs []*MessageTable
	if f.MapValueType == Message {
		value.SubmsgIndex = 0
		submsgs = []*MessageTable{valueSubmsg}
	}

	return &MessageTable{
		Fields:      []FieldDescriptor{key, value},
		Submessages: submsgs,
		Size:        uint32(size),
		DenseBelow:  2,
		Name:        "map_entry",
	}
}

func roundUp(n, to int) int { return (n + to - 1) &^ (to - 1) }
