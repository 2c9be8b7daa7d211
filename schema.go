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

package dynpb

import "github.com/nizox/dynpb/internal/schema"

// FieldType is the sum of the 18 Protobuf scalar/composite field types.
type FieldType = schema.FieldType

const (
	Double       = schema.Double
	Float        = schema.Float
	Int32        = schema.Int32
	Int64        = schema.Int64
	UInt32       = schema.UInt32
	UInt64       = schema.UInt64
	SInt32       = schema.SInt32
	SInt64       = schema.SInt64
	Fixed32      = schema.Fixed32
	Fixed64      = schema.Fixed64
	SFixed32     = schema.SFixed32
	SFixed64     = schema.SFixed64
	Bool         = schema.Bool
	String       = schema.String
	Bytes        = schema.Bytes
	Enum         = schema.Enum
	MessageField = schema.Message // Named MessageField to avoid colliding with the Message type.
	Group        = schema.Group
)

// FieldMode is whether a field is a plain scalar, a repeated field, or a map.
type FieldMode = schema.FieldMode

const (
	Scalar   = schema.Scalar
	Repeated = schema.Repeated
	Map      = schema.Map
)

// FieldDescriptor is the schema record for one field of a message: its
// number, storage offset, presence tracking, and wire semantics.
type FieldDescriptor = schema.FieldDescriptor

// NoSubmessage is the sentinel FieldDescriptor.SubmsgIndex value for fields
// that are not message- or group-typed.
const NoSubmessage = schema.NoSubmessage

// MessageTable is the compiled schema for one message type: its fields
// (sorted ascending by number), the tables its message-typed fields refer
// to, and the layout of a Message's data block for this type.
//
// A MessageTable is provided to this package as a pre-built value, hand
// authored (see [NewMessageTable]) or emitted by an external schema
// compiler; dynpb does not parse .proto files.
type MessageTable = schema.MessageTable

// MessageTableBuilder hand-authors a MessageTable.
type MessageTableBuilder = schema.Builder

// NewMessageTable starts building a MessageTable for a message named name
// (used only for diagnostics).
func NewMessageTable(name string) *MessageTableBuilder {
	return schema.NewBuilder(name)
}

// MapEntryTable synthesizes the two-field MessageTable (key at field 1,
// value at field 2) that describes a map field's wire representation, for
// callers building schemas that need to reason about map entries directly.
func MapEntryTable(f *FieldDescriptor, valueSubmsg *MessageTable) *MessageTable {
	return schema.MapEntryTable(f, valueSubmsg)
}
