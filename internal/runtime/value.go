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

// Package runtime provides the typed, schema-shaped view over a decoded
// message's raw data block: presence bits, oneof case tags, repeated arrays
// and maps, all addressed the way internal/schema.FieldDescriptor describes
// them.
//
// Numeric scalars and presence/oneof bookkeeping live packed in a flat
// []byte data block, exactly as spec'd. Variable-length and pointer-shaped
// field kinds (strings, submessages, repeated arrays, maps) cannot be
// reinterpreted from raw bytes without losing Go's memory safety the way an
// unsafe-pointer-cast implementation would, so they are kept in small
// offset-keyed side tables on the Message itself; FieldDescriptor.Offset is
// still the single address both storage strategies agree on, so a field's
// identity as "the data at this offset" is preserved even though the
// physical storage for non-scalar kinds isn't literally inside Data.
package runtime

import "github.com/nizox/dynpb/internal/schema"

// Kind identifies which variant of Value is populated.
type Kind uint8

const (
	KindNone Kind = iota
	KindBool
	KindI32
	KindI64
	KindU32
	KindU64
	KindF32
	KindF64
	KindString
	KindBytes
	KindMessage
)

// Value is the typed variant returned by Message.GetScalar, and the typed
// variant stored for each side of a map entry.
type Value struct {
	Kind Kind

	Bool bool
	I32  int32
	I64  int64
	U32  uint32
	U64  uint64
	F32  float32
	F64  float64
	Str  StringView
	Msg  *Message
}

// IsZero reports whether v is the default value for its kind, used to
// implement proto3 implicit presence for scalar fields.
func (v Value) IsZero() bool {
	switch v.Kind {
	case KindNone:
		return true
	case KindBool:
		return !v.Bool
	case KindI32:
		return v.I32 == 0
	case KindI64:
		return v.I64 == 0
	case KindU32:
		return v.U32 == 0
	case KindU64:
		return v.U64 == 0
	case KindF32:
		return v.F32 == 0
	case KindF64:
		return v.F64 == 0
	case KindString, KindBytes:
		return v.Str.Len() == 0
	case KindMessage:
		return v.Msg == nil
	default:
		return true
	}
}

// kindOf maps a schema.FieldType to the Value.Kind used to carry its values.
func kindOf(t schema.FieldType) Kind {
	switch t {
	case schema.Bool:
		return KindBool
	case schema.Int32, schema.SInt32, schema.SFixed32, schema.Enum:
		return KindI32
	case schema.Int64, schema.SInt64, schema.SFixed64:
		return KindI64
	case schema.UInt32, schema.Fixed32:
		return KindU32
	case schema.UInt64, schema.Fixed64:
		return KindU64
	case schema.Float:
		return KindF32
	case schema.Double:
		return KindF64
	case schema.String:
		return KindString
	case schema.Bytes:
		return KindBytes
	case schema.Message, schema.Group:
		return KindMessage
	default:
		return KindNone
	}
}
