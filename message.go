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

import "github.com/nizox/dynpb/internal/runtime"

// Message is a dynamic message value: a typed, schema-shaped view over a
// data block allocated from an [Arena]. All of Message's accessor methods
// (GetScalar, SetScalar, GetRepeated, GetMap, ClearField, HasField) operate
// in terms of a [FieldDescriptor] drawn from the message's [MessageTable].
type Message = runtime.Message

// NewMessage allocates a zero-initialized Message of the given table from a,
// returning nil if a is exhausted and cannot grow.
func NewMessage(a *Arena, t *MessageTable) *Message {
	return runtime.New(a, t)
}

// Value is the typed variant produced by Message.GetScalar and stored for
// each side of a map entry: exactly one of its fields is meaningful,
// selected by Kind.
type Value = runtime.Value

// Kind identifies which variant of a Value is populated.
type Kind = runtime.Kind

const (
	KindNone    = runtime.KindNone
	KindBool    = runtime.KindBool
	KindI32     = runtime.KindI32
	KindI64     = runtime.KindI64
	KindU32     = runtime.KindU32
	KindU64     = runtime.KindU64
	KindF32     = runtime.KindF32
	KindF64     = runtime.KindF64
	KindString  = runtime.KindString
	KindBytes   = runtime.KindBytes
	KindMessage = runtime.KindMessage
)

// StringView is a borrowed-or-owned view of a string/bytes field's payload.
type StringView = runtime.StringView

// RepeatedField is the backing store for a repeated field.
type RepeatedField = runtime.RepeatedField

// MapField is an insertion-ordered map keyed by a scalar-or-string type.
type MapField = runtime.MapField

// MapKey is a comparable union over the key types protobuf maps permit.
type MapKey = runtime.MapKey
