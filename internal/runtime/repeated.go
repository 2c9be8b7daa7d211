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

package runtime

import (
	"github.com/nizox/dynpb/internal/errs"
	"github.com/nizox/dynpb/internal/schema"
)

// MaxRepeatedElements is the hard cap on the number of elements a single
// repeated field may hold; exceeding it during decode yields OutOfMemory.
const MaxRepeatedElements = 10_000_000

// RepeatedField is the backing store for a repeated field. Exactly one of
// the typed slices below is in use for a given instance, selected by
// ElemType; this is the memory-safe-language rendering of the spec's
// {data, count, capacity, element_size} layout (see internal/runtime's
// package doc), with growth following the same doubling-from-8 policy.
type RepeatedField struct {
	ElemType schema.FieldType

	Bools    []bool
	I32s     []int32
	I64s     []int64
	U32s     []uint32
	U64s     []uint64
	F32s     []float32
	F64s     []float64
	Strings  []StringView
	Messages []*Message
}

// Len returns the number of elements currently stored.
func (r *RepeatedField) Len() int {
	switch kindOf(r.ElemType) {
	case KindBool:
		return len(r.Bools)
	case KindI32:
		return len(r.I32s)
	case KindI64:
		return len(r.I64s)
	case KindU32:
		return len(r.U32s)
	case KindU64:
		return len(r.U64s)
	case KindF32:
		return len(r.F32s)
	case KindF64:
		return len(r.F64s)
	case KindString, KindBytes:
		return len(r.Strings)
	case KindMessage:
		return len(r.Messages)
	default:
		return 0
	}
}

// growAppend appends v to s, doubling capacity starting at 8, and rejects
// growth past MaxRepeatedElements.
func growAppend[T any](s []T, v T) ([]T, *errs.Error) {
	if len(s) >= MaxRepeatedElements {
		return s, errs.Newf(errs.OutOfMemory, 0, "repeated field exceeds %d elements", MaxRepeatedElements)
	}
	if cap(s) == len(s) {
		newCap := 8
		if cap(s) > 0 {
			newCap = cap(s) * 2
		}
		grown := make([]T, len(s), newCap)
		copy(grown, s)
		s = grown
	}
	return append(s, v), nil
}

// AppendBool appends a bool element.
func (r *RepeatedField) AppendBool(v bool) *errs.Error {
	s, err := growAppend(r.Bools, v)
	r.Bools = s
	return err
}

// AppendI32 appends an int32-family element (int32/sint32/sfixed32/enum).
func (r *RepeatedField) AppendI32(v int32) *errs.Error {
	s, err := growAppend(r.I32s, v)
	r.I32s = s
	return err
}

// AppendI64 appends an int64-family element.
func (r *RepeatedField) AppendI64(v int64) *errs.Error {
	s, err := growAppend(r.I64s, v)
	r.I64s = s
	return err
}

// AppendU32 appends a uint32-family element.
func (r *RepeatedField) AppendU32(v uint32) *errs.Error {
	s, err := growAppend(r.U32s, v)
	r.U32s = s
	return err
}

// AppendU64 appends a uint64-family element.
func (r *RepeatedField) AppendU64(v uint64) *errs.Error {
	s, err := growAppend(r.U64s, v)
	r.U64s = s
	return err
}

// AppendF32 appends a float element.
func (r *RepeatedField) AppendF32(v float32) *errs.Error {
	s, err := growAppend(r.F32s, v)
	r.F32s = s
	return err
}

// AppendF64 appends a double element.
func (r *RepeatedField) AppendF64(v float64) *errs.Error {
	s, err := growAppend(r.F64s, v)
	r.F64s = s
	return err
}

// AppendString appends a string/bytes element.
func (r *RepeatedField) AppendString(v StringView) *errs.Error {
	s, err := growAppend(r.Strings, v)
	r.Strings = s
	return err
}

// AppendMessage appends a submessage element.
func (r *RepeatedField) AppendMessage(v *Message) *errs.Error {
	s, err := growAppend(r.Messages, v)
	r.Messages = s
	return err
}

// Append appends a generic Value, dispatching to the typed slice matching
// its Kind. Used by the decoder, which produces elements as generic Values,
// rather than the type-specific Append* methods.
func (r *RepeatedField) Append(v Value) *errs.Error {
	switch v.Kind {
	case KindBool:
		return r.AppendBool(v.Bool)
	case KindI32:
		return r.AppendI32(v.I32)
	case KindI64:
		return r.AppendI64(v.I64)
	case KindU32:
		return r.AppendU32(v.U32)
	case KindU64:
		return r.AppendU64(v.U64)
	case KindF32:
		return r.AppendF32(v.F32)
	case KindF64:
		return r.AppendF64(v.F64)
	case KindString, KindBytes:
		return r.AppendString(v.Str)
	case KindMessage:
		return r.AppendMessage(v.Msg)
	default:
		return nil
	}
}

// Get returns the element at index i as a generic Value.
func (r *RepeatedField) Get(i int) Value {
	kind := kindOf(r.ElemType)
	switch kind {
	case KindBool:
		return Value{Kind: kind, Bool: r.Bools[i]}
	case KindI32:
		return Value{Kind: kind, I32: r.I32s[i]}
	case KindI64:
		return Value{Kind: kind, I64: r.I64s[i]}
	case KindU32:
		return Value{Kind: kind, U32: r.U32s[i]}
	case KindU64:
		return Value{Kind: kind, U64: r.U64s[i]}
	case KindF32:
		return Value{Kind: kind, F32: r.F32s[i]}
	case KindF64:
		return Value{Kind: kind, F64: r.F64s[i]}
	case KindString, KindBytes:
		return Value{Kind: kind, Str: r.Strings[i]}
	case KindMessage:
		return Value{Kind: kind, Msg: r.Messages[i]}
	default:
		return Value{}
	}
}
