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
	"encoding/binary"
	"math"

	"github.com/nizox/dynpb/internal/arena"
	"github.com/nizox/dynpb/internal/schema"
)

// Message is a typed, schema-shaped view over a data block allocated from an
// Arena. Data's layout is [hasbits | oneof case tags | scalar storage...],
// matching the spec exactly; see the package doc for how non-scalar field
// kinds are stored.
type Message struct {
	Table *schema.MessageTable
	Data  []byte
	Arena *arena.Arena

	strings   map[uint32]StringView
	messages  map[uint32]*Message
	repeateds map[uint32]*RepeatedField
	maps      map[uint32]*MapField

	// Unknown is a slot for bytes of fields not present in Table. The
	// decoder never populates it (unknown fields are skipped) and the
	// encoder never emits it; it exists so a caller that wants
	// unknown-field preservation has somewhere to put it.
	Unknown []byte
}

// New allocates a zero-initialized Message for table t from a, returning nil
// if the arena is exhausted.
func New(a *arena.Arena, t *schema.MessageTable) *Message {
	if t.Size == 0 {
		return &Message{Table: t, Data: nil, Arena: a}
	}
	data := a.Alloc(int(t.Size))
	if data == nil {
		return nil
	}
	return &Message{Table: t, Data: data[:t.Size:t.Size], Arena: a}
}

// --- presence plumbing ---

func (m *Message) hasbit(idx int) bool {
	return m.Data[idx/8]&(1<<uint(idx%8)) != 0
}

func (m *Message) setHasbit(idx int) {
	m.Data[idx/8] |= 1 << uint(idx%8)
}

func (m *Message) clearHasbit(idx int) {
	m.Data[idx/8] &^= 1 << uint(idx%8)
}

func (m *Message) oneofCase(idx int) uint32 {
	off := m.Table.HasbitBytes + uint32(idx)*4
	return binary.LittleEndian.Uint32(m.Data[off:])
}

func (m *Message) setOneofCase(idx int, number uint32) {
	off := m.Table.HasbitBytes + uint32(idx)*4
	binary.LittleEndian.PutUint32(m.Data[off:], number)
}

// HasField reports whether f is set on m, using its hasbit or oneof case tag
// when presence is tracked, or the proto3 implicit-presence rule (value is
// non-default) otherwise.
func (m *Message) HasField(f *schema.FieldDescriptor) bool {
	switch {
	case f.Mode == schema.Repeated:
		return m.GetRepeated(f).Len() > 0
	case f.Mode == schema.Map:
		return m.GetMap(f).Len() > 0
	case f.Presence > 0:
		return m.hasbit(f.HasbitIndex())
	case f.Presence < 0:
		return m.oneofCase(f.OneofIndex()) == f.Number
	default:
		return !m.GetScalar(f).IsZero()
	}
}

// GetScalar returns the value of a scalar field, as the typed Value variant.
// If presence is tracked and the field is not set, it returns a None-kind
// Value for hasbit-tracked fields, or the type's zero value for implicit
// presence (proto3) fields, matching spec's "default zero value" rule.
func (m *Message) GetScalar(f *schema.FieldDescriptor) Value {
	if f.Presence > 0 && !m.hasbit(f.HasbitIndex()) {
		return Value{Kind: KindNone}
	}
	if f.Presence < 0 && m.oneofCase(f.OneofIndex()) != f.Number {
		return Value{Kind: KindNone}
	}
	return m.readScalar(f)
}

// readScalar reads the raw stored value at f's offset without consulting
// presence; GetScalar calls it after its presence check.
func (m *Message) readScalar(f *schema.FieldDescriptor) Value {
	off := f.Offset
	switch f.Type {
	case schema.Bool:
		return Value{Kind: KindBool, Bool: m.Data[off] != 0}
	case schema.Int32, schema.SInt32, schema.SFixed32, schema.Enum:
		return Value{Kind: KindI32, I32: int32(binary.LittleEndian.Uint32(m.Data[off:]))}
	case schema.Int64, schema.SInt64, schema.SFixed64:
		return Value{Kind: KindI64, I64: int64(binary.LittleEndian.Uint64(m.Data[off:]))}
	case schema.UInt32, schema.Fixed32:
		return Value{Kind: KindU32, U32: binary.LittleEndian.Uint32(m.Data[off:])}
	case schema.UInt64, schema.Fixed64:
		return Value{Kind: KindU64, U64: binary.LittleEndian.Uint64(m.Data[off:])}
	case schema.Float:
		return Value{Kind: KindF32, F32: math.Float32frombits(binary.LittleEndian.Uint32(m.Data[off:]))}
	case schema.Double:
		return Value{Kind: KindF64, F64: math.Float64frombits(binary.LittleEndian.Uint64(m.Data[off:]))}
	case schema.String:
		return Value{Kind: KindString, Str: m.stringAt(off)}
	case schema.Bytes:
		return Value{Kind: KindBytes, Str: m.stringAt(off)}
	case schema.Message, schema.Group:
		return Value{Kind: KindMessage, Msg: m.messages[off]}
	default:
		return Value{}
	}
}

func (m *Message) stringAt(off uint32) StringView {
	if m.strings == nil {
		return StringView{}
	}
	return m.strings[off]
}

// SetScalar writes v at f's offset, sets its hasbit if tracked, and if f is
// a oneof member, overwrites the oneof's case tag to f.Number (implicitly
// deactivating whichever member was previously active — shared storage
// means there's nothing else to clean up).
func (m *Message) SetScalar(f *schema.FieldDescriptor, v Value) {
	off := f.Offset
	switch f.Type {
	case schema.Bool:
		if v.Bool {
			m.Data[off] = 1
		} else {
			m.Data[off] = 0
		}
	case schema.Int32, schema.SInt32, schema.SFixed32, schema.Enum:
		binary.LittleEndian.PutUint32(m.Data[off:], uint32(v.I32))
	case schema.Int64, schema.SInt64, schema.SFixed64:
		binary.LittleEndian.PutUint64(m.Data[off:], uint64(v.I64))
	case schema.UInt32, schema.Fixed32:
		binary.LittleEndian.PutUint32(m.Data[off:], v.U32)
	case schema.UInt64, schema.Fixed64:
		binary.LittleEndian.PutUint64(m.Data[off:], v.U64)
	case schema.Float:
		binary.LittleEndian.PutUint32(m.Data[off:], math.Float32bits(v.F32))
	case schema.Double:
		binary.LittleEndian.PutUint64(m.Data[off:], math.Float64bits(v.F64))
	case schema.String, schema.Bytes:
		if m.strings == nil {
			m.strings = make(map[uint32]StringView)
		}
		m.strings[off] = v.Str
	case schema.Message, schema.Group:
		if m.messages == nil {
			m.messages = make(map[uint32]*Message)
		}
		m.messages[off] = v.Msg
	}

	if f.Presence > 0 {
		m.setHasbit(f.HasbitIndex())
	} else if f.Presence < 0 {
		m.setOneofCase(f.OneofIndex(), f.Number)
	}
}

// ClearField clears f. For a hasbit-tracked field this clears the hasbit and
// zeros storage; for a oneof member it only acts if f is the currently
// active member, clearing the case tag as well; for implicit-presence
// scalars it zeros the stored value; for repeated/map fields it truncates
// them to zero length.
func (m *Message) ClearField(f *schema.FieldDescriptor) {
	switch f.Mode {
	case schema.Repeated:
		delete(m.repeateds, f.Offset)
		return
	case schema.Map:
		delete(m.maps, f.Offset)
		return
	}

	if f.Presence < 0 && m.oneofCase(f.OneofIndex()) != f.Number {
		return // Not the active member; nothing to clear.
	}

	m.zeroScalar(f)

	if f.Presence > 0 {
		m.clearHasbit(f.HasbitIndex())
	} else if f.Presence < 0 {
		m.setOneofCase(f.OneofIndex(), 0)
	}
}

func (m *Message) zeroScalar(f *schema.FieldDescriptor) {
	switch f.Type {
	case schema.String, schema.Bytes:
		delete(m.strings, f.Offset)
	case schema.Message, schema.Group:
		delete(m.messages, f.Offset)
	default:
		size := f.Type.MemSize()
		clear(m.Data[f.Offset : f.Offset+uint32(size)])
	}
}

// GetRepeated returns the RepeatedField for f, allocating it lazily on first
// access.
func (m *Message) GetRepeated(f *schema.FieldDescriptor) *RepeatedField {
	if m.repeateds == nil {
		m.repeateds = make(map[uint32]*RepeatedField)
	}
	r, ok := m.repeateds[f.Offset]
	if !ok {
		r = &RepeatedField{ElemType: f.Type}
		m.repeateds[f.Offset] = r
	}
	return r
}

// GetMap returns the MapField for f, allocating it lazily on first access.
func (m *Message) GetMap(f *schema.FieldDescriptor) *MapField {
	if m.maps == nil {
		m.maps = make(map[uint32]*MapField)
	}
	mp, ok := m.maps[f.Offset]
	if !ok {
		mp = NewMapField(f.MapKeyType, f.MapValueType)
		m.maps[f.Offset] = mp
	}
	return mp
}
