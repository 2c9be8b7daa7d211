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
	"github.com/nizox/dynpb/internal/schema"
)

// MapKey is a comparable union over the scalar-or-string types protobuf
// permits as map keys. Built from a Value via MapKeyOf.
type MapKey struct {
	Int   uint64 // Holds bool/int32/int64/uint32/uint64/sint32/sint64, reinterpreted bitwise.
	Str   string
	IsStr bool
}

// MapKeyOf builds a MapKey from a scalar Value for use as a map index.
func MapKeyOf(v Value) MapKey {
	switch v.Kind {
	case KindString, KindBytes:
		return MapKey{Str: v.Str.String(), IsStr: true}
	case KindBool:
		if v.Bool {
			return MapKey{Int: 1}
		}
		return MapKey{Int: 0}
	case KindI32:
		return MapKey{Int: uint64(uint32(v.I32))}
	case KindI64:
		return MapKey{Int: uint64(v.I64)}
	case KindU32:
		return MapKey{Int: uint64(v.U32)}
	case KindU64:
		return MapKey{Int: v.U64}
	default:
		return MapKey{}
	}
}

// MapField is an insertion-ordered map keyed by a scalar or string type, per
// spec's requirement that iteration order (and hence default encoding
// order) be deterministic and match insertion order.
type MapField struct {
	KeyType   schema.FieldType
	ValueType schema.FieldType

	index  map[MapKey]int
	keys   []Value
	values []Value
}

// NewMapField allocates an empty map field for the given key/value types.
func NewMapField(keyType, valueType schema.FieldType) *MapField {
	return &MapField{
		KeyType:   keyType,
		ValueType: valueType,
		index:     make(map[MapKey]int),
	}
}

// Len returns the number of entries.
func (m *MapField) Len() int { return len(m.keys) }

// Get returns the value for key and whether it was present.
func (m *MapField) Get(key Value) (Value, bool) {
	i, ok := m.index[MapKeyOf(key)]
	if !ok {
		return Value{}, false
	}
	return m.values[i], true
}

// Set inserts or overwrites the entry for key. Overwriting preserves the
// key's original insertion position, matching normal map semantics.
func (m *MapField) Set(key, value Value) {
	mk := MapKeyOf(key)
	if i, ok := m.index[mk]; ok {
		m.values[i] = value
		return
	}
	m.index[mk] = len(m.keys)
	m.keys = append(m.keys, key)
	m.values = append(m.values, value)
}

// Range iterates entries in insertion order.
func (m *MapField) Range(f func(key, value Value) bool) {
	for i := range m.keys {
		if !f(m.keys[i], m.values[i]) {
			return
		}
	}
}

// Keys returns the map's keys in insertion order. Callers must not mutate
// the returned slice.
func (m *MapField) Keys() []Value { return m.keys }

// Values returns the map's values in the same order as Keys. Callers must
// not mutate the returned slice.
func (m *MapField) Values() []Value { return m.values }
