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

package runtime_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nizox/dynpb/internal/arena"
	"github.com/nizox/dynpb/internal/runtime"
	"github.com/nizox/dynpb/internal/schema"
)

func proto3Int32Table() *schema.MessageTable {
	b := schema.NewBuilder("M")
	b.Field(schema.FieldDescriptor{Number: 1, Offset: 0, Type: schema.Int32})
	return b.Build(4)
}

func hasbitStringTable() *schema.MessageTable {
	b := schema.NewBuilder("M")
	b.Hasbits(1)
	b.Field(schema.FieldDescriptor{Number: 1, Offset: b.DataStart(), Type: schema.String, Presence: 1})
	return b.Build(b.DataStart() + 24)
}

func oneofTable() *schema.MessageTable {
	b := schema.NewBuilder("M")
	b.Oneofs(1)
	start := b.DataStart()
	b.Field(schema.FieldDescriptor{Number: 1, Offset: start, Type: schema.Int32, Presence: -1})
	b.Field(schema.FieldDescriptor{Number: 2, Offset: start, Type: schema.Int32, Presence: -1})
	return b.Build(start + 4)
}

func TestProto3ImplicitPresence(t *testing.T) {
	table := proto3Int32Table()
	a := arena.New()
	msg := runtime.New(a, table)
	fd := &table.Fields[0]

	require.False(t, msg.HasField(fd))
	msg.SetScalar(fd, runtime.Value{Kind: runtime.KindI32, I32: 0})
	require.False(t, msg.HasField(fd), "proto3 zero value is treated as absent")

	msg.SetScalar(fd, runtime.Value{Kind: runtime.KindI32, I32: 42})
	require.True(t, msg.HasField(fd))
	require.EqualValues(t, 42, msg.GetScalar(fd).I32)
}

func TestHasbitPresenceDistinguishesEmptyFromUnset(t *testing.T) {
	table := hasbitStringTable()
	a := arena.New()
	msg := runtime.New(a, table)
	fd := &table.Fields[0]

	require.False(t, msg.HasField(fd))
	require.Equal(t, runtime.KindNone, msg.GetScalar(fd).Kind)

	msg.SetScalar(fd, runtime.Value{Kind: runtime.KindString, Str: runtime.StringView{}})
	require.True(t, msg.HasField(fd), "hasbit tracks explicit presence even for an empty string")

	msg.ClearField(fd)
	require.False(t, msg.HasField(fd))
}

func TestOneofSharedStorage(t *testing.T) {
	table := oneofTable()
	a := arena.New()
	msg := runtime.New(a, table)
	f1, f2 := &table.Fields[0], &table.Fields[1]

	msg.SetScalar(f1, runtime.Value{Kind: runtime.KindI32, I32: 7})
	require.True(t, msg.HasField(f1))
	require.False(t, msg.HasField(f2))

	msg.SetScalar(f2, runtime.Value{Kind: runtime.KindI32, I32: 9})
	require.False(t, msg.HasField(f1), "setting the other oneof member deactivates this one")
	require.True(t, msg.HasField(f2))
	require.EqualValues(t, 9, msg.GetScalar(f2).I32)
}

func TestRepeatedFieldGrowth(t *testing.T) {
	r := &runtime.RepeatedField{ElemType: schema.Int32}
	for i := int32(0); i < 20; i++ {
		require.Nil(t, r.AppendI32(i))
	}
	require.Equal(t, 20, r.Len())
	for i := 0; i < 20; i++ {
		require.EqualValues(t, i, r.Get(i).I32)
	}
}

func TestRepeatedFieldMaxElementsExceeded(t *testing.T) {
	r := &runtime.RepeatedField{ElemType: schema.Bool, Bools: make([]bool, runtime.MaxRepeatedElements)}
	err := r.AppendBool(true)
	require.NotNil(t, err)
}

func TestMapFieldInsertionOrder(t *testing.T) {
	mp := runtime.NewMapField(schema.Int32, schema.String)
	mp.Set(runtime.Value{Kind: runtime.KindI32, I32: 3}, runtime.Value{Kind: runtime.KindString, Str: runtime.StringView{Bytes: []byte("c")}})
	mp.Set(runtime.Value{Kind: runtime.KindI32, I32: 1}, runtime.Value{Kind: runtime.KindString, Str: runtime.StringView{Bytes: []byte("a")}})
	mp.Set(runtime.Value{Kind: runtime.KindI32, I32: 2}, runtime.Value{Kind: runtime.KindString, Str: runtime.StringView{Bytes: []byte("b")}})

	keys := mp.Keys()
	require.Len(t, keys, 3)
	require.EqualValues(t, 3, keys[0].I32)
	require.EqualValues(t, 1, keys[1].I32)
	require.EqualValues(t, 2, keys[2].I32)
}

func TestMapFieldOverwritePreservesPosition(t *testing.T) {
	mp := runtime.NewMapField(schema.Int32, schema.String)
	mp.Set(runtime.Value{Kind: runtime.KindI32, I32: 1}, runtime.Value{Kind: runtime.KindString, Str: runtime.StringView{Bytes: []byte("a")}})
	mp.Set(runtime.Value{Kind: runtime.KindI32, I32: 2}, runtime.Value{Kind: runtime.KindString, Str: runtime.StringView{Bytes: []byte("b")}})
	mp.Set(runtime.Value{Kind: runtime.KindI32, I32: 1}, runtime.Value{Kind: runtime.KindString, Str: runtime.StringView{Bytes: []byte("updated")}})

	require.Equal(t, 2, mp.Len())
	v, ok := mp.Get(runtime.Value{Kind: runtime.KindI32, I32: 1})
	require.True(t, ok)
	require.Equal(t, "updated", v.Str.String())
	require.EqualValues(t, 1, mp.Keys()[0].I32, "overwrite must not move the entry")
}

func TestMessageZeroSizeTable(t *testing.T) {
	table := schema.NewBuilder("Empty").Build(0)
	a := arena.New()
	msg := runtime.New(a, table)
	require.NotNil(t, msg)
	require.Nil(t, msg.Data)
}
