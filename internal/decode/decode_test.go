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

package decode_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nizox/dynpb/internal/arena"
	"github.com/nizox/dynpb/internal/decode"
	"github.com/nizox/dynpb/internal/errs"
	"github.com/nizox/dynpb/internal/runtime"
	"github.com/nizox/dynpb/internal/schema"
)

// fixture loads a golden wire-format byte string from ../../testdata.
func fixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "testdata", name))
	require.NoError(t, err)
	return data
}

func int32Table() *schema.MessageTable {
	b := schema.NewBuilder("Int32Msg")
	b.Field(schema.FieldDescriptor{Number: 1, Offset: 0, Type: schema.Int32})
	return b.Build(4)
}

func stringTable() *schema.MessageTable {
	b := schema.NewBuilder("StringMsg")
	b.Field(schema.FieldDescriptor{Number: 2, Offset: 0, Type: schema.String})
	return b.Build(24)
}

func packedInt32Table() *schema.MessageTable {
	b := schema.NewBuilder("PackedMsg")
	b.Field(schema.FieldDescriptor{Number: 1, Offset: 0, Type: schema.Int32, Mode: schema.Repeated, IsPacked: true})
	return b.Build(0)
}

func mapInt32StringTable() *schema.MessageTable {
	b := schema.NewBuilder("MapMsg")
	b.Field(schema.FieldDescriptor{
		Number: 1, Offset: 0,
		Type: schema.Message, Mode: schema.Map,
		MapKeyType: schema.Int32, MapValueType: schema.String,
	})
	return b.Build(0)
}

// S1: int32=150 at field 1.
func TestDecodeS1Int32(t *testing.T) {
	table := int32Table()
	a := arena.New()
	msg := runtime.New(a, table)
	require.NotNil(t, msg)

	input := fixture(t, "s1_int32.bin")
	err := decode.Decode(input, msg, a, decode.Options{CheckUTF8: true})
	require.Nil(t, err)

	v := msg.GetScalar(&table.Fields[0])
	require.Equal(t, runtime.KindI32, v.Kind)
	require.EqualValues(t, 150, v.I32)
}

// S2: string "testing" at field 2.
func TestDecodeS2String(t *testing.T) {
	table := stringTable()
	a := arena.New()
	msg := runtime.New(a, table)
	require.NotNil(t, msg)

	input := fixture(t, "s2_string.bin")
	err := decode.Decode(input, msg, a, decode.Options{CheckUTF8: true})
	require.Nil(t, err)

	v := msg.GetScalar(&table.Fields[0])
	require.Equal(t, runtime.KindString, v.Kind)
	require.Equal(t, "testing", v.Str.String())
}

// S3: unknown field is skipped, known field still decodes.
func TestDecodeS3UnknownFieldSkipped(t *testing.T) {
	table := int32Table()
	a := arena.New()
	msg := runtime.New(a, table)
	require.NotNil(t, msg)

	input := fixture(t, "s3_unknown_field.bin")
	err := decode.Decode(input, msg, a, decode.Options{CheckUTF8: true})
	require.Nil(t, err)

	v := msg.GetScalar(&table.Fields[0])
	require.EqualValues(t, 42, v.I32)
}

// S4: overlong tag -> VarintOverflow.
func TestDecodeS4OverlongTag(t *testing.T) {
	table := int32Table()
	a := arena.New()
	msg := runtime.New(a, table)
	require.NotNil(t, msg)

	input := fixture(t, "s4_overlong_tag.bin")
	err := decode.Decode(input, msg, a, decode.Options{CheckUTF8: true})
	require.NotNil(t, err)
	require.Equal(t, errs.VarintOverflow, err.Code)
}

// S5: truncated submessage body -> Malformed (inner EndOfStream conversion).
func TestDecodeS5TruncatedSubmessage(t *testing.T) {
	inner := int32Table()
	b := schema.NewBuilder("Outer")
	b.Submessage(inner)
	b.Field(schema.FieldDescriptor{Number: 1, Offset: 0, Type: schema.Message, SubmsgIndex: 0})
	outer := b.Build(8)

	a := arena.New()
	msg := runtime.New(a, outer)
	require.NotNil(t, msg)

	// Tag for field 1 length-delimited, declared length 10, but only 2 bytes follow.
	input := fixture(t, "s5_truncated_submessage.bin")
	err := decode.Decode(input, msg, a, decode.Options{CheckUTF8: true})
	require.NotNil(t, err)
	require.Equal(t, errs.Malformed, err.Code)
}

// S6: packed repeated int32 [1, 2, 150] at field 1.
func TestDecodeS6PackedRepeated(t *testing.T) {
	table := packedInt32Table()
	a := arena.New()
	msg := runtime.New(a, table)
	require.NotNil(t, msg)

	input := fixture(t, "s6_packed_repeated.bin")
	err := decode.Decode(input, msg, a, decode.Options{CheckUTF8: true})
	require.Nil(t, err)

	rep := msg.GetRepeated(&table.Fields[0])
	require.Equal(t, 3, rep.Len())
	require.EqualValues(t, 1, rep.Get(0).I32)
	require.EqualValues(t, 2, rep.Get(1).I32)
	require.EqualValues(t, 150, rep.Get(2).I32)
}

// S7: map<int32,string> entry {42 -> "hello"} at field 1.
func TestDecodeS7Map(t *testing.T) {
	table := mapInt32StringTable()
	a := arena.New()
	msg := runtime.New(a, table)
	require.NotNil(t, msg)

	input := fixture(t, "s7_map_entry.bin")
	err := decode.Decode(input, msg, a, decode.Options{CheckUTF8: true})
	require.Nil(t, err)

	mp := msg.GetMap(&table.Fields[0])
	v, ok := mp.Get(runtime.Value{Kind: runtime.KindI32, I32: 42})
	require.True(t, ok)
	require.Equal(t, "hello", v.Str.String())
}

func TestDecodeDepthGuard(t *testing.T) {
	// Build a self-referential message type: field 1 is a submessage of the
	// same table, so decoding a deeply nested chain trips MaxDepthExceeded.
	// table.Submessages[0] is patched to point back at table itself after
	// Build, the pattern internal/schema.Builder.Submessage's doc describes
	// for recursive schemas.
	b := schema.NewBuilder("Node")
	placeholder := &schema.MessageTable{}
	idx := b.Submessage(placeholder)
	b.Field(schema.FieldDescriptor{Number: 1, Offset: 0, Type: schema.Message, SubmsgIndex: idx})
	table := b.Build(8)
	table.Submessages[0] = table // patch the self-reference in place

	a := arena.New()
	msg := runtime.New(a, table)
	require.NotNil(t, msg)

	// Two nested submessages under the root, decoded with MaxDepth=1:
	// entering the second one (depth 2) exceeds the limit.
	level2 := []byte{} // empty innermost message
	level1 := append([]byte{0x0A, byte(len(level2))}, level2...)
	level0 := append([]byte{0x0A, byte(len(level1))}, level1...)

	err := decode.Decode(level0, msg, a, decode.Options{CheckUTF8: true, MaxDepth: 1})
	require.NotNil(t, err)
	require.Equal(t, errs.MaxDepthExceeded, err.Code)
}

func TestDecodeBadUTF8Rejected(t *testing.T) {
	table := stringTable()
	a := arena.New()
	msg := runtime.New(a, table)
	require.NotNil(t, msg)

	input := []byte{0x12, 0x02, 0xFF, 0xFE}
	err := decode.Decode(input, msg, a, decode.Options{CheckUTF8: true})
	require.NotNil(t, err)
}

func TestDecodeBadUTF8AllowedWhenDisabled(t *testing.T) {
	table := stringTable()
	a := arena.New()
	msg := runtime.New(a, table)
	require.NotNil(t, msg)

	input := []byte{0x12, 0x02, 0xFF, 0xFE}
	err := decode.Decode(input, msg, a, decode.Options{CheckUTF8: false})
	require.Nil(t, err)
}

func TestDecodeAliasStrings(t *testing.T) {
	table := stringTable()
	a := arena.New()
	msg := runtime.New(a, table)
	require.NotNil(t, msg)

	input := []byte{0x12, 0x07, 't', 'e', 's', 't', 'i', 'n', 'g'}
	err := decode.Decode(input, msg, a, decode.Options{CheckUTF8: true, AliasString: true})
	require.Nil(t, err)

	v := msg.GetScalar(&table.Fields[0])
	require.True(t, v.Str.Aliased)
}
