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

package schema_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nizox/dynpb/internal/schema"
)

func TestFieldByNumberDensePrefix(t *testing.T) {
	b := schema.NewBuilder("Dense")
	b.Field(schema.FieldDescriptor{Number: 1, Type: schema.Int32})
	b.Field(schema.FieldDescriptor{Number: 2, Type: schema.Int32})
	b.Field(schema.FieldDescriptor{Number: 3, Type: schema.Int32})
	table := b.Build(12)

	require.EqualValues(t, 3, table.DenseBelow)
	for n := uint32(1); n <= 3; n++ {
		fd := table.FieldByNumber(n)
		require.NotNil(t, fd)
		require.Equal(t, n, fd.Number)
	}
	require.Nil(t, table.FieldByNumber(4))
}

func TestFieldByNumberSparseFallsBackToBinarySearch(t *testing.T) {
	b := schema.NewBuilder("Sparse")
	b.Field(schema.FieldDescriptor{Number: 1, Type: schema.Int32})
	b.Field(schema.FieldDescriptor{Number: 5, Type: schema.Int32})
	b.Field(schema.FieldDescriptor{Number: 100, Type: schema.Int32})
	table := b.Build(12)

	require.EqualValues(t, 1, table.DenseBelow)
	require.NotNil(t, table.FieldByNumber(5))
	require.NotNil(t, table.FieldByNumber(100))
	require.Nil(t, table.FieldByNumber(6))
	require.Nil(t, table.FieldByNumber(0))
}

func TestBuilderSortsFieldsByNumber(t *testing.T) {
	b := schema.NewBuilder("Unsorted")
	b.Field(schema.FieldDescriptor{Number: 3, Type: schema.Int32})
	b.Field(schema.FieldDescriptor{Number: 1, Type: schema.Int32})
	b.Field(schema.FieldDescriptor{Number: 2, Type: schema.Int32})
	table := b.Build(12)

	require.EqualValues(t, 1, table.Fields[0].Number)
	require.EqualValues(t, 2, table.Fields[1].Number)
	require.EqualValues(t, 3, table.Fields[2].Number)
	require.EqualValues(t, 3, table.DenseBelow)
}

func TestFieldDescriptorPresenceHelpers(t *testing.T) {
	hasbitField := schema.FieldDescriptor{Presence: 3}
	require.False(t, hasbitField.IsOneof())
	require.Equal(t, 2, hasbitField.HasbitIndex())

	oneofField := schema.FieldDescriptor{Presence: -1}
	require.True(t, oneofField.IsOneof())
	require.Equal(t, 0, oneofField.OneofIndex())
}

func TestWireTypeByFieldType(t *testing.T) {
	require.Equal(t, schema.WTVarint, schema.Int32.WireType())
	require.Equal(t, schema.WTFixed32, schema.Float.WireType())
	require.Equal(t, schema.WTFixed64, schema.Double.WireType())
	require.Equal(t, schema.WTLengthDelimited, schema.String.WireType())
	require.Equal(t, schema.WTLengthDelimited, schema.Message.WireType())
}

func TestPackable(t *testing.T) {
	require.True(t, schema.Int32.Packable())
	require.True(t, schema.Double.Packable())
	require.False(t, schema.String.Packable())
	require.False(t, schema.Message.Packable())
}

func TestMapEntryTableLayout(t *testing.T) {
	fd := &schema.FieldDescriptor{
		Number: 1, Mode: schema.Map,
		MapKeyType: schema.Int32, MapValueType: schema.String,
	}
	entry := schema.MapEntryTable(fd, nil)
	require.Len(t, entry.Fields, 2)
	require.EqualValues(t, 1, entry.Fields[0].Number)
	require.EqualValues(t, 2, entry.Fields[1].Number)
	require.Equal(t, schema.Int32, entry.Fields[0].Type)
	require.Equal(t, schema.String, entry.Fields[1].Type)
}

func TestMapEntryTableMessageValue(t *testing.T) {
	valueTable := schema.NewBuilder("Value").Build(4)
	fd := &schema.FieldDescriptor{
		Number: 1, Mode: schema.Map,
		MapKeyType: schema.Int32, MapValueType: schema.Message,
	}
	entry := schema.MapEntryTable(fd, valueTable)
	require.Len(t, entry.Submessages, 1)
	require.Same(t, valueTable, entry.Submessage(&entry.Fields[1]))
}

func TestSelfReferentialSchema(t *testing.T) {
	b := schema.NewBuilder("Node")
	placeholder := &schema.MessageTable{}
	idx := b.Submessage(placeholder)
	b.Field(schema.FieldDescriptor{Number: 1, Type: schema.Message, SubmsgIndex: idx})
	table := b.Build(8)
	table.Submessages[0] = table

	fd := table.FieldByNumber(1)
	require.Same(t, table, table.Submessage(fd))
}
