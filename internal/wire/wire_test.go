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

package wire_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nizox/dynpb/internal/errs"
	"github.com/nizox/dynpb/internal/wire"
)

func TestReadVarintRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 127, 128, 150, 300, 1 << 34, ^uint64(0)}
	for _, v := range cases {
		buf := wire.AppendVarint(nil, v)
		got, next, err := wire.ReadVarint(buf, 0)
		require.Nil(t, err)
		require.Equal(t, len(buf), next)
		require.Equal(t, v, got)
	}
}

func TestReadVarintTruncated(t *testing.T) {
	_, _, err := wire.ReadVarint([]byte{0x80}, 0)
	require.NotNil(t, err)
	require.Equal(t, errs.EndOfStream, err.Code)
}

func TestReadVarintOverflow(t *testing.T) {
	// 9 continuation bytes, then a 10th byte whose value is above 1.
	buf := []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x02}
	_, _, err := wire.ReadVarint(buf, 0)
	require.NotNil(t, err)
	require.Equal(t, errs.VarintOverflow, err.Code)
}

func TestReadTagRoundTrip(t *testing.T) {
	buf := wire.AppendTag(nil, 150, wire.LengthDelimited)
	tag, next, err := wire.ReadTag(buf, 0)
	require.Nil(t, err)
	require.Equal(t, len(buf), next)
	require.EqualValues(t, 150, tag.Number)
	require.Equal(t, wire.LengthDelimited, tag.WireType)
	require.True(t, tag.Valid())
}

func TestTagInvalidGroupWireType(t *testing.T) {
	tag := wire.Tag{Number: 1, WireType: wire.StartGroup}
	require.False(t, tag.Valid())
}

func TestReadFixed32RoundTrip(t *testing.T) {
	buf := wire.AppendFixed32(nil, 0xDEADBEEF)
	v, next, err := wire.ReadFixed32(buf, 0)
	require.Nil(t, err)
	require.Equal(t, 4, next)
	require.EqualValues(t, 0xDEADBEEF, v)
}

func TestReadFixed64RoundTrip(t *testing.T) {
	buf := wire.AppendFixed64(nil, 0x0123456789ABCDEF)
	v, next, err := wire.ReadFixed64(buf, 0)
	require.Nil(t, err)
	require.Equal(t, 8, next)
	require.EqualValues(t, 0x0123456789ABCDEF, v)
}

func TestReadLengthDelimited(t *testing.T) {
	buf := []byte{0x03, 'a', 'b', 'c', 'x'}
	body, next, err := wire.ReadLengthDelimited(buf, 0)
	require.Nil(t, err)
	require.Equal(t, "abc", string(body))
	require.Equal(t, 4, next)
}

func TestReadLengthDelimitedLyingLength(t *testing.T) {
	buf := []byte{0x05, 'a', 'b'}
	_, _, err := wire.ReadLengthDelimited(buf, 0)
	require.NotNil(t, err)
	require.Equal(t, errs.Malformed, err.Code)
}

func TestSkipFieldVarint(t *testing.T) {
	buf := []byte{0x96, 0x01, 0xFF}
	next, err := wire.SkipField(buf, 0, wire.Varint)
	require.Nil(t, err)
	require.Equal(t, 2, next)
}

func TestSkipFieldGroupRejected(t *testing.T) {
	_, err := wire.SkipField([]byte{0x01}, 0, wire.StartGroup)
	require.NotNil(t, err)
}

func TestZigZag32RoundTrip(t *testing.T) {
	cases := []int32{0, -1, 1, -2147483648, 2147483647}
	for _, v := range cases {
		require.Equal(t, v, wire.ZigZagDecode32(wire.ZigZagEncode32(v)))
	}
}

func TestZigZag64RoundTrip(t *testing.T) {
	cases := []int64{0, -1, 1, -9223372036854775808, 9223372036854775807}
	for _, v := range cases {
		require.Equal(t, v, wire.ZigZagDecode64(wire.ZigZagEncode64(v)))
	}
}

func TestSizeTagIgnoresWireType(t *testing.T) {
	require.Equal(t, wire.SizeTag(1), len(wire.AppendTag(nil, 1, wire.Varint)))
	require.Equal(t, wire.SizeTag(1), len(wire.AppendTag(nil, 1, wire.LengthDelimited)))
}
