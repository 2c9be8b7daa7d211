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

// Package wire implements the low-level Protobuf binary primitives: varint,
// fixed32/64, tag, length-delimited and zigzag encode/decode, with the exact
// error semantics the decoder depends on (overflow detected on the specific
// byte the wire format makes it detectable on, truncation distinguished from
// malformed framing).
//
// Decoding is hand-rolled here because its error taxonomy is the point of
// this package. Varint, tag and fixed-width encoding reuses
// google.golang.org/protobuf/encoding/protowire directly, since there is
// exactly one correct sequence of bytes for a given value and protowire
// already produces it; zigzag encoding is implemented here alongside its
// decoding counterpart.
package wire

import (
	"math/bits"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/nizox/dynpb/internal/errs"
)

// WireType is one of the four wire types this codec accepts on input.
// Groups (WireType 3 and 4) are parsed far enough to be rejected, never
// accepted.
type WireType int8

const (
	Varint          WireType = 0
	Fixed64         WireType = 1
	LengthDelimited WireType = 2
	StartGroup      WireType = 3 // Rejected: groups are not supported.
	EndGroup        WireType = 4 // Rejected: groups are not supported.
	Fixed32         WireType = 5
)

// MaxVarintBytes is the longest a varint-encoded u64 may be.
const MaxVarintBytes = 10

// MaxTagBytes is the longest a tag (a varint u32) may be.
const MaxTagBytes = 5

// ReadVarint reads a base-128 little-endian varint from data starting at
// pos. It returns the decoded value and the new position.
func ReadVarint(data []byte, pos int) (value uint64, next int, err *errs.Error) {
	var v uint64
	for i := 0; i < MaxVarintBytes; i++ {
		if pos+i >= len(data) {
			return 0, pos, errs.New(errs.EndOfStream, pos)
		}
		b := data[pos+i]
		if i == MaxVarintBytes-1 && b > 1 {
			return 0, pos, errs.New(errs.VarintOverflow, pos)
		}
		v |= uint64(b&0x7f) << (7 * i)
		if b < 0x80 {
			return v, pos + i + 1, nil
		}
	}
	// Unreachable: the i==9 check above always returns.
	return 0, pos, errs.New(errs.VarintOverflow, pos)
}

// Tag is a decoded field tag.
type Tag struct {
	Number   uint32
	WireType WireType
}

// Valid reports whether t could plausibly have come from a well-formed
// stream: field number at least 1, and one of the four non-group wire types.
func (t Tag) Valid() bool {
	switch t.WireType {
	case Varint, Fixed64, LengthDelimited, Fixed32:
		return t.Number >= 1
	default:
		return false
	}
}

// ReadTag reads a tag, i.e. a varint u32 of (field_number<<3)|wire_type. Tags
// are capped at 5 bytes (32 bits at 7 bits/byte); a tag requiring a 6th byte,
// or whose 5th byte contributes bits above the low nibble, is
// VarintOverflow.
func ReadTag(data []byte, pos int) (tag Tag, next int, err *errs.Error) {
	var v uint32
	for i := 0; i < MaxTagBytes; i++ {
		if pos+i >= len(data) {
			return Tag{}, pos, errs.New(errs.EndOfStream, pos)
		}
		b := data[pos+i]
		if i == MaxTagBytes-1 && b > 0x0f {
			return Tag{}, pos, errs.New(errs.VarintOverflow, pos)
		}
		v |= uint32(b&0x7f) << (7 * i)
		if b < 0x80 {
			return Tag{Number: v >> 3, WireType: WireType(v & 0x7)}, pos + i + 1, nil
		}
	}
	return Tag{}, pos, errs.New(errs.VarintOverflow, pos)
}

// ReadFixed32 reads 4 little-endian bytes.
func ReadFixed32(data []byte, pos int) (value uint32, next int, err *errs.Error) {
	if pos+4 > len(data) {
		return 0, pos, errs.New(errs.EndOfStream, pos)
	}
	b := data[pos : pos+4]
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, pos + 4, nil
}

// ReadFixed64 reads 8 little-endian bytes.
func ReadFixed64(data []byte, pos int) (value uint64, next int, err *errs.Error) {
	if pos+8 > len(data) {
		return 0, pos, errs.New(errs.EndOfStream, pos)
	}
	b := data[pos : pos+8]
	lo := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	hi := uint32(b[4]) | uint32(b[5])<<8 | uint32(b[6])<<16 | uint32(b[7])<<24
	return uint64(lo) | uint64(hi)<<32, pos + 8, nil
}

// ReadLengthDelimited reads a varint length L followed by L bytes, returning
// a sub-slice of data with no copy. A declared length that exceeds the
// remaining bytes is Malformed rather than EndOfStream: the length prefix
// already promised those bytes exist, so its violation is a framing lie
// about the region's extent, not a stream that simply ran out.
func ReadLengthDelimited(data []byte, pos int) (body []byte, next int, err *errs.Error) {
	length, next, err := ReadVarint(data, pos)
	if err != nil {
		return nil, pos, err
	}
	if length > uint64(len(data)-next) {
		return nil, pos, errs.Newf(errs.Malformed, pos, "declared length %d exceeds %d remaining bytes", length, len(data)-next)
	}
	end := next + int(length)
	return data[next:end], end, nil
}

// SkipField consumes exactly one field body for the given wire type without
// interpreting it, returning the new position.
func SkipField(data []byte, pos int, wt WireType) (next int, err *errs.Error) {
	switch wt {
	case Varint:
		_, next, err = ReadVarint(data, pos)
		return next, err
	case Fixed32:
		_, next, err = ReadFixed32(data, pos)
		return next, err
	case Fixed64:
		_, next, err = ReadFixed64(data, pos)
		return next, err
	case LengthDelimited:
		_, next, err = ReadLengthDelimited(data, pos)
		return next, err
	default:
		return pos, errs.Newf(errs.Malformed, pos, "cannot skip group wire type %d", wt)
	}
}

// ZigZagDecode32 maps a zigzag-encoded uint32 back to its signed value.
func ZigZagDecode32(v uint32) int32 {
	return int32(v>>1) ^ -int32(v&1)
}

// ZigZagEncode32 maps a signed int32 to its zigzag-encoded representation.
func ZigZagEncode32(v int32) uint32 {
	return uint32(v<<1) ^ uint32(v>>31)
}

// ZigZagDecode64 maps a zigzag-encoded uint64 back to its signed value.
func ZigZagDecode64(v uint64) int64 {
	return int64(v>>1) ^ -int64(v&1)
}

// ZigZagEncode64 maps a signed int64 to its zigzag-encoded representation.
func ZigZagEncode64(v int64) uint64 {
	return uint64(v<<1) ^ uint64(v>>63)
}

// --- encode side: thin wrappers over protowire, so callers in internal/encode
// never need to import protowire directly. ---

// SizeVarint returns the encoded length of v as a varint.
func SizeVarint(v uint64) int { return protowire.SizeVarint(v) }

// SizeTag returns the encoded length of a tag for the given field number.
// Wire type never affects a tag's encoded length (it only occupies the low 3
// bits already folded into the field-number varint), so SizeTag takes no
// wire type argument.
func SizeTag(number uint32) int {
	return protowire.SizeTag(protowire.Number(number))
}

// AppendVarint appends v to buf as a varint.
func AppendVarint(buf []byte, v uint64) []byte { return protowire.AppendVarint(buf, v) }

// AppendTag appends a tag for the given field number and wire type to buf.
func AppendTag(buf []byte, number uint32, wt WireType) []byte {
	return protowire.AppendTag(buf, protowire.Number(number), protowire.Type(wt))
}

// AppendFixed32 appends v to buf as 4 little-endian bytes.
func AppendFixed32(buf []byte, v uint32) []byte { return protowire.AppendFixed32(buf, v) }

// AppendFixed64 appends v to buf as 8 little-endian bytes.
func AppendFixed64(buf []byte, v uint64) []byte { return protowire.AppendFixed64(buf, v) }

// LeadingZeros64 re-exports bits.LeadingZeros64.
func LeadingZeros64(v uint64) int { return bits.LeadingZeros64(v) }
