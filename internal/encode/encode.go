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

package encode

import (
	"bytes"
	"math"
	"sort"

	"github.com/nizox/dynpb/internal/arena"
	"github.com/nizox/dynpb/internal/errs"
	"github.com/nizox/dynpb/internal/runtime"
	"github.com/nizox/dynpb/internal/schema"
	"github.com/nizox/dynpb/internal/wire"
)

// Encode serializes msg to wire-format bytes allocated from a. The returned
// slice's backing memory is owned by a; it remains valid for as long as a
// (or its fuse group) is not Deinit'd.
func Encode(msg *runtime.Message, a *arena.Arena, opts Options) ([]byte, *errs.Error) {
	size, err := sizeMessage(msg, opts)
	if err != nil {
		return nil, err
	}
	if size > MaxSize {
		return nil, errs.New(errs.MaxSizeExceeded, 0)
	}
	if size == 0 {
		return []byte{}, nil
	}

	buf := a.Alloc(int(size))
	if buf == nil {
		return nil, errs.New(errs.OutOfMemory, 0)
	}
	dst := buf[:0:len(buf)]

	dst, err = writeMessage(dst, msg, opts)
	if err != nil {
		return nil, err
	}
	if len(dst) != int(size) {
		return nil, errs.Newf(errs.Malformed, 0, "encoder wrote %d bytes, expected %d", len(dst), size)
	}
	return dst, nil
}

// sizeMessage sums tagSize+bodySize over every present field, in the same
// ascending-field-number order the write pass uses, so that a caller
// computing sizes for nested messages gets the exact length the write pass
// will later produce.
func sizeMessage(msg *runtime.Message, opts Options) (uint64, *errs.Error) {
	var total uint64
	for i := range msg.Table.Fields {
		fd := &msg.Table.Fields[i]
		if !msg.HasField(fd) {
			continue
		}
		n, err := sizeField(msg, fd, opts)
		if err != nil {
			return 0, err
		}
		total += n
		if total > MaxSize {
			return 0, errs.New(errs.MaxSizeExceeded, 0)
		}
	}
	return total, nil
}

func sizeField(msg *runtime.Message, fd *schema.FieldDescriptor, opts Options) (uint64, *errs.Error) {
	switch fd.Mode {
	case schema.Map:
		return sizeMap(msg.GetMap(fd), fd, opts)
	case schema.Repeated:
		return sizeRepeated(msg.GetRepeated(fd), fd, opts)
	default:
		tag := uint64(wire.SizeTag(fd.Number))
		body, err := valueSize(fd.Type, msg.GetScalar(fd), opts)
		if err != nil {
			return 0, err
		}
		return tag + body, nil
	}
}

func sizeRepeated(rep *runtime.RepeatedField, fd *schema.FieldDescriptor, opts Options) (uint64, *errs.Error) {
	n := rep.Len()
	if fd.IsPacked {
		var data uint64
		for i := 0; i < n; i++ {
			v, err := valueSize(fd.Type, rep.Get(i), opts)
			if err != nil {
				return 0, err
			}
			data += v
		}
		return uint64(wire.SizeTag(fd.Number)) + uint64(wire.SizeVarint(data)) + data, nil
	}

	var total uint64
	tag := uint64(wire.SizeTag(fd.Number))
	for i := 0; i < n; i++ {
		v, err := valueSize(fd.Type, rep.Get(i), opts)
		if err != nil {
			return 0, err
		}
		total += tag + v
	}
	return total, nil
}

func sizeMap(mp *runtime.MapField, fd *schema.FieldDescriptor, opts Options) (uint64, *errs.Error) {
	var total uint64
	tag := uint64(wire.SizeTag(fd.Number))
	keys, values := mp.Keys(), mp.Values()
	for i := range keys {
		entry, err := entrySize(fd, keys[i], values[i], opts)
		if err != nil {
			return 0, err
		}
		total += tag + uint64(wire.SizeVarint(entry)) + entry
	}
	return total, nil
}

func entrySize(fd *schema.FieldDescriptor, key, value runtime.Value, opts Options) (uint64, *errs.Error) {
	keyBody, err := valueSize(fd.MapKeyType, key, opts)
	if err != nil {
		return 0, err
	}
	valBody, err := valueSize(fd.MapValueType, value, opts)
	if err != nil {
		return 0, err
	}
	return uint64(wire.SizeTag(1)) + keyBody + uint64(wire.SizeTag(2)) + valBody, nil
}

// valueSize returns the encoded size of one field value, excluding its tag.
// For message/string/bytes this includes the length prefix.
func valueSize(t schema.FieldType, v runtime.Value, opts Options) (uint64, *errs.Error) {
	switch t {
	case schema.Message, schema.Group:
		var subSize uint64
		if v.Msg != nil {
			var err *errs.Error
			subSize, err = sizeMessage(v.Msg, opts)
			if err != nil {
				return 0, err
			}
		}
		return uint64(wire.SizeVarint(subSize)) + subSize, nil
	case schema.String, schema.Bytes:
		n := uint64(len(v.Str.Bytes))
		return uint64(wire.SizeVarint(n)) + n, nil
	default:
		return uint64(elementWireSize(t, v)), nil
	}
}

// elementWireSize is the size of a bare scalar element: no tag, no length
// prefix. Used both for ordinary scalar fields and for packed-repeated data.
func elementWireSize(t schema.FieldType, v runtime.Value) int {
	switch t {
	case schema.Bool:
		if v.Bool {
			return wire.SizeVarint(1)
		}
		return wire.SizeVarint(0)
	case schema.Int32, schema.Enum:
		if v.I32 < 0 {
			return wire.SizeVarint(uint64(int64(v.I32)))
		}
		return wire.SizeVarint(uint64(uint32(v.I32)))
	case schema.Int64:
		return wire.SizeVarint(uint64(v.I64))
	case schema.UInt32:
		return wire.SizeVarint(uint64(v.U32))
	case schema.UInt64:
		return wire.SizeVarint(v.U64)
	case schema.SInt32:
		return wire.SizeVarint(uint64(wire.ZigZagEncode32(v.I32)))
	case schema.SInt64:
		return wire.SizeVarint(wire.ZigZagEncode64(v.I64))
	case schema.Fixed32, schema.SFixed32, schema.Float:
		return 4
	case schema.Fixed64, schema.SFixed64, schema.Double:
		return 8
	default:
		return 0
	}
}

// --- write pass ---

func writeMessage(dst []byte, msg *runtime.Message, opts Options) ([]byte, *errs.Error) {
	for i := range msg.Table.Fields {
		fd := &msg.Table.Fields[i]
		if !msg.HasField(fd) {
			continue
		}
		var err *errs.Error
		dst, err = writeField(dst, msg, fd, opts)
		if err != nil {
			return nil, err
		}
	}
	return dst, nil
}

func writeField(dst []byte, msg *runtime.Message, fd *schema.FieldDescriptor, opts Options) ([]byte, *errs.Error) {
	switch fd.Mode {
	case schema.Map:
		return writeMap(dst, msg.GetMap(fd), fd, opts)
	case schema.Repeated:
		return writeRepeated(dst, msg.GetRepeated(fd), fd, opts)
	default:
		dst = wire.AppendTag(dst, fd.Number, wire.WireType(fd.Type.WireType()))
		return appendValue(dst, fd.Type, msg.GetScalar(fd), opts)
	}
}

func writeRepeated(dst []byte, rep *runtime.RepeatedField, fd *schema.FieldDescriptor, opts Options) ([]byte, *errs.Error) {
	n := rep.Len()
	if fd.IsPacked {
		var data uint64
		for i := 0; i < n; i++ {
			v, err := valueSize(fd.Type, rep.Get(i), opts)
			if err != nil {
				return nil, err
			}
			data += v
		}
		dst = wire.AppendTag(dst, fd.Number, wire.LengthDelimited)
		dst = wire.AppendVarint(dst, data)
		for i := 0; i < n; i++ {
			var err *errs.Error
			dst, err = appendRawElement(dst, fd.Type, rep.Get(i))
			if err != nil {
				return nil, err
			}
		}
		return dst, nil
	}

	nativeWT := wire.WireType(fd.Type.WireType())
	for i := 0; i < n; i++ {
		dst = wire.AppendTag(dst, fd.Number, nativeWT)
		var err *errs.Error
		dst, err = appendValue(dst, fd.Type, rep.Get(i), opts)
		if err != nil {
			return nil, err
		}
	}
	return dst, nil
}

func writeMap(dst []byte, mp *runtime.MapField, fd *schema.FieldDescriptor, opts Options) ([]byte, *errs.Error) {
	keys, values := mp.Keys(), mp.Values()
	order := make([]int, len(keys))
	for i := range order {
		order[i] = i
	}

	if opts.Deterministic {
		encodedKeys := make([][]byte, len(keys))
		for i, k := range keys {
			b, err := appendValue(nil, fd.MapKeyType, k, opts)
			if err != nil {
				return nil, err
			}
			encodedKeys[i] = b
		}
		sort.Slice(order, func(a, b int) bool {
			return bytes.Compare(encodedKeys[order[a]], encodedKeys[order[b]]) < 0
		})
	}

	for _, i := range order {
		entry, err := entrySize(fd, keys[i], values[i], opts)
		if err != nil {
			return nil, err
		}
		dst = wire.AppendTag(dst, fd.Number, wire.LengthDelimited)
		dst = wire.AppendVarint(dst, entry)

		dst = wire.AppendTag(dst, 1, wire.WireType(fd.MapKeyType.WireType()))
		dst, err = appendValue(dst, fd.MapKeyType, keys[i], opts)
		if err != nil {
			return nil, err
		}
		dst = wire.AppendTag(dst, 2, wire.WireType(fd.MapValueType.WireType()))
		dst, err = appendValue(dst, fd.MapValueType, values[i], opts)
		if err != nil {
			return nil, err
		}
	}
	return dst, nil
}

// appendValue appends one field value (with length prefix for
// message/string/bytes), excluding its tag.
func appendValue(dst []byte, t schema.FieldType, v runtime.Value, opts Options) ([]byte, *errs.Error) {
	switch t {
	case schema.Message, schema.Group:
		var subSize uint64
		if v.Msg != nil {
			size, err := sizeMessage(v.Msg, opts)
			if err != nil {
				return nil, err
			}
			subSize = size
		}
		dst = wire.AppendVarint(dst, subSize)
		if v.Msg == nil {
			return dst, nil
		}
		return writeMessage(dst, v.Msg, opts)
	case schema.String, schema.Bytes:
		dst = wire.AppendVarint(dst, uint64(len(v.Str.Bytes)))
		return append(dst, v.Str.Bytes...), nil
	default:
		return appendRawElement(dst, t, v)
	}
}

// appendRawElement appends a bare scalar element: no tag, no length prefix.
func appendRawElement(dst []byte, t schema.FieldType, v runtime.Value) ([]byte, *errs.Error) {
	switch t {
	case schema.Bool:
		if v.Bool {
			return wire.AppendVarint(dst, 1), nil
		}
		return wire.AppendVarint(dst, 0), nil
	case schema.Int32, schema.Enum:
		if v.I32 < 0 {
			return wire.AppendVarint(dst, uint64(int64(v.I32))), nil
		}
		return wire.AppendVarint(dst, uint64(uint32(v.I32))), nil
	case schema.Int64:
		return wire.AppendVarint(dst, uint64(v.I64)), nil
	case schema.UInt32:
		return wire.AppendVarint(dst, uint64(v.U32)), nil
	case schema.UInt64:
		return wire.AppendVarint(dst, v.U64), nil
	case schema.SInt32:
		return wire.AppendVarint(dst, uint64(wire.ZigZagEncode32(v.I32))), nil
	case schema.SInt64:
		return wire.AppendVarint(dst, wire.ZigZagEncode64(v.I64)), nil
	case schema.Fixed32:
		return wire.AppendFixed32(dst, v.U32), nil
	case schema.SFixed32:
		return wire.AppendFixed32(dst, uint32(v.I32)), nil
	case schema.Float:
		return wire.AppendFixed32(dst, math.Float32bits(v.F32)), nil
	case schema.Fixed64:
		return wire.AppendFixed64(dst, v.U64), nil
	case schema.SFixed64:
		return wire.AppendFixed64(dst, uint64(v.I64)), nil
	case schema.Double:
		return wire.AppendFixed64(dst, math.Float64bits(v.F64)), nil
	default:
		return dst, errs.Newf(errs.Malformed, 0, "unsupported element type")
	}
}
