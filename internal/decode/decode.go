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

package decode

import (
	"math"
	"unicode/utf8"

	"github.com/nizox/dynpb/internal/arena"
	"github.com/nizox/dynpb/internal/dbg"
	"github.com/nizox/dynpb/internal/errs"
	"github.com/nizox/dynpb/internal/runtime"
	"github.com/nizox/dynpb/internal/schema"
	"github.com/nizox/dynpb/internal/wire"
)

type decoder struct {
	arena *arena.Arena
	opts  Options
}

// Decode parses input against msg.Table, writing field values into msg.
// Submessage data blocks and string copies are allocated on a; repeated and
// map storage is allocated from the Go heap. The whole of input is consumed
// or an error is returned; there is no partial/incremental decoding.
func Decode(input []byte, msg *runtime.Message, a *arena.Arena, opts Options) *errs.Error {
	d := &decoder{arena: a, opts: opts}
	return d.frame(input, msg, 0, false)
}

// frame decodes one message frame out of data, which is either the whole
// input (isInner == false) or a length-delimited slice carved out for a
// submessage or packed-repeated region (isInner == true). For inner frames,
// any EndOfStream encountered while decoding is converted to Malformed,
// because running out of bytes inside a region whose length was already
// declared means that declared length lied -- that is a format error, not
// end-of-input.
func (d *decoder) frame(data []byte, msg *runtime.Message, depth uint32, isInner bool) *errs.Error {
	pos := 0
	for pos < len(data) {
		tag, next, err := wire.ReadTag(data, pos)
		if err != nil {
			return wrapInner(err, isInner)
		}
		pos = next

		if !tag.Valid() {
			return wrapInner(errs.Newf(errs.Malformed, pos, "invalid tag"), isInner)
		}

		fd := msg.Table.FieldByNumber(tag.Number)
		if fd == nil {
			dbg.Log(msg.Table.Name, "skip", "unknown field %d, wire type %d", tag.Number, tag.WireType)
			next, serr := wire.SkipField(data, pos, tag.WireType)
			if serr != nil {
				return wrapInner(serr, isInner)
			}
			pos = next
			continue
		}

		next, derr := d.dispatch(data, pos, tag, fd, msg, depth)
		if derr != nil {
			return wrapInner(derr, isInner)
		}
		pos = next
	}

	if pos != len(data) {
		return wrapInner(errs.Newf(errs.Malformed, pos, "did not consume exactly the declared region"), isInner)
	}
	return nil
}

func wrapInner(err *errs.Error, isInner bool) *errs.Error {
	if isInner && err.Code == errs.EndOfStream {
		return errs.Newf(errs.Malformed, err.Offset, "declared length exceeds available bytes")
	}
	return err
}

// dispatch decodes a single field occurrence at data[pos:] (pos already past
// the tag) and returns the position immediately after it.
func (d *decoder) dispatch(data []byte, pos int, tag wire.Tag, fd *schema.FieldDescriptor, msg *runtime.Message, depth uint32) (int, *errs.Error) {
	switch fd.Mode {
	case schema.Map:
		return d.dispatchMap(data, pos, tag, fd, msg, depth)
	case schema.Repeated:
		return d.dispatchRepeated(data, pos, tag, fd, msg, depth)
	default:
		if fd.Type == schema.Message || fd.Type == schema.Group {
			return d.dispatchSubmessage(data, pos, tag, fd, msg, depth)
		}
		return d.dispatchScalar(data, pos, tag, fd, msg)
	}
}

func (d *decoder) dispatchScalar(data []byte, pos int, tag wire.Tag, fd *schema.FieldDescriptor, msg *runtime.Message) (int, *errs.Error) {
	want := wire.WireType(fd.Type.WireType())
	if want != tag.WireType {
		return pos, errs.Newf(errs.WireTypeMismatch, pos, "field %d: expected wire type %d, got %d", fd.Number, want, tag.WireType)
	}

	v, next, err := d.readElement(data, pos, fd.Type)
	if err != nil {
		return pos, err
	}
	msg.SetScalar(fd, v)
	return next, nil
}

func (d *decoder) dispatchSubmessage(data []byte, pos int, tag wire.Tag, fd *schema.FieldDescriptor, msg *runtime.Message, depth uint32) (int, *errs.Error) {
	if tag.WireType != wire.LengthDelimited {
		return pos, errs.Newf(errs.WireTypeMismatch, pos, "field %d: submessage requires length-delimited wire type", fd.Number)
	}

	body, next, err := wire.ReadLengthDelimited(data, pos)
	if err != nil {
		return pos, err
	}

	newDepth := depth + 1
	if newDepth > d.opts.maxDepth() {
		return pos, errs.New(errs.MaxDepthExceeded, pos)
	}

	table := msg.Table.Submessage(fd)
	sub := runtime.New(d.arena, table)
	if sub == nil {
		return pos, errs.New(errs.OutOfMemory, pos)
	}

	if err := d.frame(body, sub, newDepth, true); err != nil {
		return pos, err
	}

	msg.SetScalar(fd, runtime.Value{Kind: runtime.KindMessage, Msg: sub})
	return next, nil
}

func (d *decoder) dispatchRepeated(data []byte, pos int, tag wire.Tag, fd *schema.FieldDescriptor, msg *runtime.Message, depth uint32) (int, *errs.Error) {
	native := wire.WireType(fd.Type.WireType())

	if tag.WireType == wire.LengthDelimited && native != wire.LengthDelimited && fd.Type.Packable() {
		return d.dispatchPacked(data, pos, fd, msg)
	}

	if tag.WireType != native {
		return pos, errs.Newf(errs.WireTypeMismatch, pos, "field %d: unexpected wire type %d", fd.Number, tag.WireType)
	}

	rep := msg.GetRepeated(fd)

	if fd.Type == schema.Message || fd.Type == schema.Group {
		body, next, err := wire.ReadLengthDelimited(data, pos)
		if err != nil {
			return pos, err
		}
		newDepth := depth + 1
		if newDepth > d.opts.maxDepth() {
			return pos, errs.New(errs.MaxDepthExceeded, pos)
		}
		table := msg.Table.Submessage(fd)
		sub := runtime.New(d.arena, table)
		if sub == nil {
			return pos, errs.New(errs.OutOfMemory, pos)
		}
		if err := d.frame(body, sub, newDepth, true); err != nil {
			return pos, err
		}
		if aerr := rep.AppendMessage(sub); aerr != nil {
			return pos, aerr
		}
		return next, nil
	}

	if fd.Type == schema.String || fd.Type == schema.Bytes {
		sv, next, err := d.readString(data, pos, fd.Type == schema.String)
		if err != nil {
			return pos, err
		}
		if aerr := rep.AppendString(sv); aerr != nil {
			return pos, aerr
		}
		return next, nil
	}

	v, next, err := d.readElement(data, pos, fd.Type)
	if err != nil {
		return pos, err
	}
	if aerr := rep.Append(v); aerr != nil {
		return pos, aerr
	}
	return next, nil
}

// dispatchPacked decodes a packed-repeated region: a single length-delimited
// body containing the concatenated element encodings with no per-element
// tags.
func (d *decoder) dispatchPacked(data []byte, pos int, fd *schema.FieldDescriptor, msg *runtime.Message) (int, *errs.Error) {
	body, next, err := wire.ReadLengthDelimited(data, pos)
	if err != nil {
		return pos, err
	}

	rep := msg.GetRepeated(fd)

	inner := 0
	for inner < len(body) {
		v, n, verr := d.readElement(body, inner, fd.Type)
		if verr != nil {
			return pos, wrapInner(verr, true)
		}
		inner = n
		if aerr := rep.Append(v); aerr != nil {
			return pos, aerr
		}
	}
	if inner != len(body) {
		return pos, errs.Newf(errs.Malformed, pos, "packed region not fully consumed")
	}

	return next, nil
}

func (d *decoder) dispatchMap(data []byte, pos int, tag wire.Tag, fd *schema.FieldDescriptor, msg *runtime.Message, depth uint32) (int, *errs.Error) {
	if tag.WireType != wire.LengthDelimited {
		return pos, errs.Newf(errs.WireTypeMismatch, pos, "field %d: map entry requires length-delimited wire type", fd.Number)
	}

	body, next, err := wire.ReadLengthDelimited(data, pos)
	if err != nil {
		return pos, err
	}

	newDepth := depth + 1
	if newDepth > d.opts.maxDepth() {
		return pos, errs.New(errs.MaxDepthExceeded, pos)
	}

	var valueTable *schema.MessageTable
	if fd.MapValueType == schema.Message {
		valueTable = msg.Table.Submessage(fd)
	}
	entryTable := schema.MapEntryTable(fd, valueTable)

	entry := runtime.New(d.arena, entryTable)
	if entry == nil {
		return pos, errs.New(errs.OutOfMemory, pos)
	}
	if err := d.frame(body, entry, newDepth, true); err != nil {
		return pos, err
	}

	keyField := &entryTable.Fields[0]
	valueField := &entryTable.Fields[1]

	key := entry.GetScalar(keyField)
	value := entry.GetScalar(valueField)
	if fd.MapValueType == schema.Message && value.Msg == nil {
		// Spec: a missing value field in a map entry takes the value type's
		// zero value, which for a message means an empty instance rather
		// than a nil pointer.
		value.Msg = runtime.New(d.arena, valueTable)
	}

	msg.GetMap(fd).Set(key, value)
	return next, nil
}

// readElement decodes one non-string, non-message element of the given
// field type at data[pos:].
func (d *decoder) readElement(data []byte, pos int, t schema.FieldType) (runtime.Value, int, *errs.Error) {
	switch t {
	case schema.Bool:
		v, next, err := wire.ReadVarint(data, pos)
		return runtime.Value{Kind: runtime.KindBool, Bool: v != 0}, next, err
	case schema.Int32, schema.Enum:
		v, next, err := wire.ReadVarint(data, pos)
		return runtime.Value{Kind: runtime.KindI32, I32: int32(v)}, next, err
	case schema.Int64:
		v, next, err := wire.ReadVarint(data, pos)
		return runtime.Value{Kind: runtime.KindI64, I64: int64(v)}, next, err
	case schema.UInt32:
		v, next, err := wire.ReadVarint(data, pos)
		return runtime.Value{Kind: runtime.KindU32, U32: uint32(v)}, next, err
	case schema.UInt64:
		v, next, err := wire.ReadVarint(data, pos)
		return runtime.Value{Kind: runtime.KindU64, U64: v}, next, err
	case schema.SInt32:
		v, next, err := wire.ReadVarint(data, pos)
		return runtime.Value{Kind: runtime.KindI32, I32: wire.ZigZagDecode32(uint32(v))}, next, err
	case schema.SInt64:
		v, next, err := wire.ReadVarint(data, pos)
		return runtime.Value{Kind: runtime.KindI64, I64: wire.ZigZagDecode64(v)}, next, err
	case schema.Fixed32:
		v, next, err := wire.ReadFixed32(data, pos)
		return runtime.Value{Kind: runtime.KindU32, U32: v}, next, err
	case schema.Fixed64:
		v, next, err := wire.ReadFixed64(data, pos)
		return runtime.Value{Kind: runtime.KindU64, U64: v}, next, err
	case schema.SFixed32:
		v, next, err := wire.ReadFixed32(data, pos)
		return runtime.Value{Kind: runtime.KindI32, I32: int32(v)}, next, err
	case schema.SFixed64:
		v, next, err := wire.ReadFixed64(data, pos)
		return runtime.Value{Kind: runtime.KindI64, I64: int64(v)}, next, err
	case schema.Float:
		v, next, err := wire.ReadFixed32(data, pos)
		return runtime.Value{Kind: runtime.KindF32, F32: math.Float32frombits(v)}, next, err
	case schema.Double:
		v, next, err := wire.ReadFixed64(data, pos)
		return runtime.Value{Kind: runtime.KindF64, F64: math.Float64frombits(v)}, next, err
	case schema.String, schema.Bytes:
		sv, next, err := d.readString(data, pos, t == schema.String)
		kind := runtime.KindBytes
		if t == schema.String {
			kind = runtime.KindString
		}
		return runtime.Value{Kind: kind, Str: sv}, next, err
	default:
		return runtime.Value{}, pos, errs.Newf(errs.Malformed, pos, "unsupported element type")
	}
}

func (d *decoder) readString(data []byte, pos int, isString bool) (runtime.StringView, int, *errs.Error) {
	body, next, err := wire.ReadLengthDelimited(data, pos)
	if err != nil {
		return runtime.StringView{}, pos, err
	}

	if isString && d.opts.CheckUTF8 && !utf8.Valid(body) {
		return runtime.StringView{}, pos, errs.New(errs.BadUTF8, pos)
	}

	if d.opts.AliasString {
		return runtime.StringView{Bytes: body, Aliased: true}, next, nil
	}

	owned := d.arena.Dupe(body)
	if owned == nil && len(body) != 0 {
		return runtime.StringView{}, pos, errs.New(errs.OutOfMemory, pos)
	}
	return runtime.StringView{Bytes: owned, Aliased: false}, next, nil
}
