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

// Package errs defines the closed set of errors the codec can return and is
// shared by internal/wire, internal/decode and internal/encode so that a
// single *Error type surfaces at the public dynpb.Decode/dynpb.Encode calls.
//
// The code numbering deliberately lines up with
// google.golang.org/protobuf/encoding/protowire's own parse error codes,
// the same way the teacher's errCode/errParse pair does, since both
// implementations are walking the same wire format and hit the same set of
// structural failures.
package errs

import (
	"fmt"
	"io"
)

// Code identifies which of the codec's error kinds occurred.
type Code int

const (
	_ Code = iota
	// EndOfStream: a read ran past the outer input buffer.
	EndOfStream
	// Malformed: an invalid tag, a group wire type, an inner-region
	// over/underrun, or any other structural error not covered below.
	Malformed
	// VarintOverflow: a varint required more than 10 bytes (or a tag more
	// than 5), exceeding the representable range.
	VarintOverflow
	// BadUTF8: check_utf8 was on and a string field's bytes were not valid
	// UTF-8.
	BadUTF8
	// WireTypeMismatch: the wire type on the tag disagreed with the field's
	// expected wire type, and no packed/unpacked leniency applied.
	WireTypeMismatch
	// MaxDepthExceeded: submessage recursion reached the configured limit.
	MaxDepthExceeded
	// OutOfMemory: an arena allocation failed, or a repeated field's
	// element cap was exceeded.
	OutOfMemory
	// MaxSizeExceeded: an encoded message would exceed 2 GiB - 1 bytes.
	MaxSizeExceeded
	// MissingRequired: a proto2 required field was absent. Defined for
	// taxonomic completeness; the proto3-only decode path never raises it.
	MissingRequired
)

var names = [...]string{
	EndOfStream:      "end of stream",
	Malformed:        "malformed input",
	VarintOverflow:   "variable-length integer overflow",
	BadUTF8:          "invalid UTF-8 in string field",
	WireTypeMismatch: "wire type mismatch",
	MaxDepthExceeded: "maximum recursion depth exceeded",
	OutOfMemory:      "out of memory",
	MaxSizeExceeded:  "encoded size exceeds 2GiB-1",
	MissingRequired:  "missing required field",
}

func (c Code) String() string {
	if int(c) >= 0 && int(c) < len(names) && names[c] != "" {
		return names[c]
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// Error is the error type returned by every decode/encode entry point.
type Error struct {
	Code   Code
	Offset int // Approximate byte offset into the input at which this occurred.
	Detail string
}

// New constructs an *Error with no extra detail.
func New(code Code, offset int) *Error {
	return &Error{Code: code, Offset: offset}
}

// Newf constructs an *Error with a formatted detail string.
func Newf(code Code, offset int, format string, args ...any) *Error {
	return &Error{Code: code, Offset: offset, Detail: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("dynpb: %v at offset %d: %s", e.Code, e.Offset, e.Detail)
	}
	return fmt.Sprintf("dynpb: %v at offset %d", e.Code, e.Offset)
}

// Unwrap lets callers use errors.Is against io.ErrUnexpectedEOF for
// EndOfStream, matching the convention protowire itself uses for truncated
// input.
func (e *Error) Unwrap() error {
	if e.Code == EndOfStream {
		return io.ErrUnexpectedEOF
	}
	return nil
}
