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

package dynpb

import (
	"github.com/nizox/dynpb/internal/decode"
)

// DecodeOption configures a [Decode] call.
type DecodeOption func(*decode.Options)

// WithMaxDepth sets the maximum submessage recursion depth. The default is
// 100; setting a large value re-introduces the stack-exhaustion DoS vector
// this guard exists to prevent.
func WithMaxDepth(depth uint32) DecodeOption {
	return func(o *decode.Options) { o.MaxDepth = depth }
}

// WithCheckUTF8 sets whether string field payloads are validated as UTF-8.
// The default is true; passing false accepts non-UTF-8 bytes in string
// fields rather than failing with [CodeBadUTF8].
func WithCheckUTF8(check bool) DecodeOption {
	return func(o *decode.Options) { o.CheckUTF8 = check }
}

// WithAliasStrings avoids copying string/bytes payloads into the arena,
// instead producing [StringView] values that borrow from input. The caller
// must keep input alive for at least as long as any decoded Message.
func WithAliasStrings(alias bool) DecodeOption {
	return func(o *decode.Options) { o.AliasString = alias }
}

// Decode parses input against msg's [MessageTable], writing field values
// into msg. Submessage data blocks and string copies are allocated from a;
// repeated-field and map storage is allocated from the Go heap.
//
// The whole of input is consumed or an error is returned; there is no
// partial/incremental decoding, and on error msg is left in an unspecified
// partial state that the caller should discard.
func Decode(input []byte, msg *Message, a *Arena, opts ...DecodeOption) error {
	o := decode.Options{CheckUTF8: true}
	for _, opt := range opts {
		opt(&o)
	}

	if err := decode.Decode(input, msg, a, o); err != nil {
		return err
	}
	return nil
}
