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

// Package decode implements the schema-directed binary-to-message parser:
// given a byte stream and a schema.MessageTable, it walks tags, dispatches
// per field kind (scalar, repeated, packed, map, submessage), and writes
// values into a runtime.Message allocated on an arena.Arena.
package decode

// Options configures a single decode call.
type Options struct {
	// MaxDepth is the maximum submessage recursion depth. Zero means "use
	// the default of 100", matching spec's DecodeOptions.max_depth.
	MaxDepth uint32
	// CheckUTF8 validates that string field payloads are valid UTF-8.
	CheckUTF8 bool
	// AliasString avoids copying string/bytes payloads into the arena,
	// instead producing StringViews that borrow from the input buffer. The
	// caller must keep the input alive at least as long as the message.
	AliasString bool
}

// DefaultMaxDepth is used when Options.MaxDepth is zero.
const DefaultMaxDepth = 100

func (o Options) maxDepth() uint32 {
	if o.MaxDepth == 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}
