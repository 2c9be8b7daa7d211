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
	"github.com/nizox/dynpb/internal/encode"
)

// EncodeOption configures an [Encode] call.
type EncodeOption func(*encode.Options)

// WithSkipUnknown is accepted for API symmetry with decode options; it has
// no effect on the current encoder (see [encode.Options.SkipUnknown]).
func WithSkipUnknown(skip bool) EncodeOption {
	return func(o *encode.Options) { o.SkipUnknown = skip }
}

// WithDeterministic requires map fields to be emitted sorted by their
// encoded key bytes, rather than insertion order, so that two Messages with
// the same field values always encode to the same bytes regardless of how
// their maps were populated.
func WithDeterministic(det bool) EncodeOption {
	return func(o *encode.Options) { o.Deterministic = det }
}

// Encode serializes msg to wire-format bytes allocated from a. The two-pass
// encoder first computes the exact output size, then writes that many bytes
// in a single pass, walking fields in ascending field-number order.
//
// The returned slice's backing array belongs to a; it stays valid for as
// long as a (or its fuse group, see Arena.Fuse) is not deinitialized.
func Encode(msg *Message, a *Arena, opts ...EncodeOption) ([]byte, error) {
	var o encode.Options
	for _, opt := range opts {
		opt(&o)
	}

	out, err := encode.Encode(msg, a, o)
	if err != nil {
		return nil, err
	}
	return out, nil
}
