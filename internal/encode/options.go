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

// Package encode implements the two-pass message-to-bytes serializer: a
// size pass computes the exact encoded length, then a write pass emits
// exactly that many bytes into a single arena-allocated buffer, in
// field-ascending order, producing deterministic output for any given
// message state.
package encode

// Options configures a single encode call.
type Options struct {
	// SkipUnknown is accepted for API symmetry with the decoder's unknown
	// field handling, but has no effect: the decoder never populates
	// Message.Unknown and the encoder never emits it, so there is nothing
	// for an encode call to skip or preserve.
	SkipUnknown bool

	// Deterministic requires map entries to be emitted sorted by their
	// encoded key bytes rather than insertion order. Without it, maps are
	// emitted in insertion order, which is deterministic for messages built
	// by sequential decode but not for maps a caller populated directly out
	// of order-unstable iteration (e.g. from another map).
	Deterministic bool
}

// MaxSize is the largest encoded message this package will produce.
const MaxSize = (1 << 31) - 1 // 2 GiB - 1.
