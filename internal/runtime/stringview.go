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

package runtime

// StringView is a borrowed-or-owned view of a string/bytes field's payload.
// When Aliased is true, Bytes points into the decoder's input buffer and the
// caller must keep that input alive for at least as long as this Message;
// otherwise Bytes points into arena-owned memory produced by Arena.Dupe.
type StringView struct {
	Bytes   []byte
	Aliased bool
}

// Len returns the view's length in bytes.
func (s StringView) Len() int { return len(s.Bytes) }

// String returns a copy of the view's bytes as a string.
func (s StringView) String() string { return string(s.Bytes) }
