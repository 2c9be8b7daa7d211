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

import "github.com/nizox/dynpb/internal/arena"

// Arena is a bump allocator that owns all memory for a decoded message
// graph (or an encoded output buffer). A zero value is not usable; create
// one with [NewArena] or [NewArenaBuffer].
type Arena = arena.Arena

// NewArena returns an Arena with no initial capacity, growable on demand.
func NewArena() *Arena { return arena.New() }

// NewArenaBuffer returns an Arena whose first allocations are served from
// buf. Because buf's lifetime belongs to the caller, an Arena created this
// way can never be fused with another (see Arena.Fuse) and, once buf's
// capacity is exhausted, further allocations fail rather than growing.
func NewArenaBuffer(buf []byte) *Arena { return arena.NewBuffer(buf) }
