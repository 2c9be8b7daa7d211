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

// Package arena provides a bump allocator used to back a message graph's
// memory: the data blocks of a decoded Message and its submessages, string
// copies, and encoded output buffers are allocated from one Arena (or a group
// of Arenas fused into a single lifetime). Repeated-field backing arrays,
// map fields and the Message values themselves are allocated from the Go
// heap, not from an Arena.
//
// See https://mcyoung.xyz/2025/04/21/go-arenas/ for the design this is
// adapted from.
package arena

import (
	"unsafe"

	"github.com/nizox/dynpb/internal/dbg"
)

// align is the alignment granularity of every allocation made by an Arena.
const align = 8

const minBlockSize = 256

// Arena is a bump allocator. The zero value is not ready to use; construct
// one with New or NewBuffer.
//
// An Arena is not safe for concurrent use. Distinct Arenas may be used freely
// from distinct goroutines.
type Arena struct {
	state *state
}

// state is the union-find node shared by a group of fused Arena handles.
// Only the root of a fuse group has a meaningful blocks/refcount; non-root
// nodes keep parent set and their own fields are stale.
type state struct {
	parent *state // nil at the root of the fuse forest.

	blocks      [][]byte // Past blocks, most recent last. blocks[len-1] is the live block.
	used        int      // Bytes used in the live block.
	hasInitial  bool     // True if this arena (or a fused sibling) owns a caller-supplied buffer.
	growable    bool     // True if bump misses allocate a fresh block instead of returning nil.
	refcount    int32    // Number of live handles rooted at this node. Valid only at the root.
}

// New returns an Arena with no initial capacity, backed by Go's allocator:
// bump misses always succeed by growing a new block.
func New() *Arena {
	return &Arena{state: &state{growable: true, refcount: 1}}
}

// NewBuffer returns an Arena whose first block is buf. Because buf's lifetime
// is owned by the caller rather than the arena, such an Arena can never be
// fused with another (see Fuse) and, if cap(buf) is exhausted, further
// allocations fail by returning nil rather than growing.
func NewBuffer(buf []byte) *Arena {
	s := &state{hasInitial: true, refcount: 1}
	if cap(buf) > 0 {
		s.blocks = [][]byte{buf[:0:cap(buf)]}
	}
	return &Arena{state: s}
}

// find returns the root of s's fuse group, compressing the path to it.
func (s *state) find() *state {
	root := s
	for root.parent != nil {
		root = root.parent
	}
	for s.parent != nil {
		next := s.parent
		s.parent = root
		s = next
	}
	return root
}

func roundUp(n, to int) int {
	return (n + to - 1) &^ (to - 1)
}

// Alloc returns size bytes of zeroed memory from the arena (length exactly
// size; the bump pointer itself advances by size rounded up to an 8-byte
// boundary so every allocation remains 8-byte aligned), or nil if the arena
// is exhausted and cannot grow.
func (a *Arena) Alloc(size int) []byte {
	rounded := roundUp(size, align)
	root := a.state.find()

	if len(root.blocks) > 0 {
		live := root.blocks[len(root.blocks)-1]
		if root.used+rounded <= cap(live) {
			p := live[root.used : root.used+rounded : root.used+rounded]
			root.used += rounded
			return p[:size:rounded]
		}
	}

	if !root.grow(rounded) {
		return nil
	}

	live := root.blocks[len(root.blocks)-1]
	p := live[root.used : root.used+rounded : root.used+rounded]
	root.used += rounded
	return p[:size:rounded]
}

// grow appends a fresh block able to hold at least size bytes. It returns
// false if the arena has no backing allocator to grow with.
func (s *state) grow(size int) bool {
	if !s.growable {
		return false
	}

	prev := 0
	if len(s.blocks) > 0 {
		prev = cap(s.blocks[len(s.blocks)-1])
	}
	n := max(prev*2, size, minBlockSize)

	dbg.Log(s, "grow", "new block of %d bytes (prev cap %d)", n, prev)
	s.blocks = append(s.blocks, make([]byte, 0, n))
	s.used = 0
	return true
}

// Dupe copies data into the arena and returns the owning copy. It returns nil
// if the arena is exhausted and cannot grow.
func (a *Arena) Dupe(data []byte) []byte {
	if len(data) == 0 {
		return nil
	}
	dst := a.Alloc(len(data))
	if dst == nil {
		return nil
	}
	copy(dst, data)
	return dst[:len(data)]
}

// DupeString is Dupe for strings: the returned string aliases the arena
// copy, so no second copy is made converting it back to a string.
func (a *Arena) DupeString(s string) string {
	if len(s) == 0 {
		return ""
	}
	dst := a.Alloc(len(s))
	if dst == nil {
		return ""
	}
	copy(dst, s)
	return unsafe.String(unsafe.SliceData(dst), len(s))
}

// Fuse links other's lifetime to a's: neither arena's memory is released
// until both (and any further arenas fused transitively to either) have had
// Deinit called on them. It reports whether the fuse succeeded; it fails if
// either arena (or the other side of an already-fused group) owns a
// caller-supplied initial buffer, since such a buffer's lifetime cannot be
// reassigned to a new owner.
func (a *Arena) Fuse(other *Arena) bool {
	r1 := a.state.find()
	r2 := other.state.find()
	if r1 == r2 {
		return true
	}
	if r1.hasInitial || r2.hasInitial {
		return false
	}

	// Pick the node at the lower address as the surviving root so that
	// repeated fuses of many arenas into one don't create long find() chains
	// in the common "fuse everything into the first arena" pattern.
	lo, hi := r1, r2
	if uintptr(unsafe.Pointer(r2)) < uintptr(unsafe.Pointer(r1)) {
		lo, hi = r2, r1
	}

	// Splice hi's blocks onto the end of lo's block list, so a single Deinit
	// on lo's root frees both groups. hi's old unused tail capacity (if any)
	// is abandoned, same as a bump miss abandons the previous block's tail;
	// the live block and used-count become hi's, since it's now the most
	// recently appended block.
	if len(hi.blocks) > 0 {
		lo.blocks = append(lo.blocks, hi.blocks...)
		lo.used = hi.used
	}
	lo.refcount += hi.refcount
	lo.growable = lo.growable || hi.growable

	hi.parent = lo
	hi.blocks = nil
	hi.refcount = 0

	return true
}

// Deinit releases this handle's share of its fuse group's lifetime. Once
// every handle sharing a group has called Deinit, the group's memory becomes
// eligible for garbage collection; no explicit free is performed since Go is
// garbage collected, but further use of any pointer derived from this arena
// after the group's refcount reaches zero is a use-after-scope bug the
// caller is responsible for avoiding.
func (a *Arena) Deinit() {
	root := a.state.find()
	root.refcount--
	if root.refcount <= 0 {
		root.blocks = nil
		root.used = 0
	}
}
