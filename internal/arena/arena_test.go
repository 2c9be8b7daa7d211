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

package arena_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nizox/dynpb/internal/arena"
)

func TestAllocExactLength(t *testing.T) {
	a := arena.New()
	b := a.Alloc(5)
	require.Len(t, b, 5)
	// Writing the full returned slice must not corrupt a later allocation.
	for i := range b {
		b[i] = 0xFF
	}
	next := a.Alloc(8)
	require.Len(t, next, 8)
	for _, v := range next {
		require.Zero(t, v)
	}
}

func TestAllocGrowsAcrossBlocks(t *testing.T) {
	a := arena.New()
	first := a.Alloc(200)
	require.Len(t, first, 200)
	// Requesting more than doubles the first block's capacity forces growth.
	second := a.Alloc(1000)
	require.Len(t, second, 1000)
}

func TestAllocBufferExhausted(t *testing.T) {
	a := arena.NewBuffer(make([]byte, 8))
	ok := a.Alloc(8)
	require.NotNil(t, ok)
	exhausted := a.Alloc(1)
	require.Nil(t, exhausted)
}

func TestDupe(t *testing.T) {
	a := arena.New()
	src := []byte("hello")
	got := a.Dupe(src)
	require.Equal(t, src, got)
	src[0] = 'H'
	require.Equal(t, byte('h'), got[0], "Dupe must copy, not alias")
}

func TestDupeEmpty(t *testing.T) {
	a := arena.New()
	require.Nil(t, a.Dupe(nil))
}

func TestDupeString(t *testing.T) {
	a := arena.New()
	got := a.DupeString("hello")
	require.Equal(t, "hello", got)
}

func TestFuseSharesLifetimeAndMemory(t *testing.T) {
	a := arena.New()
	b := arena.New()

	bufA := a.Alloc(16)
	require.NotNil(t, bufA)

	ok := a.Fuse(b)
	require.True(t, ok)

	// After fusing, an allocation from b lands in the same group as a's, and
	// a's earlier allocation remains valid.
	bufB := b.Alloc(16)
	require.NotNil(t, bufB)
	require.Len(t, bufA, 16)

	// Deinit on one handle alone must not release memory the other handle
	// still references; only after both sides deinit does the group drop.
	a.Deinit()
	b.Deinit()
}

func TestFuseRejectsBufferBackedArena(t *testing.T) {
	a := arena.New()
	buf := arena.NewBuffer(make([]byte, 16))
	require.False(t, a.Fuse(buf))
	require.False(t, buf.Fuse(a))
}

func TestFuseSameGroupNoOp(t *testing.T) {
	a := arena.New()
	require.True(t, a.Fuse(a))
}
