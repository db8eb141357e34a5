package mm

import (
	"testing"

	"github.com/lonnb/segalloc/internal/block"
	"github.com/lonnb/segalloc/internal/errno"
	"github.com/stretchr/testify/require"
)

func newTestHeap(t *testing.T) *Heap {
	t.Helper()
	h := &Heap{}
	require.NoError(t, h.Init(Config{}))
	t.Cleanup(func() { _ = h.Deinit() })
	return h
}

func TestClassIndex(t *testing.T) {
	cases := []struct {
		size int
		want int
	}{
		{32, 0}, {63, 0},
		{64, 1}, {127, 1},
		{128, 2}, {255, 2},
		{256, 3}, {511, 3},
		{512, 4}, {1023, 4},
		{1024, 5}, {2047, 5},
		{2048, 6}, {4095, 6},
		{4096, 7}, {1 << 20, 7},
	}
	for _, c := range cases {
		require.Equal(t, c.want, classIndex(c.size), "size=%d", c.size)
	}
}

func TestMallocZeroReturnsNull(t *testing.T) {
	h := newTestHeap(t)
	p, err := h.Malloc(0)
	require.NoError(t, err)
	require.Equal(t, Null, p)
}

// I1: alignment.
func TestMallocAlignment(t *testing.T) {
	h := newTestHeap(t)
	for _, n := range []int{1, 7, 8, 24, 40, 100, 1000} {
		p, err := h.Malloc(n)
		require.NoError(t, err)
		require.Zero(t, p%16, "n=%d", n)
	}
}

// I2: size.
func TestMallocBlockSizeSatisfiesRequest(t *testing.T) {
	h := newTestHeap(t)
	for _, n := range []int{1, 24, 40, 100} {
		p, err := h.Malloc(n)
		require.NoError(t, err)
		size := block.SizeOf(h.buf(), p)
		require.GreaterOrEqual(t, size, n+block.Word)
		require.GreaterOrEqual(t, size, block.MinBlockSize)
		require.Zero(t, size%16)
	}
}

func TestMallocFirstBlockIsAllocated(t *testing.T) {
	h := newTestHeap(t)
	p, err := h.Malloc(1)
	require.NoError(t, err)
	require.True(t, block.Allocated(h.buf(), p))
	require.Equal(t, block.MinBlockSize, block.SizeOf(h.buf(), p))
}

func TestSequentialAllocationsAreContiguous(t *testing.T) {
	h := newTestHeap(t)
	p, err := h.Malloc(1)
	require.NoError(t, err)
	pSize := block.SizeOf(h.buf(), p)

	q, err := h.Malloc(24)
	require.NoError(t, err)
	require.Equal(t, p+pSize, q)
}

// mm_free(mm_malloc(n)) round-trips to an equivalent free-list state.
func TestFreeRightAfterMallocRestoresBlock(t *testing.T) {
	h := newTestHeap(t)
	before := totalFreeBytes(h)

	p, err := h.Malloc(100)
	require.NoError(t, err)
	require.NoError(t, h.Free(p))

	after := totalFreeBytes(h)
	require.Equal(t, before, after)
}

func TestFreeNullIsNoop(t *testing.T) {
	h := newTestHeap(t)
	before := totalFreeBytes(h)
	require.NoError(t, h.Free(Null))
	require.Equal(t, before, totalFreeBytes(h))
}

// Scenario from spec.md §8: allocate a, b, c; free the middle one; no
// coalescing should occur since both physical neighbors are allocated.
func TestFreeMiddleBlockNoCoalesce(t *testing.T) {
	h := newTestHeap(t)
	a, err := h.Malloc(40)
	require.NoError(t, err)
	b, err := h.Malloc(40)
	require.NoError(t, err)
	c, err := h.Malloc(40)
	require.NoError(t, err)

	require.NoError(t, h.Free(b))

	require.False(t, block.Allocated(h.buf(), b))
	require.True(t, block.Allocated(h.buf(), a))
	require.True(t, block.Allocated(h.buf(), c))
	require.Equal(t, classIndex(block.SizeOf(h.buf(), b)), findListOf(h, b))
}

// Freeing the remaining two neighbors coalesces into one span.
func TestFreeAllThreeCoalescesFully(t *testing.T) {
	h := newTestHeap(t)
	a, err := h.Malloc(40)
	require.NoError(t, err)
	b, err := h.Malloc(40)
	require.NoError(t, err)
	c, err := h.Malloc(40)
	require.NoError(t, err)

	require.NoError(t, h.Free(b))
	require.NoError(t, h.Free(a))

	// a and b merged; c is untouched and still allocated.
	require.False(t, block.Allocated(h.buf(), a))
	require.True(t, block.Allocated(h.buf(), c))

	require.NoError(t, h.Free(c))
	// No two adjacent free blocks may exist anywhere in the heap now.
	requireNoAdjacentFreeBlocks(t, h)
}

func TestNoAdjacentFreeBlocksAfterRandomOps(t *testing.T) {
	h := newTestHeap(t)
	var live []int
	sizes := []int{8, 40, 100, 16, 200, 24, 4000, 50}
	for i, n := range sizes {
		p, err := h.Malloc(n)
		require.NoError(t, err)
		if p != Null {
			live = append(live, p)
		}
		if i%2 == 1 && len(live) > 0 {
			require.NoError(t, h.Free(live[0]))
			live = live[1:]
		}
		requireNoAdjacentFreeBlocks(t, h)
	}
}

func TestExhaustionReturnsNoMemoryThenRecovers(t *testing.T) {
	h := &Heap{}
	require.NoError(t, h.Init(Config{ArenaSize: 2 * 4096}))
	t.Cleanup(func() { _ = h.Deinit() })

	var ptrs []int
	for {
		p, err := h.Malloc(64)
		if err != nil {
			require.ErrorIs(t, err, errno.ErrNoMemory)
			break
		}
		ptrs = append(ptrs, p)
	}
	require.NotEmpty(t, ptrs)

	require.NoError(t, h.Free(ptrs[0]))
	_, err := h.Malloc(64)
	require.NoError(t, err)
}

func TestDeinitThenInitAgain(t *testing.T) {
	h := &Heap{}
	require.NoError(t, h.Init(Config{}))
	p, err := h.Malloc(8)
	require.NoError(t, err)
	require.NotEqual(t, Null, p)
	require.NoError(t, h.Deinit())
	require.False(t, h.Initialized())

	require.NoError(t, h.Init(Config{}))
	q, err := h.Malloc(8)
	require.NoError(t, err)
	require.NotEqual(t, Null, q)
	require.NoError(t, h.Deinit())
}

// --- test helpers -----------------------------------------------------

func totalFreeBytes(h *Heap) int {
	buf := h.buf()
	total := 0
	for i := 0; i < NumClasses; i++ {
		sentinel := h.classHeads[i]
		for cur := block.FNext(buf, sentinel); cur != sentinel; cur = block.FNext(buf, cur) {
			total += block.SizeOf(buf, cur)
		}
	}
	return total
}

func findListOf(h *Heap, payload int) int {
	buf := h.buf()
	for i := 0; i < NumClasses; i++ {
		sentinel := h.classHeads[i]
		for cur := block.FNext(buf, sentinel); cur != sentinel; cur = block.FNext(buf, cur) {
			if cur == payload {
				return i
			}
		}
	}
	return -1
}

func requireNoAdjacentFreeBlocks(t *testing.T, h *Heap) {
	t.Helper()
	buf := h.buf()
	cur := h.heapBase
	for block.SizeOf(buf, cur) != 0 {
		if !block.Allocated(buf, cur) {
			next := block.NextPhys(buf, cur)
			require.True(t, block.Allocated(buf, next), "adjacent free blocks at %d and %d", cur, next)
		}
		cur = block.NextPhys(buf, cur)
	}
}
