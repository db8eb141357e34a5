package diag

import (
	"testing"

	"github.com/lonnb/segalloc/internal/mm"
	"github.com/stretchr/testify/require"
)

func newTestHeap(t *testing.T) *mm.Heap {
	t.Helper()
	h := &mm.Heap{}
	require.NoError(t, h.Init(mm.Config{}))
	t.Cleanup(func() { _ = h.Deinit() })
	return h
}

func TestCheckCleanAfterInit(t *testing.T) {
	h := newTestHeap(t)
	require.Empty(t, Check(h))
}

func TestCheckCleanAfterAllocFreeChurn(t *testing.T) {
	h := newTestHeap(t)
	var ptrs []int
	for _, n := range []int{8, 40, 100, 16, 4000, 24} {
		p, err := h.Malloc(n)
		require.NoError(t, err)
		if p != mm.Null {
			ptrs = append(ptrs, p)
		}
		require.Empty(t, Check(h))
	}
	for _, p := range ptrs {
		require.NoError(t, h.Free(p))
		require.Empty(t, Check(h))
	}
}

func TestWalkFindsExactlyOneEpilogue(t *testing.T) {
	h := newTestHeap(t)
	_, err := h.Malloc(100)
	require.NoError(t, err)

	blocks := Walk(h)
	epilogues := 0
	for _, b := range blocks {
		if b.Kind == KindEpilogue {
			epilogues++
			require.Equal(t, 0, b.Size)
			require.True(t, b.Allocated)
		}
	}
	require.Equal(t, 1, epilogues)
}

func TestWalkReportsProloguesFirst(t *testing.T) {
	h := newTestHeap(t)
	blocks := Walk(h)
	require.GreaterOrEqual(t, len(blocks), mm.NumClasses)
	for i := 0; i < mm.NumClasses; i++ {
		require.Equal(t, KindPrologue, blocks[i].Kind)
	}
}
