package arena

import (
	"testing"

	"github.com/lonnb/segalloc/internal/errno"
	"github.com/stretchr/testify/require"
)

func newTestArena(t *testing.T, size int) *Arena {
	t.Helper()
	a := &Arena{}
	require.NoError(t, a.Init(size))
	t.Cleanup(func() { _ = a.Deinit() })
	return a
}

func TestInitRoundsUpToPage(t *testing.T) {
	a := newTestArena(t, 1)
	require.Equal(t, PageSize, a.Size())
	require.Equal(t, 0, a.Brk())
}

func TestInitRejectsZeroSize(t *testing.T) {
	a := &Arena{}
	err := a.Init(0)
	require.Error(t, err)
	require.ErrorIs(t, err, errno.ErrInvalidArgument)
}

func TestInitRejectsDoubleInit(t *testing.T) {
	a := newTestArena(t, PageSize)
	err := a.Init(PageSize)
	require.Error(t, err)
	require.ErrorIs(t, err, errno.ErrInternal)
}

func TestDeinitIdempotentWhenUninitialized(t *testing.T) {
	a := &Arena{}
	require.NoError(t, a.Deinit())
}

func TestInitThenDeinitThenInit(t *testing.T) {
	a := &Arena{}
	require.NoError(t, a.Init(PageSize))
	require.NoError(t, a.Deinit())
	require.False(t, a.Initialized())
	require.NoError(t, a.Init(PageSize))
	require.True(t, a.Initialized())
	require.NoError(t, a.Deinit())
}

func TestSbrkAdvancesAndReturnsPreviousBrk(t *testing.T) {
	a := newTestArena(t, PageSize)
	prev, err := a.Sbrk(256)
	require.NoError(t, err)
	require.Equal(t, 0, prev)
	require.Equal(t, 256, a.Brk())
}

func TestSbrkRejectsBelowHeapStart(t *testing.T) {
	a := newTestArena(t, PageSize)
	_, err := a.Sbrk(-1)
	require.Error(t, err)
	require.ErrorIs(t, err, errno.ErrInvalidArgument)
}

func TestSbrkRejectsExactFill(t *testing.T) {
	// Pinned open-question resolution (SPEC_FULL.md §E): an exact fill of
	// the arena is rejected, matching the original's exclusive treatment
	// of heap_end.
	a := newTestArena(t, PageSize)
	_, err := a.Sbrk(PageSize)
	require.Error(t, err)
	require.ErrorIs(t, err, errno.ErrNoMemory)
	require.Equal(t, 0, a.Brk(), "brk must be unchanged on failure")
}

func TestSbrkFailureLeavesBrkUnchanged(t *testing.T) {
	a := newTestArena(t, PageSize)
	_, err := a.Sbrk(100)
	require.NoError(t, err)
	_, err = a.Sbrk(PageSize)
	require.Error(t, err)
	require.Equal(t, 100, a.Brk())
}

func TestSbrkBeforeInit(t *testing.T) {
	a := &Arena{}
	_, err := a.Sbrk(8)
	require.Error(t, err)
	require.ErrorIs(t, err, errno.ErrInternal)
}
