package memalloc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGlobalLifecycle(t *testing.T) {
	require.Equal(t, 0, Init(0))
	defer Deinit()

	p := Malloc(64)
	require.NotEqual(t, Null, p)
	require.Equal(t, 0, GetErrno())

	Free(p)
	require.Empty(t, Check())
}

func TestInitZeroUsesDefaultSize(t *testing.T) {
	require.Equal(t, 0, Init(0))
	defer Deinit()
	require.True(t, Initialized())
}

func TestMallocZeroReturnsNull(t *testing.T) {
	require.Equal(t, 0, Init(0))
	defer Deinit()
	require.Equal(t, Null, Malloc(0))
}

func TestFreeNullIsNoop(t *testing.T) {
	require.Equal(t, 0, Init(0))
	defer Deinit()
	Free(Null) // must not panic
}
