package block

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPackUnpackHeaderRoundTrip(t *testing.T) {
	cases := []struct {
		size      int
		allocated bool
		prevFree  bool
	}{
		{32, true, false},
		{32, false, true},
		{4096, true, false},
		{0, true, true}, // epilogue with a free predecessor
	}
	for _, c := range cases {
		word := PackHeader(c.size, c.allocated, c.prevFree)
		size, allocated, prevFree := UnpackHeader(word)
		require.Equal(t, c.size, size)
		require.Equal(t, c.allocated, allocated)
		require.Equal(t, c.prevFree, prevFree)
	}
}

func TestWriteFreeRoundTrip(t *testing.T) {
	buf := make([]byte, 256)
	p := 128 // payload offset, header at 120
	WriteFree(buf, p, 64)

	size, allocated, _ := ReadHeader(buf, HeaderOff(p))
	require.Equal(t, 64, size)
	require.False(t, allocated)

	fsize, fallocated, _ := ReadHeader(buf, FooterOff(buf, p))
	require.Equal(t, size, fsize)
	require.Equal(t, allocated, fallocated)
}

func TestWriteAllocatedHasNoFooterRequirement(t *testing.T) {
	buf := make([]byte, 256)
	p := 128
	WriteAllocated(buf, p, 48)
	require.True(t, Allocated(buf, p))
	require.Equal(t, 48, SizeOf(buf, p))
}

func TestSetPrevFreePreservesSizeAndAllocated(t *testing.T) {
	buf := make([]byte, 256)
	p := 128
	WriteAllocated(buf, p, 48)
	SetPrevFree(buf, p, true)
	require.True(t, PrevFree(buf, p))
	require.True(t, Allocated(buf, p))
	require.Equal(t, 48, SizeOf(buf, p))
}

func TestNextPrevPhys(t *testing.T) {
	buf := make([]byte, 256)
	p1 := 128
	WriteFree(buf, p1, 64)
	p2 := NextPhys(buf, p1)
	require.Equal(t, p1+64, p2)
	WriteFree(buf, p2, 32)
	SetPrevFree(buf, p2, true)

	require.True(t, PrevFree(buf, p2))
	require.Equal(t, p1, PrevPhys(buf, p2))
}

func TestFreeListLinks(t *testing.T) {
	buf := make([]byte, 256)
	p := 128
	SetFPrev(buf, p, 40)
	SetFNext(buf, p, 80)
	require.Equal(t, 40, FPrev(buf, p))
	require.Equal(t, 80, FNext(buf, p))
}

func TestRoundUp16(t *testing.T) {
	require.Equal(t, 16, RoundUp16(1))
	require.Equal(t, 16, RoundUp16(16))
	require.Equal(t, 32, RoundUp16(17))
	require.Equal(t, 0, RoundUp16(0))
}
