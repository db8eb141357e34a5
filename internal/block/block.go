// Package block implements the pure address-arithmetic primitives described
// in spec.md §4.3: reading and writing a block's header/footer metadata,
// locating a block's header or footer from its payload offset, stepping to
// the physically adjacent block, and walking the free-list links stored in
// a free block's payload.
//
// Every address in this package is an int offset into the byte slice backing
// an internal/arena.Arena (offset 0 == heap_start), rather than a raw
// pointer — the same "treat the whole region as one owned buffer, address by
// offset" approach spec.md §9 recommends for a host language without free
// pointer arithmetic. Nothing here allocates or owns memory; internal/mm
// drives these primitives against the arena it owns.
package block

import "github.com/lonnb/segalloc/internal/buf"

const (
	// Word is the machine-word size the header/footer encoding and the
	// free-list links are measured in.
	Word = 8

	// MinBlockSize is the smallest legal block: header + two link words +
	// footer.
	MinBlockSize = 32

	// Align is the payload alignment; every block size is a multiple of it.
	Align = 16

	sizeMask    = uint64(1)<<60 - 1
	prevFreeBit = uint64(1) << 61 // see note below; not part of spec.md's literal bit layout
	allocBit    = uint64(1) << 63
)

// PackHeader encodes size, the allocated flag, and the allocated state of
// the block's physical predecessor into the header/footer word.
//
// spec.md §3 describes bits 0-59 as size and bit 63 as allocated, with bits
// 60-62 reserved zero, and separately states (§4.3) that prev_phys is "valid
// only when the physical predecessor is free" without specifying how a
// caller is meant to know that ahead of reading it — the classic
// chicken-and-egg of footerless allocated blocks. We resolve it the way the
// technique this spec is modeled on resolves it: one reserved bit (61)
// records whether the block's own physical predecessor is free, so coalesce
// can decide whether reading the predecessor's footer is even safe before
// doing it. See DESIGN.md for the full rationale; bits 60 and 62 stay
// reserved zero.
func PackHeader(size int, allocated, prevFree bool) uint64 {
	w := uint64(size) & sizeMask
	if allocated {
		w |= allocBit
	}
	if prevFree {
		w |= prevFreeBit
	}
	return w
}

// UnpackHeader is the inverse of PackHeader.
func UnpackHeader(word uint64) (size int, allocated, prevFree bool) {
	return int(word & sizeMask), word&allocBit != 0, word&prevFreeBit != 0
}

func readWord(b []byte, off int) uint64 {
	return buf.U64LE(b[off : off+Word])
}

func writeWord(b []byte, off int, v uint64) {
	buf.PutU64LE(b[off:off+Word], v)
}

// ReadHeader reads the header/footer word at the given offset.
func ReadHeader(buf []byte, off int) (size int, allocated, prevFree bool) {
	return UnpackHeader(readWord(buf, off))
}

// WriteHeader writes size, allocated and prevFree to the word at off.
func WriteHeader(buf []byte, off int, size int, allocated, prevFree bool) {
	writeWord(buf, off, PackHeader(size, allocated, prevFree))
}

// HeaderOff returns the offset of a block's header given its payload offset.
func HeaderOff(p int) int { return p - Word }

// SizeOf returns the size field of the block whose payload is at p.
func SizeOf(buf []byte, p int) int {
	size, _, _ := ReadHeader(buf, HeaderOff(p))
	return size
}

// Allocated reports the allocated bit of the block whose payload is at p.
func Allocated(buf []byte, p int) bool {
	_, allocated, _ := ReadHeader(buf, HeaderOff(p))
	return allocated
}

// PrevFree reports whether the physical predecessor of the block at p is
// free, per that block's own header bit (see PackHeader).
func PrevFree(buf []byte, p int) bool {
	_, _, prevFree := ReadHeader(buf, HeaderOff(p))
	return prevFree
}

// SetPrevFree updates only the prevFree bit of the block at p, leaving its
// size and allocated fields untouched. Called on the physical successor of
// a block whose allocation state just changed.
func SetPrevFree(buf []byte, p int, prevFree bool) {
	size, allocated, _ := ReadHeader(buf, HeaderOff(p))
	WriteHeader(buf, HeaderOff(p), size, allocated, prevFree)
}

// FooterOff returns the offset of a block's footer, valid only for blocks
// whose footer is semantically maintained (free blocks and prologues).
func FooterOff(buf []byte, p int) int {
	return p + SizeOf(buf, p) - 2*Word
}

// WriteFooter writes the footer word to match size/allocated/prevFree, for
// blocks whose footer is maintained.
func WriteFooter(buf []byte, p int, size int, allocated, prevFree bool) {
	WriteHeader(buf, p+size-2*Word, size, allocated, prevFree)
}

// WriteFree writes header and footer of a free block of the given size at
// payload offset p, preserving the prevFree bit already recorded in its
// header (only the physical successor's SetPrevFree call is responsible for
// telling the next block that p is now free).
func WriteFree(buf []byte, p int, size int) {
	prevFree := PrevFree(buf, p)
	WriteHeader(buf, HeaderOff(p), size, false, prevFree)
	WriteFooter(buf, p, size, false, prevFree)
}

// WriteAllocated writes only the header of an allocated block; allocated
// blocks carry no required footer, those bytes belong to the payload.
func WriteAllocated(buf []byte, p int, size int) {
	prevFree := PrevFree(buf, p)
	WriteHeader(buf, HeaderOff(p), size, true, prevFree)
}

// NextPhys steps to the payload of the physically next block. Always valid:
// it only needs this block's own size, which every block maintains in its
// header regardless of allocation state.
func NextPhys(buf []byte, p int) int {
	return p + SizeOf(buf, p)
}

// PrevPhys steps to the payload of the physically previous block, reading
// its size from the word at p-2*Word, immediately before this block's header
// (that block's footer, or a prologue's footer, both always valid). Callers must check PrevFree(buf, p)
// first; calling this when the predecessor is allocated reads garbage.
func PrevPhys(buf []byte, p int) int {
	prevSize, _, _ := ReadHeader(buf, p-2*Word)
	return p - prevSize
}

// FPrev reads the free-list "previous" link stored at payload offset p.
func FPrev(buf []byte, p int) int { return int(int64(readWord(buf, p))) }

// FNext reads the free-list "next" link stored at payload offset p+Word.
func FNext(buf []byte, p int) int { return int(int64(readWord(buf, p+Word))) }

// SetFPrev writes the free-list "previous" link.
func SetFPrev(buf []byte, p int, val int) { writeWord(buf, p, uint64(int64(val))) }

// SetFNext writes the free-list "next" link.
func SetFNext(buf []byte, p int, val int) { writeWord(buf, p+Word, uint64(int64(val))) }

// RoundUp16 rounds n up to the next multiple of Align.
func RoundUp16(n int) int {
	return (n + Align - 1) &^ (Align - 1)
}
