// Package diag implements heap-walking diagnostics over an internal/mm.Heap:
// a block-by-block snapshot and an invariant checker covering spec.md §8's
// I1 and I3-I7 (I2 is not checked). Grounded on hive/verify.AllInvariants (hive/verify/verify.go),
// which walks a hive's cell structure the same way and reports a
// ValidationError per violation rather than aborting on the first one.
//
// spec.md's original implementation folds this walking logic directly into
// its test harness (original_source/tests/mm_test.c repeatedly walks the
// heap to assert these invariants after every operation); SPEC_FULL.md §D.1
// promotes it to a first-class package so cmd/memctl and cmd/memviz can use
// it too, not just tests.
package diag

import (
	"fmt"

	"github.com/lonnb/segalloc/internal/block"
	"github.com/lonnb/segalloc/internal/mm"
)

// BlockKind classifies a block for display purposes; the wire format itself
// has no tag, kind is inferred positionally and from size/allocated the way
// spec.md §9 describes ("the header is the discriminator").
type BlockKind int

const (
	KindRegular BlockKind = iota
	KindPrologue
	KindEpilogue
)

func (k BlockKind) String() string {
	switch k {
	case KindPrologue:
		return "prologue"
	case KindEpilogue:
		return "epilogue"
	default:
		return "regular"
	}
}

// BlockInfo describes one block discovered by a heap walk.
type BlockInfo struct {
	Kind      BlockKind
	Offset    int // header offset
	Payload   int // payload offset
	Size      int
	Allocated bool
	ClassIdx  int // only meaningful for free regular blocks
}

// Walk returns a snapshot of every block physically present in h, from the
// first prologue through the epilogue, in address order.
func Walk(h *mm.Heap) []BlockInfo {
	buf := h.Buf()
	var out []BlockInfo

	for i := 0; i < mm.NumClasses; i++ {
		p := h.ClassHead(i)
		size := block.SizeOf(buf, p)
		out = append(out, BlockInfo{Kind: KindPrologue, Offset: block.HeaderOff(p), Payload: p, Size: size, Allocated: true})
	}

	cur := h.HeapBase()
	for {
		size := block.SizeOf(buf, cur)
		allocated := block.Allocated(buf, cur)
		if size == 0 {
			out = append(out, BlockInfo{Kind: KindEpilogue, Offset: block.HeaderOff(cur), Payload: cur, Size: 0, Allocated: allocated})
			break
		}
		info := BlockInfo{Kind: KindRegular, Offset: block.HeaderOff(cur), Payload: cur, Size: size, Allocated: allocated}
		if !allocated {
			info.ClassIdx = mm.ClassIndex(size)
		}
		out = append(out, info)
		cur = block.NextPhys(buf, cur)
	}
	return out
}

// ValidationError reports one invariant violation found by Check, modeled
// on hive/verify's ValidationError shape (Type/Message/Offset/Details).
type ValidationError struct {
	Type    string
	Message string
	Offset  int
	Details string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s at offset %d: %s (%s)", e.Type, e.Offset, e.Message, e.Details)
}

// Check validates I1 (alignment), I3 (boundary tags), I4 (no adjacent free
// blocks), I5 (list membership and class placement), I6 (epilogue
// uniqueness), and I7 (arena containment) against the current heap state,
// returning every violation found rather than stopping at the first.
func Check(h *mm.Heap) []ValidationError {
	var errs []ValidationError
	buf := h.Buf()
	blocks := Walk(h)

	epilogues := 0
	inList := map[int]int{} // payload -> class index, from a free-list walk

	for i := 0; i < mm.NumClasses; i++ {
		sentinel := h.ClassHead(i)
		for cur := block.FNext(buf, sentinel); cur != sentinel; cur = block.FNext(buf, cur) {
			if prior, ok := inList[cur]; ok {
				errs = append(errs, ValidationError{"I5", "block listed in more than one free list", block.HeaderOff(cur), fmt.Sprintf("classes %d and %d", prior, i)})
				continue
			}
			inList[cur] = i
		}
	}

	var prevWasFree bool
	for _, b := range blocks {
		switch b.Kind {
		case KindEpilogue:
			epilogues++
			if b.Size != 0 || !b.Allocated {
				errs = append(errs, ValidationError{"I6", "epilogue must be size=0, allocated=1", b.Offset, fmt.Sprint(b)})
			}
			if b.Payload != h.Brk() {
				errs = append(errs, ValidationError{"I6", "epilogue must sit at brk-WORD", b.Offset, fmt.Sprintf("payload=%d brk=%d", b.Payload, h.Brk())})
			}
		case KindRegular:
			if b.Payload%block.Align != 0 {
				errs = append(errs, ValidationError{"I1", "payload not 16-byte aligned", b.Offset, fmt.Sprintf("payload=%d", b.Payload)})
			}
			if b.Payload < h.HeapBase() || b.Payload+b.Size > h.Brk() {
				errs = append(errs, ValidationError{"I7", "block escapes arena bounds", b.Offset, fmt.Sprintf("payload=%d size=%d brk=%d", b.Payload, b.Size, h.Brk())})
			}
			if !b.Allocated {
				fsize, falloc, _ := block.ReadHeader(buf, block.FooterOff(buf, b.Payload))
				if fsize != b.Size || falloc {
					errs = append(errs, ValidationError{"I3", "header/footer mismatch on free block", b.Offset, fmt.Sprintf("header(size=%d,alloc=false) footer(size=%d,alloc=%v)", b.Size, fsize, falloc)})
				}
				if prevWasFree {
					errs = append(errs, ValidationError{"I4", "two physically-adjacent free blocks", b.Offset, "predecessor was also free"})
				}
				if cls, ok := inList[b.Payload]; !ok {
					errs = append(errs, ValidationError{"I5", "free block missing from any free list", b.Offset, ""})
				} else if want := mm.ClassIndex(b.Size); cls != want {
					errs = append(errs, ValidationError{"I5", "free block in wrong size-class list", b.Offset, fmt.Sprintf("in class %d, size implies class %d", cls, want)})
				}
			}
			prevWasFree = !b.Allocated
		}
	}

	if epilogues != 1 {
		errs = append(errs, ValidationError{"I6", "heap must contain exactly one epilogue", 0, fmt.Sprintf("found %d", epilogues)})
	}
	return errs
}
