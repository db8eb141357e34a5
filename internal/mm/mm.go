// Package mm implements the allocator core spec.md §4.4 describes: eight
// sentinel-anchored segregated free lists over a single internal/arena
// region, with LIFO first-fit placement, splitting, and boundary-tag
// coalescing on every free and every heap extension.
//
// Heap is the idiomatic Go entry point (methods on a value you own);
// pkg/memalloc layers the spec's C-shaped global mm_init/mm_malloc/mm_free
// API on top of a package-level Heap for callers that want that shape.
package mm

import (
	"fmt"
	"log"
	"math/bits"
	"os"

	"github.com/lonnb/segalloc/internal/arena"
	"github.com/lonnb/segalloc/internal/block"
	bufbounds "github.com/lonnb/segalloc/internal/buf"
	"github.com/lonnb/segalloc/internal/errno"
)

// logGrow gates the heap-extension trace line; on by default for
// debugAlloc builds and independently toggleable via MM_LOG_ALLOC, the same
// two-tier scheme hive/alloc uses for its own allocation trace (debugAlloc
// const + HIVE_LOG_ALLOC env var).
const debugAlloc = false

var logGrow = os.Getenv("MM_LOG_ALLOC") != ""

// Null is the allocator's null payload address: mm_malloc(0) and a failed
// mm_malloc both return it, and mm_free(Null) is a no-op. Every real payload
// offset is >= headerRegionSize, so Null == -1 never collides with one.
const Null = -1

// MaxBlockSize is the largest value the 60-bit size field can represent;
// mm_malloc rejects adjusted sizes beyond it with errno.ErrInvalidArgument.
const MaxBlockSize = 1<<60 - 1

// headerRegionSize is (2 + 4*NumClasses) words: one alignment pad word, one
// prologue block (MinBlockSize bytes) per class, and one epilogue header
// word (spec.md §4.4 step 2).
const headerRegionSize = (2 + 4*NumClasses) * block.Word

// Heap is one allocator instance: an arena plus the eight free-list sentinel
// offsets and a first-real-block boundary. The zero value is not ready to
// use; call Init.
type Heap struct {
	arena      arena.Arena
	classHeads [NumClasses]int // payload offset of each prologue sentinel
	heapBase   int             // payload offset of the first non-sentinel block
	cfg        Config
	stats      Stats
}

func (h *Heap) buf() []byte { return h.arena.Bytes() }

// Init performs spec.md §4.4's mm_init: acquires the arena, installs the
// eight prologues and the epilogue, and extends the heap by one page to
// produce the initial free block (inserted into list 7, since one page is
// 4096 bytes).
//
// Per the resolved open question in SPEC_FULL.md §E, Init accepts any
// ArenaSize > 0: if the arena is too small for even the sentinel
// reservation, Init fails (that reservation is unconditional structural
// setup); if the reservation succeeds but the initial one-page extension
// does not fit, Init still succeeds with no free space, and the first
// Malloc legitimately fails with errno.ErrNoMemory. See DESIGN.md.
func (h *Heap) Init(cfg Config) error {
	if h.arena.Initialized() {
		return wrap(errno.ErrInternal, "mm: already initialized")
	}
	size := cfg.ArenaSize
	if size <= 0 {
		size = DefaultArenaSize
	}
	if err := h.arena.Init(size); err != nil {
		return fmt.Errorf("mm: init arena: %w", err)
	}

	prev, err := h.arena.Sbrk(headerRegionSize)
	if err != nil {
		_ = h.arena.Deinit()
		return fmt.Errorf("mm: reserve sentinel region: %w", err)
	}

	buf := h.buf()
	for i := 0; i < NumClasses; i++ {
		headerOff := prev + block.Word + i*block.MinBlockSize
		payload := headerOff + block.Word
		block.WriteHeader(buf, headerOff, block.MinBlockSize, true, false)
		block.WriteFooter(buf, payload, block.MinBlockSize, true, false)
		block.SetFPrev(buf, payload, payload)
		block.SetFNext(buf, payload, payload)
		h.classHeads[i] = payload
	}
	epilogueOff := prev + headerRegionSize - block.Word
	block.WriteHeader(buf, epilogueOff, 0, true, false)
	h.heapBase = epilogueOff + block.Word
	h.cfg = cfg
	h.stats = Stats{}

	if _, err := h.extendHeap(arena.PageSize / block.Word); err != nil {
		errno.Set(errno.None) // Init itself still succeeded; see doc comment
		return nil
	}
	errno.Set(errno.None)
	return nil
}

// Deinit performs mm_deinit: releases the arena. No per-block teardown is
// needed, the mapping's disappearance is total.
func (h *Heap) Deinit() error {
	if err := h.arena.Deinit(); err != nil {
		errno.FromError(err)
		return err
	}
	*h = Heap{}
	errno.Set(errno.None)
	return nil
}

// Stats returns a snapshot of the allocator's instrumentation counters.
func (h *Heap) Stats() Stats { return h.stats }

// Initialized reports whether Init has succeeded without a matching Deinit.
func (h *Heap) Initialized() bool { return h.arena.Initialized() }

// classIndex computes the size-class index for a block of size n bytes, per
// spec.md §3: clamp(0, 7, floor(log2(n/64))+1) for n>=64, else 0 — equivalent
// to max(0, min(7, floor(log2 n) - 5)).
func classIndex(n int) int {
	if n < 64 {
		return 0
	}
	idx := bits.Len(uint(n)) - 1 - 5
	if idx < 0 {
		idx = 0
	}
	if idx > NumClasses-1 {
		idx = NumClasses - 1
	}
	return idx
}

// Malloc performs mm_malloc(size): computes the adjusted block size, scans
// the free lists first-fit starting from size's class, splits or consumes
// the winning block, extending the heap on a miss.
func (h *Heap) Malloc(size int) (int, error) {
	if size == 0 {
		errno.Set(errno.None)
		return Null, nil
	}
	if size < 0 {
		errno.Set(errno.InvalidArgument)
		return Null, wrap(errno.ErrInvalidArgument, "mm: negative size")
	}

	adjusted := block.RoundUp16(size + block.Word)
	if adjusted < block.MinBlockSize {
		adjusted = block.MinBlockSize
	}
	if size > MaxBlockSize || adjusted > MaxBlockSize {
		errno.Set(errno.InvalidArgument)
		return Null, wrap(errno.ErrInvalidArgument, "mm: size exceeds representable block size")
	}

	h.stats.AllocCalls++

	fit := h.findFit(adjusted)
	if fit == Null {
		words := adjusted
		if words < arena.PageSize {
			words = arena.PageSize
		}
		newBlock, err := h.extendHeap(words / block.Word)
		if err != nil {
			errno.FromError(err)
			return Null, fmt.Errorf("mm: malloc: %w", err)
		}
		h.stats.AllocSlowPath++
		h.removeFromList(newBlock)
		fit = newBlock
	} else {
		h.stats.AllocFastPath++
		h.removeFromList(fit)
	}

	payload := h.place(fit, adjusted)
	errno.Set(errno.None)
	return payload, nil
}

// findFit walks the free lists from adjusted's class through class 7,
// returning the first block (list-walk order) at least adjusted bytes, or
// Null on a miss across every class.
func (h *Heap) findFit(adjusted int) int {
	buf := h.buf()
	for class := classIndex(adjusted); class < NumClasses; class++ {
		sentinel := h.classHeads[class]
		for cur := block.FNext(buf, sentinel); cur != sentinel; cur = block.FNext(buf, cur) {
			if block.SizeOf(buf, cur) >= adjusted {
				return cur
			}
		}
	}
	return Null
}

// place installs an allocated block of size adjusted at fit (already
// removed from its free list), splitting off and re-inserting the remainder
// when it would be a legal block. Returns fit's payload offset.
func (h *Heap) place(fit, adjusted int) int {
	buf := h.buf()
	fitSize := block.SizeOf(buf, fit)
	prevFree := block.PrevFree(buf, fit)

	if fitSize-adjusted >= block.MinBlockSize {
		block.WriteHeader(buf, block.HeaderOff(fit), adjusted, true, prevFree)

		remainder := fit + adjusted
		remSize := fitSize - adjusted
		block.WriteHeader(buf, block.HeaderOff(remainder), remSize, false, false)
		block.WriteFooter(buf, remainder, remSize, false, false)
		succ := block.NextPhys(buf, remainder)
		block.SetPrevFree(buf, succ, true)

		h.insertFront(classIndex(remSize), remainder)
		h.stats.SplitCount++
		return fit
	}

	block.WriteHeader(buf, block.HeaderOff(fit), fitSize, true, prevFree)
	succ := block.NextPhys(buf, fit)
	block.SetPrevFree(buf, succ, false)
	return fit
}

// Free performs mm_free(ptr): a no-op for Null, otherwise clears the
// allocated bit and runs the coalescing state machine.
//
// When Config.StrictFree is set, ptr is validated to lie within the heap's
// used region and to not already be free before anything is mutated,
// returning errno.ErrCorruption on violation — the hardening option
// spec.md §4.5 allows. The default, matching the original, performs no such
// check: freeing a bogus pointer is undefined behavior.
func (h *Heap) Free(ptr int) error {
	if ptr == Null {
		return nil
	}
	h.stats.FreeCalls++
	buf := h.buf()

	if h.cfg.StrictFree {
		if ptr < h.heapBase || !bufbounds.Has(buf[:h.arena.Brk()], ptr, block.Word) {
			errno.Set(errno.Corruption)
			return wrap(errno.ErrCorruption, "mm: free of out-of-range pointer")
		}
		if !block.Allocated(buf, ptr) {
			errno.Set(errno.Corruption)
			return wrap(errno.ErrCorruption, "mm: double free detected")
		}
	}

	size := block.SizeOf(buf, ptr)
	prevFree := block.PrevFree(buf, ptr)
	block.WriteHeader(buf, block.HeaderOff(ptr), size, false, prevFree)
	block.WriteFooter(buf, ptr, size, false, prevFree)

	h.coalesce(ptr)
	errno.Set(errno.None)
	return nil
}

// coalesce implements spec.md §4.4's four-case state machine, dispatched
// implicitly on (PrevFree(p), Allocated(NextPhys(p))) rather than through an
// explicit jump table (spec.md §9 notes the table form has no semantic
// difference from a direct branch in a higher-level language). It merges
// with zero, one, or two physically-adjacent free neighbors and inserts the
// result at the head of its new size-class list.
func (h *Heap) coalesce(payload int) int {
	buf := h.buf()
	size := block.SizeOf(buf, payload)
	result := payload

	if block.PrevFree(buf, payload) {
		prev := block.PrevPhys(buf, payload)
		h.removeFromList(prev)
		size += block.SizeOf(buf, prev)
		result = prev
		h.stats.CoalesceBackward++
	}

	next := block.NextPhys(buf, payload)
	if !block.Allocated(buf, next) {
		h.removeFromList(next)
		size += block.SizeOf(buf, next)
		h.stats.CoalesceForward++
	}

	block.WriteHeader(buf, block.HeaderOff(result), size, false, block.PrevFree(buf, result))
	block.WriteFooter(buf, result, size, false, block.PrevFree(buf, result))

	succ := block.NextPhys(buf, result)
	block.SetPrevFree(buf, succ, true)

	h.insertFront(classIndex(size), result)
	return result
}

// extendHeap performs spec.md §4.4's extend-heap: rounds words up to even to
// preserve 16-byte payload alignment, grows the arena, installs a fresh free
// block over the new bytes (overwriting the prior epilogue), pushes the
// epilogue forward, and coalesces the new block with a free predecessor if
// one exists.
func (h *Heap) extendHeap(words int) (int, error) {
	if words%2 != 0 {
		words++
	}
	deltaBytes := words * block.Word

	prevBrk, err := h.arena.Sbrk(deltaBytes)
	if err != nil {
		return Null, fmt.Errorf("mm: extend heap: %w", err)
	}
	h.stats.GrowCalls++
	h.stats.GrowBytes += int64(deltaBytes)
	if debugAlloc || logGrow {
		log.Printf("mm: extend heap: +%d bytes (grow #%d, brk now %d)", deltaBytes, h.stats.GrowCalls, prevBrk+deltaBytes)
	}

	buf := h.buf()
	newHeaderOff := prevBrk - block.Word
	// The old epilogue lived at newHeaderOff with size 0; its prevFree bit
	// described the same physical predecessor the new block now has.
	_, _, oldPrevFree := block.ReadHeader(buf, newHeaderOff)
	payload := newHeaderOff + block.Word

	block.WriteHeader(buf, newHeaderOff, deltaBytes, false, oldPrevFree)
	block.WriteFooter(buf, payload, deltaBytes, false, oldPrevFree)

	newEpilogueOff := prevBrk + deltaBytes - block.Word
	block.WriteHeader(buf, newEpilogueOff, 0, true, true)

	merged := h.coalesce(payload)
	return merged, nil
}

func (h *Heap) insertFront(classIdx, payload int) {
	buf := h.buf()
	sentinel := h.classHeads[classIdx]
	first := block.FNext(buf, sentinel)
	block.SetFNext(buf, sentinel, payload)
	block.SetFPrev(buf, payload, sentinel)
	block.SetFNext(buf, payload, first)
	block.SetFPrev(buf, first, payload)
}

func (h *Heap) removeFromList(payload int) {
	buf := h.buf()
	prev := block.FPrev(buf, payload)
	next := block.FNext(buf, payload)
	block.SetFNext(buf, prev, next)
	block.SetFPrev(buf, next, prev)
}

func wrap(sentinel error, msg string) error {
	errno.FromError(sentinel)
	return fmt.Errorf("%s: %w", msg, sentinel)
}
