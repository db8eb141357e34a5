package mm

import "github.com/lonnb/segalloc/internal/block"

// The accessors below exist for internal/diag's heap walker and for
// cmd/memviz's live view; nothing in the allocator's hot path uses them.

// Buf returns the arena's backing byte slice, addressed by the same payload
// offsets Malloc/Free use.
func (h *Heap) Buf() []byte { return h.buf() }

// Brk returns the current brk offset.
func (h *Heap) Brk() int { return h.arena.Brk() }

// HeapBase returns the payload offset of the first non-sentinel block,
// constant for the life of a Heap.
func (h *Heap) HeapBase() int { return h.heapBase }

// ClassHead returns the sentinel payload offset anchoring size-class i's
// free list.
func (h *Heap) ClassHead(i int) int { return h.classHeads[i] }

// ClassIndex exposes classIndex for callers outside the package (diag,
// memctl) that need to report which list a block belongs in.
func ClassIndex(size int) int { return classIndex(size) }

// FreeListLen returns the number of blocks currently on size class i's free
// list, for callers (cmd/memviz) that just want a count rather than a walk.
func (h *Heap) FreeListLen(i int) int {
	buf := h.buf()
	sentinel := h.classHeads[i]
	n := 0
	for cur := block.FNext(buf, sentinel); cur != sentinel; cur = block.FNext(buf, cur) {
		n++
	}
	return n
}
