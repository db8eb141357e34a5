package main

import (
	"fmt"
	"strings"

	"github.com/lonnb/segalloc/internal/diag"
	"github.com/lonnb/segalloc/internal/mm"
)

// renderHeapMap draws one line per size class's free-list length followed
// by a compact block-by-block map of the heap, free blocks in green,
// allocated in red (styles.go).
func renderHeapMap(h *mm.Heap) string {
	var b strings.Builder

	fmt.Fprintln(&b, "free lists:")
	for i := 0; i < mm.NumClasses; i++ {
		fmt.Fprintf(&b, "  class %d: %d free block(s)\n", i, h.FreeListLen(i))
	}

	b.WriteString("\nblocks:\n")
	for _, blk := range diag.Walk(h) {
		if blk.Kind != diag.KindRegular {
			continue
		}
		cell := fmt.Sprintf("[%d]", blk.Size)
		if blk.Allocated {
			b.WriteString(allocBlockStyle.Render(cell))
		} else {
			b.WriteString(freeBlockStyle.Render(cell))
		}
	}
	return b.String()
}
