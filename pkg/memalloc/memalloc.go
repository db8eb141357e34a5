// Package memalloc re-exports internal/mm as the spec's C-shaped external
// interface (spec.md §6): a single process-wide allocator instance behind
// mm_init/mm_deinit/mm_malloc/mm_free-style free functions plus get/set
// errno accessors, for callers that want exactly that surface. Code inside
// this module (cmd/memctl, cmd/memviz) owns internal/mm.Heap values directly
// instead; internal/mm cannot be imported from outside the module, so
// external embedders go through the single global instance this package
// provides.
package memalloc

import (
	"github.com/lonnb/segalloc/internal/diag"
	"github.com/lonnb/segalloc/internal/errno"
	"github.com/lonnb/segalloc/internal/mm"
)

// Ptr is the spec's payload address type: an offset into the arena, or Null.
type Ptr = int

// Null is the spec's null payload address.
const Null Ptr = mm.Null

var global mm.Heap

// Init performs mm_init(size): 0 on success, -1 on failure. The error
// channel (GetErrno) carries the failure reason.
func Init(size int) int {
	if err := global.Init(mm.Config{ArenaSize: size}); err != nil {
		return -1
	}
	return 0
}

// InitWithConfig is the Go-idiomatic counterpart to Init for callers that
// want StrictFree or another ArenaSize without going through the numeric
// C-shaped signature.
func InitWithConfig(cfg mm.Config) error {
	return global.Init(cfg)
}

// Deinit performs mm_deinit(): 0 on success, -1 on failure.
func Deinit() int {
	if err := global.Deinit(); err != nil {
		return -1
	}
	return 0
}

// Malloc performs mm_malloc(size): the payload address, or Null on failure.
func Malloc(size int) Ptr {
	p, _ := global.Malloc(size)
	return p
}

// Free performs mm_free(ptr). ptr == Null is a legitimate no-op.
func Free(ptr Ptr) {
	_ = global.Free(ptr)
}

// GetErrno returns the process-wide error slot's current value.
func GetErrno() int { return int(errno.Get()) }

// SetErrno sets the process-wide error slot.
func SetErrno(code int) { errno.Set(errno.Code(code)) }

// Stats exposes the global heap's instrumentation counters (SPEC_FULL.md §D.2).
func Stats() mm.Stats { return global.Stats() }

// Check runs the heap-walking invariant checker (SPEC_FULL.md §D.1) against
// the global heap.
func Check() []diag.ValidationError { return diag.Check(&global) }

// Walk returns a block-by-block snapshot of the global heap.
func Walk() []diag.BlockInfo { return diag.Walk(&global) }

// Initialized reports whether Init has succeeded without a matching Deinit.
func Initialized() bool { return global.Initialized() }
