// Package arena owns the single contiguous virtual-memory region the
// allocator lives inside: a triple (heap_start, brk, heap_end) of addresses,
// backed by one anonymous private mapping obtained once at mm_init and
// released once at mm_deinit.
//
// This mirrors how hivekit's hive/dirty package talks to the OS for a
// memory-mapped file (golang.org/x/sys/unix.Mmap/Munmap/Msync) — here the
// mapping backs anonymous memory instead of a file, so there's no file
// descriptor and no flush path, just acquire/release.
package arena

import (
	"fmt"

	"github.com/lonnb/segalloc/internal/errno"
)

// PageSize is the unit arena-acquire rounds requests up to.
const PageSize = 4096

// Arena owns one anonymous mapping and the movable brk cursor inside it.
//
// heap_start <= brk <= heap_end holds at every observable moment. The owned
// region is [heap_start, brk); the reserve is [brk, heap_end).
type Arena struct {
	data []byte // the full mapping; len(data) == heap_end - heap_start
	brk  int    // offset into data, relative to heap_start
}

// Init acquires a region of ceil(size, PageSize) bytes of private anonymous
// memory from the OS. heap_start and brk both start at the mapping's base;
// heap_end is the mapping's end.
//
// Fails with errno.ErrInvalidArgument when size == 0, errno.ErrInternal when
// already initialized, and errno.ErrNoMemory when the OS mapping fails.
func (a *Arena) Init(size int) error {
	if a.data != nil {
		return wrap(errno.ErrInternal, "already initialized")
	}
	if size <= 0 {
		return wrap(errno.ErrInvalidArgument, "size must be > 0")
	}

	rounded := roundUp(size, PageSize)
	data, err := mmapAnon(rounded)
	if err != nil {
		return wrap(errno.ErrNoMemory, fmt.Sprintf("mmap failed: %v", err))
	}

	a.data = data
	a.brk = 0
	return nil
}

// Deinit returns the mapping to the OS and zeros the three boundary
// pointers. Idempotent when uninitialized.
//
// Fails with errno.ErrCorruption if the boundary invariant has been
// violated, errno.ErrInternal if the OS rejects the unmap.
func (a *Arena) Deinit() error {
	if a.data == nil {
		return nil
	}
	if a.brk < 0 || a.brk > len(a.data) {
		return wrap(errno.ErrCorruption, "brk outside [heap_start, heap_end]")
	}
	if err := munmapAnon(a.data); err != nil {
		return wrap(errno.ErrInternal, fmt.Sprintf("munmap failed: %v", err))
	}
	a.data = nil
	a.brk = 0
	return nil
}

// Sbrk adjusts brk by the signed delta (in bytes) and returns the *previous*
// brk offset (relative to heap_start). On failure brk is left unchanged.
//
// Fails with errno.ErrInternal if uninitialized, errno.ErrInvalidArgument if
// the new brk would fall below heap_start, errno.ErrNoMemory if it would
// reach or exceed heap_end — an exact fill of the arena is rejected, matching
// the original implementation's exclusive treatment of heap_end (see
// SPEC_FULL.md §E).
func (a *Arena) Sbrk(delta int) (int, error) {
	if a.data == nil {
		return 0, wrap(errno.ErrInternal, "sbrk before init")
	}
	newBrk := a.brk + delta
	if newBrk < 0 {
		return 0, wrap(errno.ErrInvalidArgument, "sbrk would move brk below heap_start")
	}
	if newBrk >= len(a.data) {
		return 0, wrap(errno.ErrNoMemory, "sbrk would reach or exceed heap_end")
	}
	prev := a.brk
	a.brk = newBrk
	return prev, nil
}

// Initialized reports whether Init has succeeded without a matching Deinit.
func (a *Arena) Initialized() bool {
	return a.data != nil
}

// Brk returns the current brk offset, relative to heap_start.
func (a *Arena) Brk() int {
	return a.brk
}

// Size returns heap_end - heap_start, i.e. the total mapping length.
func (a *Arena) Size() int {
	return len(a.data)
}

// Bytes returns the full backing mapping as a byte slice. Index 0 corresponds
// to heap_start; len(Bytes()) corresponds to heap_end. Callers in
// internal/block and internal/mm address everything as an offset into this
// slice rather than as a raw pointer.
func (a *Arena) Bytes() []byte {
	return a.data
}

// Used returns the owned region [heap_start, brk) as a byte slice.
func (a *Arena) Used() []byte {
	return a.data[:a.brk]
}

func roundUp(n, multiple int) int {
	return (n + multiple - 1) / multiple * multiple
}

func wrap(sentinel error, msg string) error {
	errno.FromError(sentinel)
	return fmt.Errorf("arena: %s: %w", msg, sentinel)
}
