package mm

import "github.com/lonnb/segalloc/internal/arena"

// NumClasses is the number of segregated free lists spec.md §3 fixes at 8.
const NumClasses = 8

// Config tunes a Heap at Init time. The zero value is a legal configuration:
// ArenaSize defaults to DefaultArenaSize and StrictFree defaults to off,
// matching the original's unchecked mm_free (spec.md §4.5).
type Config struct {
	// ArenaSize is the number of bytes requested from arena.Arena.Init. If
	// zero, DefaultArenaSize is used. The spec leaves this
	// implementation-chosen (spec.md §4.4 "default size is
	// implementation-chosen"); callers that need a precise heap size set it
	// explicitly.
	ArenaSize int

	// StrictFree opts into the hardening check spec.md §4.5 describes as
	// optional: Free rejects a pointer outside the arena bounds or one that
	// already appears free, returning errno.ErrCorruption instead of the
	// original's unchecked behavior.
	StrictFree bool
}

// DefaultArenaSize is used when Config.ArenaSize is zero: four pages, room
// for the fixed sentinel/epilogue reservation, mm_init's initial one-page
// extend-heap (spec.md §4.4 step 5), and two further one-page extensions.
const DefaultArenaSize = 4 * arena.PageSize
