// Package errno mirrors the conventional errno pattern: a single process-wide
// integer slot recording the last error kind, alongside get/set accessors.
// It requires no synchronization — the allocator above it is not thread-safe
// either.
package errno

import "errors"

// Code is one of the stable numeric error codes the spec defines.
type Code int

const (
	None            Code = 0
	NoMemory        Code = 1
	InvalidArgument Code = 2
	Alignment       Code = 3
	Corruption      Code = 4
	Internal        Code = 5
)

// Sentinel errors, one per Code, for errors.Is-compatible wrapping by the
// layers above (arena, mm).
var (
	ErrNoMemory        = errors.New("errno: no memory")
	ErrInvalidArgument = errors.New("errno: invalid argument")
	ErrAlignment       = errors.New("errno: alignment violation")
	ErrCorruption      = errors.New("errno: heap corruption detected")
	ErrInternal        = errors.New("errno: internal allocator error")
)

// codeOf maps a sentinel to its numeric Code; used by Set indirectly via
// FromError so callers don't have to hand-maintain the mapping twice.
var codeOf = map[error]Code{
	ErrNoMemory:        NoMemory,
	ErrInvalidArgument: InvalidArgument,
	ErrAlignment:       Alignment,
	ErrCorruption:      Corruption,
	ErrInternal:        Internal,
}

// current is the process-wide slot. Like C's errno, it is only meaningful
// immediately after an operation that can fail.
var current = None

// Get retrieves the value of the current error slot.
func Get() Code {
	return current
}

// Set stores val in the current error slot.
func Set(val Code) {
	current = val
}

// FromError sets the error slot from err by matching it against the known
// sentinels (via errors.Is), falling back to Internal for unrecognized
// errors and None for a nil err. It returns the Code it set, so callers can
// use it directly as a return value.
func FromError(err error) Code {
	if err == nil {
		Set(None)
		return None
	}
	for sentinel, code := range codeOf {
		if errors.Is(err, sentinel) {
			Set(code)
			return code
		}
	}
	Set(Internal)
	return Internal
}

// String renders a Code the way a diagnostic dump or CLI would.
func (c Code) String() string {
	switch c {
	case None:
		return "none"
	case NoMemory:
		return "no-memory"
	case InvalidArgument:
		return "invalid-argument"
	case Alignment:
		return "alignment"
	case Corruption:
		return "corruption"
	case Internal:
		return "internal"
	default:
		return "unknown"
	}
}
