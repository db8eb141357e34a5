package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/lonnb/segalloc/internal/mm"
)

// The allocator's arena lives entirely in one process's memory and
// disappears at mm_deinit (spec.md §5), so memctl has nothing like
// hivectl's persistent .hive file to operate on across invocations. A
// script file stands in for that state: each line is one prior operation
// ("alloc 64" or "free 2"), replayed in order against a fresh Heap to
// reconstruct the allocator state a subcommand needs, the index of each
// "alloc" line becoming that allocation's index for later "free" lines.
type op struct {
	kind string // "alloc" or "free"
	arg  int
}

func parseScript(path string) ([]op, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open script: %w", err)
	}
	defer f.Close()

	var ops []op
	sc := bufio.NewScanner(f)
	for lineNo := 1; sc.Scan(); lineNo++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("script line %d: expected '<alloc|free> <n>', got %q", lineNo, line)
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("script line %d: %w", lineNo, err)
		}
		switch fields[0] {
		case "alloc", "free":
			ops = append(ops, op{kind: fields[0], arg: n})
		default:
			return nil, fmt.Errorf("script line %d: unknown op %q", lineNo, fields[0])
		}
	}
	return ops, sc.Err()
}

func appendScript(path string, o op) error {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("append script: %w", err)
	}
	defer f.Close()
	_, err = fmt.Fprintf(f, "%s %d\n", o.kind, o.arg)
	return err
}

// replay builds a heap and replays ops against it, returning the pointer
// recorded for each "alloc" op in order (freed slots become mm.Null).
func replay(cfg mm.Config, ops []op) (*mm.Heap, []int, error) {
	h := &mm.Heap{}
	if err := h.Init(cfg); err != nil {
		return nil, nil, fmt.Errorf("init: %w", err)
	}
	var ptrs []int
	for i, o := range ops {
		switch o.kind {
		case "alloc":
			p, err := h.Malloc(o.arg)
			if err != nil {
				return nil, nil, fmt.Errorf("replay line %d (alloc %d): %w", i+1, o.arg, err)
			}
			ptrs = append(ptrs, p)
		case "free":
			if o.arg < 0 || o.arg >= len(ptrs) {
				return nil, nil, fmt.Errorf("replay line %d (free %d): index out of range", i+1, o.arg)
			}
			if err := h.Free(ptrs[o.arg]); err != nil {
				return nil, nil, fmt.Errorf("replay line %d (free %d): %w", i+1, o.arg, err)
			}
			ptrs[o.arg] = mm.Null
		}
	}
	return h, ptrs, nil
}
