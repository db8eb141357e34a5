package main

import (
	"fmt"
	"strconv"

	"github.com/lonnb/segalloc/internal/mm"
	"github.com/spf13/cobra"
)

var freeCmd = &cobra.Command{
	Use:   "free <script> <index>",
	Short: "Replay a script, free the allocation at index, and append the op",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		script := args[0]
		idx, err := strconv.Atoi(args[1])
		if err != nil {
			return err
		}

		ops, err := parseScript(script)
		if err != nil {
			return err
		}
		h, ptrs, err := replay(mm.Config{ArenaSize: arenaSize, StrictFree: strictFree}, ops)
		if err != nil {
			return err
		}
		defer h.Deinit()

		if idx < 0 || idx >= len(ptrs) {
			return fmt.Errorf("index %d out of range (%d allocations so far)", idx, len(ptrs))
		}
		if err := h.Free(ptrs[idx]); err != nil {
			fail(err)
		}
		if err := appendScript(script, op{"free", idx}); err != nil {
			return err
		}

		if jsonOut {
			return printJSON(map[string]any{"freed": idx})
		}
		fmt.Printf("freed allocation #%d\n", idx)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(freeCmd)
}
