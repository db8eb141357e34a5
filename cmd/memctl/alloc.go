package main

import (
	"fmt"
	"strconv"

	"github.com/lonnb/segalloc/internal/mm"
	"github.com/spf13/cobra"
)

var allocCmd = &cobra.Command{
	Use:   "alloc <script> <size>",
	Short: "Replay a script, allocate size bytes, append the op, and report the result",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		script := args[0]
		size, err := strconv.Atoi(args[1])
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

		p, err := h.Malloc(size)
		if err != nil {
			fail(err)
		}
		if err := appendScript(script, op{"alloc", size}); err != nil {
			return err
		}

		idx := len(ptrs)
		if jsonOut {
			return printJSON(map[string]any{"index": idx, "ptr": p})
		}
		fmt.Printf("allocation #%d: ptr=%d\n", idx, p)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(allocCmd)
}
