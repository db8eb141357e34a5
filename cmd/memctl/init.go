package main

import (
	"fmt"

	"github.com/lonnb/segalloc/internal/mm"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init [script]",
	Short: "Initialize a heap, optionally replaying a prior script, and report its state",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		script := ""
		if len(args) == 1 {
			script = args[0]
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

		if jsonOut {
			return printJSON(map[string]any{"liveAllocations": len(liveOf(ptrs)), "stats": h.Stats()})
		}
		fmt.Printf("heap initialized: %d live allocation(s), brk=%d\n", len(liveOf(ptrs)), h.Brk())
		return nil
	},
}

func liveOf(ptrs []int) []int {
	var live []int
	for _, p := range ptrs {
		if p != mm.Null {
			live = append(live, p)
		}
	}
	return live
}

func init() {
	rootCmd.AddCommand(initCmd)
}
