package main

import (
	"fmt"

	"github.com/lonnb/segalloc/internal/mm"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats [script]",
	Short: "Replay a script and report the allocator's instrumentation counters",
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
		h, _, err := replay(mm.Config{ArenaSize: arenaSize, StrictFree: strictFree}, ops)
		if err != nil {
			return err
		}
		defer h.Deinit()

		s := h.Stats()
		if jsonOut {
			return printJSON(s)
		}
		fmt.Printf("alloc=%d free=%d fast=%d slow=%d split=%d coalesceFwd=%d coalesceBack=%d grow=%d(%dB)\n",
			s.AllocCalls, s.FreeCalls, s.AllocFastPath, s.AllocSlowPath, s.SplitCount,
			s.CoalesceForward, s.CoalesceBackward, s.GrowCalls, s.GrowBytes)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
