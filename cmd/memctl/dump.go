package main

import (
	"fmt"

	"github.com/lonnb/segalloc/internal/diag"
	"github.com/lonnb/segalloc/internal/mm"
	"github.com/spf13/cobra"
)

var dumpCmd = &cobra.Command{
	Use:   "dump [script]",
	Short: "Replay a script and print a block-by-block heap-walk dump",
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

		blocks := diag.Walk(h)
		if jsonOut {
			return printJSON(blocks)
		}
		for _, b := range blocks {
			status := "free"
			if b.Allocated {
				status = "alloc"
			}
			if b.Kind == diag.KindRegular && !b.Allocated {
				fmt.Printf("%-9s off=%-8d payload=%-8d size=%-6d %s class=%d\n", b.Kind, b.Offset, b.Payload, b.Size, status, b.ClassIdx)
			} else {
				fmt.Printf("%-9s off=%-8d payload=%-8d size=%-6d %s\n", b.Kind, b.Offset, b.Payload, b.Size, status)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)
}
