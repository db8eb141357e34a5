package main

import (
	"fmt"
	"os"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lonnb/segalloc/internal/mm"
	"github.com/spf13/cobra"
)

var arenaSize int

var rootCmd = &cobra.Command{
	Use:   "memviz",
	Short: "Live TUI visualizing a segalloc heap's free lists and block map",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newModel(mm.Config{ArenaSize: arenaSize})
		if err != nil {
			return err
		}
		p := tea.NewProgram(m)
		_, err = p.Run()
		return err
	},
}

func init() {
	rootCmd.Flags().IntVarP(&arenaSize, "arena-size", "a", 0, "bytes requested from the OS for the arena (0 = default)")
}

// copyToClipboard binds memviz's 'y' key to the same clipboard affordance
// cmd/hiveexplorer offers for registry paths (clipboard_test.go), here for
// a heap-map text dump instead of a key path.
func copyToClipboard(s string) error {
	return clipboard.WriteAll(s)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
