package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	arenaSize  int
	strictFree bool
	jsonOut    bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:     "memctl",
	Short:   "Drive a segregated-free-list memory allocator from the command line",
	Long:    `memctl initializes, allocates from, frees into, and inspects a segalloc heap.`,
	Version: "0.1.0",
}

func init() {
	rootCmd.PersistentFlags().
		IntVarP(&arenaSize, "arena-size", "a", 0, "bytes requested from the OS for the arena (0 = default)")
	rootCmd.PersistentFlags().
		BoolVar(&strictFree, "strict-free", false, "validate pointers passed to free (hardening option, spec.md §4.5)")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "emit JSON instead of text")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}
