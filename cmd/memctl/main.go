// Command memctl drives a segalloc heap interactively from scripts of
// alloc/free operations, reporting statistics and heap-walk dumps.
package main

func main() {
	execute()
}
