// Package main provides the entry point for rv32sim.
// rv32sim is a batched RV32I decode core with emulated DRAM.
//
// For the disassembler CLI, use: go run ./cmd/rvdump
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("rv32sim - RV32I batched decode core")
	fmt.Println("")
	fmt.Println("Usage: rvdump [options] <program.bin>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -base      Load address and initial PC")
	fmt.Println("  -width     Decoder batch width in lanes")
	fmt.Println("  -config    Path to configuration JSON file")
	fmt.Println("  -v         Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/rvdump' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/rvdump' instead.")
	}
}
