// SPDX-License-Identifier: Apache-2.0
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"stencil/grammar"
)

// main is the minimal "parse and print" entry point: it parses a single
// .stn file and prints the reconstructed source of its declarations.
// cmd/stencilc is the fuller build driver (scheduling, lowering, codegen).
func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: stencil <file.stn>")
		os.Exit(1)
	}

	path := os.Args[1]
	program, err := grammar.ParseFile(path)
	if err != nil {
		os.Exit(1)
	}

	fmt.Println("Parsed program:")
	fmt.Print(program.String())

	color.Green("✅ Successfully parsed %s", path)
}
