// SPDX-License-Identifier: Apache-2.0
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"

	"stencil/grammar"
	"stencil/internal/codelog"
	"stencil/internal/ir"
	"stencil/internal/lowering"
	"stencil/internal/options"
)

func main() {
	if len(os.Args) < 2 || os.Args[1] != "build" {
		fmt.Println("Usage: stencilc build <file.stn> [-root name] [-dump-dir dir]")
		os.Exit(1)
	}

	fs := flag.NewFlagSet("build", flag.ExitOnError)
	root := fs.String("root", "", "name of the function to realize (defaults to the last func declared)")
	dumpDir := fs.String("dump-dir", "", "directory to write a per-pass IR dump to (disabled if empty)")
	fs.Parse(os.Args[2:])

	if fs.NArg() != 1 {
		fmt.Println("Usage: stencilc build <file.stn> [-root name] [-dump-dir dir]")
		os.Exit(1)
	}
	path := fs.Arg(0)

	if err := build(path, *root, *dumpDir); err != nil {
		color.Red("❌ %s", err)
		os.Exit(1)
	}
}

func build(path, rootName, dumpDir string) error {
	program, err := grammar.ParseFile(path)
	if err != nil {
		// grammar.ParseFile already printed a caret-style diagnostic.
		return fmt.Errorf("parse failed")
	}

	env, order, err := grammar.NewBuilder(path).Build(program)
	if err != nil {
		return err
	}
	if len(order) == 0 {
		return fmt.Errorf("%s declares no pipeline functions", path)
	}
	if rootName == "" {
		rootName = order[len(order)-1]
	}
	root, ok := env[rootName]
	if !ok {
		return fmt.Errorf("no function named %q in %s", rootName, path)
	}

	opts := options.Load()
	c := lowering.NewCompilation(rootName, opts)
	if dumpDir != "" {
		c.Logger = codelog.New(rootName, dumpDir, opts)
	}

	lowered, _, err := lowering.Lower(c, root)
	if err != nil {
		return fmt.Errorf("lowering %q: %w", rootName, err)
	}

	fmt.Println(ir.PrintStmt(lowered))
	color.Green("✅ Lowered %s (root %s)", path, rootName)
	return nil
}
