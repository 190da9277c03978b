// Package repl SPDX-License-Identifier: Apache-2.0
package repl

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"stencil/grammar"
)

const PROMPT = ">> "

// Start reads .stn source interactively, one declaration at a time. Since a
// func/reduce/schedule declaration commonly spans several lines, input is
// buffered until it parses as a complete Program; after a parse error that
// looks like a premature end of input, the buffer is kept and more lines
// are requested, so the user can keep typing a multi-line schedule block.
// grammar.ParseString still prints its diagnostic for every failed parse,
// including these intermediate ones; other failed input is discarded.
func Start(in io.Reader) {
	scanner := bufio.NewScanner(in)
	var buf strings.Builder

	for {
		fmt.Print(PROMPT)
		if !scanner.Scan() {
			return
		}
		buf.WriteString(scanner.Text())
		buf.WriteString("\n")

		source := buf.String()
		prog, err := grammar.ParseString("<repl>", source)
		if err != nil {
			if looksIncomplete(source) {
				continue
			}
			buf.Reset()
			continue
		}
		buf.Reset()

		fmt.Printf("AST:\n%s\n", prog.String())

		env, order, err := grammar.NewBuilder("<repl>").Build(prog)
		if err != nil {
			fmt.Println(err)
			continue
		}
		for _, name := range order {
			fn := env[name]
			fmt.Printf("%s: %s -> %s\n", name, fn.Args, fn.Type)
		}
	}
}

// looksIncomplete is a coarse heuristic: an open brace outnumbering a close
// brace, or a trailing line with no terminating ";" or "}", usually means
// the user is still mid-declaration rather than having typed something
// genuinely malformed.
func looksIncomplete(source string) bool {
	if strings.Count(source, "{") > strings.Count(source, "}") {
		return true
	}
	trimmed := strings.TrimSpace(source)
	return trimmed != "" && !strings.HasSuffix(trimmed, ";") && !strings.HasSuffix(trimmed, "}")
}
