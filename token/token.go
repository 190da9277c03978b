// Package token SPDX-License-Identifier: Apache-2.0
package token

import "fmt"

// Position locates a token or diagnostic in a source file: the file it came
// from, a byte offset into that file, and the 1-based line/column the
// offset corresponds to. Every diagnostic consumer (internal/cerr,
// internal/lsp) shares this type; tokenization itself runs through
// participle's own lexer (grammar.StencilLexer), so the TokenType/keyword
// table that used to live alongside this type has no remaining caller and
// was dropped.
type Position struct {
	Filename string
	Offset   int
	Line     int
	Column   int
}

func (p Position) String() string {
	if p.Filename == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}
