package grammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// StencilLexer tokenizes .stn source. Keywords (param, func, reduce,
// schedule, over, in, buffer, and every schedule directive name) are not
// distinguished at the lexical level — they are plain Ident tokens the
// grammar matches against literal strings, exactly as the language this
// lexer is adapted from does for "module"/"struct"/"fun".
var StencilLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		// Comments
		{"DocComment", `///[^\n]*`, nil},
		// Comments
		{"Comment", `//[^\n]*`, nil},

		// Keywords and Identifiers (order matters)
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},

		// Integer literals
		{"Integer", `0x[0-9a-fA-F]+|[0-9]+`, nil},

		// Operators
		{"Operator", `(\|\||&&|==|!=|<=|>=|\+=|-=|\*=|/=|%=|=|[-+*/%&|<>])`, nil},

		// Punctuation (must come after operators)
		{"Punctuation", `[{}[\]#:,;<>()<>.!*-]`, nil},

		// Special tokens
		{"Symbol", `[!]`, nil},

		// Whitespace
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
