package lsp

import (
	"github.com/alecthomas/participle/v2/lexer"

	"stencil/grammar"
)

// SemanticToken represents a single LSP semantic token entry. Line and
// StartChar are 0-based positions; TokenType is an index into
// SemanticTokenTypes; TokenModifiers is a bitmask over SemanticTokenModifiers.
type SemanticToken struct {
	Line           uint32
	StartChar      uint32
	Length         uint32
	TokenType      int
	TokenModifiers int
}

func collectSemanticTokens(program *grammar.Program) []SemanticToken {
	var tokens []SemanticToken
	if program == nil {
		return tokens
	}
	for _, d := range program.Decls {
		tokens = append(tokens, walkDecl(d)...)
	}
	return tokens
}

func walkDecl(d *grammar.Decl) []SemanticToken {
	switch {
	case d.Param != nil:
		return walkParam(d.Param)
	case d.Func != nil:
		return walkFunc(d.Func)
	case d.Reduce != nil:
		return walkReduce(d.Reduce)
	case d.Schedule != nil:
		return walkSchedule(d.Schedule)
	}
	return nil
}

func walkParam(p *grammar.ParamDecl) []SemanticToken {
	tokens := []SemanticToken{makeToken(p.Pos, p.Name, "variable", 1)}
	if p.Type != nil {
		tokens = append(tokens, typeReferenceToken(p.Type)...)
	}
	return tokens
}

func walkFunc(f *grammar.FuncDecl) []SemanticToken {
	tokens := []SemanticToken{makeToken(f.Pos, f.Name, "function", 1)}
	// Args is a bare []string (the grammar keeps no per-argument lexer
	// position), so these parameter tokens all land at the FuncDecl's own
	// position; editors still get a highlight, just not a precise one.
	for _, a := range f.Args {
		tokens = append(tokens, makeToken(f.Pos, a, "parameter", 1))
	}
	tokens = append(tokens, walkExpr(f.Body)...)
	return tokens
}

func walkReduce(r *grammar.ReduceDecl) []SemanticToken {
	tokens := []SemanticToken{makeToken(r.Pos, r.Name, "function", 0)}
	for _, a := range r.Args {
		tokens = append(tokens, walkExpr(a)...)
	}
	tokens = append(tokens, walkExpr(r.Body)...)
	for _, d := range r.Dims {
		tokens = append(tokens, makeToken(d.Pos, d.Var, "variable", 1))
		tokens = append(tokens, walkExpr(d.Min)...)
		tokens = append(tokens, walkExpr(d.Max)...)
	}
	return tokens
}

func walkSchedule(s *grammar.ScheduleDecl) []SemanticToken {
	tokens := []SemanticToken{makeToken(s.Pos, s.Name, "function", 0)}
	for _, dir := range s.Directives {
		tokens = append(tokens, makeToken(dir.Pos, dir.Name, "keyword", 0))
		for _, a := range dir.Args {
			if a.Ident != nil {
				tokens = append(tokens, makeToken(a.Pos, *a.Ident, "variable", 0))
			} else if a.Number != nil {
				tokens = append(tokens, makeToken(a.Pos, *a.Number, "number", 0))
			}
		}
	}
	return tokens
}

func walkExpr(e *grammar.Expr) []SemanticToken {
	if e == nil {
		return nil
	}
	return walkOr(e.Or)
}

func walkOr(o *grammar.OrExpr) []SemanticToken {
	tokens := walkAnd(o.Left)
	for _, r := range o.Rest {
		tokens = append(tokens, walkAnd(r)...)
	}
	return tokens
}

func walkAnd(a *grammar.AndExpr) []SemanticToken {
	tokens := walkCompare(a.Left)
	for _, r := range a.Rest {
		tokens = append(tokens, walkCompare(r)...)
	}
	return tokens
}

func walkCompare(c *grammar.CompareExpr) []SemanticToken {
	tokens := walkAdd(c.Left)
	if c.Right != nil {
		tokens = append(tokens, walkAdd(c.Right)...)
	}
	return tokens
}

func walkAdd(a *grammar.AddExpr) []SemanticToken {
	tokens := walkMul(a.Left)
	for _, op := range a.Ops {
		tokens = append(tokens, walkMul(op.Right)...)
	}
	return tokens
}

func walkMul(m *grammar.MulExpr) []SemanticToken {
	tokens := walkUnary(m.Left)
	for _, op := range m.Ops {
		tokens = append(tokens, walkUnary(op.Right)...)
	}
	return tokens
}

func walkUnary(u *grammar.UnaryExpr) []SemanticToken {
	return walkPrimary(u.Value)
}

func walkPrimary(p *grammar.PrimaryExpr) []SemanticToken {
	switch {
	case p.Call != nil:
		return walkCall(p.Call)
	case p.Ident != nil:
		return []SemanticToken{makeToken(p.Pos, *p.Ident, "variable", 0)}
	case p.Paren != nil:
		return walkExpr(p.Paren)
	}
	return nil
}

func walkCall(c *grammar.CallExpr) []SemanticToken {
	tokens := []SemanticToken{makeToken(c.Pos, c.Name, "function", 0)}
	for _, a := range c.Args {
		tokens = append(tokens, walkExpr(a)...)
	}
	return tokens
}

func makeToken(pos lexer.Position, value, tokenType string, decl int) SemanticToken {
	return SemanticToken{
		Line:           uint32(pos.Line - 1),
		StartChar:      uint32(pos.Column - 1),
		Length:         uint32(len(value)),
		TokenType:      indexOf(tokenType, SemanticTokenTypes),
		TokenModifiers: decl << indexOf("declaration", SemanticTokenModifiers),
	}
}

// typeReferenceToken collects the token for a param's type annotation.
func typeReferenceToken(t *grammar.TypeName) []SemanticToken {
	if t.Buffer != nil {
		return []SemanticToken{makeToken(t.Buffer.Pos, t.Buffer.Elem, "type", 0)}
	}
	if t.Scalar == "" {
		return nil
	}
	return []SemanticToken{makeToken(t.Pos, t.Scalar, "type", 0)}
}

// indexOf returns the index of a string in a list, or -1 if not found.
func indexOf(target string, list []string) int {
	for i, v := range list {
		if v == target {
			return i
		}
	}
	return -1
}
