package ir

import (
	"fmt"
	"strings"
)

// Printer renders a Stmt tree to a stable, human-readable form; round-trips
// through parse are not required. An indent-tracking strings.Builder with
// writeIndent/writeLine helpers.
type Printer struct {
	indent int
	output strings.Builder
}

// NewPrinter creates a new IR printer.
func NewPrinter() *Printer { return &Printer{} }

// PrintStmt renders s and returns the accumulated output.
func PrintStmt(s Stmt) string {
	p := NewPrinter()
	p.stmt(s)
	return p.output.String()
}

// PrintExpr renders e as a single-line expression string.
func PrintExpr(e Expr) string { return exprString(e) }

func (p *Printer) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.output.WriteString("  ")
	}
}

func (p *Printer) writeLine(format string, args ...any) {
	p.writeIndent()
	p.output.WriteString(fmt.Sprintf(format, args...))
	p.output.WriteString("\n")
}

func (p *Printer) stmt(s Stmt) {
	if s == nil {
		p.writeLine("{}")
		return
	}
	switch n := s.(type) {
	case *LetStmt:
		p.writeLine("let %s = %s", n.Name, exprString(n.Value))
		p.stmt(n.Body)
	case *AssertStmt:
		p.writeLine("assert(%s, %q)", exprString(n.Cond), n.Message)
	case *PrintStmt:
		p.writeLine("print(%q, %s)", n.Prefix, exprArgs(n.Args))
	case *For:
		tag := ""
		if n.SplitInfo != nil {
			tag = fmt.Sprintf(" [%s]", fragmentName(n.SplitInfo.Fragment))
		}
		p.writeLine("for %s(%s, %s, %s)%s {", n.ForType, n.Name, exprString(n.Min), exprString(n.Extent), tag)
		p.indent++
		p.stmt(n.Body)
		p.indent--
		p.writeLine("}")
	case *Store:
		p.writeLine("%s[%s] = %s", n.Name, exprString(n.Index), exprString(n.Value))
	case *Provide:
		p.writeLine("%s(%s) = %s", n.Name, exprArgs(n.Args), exprString(n.Value))
	case *Allocate:
		p.writeLine("allocate %s[%s] of %s {", n.Name, exprString(n.Size), n.T)
		p.indent++
		p.stmt(n.Body)
		p.indent--
		p.writeLine("}")
	case *Realize:
		p.writeLine("realize %s(%s) of %s {", n.Name, rangeArgs(n.Bounds), n.T)
		p.indent++
		p.stmt(n.Body)
		p.indent--
		p.writeLine("}")
	case *Pipeline:
		p.writeLine("produce %s {", n.Name)
		p.indent++
		p.stmt(n.Produce)
		p.indent--
		p.writeLine("}")
		if n.Update != nil {
			p.writeLine("update %s {", n.Name)
			p.indent++
			p.stmt(n.Update)
			p.indent--
			p.writeLine("}")
		}
		p.stmt(n.Consume)
	case *Block:
		p.stmt(n.First)
		if n.Rest != nil {
			p.stmt(n.Rest)
		}
	case *StmtTargetVar:
		p.writeLine("target_var %s {", n.Name)
		p.indent++
		p.stmt(n.Body)
		p.indent--
		p.writeLine("}")
	default:
		panic("ir.Printer: unknown stmt variant")
	}
}

func fragmentName(f LoopFragment) string {
	switch f {
	case FragmentBefore:
		return "before"
	case FragmentMain:
		return "main"
	case FragmentAfter:
		return "after"
	default:
		return "whole"
	}
}

func exprArgs(args []Expr) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = exprString(a)
	}
	return strings.Join(parts, ", ")
}

func rangeArgs(ranges []Range) string {
	parts := make([]string, len(ranges))
	for i, r := range ranges {
		parts[i] = fmt.Sprintf("[%s, %s)", exprString(r.Min), exprString(r.Extent))
	}
	return strings.Join(parts, ", ")
}

func exprString(e Expr) string {
	if e == nil {
		return "<nil>"
	}
	switch n := e.(type) {
	case *IntImm:
		return fmt.Sprintf("%d", n.Value)
	case *FloatImm:
		return fmt.Sprintf("%g", n.Value)
	case *Variable:
		return n.Name
	case *Cast:
		return fmt.Sprintf("cast<%s>(%s)", n.To, exprString(n.Value))
	case *Not:
		return fmt.Sprintf("!%s", exprString(n.Value))
	case *SignFill:
		return fmt.Sprintf("sign_fill(%s)", exprString(n.Value))
	case *Binary:
		return fmt.Sprintf("(%s %s %s)", exprString(n.A), n.Op, exprString(n.B))
	case *Compare:
		return fmt.Sprintf("(%s %s %s)", exprString(n.A), n.Op, exprString(n.B))
	case *Logical:
		return fmt.Sprintf("(%s %s %s)", exprString(n.A), n.Op, exprString(n.B))
	case *Select:
		return fmt.Sprintf("select(%s, %s, %s)", exprString(n.Cond), exprString(n.TrueVal), exprString(n.FalseVal))
	case *Load:
		return fmt.Sprintf("%s[%s]", n.Name, exprString(n.Index))
	case *Ramp:
		return fmt.Sprintf("ramp(%s, %s, %d)", exprString(n.Base), exprString(n.Stride), n.Lanes)
	case *Broadcast:
		return fmt.Sprintf("x%d(%s)", n.Lanes, exprString(n.Value))
	case *Call:
		return fmt.Sprintf("%s(%s)", n.Name, exprArgs(n.Args))
	case *Let:
		return fmt.Sprintf("(let %s = %s in %s)", n.Name, exprString(n.Value), exprString(n.Body))
	case *Clamp:
		if n.P1 != nil {
			return fmt.Sprintf("clamp_%s(%s, %s, %s, %s)", n.ClampKind, exprString(n.A), exprString(n.Min), exprString(n.Max), exprString(n.P1))
		}
		return fmt.Sprintf("clamp_%s(%s, %s, %s)", n.ClampKind, exprString(n.A), exprString(n.Min), exprString(n.Max))
	case *Infinity:
		if n.Sign < 0 {
			return "-inf"
		}
		return "+inf"
	case *Solve:
		return fmt.Sprintf("solve(%s, %s)", n.Var, exprString(n.Body))
	case *TargetVar:
		return fmt.Sprintf("target_var(%s, %s)", n.Name, exprString(n.Body))
	default:
		panic("ir.exprString: unknown expr variant")
	}
}

// String implementations satisfy the Node interface for every variant.

func (n *IntImm) String() string    { return exprString(n) }
func (n *FloatImm) String() string  { return exprString(n) }
func (n *Variable) String() string  { return exprString(n) }
func (n *Cast) String() string      { return exprString(n) }
func (n *Not) String() string       { return exprString(n) }
func (n *SignFill) String() string  { return exprString(n) }
func (n *Binary) String() string    { return exprString(n) }
func (n *Compare) String() string   { return exprString(n) }
func (n *Logical) String() string   { return exprString(n) }
func (n *Select) String() string    { return exprString(n) }
func (n *Load) String() string      { return exprString(n) }
func (n *Ramp) String() string      { return exprString(n) }
func (n *Broadcast) String() string { return exprString(n) }
func (n *Call) String() string      { return exprString(n) }
func (n *Let) String() string       { return exprString(n) }
func (n *Clamp) String() string     { return exprString(n) }
func (n *Infinity) String() string  { return exprString(n) }
func (n *Solve) String() string     { return exprString(n) }
func (n *TargetVar) String() string { return exprString(n) }

func (n *LetStmt) String() string       { return PrintStmt(n) }
func (n *AssertStmt) String() string    { return PrintStmt(n) }
func (n *PrintStmt) String() string     { return PrintStmt(n) }
func (n *For) String() string           { return PrintStmt(n) }
func (n *Store) String() string         { return PrintStmt(n) }
func (n *Provide) String() string       { return PrintStmt(n) }
func (n *Allocate) String() string      { return PrintStmt(n) }
func (n *Realize) String() string       { return PrintStmt(n) }
func (n *Pipeline) String() string      { return PrintStmt(n) }
func (n *Block) String() string         { return PrintStmt(n) }
func (n *StmtTargetVar) String() string { return PrintStmt(n) }
