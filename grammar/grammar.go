package grammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// Program is a parsed .stn pipeline description: parameter declarations,
// function stages, optional reduction stages, and schedule blocks, in
// source order. There is no separate AST layer distinct from this grammar
// tree; build.go turns a Program directly into schedule.Function values.
type Program struct {
	Pos   lexer.Position
	Decls []*Decl `@@*`
}

// Decl is one top-level declaration.
type Decl struct {
	Pos        lexer.Position
	DocComment *DocComment `  @@`
	Comment    *Comment    `| @@`
	Param    *ParamDecl    `| @@`
	Reduce   *ReduceDecl   `| @@`
	Func     *FuncDecl     `| @@`
	Schedule *ScheduleDecl `| @@`
}

type DocComment struct {
	Pos  lexer.Position
	Text string `@DocComment`
}

type Comment struct {
	Pos  lexer.Position
	Text string `@Comment`
}

// ParamDecl declares one scalar or buffer pipeline input, e.g.
// "param width: i32;" or "param input: buffer(u8, 2);".
type ParamDecl struct {
	Pos  lexer.Position
	Name string    `"param" @Ident ":"`
	Type *TypeName `@@ ";"`
}

// TypeName is either a bare scalar type name or a buffer(elem, ndims) form.
type TypeName struct {
	Pos    lexer.Position
	Buffer *BufferType `  @@`
	Scalar string      `| @Ident`
}

type BufferType struct {
	Pos  lexer.Position
	Elem string `"buffer" "(" @Ident`
	Dims string `"," @Integer ")"`
}

// FuncDecl declares a pipeline stage's pure definition, e.g.
// "func blur_x(x, y) = (input(x-1,y) + input(x,y) + input(x+1,y)) / 3;".
type FuncDecl struct {
	Pos  lexer.Position
	Name string   `"func" @Ident "("`
	Args []string `[ @Ident { "," @Ident } ] ")" "="`
	Body *Expr    `@@ ";"`
}

// ReduceDecl attaches an update definition to a previously declared
// FuncDecl, e.g. "reduce hist(input(r)) += 1 over r in [0, 256);". Op is
// one of the update operators; Body is the right-hand side of the update
// (the left-hand accumulator reference is implicit in the source; the
// builder adds it back as a self-call, so schedule.Function.ReductionValue
// holds "accumulator Op Body"). Dims lists one or more reduction variables, each
// ranging over its own half-open [Min, Max) domain.
type ReduceDecl struct {
	Pos  lexer.Position
	Name string       `"reduce" @Ident "("`
	Args []*Expr      `@@ { "," @@ } ")"`
	Op   string       `@("+=" | "-=" | "*=")`
	Body *Expr        `@@ "over"`
	Dims []*ReduceDim `@@ { "," @@ } ";"`
}

type ReduceDim struct {
	Pos lexer.Position
	Var string `@Ident "in" "["`
	Min *Expr  `@@ ","`
	Max *Expr  `@@ ")"`
}

// ScheduleDecl attaches directives to a previously declared function.
// Directive syntax is uniform (name "(" args ")" ";"), so the grammar
// stays fixed regardless of which directives a future version adds; the
// builder interprets each directive's name and argument list.
type ScheduleDecl struct {
	Pos        lexer.Position
	Name       string               `"schedule" @Ident "{"`
	Directives []*ScheduleDirective `@@* "}"`
}

type ScheduleDirective struct {
	Pos  lexer.Position
	Name string          `@Ident "("`
	Args []*DirectiveArg `[ @@ { "," @@ } ] ")" ";"`
}

type DirectiveArg struct {
	Pos    lexer.Position
	Number *string `  @Integer`
	Ident  *string `| @Ident`
}

// Expr is the top of the operator-precedence ladder: logical or.
type Expr struct {
	Pos lexer.Position
	Or  *OrExpr `@@`
}

type OrExpr struct {
	Pos  lexer.Position
	Left *AndExpr   `@@`
	Rest []*AndExpr `("||" @@)*`
}

type AndExpr struct {
	Pos  lexer.Position
	Left *CompareExpr   `@@`
	Rest []*CompareExpr `("&&" @@)*`
}

// CompareExpr allows at most one comparison: a Compare node always yields a
// Bool, so comparisons never chain without an explicit && between them.
type CompareExpr struct {
	Pos   lexer.Position
	Left  *AddExpr `@@`
	Op    *string  `[ @("==" | "!=" | "<=" | ">=" | "<" | ">")`
	Right *AddExpr `  @@ ]`
}

type AddExpr struct {
	Pos  lexer.Position
	Left *MulExpr `@@`
	Ops  []*AddOp `{ @@ }`
}

type AddOp struct {
	Pos      lexer.Position
	Operator string   `@("+" | "-")`
	Right    *MulExpr `@@`
}

type MulExpr struct {
	Pos  lexer.Position
	Left *UnaryExpr `@@`
	Ops  []*MulOp   `{ @@ }`
}

type MulOp struct {
	Pos      lexer.Position
	Operator string     `@("*" | "/" | "%")`
	Right    *UnaryExpr `@@`
}

type UnaryExpr struct {
	Pos      lexer.Position
	Negative bool         `[ @"-" ]`
	Value    *PrimaryExpr `@@`
}

type PrimaryExpr struct {
	Pos    lexer.Position
	Call   *CallExpr `  @@`
	Number *string   `| @Integer`
	Ident  *string   `| @Ident`
	Paren  *Expr     `| "(" @@ ")"`
}

// CallExpr is a reference to a pipeline function, a buffer parameter, or
// one of the builtin value operators (min, max, clamp, select) — build.go
// tells them apart by name against the declared symbol tables.
type CallExpr struct {
	Pos  lexer.Position
	Name string  `@Ident "("`
	Args []*Expr `[ @@ { "," @@ } ] ")"`
}
