package grammar

import (
	"fmt"
	"strconv"

	"stencil/internal/ir"
	"stencil/internal/types"
)

// balanceLiterals lets a bare integer literal take on its sibling's type
// before the two reach an ArithResult/CompareResult check, e.g. "x / 3"
// against a u8-typed x: literals carry no declared type of their own, so
// "widening is never implicit" must not apply to them the way it applies
// to two already-typed operands.
func balanceLiterals(a, b ir.Expr) (ir.Expr, ir.Expr) {
	ai, aIsLit := a.(*ir.IntImm)
	bi, bIsLit := b.(*ir.IntImm)
	switch {
	case aIsLit && !bIsLit:
		return &ir.IntImm{T: b.ExprType(), Value: ai.Value}, b
	case bIsLit && !aIsLit:
		return a, &ir.IntImm{T: a.ExprType(), Value: bi.Value}
	default:
		return a, b
	}
}

func newBinary(op ir.BinOp, a, b ir.Expr) ir.Expr {
	a, b = balanceLiterals(a, b)
	return ir.NewBinary(op, a, b)
}

func newCompare(op ir.CompareOp, a, b ir.Expr) ir.Expr {
	a, b = balanceLiterals(a, b)
	return ir.NewCompare(op, a, b)
}

// buildExpr lowers a parsed Expr to an ir.Expr, resolving bare identifiers
// against, in priority order: this reduction's bound variables (rvars), a
// function stage's own arguments (args), and declared scalar params; call
// syntax resolves builtins, buffer params, then previously declared
// pipeline functions. args/rvars may be nil when building a context with
// no stage arguments, such as a reduction domain's own bounds.
func (b *Builder) buildExpr(e *Expr, args, rvars map[string]types.Type) (ir.Expr, error) {
	return b.buildOr(e.Or, args, rvars)
}

func (b *Builder) buildOr(n *OrExpr, args, rvars map[string]types.Type) (ir.Expr, error) {
	left, err := b.buildAnd(n.Left, args, rvars)
	if err != nil {
		return nil, err
	}
	for _, r := range n.Rest {
		right, err := b.buildAnd(r, args, rvars)
		if err != nil {
			return nil, err
		}
		left = ir.NewLogical(ir.LogicalOr, left, right)
	}
	return left, nil
}

func (b *Builder) buildAnd(n *AndExpr, args, rvars map[string]types.Type) (ir.Expr, error) {
	left, err := b.buildCompare(n.Left, args, rvars)
	if err != nil {
		return nil, err
	}
	for _, r := range n.Rest {
		right, err := b.buildCompare(r, args, rvars)
		if err != nil {
			return nil, err
		}
		left = ir.NewLogical(ir.LogicalAnd, left, right)
	}
	return left, nil
}

var compareOps = map[string]ir.CompareOp{
	"==": ir.EQ, "!=": ir.NE, "<": ir.LT, "<=": ir.LE, ">": ir.GT, ">=": ir.GE,
}

func (b *Builder) buildCompare(n *CompareExpr, args, rvars map[string]types.Type) (ir.Expr, error) {
	left, err := b.buildAdd(n.Left, args, rvars)
	if err != nil {
		return nil, err
	}
	if n.Op == nil {
		return left, nil
	}
	right, err := b.buildAdd(n.Right, args, rvars)
	if err != nil {
		return nil, err
	}
	return newCompare(compareOps[*n.Op], left, right), nil
}

func (b *Builder) buildAdd(n *AddExpr, args, rvars map[string]types.Type) (ir.Expr, error) {
	left, err := b.buildMul(n.Left, args, rvars)
	if err != nil {
		return nil, err
	}
	for _, op := range n.Ops {
		right, err := b.buildMul(op.Right, args, rvars)
		if err != nil {
			return nil, err
		}
		binOp := ir.Add
		if op.Operator == "-" {
			binOp = ir.Sub
		}
		left = newBinary(binOp, left, right)
	}
	return left, nil
}

func (b *Builder) buildMul(n *MulExpr, args, rvars map[string]types.Type) (ir.Expr, error) {
	left, err := b.buildUnary(n.Left, args, rvars)
	if err != nil {
		return nil, err
	}
	for _, op := range n.Ops {
		right, err := b.buildUnary(op.Right, args, rvars)
		if err != nil {
			return nil, err
		}
		var binOp ir.BinOp
		switch op.Operator {
		case "*":
			binOp = ir.Mul
		case "/":
			binOp = ir.Div
		case "%":
			binOp = ir.Mod
		}
		left = newBinary(binOp, left, right)
	}
	return left, nil
}

func (b *Builder) buildUnary(n *UnaryExpr, args, rvars map[string]types.Type) (ir.Expr, error) {
	v, err := b.buildPrimary(n.Value, args, rvars)
	if err != nil {
		return nil, err
	}
	if !n.Negative {
		return v, nil
	}
	zero := &ir.IntImm{T: v.ExprType(), Value: 0}
	return newBinary(ir.Sub, zero, v), nil
}

func (b *Builder) buildPrimary(n *PrimaryExpr, args, rvars map[string]types.Type) (ir.Expr, error) {
	switch {
	case n.Call != nil:
		return b.buildCall(n.Call, args, rvars)
	case n.Number != nil:
		v, err := strconv.ParseInt(*n.Number, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: bad integer literal %q: %w", b.filename, *n.Number, err)
		}
		return &ir.IntImm{T: types.Int32, Value: v}, nil
	case n.Ident != nil:
		return b.buildIdent(*n.Ident, args, rvars)
	case n.Paren != nil:
		return b.buildExpr(n.Paren, args, rvars)
	}
	return nil, fmt.Errorf("%s: empty expression", b.filename)
}

func (b *Builder) buildIdent(name string, args, rvars map[string]types.Type) (ir.Expr, error) {
	if t, ok := rvars[name]; ok {
		return &ir.Variable{T: t, Name: name, Param: true}, nil
	}
	if t, ok := args[name]; ok {
		return &ir.Variable{T: t, Name: name, Param: true}, nil
	}
	if p, ok := b.params[name]; ok {
		if p.Buffer {
			return nil, fmt.Errorf("%s: buffer param %q must be indexed with (...)", b.filename, name)
		}
		return &ir.Variable{T: p.Type, Name: name}, nil
	}
	return nil, fmt.Errorf("%s: undefined identifier %q", b.filename, name)
}

func (b *Builder) buildArgs(args, localArgs, rvars map[string]types.Type, exprs []*Expr) ([]ir.Expr, error) {
	out := make([]ir.Expr, len(exprs))
	for i, e := range exprs {
		v, err := b.buildExpr(e, localArgs, rvars)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (b *Builder) buildCall(c *CallExpr, args, rvars map[string]types.Type) (ir.Expr, error) {
	argExprs, err := b.buildArgs(nil, args, rvars, c.Args)
	if err != nil {
		return nil, err
	}

	switch c.Name {
	case "min", "max":
		if len(argExprs) != 2 {
			return nil, fmt.Errorf("%s: %s() takes exactly 2 arguments", b.filename, c.Name)
		}
		op := ir.Min
		if c.Name == "max" {
			op = ir.Max
		}
		return newBinary(op, argExprs[0], argExprs[1]), nil
	case "select":
		if len(argExprs) != 3 {
			return nil, fmt.Errorf("%s: select() takes exactly 3 arguments", b.filename)
		}
		return ir.NewSelect(argExprs[0], argExprs[1], argExprs[2]), nil
	case "clamp":
		if len(argExprs) != 3 {
			return nil, fmt.Errorf("%s: clamp() takes exactly 3 arguments", b.filename)
		}
		// clamp(v, lo, hi) = max(lo, min(v, hi)); the ir.Clamp node is
		// reserved for boundary-condition sugar on buffer indices, not
		// this general three-argument value clamp.
		inner := newBinary(ir.Min, argExprs[0], argExprs[2])
		return newBinary(ir.Max, argExprs[1], inner), nil
	}

	if p, ok := b.params[c.Name]; ok {
		if !p.Buffer {
			return nil, fmt.Errorf("%s: scalar param %q cannot be called", b.filename, c.Name)
		}
		if p.Dims > 0 && len(argExprs) != p.Dims {
			return nil, fmt.Errorf("%s: %q expects %d indices, got %d", b.filename, c.Name, p.Dims, len(argExprs))
		}
		return &ir.Call{T: p.Type, Name: c.Name, Args: argExprs, CallType: ir.CallExtern, Buffer: ir.BufferParam}, nil
	}

	fn, ok := b.env[c.Name]
	if !ok {
		return nil, fmt.Errorf("%s: call to undeclared function %q", b.filename, c.Name)
	}
	if len(argExprs) != len(fn.Args) {
		return nil, fmt.Errorf("%s: %q takes %d argument(s), got %d", b.filename, c.Name, len(fn.Args), len(argExprs))
	}
	return &ir.Call{T: fn.Type, Name: fn.Name, Args: argExprs, CallType: ir.CallPipeline, Func: fn}, nil
}
