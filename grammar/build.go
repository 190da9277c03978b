package grammar

import (
	"fmt"

	"stencil/internal/ir"
	"stencil/internal/schedule"
	"stencil/internal/types"
	"stencil/token"
)

// toPos converts a parsed position into this toolchain's own token.Position,
// the shape every diagnostic consumer (internal/cerr, internal/lsp) expects.
func toPos(filename string, line, column, offset int) token.Position {
	return token.Position{Filename: filename, Line: line, Column: column, Offset: offset}
}

var scalarTypes = map[string]types.Type{
	"i8": types.Int8, "i16": types.Int16, "i32": types.Int32, "i64": types.Int64,
	"u8": types.UInt8, "u16": types.UInt16, "u32": types.UInt32, "u64": types.UInt64,
	"f32": types.Float32, "f64": types.Float64,
	"bool": types.BoolT,
}

// param is one declared pipeline input: either a scalar of Type, or a
// buffer whose element type is Type and whose argument count is Dims.
type param struct {
	Type   types.Type
	Buffer bool
	Dims   int
}

// Builder turns a parsed Program into a schedule.Environment, resolving
// function calls, buffer/scalar parameter references, and schedule
// directives against the symbol tables accumulated as declarations are
// walked in source order. A Program's functions must be declared before
// they are called or scheduled, so one left-to-right pass suffices —
// there is no separate name-resolution phase.
type Builder struct {
	filename string
	params   map[string]param
	env      schedule.Environment
	order    []string
}

// NewBuilder starts a Builder over source text attributed to filename
// (used only for diagnostic positions).
func NewBuilder(filename string) *Builder {
	return &Builder{filename: filename, params: map[string]param{}, env: schedule.Environment{}}
}

// Build walks prog's declarations in order and returns the resulting
// environment together with the names of every function declared, in
// declaration order (the CLI/REPL use the last one as the default root).
func (b *Builder) Build(prog *Program) (schedule.Environment, []string, error) {
	for _, d := range prog.Decls {
		switch {
		case d.Param != nil:
			if err := b.buildParam(d.Param); err != nil {
				return nil, nil, err
			}
		case d.Func != nil:
			if err := b.buildFunc(d.Func); err != nil {
				return nil, nil, err
			}
		case d.Reduce != nil:
			if err := b.buildReduce(d.Reduce); err != nil {
				return nil, nil, err
			}
		case d.Schedule != nil:
			if err := b.applySchedule(d.Schedule); err != nil {
				return nil, nil, err
			}
		}
	}
	return b.env, b.order, nil
}

func (b *Builder) buildParam(p *ParamDecl) error {
	if _, exists := b.params[p.Name]; exists {
		return fmt.Errorf("%s: param %q already declared", b.filename, p.Name)
	}
	if p.Type.Buffer != nil {
		elem, ok := scalarTypes[p.Type.Buffer.Elem]
		if !ok {
			return fmt.Errorf("%s: unknown buffer element type %q", b.filename, p.Type.Buffer.Elem)
		}
		dims := 0
		fmt.Sscanf(p.Type.Buffer.Dims, "%d", &dims)
		b.params[p.Name] = param{Type: elem, Buffer: true, Dims: dims}
		return nil
	}
	t, ok := scalarTypes[p.Type.Scalar]
	if !ok {
		return fmt.Errorf("%s: unknown scalar type %q", b.filename, p.Type.Scalar)
	}
	b.params[p.Name] = param{Type: t}
	return nil
}

func (b *Builder) buildFunc(f *FuncDecl) error {
	if _, exists := b.env[f.Name]; exists {
		return fmt.Errorf("%s: function %q already declared", b.filename, f.Name)
	}
	args := map[string]types.Type{}
	for _, a := range f.Args {
		args[a] = types.Int32
	}
	value, err := b.buildExpr(f.Body, args, nil)
	if err != nil {
		return err
	}

	dims := make([]schedule.Dim, len(f.Args))
	for i, a := range f.Args {
		dims[i] = schedule.Dim{Var: a, ForType: ir.Serial}
	}

	fn := &schedule.Function{
		Name:  f.Name,
		Args:  append([]string(nil), f.Args...),
		Type:  value.ExprType(),
		Value: value,
		Schedule: schedule.Schedule{
			Dims:         dims,
			ComputeLevel: schedule.InlineLevel(),
			StoreLevel:   schedule.InlineLevel(),
		},
	}
	b.env[f.Name] = fn
	b.order = append(b.order, f.Name)
	return nil
}

func (b *Builder) buildReduce(r *ReduceDecl) error {
	fn, ok := b.env[r.Name]
	if !ok {
		return fmt.Errorf("%s: reduce targets undeclared function %q", b.filename, r.Name)
	}

	rvars := map[string]types.Type{}
	domain := make([]ir.Range, len(r.Dims))
	rdims := make([]schedule.Dim, len(r.Dims))
	for i, d := range r.Dims {
		rvars[d.Var] = types.Int32
		min, err := b.buildExpr(d.Min, nil, nil)
		if err != nil {
			return err
		}
		max, err := b.buildExpr(d.Max, nil, nil)
		if err != nil {
			return err
		}
		domain[i] = ir.Range{Min: min, Extent: ir.NewBinary(ir.Sub, max, min)}
		rdims[i] = schedule.Dim{Var: d.Var, ForType: ir.Serial}
	}

	args := make(map[string]types.Type, len(fn.Args))
	for _, a := range fn.Args {
		args[a] = types.Int32
	}
	site := make([]ir.Expr, len(r.Args))
	for i, a := range r.Args {
		e, err := b.buildExpr(a, args, rvars)
		if err != nil {
			return err
		}
		site[i] = e
	}

	accumulator := &ir.Call{T: fn.Type, Name: fn.Name, Args: site, CallType: ir.CallPipeline, Func: fn}
	delta, err := b.buildExpr(r.Body, args, rvars)
	if err != nil {
		return err
	}
	var op ir.BinOp
	switch r.Op {
	case "+=":
		op = ir.Add
	case "-=":
		op = ir.Sub
	case "*=":
		op = ir.Mul
	default:
		return fmt.Errorf("%s: unsupported reduction operator %q", b.filename, r.Op)
	}

	fn.ReductionValue = ir.NewBinary(op, accumulator, delta)
	fn.ReductionArgs = site
	fn.ReductionDomain = domain
	fn.Schedule.ReductionDims = rdims
	return nil
}

func (b *Builder) applySchedule(s *ScheduleDecl) error {
	fn, ok := b.env[s.Name]
	if !ok {
		return fmt.Errorf("%s: schedule targets undeclared function %q", b.filename, s.Name)
	}
	for _, dir := range s.Directives {
		if err := applyDirective(fn, dir); err != nil {
			return fmt.Errorf("%s: %w", b.filename, err)
		}
	}
	if !fn.Schedule.Valid() {
		return fmt.Errorf("%s: schedule for %q sets compute_at shallower than store_at", b.filename, s.Name)
	}
	return nil
}
