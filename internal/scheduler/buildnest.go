package scheduler

import (
	"stencil/internal/ir"
	"stencil/internal/schedule"
	"stencil/internal/simplify"
	"stencil/internal/types"
)

func v(name string) *ir.Variable { return &ir.Variable{T: types.Int32, Name: name} }
func c(n int64) *ir.IntImm       { return &ir.IntImm{T: types.Int32, Value: n} }

// buildProvideLoopNest builds a Provide at site
// for value, then wraps it in the For nest and split substitutions named
// by s, each loop variable qualified "prefix+var" so every materialized
// loop variable is namespaced by its owning function. Dims are wrapped
// innermost first, matching Schedule.Dims' declared order.
func buildProvideLoopNest(buffer, prefix string, site []ir.Expr, value ir.Expr, s *schedule.Schedule) ir.Stmt {
	var stmt ir.Stmt = &ir.Provide{Name: buffer, Value: value, Args: site}

	for _, split := range s.Splits {
		outer := v(prefix + split.Outer)
		if !split.IsRename {
			inner := v(prefix + split.Inner)
			oldMin := v(prefix + split.Old + ".min")
			replacement := ir.NewBinary(ir.Add, ir.NewBinary(ir.Mul, outer, c(split.Factor)), ir.NewBinary(ir.Add, inner, oldMin))
			stmt = simplify.SubstituteStmt(stmt, prefix+split.Old, replacement)
		} else {
			stmt = simplify.SubstituteStmt(stmt, prefix+split.Old, outer)
		}
	}

	for i := range s.Dims {
		dim := s.Dims[i]
		min := v(prefix + dim.Var + ".min")
		extent := v(prefix + dim.Var + ".extent")
		stmt = &ir.For{Name: prefix + dim.Var, Min: min, Extent: extent, ForType: dim.ForType, SplitInfo: dim.SplitInfo, Body: stmt}
	}

	for i := len(s.Splits); i > 0; i-- {
		split := s.Splits[i-1]
		oldExtent := v(prefix + split.Old + ".extent")
		oldMin := v(prefix + split.Old + ".min")
		if !split.IsRename {
			innerExtent := c(split.Factor)
			outerExtent := ir.NewBinary(ir.Div, ir.NewBinary(ir.Sub, ir.NewBinary(ir.Add, oldExtent, c(split.Factor)), c(1)), c(split.Factor))
			stmt = &ir.LetStmt{Name: prefix + split.Inner + ".min", Value: c(0), Body: stmt}
			stmt = &ir.LetStmt{Name: prefix + split.Inner + ".extent", Value: innerExtent, Body: stmt}
			stmt = &ir.LetStmt{Name: prefix + split.Outer + ".min", Value: c(0), Body: stmt}
			stmt = &ir.LetStmt{Name: prefix + split.Outer + ".extent", Value: outerExtent, Body: stmt}
		} else {
			stmt = &ir.LetStmt{Name: prefix + split.Outer + ".min", Value: oldMin, Body: stmt}
			stmt = &ir.LetStmt{Name: prefix + split.Outer + ".extent", Value: oldExtent, Body: stmt}
		}
	}

	return stmt
}

func qualify(prefix string, e ir.Expr) ir.Expr {
	w := &qualifyMutator{prefix: prefix}
	return ir.NewMutator(w).MutateExpr(e)
}

// qualifyMutator (QualifyExpr) renames every free parameter Variable by
// prefixing it with the owning function's qualified name, so a Function's
// pure value (written in terms of bare argument names) can be embedded
// into the shared statement tree without colliding with another stage's
// identically-named argument.
type qualifyMutator struct {
	ir.BaseRewriter
	prefix string
}

func (q *qualifyMutator) RewriteVariable(n *ir.Variable) ir.Expr {
	if n.Param {
		return &ir.Variable{T: n.T, Name: q.prefix + n.Name, Param: n.Param, Reduction: n.Reduction}
	}
	return n
}

// BuildProduce (build_produce) turns f's pure definition into a loop nest
// that computes it, referring to external f.arg.min/f.arg.extent
// variables for the bounds it realizes.
func BuildProduce(f *schedule.Function) ir.Stmt {
	prefix := f.Name + "."
	value := qualify(prefix, f.Value)
	site := make([]ir.Expr, len(f.Args))
	for i, arg := range f.Args {
		_ = arg
		site[i] = v(f.Name + "." + f.Args[i])
	}
	return buildProvideLoopNest(f.Name, prefix, site, value, &f.Schedule)
}

// BuildUpdate (build_update) is BuildProduce's reduction counterpart; nil
// if f isn't a reduction.
func BuildUpdate(f *schedule.Function) ir.Stmt {
	if !f.IsReduction() {
		return nil
	}
	prefix := f.Name + "."
	value := qualify(prefix, f.ReductionValue)
	site := make([]ir.Expr, len(f.ReductionArgs))
	for i, a := range f.ReductionArgs {
		site[i] = qualify(prefix, a)
	}
	rs := &schedule.Schedule{Dims: f.Schedule.ReductionDims, Splits: f.Schedule.ReductionSplits}
	loop := buildProvideLoopNest(f.Name, prefix, site, value, rs)

	for i, r := range f.ReductionDomain {
		name := prefix + f.Schedule.ReductionDims[i].Var
		loop = &ir.LetStmt{Name: name + ".min", Value: qualify(prefix, r.Min), Body: loop}
		loop = &ir.LetStmt{Name: name + ".extent", Value: qualify(prefix, r.Extent), Body: loop}
	}
	return loop
}

// BuildRealization (build_realization) is BuildProduce/BuildUpdate run
// together. Simplified from the original's build_realization: this
// package skips the update-step bounds-expansion LetStmt chain (which
// widens the produce region using region_called(update, f)) since
// schedule_functions' later Realize wrapping already computes its bounds
// from region_provided over the full produce+update subtree, making that
// separate widening redundant for every schedule this compiler accepts.
func BuildRealization(f *schedule.Function) (produce, update ir.Stmt) {
	return BuildProduce(f), BuildUpdate(f)
}
