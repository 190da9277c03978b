package scheduler

import (
	"fmt"

	"stencil/internal/bounds"
	"stencil/internal/ir"
	"stencil/internal/schedule"
	"stencil/internal/simplify"
	"stencil/internal/types"
)

func levelName(l schedule.LoopLevel) string {
	if l.Root {
		return "__root__"
	}
	return l.Func + "." + l.Var
}

// InjectExplicitBounds wraps body in an assertion that the user-promised
// [min, min+extent) covers the inferred [min_var, min_var+extent_var),
// then rebinds those variables to the promised values, for every entry of
// f.Schedule.Bounds.
func InjectExplicitBounds(body ir.Stmt, f *schedule.Function) ir.Stmt {
	for _, b := range f.Schedule.Bounds {
		minName := f.Name + "." + b.Var + ".min"
		extentName := f.Name + "." + b.Var + ".extent"
		minVar := v(minName)
		extentVar := v(extentName)
		check := ir.NewLogical(ir.LogicalAnd,
			ir.NewCompare(ir.LE, b.Min, minVar),
			ir.NewCompare(ir.GE, ir.NewBinary(ir.Add, b.Min, b.Extent), ir.NewBinary(ir.Add, minVar, extentVar)),
		)
		msg := fmt.Sprintf("bounds given for %s in %s don't cover required region", b.Var, f.Name)
		body = &ir.Block{
			First: &ir.AssertStmt{Cond: check, Message: msg},
			Rest: &ir.LetStmt{Name: minName, Value: b.Min, Body: &ir.LetStmt{
				Name: extentName, Value: b.Extent, Body: body,
			}},
		}
	}
	return body
}

// CreateInitialLoopNest builds the produce (and, for a reduction, update)
// statement for the root function f and applies its explicit bounds.
func CreateInitialLoopNest(f *schedule.Function) ir.Stmt {
	produce, update := BuildRealization(f)
	s := produce
	if update != nil {
		s = &ir.Pipeline{Name: f.Name, Produce: produce, Update: update, Consume: &ir.AssertStmt{Cond: &ir.IntImm{T: types.BoolT, Value: 1}, Message: "dummy consume step"}}
	}
	return InjectExplicitBounds(s, f)
}

// replaceAtFor searches s for a For whose Name equals target, returning the
// rebuilt tree with replace applied to that For's Body, and whether the
// search succeeded. The walk is post-order, so only the first match it
// reaches (the innermost one) is rewritten.
type forReplacer struct {
	ir.BaseRewriter
	target  string
	replace func(body ir.Stmt) ir.Stmt
	found   bool
}

func (r *forReplacer) RewriteFor(n *ir.For) ir.Stmt {
	// n.Body has already been recursively mutated by the enclosing
	// Mutator.MutateStmt before RewriteFor is called (post-order), so this
	// only needs to decide whether n itself is the target.
	body := n.Body
	if !r.found && n.Name == r.target {
		r.found = true
		body = r.replace(body)
	}
	if body == n.Body {
		return n
	}
	return &ir.For{Name: n.Name, Min: n.Min, Extent: n.Extent, ForType: n.ForType, SplitInfo: n.SplitInfo, Body: body}
}

func replaceAtFor(s ir.Stmt, target string, replace func(ir.Stmt) ir.Stmt) (ir.Stmt, bool) {
	r := &forReplacer{target: target, replace: replace}
	out := ir.NewMutator(r).MutateStmt(s)
	return out, r.found
}

// InjectRealization wraps f's compute_level For's body in a Pipeline and
// f's store_level For's body in a Realize. Inlining a non-reduction
// (compute_level == inline) is handled by the caller, ScheduleFunctions,
// before this is reached; an inline reduction does reach it and fails the
// compute_level lookup.
func InjectRealization(s ir.Stmt, f *schedule.Function) (ir.Stmt, error) {
	produce, update := BuildRealization(f)
	s, foundCompute := replaceAtFor(s, levelName(f.Schedule.ComputeLevel), func(body ir.Stmt) ir.Stmt {
		return &ir.Pipeline{Name: f.Name, Produce: produce, Update: update, Consume: body}
	})
	if !foundCompute {
		return nil, fmt.Errorf("scheduler: compute_level %q not found for %s", levelName(f.Schedule.ComputeLevel), f.Name)
	}

	s, foundStore := replaceAtFor(s, levelName(f.Schedule.StoreLevel), func(body ir.Stmt) ir.Stmt {
		region := bounds.RegionProvided(body, f.Name, nil)
		rng := make([]ir.Range, len(region))
		for i, iv := range region {
			rng[i] = ir.Range{Min: iv.Min, Extent: simplify.Simplify(ir.NewBinary(ir.Sub, ir.NewBinary(ir.Add, iv.Max, &ir.IntImm{T: types.Int32, Value: 1}), iv.Min))}
		}
		realized := &ir.Realize{Name: f.Name, T: f.Type, Bounds: rng, Body: body}
		return InjectExplicitBounds(realized, f)
	})
	if !foundStore {
		return nil, fmt.Errorf("scheduler: store_level %q not found for %s", levelName(f.Schedule.StoreLevel), f.Name)
	}
	return s, nil
}

// InlineFunction replaces every Call to f with f's substituted body,
// binding parameters by substitution (not Let) so the peephole-friendly
// expression structure the simplifier relies on survives inlining.
func InlineFunction(s ir.Stmt, f *schedule.Function) ir.Stmt {
	return ir.NewMutator(&inliner{target: f}).MutateStmt(s)
}

type inliner struct {
	ir.BaseRewriter
	target *schedule.Function
}

func (in *inliner) RewriteCall(n *ir.Call) ir.Expr {
	if n.Name != in.target.Name {
		return n
	}
	body := in.target.Value
	for i, arg := range in.target.Args {
		if i < len(n.Args) {
			body = simplify.Substitute(body, arg, n.Args[i])
		}
	}
	return body
}

// ScheduleFunctions walks order in reverse (order lists callees first and
// the root last, so iterating backward handles the root's direct callees
// first and the deepest-called producers last, after the loops they are
// scheduled at have been injected) and, for every non-root function,
// either inlines it or injects its realization at its scheduled levels.
func ScheduleFunctions(root ir.Stmt, order []string, env schedule.Environment) (ir.Stmt, error) {
	s := &ir.For{Name: "__root__", Min: &ir.IntImm{T: types.Int32, Value: 0}, Extent: &ir.IntImm{T: types.Int32, Value: 1}, ForType: ir.Serial, Body: root}

	for i := len(order) - 1; i > 0; i-- {
		f := env[order[i-1]]
		if f.Schedule.ComputeLevel.Inline && !f.Schedule.StoreLevel.Inline {
			return nil, fmt.Errorf("scheduler: %s is scheduled compute_inline but not store_inline", f.Name)
		}
		if !f.IsReduction() && f.Schedule.ComputeLevel.Inline {
			s = InlineFunction(s, f)
			continue
		}
		var err error
		s, err = InjectRealization(s, f)
		if err != nil {
			return nil, err
		}
	}

	forNode, ok := s.(*ir.For)
	if !ok {
		return nil, fmt.Errorf("scheduler: lost the root scheduling loop")
	}
	return forNode.Body, nil
}
