package bounds

import "stencil/internal/ir"

// regionWalk accumulates, for every Load/Call/Store/Provide referencing
// target, the per-dimension union of the referenced index's Interval.
// Called holds the read references (Load, Call), Provided holds
// the write references (Store, Provide). The walk tracks a bounds Scope so
// a reference nested under a For/Let/LetStmt resolves its index against
// the binder's own interval, not an unconstrained one.
type regionWalk struct {
	ir.BaseVisitor
	target      string
	scope       *Scope
	constraints Constraints
	called      []Interval
	provided    []Interval
}

func newRegionWalk(target string, scope *Scope, constraints Constraints) *regionWalk {
	w := &regionWalk{target: target, scope: scope, constraints: constraints}
	w.Self = w
	return w
}

func (w *regionWalk) child(scope *Scope) *regionWalk {
	c := &regionWalk{target: w.target, scope: scope, constraints: w.constraints, called: w.called, provided: w.provided}
	c.Self = c
	return c
}

func (w *regionWalk) merge(from *regionWalk) {
	w.called = from.called
	w.provided = from.provided
}

func unionAt(regions []Interval, idx int, add Interval) []Interval {
	for len(regions) <= idx {
		regions = append(regions, Interval{})
	}
	if regions[idx].Min == nil {
		regions[idx] = add
		return regions
	}
	regions[idx] = Union(regions[idx], add)
	return regions
}

func (w *regionWalk) touchArgs(args []ir.Expr, write bool) {
	for i, a := range args {
		iv := ExprInterval(a, w.scope, w.constraints)
		if write {
			w.provided = unionAt(w.provided, i, iv)
		} else {
			w.called = unionAt(w.called, i, iv)
		}
	}
}

func (w *regionWalk) VisitLoad(n *ir.Load) {
	if n.Name == w.target {
		w.touchArgs([]ir.Expr{n.Index}, false)
	}
	ir.VisitExpr(w.Self, n.Index)
}

func (w *regionWalk) VisitCall(n *ir.Call) {
	if n.Name == w.target {
		w.touchArgs(n.Args, false)
	}
	for _, a := range n.Args {
		ir.VisitExpr(w.Self, a)
	}
}

func (w *regionWalk) VisitStore(n *ir.Store) {
	if n.Name == w.target {
		w.touchArgs([]ir.Expr{n.Index}, true)
	}
	ir.VisitExpr(w.Self, n.Value)
	ir.VisitExpr(w.Self, n.Index)
}

func (w *regionWalk) VisitProvide(n *ir.Provide) {
	if n.Name == w.target {
		w.touchArgs(n.Args, true)
	}
	ir.VisitExpr(w.Self, n.Value)
	for _, a := range n.Args {
		ir.VisitExpr(w.Self, a)
	}
}

func (w *regionWalk) VisitLet(n *ir.Let) {
	ir.VisitExpr(w.Self, n.Value)
	v := ExprInterval(n.Value, w.scope, w.constraints)
	c := w.child(w.scope.Push(n.Name, v))
	ir.VisitExpr(c.Self, n.Body)
	w.merge(c)
}

func (w *regionWalk) VisitLetStmt(n *ir.LetStmt) {
	ir.VisitExpr(w.Self, n.Value)
	v := ExprInterval(n.Value, w.scope, w.constraints)
	c := w.child(w.scope.Push(n.Name, v))
	ir.VisitStmt(c.Self, n.Body)
	w.merge(c)
}

func (w *regionWalk) VisitFor(n *ir.For) {
	ir.VisitExpr(w.Self, n.Min)
	ir.VisitExpr(w.Self, n.Extent)
	min := ExprInterval(n.Min, w.scope, w.constraints)
	extent := ExprInterval(n.Extent, w.scope, w.constraints)
	one := &ir.IntImm{T: min.Min.ExprType(), Value: 1}
	hi := subConst(addII(min.Max, extent.Max), one)
	loopIv := Interval{Min: min.Min, Max: hi, Exact: min.Exact && extent.Exact}
	c := w.child(w.scope.Push(n.Name, loopIv))
	ir.VisitStmt(c.Self, n.Body)
	w.merge(c)
}

// RegionsTouched (regions_touched) returns the per-dimension union of every
// reference to target inside stmt: called is the read references
// (region_called), provided is the write references (region_provided).
func RegionsTouched(stmt ir.Stmt, target string, constraints Constraints) (called, provided []Interval) {
	w := newRegionWalk(target, NewScope(), constraints)
	ir.VisitStmt(w.Self, stmt)
	return w.called, w.provided
}

// RegionCalled is RegionsTouched's read-only projection.
func RegionCalled(stmt ir.Stmt, target string, constraints Constraints) []Interval {
	called, _ := RegionsTouched(stmt, target, constraints)
	return called
}

// RegionProvided is RegionsTouched's write-only projection.
func RegionProvided(stmt ir.Stmt, target string, constraints Constraints) []Interval {
	_, provided := RegionsTouched(stmt, target, constraints)
	return provided
}
