package lowering

import (
	"testing"

	"stencil/internal/bounds"
	"stencil/internal/ir"
	"stencil/internal/schedule"
	"stencil/internal/simplify"
	"stencil/internal/types"
)

func imm(n int64) *ir.IntImm { return &ir.IntImm{T: types.Int32, Value: n} }
func xParam() *ir.Variable   { return &ir.Variable{T: types.Int32, Name: "x", Param: true} }

func callOf(f *schedule.Function, arg ir.Expr) *ir.Call {
	return &ir.Call{T: types.Int32, Name: f.Name, CallType: ir.CallPipeline, Func: f, Args: []ir.Expr{arg}}
}

// buildInlinerPipeline constructs a three-stage pipeline: h(x)=x;
// g(x)=h(x+1)+h(x-1); f(x)=g(x-1)+g(x+1), every callee scheduled
// compute_inline/store_inline (the default), f itself realized at the root
// over x in [0,10).
func buildInlinerPipeline() *schedule.Function {
	h := &schedule.Function{
		Name: "h", Args: []string{"x"}, Type: types.Int32, Value: xParam(),
		Schedule: schedule.Schedule{
			Dims:         []schedule.Dim{{Var: "x", ForType: ir.Serial}},
			ComputeLevel: schedule.InlineLevel(),
			StoreLevel:   schedule.InlineLevel(),
		},
	}
	g := &schedule.Function{
		Name: "g", Args: []string{"x"}, Type: types.Int32,
		Value: ir.NewBinary(ir.Add,
			callOf(h, ir.NewBinary(ir.Add, xParam(), imm(1))),
			callOf(h, ir.NewBinary(ir.Sub, xParam(), imm(1))),
		),
		Schedule: schedule.Schedule{
			Dims:         []schedule.Dim{{Var: "x", ForType: ir.Serial}},
			ComputeLevel: schedule.InlineLevel(),
			StoreLevel:   schedule.InlineLevel(),
		},
	}
	f := &schedule.Function{
		Name: "f", Args: []string{"x"}, Type: types.Int32,
		Value: ir.NewBinary(ir.Add,
			callOf(g, ir.NewBinary(ir.Sub, xParam(), imm(1))),
			callOf(g, ir.NewBinary(ir.Add, xParam(), imm(1))),
		),
		Schedule: schedule.Schedule{
			Dims:         []schedule.Dim{{Var: "x", ForType: ir.Serial}},
			ComputeLevel: schedule.RootLevel(),
			StoreLevel:   schedule.RootLevel(),
			Bounds:       []schedule.Bound{{Var: "x", Min: imm(0), Extent: imm(10)}},
		},
	}
	return f
}

type realizeFinder struct {
	ir.BaseVisitor
	names map[string]bool
}

func (r *realizeFinder) VisitRealize(n *ir.Realize) {
	r.names[n.Name] = true
	r.BaseVisitor.VisitRealize(n)
}

type callFinder struct {
	ir.BaseVisitor
	names map[string]bool
}

func (c *callFinder) VisitCall(n *ir.Call) {
	c.names[n.Name] = true
	c.BaseVisitor.VisitCall(n)
}

type provideFinder struct {
	ir.BaseVisitor
	target string
	found  *ir.Provide
}

func (p *provideFinder) VisitProvide(n *ir.Provide) {
	if n.Name == p.target && p.found == nil {
		p.found = n
	}
	p.BaseVisitor.VisitProvide(n)
}

// forFinder records the name of the first (outermost) For it visits —
// after Uniquify, the original "f.x" loop variable is renamed to a fresh
// name, so tests that need to substitute a concrete value for it look up
// its post-uniquify name this way instead of assuming "f.x" survives.
type forFinder struct {
	ir.BaseVisitor
	name  string
	found bool
}

func (ff *forFinder) VisitFor(n *ir.For) {
	if !ff.found {
		ff.name = n.Name
		ff.found = true
	}
	ff.BaseVisitor.VisitFor(n)
}

func TestLowerInlinesEveryCalleeAndLeavesNoRealize(t *testing.T) {
	f := buildInlinerPipeline()
	c := NewCompilation("inliner_test", nil)

	s, env, err := Lower(c, f)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if len(env) != 3 {
		t.Fatalf("expected 3 functions in the environment, got %d", len(env))
	}

	rf := &realizeFinder{names: map[string]bool{}}
	rf.Self = rf
	ir.VisitStmt(rf.Self, s)
	if rf.names["g"] || rf.names["h"] {
		t.Fatalf("expected no Realize for inlined g/h, found %v", rf.names)
	}

	cf := &callFinder{names: map[string]bool{}}
	cf.Self = cf
	ir.VisitStmt(cf.Self, s)
	if cf.names["g"] || cf.names["h"] {
		t.Fatalf("expected every Call to g/h substituted away, found calls to %v", cf.names)
	}

	pf := &provideFinder{target: "f"}
	pf.Self = pf
	ir.VisitStmt(pf.Self, s)
	if pf.found == nil {
		t.Fatalf("expected a Provide (or its Store lowering) computing f")
	}

	ff := &forFinder{}
	ff.Self = ff
	ir.VisitStmt(ff.Self, s)
	if !ff.found {
		t.Fatalf("expected the x loop to still be present")
	}

	// f(x) = g(x-1) + g(x+1) = (2(x-1)) + (2(x+1)) = 4x.
	at := func(n int64) int64 {
		got := simplify.Simplify(simplify.Substitute(pf.found.Value, ff.name, imm(n)))
		v, ok := got.(*ir.IntImm)
		if !ok {
			t.Fatalf("expected a fully-folded constant at x=%d, got %#v", n, got)
		}
		return v.Value
	}
	for _, n := range []int64{0, 1, 5, 9} {
		if got, want := at(n), 4*n; got != want {
			t.Fatalf("f(%d) = %d, want %d", n, got, want)
		}
	}
}

func TestClearResetsConstraints(t *testing.T) {
	c := NewCompilation("clear_test", nil)
	c.Constraints["x"] = bounds.Interval{}
	c.Clear()
	if len(c.Constraints) != 0 {
		t.Fatalf("expected Clear to reset Constraints, got %v", c.Constraints)
	}
}

func TestUniquifyRenamesNestedForsDistinctly(t *testing.T) {
	inner := &ir.For{Name: "x", Min: imm(0), Extent: imm(4), ForType: ir.Serial,
		Body: &ir.Store{Name: "out", Value: &ir.Variable{T: types.Int32, Name: "x"}, Index: &ir.Variable{T: types.Int32, Name: "x"}}}
	outer := &ir.For{Name: "x", Min: imm(0), Extent: imm(4), ForType: ir.Serial, Body: inner}

	ResetUniqueNames()
	out := Uniquify(outer)
	got, ok := out.(*ir.For)
	if !ok || got.Name == "x" {
		t.Fatalf("expected the outer loop renamed away from x, got %#v", out)
	}
	nested, ok := got.Body.(*ir.For)
	if !ok || nested.Name == "x" || nested.Name == got.Name {
		t.Fatalf("expected the inner loop to get its own distinct fresh name, got %#v", got.Body)
	}
}
