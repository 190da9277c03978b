package scheduler

import (
	"testing"

	"stencil/internal/ir"
	"stencil/internal/schedule"
	"stencil/internal/types"
)

func plainFunc(name string, args []string, value ir.Expr) *schedule.Function {
	return &schedule.Function{
		Name:  name,
		Args:  args,
		Type:  types.Int32,
		Value: value,
		Schedule: schedule.Schedule{
			Dims: []schedule.Dim{{Var: args[0], ForType: ir.Serial}},
		},
	}
}

func TestPopulateEnvironmentCollectsCallees(t *testing.T) {
	src := plainFunc("src", []string{"x"}, &ir.Variable{T: types.Int32, Name: "x", Param: true})
	blur := plainFunc("blur", []string{"x"}, &ir.Call{
		T: types.Int32, Name: "src", CallType: ir.CallPipeline, Func: src,
		Args: []ir.Expr{&ir.Variable{T: types.Int32, Name: "x", Param: true}},
	})

	env := schedule.Environment{}
	if err := PopulateEnvironment(blur, env); err != nil {
		t.Fatalf("PopulateEnvironment: %v", err)
	}
	if _, ok := env["src"]; !ok {
		t.Fatalf("expected src in the environment, got %v", env)
	}
	if _, ok := env["blur"]; !ok {
		t.Fatalf("expected blur in the environment, got %v", env)
	}
}

func TestRealizationOrderPutsCalleesFirst(t *testing.T) {
	src := plainFunc("src", []string{"x"}, &ir.Variable{T: types.Int32, Name: "x", Param: true})
	blur := plainFunc("blur", []string{"x"}, &ir.Call{
		T: types.Int32, Name: "src", CallType: ir.CallPipeline, Func: src,
		Args: []ir.Expr{&ir.Variable{T: types.Int32, Name: "x", Param: true}},
	})

	env := schedule.Environment{}
	if err := PopulateEnvironment(blur, env); err != nil {
		t.Fatalf("PopulateEnvironment: %v", err)
	}
	order, _, err := RealizationOrder("blur", env)
	if err != nil {
		t.Fatalf("RealizationOrder: %v", err)
	}
	if len(order) != 2 || order[0] != "src" || order[1] != "blur" {
		t.Fatalf("expected [src blur], got %v", order)
	}
}

func TestCreateInitialLoopNestWrapsEveryDim(t *testing.T) {
	f := plainFunc("f", []string{"x", "y"}, &ir.IntImm{T: types.Int32, Value: 0})
	f.Schedule.Dims = []schedule.Dim{
		{Var: "x", ForType: ir.Serial},
		{Var: "y", ForType: ir.Serial},
	}
	s := CreateInitialLoopNest(f)
	outer, ok := s.(*ir.For)
	if !ok {
		t.Fatalf("expected outer *ir.For, got %#v", s)
	}
	if outer.Name != "f.y" {
		t.Fatalf("expected the last dim (y) to wrap outermost, got %q", outer.Name)
	}
	inner, ok := outer.Body.(*ir.For)
	if !ok || inner.Name != "f.x" {
		t.Fatalf("expected inner *ir.For named f.x, got %#v", outer.Body)
	}
	if _, ok := inner.Body.(*ir.Provide); !ok {
		t.Fatalf("expected a Provide at the core of the nest, got %#v", inner.Body)
	}
}

func TestInjectExplicitBoundsWrapsAssertAndLets(t *testing.T) {
	f := plainFunc("f", []string{"x"}, &ir.IntImm{T: types.Int32, Value: 0})
	f.Schedule.Bounds = []schedule.Bound{{Var: "x", Min: &ir.IntImm{T: types.Int32, Value: 0}, Extent: &ir.IntImm{T: types.Int32, Value: 100}}}
	body := &ir.AssertStmt{Cond: &ir.IntImm{T: types.BoolT, Value: 1}}
	got := InjectExplicitBounds(body, f)
	block, ok := got.(*ir.Block)
	if !ok {
		t.Fatalf("expected *ir.Block, got %#v", got)
	}
	if _, ok := block.First.(*ir.AssertStmt); !ok {
		t.Fatalf("expected the bounds check assertion first, got %#v", block.First)
	}
	letMin, ok := block.Rest.(*ir.LetStmt)
	if !ok || letMin.Name != "f.x.min" {
		t.Fatalf("expected f.x.min let binding, got %#v", block.Rest)
	}
}
