package grammar

import (
	"testing"

	"stencil/internal/ir"
	"stencil/internal/schedule"
)

func parseAndBuild(t *testing.T, source string) (schedule.Environment, []string) {
	t.Helper()
	prog, err := ParseString("test.stn", source)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	env, order, err := NewBuilder("test.stn").Build(prog)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return env, order
}

func TestBuildSimplePureStage(t *testing.T) {
	env, order := parseAndBuild(t, `
param input: buffer(u8, 2);
func blur_x(x, y) = (input(x, y) + input(x, y) + input(x, y)) / 3;
`)
	if len(order) != 1 || order[0] != "blur_x" {
		t.Fatalf("expected [blur_x], got %v", order)
	}
	fn, ok := env["blur_x"]
	if !ok {
		t.Fatalf("blur_x missing from environment")
	}
	if len(fn.Args) != 2 || fn.Args[0] != "x" || fn.Args[1] != "y" {
		t.Fatalf("unexpected args: %v", fn.Args)
	}
	bin, ok := fn.Value.(*ir.Binary)
	if !ok || bin.Op != ir.Div {
		t.Fatalf("expected top-level division, got %#v", fn.Value)
	}
}

func TestBuildRejectsUndeclaredCallee(t *testing.T) {
	_, _, err := func() (schedule.Environment, []string, error) {
		prog, err := ParseString("test.stn", `func f(x) = g(x) + 1;`)
		if err != nil {
			return nil, nil, err
		}
		return NewBuilder("test.stn").Build(prog)
	}()
	if err == nil {
		t.Fatalf("expected an error referencing the undeclared function g")
	}
}

func TestBuildReductionPopulatesDomainAndValue(t *testing.T) {
	env, _ := parseAndBuild(t, `
param input: buffer(u8, 1);
func hist(i) = 0;
reduce hist(input(r)) += 1 over r in [0, 256);
`)
	fn := env["hist"]
	if !fn.IsReduction() {
		t.Fatalf("expected hist to carry a reduction update")
	}
	if len(fn.ReductionDomain) != 1 {
		t.Fatalf("expected one reduction domain dim, got %d", len(fn.ReductionDomain))
	}
	if len(fn.Schedule.ReductionDims) != 1 || fn.Schedule.ReductionDims[0].Var != "r" {
		t.Fatalf("expected reduction dim named r, got %v", fn.Schedule.ReductionDims)
	}
	add, ok := fn.ReductionValue.(*ir.Binary)
	if !ok || add.Op != ir.Add {
		t.Fatalf("expected reduction value to be an addition, got %#v", fn.ReductionValue)
	}
	call, ok := add.A.(*ir.Call)
	if !ok || call.Name != "hist" {
		t.Fatalf("expected the accumulator self-call first, got %#v", add.A)
	}
}

func TestApplyScheduleComputeRootAndSplit(t *testing.T) {
	env, _ := parseAndBuild(t, `
param input: buffer(u8, 2);
func blur_x(x, y) = input(x, y);
schedule blur_x {
  compute_root();
  split(x, x_outer, x_inner, 4);
  vectorize(x_inner);
}
`)
	fn := env["blur_x"]
	if !fn.Schedule.ComputeLevel.Root {
		t.Fatalf("expected compute_root to set a Root level")
	}
	if len(fn.Schedule.Splits) != 1 {
		t.Fatalf("expected one split, got %v", fn.Schedule.Splits)
	}
	split := fn.Schedule.Splits[0]
	if split.Old != "x" || split.Outer != "x_outer" || split.Inner != "x_inner" || split.Factor != 4 {
		t.Fatalf("unexpected split: %+v", split)
	}
	found := false
	for _, d := range fn.Schedule.Dims {
		if d.Var == "x_inner" {
			found = true
			if d.ForType != ir.Vectorized {
				t.Fatalf("expected x_inner to be vectorized, got %v", d.ForType)
			}
		}
	}
	if !found {
		t.Fatalf("expected x_inner among the dims after split, got %v", fn.Schedule.Dims)
	}
}

func TestApplyScheduleRejectsInlineComputeWithStoreRoot(t *testing.T) {
	// A lone store_root() leaves compute_level at its default, inline; an
	// inline compute_level with a non-inline store_level is an invalid
	// schedule that applySchedule rejects outright.
	prog, err := ParseString("test.stn", `
param input: buffer(u8, 1);
func f(x) = input(x);
schedule f {
  store_root();
}
`)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	if _, _, err := NewBuilder("test.stn").Build(prog); err == nil {
		t.Fatalf("expected Build to reject a store_root without a matching compute_root")
	}
}
