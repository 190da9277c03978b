package schedule

import "testing"

func TestScheduleValidComputeNotShallowerThanStore(t *testing.T) {
	s := &Schedule{ComputeLevel: LoopLevel{Func: "blur", Var: "y"}, StoreLevel: RootLevel()}
	if !s.Valid() {
		t.Fatalf("a named compute_level at root store_level should be valid")
	}
	bad := &Schedule{ComputeLevel: RootLevel(), StoreLevel: LoopLevel{Func: "blur", Var: "y"}}
	if bad.Valid() {
		t.Fatalf("compute_level shallower than store_level must be rejected")
	}
}

func TestInlineIsAlwaysValidDepth(t *testing.T) {
	s := &Schedule{ComputeLevel: InlineLevel(), StoreLevel: InlineLevel()}
	if !s.Valid() {
		t.Fatalf("inline/inline should be valid")
	}
}

func TestFunctionDomainInvariant(t *testing.T) {
	f := &Function{Name: "f"}
	if !f.CheckDomainInvariant() {
		t.Fatalf("absent domains should trivially satisfy the invariant")
	}
}
