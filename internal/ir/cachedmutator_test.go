package ir

import (
	"testing"

	"stencil/internal/options"
	"stencil/internal/types"
)

// doubleLiterals is a trivial Rewriter used to exercise CachedMutator: it
// doubles every IntImm it sees, letting tests count how many times the
// rewrite actually ran versus was served from cache.
type doubleLiterals struct {
	BaseRewriter
	calls int
}

func (d *doubleLiterals) RewriteIntImm(n *IntImm) Expr {
	d.calls++
	return &IntImm{T: n.T, Value: n.Value * 2}
}

func TestCachedMutatorHitsCacheOnSharedNode(t *testing.T) {
	shared := &IntImm{T: types.Int32, Value: 3}
	tree := &Binary{Op: Add, A: shared, B: shared, T: types.Int32}

	policy := &doubleLiterals{}
	cm := NewCachedMutator(policy, nil, &options.Options{MutatorCache: true})

	result := cm.MutateExpr(tree).(*Binary)

	if policy.calls != 1 {
		t.Errorf("expected the shared literal to be rewritten once and served from cache the second time, got %d calls", policy.calls)
	}
	if result.A.(*IntImm).Value != 6 || result.B.(*IntImm).Value != 6 {
		t.Errorf("expected both operands doubled to 6, got %v and %v", result.A, result.B)
	}
}

func TestCachedMutatorHandlesSharedBodyUnderTwoLets(t *testing.T) {
	v := &Variable{Name: "x", T: types.Int32}
	inner := &Let{Name: "y", Value: &IntImm{T: types.Int32, Value: 1}, Body: v}
	outer := &Let{Name: "y", Value: &IntImm{T: types.Int32, Value: 2}, Body: v}
	tree := &Binary{Op: Add, A: inner, B: outer, T: types.Int32}

	cm := NewCachedMutator(nil, nil, &options.Options{MutatorCache: true})
	result := cm.MutateExpr(tree)
	if result == nil {
		t.Fatal("expected a mutated tree")
	}
}

func TestCachedMutatorCacheCheckDetectsMismatch(t *testing.T) {
	calls := 0
	policy := rewriterFunc{
		BaseRewriter: BaseRewriter{},
		rewriteInt: func(n *IntImm) Expr {
			calls++
			// Non-deterministic on purpose: alternates value so the
			// cache-check recompute disagrees with the cached entry.
			if calls%2 == 0 {
				return &IntImm{T: n.T, Value: n.Value + 1}
			}
			return &IntImm{T: n.T, Value: n.Value}
		},
	}
	shared := &IntImm{T: types.Int32, Value: 1}
	tree := &Binary{Op: Add, A: shared, B: shared, T: types.Int32}

	cm := NewCachedMutator(policy, nil, &options.Options{MutatorCache: true, MutatorCacheCheck: true})

	defer func() {
		if recover() == nil {
			t.Fatal("expected cache-check mismatch to panic")
		}
	}()
	cm.MutateExpr(tree)
}

type rewriterFunc struct {
	BaseRewriter
	rewriteInt func(*IntImm) Expr
}

func (r rewriterFunc) RewriteIntImm(n *IntImm) Expr { return r.rewriteInt(n) }
