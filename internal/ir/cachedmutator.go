package ir

import "stencil/internal/options"

// CachedMutator layers memoization on top of the Mutator/LazyScope pair:
// before mutating a node it looks up (current context,
// node) in a result table; on a hit it returns the cached result (or, in
// cache-check mode, recomputes anyway and asserts the two agree); on a miss
// it computes, caches, and returns the result in the same step.
//
// Every node, not just the scope-introducing ones, is mutated through
// MutateExpr/MutateStmt so the memo table actually gets hit on shared
// subtrees; CachedMutator therefore carries its own full per-variant
// recursion (structurally identical to Mutator's) rather than delegating
// to a plain Mutator for non-scope-introducing nodes, which would recurse
// without ever touching the cache.
type CachedMutator struct {
	Policy Rewriter
	Scope  *LazyScope
	Opts   *options.Options

	exprCache map[cacheKey]Expr
	stmtCache map[cacheKey]Stmt

	dispatch *Mutator // used only for its rewrite()/rewriteStmt() policy dispatch, never for recursion
}

type cacheKey struct {
	context int
	node    Node
}

// NewCachedMutator builds a CachedMutator around policy, using scope (or a
// fresh LazyScope if nil) to key the memo table.
func NewCachedMutator(policy Rewriter, scope *LazyScope, opts *options.Options) *CachedMutator {
	if scope == nil {
		scope = NewLazyScope()
	}
	if opts == nil {
		opts = options.Global
	}
	return &CachedMutator{
		Policy:    policy,
		Scope:     scope,
		Opts:      opts,
		exprCache: map[cacheKey]Expr{},
		stmtCache: map[cacheKey]Stmt{},
		dispatch:  NewMutator(policy),
	}
}

func (m *CachedMutator) policy(e Expr) Expr { return m.dispatch.rewrite(e, e) }
func (m *CachedMutator) policyStmt(s Stmt) Stmt { return m.dispatch.rewriteStmt(s) }

// MutateExpr mutates e under the current scope context, consulting (and
// populating) the memo table.
func (m *CachedMutator) MutateExpr(e Expr) Expr {
	if e == nil {
		return nil
	}
	key := cacheKey{context: m.Scope.Context(), node: e}

	if !m.Opts.MutatorCache {
		return m.mutateExprUncached(e)
	}

	if cached, ok := m.exprCache[key]; ok {
		if !m.Opts.MutatorCacheCheck {
			return cached
		}
		recomputed := m.mutateExprUncached(e)
		if !Equal(cached, recomputed) {
			panic("ir.CachedMutator: cache mismatch on expr recompute (B0001)")
		}
		return cached
	}

	result := m.mutateExprUncached(e)
	m.exprCache[key] = result
	return result
}

// MutateStmt is MutateExpr's statement counterpart.
func (m *CachedMutator) MutateStmt(s Stmt) Stmt {
	if s == nil {
		return nil
	}
	key := cacheKey{context: m.Scope.Context(), node: s}

	if !m.Opts.MutatorCache {
		return m.mutateStmtUncached(s)
	}

	if cached, ok := m.stmtCache[key]; ok {
		if !m.Opts.MutatorCacheCheck {
			return cached
		}
		recomputed := m.mutateStmtUncached(s)
		if !EqualStmt(cached, recomputed) {
			panic("ir.CachedMutator: cache mismatch on stmt recompute (B0001)")
		}
		return cached
	}

	result := m.mutateStmtUncached(s)
	m.stmtCache[key] = result
	return result
}

func (m *CachedMutator) mutateExprUncached(e Expr) Expr {
	switch n := e.(type) {
	case *IntImm, *FloatImm, *Variable, *Infinity:
		return m.policy(e)
	case *Cast:
		v := m.MutateExpr(n.Value)
		if v == n.Value {
			return m.policy(e)
		}
		return m.policy(&Cast{To: n.To, Value: v})
	case *Not:
		v := m.MutateExpr(n.Value)
		if v == n.Value {
			return m.policy(e)
		}
		return m.policy(&Not{Value: v})
	case *SignFill:
		v := m.MutateExpr(n.Value)
		if v == n.Value {
			return m.policy(e)
		}
		return m.policy(&SignFill{Value: v})
	case *Binary:
		a, b := m.MutateExpr(n.A), m.MutateExpr(n.B)
		if a == n.A && b == n.B {
			return m.policy(e)
		}
		return m.policy(&Binary{Op: n.Op, A: a, B: b, T: n.T})
	case *Compare:
		a, b := m.MutateExpr(n.A), m.MutateExpr(n.B)
		if a == n.A && b == n.B {
			return m.policy(e)
		}
		return m.policy(&Compare{Op: n.Op, A: a, B: b, T: n.T})
	case *Logical:
		a, b := m.MutateExpr(n.A), m.MutateExpr(n.B)
		if a == n.A && b == n.B {
			return m.policy(e)
		}
		return m.policy(&Logical{Op: n.Op, A: a, B: b})
	case *Select:
		c, t, f := m.MutateExpr(n.Cond), m.MutateExpr(n.TrueVal), m.MutateExpr(n.FalseVal)
		if c == n.Cond && t == n.TrueVal && f == n.FalseVal {
			return m.policy(e)
		}
		return m.policy(&Select{Cond: c, TrueVal: t, FalseVal: f})
	case *Load:
		idx := m.MutateExpr(n.Index)
		if idx == n.Index {
			return m.policy(e)
		}
		return m.policy(&Load{T: n.T, Name: n.Name, Index: idx, Buffer: n.Buffer})
	case *Ramp:
		base, stride := m.MutateExpr(n.Base), m.MutateExpr(n.Stride)
		if base == n.Base && stride == n.Stride {
			return m.policy(e)
		}
		return m.policy(&Ramp{Base: base, Stride: stride, Lanes: n.Lanes})
	case *Broadcast:
		v := m.MutateExpr(n.Value)
		if v == n.Value {
			return m.policy(e)
		}
		return m.policy(&Broadcast{Value: v, Lanes: n.Lanes})
	case *Call:
		changed := false
		args := make([]Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = m.MutateExpr(a)
			if args[i] != a {
				changed = true
			}
		}
		if !changed {
			return m.policy(e)
		}
		return m.policy(&Call{T: n.T, Name: n.Name, Args: args, CallType: n.CallType, Func: n.Func, Buffer: n.Buffer})
	case *Let:
		value := m.MutateExpr(n.Value)
		m.Scope.PushContext(n, n.Name, value)
		body := m.MutateExpr(n.Body)
		m.Scope.PopContext(n.Name)
		if value == n.Value && body == n.Body {
			return m.policy(e)
		}
		return m.policy(&Let{Name: n.Name, Value: value, Body: body})
	case *Clamp:
		a, lo, hi := m.MutateExpr(n.A), m.MutateExpr(n.Min), m.MutateExpr(n.Max)
		var p1 Expr
		if n.P1 != nil {
			p1 = m.MutateExpr(n.P1)
		}
		if a == n.A && lo == n.Min && hi == n.Max && p1 == n.P1 {
			return m.policy(e)
		}
		return m.policy(&Clamp{ClampKind: n.ClampKind, A: a, Min: lo, Max: hi, P1: p1})
	case *Solve:
		body := m.MutateExpr(n.Body)
		if body == n.Body {
			return m.policy(e)
		}
		return m.policy(&Solve{Var: n.Var, Body: body})
	case *TargetVar:
		m.Scope.PushContext(n, n.Name, nil)
		body := m.MutateExpr(n.Body)
		m.Scope.PopContext(n.Name)
		if body == n.Body {
			return m.policy(e)
		}
		return m.policy(&TargetVar{Name: n.Name, Body: body})
	default:
		panic("ir.CachedMutator.MutateExpr: unknown expr variant")
	}
}

func (m *CachedMutator) mutateStmtUncached(s Stmt) Stmt {
	switch n := s.(type) {
	case *LetStmt:
		value := m.MutateExpr(n.Value)
		m.Scope.PushContext(n, n.Name, value)
		body := m.MutateStmt(n.Body)
		m.Scope.PopContext(n.Name)
		if value == n.Value && body == n.Body {
			return m.policyStmt(s)
		}
		return m.policyStmt(&LetStmt{Name: n.Name, Value: value, Body: body})
	case *AssertStmt:
		c := m.MutateExpr(n.Cond)
		if c == n.Cond {
			return m.policyStmt(s)
		}
		return m.policyStmt(&AssertStmt{Cond: c, Message: n.Message})
	case *PrintStmt:
		changed := false
		args := make([]Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = m.MutateExpr(a)
			if args[i] != a {
				changed = true
			}
		}
		if !changed {
			return m.policyStmt(s)
		}
		return m.policyStmt(&PrintStmt{Prefix: n.Prefix, Args: args})
	case *For:
		min := m.MutateExpr(n.Min)
		extent := m.MutateExpr(n.Extent)
		m.Scope.PushContext(n, n.Name, nil)
		body := m.MutateStmt(n.Body)
		m.Scope.PopContext(n.Name)
		if min == n.Min && extent == n.Extent && body == n.Body {
			return m.policyStmt(s)
		}
		return m.policyStmt(&For{Name: n.Name, Min: min, Extent: extent, ForType: n.ForType, SplitInfo: n.SplitInfo, Body: body})
	case *Store:
		v, idx := m.MutateExpr(n.Value), m.MutateExpr(n.Index)
		if v == n.Value && idx == n.Index {
			return m.policyStmt(s)
		}
		return m.policyStmt(&Store{Name: n.Name, Value: v, Index: idx})
	case *Provide:
		v := m.MutateExpr(n.Value)
		changed := v != n.Value
		args := make([]Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = m.MutateExpr(a)
			if args[i] != a {
				changed = true
			}
		}
		if !changed {
			return m.policyStmt(s)
		}
		return m.policyStmt(&Provide{Name: n.Name, Value: v, Args: args})
	case *Allocate:
		size := m.MutateExpr(n.Size)
		body := m.MutateStmt(n.Body)
		if size == n.Size && body == n.Body {
			return m.policyStmt(s)
		}
		return m.policyStmt(&Allocate{Name: n.Name, T: n.T, Size: size, Body: body})
	case *Realize:
		changed := false
		bounds := make([]Range, len(n.Bounds))
		for i, r := range n.Bounds {
			min, ext := m.MutateExpr(r.Min), m.MutateExpr(r.Extent)
			if min != r.Min || ext != r.Extent {
				changed = true
			}
			bounds[i] = Range{Min: min, Extent: ext}
		}
		body := m.MutateStmt(n.Body)
		if body != n.Body {
			changed = true
		}
		if !changed {
			return m.policyStmt(s)
		}
		return m.policyStmt(&Realize{Name: n.Name, T: n.T, Bounds: bounds, Body: body})
	case *Pipeline:
		produce := m.MutateStmt(n.Produce)
		var update Stmt
		if n.Update != nil {
			update = m.MutateStmt(n.Update)
		}
		consume := m.MutateStmt(n.Consume)
		if produce == n.Produce && update == n.Update && consume == n.Consume {
			return m.policyStmt(s)
		}
		return m.policyStmt(&Pipeline{Name: n.Name, Produce: produce, Update: update, Consume: consume})
	case *Block:
		first := m.MutateStmt(n.First)
		var rest Stmt
		if n.Rest != nil {
			rest = m.MutateStmt(n.Rest)
		}
		if first == n.First && rest == n.Rest {
			return m.policyStmt(s)
		}
		return m.policyStmt(&Block{First: first, Rest: rest})
	case *StmtTargetVar:
		m.Scope.PushContext(n, n.Name, nil)
		body := m.MutateStmt(n.Body)
		m.Scope.PopContext(n.Name)
		if body == n.Body {
			return m.policyStmt(s)
		}
		return m.policyStmt(&StmtTargetVar{Name: n.Name, Body: body})
	default:
		panic("ir.CachedMutator.MutateStmt: unknown stmt variant")
	}
}
