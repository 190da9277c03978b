package ir

// Mutator is the traversal engine: it recursively mutates a
// node's children and, if every child comes back identical (same pointer),
// returns the original node so that an untouched subtree is never
// reallocated, a structural-sharing optimization that keeps unrelated
// rewrites cheap. Once the children have been folded back into a node (or
// the original node reused), the result is handed to Policy, a Rewriter,
// for a final per-variant rewrite decision. Passes that don't need the
// Rewriter hook at all can leave Policy nil; MutateExpr/MutateStmt then
// just perform the recurse-and-share step.
type Mutator struct {
	Policy Rewriter
}

// NewMutator builds a Mutator around policy. A nil policy performs pure
// structural recursion with no rewriting.
func NewMutator(policy Rewriter) *Mutator {
	return &Mutator{Policy: policy}
}

func (m *Mutator) rewrite(original, mutated Expr) Expr {
	if m.Policy == nil {
		return mutated
	}
	switch n := mutated.(type) {
	case *IntImm:
		return m.Policy.RewriteIntImm(n)
	case *FloatImm:
		return m.Policy.RewriteFloatImm(n)
	case *Variable:
		return m.Policy.RewriteVariable(n)
	case *Cast:
		return m.Policy.RewriteCast(n)
	case *Not:
		return m.Policy.RewriteNot(n)
	case *SignFill:
		return m.Policy.RewriteSignFill(n)
	case *Binary:
		return m.Policy.RewriteBinary(n)
	case *Compare:
		return m.Policy.RewriteCompare(n)
	case *Logical:
		return m.Policy.RewriteLogical(n)
	case *Select:
		return m.Policy.RewriteSelect(n)
	case *Load:
		return m.Policy.RewriteLoad(n)
	case *Ramp:
		return m.Policy.RewriteRamp(n)
	case *Broadcast:
		return m.Policy.RewriteBroadcast(n)
	case *Call:
		return m.Policy.RewriteCall(n)
	case *Let:
		return m.Policy.RewriteLet(n)
	case *Clamp:
		return m.Policy.RewriteClamp(n)
	case *Infinity:
		return m.Policy.RewriteInfinity(n)
	case *Solve:
		return m.Policy.RewriteSolve(n)
	case *TargetVar:
		return m.Policy.RewriteTargetVar(n)
	default:
		panic("ir.Mutator: unknown expr variant")
	}
}

func (m *Mutator) rewriteStmt(mutated Stmt) Stmt {
	if m.Policy == nil {
		return mutated
	}
	switch n := mutated.(type) {
	case *LetStmt:
		return m.Policy.RewriteLetStmt(n)
	case *AssertStmt:
		return m.Policy.RewriteAssertStmt(n)
	case *PrintStmt:
		return m.Policy.RewritePrintStmt(n)
	case *For:
		return m.Policy.RewriteFor(n)
	case *Store:
		return m.Policy.RewriteStore(n)
	case *Provide:
		return m.Policy.RewriteProvide(n)
	case *Allocate:
		return m.Policy.RewriteAllocate(n)
	case *Realize:
		return m.Policy.RewriteRealize(n)
	case *Pipeline:
		return m.Policy.RewritePipeline(n)
	case *Block:
		return m.Policy.RewriteBlock(n)
	case *StmtTargetVar:
		return m.Policy.RewriteStmtTargetVar(n)
	default:
		panic("ir.Mutator: unknown stmt variant")
	}
}

// MutateExpr recursively mutates e's children and applies the Policy hook.
func (m *Mutator) MutateExpr(e Expr) Expr {
	if e == nil {
		return nil
	}
	switch n := e.(type) {
	case *IntImm, *FloatImm, *Variable, *Infinity:
		return m.rewrite(e, e)
	case *Cast:
		v := m.MutateExpr(n.Value)
		if v == n.Value {
			return m.rewrite(e, n)
		}
		return m.rewrite(e, &Cast{To: n.To, Value: v})
	case *Not:
		v := m.MutateExpr(n.Value)
		if v == n.Value {
			return m.rewrite(e, n)
		}
		return m.rewrite(e, &Not{Value: v})
	case *SignFill:
		v := m.MutateExpr(n.Value)
		if v == n.Value {
			return m.rewrite(e, n)
		}
		return m.rewrite(e, &SignFill{Value: v})
	case *Binary:
		a, b := m.MutateExpr(n.A), m.MutateExpr(n.B)
		if a == n.A && b == n.B {
			return m.rewrite(e, n)
		}
		return m.rewrite(e, &Binary{Op: n.Op, A: a, B: b, T: n.T})
	case *Compare:
		a, b := m.MutateExpr(n.A), m.MutateExpr(n.B)
		if a == n.A && b == n.B {
			return m.rewrite(e, n)
		}
		return m.rewrite(e, &Compare{Op: n.Op, A: a, B: b, T: n.T})
	case *Logical:
		a, b := m.MutateExpr(n.A), m.MutateExpr(n.B)
		if a == n.A && b == n.B {
			return m.rewrite(e, n)
		}
		return m.rewrite(e, &Logical{Op: n.Op, A: a, B: b})
	case *Select:
		c, t, f := m.MutateExpr(n.Cond), m.MutateExpr(n.TrueVal), m.MutateExpr(n.FalseVal)
		if c == n.Cond && t == n.TrueVal && f == n.FalseVal {
			return m.rewrite(e, n)
		}
		return m.rewrite(e, &Select{Cond: c, TrueVal: t, FalseVal: f})
	case *Load:
		idx := m.MutateExpr(n.Index)
		if idx == n.Index {
			return m.rewrite(e, n)
		}
		return m.rewrite(e, &Load{T: n.T, Name: n.Name, Index: idx, Buffer: n.Buffer})
	case *Ramp:
		base, stride := m.MutateExpr(n.Base), m.MutateExpr(n.Stride)
		if base == n.Base && stride == n.Stride {
			return m.rewrite(e, n)
		}
		return m.rewrite(e, &Ramp{Base: base, Stride: stride, Lanes: n.Lanes})
	case *Broadcast:
		v := m.MutateExpr(n.Value)
		if v == n.Value {
			return m.rewrite(e, n)
		}
		return m.rewrite(e, &Broadcast{Value: v, Lanes: n.Lanes})
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
			return m.rewrite(e, n)
		}
		return m.rewrite(e, &Call{T: n.T, Name: n.Name, Args: args, CallType: n.CallType, Func: n.Func, Buffer: n.Buffer})
	case *Let:
		v, body := m.MutateExpr(n.Value), m.MutateExpr(n.Body)
		if v == n.Value && body == n.Body {
			return m.rewrite(e, n)
		}
		return m.rewrite(e, &Let{Name: n.Name, Value: v, Body: body})
	case *Clamp:
		a, lo, hi := m.MutateExpr(n.A), m.MutateExpr(n.Min), m.MutateExpr(n.Max)
		var p1 Expr
		if n.P1 != nil {
			p1 = m.MutateExpr(n.P1)
		}
		if a == n.A && lo == n.Min && hi == n.Max && p1 == n.P1 {
			return m.rewrite(e, n)
		}
		return m.rewrite(e, &Clamp{ClampKind: n.ClampKind, A: a, Min: lo, Max: hi, P1: p1})
	case *Solve:
		body := m.MutateExpr(n.Body)
		if body == n.Body {
			return m.rewrite(e, n)
		}
		return m.rewrite(e, &Solve{Var: n.Var, Body: body})
	case *TargetVar:
		body := m.MutateExpr(n.Body)
		if body == n.Body {
			return m.rewrite(e, n)
		}
		return m.rewrite(e, &TargetVar{Name: n.Name, Body: body})
	default:
		panic("ir.Mutator.MutateExpr: unknown expr variant")
	}
}

// MutateStmt recursively mutates s's children and applies the Policy hook.
func (m *Mutator) MutateStmt(s Stmt) Stmt {
	if s == nil {
		return nil
	}
	switch n := s.(type) {
	case *LetStmt:
		v, body := m.MutateExpr(n.Value), m.MutateStmt(n.Body)
		if v == n.Value && body == n.Body {
			return m.rewriteStmt(n)
		}
		return m.rewriteStmt(&LetStmt{Name: n.Name, Value: v, Body: body})
	case *AssertStmt:
		c := m.MutateExpr(n.Cond)
		if c == n.Cond {
			return m.rewriteStmt(n)
		}
		return m.rewriteStmt(&AssertStmt{Cond: c, Message: n.Message})
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
			return m.rewriteStmt(n)
		}
		return m.rewriteStmt(&PrintStmt{Prefix: n.Prefix, Args: args})
	case *For:
		min, extent, body := m.MutateExpr(n.Min), m.MutateExpr(n.Extent), m.MutateStmt(n.Body)
		if min == n.Min && extent == n.Extent && body == n.Body {
			return m.rewriteStmt(n)
		}
		return m.rewriteStmt(&For{Name: n.Name, Min: min, Extent: extent, ForType: n.ForType, SplitInfo: n.SplitInfo, Body: body})
	case *Store:
		v, idx := m.MutateExpr(n.Value), m.MutateExpr(n.Index)
		if v == n.Value && idx == n.Index {
			return m.rewriteStmt(n)
		}
		return m.rewriteStmt(&Store{Name: n.Name, Value: v, Index: idx})
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
			return m.rewriteStmt(n)
		}
		return m.rewriteStmt(&Provide{Name: n.Name, Value: v, Args: args})
	case *Allocate:
		size, body := m.MutateExpr(n.Size), m.MutateStmt(n.Body)
		if size == n.Size && body == n.Body {
			return m.rewriteStmt(n)
		}
		return m.rewriteStmt(&Allocate{Name: n.Name, T: n.T, Size: size, Body: body})
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
			return m.rewriteStmt(n)
		}
		return m.rewriteStmt(&Realize{Name: n.Name, T: n.T, Bounds: bounds, Body: body})
	case *Pipeline:
		produce := m.MutateStmt(n.Produce)
		var update Stmt
		if n.Update != nil {
			update = m.MutateStmt(n.Update)
		}
		consume := m.MutateStmt(n.Consume)
		if produce == n.Produce && update == n.Update && consume == n.Consume {
			return m.rewriteStmt(n)
		}
		return m.rewriteStmt(&Pipeline{Name: n.Name, Produce: produce, Update: update, Consume: consume})
	case *Block:
		first := m.MutateStmt(n.First)
		var rest Stmt
		if n.Rest != nil {
			rest = m.MutateStmt(n.Rest)
		}
		if first == n.First && rest == n.Rest {
			return m.rewriteStmt(n)
		}
		return m.rewriteStmt(&Block{First: first, Rest: rest})
	case *StmtTargetVar:
		body := m.MutateStmt(n.Body)
		if body == n.Body {
			return m.rewriteStmt(n)
		}
		return m.rewriteStmt(&StmtTargetVar{Name: n.Name, Body: body})
	default:
		panic("ir.Mutator.MutateStmt: unknown stmt variant")
	}
}
