package lowering

import (
	"fmt"
	"strings"

	"stencil/internal/bounds"
	"stencil/internal/ir"
	"stencil/internal/lower"
	"stencil/internal/options"
	"stencil/internal/schedule"
	"stencil/internal/types"
)

// domainBody wraps f's pure (and, for a reduction, update) value
// expressions in a throwaway Stmt so bounds.InferValidDomain/
// InferComputableDomain — which walk a Stmt, per
// internal/bounds/inference.go — can see them. Mirrors the exact
// LetStmt-wrapping shape internal/bounds's own domain-inference test uses.
func domainBody(f *schedule.Function) ir.Stmt {
	dummy := &ir.AssertStmt{Cond: &ir.IntImm{T: types.BoolT, Value: 1}, Message: "domain inference"}
	var s ir.Stmt = &ir.LetStmt{Name: "_domain_value", Value: f.Value, Body: dummy}
	if f.IsReduction() {
		s = &ir.LetStmt{Name: "_domain_reduction_value", Value: f.ReductionValue, Body: s}
		for i, arg := range f.ReductionArgs {
			s = &ir.LetStmt{Name: fmt.Sprintf("_domain_reduction_arg_%d", i), Value: arg, Body: s}
		}
	}
	return s
}

// inferDomains (pipeline step 7) computes Valid and Computable for every
// function in env and stores them back onto the Function, processing
// order callees-first so a caller's InferValidDomain can already see each
// callee's Valid domain.
func inferDomains(order []string, env schedule.Environment) {
	callees := map[string]bounds.Domain{}
	for _, name := range order {
		f := env[name]
		body := domainBody(f)
		f.Valid = bounds.InferValidDomain(f.Args, body, callees)
		f.Computable = bounds.InferComputableDomain(f.Args, body)
		callees[name] = f.Valid
	}
}

// applySlidingWindow (pipeline step 9) tries the sliding-window rewrite for
// every materialized (non-inline, non-root) function whose
// store_at names a loop, using that loop's own qualified ".min" variable —
// the same "funcname.var.min" naming convention buildProvideLoopNest
// establishes — rather than searching the tree for the loop's Min
// expression.
func applySlidingWindow(s ir.Stmt, env schedule.Environment) ir.Stmt {
	for _, f := range env {
		lvl := f.Schedule.StoreLevel
		if lvl.Root || lvl.Inline {
			continue
		}
		loopVar := lvl.Func + "." + lvl.Var
		loopMin := &ir.Variable{T: types.Int32, Name: loopVar + ".min"}
		if out, applied := lower.SlideRealize(s, f.Name, loopVar, loopMin); applied {
			s = out
		}
	}
	return s
}

// autoSplitPass (pipeline steps 11/15) retries the loop split on every
// not-yet-split Serial For whose owning function (the prefix
// before the first '.' in the For's qualified name) has loop splitting
// enabled, either via its own Schedule.LoopSplitSettings.AutoSplit or via
// the process-wide Options.LoopSplitAll override.
type autoSplitPass struct {
	ir.BaseRewriter
	env         schedule.Environment
	opts        *options.Options
	constraints bounds.Constraints
}

func (a *autoSplitPass) RewriteFor(n *ir.For) ir.Stmt {
	if !a.opts.LoopSplit || n.SplitInfo != nil || n.ForType != ir.Serial {
		return n
	}
	fnName, _, ok := strings.Cut(n.Name, ".")
	if !ok {
		return n
	}
	f, ok := a.env[fnName]
	if !ok {
		return n
	}
	if !a.opts.LoopSplitAll && !f.Schedule.LoopSplitSettings.AutoSplit {
		return n
	}
	return lower.LoopSplit(n, lower.DefaultSplitN, a.constraints)
}

// applyAutoLoopSplit runs autoSplitPass over s once; LoopSplit's own
// before/main/after fragments all carry SplitInfo != nil, so a later
// re-application of this same pass (pipeline step 15 re-running step 11's
// sequence) never re-splits a fragment it already produced.
func applyAutoLoopSplit(s ir.Stmt, env schedule.Environment, opts *options.Options, constraints bounds.Constraints) ir.Stmt {
	return ir.NewMutator(&autoSplitPass{env: env, opts: opts, constraints: constraints}).MutateStmt(s)
}

// unrolledFinder locates the first For tagged Unrolled in program order —
// the driver unrolls loops one at a time, so nested unrolled loops
// (revealed only once their enclosing loop has itself been expanded away)
// are picked up on the following iteration.
type unrolledFinder struct {
	ir.BaseVisitor
	name  string
	found bool
}

func (u *unrolledFinder) VisitFor(n *ir.For) {
	if u.found {
		return
	}
	if n.ForType == ir.Unrolled {
		u.name = n.Name
		u.found = true
		return
	}
	u.BaseVisitor.VisitFor(n)
}

// unrollAll (part of pipeline step 17) repeatedly finds and expands every
// Unrolled-tagged For until none remain, surfacing lower.Unroll's
// non-constant-extent error (a scheduling mistake, not a compiler bug) to
// the caller.
func unrollAll(s ir.Stmt) (ir.Stmt, error) {
	for {
		f := &unrolledFinder{}
		f.Self = f
		ir.VisitStmt(f.Self, s)
		if !f.found {
			return s, nil
		}
		out, err := lower.Unroll(s, f.name)
		if err != nil {
			return nil, err
		}
		s = out
	}
}
