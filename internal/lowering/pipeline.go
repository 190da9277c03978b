package lowering

import (
	"stencil/internal/bounds"
	"stencil/internal/ir"
	"stencil/internal/lower"
	"stencil/internal/options"
	"stencil/internal/schedule"
	"stencil/internal/scheduler"
	"stencil/internal/simplify"
)

// Lower runs the canonical nineteen-step lowering pipeline against root,
// realizing root together with every function it
// transitively calls. c is reset via Clear at the start of every call, so
// a single Compilation value may drive any number of independent Lower
// calls. Returns the environment populated along the way (including the
// Valid/Computable domains step 7 computes) alongside the lowered Stmt.
func Lower(c *Compilation, root *schedule.Function) (ir.Stmt, schedule.Environment, error) {
	c.Clear()

	env := schedule.Environment{}
	if err := scheduler.PopulateEnvironment(root, env); err != nil {
		return nil, nil, err
	}
	scheduler.PropagateScheduleAll(root, map[string]bool{})
	order, _, err := scheduler.RealizationOrder(root.Name, env)
	if err != nil {
		return nil, nil, err
	}

	// Steps 1-2: schedule propagation, initial nest, inlining/injection.
	c.Logger.Section("schedule")
	s := scheduler.CreateInitialLoopNest(root)
	c.Logger.Log(s, "initial_nest")

	s, err = scheduler.ScheduleFunctions(s, order, env)
	if err != nil {
		return nil, nil, err
	}
	c.Logger.Log(s, "schedule_functions")

	// Step 3: simplify.
	s = simplify.SimplifyStmt(s)
	c.Logger.Log(s, "simplify")

	// Step 4: optional early clamp lowering.
	if c.Options.ClampLowerAt == options.Early {
		s = lower.LowerClampStmt(s)
		c.Logger.Log(s, "lower_clamp_early")
	}

	// Step 5: tracing injection. No tracing facility exists in this IR (a
	// profiling/tracing back end is out of scope), so this position is an
	// intentional no-op kept only so the ordered pipeline names every
	// canonical step.
	//
	// Step 6: image-argument checks. This IR has no ImageParam/Buffer
	// parameter-shape concept distinct from an ordinary buffer Call/Load
	// argument, so there is nothing further to assert here beyond what the
	// Simplifier and the Allocate/Realize bounds machinery already check.

	// Step 7: bounds inference.
	inferDomains(order, env)
	c.Logger.Log(s, "bounds_inference")

	// Step 8: optional mid clamp lowering. Options.ClampLowerAt is
	// two-valued (Early/Late), matching this IR's single configurable
	// switch; the "mid" slot the original exposes as a third call site
	// collapses onto the "late" slot below, so nothing runs here.

	// Step 9: sliding window.
	s = applySlidingWindow(s, env)
	c.Logger.Log(s, "sliding_window")

	// Step 10: uniquify variable names.
	s = Uniquify(s)
	c.Logger.Log(s, "uniquify")

	// Step 11: simplify, loop split, bounds_simplify.
	s = simplify.SimplifyStmt(s)
	s = applyAutoLoopSplit(s, env, c.Options, c.Constraints)
	s = bounds.BoundsSimplifyStmt(s, c.Constraints)
	c.Logger.Log(s, "simplify_loopsplit_bounds_pre_folding")

	// Step 12: storage folding.
	s = lower.FoldStorage(s, c.Constraints)
	c.Logger.Log(s, "storage_folding")

	// Step 13: debug-to-file injection. The codelog.Logger calls bracketing
	// every step here already serve this role.

	// Step 14: storage flattening.
	s = lower.FlattenStorage(s)
	c.Logger.Log(s, "storage_flattening")

	// Step 15: simplify, loop split, bounds_simplify (again, now over the
	// flattened Store/Load form).
	s = simplify.SimplifyStmt(s)
	s = applyAutoLoopSplit(s, env, c.Options, c.Constraints)
	s = bounds.BoundsSimplifyStmt(s, c.Constraints)
	c.Logger.Log(s, "simplify_loopsplit_bounds_post_flattening")

	// Step 16: optional late clamp lowering (the default position).
	if c.Options.ClampLowerAt == options.Late {
		s = lower.LowerClampStmt(s)
		c.Logger.Log(s, "lower_clamp_late")
	}

	// Step 17: vectorize, unroll, simplify. Vectorized/Unrolled tagging
	// already happened when the initial nest was built, straight from each
	// Schedule.Dims[i].ForType (scheduler.buildProvideLoopNest); this step
	// only needs to expand the loops already tagged Unrolled into their
	// explicit copies; Vectorized tags simply pass through to the back end
	// untouched, since actually emitting SIMD instructions belongs to the
	// back end and is out of scope here.
	s, err = unrollAll(s)
	if err != nil {
		return nil, nil, err
	}
	s = simplify.SimplifyStmt(s)
	c.Logger.Log(s, "vectorize_unroll_simplify")

	// Step 18: interleaving detection, early frees. Interleaving detection
	// is a color-channel-specific storage-layout optimization with no
	// counterpart in this IR's buffer model (no channel/stride metadata
	// exists to detect), so it is an intentional no-op; early frees run for
	// real.
	s = lower.EarlyFree(s)
	c.Logger.Log(s, "early_free")

	// Step 19: trivial-for removal, final simplify.
	s = lower.RemoveTrivialFors(s)
	s = simplify.SimplifyStmt(s)
	c.Logger.Log(s, "final_simplify")

	return s, env, nil
}
