// Package options holds the global, environment-driven compiler options: a
// level below the schedule, intended for developers tuning the compiler
// itself rather than users tuning a pipeline. A single global Options
// object is populated from the environment once, at process startup.
package options

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ClampLowerPoint selects when clamp lowering runs relative to the rest of
// the lowering pipeline.
type ClampLowerPoint int

const (
	// Early lowers Clamp nodes to select/min/max right after the first
	// simplify pass (pipeline step 4), before bounds inference.
	Early ClampLowerPoint = iota
	// Late keeps Clamp as an IR node through simplification and bounds
	// inference, lowering only in the dedicated lowering pass. This is the
	// default: later lowering gives the simplifier and bounds inference a
	// chance to reason about the clamp's structure directly.
	Late
)

func (c ClampLowerPoint) String() string {
	if c == Early {
		return "early"
	}
	return "late"
}

// Options is a single process-wide struct, read at startup from
// environment variables, with defaults chosen so that the compiler
// behaves the same whether or not a given variable is set.
type Options struct {
	// BorderValueInnerOutside controls the nesting order of the select()
	// chain the border-handling builder constructs: true nests the innermost
	// variable on the outside (select(x, ... select(y, ...))).
	BorderValueInnerOutside bool

	// ClampLowerAt controls when Clamp nodes are lowered to border-handling
	// arithmetic; see ClampLowerPoint.
	ClampLowerAt ClampLowerPoint

	// SimplifyNestedClamp enables the simplifier rules that collapse nested
	// clamp_* expressions into a single clamp.
	SimplifyNestedClamp bool

	// LoopSplit enables loop splitting at all; when false, every schedule's
	// split directives are ignored.
	LoopSplit bool
	// LoopSplitAll makes loop splitting the default for every loop unless a
	// schedule says otherwise.
	LoopSplitAll bool
	// LoopSplitParallel allows parallel loops to be split; off by default
	// because the before/after fragment overhead tends to outweigh the win.
	LoopSplitParallel bool
	// LoopSplitLetBind binds split loop index expressions to let variables
	// instead of inlining them at every use.
	LoopSplitLetBind bool

	// LiftLet lifts let bindings out of loops they don't depend on.
	LiftLet bool

	// IntervalAnalysisSimplify runs the simplifier over interval endpoints
	// produced during bounds inference.
	IntervalAnalysisSimplify bool

	// MutatorDepthLimit is a recursion-depth bound for mutators. It
	// defaults to 1000, but no Mutator reads it, so recursion depth is not
	// limited.
	MutatorDepthLimit int
	// MutatorCache enables the cached mutator's memoization table.
	MutatorCache bool
	// MutatorCacheCheck recomputes every cached entry and asserts it
	// matches, to catch a memoization bug rather than silently return a
	// stale result.
	MutatorCacheCheck bool
	// MutatorCacheCheckLimit is a bound on cache-check recomputations. The
	// cached mutator does not read it: with MutatorCacheCheck on, every
	// cache hit is recomputed and checked.
	MutatorCacheCheckLimit int

	// SimplifyShortcuts enables cheap syntactic shortcuts (e.g. x == x) in
	// the simplifier ahead of the full rewrite-rule table, since they tend
	// to fire often and are nearly free to check.
	SimplifyShortcuts bool
	// SimplifyLiftConstantMinMax controls whether min(x, c)/max(x, c)-style
	// expressions get their constant operand hoisted during simplification.
	SimplifyLiftConstantMinMax bool

	// DebugLevel is the global verbosity level; a log call at verbosity v
	// fires if v <= DebugLevel or v <= the level for its section.
	DebugLevel int
	// SectionDebugLevel overrides DebugLevel per section name (the
	// STENCIL_DEBUG_<SECTION> environment variable family).
	SectionDebugLevel map[string]int
	// LogFile, if non-empty, is the path log output is additionally written
	// to regardless of DebugLevel.
	LogFile string
}

const noLoggingLevel = -1

// Load populates an Options from the process environment, resolving each
// field's default before any override is applied.
func Load() *Options {
	o := &Options{
		BorderValueInnerOutside:    true,
		ClampLowerAt:               Late,
		SimplifyNestedClamp:        true,
		LoopSplit:                  true,
		LoopSplitAll:               false,
		LoopSplitParallel:          envBool("STENCIL_LOOP_SPLIT_PARALLEL", false),
		LoopSplitLetBind:           true,
		LiftLet:                    true,
		IntervalAnalysisSimplify:   true,
		MutatorDepthLimit:          1000,
		MutatorCache:               envBool("STENCIL_MUTATOR_CACHE", true),
		MutatorCacheCheck:          envBool("STENCIL_MUTATOR_CACHE_CHECK", false),
		MutatorCacheCheckLimit:     100000,
		SimplifyShortcuts:          true,
		SimplifyLiftConstantMinMax: false,
		DebugLevel:                 noLoggingLevel,
		SectionDebugLevel:          map[string]int{},
		LogFile:                    os.Getenv("STENCIL_LOG_FILE"),
	}

	switch os.Getenv("STENCIL_LOOP_SPLIT") {
	case "enable":
		o.LoopSplit = true
	case "default":
		o.LoopSplit = true
		o.LoopSplitAll = true
	case "disable":
		o.LoopSplit = false
		o.LoopSplitAll = false
	}

	if v := os.Getenv("STENCIL_CLAMP_LOWER_AT"); v != "" {
		switch strings.ToLower(v) {
		case "early":
			o.ClampLowerAt = Early
		case "late":
			o.ClampLowerAt = Late
		}
	}

	if lvl, err := strconv.Atoi(os.Getenv("STENCIL_DEBUG")); err == nil {
		o.DebugLevel = lvl
	}

	const prefix = "STENCIL_DEBUG_"
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, prefix) || name == "STENCIL_DEBUG" {
			continue
		}
		section := strings.ToLower(strings.TrimPrefix(name, prefix))
		if lvl, err := strconv.Atoi(value); err == nil {
			o.SectionDebugLevel[section] = lvl
		}
	}

	return o
}

func envBool(name string, def bool) bool {
	switch os.Getenv(name) {
	case "1":
		return true
	case "0":
		return false
	default:
		return def
	}
}

// LevelFor returns the effective debug verbosity threshold for section,
// which is the higher of the global DebugLevel and any STENCIL_DEBUG_<section>
// override.
func (o *Options) LevelFor(section string) int {
	lvl := o.DebugLevel
	if s, ok := o.SectionDebugLevel[strings.ToLower(section)]; ok && s > lvl {
		lvl = s
	}
	return lvl
}

// ShouldLog reports whether a log call at the given verbosity and section
// should fire.
func (o *Options) ShouldLog(section string, verbosity int) bool {
	if verbosity <= o.DebugLevel {
		return true
	}
	if s, ok := o.SectionDebugLevel[strings.ToLower(section)]; ok && verbosity <= s {
		return true
	}
	return o.LogFile != ""
}

// String renders the options in a field-grouped form suitable for a
// startup log line.
func (o *Options) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "border_value_inner_outside=%v    clamp_lower_at=%v\n", o.BorderValueInnerOutside, o.ClampLowerAt)
	fmt.Fprintf(&b, "loop_split=%v    loop_split_all=%v    loop_split_letbind=%v\n", o.LoopSplit, o.LoopSplitAll, o.LoopSplitLetBind)
	fmt.Fprintf(&b, "lift_let=%v    interval_analysis_simplify=%v\n", o.LiftLet, o.IntervalAnalysisSimplify)
	fmt.Fprintf(&b, "mutator_cache=%v    mutator_cache_check=%v\n", o.MutatorCache, o.MutatorCacheCheck)
	fmt.Fprintf(&b, "simplify: shortcuts=%v    lift_constant_min_max=%v\n", o.SimplifyShortcuts, o.SimplifyLiftConstantMinMax)
	return b.String()
}

// Global is the process-wide Options instance, populated at package init
// so every compilation pass can read from a single shared configuration.
var Global = Load()
