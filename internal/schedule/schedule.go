// Package schedule holds the Function/Schedule types: the
// per-stage metadata describing how the scheduler should realize a
// pipeline stage, carrying loop order, split, storage and bounds metadata
// for each stage.
package schedule

import (
	"stencil/internal/bounds"
	"stencil/internal/ir"
	"stencil/internal/types"
)

// ForType mirrors ir.ForType so a Schedule's dims can be built before the
// loop nest exists; the scheduler translates it 1:1 into an ir.For.ForType
// when it materializes the nest.
type ForType = ir.ForType

// LoopLevel names a place in some caller's loop nest: either a named
// variable of a named function, the outermost root level, or "not
// materialized at all" (inline).
type LoopLevel struct {
	Func   string // empty for Root/Inline
	Var    string // empty for Root/Inline
	Root   bool
	Inline bool
}

// RootLevel and InlineLevel are the two sentinel LoopLevels every Schedule
// may reference in addition to an explicit (func, var) pair.
func RootLevel() LoopLevel   { return LoopLevel{Root: true} }
func InlineLevel() LoopLevel { return LoopLevel{Inline: true} }

// Depth assigns an arbitrary total order to level kinds so a Schedule's
// invariant (compute_level not shallower than store_level) can be checked
// without needing to have built the loop nest yet: Inline is deepest,
// Root is shallowest, and two named levels are only comparable once the
// nest exists (the scheduler checks those dynamically during injection).
func (l LoopLevel) Depth() int {
	switch {
	case l.Inline:
		return 2
	case l.Root:
		return 0
	default:
		return 1
	}
}

// Dim is one entry of a Schedule's loop order, innermost to outermost.
type Dim struct {
	Var       string
	ForType   ForType
	SplitInfo *ir.LoopSplitInfo
}

// Split records one factor/rename applied to a dimension by a split
// schedule directive.
type Split struct {
	Old      string
	Outer    string
	Inner    string
	Factor   int64
	IsRename bool
}

// Bound is one entry of Schedule.bounds: the caller's promise that it will
// only ever evaluate Var within [Min, Min+Extent).
type Bound struct {
	Var    string
	Min    ir.Expr
	Extent ir.Expr
}

// LoopSplitSettings is the auto-split/split-borders block of a schedule,
// with the "_all" variants that propagate down to callees during schedule
// propagation.
type LoopSplitSettings struct {
	AutoSplit       bool
	AutoSplitAll    bool
	AutoSplitSet    bool
	SplitBorders    bool
	SplitBordersAll bool
	SplitBordersSet bool
}

// Schedule is the per-stage metadata attached to a Function.
type Schedule struct {
	Dims              []Dim
	Splits            []Split
	Bounds            []Bound
	ComputeLevel      LoopLevel
	StoreLevel        LoopLevel
	StorageDimOrder   []int
	LoopSplitSettings LoopSplitSettings

	// ReductionDims/ReductionSplits mirror Dims/Splits for a reduction's
	// update schedule, used when the owning Function is a reduction: the
	// update loop nest is built by the same construction as the pure
	// definition, over the reduction's own schedule and arguments.
	ReductionDims   []Dim
	ReductionSplits []Split
}

// Valid checks that compute_level is not
// shallower than store_level. An inline compute_level needs an inline
// store_level; a store_level left at its inline default is not compared
// against a non-inline compute_level.
func (s *Schedule) Valid() bool {
	if s.ComputeLevel.Inline {
		return s.StoreLevel.Inline
	}
	if s.StoreLevel.Inline {
		return true
	}
	return s.ComputeLevel.Depth() >= s.StoreLevel.Depth()
}

// Function is a user-defined pipeline stage: a pure value
// expression over its Args, an optional reduction definition, a Schedule,
// and its Valid/Computable Domains.
type Function struct {
	Name  string
	Args  []string
	Type  types.Type
	Value ir.Expr

	ReductionValue  ir.Expr
	ReductionArgs   []ir.Expr
	ReductionDomain []ir.Range

	Schedule Schedule

	Valid      bounds.Domain
	Computable bounds.Domain

	DebugFile string
}

// IsReduction reports whether f carries a reduction update in addition to
// its pure definition.
func (f *Function) IsReduction() bool { return f.ReductionValue != nil }

// CheckDomainInvariant checks that Valid is a subset of Computable.
func (f *Function) CheckDomainInvariant() bool {
	if f.Valid == nil || f.Computable == nil {
		return true
	}
	return f.Valid.Subset(f.Computable)
}

// Environment is the name → Function table the scheduler populates while
// walking the call graph.
type Environment map[string]*Function
