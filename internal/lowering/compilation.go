// Package lowering drives the canonical pass-ordering pipeline: the
// nineteen numbered steps that turn a scheduled root Function into a fully
// lowered Stmt tree, wiring together internal/scheduler, internal/bounds,
// internal/simplify and internal/lower in sequence.
package lowering

import (
	"fmt"
	"sync/atomic"

	"stencil/internal/bounds"
	"stencil/internal/codelog"
	"stencil/internal/options"
)

var uniqueCounter int64

// Compilation is the per-compilation context: the entry point to lowering
// calls Clear to reset per-compilation state before use. Every pass in this
// package reads and writes through one Compilation value, so two
// compilations (e.g. two tests in the same process) never share a codelog
// history or a bounds-constraint set. The unique-name counter stays a
// package-level atomic rather than living on Compilation, since unique
// names must never collide even across concurrently running compilations.
type Compilation struct {
	Options     *options.Options
	Logger      *codelog.Logger
	Constraints bounds.Constraints
}

// NewCompilation builds a Compilation for a pipeline named program. opts
// may be nil, in which case options are loaded from the process
// environment the way options.Global is.
func NewCompilation(program string, opts *options.Options) *Compilation {
	if opts == nil {
		opts = options.Load()
	}
	return &Compilation{
		Options:     opts,
		Logger:      codelog.New(program, "", opts),
		Constraints: bounds.Constraints{},
	}
}

// Clear resets c's per-compilation state: the codelog's "last statement
// logged" memory and the bounds constraints accumulated by a previous
// Lower call. Every call to Lower starts by calling this itself, so
// callers reusing a Compilation across multiple pipelines never see stale
// state leak between them.
func (c *Compilation) Clear() {
	c.Logger.Reset()
	c.Constraints = bounds.Constraints{}
}

// uniqueName returns base suffixed with a fresh process-wide-unique
// ordinal, the Go counterpart of the original's unique_name counter used
// by uniquify_variable_names.
func uniqueName(base string) string {
	n := atomic.AddInt64(&uniqueCounter, 1)
	return fmt.Sprintf("%s$%d", base, n)
}

// ResetUniqueNames resets the process-wide unique-name counter to zero.
// Exposed so tests asserting on exact generated names can start from a
// known state; ordinary pipeline runs never need to call this.
func ResetUniqueNames() {
	atomic.StoreInt64(&uniqueCounter, 0)
}
