package grammar

import (
	"fmt"
	"strconv"

	"stencil/internal/ir"
	"stencil/internal/schedule"
	"stencil/internal/types"
)

// applyDirective interprets one parsed schedule directive against fn's
// Schedule. Directive syntax is uniform at the grammar level; this
// function is the single place name/arity/argument-kind checking happens.
func applyDirective(fn *schedule.Function, dir *ScheduleDirective) error {
	switch dir.Name {
	case "compute_root":
		if err := requireArgs(dir, 0); err != nil {
			return err
		}
		fn.Schedule.ComputeLevel = schedule.RootLevel()
		return nil

	case "compute_at":
		if err := requireArgs(dir, 2); err != nil {
			return err
		}
		f, v, err := funcVarArgs(dir)
		if err != nil {
			return err
		}
		fn.Schedule.ComputeLevel = schedule.LoopLevel{Func: f, Var: v}
		return nil

	case "store_root":
		if err := requireArgs(dir, 0); err != nil {
			return err
		}
		fn.Schedule.StoreLevel = schedule.RootLevel()
		return nil

	case "store_at":
		if err := requireArgs(dir, 2); err != nil {
			return err
		}
		f, v, err := funcVarArgs(dir)
		if err != nil {
			return err
		}
		fn.Schedule.StoreLevel = schedule.LoopLevel{Func: f, Var: v}
		return nil

	case "parallel":
		return setForType(fn, dir, ir.Parallel)

	case "vectorize":
		return setForType(fn, dir, ir.Vectorized)

	case "unroll":
		return setForType(fn, dir, ir.Unrolled)

	case "bound":
		if err := requireArgs(dir, 3); err != nil {
			return err
		}
		v, err := identArg(dir, 0)
		if err != nil {
			return err
		}
		min, err := intArg(dir, 1)
		if err != nil {
			return err
		}
		extent, err := intArg(dir, 2)
		if err != nil {
			return err
		}
		fn.Schedule.Bounds = append(fn.Schedule.Bounds, schedule.Bound{
			Var:    v,
			Min:    &ir.IntImm{T: types.Int32, Value: min},
			Extent: &ir.IntImm{T: types.Int32, Value: extent},
		})
		return nil

	case "split":
		if err := requireArgs(dir, 4); err != nil {
			return err
		}
		old, err := identArg(dir, 0)
		if err != nil {
			return err
		}
		outer, err := identArg(dir, 1)
		if err != nil {
			return err
		}
		inner, err := identArg(dir, 2)
		if err != nil {
			return err
		}
		factor, err := intArg(dir, 3)
		if err != nil {
			return err
		}
		return applySplit(fn, old, outer, inner, factor)

	case "reorder":
		if len(dir.Args) < 2 {
			return fmt.Errorf("reorder() needs at least 2 variables")
		}
		names := make([]string, len(dir.Args))
		for i := range dir.Args {
			v, err := identArg(dir, i)
			if err != nil {
				return err
			}
			names[i] = v
		}
		return applyReorder(fn, names)

	default:
		return fmt.Errorf("unknown schedule directive %q", dir.Name)
	}
}

func requireArgs(dir *ScheduleDirective, n int) error {
	if len(dir.Args) != n {
		return fmt.Errorf("%s() takes %d argument(s), got %d", dir.Name, n, len(dir.Args))
	}
	return nil
}

func identArg(dir *ScheduleDirective, i int) (string, error) {
	a := dir.Args[i]
	if a.Ident == nil {
		return "", fmt.Errorf("%s(): argument %d must be an identifier", dir.Name, i+1)
	}
	return *a.Ident, nil
}

func intArg(dir *ScheduleDirective, i int) (int64, error) {
	a := dir.Args[i]
	if a.Number == nil {
		return 0, fmt.Errorf("%s(): argument %d must be an integer", dir.Name, i+1)
	}
	return strconv.ParseInt(*a.Number, 0, 64)
}

func funcVarArgs(dir *ScheduleDirective) (string, string, error) {
	f, err := identArg(dir, 0)
	if err != nil {
		return "", "", err
	}
	v, err := identArg(dir, 1)
	if err != nil {
		return "", "", err
	}
	return f, v, nil
}

func findDim(fn *schedule.Function, name string) int {
	for i, d := range fn.Schedule.Dims {
		if d.Var == name {
			return i
		}
	}
	return -1
}

func setForType(fn *schedule.Function, dir *ScheduleDirective, ft ir.ForType) error {
	if err := requireArgs(dir, 1); err != nil {
		return err
	}
	v, err := identArg(dir, 0)
	if err != nil {
		return err
	}
	i := findDim(fn, v)
	if i < 0 {
		return fmt.Errorf("%s(): %q is not a dimension of this function", dir.Name, v)
	}
	fn.Schedule.Dims[i].ForType = ft
	return nil
}

// applySplit replaces dim old with a (outer, inner) pair, innermost first,
// matching the split-before-reorder construction the nest builder expects.
func applySplit(fn *schedule.Function, old, outer, inner string, factor int64) error {
	i := findDim(fn, old)
	if i < 0 {
		return fmt.Errorf("split(): %q is not a dimension of this function", old)
	}
	original := fn.Schedule.Dims[i]
	replacement := []schedule.Dim{
		{Var: inner, ForType: original.ForType},
		{Var: outer, ForType: original.ForType},
	}
	dims := make([]schedule.Dim, 0, len(fn.Schedule.Dims)+1)
	dims = append(dims, fn.Schedule.Dims[:i]...)
	dims = append(dims, replacement...)
	dims = append(dims, fn.Schedule.Dims[i+1:]...)
	fn.Schedule.Dims = dims

	fn.Schedule.Splits = append(fn.Schedule.Splits, schedule.Split{
		Old: old, Outer: outer, Inner: inner, Factor: factor,
	})
	return nil
}

// applyReorder moves the named dims to the front of the dim list, in the
// order given, innermost (first listed) to outermost — matching how
// Dims itself is ordered (index 0 is innermost).
func applyReorder(fn *schedule.Function, names []string) error {
	seen := make(map[string]schedule.Dim, len(names))
	for _, n := range names {
		i := findDim(fn, n)
		if i < 0 {
			return fmt.Errorf("reorder(): %q is not a dimension of this function", n)
		}
		seen[n] = fn.Schedule.Dims[i]
	}
	reordered := make([]schedule.Dim, 0, len(fn.Schedule.Dims))
	for _, n := range names {
		reordered = append(reordered, seen[n])
	}
	for _, d := range fn.Schedule.Dims {
		if _, ok := seen[d.Var]; !ok {
			reordered = append(reordered, d)
		}
	}
	fn.Schedule.Dims = reordered
	return nil
}
