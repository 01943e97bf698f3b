// Package strategy implements the permutation strategies that expand a
// parameter space into concrete per-member assignments.
//
// Built-ins and user-supplied strategies share one contract: a Func takes the
// space's parallel name/value-list arrays and returns an ordered slice of
// assignments. Expand is the single boundary through which every strategy is
// invoked, and it validates the result uniformly, so a plugged-in strategy
// that misbehaves is reported as such rather than surfacing as a confusing
// downstream failure.
package strategy

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/vk/expgrid/internal/errs"
	"github.com/vk/expgrid/internal/paramspace"
	"github.com/zclconf/go-cty/cty"
)

// Assignment binds each parameter name to one concrete scalar value.
type Assignment map[string]cty.Value

// Options carries strategy-specific knobs.
type Options struct {
	// N is the number of assignments the random strategy draws. Required by
	// "random", ignored by the other built-ins.
	N int

	// Rand overrides the random source, mainly for tests. Nil means the
	// shared global source.
	Rand *rand.Rand
}

// Func is the strategy contract: (names, value lists, options) to an ordered
// sequence of assignments.
type Func func(names []string, values [][]cty.Value, opts Options) ([]Assignment, error)

// Built-in strategy names.
const (
	NameAllPerm = "all_perm"
	NameStep    = "step"
	NameRandom  = "random"
)

var builtins = map[string]Func{
	NameAllPerm: AllPermutations,
	NameStep:    StepValues,
	NameRandom:  RandomPermutations,
}

// Names returns the built-in strategy names, sorted.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup resolves a built-in strategy by name.
func Lookup(name string) (Func, error) {
	fn, ok := builtins[name]
	if !ok {
		return nil, &errs.UnsupportedError{
			Kind:  "permutation strategy",
			Given: name,
			Valid: Names(),
		}
	}
	return fn, nil
}

// AllPermutations is the cartesian product of all value lists. The LAST
// parameter varies fastest, mirroring nested loops over the lists in
// declaration order; member indices (and so member names) depend on this
// order, which is part of the contract.
func AllPermutations(names []string, values [][]cty.Value, _ Options) ([]Assignment, error) {
	if len(names) == 0 {
		return []Assignment{}, nil
	}
	total := 1
	for _, list := range values {
		total *= len(list)
	}
	out := make([]Assignment, 0, total)
	idx := make([]int, len(values))
	for {
		asg := make(Assignment, len(names))
		for i, name := range names {
			asg[name] = values[i][idx[i]]
		}
		out = append(out, asg)

		pos := len(idx) - 1
		for pos >= 0 {
			idx[pos]++
			if idx[pos] < len(values[pos]) {
				break
			}
			idx[pos] = 0
			pos--
		}
		if pos < 0 {
			return out, nil
		}
	}
}

// StepValues zips the value lists positionally: assignment i takes the i-th
// element of every list. Lists of unequal length are silently truncated to
// the shortest.
func StepValues(names []string, values [][]cty.Value, _ Options) ([]Assignment, error) {
	if len(names) == 0 {
		return []Assignment{}, nil
	}
	steps := len(values[0])
	for _, list := range values[1:] {
		if len(list) < steps {
			steps = len(list)
		}
	}
	out := make([]Assignment, 0, steps)
	for i := 0; i < steps; i++ {
		asg := make(Assignment, len(names))
		for j, name := range names {
			asg[name] = values[j][i]
		}
		out = append(out, asg)
	}
	return out, nil
}

// RandomPermutations draws opts.N assignments, picking one value from each
// list independently, with replacement. Omitting the count is a
// configuration error.
func RandomPermutations(names []string, values [][]cty.Value, opts Options) ([]Assignment, error) {
	if opts.N <= 0 {
		return nil, errs.Configf("random strategy requires a positive draw count, got %d", opts.N)
	}
	intn := rand.IntN
	if opts.Rand != nil {
		intn = opts.Rand.IntN
	}
	out := make([]Assignment, 0, opts.N)
	for i := 0; i < opts.N; i++ {
		asg := make(Assignment, len(names))
		for j, name := range names {
			list := values[j]
			asg[name] = list[intn(len(list))]
		}
		out = append(out, asg)
	}
	return out, nil
}

// Expand invokes fn over the space and validates its output against the
// strategy contract. The name is only used for error attribution; pass the
// built-in name or a label for a custom Func.
func Expand(name string, fn Func, space *paramspace.Space, opts Options) ([]Assignment, error) {
	out, err := fn(space.Names(), space.Values(), opts)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, &errs.StrategyError{Strategy: name, Reason: "returned no assignment sequence"}
	}
	names := space.Names()
	for i, asg := range out {
		if asg == nil {
			return nil, &errs.StrategyError{
				Strategy: name,
				Reason:   fmt.Sprintf("assignment %d is not a mapping", i),
			}
		}
		// Each assignment must bind exactly the space's parameter names.
		if len(asg) != len(names) {
			return nil, &errs.StrategyError{
				Strategy: name,
				Reason: fmt.Sprintf("assignment %d binds %d parameters, the space has %d",
					i, len(asg), len(names)),
			}
		}
		for _, param := range names {
			val, ok := asg[param]
			if !ok {
				return nil, &errs.StrategyError{
					Strategy: name,
					Reason:   fmt.Sprintf("assignment %d is missing parameter %q", i, param),
				}
			}
			if val.IsNull() || !val.IsKnown() ||
				(val.Type() != cty.String && val.Type() != cty.Number) {
				return nil, &errs.StrategyError{
					Strategy: name,
					Reason:   fmt.Sprintf("assignment %d maps %q to a non-scalar value", i, param),
				}
			}
		}
	}
	return out, nil
}
