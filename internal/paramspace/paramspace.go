// Package paramspace validates and normalizes the raw parameter mapping of an
// ensemble into the parallel name/value-list shape the permutation strategies
// consume.
//
// Why an ordered entry list instead of a map?
//
// The index of each expanded assignment feeds directly into member naming
// (`{ensemble}_{i}`), so the expansion order has to be reproducible. A Go map
// would shuffle it on every run. Entries keep the declaration order of the
// source spec all the way into the strategy.
package paramspace

import (
	"github.com/vk/expgrid/internal/errs"
	"github.com/zclconf/go-cty/cty"
)

// Entry is one raw parameter as declared by the user: a name bound to either
// a scalar or a list of candidate values.
type Entry struct {
	Name  string
	Value cty.Value
}

// Space is a validated parameter space: parallel ordered name and value-list
// sequences. Every value list is non-empty and contains only scalars.
type Space struct {
	names  []string
	values [][]cty.Value
}

// Normalize validates raw entries into a Space. A scalar string or number is
// wrapped into a single-element list; a list or tuple of scalars is taken
// as-is; any other value shape fails with a TypeError naming the key.
func Normalize(entries []Entry) (*Space, error) {
	s := &Space{}
	for _, entry := range entries {
		vals, err := normalizeValue(entry.Name, entry.Value)
		if err != nil {
			return nil, err
		}
		s.names = append(s.names, entry.Name)
		s.values = append(s.values, vals)
	}
	return s, nil
}

func normalizeValue(name string, val cty.Value) ([]cty.Value, error) {
	if val.IsNull() || !val.IsKnown() {
		return nil, errs.Typef("parameter %q has no usable value", name)
	}
	if isScalar(val) {
		return []cty.Value{val}, nil
	}
	ty := val.Type()
	if ty.IsListType() || ty.IsTupleType() || ty.IsSetType() {
		if val.LengthInt() == 0 {
			return nil, errs.Typef("parameter %q maps to an empty value list", name)
		}
		var vals []cty.Value
		for it := val.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			if !isScalar(elem) {
				return nil, errs.Typef(
					"parameter %q contains a %s element, values must be strings or numbers",
					name, elem.Type().FriendlyName())
			}
			vals = append(vals, elem)
		}
		return vals, nil
	}
	return nil, errs.Typef(
		"parameter %q is a %s, must be a string, a number, or a list of those",
		name, ty.FriendlyName())
}

func isScalar(val cty.Value) bool {
	if val.IsNull() || !val.IsKnown() {
		return false
	}
	ty := val.Type()
	return ty == cty.String || ty == cty.Number
}

// Names returns the parameter names in declaration order.
func (s *Space) Names() []string { return s.names }

// Values returns the per-parameter candidate lists, parallel to Names.
func (s *Space) Values() [][]cty.Value { return s.values }

// Empty reports whether the space holds no parameters at all.
func (s *Space) Empty() bool { return len(s.names) == 0 }
