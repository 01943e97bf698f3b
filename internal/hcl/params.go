package hcl

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/expgrid/internal/paramspace"
)

// ParamEntries turns an ensemble's `params` object expression into ordered
// parameter entries. hcl.ExprMap is used instead of evaluating the whole
// object because cty objects iterate their attributes lexically, which would
// destroy the declaration order the expansion depends on.
func ParamEntries(expr hcl.Expression) ([]paramspace.Entry, error) {
	if !exprIsSet(expr) {
		return nil, nil
	}
	pairs, diags := hcl.ExprMap(expr)
	if diags.HasErrors() {
		return nil, fmt.Errorf("params must be an object of parameter values: %w", diags)
	}

	entries := make([]paramspace.Entry, 0, len(pairs))
	for _, pair := range pairs {
		keyVal, diags := pair.Key.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("cannot resolve parameter name: %w", diags)
		}
		if keyVal.Type() != cty.String {
			return nil, fmt.Errorf("parameter names must be strings, got %s", keyVal.Type().FriendlyName())
		}
		val, diags := pair.Value.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("cannot evaluate parameter %q: %w", keyVal.AsString(), diags)
		}
		entries = append(entries, paramspace.Entry{Name: keyVal.AsString(), Value: val})
	}
	return entries, nil
}
