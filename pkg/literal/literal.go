// Package literal decodes the tuple, list and dict columns found in the
// reference data files, e.g. `(44700.0, 1.2)` or `{0: [(2, 0.01)]}`.
//
// The columns are rewritten into HCL expression syntax (parentheses become
// tuple brackets, single quotes become double quotes, capitalised booleans
// are lowered) and evaluated with hclsyntax into cty values.
package literal

import (
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

var normalizer = strings.NewReplacer(
	"(", "[",
	")", "]",
	"'", `"`,
	"True", "true",
	"False", "false",
	"None", "null",
)

// Parse evaluates a literal column into a cty value.
func Parse(src string) (cty.Value, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return cty.NilVal, fmt.Errorf("empty literal")
	}

	expr, diags := hclsyntax.ParseExpression([]byte(normalizer.Replace(src)), "literal", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return cty.NilVal, fmt.Errorf("invalid literal %q: %s", abbreviate(src), diags.Error())
	}

	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return cty.NilVal, fmt.Errorf("cannot evaluate literal %q: %s", abbreviate(src), diags.Error())
	}
	return val, nil
}

// Elements returns the members of a tuple or list value.
func Elements(val cty.Value) ([]cty.Value, error) {
	if val.IsNull() || !val.IsKnown() {
		return nil, fmt.Errorf("expected a sequence, got null")
	}
	ty := val.Type()
	if !ty.IsTupleType() && !ty.IsListType() && !ty.IsSetType() {
		return nil, fmt.Errorf("expected a sequence, got %s", ty.FriendlyName())
	}
	var out []cty.Value
	for it := val.ElementIterator(); it.Next(); {
		_, v := it.Element()
		out = append(out, v)
	}
	return out, nil
}

// Float converts a number value.
func Float(val cty.Value) (float64, error) {
	if val.IsNull() || !val.IsKnown() || val.Type() != cty.Number {
		return 0, fmt.Errorf("expected a number, got %s", describe(val))
	}
	f, _ := val.AsBigFloat().Float64()
	return f, nil
}

// Int converts a number value that must hold an integer.
func Int(val cty.Value) (int, error) {
	if val.IsNull() || !val.IsKnown() || val.Type() != cty.Number {
		return 0, fmt.Errorf("expected an integer, got %s", describe(val))
	}
	i, acc := val.AsBigFloat().Int64()
	if acc != big.Exact {
		return 0, fmt.Errorf("expected an integer, got %s", val.AsBigFloat().String())
	}
	return int(i), nil
}

// String converts a string value. Numbers are accepted and rendered in
// their shortest decimal form, so integer hashes and quoted hashes decode
// to the same key.
func String(val cty.Value) (string, error) {
	if val.IsNull() || !val.IsKnown() {
		return "", fmt.Errorf("expected a string, got null")
	}
	switch val.Type() {
	case cty.String:
		return val.AsString(), nil
	case cty.Number:
		return val.AsBigFloat().Text('f', -1), nil
	}
	return "", fmt.Errorf("expected a string, got %s", describe(val))
}

// Bool converts a bool value. Numbers are accepted, non-zero being true.
func Bool(val cty.Value) (bool, error) {
	if val.IsNull() || !val.IsKnown() {
		return false, fmt.Errorf("expected a bool, got null")
	}
	switch val.Type() {
	case cty.Bool:
		return val.True(), nil
	case cty.Number:
		return val.AsBigFloat().Sign() != 0, nil
	}
	return false, fmt.Errorf("expected a bool, got %s", describe(val))
}

// Floats decodes a sequence of numbers.
func Floats(val cty.Value) ([]float64, error) {
	elems, err := Elements(val)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(elems))
	for i, e := range elems {
		if out[i], err = Float(e); err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
	}
	return out, nil
}

// Pair decodes a two-number tuple.
func Pair(val cty.Value) (float64, float64, error) {
	fs, err := Floats(val)
	if err != nil {
		return 0, 0, err
	}
	if len(fs) != 2 {
		return 0, 0, fmt.Errorf("expected a pair, got %d values", len(fs))
	}
	return fs[0], fs[1], nil
}

// Entry is one key of a dict literal whose keys are integers.
type Entry struct {
	Key   int
	Value cty.Value
}

// IntDict decodes a dict literal with integer keys. Entries are returned
// sorted by key.
func IntDict(val cty.Value) ([]Entry, error) {
	if val.IsNull() || !val.IsKnown() {
		return nil, fmt.Errorf("expected a dict, got null")
	}
	ty := val.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return nil, fmt.Errorf("expected a dict, got %s", ty.FriendlyName())
	}
	var entries []Entry
	for it := val.ElementIterator(); it.Next(); {
		k, v := it.Element()
		key, err := strconv.Atoi(k.AsString())
		if err != nil {
			return nil, fmt.Errorf("dict key %q is not an integer", k.AsString())
		}
		entries = append(entries, Entry{Key: key, Value: v})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

func describe(val cty.Value) string {
	if val.IsNull() {
		return "null"
	}
	return val.Type().FriendlyName()
}

func abbreviate(s string) string {
	const limit = 60
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
