package annotation

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// TagKey is the struct tag key read by the store.
const TagKey = "meta"

// ParseTag parses the value of a `meta` struct tag. The tag is a
// comma-separated list of annotations written as HCL expressions:
//
//	Ignore
//	Label("alias")
//	Label(alias), Ignore
//
// A bare identifier argument is taken as a string.
func ParseTag(tag string) ([]Record, error) {
	if strings.TrimSpace(tag) == "" {
		return nil, nil
	}

	expr, diags := hclsyntax.ParseExpression([]byte("["+tag+"]"), TagKey, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, fmt.Errorf("annotation: invalid tag %q: %w", tag, diags)
	}
	tuple, ok := expr.(*hclsyntax.TupleConsExpr)
	if !ok {
		return nil, fmt.Errorf("annotation: invalid tag %q", tag)
	}

	records := make([]Record, 0, len(tuple.Exprs))
	for _, e := range tuple.Exprs {
		r, err := recordFromExpr(e)
		if err != nil {
			return nil, fmt.Errorf("in tag %q: %w", tag, err)
		}
		records = append(records, r)
	}
	return records, nil
}

func recordFromExpr(expr hclsyntax.Expression) (Record, error) {
	switch v := expr.(type) {
	case *hclsyntax.ScopeTraversalExpr:
		if len(v.Traversal) != 1 {
			return nil, fmt.Errorf("annotation: %s... is not an annotation name", v.Traversal.RootName())
		}
		return Resolve(v.Traversal.RootName())

	case *hclsyntax.FunctionCallExpr:
		args := make([]any, 0, len(v.Args))
		for _, a := range v.Args {
			val, err := argValue(a)
			if err != nil {
				return nil, fmt.Errorf("in %s(...): %w", v.Name, err)
			}
			args = append(args, val)
		}
		return Resolve(v.Name, args...)
	}
	return nil, fmt.Errorf("annotation: unsupported expression %T", expr)
}

// argValue evaluates a literal argument without any variables in scope.
func argValue(expr hclsyntax.Expression) (cty.Value, error) {
	if st, ok := expr.(*hclsyntax.ScopeTraversalExpr); ok && len(st.Traversal) == 1 {
		return cty.StringVal(st.Traversal.RootName()), nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return cty.NilVal, diags
	}
	return val, nil
}
