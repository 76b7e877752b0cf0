// Package hcldoc reads tag trees from HCL files.
//
// A document file holds exactly one top-level block, which becomes the root
// tag. Inside a block, attributes become tag attributes in source order and
// nested blocks become child tags. The reserved attribute "content" does not
// become an attribute: its value (a scalar, or a tuple of scalars) is added
// as scalar children, positioned among the child blocks by where it appears.
//
//	alumno {
//	  nombre = "Matias"
//	  legajo = "123456-7"
//	  telefono {
//	    content = "1234567890"
//	  }
//	}
package hcldoc

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/metaxml/internal/ctxlog"
	"github.com/specialistvlad/metaxml/internal/scalar"
	"github.com/specialistvlad/metaxml/internal/tag"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// ContentAttribute is the attribute name whose value becomes scalar children.
const ContentAttribute = "content"

// evalContext exposes a handful of string and number helpers to documents.
// No variables are defined.
var evalContext = &hcl.EvalContext{
	Functions: map[string]function.Function{
		"upper":  stdlib.UpperFunc,
		"lower":  stdlib.LowerFunc,
		"format": stdlib.FormatFunc,
		"join":   stdlib.JoinFunc,
		"concat": stdlib.ConcatFunc,
		"max":    stdlib.MaxFunc,
		"min":    stdlib.MinFunc,
	},
}

// DecodeFile parses the HCL file at path into a tag tree.
func DecodeFile(ctx context.Context, path string) (*tag.Tag, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Decoding document file.", "path", path)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL document %s: %w", path, diags)
	}
	root, err := decode(file, path)
	if err != nil {
		return nil, err
	}
	logger.Debug("Successfully decoded document file.", "path", path, "root", root.Label)
	return root, nil
}

// Decode parses src as an HCL document; filename only appears in diagnostics.
func Decode(ctx context.Context, src []byte, filename string) (*tag.Tag, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL document %s: %w", filename, diags)
	}
	root, err := decode(file, filename)
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("Decoded document.", "filename", filename, "root", root.Label)
	return root, nil
}

func decode(file *hcl.File, filename string) (*tag.Tag, error) {
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("failed to decode HCL document %s: not native HCL syntax", filename)
	}

	block, diags := rootBlock(body)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL document %s: %w", filename, diags)
	}
	root, diags := convertBlock(block)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL document %s: %w", filename, diags)
	}
	return root, nil
}

// rootBlock returns the single top-level block of body. Top-level attributes
// are rejected, as is any second block.
func rootBlock(body *hclsyntax.Body) (*hclsyntax.Block, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	for _, attr := range sortedAttributes(body) {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Unexpected top-level attribute",
			Detail:   fmt.Sprintf("The attribute %q must be declared inside the root block.", attr.Name),
			Subject:  attr.NameRange.Ptr(),
		})
	}

	var found *hclsyntax.Block
	for _, block := range body.Blocks {
		if found != nil {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate root block",
				Detail:   fmt.Sprintf("Only one top-level block is allowed; %q is already the root.", found.Type),
				Subject:  block.DefRange().Ptr(),
			})
			continue
		}
		found = block
	}
	if found == nil && !diags.HasErrors() {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Missing root block",
			Detail:   "A document needs exactly one top-level block.",
			Subject:  body.SrcRange.Ptr(),
		})
	}
	return found, diags
}

// child is a block or a content attribute, kept with its source offset so
// both kinds can be interleaved in the order they were written.
type child struct {
	offset  int
	block   *hclsyntax.Block
	content *hclsyntax.Attribute
}

func convertBlock(block *hclsyntax.Block) (*tag.Tag, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	if len(block.Labels) > 0 {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Unexpected block label",
			Detail:   fmt.Sprintf("Block %q takes no labels; use attributes instead.", block.Type),
			Subject:  hcl.RangeBetween(block.LabelRanges[0], block.LabelRanges[len(block.LabelRanges)-1]).Ptr(),
		})
		return nil, diags
	}

	t := tag.New(block.Type)
	var children []child

	for _, attr := range sortedAttributes(block.Body) {
		if attr.Name == ContentAttribute {
			children = append(children, child{offset: attr.SrcRange.Start.Byte, content: attr})
			continue
		}
		val, valDiags := attr.Expr.Value(evalContext)
		diags = append(diags, valDiags...)
		if valDiags.HasErrors() {
			continue
		}
		sv, err := scalar.FromCty(val)
		if err != nil {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unsupported attribute value",
				Detail:   fmt.Sprintf("The attribute %q must be a string, number, bool or null: %s.", attr.Name, err),
				Subject:  attr.Expr.Range().Ptr(),
			})
			continue
		}
		t.WithAttribute(attr.Name, sv)
	}

	for _, b := range block.Body.Blocks {
		children = append(children, child{offset: b.TypeRange.Start.Byte, block: b})
	}
	sort.SliceStable(children, func(i, j int) bool { return children[i].offset < children[j].offset })

	for _, c := range children {
		if c.block != nil {
			sub, subDiags := convertBlock(c.block)
			diags = append(diags, subDiags...)
			if sub != nil {
				t.WithChild(sub)
			}
			continue
		}
		values, contentDiags := contentValues(c.content)
		diags = append(diags, contentDiags...)
		for _, v := range values {
			t.WithChild(v)
		}
	}
	return t, diags
}

// contentValues evaluates a content attribute. A tuple or list yields one
// scalar per element, null yields nothing.
func contentValues(attr *hclsyntax.Attribute) ([]scalar.Value, hcl.Diagnostics) {
	val, diags := attr.Expr.Value(evalContext)
	if diags.HasErrors() {
		return nil, diags
	}
	if val.IsNull() {
		return nil, diags
	}

	elems := []cty.Value{val}
	if ty := val.Type(); ty.IsTupleType() || ty.IsListType() {
		elems = val.AsValueSlice()
	}

	out := make([]scalar.Value, 0, len(elems))
	for _, e := range elems {
		sv, err := scalar.FromCty(e)
		if err != nil {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unsupported content value",
				Detail:   fmt.Sprintf("Content must be scalars or a list of scalars: %s.", err),
				Subject:  attr.Expr.Range().Ptr(),
			})
			return nil, diags
		}
		out = append(out, sv)
	}
	return out, diags
}

// sortedAttributes returns the attributes of body in source order; hclsyntax
// keeps them in a map.
func sortedAttributes(body *hclsyntax.Body) []*hclsyntax.Attribute {
	attrs := make([]*hclsyntax.Attribute, 0, len(body.Attributes))
	for _, a := range body.Attributes {
		attrs = append(attrs, a)
	}
	sort.Slice(attrs, func(i, j int) bool {
		return attrs[i].SrcRange.Start.Byte < attrs[j].SrcRange.Start.Byte
	})
	return attrs
}
