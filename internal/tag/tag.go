// Package tag implements the generic labelled tree that every document is
// built from, and its rendering to tab-indented pseudo-XML.
//
// Rendering does not escape anything: a quote or an angle bracket inside a
// label, attribute or string value is written out verbatim.
package tag

import (
	"strings"

	"github.com/specialistvlad/metaxml/internal/scalar"
)

// Node is anything that can appear as a child of a Tag: another *Tag or a
// scalar.Value.
type Node interface {
	XML(level int) string
}

// Attribute is a single name=value pair on a tag.
type Attribute struct {
	Name  string
	Value scalar.Value
}

// Tag is a labelled node with ordered attributes and ordered children.
type Tag struct {
	Label      string
	Attributes []Attribute
	Children   []Node
}

// New creates an empty tag with the given label.
func New(label string) *Tag {
	return &Tag{Label: label}
}

// WithLabel replaces the label.
func (t *Tag) WithLabel(label string) *Tag {
	t.Label = label
	return t
}

// WithAttribute sets an attribute. Setting a name that already exists
// replaces the value but keeps the original position.
func (t *Tag) WithAttribute(name string, value scalar.Value) *Tag {
	for i := range t.Attributes {
		if t.Attributes[i].Name == name {
			t.Attributes[i].Value = value
			return t
		}
	}
	t.Attributes = append(t.Attributes, Attribute{Name: name, Value: value})
	return t
}

// WithChild appends a child. A nil *Tag is ignored.
func (t *Tag) WithChild(child Node) *Tag {
	if c, ok := child.(*Tag); ok && c == nil {
		return t
	}
	if child == nil {
		return t
	}
	t.Children = append(t.Children, child)
	return t
}

// Attribute returns the value of the named attribute.
func (t *Tag) Attribute(name string) (scalar.Value, bool) {
	for _, a := range t.Attributes {
		if a.Name == name {
			return a.Value, true
		}
	}
	return scalar.Value{}, false
}

// ChildTags returns the children that are tags, skipping scalars.
func (t *Tag) ChildTags() []*Tag {
	var out []*Tag
	for _, c := range t.Children {
		if ct, ok := c.(*Tag); ok {
			out = append(out, ct)
		}
	}
	return out
}

// XML renders the tag indented by level tabs. A tag without children is
// self-closing; otherwise each child is rendered one level deeper on its own
// line and the closing tag sits at level.
func (t *Tag) XML(level int) string {
	indent := strings.Repeat("\t", level)

	var b strings.Builder
	b.WriteString(indent)
	b.WriteByte('<')
	b.WriteString(t.Label)
	b.WriteString(t.xmlAttributes())

	if len(t.Children) == 0 {
		b.WriteString("/>")
		return b.String()
	}

	b.WriteString(">\n")
	for i, c := range t.Children {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(c.XML(level + 1))
	}
	b.WriteByte('\n')
	b.WriteString(indent)
	b.WriteString("</")
	b.WriteString(t.Label)
	b.WriteByte('>')
	return b.String()
}

// String renders the tag at level zero.
func (t *Tag) String() string {
	return t.XML(0)
}

// xmlAttributes renders every attribute with a leading space, or "" when there are none.
func (t *Tag) xmlAttributes() string {
	if len(t.Attributes) == 0 {
		return ""
	}
	parts := make([]string, len(t.Attributes))
	for i, a := range t.Attributes {
		parts[i] = a.Name + "=" + a.Value.Text()
	}
	return " " + strings.Join(parts, " ")
}
