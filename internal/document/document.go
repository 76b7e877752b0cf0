// Package document wraps a root tag produced by one of the three front-ends:
// the builder DSL, the reflective serializer or an HCL file.
package document

import (
	"context"
	"errors"

	"github.com/specialistvlad/metaxml/internal/builder"
	"github.com/specialistvlad/metaxml/internal/hcldoc"
	"github.com/specialistvlad/metaxml/internal/serializer"
	"github.com/specialistvlad/metaxml/internal/tag"
)

// ErrEmpty is returned when a front-end produced no root tag.
var ErrEmpty = errors.New("document: no root tag")

// Document is a rendered-on-demand tag tree.
type Document struct {
	root *tag.Tag
}

// New runs build and wraps the resulting root.
func New(build func(b *builder.Builder)) (*Document, error) {
	root, err := builder.Build(build)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, ErrEmpty
	}
	return &Document{root: root}, nil
}

// Serialize wraps the tag the serializer builds for v. A value whose type is
// ignored yields ErrEmpty.
func Serialize(ctx context.Context, s *serializer.Serializer, v any) (*Document, error) {
	if s == nil {
		s = serializer.New(nil)
	}
	root, err := s.Serialize(ctx, v)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, ErrEmpty
	}
	return &Document{root: root}, nil
}

// Load decodes the HCL document at path.
func Load(ctx context.Context, path string) (*Document, error) {
	root, err := hcldoc.DecodeFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return &Document{root: root}, nil
}

// FromTag wraps an existing tree.
func FromTag(root *tag.Tag) *Document { return &Document{root: root} }

// Root returns the root tag.
func (d *Document) Root() *tag.Tag { return d.root }

// XML renders the whole document starting at indentation level 0.
func (d *Document) XML() string { return d.root.XML(0) }

// XMLAt renders the document with every line shifted by level tabs.
func (d *Document) XMLAt(level int) string { return d.root.XML(level) }
