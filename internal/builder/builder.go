// Package builder constructs tag trees from nested Go closures, without any
// reflection over the values involved.
//
//	root, err := builder.Build(func(b *builder.Builder) {
//		b.Open("alumno", builder.A("nombre", "Matias", "legajo", "123456-7"), func(b *builder.Builder) any {
//			b.Open("telefono", nil, func(*builder.Builder) any { return "1234567890" })
//			return nil
//		})
//	})
//
// Every Open call creates a tag that becomes a child of the tag whose block is
// currently running. The first tag opened is the root.
package builder

import (
	"fmt"

	"github.com/specialistvlad/metaxml/internal/scalar"
	"github.com/specialistvlad/metaxml/internal/tag"
)

// Attr is one attribute handed to Open.
type Attr struct {
	Name  string
	Value any
}

// Attrs is an ordered attribute list; order is kept on the resulting tag.
type Attrs []Attr

// A builds Attrs from alternating names and values. It panics on an odd
// number of arguments or a non-string name.
func A(kv ...any) Attrs {
	if len(kv)%2 != 0 {
		panic(fmt.Sprintf("builder: A needs name/value pairs, got %d arguments", len(kv)))
	}
	out := make(Attrs, 0, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		name, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("builder: attribute name at %d is %T, not string", i, kv[i]))
		}
		out = append(out, Attr{Name: name, Value: kv[i+1]})
	}
	return out
}

// Block is the body of an Open call. A non-nil result that is not a *tag.Tag
// is attached to the opened tag as a scalar child.
type Block func(b *Builder) any

// Builder tracks the root and the currently open tag.
type Builder struct {
	root    *tag.Tag
	current *tag.Tag
	err     error
}

// Build runs fn against a fresh builder and returns the root tag, or the
// first error met while building.
func Build(fn func(b *Builder)) (*tag.Tag, error) {
	b := &Builder{}
	fn(b)
	if b.err != nil {
		return nil, b.err
	}
	return b.root, nil
}

// Open creates a tag named name, applies attrs in order, attaches it to the
// currently open tag and, while block runs, makes it the currently open tag.
func (b *Builder) Open(name string, attrs Attrs, block Block) *tag.Tag {
	t := tag.New(name)
	for _, a := range attrs {
		v, err := scalar.Of(a.Value)
		if err != nil {
			b.fail(fmt.Errorf("builder: attribute %q of <%s>: %w", a.Name, name, err))
			continue
		}
		t.WithAttribute(a.Name, v)
	}

	if b.root == nil {
		b.root = t
	}
	if b.current != nil {
		b.current.WithChild(t)
	}

	if block != nil {
		result := b.within(t, block)
		if result != nil {
			if _, isTag := result.(*tag.Tag); !isTag {
				v, err := scalar.Of(result)
				if err != nil {
					b.fail(fmt.Errorf("builder: content of <%s>: %w", name, err))
				} else {
					t.WithChild(v)
				}
			}
		}
	}
	return t
}

// within runs block with t as the currently open tag. The previous tag is
// restored even if block panics.
func (b *Builder) within(t *tag.Tag, block Block) any {
	prev := b.current
	b.current = t
	defer func() { b.current = prev }()
	return block(b)
}

// Leaf is Open without a block.
func (b *Builder) Leaf(name string, attrs Attrs) *tag.Tag {
	return b.Open(name, attrs, nil)
}

// Text opens a tag whose only child is the scalar v.
func (b *Builder) Text(name string, attrs Attrs, v any) *tag.Tag {
	return b.Open(name, attrs, func(*Builder) any { return v })
}

// Root returns the first tag opened so far.
func (b *Builder) Root() *tag.Tag { return b.root }

// Current returns the tag whose block is running, nil at top level.
func (b *Builder) Current() *tag.Tag { return b.current }

// Err returns the first error recorded so far.
func (b *Builder) Err() error { return b.err }

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}
