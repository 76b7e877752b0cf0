// Package serializer turns Go values into tag trees by walking their fields
// and honouring the annotations kept in an annotation.Store.
//
// The walk has no cycle detection: a value that reaches itself through its
// fields recurses until the stack runs out.
package serializer

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/specialistvlad/metaxml/internal/annotation"
	"github.com/specialistvlad/metaxml/internal/ctxlog"
	"github.com/specialistvlad/metaxml/internal/scalar"
	"github.com/specialistvlad/metaxml/internal/tag"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// ErrDuplicateLabelAnnotation is matched by DuplicateLabelAnnotationError.
	ErrDuplicateLabelAnnotation = errors.New("serializer: more than one Label on a field")

	// ErrDuplicateAttributeName is matched by DuplicateAttributeNameError.
	ErrDuplicateAttributeName = errors.New("serializer: duplicate attribute name")

	// ErrUnsupportedValue is matched by UnsupportedValueError.
	ErrUnsupportedValue = errors.New("serializer: unsupported value")
)

// DuplicateLabelAnnotationError is returned when a field carries more than one Label.
type DuplicateLabelAnnotationError struct {
	Type  string
	Field string
}

// Error implements the error interface.
func (e DuplicateLabelAnnotationError) Error() string {
	return "serializer: field " + e.Type + "." + e.Field + " has more than one Label annotation"
}

// Is makes errors.Is(err, ErrDuplicateLabelAnnotation) work.
func (e DuplicateLabelAnnotationError) Is(target error) bool {
	return target == ErrDuplicateLabelAnnotation
}

// DuplicateAttributeNameError is returned when two fields of one value end up
// with the same effective name.
type DuplicateAttributeNameError struct {
	Type   string
	Name   string
	Fields []string
}

// Error implements the error interface.
func (e DuplicateAttributeNameError) Error() string {
	return "serializer: fields " + strings.Join(e.Fields, ", ") + " of " + e.Type +
		" all serialize as " + strconv.Quote(e.Name)
}

// Is makes errors.Is(err, ErrDuplicateAttributeName) work.
func (e DuplicateAttributeNameError) Is(target error) bool {
	return target == ErrDuplicateAttributeName
}

// UnsupportedValueError is returned for values that are neither scalars,
// sequences nor structs (maps, funcs, channels, nil or not).
type UnsupportedValueError struct {
	Path string
	Type string
}

// Error implements the error interface.
func (e UnsupportedValueError) Error() string {
	return "serializer: cannot serialize " + e.Type + " at " + e.Path
}

// Is makes errors.Is(err, ErrUnsupportedValue) work.
func (e UnsupportedValueError) Is(target error) bool { return target == ErrUnsupportedValue }

// Serializer walks values and builds tags.
type Serializer struct {
	store *annotation.Store
	lower cases.Caser
}

// New creates a serializer reading annotations from store. A nil store means
// struct tags only.
func New(store *annotation.Store) *Serializer {
	if store == nil {
		store = annotation.NewStore(nil)
	}
	return &Serializer{store: store, lower: cases.Lower(language.Und)}
}

// Store returns the annotation store the serializer consults.
func (s *Serializer) Store() *annotation.Store { return s.store }

// Serialize builds the tag for v. A nil tag with a nil error means v is
// excluded by an Ignore annotation on its type.
func (s *Serializer) Serialize(ctx context.Context, v any) (*tag.Tag, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, UnsupportedValueError{Path: "$", Type: "nil"}
	}
	return s.serializeStruct(ctx, rv, "$")
}

// field is a struct field that survived filtering.
type field struct {
	goName string
	name   string
	value  reflect.Value
}

func (s *Serializer) serializeStruct(ctx context.Context, rv reflect.Value, path string) (*tag.Tag, error) {
	logger := ctxlog.FromContext(ctx)

	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, UnsupportedValueError{Path: path, Type: rv.Type().String()}
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, UnsupportedValueError{Path: path, Type: rv.Type().String()}
	}
	rt := rv.Type()

	classAnns, err := s.store.ClassAnnotations(rt)
	if err != nil {
		return nil, err
	}
	if annotation.HasIgnore(classAnns) {
		logger.Debug("Skipping value of ignored type.", "type", rt.String(), "path", path)
		return nil, nil
	}

	label := s.lower.String(rt.Name())
	if label == "" {
		label = "struct"
	}
	if labels := annotation.Labels(classAnns); len(labels) > 0 {
		label = labels[0].Name
	}
	t := tag.New(label)

	fields, err := s.fields(rv)
	if err != nil {
		return nil, err
	}

	for _, f := range fields {
		if err := s.attach(ctx, t, f, path+"."+f.goName); err != nil {
			return nil, err
		}
	}
	logger.Debug("Serialized value.", "type", rt.String(), "label", label, "path", path, "fields", len(fields))
	return t, nil
}

// fields lists the readable fields of rv in declaration order with their
// effective names, applying member annotations. Fields of embedded structs
// are promoted into rv's list.
func (s *Serializer) fields(rv reflect.Value) ([]field, error) {
	c := &collector{byName: make(map[string][]string)}
	if err := s.collect(rv, "", false, c); err != nil {
		return nil, err
	}

	for _, name := range c.order {
		if goNames := c.byName[name]; len(goNames) > 1 {
			return nil, DuplicateAttributeNameError{Type: rv.Type().String(), Name: name, Fields: goNames}
		}
	}
	return c.out, nil
}

type collector struct {
	out    []field
	byName map[string][]string
	order  []string
}

func (c *collector) add(f field) {
	if _, seen := c.byName[f.name]; !seen {
		c.order = append(c.order, f.name)
	}
	c.byName[f.name] = append(c.byName[f.name], f.goName)
	c.out = append(c.out, f)
}

// collect walks the fields of rv. Go names of promoted fields carry the
// embedding path ("Persona.Nombre"). Under an unexported embedding only
// exported fields are reachable and getters are not called.
func (s *Serializer) collect(rv reflect.Value, prefix string, hidden bool, c *collector) error {
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if sf.Name == "_" {
			continue
		}

		anns, err := s.store.MemberAnnotations(rt, sf.Name)
		if err != nil {
			return err
		}
		if annotation.HasIgnore(anns) {
			continue
		}
		labels := annotation.Labels(anns)
		if len(labels) > 1 {
			return DuplicateLabelAnnotationError{Type: rt.String(), Field: sf.Name}
		}

		if sf.Anonymous && len(labels) == 0 {
			ev, promote, err := s.embedded(rv, sf)
			if err != nil {
				return err
			}
			if promote {
				if !ev.IsValid() {
					continue
				}
				if err := s.collect(ev, prefix+sf.Name+".", hidden || !sf.IsExported(), c); err != nil {
					return err
				}
				continue
			}
		}

		var val reflect.Value
		if hidden {
			if !sf.IsExported() {
				continue
			}
			val = rv.FieldByIndex(sf.Index)
		} else {
			v, ok := readable(rv, sf)
			if !ok {
				continue
			}
			val = v
		}

		name := BareName(sf.Name)
		if len(labels) == 1 {
			name = labels[0].Name
		}
		c.add(field{goName: prefix + sf.Name, name: name, value: val})
	}
	return nil
}

// embedded decides whether the embedded field sf is promoted. Struct and
// pointer-to-struct embeddings are; an ignored embedded type is promoted to
// nothing. The returned value is invalid when there is nothing to walk: an
// ignored type or a nil pointer.
func (s *Serializer) embedded(rv reflect.Value, sf reflect.StructField) (reflect.Value, bool, error) {
	et := sf.Type
	if et.Kind() == reflect.Pointer {
		et = et.Elem()
	}
	if et.Kind() != reflect.Struct {
		return reflect.Value{}, false, nil
	}

	classAnns, err := s.store.ClassAnnotations(et)
	if err != nil {
		return reflect.Value{}, false, err
	}
	if annotation.HasIgnore(classAnns) {
		return reflect.Value{}, true, nil
	}

	ev := rv.Field(sf.Index[0])
	if ev.Kind() == reflect.Pointer {
		if ev.IsNil() {
			return reflect.Value{}, true, nil
		}
		ev = ev.Elem()
	}
	return ev, true, nil
}

func (s *Serializer) attach(ctx context.Context, t *tag.Tag, f field, path string) error {
	v := f.value

	// Interfaces are judged by what they hold.
	if v.Kind() == reflect.Interface && !v.IsNil() {
		v = v.Elem()
	}

	switch {
	case unsupportedKind(v):
		return UnsupportedValueError{Path: path, Type: v.Type().String()}

	case isNil(v):
		t.WithAttribute(f.name, scalar.Null())
		return nil

	case scalar.IsScalarType(v.Type()):
		sv, err := scalar.Of(v.Interface())
		if err != nil {
			return fmt.Errorf("at %s: %w", path, err)
		}
		t.WithAttribute(f.name, sv)
		return nil

	case v.Kind() == reflect.Slice || v.Kind() == reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if err := s.attachElement(ctx, t, v.Index(i), path+"["+strconv.Itoa(i)+"]"); err != nil {
				return err
			}
		}
		return nil

	default:
		child, err := s.serializeStruct(ctx, v, path)
		if err != nil {
			return err
		}
		t.WithChild(child)
		return nil
	}
}

// attachElement adds one sequence element as a child: scalars as scalar
// children, everything else serialized recursively.
func (s *Serializer) attachElement(ctx context.Context, t *tag.Tag, v reflect.Value, path string) error {
	if v.Kind() == reflect.Interface && !v.IsNil() {
		v = v.Elem()
	}
	if unsupportedKind(v) {
		return UnsupportedValueError{Path: path, Type: v.Type().String()}
	}
	if isNil(v) {
		t.WithChild(scalar.Null())
		return nil
	}
	if scalar.IsScalarType(v.Type()) {
		sv, err := scalar.Of(v.Interface())
		if err != nil {
			return fmt.Errorf("at %s: %w", path, err)
		}
		t.WithChild(sv)
		return nil
	}
	child, err := s.serializeStruct(ctx, v, path)
	if err != nil {
		return err
	}
	t.WithChild(child)
	return nil
}

// readable returns the value of a field if it can be read from outside: an
// exported field, or an unexported one with an exported zero-argument getter
// of the same name (nombre -> Nombre()).
func readable(rv reflect.Value, sf reflect.StructField) (reflect.Value, bool) {
	if sf.IsExported() {
		return rv.FieldByIndex(sf.Index), true
	}

	getter := exportedName(sf.Name)
	if getter == "" {
		return reflect.Value{}, false
	}

	m := rv.MethodByName(getter)
	if !m.IsValid() && rv.CanAddr() {
		m = rv.Addr().MethodByName(getter)
	}
	if !m.IsValid() && !rv.CanAddr() {
		// Pointer-receiver getters need an addressable copy.
		cp := reflect.New(rv.Type())
		cp.Elem().Set(rv)
		m = cp.MethodByName(getter)
	}
	if !m.IsValid() {
		return reflect.Value{}, false
	}
	mt := m.Type()
	if mt.NumIn() != 0 || mt.NumOut() != 1 {
		return reflect.Value{}, false
	}
	return m.Call(nil)[0], true
}

func exportedName(name string) string {
	name = strings.TrimLeft(name, "_")
	if name == "" {
		return ""
	}
	r := []rune(name)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// unsupportedKind reports maps, funcs and channels, which are rejected
// whether nil or not.
func unsupportedKind(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Map, reflect.Func, reflect.Chan:
		return true
	}
	return false
}

func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		return v.IsNil()
	case reflect.Invalid:
		return true
	}
	return false
}

// BareName converts a Go field name to the attribute name used when no
// Label overrides it: leading underscores dropped, CamelCase to snake_case,
// acronyms kept together ("ID" -> "id", "FinalesRendidos" -> "finales_rendidos",
// "HTTPPort" -> "http_port").
func BareName(goName string) string {
	r := []rune(strings.TrimLeft(goName, "_"))
	var b strings.Builder
	for i, c := range r {
		if unicode.IsUpper(c) {
			prevLower := i > 0 && (unicode.IsLower(r[i-1]) || unicode.IsDigit(r[i-1]))
			nextLower := i > 0 && i+1 < len(r) && unicode.IsUpper(r[i-1]) && unicode.IsLower(r[i+1])
			if prevLower || nextLower {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(c))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}
