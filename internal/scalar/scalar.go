// Package scalar holds the primitive values a tag can carry, either as an
// attribute value or as a plain child: strings, numbers, booleans and null.
//
// Values are backed by cty primitives so that conversions from arbitrary Go
// values (named string types, pointers, every integer width) go through
// gocty instead of a hand-written type switch.
package scalar

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// ErrNotScalar is returned when a Go value has no primitive representation.
var ErrNotScalar = errors.New("scalar: value is not a string, number, bool or nil")

// Kind identifies which member of the union a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return "null"
	}
}

// Value is a string, number, bool or null. The zero Value is null.
type Value struct {
	v cty.Value
}

// String wraps s.
func String(s string) Value { return Value{v: cty.StringVal(s)} }

// Int wraps an integer.
func Int(i int64) Value { return Value{v: cty.NumberIntVal(i)} }

// Float wraps a floating point number.
func Float(f float64) Value { return Value{v: cty.NumberFloatVal(f)} }

// Bool wraps b.
func Bool(b bool) Value { return Value{v: cty.BoolVal(b)} }

// Null returns the null value.
func Null() Value { return Value{} }

// FromCty wraps an already-built cty value. Only known primitive values are accepted.
func FromCty(v cty.Value) (Value, error) {
	if v == cty.NilVal || v.IsNull() {
		return Null(), nil
	}
	if !v.IsKnown() {
		return Value{}, fmt.Errorf("%w: unknown value", ErrNotScalar)
	}
	if !v.Type().IsPrimitiveType() {
		return Value{}, fmt.Errorf("%w: got %s", ErrNotScalar, v.Type().FriendlyName())
	}
	return Value{v: v}, nil
}

// Of converts a Go value into a Value. nil, nil pointers and nil interfaces
// become null; anything whose implied cty type is not primitive is rejected.
func Of(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case cty.Value:
		return FromCty(t)
	}

	rv := reflect.ValueOf(x)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return Null(), nil
		}
		rv = rv.Elem()
	}
	if !IsScalarType(rv.Type()) {
		return Value{}, fmt.Errorf("%w: got %s", ErrNotScalar, rv.Type())
	}

	ty, err := gocty.ImpliedType(rv.Interface())
	if err != nil {
		return Value{}, fmt.Errorf("%w: %v", ErrNotScalar, err)
	}
	v, err := gocty.ToCtyValue(rv.Interface(), ty)
	if err != nil {
		return Value{}, fmt.Errorf("%w: %v", ErrNotScalar, err)
	}
	return Value{v: v}, nil
}

// IsScalarType reports whether values of t (after pointer indirection) map
// onto a primitive.
func IsScalarType(t reflect.Type) bool {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// Kind reports which member of the union v holds.
func (v Value) Kind() Kind {
	if v.v == cty.NilVal || v.v.IsNull() {
		return KindNull
	}
	switch v.v.Type() {
	case cty.String:
		return KindString
	case cty.Number:
		return KindNumber
	case cty.Bool:
		return KindBool
	}
	return KindNull
}

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.Kind() == KindNull }

// Cty returns the underlying cty value; cty.NullVal(cty.DynamicPseudoType) for null.
func (v Value) Cty() cty.Value {
	if v.v == cty.NilVal {
		return cty.NullVal(cty.DynamicPseudoType)
	}
	return v.v
}

// Native returns the value as string, int64, float64, bool or nil.
// Integral numbers that fit in an int64 come back as int64.
func (v Value) Native() any {
	switch v.Kind() {
	case KindString:
		return v.v.AsString()
	case KindBool:
		return v.v.True()
	case KindNumber:
		bf := v.v.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == 0 {
				return i
			}
		}
		f, _ := bf.Float64()
		return f
	}
	return nil
}

// Equal reports whether both values are the same kind and carry the same value.
func (v Value) Equal(o Value) bool {
	if v.Kind() != o.Kind() {
		return false
	}
	if v.IsNull() {
		return true
	}
	return v.v.Equals(o.v).True()
}

// Text is the rendered form: strings wrapped in double quotes (verbatim),
// numbers in their shortest decimal form, bools as true/false, null as "".
func (v Value) Text() string {
	switch v.Kind() {
	case KindString:
		return `"` + v.v.AsString() + `"`
	case KindNumber:
		return v.v.AsBigFloat().Text('f', -1)
	case KindBool:
		if v.v.True() {
			return "true"
		}
		return "false"
	}
	return ""
}

// XML renders v as a child line indented by level tabs.
func (v Value) XML(level int) string {
	return strings.Repeat("\t", level) + v.Text()
}

// GoString makes test failures readable.
func (v Value) GoString() string {
	return "scalar." + v.Kind().String() + "(" + v.Text() + ")"
}
