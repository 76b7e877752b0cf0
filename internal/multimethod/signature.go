package multimethod

import (
	"fmt"
	"reflect"
	"strings"
)

var errorType = reflect.TypeFor[error]()

// Signature is one candidate implementation of a multimethod: the constraints
// that select it plus the handler that runs when they do.
type Signature struct {
	constraints []Constraint
	fn          reflect.Value
	fnType      reflect.Type
	bound       bool
}

// NewSignature builds a free-standing signature. The handler must be a
// non-variadic func taking exactly one parameter per constraint and returning
// nothing, a value, an error, or a value and an error.
func NewSignature(constraints []Constraint, handler any) (*Signature, error) {
	return newSignature(constraints, handler, false)
}

// NewMethod builds a signature whose handler receives the target instance as
// its first parameter, followed by one parameter per constraint.
func NewMethod(constraints []Constraint, handler any) (*Signature, error) {
	return newSignature(constraints, handler, true)
}

func newSignature(constraints []Constraint, handler any, bound bool) (*Signature, error) {
	if handler == nil {
		return nil, fmt.Errorf("%w: nil handler", ErrInvalidHandler)
	}
	fn := reflect.ValueOf(handler)
	ft := fn.Type()
	if ft.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w: %s is not a function", ErrInvalidHandler, ft)
	}
	if fn.IsNil() {
		return nil, fmt.Errorf("%w: nil handler", ErrInvalidHandler)
	}
	if ft.IsVariadic() {
		return nil, fmt.Errorf("%w: variadic handler %s", ErrInvalidHandler, ft)
	}
	for i, c := range constraints {
		if c == nil {
			return nil, fmt.Errorf("%w: constraint %d is nil", ErrInvalidHandler, i)
		}
	}

	want := len(constraints)
	if bound {
		want++
	}
	if ft.NumIn() != want {
		return nil, ArityMismatchError{Constraints: len(constraints), HandlerArity: ft.NumIn(), Bound: bound}
	}

	switch ft.NumOut() {
	case 0, 1:
	case 2:
		if ft.Out(1) != errorType {
			return nil, fmt.Errorf("%w: second result of %s must be error", ErrInvalidHandler, ft)
		}
	default:
		return nil, fmt.Errorf("%w: %s returns too many results", ErrInvalidHandler, ft)
	}

	return &Signature{
		constraints: append([]Constraint(nil), constraints...),
		fn:          fn,
		fnType:      ft,
		bound:       bound,
	}, nil
}

// MustSignature is NewSignature that panics on error.
func MustSignature(constraints []Constraint, handler any) *Signature {
	s, err := NewSignature(constraints, handler)
	if err != nil {
		panic(err)
	}
	return s
}

// MustMethod is NewMethod that panics on error.
func MustMethod(constraints []Constraint, handler any) *Signature {
	s, err := NewMethod(constraints, handler)
	if err != nil {
		panic(err)
	}
	return s
}

// Arity is the number of arguments the signature accepts, receiver excluded.
func (s *Signature) Arity() int { return len(s.constraints) }

// Bound reports whether the handler takes the receiver as first parameter.
func (s *Signature) Bound() bool { return s.bound }

// Constraints returns a copy of the signature's constraints.
func (s *Signature) Constraints() []Constraint {
	return append([]Constraint(nil), s.constraints...)
}

// String renders the constraint list, e.g. "(string, int)".
func (s *Signature) String() string {
	return "(" + strings.Join(s.want(), ", ") + ")"
}

// Matches reports whether args has the right length and every argument
// satisfies its constraint and can be passed to the handler.
func (s *Signature) Matches(args ...any) bool {
	if len(args) != len(s.constraints) {
		return false
	}
	offset := s.paramOffset()
	for i, a := range args {
		if !s.constraints[i].Satisfied(a) {
			return false
		}
		if _, ok := argValue(a, s.fnType.In(i+offset)); !ok {
			return false
		}
	}
	return true
}

// Invoke calls a free-standing handler with args. Bound signatures need a
// target and must go through InvokeBound.
func (s *Signature) Invoke(args ...any) (any, error) {
	if s.bound {
		return nil, ArgumentMismatchError{Want: s.want(), Got: typeNames(args), Receiver: "nil"}
	}
	return s.InvokeBound(nil, args...)
}

// InvokeBound calls the handler with target as receiver. Free-standing
// handlers ignore target.
func (s *Signature) InvokeBound(target any, args ...any) (any, error) {
	if !s.Matches(args...) {
		return nil, ArgumentMismatchError{Want: s.want(), Got: typeNames(args)}
	}

	in := make([]reflect.Value, 0, s.fnType.NumIn())
	if s.bound {
		rv, ok := receiverValue(target, s.fnType.In(0))
		if !ok {
			return nil, ArgumentMismatchError{Want: s.want(), Got: typeNames(args), Receiver: typeName(target)}
		}
		in = append(in, rv)
	}
	offset := s.paramOffset()
	for i, a := range args {
		rv, _ := argValue(a, s.fnType.In(i+offset))
		in = append(in, rv)
	}

	return unpackResults(s.fn.Call(in))
}

// AcceptsReceiver reports whether a bound handler can be called on values of
// owner: the owner itself, a pointer to it, or the element of a pointer
// owner. Free-standing signatures accept any owner.
func (s *Signature) AcceptsReceiver(owner reflect.Type) bool {
	if !s.bound {
		return true
	}
	pt := s.fnType.In(0)
	if owner.AssignableTo(pt) || reflect.PointerTo(owner).AssignableTo(pt) {
		return true
	}
	return owner.Kind() == reflect.Pointer && owner.Elem().AssignableTo(pt)
}

func (s *Signature) paramOffset() int {
	if s.bound {
		return 1
	}
	return 0
}

func (s *Signature) want() []string {
	out := make([]string, len(s.constraints))
	for i, c := range s.constraints {
		out[i] = c.String()
	}
	return out
}

// argValue converts a to a reflect.Value assignable to parameter type pt.
func argValue(a any, pt reflect.Type) (reflect.Value, bool) {
	if a == nil {
		switch pt.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
			return reflect.Zero(pt), true
		}
		return reflect.Value{}, false
	}
	v := reflect.ValueOf(a)
	if !v.Type().AssignableTo(pt) {
		return reflect.Value{}, false
	}
	return v, true
}

// receiverValue adapts target to the receiver parameter pt. Besides plain
// assignment it dereferences a non-nil pointer for a value receiver and
// passes a pointer to a copy for a pointer receiver.
func receiverValue(target any, pt reflect.Type) (reflect.Value, bool) {
	if v, ok := argValue(target, pt); ok {
		return v, true
	}
	if target == nil {
		return reflect.Value{}, false
	}
	v := reflect.ValueOf(target)
	if v.Kind() == reflect.Pointer && !v.IsNil() && v.Elem().Type().AssignableTo(pt) {
		return v.Elem(), true
	}
	if pt.Kind() == reflect.Pointer && v.Type().AssignableTo(pt.Elem()) {
		p := reflect.New(pt.Elem())
		p.Elem().Set(v)
		return p, true
	}
	return reflect.Value{}, false
}

func unpackResults(out []reflect.Value) (any, error) {
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		if out[0].Type() == errorType {
			return nil, asError(out[0])
		}
		return out[0].Interface(), nil
	default:
		return out[0].Interface(), asError(out[1])
	}
}

func asError(v reflect.Value) error {
	if v.IsNil() {
		return nil
	}
	return v.Interface().(error)
}
