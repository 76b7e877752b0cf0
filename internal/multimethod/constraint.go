package multimethod

import (
	"fmt"
	"reflect"
	"strings"
)

// Constraint decides whether a single argument is acceptable at one position
// of a signature.
type Constraint interface {
	Satisfied(arg any) bool
	String() string
}

type typeConstraint struct {
	t reflect.Type
}

// Type requires the argument to be exactly a T. When T is an interface type
// the argument must implement it, and nil is accepted.
func Type[T any]() Constraint {
	return typeConstraint{t: reflect.TypeFor[T]()}
}

// TypeOf is Type for a reflect.Type known only at runtime.
func TypeOf(t reflect.Type) Constraint {
	if t == nil {
		panic("multimethod: TypeOf(nil)")
	}
	return typeConstraint{t: t}
}

func (c typeConstraint) Satisfied(arg any) bool {
	if arg == nil {
		return c.t.Kind() == reflect.Interface
	}
	at := reflect.TypeOf(arg)
	if c.t.Kind() == reflect.Interface {
		return at.Implements(c.t)
	}
	return at == c.t
}

func (c typeConstraint) String() string { return c.t.String() }

type kindConstraint struct {
	k reflect.Kind
}

// Kind accepts any non-nil argument of the given kind, e.g. Kind(reflect.Slice)
// for "any slice".
func Kind(k reflect.Kind) Constraint {
	return kindConstraint{k: k}
}

func (c kindConstraint) Satisfied(arg any) bool {
	return arg != nil && reflect.TypeOf(arg).Kind() == c.k
}

func (c kindConstraint) String() string { return "kind " + c.k.String() }

type implementsConstraint struct {
	iface reflect.Type
}

// Implements requires the argument to satisfy interface I. It panics if I is
// not an interface type.
func Implements[I any]() Constraint {
	t := reflect.TypeFor[I]()
	if t.Kind() != reflect.Interface {
		panic(fmt.Sprintf("multimethod: Implements needs an interface type, got %s", t))
	}
	return implementsConstraint{iface: t}
}

func (c implementsConstraint) Satisfied(arg any) bool {
	return arg != nil && reflect.TypeOf(arg).Implements(c.iface)
}

func (c implementsConstraint) String() string { return "implements " + c.iface.String() }

type respondsToConstraint struct {
	names []string
}

// RespondsTo requires the argument's method set to contain every named
// method. Only presence is checked, not the method signatures.
func RespondsTo(names ...string) Constraint {
	return respondsToConstraint{names: append([]string(nil), names...)}
}

func (c respondsToConstraint) Satisfied(arg any) bool {
	if arg == nil {
		return false
	}
	t := reflect.TypeOf(arg)
	for _, n := range c.names {
		if _, ok := t.MethodByName(n); !ok {
			return false
		}
	}
	return true
}

func (c respondsToConstraint) String() string {
	return "responds to " + strings.Join(c.names, ", ")
}
