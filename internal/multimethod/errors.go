package multimethod

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
)

var (
	// ErrArityMismatch is matched by ArityMismatchError.
	ErrArityMismatch = errors.New("multimethod: arity mismatch")

	// ErrArgumentMismatch is matched by ArgumentMismatchError.
	ErrArgumentMismatch = errors.New("multimethod: argument mismatch")

	// ErrNoMatchingSignature is matched by NoMatchingSignatureError.
	ErrNoMatchingSignature = errors.New("multimethod: no matching signature")

	// ErrUnknownMethod is matched by UnknownMethodError.
	ErrUnknownMethod = errors.New("multimethod: unknown method")

	// ErrReceiverMismatch is matched by ReceiverMismatchError.
	ErrReceiverMismatch = errors.New("multimethod: receiver mismatch")

	// ErrInvalidHandler is returned when a handler is not a usable function.
	ErrInvalidHandler = errors.New("multimethod: invalid handler")
)

// ArityMismatchError is returned when a signature is built with a constraint
// count that differs from the number of parameters its handler accepts.
type ArityMismatchError struct {
	Constraints  int
	HandlerArity int
	// Bound is true for NewMethod signatures, whose handler arity includes the receiver.
	Bound bool
}

// Error implements the error interface.
func (e ArityMismatchError) Error() string {
	msg := "multimethod: " + strconv.Itoa(e.Constraints) + " constraints but handler takes " + strconv.Itoa(e.HandlerArity) + " parameters"
	if e.Bound {
		msg += " (including receiver)"
	}
	return msg
}

// Is makes errors.Is(err, ErrArityMismatch) work.
func (e ArityMismatchError) Is(target error) bool { return target == ErrArityMismatch }

// ReceiverMismatchError is returned when a bound signature is defined on a
// table whose owner type its handler cannot take as receiver.
type ReceiverMismatchError struct {
	Owner    string
	Method   string
	Receiver string
}

// Error implements the error interface.
func (e ReceiverMismatchError) Error() string {
	// Example: multimethod: "greet" on main.Greeter has a handler taking receiver *main.Other
	return "multimethod: " + strconv.Quote(e.Method) + " on " + e.Owner +
		" has a handler taking receiver " + e.Receiver
}

// Is makes errors.Is(err, ErrReceiverMismatch) work.
func (e ReceiverMismatchError) Is(target error) bool { return target == ErrReceiverMismatch }

// ArgumentMismatchError is returned when a signature is invoked directly with
// arguments it does not accept.
type ArgumentMismatchError struct {
	Want []string
	Got  []string
	// Receiver is set when the target could not be passed to a bound handler.
	Receiver string
}

// Error implements the error interface.
func (e ArgumentMismatchError) Error() string {
	if e.Receiver != "" {
		return "multimethod: handler cannot take receiver of type " + e.Receiver
	}
	return "multimethod: signature (" + strings.Join(e.Want, ", ") + ") does not accept (" + strings.Join(e.Got, ", ") + ")"
}

// Is makes errors.Is(err, ErrArgumentMismatch) work.
func (e ArgumentMismatchError) Is(target error) bool { return target == ErrArgumentMismatch }

// NoMatchingSignatureError is returned when dispatch tried every registered
// signature of a method and none accepted the arguments.
type NoMatchingSignatureError struct {
	Owner    string
	Method   string
	ArgTypes []string
}

// Error implements the error interface.
func (e NoMatchingSignatureError) Error() string {
	// Example: multimethod: no signature of "combine" on *main.Combiner matches (int, int)
	return "multimethod: no signature of " + strconv.Quote(e.Method) + " on " + e.Owner +
		" matches (" + strings.Join(e.ArgTypes, ", ") + ")"
}

// Is makes errors.Is(err, ErrNoMatchingSignature) work.
func (e NoMatchingSignatureError) Is(target error) bool { return target == ErrNoMatchingSignature }

// UnknownMethodError is returned by Send when the target's type has no
// multimethod of that name.
type UnknownMethodError struct {
	Owner  string
	Method string
}

// Error implements the error interface.
func (e UnknownMethodError) Error() string {
	return "multimethod: " + e.Owner + " has no multimethod " + strconv.Quote(e.Method)
}

// Is makes errors.Is(err, ErrUnknownMethod) work.
func (e UnknownMethodError) Is(target error) bool { return target == ErrUnknownMethod }

// typeNames renders the dynamic type of each argument, "nil" for untyped nil.
func typeNames(args []any) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = typeName(a)
	}
	return out
}

func typeName(a any) string {
	if a == nil {
		return "nil"
	}
	return reflect.TypeOf(a).String()
}
