package annotation

import (
	"errors"
	"sort"
	"strconv"

	"github.com/specialistvlad/metaxml/internal/scalar"
)

var (
	// ErrUnknownAnnotationType is matched by UnknownAnnotationTypeError.
	ErrUnknownAnnotationType = errors.New("annotation: unknown annotation type")

	// ErrInvalidAnnotation is returned when a known annotation gets unusable arguments.
	ErrInvalidAnnotation = errors.New("annotation: invalid annotation")
)

// UnknownAnnotationTypeError is returned when an annotation name does not
// resolve to a known record type.
type UnknownAnnotationTypeError struct {
	Name string
}

// Error implements the error interface.
func (e UnknownAnnotationTypeError) Error() string {
	return "annotation: unknown annotation type " + strconv.Quote(e.Name)
}

// Is makes errors.Is(err, ErrUnknownAnnotationType) work.
func (e UnknownAnnotationTypeError) Is(target error) bool { return target == ErrUnknownAnnotationType }

// Record is a declarative marker attached to a type or a member.
type Record interface {
	// Kind is the name the record is declared with, e.g. "Label".
	Kind() string
	String() string
}

// Label renames the type or member it is attached to.
type Label struct {
	Name string
}

// Kind implements Record.
func (Label) Kind() string { return "Label" }

func (l Label) String() string { return "Label(" + strconv.Quote(l.Name) + ")" }

// Ignore excludes the type or member it is attached to.
type Ignore struct{}

// Kind implements Record.
func (Ignore) Kind() string { return "Ignore" }

func (Ignore) String() string { return "Ignore" }

// constructor builds a record from declaration arguments.
type constructor func(args []scalar.Value) (Record, error)

var constructors = map[string]constructor{
	"Label": func(args []scalar.Value) (Record, error) {
		if len(args) != 1 || args[0].Kind() != scalar.KindString {
			return nil, invalid("Label", "takes exactly one string argument")
		}
		return Label{Name: args[0].Native().(string)}, nil
	},
	"Ignore": func(args []scalar.Value) (Record, error) {
		if len(args) != 0 {
			return nil, invalid("Ignore", "takes no arguments")
		}
		return Ignore{}, nil
	},
}

func invalid(name, reason string) error {
	return &invalidError{name: name, reason: reason}
}

type invalidError struct {
	name, reason string
}

func (e *invalidError) Error() string {
	return "annotation: " + e.name + " " + e.reason
}

func (e *invalidError) Unwrap() error { return ErrInvalidAnnotation }

// Resolve builds the record declared under name with the given arguments.
func Resolve(name string, args ...any) (Record, error) {
	ctor, ok := constructors[name]
	if !ok {
		return nil, UnknownAnnotationTypeError{Name: name}
	}
	vals := make([]scalar.Value, len(args))
	for i, a := range args {
		v, err := scalar.Of(a)
		if err != nil {
			return nil, invalid(name, "argument "+strconv.Itoa(i)+": "+err.Error())
		}
		vals[i] = v
	}
	return ctor(vals)
}

// Kinds lists the annotation names Resolve understands.
func Kinds() []string {
	out := make([]string, 0, len(constructors))
	for k := range constructors {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// HasIgnore reports whether records contain an Ignore.
func HasIgnore(records []Record) bool {
	for _, r := range records {
		if _, ok := r.(Ignore); ok {
			return true
		}
	}
	return false
}

// Labels returns every Label in records, in order.
func Labels(records []Record) []Label {
	var out []Label
	for _, r := range records {
		if l, ok := r.(Label); ok {
			out = append(out, l)
		}
	}
	return out
}
