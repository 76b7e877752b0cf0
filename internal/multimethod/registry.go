package multimethod

import (
	"fmt"
	"log/slog"
	"reflect"
	"sort"

	"github.com/specialistvlad/metaxml/internal/ctxlog"
)

// Method is the dispatcher installed for a multimethod name. It is called
// with the instance the method is sent to and the actual arguments.
type Method func(target any, args ...any) (any, error)

// Registry holds one Table per owning Go type.
type Registry struct {
	tables map[reflect.Type]*Table
	logger *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger routes registration and dispatch tracing to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates an empty registry. Without WithLogger it logs nowhere.
func New(opts ...Option) *Registry {
	r := &Registry{
		tables: make(map[reflect.Type]*Table),
		logger: ctxlog.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Table returns the table owned by the given type, creating it on first use.
func (r *Registry) Table(owner reflect.Type) *Table {
	if owner == nil {
		panic("multimethod: nil owner type")
	}
	if t, ok := r.tables[owner]; ok {
		return t
	}
	t := &Table{
		owner:      owner,
		signatures: make(map[string][]*Signature),
		installed:  make(map[string]Method),
		logger:     r.logger.With("owner", owner.String()),
	}
	r.tables[owner] = t
	return t
}

// TableFor returns the table owned by T.
func TableFor[T any](r *Registry) *Table {
	return r.Table(reflect.TypeFor[T]())
}

// Register appends sig to owner's list for name and returns the dispatcher.
func (r *Registry) Register(owner reflect.Type, name string, sig *Signature) (Method, error) {
	return r.Table(owner).Define(name, sig)
}

// Send dispatches name on target's dynamic type. A pointer target falls back
// to the table of its element type when the pointer type owns none; bound
// handlers taking the element by value then receive the pointed-to value.
func (r *Registry) Send(target any, name string, args ...any) (any, error) {
	if target == nil {
		return nil, UnknownMethodError{Owner: "nil", Method: name}
	}
	tt := reflect.TypeOf(target)
	if t, ok := r.tables[tt]; ok {
		if m, ok := t.Method(name); ok {
			return m(target, args...)
		}
	}
	if tt.Kind() == reflect.Pointer {
		if t, ok := r.tables[tt.Elem()]; ok {
			if m, ok := t.Method(name); ok {
				return m(target, args...)
			}
		}
	}
	return nil, UnknownMethodError{Owner: tt.String(), Method: name}
}

// Table is the multimethod table of a single owning type.
type Table struct {
	owner      reflect.Type
	signatures map[string][]*Signature
	installed  map[string]Method
	logger     *slog.Logger
}

// Owner returns the type that owns the table.
func (t *Table) Owner() reflect.Type { return t.owner }

// Define appends sig to the list for name and installs the dispatcher for
// name if it is not installed yet. Every call for the same name returns the
// same dispatcher, so defining more signatures never stacks dispatch layers.
//
// A bound signature whose handler cannot take the owner type (or a pointer to
// it) as receiver is rejected with ReceiverMismatchError and not recorded.
func (t *Table) Define(name string, sig *Signature) (Method, error) {
	if sig == nil {
		return nil, fmt.Errorf("%w: nil signature for %s", ErrInvalidHandler, name)
	}
	if !sig.AcceptsReceiver(t.owner) {
		return nil, ReceiverMismatchError{Owner: t.owner.String(), Method: name, Receiver: sig.fnType.In(0).String()}
	}
	t.signatures[name] = append(t.signatures[name], sig)
	t.logger.Debug("Registering multimethod signature.",
		"method", name, "signature", sig.String(), "position", len(t.signatures[name])-1)

	if m, ok := t.installed[name]; ok {
		return m, nil
	}
	m := t.dispatcher(name)
	t.installed[name] = m
	t.logger.Debug("Installed multimethod dispatcher.", "method", name)
	return m, nil
}

// Def builds a free-standing signature and defines it under name.
func (t *Table) Def(name string, constraints []Constraint, handler any) (Method, error) {
	sig, err := NewSignature(constraints, handler)
	if err != nil {
		return nil, err
	}
	return t.Define(name, sig)
}

// DefMethod builds a receiver-bound signature and defines it under name.
func (t *Table) DefMethod(name string, constraints []Constraint, handler any) (Method, error) {
	sig, err := NewMethod(constraints, handler)
	if err != nil {
		return nil, err
	}
	return t.Define(name, sig)
}

// MustDef is Def that panics on an ill-formed signature.
func (t *Table) MustDef(name string, constraints []Constraint, handler any) Method {
	m, err := t.Def(name, constraints, handler)
	if err != nil {
		panic(err)
	}
	return m
}

// MustDefMethod is DefMethod that panics on an ill-formed signature.
func (t *Table) MustDefMethod(name string, constraints []Constraint, handler any) Method {
	m, err := t.DefMethod(name, constraints, handler)
	if err != nil {
		panic(err)
	}
	return m
}

// Method returns the installed dispatcher for name.
func (t *Table) Method(name string) (Method, bool) {
	m, ok := t.installed[name]
	return m, ok
}

// Call dispatches name on target through this table.
func (t *Table) Call(target any, name string, args ...any) (any, error) {
	m, ok := t.installed[name]
	if !ok {
		return nil, UnknownMethodError{Owner: t.owner.String(), Method: name}
	}
	return m(target, args...)
}

// Signatures returns a copy of the signatures registered under name, in
// registration order.
func (t *Table) Signatures(name string) []*Signature {
	return append([]*Signature(nil), t.signatures[name]...)
}

// Names returns the registered method names, sorted.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.signatures))
	for n := range t.signatures {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// dispatcher reads the signature list on every call, so signatures defined
// after installation take part in dispatch.
func (t *Table) dispatcher(name string) Method {
	return func(target any, args ...any) (any, error) {
		for i, sig := range t.signatures[name] {
			if sig.Matches(args...) {
				t.logger.Debug("Dispatching multimethod.", "method", name, "signature", sig.String(), "position", i)
				return sig.InvokeBound(target, args...)
			}
		}
		t.logger.Debug("No multimethod signature matched.", "method", name, "arg_types", typeNames(args))
		return nil, NoMatchingSignatureError{Owner: t.owner.String(), Method: name, ArgTypes: typeNames(args)}
	}
}
