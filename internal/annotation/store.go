package annotation

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/specialistvlad/metaxml/internal/ctxlog"
)

// entry holds the annotations of one type.
type entry struct {
	class   []Record
	members map[string][]Record
	// tagsLoaded is set once the struct tags of the type have been read.
	tagsLoaded bool
}

// Store holds class-level and member-level annotations per Go type.
//
// Annotations reach the store three ways: explicit Declare/DeclareMember
// calls, a Queue capture, or `meta` struct tags, which are read once per type
// the first time the type is looked up.
type Store struct {
	types  map[reflect.Type]*entry
	logger *slog.Logger
}

// NewStore creates an empty store. A nil logger logs nowhere.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = ctxlog.Discard()
	}
	return &Store{types: make(map[reflect.Type]*entry), logger: logger}
}

func (s *Store) entry(t reflect.Type) *entry {
	t = baseType(t)
	e, ok := s.types[t]
	if !ok {
		e = &entry{members: make(map[string][]Record)}
		s.types[t] = e
	}
	return e
}

// Declare attaches records to the type itself.
func (s *Store) Declare(t reflect.Type, records ...Record) {
	if len(records) == 0 {
		return
	}
	e := s.entry(t)
	e.class = append(e.class, records...)
	s.logger.Debug("Declared type annotations.", "type", baseType(t).String(), "annotations", fmt.Sprint(records))
}

// DeclareMember attaches records to the named member (Go field name) of t.
func (s *Store) DeclareMember(t reflect.Type, member string, records ...Record) {
	if len(records) == 0 {
		return
	}
	e := s.entry(t)
	e.members[member] = append(e.members[member], records...)
	s.logger.Debug("Declared member annotations.", "type", baseType(t).String(), "member", member, "annotations", fmt.Sprint(records))
}

// ClassAnnotations returns the annotations of the type itself.
func (s *Store) ClassAnnotations(t reflect.Type) ([]Record, error) {
	e, err := s.load(t)
	if err != nil {
		return nil, err
	}
	return append([]Record(nil), e.class...), nil
}

// MemberAnnotations returns the annotations of one member of t.
func (s *Store) MemberAnnotations(t reflect.Type, member string) ([]Record, error) {
	e, err := s.load(t)
	if err != nil {
		return nil, err
	}
	return append([]Record(nil), e.members[member]...), nil
}

// load reads the `meta` struct tags of t the first time t is seen. A field
// named "_" carries the annotations of the type itself.
func (s *Store) load(t reflect.Type) (*entry, error) {
	t = baseType(t)
	e := s.entry(t)
	if e.tagsLoaded {
		return e, nil
	}
	e.tagsLoaded = true

	if t.Kind() != reflect.Struct {
		return e, nil
	}

	var class []Record
	members := make(map[string][]Record)
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		raw, ok := f.Tag.Lookup(TagKey)
		if !ok {
			continue
		}
		records, err := ParseTag(raw)
		if err != nil {
			e.tagsLoaded = false
			return nil, fmt.Errorf("type %s, field %s: %w", t, f.Name, err)
		}
		if f.Name == "_" {
			class = append(class, records...)
		} else {
			members[f.Name] = append(members[f.Name], records...)
		}
	}

	// Tags are part of the type declaration, so they go before anything
	// declared explicitly later.
	e.class = append(class, e.class...)
	for name, records := range members {
		e.members[name] = append(records, e.members[name]...)
	}
	s.logger.Debug("Loaded struct tag annotations.", "type", t.String(), "class", len(class), "members", len(members))
	return e, nil
}

// For starts a fluent declaration for T.
func For[T any](s *Store) *Declaration {
	return &Declaration{store: s, t: reflect.TypeFor[T]()}
}

// Declaration attaches annotations to one type at its declaration site.
type Declaration struct {
	store *Store
	t     reflect.Type
}

// Class attaches records to the type.
func (d *Declaration) Class(records ...Record) *Declaration {
	d.store.Declare(d.t, records...)
	return d
}

// Member attaches records to a member of the type.
func (d *Declaration) Member(name string, records ...Record) *Declaration {
	d.store.DeclareMember(d.t, name, records...)
	return d
}

func baseType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
