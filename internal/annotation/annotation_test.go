package annotation

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type alumno struct {
	_        struct{} `meta:"Label(\"estudiante\")"`
	Nombre   string
	Legajo   string `meta:"Label(id)"`
	Telefono string `meta:"Ignore"`
}

type broken struct {
	Campo string `meta:"Renombrar(\"x\")"`
}

type plain struct {
	Nombre string
}

func TestResolve(t *testing.T) {
	t.Parallel()

	r, err := Resolve("Label", "alias")
	require.NoError(t, err)
	assert.Equal(t, Label{Name: "alias"}, r)
	assert.Equal(t, `Label("alias")`, r.String())

	r, err = Resolve("Ignore")
	require.NoError(t, err)
	assert.Equal(t, Ignore{}, r)
	assert.Equal(t, "Ignore", r.Kind())

	_, err = Resolve("Renombrar", "x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownAnnotationType))
	var ut UnknownAnnotationTypeError
	require.True(t, errors.As(err, &ut))
	assert.Equal(t, "Renombrar", ut.Name)

	for _, args := range [][]any{nil, {1}, {"a", "b"}, {[]int{1}}} {
		_, err = Resolve("Label", args...)
		assert.True(t, errors.Is(err, ErrInvalidAnnotation), "args %v", args)
	}
	_, err = Resolve("Ignore", "x")
	assert.True(t, errors.Is(err, ErrInvalidAnnotation))

	assert.Equal(t, []string{"Ignore", "Label"}, Kinds())
}

func TestParseTag(t *testing.T) {
	t.Parallel()

	cases := []struct {
		tag  string
		want []Record
	}{
		{"", nil},
		{"Ignore", []Record{Ignore{}}},
		{`Label("alias")`, []Record{Label{Name: "alias"}}},
		{"Label(alias)", []Record{Label{Name: "alias"}}},
		{`Label("a"), Ignore, Label(b)`, []Record{Label{Name: "a"}, Ignore{}, Label{Name: "b"}}},
	}
	for _, tc := range cases {
		got, err := ParseTag(tc.tag)
		require.NoError(t, err, tc.tag)
		assert.Equal(t, tc.want, got, tc.tag)
	}
}

func TestParseTag_Errors(t *testing.T) {
	t.Parallel()

	_, err := ParseTag("Unknown")
	assert.True(t, errors.Is(err, ErrUnknownAnnotationType))

	_, err = ParseTag("Label(")
	assert.Error(t, err)

	_, err = ParseTag(`"just a string"`)
	assert.Error(t, err)

	_, err = ParseTag("a.b")
	assert.Error(t, err)

	_, err = ParseTag("Label(1 + x)")
	assert.Error(t, err)
}

func TestStore_StructTags(t *testing.T) {
	t.Parallel()

	s := NewStore(nil)
	typ := reflect.TypeFor[alumno]()

	class, err := s.ClassAnnotations(typ)
	require.NoError(t, err)
	assert.Equal(t, []Record{Label{Name: "estudiante"}}, class)

	legajo, err := s.MemberAnnotations(typ, "Legajo")
	require.NoError(t, err)
	assert.Equal(t, []Record{Label{Name: "id"}}, legajo)

	tel, err := s.MemberAnnotations(reflect.TypeFor[*alumno](), "Telefono")
	require.NoError(t, err)
	assert.True(t, HasIgnore(tel))

	nombre, err := s.MemberAnnotations(typ, "Nombre")
	require.NoError(t, err)
	assert.Empty(t, nombre)
}

func TestStore_StructTagErrorSurfaces(t *testing.T) {
	t.Parallel()

	s := NewStore(nil)
	_, err := s.ClassAnnotations(reflect.TypeFor[broken]())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownAnnotationType))
	assert.Contains(t, err.Error(), "Campo")

	// The failure is not cached as success.
	_, err = s.MemberAnnotations(reflect.TypeFor[broken](), "Campo")
	assert.Error(t, err)
}

func TestStore_ExplicitDeclarationsFollowTags(t *testing.T) {
	t.Parallel()

	s := NewStore(nil)
	For[alumno](s).
		Class(Ignore{}).
		Member("Nombre", Label{Name: "name"}).
		Member("Legajo", Ignore{})

	class, err := s.ClassAnnotations(reflect.TypeFor[alumno]())
	require.NoError(t, err)
	assert.Equal(t, []Record{Label{Name: "estudiante"}, Ignore{}}, class)

	legajo, err := s.MemberAnnotations(reflect.TypeFor[alumno](), "Legajo")
	require.NoError(t, err)
	assert.Equal(t, []Record{Label{Name: "id"}, Ignore{}}, legajo)

	nombre, err := s.MemberAnnotations(reflect.TypeFor[alumno](), "Nombre")
	require.NoError(t, err)
	assert.Equal(t, []Label{{Name: "name"}}, Labels(nombre))
}

func TestQueue_CaptureMovesAndClears(t *testing.T) {
	t.Parallel()

	s := NewStore(nil)
	typ := reflect.TypeFor[plain]()
	var q Queue

	require.NoError(t, q.Mark("Label", "persona"))
	q.MarkPending(Ignore{})
	assert.Equal(t, 2, q.Len())
	assert.Equal(t, []Record{Label{Name: "persona"}, Ignore{}}, q.Pending())

	q.CaptureForType(s, typ)
	assert.Equal(t, 0, q.Len())

	class, err := s.ClassAnnotations(typ)
	require.NoError(t, err)
	assert.Equal(t, []Record{Label{Name: "persona"}, Ignore{}}, class)

	// An empty capture does not touch the member.
	q.CaptureForMember(s, typ, "Nombre")
	nombre, err := s.MemberAnnotations(typ, "Nombre")
	require.NoError(t, err)
	assert.Empty(t, nombre)

	q.MarkPending(Label{Name: "n"})
	q.CaptureForMember(s, typ, "Nombre")
	nombre, err = s.MemberAnnotations(typ, "Nombre")
	require.NoError(t, err)
	assert.Equal(t, []Record{Label{Name: "n"}}, nombre)

	// Nothing leaks into the next capture.
	q.CaptureForType(s, typ)
	class, err = s.ClassAnnotations(typ)
	require.NoError(t, err)
	assert.Len(t, class, 2)

	err = q.Mark("Nope")
	assert.True(t, errors.Is(err, ErrUnknownAnnotationType))
	assert.Equal(t, 0, q.Len())
}

func TestHasIgnoreAndLabels(t *testing.T) {
	t.Parallel()

	records := []Record{Label{Name: "a"}, Label{Name: "b"}}
	assert.False(t, HasIgnore(records))
	assert.Len(t, Labels(records), 2)
	assert.True(t, HasIgnore(append(records, Ignore{})))
	assert.Nil(t, Labels(nil))
}
