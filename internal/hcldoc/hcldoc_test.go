package hcldoc

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/metaxml/internal/scalar"
	"github.com/specialistvlad/metaxml/internal/tag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const alumnoDoc = `
alumno {
  nombre = "Matias"
  legajo = "123456-7"

  telefono {
    content = "1234567890"
  }

  estado {
    es_regular = true
    finales_rendidos { content = 3 }
  }
}
`

func TestDecode_Alumno(t *testing.T) {
	t.Parallel()

	root, err := Decode(context.Background(), []byte(alumnoDoc), "alumno.hcl")
	require.NoError(t, err)

	want := "<alumno nombre=\"Matias\" legajo=\"123456-7\">\n" +
		"\t<telefono>\n" +
		"\t\t\"1234567890\"\n" +
		"\t</telefono>\n" +
		"\t<estado es_regular=true>\n" +
		"\t\t<finales_rendidos>\n" +
		"\t\t\t3\n" +
		"\t\t</finales_rendidos>\n" +
		"\t</estado>\n" +
		"</alumno>"
	assert.Equal(t, want, root.String())
}

func TestDecode_AttributesKeepSourceOrder(t *testing.T) {
	t.Parallel()

	src := `doc {
  zeta  = 1
  alpha = 2
  mid   = null
}`
	root, err := Decode(context.Background(), []byte(src), "order.hcl")
	require.NoError(t, err)

	names := []string{}
	for _, a := range root.Attributes {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, names)

	mid, ok := root.Attribute("mid")
	require.True(t, ok)
	assert.True(t, mid.IsNull())
}

func TestDecode_ContentInterleavesWithBlocks(t *testing.T) {
	t.Parallel()

	src := `p {
  first {}
  content = ["x", 2, false]
  last {}
}`
	root, err := Decode(context.Background(), []byte(src), "mixed.hcl")
	require.NoError(t, err)
	require.Len(t, root.Children, 5)

	assert.Equal(t, "first", root.Children[0].(*tag.Tag).Label)
	assert.True(t, root.Children[1].(scalar.Value).Equal(scalar.String("x")))
	assert.True(t, root.Children[2].(scalar.Value).Equal(scalar.Int(2)))
	assert.True(t, root.Children[3].(scalar.Value).Equal(scalar.Bool(false)))
	assert.Equal(t, "last", root.Children[4].(*tag.Tag).Label)
	assert.Empty(t, root.Attributes)
}

func TestDecode_Functions(t *testing.T) {
	t.Parallel()

	src := `persona {
  nombre = upper("ana")
  saludo = format("hola %s", "mundo")
}`
	root, err := Decode(context.Background(), []byte(src), "fn.hcl")
	require.NoError(t, err)
	assert.Equal(t, `<persona nombre="ANA" saludo="hola mundo"/>`, root.String())
}

func TestDecode_Errors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		src  string
		msg  string
	}{
		{"syntax", "a {", "failed to parse"},
		{"empty", "", "Missing root block"},
		{"two roots", "a {}\nb {}", "Duplicate root block"},
		{"top-level attribute", "x = 1\na {}", "Unexpected top-level attribute"},
		{"labels", `a "name" {}`, "Unexpected block label"},
		{"nested labels", "a {\n  b \"x\" {}\n}", "Unexpected block label"},
		{"object attribute", "a {\n  x = { k = 1 }\n}", "Unsupported attribute value"},
		{"list content", "a {\n  content = [[1]]\n}", "Unsupported content value"},
		{"variables", "a {\n  x = var.y\n}", "Variables not allowed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Decode(context.Background(), []byte(tc.src), "bad.hcl")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.msg)
		})
	}
}

func TestDecodeFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "alumno.hcl")
	require.NoError(t, os.WriteFile(path, []byte(alumnoDoc), 0o644))

	root, err := DecodeFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "alumno", root.Label)
	assert.Len(t, root.ChildTags(), 2)

	_, err = DecodeFile(context.Background(), filepath.Join(dir, "missing.hcl"))
	assert.Error(t, err)
}
