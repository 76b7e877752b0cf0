package app_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/metaxml/internal/app"
	"github.com/specialistvlad/metaxml/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const alumno = `alumno {
  nombre = "Matias"
  estado {
    es_regular = true
  }
}
`

const objeto = `objecttype {
  name = "Matias"
  id   = "123456-7"
}
`

func TestRun_SingleFile(t *testing.T) {
	t.Parallel()

	result := testutil.RunApp(t, map[string]string{"alumno.hcl": alumno}, app.Config{DocPath: "alumno.hcl"})
	require.NoError(t, result.Err)

	want := "<alumno nombre=\"Matias\">\n" +
		"\t<estado es_regular=true/>\n" +
		"</alumno>\n"
	assert.Equal(t, want, result.Output)
	testutil.AssertLogged(t, result, "Rendered documents.", "count=1")
}

func TestRun_DirectoryInSortedOrder(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"docs/b.hcl":    alumno,
		"docs/a.hcl":    objeto,
		"docs/skip.txt": "not a document",
	}
	result := testutil.RunApp(t, files, app.Config{DocPath: "docs"})
	require.NoError(t, result.Err)

	want := "<objecttype name=\"Matias\" id=\"123456-7\"/>\n" +
		"<alumno nombre=\"Matias\">\n" +
		"\t<estado es_regular=true/>\n" +
		"</alumno>\n"
	assert.Equal(t, want, result.Output)
	testutil.AssertLogged(t, result, "Discovered documents.", "count=2")
}

func TestRun_Indent(t *testing.T) {
	t.Parallel()

	result := testutil.RunApp(t, map[string]string{"o.hcl": objeto}, app.Config{DocPath: "o.hcl", Indent: 2})
	require.NoError(t, result.Err)
	assert.Equal(t, "\t\t<objecttype name=\"Matias\" id=\"123456-7\"/>\n", result.Output)
}

func TestRun_OutFile(t *testing.T) {
	t.Parallel()

	result := testutil.RunApp(t, map[string]string{"o.hcl": objeto}, app.Config{DocPath: "o.hcl", OutPath: "out.xml"})
	require.NoError(t, result.Err)
	assert.Empty(t, result.Output)

	data, err := os.ReadFile(filepath.Join(result.Dir, "out.xml"))
	require.NoError(t, err)
	assert.Equal(t, "<objecttype name=\"Matias\" id=\"123456-7\"/>\n", string(data))
}

func TestRun_EmptyDirectory(t *testing.T) {
	t.Parallel()

	result := testutil.RunApp(t, map[string]string{"docs/readme.txt": "x"}, app.Config{DocPath: "docs"})
	require.NoError(t, result.Err)
	assert.Empty(t, result.Output)
	testutil.AssertLogged(t, result, "No .hcl documents found")
}

func TestRun_Errors(t *testing.T) {
	t.Parallel()

	result := testutil.RunApp(t, map[string]string{"docs/a.hcl": objeto, "docs/b.hcl": "a {"}, app.Config{DocPath: "docs"})
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "failed to parse HCL document")
	assert.Empty(t, result.Output)

	result = testutil.RunApp(t, nil, app.Config{DocPath: "missing.hcl"})
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "error accessing path")
}
