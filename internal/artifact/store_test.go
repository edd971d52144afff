package artifact

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStoreWritesEveryArtifact(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	store, err := NewStore(dir)
	require.NoError(t, err)

	_, err = store.SaveRequirements("# Purpose\nTodo lists.")
	require.NoError(t, err)
	_, err = store.SaveArchitecture("REST resources: users, tasks")
	require.NoError(t, err)
	_, err = store.SaveEndpoints(map[string]any{"paths": map[string]any{}})
	require.NoError(t, err)
	_, err = store.SaveSpec(map[string]any{"openapi": "3.0.0"})
	require.NoError(t, err)
	path, err := store.SaveDocumentation("# Todo API")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "api_documentation.md"), path)

	for _, name := range Names {
		_, err := os.Stat(store.Path(name))
		require.NoError(t, err, "missing %s", FileName(name))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, len(Names), "temp files must not be left behind")
}

func TestStoreRoundTrip(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.SaveRequirements("users & <tasks>")
	require.NoError(t, err)

	var got struct {
		Requirements string `json:"requirements"`
	}
	require.NoError(t, store.Load(Requirements, &got))
	require.Equal(t, "users & <tasks>", got.Requirements)

	data, err := os.ReadFile(store.Path(Requirements))
	require.NoError(t, err)
	require.Equal(t, "{\n  \"requirements\": \"users & <tasks>\"\n}\n", string(data))
}

func TestStoreOverwrite(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.SaveArchitecture("first")
	require.NoError(t, err)
	_, err = store.SaveArchitecture("second")
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, store.Load(Architecture, &got))
	require.Equal(t, "second", got["architecture"])
}

func TestStoreLoadErrors(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	var v any
	require.ErrorContains(t, store.Load(Spec, &v), "reading openapi_specification.json")
	require.ErrorContains(t, store.Load(Documentation, &v), "not a JSON artifact")

	require.NoError(t, os.WriteFile(store.Path(Endpoints), []byte("{broken"), 0644))
	require.ErrorContains(t, store.Load(Endpoints, &v), "decoding api_endpoints.json")
}
