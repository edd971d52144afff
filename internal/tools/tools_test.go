package tools

import (
	"context"
	"os"
	"testing"

	"github.com/kolah/specwright/internal/artifact"
	"github.com/kolah/specwright/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newToolbox(t *testing.T) (Toolbox, *artifact.Store, *metrics.Recorder) {
	t.Helper()
	store, err := artifact.NewStore(t.TempDir())
	require.NoError(t, err)
	rec := metrics.New()
	return NewToolbox(store, zap.NewNop(), rec), store, rec
}

func TestToolboxNames(t *testing.T) {
	box, _, _ := newToolbox(t)

	var names []string
	for _, tool := range box.All() {
		names = append(names, tool.Name)
	}
	require.Equal(t, []string{
		"save_requirements",
		"save_architecture",
		"save_endpoints",
		"save_openapi_spec",
		"save_documentation",
	}, names)
}

func TestTextToolsPersist(t *testing.T) {
	box, store, _ := newToolbox(t)
	ctx := context.Background()

	status, err := box.SaveRequirements.Call(ctx, `{"requirements": "Users own tasks."}`)
	require.NoError(t, err)
	require.Equal(t, "Requirements saved successfully", status)

	var req map[string]string
	require.NoError(t, store.Load(artifact.Requirements, &req))
	require.Equal(t, "Users own tasks.", req["requirements"])

	status = box.SaveDocumentation.Run(ctx, "# Todo API")
	require.Equal(t, "Documentation saved successfully", status)
	data, err := os.ReadFile(store.Path(artifact.Documentation))
	require.NoError(t, err)
	require.Equal(t, "# Todo API", string(data))
}

func TestJSONToolsRejectMalformedJSON(t *testing.T) {
	box, store, rec := newToolbox(t)
	ctx := context.Background()

	status, err := box.SaveEndpoints.Call(ctx, `{"endpoints_json": "{\"paths\": "}`)
	require.NoError(t, err)
	require.Equal(t, StatusInvalidJSON, status)

	_, statErr := os.Stat(store.Path(artifact.Endpoints))
	require.True(t, os.IsNotExist(statErr))

	status = box.SaveOpenAPISpec.Run(ctx, "not json")
	require.Equal(t, StatusInvalidJSON, status)

	count, err := testutil.GatherAndCount(rec.Registry(), "specwright_tool_calls_total")
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestJSONToolsPersist(t *testing.T) {
	box, store, _ := newToolbox(t)
	ctx := context.Background()

	status, err := box.SaveEndpoints.Call(ctx, `{"endpoints_json": "{\"paths\": {\"/tasks\": {}}}"}`)
	require.NoError(t, err)
	require.Equal(t, "Endpoints saved successfully", status)

	var endpoints map[string]any
	require.NoError(t, store.Load(artifact.Endpoints, &endpoints))
	require.Equal(t, map[string]any{"/tasks": map[string]any{}}, endpoints["paths"])

	// The document itself instead of its JSON text is accepted too.
	status, err = box.SaveOpenAPISpec.Call(ctx, `{"spec_json": {"openapi": "3.0.0"}}`)
	require.NoError(t, err)
	require.Equal(t, "OpenAPI specification saved successfully", status)

	var spec map[string]any
	require.NoError(t, store.Load(artifact.Spec, &spec))
	require.Equal(t, "3.0.0", spec["openapi"])
}

func TestCallRejectsMalformedEnvelope(t *testing.T) {
	box, _, _ := newToolbox(t)
	ctx := context.Background()

	_, err := box.SaveArchitecture.Call(ctx, `not an object`)
	require.ErrorContains(t, err, "decoding save_architecture arguments")

	_, err = box.SaveArchitecture.Call(ctx, `{"other": "x"}`)
	require.ErrorContains(t, err, `missing argument "architecture"`)
}

func TestFind(t *testing.T) {
	box, _, _ := newToolbox(t)

	tool, ok := Find(box.All(), "save_openapi_spec")
	require.True(t, ok)
	require.Equal(t, "spec_json", tool.Param)

	_, ok = Find(box.All(), "delete_everything")
	require.False(t, ok)
}

func TestParameters(t *testing.T) {
	box, _, _ := newToolbox(t)

	params := box.SaveEndpoints.Parameters()
	require.Equal(t, "object", params["type"])
	require.Equal(t, []string{"endpoints_json"}, params["required"])
	props := params["properties"].(map[string]any)
	require.Contains(t, props, "endpoints_json")
}
