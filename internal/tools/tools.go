// Package tools defines the callable tools agents use to persist artifacts.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kolah/specwright/internal/artifact"
	"github.com/kolah/specwright/internal/metrics"
	"go.uber.org/zap"
)

// StatusInvalidJSON is returned to the agent when a JSON tool receives text
// that does not parse.
const StatusInvalidJSON = "Error: Invalid JSON format"

// Tool is a function an agent may call with a single string argument.
type Tool struct {
	Name             string
	Description      string
	Param            string
	ParamDescription string

	run func(ctx context.Context, value string) string
}

// Parameters returns the JSON schema of the tool's argument object.
func (t Tool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			t.Param: map[string]any{
				"type":        "string",
				"description": t.ParamDescription,
			},
		},
		"required":             []string{t.Param},
		"additionalProperties": false,
	}
}

// Run executes the tool with an already decoded argument.
func (t Tool) Run(ctx context.Context, value string) string {
	return t.run(ctx, value)
}

// Call decodes a JSON argument object as sent by a model and runs the tool.
// An envelope that does not decode, or lacks the parameter, is an error.
func (t Tool) Call(ctx context.Context, arguments string) (string, error) {
	var args map[string]any
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return "", fmt.Errorf("decoding %s arguments: %w", t.Name, err)
	}
	raw, ok := args[t.Param]
	if !ok {
		return "", fmt.Errorf("%s: missing argument %q", t.Name, t.Param)
	}
	value, ok := raw.(string)
	if !ok {
		// A JSON value passed in place of its text is re-encoded.
		data, err := json.Marshal(raw)
		if err != nil {
			return "", fmt.Errorf("%s: argument %q: %w", t.Name, t.Param, err)
		}
		value = string(data)
	}
	return t.run(ctx, value), nil
}

// Find returns the tool with the given name.
func Find(list []Tool, name string) (Tool, bool) {
	for _, t := range list {
		if t.Name == name {
			return t, true
		}
	}
	return Tool{}, false
}

// Toolbox holds the five save tools bound to one store.
type Toolbox struct {
	SaveRequirements  Tool
	SaveArchitecture  Tool
	SaveEndpoints     Tool
	SaveOpenAPISpec   Tool
	SaveDocumentation Tool
}

func (b Toolbox) All() []Tool {
	return []Tool{b.SaveRequirements, b.SaveArchitecture, b.SaveEndpoints, b.SaveOpenAPISpec, b.SaveDocumentation}
}

// NewToolbox binds the save tools to store. rec may be nil.
func NewToolbox(store *artifact.Store, logger *zap.Logger, rec *metrics.Recorder) Toolbox {
	s := saver{store: store, logger: logger, rec: rec}

	return Toolbox{
		SaveRequirements: Tool{
			Name:             "save_requirements",
			Description:      "Save the gathered requirements to a file",
			Param:            "requirements",
			ParamDescription: "The requirements document as markdown text",
			run: func(_ context.Context, value string) string {
				return s.text("save_requirements", "Requirements", value, s.store.SaveRequirements)
			},
		},
		SaveArchitecture: Tool{
			Name:             "save_architecture",
			Description:      "Save the API architecture to a file",
			Param:            "architecture",
			ParamDescription: "The architecture document as markdown text",
			run: func(_ context.Context, value string) string {
				return s.text("save_architecture", "Architecture", value, s.store.SaveArchitecture)
			},
		},
		SaveEndpoints: Tool{
			Name:             "save_endpoints",
			Description:      "Save the API endpoints to a file",
			Param:            "endpoints_json",
			ParamDescription: "JSON text of an object with a \"paths\" property",
			run: func(_ context.Context, value string) string {
				return s.json("save_endpoints", "Endpoints", value, s.store.SaveEndpoints)
			},
		},
		SaveOpenAPISpec: Tool{
			Name:             "save_openapi_spec",
			Description:      "Save the complete OpenAPI specification to a file",
			Param:            "spec_json",
			ParamDescription: "JSON text of the full OpenAPI 3.0 document",
			run: func(_ context.Context, value string) string {
				return s.json("save_openapi_spec", "OpenAPI specification", value, s.store.SaveSpec)
			},
		},
		SaveDocumentation: Tool{
			Name:             "save_documentation",
			Description:      "Save the API documentation to a markdown file",
			Param:            "documentation",
			ParamDescription: "The documentation as markdown text",
			run: func(_ context.Context, value string) string {
				return s.text("save_documentation", "Documentation", value, s.store.SaveDocumentation)
			},
		},
	}
}

type saver struct {
	store  *artifact.Store
	logger *zap.Logger
	rec    *metrics.Recorder
}

func (s saver) text(tool, label, value string, save func(string) (string, error)) string {
	path, err := save(value)
	return s.report(tool, label, path, err)
}

func (s saver) json(tool, label, value string, save func(any) (string, error)) string {
	var v any
	if err := json.Unmarshal([]byte(value), &v); err != nil {
		s.logger.Warn("tool received invalid JSON", zap.String("tool", tool), zap.Error(err))
		s.rec.RecordToolCall(tool, false)
		return StatusInvalidJSON
	}
	path, err := save(v)
	return s.report(tool, label, path, err)
}

func (s saver) report(tool, label, path string, err error) string {
	if err != nil {
		s.logger.Error("tool failed to save artifact", zap.String("tool", tool), zap.Error(err))
		s.rec.RecordToolCall(tool, false)
		return fmt.Sprintf("Error: %s could not be saved: %v", label, err)
	}
	s.logger.Info("artifact saved by tool", zap.String("tool", tool), zap.String("path", path))
	s.rec.RecordToolCall(tool, true)
	return label + " saved successfully"
}
