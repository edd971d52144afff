package tools

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type requirementsInput struct {
	Requirements string `json:"requirements" jsonschema:"The requirements document as markdown text"`
}

type architectureInput struct {
	Architecture string `json:"architecture" jsonschema:"The architecture document as markdown text"`
}

type endpointsInput struct {
	EndpointsJSON string `json:"endpoints_json" jsonschema:"JSON text of an object with a paths property"`
}

type specInput struct {
	SpecJSON string `json:"spec_json" jsonschema:"JSON text of the full OpenAPI 3.0 document"`
}

type documentationInput struct {
	Documentation string `json:"documentation" jsonschema:"The documentation as markdown text"`
}

type saveOutput struct {
	Status string `json:"status" jsonschema:"Outcome of the save"`
}

// NewMCPServer returns an MCP server exposing every tool in box.
func NewMCPServer(box Toolbox, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "specwright",
		Version: version,
	}, nil)

	addTool(server, box.SaveRequirements, func(in requirementsInput) string { return in.Requirements })
	addTool(server, box.SaveArchitecture, func(in architectureInput) string { return in.Architecture })
	addTool(server, box.SaveEndpoints, func(in endpointsInput) string { return in.EndpointsJSON })
	addTool(server, box.SaveOpenAPISpec, func(in specInput) string { return in.SpecJSON })
	addTool(server, box.SaveDocumentation, func(in documentationInput) string { return in.Documentation })

	return server
}

func addTool[In any](server *mcp.Server, t Tool, value func(In) string) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        t.Name,
		Description: t.Description,
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in In) (*mcp.CallToolResult, saveOutput, error) {
		status := t.Run(ctx, value(in))
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: status}},
			IsError: strings.HasPrefix(status, "Error:"),
		}, saveOutput{Status: status}, nil
	})
}
