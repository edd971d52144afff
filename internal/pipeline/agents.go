package pipeline

import (
	"fmt"

	"github.com/kolah/specwright/internal/agent"
	"github.com/kolah/specwright/internal/templates"
	"github.com/kolah/specwright/internal/tools"
)

// Agents are the identities a run invokes.
type Agents struct {
	Requirements     agent.Agent
	Architect        agent.Agent
	EndpointDesigner agent.Agent
	SchemaDesigner   agent.Agent
	Documentation    agent.Agent
	Coordinator      agent.Agent
}

// NewAgents renders each agent's instructions from engine and gives it the
// save tool for the artifact it produces. The coordinator only comments, so
// it gets no tools and cannot overwrite artifacts a phase already persisted.
func NewAgents(engine templates.Engine, box tools.Toolbox) (Agents, error) {
	var a Agents
	specs := []struct {
		dst      *agent.Agent
		name     string
		template string
		tools    []tools.Tool
	}{
		{&a.Requirements, "Requirements Agent", "agents/requirements.tmpl", []tools.Tool{box.SaveRequirements}},
		{&a.Architect, "Architect Agent", "agents/architect.tmpl", []tools.Tool{box.SaveArchitecture}},
		{&a.EndpointDesigner, "Endpoint Designer Agent", "agents/endpoint_designer.tmpl", []tools.Tool{box.SaveEndpoints}},
		{&a.SchemaDesigner, "Schema Designer Agent", "agents/schema_designer.tmpl", []tools.Tool{box.SaveOpenAPISpec}},
		{&a.Documentation, "Documentation Agent", "agents/documentation.tmpl", []tools.Tool{box.SaveDocumentation}},
		{&a.Coordinator, "Coordinator Agent", "agents/coordinator.tmpl", nil},
	}

	for _, s := range specs {
		instructions, err := engine.Execute(s.template, nil)
		if err != nil {
			return Agents{}, fmt.Errorf("rendering %s instructions: %w", s.name, err)
		}
		*s.dst = agent.Agent{Name: s.name, Instructions: instructions, Tools: s.tools}
	}

	return a, nil
}
