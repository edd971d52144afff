// Package pipeline drives the agents through the phases that turn a brief
// into an OpenAPI document and its documentation.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/kolah/specwright/internal/agent"
	"github.com/kolah/specwright/internal/artifact"
	"github.com/kolah/specwright/internal/extract"
	"github.com/kolah/specwright/internal/loader"
	"github.com/kolah/specwright/internal/metrics"
	"github.com/kolah/specwright/internal/templates"
	"go.uber.org/zap"
)

var ErrEmptyBrief = errors.New("API description is empty")

type Options struct {
	Invoker agent.Invoker
	Store   *artifact.Store
	Agents  Agents
	Prompts templates.Engine
	Logger  *zap.Logger
	// Metrics may be nil.
	Metrics *metrics.Recorder
	// Out receives the phase narrative. Defaults to io.Discard.
	Out io.Writer
	// Lint checks the final document with the OpenAPI validator.
	Lint bool
}

type Pipeline struct {
	invoker agent.Invoker
	store   *artifact.Store
	agents  Agents
	prompts templates.Engine
	logger  *zap.Logger
	rec     *metrics.Recorder
	out     io.Writer
	lint    bool
}

func New(opts Options) *Pipeline {
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		invoker: opts.Invoker,
		store:   opts.Store,
		agents:  opts.Agents,
		prompts: opts.Prompts,
		logger:  logger,
		rec:     opts.Metrics,
		out:     out,
		lint:    opts.Lint,
	}
}

// Result holds every artifact a run produced. It is returned on failure too,
// with State set to the phase that failed.
type Result struct {
	Brief         string
	Requirements  string
	Architecture  string
	Endpoints     map[string]any
	Spec          *SpecDocument
	Documentation string
	// Commentary is the coordinator output in the order it was given.
	Commentary []string
	// Warnings lists every recovered failure.
	Warnings []string
	State    State
}

// promptData is the value every prompt template is rendered with.
type promptData struct {
	Brief        string
	Requirements string
	Architecture string
	Endpoints    map[string]any
	Spec         *SpecDocument
}

type run struct {
	*Pipeline
	res *Result
}

// Run executes every phase in order. Any invocation or persistence error
// stops the run; extraction failures fall back to defaults and are reported
// as warnings.
func (p *Pipeline) Run(ctx context.Context, brief string) (*Result, error) {
	brief = strings.TrimSpace(brief)
	res := &Result{Brief: brief, State: StateStart}
	if brief == "" {
		return res, ErrEmptyBrief
	}

	r := &run{Pipeline: p, res: res}
	if err := r.execute(ctx); err != nil {
		p.logger.Error("run failed", zap.Stringer("state", res.State), zap.Error(err))
		return res, err
	}
	return res, nil
}

func (r *run) execute(ctx context.Context) error {
	if err := r.coordinate(ctx, "prompts/guidance.tmpl", "Coordinator's Guidance"); err != nil {
		return err
	}
	fmt.Fprintln(r.out, "\nStarting the API specification generation process...")

	r.res.State = StateRequirements
	if err := r.requirements(ctx); err != nil {
		return err
	}
	if err := r.coordinate(ctx, "prompts/requirements_feedback.tmpl", "Coordinator's Feedback on Requirements"); err != nil {
		return err
	}

	r.res.State = StateArchitecture
	if err := r.architecture(ctx); err != nil {
		return err
	}
	if err := r.coordinate(ctx, "prompts/architecture_feedback.tmpl", "Coordinator's Feedback on Architecture"); err != nil {
		return err
	}

	r.res.State = StateEndpoints
	if err := r.endpoints(ctx); err != nil {
		return err
	}
	if err := r.coordinate(ctx, "prompts/endpoints_feedback.tmpl", "Coordinator's Feedback on Endpoints"); err != nil {
		return err
	}

	r.res.State = StateSpecAndDocs
	if err := r.specAndDocs(ctx); err != nil {
		return err
	}

	if err := r.coordinate(ctx, "prompts/final.tmpl", "Coordinator's Final Message"); err != nil {
		return err
	}
	r.res.State = StateDone

	fmt.Fprintln(r.out, "\nAPI specification generation complete!")
	fmt.Fprintf(r.out, "OpenAPI Specification: %s\n", r.store.Path(artifact.Spec))
	fmt.Fprintf(r.out, "API Documentation: %s\n", r.store.Path(artifact.Documentation))

	r.logger.Info("run finished",
		zap.Int("warnings", len(r.res.Warnings)),
		zap.Int("paths", len(r.res.Spec.Paths)),
		zap.Int("schemas", len(r.res.Spec.Components.Schemas)),
	)
	return nil
}

func (r *run) requirements(ctx context.Context) error {
	r.header("Phase 1: Requirements Gathering", requirementsPractices)
	fmt.Fprintln(r.out, "Gathering detailed requirements for your API...")

	text, err := r.invoke(ctx, r.agents.Requirements, "prompts/requirements.tmpl")
	if err != nil {
		return err
	}
	r.res.Requirements = text
	if text == "" {
		r.warn("requirements agent returned no text", zap.String("artifact", string(artifact.Requirements)))
	}

	if err := r.save(artifact.Requirements, func() (string, error) { return r.store.SaveRequirements(text) }); err != nil {
		return err
	}

	fmt.Fprintf(r.out, "\nRequirements gathered successfully!\n\n%s\n", text)
	return nil
}

func (r *run) architecture(ctx context.Context) error {
	r.header("Phase 2: API Architecture Design", architecturePractices)
	fmt.Fprintln(r.out, "Designing the API architecture based on requirements...")

	text, err := r.invoke(ctx, r.agents.Architect, "prompts/architecture.tmpl")
	if err != nil {
		return err
	}
	r.res.Architecture = text
	if text == "" {
		r.warn("architect agent returned no text", zap.String("artifact", string(artifact.Architecture)))
	}

	if err := r.save(artifact.Architecture, func() (string, error) { return r.store.SaveArchitecture(text) }); err != nil {
		return err
	}

	fmt.Fprintf(r.out, "\nArchitecture designed successfully!\n\n%s\n", text)
	return nil
}

func (r *run) endpoints(ctx context.Context) error {
	r.header("Phase 3: Endpoint Design", endpointPractices)
	fmt.Fprintln(r.out, "Designing detailed API endpoints...")

	text, err := r.invoke(ctx, r.agents.EndpointDesigner, "prompts/endpoints.tmpl")
	if err != nil {
		return err
	}

	endpoints, ok := extract.ExtractObject(text)
	if !ok || len(endpoints) == 0 {
		r.fallback("endpoints", "could not parse endpoints as JSON, using empty paths")
		endpoints = map[string]any{"paths": map[string]any{}}
	}
	r.res.Endpoints = endpoints

	if err := r.save(artifact.Endpoints, func() (string, error) { return r.store.SaveEndpoints(endpoints) }); err != nil {
		return err
	}

	fmt.Fprintln(r.out, "\nEndpoints designed successfully!")
	return nil
}

func (r *run) specAndDocs(ctx context.Context) error {
	r.header("Phase 4: Documentation Generation", documentationPractices)
	fmt.Fprintln(r.out, "Generating the final API specification...")

	doc := NewSpecDocument()
	r.res.Spec = doc

	if raw, ok := r.res.Endpoints["paths"]; ok {
		if paths, ok := raw.(map[string]any); ok {
			doc.Paths = paths
		} else {
			r.warn("endpoints paths is not an object, keeping empty paths", zap.String("type", fmt.Sprintf("%T", raw)))
		}
	} else {
		r.warn("endpoints have no paths, keeping empty paths")
	}

	if err := r.schemas(ctx, doc); err != nil {
		return err
	}
	if err := r.metadata(ctx, doc); err != nil {
		return err
	}
	doc.setSupportInfo()

	// The schema designer may have saved a partial document through its
	// tool. This write replaces it with the assembled one.
	if err := r.save(artifact.Spec, func() (string, error) { return r.store.SaveSpec(doc) }); err != nil {
		return err
	}
	r.lintSpec(doc)

	return r.documentation(ctx)
}

func (r *run) schemas(ctx context.Context, doc *SpecDocument) error {
	fmt.Fprintln(r.out, "\nAgent Handoff: Activating Schema Designer Agent")

	text, err := r.invoke(ctx, r.agents.SchemaDesigner, "prompts/schemas.tmpl")
	if err != nil {
		return err
	}

	schemas, ok := extract.ExtractObject(text)
	if inner, isMap := schemas["schemas"].(map[string]any); ok && isMap && len(schemas) == 1 {
		schemas = inner
	}
	if !ok || len(schemas) == 0 {
		r.fallback("schemas", "schemas were not valid JSON, using empty schemas")
		return nil
	}
	doc.Components.Schemas = schemas

	fmt.Fprintln(r.out, "Schemas designed successfully with examples!")
	return nil
}

func (r *run) metadata(ctx context.Context, doc *SpecDocument) error {
	fmt.Fprintln(r.out, "\nAgent Handoff: Activating Coordinator Agent for Metadata Extraction")

	text, err := r.invoke(ctx, r.agents.Coordinator, "prompts/metadata.tmpl")
	if err != nil {
		return err
	}

	meta, _ := extract.ExtractObject(text)
	title, titleOK := meta["title"].(string)
	description, descOK := meta["description"].(string)
	if titleOK && descOK && strings.TrimSpace(title) != "" {
		doc.Info.Title = title
		doc.Info.Description = description
		return nil
	}

	r.fallback("metadata", "could not extract title and description, using defaults")
	doc.Info.Title, doc.Info.Description = fallbackMetadata(r.res.Requirements)
	return nil
}

// fallbackMetadata builds a title and a description from the first sentence
// of the requirements.
func fallbackMetadata(requirements string) (string, string) {
	first, _, _ := strings.Cut(requirements, ".")
	first = strings.TrimSpace(first)
	if first == "" {
		return fallbackTitle, fallbackDescription
	}
	return fallbackTitle, fallbackDescription + " " + first + "."
}

func (r *run) lintSpec(doc *SpecDocument) {
	if !r.lint {
		return
	}

	data, err := artifact.Marshal(doc)
	if err != nil {
		r.warn("could not encode document for linting", zap.Error(err))
		return
	}
	loaded, err := loader.LoadBytes(data)
	if err != nil {
		r.warn("could not load document for linting", zap.Error(err))
		return
	}
	findings, err := loaded.Lint()
	if err != nil {
		r.warn("could not lint document", zap.Error(err))
		return
	}
	for _, f := range findings {
		r.warn("lint: "+f, zap.String("artifact", string(artifact.Spec)))
	}
}

func (r *run) documentation(ctx context.Context) error {
	fmt.Fprintln(r.out, "\nAgent Handoff: Schema Designer Agent -> Documentation Agent")
	fmt.Fprintln(r.out, "Generating comprehensive markdown documentation...")

	text, err := r.invoke(ctx, r.agents.Documentation, "prompts/documentation.tmpl")
	if err != nil {
		return err
	}
	r.res.Documentation = text
	if text == "" {
		r.warn("documentation agent returned no text", zap.String("artifact", string(artifact.Documentation)))
	}

	if err := r.save(artifact.Documentation, func() (string, error) { return r.store.SaveDocumentation(text) }); err != nil {
		return err
	}

	fmt.Fprintf(r.out, "Comprehensive documentation generated and saved to %s\n", r.store.Path(artifact.Documentation))
	return nil
}

// coordinate asks the coordinator for commentary. The text is shown and
// kept but never changes what the run does next.
func (r *run) coordinate(ctx context.Context, prompt, title string) error {
	text, err := r.invoke(ctx, r.agents.Coordinator, prompt)
	if err != nil {
		return err
	}
	r.res.Commentary = append(r.res.Commentary, text)
	fmt.Fprintf(r.out, "\n%s:\n%s\n", title, text)
	return nil
}

func (r *run) invoke(ctx context.Context, a agent.Agent, prompt string) (string, error) {
	text, err := r.prompts.Execute(prompt, promptData{
		Brief:        r.res.Brief,
		Requirements: r.res.Requirements,
		Architecture: r.res.Architecture,
		Endpoints:    r.res.Endpoints,
		Spec:         r.res.Spec,
	})
	if err != nil {
		return "", fmt.Errorf("%s phase: %w", r.res.State, err)
	}

	out, err := r.invoker.Invoke(ctx, a, text)
	if err != nil {
		return "", fmt.Errorf("%s phase: %s: %w", r.res.State, a.Name, err)
	}
	return out, nil
}

func (r *run) save(name artifact.Name, write func() (string, error)) error {
	path, err := write()
	if err != nil {
		return fmt.Errorf("%s phase: saving %s: %w", r.res.State, name, err)
	}
	r.logger.Info("artifact saved", zap.String("artifact", string(name)), zap.String("path", path))
	return nil
}

func (r *run) warn(msg string, fields ...zap.Field) {
	r.res.Warnings = append(r.res.Warnings, msg)
	fields = append(fields, zap.Stringer("state", r.res.State))
	r.logger.Warn(msg, fields...)
	fmt.Fprintf(r.out, "Warning: %s\n", msg)
}

func (r *run) fallback(name, msg string) {
	r.rec.RecordFallback(name)
	r.warn(msg, zap.String("artifact", name))
}

func (r *run) header(title string, practices []string) {
	fmt.Fprintf(r.out, "\n=== %s ===\n\n", title)
	fmt.Fprintln(r.out, "Best Practices:")
	for _, p := range practices {
		fmt.Fprintf(r.out, "  - %s\n", p)
	}
	fmt.Fprintln(r.out)
}
