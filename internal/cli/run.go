package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/kolah/specwright/internal/agent"
	"github.com/kolah/specwright/internal/artifact"
	"github.com/kolah/specwright/internal/config"
	"github.com/kolah/specwright/internal/logging"
	"github.com/kolah/specwright/internal/metrics"
	"github.com/kolah/specwright/internal/pipeline"
	"github.com/kolah/specwright/internal/templates"
	"github.com/kolah/specwright/internal/tools"
	embedded "github.com/kolah/specwright/templates"
	"github.com/spf13/cobra"
	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

// newModel builds the chat model for a run.
var newModel = func(cfg *config.Config) (llms.Model, error) {
	return agent.NewOpenAIModel(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.BaseURL)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cmd)
	if err != nil {
		return err
	}
	if err := cfg.RequireCredential(); err != nil {
		return fmt.Errorf("%w (set it with: export OPENAI_API_KEY=your_api_key_here)", err)
	}

	logger, err := logging.New(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	logger = logger.With(zap.String("run_id", uuid.NewString()))
	defer func() { _ = logger.Sync() }()

	rec := metrics.New()
	if cfg.Output.MetricsFile != "" {
		defer func() {
			if werr := rec.WriteFile(cfg.Output.MetricsFile); werr != nil {
				logger.Warn("could not write metrics file", zap.String("path", cfg.Output.MetricsFile), zap.Error(werr))
			}
		}()
	}

	store, err := artifact.NewStore(cfg.Output.Dir)
	if err != nil {
		return err
	}

	engine, err := templates.NewEngine(embedded.FS, cfg.Templates.Dir)
	if err != nil {
		return fmt.Errorf("loading templates: %w", err)
	}

	agents, err := pipeline.NewAgents(engine, tools.NewToolbox(store, logger, rec))
	if err != nil {
		return err
	}

	model, err := newModel(cfg)
	if err != nil {
		return err
	}
	runner := agent.NewRunner(model, agent.RunnerOptions{
		MaxToolRounds:     cfg.LLM.MaxToolRounds,
		Timeout:           cfg.LLM.Timeout,
		RequestsPerMinute: cfg.LLM.RequestsPerMinute,
	}, logger)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "=== API Specification Generator ===")
	fmt.Fprintln(out, "This tool will help you create a detailed REST API specification with best practices guidance.")

	brief := cfg.Brief
	if brief == "" {
		brief, err = readBrief(cmd.InOrStdin(), out)
		if err != nil {
			return err
		}
	}

	logger.Info("run started",
		zap.String("model", cfg.LLM.Model),
		zap.String("output_dir", store.Dir()),
	)

	p := pipeline.New(pipeline.Options{
		Invoker: agent.Observe(runner, logger, rec),
		Store:   store,
		Agents:  agents,
		Prompts: engine,
		Logger:  logger,
		Metrics: rec,
		Out:     out,
		Lint:    cfg.Lint,
	})

	res, err := p.Run(cmd.Context(), brief)
	if err != nil {
		return err
	}
	if n := len(res.Warnings); n > 0 {
		cmd.PrintErrf("Completed with %d warning(s)\n", n)
	}
	return nil
}

// readBrief prompts for and reads a single line.
func readBrief(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprintln(out, "Please describe the API you want to create (purpose, main features, etc.):")
	fmt.Fprint(out, "> ")

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading API description: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", pipeline.ErrEmptyBrief
	}
	return line, nil
}
