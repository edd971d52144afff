package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kolah/specwright/internal/tools"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const defaultMaxToolRounds = 8

type RunnerOptions struct {
	// MaxToolRounds bounds how many times the model may answer with tool
	// calls before producing text. Zero means the default.
	MaxToolRounds int
	// Timeout bounds a single invocation including its tool calls. Zero
	// disables it.
	Timeout time.Duration
	// RequestsPerMinute paces model requests. Zero disables pacing.
	RequestsPerMinute int
}

// Runner invokes agents through a langchaingo chat model.
type Runner struct {
	model         llms.Model
	maxToolRounds int
	timeout       time.Duration
	limiter       *rate.Limiter
	logger        *zap.Logger
}

func NewRunner(model llms.Model, opts RunnerOptions, logger *zap.Logger) *Runner {
	maxRounds := opts.MaxToolRounds
	if maxRounds <= 0 {
		maxRounds = defaultMaxToolRounds
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), 1)
	}

	return &Runner{
		model:         model,
		maxToolRounds: maxRounds,
		timeout:       opts.Timeout,
		limiter:       limiter,
		logger:        logger,
	}
}

// NewOpenAIModel builds the OpenAI chat model used in production runs.
func NewOpenAIModel(apiKey, model, baseURL string) (llms.Model, error) {
	opts := []openai.Option{openai.WithToken(apiKey)}
	if model != "" {
		opts = append(opts, openai.WithModel(model))
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating openai client: %w", err)
	}
	return llm, nil
}

func (r *Runner) Invoke(ctx context.Context, a Agent, prompt string) (string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, a.Instructions),
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	var opts []llms.CallOption
	if len(a.Tools) > 0 {
		opts = append(opts, llms.WithTools(definitions(a.Tools)))
	}

	for round := 0; ; round++ {
		if err := r.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("waiting for rate limiter: %w", err)
		}

		resp, err := r.model.GenerateContent(ctx, messages, opts...)
		if err != nil {
			return "", fmt.Errorf("generating content: %w", err)
		}
		if resp == nil || len(resp.Choices) == 0 {
			return "", ErrNoChoices
		}

		choice := resp.Choices[0]
		if len(choice.ToolCalls) == 0 {
			return strings.TrimSpace(choice.Content), nil
		}
		if round >= r.maxToolRounds {
			return "", fmt.Errorf("%w (%d)", ErrToolRounds, r.maxToolRounds)
		}

		reply := llms.MessageContent{Role: llms.ChatMessageTypeAI}
		for _, call := range choice.ToolCalls {
			reply.Parts = append(reply.Parts, call)
		}
		messages = append(messages, reply)

		for _, call := range choice.ToolCalls {
			result, err := r.runTool(ctx, a, call)
			if err != nil {
				return "", err
			}
			messages = append(messages, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{llms.ToolCallResponse{
					ToolCallID: call.ID,
					Name:       call.FunctionCall.Name,
					Content:    result,
				}},
			})
		}
	}
}

func (r *Runner) runTool(ctx context.Context, a Agent, call llms.ToolCall) (string, error) {
	if call.FunctionCall == nil {
		return "", fmt.Errorf("%w: call %q has no function", ErrMalformedToolCall, call.ID)
	}
	tool, ok := tools.Find(a.Tools, call.FunctionCall.Name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTool, call.FunctionCall.Name)
	}

	r.logger.Debug("agent called tool",
		zap.String("agent", a.Name),
		zap.String("tool", tool.Name),
		zap.String("call_id", call.ID),
	)

	result, err := tool.Call(ctx, call.FunctionCall.Arguments)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedToolCall, err)
	}
	return result, nil
}

func definitions(list []tools.Tool) []llms.Tool {
	defs := make([]llms.Tool, 0, len(list))
	for _, t := range list {
		defs = append(defs, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters(),
			},
		})
	}
	return defs
}
