// Package agent invokes language-model agents and runs the tools they call.
package agent

import (
	"context"
	"errors"

	"github.com/kolah/specwright/internal/tools"
)

var (
	ErrNoChoices         = errors.New("model returned no choices")
	ErrToolRounds        = errors.New("agent exceeded the tool-call round limit")
	ErrMalformedToolCall = errors.New("malformed tool call")
	ErrUnknownTool       = errors.New("unknown tool")
)

// Agent is an identity the model is asked to play: a name, standing
// instructions, and the tools it may call while answering.
type Agent struct {
	Name         string
	Instructions string
	Tools        []tools.Tool
}

// Invoker runs one agent against one prompt and returns its final text.
// Tool calls requested by the model happen as side effects before it returns.
type Invoker interface {
	Invoke(ctx context.Context, a Agent, prompt string) (string, error)
}

// InvokerFunc adapts a function to Invoker.
type InvokerFunc func(ctx context.Context, a Agent, prompt string) (string, error)

func (f InvokerFunc) Invoke(ctx context.Context, a Agent, prompt string) (string, error) {
	return f(ctx, a, prompt)
}
