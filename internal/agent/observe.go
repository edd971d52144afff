package agent

import (
	"context"
	"time"

	"github.com/kolah/specwright/internal/metrics"
	"go.uber.org/zap"
)

type observed struct {
	next   Invoker
	logger *zap.Logger
	rec    *metrics.Recorder
}

// Observe wraps next so every invocation is logged and counted. rec may be nil.
func Observe(next Invoker, logger *zap.Logger, rec *metrics.Recorder) Invoker {
	return &observed{next: next, logger: logger, rec: rec}
}

func (o *observed) Invoke(ctx context.Context, a Agent, prompt string) (string, error) {
	started := time.Now()
	o.logger.Debug("agent invocation started",
		zap.String("agent", a.Name),
		zap.Int("prompt_bytes", len(prompt)),
		zap.Int("tools", len(a.Tools)),
	)

	out, err := o.next.Invoke(ctx, a, prompt)

	duration := time.Since(started)
	o.rec.RecordInvocation(a.Name, err, duration)
	if err != nil {
		o.logger.Error("agent invocation failed",
			zap.String("agent", a.Name),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return "", err
	}

	o.logger.Info("agent invocation finished",
		zap.String("agent", a.Name),
		zap.Duration("duration", duration),
		zap.Int("response_bytes", len(out)),
	)
	return out, nil
}
