package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/stepflow/pkg/validate"
)

// LogHooks returns validator hooks that write events to logger.
// Pass boundaries log at Debug, failures at Info and hook faults at Warn.
func LogHooks(logger *slog.Logger) validate.Hooks {
	return validate.Hooks{
		OnPassStart: func(ctx context.Context, e *validate.PassEvent) {
			logger.DebugContext(ctx, "pass_start", "pass_id", e.PassID, "steps", e.Steps)
		},
		OnPassEnd: func(ctx context.Context, e *validate.PassEvent) {
			logger.DebugContext(ctx, "pass_end",
				"pass_id", e.PassID,
				"ok", e.OK,
				"errors", e.Errors,
				"duration", e.Duration,
			)
		},
		OnInvalid: func(ctx context.Context, e *validate.InvalidEvent) {
			logger.InfoContext(ctx, "invalid", "pass_id", e.PassID, "key", string(e.Key), "kind", string(e.Kind))
		},
		OnHookCall: func(ctx context.Context, e *validate.HookEvent) {
			if e.Error == "" && !e.Panicked {
				return
			}
			logger.WarnContext(ctx, "hook_failed",
				"pass_id", e.PassID,
				"step_id", e.StepID,
				"operator", e.Operator,
				"panicked", e.Panicked,
				"error", e.Error,
			)
		},
	}
}
