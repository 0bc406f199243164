package validate

import (
	"context"
	"time"

	"github.com/aretw0/stepflow/pkg/domain"
)

// EventType defines the category of the event.
type EventType string

const (
	EventPassStart EventType = "pass_start"
	EventPassEnd   EventType = "pass_end"
	EventInvalid   EventType = "invalid"
	EventHookCall  EventType = "hook_call"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	PassID    string    `json:"pass_id"`
}

// PassEvent marks the start or end of a validation pass.
type PassEvent struct {
	EventBase
	Steps    int           `json:"steps"`
	OK       bool          `json:"ok,omitempty"`
	Errors   int           `json:"errors,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
}

// InvalidEvent is emitted once per recorded failure.
type InvalidEvent struct {
	EventBase
	Key  ErrorKey         `json:"key"`
	Kind domain.ErrorKind `json:"kind"`
}

// HookEvent describes one external validate hook call.
type HookEvent struct {
	EventBase
	StepID   string        `json:"step_id"`
	Operator string        `json:"operator"`
	OK       bool          `json:"ok"`
	Error    string        `json:"error,omitempty"`
	Panicked bool          `json:"panicked,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Hooks defines callbacks for validator observability.
// Callbacks may run concurrently from several goroutines.
type Hooks struct {
	OnPassStart func(context.Context, *PassEvent)
	OnPassEnd   func(context.Context, *PassEvent)
	OnInvalid   func(context.Context, *InvalidEvent)
	OnHookCall  func(context.Context, *HookEvent)
}

// ComposeHooks returns hooks that call each of hs in order.
func ComposeHooks(hs ...Hooks) Hooks {
	return Hooks{
		OnPassStart: func(ctx context.Context, e *PassEvent) {
			for _, h := range hs {
				if h.OnPassStart != nil {
					h.OnPassStart(ctx, e)
				}
			}
		},
		OnPassEnd: func(ctx context.Context, e *PassEvent) {
			for _, h := range hs {
				if h.OnPassEnd != nil {
					h.OnPassEnd(ctx, e)
				}
			}
		},
		OnInvalid: func(ctx context.Context, e *InvalidEvent) {
			for _, h := range hs {
				if h.OnInvalid != nil {
					h.OnInvalid(ctx, e)
				}
			}
		},
		OnHookCall: func(ctx context.Context, e *HookEvent) {
			for _, h := range hs {
				if h.OnHookCall != nil {
					h.OnHookCall(ctx, e)
				}
			}
		},
	}
}
