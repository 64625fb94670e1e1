package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventRenderStart EventType = "render_start"
	EventRenderEnd   EventType = "render_end"
	EventAction      EventType = "action"
	EventCopy        EventType = "copy"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	RenderID  string    `json:"render_id"`
}

// RenderEvent marks the start or end of one render call.
type RenderEvent struct {
	EventBase
	Output   string        `json:"output,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
	Err      error         `json:"-"`
}

// ActionEvent is emitted once per dispatched action.
type ActionEvent struct {
	EventBase
	Action ActionKind `json:"action"`
}

// CopyEvent is emitted once per physical duplicate created for a reused input.
type CopyEvent struct {
	EventBase
	Source string `json:"source"`
	Alias  string `json:"alias"`
}

// LifecycleHooks defines callbacks for render observability.
// Any field may be nil.
type LifecycleHooks struct {
	OnRenderStart func(context.Context, *RenderEvent)
	OnRenderEnd   func(context.Context, *RenderEvent)
	OnAction      func(context.Context, *ActionEvent)
	OnCopy        func(context.Context, *CopyEvent)
}
