package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation is returned when an action is built with out-of-domain parameters.
	ErrValidation = errors.New("validation error")

	// ErrResolution is returned when a reference is neither fetchable nor an existing local file.
	ErrResolution = errors.New("resolution error")

	// ErrShapeMismatch is returned when the inputs of an n-ary action disagree on channel presence.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrUnknownAction is returned when an action name is not part of the action set.
	ErrUnknownAction = errors.New("unknown action")

	// ErrInvalidNode is returned when a tree node has neither a leaf nor an action shape.
	ErrInvalidNode = errors.New("invalid node")

	// ErrExhaustedAliases is returned when a path is requested more often than it was counted.
	// It always indicates that usage scanning and evaluation disagree.
	ErrExhaustedAliases = errors.New("exhausted aliases")

	// ErrInsufficientChannels is returned when audio_mix is left with fewer than two audio channels.
	ErrInsufficientChannels = errors.New("insufficient audio channels")

	// ErrProbe is returned when the engine cannot read a media file's metadata.
	ErrProbe = errors.New("probe error")

	// ErrEngine is returned when the engine fails to materialize a graph.
	ErrEngine = errors.New("engine error")
)

// ValidationError describes one rejected action parameter.
type ValidationError struct {
	Action ActionKind // Action being built
	Field  string     // Parameter name, or "input" for cardinality failures
	Reason string     // Human-readable reason for failure
	Value  any        // The value that failed validation
}

func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("%s: field %q: %s", e.Action, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: field %q: %s (got %v)", e.Action, e.Field, e.Reason, e.Value)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// EngineError carries the engine's diagnostic output verbatim.
type EngineError struct {
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *EngineError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("engine failed (exit %d): %s", e.ExitCode, msg)
}

// Unwrap exposes both the ErrEngine sentinel and the underlying cause.
func (e *EngineError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrEngine}
	}
	return []error{ErrEngine, e.Err}
}
