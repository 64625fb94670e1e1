package dsl

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ofekfell/mediaflow/pkg/domain"
)

func invalid(kind domain.ActionKind, field, reason string, value any) *domain.ValidationError {
	return &domain.ValidationError{Action: kind, Field: field, Reason: reason, Value: value}
}

// ValidateParams checks one parameter block against the domain of its kind.
func ValidateParams(p domain.Params) error {
	switch v := domain.ParamsValue(p).(type) {
	case domain.TrimParams:
		if !nonNegative(v.Start) {
			return invalid(v.Kind(), "start", "start must be non-negative", v.Start)
		}
		if !positive(v.Duration) {
			return invalid(v.Kind(), "duration", "duration must be greater than 0", v.Duration)
		}
	case domain.CutParams:
		for _, f := range []struct {
			name string
			val  int
		}{{"x", v.X}, {"y", v.Y}, {"width", v.Width}, {"height", v.Height}} {
			if f.val <= 0 {
				return invalid(v.Kind(), f.name, f.name+" must be greater than 0", f.val)
			}
		}
	case domain.ChangeVolumeParams:
		if !nonNegative(v.Volume) {
			return invalid(v.Kind(), "volume", "volume must be greater than or equal to 0", v.Volume)
		}
	case domain.ConcatParams, domain.OverlayParams, domain.ResetVideoPTSParams,
		domain.ResetAudioPTSParams, domain.AudioDynaudnormParams:
	case domain.ScaleParams:
		if v.Width <= 0 {
			return invalid(v.Kind(), "width", "width must be greater than 0", v.Width)
		}
		if v.Height != -1 && v.Height <= 0 {
			return invalid(v.Kind(), "height", "height must be greater than 0, or -1 to keep the aspect ratio", v.Height)
		}
	case domain.FadeParams:
		if v.Type != domain.FadeIn && v.Type != domain.FadeOut {
			return invalid(v.Kind(), "type", "fade type must be 'in' or 'out'", v.Type)
		}
		if !nonNegative(v.StartTime) {
			return invalid(v.Kind(), "start_time", "start time must be non-negative", v.StartTime)
		}
		if !positive(v.Duration) {
			return invalid(v.Kind(), "duration", "duration must be greater than 0", v.Duration)
		}
	case domain.RotateParams:
		if math.IsNaN(v.Angle) || math.IsInf(v.Angle, 0) {
			return invalid(v.Kind(), "angle", "angle must be a finite number", v.Angle)
		}
	case domain.SpeedParams:
		if !positive(v.Factor) {
			return invalid(v.Kind(), "factor", "speed factor must be greater than 0", v.Factor)
		}
	case domain.BlurParams:
		if !positive(v.Radius) {
			return invalid(v.Kind(), "radius", "blur radius must be greater than 0", v.Radius)
		}
	case domain.CrossfadeParams:
		if !positive(v.Duration) {
			return invalid(v.Kind(), "duration", "duration must be greater than 0", v.Duration)
		}
		if !positive(v.Stream1Duration) {
			return invalid(v.Kind(), "stream1_duration", "stream1_duration must be provided and greater than 0", nil)
		}
		if v.Duration > v.Stream1Duration {
			return invalid(v.Kind(), "duration", "duration must not exceed stream1_duration", v.Duration)
		}
		if strings.TrimSpace(v.Transition) == "" {
			return invalid(v.Kind(), "transition", "transition must not be empty", nil)
		}
	case domain.AudioMixParams:
		for _, w := range strings.Fields(v.Weights) {
			if _, err := strconv.ParseFloat(w, 64); err != nil {
				return invalid(v.Kind(), "weights", "weights must be space separated numbers", v.Weights)
			}
		}
	case domain.SetFPSParams:
		if !positive(v.FPS) {
			return invalid(v.Kind(), "fps", "fps must be greater than 0", v.FPS)
		}
	case domain.SetFormatParams:
		if strings.TrimSpace(v.Format) == "" {
			return invalid(v.Kind(), "format", "format must not be empty", nil)
		}
	case domain.AudioResampleParams:
		if v.SampleRate <= 0 {
			return invalid(v.Kind(), "sample_rate", "sample rate must be greater than 0", v.SampleRate)
		}
	case nil:
		return fmt.Errorf("%w: missing parameters", domain.ErrValidation)
	default:
		return fmt.Errorf("%w: %T", domain.ErrUnknownAction, p)
	}
	return nil
}

// positive and nonNegative reject NaN and infinities along with out of
// range values.
func positive(f float64) bool { return f > 0 && !math.IsInf(f, 1) }

func nonNegative(f float64) bool { return f >= 0 && !math.IsInf(f, 1) }

// validateArity checks the input cardinality of an n-ary action.
func validateArity(kind domain.ActionKind, n int) error {
	switch kind {
	case domain.ActionConcat:
		if n < 2 {
			return invalid(kind, "input", "concat action requires at least two inputs", n)
		}
	case domain.ActionAudioMix:
		if n < 2 {
			return invalid(kind, "input", "audio mix action requires at least 2 inputs", n)
		}
	case domain.ActionOverlay:
		if n != 2 {
			return invalid(kind, "input", "overlay action requires exactly 2 inputs", n)
		}
	case domain.ActionCrossfade:
		if n != 2 {
			return invalid(kind, "input", "crossfade action requires exactly 2 inputs", n)
		}
	}
	return nil
}

// Validate checks a whole tree: every node's shape, arity and parameters.
// Trees assembled through this package are valid by construction; Validate
// exists for trees built by hand. A node may be shared by several parents
// but must not be its own ancestor.
func Validate(root domain.Node) error {
	return validateNode(root, make(map[*domain.ActionNode]bool))
}

func validateNode(root domain.Node, ancestors map[*domain.ActionNode]bool) error {
	switch n := root.(type) {
	case domain.Leaf:
		if n.Reference == "" {
			return fmt.Errorf("%w: leaf without reference", domain.ErrInvalidNode)
		}
		return nil
	case *domain.ActionNode:
		if n == nil {
			return fmt.Errorf("%w: nil action node", domain.ErrInvalidNode)
		}
		if ancestors[n] {
			return fmt.Errorf("%w: %s node is its own input", domain.ErrInvalidNode, n.Kind)
		}
		if _, err := domain.ParseActionKind(string(n.Kind)); err != nil {
			return err
		}
		if n.Params == nil {
			return invalid(n.Kind, "params", "parameters are required", nil)
		}
		if n.Params.Kind() != n.Kind {
			return fmt.Errorf("%w: %s node carries %s parameters", domain.ErrInvalidNode, n.Kind, n.Params.Kind())
		}
		if err := checkShape(n); err != nil {
			return err
		}
		if n.Kind.MultiInput() {
			if err := validateArity(n.Kind, len(n.Inputs)); err != nil {
				return err
			}
		}
		if err := ValidateParams(n.Params); err != nil {
			return err
		}
		ancestors[n] = true
		defer delete(ancestors, n)
		for _, c := range n.Children() {
			if err := validateNode(c, ancestors); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("%w: %T", domain.ErrInvalidNode, root)
}

func checkShape(n *domain.ActionNode) error {
	if n.Kind.MultiInput() {
		if n.Input != nil || n.Inputs == nil {
			return fmt.Errorf("%w: %s expects a list input", domain.ErrInvalidNode, n.Kind)
		}
		return nil
	}
	if n.Input == nil || n.Inputs != nil {
		return fmt.Errorf("%w: %s expects a single input", domain.ErrInvalidNode, n.Kind)
	}
	return nil
}
