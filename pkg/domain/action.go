package domain

import (
	"fmt"
	"reflect"
)

// ActionKind identifies one editing action. The set is closed.
type ActionKind string

// Standard Action Kinds
const (
	ActionTrim            ActionKind = "trim"
	ActionCut             ActionKind = "cut"
	ActionChangeVolume    ActionKind = "change_volume"
	ActionConcat          ActionKind = "concat"
	ActionScale           ActionKind = "scale"
	ActionOverlay         ActionKind = "overlay"
	ActionFade            ActionKind = "fade"
	ActionRotate          ActionKind = "rotate"
	ActionSpeed           ActionKind = "speed"
	ActionBlur            ActionKind = "blur"
	ActionCrossfade       ActionKind = "crossfade"
	ActionAudioMix        ActionKind = "audio_mix"
	ActionSetFPS          ActionKind = "set_fps"
	ActionSetFormat       ActionKind = "set_format"
	ActionAudioResample   ActionKind = "audio_resample"
	ActionResetVideoPTS   ActionKind = "reset_video_pts"
	ActionResetAudioPTS   ActionKind = "reset_audio_pts"
	ActionAudioDynaudnorm ActionKind = "audio_dynaudnorm"
)

var allKinds = []ActionKind{
	ActionTrim, ActionCut, ActionChangeVolume, ActionConcat, ActionScale,
	ActionOverlay, ActionFade, ActionRotate, ActionSpeed, ActionBlur,
	ActionCrossfade, ActionAudioMix, ActionSetFPS, ActionSetFormat,
	ActionAudioResample, ActionResetVideoPTS, ActionResetAudioPTS,
	ActionAudioDynaudnorm,
}

// Kinds returns every known action kind in declaration order.
func Kinds() []ActionKind {
	out := make([]ActionKind, len(allKinds))
	copy(out, allKinds)
	return out
}

// ParseActionKind maps a wire name to its kind.
func ParseActionKind(name string) (ActionKind, error) {
	for _, k := range allKinds {
		if string(k) == name {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, name)
}

// MultiInput reports whether the action consumes an ordered list of streams.
func (k ActionKind) MultiInput() bool {
	switch k {
	case ActionConcat, ActionCrossfade, ActionAudioMix, ActionOverlay:
		return true
	}
	return false
}

// Params is the typed parameter block of an ActionNode.
type Params interface {
	Kind() ActionKind
}

// Fade directions.
const (
	FadeIn  = "in"
	FadeOut = "out"
)

// DefaultTransition is the xfade transition used when none is given.
const DefaultTransition = "fade"

type TrimParams struct {
	Start    float64 `json:"start" yaml:"start" mapstructure:"start"`
	Duration float64 `json:"duration" yaml:"duration" mapstructure:"duration"`
}

type CutParams struct {
	X      int `json:"x" yaml:"x" mapstructure:"x"`
	Y      int `json:"y" yaml:"y" mapstructure:"y"`
	Width  int `json:"width" yaml:"width" mapstructure:"width"`
	Height int `json:"height" yaml:"height" mapstructure:"height"`
}

type ChangeVolumeParams struct {
	Volume float64 `json:"volume" yaml:"volume" mapstructure:"volume"`
}

type ConcatParams struct{}

// ScaleParams resizes video. Height -1 preserves the aspect ratio.
type ScaleParams struct {
	Width  int `json:"width" yaml:"width" mapstructure:"width"`
	Height int `json:"height" yaml:"height" mapstructure:"height"`
}

type OverlayParams struct {
	X int `json:"x" yaml:"x" mapstructure:"x"`
	Y int `json:"y" yaml:"y" mapstructure:"y"`
}

// FadeParams ramps video and audio in or out.
//
// Chained fades are not checked against each other: an "out" window that
// precedes a later "in" window leaves the result fully black.
type FadeParams struct {
	Type      string  `json:"type" yaml:"type" mapstructure:"type"`
	StartTime float64 `json:"start_time" yaml:"start_time" mapstructure:"start_time"`
	Duration  float64 `json:"duration" yaml:"duration" mapstructure:"duration"`
}

// RotateParams rotates by Angle degrees.
type RotateParams struct {
	Angle float64 `json:"angle" yaml:"angle" mapstructure:"angle"`
}

type SpeedParams struct {
	Factor float64 `json:"factor" yaml:"factor" mapstructure:"factor"`
}

type BlurParams struct {
	Radius float64 `json:"radius" yaml:"radius" mapstructure:"radius"`
}

// CrossfadeParams blends the tail of the first stream into the second.
// Stream1Duration cannot be derived from the tree and must be supplied.
type CrossfadeParams struct {
	Duration        float64 `json:"duration" yaml:"duration" mapstructure:"duration"`
	Stream1Duration float64 `json:"stream1_duration" yaml:"stream1_duration" mapstructure:"stream1_duration"`
	Transition      string  `json:"transition,omitempty" yaml:"transition,omitempty" mapstructure:"transition"`
}

// Offset is the point on the first stream's timeline where the blend starts.
func (p CrossfadeParams) Offset() float64 {
	return p.Stream1Duration - p.Duration
}

// AudioMixParams mixes audio channels. Weights is an optional space separated
// list such as "0.5 0.5".
type AudioMixParams struct {
	Weights string `json:"weights,omitempty" yaml:"weights,omitempty" mapstructure:"weights"`
}

type SetFPSParams struct {
	FPS float64 `json:"fps" yaml:"fps" mapstructure:"fps"`
}

type SetFormatParams struct {
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

type AudioResampleParams struct {
	SampleRate int `json:"sample_rate" yaml:"sample_rate" mapstructure:"sample_rate"`
}

type ResetVideoPTSParams struct{}

type ResetAudioPTSParams struct{}

type AudioDynaudnormParams struct{}

func (TrimParams) Kind() ActionKind            { return ActionTrim }
func (CutParams) Kind() ActionKind             { return ActionCut }
func (ChangeVolumeParams) Kind() ActionKind    { return ActionChangeVolume }
func (ConcatParams) Kind() ActionKind          { return ActionConcat }
func (ScaleParams) Kind() ActionKind           { return ActionScale }
func (OverlayParams) Kind() ActionKind         { return ActionOverlay }
func (FadeParams) Kind() ActionKind            { return ActionFade }
func (RotateParams) Kind() ActionKind          { return ActionRotate }
func (SpeedParams) Kind() ActionKind           { return ActionSpeed }
func (BlurParams) Kind() ActionKind            { return ActionBlur }
func (CrossfadeParams) Kind() ActionKind       { return ActionCrossfade }
func (AudioMixParams) Kind() ActionKind        { return ActionAudioMix }
func (SetFPSParams) Kind() ActionKind          { return ActionSetFPS }
func (SetFormatParams) Kind() ActionKind       { return ActionSetFormat }
func (AudioResampleParams) Kind() ActionKind   { return ActionAudioResample }
func (ResetVideoPTSParams) Kind() ActionKind   { return ActionResetVideoPTS }
func (ResetAudioPTSParams) Kind() ActionKind   { return ActionResetAudioPTS }
func (AudioDynaudnormParams) Kind() ActionKind { return ActionAudioDynaudnorm }

// NewParams returns the zero parameter block for a kind, with the documented
// defaults applied (scale height -1, crossfade transition "fade").
func NewParams(k ActionKind) (Params, error) {
	switch k {
	case ActionTrim:
		return &TrimParams{}, nil
	case ActionCut:
		return &CutParams{}, nil
	case ActionChangeVolume:
		return &ChangeVolumeParams{}, nil
	case ActionConcat:
		return &ConcatParams{}, nil
	case ActionScale:
		return &ScaleParams{Height: -1}, nil
	case ActionOverlay:
		return &OverlayParams{}, nil
	case ActionFade:
		return &FadeParams{Type: FadeIn}, nil
	case ActionRotate:
		return &RotateParams{}, nil
	case ActionSpeed:
		return &SpeedParams{}, nil
	case ActionBlur:
		return &BlurParams{}, nil
	case ActionCrossfade:
		return &CrossfadeParams{Transition: DefaultTransition}, nil
	case ActionAudioMix:
		return &AudioMixParams{}, nil
	case ActionSetFPS:
		return &SetFPSParams{}, nil
	case ActionSetFormat:
		return &SetFormatParams{}, nil
	case ActionAudioResample:
		return &AudioResampleParams{}, nil
	case ActionResetVideoPTS:
		return &ResetVideoPTSParams{}, nil
	case ActionResetAudioPTS:
		return &ResetAudioPTSParams{}, nil
	case ActionAudioDynaudnorm:
		return &AudioDynaudnormParams{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAction, string(k))
}

// ParamsValue strips pointer indirection so ActionNode.Params always holds a
// value. NewParams hands out pointers for decoding into.
func ParamsValue(p Params) Params {
	if p == nil {
		return nil
	}
	v := reflect.ValueOf(p)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		return v.Elem().Interface().(Params)
	}
	return p
}
