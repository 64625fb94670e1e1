package dsl

import (
	"github.com/ofekfell/mediaflow/pkg/domain"
)

// Fade directions, re-exported for callers of Fade.
const (
	FadeIn  = domain.FadeIn
	FadeOut = domain.FadeOut
)

// Build validates and assembles one action node.
// Unary kinds take a single input, n-ary kinds (concat, crossfade, audio_mix,
// overlay) take a list. A nil params uses the kind's defaults.
func Build(kind domain.ActionKind, input any, params domain.Params) (*domain.ActionNode, error) {
	if _, err := domain.ParseActionKind(string(kind)); err != nil {
		return nil, err
	}
	if params == nil {
		p, err := domain.NewParams(kind)
		if err != nil {
			return nil, err
		}
		params = p
	}
	params = withDefaults(domain.ParamsValue(params))
	if params.Kind() != kind {
		return nil, invalid(kind, "params", "parameters belong to "+string(params.Kind()), nil)
	}
	if err := ValidateParams(params); err != nil {
		return nil, err
	}

	node := &domain.ActionNode{Kind: kind, Params: params}
	if kind.MultiInput() {
		inputs, err := normalizeList(kind, input)
		if err != nil {
			return nil, err
		}
		if err := validateArity(kind, len(inputs)); err != nil {
			return nil, err
		}
		node.Inputs = inputs
		return node, nil
	}

	if isList(input) {
		return nil, invalid(kind, "input", "expects a single input, got a list", nil)
	}
	in, err := normalizeOne(kind, input)
	if err != nil {
		return nil, err
	}
	node.Input = in
	return node, nil
}

// withDefaults fills optional fields a caller left empty.
func withDefaults(p domain.Params) domain.Params {
	if cf, ok := p.(domain.CrossfadeParams); ok && cf.Transition == "" {
		cf.Transition = domain.DefaultTransition
		return cf
	}
	return p
}

// Trim keeps [start, start+duration) and rebases timestamps to zero.
func Trim(input any, start, duration float64) (*domain.ActionNode, error) {
	return Build(domain.ActionTrim, input, domain.TrimParams{Start: start, Duration: duration})
}

// Cut crops a width x height rectangle at (x, y).
func Cut(input any, x, y, width, height int) (*domain.ActionNode, error) {
	return Build(domain.ActionCut, input, domain.CutParams{X: x, Y: y, Width: width, Height: height})
}

// ChangeVolume scales audio amplitude. Zero mutes.
func ChangeVolume(input any, volume float64) (*domain.ActionNode, error) {
	return Build(domain.ActionChangeVolume, input, domain.ChangeVolumeParams{Volume: volume})
}

// Concat joins two or more inputs back to back.
func Concat(inputs any) (*domain.ActionNode, error) {
	return Build(domain.ActionConcat, inputs, domain.ConcatParams{})
}

// Scale resizes video. Pass height -1 to keep the aspect ratio.
func Scale(input any, width, height int) (*domain.ActionNode, error) {
	return Build(domain.ActionScale, input, domain.ScaleParams{Width: width, Height: height})
}

// Overlay composites the second input onto the first at (x, y).
func Overlay(inputs any, x, y int) (*domain.ActionNode, error) {
	return Build(domain.ActionOverlay, inputs, domain.OverlayParams{X: x, Y: y})
}

// Fade ramps video and audio in or out.
func Fade(input any, fadeType string, startTime, duration float64) (*domain.ActionNode, error) {
	return Build(domain.ActionFade, input, domain.FadeParams{Type: fadeType, StartTime: startTime, Duration: duration})
}

// Rotate turns the video by angle degrees.
func Rotate(input any, angle float64) (*domain.ActionNode, error) {
	return Build(domain.ActionRotate, input, domain.RotateParams{Angle: angle})
}

// Speed scales playback by factor; audio is time-stretched without pitch shift.
func Speed(input any, factor float64) (*domain.ActionNode, error) {
	return Build(domain.ActionSpeed, input, domain.SpeedParams{Factor: factor})
}

// Blur applies a gaussian blur of the given radius.
func Blur(input any, radius float64) (*domain.ActionNode, error) {
	return Build(domain.ActionBlur, input, domain.BlurParams{Radius: radius})
}

// Crossfade blends two inputs. stream1Duration is the length of the first input;
// an empty transition defaults to "fade".
func Crossfade(inputs any, duration, stream1Duration float64, transition string) (*domain.ActionNode, error) {
	return Build(domain.ActionCrossfade, inputs, domain.CrossfadeParams{
		Duration:        duration,
		Stream1Duration: stream1Duration,
		Transition:      transition,
	})
}

// AudioMix mixes the audio of two or more inputs and keeps the first input's video.
func AudioMix(inputs any, weights string) (*domain.ActionNode, error) {
	return Build(domain.ActionAudioMix, inputs, domain.AudioMixParams{Weights: weights})
}

// SetFPS retimes video to a constant frame rate.
func SetFPS(input any, fps float64) (*domain.ActionNode, error) {
	return Build(domain.ActionSetFPS, input, domain.SetFPSParams{FPS: fps})
}

// SetFormat converts video to the given pixel format.
func SetFormat(input any, format string) (*domain.ActionNode, error) {
	return Build(domain.ActionSetFormat, input, domain.SetFormatParams{Format: format})
}

// AudioResample resamples audio to sampleRate Hz.
func AudioResample(input any, sampleRate int) (*domain.ActionNode, error) {
	return Build(domain.ActionAudioResample, input, domain.AudioResampleParams{SampleRate: sampleRate})
}

func ResetVideoPTS(input any) (*domain.ActionNode, error) {
	return Build(domain.ActionResetVideoPTS, input, domain.ResetVideoPTSParams{})
}

func ResetAudioPTS(input any) (*domain.ActionNode, error) {
	return Build(domain.ActionResetAudioPTS, input, domain.ResetAudioPTSParams{})
}

func AudioDynaudnorm(input any) (*domain.ActionNode, error) {
	return Build(domain.ActionAudioDynaudnorm, input, domain.AudioDynaudnormParams{})
}
