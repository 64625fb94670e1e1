package runtime

import (
	"fmt"

	"github.com/ofekfell/mediaflow/pkg/domain"
	"github.com/ofekfell/mediaflow/pkg/filtergraph"
)

// Registry maps each action kind to its stream handler.
// Handlers never touch their inputs; they return new handles on the same graph.
type Registry struct {
	// crossfadeFPS is the rate both crossfade inputs are retimed to before blending.
	crossfadeFPS float64
}

// NewRegistry creates a registry that retimes crossfade inputs to fps.
func NewRegistry(fps float64) *Registry {
	if fps <= 0 {
		fps = DefaultTargets().FPS
	}
	return &Registry{crossfadeFPS: fps}
}

// Dispatch applies the action kind to its input streams.
// Unary kinds take exactly one element in "in"; n-ary kinds take the ordered list.
func (r *Registry) Dispatch(g *filtergraph.Graph, kind domain.ActionKind, in []Streams, params domain.Params) (Streams, error) {
	if _, err := domain.ParseActionKind(string(kind)); err != nil {
		return nil, err
	}
	p := domain.ParamsValue(params)
	if p == nil || p.Kind() != kind {
		return nil, fmt.Errorf("%w: %s node carries %T parameters", domain.ErrInvalidNode, kind, params)
	}
	if !kind.MultiInput() && len(in) != 1 {
		return nil, fmt.Errorf("%w: %s takes one input, got %d", domain.ErrInvalidNode, kind, len(in))
	}
	for i, s := range in {
		if videoOf(s) == nil {
			return nil, fmt.Errorf("%w: %s input %d has no video", domain.ErrInvalidNode, kind, i)
		}
	}

	switch kind {
	case domain.ActionTrim:
		return trim(in[0], p.(domain.TrimParams)), nil
	case domain.ActionCut:
		return cut(in[0], p.(domain.CutParams)), nil
	case domain.ActionChangeVolume:
		return changeVolume(in[0], p.(domain.ChangeVolumeParams)), nil
	case domain.ActionConcat:
		return concat(g, in)
	case domain.ActionScale:
		return scale(in[0], p.(domain.ScaleParams)), nil
	case domain.ActionOverlay:
		return overlay(g, in, p.(domain.OverlayParams))
	case domain.ActionFade:
		return fade(in[0], p.(domain.FadeParams)), nil
	case domain.ActionRotate:
		return rotate(in[0], p.(domain.RotateParams)), nil
	case domain.ActionSpeed:
		return speed(in[0], p.(domain.SpeedParams)), nil
	case domain.ActionBlur:
		return blur(in[0], p.(domain.BlurParams)), nil
	case domain.ActionCrossfade:
		return crossfade(g, in, p.(domain.CrossfadeParams), r.crossfadeFPS)
	case domain.ActionAudioMix:
		return audioMix(g, in, p.(domain.AudioMixParams))
	case domain.ActionSetFPS:
		return setFPS(in[0], p.(domain.SetFPSParams)), nil
	case domain.ActionSetFormat:
		return setFormat(in[0], p.(domain.SetFormatParams)), nil
	case domain.ActionAudioResample:
		return audioResample(in[0], p.(domain.AudioResampleParams)), nil
	case domain.ActionResetVideoPTS:
		return resetVideoPTS(in[0]), nil
	case domain.ActionResetAudioPTS:
		return resetAudioPTS(in[0]), nil
	case domain.ActionAudioDynaudnorm:
		return audioDynaudnorm(in[0]), nil
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnknownAction, kind)
}
