package runtime

import (
	"fmt"
	"strconv"

	"github.com/ofekfell/mediaflow/pkg/domain"
	"github.com/ofekfell/mediaflow/pkg/filtergraph"
)

const resetPTS = "PTS-STARTPTS"

// fs is a filter step bound to its arguments.
func fs(name string, args ...filtergraph.Arg) func(*filtergraph.Stream) *filtergraph.Stream {
	return func(s *filtergraph.Stream) *filtergraph.Stream {
		return s.Filter(name, args...)
	}
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// trim: Pair or Single.
func trim(s Streams, p domain.TrimParams) Streams {
	s = mapVideo(s, func(v *filtergraph.Stream) *filtergraph.Stream {
		return v.Filter("trim", filtergraph.KV("start", p.Start), filtergraph.KV("duration", p.Duration)).
			Filter("setpts", filtergraph.Pos(resetPTS))
	})
	return mapAudio(s, func(a *filtergraph.Stream) *filtergraph.Stream {
		return a.Filter("atrim", filtergraph.KV("start", p.Start), filtergraph.KV("duration", p.Duration)).
			Filter("asetpts", filtergraph.Pos(resetPTS))
	})
}

func cut(s Streams, p domain.CutParams) Streams {
	return mapVideo(s, fs("crop",
		filtergraph.KV("w", p.Width), filtergraph.KV("h", p.Height),
		filtergraph.KV("x", p.X), filtergraph.KV("y", p.Y)))
}

func changeVolume(s Streams, p domain.ChangeVolumeParams) Streams {
	return mapAudio(s, fs("volume", filtergraph.Pos(p.Volume)))
}

func scale(s Streams, p domain.ScaleParams) Streams {
	return mapVideo(s, fs("scale", filtergraph.KV("w", p.Width), filtergraph.KV("h", p.Height)))
}

func fade(s Streams, p domain.FadeParams) Streams {
	args := []filtergraph.Arg{
		filtergraph.KV("t", p.Type),
		filtergraph.KV("st", p.StartTime),
		filtergraph.KV("d", p.Duration),
	}
	s = mapVideo(s, fs("fade", args...))
	return mapAudio(s, fs("afade", args...))
}

func rotate(s Streams, p domain.RotateParams) Streams {
	return mapVideo(s, fs("rotate", filtergraph.Pos(num(p.Angle)+"*PI/180")))
}

// speed retimes video by 1/factor and stretches audio without a pitch shift.
func speed(s Streams, p domain.SpeedParams) Streams {
	s = mapVideo(s, fs("setpts", filtergraph.Pos("PTS/"+num(p.Factor))))
	return mapAudio(s, func(a *filtergraph.Stream) *filtergraph.Stream {
		for _, stage := range atempoChain(p.Factor) {
			a = a.Filter("atempo", filtergraph.Pos(stage))
		}
		return a
	})
}

// atempoChain splits a tempo factor into stages ffmpeg accepts (0.5 to 2 each).
func atempoChain(factor float64) []float64 {
	var stages []float64
	for factor > 2 {
		stages = append(stages, 2)
		factor /= 2
	}
	for factor < 0.5 {
		stages = append(stages, 0.5)
		factor /= 0.5
	}
	return append(stages, factor)
}

func blur(s Streams, p domain.BlurParams) Streams {
	return mapVideo(s, fs("gblur", filtergraph.KV("sigma", p.Radius)))
}

func setFPS(s Streams, p domain.SetFPSParams) Streams {
	return mapVideo(s, fs("fps", filtergraph.KV("fps", p.FPS)))
}

func setFormat(s Streams, p domain.SetFormatParams) Streams {
	return mapVideo(s, fs("format", filtergraph.KV("pix_fmts", p.Format)))
}

func audioResample(s Streams, p domain.AudioResampleParams) Streams {
	return mapAudio(s, fs("aresample", filtergraph.Pos(p.SampleRate)))
}

func resetVideoPTS(s Streams) Streams {
	return mapVideo(s, fs("setpts", filtergraph.Pos(resetPTS)))
}

func resetAudioPTS(s Streams) Streams {
	return mapAudio(s, fs("asetpts", filtergraph.Pos(resetPTS)))
}

func audioDynaudnorm(s Streams) Streams {
	return mapAudio(s, fs("dynaudnorm"))
}

// concat joins two or more streams back to back. Every element must agree on
// audio presence.
func concat(g *filtergraph.Graph, in []Streams) (Streams, error) {
	if len(in) < 2 {
		return nil, fmt.Errorf("%w: concat takes at least 2 inputs, got %d", domain.ErrInvalidNode, len(in))
	}
	withAudio := audioOf(in[0]) != nil
	videos := make([]*filtergraph.Stream, 0, len(in))
	audios := make([]*filtergraph.Stream, 0, len(in))
	for i, s := range in {
		if (audioOf(s) != nil) != withAudio {
			return nil, fmt.Errorf("%w: concat input %d has audio=%t, input 0 has audio=%t",
				domain.ErrShapeMismatch, i, !withAudio, withAudio)
		}
		videos = append(videos, videoOf(s))
		audios = append(audios, audioOf(s))
	}

	n := len(in)
	v := g.Join("concat", filtergraph.Video,
		[]filtergraph.Arg{filtergraph.KV("n", n), filtergraph.KV("v", 1), filtergraph.KV("a", 0)}, videos...)
	if !withAudio {
		return Single{Video: v}, nil
	}
	a := g.Join("concat", filtergraph.Audio,
		[]filtergraph.Arg{filtergraph.KV("n", n), filtergraph.KV("v", 0), filtergraph.KV("a", 1)}, audios...)
	return Pair{Video: v, Audio: a}, nil
}

// overlay composites the second video onto the first and keeps the first's audio.
func overlay(g *filtergraph.Graph, in []Streams, p domain.OverlayParams) (Streams, error) {
	if len(in) != 2 {
		return nil, fmt.Errorf("%w: overlay takes 2 inputs, got %d", domain.ErrInvalidNode, len(in))
	}
	v := g.Join("overlay", filtergraph.Video,
		[]filtergraph.Arg{filtergraph.KV("x", p.X), filtergraph.KV("y", p.Y)},
		videoOf(in[0]), videoOf(in[1]))
	return pairOf(v, audioOf(in[0])), nil
}

// crossfade blends the tail of the first stream into the second. Both videos
// are retimed to the same rate first; xfade garbles mismatched rates.
func crossfade(g *filtergraph.Graph, in []Streams, p domain.CrossfadeParams, fps float64) (Streams, error) {
	if len(in) != 2 {
		return nil, fmt.Errorf("%w: crossfade takes 2 inputs, got %d", domain.ErrInvalidNode, len(in))
	}
	if p.Stream1Duration <= 0 {
		return nil, &domain.ValidationError{Action: domain.ActionCrossfade, Field: "stream1_duration",
			Reason: "stream1_duration must be provided and greater than 0"}
	}
	first := videoOf(in[0]).Filter("fps", filtergraph.KV("fps", fps))
	second := videoOf(in[1]).Filter("fps", filtergraph.KV("fps", fps))
	v := g.Join("xfade", filtergraph.Video, []filtergraph.Arg{
		filtergraph.KV("transition", p.Transition),
		filtergraph.KV("duration", p.Duration),
		filtergraph.KV("offset", p.Offset()),
	}, first, second)

	a1, a2 := audioOf(in[0]), audioOf(in[1])
	switch {
	case a1 != nil && a2 != nil:
		a := g.Join("acrossfade", filtergraph.Audio, []filtergraph.Arg{
			filtergraph.KV("d", p.Duration),
			filtergraph.KV("c1", "tri"),
			filtergraph.KV("c2", "qsin"),
		}, a1, a2)
		return Pair{Video: v, Audio: a}, nil
	case a1 != nil:
		return Pair{Video: v, Audio: a1}, nil
	case a2 != nil:
		return Pair{Video: v, Audio: a2}, nil
	}
	return Single{Video: v}, nil
}

// audioMix mixes every present audio channel and keeps the first video.
func audioMix(g *filtergraph.Graph, in []Streams, p domain.AudioMixParams) (Streams, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("%w: audio_mix without inputs", domain.ErrInvalidNode)
	}
	var audios []*filtergraph.Stream
	for _, s := range in {
		if a := audioOf(s); a != nil {
			audios = append(audios, a)
		}
	}
	if len(audios) < 2 {
		return nil, fmt.Errorf("%w: audio_mix needs 2 audio channels, found %d", domain.ErrInsufficientChannels, len(audios))
	}

	args := []filtergraph.Arg{filtergraph.KV("inputs", len(audios))}
	if p.Weights != "" {
		args = append(args, filtergraph.KV("weights", p.Weights))
	}
	a := g.Join("amix", filtergraph.Audio, args, audios...)
	return Pair{Video: videoOf(in[0]), Audio: a}, nil
}
