package runtime

import "github.com/ofekfell/mediaflow/pkg/filtergraph"

// Targets are the canonical formats every leaf occurrence is converted to.
type Targets struct {
	PixelFormat string  `yaml:"pixel_format" mapstructure:"pixel_format"`
	FPS         float64 `yaml:"fps" mapstructure:"fps"`
	SampleRate  int     `yaml:"sample_rate" mapstructure:"sample_rate"`
}

// DefaultTargets returns yuv420p at 30 fps with 44.1 kHz audio.
func DefaultTargets() Targets {
	return Targets{PixelFormat: "yuv420p", FPS: 30, SampleRate: 44100}
}

func (t Targets) withDefaults() Targets {
	d := DefaultTargets()
	if t.PixelFormat == "" {
		t.PixelFormat = d.PixelFormat
	}
	if t.FPS <= 0 {
		t.FPS = d.FPS
	}
	if t.SampleRate <= 0 {
		t.SampleRate = d.SampleRate
	}
	return t
}

// Normalizer turns one leaf occurrence into a canonical graph input.
type Normalizer struct {
	targets Targets
}

// NewNormalizer creates a normalizer for the given targets. Zero fields fall
// back to DefaultTargets.
func NewNormalizer(targets Targets) *Normalizer {
	return &Normalizer{targets: targets.withDefaults()}
}

// Targets returns the effective targets.
func (n *Normalizer) Targets() Targets { return n.targets }

// Apply registers path as a new graph input and normalizes it. The order is
// fixed: timestamp resets follow the steps that change the timebase.
// Inputs without audio yield a Single.
func (n *Normalizer) Apply(g *filtergraph.Graph, path string, hasAudio bool) Streams {
	v, a := g.Input(path)
	v = v.Filter("format", filtergraph.KV("pix_fmts", n.targets.PixelFormat)).
		Filter("setpts", filtergraph.Pos(resetPTS)).
		Filter("fps", filtergraph.KV("fps", n.targets.FPS))
	if !hasAudio {
		return Single{Video: v}
	}
	a = a.Filter("aresample", filtergraph.Pos(n.targets.SampleRate)).
		Filter("asetpts", filtergraph.Pos(resetPTS)).
		Filter("dynaudnorm")
	return Pair{Video: v, Audio: a}
}
