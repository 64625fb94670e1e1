package filtergraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraph_ChainCompiles(t *testing.T) {
	g := New()
	v, a := g.Input("/tmp/a.mp4")

	v2 := v.Filter("trim", KV("start", 0.0), KV("duration", 1.5)).Filter("setpts", Pos("PTS-STARTPTS"))
	a2 := a.Filter("volume", Pos(0.5))

	job, err := g.Output("/tmp/out.mp4", v2, a2)
	require.NoError(t, err)

	assert.Equal(t, []string{"/tmp/a.mp4"}, job.Inputs)
	assert.Equal(t, "[0:v]trim=start=0:duration=1.5[s0];[s0]setpts=PTS-STARTPTS[s1];[0:a]volume=0.5[s2]", job.FilterComplex)
	assert.Equal(t, []string{"[s1]", "[s2]"}, job.Maps)
	assert.Equal(t, []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-i", "/tmp/a.mp4",
		"-filter_complex", job.FilterComplex,
		"-map", "[s1]", "-map", "[s2]",
		"/tmp/out.mp4",
	}, job.Args())
}

func TestGraph_FilterDoesNotMutateReceiver(t *testing.T) {
	g := New()
	v, _ := g.Input("a.mp4")
	before := *v

	out := v.Filter("gblur", KV("sigma", 5))

	assert.Equal(t, before, *v)
	assert.NotEqual(t, v.Label(), out.Label())
	assert.Equal(t, Video, out.Type())
}

func TestGraph_Join(t *testing.T) {
	g := New()
	v1, _ := g.Input("a.mp4")
	v2, _ := g.Input("b.mp4")

	out := g.Join("concat", Video, []Arg{KV("n", 2), KV("v", 1), KV("a", 0)}, v1, v2)
	job, err := g.Output("out.mp4", out)
	require.NoError(t, err)

	assert.Equal(t, "[0:v][1:v]concat=n=2:v=1:a=0[s0]", job.FilterComplex)
	assert.Equal(t, []string{"a.mp4", "b.mp4"}, job.Inputs)
}

func TestGraph_RepeatedPathIsDistinctInput(t *testing.T) {
	g := New()
	v1, _ := g.Input("a.mp4")
	v2, _ := g.Input("a.mp4")
	assert.NotEqual(t, v1.Label(), v2.Label())
	assert.Len(t, g.Inputs(), 2)
}

func TestGraph_ReusedStreamFails(t *testing.T) {
	g := New()
	v, _ := g.Input("a.mp4")
	left := v.Filter("scale", KV("w", 10), KV("h", -1))
	right := v.Filter("scale", KV("w", 20), KV("h", -1))
	out := g.Join("hstack", Video, nil, left, right)

	_, err := g.Output("out.mp4", out)
	assert.ErrorIs(t, err, ErrStreamReused)
}

func TestGraph_OutputSkipsNilAndMapsRawInputs(t *testing.T) {
	g := New()
	v, _ := g.Input("a.mp4")

	job, err := g.Output("out.mp4", v, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"0:v"}, job.Maps)
	assert.NotContains(t, job.Args(), "-filter_complex")
}

func TestGraph_OutputPrunesUnmappedBranches(t *testing.T) {
	g := New()
	v1, a1 := g.Input("base.mp4")
	v2, a2 := g.Input("logo.mp4")
	a1n := a1.Filter("dynaudnorm")
	a2.Filter("dynaudnorm")

	out := g.Join("overlay", Video, []Arg{KV("x", 10), KV("y", 20)}, v1, v2)
	job, err := g.Output("out.mp4", out, a1n)
	require.NoError(t, err)

	assert.Equal(t, "[0:a]dynaudnorm[s0];[0:v][1:v]overlay=x=10:y=20[s2]", job.FilterComplex)
	assert.Equal(t, []string{"[s2]", "[s0]"}, job.Maps)
	assert.Len(t, g.Filters(), 3, "the graph itself keeps every filter")
}

func TestGraph_OutputRequiresStreams(t *testing.T) {
	g := New()
	_, err := g.Output("out.mp4")
	assert.Error(t, err)
}

func TestEscape(t *testing.T) {
	tests := map[string]string{
		"PTS-STARTPTS": "PTS-STARTPTS",
		"30*PI/180":    "30*PI/180",
		"0.5 0.5":      `0.5\ 0.5`,
		"a:b":          `a\\:b`,
		"x,y[z]":       `x\,y\[z\]`,
		"it's":         `it\\\'s`,
		`c:\dir`:       `c\\:\\\\dir`,
	}
	for in, want := range tests {
		assert.Equal(t, want, escape(in), in)
	}
}

func TestGraph_EscapesOptionSeparators(t *testing.T) {
	g := New()
	video, _ := g.Input("a.mp4")
	out := video.Filter("drawtext", KV("text", "10:30"), KV("fontsize", 24))
	job, err := g.Output("out.mp4", out)
	require.NoError(t, err)
	assert.Equal(t, `[0:v]drawtext=text=10\\:30:fontsize=24[s0]`, job.FilterComplex)
}
