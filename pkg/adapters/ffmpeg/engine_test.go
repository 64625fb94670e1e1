package ffmpeg

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	goruntime "runtime"
	"testing"

	"github.com/ofekfell/mediaflow/internal/runtime"
	"github.com/ofekfell/mediaflow/internal/testutils"
	"github.com/ofekfell/mediaflow/pkg/domain"
	"github.com/ofekfell/mediaflow/pkg/dsl"
	"github.com/ofekfell/mediaflow/pkg/filtergraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeBinary(t *testing.T, name, script string) string {
	t.Helper()
	if goruntime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	return path
}

func TestDiscover_PrefersWellKnownDirs(t *testing.T) {
	bin := fakeBinary(t, "ffmpeg", "exit 0\n")
	lookPath := func(string) (string, error) { return "/from/path/ffmpeg", nil }

	got, err := discover("ffmpeg", []string{filepath.Dir(bin)}, lookPath)
	require.NoError(t, err)
	assert.Equal(t, bin, got)

	got, err = discover("ffmpeg", []string{t.TempDir()}, lookPath)
	require.NoError(t, err)
	assert.Equal(t, "/from/path/ffmpeg", got)
}

func TestDiscover_NotFound(t *testing.T) {
	lookPath := func(string) (string, error) { return "", exec.ErrNotFound }

	_, err := discover("ffmpeg", []string{t.TempDir()}, lookPath)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEngine_RunSuccess(t *testing.T) {
	// Writes its last argument, the output path.
	bin := fakeBinary(t, "ffmpeg", "for last; do :; done\necho ok > \"$last\"\n")
	e, err := New(WithFFmpeg(bin), WithFFprobe("unused"))
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "out.mp4")
	job := &filtergraph.Job{Inputs: []string{"in.mp4"}, Maps: []string{"0:v"}, Output: out}

	require.NoError(t, e.Run(context.Background(), job))
	assert.FileExists(t, out)
}

func TestEngine_RunFailureCarriesDiagnostics(t *testing.T) {
	bin := fakeBinary(t, "ffmpeg", "echo 'No such filter: bogus' >&2\nexit 3\n")
	e, err := New(WithFFmpeg(bin), WithFFprobe("unused"))
	require.NoError(t, err)

	job := &filtergraph.Job{Inputs: []string{"in.mp4"}, Maps: []string{"0:v"}, Output: "out.mp4"}
	err = e.Run(context.Background(), job)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEngine)

	var engErr *domain.EngineError
	require.ErrorAs(t, err, &engErr)
	assert.Equal(t, 3, engErr.ExitCode)
	assert.Equal(t, "No such filter: bogus\n", engErr.Stderr)
	assert.Equal(t, bin, engErr.Args[0])
	assert.Equal(t, "out.mp4", engErr.Args[len(engErr.Args)-1])
}

func TestEngine_RunCancelled(t *testing.T) {
	bin := fakeBinary(t, "ffmpeg", "sleep 5\n")
	e, err := New(WithFFmpeg(bin), WithFFprobe("unused"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = e.Run(ctx, &filtergraph.Job{Maps: []string{"0:v"}, Output: "out.mp4"})
	assert.ErrorIs(t, err, domain.ErrEngine)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_ProbeWithoutFFprobe(t *testing.T) {
	e := &Engine{ffmpeg: "ffmpeg", logger: nil}
	_, err := e.Probe(context.Background(), "in.mp4")
	assert.ErrorIs(t, err, domain.ErrProbe)
}

func TestEngine_ProbeFailure(t *testing.T) {
	bin := fakeBinary(t, "ffprobe", "echo 'in.mp4: Invalid data found' >&2\nexit 1\n")
	e, err := New(WithFFmpeg("unused"), WithFFprobe(bin))
	require.NoError(t, err)

	_, err = e.Probe(context.Background(), "in.mp4")
	assert.ErrorIs(t, err, domain.ErrProbe)
	assert.Contains(t, err.Error(), "Invalid data found")
}

func TestEngine_ProbeParsesOutput(t *testing.T) {
	bin := fakeBinary(t, "ffprobe", "cat <<'JSON'\n"+sampleProbe+"\nJSON\n")
	e, err := New(WithFFmpeg("unused"), WithFFprobe(bin))
	require.NoError(t, err)

	info, err := e.Probe(context.Background(), "clip.mp4")
	require.NoError(t, err)
	assert.Equal(t, "h264", info.VideoCodec)
	assert.True(t, info.HasAudio)
}

// TestIntegration_ConcatDuration drives the real binaries when they are installed.
func TestIntegration_ConcatDuration(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	e, err := New()
	if err != nil || e.FFprobe() == "" {
		t.Skip("ffmpeg or ffprobe not installed")
	}
	ctx := context.Background()
	dir := t.TempDir()

	src := filepath.Join(dir, "src.mp4")
	gen := exec.CommandContext(ctx, e.FFmpeg(), "-y", "-hide_banner", "-loglevel", "error",
		"-f", "lavfi", "-i", "testsrc=duration=2:size=64x64:rate=30",
		"-f", "lavfi", "-i", "sine=frequency=440:duration=2",
		"-shortest", "-pix_fmt", "yuv420p", src)
	if out, err := gen.CombinedOutput(); err != nil {
		t.Skipf("cannot generate fixture: %v: %s", err, out)
	}

	first, err := dsl.Trim(src, 0, 1)
	require.NoError(t, err)
	second, err := dsl.Trim(src, 1, 1)
	require.NoError(t, err)
	root, err := dsl.Concat([]any{first, second})
	require.NoError(t, err)

	r := runtime.NewRenderer(&testutils.LocalResolver{}, e,
		runtime.WithProber(e),
		runtime.WithOutputDir(filepath.Join(dir, "out")),
		runtime.WithWorkDir(dir),
	)
	out, err := r.Render(ctx, root)
	require.NoError(t, err)

	info, err := e.Probe(ctx, out)
	require.NoError(t, err)
	assert.True(t, info.HasVideo)
	assert.True(t, info.HasAudio)
	assert.InDelta(t, 2.0, info.Duration, 0.25)
}
