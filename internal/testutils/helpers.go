package testutils

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ofekfell/mediaflow/pkg/domain"
	"github.com/ofekfell/mediaflow/pkg/filtergraph"
	"github.com/ofekfell/mediaflow/pkg/ports"
	"github.com/stretchr/testify/require"
)

// WriteMedia creates a placeholder media file in dir and returns its absolute path.
// The content is derived from name so copies can be told apart from originals.
func WriteMedia(t *testing.T, dir, name string) string {
	t.Helper()

	path, err := filepath.Abs(filepath.Join(dir, name))
	require.NoError(t, err, "Failed to get absolute path")
	require.NoError(t, os.WriteFile(path, []byte("media:"+name), 0o644), "Failed to write media file")
	return path
}

// LocalResolver resolves references that are existing local files and counts calls.
type LocalResolver struct {
	mu    sync.Mutex
	Calls int
}

// Resolve implements ports.Resolver.
func (r *LocalResolver) Resolve(_ context.Context, ref string) (string, error) {
	r.mu.Lock()
	r.Calls++
	r.mu.Unlock()

	if _, err := os.Stat(ref); err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrResolution, ref)
	}
	return ref, nil
}

var _ ports.Resolver = (*LocalResolver)(nil)

// FakeEngine records jobs instead of running ffmpeg.
//
// Run writes a placeholder output file. When Err is set, Run writes a partial
// output first and then fails, like an engine dying mid-encode. Probe answers
// from Info, defaulting to a file with both video and audio.
type FakeEngine struct {
	mu     sync.Mutex
	Jobs   []*filtergraph.Job
	Probes []string

	Err  error
	Info map[string]*domain.MediaInfo

	// Seen holds, per Run call, which input files existed while it ran.
	Seen [][]bool
}

// Run implements ports.Runner.
func (f *FakeEngine) Run(ctx context.Context, job *filtergraph.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Jobs = append(f.Jobs, job)
	seen := make([]bool, len(job.Inputs))
	for i, in := range job.Inputs {
		_, err := os.Stat(in)
		seen[i] = err == nil
	}
	f.Seen = append(f.Seen, seen)

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.WriteFile(job.Output, []byte("rendered"), 0o644); err != nil {
		return err
	}
	if f.Err != nil {
		return f.Err
	}
	return nil
}

// Probe implements ports.Prober.
func (f *FakeEngine) Probe(_ context.Context, path string) (*domain.MediaInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Probes = append(f.Probes, path)
	if info, ok := f.Info[path]; ok {
		return info, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrProbe, path, err)
	}
	return &domain.MediaInfo{Path: path, Format: "mov,mp4,m4a,3gp,3g2,mj2", HasVideo: true, HasAudio: true}, nil
}

// LastJob returns the most recent job, or nil.
func (f *FakeEngine) LastJob() *filtergraph.Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Jobs) == 0 {
		return nil
	}
	return f.Jobs[len(f.Jobs)-1]
}

var _ ports.Engine = (*FakeEngine)(nil)
