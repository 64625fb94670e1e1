package mediaflow_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ofekfell/mediaflow"
	"github.com/ofekfell/mediaflow/internal/testutils"
	"github.com/ofekfell/mediaflow/pkg/domain"
	"github.com/ofekfell/mediaflow/pkg/dsl"
	"github.com/ofekfell/mediaflow/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T, fake *testutils.FakeEngine, opts ...mediaflow.Option) *mediaflow.Engine {
	t.Helper()
	base := []mediaflow.Option{
		mediaflow.WithRunner(fake),
		mediaflow.WithProber(fake),
		mediaflow.WithResolver(&testutils.LocalResolver{}),
		mediaflow.WithOutputDir(t.TempDir()),
		mediaflow.WithWorkDir(t.TempDir()),
	}
	eng, err := mediaflow.New(append(base, opts...)...)
	require.NoError(t, err)
	return eng
}

func TestFacade_Render(t *testing.T) {
	dir := t.TempDir()
	a := testutils.WriteMedia(t, dir, "a.mp4")
	fake := &testutils.FakeEngine{}
	eng := newEngine(t, fake)

	root, err := dsl.From(a).Trim(0, 1).Fade(dsl.FadeIn, 0, 0.5).Build()
	require.NoError(t, err)

	out, err := eng.Render(context.Background(), root)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(out))
	assert.FileExists(t, out)
	assert.Equal(t, []string{a}, fake.Probes)
}

func TestFacade_RenderWire(t *testing.T) {
	dir := t.TempDir()
	a := testutils.WriteMedia(t, dir, "a.mp4")
	b := testutils.WriteMedia(t, dir, "b.mp4")
	fake := &testutils.FakeEngine{}
	eng := newEngine(t, fake)

	wire := map[string]any{
		"action": "concat",
		"input":  []any{map[string]any{"url": a}, b},
	}
	out, err := eng.RenderWire(context.Background(), wire)
	require.NoError(t, err)
	assert.FileExists(t, out)
	assert.Equal(t, []string{a, b}, fake.LastJob().Inputs)

	root, err := dsl.Scale(a, 640, -1)
	require.NoError(t, err)
	token, err := schema.EncodeToken(root)
	require.NoError(t, err)

	_, err = eng.RenderWire(context.Background(), map[string]any{"result_stream": token})
	require.NoError(t, err)
	assert.Len(t, fake.Jobs, 2)
}

func TestFacade_RenderWireRejectsBadTrees(t *testing.T) {
	fake := &testutils.FakeEngine{}
	eng := newEngine(t, fake)

	_, err := eng.RenderWire(context.Background(), map[string]any{"action": "explode", "input": "a.mp4"})
	assert.ErrorIs(t, err, domain.ErrUnknownAction)
	assert.Empty(t, fake.Jobs)
}

func TestFacade_InputProbingDisabled(t *testing.T) {
	dir := t.TempDir()
	a := testutils.WriteMedia(t, dir, "a.mp4")
	fake := &testutils.FakeEngine{}
	eng := newEngine(t, fake, mediaflow.WithInputProbing(false))

	_, err := eng.Render(context.Background(), domain.Leaf{Reference: a})
	require.NoError(t, err)
	assert.Empty(t, fake.Probes)
}

func TestFacade_Probe(t *testing.T) {
	dir := t.TempDir()
	a := testutils.WriteMedia(t, dir, "a.mp4")
	fake := &testutils.FakeEngine{Info: map[string]*domain.MediaInfo{
		a: {Path: a, Duration: 12.5, HasVideo: true},
	}}
	eng := newEngine(t, fake)

	info, err := eng.Probe(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, 12.5, info.Duration)

	_, err = eng.Probe(context.Background(), filepath.Join(dir, "missing.mp4"))
	assert.ErrorIs(t, err, domain.ErrResolution)
}

func TestFacade_Plan(t *testing.T) {
	dir := t.TempDir()
	a := testutils.WriteMedia(t, dir, "a.mp4")
	fake := &testutils.FakeEngine{}
	eng := newEngine(t, fake)

	root, err := dsl.Concat([]any{a, a})
	require.NoError(t, err)

	plan, err := eng.Plan(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 2, plan.Usage[a])
	assert.Len(t, plan.Copies[a], 1, "the first occurrence uses the original")
	assert.Empty(t, fake.Jobs, "plan must not run the engine")

	for _, alias := range plan.Copies[a] {
		_, err := os.Stat(alias)
		assert.True(t, os.IsNotExist(err), "plan must not write copies")
	}
}

func TestFacade_HooksSeeRender(t *testing.T) {
	dir := t.TempDir()
	a := testutils.WriteMedia(t, dir, "a.mp4")
	var actions []domain.ActionKind
	hooks := domain.LifecycleHooks{
		OnAction: func(_ context.Context, e *domain.ActionEvent) { actions = append(actions, e.Action) },
	}
	eng := newEngine(t, &testutils.FakeEngine{}, mediaflow.WithLifecycleHooks(hooks))

	root, err := dsl.From(a).Blur(2).Rotate(90).Build()
	require.NoError(t, err)
	_, err = eng.Render(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, []domain.ActionKind{domain.ActionBlur, domain.ActionRotate}, actions)
}

func TestFacade_Validate(t *testing.T) {
	eng := newEngine(t, &testutils.FakeEngine{})

	bad := &domain.ActionNode{Kind: domain.ActionTrim, Input: domain.Leaf{Reference: "a.mp4"}, Params: domain.TrimParams{Start: -1, Duration: 1}}
	assert.ErrorIs(t, eng.Validate(bad), domain.ErrValidation)
	assert.Equal(t, "yuv420p", eng.Targets().PixelFormat)
}
