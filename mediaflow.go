package mediaflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ofekfell/mediaflow/internal/logging"
	"github.com/ofekfell/mediaflow/internal/runtime"
	"github.com/ofekfell/mediaflow/pkg/adapters/ffmpeg"
	"github.com/ofekfell/mediaflow/pkg/adapters/resolver"
	"github.com/ofekfell/mediaflow/pkg/domain"
	"github.com/ofekfell/mediaflow/pkg/dsl"
	"github.com/ofekfell/mediaflow/pkg/ports"
	"github.com/ofekfell/mediaflow/pkg/schema"
)

// Engine is the high-level entry point for the mediaflow library.
// It wraps the internal renderer and wires the default adapters.
type Engine struct {
	renderer *runtime.Renderer
	resolver ports.Resolver
	runner   ports.Runner
	prober   ports.Prober
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	targets  runtime.Targets

	outputDir   string
	workDir     string
	probeInputs bool
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithResolver replaces the default local/HTTP resolver.
func WithResolver(r ports.Resolver) Option {
	return func(e *Engine) {
		e.resolver = r
	}
}

// WithRunner replaces the discovered ffmpeg binary.
func WithRunner(r ports.Runner) Option {
	return func(e *Engine) {
		e.runner = r
	}
}

// WithProber replaces the discovered ffprobe binary.
func WithProber(p ports.Prober) Option {
	return func(e *Engine) {
		e.prober = p
	}
}

// WithTargets sets the normalization targets applied to every input.
func WithTargets(t runtime.Targets) Option {
	return func(e *Engine) {
		e.targets = t
	}
}

// WithOutputDir sets where final outputs are written.
func WithOutputDir(dir string) Option {
	return func(e *Engine) {
		e.outputDir = dir
	}
}

// WithWorkDir sets where per-render copies are staged.
func WithWorkDir(dir string) Option {
	return func(e *Engine) {
		e.workDir = dir
	}
}

// WithInputProbing toggles probing inputs for an audio stream before
// compiling. Without it every input is assumed to carry audio.
func WithInputProbing(enabled bool) Option {
	return func(e *Engine) {
		e.probeInputs = enabled
	}
}

// New initializes an Engine. Unless a runner is injected, ffmpeg is
// discovered on the host and also serves as the prober.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		targets:     runtime.DefaultTargets(),
		probeInputs: true,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = logging.NewNop()
	}

	if e.runner == nil {
		ff, err := ffmpeg.New(ffmpeg.WithLogger(e.logger))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize ffmpeg: %w", err)
		}
		e.runner = ff
		if e.prober == nil && ff.FFprobe() != "" {
			e.prober = ff
		}
	}
	if e.resolver == nil {
		e.resolver = resolver.New(resolver.WithLogger(e.logger))
	}

	rtOpts := []runtime.Option{
		runtime.WithLogger(e.logger),
		runtime.WithLifecycleHooks(e.hooks),
		runtime.WithTargets(e.targets),
		runtime.WithWorkDir(e.workDir),
	}
	if e.outputDir != "" {
		rtOpts = append(rtOpts, runtime.WithOutputDir(e.outputDir))
	}
	if e.probeInputs && e.prober != nil {
		rtOpts = append(rtOpts, runtime.WithProber(e.prober))
	}
	e.renderer = runtime.NewRenderer(e.resolver, e.runner, rtOpts...)
	return e, nil
}

// Render materializes a workflow tree and returns the absolute output path.
func (e *Engine) Render(ctx context.Context, root domain.Node) (string, error) {
	return e.renderer.Render(ctx, root)
}

// RenderWire decodes a wire tree (map, string or result_stream token) and renders it.
func (e *Engine) RenderWire(ctx context.Context, v any) (string, error) {
	root, err := schema.Decode(v)
	if err != nil {
		return "", err
	}
	return e.Render(ctx, root)
}

// Plan compiles root without running the engine or writing any file.
func (e *Engine) Plan(ctx context.Context, root domain.Node) (*runtime.Plan, error) {
	return e.renderer.Plan(ctx, root)
}

// Validate checks a hand-built tree the same way the builder does.
func (e *Engine) Validate(root domain.Node) error {
	return dsl.Validate(root)
}

// Probe resolves ref and reads its media metadata.
func (e *Engine) Probe(ctx context.Context, ref string) (*domain.MediaInfo, error) {
	if e.prober == nil {
		return nil, fmt.Errorf("%w: no prober configured", domain.ErrProbe)
	}
	path, err := e.resolver.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	return e.prober.Probe(ctx, path)
}

// Targets returns the normalization targets in use.
func (e *Engine) Targets() runtime.Targets {
	return e.targets
}
