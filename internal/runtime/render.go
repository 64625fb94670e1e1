package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/ofekfell/mediaflow/internal/logging"
	"github.com/ofekfell/mediaflow/pkg/domain"
	"github.com/ofekfell/mediaflow/pkg/dsl"
	"github.com/ofekfell/mediaflow/pkg/filtergraph"
	"github.com/ofekfell/mediaflow/pkg/ports"
)

// Renderer compiles workflow trees and drives the engine.
// A Renderer is safe for concurrent use; every call owns its own state.
type Renderer struct {
	resolver ports.Resolver
	runner   ports.Runner
	prober   ports.Prober
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	targets  Targets

	outputDir string
	workDir   string
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(r *Renderer) {
		r.hooks = hooks
	}
}

// WithProber lets the renderer detect inputs without audio.
func WithProber(p ports.Prober) Option {
	return func(r *Renderer) {
		r.prober = p
	}
}

// WithTargets overrides the normalization targets.
func WithTargets(t Targets) Option {
	return func(r *Renderer) {
		r.targets = t.withDefaults()
	}
}

// WithOutputDir sets where final outputs are written. Defaults to os.TempDir().
func WithOutputDir(dir string) Option {
	return func(r *Renderer) {
		r.outputDir = dir
	}
}

// WithWorkDir sets the parent of the per-render scratch directories holding
// copies. Empty means os.TempDir().
func WithWorkDir(dir string) Option {
	return func(r *Renderer) {
		r.workDir = dir
	}
}

// NewRenderer creates a renderer over a resolver and an engine runner.
func NewRenderer(resolver ports.Resolver, runner ports.Runner, opts ...Option) *Renderer {
	r := &Renderer{
		resolver:  resolver,
		runner:    runner,
		logger:    logging.NewNop(),
		targets:   DefaultTargets(),
		outputDir: os.TempDir(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Plan is a compiled render that has not been run.
type Plan struct {
	Usage  map[string]int      `json:"usage"`
	Copies map[string][]string `json:"copies,omitempty"`
	Job    *filtergraph.Job    `json:"job"`
}

// Render materializes root and returns the absolute path of the output file.
// On failure no path is returned and nothing the call created is left behind.
func (r *Renderer) Render(ctx context.Context, root domain.Node) (string, error) {
	id := uuid.New().String()
	start := time.Now()
	if r.hooks.OnRenderStart != nil {
		r.hooks.OnRenderStart(ctx, &domain.RenderEvent{EventBase: base(domain.EventRenderStart, id)})
	}

	output, err := r.render(ctx, id, root)
	elapsed := time.Since(start)
	if err != nil {
		r.logger.Error("render failed", "render_id", id, "err", err)
	} else {
		r.logger.Info("render finished", "render_id", id, "output", output, "duration", elapsed)
	}

	if r.hooks.OnRenderEnd != nil {
		r.hooks.OnRenderEnd(ctx, &domain.RenderEvent{
			EventBase: base(domain.EventRenderEnd, id),
			Output:    output,
			Duration:  elapsed,
			Err:       err,
		})
	}
	return output, err
}

func (r *Renderer) render(ctx context.Context, id string, root domain.Node) (string, error) {
	if err := dsl.Validate(root); err != nil {
		return "", err
	}

	dir, err := os.MkdirTemp(r.workDir, "mediaflow-")
	if err != nil {
		return "", fmt.Errorf("create work dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			r.logger.Warn("work dir cleanup failed", "path", dir, "err", err)
		}
	}()

	resolver := newMemoResolver(r.resolver)
	usage, err := Scan(ctx, root, resolver)
	if err != nil {
		return "", err
	}
	r.logger.Debug("usage scanned", "render_id", id, "count", len(usage.Paths()))

	copies, err := PrepareCopies(ctx, usage, dir, func(src, alias string) {
		r.logger.Debug("copy created", "render_id", id, "path", src, "alias", alias)
		if r.hooks.OnCopy != nil {
			r.hooks.OnCopy(ctx, &domain.CopyEvent{EventBase: base(domain.EventCopy, id), Source: src, Alias: alias})
		}
	})
	if err != nil {
		return "", err
	}
	defer func() {
		if err := copies.Release(); err != nil {
			r.logger.Warn("copy cleanup failed", "render_id", id, "err", err)
		}
	}()

	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	output, err := filepath.Abs(filepath.Join(r.outputDir, "final_"+uuid.New().String()+".mp4"))
	if err != nil {
		return "", err
	}

	job, err := r.evaluator(ctx, id, resolver, copies).compile(ctx, root, output)
	if err != nil {
		return "", err
	}

	r.logger.Debug("running engine", "render_id", id, "inputs", len(job.Inputs), "output", output)
	if err := r.runner.Run(ctx, job); err != nil {
		if rmErr := os.Remove(output); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			r.logger.Warn("partial output cleanup failed", "output", output, "err", rmErr)
		}
		return "", err
	}
	if _, err := os.Stat(output); err != nil {
		return "", fmt.Errorf("%w: engine reported success but wrote no output: %v", domain.ErrEngine, err)
	}
	return output, nil
}

// Plan validates, scans and compiles root without copying or running
// anything. Alias paths in the plan are the names a render would use.
func (r *Renderer) Plan(ctx context.Context, root domain.Node) (*Plan, error) {
	if err := dsl.Validate(root); err != nil {
		return nil, err
	}
	resolver := newMemoResolver(r.resolver)
	usage, err := Scan(ctx, root, resolver)
	if err != nil {
		return nil, err
	}

	workDir := r.workDir
	if workDir == "" {
		workDir = os.TempDir()
	}
	copies := planCopies(usage, filepath.Join(workDir, "mediaflow-plan"))
	output := filepath.Join(r.outputDir, "final_"+uuid.New().String()+".mp4")
	job, err := r.evaluator(ctx, "", resolver, copies).compile(ctx, root, output)
	if err != nil {
		return nil, err
	}

	plan := &Plan{Usage: usage.Map(), Copies: make(map[string][]string), Job: job}
	for _, p := range usage.Paths() {
		if a := copies.Aliases(p); len(a) > 0 {
			plan.Copies[p] = a
		}
	}
	return plan, nil
}

func (r *Renderer) evaluator(ctx context.Context, id string, resolver ports.Resolver, copies *CopyTable) *evaluator {
	ev := &evaluator{
		graph:      filtergraph.New(),
		resolver:   resolver,
		copies:     copies,
		normalizer: NewNormalizer(r.targets),
		registry:   NewRegistry(r.targets.FPS),
		prober:     r.prober,
	}
	if id != "" {
		ev.onAction = func(kind domain.ActionKind) {
			r.logger.Debug("action compiled", "render_id", id, "action", kind)
			if r.hooks.OnAction != nil {
				r.hooks.OnAction(ctx, &domain.ActionEvent{EventBase: base(domain.EventAction, id), Action: kind})
			}
		}
	}
	return ev
}

func base(t domain.EventType, id string) domain.EventBase {
	return domain.EventBase{Timestamp: time.Now(), Type: t, RenderID: id}
}
