package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"github.com/ofekfell/mediaflow/internal/logging"
	"github.com/ofekfell/mediaflow/pkg/domain"
	"github.com/ofekfell/mediaflow/pkg/filtergraph"
)

// Engine drives the ffmpeg and ffprobe binaries.
// It implements ports.Engine.
type Engine struct {
	ffmpeg  string
	ffprobe string
	dir     string
	logger  *slog.Logger
}

// Option configures the engine.
type Option func(*Engine)

// WithFFmpeg pins the ffmpeg binary instead of discovering it.
func WithFFmpeg(path string) Option {
	return func(e *Engine) {
		e.ffmpeg = path
	}
}

// WithFFprobe pins the ffprobe binary instead of discovering it.
func WithFFprobe(path string) Option {
	return func(e *Engine) {
		e.ffprobe = path
	}
}

// WithWorkingDir sets the working directory of spawned processes.
func WithWorkingDir(dir string) Option {
	return func(e *Engine) {
		e.dir = dir
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates an engine. Binaries that were not pinned are discovered;
// a missing ffmpeg is an error, a missing ffprobe only disables Probe.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(e)
	}

	if e.ffmpeg == "" {
		path, err := Discover("ffmpeg")
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrEngine, err)
		}
		e.ffmpeg = path
	}
	if e.ffprobe == "" {
		if path, err := Discover("ffprobe"); err == nil {
			e.ffprobe = path
		} else {
			e.logger.Warn("ffprobe not found, probing disabled")
		}
	}
	return e, nil
}

// FFmpeg returns the ffmpeg binary in use.
func (e *Engine) FFmpeg() string { return e.ffmpeg }

// FFprobe returns the ffprobe binary in use, or "" when probing is disabled.
func (e *Engine) FFprobe() string { return e.ffprobe }

// Run executes the job and blocks until ffmpeg exits.
func (e *Engine) Run(ctx context.Context, job *filtergraph.Job) error {
	args := job.Args()
	cmd := exec.CommandContext(ctx, e.ffmpeg, args...)
	cmd.Dir = e.dir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	start := time.Now()
	e.logger.Debug("ffmpeg started", "output", job.Output, "inputs", len(job.Inputs))

	if err := cmd.Run(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		e.logger.Debug("ffmpeg failed", "exit_code", exitCode, "duration", time.Since(start))
		return &domain.EngineError{
			Args:     append([]string{e.ffmpeg}, args...),
			ExitCode: exitCode,
			Stderr:   stderr.String(),
			Err:      err,
		}
	}

	e.logger.Debug("ffmpeg finished", "output", job.Output, "duration", time.Since(start))
	return nil
}
