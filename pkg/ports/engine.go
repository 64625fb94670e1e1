package ports

import (
	"context"

	"github.com/ofekfell/mediaflow/pkg/filtergraph"
	"github.com/ofekfell/mediaflow/pkg/domain"
)

// Prober reads media metadata.
type Prober interface {
	// Probe returns the metadata of the file at path.
	// Failures wrap domain.ErrProbe.
	Probe(ctx context.Context, path string) (*domain.MediaInfo, error)
}

// Runner materializes compiled graphs.
type Runner interface {
	// Run executes the job synchronously and returns once the output is written.
	// Failures are *domain.EngineError carrying the engine diagnostics verbatim.
	Run(ctx context.Context, job *filtergraph.Job) error
}

// Engine is the full capability set of an external media engine.
type Engine interface {
	Prober
	Runner
}
