package observability

import (
	"context"
	"log/slog"

	"github.com/ofekfell/mediaflow/pkg/domain"
)

// LogHooks logs every lifecycle event. Actions and copies go to debug.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRenderStart: func(ctx context.Context, e *domain.RenderEvent) {
			logger.InfoContext(ctx, "render_start", "render_id", e.RenderID)
		},
		OnRenderEnd: func(ctx context.Context, e *domain.RenderEvent) {
			if e.Err != nil {
				logger.WarnContext(ctx, "render_end", "render_id", e.RenderID, "duration", e.Duration, "err", e.Err)
				return
			}
			logger.InfoContext(ctx, "render_end", "render_id", e.RenderID, "duration", e.Duration, "output", e.Output)
		},
		OnAction: func(ctx context.Context, e *domain.ActionEvent) {
			logger.DebugContext(ctx, "action", "render_id", e.RenderID, "action", e.Action)
		},
		OnCopy: func(ctx context.Context, e *domain.CopyEvent) {
			logger.DebugContext(ctx, "copy", "render_id", e.RenderID, "source", e.Source, "alias", e.Alias)
		},
	}
}

// Combine calls each hook set in order. Nil callbacks are skipped.
func Combine(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range sets {
		out.OnRenderStart = chain(out.OnRenderStart, h.OnRenderStart)
		out.OnRenderEnd = chain(out.OnRenderEnd, h.OnRenderEnd)
		out.OnAction = chain(out.OnAction, h.OnAction)
		out.OnCopy = chain(out.OnCopy, h.OnCopy)
	}
	return out
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
