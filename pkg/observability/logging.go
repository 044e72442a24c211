package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/tendril/pkg/domain"
)

// LogHooks returns lifecycle hooks writing one Debug line per tag start and end.
// Failures are logged at Warn.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTagStart: func(ctx context.Context, e *domain.TagEvent) {
			logger.DebugContext(ctx, "tag_start",
				"tag", e.Tag.String(),
				"location", e.Location.String(),
				"depth", e.Depth,
			)
		},
		OnTagEnd: func(ctx context.Context, e *domain.TagEvent) {
			if e.Err != nil {
				logger.WarnContext(ctx, "tag_failed",
					"tag", e.Tag.String(),
					"location", e.Location.String(),
					"error", e.Err,
				)
				return
			}
			logger.DebugContext(ctx, "tag_end",
				"tag", e.Tag.String(),
				"duration", e.Duration,
			)
		},
	}
}
