package app

import (
	"context"
	"log/slog"
	"time"

	"pinmap/internal/model"
)

type EventPublisher interface {
	Publish(ctx context.Context, event model.Event) error
}

// publishEvent never fails the caller: the write it describes is already
// committed.
func publishEvent(ctx context.Context, publisher EventPublisher, event model.Event) {
	if publisher == nil {
		return
	}
	event.OccurredAt = time.Now().UTC()
	if err := publisher.Publish(ctx, event); err != nil {
		slog.WarnContext(ctx, "publish event failed", "type", event.Type, "error", err)
	}
}
