package bus

import (
	"context"

	"github.com/google/uuid"

	"food-delivery-Orurh/internal/logx"
)

// Inbox remembers processed envelopes per queue.
type Inbox interface {
	Seen(ctx context.Context, queue string, id uuid.UUID) (bool, error)
	MarkProcessed(ctx context.Context, queue string, id uuid.UUID) error
}

// Deduplicate skips envelopes the inbox has already seen on this queue and records
// successful ones. Inbox failures never block handling.
func Deduplicate(queue string, inbox Inbox, logger logx.Logger, next Handler) Handler {
	return func(ctx context.Context, env Envelope) error {
		seen, err := inbox.Seen(ctx, queue, env.ID)
		if err != nil {
			logger.Warn("inbox lookup failed",
				logx.String("queue", queue),
				logx.String("event_id", env.ID.String()),
				logx.Err(err),
			)
		}
		if seen {
			logger.Info("duplicate event skipped",
				logx.String("queue", queue),
				logx.String("event_id", env.ID.String()),
				logx.String("event_type", string(env.Type)),
			)
			return nil
		}

		if err := next(ctx, env); err != nil {
			return err
		}

		if err := inbox.MarkProcessed(ctx, queue, env.ID); err != nil {
			logger.Warn("inbox mark failed",
				logx.String("queue", queue),
				logx.String("event_id", env.ID.String()),
				logx.Err(err),
			)
		}
		return nil
	}
}
