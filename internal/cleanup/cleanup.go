package cleanup

import (
	"context"
	"fmt"
	"log/slog"
)

// DefaultKeep is how many events per root survive a cleanup.
const DefaultKeep = 10000

type EventPruner interface {
	Prune(ctx context.Context, root string, keep int) (int64, error)
}

// HistoryCleaner bounds the size of the event history.
type HistoryCleaner struct {
	pruner EventPruner
	keep   int
	logger *slog.Logger
}

// NewHistoryCleaner returns a cleaner keeping the newest keep events.
// A negative keep disables cleanup.
func NewHistoryCleaner(pruner EventPruner, keep int, logger *slog.Logger) *HistoryCleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &HistoryCleaner{
		pruner: pruner,
		keep:   keep,
		logger: logger,
	}
}

func (c *HistoryCleaner) CleanupOldEvents(ctx context.Context, root string) error {
	if c.keep < 0 {
		return nil
	}

	removed, err := c.pruner.Prune(ctx, root, c.keep)
	if err != nil {
		return fmt.Errorf("failed to cleanup history of %s: %w", root, err)
	}

	if removed > 0 {
		c.logger.Debug("old events removed from history",
			slog.String("root", root),
			slog.Int64("removed", removed),
			slog.Int("kept", c.keep),
		)
	}
	return nil
}
