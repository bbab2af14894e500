package sink

import (
	"context"
	"fmt"
	"log/slog"

	"dirwatch/internal/lib/logger/sl"
	"dirwatch/internal/snapshot"
)

// Sink receives every event exactly once.
type Sink interface {
	Emit(ctx context.Context, ev snapshot.Event) error
}

// Emitter fans events out to several sinks. A failing sink is reported
// through the logger and never keeps the others from receiving the event.
type Emitter struct {
	sinks  []Sink
	logger *slog.Logger
}

func NewEmitter(logger *slog.Logger, sinks ...Sink) *Emitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Emitter{
		sinks:  sinks,
		logger: logger,
	}
}

// Emit delivers ev to every sink and returns how many of them failed.
func (e *Emitter) Emit(ctx context.Context, ev snapshot.Event) int {
	failed := 0
	for _, s := range e.sinks {
		if err := s.Emit(ctx, ev); err != nil {
			failed++
			e.logger.Error("failed to write event",
				slog.String("sink", fmt.Sprintf("%T", s)),
				slog.String("kind", string(ev.Kind)),
				slog.String("path", ev.Path),
				sl.Err(err),
			)
		}
	}
	return failed
}
