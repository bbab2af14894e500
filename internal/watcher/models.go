package watcher

import (
	"context"
	"log/slog"
	"time"

	"dirwatch/internal/db"
	"dirwatch/internal/snapshot"
)

type Differ interface {
	Root() string
	Initialize(ctx context.Context) int
	Diff(ctx context.Context) []snapshot.Event
	Len() int
}

type Emitter interface {
	// Emit returns the number of sinks that failed.
	Emit(ctx context.Context, ev snapshot.Event) int
}

type StatusStore interface {
	SaveStatus(st *db.Status) error
}

// Config содержит настройки для Monitor
type Config struct {
	Interval time.Duration
	LogFile  string
	// Status is optional; when set, the monitor state is saved after
	// every start, scan and stop.
	Status StatusStore
	Logger *slog.Logger
}
