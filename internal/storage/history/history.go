// Package history keeps a queryable record of emitted events in SQLite.
package history

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"dirwatch/internal/snapshot"
	"dirwatch/pkg/migrator"

	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

const DefaultLimit = 50

var (
	ErrDBOperationFailed = errors.New("database operation failed")
	ErrInvalidInput      = errors.New("invalid input parameters")
)

// Filter narrows Recent; zero values mean "any".
type Filter struct {
	Root  string
	Kind  snapshot.Kind
	Limit int
}

func (f *Filter) buildWhereClause() (string, []interface{}) {
	where := []string{}
	args := []interface{}{}

	if f.Root != "" {
		where = append(where, "root = ?")
		args = append(args, f.Root)
	}
	if f.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, string(f.Kind))
	}

	var query string
	if len(where) > 0 {
		query = strings.Join(where, " AND ")
	}
	return query, args
}

type Record struct {
	Root  string
	Event snapshot.Event
}

type Storage struct {
	db     *sql.DB
	root   string
	logger *slog.Logger
	mu     sync.Mutex // serializes writers
}

type Config struct {
	DBPath string
	// Root is recorded with every event appended through Emit.
	Root string
}

// New opens (creating if needed) the history database and applies the
// embedded migrations.
func New(cfg Config, logger *slog.Logger) (*Storage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("%w: empty db path", ErrInvalidInput)
	}

	db, err := OpenDB(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	if err := NewMigrator(db, logger).MigrateUp(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate history db: %w", err)
	}

	return &Storage{
		db:     db,
		root:   cfg.Root,
		logger: logger,
	}, nil
}

// OpenDB opens the history database without touching its schema.
func OpenDB(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// set connection parameters
	db.SetMaxOpenConns(1) // SQLite supports only one writer at a time
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(10 * time.Minute)

	return db, nil
}

// NewMigrator returns a migrator over the embedded history schema.
func NewMigrator(db *sql.DB, logger *slog.Logger) *migrator.Migrator {
	return migrator.NewMigrator(db, migrator.Config{
		MigrationsFS:   migrations,
		MigrationsPath: "migrations",
	}, logger)
}

func (s *Storage) Close() error {
	s.logger.Debug("Closing history storage")
	return s.db.Close()
}

// Emit makes Storage usable as an event sink for its configured root.
func (s *Storage) Emit(ctx context.Context, ev snapshot.Event) error {
	return s.Append(ctx, s.root, ev)
}

func (s *Storage) Append(ctx context.Context, root string, ev snapshot.Event) error {
	if ev.ID == "" || ev.Kind == "" {
		return fmt.Errorf("%w: event without id or kind", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (id, root, kind, path, files, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		ev.ID, root, string(ev.Kind), ev.Path, ev.Files, ev.Timestamp.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("%w: failed to insert event: %v", ErrDBOperationFailed, err)
	}
	return nil
}

// Recent returns the newest events first.
func (s *Storage) Recent(ctx context.Context, filter Filter) ([]Record, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultLimit
	}

	query := `SELECT id, root, kind, path, files, occurred_at FROM events`
	where, args := filter.buildWhereClause()
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY occurred_at DESC, rowid DESC LIMIT ?"
	args = append(args, filter.Limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query events: %v", ErrDBOperationFailed, err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec        Record
			kind       string
			occurredAt int64
		)
		if err := rows.Scan(&rec.Event.ID, &rec.Root, &kind, &rec.Event.Path, &rec.Event.Files, &occurredAt); err != nil {
			return nil, fmt.Errorf("%w: failed to scan event: %v", ErrDBOperationFailed, err)
		}
		rec.Event.Kind = snapshot.Kind(kind)
		rec.Event.Timestamp = time.Unix(0, occurredAt).UTC()
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to iterate events: %v", ErrDBOperationFailed, err)
	}

	return records, nil
}

func (s *Storage) Count(ctx context.Context, root string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE root = ?`, root).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to count events: %v", ErrDBOperationFailed, err)
	}
	return n, nil
}

// Prune deletes all but the newest keep events of root and reports how
// many rows were removed.
func (s *Storage) Prune(ctx context.Context, root string, keep int) (int64, error) {
	if keep < 0 {
		return 0, fmt.Errorf("%w: negative keep %d", ErrInvalidInput, keep)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM events
		WHERE root = ? AND id NOT IN (
			SELECT id FROM events WHERE root = ? ORDER BY occurred_at DESC, rowid DESC LIMIT ?
		)`, root, root, keep)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to prune events: %v", ErrDBOperationFailed, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: failed to prune events: %v", ErrDBOperationFailed, err)
	}
	return n, nil
}
