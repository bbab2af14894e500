package snapshot

import (
	"context"
	"log/slog"
	"sync"

	"dirwatch/internal/lib/logger/sl"
)

// Differ owns the path -> fingerprint snapshot of one root and computes the
// delta between successive scans. Initialize and Diff must be called from a
// single task; Len and Fingerprint may be called concurrently with them.
type Differ struct {
	root    string
	hasher  FileHasher
	scanner Scanner
	logger  *slog.Logger

	mu    sync.RWMutex
	files map[string]Fingerprint
	// order lists the tracked paths in the enumeration order of the last
	// scan; only the scan task touches it.
	order []string
}

type DifferConfig struct {
	Root    string
	Hasher  FileHasher
	Scanner Scanner
	Logger  *slog.Logger
}

func NewDiffer(cfg DifferConfig) *Differ {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Differ{
		root:    cfg.Root,
		hasher:  cfg.Hasher,
		scanner: cfg.Scanner,
		logger:  cfg.Logger.With(slog.String("root", cfg.Root)),
		files:   make(map[string]Fingerprint),
	}
}

func (d *Differ) Root() string {
	return d.root
}

// Initialize replaces the snapshot with a fresh baseline and returns the
// number of tracked files. Files that cannot be fingerprinted are left out.
func (d *Differ) Initialize(ctx context.Context) int {
	paths := d.scanner.Scan(ctx, d.root)

	files := make(map[string]Fingerprint, len(paths))
	order := make([]string, 0, len(paths))
	for _, path := range paths {
		fp, ok := d.fingerprint(path)
		if !ok {
			continue
		}
		files[path] = fp
		order = append(order, path)
	}

	d.mu.Lock()
	d.files = files
	d.mu.Unlock()
	d.order = order

	d.logger.Debug("snapshot initialized", slog.Int("files", len(files)))
	return len(files)
}

// Diff rescans the root, updates the snapshot in place and returns the
// changes. Added and Modified follow the scan order, Deleted come last in
// the order the previous scan enumerated them.
func (d *Differ) Diff(ctx context.Context) []Event {
	paths := d.scanner.Scan(ctx, d.root)

	var events []Event
	seen := make(map[string]struct{}, len(paths))
	order := make([]string, 0, len(paths))

	for _, path := range paths {
		seen[path] = struct{}{}

		old, tracked := d.files[path]

		fp, ok := d.fingerprint(path)
		if !ok {
			// unreadable on this pass: keep the old value, report nothing
			if tracked {
				order = append(order, path)
			}
			continue
		}
		order = append(order, path)

		switch {
		case !tracked:
			d.set(path, fp)
			events = append(events, NewEvent(KindAdded, path))
		case fp != old:
			d.set(path, fp)
			events = append(events, NewEvent(KindModified, path))
		}
	}

	var deleted []string
	for _, path := range d.order {
		if _, ok := seen[path]; !ok {
			deleted = append(deleted, path)
		}
	}

	if len(deleted) > 0 {
		d.mu.Lock()
		for _, path := range deleted {
			delete(d.files, path)
		}
		d.mu.Unlock()
	}
	for _, path := range deleted {
		events = append(events, NewEvent(KindDeleted, path))
	}
	d.order = order

	return events
}

func (d *Differ) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.files)
}

func (d *Differ) Fingerprint(path string) (Fingerprint, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	fp, ok := d.files[path]
	if !ok {
		return Fingerprint{}, ErrNotTracked
	}
	return fp, nil
}

func (d *Differ) set(path string, fp Fingerprint) {
	d.mu.Lock()
	d.files[path] = fp
	d.mu.Unlock()
}

func (d *Differ) fingerprint(path string) (Fingerprint, bool) {
	fp, err := d.hasher.HashFile(path)
	if err != nil {
		d.logger.Debug("skipping unreadable file", slog.String("path", path), sl.Err(err))
		return Fingerprint{}, false
	}
	return fp, true
}
