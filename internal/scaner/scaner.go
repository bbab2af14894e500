package scaner

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"dirwatch/internal/lib/logger/sl"
)

type FileScaner struct {
	matcher *Matcher
	skip    map[string]struct{}
	logger  *slog.Logger
}

type Config struct {
	Matcher *Matcher
	// SkipPaths are absolute paths that are never reported nor descended
	// into, whatever the patterns say.
	SkipPaths []string
	Logger    *slog.Logger
}

func NewFileScaner(cfg Config) *FileScaner {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		if abs, err := filepath.Abs(p); err == nil {
			skip[abs] = struct{}{}
		}
	}

	return &FileScaner{
		matcher: cfg.Matcher,
		skip:    skip,
		logger:  cfg.Logger,
	}
}

// Scan walks root depth-first and returns every regular file that is not
// excluded, in directory listing order. Excluded directories are pruned.
// Directories that cannot be read are logged and skipped.
func (s *FileScaner) Scan(_ context.Context, root string) []string {
	var files []string

	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.logger.Warn("failed to access path", slog.String("path", path), sl.Err(err))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			if path == root {
				return filepath.SkipAll
			}
			return nil
		}

		if path == root {
			return nil
		}

		if s.shouldSkip(root, path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})

	return files
}

func (s *FileScaner) shouldSkip(root, path string) bool {
	if len(s.skip) > 0 {
		if abs, err := filepath.Abs(path); err == nil {
			if _, ok := s.skip[abs]; ok {
				return true
			}
		}
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return s.matcher.ShouldExclude(rel)
}

// Exists reports whether root is an existing directory.
func Exists(root string) bool {
	info, err := os.Stat(root)
	return err == nil && info.IsDir()
}
