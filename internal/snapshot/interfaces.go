package snapshot

import "context"

type FileHasher interface {
	HashFile(path string) (Fingerprint, error)
}

type Scanner interface {
	Scan(ctx context.Context, root string) []string
}
