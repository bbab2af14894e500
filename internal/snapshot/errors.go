package snapshot

import "errors"

var (
	ErrUnknownKind = errors.New("unknown event kind")
	ErrNotTracked  = errors.New("path is not tracked")
)
