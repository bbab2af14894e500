package snapshot

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FingerprintSize is the digest length in bytes (128 bits).
const FingerprintSize = 16

// Fingerprint is a fixed-size digest of a file's full content.
type Fingerprint [FingerprintSize]byte

func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// Kind labels an event. Change kinds describe a single file, marker kinds
// describe the monitor lifecycle.
type Kind string

const (
	KindAdded       Kind = "ADDED"
	KindModified    Kind = "MODIFIED"
	KindDeleted     Kind = "DELETED"
	KindInitialized Kind = "INITIALIZED"
	KindStopped     Kind = "STOPPED"
)

func (k Kind) IsChange() bool {
	return k == KindAdded || k == KindModified || k == KindDeleted
}

func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindAdded, KindModified, KindDeleted, KindInitialized, KindStopped:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Event is immutable once created.
type Event struct {
	ID        string
	Kind      Kind
	Path      string
	Files     int // tracked files, set on INITIALIZED
	Timestamp time.Time
}

func NewEvent(kind Kind, path string) Event {
	return Event{
		ID:        uuid.New().String(),
		Kind:      kind,
		Path:      path,
		Timestamp: time.Now().UTC(),
	}
}

func NewInitializedEvent(root string, files int) Event {
	ev := NewEvent(KindInitialized, root)
	ev.Files = files
	return ev
}

// Subject is what the event is about as written to the sinks: the file
// path for changes, the root (and file count) for markers.
func (e Event) Subject() string {
	if e.Kind == KindInitialized {
		return fmt.Sprintf("%s (%d files)", e.Path, e.Files)
	}
	return e.Path
}
