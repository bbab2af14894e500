package hasher

import (
	"fmt"
	"io"
	"os"

	"dirwatch/internal/snapshot"

	"golang.org/x/crypto/blake2b"
)

const DefaultBufferSize = 128 * 1024 // 128 KB

// Blake2bHasher fingerprints files with a 128-bit BLAKE2b digest.
type Blake2bHasher struct {
	bufferSize int
}

func NewBlake2bHasher(bufferSize int) *Blake2bHasher {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Blake2bHasher{bufferSize: bufferSize}
}

func (h *Blake2bHasher) HashFile(path string) (snapshot.Fingerprint, error) {
	file, err := os.Open(path)
	if err != nil {
		return snapshot.Fingerprint{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	hasher, err := blake2b.New(snapshot.FingerprintSize, nil)
	if err != nil {
		return snapshot.Fingerprint{}, fmt.Errorf("failed to create hasher: %w", err)
	}

	buf := make([]byte, h.bufferSize)
	if _, err := io.CopyBuffer(hasher, file, buf); err != nil {
		return snapshot.Fingerprint{}, fmt.Errorf("failed to read file: %w", err)
	}

	var fp snapshot.Fingerprint
	copy(fp[:], hasher.Sum(nil))
	return fp, nil
}

// Sum fingerprints an in-memory buffer the same way HashFile does.
func Sum(data []byte) snapshot.Fingerprint {
	hasher, _ := blake2b.New(snapshot.FingerprintSize, nil)
	hasher.Write(data)

	var fp snapshot.Fingerprint
	copy(fp[:], hasher.Sum(nil))
	return fp
}
