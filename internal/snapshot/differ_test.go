package snapshot_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"dirwatch/internal/hasher"
	"dirwatch/internal/lib/logger/handlers/slogdiscard"
	"dirwatch/internal/scaner"
	"dirwatch/internal/snapshot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockHasher struct {
	mock.Mock
}

func (m *MockHasher) HashFile(path string) (snapshot.Fingerprint, error) {
	args := m.Called(path)
	return args.Get(0).(snapshot.Fingerprint), args.Error(1)
}

type staticScanner struct {
	paths []string
}

func (s *staticScanner) Scan(_ context.Context, _ string) []string {
	return s.paths
}

func newDiffer(t *testing.T, root string, patterns ...string) *snapshot.Differ {
	t.Helper()
	m, err := scaner.NewMatcher(scaner.MatchGlob, patterns)
	require.NoError(t, err)

	log := slogdiscard.NewDiscardLogger()
	return snapshot.NewDiffer(snapshot.DifferConfig{
		Root:    root,
		Hasher:  hasher.NewBlake2bHasher(0),
		Scanner: scaner.NewFileScaner(scaner.Config{Matcher: m, Logger: log}),
		Logger:  log,
	})
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func kinds(events []snapshot.Event) map[string]snapshot.Kind {
	out := make(map[string]snapshot.Kind, len(events))
	for _, ev := range events {
		out[ev.Path] = ev.Kind
	}
	return out
}

func TestDiffer_InitializeThenModify(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a.txt")
	write(t, a, "hello")

	d := newDiffer(t, root)
	assert.Equal(t, 1, d.Initialize(context.Background()))

	fp, err := d.Fingerprint(a)
	require.NoError(t, err)
	assert.Equal(t, hasher.Sum([]byte("hello")), fp)

	write(t, a, "world")
	events := d.Diff(context.Background())

	require.Len(t, events, 1)
	assert.Equal(t, snapshot.KindModified, events[0].Kind)
	assert.Equal(t, a, events[0].Path)
	assert.NotEmpty(t, events[0].ID)

	fp, err = d.Fingerprint(a)
	require.NoError(t, err)
	assert.Equal(t, hasher.Sum([]byte("world")), fp)
}

func TestDiffer_AddedToEmptyRoot(t *testing.T) {
	root := t.TempDir()

	d := newDiffer(t, root)
	assert.Equal(t, 0, d.Initialize(context.Background()))

	b := filepath.Join(root, "b.txt")
	write(t, b, "x")

	events := d.Diff(context.Background())
	require.Len(t, events, 1)
	assert.Equal(t, snapshot.KindAdded, events[0].Kind)
	assert.Equal(t, b, events[0].Path)
	assert.Equal(t, 1, d.Len())

	fp, err := d.Fingerprint(b)
	require.NoError(t, err)
	assert.Equal(t, hasher.Sum([]byte("x")), fp)
}

func TestDiffer_Deleted(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a.txt")
	b := filepath.Join(root, "sub", "b.txt")
	write(t, a, "a")
	write(t, b, "b")

	d := newDiffer(t, root)
	require.Equal(t, 2, d.Initialize(context.Background()))

	require.NoError(t, os.RemoveAll(filepath.Join(root, "sub")))

	events := d.Diff(context.Background())
	require.Len(t, events, 1)
	assert.Equal(t, snapshot.KindDeleted, events[0].Kind)
	assert.Equal(t, b, events[0].Path)

	_, err := d.Fingerprint(b)
	assert.ErrorIs(t, err, snapshot.ErrNotTracked)
	assert.Equal(t, 1, d.Len())
}

func TestDiffer_MixedChangesAndIdempotence(t *testing.T) {
	root := t.TempDir()
	keep := filepath.Join(root, "keep.txt")
	change := filepath.Join(root, "change.txt")
	gone := filepath.Join(root, "gone.txt")
	write(t, keep, "same")
	write(t, change, "v1")
	write(t, gone, "bye")

	d := newDiffer(t, root)
	require.Equal(t, 3, d.Initialize(context.Background()))

	added := filepath.Join(root, "new", "added.txt")
	write(t, change, "v2")
	write(t, added, "new")
	require.NoError(t, os.Remove(gone))

	events := d.Diff(context.Background())
	assert.Len(t, events, 3)
	assert.Equal(t, map[string]snapshot.Kind{
		change: snapshot.KindModified,
		added:  snapshot.KindAdded,
		gone:   snapshot.KindDeleted,
	}, kinds(events))
	assert.Equal(t, 3, d.Len())

	assert.Empty(t, d.Diff(context.Background()), "second pass without changes")
}

func TestDiffer_ExcludedPathsNeverTracked(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "a.txt"), "a")
	ignored := filepath.Join(root, "node_modules", "lib.js")
	write(t, ignored, "1")

	d := newDiffer(t, root, "node_modules")
	require.Equal(t, 1, d.Initialize(context.Background()))

	write(t, ignored, "2")
	write(t, filepath.Join(root, "node_modules", "other.js"), "3")
	assert.Empty(t, d.Diff(context.Background()))

	require.NoError(t, os.RemoveAll(filepath.Join(root, "node_modules")))
	assert.Empty(t, d.Diff(context.Background()))

	_, err := d.Fingerprint(ignored)
	assert.ErrorIs(t, err, snapshot.ErrNotTracked)
}

func TestDiffer_InitializeResetsSnapshot(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a.txt")
	write(t, a, "a")

	d := newDiffer(t, root)
	require.Equal(t, 1, d.Initialize(context.Background()))

	require.NoError(t, os.Remove(a))
	write(t, filepath.Join(root, "b.txt"), "b")

	// a fresh baseline reports nothing as added
	assert.Equal(t, 1, d.Initialize(context.Background()))
	assert.Empty(t, d.Diff(context.Background()))
}

func TestDiffer_UnreadableFiles(t *testing.T) {
	scanner := &staticScanner{paths: []string{"/r/a", "/r/b"}}
	h := new(MockHasher)

	fpA := hasher.Sum([]byte("a"))
	h.On("HashFile", "/r/a").Return(fpA, nil).Once()
	h.On("HashFile", "/r/b").Return(snapshot.Fingerprint{}, errors.New("permission denied")).Once()

	d := snapshot.NewDiffer(snapshot.DifferConfig{
		Root:    "/r",
		Hasher:  h,
		Scanner: scanner,
		Logger:  slogdiscard.NewDiscardLogger(),
	})

	// b is left out of the baseline
	require.Equal(t, 1, d.Initialize(context.Background()))

	// a becomes unreadable: old fingerprint kept, no event.
	// b becomes readable: reported as added.
	fpB := hasher.Sum([]byte("b"))
	h.On("HashFile", "/r/a").Return(snapshot.Fingerprint{}, errors.New("vanished")).Once()
	h.On("HashFile", "/r/b").Return(fpB, nil).Once()

	events := d.Diff(context.Background())
	require.Len(t, events, 1)
	assert.Equal(t, snapshot.KindAdded, events[0].Kind)
	assert.Equal(t, "/r/b", events[0].Path)

	fp, err := d.Fingerprint("/r/a")
	require.NoError(t, err)
	assert.Equal(t, fpA, fp)

	h.AssertExpectations(t)
}

func TestDiffer_OrderFollowsScan(t *testing.T) {
	scanner := &staticScanner{}
	h := new(MockHasher)
	h.On("HashFile", mock.AnythingOfType("string")).Return(hasher.Sum([]byte("same")), nil)

	d := snapshot.NewDiffer(snapshot.DifferConfig{Root: "/r", Hasher: h, Scanner: scanner})
	require.Equal(t, 0, d.Initialize(context.Background()))

	scanner.paths = []string{"/r/z", "/r/y", "/r/x"}
	events := d.Diff(context.Background())
	require.Len(t, events, 3)
	assert.Equal(t, "/r/z", events[0].Path)
	assert.Equal(t, "/r/y", events[1].Path)
	assert.Equal(t, "/r/x", events[2].Path)

	scanner.paths = nil
	events = d.Diff(context.Background())
	require.Len(t, events, 3)
	for _, ev := range events {
		assert.Equal(t, snapshot.KindDeleted, ev.Kind)
	}
	assert.Equal(t, []string{"/r/z", "/r/y", "/r/x"}, eventPaths(events), "deletions keep the previous scan order")
}

func TestDiffer_DeletedFollowWalkOrder(t *testing.T) {
	// depth-first walk order, which is not the lexical order of full paths
	scanner := &staticScanner{paths: []string{"/r/a/b", "/r/a.txt", "/r/c"}}
	h := new(MockHasher)
	h.On("HashFile", mock.AnythingOfType("string")).Return(hasher.Sum([]byte("same")), nil)

	d := snapshot.NewDiffer(snapshot.DifferConfig{Root: "/r", Hasher: h, Scanner: scanner})
	require.Equal(t, 3, d.Initialize(context.Background()))

	scanner.paths = []string{"/r/c", "/r/new"}
	events := d.Diff(context.Background())
	require.Len(t, events, 3)
	assert.Equal(t, snapshot.KindAdded, events[0].Kind)
	assert.Equal(t, "/r/new", events[0].Path)
	assert.Equal(t, []string{"/r/a/b", "/r/a.txt"}, eventPaths(events[1:]))

	scanner.paths = nil
	events = d.Diff(context.Background())
	assert.Equal(t, []string{"/r/c", "/r/new"}, eventPaths(events))
	assert.Equal(t, 0, d.Len())
}

func eventPaths(events []snapshot.Event) []string {
	paths := make([]string, 0, len(events))
	for _, ev := range events {
		paths = append(paths, ev.Path)
	}
	return paths
}
