package bbolt

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loog-project/diffy/internal/store"
	"github.com/loog-project/diffy/pkg/diffy"
)

// handy constants -----------------------------------------------------------

var (
	ctx = context.Background()
	id  = "config.yaml"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "db.bb")
	s, err := New(path, nil, false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

// TestNewAndBuckets checks that the DB opens and buckets exist.
func TestNewAndBuckets(t *testing.T) {
	s, _ := newTestStore(t)

	info, err := os.Stat(s.db.Path())
	require.NoError(t, err)
	assert.NotZero(t, info.Size(), "DB file should not be empty")

	_, err = s.GetLatestRevision(ctx, id)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.Get(ctx, id, 0)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.List(ctx, id)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

// TestSaveGetRoundtrip covers:
//   - claimNextRevision
//   - Save / Get
//   - GetLatestRevision / List
func TestSaveGetRoundtrip(t *testing.T) {
	s, _ := newTestStore(t)
	now := time.Now().UTC().Truncate(time.Millisecond)

	// -------- 1st revision ------------------------------------------------
	first := &store.Revision{
		Time:   now,
		Source: "testdata/config.yaml",
		Value:  diffy.Hash{"foo": diffy.String("bar"), "n": diffy.Null{}},
	}
	require.NoError(t, s.Save(ctx, id, first))
	assert.Equal(t, store.RevisionID(0), first.ID)

	latest, err := s.GetLatestRevision(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, store.RevisionID(0), latest)

	// -------- 2nd revision ------------------------------------------------
	second := &store.Revision{
		PreviousID:  first.ID,
		HasPrevious: true,
		Time:        now.Add(time.Second),
		Changes:     2,
		Value: diffy.Hash{
			"foo":    diffy.String("baz"),
			"nested": diffy.Hash{"answer": diffy.Number(42), "ok": diffy.Bool(true), "empty": diffy.Hash{}},
		},
	}
	require.NoError(t, s.Save(ctx, id, second))
	assert.Equal(t, store.RevisionID(1), second.ID)

	latest, err = s.GetLatestRevision(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, store.RevisionID(1), latest)

	// -------- gets ---------------------------------------------------------
	got, err := s.Get(ctx, id, 1)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
	assert.True(t, got.HasPrevious)
	assert.Equal(t, 2, got.Changes)
	assert.True(t, got.Time.Equal(second.Time))
	assert.True(t, diffy.IsDeepEqual(second.Value, got.Value), "got %v", got.Value)

	got, err = s.Get(ctx, id, 0)
	require.NoError(t, err)
	assert.Equal(t, "testdata/config.yaml", got.Source)
	assert.False(t, got.HasPrevious)
	assert.True(t, diffy.IsDeepEqual(first.Value, got.Value), "got %v", got.Value)

	all, err := s.List(ctx, id)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, store.RevisionID(0), all[0].ID)
	assert.Equal(t, store.RevisionID(1), all[1].ID)
}

func TestSaveRejectsAbsentValues(t *testing.T) {
	s, _ := newTestStore(t)
	err := s.Save(ctx, id, &store.Revision{Value: diffy.Hash{"a": nil}})
	assert.ErrorIs(t, err, diffy.ErrAbsentValue)

	// the failed transaction must not claim a revision
	_, err = s.GetLatestRevision(ctx, id)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestFailedSaveKeepsRevisionID(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Save(ctx, id, &store.Revision{Value: diffy.Number(1)}))

	rev := &store.Revision{ID: 42, Value: diffy.Hash{"a": nil}}
	require.Error(t, s.Save(ctx, id, rev))
	assert.Equal(t, store.RevisionID(42), rev.ID, "ID of a revision that was never stored")

	ok := &store.Revision{ID: 42, Value: diffy.Number(2)}
	require.NoError(t, s.Save(ctx, id, ok))
	assert.Equal(t, store.RevisionID(1), ok.ID)
}

func TestListIgnoresDocumentsSharingAPrefix(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Save(ctx, "a", &store.Revision{Value: diffy.Number(1)}))
	require.NoError(t, s.Save(ctx, "a|b", &store.Revision{Value: diffy.Number(2)}))

	revs, err := s.List(ctx, "a")
	require.NoError(t, err)
	require.Len(t, revs, 1)
	assert.Equal(t, diffy.Number(1), revs[0].Value)

	docs, err := s.Documents(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "a|b"}, docs)
}

func TestWalk(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Save(ctx, "b", &store.Revision{Value: diffy.Number(1)}))
	require.NoError(t, s.Save(ctx, "a", &store.Revision{Value: diffy.Number(2)}))
	require.NoError(t, s.Save(ctx, "b", &store.Revision{Value: diffy.Number(3)}))

	type seen struct {
		doc string
		rev store.RevisionID
	}
	var visited []seen
	require.NoError(t, s.Walk(func(documentID string, rev *store.Revision) bool {
		visited = append(visited, seen{documentID, rev.ID})
		return true
	}))
	assert.Equal(t, []seen{{"a", 0}, {"b", 0}, {"b", 1}}, visited)

	visited = nil
	require.NoError(t, s.Walk(func(documentID string, rev *store.Revision) bool {
		visited = append(visited, seen{documentID, rev.ID})
		return false
	}))
	assert.Len(t, visited, 1)
}

// TestConcurrentClaims ensures claimNextRevision is atomic.
func TestConcurrentClaims(t *testing.T) {
	s, _ := newTestStore(t)

	// race 20 goroutines
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		go func() {
			errs <- s.Save(ctx, id, &store.Revision{Value: diffy.Hash{"x": diffy.Number(i)}})
		}()
	}
	for i := 0; i < 20; i++ {
		require.NoError(t, <-errs)
	}

	latest, err := s.GetLatestRevision(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, store.RevisionID(19), latest)
}

// TestPersistedValues verifies that bytes written are real MessagePack and
// survive reopening the file.
func TestPersistedValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.bb")
	s, err := New(path, nil, true)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, id, &store.Revision{Value: diffy.Hash{"k": diffy.String("v")}}))
	require.NoError(t, s.Close())

	// search for the MessagePack fixstr header of "k" followed by the string
	blob, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.Contains(blob, []byte{0xa1, 'k', 0xa1, 'v'}), "file does not contain the msgpack map entry")

	reopened, err := New(path, nil, true)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	latest, err := reopened.GetLatestRevision(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, store.RevisionID(0), latest)

	rev, err := reopened.Get(ctx, id, latest)
	require.NoError(t, err)
	assert.Equal(t, diffy.Hash{"k": diffy.String("v")}, rev.Value)
}
