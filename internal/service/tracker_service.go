package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/expr-lang/expr/vm"
	"github.com/rs/zerolog/log"

	"github.com/loog-project/diffy/internal/store"
	"github.com/loog-project/diffy/internal/util"
	"github.com/loog-project/diffy/pkg/diffy"
)

// ErrFiltered is returned by [TrackerService.Commit] when the filter rejected
// the document.
var ErrFiltered = errors.New("document rejected by filter")

// UnchangedError is returned by [TrackerService.Commit] when the document is
// equal to its latest revision.
type UnchangedError struct {
	Revision store.RevisionID
}

func (e UnchangedError) Error() string {
	return fmt.Sprintf("document is unchanged since revision %s", e.Revision)
}

// Change is the patch between a revision and its predecessor.
type Change struct {
	// Previous is nil for the first revision of a document.
	Previous *store.Revision
	Revision *store.Revision
	Patch    diffy.Patch
}

// Origin returns the value the patch applies to, nil for the first revision.
func (c *Change) Origin() diffy.Value {
	if c.Previous == nil {
		return nil
	}
	return c.Previous.Value
}

// TrackerService records revisions of documents.
// Every revision is stored in full; patches between revisions are computed
// on demand and only ever live in memory.
type TrackerService struct {
	ds     store.DocumentStore
	filter *vm.Program
	cache  *stateCache
	now    func() time.Time

	// commitMu serializes commits so that PreviousID always names the
	// revision the patch was computed against
	commitMu sync.Mutex
}

// NewTrackerService creates a new TrackerService instance.
// A nil [filter] accepts all documents.
func NewTrackerService(ds store.DocumentStore, useCache bool, filter *vm.Program) *TrackerService {
	t := &TrackerService{
		ds:     ds,
		filter: filter,
		now:    time.Now,
	}
	if useCache {
		t.cache = newStateCache()
	}
	return t
}

// Commit stores [value] as the next revision of the document and returns the
// revision together with the patch from the previous one.
func (t *TrackerService) Commit(
	ctx context.Context,
	documentID string,
	source string,
	value diffy.Value,
) (*store.Revision, diffy.Patch, error) {
	if err := diffy.Validate(value); err != nil {
		return nil, nil, err
	}
	l := log.With().
		Str("document", documentID).
		Str("source", source).
		Logger()

	if t.filter != nil {
		pass, err := util.RunFilter(t.filter, util.NewDocumentEnv(documentID, source, value))
		if err != nil {
			return nil, nil, fmt.Errorf("evaluate filter: %w", err)
		}
		if !pass {
			return nil, nil, ErrFiltered
		}
	}

	t.commitMu.Lock()
	defer t.commitMu.Unlock()

	previous, err := t.latest(ctx, documentID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, nil, err
	}

	rev := &store.Revision{
		Time:   t.now(),
		Source: source,
		Value:  value,
	}
	var origin diffy.Value
	if previous != nil {
		if diffy.IsDeepEqual(previous.value, value) {
			return nil, nil, UnchangedError{Revision: previous.rev}
		}
		origin = previous.value
		rev.PreviousID = previous.rev
		rev.HasPrevious = true
	}

	patch := diffy.Diff(origin, value)
	rev.Changes = diffy.Summarize(patch).Changes()
	if err := t.ds.Save(ctx, documentID, rev); err != nil {
		return nil, nil, err
	}

	l.Debug().
		Str("revision", rev.ID.String()).
		Int("changes", rev.Changes).
		Msg("Committed revision")

	if t.cache != nil {
		// applying the patch to the cached state shares every untouched hash
		// with it and never aliases the caller's value
		state, err := diffy.Apply(patch, origin)
		if err != nil {
			return nil, nil, fmt.Errorf("update cached state: %w", err)
		}
		t.cache.set(documentID, &trackerState{value: state, rev: rev.ID})
	}
	return rev, patch, nil
}

// latest returns the latest state of the document, from the cache if possible.
func (t *TrackerService) latest(ctx context.Context, documentID string) (*trackerState, error) {
	if t.cache != nil {
		if state := t.cache.get(documentID); state != nil {
			return state, nil
		}
	}
	revID, err := t.ds.GetLatestRevision(ctx, documentID)
	if err != nil {
		return nil, err
	}
	rev, err := t.ds.Get(ctx, documentID, revID)
	if err != nil {
		return nil, fmt.Errorf("load latest revision %s: %w", revID, err)
	}
	return &trackerState{value: rev.Value, rev: rev.ID}, nil
}

// LatestRevision returns the ID of the newest revision of the document.
func (t *TrackerService) LatestRevision(ctx context.Context, documentID string) (store.RevisionID, error) {
	return t.ds.GetLatestRevision(ctx, documentID)
}

// Restore brings back the document state at [rev].
func (t *TrackerService) Restore(ctx context.Context, documentID string, rev store.RevisionID) (*store.Revision, error) {
	return t.ds.Get(ctx, documentID, rev)
}

// Changes returns the patch that turned the previous revision into [rev].
func (t *TrackerService) Changes(ctx context.Context, documentID string, rev store.RevisionID) (*Change, error) {
	cur, err := t.ds.Get(ctx, documentID, rev)
	if err != nil {
		return nil, err
	}
	change := &Change{Revision: cur}
	if cur.HasPrevious {
		change.Previous, err = t.ds.Get(ctx, documentID, cur.PreviousID)
		if err != nil {
			return nil, fmt.Errorf("broken chain at %s: %w", cur.PreviousID, err)
		}
	}
	change.Patch = diffy.Diff(change.Origin(), cur.Value)
	return change, nil
}

// History returns every change of the document, oldest first.
func (t *TrackerService) History(ctx context.Context, documentID string) ([]*Change, error) {
	revisions, err := t.ds.List(ctx, documentID)
	if err != nil {
		return nil, err
	}
	byID := make(map[store.RevisionID]*store.Revision, len(revisions))
	changes := make([]*Change, 0, len(revisions))
	for _, rev := range revisions {
		byID[rev.ID] = rev
		change := &Change{Revision: rev}
		if rev.HasPrevious {
			prev, ok := byID[rev.PreviousID]
			if !ok {
				return nil, fmt.Errorf("broken chain at %s: %w", rev.PreviousID, store.ErrInvalidRevision)
			}
			change.Previous = prev
		}
		change.Patch = diffy.Diff(change.Origin(), rev.Value)
		changes = append(changes, change)
	}
	return changes, nil
}

// Documents returns the IDs of all tracked documents.
func (t *TrackerService) Documents(ctx context.Context) ([]string, error) {
	return t.ds.Documents(ctx)
}

// Walk visits every stored revision, see [store.DocumentStore.Walk].
func (t *TrackerService) Walk(fn store.WalkFunc) error {
	return t.ds.Walk(fn)
}

// Close stops the cache and closes the underlying store.
func (t *TrackerService) Close() error {
	if t.cache != nil {
		t.cache.close()
	}
	return t.ds.Close()
}
