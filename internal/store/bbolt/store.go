package bbolt

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"sync"

	"go.etcd.io/bbolt"

	"github.com/loog-project/diffy/internal/store"
)

var (
	bucketRevisions = []byte("revisions") // <doc>|rev -> encoded Revision
	bucketLatest    = []byte("latest")    // <doc>     -> uint64(next revision)
)

// revisionKeySize is the length of the "|rev" suffix of revision keys.
const revisionKeySize = 1 + 8

type Store struct {
	db    *bbolt.DB
	codec store.Codec

	nextRevisionCounterMutex sync.RWMutex
	nextRevisionCounter      map[string]uint64
}

var _ store.DocumentStore = (*Store)(nil)

// New opens (or creates) a BoltDB database file.
// Pass nil for [codec] to use the default MessagePack implementation.
// With [durable] unset, writes are not fsynced.
func New(path string, codec store.Codec, durable bool) (*Store, error) {
	if codec == nil {
		codec = store.DefaultCodec
	}
	db, err := bbolt.Open(path, 0666, &bbolt.Options{
		Timeout:      0,
		NoSync:       !durable,
		FreelistType: bbolt.FreelistMapType,
	})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketRevisions, bucketLatest} {
			if _, e := tx.CreateBucketIfNotExists(b); e != nil {
				return e
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create default buckets: %w", err)
	}
	return &Store{
		db:                  db,
		codec:               codec,
		nextRevisionCounter: make(map[string]uint64),
	}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores a full revision and bumps the counter. The ID of [rev] is only
// set once the transaction committed.
func (s *Store) Save(_ context.Context, documentID string, rev *store.Revision) error {
	var revNum store.RevisionID
	err := s.db.Update(func(tx *bbolt.Tx) error {
		var err error
		revNum, err = s.claimNextRevision(tx, documentID)
		if err != nil {
			return err
		}

		stored := *rev
		stored.ID = revNum
		payload, err := store.EncodeRevision(s.codec, &stored)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketRevisions).Put(keyDocumentRevision(documentID, revNum), payload)
	})
	if err != nil {
		return err
	}
	rev.ID = revNum
	return nil
}

func (s *Store) Get(_ context.Context, documentID string, revID store.RevisionID) (*store.Revision, error) {
	var rev *store.Revision
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketRevisions).Get(keyDocumentRevision(documentID, revID))
		if v == nil {
			return store.ErrNotFound
		}
		var err error
		rev, err = store.DecodeRevision(s.codec, v)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rev, nil
}

// GetLatestRevision returns the highest committed revision for documentID.
func (s *Store) GetLatestRevision(_ context.Context, documentID string) (store.RevisionID, error) {
	// check cache first
	s.nextRevisionCounterMutex.RLock()
	if next, ok := s.nextRevisionCounter[documentID]; ok {
		s.nextRevisionCounterMutex.RUnlock()
		return store.RevisionID(next - 1), nil
	}
	s.nextRevisionCounterMutex.RUnlock()

	var next uint64
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketLatest).Get([]byte(documentID))
		if v == nil {
			return store.ErrNotFound
		}
		next = binary.BigEndian.Uint64(v)
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.nextRevisionCounterMutex.Lock()
	s.nextRevisionCounter[documentID] = next
	s.nextRevisionCounterMutex.Unlock()
	return store.RevisionID(next - 1), nil
}

func (s *Store) List(_ context.Context, documentID string) ([]*store.Revision, error) {
	var revisions []*store.Revision
	prefix := append([]byte(documentID), '|')
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketRevisions).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			// skip documents whose ID merely starts with "<documentID>|"
			if len(k) != len(documentID)+revisionKeySize {
				continue
			}
			rev, err := store.DecodeRevision(s.codec, v)
			if err != nil {
				return err
			}
			revisions = append(revisions, rev)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(revisions) == 0 {
		return nil, store.ErrNotFound
	}
	return revisions, nil
}

func (s *Store) Documents(_ context.Context) ([]string, error) {
	var documents []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketLatest).ForEach(func(k, _ []byte) error {
			documents = append(documents, string(k))
			return nil
		})
	})
	return documents, err
}

// Walk visits every revision in key order: grouped by document, oldest first.
func (s *Store) Walk(fn store.WalkFunc) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketRevisions).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			documentID, _, ok := splitDocumentRevision(k)
			if !ok {
				return fmt.Errorf("malformed revision key %q: %w", k, store.ErrInvalidRevision)
			}
			rev, err := store.DecodeRevision(s.codec, v)
			if err != nil {
				return err
			}
			if !fn(documentID, rev) {
				return nil
			}
		}
		return nil
	})
}
