package bbolt

import (
	"encoding/binary"

	"go.etcd.io/bbolt"

	"github.com/loog-project/diffy/internal/store"
)

func keyDocumentRevision(documentID string, id store.RevisionID) []byte {
	buf := make([]byte, len(documentID)+revisionKeySize)
	copy(buf, documentID)
	buf[len(documentID)] = '|'
	binary.BigEndian.PutUint64(buf[len(documentID)+1:], uint64(id))
	return buf
}

func splitDocumentRevision(key []byte) (string, store.RevisionID, bool) {
	if len(key) < revisionKeySize || key[len(key)-revisionKeySize] != '|' {
		return "", 0, false
	}
	split := len(key) - revisionKeySize
	return string(key[:split]), store.RevisionID(binary.BigEndian.Uint64(key[split+1:])), true
}

// claimNextRevision atomically increments the next revision counter in bucketLatest *and*
// updates the in-memory cache. It returns the newly assigned revision number.
func (s *Store) claimNextRevision(tx *bbolt.Tx, documentID string) (store.RevisionID, error) {
	latest := tx.Bucket(bucketLatest)

	var next uint64
	if raw := latest.Get([]byte(documentID)); raw != nil {
		next = binary.BigEndian.Uint64(raw)
	}
	revisionNumber := store.RevisionID(next)
	next++

	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, next)
	if err := latest.Put([]byte(documentID), buf); err != nil {
		return 0, err
	}

	// only publish the counter once the transaction is committed
	tx.OnCommit(func() {
		s.nextRevisionCounterMutex.Lock()
		s.nextRevisionCounter[documentID] = next
		s.nextRevisionCounterMutex.Unlock()
	})

	return revisionNumber, nil
}
