package store

import (
	"fmt"
	"strconv"
	"time"

	"github.com/loog-project/diffy/pkg/diffy"
)

type RevisionID uint64

func (id RevisionID) String() string {
	return fmt.Sprintf("%08x", uint64(id))
}

// ParseRevisionID parses the hexadecimal form printed by [RevisionID.String].
func ParseRevisionID(s string) (RevisionID, error) {
	n, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", s, ErrInvalidRevision)
	}
	return RevisionID(n), nil
}

// Revision is a full snapshot of a document at one point in time.
// Patches are never stored; they are recomputed from neighbouring revisions.
type Revision struct {
	/// Revision Metadata
	// ID of the revision, assigned by the store on save.
	ID RevisionID
	// PreviousID is the ID of the previous revision. It is only meaningful if
	// HasPrevious is set, since the first revision has ID 0.
	PreviousID  RevisionID
	HasPrevious bool
	// Time the revision was committed.
	Time time.Time
	// Source describes where the document was read from, e.g. a file path.
	Source string

	/// Snapshot Metadata
	// Changes is the number of patch instructions from the previous revision.
	Changes int
	// Value is the document itself.
	Value diffy.Value
}

// record is the encoded form of a [Revision].
type record struct {
	ID          RevisionID `msgpack:"i"`
	PreviousID  RevisionID `msgpack:"<,omitempty"`
	HasPrevious bool       `msgpack:"h,omitempty"`
	Time        time.Time  `msgpack:"t"`
	Source      string     `msgpack:"s,omitempty"`
	Changes     int        `msgpack:"c,omitempty"`
	Value       any        `msgpack:"o"`
}

// EncodeRevision encodes rev with the given codec.
func EncodeRevision(codec Codec, rev *Revision) ([]byte, error) {
	if err := diffy.Validate(rev.Value); err != nil {
		return nil, fmt.Errorf("invalid revision value: %w", err)
	}
	return codec.Marshal(&record{
		ID:          rev.ID,
		PreviousID:  rev.PreviousID,
		HasPrevious: rev.HasPrevious,
		Time:        rev.Time,
		Source:      rev.Source,
		Changes:     rev.Changes,
		Value:       diffy.ToAny(rev.Value),
	})
}

// DecodeRevision decodes a revision encoded by [EncodeRevision].
func DecodeRevision(codec Codec, data []byte) (*Revision, error) {
	var rec record
	if err := codec.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	value, err := diffy.FromAny(rec.Value)
	if err != nil {
		return nil, fmt.Errorf("decode revision %s: %w", rec.ID, err)
	}
	return &Revision{
		ID:          rec.ID,
		PreviousID:  rec.PreviousID,
		HasPrevious: rec.HasPrevious,
		Time:        rec.Time,
		Source:      rec.Source,
		Changes:     rec.Changes,
		Value:       value,
	}, nil
}
