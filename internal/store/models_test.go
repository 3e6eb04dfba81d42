package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loog-project/diffy/pkg/diffy"
)

func TestRevisionIDRoundtrip(t *testing.T) {
	for _, id := range []RevisionID{0, 1, 0xff, 0xdeadbeef, 1 << 40} {
		parsed, err := ParseRevisionID(id.String())
		require.NoError(t, err)
		assert.Equal(t, id, parsed)
	}
	assert.Equal(t, "0000002a", RevisionID(42).String())

	_, err := ParseRevisionID("xyz")
	assert.ErrorIs(t, err, ErrInvalidRevision)
}

func TestEncodeDecodeRevision(t *testing.T) {
	rev := &Revision{
		ID:          3,
		PreviousID:  2,
		HasPrevious: true,
		Time:        time.Unix(1700000000, 0).UTC(),
		Source:      "a.yaml",
		Changes:     4,
		Value: diffy.Hash{
			"s": diffy.String("x"),
			"n": diffy.Number(-1.25),
			"i": diffy.Number(7),
			"b": diffy.Bool(false),
			"z": diffy.Null{},
			"h": diffy.Hash{"empty": diffy.Hash{}},
		},
	}
	data, err := EncodeRevision(DefaultCodec, rev)
	require.NoError(t, err)

	got, err := DecodeRevision(DefaultCodec, data)
	require.NoError(t, err)
	assert.Equal(t, rev.ID, got.ID)
	assert.Equal(t, rev.PreviousID, got.PreviousID)
	assert.True(t, got.HasPrevious)
	assert.True(t, rev.Time.Equal(got.Time))
	assert.Equal(t, rev.Source, got.Source)
	assert.Equal(t, rev.Changes, got.Changes)
	assert.Equal(t, rev.Value, got.Value)
}

func TestEncodeRejectsAbsentValues(t *testing.T) {
	_, err := EncodeRevision(DefaultCodec, &Revision{Value: diffy.Hash{"a": diffy.Hash{"b": nil}}})
	assert.ErrorIs(t, err, diffy.ErrAbsentValue)

	_, err = EncodeRevision(DefaultCodec, &Revision{})
	assert.ErrorIs(t, err, diffy.ErrAbsentValue)
}

func TestDecodeGarbage(t *testing.T) {
	_, err := DecodeRevision(DefaultCodec, []byte{0xc1})
	assert.Error(t, err)
}
