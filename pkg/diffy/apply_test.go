package diffy_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loog-project/diffy/pkg/diffy"
)

func TestApplyKeepsSameValueForNoop(t *testing.T) {
	res, err := diffy.Apply(diffy.Diff(num(0), num(0)), num(0))
	require.NoError(t, err)
	assert.Equal(t, num(0), res)

	empty := h{}
	res, err = diffy.Apply(diffy.Diff(empty, empty), empty)
	require.NoError(t, err)
	assert.True(t, diffy.Same(empty, res), "empty hash must be returned as is")

	hash := h{"a": h{"b": h{"c": num(1)}}}
	res, err = diffy.Apply(diffy.Diff(hash, hash), hash)
	require.NoError(t, err)
	assert.True(t, diffy.Same(hash, res), "unchanged hash must be returned as is")
}

func TestApplyRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		from, to diffy.Value
	}{
		{"deep difference", h{"a": num(1), "b": h{"b1": h{}, "b2": h{"b21": num(0), "b22": num(0)}}},
			h{"a": num(1), "b": h{"b1": h{}, "b2": h{"b21": num(0), "b22": num(100)}}}},
		{"removal", h{"a": num(1), "b": num(0)}, h{"a": num(1)}},
		{"deep removal", h{"x": h{"a": num(1), "b": num(0)}}, h{"x": h{"a": num(1), "c": num(0)}}},
		{"top-level empty hash", num(0), h{}},
		{"hash to primitive", h{}, num(1)},
		{"nested creation", h{}, h{"x": h{}}},
		{"primitive to deep hash", diffy.String("x"), h{"a": h{"b": h{"c": diffy.Null{}}}}},
		{"hash replaced by primitive", h{"a": h{"b": num(1)}}, h{"a": diffy.Bool(true)}},
		{"primitive replaced by hash", h{"a": num(1)}, h{"a": h{"b": num(1)}}},
		{"everything removed", h{"a": num(1), "b": h{"c": num(2)}}, h{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := diffy.Diff(tt.from, tt.to)

			// apply to an equal copy, never to the original origin
			res, err := diffy.Apply(p, diffy.Clone(tt.from))
			require.NoError(t, err)
			assert.True(t, diffy.IsDeepEqual(tt.to, res), "got %v, want %v", res, tt.to)
			assert.True(t, diffy.IsEqual(res, tt.to))
		})
	}
}

func TestApplySharesUnchangedHashes(t *testing.T) {
	from := h{"a": h{"a1": num(0)}, "b": h{"b1": h{}, "b2": h{"b21": num(0), "b22": num(0)}}}
	to := h{"a": h{"a1": num(0)}, "b": h{"b1": h{}, "b2": h{"b21": num(0), "b22": num(100)}}}

	res, err := diffy.Apply(diffy.Diff(from, to), from)
	require.NoError(t, err)
	require.True(t, diffy.IsDeepEqual(to, res))

	got := res.(diffy.Hash)
	assert.False(t, diffy.Same(got, to))
	assert.False(t, diffy.Same(got, from))
	assert.True(t, diffy.Same(got["a"], from["a"]))
	assert.False(t, diffy.Same(got["b"], from["b"]))
	assert.True(t, diffy.Same(got["b"].(diffy.Hash)["b1"], from["b"].(diffy.Hash)["b1"]))

	// the origin itself is left untouched
	assert.Equal(t, num(0), from["b"].(diffy.Hash)["b2"].(diffy.Hash)["b22"])
}

func TestApplyExamples(t *testing.T) {
	res, err := diffy.Apply(hp{"b": diffy.Remove{}}, h{"a": num(1), "b": num(0)})
	require.NoError(t, err)
	assert.Equal(t, h{"a": num(1)}, res)

	res, err = diffy.Apply(add(num(1)), h{})
	require.NoError(t, err)
	assert.Equal(t, num(1), res)

	res, err = diffy.Apply(hp{"x": hp{}}, h{})
	require.NoError(t, err)
	assert.Equal(t, h{"x": h{}}, res)

	// an empty hash patch discards a primitive origin
	res, err = diffy.Apply(hp{}, num(0))
	require.NoError(t, err)
	assert.Equal(t, h{}, res)

	res, err = diffy.Apply(hp{}, nil)
	require.NoError(t, err)
	assert.Equal(t, h{}, res)
}

func TestApplyErrors(t *testing.T) {
	tests := []struct {
		name     string
		patch    diffy.Patch
		obj      diffy.Value
		wantErr  error
		wantPath []string
	}{
		{
			name:    "noop on missing value",
			patch:   diffy.Noop{},
			obj:     nil,
			wantErr: diffy.ErrMissingOrigin,
		},
		{
			name:     "nested noop on missing key",
			patch:    hp{"a": hp{"b": diffy.Noop{}}},
			obj:      h{"a": h{}},
			wantErr:  diffy.ErrMissingOrigin,
			wantPath: []string{"a", "b"},
		},
		{
			name:    "remove at the top",
			patch:   diffy.Remove{},
			obj:     h{"a": num(1)},
			wantErr: diffy.ErrUnexpectedRemove,
		},
		{
			name:    "nil patch",
			patch:   nil,
			obj:     num(1),
			wantErr: diffy.ErrInvalidPatch,
		},
		{
			name:     "add without value",
			patch:    hp{"k": diffy.Add{}},
			obj:      h{},
			wantErr:  diffy.ErrInvalidPatch,
			wantPath: []string{"k"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := diffy.Apply(tt.patch, tt.obj)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, tt.wantErr)

			var applyErr *diffy.ApplyError
			require.True(t, errors.As(err, &applyErr))
			if tt.wantPath == nil {
				assert.Empty(t, applyErr.Path)
			} else {
				assert.Equal(t, tt.wantPath, applyErr.Path)
			}
		})
	}
}

func TestApplyErrorKindsAreDistinct(t *testing.T) {
	_, missing := diffy.Apply(diffy.Noop{}, nil)
	_, remove := diffy.Apply(diffy.Remove{}, num(0))

	assert.ErrorIs(t, missing, diffy.ErrMissingOrigin)
	assert.NotErrorIs(t, missing, diffy.ErrUnexpectedRemove)
	assert.ErrorIs(t, remove, diffy.ErrUnexpectedRemove)
	assert.NotErrorIs(t, remove, diffy.ErrMissingOrigin)
	assert.Contains(t, missing.Error(), "noop patch")
}

func TestMustApplyPanics(t *testing.T) {
	assert.Panics(t, func() { diffy.MustApply(diffy.Remove{}, nil) })
	assert.NotPanics(t, func() { diffy.MustApply(add(num(1)), nil) })
}

func BenchmarkApply_Small(b *testing.B) {
	a := h{"a": num(1), "b": h{"c": diffy.Bool(false)}}
	bb := h{"a": num(1), "b": h{"c": diffy.Bool(true)}}
	p := diffy.Diff(a, bb)
	for i := 0; i < b.N; i++ {
		_ = diffy.MustApply(p, a)
	}
}

func BenchmarkApply_1k(b *testing.B) {
	a, bb := genHashes(1000)
	p := diffy.Diff(a, bb)
	for i := 0; i < b.N; i++ {
		_ = diffy.MustApply(p, a)
	}
}
