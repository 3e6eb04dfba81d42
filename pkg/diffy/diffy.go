// Package diffy computes structural patches between tree-shaped values and
// applies them again.
//
// A [Value] is either a [Primitive] ([String], [Number], [Bool] or [Null]) or
// a [Hash] of string keys to Values. A nil Value is not a value at all: it
// means "nothing here" and is used for origins that do not exist yet.
//
//	p := diffy.Diff(from, to)
//	res, err := diffy.Apply(p, fromCopy) // diffy.IsEqual(res, to) holds
//
// [Apply] shares every subtree that the patch does not touch with the origin,
// so the result of applying a no-op patch is the origin itself.
package diffy

import "errors"

var (
	// ErrMissingOrigin is returned when a [Noop] patch is applied to an absent
	// value, i.e. the patch was computed against a different origin.
	ErrMissingOrigin = errors.New("noop patch applied to missing value")
	// ErrUnexpectedRemove is returned when a [Remove] patch is applied
	// directly instead of inside its enclosing [HashPatch].
	ErrUnexpectedRemove = errors.New("remove patch applied outside of a hash patch")
	// ErrInvalidPatch is returned for nil or unknown patch values.
	ErrInvalidPatch = errors.New("invalid patch")

	// ErrAbsentValue reports a nil Value where a value is required.
	ErrAbsentValue = errors.New("absent value")
	// ErrUnsupportedKind reports data that has no Value representation.
	ErrUnsupportedKind = errors.New("unsupported kind")
)
