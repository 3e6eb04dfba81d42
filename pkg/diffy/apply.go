package diffy

import (
	"fmt"
	"maps"
	"strings"
)

// ApplyError describes where [Apply] failed. It unwraps to
// [ErrMissingOrigin], [ErrUnexpectedRemove] or [ErrInvalidPatch].
type ApplyError struct {
	// Path holds the keys leading to the failing patch, outermost first.
	Path []string
	Err  error
}

func (e *ApplyError) Error() string {
	if len(e.Path) == 0 {
		return fmt.Sprintf("apply patch: %v", e.Err)
	}
	return fmt.Sprintf("apply patch at %q: %v", strings.Join(e.Path, "."), e.Err)
}

func (e *ApplyError) Unwrap() error {
	return e.Err
}

// Apply returns the value obtained by applying [p] to [obj].
//
// [obj] must be equal to the origin the patch was computed from, or nil if
// there was none. Untouched hashes of [obj] are reused in the result instead
// of being copied, and [obj] itself is never modified.
func Apply(p Patch, obj Value) (Value, error) {
	return applyRecursive(p, obj, nil)
}

// MustApply is like [Apply] but panics on error.
func MustApply(p Patch, obj Value) Value {
	res, err := Apply(p, obj)
	if err != nil {
		panic(err)
	}
	return res
}

func applyRecursive(p Patch, obj Value, path []string) (Value, error) {
	switch patch := p.(type) {
	case Noop:
		if obj == nil {
			return nil, newApplyError(path, ErrMissingOrigin)
		}
		return obj, nil

	case Add:
		if patch.Value == nil {
			return nil, newApplyError(path, ErrInvalidPatch)
		}
		return patch.Value, nil

	case Remove: // must have been handled by the enclosing hash patch
		return nil, newApplyError(path, ErrUnexpectedRemove)

	case HashPatch:
		objHash, isHash := obj.(Hash)
		if len(patch) == 0 {
			if isHash && objHash != nil {
				return objHash, nil
			}
			return Hash{}, nil
		}

		// the target is a hash from here on, anything else gets replaced
		res := make(Hash, len(objHash)+len(patch))
		maps.Copy(res, objHash)
		for k, sub := range patch {
			if _, ok := sub.(Remove); ok {
				delete(res, k)
				continue
			}
			// res[k] may be nil for new keys
			v, err := applyRecursive(sub, res[k], append(path, k))
			if err != nil {
				return nil, err
			}
			res[k] = v
		}
		return res, nil

	default:
		return nil, newApplyError(path, ErrInvalidPatch)
	}
}

func newApplyError(path []string, err error) *ApplyError {
	return &ApplyError{Path: append([]string(nil), path...), Err: err}
}
