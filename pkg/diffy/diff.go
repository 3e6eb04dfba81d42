package diffy

import "fmt"

// Diff returns the patch required to transform [from] into [to].
//
// [from] may be nil when there is no origin. [to] must not be nil.
//
//	diffy.Diff(Number(0), Number(0))            // Noop{}
//	diffy.Diff(Number(0), Hash{})               // HashPatch{}
//	diffy.Diff(Hash{"a": Number(1)}, Hash{})    // HashPatch{"a": Remove{}}
func Diff(from, to Value) Patch {
	switch t := to.(type) {
	case nil:
		panic(fmt.Errorf("diffy: diff target: %w", ErrAbsentValue))
	case Primitive:
		if IsHash(from) || from != Value(t) {
			return Add{Value: t}
		}
		return Noop{}
	case Hash:
		return diffHash(from, t)
	default:
		panic(fmt.Errorf("diffy: diff target %T: %w", to, ErrUnsupportedKind))
	}
}

func diffHash(from Value, to Hash) HashPatch {
	fromHash, fromIsHash := from.(Hash)

	patch := make(HashPatch)
	for k, valueTo := range to {
		if valueFrom, ok := fromHash[k]; fromIsHash && ok {
			inner := Diff(valueFrom, valueTo)
			if isUnchanged(valueFrom, inner) {
				continue
			}
			patch[k] = inner
			continue
		}
		// a new key never matches whatever was there before, and {} records
		// the creation of an empty hash
		patch[k] = Diff(nil, valueTo)
	}
	for k := range fromHash {
		if _, ok := to[k]; !ok {
			patch[k] = Remove{}
		}
	}
	return patch
}

// isUnchanged reports whether the existing origin value needs no
// instruction. An empty hash patch still has to be recorded when the origin
// is a primitive, otherwise the primitive would survive.
func isUnchanged(from Value, p Patch) bool {
	switch v := p.(type) {
	case Noop:
		return true
	case HashPatch:
		return len(v) == 0 && IsHash(from)
	}
	return false
}
