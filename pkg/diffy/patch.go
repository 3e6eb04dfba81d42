package diffy

// Patch is an instruction set that turns one [Value] into another.
//
// At the leaves a patch is [Noop], [Add] or [Remove]. A [HashPatch] nests
// instructions per key. The empty HashPatch means "an empty hash goes here",
// which is different from Noop:
//
//	Apply(HashPatch{}, Number(0)) // Hash{}
//	Apply(Noop{}, Number(0))      // Number(0)
type Patch interface {
	isPatch()
}

// Noop keeps the value as it is.
type Noop struct{}

// Add replaces the value with a primitive.
type Add struct {
	Value Primitive
}

// Remove deletes the key from the enclosing hash. It is only valid as an
// entry of a [HashPatch].
type Remove struct{}

// HashPatch holds the instructions for each key of a hash that changed.
type HashPatch map[string]Patch

func (Noop) isPatch()      {}
func (Add) isPatch()       {}
func (Remove) isPatch()    {}
func (HashPatch) isPatch() {}

// IsPrimitivePatch reports whether p is a leaf instruction.
func IsPrimitivePatch(p Patch) bool {
	switch p.(type) {
	case Noop, Add, Remove:
		return true
	}
	return false
}

// IsHashPatch reports whether p is a [HashPatch].
func IsHashPatch(p Patch) bool {
	_, ok := p.(HashPatch)
	return ok
}
