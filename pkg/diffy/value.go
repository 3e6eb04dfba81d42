package diffy

import "reflect"

// Value is a node of the tree: a [Primitive] or a [Hash].
type Value interface {
	isValue()
}

// Primitive is a [String], [Number], [Bool] or [Null].
type Primitive interface {
	Value
	isPrimitive()
}

type (
	String string
	Number float64
	Bool   bool
	// Null is the explicit null primitive. It is not the same as an absent
	// (nil) Value.
	Null struct{}
)

// Hash maps keys to values. Entries must never be nil.
type Hash map[string]Value

func (String) isValue() {}
func (Number) isValue() {}
func (Bool) isValue()   {}
func (Null) isValue()   {}
func (Hash) isValue()   {}

func (String) isPrimitive() {}
func (Number) isPrimitive() {}
func (Bool) isPrimitive()   {}
func (Null) isPrimitive()   {}

// IsPrimitive reports whether v is present and not a [Hash].
func IsPrimitive(v Value) bool {
	if v == nil {
		return false
	}
	_, ok := v.(Primitive)
	return ok
}

// IsHash reports whether v is present and a [Hash].
func IsHash(v Value) bool {
	if v == nil {
		return false
	}
	_, ok := v.(Hash)
	return ok
}

// Clone returns a deep copy of v which shares no hash with v.
func Clone(v Value) Value {
	h, ok := v.(Hash)
	if !ok {
		return v
	}
	res := make(Hash, len(h))
	for k, sub := range h {
		res[k] = Clone(sub)
	}
	return res
}

// IsEqual is the structural equality used by the engine.
//
// Primitives are compared by value and never equal a hash. Two hashes are
// equal when every key of a has an equal value in b; keys only present in b
// are not looked at, so IsEqual({a:1}, {a:1, b:2}) is true. Use [IsDeepEqual]
// for the symmetric comparison.
func IsEqual(a, b Value) bool {
	if IsPrimitive(a) || IsPrimitive(b) {
		return a == b
	}
	ha, okA := a.(Hash)
	hb, okB := b.(Hash)
	if !okA || !okB {
		return a == nil && b == nil
	}
	for k, va := range ha {
		if !IsEqual(va, hb[k]) {
			return false
		}
	}
	return true
}

// IsDeepEqual reports whether a and b hold exactly the same keys and
// primitives at every level.
func IsDeepEqual(a, b Value) bool {
	ha, okA := a.(Hash)
	hb, okB := b.(Hash)
	if !okA || !okB {
		return !okA && !okB && a == b
	}
	if len(ha) != len(hb) {
		return false
	}
	for k, va := range ha {
		vb, ok := hb[k]
		if !ok || !IsDeepEqual(va, vb) {
			return false
		}
	}
	return true
}

// Same reports whether a and b are the same node: the same hash (not merely
// an equal one) or equal primitives.
func Same(a, b Value) bool {
	ha, okA := a.(Hash)
	hb, okB := b.(Hash)
	switch {
	case okA && okB:
		return reflect.ValueOf(ha).UnsafePointer() == reflect.ValueOf(hb).UnsafePointer()
	case okA || okB:
		return false
	default:
		return a == b
	}
}
