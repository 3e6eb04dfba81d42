package diffy

import (
	"errors"
	"maps"
	"slices"
)

// SkipHash can be returned by a [WalkFunc] called for a [HashPatch] to skip
// its entries.
var SkipHash = errors.New("skip hash patch")

// WalkFunc is called by [Walk] for every patch node. The root has an empty
// path. The path slice is reused between calls and must be copied to be kept.
type WalkFunc func(path []string, p Patch) error

// Walk visits p and every nested patch depth-first, keys in sorted order.
func Walk(p Patch, fn WalkFunc) error {
	err := walk(nil, p, fn)
	if errors.Is(err, SkipHash) {
		return nil
	}
	return err
}

func walk(path []string, p Patch, fn WalkFunc) error {
	if err := fn(path, p); err != nil {
		return err
	}
	hp, ok := p.(HashPatch)
	if !ok {
		return nil
	}
	for _, k := range slices.Sorted(maps.Keys(hp)) {
		err := walk(append(path, k), hp[k], fn)
		if err != nil && !errors.Is(err, SkipHash) {
			return err
		}
	}
	return nil
}

// Summary counts the instructions of a patch.
type Summary struct {
	// Set counts primitives written by [Add].
	Set int
	// Removed counts [Remove] instructions.
	Removed int
	// Created counts empty hashes created by an empty [HashPatch].
	Created int
}

// Changes returns the total number of instructions.
func (s Summary) Changes() int {
	return s.Set + s.Removed + s.Created
}

// Summarize counts the instructions of p. A [Noop] patch has none.
func Summarize(p Patch) Summary {
	var s Summary
	_ = Walk(p, func(_ []string, node Patch) error {
		switch v := node.(type) {
		case Add:
			s.Set++
		case Remove:
			s.Removed++
		case HashPatch:
			if len(v) == 0 {
				s.Created++
			}
		}
		return nil
	})
	return s
}
