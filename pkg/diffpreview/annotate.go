package diffpreview

import (
	"github.com/loog-project/diffy/pkg/diffy"
)

// ChangeType indicates the kind of change at a node
type ChangeType int

const (
	Unchanged ChangeType = iota
	Added
	Removed
	Modified
)

func (c ChangeType) String() string {
	switch c {
	case Added:
		return "added"
	case Removed:
		return "removed"
	case Modified:
		return "modified"
	default:
		return "unchanged"
	}
}

// AnnotatedNode represents a node in the annotated tree
type AnnotatedNode struct {
	// Value is the new value, or the old one for removed nodes.
	Value diffy.Value
	// Old is the replaced value of modified nodes.
	Old      diffy.Value
	Change   ChangeType
	Children map[string]*AnnotatedNode
}

// IsHash reports whether the node renders as a hash.
func (n *AnnotatedNode) IsHash() bool {
	return n.Children != nil
}

// Annotate explains what [patch] does to [origin]. The result covers every key
// of the origin and of the patch; untouched keys are marked [Unchanged].
func Annotate(origin diffy.Value, patch diffy.Patch) *AnnotatedNode {
	switch p := patch.(type) {
	case diffy.Add:
		if origin == nil {
			return &AnnotatedNode{Value: p.Value, Change: Added}
		}
		return &AnnotatedNode{Value: p.Value, Old: origin, Change: Modified}

	case diffy.HashPatch:
		originHash, isHash := origin.(diffy.Hash)
		node := &AnnotatedNode{Children: make(map[string]*AnnotatedNode)}
		switch {
		case isHash:
			for k, v := range originHash {
				node.Children[k] = buildUnchangedNode(v)
			}
		case origin == nil:
			node.Change = Added
		default:
			node.Change = Modified
			node.Old = origin
		}
		for k, sub := range p {
			if _, ok := sub.(diffy.Remove); ok {
				if old, exists := originHash[k]; exists {
					node.Children[k] = buildRemovedNode(old)
				}
				continue
			}
			node.Children[k] = Annotate(originHash[k], sub)
		}
		if node.Change == Unchanged && hasChanges(node) {
			node.Change = Modified
		}
		return node

	default: // noop, or a patch that cannot be explained
		return buildUnchangedNode(origin)
	}
}

func hasChanges(node *AnnotatedNode) bool {
	for _, child := range node.Children {
		if child.Change != Unchanged {
			return true
		}
	}
	return false
}

func buildUnchangedNode(val diffy.Value) *AnnotatedNode {
	return buildNode(val, Unchanged)
}

func buildRemovedNode(val diffy.Value) *AnnotatedNode {
	return buildNode(val, Removed)
}

func buildNode(val diffy.Value, change ChangeType) *AnnotatedNode {
	h, ok := val.(diffy.Hash)
	if !ok {
		return &AnnotatedNode{Value: val, Change: change}
	}
	node := &AnnotatedNode{Change: change, Children: make(map[string]*AnnotatedNode, len(h))}
	for k, sub := range h {
		node.Children[k] = buildNode(sub, change)
	}
	return node
}
