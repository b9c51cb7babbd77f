// Package hierarchy validates parent-pointer mutations on the self
// referential trees in the schema: team hierarchy, objective alignment and
// comment threads. A node may never become its own ancestor.
package hierarchy

import "errors"

// MaxDepth bounds the path-to-root walk so a corrupted parent chain cannot
// loop forever.
const MaxDepth = 32

var (
	ErrWouldCreateCycle = errors.New("parent change would create a cycle")
	ErrDepthExceeded    = errors.New("hierarchy depth limit exceeded")
)

// ParentFunc resolves a node's current parent. The second return value is
// false for root nodes.
type ParentFunc func(id string) (string, bool)

// CheckParent reports whether assigning newParentID as the parent of nodeID
// keeps the structure a tree. It walks from the proposed parent to the root
// and fails if the walk reaches nodeID or exceeds MaxDepth.
func CheckParent(nodeID, newParentID string, parent ParentFunc) error {
	if newParentID == "" {
		return nil
	}
	if newParentID == nodeID {
		return ErrWouldCreateCycle
	}
	current := newParentID
	for depth := 0; depth < MaxDepth; depth++ {
		next, ok := parent(current)
		if !ok || next == "" {
			return nil
		}
		if next == nodeID {
			return ErrWouldCreateCycle
		}
		current = next
	}
	return ErrDepthExceeded
}

// MapParentFunc adapts a materialized child-to-parent map, as loaded by the
// stores in a single query, into a ParentFunc.
func MapParentFunc(parents map[string]string) ParentFunc {
	return func(id string) (string, bool) {
		parent, ok := parents[id]
		return parent, ok
	}
}
