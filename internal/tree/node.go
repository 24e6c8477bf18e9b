// Package tree holds the selection-aware directory tree model and its builder.
package tree

import (
	"sort"
	"strings"
)

// Kind distinguishes file nodes from directory nodes.
type Kind int

const (
	// KindFile marks a regular file entry.
	KindFile Kind = iota
	// KindDirectory marks a directory entry.
	KindDirectory
)

// Selection is the tri-state inclusion state of a node.
type Selection int

const (
	// Unselected excludes the node from the merged output.
	Unselected Selection = iota
	// Selected includes the node in the merged output.
	Selected
	// Partial marks a directory whose eligible children are mixed. It is
	// never assigned to file nodes and never requested through Toggle.
	Partial
)

// String returns the lower-case name of the selection state.
func (selection Selection) String() string {
	switch selection {
	case Selected:
		return "selected"
	case Partial:
		return "partial"
	default:
		return "unselected"
	}
}

// Node represents one filesystem entry in a scanned tree.
//
// RelativePath is the node's stable identity: forward-slash separated, unique
// within a tree, and the key used by reports and persisted sessions. Ignored
// and Unreadable are set once at build time and never change afterwards; the
// tree is rebuilt, never patched, when patterns or the root change.
type Node struct {
	Path         string
	RelativePath string
	Name         string
	Kind         Kind
	SizeBytes    int64
	Ignored      bool
	Unreadable   bool
	Selection    Selection
	Children     []*Node

	parent *Node
}

// IsDir reports whether the node is a directory.
func (node *Node) IsDir() bool {
	return node.Kind == KindDirectory
}

// Parent returns the node's parent, nil for the root.
func (node *Node) Parent() *Node {
	return node.parent
}

// Eligible reports whether the node participates in selection.
func (node *Node) Eligible() bool {
	return !node.Ignored
}

// Walk visits the node and every descendant in depth-first child order.
func (node *Node) Walk(visit func(*Node)) {
	visit(node)
	for _, child := range node.Children {
		child.Walk(visit)
	}
}

// Find returns the descendant with the given relative path, or nil.
func (node *Node) Find(relativePath string) *Node {
	var found *Node
	node.Walk(func(candidate *Node) {
		if found == nil && candidate.RelativePath == relativePath {
			found = candidate
		}
	})
	return found
}

// SelectedFiles returns every Selected, non-ignored file node in depth-first
// order, the exact order the serializer emits content sections in.
func (node *Node) SelectedFiles() []*Node {
	var files []*Node
	node.Walk(func(candidate *Node) {
		if candidate.Kind == KindFile && candidate.Selection == Selected && !candidate.Ignored {
			files = append(files, candidate)
		}
	})
	return files
}

// attachChildren sorts the children case-insensitively by name, directories
// and files interleaved, sets parent links, and assigns them to the node.
func (node *Node) attachChildren(children []*Node) {
	sort.SliceStable(children, func(left, right int) bool {
		leftName := strings.ToLower(children[left].Name)
		rightName := strings.ToLower(children[right].Name)
		if leftName == rightName {
			return children[left].Name < children[right].Name
		}
		return leftName < rightName
	})
	for _, child := range children {
		child.parent = node
	}
	node.Children = children
}

// Toggle sets the node's selection to desired, which must be Selected or
// Unselected. Directories propagate the state to every non-ignored
// descendant; ignored descendants stay Unselected. Ancestors are recomputed
// bottom-up from the node's parent to the root, and the ancestors whose
// selection changed are returned in parent-to-root order.
//
// Toggling an ignored node is a no-op: Toggle returns (nil, false) and no
// state changes.
func Toggle(node *Node, desired Selection) ([]*Node, bool) {
	if node == nil || node.Ignored {
		return nil, false
	}
	if desired != Selected && desired != Unselected {
		return nil, false
	}

	applySubtree(node, desired)
	changedAncestors := recomputeAncestors(node)
	return changedAncestors, true
}

// SelectAll selects every eligible node in the tree.
func SelectAll(root *Node) {
	Toggle(root, Selected)
}

// DeselectAll unselects every eligible node in the tree.
func DeselectAll(root *Node) {
	Toggle(root, Unselected)
}

// applySubtree assigns desired to the node and every non-ignored descendant.
func applySubtree(node *Node, desired Selection) {
	if node.Ignored {
		node.Selection = Unselected
		return
	}
	node.Selection = desired
	for _, child := range node.Children {
		applySubtree(child, desired)
	}
}

// recomputeAncestors re-derives the selection of every ancestor from its
// direct children, walking parent links up to the root. Each step is O(number
// of direct children), so a toggle costs O(depth) beyond its own subtree.
func recomputeAncestors(node *Node) []*Node {
	var changed []*Node
	for ancestor := node.parent; ancestor != nil; ancestor = ancestor.parent {
		derived, hasEligibleChildren := deriveSelection(ancestor)
		if !hasEligibleChildren {
			continue
		}
		if ancestor.Selection != derived {
			ancestor.Selection = derived
			changed = append(changed, ancestor)
		}
	}
	return changed
}

// deriveSelection computes a directory's selection from its direct children
// per the tri-state rule: Selected when every eligible child is Selected,
// Unselected when every eligible child is Unselected, Partial otherwise.
// Ignored children are excluded from the computation entirely. The second
// return value is false when the directory has no eligible children, in which
// case the directory keeps its explicitly assigned state.
func deriveSelection(directory *Node) (Selection, bool) {
	selectedCount := 0
	unselectedCount := 0
	partialCount := 0
	for _, child := range directory.Children {
		if child.Ignored {
			continue
		}
		switch child.Selection {
		case Selected:
			selectedCount++
		case Partial:
			partialCount++
		default:
			unselectedCount++
		}
	}
	eligibleCount := selectedCount + unselectedCount + partialCount
	if eligibleCount == 0 {
		return directory.Selection, false
	}
	if partialCount == 0 && unselectedCount == 0 {
		return Selected, true
	}
	if partialCount == 0 && selectedCount == 0 {
		return Unselected, true
	}
	return Partial, true
}

// initializeSelection assigns the post-build default selection bottom-up:
// every eligible node starts Selected, ignored nodes start Unselected, and
// directories derive their state from their children.
func initializeSelection(node *Node) {
	for _, child := range node.Children {
		initializeSelection(child)
	}
	if node.Ignored {
		node.Selection = Unselected
		return
	}
	if node.Kind == KindFile {
		node.Selection = Selected
		return
	}
	node.Selection = Selected
	if derived, hasEligibleChildren := deriveSelection(node); hasEligibleChildren {
		node.Selection = derived
	}
}
