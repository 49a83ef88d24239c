package domain

import (
	"fmt"
	"io"
	"iter"
	"slices"
	"strings"
)

// ChildrenFunc returns the children of a node. It must be pure and must
// terminate; the traversals below do not detect cycles.
type ChildrenFunc[T any] func(T) []T

// ListAllNodes yields every node reachable from root in pre-order,
// siblings in the order ChildrenFunc returns them.
func ListAllNodes[T any](root T, children ChildrenFunc[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		stack := []T{root}
		for len(stack) > 0 {
			last := len(stack) - 1
			current := stack[last]
			stack = stack[:last]

			if !yield(current) {
				return
			}

			// Push in reverse so the first child is popped first
			kids := children(current)
			for i := len(kids) - 1; i >= 0; i-- {
				stack = append(stack, kids[i])
			}
		}
	}
}

// ComputeAllPathsFromNode yields one root-to-node path for every node of the
// tree, internal nodes included. A node's own path is yielded after the
// paths of all its descendants.
func ComputeAllPathsFromNode[T any](root T, children ChildrenFunc[T]) iter.Seq[[]T] {
	return func(yield func([]T) bool) {
		walkPaths(nil, root, children, false, yield)
	}
}

// ComputeAllPathsToLeafsFromNode yields the root-to-leaf paths of the tree.
func ComputeAllPathsToLeafsFromNode[T any](root T, children ChildrenFunc[T]) iter.Seq[[]T] {
	return func(yield func([]T) bool) {
		walkPaths(nil, root, children, true, yield)
	}
}

// walkPaths returns false once yield asked to stop.
func walkPaths[T any](prefix []T, node T, children ChildrenFunc[T], leavesOnly bool, yield func([]T) bool) bool {
	// Clip forces append to copy, so every yielded path owns its array
	path := append(slices.Clip(prefix), node)

	kids := children(node)
	for _, child := range kids {
		if !walkPaths(path, child, children, leavesOnly, yield) {
			return false
		}
	}

	if leavesOnly && len(kids) > 0 {
		return true
	}
	return yield(path)
}

// FilterPathsEndingWith keeps the paths whose last node is named name.
// The comparison is exact and case-sensitive.
func FilterPathsEndingWith[T any](paths iter.Seq[[]T], name string, nameOf func(T) string) iter.Seq[[]T] {
	return func(yield func([]T) bool) {
		for path := range paths {
			if len(path) == 0 || nameOf(path[len(path)-1]) != name {
				continue
			}
			if !yield(path) {
				return
			}
		}
	}
}

// NodeHasDescendantNamed reports whether root, or any node below it, is named name.
func NodeHasDescendantNamed[T any](root T, children ChildrenFunc[T], nameOf func(T) string, name string) bool {
	for node := range ListAllNodes(root, children) {
		if nameOf(node) == name {
			return true
		}
	}
	return false
}

// WriteTree renders roots and their descendants, one node per line,
// indented by two spaces per level.
func WriteTree[T any](w io.Writer, roots []T, children ChildrenFunc[T], text func(T) string) error {
	return writeTree(w, roots, children, text, "")
}

func writeTree[T any](w io.Writer, nodes []T, children ChildrenFunc[T], text func(T) string, indent string) error {
	for _, node := range nodes {
		if _, err := fmt.Fprintln(w, indent+text(node)); err != nil {
			return err
		}
		if err := writeTree(w, children(node), children, text, indent+"  "); err != nil {
			return err
		}
	}
	return nil
}

// RenderTree is WriteTree into a string.
func RenderTree[T any](roots []T, children ChildrenFunc[T], text func(T) string) string {
	var sb strings.Builder
	_ = WriteTree(&sb, roots, children, text)
	return sb.String()
}
