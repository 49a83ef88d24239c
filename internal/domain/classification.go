package domain

import (
	"fmt"
	"iter"
	"slices"
	"strings"
)

// StructureGroup selects which classification hierarchy of a project to read
type StructureGroup string

const (
	StructureIterations StructureGroup = "iterations"
	StructureAreas      StructureGroup = "areas"
)

// ParseStructureGroup accepts the group names used on the command line
func ParseStructureGroup(s string) (StructureGroup, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "iterations", "iteration", "":
		return StructureIterations, nil
	case "areas", "area":
		return StructureAreas, nil
	default:
		return "", fmt.Errorf("unknown structure group: %s", s)
	}
}

// ClassificationPathSeparator joins node names into an iteration or area path
const ClassificationPathSeparator = `\`

// ClassificationNode is one node of a project's iteration or area tree
type ClassificationNode struct {
	ID       int
	Name     string
	Path     string // Server-side path, e.g. "\Project\Iteration\2023"
	Children []*ClassificationNode
}

// ClassificationChildren is the ChildrenFunc for classification trees
func ClassificationChildren(n *ClassificationNode) []*ClassificationNode {
	if n == nil {
		return nil
	}
	return n.Children
}

// ClassificationName returns the node name
func ClassificationName(n *ClassificationNode) string {
	return n.Name
}

// ListClassificationNodes yields every node of the tree in pre-order
func ListClassificationNodes(root *ClassificationNode) iter.Seq[*ClassificationNode] {
	return ListAllNodes(root, ClassificationChildren)
}

// ClassificationHasNode reports whether the tree holds a node named name
func ClassificationHasNode(root *ClassificationNode, name string) bool {
	if root == nil {
		return false
	}
	return NodeHasDescendantNamed(root, ClassificationChildren, ClassificationName, name)
}

// ClassificationPaths returns the name path of every node in the tree
func ClassificationPaths(root *ClassificationNode) [][]string {
	if root == nil {
		return nil
	}
	return namePaths(ComputeAllPathsFromNode(root, ClassificationChildren))
}

// ClassificationLeafPaths returns the name path of every leaf in the tree
func ClassificationLeafPaths(root *ClassificationNode) [][]string {
	if root == nil {
		return nil
	}
	return namePaths(ComputeAllPathsToLeafsFromNode(root, ClassificationChildren))
}

// ClassificationPathsEndingWith returns the name paths whose last node is named name
func ClassificationPathsEndingWith(root *ClassificationNode, name string) [][]string {
	if root == nil {
		return nil
	}
	paths := ComputeAllPathsFromNode(root, ClassificationChildren)
	return namePaths(FilterPathsEndingWith(paths, name, ClassificationName))
}

func namePaths(paths iter.Seq[[]*ClassificationNode]) [][]string {
	var result [][]string
	for path := range paths {
		names := make([]string, len(path))
		for i, n := range path {
			names[i] = n.Name
		}
		result = append(result, names)
	}
	return result
}

// JoinClassificationPath formats a name path the way WIQL expects it ("Project\2023\Sprint 1")
func JoinClassificationPath(names []string) string {
	return strings.Join(names, ClassificationPathSeparator)
}

// SortClassificationPaths orders joined paths lexically, for stable output
func SortClassificationPaths(paths [][]string) []string {
	joined := make([]string, len(paths))
	for i, p := range paths {
		joined[i] = JoinClassificationPath(p)
	}
	slices.Sort(joined)
	return joined
}
