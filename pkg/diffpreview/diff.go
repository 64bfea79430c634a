package diffpreview

import (
	"sort"
	"strings"

	"github.com/loog-project/docdiff/pkg/diffmap"
)

// ChangeType indicates the kind of change at a node
type ChangeType int

const (
	Unchanged ChangeType = iota
	Added
	Removed
	Modified
)

// AnnotatedNode represents a node in the annotated tree
type AnnotatedNode struct {
	Value    any
	Change   ChangeType
	Children map[string]*AnnotatedNode
}

// Annotate builds the tree of paths touched by u. base is the document the
// update applies to; it decides whether a $set adds or modifies a value and
// provides the removed values. base may be nil.
func Annotate(base diffmap.Document, u *diffmap.Update) *AnnotatedNode {
	root := &AnnotatedNode{Children: make(map[string]*AnnotatedNode)}
	u.Unset.Range(func(path string, _ any) bool {
		old, _ := lookup(base, path)
		insert(root, path, &AnnotatedNode{Value: old, Change: Removed})
		return true
	})
	u.Set.Range(func(path string, value any) bool {
		change := Added
		if _, ok := lookup(base, path); ok {
			change = Modified
		}
		insert(root, path, &AnnotatedNode{Value: value, Change: change})
		return true
	})
	return root
}

func insert(root *AnnotatedNode, path string, leaf *AnnotatedNode) {
	node := root
	segments := strings.Split(path, ".")
	for _, key := range segments[:len(segments)-1] {
		child, ok := node.Children[key]
		if !ok || child.Children == nil {
			child = &AnnotatedNode{Change: Modified, Children: make(map[string]*AnnotatedNode)}
			node.Children[key] = child
		}
		node = child
	}
	node.Children[segments[len(segments)-1]] = leaf
}

func lookup(doc diffmap.Document, path string) (any, bool) {
	var current any = doc
	for _, key := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		if current, ok = m[key]; !ok || current == nil {
			return nil, false
		}
	}
	return current, true
}

func sortKeys(m map[string]*AnnotatedNode) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
