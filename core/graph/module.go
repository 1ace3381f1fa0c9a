// Package graph provides a directed import graph for codebases organized
// as a dotted-namespace module hierarchy. The graph stores modules and
// import edges (with optional per-edge source details), answers
// hierarchy and reachability queries, supports squashing subtrees into a
// single node, and checks layered-architecture rules.
package graph

import (
	"sort"
	"strings"
)

// ModuleSet is a set of module names.
type ModuleSet map[string]struct{}

// NewModuleSet returns a set containing the supplied names.
func NewModuleSet(names ...string) ModuleSet {
	s := make(ModuleSet, len(names))
	for _, name := range names {
		s[name] = struct{}{}
	}
	return s
}

func (s ModuleSet) Add(name string)    { s[name] = struct{}{} }
func (s ModuleSet) Remove(name string) { delete(s, name) }

func (s ModuleSet) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// Union returns a new set with the members of both sets.
func (s ModuleSet) Union(other ModuleSet) ModuleSet {
	out := make(ModuleSet, len(s)+len(other))
	for name := range s {
		out[name] = struct{}{}
	}
	for name := range other {
		out[name] = struct{}{}
	}
	return out
}

// Intersects reports whether the two sets share any member.
func (s ModuleSet) Intersects(other ModuleSet) bool {
	smaller, larger := s, other
	if len(larger) < len(smaller) {
		smaller, larger = larger, smaller
	}
	for name := range smaller {
		if larger.Contains(name) {
			return true
		}
	}
	return false
}

func (s ModuleSet) Copy() ModuleSet {
	out := make(ModuleSet, len(s))
	for name := range s {
		out[name] = struct{}{}
	}
	return out
}

// Sorted returns the members in lexicographic order. Traversals iterate
// sets through Sorted so that results are deterministic.
func (s ModuleSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for name := range s {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// parentName returns the name one dot-segment above the module, and
// whether the module has a parent at all.
func parentName(name string) (string, bool) {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return "", false
	}
	return name[:i], true
}

// namespaceTree indexes module names by their dot-segments so that
// children and descendants can be answered without scanning every
// module in the graph. Nodes exist for every prefix that has a module
// somewhere beneath it; only nodes with present=true are modules.
type namespaceTree struct {
	roots map[string]*nsNode
}

type nsNode struct {
	name     string
	present  bool
	children map[string]*nsNode
}

func newNamespaceTree() *namespaceTree {
	return &namespaceTree{roots: make(map[string]*nsNode)}
}

func (t *namespaceTree) add(name string) {
	segments := strings.Split(name, ".")
	node, ok := t.roots[segments[0]]
	if !ok {
		node = &nsNode{name: segments[0], children: make(map[string]*nsNode)}
		t.roots[segments[0]] = node
	}
	for _, segment := range segments[1:] {
		child, ok := node.children[segment]
		if !ok {
			child = &nsNode{name: node.name + "." + segment, children: make(map[string]*nsNode)}
			node.children[segment] = child
		}
		node = child
	}
	node.present = true
}

func (t *namespaceTree) remove(name string) {
	segments := strings.Split(name, ".")
	path := make([]*nsNode, 0, len(segments))
	node, ok := t.roots[segments[0]]
	if !ok {
		return
	}
	path = append(path, node)
	for _, segment := range segments[1:] {
		child, ok := node.children[segment]
		if !ok {
			return
		}
		node = child
		path = append(path, node)
	}
	node.present = false

	// Prune empty branches so absent prefixes don't linger.
	for i := len(path) - 1; i > 0; i-- {
		n := path[i]
		if n.present || len(n.children) > 0 {
			break
		}
		delete(path[i-1].children, segments[i])
	}
	if root := path[0]; !root.present && len(root.children) == 0 {
		delete(t.roots, segments[0])
	}
}

func (t *namespaceTree) lookup(name string) *nsNode {
	segments := strings.Split(name, ".")
	node, ok := t.roots[segments[0]]
	if !ok {
		return nil
	}
	for _, segment := range segments[1:] {
		node, ok = node.children[segment]
		if !ok {
			return nil
		}
	}
	return node
}

// childrenOf returns the modules exactly one segment below name.
// Intermediate names that are not themselves modules are not children.
func (t *namespaceTree) childrenOf(name string) ModuleSet {
	out := NewModuleSet()
	node := t.lookup(name)
	if node == nil {
		return out
	}
	for _, child := range node.children {
		if child.present {
			out.Add(child.name)
		}
	}
	return out
}

// descendantsOf returns every module strictly below name, at any depth.
func (t *namespaceTree) descendantsOf(name string) ModuleSet {
	out := NewModuleSet()
	node := t.lookup(name)
	if node == nil {
		return out
	}
	var walk func(n *nsNode)
	walk = func(n *nsNode) {
		for _, child := range n.children {
			if child.present {
				out.Add(child.name)
			}
			walk(child)
		}
	}
	walk(node)
	return out
}
