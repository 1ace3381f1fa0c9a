package graph

import (
	"errors"
	"fmt"
)

// ErrSquashedModule is returned by Children and Descendants when the
// target module is squashed: a squashed module stands in for its entire
// subtree, so the graph no longer stores anything beneath it.
var ErrSquashedModule = errors.New("module is squashed: the graph does not store its subtree")

// NoSuchContainerError is returned by FindIllegalDependenciesForLayers
// when a named container is not a module present in the graph.
type NoSuchContainerError struct {
	Container string
}

func (e *NoSuchContainerError) Error() string {
	return fmt.Sprintf("container %q does not exist in the graph", e.Container)
}

// SharedDescendantsError is returned by package-granularity queries when
// one of the two modules is a descendant of the other (or they are the
// same module), which makes the query incoherent.
type SharedDescendantsError struct {
	First  string
	Second string
}

func (e *SharedDescendantsError) Error() string {
	return fmt.Sprintf("modules %q and %q have shared descendants", e.First, e.Second)
}
