package graph

// Children returns the modules exactly one dot-segment below the named
// module. A name only counts as a child when it is itself a module in
// the graph: "a.b.c" is a child of "a.b", never of "a".
//
// Returns ErrSquashedModule for a squashed module, since the graph does
// not store anything beneath it. An absent module yields an empty set;
// callers that need to distinguish absence should check Contains first.
func (g *ImportGraph) Children(module string) (ModuleSet, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.squashed.Contains(module) {
		return nil, ErrSquashedModule
	}
	return g.namespace.childrenOf(module), nil
}

// Descendants returns every module whose name has the given module's
// name as a strict dot-boundary prefix, at any depth. Failure and
// absence behave as in Children.
func (g *ImportGraph) Descendants(module string) (ModuleSet, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.squashed.Contains(module) {
		return nil, ErrSquashedModule
	}
	return g.namespace.descendantsOf(module), nil
}
