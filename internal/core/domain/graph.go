package domain

import (
	"iter"
	"slices"
	"strings"
)

// Graph is the reverse dependency graph of a package registry:
// for every package it records the packages that depend on it.
type Graph struct {
	dependents map[Locator][]Locator
}

// NewGraph creates a new empty Graph.
func NewGraph() *Graph {
	return &Graph{
		dependents: make(map[Locator][]Locator),
	}
}

// BuildGraph computes the dependents of every package in the registry.
// The top-level locator is never recorded as a dependent.
func BuildGraph(r *PackageRegistry) *Graph {
	g := NewGraph()
	for dependent, info := range r.All() {
		if dependent.IsTopLevel() {
			continue
		}
		for name, target := range info.PackageDependencies {
			if target.IsNull() {
				continue
			}
			g.AddDependency(dependent, target.Locator(name))
		}
	}
	return g
}

// AddDependency records that dependent depends on dependency. Self edges are ignored.
func (g *Graph) AddDependency(dependent, dependency Locator) {
	if dependent == dependency {
		return
	}
	if slices.Contains(g.dependents[dependency], dependent) {
		return
	}
	g.dependents[dependency] = append(g.dependents[dependency], dependent)
}

// Dependents yields the packages that depend on l.
func (g *Graph) Dependents(l Locator) iter.Seq[Locator] {
	return func(yield func(Locator) bool) {
		for _, dependent := range g.dependents[l] {
			if !yield(dependent) {
				return
			}
		}
	}
}

// BrokenAncestors walks up from the package that failed to access the peer dependency
// named dependency. Dependents that also list it as a peer forward the requirement and are
// traversed further; the first dependents that do not are the ones that broke the chain.
// The result is sorted by name, then reference.
func (g *Graph) BrokenAncestors(r *PackageRegistry, dependency string, from Locator) []Locator {
	visited := make(map[Locator]bool)
	broken := make(map[Locator]bool)

	var visit func(current Locator)
	visit = func(current Locator) {
		if visited[current] {
			return
		}
		visited[current] = true

		for dependent := range g.Dependents(current) {
			info, ok := r.Get(dependent)
			if ok && info.HasPeer(dependency) {
				visit(dependent)
				continue
			}
			broken[dependent] = true
		}
	}
	visit(from)

	result := make([]Locator, 0, len(broken))
	for l := range broken {
		result = append(result, l)
	}
	slices.SortFunc(result, func(a, b Locator) int {
		if c := strings.Compare(a.Name.String(), b.Name.String()); c != 0 {
			return c
		}
		return strings.Compare(a.Reference.String(), b.Reference.String())
	})
	return result
}
