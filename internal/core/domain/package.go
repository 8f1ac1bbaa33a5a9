package domain

// LinkType tells whether a package is a real install or a link to another location.
// It is informational and never changes how a request resolves.
type LinkType string

const (
	// LinkTypeHard marks a package copied or extracted onto disk.
	LinkTypeHard LinkType = "HARD"
	// LinkTypeSoft marks a package that points at a location it does not own (workspaces, portals).
	LinkTypeSoft LinkType = "SOFT"
)

// PackageInformation is one entry of the package registry.
type PackageInformation struct {
	// PackageLocation is the absolute directory of the package in portable form.
	// It keeps the trailing slash of its serialized form.
	PackageLocation string

	// PackageDependencies maps a declared dependency name to its target.
	// A name missing from the map is undeclared, which is not the same as a null target.
	PackageDependencies map[string]DependencyTarget

	// PackagePeers lists the dependency names that are peer dependencies.
	PackagePeers map[string]struct{}

	LinkType LinkType

	// DiscardFromLookup keeps the location out of the locator index.
	DiscardFromLookup bool
}

// Dependency returns the target declared for name and whether it is declared at all.
func (p *PackageInformation) Dependency(name string) (DependencyTarget, bool) {
	target, ok := p.PackageDependencies[name]
	return target, ok
}

// HasPeer reports whether name is one of the package's peer dependencies.
func (p *PackageInformation) HasPeer(name string) bool {
	_, ok := p.PackagePeers[name]
	return ok
}

type targetKind uint8

const (
	targetNull targetKind = iota
	targetReference
	targetAlias
)

// DependencyTarget is what a declared dependency points at: nothing (an unsatisfied peer),
// a reference within the same-named package, or a [name, reference] alias.
type DependencyTarget struct {
	kind      targetKind
	name      string
	reference string
}

// NullTarget returns the target of a declared but unsatisfied dependency.
func NullTarget() DependencyTarget {
	return DependencyTarget{kind: targetNull}
}

// ReferenceTarget returns a target pointing at reference within the dependency's own name.
func ReferenceTarget(reference string) DependencyTarget {
	return DependencyTarget{kind: targetReference, reference: reference}
}

// AliasTarget returns a target redirecting to a different package name.
func AliasTarget(name, reference string) DependencyTarget {
	return DependencyTarget{kind: targetAlias, name: name, reference: reference}
}

// IsNull reports whether the dependency is declared but unsatisfied.
func (t DependencyTarget) IsNull() bool {
	return t.kind == targetNull
}

// IsAlias reports whether the target redirects to another package name.
func (t DependencyTarget) IsAlias() bool {
	return t.kind == targetAlias
}

// Reference returns the reference part of the target.
func (t DependencyTarget) Reference() string {
	return t.reference
}

// Locator resolves the target into the locator of the package it designates,
// dependencyName being the name under which it was declared.
// It must not be called on a null target.
func (t DependencyTarget) Locator(dependencyName string) Locator {
	if t.kind == targetAlias {
		return NewLocator(t.name, t.reference)
	}
	return NewLocator(dependencyName, t.reference)
}

// String renders the target the way it is serialized.
func (t DependencyTarget) String() string {
	switch t.kind {
	case targetReference:
		return t.reference
	case targetAlias:
		return t.name + "@" + t.reference
	default:
		return "null"
	}
}
