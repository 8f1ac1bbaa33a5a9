package domain_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/pnp/internal/core/domain"
)

func TestGraph_AddDependency(t *testing.T) {
	g := domain.NewGraph()
	a := domain.NewLocator("a", "1.0.0")
	b := domain.NewLocator("b", "1.0.0")

	g.AddDependency(a, b)
	g.AddDependency(a, b)
	g.AddDependency(b, b)

	assert.Equal(t, []domain.Locator{a}, slices.Collect(g.Dependents(b)))
	assert.Empty(t, slices.Collect(g.Dependents(a)))
}

func TestBuildGraph(t *testing.T) {
	app := domain.NewLocator("app", "workspace:.")
	lib := domain.NewLocator("lib", "1.0.0")
	aliased := domain.NewLocator("real-name", "2.0.0")

	r := domain.NewPackageRegistry()
	r.Add(domain.TopLevelLocator, &domain.PackageInformation{
		PackageDependencies: map[string]domain.DependencyTarget{"app": domain.ReferenceTarget("workspace:.")},
	})
	r.Add(app, &domain.PackageInformation{
		PackageDependencies: map[string]domain.DependencyTarget{
			"lib":   domain.ReferenceTarget("1.0.0"),
			"alias": domain.AliasTarget("real-name", "2.0.0"),
			"peer":  domain.NullTarget(),
		},
	})

	g := domain.BuildGraph(r)

	assert.Equal(t, []domain.Locator{app}, slices.Collect(g.Dependents(lib)))
	assert.Equal(t, []domain.Locator{app}, slices.Collect(g.Dependents(aliased)))
	assert.Empty(t, slices.Collect(g.Dependents(app)), "top level must not be recorded as a dependent")
}

func TestGraph_BrokenAncestors(t *testing.T) {
	// app -> middle (forwards react as a peer) -> leaf (peer react)
	// other -> leaf, other does not forward react
	app := domain.NewLocator("app", "workspace:.")
	other := domain.NewLocator("other", "1.0.0")
	middle := domain.NewLocator("middle", "1.0.0")
	leaf := domain.NewLocator("leaf", "1.0.0")

	r := domain.NewPackageRegistry()
	r.Add(app, &domain.PackageInformation{
		PackageDependencies: map[string]domain.DependencyTarget{"middle": domain.ReferenceTarget("1.0.0")},
	})
	r.Add(other, &domain.PackageInformation{
		PackageDependencies: map[string]domain.DependencyTarget{"leaf": domain.ReferenceTarget("1.0.0")},
	})
	r.Add(middle, &domain.PackageInformation{
		PackageDependencies: map[string]domain.DependencyTarget{
			"leaf":  domain.ReferenceTarget("1.0.0"),
			"react": domain.NullTarget(),
		},
		PackagePeers: map[string]struct{}{"react": {}},
	})
	r.Add(leaf, &domain.PackageInformation{
		PackageDependencies: map[string]domain.DependencyTarget{"react": domain.NullTarget()},
		PackagePeers:        map[string]struct{}{"react": {}},
	})

	g := domain.BuildGraph(r)

	assert.Equal(t, []domain.Locator{app, other}, g.BrokenAncestors(r, "react", leaf))
	assert.Empty(t, g.BrokenAncestors(r, "react", app))
}
