package resolver

import (
	"slices"

	"go.trai.ch/pnp/internal/core/domain"
	"go.trai.ch/pnp/internal/engine/virtual"
)

// GetPackageInformation returns the information registered for l.
// The returned value is shared and must not be modified.
func (r *Runtime) GetPackageInformation(l domain.Locator) (*domain.PackageInformation, bool) {
	return r.registry.Get(l)
}

// GetAllLocators returns every registered locator except the top level, in registration order.
func (r *Runtime) GetAllLocators() []domain.Locator {
	locators := make([]domain.Locator, 0, r.registry.Len())
	for l := range r.registry.All() {
		if l.IsTopLevel() {
			continue
		}
		locators = append(locators, l)
	}
	return locators
}

// GetDependencyTreeRoots returns the first-party locators.
func (r *Runtime) GetDependencyTreeRoots() []domain.Locator {
	return slices.Clone(r.roots)
}

// GetLocator returns the locator a dependency declared as name with the given target designates.
func (r *Runtime) GetLocator(name string, target domain.DependencyTarget) domain.Locator {
	return target.Locator(name)
}

// ResolveVirtual returns the real path behind the portable virtual path p.
// It returns false when p is not virtual.
func (r *Runtime) ResolveVirtual(p string) (string, bool) {
	resolved := virtual.Resolve(p)
	if resolved == p {
		return "", false
	}
	return resolved, true
}

// Versions describes the capabilities of the runtime.
func (r *Runtime) Versions() domain.Versions {
	return domain.APIVersions()
}

// PackageCount returns the number of registered packages, the top level included.
func (r *Runtime) PackageCount() int {
	return r.registry.Len()
}
