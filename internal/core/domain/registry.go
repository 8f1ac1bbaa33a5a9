package domain

import "iter"

// PackageRegistry maps a package name to its references and their information.
// It is built once during hydration and only read afterwards.
type PackageRegistry struct {
	packages map[InternedString]map[InternedString]*PackageInformation
	order    []Locator
}

// NewPackageRegistry creates an empty registry.
func NewPackageRegistry() *PackageRegistry {
	return &PackageRegistry{
		packages: make(map[InternedString]map[InternedString]*PackageInformation),
	}
}

// Add registers info under l. A later entry for the same locator replaces the earlier one
// but keeps its original position.
func (r *PackageRegistry) Add(l Locator, info *PackageInformation) {
	store, ok := r.packages[l.Name]
	if !ok {
		store = make(map[InternedString]*PackageInformation)
		r.packages[l.Name] = store
	}
	if _, exists := store[l.Reference]; !exists {
		r.order = append(r.order, l)
	}
	store[l.Reference] = info
}

// Get returns the information registered for l.
func (r *PackageRegistry) Get(l Locator) (*PackageInformation, bool) {
	store, ok := r.packages[l.Name]
	if !ok {
		return nil, false
	}
	info, ok := store[l.Reference]
	return info, ok
}

// References returns every locator registered under name, in registration order.
func (r *PackageRegistry) References(name string) []Locator {
	key := NewInternedString(name)
	if _, ok := r.packages[key]; !ok {
		return nil
	}
	var locators []Locator
	for _, l := range r.order {
		if l.Name == key {
			locators = append(locators, l)
		}
	}
	return locators
}

// All yields every entry in registration order.
func (r *PackageRegistry) All() iter.Seq2[Locator, *PackageInformation] {
	return func(yield func(Locator, *PackageInformation) bool) {
		for _, l := range r.order {
			if !yield(l, r.packages[l.Name][l.Reference]) {
				return
			}
		}
	}
}

// Len returns the number of registered locators, the top level included.
func (r *PackageRegistry) Len() int {
	return len(r.order)
}
