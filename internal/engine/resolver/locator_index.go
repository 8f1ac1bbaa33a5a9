package resolver

import (
	"strings"

	"go.trai.ch/pnp/internal/core/domain"
	"go.trai.ch/pnp/internal/core/ppath"
)

// FindPackageLocator returns the locator of the package owning the absolute portable path p.
// It returns false when no package owns it or when p is ignored, and a BLACKLISTED
// ResolutionError when p lies in a location that must never be resolved.
func (r *Runtime) FindPackageLocator(p string) (domain.Locator, bool, error) {
	if r.isPathIgnored(p) {
		return domain.Locator{}, false, nil
	}

	relative := r.relativeLocation(p)
	if strings.HasSuffix(p, "/") && !strings.HasSuffix(relative, "/") {
		relative += "/"
	}

	for _, length := range r.lengths {
		if length > len(relative) {
			continue
		}
		entry, ok := r.locations[relative[:length]]
		if !ok {
			continue
		}
		if entry == nil {
			return domain.Locator{}, false, blacklistedError(p)
		}
		if entry.discard {
			continue
		}
		return entry.locator, true, nil
	}

	return domain.Locator{}, false, nil
}

// relativeLocation returns p relative to the base path, always starting with ./ or ../
func (r *Runtime) relativeLocation(p string) string {
	relative := ppath.Relative(r.basePath, p)
	if !isStrictRelative(relative) {
		relative = "./" + relative
	}
	return relative
}

func (r *Runtime) isPathIgnored(p string) bool {
	if r.ignorePattern == nil || !ppath.Contains(r.basePath, p) {
		return false
	}
	subpath := strings.TrimSuffix(ppath.Relative(r.basePath, p), "/")
	matched, err := r.ignorePattern.MatchString(subpath)
	return err == nil && matched
}

func isStrictRelative(p string) bool {
	return p == "." || p == ".." || strings.HasPrefix(p, "./") || strings.HasPrefix(p, "../")
}
