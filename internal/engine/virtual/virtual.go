// Package virtual encodes and decodes virtual package paths.
//
// A virtual path has the shape <root>/$$virtual/<component>/<depth>/<subpath>.
// It designates the real directory reached from <root> by going up <depth>
// directories and then down <subpath>. The component only makes the path unique.
package virtual

import (
	"path"
	"regexp"
	"strconv"
	"strings"

	"go.trai.ch/pnp/internal/core/domain"
	"go.trai.ch/pnp/internal/core/ppath"
	"go.trai.ch/zerr"
)

const (
	// Folder is the marker segment of virtual paths.
	Folder = "$$virtual"
	// LegacyFolder is the marker segment used by older installs.
	LegacyFolder = "__virtual__"
)

var (
	// 1: everything up to and including the marker
	// 3: component, 4: depth, 5: subpath with its leading slash
	virtualRegExp   = regexp.MustCompile(`^(/(?:[^/]+/)*?(?:\$\$virtual|__virtual__))((?:/((?:[^/]+-)?[a-f0-9]+)(?:/([^/]+))?)?((?:/.*)?))$`)
	componentRegExp = regexp.MustCompile(`^([^/]+-)?[a-f0-9]+$`)
	numberRegExp    = regexp.MustCompile(`^[0-9]+$`)
)

// IsFolder reports whether name is a virtual marker segment.
func IsFolder(name string) bool {
	return name == Folder || name == LegacyFolder
}

// Resolve returns the real path behind a portable virtual path.
// Paths without a marker or without a hash component are returned unchanged.
// Virtual paths pointing at other virtual paths are followed.
func Resolve(p string) string {
	m := virtualRegExp.FindStringSubmatch(p)
	if m == nil || m[3] == "" {
		return p
	}

	target := path.Dir(m[1])
	if m[4] == "" {
		return target
	}
	if !numberRegExp.MatchString(m[4]) {
		return p
	}

	depth, err := strconv.Atoi(m[4])
	if err != nil {
		return p
	}

	subpath := m[5]
	if subpath == "" {
		subpath = "."
	}

	return Resolve(ppath.Join(target, strings.Repeat("../", depth), subpath))
}

// Make computes the virtual path under base that designates target for the given component.
// base must be a marker directory and target an absolute portable path. A trailing slash on
// target is kept.
func Make(base, component, target string) (string, error) {
	if !IsFolder(path.Base(base)) {
		return "", zerr.With(zerr.Wrap(domain.ErrInvalidVirtualBase, "cannot make virtual path"), "base", base)
	}
	if !componentRegExp.MatchString(path.Base(component)) {
		return "", zerr.With(zerr.Wrap(domain.ErrInvalidVirtualComponent, "cannot make virtual path"), "component", component)
	}

	rel := ppath.Relative(path.Dir(base), target)

	var segments []string
	if rel != "" {
		segments = strings.Split(rel, "/")
	}

	depth := 0
	for depth < len(segments) && segments[depth] == ".." {
		depth++
	}

	elems := append([]string{base, component, strconv.Itoa(depth)}, segments[depth:]...)
	p := ppath.Join(elems...)
	if strings.HasSuffix(target, "/") && !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p, nil
}
