// Package native implements the classic node_modules resolution, used for the
// files a Plug'n'Play runtime does not govern.
package native

import (
	"path"
	"strings"

	"go.trai.ch/pnp/internal/core/domain"
	"go.trai.ch/pnp/internal/core/ports"
	"go.trai.ch/pnp/internal/engine/qualifier"
	"go.trai.ch/zerr"
)

var _ ports.NativeResolver = (*Resolver)(nil)

// Resolver walks node_modules folders from the issuer upward.
type Resolver struct {
	qualifier *qualifier.Qualifier
}

// New creates a Resolver checking files through q.
func New(q *qualifier.Qualifier) *Resolver {
	return &Resolver{qualifier: q}
}

// Resolve returns the qualified path of request as seen from issuer.
// An issuer ending with a slash is a directory, anything else is a file.
func (r *Resolver) Resolve(request, issuer string) (string, error) {
	if domain.IsBuiltinModule(request) {
		return request, nil
	}

	dir := issuer
	if !strings.HasSuffix(dir, "/") {
		dir = path.Dir(dir)
	}

	if isPathRequest(request) {
		target := request
		if !strings.HasPrefix(request, "/") {
			target = path.Join(dir, request)
			if strings.HasSuffix(request, "/") {
				target += "/"
			}
		}
		if qualified, _, ok := r.qualifier.Qualify(target, nil); ok {
			return qualified, nil
		}
		return "", notFound(request, issuer)
	}

	for _, modules := range lookupPaths(dir) {
		if qualified, _, ok := r.qualifier.Qualify(path.Join(modules, request), nil); ok {
			return qualified, nil
		}
	}
	return "", notFound(request, issuer)
}

// lookupPaths lists the node_modules folders visible from dir, closest first.
func lookupPaths(dir string) []string {
	dir = path.Clean(dir)

	var paths []string
	for {
		if path.Base(dir) != "node_modules" {
			paths = append(paths, path.Join(dir, "node_modules"))
		}
		parent := path.Dir(dir)
		if parent == dir {
			return paths
		}
		dir = parent
	}
}

func isPathRequest(request string) bool {
	return request == "." || request == ".." ||
		strings.HasPrefix(request, "/") ||
		strings.HasPrefix(request, "./") ||
		strings.HasPrefix(request, "../")
}

func notFound(request, issuer string) error {
	err := zerr.With(zerr.Wrap(domain.ErrNativeResolutionFailed, "no node_modules candidate matched"), "request", request)
	return zerr.With(err, "issuer", issuer)
}
