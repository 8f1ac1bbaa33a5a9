// Package qualifier turns an unqualified path into the file a module loader would load,
// trying the file itself, a package.json main entry, extensions and index files.
package qualifier

import (
	"encoding/json"
	"path"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.trai.ch/pnp/internal/core/domain"
	"go.trai.ch/pnp/internal/core/ports"
	"go.trai.ch/zerr"
)

// Qualifier applies the file resolution rules against a FileSystem.
// It is safe for concurrent use.
type Qualifier struct {
	fs         ports.FileSystem
	extensions []string
	cache      *lru.Cache[string, string]
}

// New creates a Qualifier. A cacheSize of zero disables caching of qualified paths.
func New(fs ports.FileSystem, extensions []string, cacheSize int) (*Qualifier, error) {
	q := &Qualifier{
		fs:         fs,
		extensions: extensions,
	}
	if cacheSize < 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidSetting, "cache size must not be negative"), "cacheSize", cacheSize)
	}
	if cacheSize > 0 {
		cache, err := lru.New[string, string](cacheSize)
		if err != nil {
			return nil, zerr.Wrap(err, "failed to create qualification cache")
		}
		q.cache = cache
	}
	return q, nil
}

// Extensions returns the default extensions, in the order they are tried.
func (q *Qualifier) Extensions() []string {
	return q.extensions
}

// Qualify returns the qualified path of p. When nothing matches it returns false along with
// every candidate that was tried. A nil extensions slice selects the default extensions.
func (q *Qualifier) Qualify(p string, extensions []string) (string, []string, bool) {
	if extensions == nil {
		extensions = q.extensions
	}

	key := cacheKey(p, extensions)
	if q.cache != nil {
		if qualified, ok := q.cache.Get(key); ok {
			return qualified, nil, true
		}
	}

	var candidates []string
	visited := make(map[string]bool)
	qualified, ok := q.qualify(p, extensions, &candidates, visited)
	if !ok {
		return "", candidates, false
	}

	if q.cache != nil {
		q.cache.Add(key, qualified)
	}
	return qualified, candidates, true
}

// Purge drops every cached result.
func (q *Qualifier) Purge() {
	if q.cache != nil {
		q.cache.Purge()
	}
}

func (q *Qualifier) qualify(p string, extensions []string, candidates *[]string, visited map[string]bool) (string, bool) {
	visited[p] = true

	*candidates = append(*candidates, p)
	info, err := q.fs.Stat(p)
	isDir := err == nil && info.IsDir()

	if err == nil && !isDir {
		resolved, err := q.fs.Realpath(p)
		if err != nil {
			return p, true
		}
		return resolved, true
	}

	if isDir {
		if main, ok := q.readMain(p); ok {
			next := main
			if !strings.HasPrefix(next, "/") {
				next = path.Join(p, main)
			}
			if next != p && !visited[next] {
				if qualified, ok := q.qualify(next, extensions, candidates, visited); ok {
					return qualified, true
				}
			}
		}
	}

	for _, ext := range extensions {
		candidate := p + ext
		*candidates = append(*candidates, candidate)
		if q.fs.Exists(candidate) {
			return candidate, true
		}
	}

	if isDir {
		for _, ext := range extensions {
			candidate := path.Join(p, "index"+ext)
			*candidates = append(*candidates, candidate)
			if q.fs.Exists(candidate) {
				return candidate, true
			}
		}
	}

	return "", false
}

type manifest struct {
	Main string `json:"main"`
}

func (q *Qualifier) readMain(dir string) (string, bool) {
	content, err := q.fs.ReadFile(path.Join(dir, "package.json"))
	if err != nil {
		return "", false
	}
	var m manifest
	if err := json.Unmarshal(content, &m); err != nil || m.Main == "" {
		return "", false
	}
	return m.Main, true
}

func cacheKey(p string, extensions []string) string {
	return p + "\x00" + strings.Join(extensions, "\x00")
}
