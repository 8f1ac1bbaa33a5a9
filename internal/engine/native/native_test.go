package native_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pnp/internal/adapters/fs"
	"go.trai.ch/pnp/internal/core/domain"
	"go.trai.ch/pnp/internal/core/ppath"
	"go.trai.ch/pnp/internal/engine/native"
	"go.trai.ch/pnp/internal/engine/qualifier"
)

func setup(t *testing.T, files ...string) (*native.Resolver, string) {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	for _, name := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, nil, 0o600))
	}
	q, err := qualifier.New(fs.NewFileSystem(), domain.DefaultExtensions, 0)
	require.NoError(t, err)
	return native.New(q), ppath.ToPortable(dir)
}

func TestLookupPaths(t *testing.T) {
	assert.Equal(t, []string{
		"/p/a/node_modules/x/node_modules",
		"/p/a/node_modules",
		"/p/node_modules",
		"/node_modules",
	}, native.LookupPaths("/p/a/node_modules/x"))
}

func TestResolve(t *testing.T) {
	r, root := setup(t,
		"app/src/index.js",
		"app/src/util.js",
		"app/node_modules/lodash/index.js",
		"node_modules/@scope/pkg/lib/x.js",
		"app/node_modules/nested/node_modules/inner/index.js",
	)
	issuer := root + "/app/src/index.js"

	tests := []struct {
		name    string
		request string
		issuer  string
		want    string
	}{
		{"relative", "./util", issuer, root + "/app/src/util.js"},
		{"absolute", root + "/app/src/util", issuer, root + "/app/src/util.js"},
		{"bare closest", "lodash", issuer, root + "/app/node_modules/lodash/index.js"},
		{"bare in ancestor", "@scope/pkg/lib/x", issuer, root + "/node_modules/@scope/pkg/lib/x.js"},
		{"directory issuer", "./util", root + "/app/src/", root + "/app/src/util.js"},
		{"nested node_modules", "inner", root + "/app/node_modules/nested/index.js", root + "/app/node_modules/nested/node_modules/inner/index.js"},
		{"builtin", "fs", issuer, "fs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(tt.request, tt.issuer)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_NotFound(t *testing.T) {
	r, root := setup(t, "app/index.js")

	_, err := r.Resolve("missing", root+"/app/index.js")
	require.ErrorIs(t, err, domain.ErrNativeResolutionFailed)

	_, err = r.Resolve("./missing", root+"/app/index.js")
	require.ErrorIs(t, err, domain.ErrNativeResolutionFailed)
}
