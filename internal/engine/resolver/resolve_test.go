package resolver_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pnp/internal/core/domain"
	"go.trai.ch/pnp/internal/core/ports/mocks"
	"go.trai.ch/pnp/internal/engine/resolver"
	"go.uber.org/mock/gomock"
)

func TestResolveRequest(t *testing.T) {
	base := newFixture(t)
	r := newRuntime(t, base)
	issuer := base + "/index.js"

	tests := []struct {
		name    string
		request string
		issuer  string
		want    string
	}{
		{"declared dependency", "lodash", issuer, base + "/.yarn/cache/lodash/index.js"},
		{"subpath", "lodash/fp", issuer, base + "/.yarn/cache/lodash/fp.js"},
		{"subpath with extension", "lodash/fp.js", issuer, base + "/.yarn/cache/lodash/fp.js"},
		{"aliased dependency", "my-lodash", issuer, base + "/.yarn/cache/lodash/index.js"},
		{"scoped package with subpath", "@scope/pkg/lib/util", issuer, base + "/.yarn/cache/@scope/pkg/lib/util.js"},
		{"scoped package", "@scope/pkg", issuer, base + "/.yarn/cache/@scope/pkg/index.js"},
		{"self reference", "lodash/fp", base + "/.yarn/cache/lodash/index.js", base + "/.yarn/cache/lodash/fp.js"},
		{"nested issuer", "inner", base + "/.yarn/cache/nested/index.js", base + "/.yarn/cache/nested/node_modules/inner/index.js"},
		{"relative request", "./index", issuer, base + "/index.js"},
		{"parent request", "../../index.js", base + "/packages/workspace-a/index.js", base + "/index.js"},
		{"absolute request", base + "/.yarn/cache/lodash/fp", issuer, base + "/.yarn/cache/lodash/fp.js"},
		{"directory issuer", "./lib/util", base + "/.yarn/cache/@scope/pkg/", base + "/.yarn/cache/@scope/pkg/lib/util.js"},
		{"api request", resolver.APIRequest, issuer, base + "/.pnp.cjs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := r.ResolveRequest(tt.request, tt.issuer)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveRequest_Deterministic(t *testing.T) {
	base := newFixture(t)
	r := newRuntime(t, base)

	first, _, err := r.ResolveRequest("@scope/pkg/lib/util", base+"/index.js")
	require.NoError(t, err)
	for range 5 {
		got, _, err := r.ResolveRequest("@scope/pkg/lib/util", base+"/index.js")
		require.NoError(t, err)
		assert.Equal(t, first, got)
	}
}

func TestResolveRequest_Builtins(t *testing.T) {
	base := newFixture(t)
	r := newRuntime(t, base)
	issuer := base + "/index.js"

	for _, request := range []string{"fs", "path", "node:fs", "node:test", "fs/promises"} {
		t.Run(request, func(t *testing.T) {
			got, ok, err := r.ResolveRequest(request, issuer)
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Empty(t, got)
		})
	}

	t.Run("builtins ignored", func(t *testing.T) {
		_, _, err := r.ResolveRequest("fs", issuer, resolver.WithoutBuiltins())
		resErr := requireResolutionError(t, err, domain.CodeUndeclaredDependency)
		assert.Contains(t, resErr.Message, "Your application tried to access fs. While this module is usually interpreted as a Node builtin")
	})

	t.Run("builtins ignored in a dependency", func(t *testing.T) {
		_, _, err := r.ResolveRequest("fs", base+"/.yarn/cache/lodash/index.js", resolver.WithoutBuiltins())
		resErr := requireResolutionError(t, err, domain.CodeUndeclaredDependency)
		assert.Contains(t, resErr.Message, "lodash tried to access fs. While this module is usually interpreted as a Node builtin")
	})

	t.Run("api request wins over builtins", func(t *testing.T) {
		got, ok, err := r.ResolveToUnqualified(resolver.APIRequest, issuer)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, base+"/.pnp.cjs", got)
	})
}

func TestResolveRequest_CustomAPIPath(t *testing.T) {
	base := newFixture(t)
	r := newRuntime(t, base, resolver.WithAPIPath("/opt/pnp/api.cjs"))

	got, ok, err := r.ResolveRequest(resolver.APIRequest, base+"/index.js")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "/opt/pnp/api.cjs", got)
}

func TestResolveRequest_Errors(t *testing.T) {
	base := newFixture(t)
	r := newRuntime(t, base)
	issuer := base + "/index.js"

	tests := []struct {
		name         string
		request      string
		issuer       string
		code         domain.ErrorCode
		wantMessage  []string
		wantNotFound bool
	}{
		{
			name:         "undeclared from the application",
			request:      "unknown",
			issuer:       issuer,
			code:         domain.CodeUndeclaredDependency,
			wantMessage:  []string{"Your application tried to access unknown, but it isn't declared in your dependencies", "Required package: unknown\n"},
			wantNotFound: true,
		},
		{
			name:         "undeclared through a subpath",
			request:      "unknown/sub",
			issuer:       issuer,
			code:         domain.CodeUndeclaredDependency,
			wantMessage:  []string{`Required package: unknown (via "unknown/sub")`},
			wantNotFound: true,
		},
		{
			name:         "undeclared from a dependency",
			request:      "unknown",
			issuer:       base + "/.yarn/cache/legacy/index.js",
			code:         domain.CodeUndeclaredDependency,
			wantMessage:  []string{"legacy tried to access unknown, but it isn't declared in its dependencies", "Required by: legacy@npm:1.0.0 (via " + base + "/.yarn/cache/legacy/index.js)"},
			wantNotFound: true,
		},
		{
			name:         "workspace cannot use fallbacks",
			request:      "lodash",
			issuer:       base + "/packages/workspace-a/index.js",
			code:         domain.CodeUndeclaredDependency,
			wantMessage:  []string{"Your application tried to access lodash, but it isn't declared in your dependencies"},
			wantNotFound: true,
		},
		{
			name:         "missing peer in the application",
			request:      "absent",
			issuer:       issuer,
			code:         domain.CodeMissingPeerDependency,
			wantMessage:  []string{"Your application tried to access absent (a peer dependency); this isn't allowed as there is no ancestor to satisfy the requirement."},
			wantNotFound: true,
		},
		{
			name:         "missing peer not provided by the application",
			request:      "react",
			issuer:       base + "/.yarn/cache/root-peer/index.js",
			code:         domain.CodeMissingPeerDependency,
			wantMessage:  []string{"root-peer tried to access react (a peer dependency) but it isn't provided by your application", "Ancestor breaking the chain: app@workspace:.\n"},
			wantNotFound: true,
		},
		{
			name:         "missing peer not provided by ancestors",
			request:      "react",
			issuer:       base + "/.yarn/cache/peer-user/index.js",
			code:         domain.CodeMissingPeerDependency,
			wantMessage:  []string{"peer-user tried to access react (a peer dependency) but it isn't provided by its ancestors", "Ancestor breaking the chain: mid@npm:1.0.0\n"},
			wantNotFound: true,
		},
		{
			name:         "dependency not installed",
			request:      "opt",
			issuer:       issuer,
			code:         domain.CodeMissingDependency,
			wantMessage:  []string{"A dependency seems valid but didn't get installed", "Required package: opt@npm:1.0.0\n"},
			wantNotFound: true,
		},
		{
			name:         "file not found",
			request:      "lodash/missing",
			issuer:       issuer,
			code:         domain.CodeQualifiedPathResolutionFailed,
			wantMessage:  []string{"Qualified path resolution failed", "Source path: " + base + "/.yarn/cache/lodash/missing\n", "Not found: " + base + "/.yarn/cache/lodash/missing.js\n"},
			wantNotFound: true,
		},
		{
			name:         "package missing from disk",
			request:      "ghost",
			issuer:       issuer,
			code:         domain.CodeQualifiedPathResolutionFailed,
			wantMessage:  []string{"Required package missing from disk.", "Missing package: ghost@npm:1.0.0\n", "Expected package location: " + base + "/.yarn/cache/ghost/\n"},
			wantNotFound: true,
		},
		{
			name:         "unplugged package missing from disk",
			request:      "native-addon",
			issuer:       issuer,
			code:         domain.CodeQualifiedPathResolutionFailed,
			wantMessage:  []string{"Required unplugged package missing from disk."},
			wantNotFound: true,
		},
		{
			name:         "forbidden path",
			request:      "./.yarn/cache/forbidden/index.js",
			issuer:       issuer,
			code:         domain.CodeBlacklisted,
			wantMessage:  []string{"A forbidden path has been used in the package resolution process"},
			wantNotFound: true,
		},
		{
			name:         "forbidden issuer",
			request:      "lodash",
			issuer:       base + "/.yarn/cache/forbidden/index.js",
			code:         domain.CodeBlacklisted,
			wantMessage:  []string{"Forbidden path: " + base + "/.yarn/cache/forbidden/index.js"},
			wantNotFound: true,
		},
		{
			name:        "private import mapping",
			request:     "#internal",
			issuer:      issuer,
			code:        domain.CodeUnsupported,
			wantMessage: []string{"Private import mappings"},
		},
		{
			name:        "url request",
			request:     "file:///etc/passwd",
			issuer:      issuer,
			code:        domain.CodeUnsupported,
			wantMessage: []string{"URL requests"},
		},
		{
			name:        "bare request without issuer",
			request:     "lodash",
			code:        domain.CodeAPIError,
			wantMessage: []string{"must be called with a valid issuer"},
		},
		{
			name:        "relative request without issuer",
			request:     "./index.js",
			code:        domain.CodeAPIError,
			wantMessage: []string{"must be called with a valid issuer"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok, err := r.ResolveRequest(tt.request, tt.issuer)
			assert.False(t, ok)
			resErr := requireResolutionError(t, err, tt.code)
			for _, want := range tt.wantMessage {
				assert.Contains(t, resErr.Message, want)
			}
			assert.Equal(t, tt.wantNotFound, errors.Is(err, domain.ErrModuleNotFound))

			assert.Equal(t, tt.request, resErr.Data["request"])
			if tt.issuer == "" {
				assert.Contains(t, resErr.Data, "issuer")
				assert.Nil(t, resErr.Data["issuer"])
			} else {
				assert.Equal(t, tt.issuer, resErr.Data["issuer"])
			}
		})
	}
}

func TestResolveRequest_ErrorData(t *testing.T) {
	base := newFixture(t)
	r := newRuntime(t, base)

	t.Run("broken ancestors", func(t *testing.T) {
		_, _, err := r.ResolveRequest("react", base+"/.yarn/cache/peer-user/index.js")
		resErr := requireResolutionError(t, err, domain.CodeMissingPeerDependency)
		assert.Equal(t, []domain.Locator{domain.NewLocator("mid", "npm:1.0.0")}, resErr.Data["brokenAncestors"])
		assert.Equal(t, domain.NewLocator("peer-user", "npm:1.0.0"), resErr.Data["issuerLocator"])
		assert.Equal(t, "react", resErr.Data["dependencyName"])
	})

	t.Run("qualification candidates", func(t *testing.T) {
		_, _, err := r.ResolveRequest("lodash/missing", base+"/index.js", resolver.WithResolveExtensions(".json"))
		resErr := requireResolutionError(t, err, domain.CodeQualifiedPathResolutionFailed)
		assert.Equal(t, []string{".json"}, resErr.Data["extensions"])
		assert.Contains(t, resErr.Data["candidates"], base+"/.yarn/cache/lodash/missing.json")
		assert.NotContains(t, resErr.Data["candidates"], base+"/.yarn/cache/lodash/missing.js")
	})

	t.Run("missing dependency locator", func(t *testing.T) {
		_, _, err := r.ResolveRequest("opt", base+"/index.js")
		resErr := requireResolutionError(t, err, domain.CodeMissingDependency)
		assert.Equal(t, domain.NewLocator("opt", "npm:1.0.0"), resErr.Data["dependencyLocator"])
	})
}

func TestResolveToUnqualified(t *testing.T) {
	base := newFixture(t)
	r := newRuntime(t, base)

	tests := []struct {
		name    string
		request string
		issuer  string
		want    string
	}{
		{"package root", "lodash", base + "/index.js", base + "/.yarn/cache/lodash/"},
		{"subpath", "lodash/fp", base + "/index.js", base + "/.yarn/cache/lodash/fp"},
		{"trailing slashes after the name", "lodash//fp", base + "/index.js", base + "/.yarn/cache/lodash/fp"},
		{"missing file is not checked", "lodash/nope", base + "/index.js", base + "/.yarn/cache/lodash/nope"},
		{"relative request is normalized", "./a/../b", base + "/index.js", base + "/b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := r.ResolveToUnqualified(tt.request, tt.issuer)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveUnqualified(t *testing.T) {
	base := newFixture(t)
	r := newRuntime(t, base)

	got, err := r.ResolveUnqualified(base + "/.yarn/cache/lodash/")
	require.NoError(t, err)
	assert.Equal(t, base+"/.yarn/cache/lodash/index.js", got)

	got, err = r.ResolveUnqualified(base + "/.yarn/cache/lodash/fp")
	require.NoError(t, err)
	assert.Equal(t, base+"/.yarn/cache/lodash/fp.js", got)

	_, err = r.ResolveUnqualified(base+"/.yarn/cache/lodash/fp", resolver.WithResolveExtensions(".mjs"))
	requireResolutionError(t, err, domain.CodeQualifiedPathResolutionFailed)
}

func TestFallback(t *testing.T) {
	base := newFixture(t)
	legacy := base + "/.yarn/cache/legacy/index.js"
	lodashWarning := "legacy tried to access lodash, but it isn't declared in its dependencies; this makes the require call ambiguous and unsound."
	leftPadWarning := "legacy tried to access left-pad, but it isn't declared in its dependencies; this makes the require call ambiguous and unsound."

	t.Run("top level fallback warns once", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		logger := mocks.NewMockLogger(ctrl)
		logger.EXPECT().Warn(lodashWarning).Times(1)

		r := newRuntime(t, base, resolver.WithLogger(logger))
		for range 3 {
			got, ok, err := r.ResolveRequest("lodash", legacy)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, base+"/.yarn/cache/lodash/index.js", got)
		}
	})

	t.Run("concurrent resolutions warn once", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		logger := mocks.NewMockLogger(ctrl)
		logger.EXPECT().Warn(lodashWarning).Times(1)

		r := newRuntime(t, base, resolver.WithLogger(logger))
		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _, err := r.ResolveRequest("lodash/fp", legacy)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()
	})

	t.Run("fallback pool", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		logger := mocks.NewMockLogger(ctrl)
		logger.EXPECT().Warn(leftPadWarning).Times(1)

		r := newRuntime(t, base, resolver.WithLogger(logger))
		got, _, err := r.ResolveRequest("left-pad", legacy)
		require.NoError(t, err)
		assert.Equal(t, base+"/.yarn/cache/left-pad/index.js", got)
	})

	t.Run("silent fallback locators", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		logger := mocks.NewMockLogger(ctrl)
		logger.EXPECT().Warn(leftPadWarning).Times(1)

		r := newRuntime(t, base, resolver.WithLogger(logger), resolver.WithAlwaysWarnOnFallback(false))
		got, _, err := r.ResolveRequest("lodash", legacy)
		require.NoError(t, err)
		assert.Equal(t, base+"/.yarn/cache/lodash/index.js", got)

		_, _, err = r.ResolveRequest("left-pad", legacy)
		require.NoError(t, err)
	})

	t.Run("debug level zero", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		logger := mocks.NewMockLogger(ctrl)

		r := newRuntime(t, base, resolver.WithLogger(logger), resolver.WithDebugLevel(0))
		_, _, err := r.ResolveRequest("lodash", legacy)
		require.NoError(t, err)
		_, _, err = r.ResolveRequest("left-pad", legacy)
		require.NoError(t, err)
	})

	t.Run("peer dependency through fallback", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		logger := mocks.NewMockLogger(ctrl)
		logger.EXPECT().Warn(gomock.Any()).Times(1)

		state := loadState(t, fixtureState)
		state.FallbackPool = append(state.FallbackPool, domain.FallbackPoolEntry{
			Name:   "react",
			Target: domain.AliasTarget("left-pad", "npm:1.3.0"),
		})
		r, err := resolver.New(state, base, resolver.WithFileSystem(newFS()), resolver.WithLogger(logger))
		require.NoError(t, err)

		got, _, err := r.ResolveRequest("react", base+"/.yarn/cache/peer-user/index.js")
		require.NoError(t, err)
		assert.Equal(t, base+"/.yarn/cache/left-pad/index.js", got)
	})

	t.Run("top level fallback disabled", func(t *testing.T) {
		state := loadState(t, fixtureState)
		state.EnableTopLevelFallback = false
		r, err := resolver.New(state, base, resolver.WithFileSystem(newFS()))
		require.NoError(t, err)

		_, _, err = r.ResolveRequest("lodash", legacy)
		requireResolutionError(t, err, domain.CodeUndeclaredDependency)
		_, _, err = r.ResolveRequest("left-pad", legacy)
		requireResolutionError(t, err, domain.CodeUndeclaredDependency)
	})
}

func TestNativeDeferral(t *testing.T) {
	base := newFixture(t)

	t.Run("issuer outside the tree", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		native := mocks.NewMockNativeResolver(ctrl)
		native.EXPECT().Resolve("lodash", "/outside/project/file.js").Return("/outside/project/node_modules/lodash/index.js", nil)

		r := newRuntime(t, base, resolver.WithNativeResolver(native))
		got, ok, err := r.ResolveToUnqualified("lodash", "/outside/project/file.js")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "/outside/project/node_modules/lodash/index.js", got)
	})

	t.Run("native failure outside the tree", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		native := mocks.NewMockNativeResolver(ctrl)
		native.EXPECT().Resolve("lodash", "/outside/project/file.js").Return("", domain.ErrNativeResolutionFailed)

		r := newRuntime(t, base, resolver.WithNativeResolver(native))
		_, _, err := r.ResolveToUnqualified("lodash", "/outside/project/file.js")
		resErr := requireResolutionError(t, err, domain.CodeBuiltinNodeResolutionFailed)
		assert.Contains(t, resErr.Message, "doesn't seem to be part of the Yarn-managed dependency tree")
	})

	t.Run("ignored issuer", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		native := mocks.NewMockNativeResolver(ctrl)
		native.EXPECT().Resolve("lodash", base+"/ignored/file.js").Return(base+"/ignored/node_modules/lodash.js", nil)

		r := newRuntime(t, base, resolver.WithNativeResolver(native))
		got, ok, err := r.ResolveToUnqualified("lodash", base+"/ignored/file.js")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, base+"/ignored/node_modules/lodash.js", got)
	})

	t.Run("native failure from an ignored issuer", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		native := mocks.NewMockNativeResolver(ctrl)
		native.EXPECT().Resolve("lodash", base+"/ignored/file.js").Return("", domain.ErrNativeResolutionFailed)

		r := newRuntime(t, base, resolver.WithNativeResolver(native))
		_, _, err := r.ResolveToUnqualified("lodash", base+"/ignored/file.js")
		resErr := requireResolutionError(t, err, domain.CodeBuiltinNodeResolutionFailed)
		assert.Contains(t, resErr.Message, "explicitely ignored by the regexp")
	})

	t.Run("owned absolute request from an ignored issuer", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		native := mocks.NewMockNativeResolver(ctrl)

		r := newRuntime(t, base, resolver.WithNativeResolver(native))
		got, ok, err := r.ResolveToUnqualified(base+"/.yarn/cache/lodash/index.js", base+"/ignored/file.js")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, base+"/.yarn/cache/lodash/index.js", got)
	})

	t.Run("default node_modules lookup", func(t *testing.T) {
		r := newRuntime(t, base)
		got, ok, err := r.ResolveRequest("inner", base+"/ignored/file.js")
		require.Error(t, err)
		assert.False(t, ok)
		assert.Empty(t, got)
	})
}
