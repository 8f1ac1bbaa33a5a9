package resolver_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/pnp/internal/adapters/fs"
	"go.trai.ch/pnp/internal/core/domain"
	"go.trai.ch/pnp/internal/core/ppath"
	"go.trai.ch/pnp/internal/engine/resolver"
)

const fixtureState = `{
  "enableTopLevelFallback": true,
  "ignorePatternData": "^ignored(?:/|$)",
  "fallbackExclusionList": [
    ["app", ["workspace:."]],
    ["workspace-a", ["workspace:packages/workspace-a"]]
  ],
  "fallbackPool": [
    ["left-pad", "npm:1.3.0"]
  ],
  "dependencyTreeRoots": [
    {"name": "app", "reference": "workspace:."},
    {"name": "workspace-a", "reference": "workspace:packages/workspace-a"}
  ],
  "locationBlacklistData": [
    "./.yarn/cache/forbidden/"
  ],
  "packageRegistryData": [
    [null, [
      [null, {
        "packageLocation": "./",
        "packageDependencies": [
          ["app", "workspace:."],
          ["lodash", "npm:4.17.21"]
        ],
        "linkType": "SOFT"
      }]
    ]],
    ["app", [
      ["workspace:.", {
        "packageLocation": "./",
        "packageDependencies": [
          ["lodash", "npm:4.17.21"],
          ["my-lodash", ["lodash", "npm:4.17.21"]],
          ["@scope/pkg", "npm:1.0.0"],
          ["legacy", "npm:1.0.0"],
          ["mid", "npm:1.0.0"],
          ["root-peer", "npm:1.0.0"],
          ["opt", "npm:1.0.0"],
          ["ghost", "npm:1.0.0"],
          ["native-addon", "npm:1.0.0"],
          ["nested", "npm:1.0.0"],
          ["forbidden", "npm:1.0.0"],
          ["absent", null],
          ["workspace-a", "workspace:packages/workspace-a"]
        ],
        "linkType": "SOFT"
      }]
    ]],
    ["lodash", [
      ["npm:4.17.21", {
        "packageLocation": "./.yarn/cache/lodash/",
        "packageDependencies": [["lodash", "npm:4.17.21"]],
        "linkType": "HARD"
      }]
    ]],
    ["@scope/pkg", [
      ["npm:1.0.0", {
        "packageLocation": "./.yarn/cache/@scope/pkg/",
        "packageDependencies": [],
        "linkType": "HARD"
      }]
    ]],
    ["legacy", [
      ["npm:1.0.0", {
        "packageLocation": "./.yarn/cache/legacy/",
        "packageDependencies": [["legacy", "npm:1.0.0"]],
        "linkType": "HARD"
      }]
    ]],
    ["left-pad", [
      ["npm:1.3.0", {
        "packageLocation": "./.yarn/cache/left-pad/",
        "packageDependencies": [],
        "linkType": "HARD"
      }]
    ]],
    ["mid", [
      ["npm:1.0.0", {
        "packageLocation": "./.yarn/cache/mid/",
        "packageDependencies": [["peer-user", "npm:1.0.0"]],
        "linkType": "HARD"
      }]
    ]],
    ["peer-user", [
      ["npm:1.0.0", {
        "packageLocation": "./.yarn/cache/peer-user/",
        "packageDependencies": [["react", null]],
        "packagePeers": ["react"],
        "linkType": "HARD"
      }]
    ]],
    ["root-peer", [
      ["npm:1.0.0", {
        "packageLocation": "./.yarn/cache/root-peer/",
        "packageDependencies": [["react", null]],
        "packagePeers": ["react"],
        "linkType": "HARD"
      }]
    ]],
    ["opt", [
      ["npm:1.0.0", {
        "packageLocation": "",
        "packageDependencies": [],
        "linkType": "HARD"
      }]
    ]],
    ["ghost", [
      ["npm:1.0.0", {
        "packageLocation": "./.yarn/cache/ghost/",
        "packageDependencies": [],
        "linkType": "HARD"
      }]
    ]],
    ["native-addon", [
      ["npm:1.0.0", {
        "packageLocation": "./.yarn/unplugged/native-addon/",
        "packageDependencies": [],
        "linkType": "HARD"
      }]
    ]],
    ["nested", [
      ["npm:1.0.0", {
        "packageLocation": "./.yarn/cache/nested/",
        "packageDependencies": [["inner", "npm:1.0.0"]],
        "linkType": "HARD"
      }]
    ]],
    ["inner", [
      ["npm:1.0.0", {
        "packageLocation": "./.yarn/cache/nested/node_modules/inner/",
        "packageDependencies": [],
        "linkType": "HARD"
      }]
    ]],
    ["forbidden", [
      ["npm:1.0.0", {
        "packageLocation": "./.yarn/cache/forbidden/",
        "packageDependencies": [],
        "linkType": "HARD",
        "discardFromLookup": true
      }]
    ]],
    ["workspace-a", [
      ["workspace:packages/workspace-a", {
        "packageLocation": "./packages/workspace-a/",
        "packageDependencies": [],
        "linkType": "SOFT"
      }]
    ]]
  ]
}`

var fixtureFiles = []string{
	"package.json",
	"index.js",
	"ignored/file.js",
	".yarn/cache/lodash/index.js",
	".yarn/cache/lodash/fp.js",
	".yarn/cache/@scope/pkg/index.js",
	".yarn/cache/@scope/pkg/lib/util.js",
	".yarn/cache/legacy/index.js",
	".yarn/cache/left-pad/index.js",
	".yarn/cache/mid/index.js",
	".yarn/cache/peer-user/index.js",
	".yarn/cache/root-peer/index.js",
	".yarn/cache/nested/index.js",
	".yarn/cache/nested/node_modules/inner/index.js",
	".yarn/cache/forbidden/index.js",
	"packages/workspace-a/index.js",
}

// newFixture lays the fixture project out on disk and returns its portable root.
func newFixture(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	for _, name := range fixtureFiles {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte("module.exports = {};\n"), 0o600))
	}
	return ppath.ToPortable(dir)
}

func loadState(t *testing.T, raw string) *domain.SerializedState {
	t.Helper()
	var state domain.SerializedState
	require.NoError(t, json.Unmarshal([]byte(raw), &state))
	return &state
}

func newRuntime(t *testing.T, base string, opts ...resolver.Option) *resolver.Runtime {
	t.Helper()
	opts = append([]resolver.Option{resolver.WithFileSystem(fs.NewFileSystem())}, opts...)
	r, err := resolver.New(loadState(t, fixtureState), base, opts...)
	require.NoError(t, err)
	return r
}

func requireResolutionError(t *testing.T, err error, code domain.ErrorCode) *domain.ResolutionError {
	t.Helper()
	require.Error(t, err)
	resErr, ok := domain.AsResolutionError(err)
	require.True(t, ok, "expected a resolution error, got %v", err)
	require.Equal(t, code, resErr.Code, resErr.Message)
	return resErr
}

func newFS() *fs.FileSystem {
	return fs.NewFileSystem()
}
