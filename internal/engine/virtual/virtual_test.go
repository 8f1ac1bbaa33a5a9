package virtual_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pnp/internal/core/domain"
	"go.trai.ch/pnp/internal/engine/virtual"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"not virtual", "/project/node_modules/x/index.js", "/project/node_modules/x/index.js"},
		{"marker without component", "/project/$$virtual", "/project/$$virtual"},
		{"marker with non hash component", "/project/$$virtual/not-a-hash!/0/x", "/project/$$virtual/not-a-hash!/0/x"},
		{"depth zero", "/project/.yarn/$$virtual/pkg-abc123/0/cache/pkg/index.js", "/project/.yarn/cache/pkg/index.js"},
		{"depth two", "/project/.yarn/$$virtual/abc123/2/other/dir", "/other/dir"},
		{"no subpath", "/project/.yarn/$$virtual/abc123/1", "/project"},
		{"hash without depth", "/project/.yarn/$$virtual/abc123", "/project/.yarn"},
		{"non numeric depth", "/project/.yarn/$$virtual/abc123/x/y", "/project/.yarn/$$virtual/abc123/x/y"},
		{"legacy marker", "/project/.yarn/__virtual__/pkg-abc123/0/cache/pkg", "/project/.yarn/cache/pkg"},
		{"trailing slash kept", "/project/.yarn/$$virtual/abc123/0/cache/pkg/", "/project/.yarn/cache/pkg/"},
		{
			"nested virtual",
			"/p/.yarn/$$virtual/aaa111/0/$$virtual/bbb222/0/cache/pkg",
			"/p/.yarn/cache/pkg",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, virtual.Resolve(tt.in))
		})
	}
}

func TestMake(t *testing.T) {
	got, err := virtual.Make("/project/.yarn/$$virtual", "react-dom-virtual-0f1e2d", "/project/.yarn/cache/react-dom/node_modules/react-dom")
	require.NoError(t, err)
	assert.Equal(t, "/project/.yarn/$$virtual/react-dom-virtual-0f1e2d/0/cache/react-dom/node_modules/react-dom", got)

	got, err = virtual.Make("/project/.yarn/$$virtual", "abc123", "/elsewhere/pkg")
	require.NoError(t, err)
	assert.Equal(t, "/project/.yarn/$$virtual/abc123/2/elsewhere/pkg", got)

	got, err = virtual.Make("/project/.yarn/$$virtual", "abc123", "/project/.yarn/cache/pkg/")
	require.NoError(t, err)
	assert.Equal(t, "/project/.yarn/$$virtual/abc123/0/cache/pkg/", got)
}

func TestMake_Errors(t *testing.T) {
	_, err := virtual.Make("/project/.yarn/cache", "abc123", "/project/x")
	require.ErrorIs(t, err, domain.ErrInvalidVirtualBase)

	_, err = virtual.Make("/project/.yarn/$$virtual", "not-hex-zz", "/project/x")
	require.ErrorIs(t, err, domain.ErrInvalidVirtualComponent)
}

func TestRoundTrip(t *testing.T) {
	bases := []string{"/project/.yarn/$$virtual", "/project/.yarn/__virtual__", "/$$virtual"}
	targets := []string{
		"/project/.yarn/cache/pkg",
		"/project/.yarn/cache/pkg/",
		"/other/root/pkg/",
		"/project/packages/workspace-a",
		"/project/.yarn",
		"/other/root/pkg",
		"/",
	}
	for _, base := range bases {
		for _, target := range targets {
			t.Run(base+" "+target, func(t *testing.T) {
				p, err := virtual.Make(base, "pkg-virtual-abcdef0123", target)
				require.NoError(t, err)
				assert.Equal(t, target, virtual.Resolve(p))
			})
		}
	}
}
