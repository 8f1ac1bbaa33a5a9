package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pnp/internal/core/domain"
)

func TestPackageRegistry(t *testing.T) {
	r := domain.NewPackageRegistry()
	first := &domain.PackageInformation{PackageLocation: "/p/a1/"}
	second := &domain.PackageInformation{PackageLocation: "/p/a2/"}
	replaced := &domain.PackageInformation{PackageLocation: "/p/a1-bis/"}

	r.Add(domain.TopLevelLocator, &domain.PackageInformation{PackageLocation: "/p/"})
	r.Add(domain.NewLocator("a", "1"), first)
	r.Add(domain.NewLocator("b", "1"), &domain.PackageInformation{})
	r.Add(domain.NewLocator("a", "2"), second)
	r.Add(domain.NewLocator("a", "1"), replaced)

	t.Run("Get", func(t *testing.T) {
		info, ok := r.Get(domain.NewLocator("a", "1"))
		require.True(t, ok)
		assert.Same(t, replaced, info)

		_, ok = r.Get(domain.NewLocator("a", "3"))
		assert.False(t, ok)
		_, ok = r.Get(domain.NewLocator("missing", "1"))
		assert.False(t, ok)

		top, ok := r.Get(domain.TopLevelLocator)
		require.True(t, ok)
		assert.Equal(t, "/p/", top.PackageLocation)
	})

	t.Run("References keep registration order", func(t *testing.T) {
		assert.Equal(t, []domain.Locator{domain.NewLocator("a", "1"), domain.NewLocator("a", "2")}, r.References("a"))
		assert.Nil(t, r.References("missing"))
	})

	t.Run("All", func(t *testing.T) {
		var got []domain.Locator
		for l := range r.All() {
			got = append(got, l)
		}
		assert.Equal(t, []domain.Locator{
			domain.TopLevelLocator,
			domain.NewLocator("a", "1"),
			domain.NewLocator("b", "1"),
			domain.NewLocator("a", "2"),
		}, got)
		assert.Equal(t, 4, r.Len())
	})
}
