package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pkg(name string) *Package {
	return &Package{ID: PackageId{Name: name, Version: "0.1.0", Source: "local"}}
}

func TestPackageIdString(t *testing.T) {
	assert.Equal(t, "foo v1.2.3 (registry)", PackageId{"foo", "1.2.3", "registry"}.String())
	assert.Equal(t, "foo v1.2.3", PackageId{Name: "foo", Version: "1.2.3"}.String())
}

func TestAddDedupesDeps(t *testing.T) {
	a, b := pkg("a"), pkg("b")
	r := New()
	r.Add(b)
	r.Add(a, b.ID, b.ID)
	assert.Equal(t, []PackageId{b.ID}, r.Deps(a.ID))
	assert.Empty(t, r.Deps(b.ID))
	assert.Same(t, a, r.Package(a.ID))
	assert.Equal(t, []*Package{b, a}, r.Packages())
	assert.Equal(t, 2, r.Len())
}

func TestAddTwiceKeepsOrder(t *testing.T) {
	a, b := pkg("a"), pkg("b")
	r := New()
	r.Add(a)
	r.Add(b)
	r.Add(a, b.ID)
	assert.Equal(t, []*Package{a, b}, r.Packages())
	assert.Equal(t, []PackageId{b.ID}, r.Deps(a.ID))
}

func TestValidateOK(t *testing.T) {
	a, b, c := pkg("a"), pkg("b"), pkg("c")
	r := New()
	r.Add(a, b.ID, c.ID)
	r.Add(b, c.ID)
	r.Add(c, c.ID)
	require.NoError(t, r.Validate())
}

func TestValidateUnknownDep(t *testing.T) {
	r := New()
	r.Add(pkg("a"), PackageId{Name: "ghost", Version: "1.0.0"})
	err := r.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown package ghost v1.0.0")
}

func TestValidateCycle(t *testing.T) {
	a, b, c, d := pkg("a"), pkg("b"), pkg("c"), pkg("d")
	r := New()
	r.Add(a, b.ID)
	r.Add(b, c.ID)
	r.Add(c, a.ID)
	r.Add(d, a.ID)
	err := r.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dependency cycle detected: a -> b -> c -> a")
}
