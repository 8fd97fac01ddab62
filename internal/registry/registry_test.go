package registry

import (
	"testing"

	"github.com/mmrzaf/fixturegen/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultGeneratorRegistry(t *testing.T) {
	r := DefaultGeneratorRegistry()

	for _, name := range []string{"const", "uuid4", "uniform_int", "choice", "faker_email", "time_series"} {
		_, err := r.Get(name)
		assert.NoError(t, err, name)
	}
	_, err := r.Get("fk")
	assert.Error(t, err)

	names := r.List()
	assert.IsIncreasing(t, names)
}

func TestGeneratorRegistry_ValidateSpec(t *testing.T) {
	r := DefaultGeneratorRegistry()
	assert.NoError(t, r.ValidateSpec(domain.GeneratorSpec{Type: "const", Params: map[string]interface{}{"value": 1}}))
	assert.Error(t, r.ValidateSpec(domain.GeneratorSpec{Type: "uniform_int", Params: map[string]interface{}{"min": 1}}))
	assert.Error(t, r.ValidateSpec(domain.GeneratorSpec{Type: "missing"}))
}

func TestFixtureRegistry(t *testing.T) {
	r := NewFixtureRegistry()
	a := &domain.Schema{Title: "a"}
	b := &domain.Schema{Title: "b"}

	assert.False(t, r.Register("users", a))
	assert.True(t, r.Register("users", b))

	got, ok := r.Get("users")
	require.True(t, ok)
	assert.Same(t, b, got)

	replaced := r.Merge(map[string]*domain.Schema{"users": a, "orders": b})
	assert.Equal(t, []string{"users"}, replaced)
	assert.Equal(t, []string{"orders", "users"}, r.Names())
	assert.Equal(t, 2, r.Len())

	snap := r.All()
	delete(snap, "users")
	_, ok = r.Get("users")
	assert.True(t, ok)
}
