package generators

import (
	"math/rand"
	"testing"

	"github.com/mmrzaf/fixturegen/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChoiceGenerator_Validate(t *testing.T) {
	g := &ChoiceGenerator{}
	assert.Error(t, g.Validate(domain.GeneratorSpec{Type: "choice"}))
	assert.Error(t, g.Validate(domain.GeneratorSpec{Params: map[string]interface{}{"values": []interface{}{}}}))
	assert.Error(t, g.Validate(domain.GeneratorSpec{Params: map[string]interface{}{
		"values":  []interface{}{"a", "b"},
		"weights": []interface{}{1},
	}}))
	assert.Error(t, g.Validate(domain.GeneratorSpec{Params: map[string]interface{}{
		"values":  []interface{}{"a"},
		"weights": []interface{}{0},
	}}))
	assert.NoError(t, g.Validate(domain.GeneratorSpec{Params: map[string]interface{}{
		"values":  []interface{}{"a", "b"},
		"weights": []interface{}{1, 3},
	}}))
}

func TestChoiceGenerator_ZeroWeightNeverPicked(t *testing.T) {
	g := &ChoiceGenerator{}
	spec := domain.GeneratorSpec{Params: map[string]interface{}{
		"values":  []interface{}{"never", "always"},
		"weights": []interface{}{0, 1},
	}}
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		v, err := g.Generate(rng, spec, GeneratorContext{})
		require.NoError(t, err)
		assert.Equal(t, "always", v)
	}
}

func TestUniformIntGenerator_RejectsEmptyRange(t *testing.T) {
	g := &UniformIntGenerator{}
	_, err := g.Generate(rand.New(rand.NewSource(1)), domain.GeneratorSpec{Params: map[string]interface{}{"min": 3, "max": 3}}, GeneratorContext{})
	assert.Error(t, err)
}

func TestUUID4Generator_Format(t *testing.T) {
	v, err := (&UUID4Generator{}).Generate(rand.New(rand.NewSource(1)), domain.GeneratorSpec{}, GeneratorContext{})
	require.NoError(t, err)
	s := v.(string)
	assert.Len(t, s, 36)
	assert.Equal(t, byte('4'), s[14])
}
