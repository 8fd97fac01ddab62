package generators

import (
	"errors"
	"math/rand"

	"github.com/mmrzaf/fixturegen/internal/domain"
)

type UniformFloatGenerator struct{}

func (g *UniformFloatGenerator) Generate(rng *rand.Rand, spec domain.GeneratorSpec, ctx GeneratorContext) (interface{}, error) {
	if err := g.Validate(spec); err != nil {
		return nil, err
	}
	min := toFloat64(spec.Params["min"])
	max := toFloat64(spec.Params["max"])
	return min + rng.Float64()*(max-min), nil
}

func (g *UniformFloatGenerator) Validate(spec domain.GeneratorSpec) error {
	if !requireParams(spec, "min", "max") {
		return errors.New("uniform_float requires 'min' and 'max' params")
	}
	return nil
}
