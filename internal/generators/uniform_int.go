package generators

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/mmrzaf/fixturegen/internal/domain"
)

type UniformIntGenerator struct{}

func (g *UniformIntGenerator) Generate(rng *rand.Rand, spec domain.GeneratorSpec, ctx GeneratorContext) (interface{}, error) {
	if err := g.Validate(spec); err != nil {
		return nil, err
	}
	min := toInt64(spec.Params["min"])
	max := toInt64(spec.Params["max"])
	return min + rng.Int63n(max-min), nil
}

func (g *UniformIntGenerator) Validate(spec domain.GeneratorSpec) error {
	if !requireParams(spec, "min", "max") {
		return errors.New("uniform_int requires 'min' and 'max' params")
	}
	min := toInt64(spec.Params["min"])
	max := toInt64(spec.Params["max"])
	if max <= min {
		return fmt.Errorf("max (%d) must be greater than min (%d)", max, min)
	}
	return nil
}
