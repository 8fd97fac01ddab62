package generators

import (
	"errors"
	"math/rand"

	"github.com/mmrzaf/fixturegen/internal/domain"
)

type NormalGenerator struct{}

func (g *NormalGenerator) Generate(rng *rand.Rand, spec domain.GeneratorSpec, ctx GeneratorContext) (interface{}, error) {
	if err := g.Validate(spec); err != nil {
		return nil, err
	}
	mean := toFloat64(spec.Params["mean"])
	std := toFloat64(spec.Params["std"])
	return rng.NormFloat64()*std + mean, nil
}

func (g *NormalGenerator) Validate(spec domain.GeneratorSpec) error {
	if !requireParams(spec, "mean", "std") {
		return errors.New("normal requires 'mean' and 'std' params")
	}
	if toFloat64(spec.Params["std"]) < 0 {
		return errors.New("'std' must not be negative")
	}
	return nil
}
