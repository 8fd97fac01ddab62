package generators

import (
	"errors"
	"math/rand"

	"github.com/mmrzaf/fixturegen/internal/domain"
)

type ConstGenerator struct{}

func (g *ConstGenerator) Generate(rng *rand.Rand, spec domain.GeneratorSpec, ctx GeneratorContext) (interface{}, error) {
	if err := g.Validate(spec); err != nil {
		return nil, err
	}
	return spec.Params["value"], nil
}

func (g *ConstGenerator) Validate(spec domain.GeneratorSpec) error {
	if !requireParams(spec, "value") {
		return errors.New("const generator requires 'value' param")
	}
	return nil
}
