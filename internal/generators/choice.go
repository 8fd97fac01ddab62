package generators

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/mmrzaf/fixturegen/internal/domain"
)

type ChoiceGenerator struct{}

func (g *ChoiceGenerator) Generate(rng *rand.Rand, spec domain.GeneratorSpec, ctx GeneratorContext) (interface{}, error) {
	if err := g.Validate(spec); err != nil {
		return nil, err
	}
	values := spec.Params["values"].([]interface{})

	weightsRaw, hasWeights := spec.Params["weights"]
	if !hasWeights {
		return values[rng.Intn(len(values))], nil
	}
	weights := weightsRaw.([]interface{})

	totalWeight := 0.0
	for _, w := range weights {
		totalWeight += toFloat64(w)
	}

	r := rng.Float64() * totalWeight
	cumWeight := 0.0
	for i, w := range weights {
		cumWeight += toFloat64(w)
		if r < cumWeight {
			return values[i], nil
		}
	}
	return values[len(values)-1], nil
}

func (g *ChoiceGenerator) Validate(spec domain.GeneratorSpec) error {
	if !requireParams(spec, "values") {
		return errors.New("choice requires 'values' param")
	}
	values, ok := spec.Params["values"].([]interface{})
	if !ok {
		return errors.New("'values' must be a list")
	}
	if len(values) == 0 {
		return errors.New("'values' cannot be empty")
	}

	weightsRaw, hasWeights := spec.Params["weights"]
	if !hasWeights {
		return nil
	}
	weights, ok := weightsRaw.([]interface{})
	if !ok {
		return errors.New("'weights' must be a list")
	}
	if len(weights) != len(values) {
		return errors.New("'weights' and 'values' must have the same length")
	}
	total := 0.0
	for _, w := range weights {
		weight := toFloat64(w)
		if weight < 0 {
			return fmt.Errorf("negative weight: %v", w)
		}
		total += weight
	}
	if total == 0 {
		return errors.New("total weight is zero")
	}
	return nil
}
