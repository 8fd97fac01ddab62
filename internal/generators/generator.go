package generators

import (
	"math/rand"
	"time"

	"github.com/mmrzaf/fixturegen/internal/domain"
)

// Generator produces a single property value from an x-generator spec.
type Generator interface {
	Generate(rng *rand.Rand, spec domain.GeneratorSpec, ctx GeneratorContext) (interface{}, error)
	Validate(spec domain.GeneratorSpec) error
}

// GeneratorContext describes where in a generated batch a value is produced.
type GeneratorContext struct {
	Index int64
	Now   time.Time
}

// Lookup resolves generator names. The registry satisfies it.
type Lookup interface {
	Get(name string) (Generator, error)
}

func toFloat64(v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case float32:
		return float64(val)
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case uint64:
		return float64(val)
	default:
		return 0.0
	}
}

func toInt64(v interface{}) int64 {
	switch val := v.(type) {
	case int:
		return int64(val)
	case int64:
		return val
	case uint64:
		return int64(val)
	case float64:
		return int64(val)
	default:
		return 0
	}
}

func requireParams(spec domain.GeneratorSpec, names ...string) bool {
	if spec.Params == nil {
		return false
	}
	for _, n := range names {
		if _, ok := spec.Params[n]; !ok {
			return false
		}
	}
	return true
}
