package generators

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/mmrzaf/fixturegen/internal/domain"
	"github.com/mmrzaf/fixturegen/internal/timeutil"
)

// TimeSeriesGenerator spaces timestamps by 'step' starting at 'start', using
// the record's position in the batch. 'jitter_seconds' adds symmetric noise.
type TimeSeriesGenerator struct{}

func (g *TimeSeriesGenerator) Generate(rng *rand.Rand, spec domain.GeneratorSpec, ctx GeneratorContext) (interface{}, error) {
	if err := g.Validate(spec); err != nil {
		return nil, err
	}
	now := ctx.Now
	if now.IsZero() {
		now = time.Now()
	}

	startTime, err := timeutil.ParseRelativeTime(spec.Params["start"].(string), now)
	if err != nil {
		return nil, fmt.Errorf("invalid start time: %w", err)
	}
	step, err := timeutil.ParseDuration(spec.Params["step"].(string))
	if err != nil {
		return nil, fmt.Errorf("invalid step duration: %w", err)
	}

	ts := startTime.Add(time.Duration(ctx.Index) * step)

	if jitterRaw, ok := spec.Params["jitter_seconds"]; ok {
		if jitter := toInt64(jitterRaw); jitter > 0 {
			offset := rng.Int63n(jitter*2) - jitter
			ts = ts.Add(time.Duration(offset) * time.Second)
		}
	}

	return ts.UTC().Format(time.RFC3339), nil
}

func (g *TimeSeriesGenerator) Validate(spec domain.GeneratorSpec) error {
	if !requireParams(spec, "start", "step") {
		return errors.New("time_series requires 'start' and 'step' params")
	}
	if _, ok := spec.Params["start"].(string); !ok {
		return errors.New("'start' must be a string")
	}
	if _, ok := spec.Params["step"].(string); !ok {
		return errors.New("'step' must be a string")
	}
	return nil
}
