package generators

import (
	"fmt"
	"math/rand"

	"github.com/go-faker/faker/v4"
	"github.com/mmrzaf/fixturegen/internal/domain"
)

type FakerNameGenerator struct{}

func (g *FakerNameGenerator) Generate(rng *rand.Rand, spec domain.GeneratorSpec, ctx GeneratorContext) (interface{}, error) {
	return faker.Name(), nil
}

func (g *FakerNameGenerator) Validate(spec domain.GeneratorSpec) error {
	return nil
}

type FakerEmailGenerator struct{}

func (g *FakerEmailGenerator) Generate(rng *rand.Rand, spec domain.GeneratorSpec, ctx GeneratorContext) (interface{}, error) {
	return faker.Email(), nil
}

func (g *FakerEmailGenerator) Validate(spec domain.GeneratorSpec) error {
	return nil
}

var cities = []string{
	"New York", "Los Angeles", "Chicago", "Houston", "Phoenix",
	"Philadelphia", "San Antonio", "San Diego", "Dallas", "San Jose",
	"Austin", "Seattle", "Denver", "Boston", "Portland",
	"London", "Paris", "Tokyo", "Berlin", "Madrid",
	"Rome", "Amsterdam", "Vienna", "Prague", "Oslo",
}

type FakerCityGenerator struct{}

func (g *FakerCityGenerator) Generate(rng *rand.Rand, spec domain.GeneratorSpec, ctx GeneratorContext) (interface{}, error) {
	return cities[rng.Intn(len(cities))], nil
}

func (g *FakerCityGenerator) Validate(spec domain.GeneratorSpec) error {
	return nil
}

type FakerDeviceNameGenerator struct{}

func (g *FakerDeviceNameGenerator) Generate(rng *rand.Rand, spec domain.GeneratorSpec, ctx GeneratorContext) (interface{}, error) {
	prefixes := []string{"Sensor", "Device", "Meter", "Gauge", "Monitor", "Detector", "Reader", "Tracker"}
	suffixes := []string{"Alpha", "Beta", "Gamma", "Delta", "Prime", "Pro", "Max", "Plus"}

	prefix := prefixes[rng.Intn(len(prefixes))]
	suffix := suffixes[rng.Intn(len(suffixes))]
	return fmt.Sprintf("%s-%s-%s-%04d", faker.Username(), prefix, suffix, rng.Intn(10000)), nil
}

func (g *FakerDeviceNameGenerator) Validate(spec domain.GeneratorSpec) error {
	return nil
}
