package generators

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/mmrzaf/fixturegen/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapLookup map[string]Generator

func (m mapLookup) Get(name string) (Generator, error) {
	g, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("generator not found: %s", name)
	}
	return g, nil
}

func testFaker() *Faker {
	return NewFaker(mapLookup{
		"const":       &ConstGenerator{},
		"uniform_int": &UniformIntGenerator{},
		"choice":      &ChoiceGenerator{},
		"time_series": &TimeSeriesGenerator{},
		"uuid4":       &UUID4Generator{},
	})
}

func ptr[T any](v T) *T { return &v }

func TestFake_ObjectWithTypedProperties(t *testing.T) {
	schema := &domain.Schema{
		Type: domain.TypeObject,
		Properties: map[string]*domain.Schema{
			"name":   {Type: domain.TypeString, MinLength: ptr(3), MaxLength: ptr(12)},
			"email":  {Type: domain.TypeString, Format: "email"},
			"age":    {Type: domain.TypeInteger, Minimum: ptr(18.0), Maximum: ptr(30.0)},
			"score":  {Type: domain.TypeNumber, Minimum: ptr(0.0), Maximum: ptr(1.0)},
			"active": {Type: domain.TypeBoolean},
			"status": {Enum: []interface{}{"new", "done"}},
			"kind":   {Const: "widget"},
			"tags":   {Type: domain.TypeArray, Items: &domain.Schema{Type: domain.TypeString}, MinItems: ptr(2), MaxItems: ptr(2)},
		},
	}

	rec, err := testFaker().Fake(rand.New(rand.NewSource(1)), schema, nil, GeneratorContext{})
	require.NoError(t, err)

	name := rec["name"].(string)
	assert.GreaterOrEqual(t, len(name), 3)
	assert.LessOrEqual(t, len(name), 12)
	assert.Contains(t, rec["email"], "@")

	age := rec["age"].(int64)
	assert.GreaterOrEqual(t, age, int64(18))
	assert.LessOrEqual(t, age, int64(30))

	score := rec["score"].(float64)
	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 1.0)

	assert.IsType(t, true, rec["active"])
	assert.Contains(t, []interface{}{"new", "done"}, rec["status"])
	assert.Equal(t, "widget", rec["kind"])
	assert.Len(t, rec["tags"], 2)
}

func TestFake_XGenerator(t *testing.T) {
	schema := &domain.Schema{
		Type: domain.TypeObject,
		Properties: map[string]*domain.Schema{
			"qty": {Generator: &domain.GeneratorSpec{Type: "uniform_int", Params: map[string]interface{}{"min": 5, "max": 6}}},
			"at": {Generator: &domain.GeneratorSpec{Type: "time_series", Params: map[string]interface{}{
				"start": "2024-01-01T00:00:00Z",
				"step":  "1h",
			}}},
		},
	}

	rec, err := testFaker().Fake(rand.New(rand.NewSource(1)), schema, nil, GeneratorContext{Index: 3, Now: time.Now()})
	require.NoError(t, err)
	assert.Equal(t, int64(5), rec["qty"])
	assert.Equal(t, "2024-01-01T03:00:00Z", rec["at"])
}

func TestFake_UnknownGeneratorFails(t *testing.T) {
	schema := &domain.Schema{
		Type: domain.TypeObject,
		Properties: map[string]*domain.Schema{
			"x": {Generator: &domain.GeneratorSpec{Type: "nope"}},
		},
	}
	_, err := testFaker().Fake(rand.New(rand.NewSource(1)), schema, nil, GeneratorContext{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "x:")
}

func TestFake_ResolvesLocalAndExternalRefs(t *testing.T) {
	address := &domain.Schema{
		ID:   "address",
		Type: domain.TypeObject,
		Properties: map[string]*domain.Schema{
			"city": {Const: "Oslo"},
			"zip":  {Ref: "#/definitions/zip"},
		},
		Definitions: map[string]*domain.Schema{
			"zip": {Const: "0150"},
		},
	}
	schema := &domain.Schema{
		Type: domain.TypeObject,
		Properties: map[string]*domain.Schema{
			"home":  {Ref: "address"},
			"zip":   {Ref: "address#/definitions/zip"},
			"label": {Ref: "#/definitions/label"},
		},
		Definitions: map[string]*domain.Schema{
			"label": {Const: "primary"},
		},
	}

	rec, err := testFaker().Fake(rand.New(rand.NewSource(1)), schema, []*domain.Schema{address}, GeneratorContext{})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"city": "Oslo", "zip": "0150"}, rec["home"])
	assert.Equal(t, "0150", rec["zip"])
	assert.Equal(t, "primary", rec["label"])
}

func TestFake_UnresolvableRef(t *testing.T) {
	schema := &domain.Schema{
		Type:       domain.TypeObject,
		Properties: map[string]*domain.Schema{"home": {Ref: "address"}},
	}
	_, err := testFaker().Fake(rand.New(rand.NewSource(1)), schema, nil, GeneratorContext{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unresolvable reference")
}

func TestFake_CyclicRefIsBounded(t *testing.T) {
	schema := &domain.Schema{
		Ref: "#/definitions/loop",
		Definitions: map[string]*domain.Schema{
			"loop": {Ref: "#/definitions/loop"},
		},
	}
	_, err := testFaker().Fake(rand.New(rand.NewSource(1)), schema, nil, GeneratorContext{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cyclic")
}

func TestFake_NonObjectRootFails(t *testing.T) {
	_, err := testFaker().Fake(rand.New(rand.NewSource(1)), &domain.Schema{Type: domain.TypeString}, nil, GeneratorContext{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must describe an object")
}

func TestFake_SameSeedSameNumbers(t *testing.T) {
	schema := &domain.Schema{
		Type: domain.TypeObject,
		Properties: map[string]*domain.Schema{
			"n":  {Type: domain.TypeInteger},
			"id": {Generator: &domain.GeneratorSpec{Type: "uuid4"}},
		},
	}
	a, err := testFaker().Fake(rand.New(rand.NewSource(42)), schema, nil, GeneratorContext{})
	require.NoError(t, err)
	b, err := testFaker().Fake(rand.New(rand.NewSource(42)), schema, nil, GeneratorContext{})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
