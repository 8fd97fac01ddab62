package validation

import (
	"testing"

	"github.com/mmrzaf/fixturegen/internal/domain"
	"github.com/mmrzaf/fixturegen/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFixture(t *testing.T) {
	v := NewValidator(registry.DefaultGeneratorRegistry())

	good := &domain.Schema{
		Type: domain.TypeObject,
		Properties: map[string]*domain.Schema{
			"age":  {Generator: &domain.GeneratorSpec{Type: "uniform_int", Params: map[string]interface{}{"min": 1, "max": 9}}},
			"home": {Ref: "#/definitions/address"},
		},
		Definitions: map[string]*domain.Schema{
			"address": {Type: domain.TypeObject},
		},
	}
	require.NoError(t, v.ValidateFixture("users", good))

	assert.Error(t, v.ValidateFixture("", good))
	assert.Error(t, v.ValidateFixture("users", nil))
}

func TestValidateFixture_RejectsBadGenerators(t *testing.T) {
	v := NewValidator(registry.DefaultGeneratorRegistry())

	unknown := &domain.Schema{
		Type: domain.TypeObject,
		Properties: map[string]*domain.Schema{
			"x": {Generator: &domain.GeneratorSpec{Type: "fk"}},
		},
	}
	err := v.ValidateFixture("users", unknown)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "x:")

	badParams := &domain.Schema{
		Type: domain.TypeObject,
		Properties: map[string]*domain.Schema{
			"tags": {Type: domain.TypeArray, Items: &domain.Schema{
				Generator: &domain.GeneratorSpec{Type: "choice", Params: map[string]interface{}{"values": []interface{}{}}},
			}},
		},
	}
	err = v.ValidateFixture("users", badParams)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tags[]")
}

func TestValidateFixture_DetectsDefinitionCycle(t *testing.T) {
	v := NewValidator(registry.DefaultGeneratorRegistry())
	schema := &domain.Schema{
		Ref: "#/definitions/a",
		Definitions: map[string]*domain.Schema{
			"a": {Ref: "#/definitions/b"},
			"b": {Ref: "#/definitions/a"},
		},
	}
	err := v.ValidateFixture("loop", schema)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cyclic")
}

func TestValidateTarget(t *testing.T) {
	v := NewValidator(registry.DefaultGeneratorRegistry())

	cases := []struct {
		name    string
		target  domain.TargetConfig
		wantErr bool
	}{
		{"memory needs no dsn", domain.TargetConfig{Kind: "memory"}, false},
		{"elasticsearch", domain.TargetConfig{Kind: "elasticsearch", DSN: "http://localhost:9200"}, false},
		{"postgres schema", domain.TargetConfig{Kind: "postgres", DSN: "postgres://x", Schema: "fixtures"}, false},
		{"surreal namespace", domain.TargetConfig{Kind: "surrealdb", DSN: "ws://localhost:8000", Schema: "test", Database: "app-db"}, false},
		{"missing dsn", domain.TargetConfig{Kind: "sqlite"}, true},
		{"unknown kind", domain.TargetConfig{Kind: "mongo", DSN: "mongodb://x"}, true},
		{"sqlite with schema", domain.TargetConfig{Kind: "sqlite", DSN: "/tmp/x.db", Schema: "s"}, true},
		{"es with database", domain.TargetConfig{Kind: "elasticsearch", DSN: "http://x", Database: "db"}, true},
		{"bad postgres schema", domain.TargetConfig{Kind: "postgres", DSN: "postgres://x", Schema: "bad-name"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.ValidateTarget(&tc.target)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
