package fixtures

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mmrzaf/fixturegen/internal/domain"
	"github.com/mmrzaf/fixturegen/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoad_MergesFilesInLexicalOrder(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "b_users.yaml", `
users:
  type: object
  properties:
    name:
      type: string
      format: name
    age:
      type: integer
      minimum: 18
      maximum: 90
`)
	write(t, dir, "a_users.json", `{"users": {"type": "object", "title": "old"}, "orders": {"type": "object"}}`)
	write(t, dir, "notes.txt", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.yaml"), 0o755))

	res, err := NewFileLoader(dir, logging.Nop()).Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"a_users.json", "b_users.yaml"}, res.Files)
	assert.Equal(t, []string{"orders", "users"}, res.Names())

	users := res.Fixtures["users"]
	assert.Empty(t, users.Title)
	require.Contains(t, users.Properties, "age")
	assert.Equal(t, 18.0, *users.Properties["age"].Minimum)
	assert.Equal(t, "b_users.yaml", res.Sources["users"])

	require.Len(t, res.Collisions, 1)
	assert.Equal(t, Collision{Name: "users", Previous: "a_users.json", File: "b_users.yaml"}, res.Collisions[0])
}

func TestLoad_ParsesGeneratorBlocks(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "events.yml", `
events:
  type: object
  properties:
    kind:
      x-generator:
        type: choice
        params:
          values: [click, view]
          weights: [1, 3]
    home:
      $ref: "#/definitions/address"
  definitions:
    address:
      type: object
`)
	res, err := NewFileLoader(dir, logging.Nop()).Load()
	require.NoError(t, err)

	kind := res.Fixtures["events"].Properties["kind"]
	require.NotNil(t, kind.Generator)
	assert.Equal(t, "choice", kind.Generator.Type)
	assert.Len(t, kind.Generator.Params["values"], 2)
	assert.Equal(t, "#/definitions/address", res.Fixtures["events"].Properties["home"].Ref)
	assert.Equal(t, domain.TypeObject, res.Fixtures["events"].Definitions["address"].Type)
}

func TestLoad_MissingDirIsEmpty(t *testing.T) {
	res, err := NewFileLoader(filepath.Join(t.TempDir(), "nope"), logging.Nop()).Load()
	require.NoError(t, err)
	assert.Empty(t, res.Fixtures)
}

func TestLoad_MalformedFileIsConfigurationError(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "bad.json", `{"users": [`)
	_, err := NewFileLoader(dir, logging.Nop()).Load()
	require.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Contains(t, err.Error(), "bad.json")
}
