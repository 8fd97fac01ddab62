package surreal

import (
	"context"
	"testing"

	"github.com/mmrzaf/fixturegen/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSurrealTarget_SplitsCredentials(t *testing.T) {
	tgt, err := NewSurrealTarget("ws://root:secret@localhost:8000/rpc", "", "")
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8000/rpc", tgt.endpoint)
	assert.Equal(t, "root", tgt.username)
	assert.Equal(t, "secret", tgt.password)
	assert.Equal(t, defaultNamespace, tgt.namespace)
	assert.Equal(t, defaultDatabase, tgt.database)
}

func TestSurrealTarget_RequiresConnection(t *testing.T) {
	tgt, err := NewSurrealTarget("ws://localhost:8000", "ns", "db")
	require.NoError(t, err)
	_, err = tgt.Insert(context.Background(), "users", []domain.Record{{"a": 1}})
	assert.ErrorContains(t, err, "not connected")

	_, err = tgt.Remove(context.Background(), "bad-name", []string{"x"})
	assert.Error(t, err)
}
