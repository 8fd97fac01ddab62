package mysql

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnect_RejectsMalformedDSN(t *testing.T) {
	err := NewMySQLTarget("not a dsn at all", "").Connect(context.Background())
	assert.Error(t, err)
}

func TestConnect_RequiresDatabase(t *testing.T) {
	err := NewMySQLTarget("user:pass@tcp(127.0.0.1:1)/", "").Connect(context.Background())
	assert.ErrorContains(t, err, "must name a database")
}
