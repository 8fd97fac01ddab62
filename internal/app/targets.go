package app

import (
	"context"
	"fmt"

	"github.com/mmrzaf/fixturegen/internal/domain"
	"github.com/mmrzaf/fixturegen/internal/factory"
	esTarget "github.com/mmrzaf/fixturegen/internal/infra/targets/elasticsearch"
	memTarget "github.com/mmrzaf/fixturegen/internal/infra/targets/memory"
	mysqlTarget "github.com/mmrzaf/fixturegen/internal/infra/targets/mysql"
	pgTarget "github.com/mmrzaf/fixturegen/internal/infra/targets/postgres"
	sqliteTarget "github.com/mmrzaf/fixturegen/internal/infra/targets/sqlite"
	surrealTarget "github.com/mmrzaf/fixturegen/internal/infra/targets/surreal"
	"github.com/mmrzaf/fixturegen/internal/logging"
)

// Target is a gateway that still has to be connected.
type Target interface {
	factory.Gateway
	Connect(ctx context.Context) error
	ServerVersion(ctx context.Context) (string, error)
}

// BuildTarget constructs the target for cfg without connecting it.
func BuildTarget(cfg *domain.TargetConfig) (Target, error) {
	t := resolveTarget(cfg)
	switch t.Kind {
	case domain.TargetMemory:
		return &connectedMemory{memTarget.NewMemoryTarget()}, nil
	case domain.TargetSQLite:
		return sqliteTarget.NewSQLiteTarget(t.DSN), nil
	case domain.TargetPostgres:
		return pgTarget.NewPostgresTarget(t.DSN, t.Schema), nil
	case domain.TargetMySQL:
		return mysqlTarget.NewMySQLTarget(t.DSN, t.Database), nil
	case domain.TargetElasticsearch:
		return esTarget.NewElasticsearchTarget(t.DSN), nil
	case domain.TargetSurrealDB:
		return surrealTarget.NewSurrealTarget(t.DSN, t.Schema, t.Database)
	default:
		return nil, fmt.Errorf("unsupported target kind: %s", t.Kind)
	}
}

// NewConnector returns the factory connector for cfg. The target is built
// and connected on the first call only.
func NewConnector(cfg *domain.TargetConfig, logger *logging.Logger) factory.Connector {
	return func(ctx context.Context) (factory.Gateway, error) {
		tgt, err := BuildTarget(cfg)
		if err != nil {
			return nil, err
		}
		if err := tgt.Connect(ctx); err != nil {
			logger.Errorw("target.connect_failed", map[string]any{
				"kind":  cfg.Kind,
				"dsn":   RedactDSN(cfg.Kind, cfg.DSN),
				"error": err.Error(),
			})
			return nil, err
		}
		logger.Infow("target.connected", map[string]any{
			"kind": cfg.Kind,
			"dsn":  RedactDSN(cfg.Kind, cfg.DSN),
		})
		return tgt, nil
	}
}

type connectedMemory struct {
	*memTarget.MemoryTarget
}

func (connectedMemory) Connect(context.Context) error { return nil }
