package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/mmrzaf/fixturegen/internal/domain"
	"github.com/mmrzaf/fixturegen/internal/registry"
	"github.com/mmrzaf/fixturegen/internal/validation"
)

// CheckTarget connects to the configured target, reads its version and
// probes that a record can be inserted and removed again.
func CheckTarget(ctx context.Context, t *domain.TargetConfig) (*domain.TargetCheck, error) {
	check := &domain.TargetCheck{
		Kind:      t.Kind,
		CheckedAt: time.Now().UTC(),
	}

	val := validation.NewValidator(registry.NewGeneratorRegistry())
	if err := val.ValidateTarget(t); err != nil {
		check.Error = err.Error()
		return check, domain.ConfigurationError("check_target", "", err)
	}

	start := time.Now()
	tgt, err := BuildTarget(t)
	if err != nil {
		check.Error = err.Error()
		return check, domain.ConfigurationError("check_target", "", err)
	}
	if err := tgt.Connect(ctx); err != nil {
		check.Error = err.Error()
		check.LatencyMS = time.Since(start).Milliseconds()
		return check, domain.PersistenceError("check_target", "", err)
	}
	defer tgt.Close()

	check.OK = true
	check.LatencyMS = time.Since(start).Milliseconds()
	if ver, verErr := serverVersion(ctx, t, tgt); verErr == nil {
		check.ServerVer = ver
	}
	check.Capabilities = probeCapabilities(ctx, tgt)
	return check, nil
}

// serverVersion reads the postgres version over a plain database/sql
// connection, every other kind through the target.
func serverVersion(ctx context.Context, cfg *domain.TargetConfig, tgt Target) (string, error) {
	if cfg.Kind == domain.TargetPostgres {
		return queryServerVersion(ctx, "postgres", resolveTarget(cfg).DSN, "SHOW server_version")
	}
	return tgt.ServerVersion(ctx)
}

func queryServerVersion(ctx context.Context, driver, dsn, query string) (string, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return "", err
	}
	defer db.Close()
	var version string
	if err := db.QueryRowContext(ctx, query).Scan(&version); err != nil {
		return "", err
	}
	return version, nil
}

func probeCapabilities(ctx context.Context, tgt Target) domain.TargetCapabilities {
	collection := fmt.Sprintf("fixturegen_check_%d", time.Now().UnixNano())

	var caps domain.TargetCapabilities
	res, err := tgt.Insert(ctx, collection, []domain.Record{{"probe": true}})
	if err != nil || len(res.IDs) != 1 {
		return caps
	}
	caps.CanInsert = true

	n, err := tgt.Remove(ctx, collection, res.IDs)
	if err != nil || n != 1 {
		return caps
	}
	caps.CanRemove = true
	return caps
}
