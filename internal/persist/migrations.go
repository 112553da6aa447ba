package persist

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrations embed.FS

// AppliedMigration describes one migration applied by RunMigrations.
type AppliedMigration struct {
	Version  int64
	Source   string
	Duration time.Duration
}

// newMigrationProvider builds a goose provider over the embedded migrations.
// Nothing is read from db until the provider runs.
func newMigrationProvider(db *sql.DB) (*goose.Provider, error) {
	sub, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("migrations fs: %w", err)
	}
	return goose.NewProvider(goose.DialectPostgres, db, sub,
		goose.WithDisableGlobalRegistry(true),
	)
}

// RunMigrations applies all pending database migrations and returns the ones
// it applied, in version order. An up-to-date schema yields an empty slice.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, log *zap.Logger) ([]AppliedMigration, error) {
	if log == nil {
		log = zap.NewNop()
	}

	provider, err := newMigrationProvider(stdlib.OpenDBFromPool(pool))
	if err != nil {
		return nil, err
	}
	defer provider.Close()

	results, err := provider.Up(ctx)
	if err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	applied := make([]AppliedMigration, 0, len(results))
	for _, r := range results {
		m := AppliedMigration{
			Version:  r.Source.Version,
			Source:   path.Base(r.Source.Path),
			Duration: r.Duration,
		}
		log.Info("migration applied",
			zap.Int64("version", m.Version),
			zap.String("source", m.Source),
			zap.Duration("took", m.Duration),
		)
		applied = append(applied, m)
	}
	if len(applied) == 0 {
		log.Debug("schema up to date")
	}
	return applied, nil
}
