package pg

import (
	"context"
	"fmt"
	"io/fs"
	"sort"

	"github.com/dropDatabas3/tomora/internal/observability/logger"
	migrations "github.com/dropDatabas3/tomora/migrations/postgres"
)

// Migrate aplica las migraciones embebidas en orden lexicográfico.
// Idempotente: el schema usa IF NOT EXISTS y se registra cada archivo aplicado.
func (s *Store) Migrate(ctx context.Context) error {
	log := logger.Named("store.pg.migrate")

	if _, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			filename   text PRIMARY KEY,
			applied_at timestamptz NOT NULL DEFAULT now()
		)`); err != nil {
		return fmt.Errorf("migrate: bootstrap: %w", err)
	}

	entries, err := fs.ReadDir(migrations.FS, migrations.Dir)
	if err != nil {
		return fmt.Errorf("migrate: read dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		var done bool
		if err := s.pool.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE filename = $1)`, name).
			Scan(&done); err != nil {
			return fmt.Errorf("migrate: check %s: %w", name, err)
		}
		if done {
			continue
		}

		sql, err := fs.ReadFile(migrations.FS, migrations.Dir+"/"+name)
		if err != nil {
			return fmt.Errorf("migrate: read %s: %w", name, err)
		}
		if _, err := s.pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("migrate: apply %s: %w", name, err)
		}
		if _, err := s.pool.Exec(ctx,
			`INSERT INTO schema_migrations (filename) VALUES ($1)`, name); err != nil {
			return fmt.Errorf("migrate: record %s: %w", name, err)
		}
		log.Info("migration applied", logger.String("file", name))
	}
	return nil
}
