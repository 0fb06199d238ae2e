package postgres

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"stockwise/pkg/logger"
)

// Migrator applies goose migrations from an embedded filesystem.
type Migrator struct {
	pool *Pool
	fsys fs.FS
	dir  string
}

// NewMigrator creates a migrator over the pool.
func NewMigrator(pool *Pool, fsys fs.FS, dir string) *Migrator {
	return &Migrator{pool: pool, fsys: fsys, dir: dir}
}

func (m *Migrator) provider() (*goose.Provider, func() error, error) {
	db := stdlib.OpenDBFromPool(m.pool.Pool)
	sub, err := fs.Sub(m.fsys, m.dir)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("open migrations dir: %w", err)
	}
	p, err := goose.NewProvider(goose.DialectPostgres, db, sub)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("create migration provider: %w", err)
	}
	return p, db.Close, nil
}

// Up applies all pending migrations.
func (m *Migrator) Up(ctx context.Context) error {
	p, closeFn, err := m.provider()
	if err != nil {
		return err
	}
	defer func() { _ = closeFn() }()

	results, err := p.Up(ctx)
	if err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	for _, r := range results {
		logger.Info(ctx, "migration applied",
			"version", r.Source.Version,
			"path", r.Source.Path,
			"duration_ms", r.Duration.Milliseconds(),
		)
	}
	return nil
}

// Down rolls back the most recent migration.
func (m *Migrator) Down(ctx context.Context) error {
	p, closeFn, err := m.provider()
	if err != nil {
		return err
	}
	defer func() { _ = closeFn() }()

	r, err := p.Down(ctx)
	if err != nil {
		return fmt.Errorf("migrate down: %w", err)
	}
	if r != nil {
		logger.Info(ctx, "migration rolled back", "version", r.Source.Version, "path", r.Source.Path)
	}
	return nil
}

// Status logs the state of every known migration.
func (m *Migrator) Status(ctx context.Context) error {
	p, closeFn, err := m.provider()
	if err != nil {
		return err
	}
	defer func() { _ = closeFn() }()

	statuses, err := p.Status(ctx)
	if err != nil {
		return fmt.Errorf("migration status: %w", err)
	}
	for _, s := range statuses {
		logger.Info(ctx, "migration",
			"version", s.Source.Version,
			"path", s.Source.Path,
			"state", string(s.State),
		)
	}
	return nil
}
