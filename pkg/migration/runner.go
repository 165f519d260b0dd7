package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/schoolara/schoolara/pkg/entity"
	"github.com/schoolara/schoolara/pkg/pg"
)

var (
	// ErrMigrationTargetRejected marks a schema change aimed at a database
	// its entity group may not live on. Fatal at deploy time.
	ErrMigrationTargetRejected = errors.New("migration target rejected")

	ErrFailedToApplyMigrations = errors.New("failed to apply migrations")
	ErrMigrationsDirNotFound   = errors.New("migrations directory not found")
)

// Config locates the scope-segregated migration directories. Global-scoped
// schema lives apart from tenant-scoped schema so each directory has
// exactly one legal class of targets.
type Config struct {
	GlobalDir string `env:"MIGRATIONS_GLOBAL_DIR" envDefault:"migrations/global"`  // GlobalDir holds migrations for globally owned entity groups.
	TenantDir string `env:"MIGRATIONS_TENANT_DIR" envDefault:"migrations/tenant"`  // TenantDir holds migrations for tenant-scoped entity groups.
	Table     string `env:"MIGRATIONS_TABLE" envDefault:"schema_migrations"`       // Table is the goose version table name.
}

// Apply runs all pending migrations: the global directory against the
// global database and the tenant directory against every tenant database.
// The guard is consulted for every (directory, target) pair before any
// database is touched; a denial aborts the whole run.
func Apply(ctx context.Context, pools *pg.Pools, guard *Guard, cfg Config, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}

	// Verify every pairing up front so a rejection cannot leave the fleet
	// half-migrated.
	if d := guard.AllowedScope(pg.GlobalAlias, entity.GlobalScoped); d != Allow {
		return fmt.Errorf("%w: global schema against %s (%s)", ErrMigrationTargetRejected, pg.GlobalAlias, d)
	}
	aliases := make([]string, 0, len(pools.Tenant))
	for alias := range pools.Tenant {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	for _, alias := range aliases {
		if d := guard.AllowedScope(alias, entity.TenantScoped); d != Allow {
			return fmt.Errorf("%w: tenant schema against %s (%s)", ErrMigrationTargetRejected, alias, d)
		}
	}

	if err := apply(ctx, pools.Global, cfg.GlobalDir, cfg, log); err != nil {
		return fmt.Errorf("global database: %w", err)
	}
	log.InfoContext(ctx, "global migrations applied", slog.String("database", pg.GlobalAlias))

	for _, alias := range aliases {
		if err := apply(ctx, pools.Tenant[alias], cfg.TenantDir, cfg, log); err != nil {
			return fmt.Errorf("tenant database %s: %w", alias, err)
		}
		log.InfoContext(ctx, "tenant migrations applied", slog.String("database", alias))
	}
	return nil
}

// apply runs goose against one pool. The pgx pool is bridged to the
// database/sql interface goose expects; the bridge shares the pool's
// underlying connections.
func apply(ctx context.Context, pool *pgxpool.Pool, dir string, cfg Config, log *slog.Logger) error {
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return errors.Join(ErrMigrationsDirNotFound, err)
		}
		return errors.Join(ErrFailedToApplyMigrations, err)
	}

	db := stdlib.OpenDBFromPool(pool)
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			log.ErrorContext(ctx, "failed to close migration db handle", slog.Any("error", err))
		}
	}(db)

	goose.SetLogger(gooseLogger{ctx: ctx, log: log})
	goose.SetTableName(cfg.Table)

	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}
	if err := goose.UpContext(ctx, db, dir); err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}
	return nil
}

// gooseLogger routes goose's Printf-style output through slog.
type gooseLogger struct {
	ctx context.Context
	log *slog.Logger
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	l.log.ErrorContext(l.ctx, fmt.Sprintf(format, v...))
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.log.InfoContext(l.ctx, fmt.Sprintf(format, v...))
}
