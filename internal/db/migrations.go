package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aliuyar1234/finhub/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"
)

const migrationTimeout = time.Minute

// gooseLogger routes goose output through zerolog.
type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...any) {
	log.Info().Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (gooseLogger) Fatalf(format string, v ...any) {
	log.Fatal().Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func configureGoose() error {
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(gooseLogger{})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("configure goose: %w", err)
	}
	return nil
}

// RunMigrations applies all pending database migrations
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	log.Info().Msg("Running database migrations...")

	if err := configureGoose(); err != nil {
		return err
	}

	sqlDB := SQL(pool)
	defer sqlDB.Close()

	runCtx, cancel := context.WithTimeout(ctx, migrationTimeout)
	defer cancel()

	if err := goose.UpContext(runCtx, sqlDB, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, err := goose.GetDBVersionContext(runCtx, sqlDB)
	if err != nil {
		return fmt.Errorf("read migration version: %w", err)
	}

	log.Info().Int64("version", version).Msg("All migrations applied successfully")
	return nil
}

// MigrationStatus logs applied and pending migrations.
func MigrationStatus(ctx context.Context, pool *pgxpool.Pool) error {
	if err := configureGoose(); err != nil {
		return err
	}

	sqlDB := SQL(pool)
	defer sqlDB.Close()

	if err := goose.StatusContext(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("migration status: %w", err)
	}
	return nil
}
