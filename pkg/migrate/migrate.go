package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/pressly/goose/v3"

	"github.com/evergreenfarmers/storefront/pkg/config"
)

const DefaultDir = "pkg/migrate/migrations"

// DialectFor maps a configured DB driver to its goose dialect.
func DialectFor(driver string) string {
	if driver == config.DBDriverSQLite {
		return "sqlite3"
	}
	return "postgres"
}

// Run executes a goose command against the migrations on disk in dir.
func Run(ctx context.Context, db *sql.DB, dialect, dir, command string, args ...string) error {
	if dir == "" {
		return errors.New("dir is required")
	}
	return RunFS(ctx, db, dialect, os.DirFS(dir), command, args...)
}

// RunFS executes a goose command against migrations read from fsys, such as
// Embedded(). goose keeps its dialect and base FS in package state, so calls
// must not overlap.
func RunFS(ctx context.Context, db *sql.DB, dialect string, fsys fs.FS, command string, args ...string) error {
	if db == nil {
		return errors.New("db is required")
	}
	return withGoose(dialect, fsys, func() error {
		if err := goose.RunContext(ctx, command, db, ".", args...); err != nil {
			return fmt.Errorf("goose %s: %w", command, err)
		}
		return nil
	})
}

// MigrateToVersion moves the schema up or down to targetVersion.
func MigrateToVersion(ctx context.Context, db *sql.DB, dialect, dir, targetVersion string) error {
	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", targetVersion, err)
	}
	if dir == "" {
		return errors.New("dir is required")
	}

	return withGoose(dialect, os.DirFS(dir), func() error {
		current, err := goose.GetDBVersionContext(ctx, db)
		if err != nil {
			return fmt.Errorf("get db version: %w", err)
		}
		switch {
		case current < target:
			err = goose.UpToContext(ctx, db, ".", target)
		case current > target:
			err = goose.DownToContext(ctx, db, ".", target)
		}
		if err != nil {
			return fmt.Errorf("goose migrate %d -> %d: %w", current, target, err)
		}
		return nil
	})
}

func withGoose(dialect string, fsys fs.FS, fn func() error) error {
	if dialect == "" {
		dialect = "postgres"
	}
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	goose.SetBaseFS(fsys)
	defer goose.SetBaseFS(nil)
	return fn()
}
