package main

import (
	"context"
	"database/sql"
	"encoding/base64"
	"fmt"
	"os"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/evergreenfarmers/storefront/pkg/config"
	"github.com/evergreenfarmers/storefront/pkg/db"
	"github.com/evergreenfarmers/storefront/pkg/logger"
	"github.com/evergreenfarmers/storefront/pkg/migrate"
)

func main() {
	_ = godotenv.Load()
	logg := logger.New(logger.Options{ServiceName: "migrate"})

	dirFlag := &cli.StringFlag{
		Name:  "dir",
		Value: migrate.DefaultDir,
		Usage: "goose migrations directory",
	}

	cmd := &cli.Command{
		Name:  "migrate",
		Usage: "Manage the storefront database schema",
		Flags: []cli.Flag{dirFlag},
		Commands: []*cli.Command{
			gooseCommand("up", "Apply all pending migrations", logg),
			gooseCommand("down", "Roll back the latest migration", logg),
			gooseCommand("status", "Print migration status", logg),
			{
				Name:      "version",
				Usage:     "Migrate up or down to a target version",
				ArgsUsage: "<YYYYMMDDHHMMSS>",
				Action: func(ctx context.Context, c *cli.Command) error {
					target := c.Args().First()
					if target == "" {
						return fmt.Errorf("missing target version")
					}
					return withDatabase(ctx, logg, c.String("dir"), "version", func(ctx context.Context, sqlDB *sql.DB, dialect string) error {
						return migrate.MigrateToVersion(ctx, sqlDB, dialect, c.String("dir"), target)
					})
				},
			},
			{
				Name:  "create",
				Usage: "Create a new SQL migration",
				Flags: []cli.Flag{&cli.StringFlag{Name: "name", Required: true, Usage: "migration name"}},
				Action: func(ctx context.Context, c *cli.Command) error {
					path, err := migrate.CreateSQLMigration(c.String("dir"), c.String("name"), time.Now())
					if err != nil {
						return fmt.Errorf("create migration: %w", err)
					}
					fmt.Println("created migration:", path)
					return nil
				},
			},
			{
				Name:  "validate",
				Usage: "Check migration file names and annotations",
				Action: func(ctx context.Context, c *cli.Command) error {
					if err := migrate.ValidateDir(c.String("dir")); err != nil {
						return fmt.Errorf("migration validation failed: %w", err)
					}
					fmt.Println("migration validation passed")
					return nil
				},
			},
			{
				Name:   "generate-session-keys",
				Usage:  "Print fresh cart session cookie keys for .env",
				Action: printSessionKeys,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		logg.Error(context.Background(), "migrate failed", err)
		os.Exit(1)
	}
}

func gooseCommand(name, usage string, logg *logger.Logger) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: usage,
		Action: func(ctx context.Context, c *cli.Command) error {
			dir := c.String("dir")
			return withDatabase(ctx, logg, dir, name, func(ctx context.Context, sqlDB *sql.DB, dialect string) error {
				return migrate.Run(ctx, sqlDB, dialect, dir, name)
			})
		},
	}
}

// withDatabase loads config, opens the database and runs fn against it.
func withDatabase(ctx context.Context, logg *logger.Logger, dir, command string, fn func(context.Context, *sql.DB, string) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Console:     cfg.App.LogFormat == "console",
	})

	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer client.Close()

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extract sql.DB: %w", err)
	}

	dialect := migrate.DialectFor(client.Driver())
	ctx = logg.WithFields(ctx, map[string]any{
		"env":     cfg.App.Env,
		"cmd":     command,
		"dir":     dir,
		"dialect": dialect,
	})
	logg.Info(ctx, "migrate ready")
	if err := fn(ctx, sqlDB, dialect); err != nil {
		return err
	}
	logg.Info(ctx, "migrate finished")
	return nil
}

// printSessionKeys emits a 64 character hash key and a 32 character block
// key, the latter sized for AES-256 when used as raw bytes.
func printSessionKeys(ctx context.Context, c *cli.Command) error {
	hashKey := securecookie.GenerateRandomKey(48)
	blockKey := securecookie.GenerateRandomKey(24)
	if hashKey == nil || blockKey == nil {
		return fmt.Errorf("could not read enough randomness")
	}
	fmt.Printf("%sSESSION_HASH_KEY=%s\n", config.EnvPrefix+"_", base64.RawURLEncoding.EncodeToString(hashKey))
	fmt.Printf("%sSESSION_BLOCK_KEY=%s\n", config.EnvPrefix+"_", base64.RawURLEncoding.EncodeToString(blockKey))
	return nil
}
