package migrate_test

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/evergreenfarmers/storefront/pkg/config"
	"github.com/evergreenfarmers/storefront/pkg/migrate"
)

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	require.NoError(t, err)
	require.NotEmpty(t, matches, "no migration matching %s", pattern)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	return string(data)
}

func assertContainsAll(t *testing.T, content string, checks []string) {
	t.Helper()
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestCatalogMigrationContainsSchemas(t *testing.T) {
	content := readMigration(t, "*_create_catalog_tables.sql")
	assertContainsAll(t, content, []string{
		"CREATE TABLE IF NOT EXISTS categories",
		"CREATE TABLE IF NOT EXISTS sub_categories",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_sub_categories_category_name",
		"CREATE TABLE IF NOT EXISTS products",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_products_sku",
		"CHECK (stock_quantity >= 0)",
		"CREATE TABLE IF NOT EXISTS product_tags",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_product_attributes_unique",
		"DROP TABLE IF EXISTS products",
	})
}

func TestCartMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_customers_and_carts.sql")
	assertContainsAll(t, content, []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_customers_email",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_carts_session_id",
		"FOREIGN KEY (cart_id) REFERENCES carts(id) ON DELETE CASCADE",
		"CHECK (quantity >= 1)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_cart_items_cart_product",
	})
}

func TestOrderAndReviewMigrations(t *testing.T) {
	orders := readMigration(t, "*_create_orders.sql")
	assertContainsAll(t, orders, []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_order_number",
		"FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_order_items_order_product",
	})
	reviews := readMigration(t, "*_create_product_reviews.sql")
	assertContainsAll(t, reviews, []string{
		"CHECK (rating BETWEEN 1 AND 5)",
		"is_approved boolean NOT NULL DEFAULT FALSE",
		"WHERE customer_email <> ''",
	})
}

func TestOrderSessionMigration(t *testing.T) {
	assertContainsAll(t, readMigration(t, "*_add_order_session.sql"), []string{
		"ALTER TABLE orders ADD COLUMN session_id varchar(64) NOT NULL DEFAULT ''",
		"CREATE INDEX IF NOT EXISTS idx_orders_session_id",
		"ALTER TABLE orders DROP COLUMN session_id",
	})
}

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	require.NoError(t, migrate.ValidateDir("migrations"))
}

func TestEmbeddedMigrationsMatchDisk(t *testing.T) {
	require.NoError(t, migrate.ValidateFS(migrate.Embedded()))

	onDisk, err := filepath.Glob(filepath.Join("migrations", "*.sql"))
	require.NoError(t, err)
	embedded, err := fs.Glob(migrate.Embedded(), "*.sql")
	require.NoError(t, err)
	assert.Len(t, embedded, len(onDisk))
}

func TestValidateFSRejects(t *testing.T) {
	cases := map[string]fstest.MapFS{
		"bad name": {"add_things.sql": {Data: []byte("-- +goose Up\n-- +goose Down\n")}},
		"duplicate version": {
			"20250601090000_a.sql": {Data: []byte("-- +goose Up\n-- +goose Down\n")},
			"20250601090000_b.sql": {Data: []byte("-- +goose Up\n-- +goose Down\n")},
		},
		"missing down":   {"20250601090000_a.sql": {Data: []byte("-- +goose Up\n")}},
		"down before up": {"20250601090000_a.sql": {Data: []byte("-- +goose Down\n-- +goose Up\n")}},
	}
	for name, fsys := range cases {
		assert.Error(t, migrate.ValidateFS(fsys), name)
	}
	assert.NoError(t, migrate.ValidateFS(fstest.MapFS{"README.md": {Data: []byte("notes")}}))
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 7, 1, 8, 30, 0, 0, time.UTC)
	path, err := migrate.CreateSQLMigration(dir, "Add Delivery Zones!", now)
	require.NoError(t, err)
	assert.Equal(t, "20260701083000_add_delivery_zones.sql", filepath.Base(path))
	require.NoError(t, migrate.ValidateDir(dir))

	_, err = migrate.CreateSQLMigration(dir, "add delivery zones", now)
	assert.Error(t, err, "same version and name must not overwrite")

	_, err = migrate.CreateSQLMigration(dir, "!!!", now)
	assert.Error(t, err)
}

func TestMigrationsApplyOnSQLite(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	ctx := context.Background()
	dialect := migrate.DialectFor(config.DBDriverSQLite)
	require.Equal(t, "sqlite3", dialect)
	require.NoError(t, migrate.Run(ctx, sqlDB, dialect, "migrations", "up"))

	for _, table := range []string{"products", "cart_items", "orders", "order_items", "product_reviews", "contact_messages"} {
		assert.True(t, conn.Migrator().HasTable(table), "table %s", table)
	}
	assert.True(t, conn.Migrator().HasColumn("orders", "session_id"))

	require.NoError(t, migrate.Run(ctx, sqlDB, dialect, "migrations", "reset"))
	assert.False(t, conn.Migrator().HasTable("products"))

	require.NoError(t, migrate.RunFS(ctx, sqlDB, dialect, migrate.Embedded(), "up"))
	assert.True(t, conn.Migrator().HasTable("newsletter_subscriptions"))
}

func TestDialectForDefaultsToPostgres(t *testing.T) {
	assert.Equal(t, "postgres", migrate.DialectFor(config.DBDriverPostgres))
	assert.Equal(t, "postgres", migrate.DialectFor(""))
}
