// Package testdb opens throwaway SQLite databases with the storefront schema
// and seeds catalog rows for repository and service tests.
package testdb

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/evergreenfarmers/storefront/pkg/db"
	"github.com/evergreenfarmers/storefront/pkg/db/models"
)

// Open returns a private in-memory database with every table migrated.
// A single connection keeps transactions and savepoints on one session.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, conn.AutoMigrate(models.All()...))
	return conn
}

// Client wraps Open in a db.Client for services that need WithTx.
func Client(t *testing.T) (*db.Client, *gorm.DB) {
	t.Helper()
	conn := Open(t)
	return db.NewFromGorm(conn), conn
}

// Category inserts an active category.
func Category(t *testing.T, conn *gorm.DB, name string) *models.Category {
	t.Helper()
	category := &models.Category{Name: name, IsActive: true}
	require.NoError(t, conn.Create(category).Error)
	return category
}

// SubCategory inserts an active subcategory under category.
func SubCategory(t *testing.T, conn *gorm.DB, category *models.Category, name string) *models.SubCategory {
	t.Helper()
	sub := &models.SubCategory{CategoryID: category.ID, Name: name, IsActive: true}
	require.NoError(t, conn.Create(sub).Error)
	return sub
}

// ProductOption adjusts a product before it is inserted.
type ProductOption func(*models.Product)

// WithStock sets the stock quantity.
func WithStock(qty int) ProductOption {
	return func(p *models.Product) { p.StockQuantity = qty }
}

// WithDiscount sets a discount price.
func WithDiscount(amount string) ProductOption {
	return func(p *models.Product) {
		p.DiscountPrice = decimal.NewNullDecimal(decimal.RequireFromString(amount))
	}
}

// Inactive hides the product from the storefront.
func Inactive() ProductOption {
	return func(p *models.Product) { p.IsActive = false }
}

// Featured marks the product as featured.
func Featured() ProductOption {
	return func(p *models.Product) { p.IsFeatured = true }
}

// Organic marks the product as organic.
func Organic() ProductOption {
	return func(p *models.Product) { p.IsOrganic = true }
}

// InSubCategory places the product in sub.
func InSubCategory(sub *models.SubCategory) ProductOption {
	return func(p *models.Product) { p.SubCategoryID = &sub.ID }
}

// Product inserts an active product priced at price with 50 units in stock
// unless options say otherwise.
func Product(t *testing.T, conn *gorm.DB, category *models.Category, name, price string, opts ...ProductOption) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:          name,
		Description:   name + " for smallholder farms",
		CategoryID:    category.ID,
		Price:         decimal.RequireFromString(price),
		StockQuantity: 50,
		IsActive:      true,
	}
	for _, opt := range opts {
		opt(product)
	}
	require.NoError(t, conn.Create(product).Error)
	return product
}

// Review inserts a review with the given rating and approval state.
func Review(t *testing.T, conn *gorm.DB, product *models.Product, rating int, approved bool) *models.ProductReview {
	t.Helper()
	review := &models.ProductReview{
		ProductID:    product.ID,
		CustomerName: "Test Farmer",
		Rating:       rating,
		Comment:      "Solid yields this season.",
		IsApproved:   approved,
	}
	require.NoError(t, conn.Create(review).Error)
	return review
}
