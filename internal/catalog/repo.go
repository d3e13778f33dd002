package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/evergreenfarmers/storefront/pkg/db/models"
	"github.com/evergreenfarmers/storefront/pkg/enums"
	"github.com/evergreenfarmers/storefront/pkg/pagination"
)

// sellingPriceExpr mirrors models.Product.SellingPrice in SQL.
const sellingPriceExpr = "(CASE WHEN products.discount_price IS NOT NULL AND products.discount_price > 0 AND products.discount_price < products.price THEN products.discount_price ELSE products.price END)"

// avgRatingExpr is the mean approved rating; TRUE is a valid boolean literal
// in both Postgres and SQLite.
const avgRatingExpr = "(SELECT AVG(r.rating) FROM product_reviews r WHERE r.product_id = products.id AND r.is_approved = TRUE)"

var purchasableStatuses = []enums.StockStatus{enums.StockStatusInStock, enums.StockStatusLowStock}

// Repository reads the catalog tables.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// CategoryCount is a category with the number of active products in it.
type CategoryCount struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Description  string    `json:"description,omitempty"`
	ImageURL     string    `json:"image_url,omitempty"`
	ProductCount int64     `json:"product_count"`
}

// FacetCount is a sidebar filter option with its active product count.
type FacetCount struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	ProductCount int64     `json:"product_count"`
}

// PriceRange is the span of selling prices across active products.
type PriceRange struct {
	Min decimal.NullDecimal `json:"min" gorm:"column:min_price"`
	Max decimal.NullDecimal `json:"max" gorm:"column:max_price"`
}

func (r *Repository) activeProducts(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Product{}).Where("products.is_active = ?", true)
}

func preloadCard(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Category").
		Preload("SubCategory").
		Preload("Brand").
		Preload("Tags").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		})
}

// applyFilter narrows q by every set field of f. Relation filters use
// subqueries so no row is duplicated and no DISTINCT is needed.
func applyFilter(q *gorm.DB, f Filter) *gorm.DB {
	if f.Category != "" {
		q = q.Where("products.category_id IN (SELECT id FROM categories WHERE slug = ?)", f.Category)
	}
	if f.SubCategory != "" {
		q = q.Where("products.subcategory_id IN (SELECT id FROM sub_categories WHERE slug = ?)", f.SubCategory)
	}
	if f.Brand != "" {
		q = q.Where("products.brand_id IN (SELECT id FROM brands WHERE slug = ?)", f.Brand)
	}
	if f.Tag != "" {
		q = q.Where("EXISTS (SELECT 1 FROM product_tags pt JOIN tags t ON t.id = pt.tag_id WHERE pt.product_id = products.id AND t.slug = ?)", f.Tag)
	}
	if f.Query != "" {
		clause, args := textMatch(f.Query)
		q = q.Where(clause, args...)
	}
	if f.MinPrice.Valid {
		q = q.Where(sellingPriceExpr+" >= ?", f.MinPrice.Decimal)
	}
	if f.MaxPrice.Valid {
		q = q.Where(sellingPriceExpr+" <= ?", f.MaxPrice.Decimal)
	}
	if f.Organic {
		q = q.Where("products.is_organic = ?", true)
	}
	if f.Stock != "" {
		q = q.Where("products.stock_status = ?", f.Stock)
	}
	return q
}

// textMatch ORs a case-insensitive substring match over the product text
// and the names of its category, subcategory, brand and tags.
func textMatch(term string) (string, []any) {
	p := likePattern(term)
	clauses := []string{
		`LOWER(products.name) LIKE ? ESCAPE '\'`,
		`LOWER(products.description) LIKE ? ESCAPE '\'`,
		`LOWER(products.short_description) LIKE ? ESCAPE '\'`,
		`EXISTS (SELECT 1 FROM categories c WHERE c.id = products.category_id AND LOWER(c.name) LIKE ? ESCAPE '\')`,
		`EXISTS (SELECT 1 FROM sub_categories sc WHERE sc.id = products.subcategory_id AND LOWER(sc.name) LIKE ? ESCAPE '\')`,
		`EXISTS (SELECT 1 FROM brands b WHERE b.id = products.brand_id AND LOWER(b.name) LIKE ? ESCAPE '\')`,
		`EXISTS (SELECT 1 FROM product_tags pt JOIN tags t ON t.id = pt.tag_id WHERE pt.product_id = products.id AND LOWER(t.name) LIKE ? ESCAPE '\')`,
	}
	args := make([]any, len(clauses))
	for i := range args {
		args[i] = p
	}
	return "(" + strings.Join(clauses, " OR ") + ")", args
}

func applySort(q *gorm.DB, key SortKey) *gorm.DB {
	switch key {
	case SortName:
		q = q.Order("products.name ASC")
	case SortNameDesc:
		q = q.Order("products.name DESC")
	case SortPriceLow:
		q = q.Order(sellingPriceExpr + " ASC")
	case SortPriceHigh:
		q = q.Order(sellingPriceExpr + " DESC")
	case SortNewest:
		q = q.Order("products.created_at DESC")
	case SortOldest:
		q = q.Order("products.created_at ASC")
	case SortFeatured:
		q = q.Order("products.is_featured DESC").Order("products.created_at DESC")
	case SortStockHigh:
		q = q.Order("products.stock_quantity DESC")
	case SortStockLow:
		q = q.Order("products.stock_quantity ASC")
	case SortRating:
		q = q.Order("COALESCE(" + avgRatingExpr + ", 0) DESC")
	default:
		q = q.Order("products.is_featured DESC").Order("products.created_at DESC")
	}
	return q.Order("products.id ASC")
}

// ListProducts returns one page of active products matching f. Out-of-range
// pages clamp to the nearest valid page.
func (r *Repository) ListProducts(ctx context.Context, f Filter, pageSize int) ([]models.Product, pagination.Page, error) {
	var total int64
	if err := applyFilter(r.activeProducts(ctx), f).Count(&total).Error; err != nil {
		return nil, pagination.Page{}, err
	}
	page := pagination.Resolve(f.Page, pageSize, total)
	if total == 0 {
		return []models.Product{}, page, nil
	}

	var rows []models.Product
	q := applySort(applyFilter(r.activeProducts(ctx), f), f.Sort)
	if err := preloadCard(q).Offset(page.Offset()).Limit(page.Size).Find(&rows).Error; err != nil {
		return nil, pagination.Page{}, err
	}
	return rows, page, nil
}

// Search returns up to limit active products whose text matches term, by name.
func (r *Repository) Search(ctx context.Context, term string, limit int) ([]models.Product, error) {
	clause, args := textMatch(term)
	var rows []models.Product
	err := r.activeProducts(ctx).
		Where(clause, args...).
		Preload("Category").
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Order("products.name ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// FindActiveBySlug loads an active product with every relation the detail page shows.
func (r *Repository) FindActiveBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	err := preloadCard(r.activeProducts(ctx)).
		Preload("Attributes", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Where("products.slug = ?", slug).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDs loads products by id, active or not, keyed by id.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	out := make(map[uuid.UUID]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Product
	if err := r.db.WithContext(ctx).Preload("Images").Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

// FindByID loads a product without associations.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// Related returns other active products from the same category.
func (r *Repository) Related(ctx context.Context, product *models.Product, limit int) ([]models.Product, error) {
	var rows []models.Product
	err := preloadCard(r.activeProducts(ctx)).
		Where("products.category_id = ? AND products.id <> ?", product.CategoryID, product.ID).
		Order("products.created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// HomeSection selects one block of the homepage.
type HomeSection string

const (
	SectionFeatured   HomeSection = "featured"
	SectionNewest     HomeSection = "newest"
	SectionOrganic    HomeSection = "organic"
	SectionVegetables HomeSection = "vegetables"
	SectionFruits     HomeSection = "fruits"
	SectionTopRated   HomeSection = "top_rated"
)

// ListSection returns up to limit purchasable active products for a homepage block.
func (r *Repository) ListSection(ctx context.Context, section HomeSection, limit int) ([]models.Product, error) {
	q := preloadCard(r.activeProducts(ctx)).
		Where("products.stock_status IN ?", purchasableStatuses)

	switch section {
	case SectionFeatured:
		q = q.Where("products.is_featured = ?", true).Order("products.created_at DESC")
	case SectionNewest:
		q = q.Order("products.created_at DESC")
	case SectionOrganic:
		q = q.Where("products.is_organic = ?", true).Order("products.created_at DESC")
	case SectionVegetables:
		q = q.Where("EXISTS (SELECT 1 FROM sub_categories sc WHERE sc.id = products.subcategory_id AND LOWER(sc.name) LIKE ?)", "%vegetable%").
			Order("products.created_at DESC")
	case SectionFruits:
		q = q.Where("EXISTS (SELECT 1 FROM sub_categories sc WHERE sc.id = products.subcategory_id AND LOWER(sc.name) LIKE ?)", "%fruit%").
			Order("products.created_at DESC")
	case SectionTopRated:
		q = q.Where("EXISTS (SELECT 1 FROM product_reviews r WHERE r.product_id = products.id AND r.is_approved = ?)", true).
			Order(avgRatingExpr + " DESC")
	}

	var rows []models.Product
	err := q.Order("products.id ASC").Limit(limit).Find(&rows).Error
	return rows, err
}

// CategoriesWithCounts lists active categories by name with active product counts.
func (r *Repository) CategoriesWithCounts(ctx context.Context) ([]CategoryCount, error) {
	var rows []CategoryCount
	err := r.db.WithContext(ctx).
		Table("categories").
		Select("categories.id, categories.name, categories.slug, categories.description, categories.image_url, "+
			"(SELECT COUNT(*) FROM products p WHERE p.category_id = categories.id AND p.is_active = ?) AS product_count", true).
		Where("categories.is_active = ?", true).
		Order("categories.name ASC").
		Scan(&rows).Error
	return rows, err
}

// FindCategoryBySlug loads an active category.
func (r *Repository) FindCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).
		Where("slug = ? AND is_active = ?", slug, true).
		First(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// SubCategoryFacets counts active products per active subcategory, optionally
// limited to one category.
func (r *Repository) SubCategoryFacets(ctx context.Context, categoryID *uuid.UUID) ([]FacetCount, error) {
	q := r.db.WithContext(ctx).
		Table("sub_categories").
		Select("sub_categories.id, sub_categories.name, sub_categories.slug, "+
			"(SELECT COUNT(*) FROM products p WHERE p.subcategory_id = sub_categories.id AND p.is_active = ?) AS product_count", true).
		Where("sub_categories.is_active = ?", true)
	if categoryID != nil {
		q = q.Where("sub_categories.category_id = ?", *categoryID)
	}
	var rows []FacetCount
	err := q.Order("sub_categories.name ASC").Scan(&rows).Error
	return rows, err
}

// BrandFacets counts active products per active brand.
func (r *Repository) BrandFacets(ctx context.Context) ([]FacetCount, error) {
	var rows []FacetCount
	err := r.db.WithContext(ctx).
		Table("brands").
		Select("brands.id, brands.name, brands.slug, "+
			"(SELECT COUNT(*) FROM products p WHERE p.brand_id = brands.id AND p.is_active = ?) AS product_count", true).
		Where("brands.is_active = ?", true).
		Order("brands.name ASC").
		Scan(&rows).Error
	return rows, err
}

// TagFacets counts active products per active tag.
func (r *Repository) TagFacets(ctx context.Context) ([]FacetCount, error) {
	var rows []FacetCount
	err := r.db.WithContext(ctx).
		Table("tags").
		Select("tags.id, tags.name, tags.slug, "+
			"(SELECT COUNT(*) FROM product_tags pt JOIN products p ON p.id = pt.product_id WHERE pt.tag_id = tags.id AND p.is_active = ?) AS product_count", true).
		Where("tags.is_active = ?", true).
		Order("tags.name ASC").
		Scan(&rows).Error
	return rows, err
}

// PriceBounds returns the lowest and highest selling price of active products.
func (r *Repository) PriceBounds(ctx context.Context) (PriceRange, error) {
	var bounds PriceRange
	err := r.activeProducts(ctx).
		Select("MIN(" + sellingPriceExpr + ") AS min_price, MAX(" + sellingPriceExpr + ") AS max_price").
		Scan(&bounds).Error
	return bounds, err
}
