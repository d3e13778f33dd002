package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/evergreenfarmers/storefront/pkg/enums"
	"github.com/evergreenfarmers/storefront/pkg/slug"
)

// DefaultLowStockThreshold applies when a product is saved without a threshold.
const DefaultLowStockThreshold = 10

// Product is a sellable catalog entry.
type Product struct {
	Identity
	Name             string `gorm:"column:name;not null"`
	Slug             string `gorm:"column:slug;uniqueIndex;not null"`
	SKU              string `gorm:"column:sku;uniqueIndex;not null"`
	Description      string `gorm:"column:description;type:text;not null"`
	ShortDescription string `gorm:"column:short_description;size:300"`

	CategoryID    uuid.UUID    `gorm:"column:category_id;type:uuid;not null;index"`
	Category      *Category    `gorm:"foreignKey:CategoryID"`
	SubCategoryID *uuid.UUID   `gorm:"column:subcategory_id;type:uuid;index"`
	SubCategory   *SubCategory `gorm:"foreignKey:SubCategoryID"`
	BrandID       *uuid.UUID   `gorm:"column:brand_id;type:uuid;index"`
	Brand         *Brand       `gorm:"foreignKey:BrandID"`
	Tags          []Tag        `gorm:"many2many:product_tags;"`

	Price         decimal.Decimal     `gorm:"column:price;type:numeric(10,2);not null"`
	DiscountPrice decimal.NullDecimal `gorm:"column:discount_price;type:numeric(10,2)"`
	CostPrice     decimal.NullDecimal `gorm:"column:cost_price;type:numeric(10,2)"`

	StockQuantity     int                 `gorm:"column:stock_quantity;not null"`
	StockStatus       enums.StockStatus   `gorm:"column:stock_status;size:20;not null;index"`
	LowStockThreshold int                 `gorm:"column:low_stock_threshold;not null"`
	Unit              enums.ProductUnit   `gorm:"column:unit;size:20;not null"`
	Weight            decimal.NullDecimal `gorm:"column:weight;type:numeric(8,2)"`

	IsActive             bool `gorm:"column:is_active;not null;index"`
	IsFeatured           bool `gorm:"column:is_featured;not null"`
	IsOrganic            bool `gorm:"column:is_organic;not null"`
	RequiresPrescription bool `gorm:"column:requires_prescription;not null"`

	MetaTitle       string `gorm:"column:meta_title;size:200"`
	MetaDescription string `gorm:"column:meta_description;size:300"`
	MetaKeywords    string `gorm:"column:meta_keywords;size:500"`

	HarvestDate *time.Time `gorm:"column:harvest_date;type:date"`
	ExpiryDate  *time.Time `gorm:"column:expiry_date;type:date"`
	Origin      string     `gorm:"column:origin;size:100"`

	Images     []ProductImage     `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Attributes []ProductAttribute `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeSave fills generated identifiers and re-derives the stock status so
// it never disagrees with the stored quantity.
func (p *Product) BeforeSave(_ *gorm.DB) error {
	if p.Slug == "" {
		p.Slug = slug.MakeMax(p.Name, 220)
	}
	if p.SKU == "" {
		p.SKU = NewSKU()
	}
	if p.Unit == "" {
		p.Unit = enums.ProductUnitPiece
	}
	if p.LowStockThreshold <= 0 {
		p.LowStockThreshold = DefaultLowStockThreshold
	}
	if p.StockQuantity < 0 {
		p.StockQuantity = 0
	}
	p.StockStatus = enums.DeriveStockStatus(p.StockQuantity, p.LowStockThreshold)
	return nil
}

// HasDiscount reports whether a positive discount price below the list price is set.
func (p *Product) HasDiscount() bool {
	if !p.DiscountPrice.Valid {
		return false
	}
	d := p.DiscountPrice.Decimal
	return d.IsPositive() && d.LessThan(p.Price)
}

// SellingPrice is the price used for every cart and order total.
func (p *Product) SellingPrice() decimal.Decimal {
	if p.HasDiscount() {
		return p.DiscountPrice.Decimal
	}
	return p.Price
}

// DiscountPercentage returns the whole-number markdown, or 0 without a discount.
func (p *Product) DiscountPercentage() int {
	if !p.HasDiscount() || !p.Price.IsPositive() {
		return 0
	}
	pct := p.Price.Sub(p.DiscountPrice.Decimal).Div(p.Price).Mul(decimal.NewFromInt(100)).Round(0)
	return int(pct.IntPart())
}

// InStock reports whether the requested quantity can currently be sold.
func (p *Product) InStock(quantity int) bool {
	return quantity > 0 && quantity <= p.StockQuantity
}

// MainImage returns the flagged main image, else the first by sort order.
// Images must be preloaded.
func (p *Product) MainImage() *ProductImage {
	if len(p.Images) == 0 {
		return nil
	}
	for i := range p.Images {
		if p.Images[i].IsMain {
			return &p.Images[i]
		}
	}
	ordered := make([]ProductImage, len(p.Images))
	copy(ordered, p.Images)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].SortOrder < ordered[j].SortOrder
	})
	return &ordered[0]
}

// MainImageURL returns the main image URL or an empty string.
func (p *Product) MainImageURL() string {
	if img := p.MainImage(); img != nil {
		return img.ImageURL
	}
	return ""
}

// ProductImage is one picture in a product gallery; at most one is main.
type ProductImage struct {
	Identity
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	ImageURL  string    `gorm:"column:image_url;not null"`
	AltText   string    `gorm:"column:alt_text;size:200"`
	IsMain    bool      `gorm:"column:is_main;not null"`
	SortOrder int       `gorm:"column:sort_order;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// ProductAttribute is a name/value pair such as Variety: Hybrid F1.
type ProductAttribute struct {
	Identity
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_product_attributes_unique"`
	Name      string    `gorm:"column:name;size:100;not null;uniqueIndex:idx_product_attributes_unique"`
	Value     string    `gorm:"column:value;size:200;not null;uniqueIndex:idx_product_attributes_unique"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
