package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/evergreenfarmers/storefront/internal/reviews"
	"github.com/evergreenfarmers/storefront/pkg/db/models"
	"github.com/evergreenfarmers/storefront/pkg/pagination"
)

// RefDTO names a related category, subcategory or brand.
type RefDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// TagDTO is a product badge.
type TagDTO struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Color string `json:"color"`
}

// ProductCard is the listing view of a product. Money is rendered as
// fixed two-decimal strings.
type ProductCard struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	Slug               string    `json:"slug"`
	SKU                string    `json:"sku"`
	ShortDescription   string    `json:"short_description,omitempty"`
	Price              string    `json:"price"`
	SellingPrice       string    `json:"selling_price"`
	DiscountPrice      *string   `json:"discount_price,omitempty"`
	DiscountPercentage int       `json:"discount_percentage"`
	StockStatus        string    `json:"stock_status"`
	StockQuantity      int       `json:"stock_quantity"`
	Unit               string    `json:"unit"`
	UnitLabel          string    `json:"unit_label"`
	IsFeatured         bool      `json:"is_featured"`
	IsOrganic          bool      `json:"is_organic"`
	Image              string    `json:"image,omitempty"`
	Category           *RefDTO   `json:"category,omitempty"`
	SubCategory        *RefDTO   `json:"subcategory,omitempty"`
	Brand              *RefDTO   `json:"brand,omitempty"`
	Tags               []TagDTO  `json:"tags"`
}

// ImageDTO is one gallery picture.
type ImageDTO struct {
	URL     string `json:"url"`
	AltText string `json:"alt_text,omitempty"`
	IsMain  bool   `json:"is_main"`
}

// AttributeDTO is one name/value product attribute.
type AttributeDTO struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ProductDetail is the full product page payload.
type ProductDetail struct {
	ProductCard
	Description          string              `json:"description"`
	Weight               *string             `json:"weight,omitempty"`
	RequiresPrescription bool                `json:"requires_prescription"`
	Origin               string              `json:"origin,omitempty"`
	HarvestDate          *time.Time          `json:"harvest_date,omitempty"`
	ExpiryDate           *time.Time          `json:"expiry_date,omitempty"`
	MetaTitle            string              `json:"meta_title,omitempty"`
	MetaDescription      string              `json:"meta_description,omitempty"`
	MetaKeywords         string              `json:"meta_keywords,omitempty"`
	Images               []ImageDTO          `json:"images"`
	Attributes           []AttributeDTO      `json:"attributes"`
	Related              []ProductCard       `json:"related_products"`
	Reviews              []reviews.ReviewDTO `json:"reviews"`
	ReviewStats          reviews.Stats       `json:"review_stats"`
}

// HomePage aggregates the homepage blocks.
type HomePage struct {
	Featured   []ProductCard   `json:"featured_products"`
	Newest     []ProductCard   `json:"new_arrivals"`
	Organic    []ProductCard   `json:"organic_products"`
	TopRated   []ProductCard   `json:"top_rated_products"`
	Vegetables []ProductCard   `json:"vegetables"`
	Fruits     []ProductCard   `json:"fruits"`
	Categories []CategoryCount `json:"categories"`
}

// Facets feed the listing sidebar.
type Facets struct {
	Categories    []CategoryCount `json:"categories"`
	SubCategories []FacetCount    `json:"subcategories"`
	Brands        []FacetCount    `json:"brands"`
	Tags          []FacetCount    `json:"tags"`
	PriceRange    PriceRange      `json:"price_range"`
}

// ListResult is one page of the product listing.
type ListResult struct {
	Products   []ProductCard   `json:"products"`
	Pagination pagination.Page `json:"pagination"`
	Facets     Facets          `json:"facets"`
	Filters    Filter          `json:"filters"`
}

// CategoryDTO describes the category heading a category page.
type CategoryDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
}

// CategoryPage is a category with its subcategories and a scoped listing.
type CategoryPage struct {
	Category      CategoryDTO     `json:"category"`
	SubCategories []FacetCount    `json:"subcategories"`
	Products      []ProductCard   `json:"products"`
	Pagination    pagination.Page `json:"pagination"`
	Filters       Filter          `json:"filters"`
}

// SearchHit is one quick-search suggestion.
type SearchHit struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Slug     string    `json:"slug"`
	Price    string    `json:"price"`
	Image    string    `json:"image"`
	Category string    `json:"category"`
	URL      string    `json:"url"`
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func optionalMoney(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := money(d.Decimal)
	return &s
}

// ProductURL is the public path of a product page.
func ProductURL(slug string) string {
	return "/product/" + slug + "/"
}

// NewProductCard builds the listing view from a product with its card
// relations preloaded.
func NewProductCard(p *models.Product) ProductCard {
	card := ProductCard{
		ID:                 p.ID,
		Name:               p.Name,
		Slug:               p.Slug,
		SKU:                p.SKU,
		ShortDescription:   p.ShortDescription,
		Price:              money(p.Price),
		SellingPrice:       money(p.SellingPrice()),
		DiscountPercentage: p.DiscountPercentage(),
		StockStatus:        p.StockStatus.String(),
		StockQuantity:      p.StockQuantity,
		Unit:               p.Unit.String(),
		UnitLabel:          p.Unit.Label(),
		IsFeatured:         p.IsFeatured,
		IsOrganic:          p.IsOrganic,
		Image:              p.MainImageURL(),
		Tags:               make([]TagDTO, 0, len(p.Tags)),
	}
	if p.HasDiscount() {
		card.DiscountPrice = optionalMoney(p.DiscountPrice)
	}
	if p.Category != nil {
		card.Category = &RefDTO{ID: p.Category.ID, Name: p.Category.Name, Slug: p.Category.Slug}
	}
	if p.SubCategory != nil {
		card.SubCategory = &RefDTO{ID: p.SubCategory.ID, Name: p.SubCategory.Name, Slug: p.SubCategory.Slug}
	}
	if p.Brand != nil {
		card.Brand = &RefDTO{ID: p.Brand.ID, Name: p.Brand.Name, Slug: p.Brand.Slug}
	}
	for _, tag := range p.Tags {
		if !tag.IsActive {
			continue
		}
		card.Tags = append(card.Tags, TagDTO{Name: tag.Name, Slug: tag.Slug, Color: tag.Color})
	}
	return card
}

func newProductCards(rows []models.Product) []ProductCard {
	out := make([]ProductCard, 0, len(rows))
	for i := range rows {
		out = append(out, NewProductCard(&rows[i]))
	}
	return out
}

func newProductDetail(p *models.Product) *ProductDetail {
	detail := &ProductDetail{
		ProductCard:          NewProductCard(p),
		Description:          p.Description,
		Weight:               optionalMoney(p.Weight),
		RequiresPrescription: p.RequiresPrescription,
		Origin:               p.Origin,
		HarvestDate:          p.HarvestDate,
		ExpiryDate:           p.ExpiryDate,
		MetaTitle:            p.MetaTitle,
		MetaDescription:      p.MetaDescription,
		MetaKeywords:         p.MetaKeywords,
		Images:               make([]ImageDTO, 0, len(p.Images)),
		Attributes:           make([]AttributeDTO, 0, len(p.Attributes)),
		Related:              []ProductCard{},
		Reviews:              []reviews.ReviewDTO{},
	}
	for _, img := range p.Images {
		detail.Images = append(detail.Images, ImageDTO{URL: img.ImageURL, AltText: img.AltText, IsMain: img.IsMain})
	}
	for _, attr := range p.Attributes {
		detail.Attributes = append(detail.Attributes, AttributeDTO{Name: attr.Name, Value: attr.Value})
	}
	return detail
}

func newSearchHit(p *models.Product) SearchHit {
	hit := SearchHit{
		ID:    p.ID,
		Name:  p.Name,
		Slug:  p.Slug,
		Price: money(p.SellingPrice()),
		Image: p.MainImageURL(),
		URL:   ProductURL(p.Slug),
	}
	if p.Category != nil {
		hit.Category = p.Category.Name
	}
	return hit
}
