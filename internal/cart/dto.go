package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/evergreenfarmers/storefront/pkg/db/models"
)

// Line is one cart row joined with live product data.
type Line struct {
	ItemID         uuid.UUID `json:"item_id"`
	ProductID      uuid.UUID `json:"product_id"`
	ProductName    string    `json:"product_name"`
	ProductSlug    string    `json:"product_slug"`
	Image          string    `json:"image,omitempty"`
	Unit           string    `json:"unit"`
	UnitLabel      string    `json:"unit_label"`
	Quantity       int       `json:"quantity"`
	UnitPrice      string    `json:"unit_price"`
	LineTotal      string    `json:"line_total"`
	AvailableStock int       `json:"available_stock"`
	InStock        bool      `json:"in_stock"`
}

// Summary is the cart view returned by every cart operation.
type Summary struct {
	Items       []Line          `json:"items"`
	TotalItems  int             `json:"total_items"`
	TotalAmount string          `json:"total_amount"`
	Total       decimal.Decimal `json:"-"`
}

// Line returns the row holding productID, or nil.
func (s *Summary) Line(productID uuid.UUID) *Line {
	for i := range s.Items {
		if s.Items[i].ProductID == productID {
			return &s.Items[i]
		}
	}
	return nil
}

// IsEmpty reports whether the cart has no lines.
func (s *Summary) IsEmpty() bool {
	return len(s.Items) == 0
}

func emptySummary() *Summary {
	return &Summary{Items: []Line{}, TotalAmount: decimal.Zero.StringFixed(2), Total: decimal.Zero}
}

// NewSummary builds the view from a cart whose items and products are preloaded.
func NewSummary(cart *models.Cart) *Summary {
	if cart == nil {
		return emptySummary()
	}
	summary := &Summary{Items: make([]Line, 0, len(cart.Items))}
	for i := range cart.Items {
		item := &cart.Items[i]
		line := Line{
			ItemID:    item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: decimal.Zero.StringFixed(2),
			LineTotal: item.TotalPrice().StringFixed(2),
		}
		if p := item.Product; p != nil {
			line.ProductName = p.Name
			line.ProductSlug = p.Slug
			line.Image = p.MainImageURL()
			line.Unit = p.Unit.String()
			line.UnitLabel = p.Unit.Label()
			line.UnitPrice = p.SellingPrice().StringFixed(2)
			line.AvailableStock = p.StockQuantity
			line.InStock = p.IsActive && p.InStock(item.Quantity)
		}
		summary.Items = append(summary.Items, line)
	}
	summary.TotalItems = cart.TotalItems()
	summary.Total = cart.TotalAmount()
	summary.TotalAmount = summary.Total.StringFixed(2)
	return summary
}
