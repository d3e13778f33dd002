package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cart is the visitor's basket, keyed by the cart session id.
type Cart struct {
	Identity
	SessionID  string     `gorm:"column:session_id;size:64;uniqueIndex;not null"`
	CustomerID *uuid.UUID `gorm:"column:customer_id;type:uuid;index"`
	Customer   *Customer  `gorm:"foreignKey:CustomerID"`
	Items      []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// TotalItems sums line quantities. Items must be preloaded.
func (c *Cart) TotalItems() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// TotalAmount sums live line totals. Items and their products must be preloaded.
func (c *Cart) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for i := range c.Items {
		total = total.Add(c.Items[i].TotalPrice())
	}
	return total
}

// CartItem is one product line; the price is read from the product on demand.
type CartItem struct {
	Identity
	CartID    uuid.UUID `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:idx_cart_items_cart_product"`
	Cart      *Cart     `gorm:"foreignKey:CartID"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_cart_items_cart_product"`
	Product   *Product  `gorm:"foreignKey:ProductID"`
	Quantity  int       `gorm:"column:quantity;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TotalPrice is quantity times the product's current selling price.
func (i *CartItem) TotalPrice() decimal.Decimal {
	if i.Product == nil {
		return decimal.Zero
	}
	return i.Product.SellingPrice().Mul(decimal.NewFromInt(int64(i.Quantity)))
}
