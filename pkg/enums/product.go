package enums

import "slices"

// StockStatus is derived from stock quantity on every product save.
type StockStatus string

const (
	StockStatusInStock    StockStatus = "in_stock"
	StockStatusLowStock   StockStatus = "low_stock"
	StockStatusOutOfStock StockStatus = "out_of_stock"
	StockStatusPreOrder   StockStatus = "pre_order"
)

var stockStatuses = []StockStatus{
	StockStatusInStock,
	StockStatusLowStock,
	StockStatusOutOfStock,
	StockStatusPreOrder,
}

func (s StockStatus) String() string { return string(s) }

func (s StockStatus) IsValid() bool { return slices.Contains(stockStatuses, s) }

// Purchasable reports whether shoppers can currently add the product.
func (s StockStatus) Purchasable() bool {
	return s == StockStatusInStock || s == StockStatusLowStock
}

func ParseStockStatus(value string) (StockStatus, error) {
	return parseKnown("stock status", value, stockStatuses)
}

// DeriveStockStatus maps a quantity onto a status: zero is out of stock,
// anything up to and including the threshold is low stock.
func DeriveStockStatus(quantity, lowStockThreshold int) StockStatus {
	switch {
	case quantity <= 0:
		return StockStatusOutOfStock
	case quantity <= lowStockThreshold:
		return StockStatusLowStock
	default:
		return StockStatusInStock
	}
}

// ProductUnit is the selling unit shown next to prices and quantities.
type ProductUnit string

const (
	ProductUnitKilogram   ProductUnit = "kg"
	ProductUnitGram       ProductUnit = "g"
	ProductUnitLiter      ProductUnit = "ltr"
	ProductUnitMilliliter ProductUnit = "ml"
	ProductUnitPiece      ProductUnit = "pc"
	ProductUnitPack       ProductUnit = "pack"
	ProductUnitBag        ProductUnit = "bag"
	ProductUnitBottle     ProductUnit = "bottle"
	ProductUnitBox        ProductUnit = "box"
	ProductUnitDozen      ProductUnit = "dozen"
	ProductUnitMeter      ProductUnit = "meter"
	ProductUnitAcre       ProductUnit = "acre"
)

var productUnitLabels = map[ProductUnit]string{
	ProductUnitKilogram:   "Kilogram",
	ProductUnitGram:       "Gram",
	ProductUnitLiter:      "Liter",
	ProductUnitMilliliter: "Milliliter",
	ProductUnitPiece:      "Piece",
	ProductUnitPack:       "Pack",
	ProductUnitBag:        "Bag",
	ProductUnitBottle:     "Bottle",
	ProductUnitBox:        "Box",
	ProductUnitDozen:      "Dozen",
	ProductUnitMeter:      "Meter",
	ProductUnitAcre:       "Acre",
}

func (u ProductUnit) String() string { return string(u) }

func (u ProductUnit) IsValid() bool {
	_, ok := productUnitLabels[u]
	return ok
}

// Label is the unit name shown next to quantities, or the raw code when the
// unit is unknown.
func (u ProductUnit) Label() string { return labelOr(u, productUnitLabels) }

func ParseProductUnit(value string) (ProductUnit, error) {
	if u := ProductUnit(value); u.IsValid() {
		return u, nil
	}
	return "", invalid("product unit", value)
}
