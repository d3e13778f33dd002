package catalog

import (
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/evergreenfarmers/storefront/pkg/enums"
	"github.com/evergreenfarmers/storefront/pkg/pagination"
)

// SortKey selects the listing order.
type SortKey string

const (
	SortDefault   SortKey = ""
	SortName      SortKey = "name"
	SortNameDesc  SortKey = "name_desc"
	SortPriceLow  SortKey = "price_low"
	SortPriceHigh SortKey = "price_high"
	SortNewest    SortKey = "newest"
	SortOldest    SortKey = "oldest"
	SortFeatured  SortKey = "featured"
	SortStockHigh SortKey = "stock_high"
	SortStockLow  SortKey = "stock_low"
	SortRating    SortKey = "rating"
)

var validSortKeys = []SortKey{
	SortName, SortNameDesc, SortPriceLow, SortPriceHigh, SortNewest,
	SortOldest, SortFeatured, SortStockHigh, SortStockLow, SortRating,
}

// ParseSortKey returns the matching key, or SortDefault for anything unknown.
func ParseSortKey(value string) SortKey {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, key := range validSortKeys {
		if string(key) == value {
			return key
		}
	}
	return SortDefault
}

// Filter holds the listing knobs read from the query string. Zero values mean
// "no constraint".
type Filter struct {
	Query       string              `json:"q,omitempty"`
	Category    string              `json:"category,omitempty"`
	SubCategory string              `json:"subcategory,omitempty"`
	Brand       string              `json:"brand,omitempty"`
	Tag         string              `json:"tag,omitempty"`
	MinPrice    decimal.NullDecimal `json:"min_price"`
	MaxPrice    decimal.NullDecimal `json:"max_price"`
	Organic     bool                `json:"organic,omitempty"`
	Stock       enums.StockStatus   `json:"stock,omitempty"`
	Sort        SortKey             `json:"sort,omitempty"`
	Page        int                 `json:"page"`
}

// ParseFilter never fails: unparsable prices, stock values and pages are
// dropped rather than rejected.
func ParseFilter(values url.Values) Filter {
	f := Filter{
		Query:       strings.TrimSpace(values.Get("q")),
		Category:    strings.TrimSpace(values.Get("category")),
		SubCategory: strings.TrimSpace(values.Get("subcategory")),
		Brand:       strings.TrimSpace(values.Get("brand")),
		Tag:         strings.TrimSpace(values.Get("tag")),
		MinPrice:    parsePrice(values.Get("min_price")),
		MaxPrice:    parsePrice(values.Get("max_price")),
		Organic:     parseFlag(values.Get("organic")),
		Sort:        ParseSortKey(values.Get("sort")),
		Page:        pagination.ParsePage(values.Get("page")),
	}
	if status, err := enums.ParseStockStatus(values.Get("stock")); err == nil {
		f.Stock = status
	}
	return f
}

func parsePrice(raw string) decimal.NullDecimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.NullDecimal{}
	}
	value, err := decimal.NewFromString(raw)
	if err != nil || value.IsNegative() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(value)
}

func parseFlag(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// likePattern lowercases term and wraps it for a LIKE substring match,
// escaping the LIKE wildcards it contains.
func likePattern(term string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(strings.ToLower(term)) + "%"
}
