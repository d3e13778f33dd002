package checkout

import (
	"fmt"

	"github.com/google/uuid"

	pkgerrors "github.com/evergreenfarmers/storefront/pkg/errors"
)

// StockLine describes one cart line re-read against the live catalog.
type StockLine struct {
	ProductID   uuid.UUID
	ProductName string
	Active      bool
	Available   int
	Quantity    int
}

// StockViolationDetail is returned to callers for each line that can no
// longer be fulfilled.
type StockViolationDetail struct {
	ProductID    uuid.UUID `json:"product_id"`
	ProductName  string    `json:"product_name,omitempty"`
	Available    int       `json:"available"`
	RequestedQty int       `json:"requested_qty"`
	Unavailable  bool      `json:"unavailable,omitempty"`
}

// ValidateStock fails with INSUFFICIENT_STOCK when any line's product was
// deactivated or no longer has enough stock for the requested quantity.
func ValidateStock(lines []StockLine) error {
	var violations []StockViolationDetail
	for _, line := range lines {
		if line.Active && line.Quantity <= line.Available {
			continue
		}
		detail := StockViolationDetail{
			ProductID:    line.ProductID,
			ProductName:  line.ProductName,
			Available:    line.Available,
			RequestedQty: line.Quantity,
			Unavailable:  !line.Active,
		}
		if !line.Active {
			detail.Available = 0
		}
		violations = append(violations, detail)
	}
	if len(violations) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, fmt.Sprintf("%d item(s) in your cart are no longer available in the requested quantity", len(violations))).WithDetails(map[string]any{
		"violations": violations,
	})
}
