package models

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Identity is embedded by every model; ids are assigned client-side so the
// same models work against Postgres and SQLite.
type Identity struct {
	ID uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
}

// BeforeCreate assigns a random id when none was set.
func (i *Identity) BeforeCreate(_ *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// shortCode returns n uppercase hex characters taken from a random UUID.
func shortCode(n int) string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	if n > len(raw) {
		n = len(raw)
	}
	return strings.ToUpper(raw[:n])
}

// NewSKU returns a generated stock keeping unit such as FARM-1A2B3C4D.
func NewSKU() string {
	return "FARM-" + shortCode(8)
}

// NewOrderNumber returns a public order reference such as ORD-1A2B3C4D.
func NewOrderNumber() string {
	return "ORD-" + shortCode(8)
}
