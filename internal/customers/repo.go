package customers

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/evergreenfarmers/storefront/pkg/db/models"
)

// Repository persists customers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByEmail matches the normalized email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// UpsertByEmail updates the customer sharing input's email in place, or
// inserts input when none exists. The returned row carries the stored id.
func (r *Repository) UpsertByEmail(ctx context.Context, input *models.Customer) (*models.Customer, error) {
	existing, err := r.FindByEmail(ctx, input.Email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if existing == nil {
		input.IsActive = true
		if err := r.db.WithContext(ctx).Create(input).Error; err != nil {
			return nil, err
		}
		return input, nil
	}

	applyMutable(existing, input)
	if err := r.db.WithContext(ctx).Save(existing).Error; err != nil {
		return nil, err
	}
	return existing, nil
}

// applyMutable copies the checkout-editable fields. Blank optional fields on
// src keep the stored value.
func applyMutable(dst, src *models.Customer) {
	dst.FirstName = src.FirstName
	dst.LastName = src.LastName
	dst.Phone = src.Phone
	dst.AddressLine1 = src.AddressLine1
	dst.IsActive = true
	if src.CustomerType != "" {
		dst.CustomerType = src.CustomerType
	}
	keep := func(target *string, value string) {
		if strings.TrimSpace(value) != "" {
			*target = value
		}
	}
	keep(&dst.WhatsAppNumber, src.WhatsAppNumber)
	keep(&dst.AddressLine2, src.AddressLine2)
	keep(&dst.City, src.City)
	keep(&dst.County, src.County)
	keep(&dst.PostalCode, src.PostalCode)
	keep(&dst.FarmName, src.FarmName)
	keep(&dst.FarmingType, src.FarmingType)
	if src.FarmSize.Valid {
		dst.FarmSize = src.FarmSize
	}
}
