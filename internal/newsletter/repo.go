package newsletter

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/evergreenfarmers/storefront/pkg/db/models"
)

// Repository persists newsletter subscriptions.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByEmail matches the normalized email, active or not.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.NewsletterSubscription, error) {
	var sub models.NewsletterSubscription
	err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *Repository) Create(ctx context.Context, sub *models.NewsletterSubscription) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

// SetActive flips the subscription state; name is only overwritten when set.
func (r *Repository) SetActive(ctx context.Context, sub *models.NewsletterSubscription, active bool, name string) error {
	updates := map[string]any{"is_active": active}
	if name != "" {
		updates["name"] = name
	}
	return r.db.WithContext(ctx).Model(sub).Updates(updates).Error
}
