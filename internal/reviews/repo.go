package reviews

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/evergreenfarmers/storefront/pkg/db/models"
)

// Repository persists product reviews.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a review row.
func (r *Repository) Create(ctx context.Context, review *models.ProductReview) error {
	return r.db.WithContext(ctx).Create(review).Error
}

// ExistsForEmail reports whether the email already reviewed the product,
// approved or not.
func (r *Repository) ExistsForEmail(ctx context.Context, productID uuid.UUID, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ProductReview{}).
		Where("product_id = ? AND customer_email = ?", productID, email).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) approved(ctx context.Context, productID uuid.UUID, rating int) *gorm.DB {
	q := r.db.WithContext(ctx).
		Model(&models.ProductReview{}).
		Where("product_id = ? AND is_approved = ?", productID, true)
	if rating > 0 {
		q = q.Where("rating = ?", rating)
	}
	return q
}

// CountApproved counts approved reviews, optionally for a single star rating.
func (r *Repository) CountApproved(ctx context.Context, productID uuid.UUID, rating int) (int64, error) {
	var count int64
	err := r.approved(ctx, productID, rating).Count(&count).Error
	return count, err
}

// ListApproved returns one page of approved reviews in the requested order.
func (r *Repository) ListApproved(ctx context.Context, productID uuid.UUID, rating int, sort SortKey, offset, limit int) ([]models.ProductReview, error) {
	q := r.approved(ctx, productID, rating)
	switch sort {
	case SortOldest:
		q = q.Order("created_at ASC")
	case SortHighest:
		q = q.Order("rating DESC").Order("created_at DESC")
	case SortLowest:
		q = q.Order("rating ASC").Order("created_at DESC")
	default:
		q = q.Order("created_at DESC")
	}
	var rows []models.ProductReview
	err := q.Order("id ASC").Offset(offset).Limit(limit).Find(&rows).Error
	return rows, err
}

type ratingCount struct {
	Rating int
	Total  int64
}

// RatingCounts returns approved review counts keyed by star rating.
func (r *Repository) RatingCounts(ctx context.Context, productID uuid.UUID) (map[int]int64, error) {
	var rows []ratingCount
	err := r.approved(ctx, productID, 0).
		Select("rating, COUNT(*) AS total").
		Group("rating").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[int]int64, len(rows))
	for _, row := range rows {
		counts[row.Rating] = row.Total
	}
	return counts, nil
}
