package orders

import (
	"context"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/evergreenfarmers/storefront/pkg/db/models"
)

// Repository persists orders and their frozen line items.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts the order header without items.
func (r *Repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Omit("Items", "Customer").Create(order).Error
}

// CreateItemInSavepoint inserts one line behind a savepoint. On failure the
// savepoint is rolled back so the enclosing transaction stays usable, which
// Postgres requires after a failed statement.
func (r *Repository) CreateItemInSavepoint(ctx context.Context, savepoint string, item *models.OrderItem) error {
	conn := r.db.WithContext(ctx)
	if err := conn.SavePoint(savepoint).Error; err != nil {
		return err
	}
	if err := conn.Create(item).Error; err != nil {
		if rbErr := conn.RollbackTo(savepoint).Error; rbErr != nil {
			return multierr.Append(err, rbErr)
		}
		return err
	}
	return nil
}

// FindByNumber loads an order with its customer and items.
func (r *Repository) FindByNumber(ctx context.Context, number string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("product_name ASC")
		}).
		Where("order_number = ?", number).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}
