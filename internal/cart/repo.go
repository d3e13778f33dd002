package cart

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/evergreenfarmers/storefront/pkg/db/models"
)

// Repository persists session carts and their lines.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
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

// FindBySession loads the session's cart with every line and its live product.
func (r *Repository) FindBySession(ctx context.Context, sessionID string) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC").Order("id ASC")
		}).
		Preload("Items.Product").
		Preload("Items.Product.Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Where("session_id = ?", sessionID).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// GetOrCreate returns the session's cart row, inserting it on first use.
// A concurrent insert for the same session is absorbed by ON CONFLICT DO
// NOTHING followed by a re-read, which keeps an open transaction usable.
func (r *Repository) GetOrCreate(ctx context.Context, sessionID string) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&cart).Error
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fresh := models.Cart{SessionID: sessionID}
	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "session_id"}}, DoNothing: true}).
		Create(&fresh).Error
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// FindProduct loads a product by id regardless of its active flag.
func (r *Repository) FindProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", productID).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// LineQuantity returns the quantity already in the cart for productID, or 0.
func (r *Repository) LineQuantity(ctx context.Context, cartID, productID uuid.UUID) (int, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Select("quantity").
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Take(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	return item.Quantity, err
}

// UpsertLine creates the (cart, product) line or adds quantity to it in a
// single statement.
func (r *Repository) UpsertLine(ctx context.Context, cartID, productID uuid.UUID, quantity int) error {
	item := models.CartItem{CartID: cartID, ProductID: productID, Quantity: quantity}
	return r.db.WithContext(ctx).
		Clauses(upsertLineClause(time.Now().UTC())).
		Create(&item).Error
}

func upsertLineClause(now time.Time) clause.OnConflict {
	return clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"quantity":   gorm.Expr("cart_items.quantity + excluded.quantity"),
			"updated_at": now,
		}),
	}
}

// FindItem loads a cart line with its owning cart and product.
func (r *Repository) FindItem(ctx context.Context, itemID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Preload("Cart").
		Preload("Product").
		First(&item, "id = ?", itemID).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// SetLineQuantity overwrites a line's quantity.
func (r *Repository) SetLineQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", itemID).
		Updates(map[string]any{"quantity": quantity, "updated_at": time.Now().UTC()}).Error
}

// Touch marks the cart as active now. Line writes call it so the stale cart
// purge only sees carts nobody has used since the cutoff.
func (r *Repository) Touch(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ?", cartID).
		UpdateColumn("updated_at", time.Now().UTC()).Error
}

// DeleteItem removes one line.
func (r *Repository) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", itemID).Delete(&models.CartItem{}).Error
}

// DeleteBySession removes the session's cart and its lines. Lines are deleted
// explicitly so SQLite connections without foreign key enforcement behave the
// same as Postgres.
func (r *Repository) DeleteBySession(ctx context.Context, sessionID string) error {
	conn := r.db.WithContext(ctx)
	if err := conn.
		Where("cart_id IN (SELECT id FROM carts WHERE session_id = ?)", sessionID).
		Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	return conn.Where("session_id = ?", sessionID).Delete(&models.Cart{}).Error
}

// DeleteStale removes carts untouched since cutoff, together with their
// lines, and reports how many carts were deleted. A cart with a line written
// after cutoff is kept even if its own row is older. Both deletes run in one
// transaction so a line added between them cannot be orphaned.
func (r *Repository) DeleteStale(ctx context.Context, cutoff time.Time) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uuid.UUID
		err := tx.Model(&models.Cart{}).
			Where("updated_at < ?", cutoff).
			Where("NOT EXISTS (SELECT 1 FROM cart_items WHERE cart_items.cart_id = carts.id AND cart_items.updated_at >= ?)", cutoff).
			Pluck("id", &ids).Error
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Where("cart_id IN ?", ids).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		res := tx.Where("id IN ?", ids).Delete(&models.Cart{})
		deleted = res.RowsAffected
		return res.Error
	})
	return deleted, err
}

// CountItems sums line quantities for the session's cart.
func (r *Repository) CountItems(ctx context.Context, sessionID string) (int, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Where("carts.session_id = ?", sessionID).
		Select("COALESCE(SUM(cart_items.quantity), 0)").
		Scan(&total).Error
	return int(total), err
}
