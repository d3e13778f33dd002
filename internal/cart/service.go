package cart

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/evergreenfarmers/storefront/pkg/db"
	"github.com/evergreenfarmers/storefront/pkg/db/models"
	pkgerrors "github.com/evergreenfarmers/storefront/pkg/errors"
	"github.com/evergreenfarmers/storefront/pkg/logger"
	"github.com/evergreenfarmers/storefront/pkg/metrics"
)

const (
	opAdd    = "add"
	opUpdate = "update"
	opRemove = "remove"
	opClear  = "clear"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages the session cart. Every call names the cart explicitly by
// its session key.
type Service interface {
	AddItem(ctx context.Context, sessionKey string, productID uuid.UUID, quantity int) (*Summary, error)
	UpdateItem(ctx context.Context, sessionKey string, itemID uuid.UUID, quantity int) (*Summary, error)
	RemoveItem(ctx context.Context, sessionKey string, itemID uuid.UUID) (*Summary, error)
	Summary(ctx context.Context, sessionKey string) *Summary
	Clear(ctx context.Context, sessionKey string) error
	Count(ctx context.Context, sessionKey string) int
}

type service struct {
	repo    *Repository
	tx      txRunner
	logg    *logger.Logger
	metrics *metrics.StorefrontMetrics
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo *Repository, tx txRunner, logg *logger.Logger, m *metrics.StorefrontMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, tx: tx, logg: logg, metrics: m}, nil
}

func requireSession(sessionKey string) error {
	if strings.TrimSpace(sessionKey) == "" {
		return pkgerrors.New(pkgerrors.CodeInvalidInput, "cart session is required")
	}
	return nil
}

func insufficientStock(p *models.Product) error {
	return pkgerrors.New(pkgerrors.CodeInsufficientStock,
		fmt.Sprintf("only %d %s of %s available", p.StockQuantity, p.Unit.Label(), p.Name)).
		WithDetails(map[string]any{"product_id": p.ID.String(), "available": p.StockQuantity})
}

// record counts the operation and passes err through.
func (s *service) record(op string, err error) error {
	switch {
	case err == nil:
		s.metrics.IncCartOperation(op, metrics.ResultSuccess)
	case pkgerrors.As(err) != nil && pkgerrors.MetadataFor(pkgerrors.As(err).Code()).Expected:
		s.metrics.IncCartOperation(op, metrics.ResultRejected)
	default:
		s.metrics.IncCartOperation(op, metrics.ResultError)
	}
	return err
}

func (s *service) AddItem(ctx context.Context, sessionKey string, productID uuid.UUID, quantity int) (*Summary, error) {
	if err := requireSession(sessionKey); err != nil {
		return nil, s.record(opAdd, err)
	}
	if quantity <= 0 {
		return nil, s.record(opAdd, pkgerrors.New(pkgerrors.CodeInvalidInput, "quantity must be at least 1").
			WithDetails(map[string]string{"quantity": "must be at least 1"}))
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		product, err := repo.FindProduct(ctx, productID)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		if !product.IsActive {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}

		cart, err := repo.GetOrCreate(ctx, sessionKey)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}

		existing, err := repo.LineQuantity(ctx, cart.ID, product.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart line")
		}
		if !product.InStock(existing + quantity) {
			return insufficientStock(product)
		}

		if err := repo.UpsertLine(ctx, cart.ID, product.ID, quantity); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save cart line")
		}
		if err := repo.Touch(ctx, cart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "touch cart")
		}
		return nil
	})
	if err != nil {
		return nil, s.record(opAdd, err)
	}

	s.record(opAdd, nil)
	ctx = s.logg.WithSessionKey(ctx, sessionKey)
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"product_id": productID.String(), "quantity": quantity}), "cart.item_added")
	return s.Summary(ctx, sessionKey), nil
}

// ownedItem loads itemID and checks it belongs to the session's cart.
// foreign selects the error returned for another session's item.
func (s *service) ownedItem(ctx context.Context, sessionKey string, itemID uuid.UUID, foreign pkgerrors.Code) (*models.CartItem, error) {
	item, err := s.repo.FindItem(ctx, itemID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}
	if item.Cart == nil || item.Cart.SessionID != sessionKey {
		if foreign == pkgerrors.CodeForbidden {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cart item belongs to another cart")
		}
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	return item, nil
}

func (s *service) UpdateItem(ctx context.Context, sessionKey string, itemID uuid.UUID, quantity int) (*Summary, error) {
	if err := requireSession(sessionKey); err != nil {
		return nil, s.record(opUpdate, err)
	}
	item, err := s.ownedItem(ctx, sessionKey, itemID, pkgerrors.CodeForbidden)
	if err != nil {
		return nil, s.record(opUpdate, err)
	}

	if quantity <= 0 {
		if err := s.repo.DeleteItem(ctx, item.ID); err != nil {
			return nil, s.record(opUpdate, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete cart line"))
		}
	} else {
		if item.Product == nil {
			return nil, s.record(opUpdate, pkgerrors.New(pkgerrors.CodeNotFound, "product not found"))
		}
		if !item.Product.InStock(quantity) {
			return nil, s.record(opUpdate, insufficientStock(item.Product))
		}
		if err := s.repo.SetLineQuantity(ctx, item.ID, quantity); err != nil {
			return nil, s.record(opUpdate, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cart line"))
		}
	}

	s.touch(ctx, sessionKey, item.CartID)
	s.record(opUpdate, nil)
	return s.Summary(ctx, sessionKey), nil
}

func (s *service) RemoveItem(ctx context.Context, sessionKey string, itemID uuid.UUID) (*Summary, error) {
	if err := requireSession(sessionKey); err != nil {
		return nil, s.record(opRemove, err)
	}
	item, err := s.ownedItem(ctx, sessionKey, itemID, pkgerrors.CodeNotFound)
	if err != nil {
		return nil, s.record(opRemove, err)
	}
	if err := s.repo.DeleteItem(ctx, item.ID); err != nil {
		return nil, s.record(opRemove, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete cart line"))
	}
	s.touch(ctx, sessionKey, item.CartID)
	s.record(opRemove, nil)
	return s.Summary(ctx, sessionKey), nil
}

// touch refreshes the cart's activity time after a line change. The change
// itself already succeeded, so a failure is only logged.
func (s *service) touch(ctx context.Context, sessionKey string, cartID uuid.UUID) {
	if err := s.repo.Touch(ctx, cartID); err != nil {
		logCtx := s.logg.WithField(s.logg.WithSessionKey(ctx, sessionKey), "error", err.Error())
		s.logg.Warn(logCtx, "cart.touch_failed")
	}
}

// Summary never fails; read errors are logged and an empty cart is returned.
func (s *service) Summary(ctx context.Context, sessionKey string) *Summary {
	if strings.TrimSpace(sessionKey) == "" {
		return emptySummary()
	}
	cart, err := s.repo.FindBySession(ctx, sessionKey)
	if err != nil {
		if !db.IsNotFound(err) {
			s.logg.Error(s.logg.WithSessionKey(ctx, sessionKey), "cart.summary_failed", err)
		}
		return emptySummary()
	}
	return NewSummary(cart)
}

// Clear is idempotent.
func (s *service) Clear(ctx context.Context, sessionKey string) error {
	if strings.TrimSpace(sessionKey) == "" {
		return nil
	}
	if err := s.repo.DeleteBySession(ctx, sessionKey); err != nil {
		return s.record(opClear, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart"))
	}
	return s.record(opClear, nil)
}

func (s *service) Count(ctx context.Context, sessionKey string) int {
	if strings.TrimSpace(sessionKey) == "" {
		return 0
	}
	count, err := s.repo.CountItems(ctx, sessionKey)
	if err != nil {
		s.logg.Error(s.logg.WithSessionKey(ctx, sessionKey), "cart.count_failed", err)
		return 0
	}
	return count
}
